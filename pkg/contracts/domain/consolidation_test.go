package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(scale float64) *ConsolidatedTable {
	return &ConsolidatedTable{
		Labels:       []string{"Quiz1", "Quiz2"},
		ScalePercent: scale,
		Rows: []ConsolidatedRow{
			{ClassName: "7A", StudentName: "Ana Silva", AccTotal: 85, ScaledTotal: 42.5, Scores: []SourceScore{{80, 1}, {90, 2}}},
			{ClassName: "7A", StudentName: "Bia", AccTotal: 25, ScaledTotal: 12.5, Scores: []SourceScore{{50, 1}, {0, 0}}},
			{ClassName: "7B", StudentName: "Caio", AccTotal: 60, ScaledTotal: 30, Scores: []SourceScore{{60, 1}, {60, 3}}},
		},
	}
}

func TestConsolidatedTable_Columns(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		want  []string
	}{
		{
			name:  "without scaled column",
			scale: 0,
			want:  []string{"Class Name", "Name", "ACC Total", "Acc-Quiz1", "Tentativa-Quiz1", "Acc-Quiz2", "Tentativa-Quiz2"},
		},
		{
			name:  "with integral scale",
			scale: 50,
			want:  []string{"Class Name", "Name", "ACC Total", "ACC Total per 50%", "Acc-Quiz1", "Tentativa-Quiz1", "Acc-Quiz2", "Tentativa-Quiz2"},
		},
		{
			name:  "with fractional scale",
			scale: 12.5,
			want:  []string{"Class Name", "Name", "ACC Total", "ACC Total per 12.5%", "Acc-Quiz1", "Tentativa-Quiz1", "Acc-Quiz2", "Tentativa-Quiz2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := sampleTable(tt.scale)
			assert.Equal(t, tt.want, table.Columns())
			assert.Len(t, table.ColumnKinds(), len(tt.want))
			for i := range table.Rows {
				assert.Len(t, table.Values(i), len(tt.want))
			}
		})
	}
}

func TestConsolidatedTable_Values(t *testing.T) {
	table := sampleTable(50)

	assert.Equal(t, []any{"7A", "Bia", 25.0, 12.5, 50.0, 1, 0.0, 0}, table.Values(1))
	assert.Equal(t, table.Values(2), table.Records()[2])
}

func TestConsolidatedTable_Classes(t *testing.T) {
	table := sampleTable(0)
	assert.Equal(t, []string{"7A", "7B"}, table.Classes())

	empty := &ConsolidatedTable{}
	assert.Empty(t, empty.Classes())
}

func TestConsolidatedTable_FilterClass(t *testing.T) {
	table := sampleTable(50)

	filtered, ok := table.FilterClass("7A")
	require.True(t, ok)
	assert.Equal(t, 2, filtered.Len())
	assert.Equal(t, table.Columns(), filtered.Columns())
	assert.Equal(t, []string{"7A"}, filtered.Classes())

	filtered.Rows[0].Scores[0].Attempts = 99
	assert.Equal(t, 1, table.Rows[0].Scores[0].Attempts, "filtered rows must not alias the source table")

	_, ok = table.FilterClass("9Z")
	assert.False(t, ok)
}

func TestClassGroup_Len(t *testing.T) {
	assert.Equal(t, 1, ClassGroup{Start: 3, End: 3}.Len())
	assert.Equal(t, 4, ClassGroup{Start: 0, End: 3}.Len())
}

func TestSourceSummary_ColumnNames(t *testing.T) {
	s := SourceSummary{Label: "Quiz1"}
	assert.Equal(t, "Acc-Quiz1", s.AccColumn())
	assert.Equal(t, "Tentativa-Quiz1", s.AttemptColumn())
}
