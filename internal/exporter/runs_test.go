package exporter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quizreport/internal/errors"
	"quizreport/pkg/contracts/domain"
)

// tableOf builds a one-source table with one row per class entry
func tableOf(classes ...string) *domain.ConsolidatedTable {
	table := &domain.ConsolidatedTable{Labels: []string{"Q1"}}
	for i, class := range classes {
		table.Rows = append(table.Rows, domain.ConsolidatedRow{
			ClassName:   class,
			StudentName: fmt.Sprintf("Student %d", i),
			AccTotal:    float64(10 * i),
			Scores:      []domain.SourceScore{{BestAccuracy: float64(10 * i), Attempts: 1}},
		})
	}
	return table
}

func TestClassRuns(t *testing.T) {
	tests := []struct {
		name     string
		classes  []string
		expected []domain.ClassGroup
	}{
		{
			name:     "empty table",
			classes:  nil,
			expected: nil,
		},
		{
			name:    "contiguous classes",
			classes: []string{"7A", "7A", "7B", "7C", "7C", "7C"},
			expected: []domain.ClassGroup{
				{ClassName: "7A", Start: 0, End: 1, ColorIndex: 0},
				{ClassName: "7B", Start: 2, End: 2, ColorIndex: 1},
				{ClassName: "7C", Start: 3, End: 5, ColorIndex: 2},
			},
		},
		{
			name:    "split class keeps its color",
			classes: []string{"7A", "7B", "7A"},
			expected: []domain.ClassGroup{
				{ClassName: "7A", Start: 0, End: 0, ColorIndex: 0},
				{ClassName: "7B", Start: 1, End: 1, ColorIndex: 1},
				{ClassName: "7A", Start: 2, End: 2, ColorIndex: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassRuns(tableOf(tt.classes...)))
		})
	}
}

func TestClassRuns_PaletteWraps(t *testing.T) {
	var classes []string
	for i := 0; i < 12; i++ {
		classes = append(classes, fmt.Sprintf("C%02d", i))
	}

	runs := ClassRuns(tableOf(classes...))
	require.Len(t, runs, 12)
	assert.Equal(t, 9, runs[9].ColorIndex)
	assert.Equal(t, 0, runs[10].ColorIndex)
	assert.Equal(t, 1, runs[11].ColorIndex)
}

func TestValidateRuns(t *testing.T) {
	tests := []struct {
		name    string
		runs    []domain.ClassGroup
		rows    int
		wantErr bool
	}{
		{"no rows", nil, 0, false},
		{"tiling runs", []domain.ClassGroup{{Start: 0, End: 1}, {Start: 2, End: 4}}, 5, false},
		{"overlap", []domain.ClassGroup{{Start: 0, End: 2}, {Start: 2, End: 4}}, 5, true},
		{"gap", []domain.ClassGroup{{Start: 0, End: 1}, {Start: 3, End: 4}}, 5, true},
		{"past last row", []domain.ClassGroup{{Start: 0, End: 5}}, 5, true},
		{"inverted", []domain.ClassGroup{{Start: 1, End: 0}}, 2, true},
		{"uncovered tail", []domain.ClassGroup{{Start: 0, End: 1}}, 3, true},
		{"rows without runs", nil, 2, true},
		{"bad color", []domain.ClassGroup{{Start: 0, End: 0, ColorIndex: 10}}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRuns(tt.runs, tt.rows)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRenderContract))
		})
	}
}
