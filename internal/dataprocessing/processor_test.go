package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quizreport/internal/errors"
	"quizreport/internal/shared/testutil"
	"quizreport/pkg/contracts/domain"
)

func source(label string, rows ...domain.SourceRow) *domain.SourceSummary {
	return &domain.SourceSummary{Label: label, Source: label + "-export.xlsx", Rows: rows}
}

func row(class, name string, best float64, attempts int) domain.SourceRow {
	return domain.SourceRow{
		StudentKey:   domain.StudentKey{ClassName: class, StudentName: name},
		BestAccuracy: best,
		Attempts:     attempts,
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{85, 85},
		{25, 25},
		{33.333333, 33.33},
		{66.666666, 66.67},
		{0.125, 0.12},
		{0.375, 0.38},
		{-1.005, -1},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, Round2(tt.input), 1e-9, "Round2(%v)", tt.input)
	}
}

func TestAggregator_ExampleScenarios(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	agg := NewAggregator(logger)

	quiz1 := source("Quiz1",
		row("7A", "Ana Silva", 80, 1),
		row("7A", "Bia", 50, 1),
	)
	quiz2 := source("Quiz2",
		row("7A", "Ana Silva", 90, 2),
	)

	table, err := agg.Aggregate([]*domain.SourceSummary{quiz1, quiz2}, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Class Name", "Name", "ACC Total",
		"Acc-Quiz1", "Tentativa-Quiz1", "Acc-Quiz2", "Tentativa-Quiz2",
	}, table.Columns())
	require.Equal(t, 2, table.Len())

	assert.Equal(t, []any{"7A", "Ana Silva", 85.0, 80.0, 1, 90.0, 2}, table.Values(0))

	// absence from Quiz2 counts as 0 and halves Bia's total
	assert.Equal(t, []any{"7A", "Bia", 25.0, 50.0, 1, 0.0, 0}, table.Values(1))
}

func TestAggregator_OuterJoin(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	agg := NewAggregator(logger)

	summaries := []*domain.SourceSummary{
		source("Q1", row("7B", "Caio", 100, 1), row("7A", "Ana", 60, 3)),
		source("Q2", row("7A", "Duda", 30, 1)),
		source("Q3", row("7A", "Ana", 90, 1), row("7C", "Eva", 75, 2)),
	}

	table, err := agg.Aggregate(summaries, 0)
	require.NoError(t, err)

	distinct := map[domain.StudentKey]bool{}
	for _, s := range summaries {
		for _, r := range s.Rows {
			distinct[r.StudentKey] = true
		}
	}
	require.Equal(t, len(distinct), table.Len())

	var keys []domain.StudentKey
	for _, r := range table.Rows {
		keys = append(keys, domain.StudentKey{ClassName: r.ClassName, StudentName: r.StudentName})
		require.Len(t, r.Scores, 3)
	}
	assert.Equal(t, []domain.StudentKey{
		{ClassName: "7A", StudentName: "Ana"},
		{ClassName: "7A", StudentName: "Duda"},
		{ClassName: "7B", StudentName: "Caio"},
		{ClassName: "7C", StudentName: "Eva"},
	}, keys)

	ana := table.Rows[0]
	assert.Equal(t, []domain.SourceScore{{BestAccuracy: 60, Attempts: 3}, {BestAccuracy: 0, Attempts: 0}, {BestAccuracy: 90, Attempts: 1}}, ana.Scores)
	assert.Equal(t, 50.0, ana.AccTotal)

	caio := table.Rows[2]
	assert.Equal(t, 33.33, caio.AccTotal)

	eva := table.Rows[3]
	assert.Equal(t, []domain.SourceScore{{BestAccuracy: 0, Attempts: 0}, {BestAccuracy: 0, Attempts: 0}, {BestAccuracy: 75, Attempts: 2}}, eva.Scores)
	assert.Equal(t, 25.0, eva.AccTotal)
}

func TestAggregator_ScaledColumn(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	agg := NewAggregator(logger)

	summaries := []*domain.SourceSummary{
		source("Q1", row("7A", "Ana", 85, 1), row("7A", "Bia", 30, 1)),
	}

	tests := []struct {
		name    string
		percent float64
		column  string
		scaled  []float64
	}{
		{"disabled", 0, "", nil},
		{"half", 50, "ACC Total per 50%", []float64{42.5, 15}},
		{"fractional percent", 12.5, "ACC Total per 12.5%", []float64{10.62, 3.75}},
		{"full", 100, "ACC Total per 100%", []float64{85, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := agg.Aggregate(summaries, tt.percent)
			require.NoError(t, err)

			if tt.column == "" {
				assert.False(t, table.HasScaledColumn())
				assert.NotContains(t, table.Columns(), "ACC Total per 0%")
				assert.Len(t, table.Columns(), 5)
				return
			}

			require.True(t, table.HasScaledColumn())
			assert.Equal(t, tt.column, table.Columns()[3])
			for i, want := range tt.scaled {
				assert.InDelta(t, want, table.Rows[i].ScaledTotal, 1e-9)
				assert.Equal(t, Round2(table.Rows[i].AccTotal*tt.percent/100), table.Rows[i].ScaledTotal)
			}
		})
	}
}

func TestAggregator_DuplicateLabel(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	agg := NewAggregator(logger)

	table, err := agg.Aggregate([]*domain.SourceSummary{
		source("Quiz", row("7A", "Ana", 80, 1), row("7A", "Bia", 70, 1)),
		source("Other", row("7A", "Ana", 40, 1)),
		source("Quiz", row("7A", "Ana", 20, 2)),
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"Quiz", "Other"}, table.Labels)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, []domain.SourceScore{{BestAccuracy: 20, Attempts: 2}, {BestAccuracy: 40, Attempts: 1}}, table.Rows[0].Scores)
	assert.Equal(t, 30.0, table.Rows[0].AccTotal)

	// Bia stays in the table, but the later "Quiz" source owns the column
	assert.Equal(t, []domain.SourceScore{{BestAccuracy: 0, Attempts: 0}, {BestAccuracy: 0, Attempts: 0}}, table.Rows[1].Scores)

	testutil.AssertLogContains(t, handler, "duplicate source label replaces earlier columns")
}

func TestAggregator_InvalidInput(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	agg := NewAggregator(logger)
	one := []*domain.SourceSummary{source("Q1", row("7A", "Ana", 80, 1))}

	_, err := agg.Aggregate(nil, 0)
	assert.ErrorIs(t, err, ErrNoSources)

	for _, p := range []float64{-0.1, 100.1, math.NaN()} {
		_, err := agg.Aggregate(one, p)
		require.Error(t, err, "percent %v", p)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	}
}

func TestAggregator_EmptySources(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	table, err := NewAggregator(logger).Aggregate([]*domain.SourceSummary{source("Q1")}, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, []string{"Q1"}, table.Labels)
}
