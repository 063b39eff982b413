package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"quizreport/internal/exporter"
	"quizreport/pkg/contracts/domain"
)

func sampleTable() *domain.ConsolidatedTable {
	return &domain.ConsolidatedTable{
		Labels: []string{"Quiz1", "Quiz2"},
		Rows: []domain.ConsolidatedRow{
			{ClassName: "7A", StudentName: "Ana Silva", AccTotal: 85,
				Scores: []domain.SourceScore{{BestAccuracy: 80, Attempts: 1}, {BestAccuracy: 90, Attempts: 2}}},
			{ClassName: "7A", StudentName: "Bia", AccTotal: 25,
				Scores: []domain.SourceScore{{BestAccuracy: 50, Attempts: 1}, {}}},
			{ClassName: "7B", StudentName: "Caio", AccTotal: 60,
				Scores: []domain.SourceScore{{BestAccuracy: 60, Attempts: 1}, {BestAccuracy: 60, Attempts: 1}}},
		},
	}
}

func TestRender(t *testing.T) {
	summaries := []domain.ClassSummary{
		{ClassName: "7A", Students: 2, MeanAccTotal: 55, MedianAccTotal: 55, MinAccTotal: 25, MaxAccTotal: 85, Passing: 1, Threshold: 60},
	}

	out := Render(sampleTable(), summaries, exporter.DefaultOptions())

	for _, want := range []string{
		"7A", "7B", "Ana Silva", "Bia", "Caio",
		"ACC Total", "Acc-Quiz1", "Tentativa-Quiz2",
		"85.00", "25.00",
		"Students", "1/2",
		"download: 7A.xlsx", "download: 7B.xlsx",
	} {
		assert.Contains(t, out, want)
	}

	// 7A is listed before 7B and owns the only summary
	assert.Less(t, strings.Index(out, "Ana Silva"), strings.Index(out, "Caio"))
	assert.Equal(t, 1, strings.Count(out, "Median ACC"))
}

func TestRender_Empty(t *testing.T) {
	out := Render(&domain.ConsolidatedTable{}, nil, exporter.DefaultOptions())
	assert.Contains(t, out, "No students found.")
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "85.00", formatCell(85.0))
	assert.Equal(t, "33.33", formatCell(33.333))
	assert.Equal(t, "2", formatCell(2))
	assert.Equal(t, "7A", formatCell("7A"))
}
