package dataprocessing

import (
	"github.com/montanaflynn/stats"

	"quizreport/pkg/contracts/domain"
)

// ClassSummaries computes ACC Total statistics per class in first-appearance
// order. Passing counts students at or above threshold.
func ClassSummaries(table *domain.ConsolidatedTable, threshold float64) []domain.ClassSummary {
	totals := make(map[string][]float64)
	classes := table.Classes()
	for _, row := range table.Rows {
		totals[row.ClassName] = append(totals[row.ClassName], row.AccTotal)
	}

	summaries := make([]domain.ClassSummary, 0, len(classes))
	for _, class := range classes {
		data := stats.Float64Data(totals[class])

		summary := domain.ClassSummary{
			ClassName: class,
			Students:  data.Len(),
			Threshold: threshold,
		}
		// data is never empty: every listed class owns at least one row
		mean, _ := data.Mean()
		median, _ := data.Median()
		summary.MinAccTotal, _ = data.Min()
		summary.MaxAccTotal, _ = data.Max()
		summary.MeanAccTotal = Round2(mean)
		summary.MedianAccTotal = Round2(median)

		for _, v := range data {
			if v >= threshold {
				summary.Passing++
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
