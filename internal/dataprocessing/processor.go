package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/montanaflynn/stats"

	"quizreport/internal/config"
	"quizreport/internal/errors"
	"quizreport/pkg/contracts/domain"
)

// ErrNoSources is returned when Aggregate is called without summaries
var ErrNoSources = errors.NewAppValidationError("at least one source is required")

// Round2 rounds to two decimals, ties to even on the scaled value
func Round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

// Aggregator outer-joins source summaries into one consolidated table
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator logging through logger
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger.With(slog.String("component", "aggregator"))}
}

// Aggregate joins summaries in upload order on (class, student).
//
// A student missing from a source scores 0 accuracy and 0 attempts there,
// and that 0 counts toward ACC Total. When scalePercent > 0 the table also
// carries ACC Total scaled by scalePercent/100. A label repeated by a later
// source replaces the earlier source's column pair in place.
func (a *Aggregator) Aggregate(summaries []*domain.SourceSummary, scalePercent float64) (*domain.ConsolidatedTable, error) {
	if len(summaries) == 0 {
		return nil, ErrNoSources
	}
	if math.IsNaN(scalePercent) || scalePercent < config.MinScalePercent || scalePercent > config.MaxScalePercent {
		return nil, errors.NewAppValidationError(
			fmt.Sprintf("scale percent must be within [0, 100]: %g", scalePercent)).
			WithContext("scale_percent", scalePercent)
	}

	var labels []string
	labelIndex := make(map[string]int)
	for _, s := range summaries {
		if _, ok := labelIndex[s.Label]; !ok {
			labelIndex[s.Label] = len(labels)
			labels = append(labels, s.Label)
		}
	}

	rows := make(map[domain.StudentKey]*domain.ConsolidatedRow)
	var keys []domain.StudentKey
	seenLabel := make(map[string]bool)

	for _, s := range summaries {
		col := labelIndex[s.Label]
		if seenLabel[s.Label] {
			a.logger.Warn("duplicate source label replaces earlier columns",
				slog.String("label", s.Label),
				slog.String("source", s.Source))
			for _, row := range rows {
				row.Scores[col] = domain.SourceScore{}
			}
		}
		seenLabel[s.Label] = true

		for _, sr := range s.Rows {
			row, ok := rows[sr.StudentKey]
			if !ok {
				row = &domain.ConsolidatedRow{
					ClassName:   sr.ClassName,
					StudentName: sr.StudentName,
					Scores:      make([]domain.SourceScore, len(labels)),
				}
				rows[sr.StudentKey] = row
				keys = append(keys, sr.StudentKey)
			}
			row.Scores[col] = domain.SourceScore{
				BestAccuracy: sr.BestAccuracy,
				Attempts:     sr.Attempts,
			}
		}
	}

	sortKeys(keys)

	table := &domain.ConsolidatedTable{
		Labels:       labels,
		ScalePercent: scalePercent,
		Rows:         make([]domain.ConsolidatedRow, 0, len(keys)),
	}

	accs := make([]float64, len(labels))
	for _, key := range keys {
		row := rows[key]
		for i, s := range row.Scores {
			accs[i] = s.BestAccuracy
		}
		mean, err := stats.Mean(accs)
		if err != nil {
			return nil, fmt.Errorf("acc total for %s/%s: %w", key.ClassName, key.StudentName, err)
		}
		row.AccTotal = Round2(mean)
		if table.HasScaledColumn() {
			row.ScaledTotal = Round2(row.AccTotal * scalePercent / 100)
		}
		table.Rows = append(table.Rows, *row)
	}

	a.logger.Info("sources consolidated",
		slog.Int("sources", len(summaries)),
		slog.Int("labels", len(labels)),
		slog.Int("students", len(table.Rows)),
		slog.Float64("scale_percent", scalePercent))

	return table, nil
}
