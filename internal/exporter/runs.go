package exporter

import (
	"fmt"

	"quizreport/internal/config"
	"quizreport/internal/errors"
	"quizreport/pkg/contracts/domain"
)

// ClassRuns splits the table into maximal contiguous runs of one class in a
// single forward pass. ColorIndex is the class's first-appearance index
// modulo the palette size, so a class split across runs keeps its color.
func ClassRuns(table *domain.ConsolidatedTable) []domain.ClassGroup {
	var runs []domain.ClassGroup
	colors := make(map[string]int)

	for i, row := range table.Rows {
		if n := len(runs); n > 0 && runs[n-1].ClassName == row.ClassName {
			runs[n-1].End = i
			continue
		}
		idx, ok := colors[row.ClassName]
		if !ok {
			idx = len(colors)
			colors[row.ClassName] = idx
		}
		runs = append(runs, domain.ClassGroup{
			ClassName:  row.ClassName,
			Start:      i,
			End:        i,
			ColorIndex: idx % len(config.ClassPalette),
		})
	}
	return runs
}

// singleRun covers every row of a one-class table
func singleRun(table *domain.ConsolidatedTable) []domain.ClassGroup {
	if table.Len() == 0 {
		return nil
	}
	return []domain.ClassGroup{{
		ClassName: table.Rows[0].ClassName,
		Start:     0,
		End:       table.Len() - 1,
	}}
}

// validateRuns checks that runs tile rows [0, n) in order without gaps or
// overlap. Any violation would produce colliding merge ranges.
func validateRuns(runs []domain.ClassGroup, n int) error {
	next := 0
	for i, run := range runs {
		switch {
		case run.Start > run.End:
			return errors.NewRenderContractError(
				fmt.Sprintf("run %d of %q is inverted: %d > %d", i, run.ClassName, run.Start, run.End), nil)
		case run.Start < next:
			return errors.NewRenderContractError(
				fmt.Sprintf("run %d of %q overlaps the previous run at row %d", i, run.ClassName, run.Start), nil)
		case run.Start > next:
			return errors.NewRenderContractError(
				fmt.Sprintf("rows %d..%d belong to no class run", next, run.Start-1), nil)
		case run.End >= n:
			return errors.NewRenderContractError(
				fmt.Sprintf("run %d of %q ends past the last row: %d >= %d", i, run.ClassName, run.End, n), nil)
		case run.ColorIndex < 0 || run.ColorIndex >= len(config.ClassPalette):
			return errors.NewRenderContractError(
				fmt.Sprintf("run %d of %q has no palette color %d", i, run.ClassName, run.ColorIndex), nil)
		}
		next = run.End + 1
	}
	if next != n {
		return errors.NewRenderContractError(
			fmt.Sprintf("rows %d..%d belong to no class run", next, n-1), nil)
	}
	return nil
}
