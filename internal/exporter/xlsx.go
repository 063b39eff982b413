package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"quizreport/internal/config"
	"quizreport/internal/errors"
	"quizreport/pkg/contracts/domain"
)

// Renderer writes consolidated tables as formatted xlsx workbooks
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

// NewRenderer creates a renderer coloring totals according to opts
func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		opts:   opts,
		logger: logger.With(slog.String("component", "xlsx_renderer")),
	}
}

// RenderConsolidated renders every class of table on the fixed consolidated sheet
func (r *Renderer) RenderConsolidated(ctx context.Context, table *domain.ConsolidatedTable) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layout, err := r.plan(table)
	if err != nil {
		return nil, err
	}
	return r.write(table, layout)
}

// RenderClass renders a table holding exactly one class on a sheet named
// after it. The whole class column merges into one cell.
func (r *Renderer) RenderClass(ctx context.Context, table *domain.ConsolidatedTable) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	classes := table.Classes()
	if len(classes) != 1 {
		return nil, errors.NewRenderContractError(
			fmt.Sprintf("class workbook needs exactly one class, got %d", len(classes)), nil).
			WithContext("classes", classes)
	}

	return r.render(SheetName(classes[0]), table, singleRun(table))
}

// plan returns the layout RenderConsolidated applies to table
func (r *Renderer) plan(table *domain.ConsolidatedTable) (*Layout, error) {
	return PlanLayout(config.ConsolidatedSheetName, table, ClassRuns(table), r.opts)
}

func (r *Renderer) render(sheet string, table *domain.ConsolidatedTable, runs []domain.ClassGroup) ([]byte, error) {
	layout, err := PlanLayout(sheet, table, runs, r.opts)
	if err != nil {
		return nil, err
	}
	return r.write(table, layout)
}

// write applies a planned layout to a fresh workbook and encodes it
func (r *Renderer) write(table *domain.ConsolidatedTable, layout *Layout) ([]byte, error) {
	sheet := layout.Sheet
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, table, layout); err != nil {
		r.logger.Error("workbook layout failed",
			slog.String("sheet", sheet),
			slog.String("error", err.Error()))
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.NewRenderContractError("failed to encode workbook", err)
	}

	r.logger.Debug("workbook rendered",
		slog.String("sheet", sheet),
		slog.Int("rows", table.Len()),
		slog.Int("merges", len(layout.Merges)),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

// writeSheet applies layout to the only sheet of f. Values go in first,
// then styles and merges, then column widths.
func writeSheet(f *excelize.File, table *domain.ConsolidatedTable, layout *Layout) error {
	sheet := layout.Sheet
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return contractError("name sheet", sheet, err)
	}

	header := make([]any, len(layout.Columns))
	for j, col := range layout.Columns {
		header[j] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return contractError("write header", "A1", err)
	}

	for i := 0; i < table.Len(); i++ {
		// column A carries the class only on the first row of each run
		rest := table.Values(i)[1:]
		cell, err := excelize.CoordinatesToCellName(2, i+2)
		if err != nil {
			return contractError("address row", fmt.Sprint(i+2), err)
		}
		if err := f.SetSheetRow(sheet, cell, &rest); err != nil {
			return contractError("write row", cell, err)
		}
	}
	for _, run := range layout.Runs {
		cell, err := excelize.CoordinatesToCellName(1, run.Start+2)
		if err != nil {
			return contractError("address class", run.ClassName, err)
		}
		if err := f.SetCellValue(sheet, cell, run.ClassName); err != nil {
			return contractError("write class", cell, err)
		}
	}

	styles := newStyleCache(f)
	for j := range layout.Columns {
		if err := styleCell(f, styles, sheet, j+1, 1, layout.Header); err != nil {
			return err
		}
	}
	for i, row := range layout.Cells {
		for j, style := range row {
			if err := styleCell(f, styles, sheet, j+1, i+2, style); err != nil {
				return err
			}
		}
	}

	for _, m := range layout.Merges {
		top, bottom, err := m.Cells()
		if err != nil {
			return contractError("address merge", fmt.Sprint(m), err)
		}
		if err := f.MergeCell(sheet, top, bottom); err != nil {
			return contractError("merge", top+":"+bottom, err)
		}
	}

	for j, width := range layout.Widths {
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return contractError("address column", fmt.Sprint(j+1), err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return contractError("set width", col, err)
		}
	}

	return nil
}

func styleCell(f *excelize.File, styles *styleCache, sheet string, col, row int, style CellStyle) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return contractError("address cell", fmt.Sprintf("%d,%d", col, row), err)
	}
	id, err := styles.id(style)
	if err != nil {
		return contractError("create style", cell, err)
	}
	if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
		return contractError("style", cell, err)
	}
	return nil
}

func contractError(step, target string, cause error) *errors.AppError {
	return errors.NewRenderContractError(fmt.Sprintf("failed to %s %s", step, target), cause).
		WithContext("step", step)
}
