package exporter

import (
	"math"

	"github.com/xuri/excelize/v2"

	"quizreport/internal/config"
	"quizreport/pkg/contracts/domain"
)

// Options controls conditional coloring of the total columns
type Options struct {
	// AccThreshold splits ACC Total into fail (<) and pass (>=) fills
	AccThreshold float64
	// ScaledThreshold does the same for the scaled column; 0 leaves it unstyled
	ScaledThreshold float64
}

// DefaultOptions returns the standard pass mark with scaled coloring off
func DefaultOptions() Options {
	return Options{AccThreshold: config.DefaultAccThreshold}
}

// CellStyle is the visual treatment of one cell. Every cell is centered;
// an empty Fill means no fill.
type CellStyle struct {
	Fill   string
	Border bool
}

// MergeRange spans rows FirstRow..LastRow of column Col (1-based sheet coordinates)
type MergeRange struct {
	Col      int
	FirstRow int
	LastRow  int
}

// Cells returns the top-left and bottom-right cell names of the range
func (m MergeRange) Cells() (string, string, error) {
	top, err := excelize.CoordinatesToCellName(m.Col, m.FirstRow)
	if err != nil {
		return "", "", err
	}
	bottom, err := excelize.CoordinatesToCellName(m.Col, m.LastRow)
	if err != nil {
		return "", "", err
	}
	return top, bottom, nil
}

// Layout is every styling decision for one sheet, computed before any cell
// is written. Planning the same table with the same options always yields an
// equal Layout.
type Layout struct {
	Sheet   string
	Columns []string
	Widths  []float64
	Runs    []domain.ClassGroup
	Merges  []MergeRange
	Header  CellStyle
	// Cells[i][j] styles data row i, column j
	Cells [][]CellStyle
}

// PlanLayout decides fills, borders and merges for table split into runs
func PlanLayout(sheet string, table *domain.ConsolidatedTable, runs []domain.ClassGroup, opts Options) (*Layout, error) {
	if err := validateRuns(runs, table.Len()); err != nil {
		return nil, err
	}

	columns := table.Columns()
	kinds := table.ColumnKinds()

	layout := &Layout{
		Sheet:   sheet,
		Columns: columns,
		Widths:  make([]float64, len(columns)),
		Runs:    runs,
		Header:  CellStyle{Fill: config.HeaderFillColor, Border: true},
		Cells:   make([][]CellStyle, table.Len()),
	}

	for j, kind := range kinds {
		switch kind {
		case domain.KindClassName:
			layout.Widths[j] = config.WidthClassName
		case domain.KindStudentName:
			layout.Widths[j] = config.WidthStudentName
		default:
			layout.Widths[j] = config.WidthDefault
		}
	}

	for _, run := range runs {
		band := config.ClassPalette[run.ColorIndex]

		if run.Len() > 1 {
			layout.Merges = append(layout.Merges, MergeRange{
				Col:      1,
				FirstRow: run.Start + 2,
				LastRow:  run.End + 2,
			})
		}

		for i := run.Start; i <= run.End; i++ {
			values := table.Values(i)
			styles := make([]CellStyle, len(kinds))
			for j, kind := range kinds {
				switch kind {
				case domain.KindAccTotal:
					styles[j] = thresholdStyle(values[j], opts.AccThreshold)
				case domain.KindScaledTotal:
					if opts.ScaledThreshold > 0 {
						styles[j] = thresholdStyle(values[j], opts.ScaledThreshold)
					}
				default:
					styles[j] = CellStyle{Fill: band, Border: true}
				}
			}
			layout.Cells[i] = styles
		}
	}

	return layout, nil
}

// thresholdStyle colors v red below threshold and green at or above it.
// Non-numeric values stay unstyled.
func thresholdStyle(v any, threshold float64) CellStyle {
	n, ok := numeric(v)
	if !ok {
		return CellStyle{}
	}
	if n < threshold {
		return CellStyle{Fill: config.FailFillColor, Border: true}
	}
	return CellStyle{Fill: config.PassFillColor, Border: true}
}

func numeric(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
