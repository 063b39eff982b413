package domain

import (
	"strconv"
)

// Column headers shared by the on-screen view and the generated workbooks
const (
	ColumnClassName     = "Class Name"
	ColumnStudentName   = "Name"
	ColumnAccTotal      = "ACC Total"
	AccColumnPrefix     = "Acc-"
	AttemptColumnPrefix = "Tentativa-"
)

// ColumnKind identifies the role a column plays in the consolidated table
type ColumnKind int

const (
	KindClassName ColumnKind = iota
	KindStudentName
	KindAccTotal
	KindScaledTotal
	KindAccuracy
	KindAttempts
)

// StudentKey is the join key across sources
type StudentKey struct {
	ClassName   string `json:"class_name"`
	StudentName string `json:"student_name"`
}

// StudentRecord is one attempt row read from a source export.
// Scored is false when the accuracy cell was blank; such rows register the
// student without counting as an attempt.
type StudentRecord struct {
	StudentKey
	AccuracyPercent float64 `json:"accuracy_percent"`
	Scored          bool    `json:"scored"`
	Row             int     `json:"row"`
}

// SourceRow is the per-student summary of one source
type SourceRow struct {
	StudentKey
	BestAccuracy float64 `json:"best_accuracy"`
	Attempts     int     `json:"attempts"`
}

// SourceSummary is the grouped result of one uploaded export
type SourceSummary struct {
	Label  string      `json:"label"`
	Source string      `json:"source"`
	Rows   []SourceRow `json:"rows"`
}

// AccColumn returns the best-accuracy column header for this source
func (s SourceSummary) AccColumn() string {
	return AccColumnPrefix + s.Label
}

// AttemptColumn returns the attempt-count column header for this source
func (s SourceSummary) AttemptColumn() string {
	return AttemptColumnPrefix + s.Label
}

// SourceScore holds one source's contribution to a consolidated row.
// Absence from a source is recorded as zero accuracy and zero attempts.
type SourceScore struct {
	BestAccuracy float64 `json:"best_accuracy"`
	Attempts     int     `json:"attempts"`
}

// ConsolidatedRow is one student across every source
type ConsolidatedRow struct {
	ClassName   string        `json:"class_name"`
	StudentName string        `json:"student_name"`
	AccTotal    float64       `json:"acc_total"`
	ScaledTotal float64       `json:"scaled_total,omitempty"`
	Scores      []SourceScore `json:"scores"`
}

// ConsolidatedTable is the outer join of all source summaries.
// Rows are ordered by class then student so every class forms one contiguous run.
type ConsolidatedTable struct {
	Labels       []string          `json:"labels"`
	ScalePercent float64           `json:"scale_percent"`
	Rows         []ConsolidatedRow `json:"rows"`
}

// HasScaledColumn reports whether the scaled total column is present
func (t *ConsolidatedTable) HasScaledColumn() bool {
	return t.ScalePercent > 0
}

// ScaledColumnName returns the header of the scaled total column
func (t *ConsolidatedTable) ScaledColumnName() string {
	return ScaledColumnName(t.ScalePercent)
}

// ScaledColumnName formats the scaled total header for percentage p
func ScaledColumnName(p float64) string {
	return ColumnAccTotal + " per " + strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

// Columns returns the headers in output order:
// class, student, ACC Total, optional scaled total, then Acc-/Tentativa- pairs.
func (t *ConsolidatedTable) Columns() []string {
	cols := []string{ColumnClassName, ColumnStudentName, ColumnAccTotal}
	if t.HasScaledColumn() {
		cols = append(cols, t.ScaledColumnName())
	}
	for _, label := range t.Labels {
		cols = append(cols, AccColumnPrefix+label, AttemptColumnPrefix+label)
	}
	return cols
}

// ColumnKinds returns the role of each column, aligned with Columns
func (t *ConsolidatedTable) ColumnKinds() []ColumnKind {
	kinds := []ColumnKind{KindClassName, KindStudentName, KindAccTotal}
	if t.HasScaledColumn() {
		kinds = append(kinds, KindScaledTotal)
	}
	for range t.Labels {
		kinds = append(kinds, KindAccuracy, KindAttempts)
	}
	return kinds
}

// Values returns the cells of row i aligned with Columns
func (t *ConsolidatedTable) Values(i int) []any {
	row := t.Rows[i]
	vals := []any{row.ClassName, row.StudentName, row.AccTotal}
	if t.HasScaledColumn() {
		vals = append(vals, row.ScaledTotal)
	}
	for _, s := range row.Scores {
		vals = append(vals, s.BestAccuracy, s.Attempts)
	}
	return vals
}

// Records returns every row as a cell slice aligned with Columns
func (t *ConsolidatedTable) Records() [][]any {
	out := make([][]any, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Values(i)
	}
	return out
}

// Len returns the number of rows
func (t *ConsolidatedTable) Len() int {
	return len(t.Rows)
}

// Classes returns the distinct class names in first-appearance order
func (t *ConsolidatedTable) Classes() []string {
	seen := make(map[string]struct{})
	var classes []string
	for _, row := range t.Rows {
		if _, ok := seen[row.ClassName]; ok {
			continue
		}
		seen[row.ClassName] = struct{}{}
		classes = append(classes, row.ClassName)
	}
	return classes
}

// FilterClass returns a table holding only the rows of one class.
// The second result is false when the class is not present.
func (t *ConsolidatedTable) FilterClass(className string) (*ConsolidatedTable, bool) {
	out := &ConsolidatedTable{
		Labels:       append([]string(nil), t.Labels...),
		ScalePercent: t.ScalePercent,
	}
	for _, row := range t.Rows {
		if row.ClassName != className {
			continue
		}
		row.Scores = append([]SourceScore(nil), row.Scores...)
		out.Rows = append(out.Rows, row)
	}
	return out, len(out.Rows) > 0
}

// ClassGroup is a maximal contiguous run of rows sharing one class.
// Start and End are zero-based data row indexes, End inclusive.
type ClassGroup struct {
	ClassName  string `json:"class_name"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	ColorIndex int    `json:"color_index"`
}

// Len returns the number of rows in the run
func (g ClassGroup) Len() int {
	return g.End - g.Start + 1
}

// ClassSummary holds ACC Total statistics for one class
type ClassSummary struct {
	ClassName      string  `json:"class_name"`
	Students       int     `json:"students"`
	MeanAccTotal   float64 `json:"mean_acc_total"`
	MedianAccTotal float64 `json:"median_acc_total"`
	MinAccTotal    float64 `json:"min_acc_total"`
	MaxAccTotal    float64 `json:"max_acc_total"`
	Passing        int     `json:"passing"`
	Threshold      float64 `json:"threshold"`
}
