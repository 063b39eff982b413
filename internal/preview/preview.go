// Package preview renders the consolidated table for a terminal: one
// bordered table per class followed by that class's summary cards.
package preview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"quizreport/internal/exporter"
	"quizreport/pkg/contracts/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#2F75B5"))
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BDD7EE")).
			Bold(true).
			Padding(0, 1).
			Align(lipgloss.Center)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Center)
	passStyle   = cellStyle.Foreground(lipgloss.Color("#52C41A"))
	failStyle   = cellStyle.Foreground(lipgloss.Color("#FF4D4F"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// Render returns the per-class view of t. summaries are matched to classes
// by name; a class without a summary gets no cards.
func Render(t *domain.ConsolidatedTable, summaries []domain.ClassSummary, opts exporter.Options) string {
	if t.Len() == 0 {
		return mutedStyle.Render("No students found.")
	}

	byClass := make(map[string]domain.ClassSummary, len(summaries))
	for _, s := range summaries {
		byClass[s.ClassName] = s
	}

	var sections []string
	for _, class := range t.Classes() {
		view, _ := t.FilterClass(class)
		parts := []string{
			titleStyle.Render(class),
			renderTable(view, opts),
		}
		if s, ok := byClass[class]; ok {
			parts = append(parts, renderSummaryCards(s))
		}
		parts = append(parts, mutedStyle.Render("download: "+exporter.ClassFilename(class)))
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, parts...))
	}
	return strings.Join(sections, "\n\n")
}

// renderTable draws t with pass/fail colors on the total columns
func renderTable(t *domain.ConsolidatedTable, opts exporter.Options) string {
	kinds := t.ColumnKinds()
	records := t.Records()

	rows := make([][]string, len(records))
	for i, record := range records {
		row := make([]string, len(record))
		for j, v := range record {
			row[j] = formatCell(v)
		}
		rows[i] = row
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(t.Columns()...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(records) {
				return cellStyle
			}
			switch kinds[col] {
			case domain.KindAccTotal:
				return thresholdStyle(records[row][col], opts.AccThreshold)
			case domain.KindScaledTotal:
				if opts.ScaledThreshold > 0 {
					return thresholdStyle(records[row][col], opts.ScaledThreshold)
				}
			}
			return cellStyle
		}).
		String()
}

func thresholdStyle(v any, threshold float64) lipgloss.Style {
	n, ok := v.(float64)
	if !ok {
		return cellStyle
	}
	if n < threshold {
		return failStyle
	}
	return passStyle
}

func renderSummaryCards(s domain.ClassSummary) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard("Students", strconv.Itoa(s.Students)),
		metricCard("Mean ACC", formatFloat(s.MeanAccTotal)),
		metricCard("Median ACC", formatFloat(s.MedianAccTotal)),
		metricCard("Min / Max", formatFloat(s.MinAccTotal)+" / "+formatFloat(s.MaxAccTotal)),
		metricCard(fmt.Sprintf("Passing (>= %s)", formatFloat(s.Threshold)), fmt.Sprintf("%d/%d", s.Passing, s.Students)),
	)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func formatCell(v any) string {
	switch x := v.(type) {
	case float64:
		return formatFloat(x)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
