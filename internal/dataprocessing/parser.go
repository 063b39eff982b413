package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"

	"quizreport/internal/config"
	"quizreport/internal/errors"
	"quizreport/pkg/contracts/domain"
)

// requiredHeaders lists the export columns the extractor reads
var requiredHeaders = []string{
	config.HeaderFirstName,
	config.HeaderLastName,
	config.HeaderClassName,
	config.HeaderAccuracy,
}

// Parser extracts per-student summaries from quiz export workbooks
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser logging through logger
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With(slog.String("component", "parser"))}
}

// SourceLabel derives the column label of an upload from its file name:
// the base name up to the first "-", or the whole base name when there is none.
func SourceLabel(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	label, _, _ := strings.Cut(name, config.SourceLabelDivider)
	return label
}

// ParseAccuracy converts a percent-as-text value such as "87.5%" to 87.5.
// ok is false for a blank or NaN value, which counts as no attempt.
func ParseAccuracy(raw string) (value float64, ok bool, err error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	if cleaned == "" {
		return 0, false, nil
	}

	value, err = strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(value) {
		return 0, false, nil
	}
	if math.IsInf(value, 0) {
		return 0, false, fmt.Errorf("accuracy %q is not finite", raw)
	}
	return value, true, nil
}

// ParseFile reads a quiz export from disk
func (p *Parser) ParseFile(path string) (*domain.SourceSummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to open %s", path), err).
			WithContext("source", path)
	}
	defer f.Close()

	return p.parseWorkbook(f, path)
}

// Parse reads a quiz export from r; source names the upload in errors and
// provides the column label.
func (p *Parser) Parse(r io.Reader, source string) (*domain.SourceSummary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to open %s", source), err).
			WithContext("source", source)
	}
	defer f.Close()

	return p.parseWorkbook(f, source)
}

func (p *Parser) parseWorkbook(f *excelize.File, source string) (*domain.SourceSummary, error) {
	records, err := p.ReadRecords(f, source)
	if err != nil {
		return nil, err
	}

	summary := Summarize(SourceLabel(source), source, records)

	p.logger.Info("source parsed",
		slog.String("source", source),
		slog.String("label", summary.Label),
		slog.Int("attempt_rows", len(records)),
		slog.Int("students", len(summary.Rows)))

	return summary, nil
}

// ReadRecords extracts attempt rows from the participant sheet of f.
// Rows without a class are dropped; blank accuracy cells register the
// student without an attempt.
func (p *Parser) ReadRecords(f *excelize.File, source string) ([]domain.StudentRecord, error) {
	if idx, err := f.GetSheetIndex(config.ParticipantSheet); err != nil || idx < 0 {
		return nil, errors.NewMissingSheetError(source, config.ParticipantSheet)
	}

	rows, err := f.GetRows(config.ParticipantSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read %s", source), err).
			WithContext("source", source)
	}

	if len(rows) == 0 {
		return nil, errors.NewMissingColumnError(source, requiredHeaders[0])
	}

	columnMap := make(map[string]int)
	for j, header := range rows[0] {
		name := strings.TrimSpace(header)
		if _, dup := columnMap[name]; !dup {
			columnMap[name] = j
		}
	}
	for _, header := range requiredHeaders {
		if _, ok := columnMap[header]; !ok {
			return nil, errors.NewMissingColumnError(source, header)
		}
	}

	firstCol := columnMap[config.HeaderFirstName]
	lastCol := columnMap[config.HeaderLastName]
	classCol := columnMap[config.HeaderClassName]
	accCol := columnMap[config.HeaderAccuracy]

	var records []domain.StudentRecord
	skipped := 0
	for i, row := range rows[1:] {
		sheetRow := i + 2

		first := cell(row, firstCol)
		last := cell(row, lastCol)
		className := cell(row, classCol)
		rawAcc := cell(row, accCol)

		if first == "" && last == "" && className == "" && strings.TrimSpace(rawAcc) == "" {
			continue
		}

		acc, scored, err := ParseAccuracy(rawAcc)
		if err != nil {
			return nil, errors.NewAccuracyParseError(source, sheetRow, rawAcc, err)
		}

		if className == "" {
			skipped++
			continue
		}

		records = append(records, domain.StudentRecord{
			StudentKey: domain.StudentKey{
				ClassName:   className,
				StudentName: strings.TrimSpace(first + " " + last),
			},
			AccuracyPercent: acc,
			Scored:          scored,
			Row:             sheetRow,
		})
	}

	if skipped > 0 {
		p.logger.Warn("rows without class dropped",
			slog.String("source", source),
			slog.Int("rows", skipped))
	}

	return records, nil
}

// Summarize groups attempt rows by student: best accuracy and attempt count.
// Rows are ordered by class then student name.
func Summarize(label, source string, records []domain.StudentRecord) *domain.SourceSummary {
	scores := make(map[domain.StudentKey][]float64)
	var keys []domain.StudentKey

	for _, rec := range records {
		attempts, seen := scores[rec.StudentKey]
		if !seen {
			keys = append(keys, rec.StudentKey)
		}
		if rec.Scored {
			attempts = append(attempts, rec.AccuracyPercent)
		}
		scores[rec.StudentKey] = attempts
	}

	sortKeys(keys)

	summary := &domain.SourceSummary{
		Label:  label,
		Source: source,
		Rows:   make([]domain.SourceRow, 0, len(keys)),
	}
	for _, key := range keys {
		attempts := scores[key]
		best := 0.0
		if len(attempts) > 0 {
			best, _ = stats.Max(attempts)
		}
		summary.Rows = append(summary.Rows, domain.SourceRow{
			StudentKey:   key,
			BestAccuracy: best,
			Attempts:     len(attempts),
		})
	}
	return summary
}

// sortKeys orders keys by class then student name
func sortKeys(keys []domain.StudentKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ClassName != keys[j].ClassName {
			return keys[i].ClassName < keys[j].ClassName
		}
		return keys[i].StudentName < keys[j].StudentName
	})
}

// cell returns the trimmed value at col; GetRows drops trailing empty cells
func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
