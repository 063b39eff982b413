package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"quizreport/internal/config"
	"quizreport/internal/dataprocessing"
	apierrors "quizreport/internal/errors"
	"quizreport/internal/exporter"
	"quizreport/internal/infrastructure"
	"quizreport/internal/validation"
	"quizreport/pkg/contracts/domain"
)

// Upload is one source export held in memory
type Upload struct {
	Name string
	Data []byte
}

// Params are the user-facing consolidation parameters
type Params struct {
	// ScalePercent adds "ACC Total per P%" when positive
	ScalePercent float64 `json:"scale_percent" validate:"gte=0,lte=100"`
	// ScaledThreshold colors the scaled column when positive
	ScaledThreshold float64 `json:"scaled_threshold" validate:"gte=0,lte=100"`
	AccThreshold    float64 `json:"acc_threshold" validate:"gte=0,lte=100"`
}

// DefaultParams returns parameters with the scaled column off
func DefaultParams(cfg config.ReportConfig) Params {
	return Params{AccThreshold: cfg.AccThreshold}
}

// RenderOptions maps the parameters onto workbook coloring options
func (p Params) RenderOptions() exporter.Options {
	return exporter.Options{
		AccThreshold:    p.AccThreshold,
		ScaledThreshold: p.ScaledThreshold,
	}
}

// ClassView is one class of a consolidation result
type ClassView struct {
	ClassName string                    `json:"class_name"`
	Filename  string                    `json:"filename"`
	Summary   domain.ClassSummary       `json:"summary"`
	Table     *domain.ConsolidatedTable `json:"-"`
}

// Result is a consolidated table with its per-class breakdown
type Result struct {
	Params  Params
	Sources []string
	Table   *domain.ConsolidatedTable
	Classes []ClassView
}

// Class returns the view of className
func (r *Result) Class(className string) (*ClassView, bool) {
	for i := range r.Classes {
		if r.Classes[i].ClassName == className {
			return &r.Classes[i], true
		}
	}
	return nil, false
}

// Summaries returns the per-class statistics in class order
func (r *Result) Summaries() []domain.ClassSummary {
	out := make([]domain.ClassSummary, len(r.Classes))
	for i, c := range r.Classes {
		out[i] = c.Summary
	}
	return out
}

// ConsolidationService runs extraction, aggregation and rendering for one request
type ConsolidationService struct {
	parser     *dataprocessing.Parser
	aggregator *dataprocessing.Aggregator
	files      *validation.FileValidator
	validate   *validator.Validate
	csv        *exporter.CSVWriter
	defaults   Params
	metrics    *infrastructure.ReportMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewConsolidationService creates the service. metrics may be nil and
// tracer falls back to the global provider.
func NewConsolidationService(cfg config.ReportConfig, logger *slog.Logger, metrics *infrastructure.ReportMetrics, tracer trace.Tracer) *ConsolidationService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}

	v := validator.New()
	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ConsolidationService{
		parser:     dataprocessing.NewParser(logger),
		aggregator: dataprocessing.NewAggregator(logger),
		files:      validation.NewFileValidator(logger, cfg),
		validate:   v,
		csv:        exporter.NewCSVWriter(logger),
		defaults:   DefaultParams(cfg),
		metrics:    metrics,
		tracer:     tracer,
		logger:     logger.With(slog.String("component", "consolidation_service")),
	}
}

// FileValidator returns the validator enforcing the upload limits
func (s *ConsolidationService) FileValidator() *validation.FileValidator {
	return s.files
}

// DefaultParams returns the parameters used when a request leaves them unset
func (s *ConsolidationService) DefaultParams() Params {
	return s.defaults
}

// ValidateUploads checks an upload batch against the configured limits
func (s *ConsolidationService) ValidateUploads(uploads []validation.Upload) error {
	return s.files.ValidateBatch(uploads)
}

// ValidateParams checks the parameter ranges
func (s *ConsolidationService) ValidateParams(p Params) error {
	err := s.validate.Struct(p)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}
	var details []apierrors.ValidationError
	for _, fe := range verrs {
		details = append(details, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param()),
		})
	}
	return apierrors.NewValidationErrors(details)
}

// Consolidate parses every upload in order and joins them into one result.
// Any extraction error aborts the whole run.
func (s *ConsolidationService) Consolidate(ctx context.Context, uploads []Upload, params Params) (result *Result, err error) {
	ctx, span := s.tracer.Start(ctx, "consolidation.run",
		trace.WithAttributes(
			attribute.Int("sources", len(uploads)),
			attribute.Float64("scale_percent", params.ScalePercent),
		))
	defer span.End()

	start := time.Now()
	students := 0
	defer func() {
		infrastructure.RecordConsolidationMetrics(ctx, s.metrics, len(uploads), students, time.Since(start), err)
	}()

	if len(uploads) == 0 {
		return nil, apierrors.ErrNoFiles
	}
	if err := s.ValidateParams(params); err != nil {
		return nil, err
	}

	logger := infrastructure.LoggerWithContext(ctx, s.logger)

	summaries := make([]*domain.SourceSummary, 0, len(uploads))
	sources := make([]string, 0, len(uploads))
	for _, u := range uploads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summary, err := s.parser.Parse(bytes.NewReader(u.Data), u.Name)
		if err != nil {
			logger.WarnContext(ctx, "source rejected",
				slog.String("source", u.Name),
				slog.String("error", err.Error()))
			return nil, err
		}
		summaries = append(summaries, summary)
		sources = append(sources, u.Name)
	}

	table, err := s.aggregator.Aggregate(summaries, params.ScalePercent)
	if err != nil {
		return nil, err
	}
	students = table.Len()

	result = &Result{
		Params:  params,
		Sources: sources,
		Table:   table,
	}
	classSummaries := dataprocessing.ClassSummaries(table, params.AccThreshold)
	classNames := make([]string, len(classSummaries))
	for i, summary := range classSummaries {
		classNames[i] = summary.ClassName
	}
	filenames := exporter.ClassFilenames(classNames)
	for i, summary := range classSummaries {
		view, _ := table.FilterClass(summary.ClassName)
		result.Classes = append(result.Classes, ClassView{
			ClassName: summary.ClassName,
			Filename:  filenames[i],
			Summary:   summary,
			Table:     view,
		})
	}

	logger.InfoContext(ctx, "consolidation completed",
		slog.Int("sources", len(uploads)),
		slog.Int("students", students),
		slog.Int("classes", len(result.Classes)),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// ConsolidateFiles reads sources from disk and consolidates them
func (s *ConsolidationService) ConsolidateFiles(ctx context.Context, paths []string, params Params) (*Result, error) {
	uploads := make([]Upload, 0, len(paths))
	for _, path := range paths {
		if err := s.files.ValidateSourceFile(path); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		uploads = append(uploads, Upload{Name: path, Data: data})
	}
	return s.Consolidate(ctx, uploads, params)
}

// ConsolidatedWorkbook renders the whole table
func (s *ConsolidationService) ConsolidatedWorkbook(ctx context.Context, result *Result) ([]byte, error) {
	return s.renderTimed(ctx, "consolidated", func(ctx context.Context) ([]byte, error) {
		return exporter.NewRenderer(result.Params.RenderOptions(), s.logger).RenderConsolidated(ctx, result.Table)
	})
}

// ClassWorkbook renders one class; unknown classes are a 404
func (s *ConsolidationService) ClassWorkbook(ctx context.Context, result *Result, className string) ([]byte, error) {
	view, ok := result.Class(className)
	if !ok {
		return nil, apierrors.ClassNotFoundError(className)
	}
	return s.renderTimed(ctx, "class", func(ctx context.Context) ([]byte, error) {
		return exporter.NewRenderer(result.Params.RenderOptions(), s.logger).RenderClass(ctx, view.Table)
	})
}

// CSV exports the whole table as UTF-8 CSV
func (s *ConsolidationService) CSV(ctx context.Context, result *Result) ([]byte, error) {
	return s.renderTimed(ctx, "csv", func(ctx context.Context) ([]byte, error) {
		var buf bytes.Buffer
		if err := s.csv.WriteTable(&buf, result.Table); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

// WriteReports writes the consolidated workbook, one workbook per class and
// optionally the CSV export into dir. It returns the written paths.
func (s *ConsolidationService) WriteReports(ctx context.Context, result *Result, dir string, withCSV bool) ([]string, error) {
	if err := s.files.ValidateOutputDirectory(dir); err != nil {
		return nil, apierrors.NewStorageError("output directory unavailable", err)
	}

	var written []string
	seen := make(map[string]bool)
	write := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if seen[strings.ToLower(path)] {
			return apierrors.NewStorageError(fmt.Sprintf("report %s would overwrite an earlier report", path), nil)
		}
		seen[strings.ToLower(path)] = true
		if err := os.WriteFile(path, data, 0644); err != nil {
			return apierrors.NewStorageError(fmt.Sprintf("failed to write %s", path), err)
		}
		written = append(written, path)
		return nil
	}

	data, err := s.ConsolidatedWorkbook(ctx, result)
	if err != nil {
		return nil, err
	}
	if err := write(config.ConsolidatedFileName, data); err != nil {
		return nil, err
	}

	for _, class := range result.Classes {
		data, err := s.ClassWorkbook(ctx, result, class.ClassName)
		if err != nil {
			return nil, err
		}
		if err := write(class.Filename, data); err != nil {
			return nil, err
		}
	}

	if withCSV {
		data, err := s.CSV(ctx, result)
		if err != nil {
			return nil, err
		}
		if err := write(config.ConsolidatedCSVName, data); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "reports written",
		slog.String("directory", dir),
		slog.Int("files", len(written)))

	return written, nil
}

func (s *ConsolidationService) renderTimed(ctx context.Context, kind string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "report.render",
		trace.WithAttributes(attribute.String("report.kind", kind)))
	defer span.End()

	start := time.Now()
	data, err := fn(ctx)
	infrastructure.RecordRenderMetrics(ctx, s.metrics, kind, len(data), time.Since(start), err)
	return data, err
}
