package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"quizreport/internal/config"
	apierrors "quizreport/internal/errors"
	"quizreport/internal/middleware"
	"quizreport/internal/services"
	"quizreport/internal/validation"
)

// Form fields accepted by every report endpoint
const (
	FormFiles           = "files"
	FormScalePercent    = "scale_percent"
	FormScaledThreshold = "scaled_threshold"
	FormAccThreshold    = "acc_threshold"
)

// ReportHandler turns uploaded quiz exports into consolidated views and workbooks
type ReportHandler struct {
	service      ConsolidationServiceInterface
	params       *middleware.FormParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ConsolidationServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	logger = logger.With(slog.String("component", "report_handler"))
	return &ReportHandler{
		service:      service,
		params:       middleware.NewFormParamValidator(logger, errorHandler),
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// RegisterRoutes adds the report routes to r. Every route takes the same
// multipart form.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))

		r.Post("/consolidate", h.Consolidate)
		r.Post("/reports/consolidated", h.DownloadConsolidated)
		r.Post("/reports/csv", h.DownloadCSV)
		r.Post("/reports/classes/{class}", h.DownloadClass)
	})
}

// ClassPayload is one class of the consolidate response
type ClassPayload struct {
	services.ClassView
	Rows [][]any `json:"rows"`
}

// ConsolidatePayload is the data member of the consolidate response
type ConsolidatePayload struct {
	Columns []string        `json:"columns"`
	Rows    [][]any         `json:"rows"`
	Classes []ClassPayload  `json:"classes"`
	Sources []string        `json:"sources"`
	Params  services.Params `json:"params"`
}

// Consolidate handles POST /api/consolidate
func (h *ReportHandler) Consolidate(w http.ResponseWriter, r *http.Request) {
	result, ok := h.consolidate(w, r)
	if !ok {
		return
	}

	payload := ConsolidatePayload{
		Columns: result.Table.Columns(),
		Rows:    result.Table.Records(),
		Classes: make([]ClassPayload, 0, len(result.Classes)),
		Sources: result.Sources,
		Params:  result.Params,
	}
	for _, class := range result.Classes {
		payload.Classes = append(payload.Classes, ClassPayload{
			ClassView: class,
			Rows:      class.Table.Records(),
		})
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   payload,
		"count":  result.Table.Len(),
	})
}

// DownloadConsolidated handles POST /api/reports/consolidated
func (h *ReportHandler) DownloadConsolidated(w http.ResponseWriter, r *http.Request) {
	result, ok := h.consolidate(w, r)
	if !ok {
		return
	}

	data, err := h.service.ConsolidatedWorkbook(r.Context(), result)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeAttachment(w, r, config.ConsolidatedFileName, config.XLSXContentType, data)
}

// DownloadCSV handles POST /api/reports/csv
func (h *ReportHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := h.consolidate(w, r)
	if !ok {
		return
	}

	data, err := h.service.CSV(r.Context(), result)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeAttachment(w, r, config.ConsolidatedCSVName, config.CSVContentType, data)
}

// DownloadClass handles POST /api/reports/classes/{class}
func (h *ReportHandler) DownloadClass(w http.ResponseWriter, r *http.Request) {
	className, err := classParam(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("class", "Class name is not a valid path segment"))
		return
	}
	if className == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("class", "Class name is required"))
		return
	}

	result, ok := h.consolidate(w, r)
	if !ok {
		return
	}

	view, found := result.Class(className)
	if !found {
		h.errorHandler.HandleError(w, r, apierrors.ClassNotFoundError(className))
		return
	}

	data, err := h.service.ClassWorkbook(r.Context(), result, className)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeAttachment(w, r, view.Filename, config.XLSXContentType, data)
}

// consolidate reads the form and runs the consolidation. When ok is false
// the error response has been written.
func (h *ReportHandler) consolidate(w http.ResponseWriter, r *http.Request) (*services.Result, bool) {
	reqID := middleware.GetReqID(r.Context())

	uploads, ok := h.readUploads(w, r)
	if !ok {
		return nil, false
	}
	params, ok := h.readParams(w, r)
	if !ok {
		return nil, false
	}

	h.logger.InfoContext(r.Context(), "consolidating uploads",
		slog.String("request_id", reqID),
		slog.Int("files", len(uploads)),
		slog.Float64("scale_percent", params.ScalePercent))

	result, err := h.service.Consolidate(r.Context(), uploads, params)
	if err != nil {
		h.logger.WarnContext(r.Context(), "consolidation failed",
			slog.String("request_id", reqID),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return result, true
}

func (h *ReportHandler) readUploads(w http.ResponseWriter, r *http.Request) ([]services.Upload, bool) {
	if err := r.ParseMultipartForm(config.MultipartMemoryBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return nil, false
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[FormFiles]
	meta := make([]validation.Upload, len(headers))
	for i, fh := range headers {
		meta[i] = validation.Upload{Name: fh.Filename, Size: fh.Size}
	}
	if err := h.service.ValidateUploads(meta); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		data, err := readFormFile(fh)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return nil, false
		}
		uploads = append(uploads, services.Upload{Name: fh.Filename, Data: data})
	}
	return uploads, true
}

func (h *ReportHandler) readParams(w http.ResponseWriter, r *http.Request) (services.Params, bool) {
	params := h.service.DefaultParams()
	fields := []struct {
		name string
		dst  *float64
	}{
		{FormScalePercent, &params.ScalePercent},
		{FormScaledThreshold, &params.ScaledThreshold},
		{FormAccThreshold, &params.AccThreshold},
	}
	for _, f := range fields {
		v, ok := h.params.ValidateFloat(w, r, f.name, config.MinScalePercent, config.MaxScalePercent, *f.dst)
		if !ok {
			return params, false
		}
		*f.dst = v
	}
	return params, true
}

// classParam returns the decoded {class} segment. chi matches against
// RawPath when the request carried escapes Path cannot represent, and the
// segment is still escaped only in that case.
func classParam(r *http.Request) (string, error) {
	className := chi.URLParam(r, "class")
	if r.URL.RawPath == "" {
		return className, nil
	}
	return url.PathUnescape(className)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return data, nil
}

func (h *ReportHandler) writeAttachment(w http.ResponseWriter, r *http.Request, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write report",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(r.Context(), "report sent",
		slog.String("filename", filename),
		slog.Int("bytes", len(data)))
}
