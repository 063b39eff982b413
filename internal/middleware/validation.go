package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	apierrors "quizreport/internal/errors"
)

// ContentTypeValidator rejects bodies whose media type is not one of
// contentTypes. Bodiless methods pass through.
func ContentTypeValidator(errorHandler *apierrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				errorHandler.HandleError(w, r, apierrors.New(
					http.StatusBadRequest,
					"MISSING_CONTENT_TYPE",
					"Content-Type header is required",
				))
				return
			}

			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil {
				errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
				return
			}

			for _, allowed := range contentTypes {
				if strings.EqualFold(mediaType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE",
				"Unsupported content type",
				map[string]interface{}{
					"content_type": mediaType,
					"allowed":      contentTypes,
				},
			))
		})
	}
}

// FormParamValidator reads numeric form fields, answering with a problem
// response when one is malformed.
type FormParamValidator struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewFormParamValidator creates a new form parameter validator
func NewFormParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *FormParamValidator {
	return &FormParamValidator{
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// ValidateFloat returns the named form value parsed as a float within
// [min, max], or defaultValue when absent. The request form must already be
// parsed. On failure the error response is written and ok is false.
func (v *FormParamValidator) ValidateFloat(w http.ResponseWriter, r *http.Request, param string, min, max, defaultValue float64) (float64, bool) {
	raw := strings.TrimSpace(r.FormValue(param))
	if raw == "" {
		return defaultValue, true
	}

	value, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		v.logger.DebugContext(r.Context(), "invalid form parameter",
			slog.String("param", param),
			slog.String("value", raw))
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, "must be a number"))
		return 0, false
	}

	if value < min || value > max {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param,
			fmt.Sprintf("must be between %g and %g", min, max)))
		return 0, false
	}

	return value, true
}
