package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizreport/internal/shared/testutil"
)

func TestNewErrorHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	handler := NewErrorHandler(logger, true)

	assert.NotNil(t, handler)
	assert.True(t, handler.includeStack)
	assert.NotNil(t, handler.logger)
	assert.Equal(t, "", handler.traceID(context.Background()))
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "missing column",
			err:        NewMissingColumnError("Quiz1.xlsx", "Accuracy"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeMissingColumn,
			wantCode:   "MISSING_COLUMN",
		},
		{
			name:       "wrapped parse error",
			err:        fmt.Errorf("extract: %w", NewAccuracyParseError("Quiz1.xlsx", 3, "x", nil)),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeInvalidValue,
			wantCode:   "PARSING",
		},
		{
			name:       "validation",
			err:        NewAppValidationError("scale_percent out of range"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   "VALIDATION",
		},
		{
			name:       "render contract",
			err:        NewRenderContractError("overlapping merge", nil),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeRenderContract,
			wantCode:   "RENDER_CONTRACT",
		},
		{
			name:       "storage",
			err:        NewStorageError("failed to write 5A.xlsx", errors.New("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantCode:   "STORAGE",
		},
		{
			name:       "api error",
			err:        ClassNotFoundError("7C"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeClassNotFound,
			wantCode:   "CLASS_NOT_FOUND",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "body too large",
			err:        errors.New("http: request body too large"),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false).WithTraceIDFunc(func(context.Context) string {
				return "trace-123"
			})

			req := httptest.NewRequest(http.MethodPost, "/api/consolidate", nil)
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/consolidate", body["instance"])
			assert.Equal(t, "trace-123", body["trace_id"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, handlerLog := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, rec.Body.Len())
	assert.Empty(t, handlerLog.Records())
}

func TestErrorHandler_SourceErrorsExposeContext(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)
	req := httptest.NewRequest(http.MethodPost, "/api/consolidate", nil)

	problem := handler.ErrorToProblem(NewMissingColumnError("Quiz1.xlsx", "Class Name"), req)
	ctx, ok := problem.Extensions["context"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Class Name", ctx["column"])

	problem = handler.ErrorToProblem(NewRenderContractError("bad run", nil).WithContext("run", 2), req)
	assert.NotContains(t, problem.Extensions, "context")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, handlerLog := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	rec := httptest.NewRecorder()
	handler.HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil), "kaboom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "kaboom", body["panic"])
	assert.NotEmpty(t, body["stack"])
	testutil.AssertLogContains(t, handlerLog, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/consolidate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "DELETE")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "", "/x").
		WithExtension("error_code", "VALIDATION")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "VALIDATION", body["error_code"])
	assert.Equal(t, "/x", body["instance"])
	assert.NotContains(t, body, "detail")
}
