package http

import (
	"context"

	"quizreport/internal/services"
	"quizreport/internal/validation"
)

// ConsolidationServiceInterface defines the operations the report handler needs
type ConsolidationServiceInterface interface {
	DefaultParams() services.Params
	ValidateUploads(uploads []validation.Upload) error
	Consolidate(ctx context.Context, uploads []services.Upload, params services.Params) (*services.Result, error)
	ConsolidatedWorkbook(ctx context.Context, result *services.Result) ([]byte, error)
	ClassWorkbook(ctx context.Context, result *services.Result, className string) ([]byte, error)
	CSV(ctx context.Context, result *services.Result) ([]byte, error)
}
