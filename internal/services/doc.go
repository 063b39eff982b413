// Package services implements the business logic layer between the
// presenters (HTTP handlers, CLI commands) and the consolidation packages.
//
// ConsolidationService owns one run end to end: it parses the uploaded
// exports in upload order, joins them into a consolidated table, builds the
// per-class views and renders workbooks or CSV on demand. Each call works
// on its own Result; nothing is shared between requests.
//
// Usage:
//
//	svc := services.NewConsolidationService(cfg.Report, logger, metrics, tracer)
//	result, err := svc.Consolidate(ctx, uploads, services.Params{
//	    ScalePercent: 50,
//	    AccThreshold: 60,
//	})
//	data, err := svc.ClassWorkbook(ctx, result, "7A")
//
// Errors come from internal/errors: AppError for extraction and render
// failures, APIError for request problems such as a missing class.
package services
