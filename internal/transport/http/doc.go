// Package http implements the HTTP handlers of the quiz report service.
// Handlers read the multipart upload form and delegate to the
// consolidation service; failures are answered as RFC 7807 problems.
//
// # Endpoints
//
//	GET  /api/health                  upload readiness and limits
//	GET  /api/health/live             liveness and uptime
//	GET  /api/version                 build information
//	POST /api/consolidate             consolidated table as JSON
//	POST /api/reports/consolidated    consolidated workbook
//	POST /api/reports/csv             consolidated table as CSV
//	POST /api/reports/classes/{class} one class's workbook
//	GET  /metrics                     Prometheus exposition
//
// Every POST endpoint takes the same form: one or more "files" parts
// holding .xlsx exports plus the optional scale_percent, scaled_threshold
// and acc_threshold fields.
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// ConsolidationServiceInterface.
package http
