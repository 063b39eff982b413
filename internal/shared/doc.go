// Package shared holds helpers used across quizreport packages.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and builders for in-memory quiz export workbooks.
package shared
