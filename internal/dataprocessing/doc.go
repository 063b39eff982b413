// Package dataprocessing turns quiz export workbooks into a consolidated
// per-student accuracy table.
//
// The pipeline has three steps:
//
//  1. Parser reads the "Participant Data" sheet of each export and groups
//     attempts per (class, student) into a SourceSummary with the best
//     accuracy and the attempt count.
//  2. Aggregator outer-joins the summaries in upload order, zero-fills
//     missing sources and derives ACC Total plus the optional scaled total.
//  3. ClassSummaries reports per-class ACC Total statistics.
//
// Usage:
//
//	parser := dataprocessing.NewParser(logger)
//	quiz1, err := parser.ParseFile("Quiz1-export.xlsx")
//	...
//	table, err := dataprocessing.NewAggregator(logger).Aggregate(
//	    []*domain.SourceSummary{quiz1, quiz2}, 50)
//
// Absence from a source counts as 0 accuracy in ACC Total. Changing that
// changes students' grades.
package dataprocessing
