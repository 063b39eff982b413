// Package exporter renders consolidated quiz tables as downloadable files.
//
// Renderer produces xlsx workbooks with excelize: a header row with an accent
// fill, the class column merged per contiguous class run, class color bands
// from a fixed palette and pass/fail fills on the total columns. The same
// code path serves the consolidated workbook and the per-class workbooks;
// a class workbook is a table with a single run.
//
// Styling is planned before anything is written. PlanLayout returns every
// fill, border and merge decision as plain data, which keeps rendering
// deterministic and lets tests check the layout without opening a workbook.
//
// CSVWriter exports the same table as UTF-8 CSV with a BOM for spreadsheet
// tools.
//
// Example usage:
//
//	renderer := exporter.NewRenderer(exporter.DefaultOptions(), logger)
//	data, err := renderer.RenderConsolidated(ctx, table)
//
//	class, _ := table.FilterClass("7A")
//	data, err = renderer.RenderClass(ctx, class)
//	name := exporter.ClassFilename("7A")
package exporter
