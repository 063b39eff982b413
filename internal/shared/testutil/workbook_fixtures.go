package testutil

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ParticipantSheet is the sheet name quiz exports use for attempt rows
const ParticipantSheet = "Participant Data"

// ParticipantHeader mirrors a quiz export header, including columns the
// consolidation ignores.
var ParticipantHeader = []string{"First Name", "Last Name", "Email", "Class Name", "Score", "Accuracy"}

// Participant is one attempt row of a quiz export
type Participant struct {
	FirstName string
	LastName  string
	ClassName string
	Accuracy  any
}

// ParticipantWorkbook builds an in-memory quiz export holding the given attempts
func ParticipantWorkbook(t testing.TB, participants ...Participant) []byte {
	t.Helper()

	rows := make([][]any, 0, len(participants))
	for _, p := range participants {
		rows = append(rows, []any{p.FirstName, p.LastName, "", p.ClassName, "", p.Accuracy})
	}
	return Workbook(t, ParticipantSheet, ParticipantHeader, rows)
}

// Workbook builds an in-memory xlsx file with one sheet
func Workbook(t testing.TB, sheet string, header []string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		t.Fatalf("write header: %v", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("write row %d: %v", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("encode workbook: %v", err)
	}
	return buf.Bytes()
}

// OpenWorkbook opens rendered xlsx bytes for assertions
func OpenWorkbook(t testing.TB, data []byte) *excelize.File {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}
