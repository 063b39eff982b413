package exporter

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"quizreport/internal/config"
	apperrors "quizreport/internal/errors"
	"quizreport/internal/shared/testutil"
)

func mergeAxes(t *testing.T, f *excelize.File, sheet string) [][2]string {
	t.Helper()
	merges, err := f.GetMergeCells(sheet)
	require.NoError(t, err)

	var axes [][2]string
	for _, m := range merges {
		axes = append(axes, [2]string{m.GetStartAxis(), m.GetEndAxis()})
	}
	return axes
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func cellStyle(t *testing.T, f *excelize.File, sheet, cell string) int {
	t.Helper()
	id, err := f.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	return id
}

func TestRenderer_RenderConsolidated(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	renderer := NewRenderer(DefaultOptions(), logger)

	data, err := renderer.RenderConsolidated(context.Background(), scaledTable())
	require.NoError(t, err)

	f := testutil.OpenWorkbook(t, data)
	sheet := config.ConsolidatedSheetName
	assert.Equal(t, []string{sheet}, f.GetSheetList())

	header, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, header, 5)
	assert.Equal(t, []string{
		"Class Name", "Name", "ACC Total", "ACC Total per 50%",
		"Acc-Quiz1", "Tentativa-Quiz1", "Acc-Quiz2", "Tentativa-Quiz2",
	}, header[0])

	// excelize reports the merged value for every cell of A2:A4
	assert.Equal(t, "7A", cellValue(t, f, sheet, "A2"))
	assert.Equal(t, "7B", cellValue(t, f, sheet, "A5"))
	assert.Equal(t, "Ana Silva", cellValue(t, f, sheet, "B2"))
	assert.Equal(t, "59.99", cellValue(t, f, sheet, "C3"))
	assert.Equal(t, "2", cellValue(t, f, sheet, "H2"))

	// one merge for the three 7A rows; 7B has a single row
	assert.Equal(t, [][2]string{{"A2", "A4"}}, mergeAxes(t, f, sheet))

	for col, want := range map[string]float64{"A": 90, "B": 50, "C": 20, "H": 20} {
		width, err := f.GetColWidth(sheet, col)
		require.NoError(t, err)
		assert.Equal(t, want, width, "column %s", col)
	}

	assert.Equal(t, cellStyle(t, f, sheet, "C2"), cellStyle(t, f, sheet, "C5"), "both passing")
	assert.NotEqual(t, cellStyle(t, f, sheet, "C2"), cellStyle(t, f, sheet, "C3"), "pass and fail differ")
	assert.NotEqual(t, cellStyle(t, f, sheet, "B2"), cellStyle(t, f, sheet, "B5"), "class bands differ")
	assert.Equal(t, cellStyle(t, f, sheet, "B2"), cellStyle(t, f, sheet, "E4"), "same class band")
}

func TestRenderer_RenderClass(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	renderer := NewRenderer(DefaultOptions(), logger)

	class, ok := scaledTable().FilterClass("7A")
	require.True(t, ok)

	data, err := renderer.RenderClass(context.Background(), class)
	require.NoError(t, err)

	f := testutil.OpenWorkbook(t, data)
	assert.Equal(t, []string{"7A"}, f.GetSheetList())
	assert.Equal(t, [][2]string{{"A2", "A4"}}, mergeAxes(t, f, "7A"))
}

func TestRenderer_RenderClassLongName(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	renderer := NewRenderer(DefaultOptions(), logger)

	long := "Matemática Avançada 7º Ano Turma da Manhã"
	data, err := renderer.RenderClass(context.Background(), tableOf(long))
	require.NoError(t, err)

	f := testutil.OpenWorkbook(t, data)
	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	assert.Equal(t, config.MaxSheetNameLength, utf8.RuneCountInString(sheets[0]))
	assert.Equal(t, string([]rune(long)[:config.MaxSheetNameLength]), sheets[0])
	assert.Empty(t, mergeAxes(t, f, sheets[0]), "single row is not merged")
}

func TestRenderer_RenderClassErrors(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	renderer := NewRenderer(DefaultOptions(), logger)

	_, err := renderer.RenderClass(context.Background(), tableOf("7A", "7B"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRenderContract))

	_, err = renderer.RenderClass(context.Background(), tableOf())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRenderContract))
}

func TestRenderer_EmptyConsolidated(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	data, err := NewRenderer(DefaultOptions(), logger).RenderConsolidated(context.Background(), tableOf())
	require.NoError(t, err)

	f := testutil.OpenWorkbook(t, data)
	rows, err := f.GetRows(config.ConsolidatedSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Class Name", rows[0][0])
}

func TestRenderer_CancelledContext(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer(DefaultOptions(), logger).RenderConsolidated(ctx, scaledTable())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderer_RepeatableStyling(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	renderer := NewRenderer(Options{AccThreshold: 60, ScaledThreshold: 20}, logger)
	table := tableOf("7A", "7A", "7B", "7C", "7C")

	first, err := renderer.RenderConsolidated(context.Background(), table)
	require.NoError(t, err)
	second, err := renderer.RenderConsolidated(context.Background(), table)
	require.NoError(t, err)

	a := testutil.OpenWorkbook(t, first)
	b := testutil.OpenWorkbook(t, second)
	sheet := config.ConsolidatedSheetName
	assert.Equal(t, mergeAxes(t, a, sheet), mergeAxes(t, b, sheet))

	for _, cell := range []string{"A1", "A2", "B3", "C2", "C6", "D4", "E5"} {
		assert.Equal(t, cellStyle(t, a, sheet, cell), cellStyle(t, b, sheet, cell), cell)
	}

	planA, err := renderer.plan(table)
	require.NoError(t, err)
	planB, err := renderer.plan(table)
	require.NoError(t, err)
	assert.Equal(t, planA, planB)
}
