package exporter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"quizreport/internal/config"
)

var classFileReplacer = strings.NewReplacer(
	" ", "_",
	"-", "_",
	"/", "_",
	`\`, "_",
	"º", "",
	"°", "",
)

// ClassFilename returns the download name of a class workbook,
// e.g. "7º Ano - A" becomes "7_Ano___A.xlsx".
func ClassFilename(className string) string {
	return classFileReplacer.Replace(className) + config.WorkbookExtension
}

// ClassFilenames returns one download name per class, in order. Classes whose
// names sanitise to the same file (ignoring case) get a numeric suffix, as
// does a class that would shadow the consolidated workbook.
func ClassFilenames(classNames []string) []string {
	taken := map[string]bool{strings.ToLower(config.ConsolidatedFileName): true}
	names := make([]string, len(classNames))
	for i, className := range classNames {
		name := ClassFilename(className)
		base := strings.TrimSuffix(name, config.WorkbookExtension)
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d%s", base, n, config.WorkbookExtension)
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

var sheetNameReplacer = strings.NewReplacer(
	"[", "_",
	"]", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"/", "_",
	`\`, "_",
)

// SheetName makes name a valid worksheet name: characters Excel rejects become
// "_" and the result is cut to the 31 character limit.
func SheetName(name string) string {
	name = sheetNameReplacer.Replace(name)
	if utf8.RuneCountInString(name) > config.MaxSheetNameLength {
		name = string([]rune(name)[:config.MaxSheetNameLength])
	}
	name = strings.Trim(name, "'")
	if strings.TrimSpace(name) == "" {
		return config.ConsolidatedSheetName
	}
	return name
}
