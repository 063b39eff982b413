package exporter

import (
	"fmt"
	"strconv"
)

// formatFloat formats a float64 for CSV output with the shortest exact
// representation, so 85 prints as "85" and 33.33 as "33.33"
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatValue formats one table cell for CSV output
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return formatFloat(x)
	case int:
		return formatInt(x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
