package exporter

import (
	"github.com/xuri/excelize/v2"

	"quizreport/internal/config"
)

// styleCache registers each distinct CellStyle with the workbook once
type styleCache struct {
	f   *excelize.File
	ids map[CellStyle]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, ids: make(map[CellStyle]int)}
}

func (c *styleCache) id(s CellStyle) (int, error) {
	if id, ok := c.ids[s]; ok {
		return id, nil
	}

	style := &excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	}
	if s.Fill != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#" + s.Fill},
		}
	}
	if s.Border {
		style.Border = thinBorder()
	}

	id, err := c.f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	c.ids[s] = id
	return id, nil
}

func thinBorder() []excelize.Border {
	color := "#" + config.BorderColor
	return []excelize.Border{
		{Type: "left", Color: color, Style: 1},
		{Type: "top", Color: color, Style: 1},
		{Type: "right", Color: color, Style: 1},
		{Type: "bottom", Color: color, Style: 1},
	}
}
