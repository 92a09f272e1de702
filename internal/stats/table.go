package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column is one aligned text column.
type column struct {
	width   int
	numeric bool
}

// alignColumns lays headers and rows out as space-separated columns sized to
// their widest cell. Columns listed in numeric are right-aligned. Trailing
// blanks are dropped from every line.
func alignColumns(headers []string, rows [][]string, numeric ...int) []string {
	cols := measure(headers, rows)
	if len(cols) == 0 {
		return nil
	}
	for _, idx := range numeric {
		if idx >= 0 && idx < len(cols) {
			cols[idx].numeric = true
		}
	}

	out := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		out = append(out, joinCells(cols, headers))
	}
	for _, row := range rows {
		out = append(out, joinCells(cols, row))
	}
	return out
}

func measure(headers []string, rows [][]string) []column {
	var cols []column
	grow := func(cells []string) {
		for i, cell := range cells {
			if i >= len(cols) {
				cols = append(cols, column{})
			}
			cols[i].width = max(cols[i].width, runewidth.StringWidth(cell))
		}
	}
	grow(headers)
	for _, row := range rows {
		grow(row)
	}
	return cols
}

func joinCells(cols []column, cells []string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if col.numeric {
			parts[i] = runewidth.FillLeft(cell, col.width)
		} else {
			parts[i] = runewidth.FillRight(cell, col.width)
		}
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}
