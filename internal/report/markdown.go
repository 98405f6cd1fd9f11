// Package report renders accumulated repository activity into markdown reports,
// template documents and spreadsheet exports.
package report

import (
	"strings"
	"unicode/utf8"
)

const minColumnWidth = 3

// Markdown renders rows as a GitHub flavoured markdown table. The first row is the header.
// Columns are padded to a common width and pipes inside cells are escaped.
func Markdown(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	columns := 0
	for _, row := range rows {
		columns = max(columns, len(row))
	}

	cells := make([][]string, len(rows))
	widths := make([]int, columns)
	for i := range widths {
		widths[i] = minColumnWidth
	}
	for i, row := range rows {
		cells[i] = make([]string, columns)
		for j := range columns {
			if j < len(row) {
				cells[i][j] = escapeCell(row[j])
			}
			widths[j] = max(widths[j], utf8.RuneCountInString(cells[i][j]))
		}
	}

	var b strings.Builder
	writeRow(&b, cells[0], widths)
	separator := make([]string, columns)
	for j, w := range widths {
		separator[j] = strings.Repeat("-", w)
	}
	writeRow(&b, separator, widths)
	for _, row := range cells[1:] {
		writeRow(&b, row, widths)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteString("|")
	for j, cell := range cells {
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[j]-utf8.RuneCountInString(cell)))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func escapeCell(cell string) string {
	cell = strings.ReplaceAll(cell, "\r\n", " ")
	cell = strings.ReplaceAll(cell, "\n", " ")
	return strings.ReplaceAll(cell, "|", `\|`)
}

// ImageField renders a small inline avatar.
func ImageField(label, url string) string {
	return `<img src="` + url + `" alt="` + label + `" width="12" height="12">`
}

// LinkField renders a markdown link.
func LinkField(label, url string) string {
	return "[" + label + "](" + url + ")"
}

// NumberField renders a "#number" markdown link to an issue or pull request.
func NumberField(number, url string) string {
	return LinkField("#"+number, url)
}
