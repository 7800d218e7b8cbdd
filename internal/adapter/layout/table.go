package layout

import "strings"

// SerializeTable renders a table as canonical pipe-delimited markdown:
// first row, a mandatory "---" separator row, then the remaining rows.
// Header rows come before body rows. Literal pipes inside cells are escaped
// and newlines collapsed to spaces so the row structure survives. A table
// with no rows falls back to its raw text span; callers apply their own
// minimum-length check on the result.
func SerializeTable(t *Table, fullText string) string {
	rows := make([]TableRow, 0, len(t.HeaderRows)+len(t.BodyRows))
	rows = append(rows, t.HeaderRows...)
	rows = append(rows, t.BodyRows...)
	if len(rows) == 0 {
		return t.Anchor.ResolveText(fullText)
	}

	lines := make([]string, 0, len(rows)+1)
	columns := 1
	for i, row := range rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			text := cell.Anchor.ResolveText(fullText)
			text = strings.ReplaceAll(text, "|", `\|`)
			text = strings.ReplaceAll(text, "\n", " ")
			cells = append(cells, text)
		}
		if i == 0 && len(cells) > columns {
			columns = len(cells)
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}

	sep := make([]string, columns)
	for i := range sep {
		sep[i] = "---"
	}
	out := []string{lines[0], "| " + strings.Join(sep, " | ") + " |"}
	out = append(out, lines[1:]...)
	return strings.Join(out, "\n")
}
