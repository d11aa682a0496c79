package markdown

import "strings"

// tableCellPrefix is the fixed WeChat editor markup wrapping data cells.
const (
	tableCellPrefix = `<section data-mpa-md-key="text" style="font-size: 15px;color: rgb(51, 51, 51);letter-spacing: 1px;" data-mpa-md-template="30005">`
	tableCellSuffix = `</section>`
)

// splitTableRow splits a pipe row into trimmed cells. Outer pipes are
// stripped; a backslash-escaped pipe is a literal pipe inside a cell.
func splitTableRow(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "|")
	if strings.HasSuffix(s, "|") && !strings.HasSuffix(s, `\|`) {
		s = s[:len(s)-1]
	}

	var cells []string
	var cell strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '|':
			cell.WriteByte('|')
			i++
		case s[i] == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(s[i])
		}
	}
	cells = append(cells, strings.TrimSpace(cell.String()))
	return cells
}

// isSeparatorRow reports whether cells form a header separator row:
// every cell only dashes and colons, with at least three dashes.
func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if strings.Trim(c, ":-") != "" {
			return false
		}
		if strings.Count(c, "-") < 3 {
			return false
		}
	}
	return true
}

// isTableStart reports whether lines[pos] begins a pipe table: a line
// containing a pipe whose next line is a separator row.
func isTableStart(lines []string, pos int) bool {
	if !strings.Contains(lines[pos], "|") {
		return false
	}
	if pos+1 >= len(lines) {
		return false
	}
	return isSeparatorRow(splitTableRow(lines[pos+1]))
}

// parseTableRun consumes the table starting at lines[start] and returns the
// rendered HTML plus the position after the run.
func parseTableRun(lines []string, start int) (string, int) {
	header := splitTableRow(lines[start])
	i := start + 2 // skip header and separator

	var rows [][]string
	for i < len(lines) && strings.Contains(lines[i], "|") && !isBlank(lines[i]) {
		rows = append(rows, splitTableRow(lines[i]))
		i++
	}

	return renderTable(header, rows), i
}

// renderTable renders header and data rows. The widest row defines the column
// count; shorter rows are padded with empty trailing cells. A nil header
// renders all rows as data rows.
func renderTable(header []string, rows [][]string) string {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	parts := []string{"<table>", "  <tbody>"}

	if header != nil {
		parts = append(parts, "    <tr>")
		for _, cell := range padRow(header, width) {
			parts = append(parts,
				"      <td>",
				"        <section>",
				`          <span leaf="">`+renderInline(cell)+"</span>",
				"        </section>",
				"      </td>")
		}
		parts = append(parts, "    </tr>")
	}

	for _, row := range rows {
		parts = append(parts, "    <tr>")
		for _, cell := range padRow(row, width) {
			parts = append(parts,
				"      <td>",
				"        <section>",
				"          "+tableCellPrefix,
				`            <span leaf="">`+renderInline(cell)+"</span>",
				"          "+tableCellSuffix,
				"        </section>",
				"      </td>")
		}
		parts = append(parts, "    </tr>")
	}

	parts = append(parts, "  </tbody>", "</table>")
	return strings.Join(parts, "\n")
}

// padRow extends a row to width cells with empty strings.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
