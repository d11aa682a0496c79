package markdown

import (
	"strings"
	"testing"
)

func TestSplitTableRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"outer pipes stripped", "| a | b |", []string{"a", "b"}},
		{"no outer pipes", "a | b", []string{"a", "b"}},
		{"empty cell kept", "| a |  | c |", []string{"a", "", "c"}},
		{"escaped pipe is literal", `| a \| b | c |`, []string{"a | b", "c"}},
		{"single cell", "| only |", []string{"only"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := splitTableRow(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitTableRow(%q) = %q, want %q", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("splitTableRow(%q) = %q, want %q", tt.input, got, tt.want)
				}
			}
		})
	}
}

func TestIsSeparatorRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain dashes", "| --- | --- |", true},
		{"alignment colons", "| :--- | ---: | :---: |", true},
		{"long dashes", "| ------ |", true},
		{"too few dashes", "| -- | --- |", false},
		{"text cell", "| --- | abc |", false},
		{"data row", "| 1 | 2 |", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isSeparatorRow(splitTableRow(tt.input)); got != tt.want {
				t.Errorf("isSeparatorRow(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsTableStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  bool
	}{
		{"header then separator", []string{"| a | b |", "| --- | --- |"}, true},
		{"pipe line without separator", []string{"a | b", "more text"}, false},
		{"pipe line at end of input", []string{"| a | b |"}, false},
		{"no pipe at all", []string{"plain", "| --- |"}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isTableStart(tt.lines, 0); got != tt.want {
				t.Errorf("isTableStart(%q) = %v, want %v", tt.lines, got, tt.want)
			}
		})
	}
}

func TestParseTableRun(t *testing.T) {
	t.Parallel()

	t.Run("consumes rows until blank line", func(t *testing.T) {
		t.Parallel()
		lines := []string{
			"| h1 | h2 |",
			"| --- | --- |",
			"| a | b |",
			"| c | d |",
			"",
			"after",
		}
		_, next := parseTableRun(lines, 0)
		if next != 4 {
			t.Errorf("parseTableRun consumed %d lines, want 4", next)
		}
	})

	t.Run("stops at line without pipe", func(t *testing.T) {
		t.Parallel()
		lines := []string{"| h |", "| --- |", "| a |", "plain"}
		html, next := parseTableRun(lines, 0)
		if next != 3 {
			t.Errorf("parseTableRun consumed %d lines, want 3", next)
		}
		if strings.Contains(html, "plain") {
			t.Errorf("table should not swallow the following paragraph:\n%s", html)
		}
	})
}

func TestRenderTable_Structure(t *testing.T) {
	t.Parallel()

	lines := []string{
		"| Name | Role |",
		"| --- | --- |",
		"| Ana | admin |",
		"| Bo | viewer |",
	}
	html, _ := parseTableRun(lines, 0)
	doc := parseFragment(t, html)

	if n := doc.Find("table > tbody > tr").Length(); n != 3 {
		t.Fatalf("tr count = %d, want 3 (header plus two data rows)", n)
	}
	if n := doc.Find("tr").First().Find("td").Length(); n != 2 {
		t.Errorf("header td count = %d, want 2", n)
	}

	// Header cells carry a plain span; data cells get the editor text section.
	header := doc.Find("tr").First()
	if n := header.Find("section[data-mpa-md-key]").Length(); n != 0 {
		t.Errorf("header cells should not carry editor markup, found %d", n)
	}
	data := doc.Find("tr").Eq(1)
	if n := data.Find(`section[data-mpa-md-key="text"]`).Length(); n != 2 {
		t.Errorf("data row editor sections = %d, want 2", n)
	}
	if got := data.Find("td").First().Find("span").Text(); got != "Ana" {
		t.Errorf("first data cell = %q, want %q", got, "Ana")
	}
}

func TestRenderTable_ShortRowsPadded(t *testing.T) {
	t.Parallel()

	lines := []string{
		"| a | b | c |",
		"| --- | --- | --- |",
		"| 1 |",
	}
	html, _ := parseTableRun(lines, 0)
	doc := parseFragment(t, html)

	// The widest row defines the width; the short data row pads to three cells.
	if n := doc.Find("tr").Eq(1).Find("td").Length(); n != 3 {
		t.Errorf("padded data row td count = %d, want 3", n)
	}
}

func TestRenderTable_WidestDataRowWins(t *testing.T) {
	t.Parallel()

	lines := []string{
		"| a |",
		"| --- |",
		"| 1 | 2 | 3 |",
	}
	html, _ := parseTableRun(lines, 0)
	doc := parseFragment(t, html)

	if n := doc.Find("tr").First().Find("td").Length(); n != 3 {
		t.Errorf("header row td count = %d, want 3 (padded to widest data row)", n)
	}
}

func TestRenderTable_CellInlineRendering(t *testing.T) {
	t.Parallel()

	lines := []string{
		"| h |",
		"| --- |",
		"| **bold** |",
	}
	html, _ := parseTableRun(lines, 0)
	doc := parseFragment(t, html)

	if n := doc.Find("td strong").Length(); n != 1 {
		t.Errorf("strong count in cells = %d, want 1:\n%s", n, html)
	}
}

func TestRenderTable_NilHeaderRendersDataRowsOnly(t *testing.T) {
	t.Parallel()

	doc := parseFragment(t, renderTable(nil, [][]string{{"a", "b"}}))

	if n := doc.Find("tr").Length(); n != 1 {
		t.Fatalf("tr count = %d, want 1", n)
	}
	if n := doc.Find(`section[data-mpa-md-key="text"]`).Length(); n != 2 {
		t.Errorf("data sections = %d, want 2", n)
	}
}
