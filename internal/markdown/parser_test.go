package markdown

import (
	"strings"
	"testing"

	"github.com/CodeDriverTech/wechat-blog/internal/templates"
)

// testSet returns a fragment set with compact marker templates so tests can
// assert exact output traces.
func testSet() *templates.Set {
	return &templates.Set{
		Root:         templates.Template{Name: "root", Text: "[B:{content}]"},
		Text:         templates.Template{Name: "text", Text: "[T:{content}]"},
		Heading1:     templates.Template{Name: "h1", Text: "[H1:{index}:{title}]"},
		Heading2:     templates.Template{Name: "h2", Text: "[H2:{title}]"},
		Quote:        templates.Template{Name: "quote", Text: "[Q:{content}]"},
		Image:        templates.Template{Name: "img", Text: "[IMG]"},
		Divider:      templates.Template{Name: "hr", Text: "[HR]"},
		Blank:        templates.Template{Name: "blank", Text: "[NL]"},
		BannerTop:    templates.Template{Name: "top", Text: "[TOP]"},
		BannerBottom: templates.Template{Name: "bottom", Text: "[BOT]"},
		Terminator:   templates.Template{Name: "end", Text: "[END]"},
	}
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty input has zero lines", "", nil},
		{"single trailing newline dropped", "a\n", []string{"a"}},
		{"lone newline is one blank line", "\n", []string{""}},
		{"interior blank kept", "a\n\nb", []string{"a", "", "b"}},
		{"crlf normalized", "a\r\nb\rc", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := splitLines(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitLines(%q) = %q, want %q", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("splitLines(%q) = %q, want %q", tt.input, got, tt.want)
				}
			}
		})
	}
}

func TestRender_FragmentSequenceTrace(t *testing.T) {
	t.Parallel()

	// The canonical trace: heading opens section 1 with the top banner; each
	// blank line seals a section; the divider is a top-level fragment; the
	// final section carries the bottom banner before the terminator.
	got := New(testSet()).Render("# Title\n\nHello\n\n---\n\nWorld")
	want := "[B:[TOP][H1:01:Title][NL]][B:[T:Hello][NL]][HR][B:[T:World][BOT]][END]"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_EmptyInputEmitsTerminatorAlone(t *testing.T) {
	t.Parallel()

	if got := New(testSet()).Render(""); got != "[END]" {
		t.Errorf("Render(\"\") = %q, want %q", got, "[END]")
	}
}

func TestRender_SingleBlankLineGetsBothBanners(t *testing.T) {
	t.Parallel()

	// One blank line is not the empty document: the EOF path still opens the
	// banner-bearing section.
	if got := New(testSet()).Render("\n"); got != "[B:[TOP][BOT]][END]" {
		t.Errorf("Render(\"\\n\") = %q, want %q", got, "[B:[TOP][BOT]][END]")
	}
}

func TestRender_BlankLineSplitsSections(t *testing.T) {
	t.Parallel()

	got := New(testSet()).Render("one\n\ntwo")
	want := "[B:[TOP][T:one][NL]][B:[T:two][BOT]][END]"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_HeadingCounter(t *testing.T) {
	t.Parallel()

	t.Run("increments per h1 and zero-pads", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("# A\n# B\n## C\n# D")
		for _, want := range []string{"[H1:01:A]", "[H1:02:B]", "[H2:C]", "[H1:03:D]"} {
			if !strings.Contains(got, want) {
				t.Errorf("Render() = %q, missing %q", got, want)
			}
		}
	})

	t.Run("no headings, no counter", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("plain text\n\nmore text")
		if strings.Contains(got, "[H1:") {
			t.Errorf("Render() = %q, should not contain a heading fragment", got)
		}
	})

	t.Run("fresh converter state per call", func(t *testing.T) {
		t.Parallel()
		c := New(testSet())
		c.Render("# A")
		got := c.Render("# B")
		if !strings.Contains(got, "[H1:01:B]") {
			t.Errorf("second Render() = %q, counter should restart at 01", got)
		}
	})
}

func TestRender_HashWithoutSpaceIsParagraph(t *testing.T) {
	t.Parallel()

	got := New(testSet()).Render("#nospace")
	if !strings.Contains(got, "[T:#nospace]") {
		t.Errorf("Render() = %q, want literal paragraph", got)
	}
}

func TestRender_Divider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"dashes", "---"},
		{"asterisks", "***"},
		{"long dashes", "-----"},
		{"mixed tail", "--- ---"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := New(testSet()).Render("a\n" + tt.input + "\nb")
			want := "[B:[TOP][T:a]][HR][B:[T:b][BOT]][END]"
			if got != want {
				t.Errorf("Render() = %q, want %q", got, want)
			}
		})
	}
}

func TestRender_LeadingDividerStillGetsTopBanner(t *testing.T) {
	t.Parallel()

	got := New(testSet()).Render("---\ntext")
	want := "[HR][B:[TOP][T:text][BOT]][END]"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_BlockquoteRunMerges(t *testing.T) {
	t.Parallel()

	got := New(testSet()).Render("> first\n> second\n>third")
	if !strings.Contains(got, "[Q:first<br>second<br>third]") {
		t.Errorf("Render() = %q, want merged quote", got)
	}
}

func TestRender_BlockquoteEscapesOnly(t *testing.T) {
	t.Parallel()

	got := New(testSet()).Render("> a <b> & *c*")
	if !strings.Contains(got, "[Q:a &lt;b&gt; &amp; *c*]") {
		t.Errorf("Render() = %q, quote content should be escaped, not inline-rendered", got)
	}
}

func TestRender_FencedCode(t *testing.T) {
	t.Parallel()

	t.Run("round trip with internal blank line", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("```go\nfunc main() {\n\n}\n```")
		want := `[T:code:func main() {\n\n}]`
		if !strings.Contains(got, want) {
			t.Errorf("Render() = %q, missing %q", got, want)
		}
	})

	t.Run("backslashes doubled before newline escape", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("```\na\\b\n```")
		if !strings.Contains(got, `[T:code:a\\b]`) {
			t.Errorf("Render() = %q, want doubled backslash", got)
		}
	})

	t.Run("code body is escaped not inline rendered", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("```\n<b>*x*</b>\n```")
		if !strings.Contains(got, "[T:code:&lt;b&gt;*x*&lt;/b&gt;]") {
			t.Errorf("Render() = %q", got)
		}
	})

	t.Run("tilde fence", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("~~~\nx\n~~~")
		if !strings.Contains(got, "[T:code:x]") {
			t.Errorf("Render() = %q", got)
		}
	})

	t.Run("unterminated fence flushes remaining lines", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("```\na\nb")
		if !strings.Contains(got, `[T:code:a\nb]`) {
			t.Errorf("Render() = %q, unterminated fence body should not be dropped", got)
		}
	})

	t.Run("blank lines inside fence do not seal the section", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("```\na\n\nb\n```")
		if strings.Contains(got, "[NL]") {
			t.Errorf("Render() = %q, fence interior blank must not emit a blank fragment", got)
		}
	})
}

func TestRender_ImageLine(t *testing.T) {
	t.Parallel()

	t.Run("image template kept verbatim, URL discarded", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("![alt](https://example.com/x.png)")
		if !strings.Contains(got, "[IMG]") {
			t.Errorf("Render() = %q, want image fragment", got)
		}
		if strings.Contains(got, "example.com") {
			t.Errorf("Render() = %q, parsed URL must not appear in output", got)
		}
	})

	t.Run("one fragment per line with two images", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("![a](u1) ![b](u2)")
		if strings.Count(got, "[IMG]") != 1 {
			t.Errorf("Render() = %q, want exactly one image fragment", got)
		}
	})

	t.Run("leftover text renders after image", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("![a](u) **after**")
		if !strings.Contains(got, "[IMG][T:<strong>after</strong>]") {
			t.Errorf("Render() = %q", got)
		}
	})
}

func TestRender_ParagraphMerging(t *testing.T) {
	t.Parallel()

	t.Run("contiguous lines merge with newline", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("line one\nline two")
		if !strings.Contains(got, "[T:line one\nline two]") {
			t.Errorf("Render() = %q", got)
		}
	})

	t.Run("merging stops before a heading", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("text\n# Head")
		if !strings.Contains(got, "[T:text]][B:[H1:01:Head]") {
			t.Errorf("Render() = %q", got)
		}
	})

	t.Run("pipe line without separator stays a paragraph", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("a | b")
		if !strings.Contains(got, "[T:a | b]") {
			t.Errorf("Render() = %q", got)
		}
	})
}

func TestRender_ListAndTableDelegation(t *testing.T) {
	t.Parallel()

	t.Run("list run lands inside the section", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("- a\n- b")
		if !strings.Contains(got, "<ul") || !strings.Contains(got, "</ul>") {
			t.Errorf("Render() = %q, want list markup", got)
		}
		if !strings.HasPrefix(got, "[B:[TOP]<ul") {
			t.Errorf("Render() = %q, list should open the banner-bearing section", got)
		}
	})

	t.Run("table run lands inside the section", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("| a | b |\n| --- | --- |\n| 1 | 2 |")
		if !strings.Contains(got, "<table>") {
			t.Errorf("Render() = %q, want table markup", got)
		}
	})
}

func TestRender_HeadingSealsOpenSection(t *testing.T) {
	t.Parallel()

	t.Run("heading after text restarts the section", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("Hello\n# Title")
		want := "[B:[TOP][T:Hello]][B:[H1:01:Title][BOT]][END]"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("h2 restarts too", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("Hello\n## Sub")
		want := "[B:[TOP][T:Hello]][B:[H2:Sub][BOT]][END]"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("following text joins the heading's section", func(t *testing.T) {
		t.Parallel()
		got := New(testSet()).Render("# A\ntext")
		want := "[B:[TOP][H1:01:A][T:text][BOT]][END]"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})
}
