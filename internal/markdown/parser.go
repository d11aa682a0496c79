// Package markdown converts the fixed Markdown subset used by the publishing
// workflow into WeChat-editor HTML. The dialect is exactly: h1/h2 headings,
// blockquotes, dividers, fenced code, images, nested ordered/unordered lists,
// pipe tables, and paragraphs with a small inline set. It is deliberately not
// a CommonMark parser: unknown syntax renders as literal paragraph text, and
// every malformed construct has a defined tolerant fallback, so conversion is
// total and never errors.
package markdown

import (
	"fmt"
	"strings"

	"github.com/CodeDriverTech/wechat-blog/internal/templates"
)

// Converter renders Markdown against one loaded fragment set.
// Safe for concurrent use: all scan state lives in a per-call parser value.
type Converter struct {
	tpl *templates.Set
}

// New creates a Converter for the given fragment set.
func New(set *templates.Set) *Converter {
	return &Converter{tpl: set}
}

// Render converts a Markdown document to the assembled HTML string.
func (c *Converter) Render(md string) string {
	p := &parser{tpl: c.tpl, lines: splitLines(md)}
	return p.run()
}

// parser holds the scan state for one conversion run. Heading counter and
// section flags are fields here, never globals, so repeated conversions in
// one process do not interact.
type parser struct {
	tpl   *templates.Set
	lines []string
	pos   int

	h1Count int

	parts         []string // sealed top-level fragments, in scan order
	section       []string // fragments of the open content block
	inSection     bool
	sectionOpened bool // whether any section was ever opened (top banner)
}

// openSection starts a content block if none is open. The very first section
// ever opened carries the top banner as its first fragment.
func (p *parser) openSection() {
	if p.inSection {
		return
	}
	p.section = nil
	if !p.sectionOpened {
		p.section = append(p.section, p.tpl.BannerTop.Text)
		p.sectionOpened = true
	}
	p.inSection = true
}

// sealSection renders the open content block into the root template and
// appends it to the output sequence.
func (p *parser) sealSection() {
	if !p.inSection {
		return
	}
	content := strings.Join(p.section, "")
	p.parts = append(p.parts, p.tpl.Root.Render(map[string]string{"content": content}))
	p.section = nil
	p.inSection = false
}

// append adds a rendered fragment to the current section, opening one first
// if needed.
func (p *parser) append(fragment string) {
	p.openSection()
	p.section = append(p.section, fragment)
}

func (p *parser) run() string {
	// Empty input still emits the terminator, and nothing else.
	if len(p.lines) == 0 {
		return p.tpl.Terminator.Text
	}

	var fence string // open fence marker, "" when outside a code block
	var codeLines []string

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]

		// Fenced code swallows everything until the matching close marker
		if fence != "" {
			if strings.HasPrefix(strings.TrimSpace(line), fence) {
				p.append(p.renderCode(codeLines))
				fence, codeLines = "", nil
			} else {
				codeLines = append(codeLines, line)
			}
			p.pos++
			continue
		}

		switch {
		case isBlank(line):
			// A blank line closes the open section; outside one it is a no-op
			if p.inSection {
				p.append(p.tpl.Blank.Text)
				p.sealSection()
			}
			p.pos++

		case reDivider.MatchString(line):
			p.sealSection()
			p.parts = append(p.parts, p.tpl.Divider.Text)
			p.pos++

		case fenceMarker(line) != "":
			fence = fenceMarker(line)
			codeLines = nil
			p.pos++

		case reImage.MatchString(line):
			// One image fragment per line; the template's placeholder image
			// is kept as-is, the parsed URL is intentionally discarded
			p.append(p.tpl.Image.Text)
			if rest := strings.TrimSpace(reImage.ReplaceAllString(line, "")); rest != "" {
				p.append(p.tpl.Text.Render(map[string]string{"content": renderInline(rest)}))
			}
			p.pos++

		case reHeading1.MatchString(line):
			// A heading restarts the section: any open one seals first
			m := reHeading1.FindStringSubmatch(line)
			p.sealSection()
			p.h1Count++
			p.append(p.tpl.Heading1.Render(map[string]string{
				"index": fmt.Sprintf("%02d", p.h1Count),
				"title": escapeHTML(strings.TrimSpace(m[1])),
			}))
			p.pos++

		case reHeading2.MatchString(line):
			m := reHeading2.FindStringSubmatch(line)
			p.sealSection()
			p.append(p.tpl.Heading2.Render(map[string]string{
				"title": escapeHTML(strings.TrimSpace(m[1])),
			}))
			p.pos++

		case reQuote.MatchString(line):
			p.append(p.renderQuoteRun())

		case isListItem(line):
			html, next := parseListRun(p.lines, p.pos)
			p.append(html)
			p.pos = next

		case isTableStart(p.lines, p.pos):
			html, next := parseTableRun(p.lines, p.pos)
			p.append(html)
			p.pos = next

		default:
			p.append(p.renderParagraphRun())
		}
	}

	// Unterminated fence: the collected lines are the code body, not dropped
	if fence != "" {
		p.append(p.renderCode(codeLines))
	}

	// The section open at end of scan carries the bottom banner; then the
	// terminator closes the document
	p.openSection()
	p.section = append(p.section, p.tpl.BannerBottom.Text)
	p.sealSection()
	p.parts = append(p.parts, p.tpl.Terminator.Text)

	return strings.Join(p.parts, "")
}

// renderCode renders collected fence lines through the text template with the
// literal "code:" prefix and \n escapes between the original lines.
func (p *parser) renderCode(codeLines []string) string {
	body := strings.Join(codeLines, "\n")
	body = strings.ReplaceAll(body, `\`, `\\`)
	body = strings.ReplaceAll(body, "\n", `\n`)
	return p.tpl.Text.Render(map[string]string{"content": escapeHTML("code:" + body)})
}

// renderQuoteRun merges the contiguous blockquote run starting at the current
// position: one marker and at most one following space stripped per line,
// lines escaped and joined with <br>.
func (p *parser) renderQuoteRun() string {
	var quoted []string
	for p.pos < len(p.lines) {
		m := reQuote.FindStringSubmatch(p.lines[p.pos])
		if m == nil {
			break
		}
		quoted = append(quoted, escapeHTML(m[1]))
		p.pos++
	}
	return p.tpl.Quote.Render(map[string]string{"content": strings.Join(quoted, "<br>")})
}

// renderParagraphRun merges contiguous plain text lines into one text
// fragment, stopping before any line that classifies as another block.
func (p *parser) renderParagraphRun() string {
	paras := []string{strings.TrimSpace(p.lines[p.pos])}
	p.pos++
	for p.pos < len(p.lines) {
		peek := p.lines[p.pos]
		if isBlank(peek) || reDivider.MatchString(peek) ||
			reHeading1.MatchString(peek) || reHeading2.MatchString(peek) ||
			reQuote.MatchString(peek) || isListItem(peek) ||
			strings.Contains(peek, "|") || fenceMarker(peek) != "" ||
			reImage.MatchString(peek) {
			break
		}
		paras = append(paras, strings.TrimSpace(peek))
		p.pos++
	}
	return p.tpl.Text.Render(map[string]string{"content": renderInline(strings.Join(paras, "\n"))})
}
