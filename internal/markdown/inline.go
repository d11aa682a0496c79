package markdown

import "strings"

// escapeHTML performs the minimal escaping needed to keep source text from
// breaking the surrounding fragment markup. Ampersand first, so the later
// entities are not double-escaped.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// renderInline converts a text span's inline Markdown into HTML: inline code,
// links, strong, emphasis. The input is escaped first, then scanned once left
// to right with simple non-overlapping delimiter matching; the first opening
// delimiter pairs with the next closing one, unmatched delimiters are emitted
// literally, and span interiors are not re-scanned.
func renderInline(s string) string {
	esc := escapeHTML(s)
	var b strings.Builder
	b.Grow(len(esc))

	i := 0
	for i < len(esc) {
		switch {
		case esc[i] == '`':
			if j := strings.IndexByte(esc[i+1:], '`'); j >= 0 {
				b.WriteString("<code>")
				b.WriteString(esc[i+1 : i+1+j])
				b.WriteString("</code>")
				i += j + 2
				continue
			}

		case esc[i] == '[':
			if text, url, n, ok := matchLink(esc[i:]); ok {
				b.WriteString(`<a href="`)
				b.WriteString(url)
				b.WriteString(`">`)
				b.WriteString(text)
				b.WriteString("</a>")
				i += n
				continue
			}

		case strings.HasPrefix(esc[i:], "**"):
			if j := strings.Index(esc[i+2:], "**"); j > 0 {
				b.WriteString("<strong>")
				b.WriteString(esc[i+2 : i+2+j])
				b.WriteString("</strong>")
				i += j + 4
				continue
			}

		case esc[i] == '*':
			if j := strings.IndexByte(esc[i+1:], '*'); j > 0 {
				b.WriteString("<em>")
				b.WriteString(esc[i+1 : i+1+j])
				b.WriteString("</em>")
				i += j + 2
				continue
			}
		}

		b.WriteByte(esc[i])
		i++
	}

	return b.String()
}

// matchLink matches a [text](url) span at the start of s.
// Returns the link text, URL, and the number of bytes consumed.
func matchLink(s string) (text, url string, n int, ok bool) {
	sep := strings.Index(s, "](")
	if sep < 0 {
		return "", "", 0, false
	}
	// Link text must not contain a closing bracket before "]("
	if strings.IndexByte(s[1:sep], ']') >= 0 {
		return "", "", 0, false
	}
	end := strings.IndexByte(s[sep+2:], ')')
	if end < 0 {
		return "", "", 0, false
	}
	text = s[1:sep]
	url = s[sep+2 : sep+2+end]
	if url == "" {
		return "", "", 0, false
	}
	return text, url, sep + 2 + end + 1, true
}
