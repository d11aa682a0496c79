package markdown

import (
	"regexp"
	"strings"
)

// Precompiled classification patterns.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Headings: h1 requires exactly one #, so the \s+ after it rejects ##
	reHeading1 = regexp.MustCompile(`^\s*#\s+(.*)$`)
	reHeading2 = regexp.MustCompile(`^\s*##\s+(.*)$`)

	// Blockquote marker with at most one following space stripped
	reQuote = regexp.MustCompile(`^\s*>\s?(.*)$`)

	// Divider: three dashes or asterisks, then any run of spaces/dashes/asterisks
	reDivider = regexp.MustCompile(`^\s*(?:-{3}|\*{3})[\s*-]*$`)

	// List items: captured groups are indent, marker, text
	reOrderedItem   = regexp.MustCompile(`^(\s*)(\d+)[.)]\s+(.*)$`)
	reUnorderedItem = regexp.MustCompile(`^(\s*)([-+*])\s+(.*)$`)

	// Image occurrence anywhere in the line
	reImage = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)
)

// splitLines splits a document into lines, normalizing \r\n and \r to \n.
// A single trailing newline does not produce a trailing empty line, and the
// empty document produces zero lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = crlfOrCR.ReplaceAllString(s, "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// isBlank returns true if the line is empty or whitespace only.
func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// fenceMarker returns the opening fence marker ("```" or "~~~") if the line
// starts one, or "" otherwise.
func fenceMarker(line string) string {
	stripped := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(stripped, "```") {
		return "```"
	}
	if strings.HasPrefix(stripped, "~~~") {
		return "~~~"
	}
	return ""
}

// isListItem returns true if the line is an ordered or unordered list item.
func isListItem(line string) bool {
	return reOrderedItem.MatchString(line) || reUnorderedItem.MatchString(line)
}

// indentDepth converts leading whitespace into a list nesting depth.
// Tabs count as 4 spaces; 2 spaces make one level; the top level is 1.
func indentDepth(indent string) int {
	spaces := len(strings.ReplaceAll(indent, "\t", "    "))
	return spaces/2 + 1
}
