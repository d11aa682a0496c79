package markdown

import "strings"

// List style cycles, matching the sample templates the editors maintain.
var (
	ulStyleTypes = []string{"disc", "square", "circle"}
	olStyleTypes = []string{"decimal", "lower-alpha", "lower-roman", "upper-alpha"}
)

// listNode is one list item. Children are the items nested under it;
// ordering is appearance order.
type listNode struct {
	ordered  bool
	text     string
	children []*listNode
}

// parseListRun consumes contiguous list lines starting at lines[start] and
// returns the rendered HTML plus the position after the run.
func parseListRun(lines []string, start int) (string, int) {
	var roots []*listNode
	var stack []*listNode // open nodes, stack[i] at depth i+1

	i := start
	for i < len(lines) {
		var indent, text string
		var ordered bool
		if m := reOrderedItem.FindStringSubmatch(lines[i]); m != nil {
			indent, text, ordered = m[1], m[3], true
		} else if m := reUnorderedItem.FindStringSubmatch(lines[i]); m != nil {
			indent, text, ordered = m[1], m[3], false
		} else {
			break
		}

		// Clamp over-deep indentation to one level past the deepest open node
		depth := indentDepth(indent)
		if depth > len(stack)+1 {
			depth = len(stack) + 1
		}
		stack = stack[:depth-1]

		node := &listNode{ordered: ordered, text: strings.TrimSpace(text)}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, node)
		}
		stack = append(stack, node)
		i++
	}

	return renderListLevel(roots, 1), i
}

// renderListLevel renders one sibling level. Consecutive same-kind siblings
// share a wrapper element; a kind switch at the same level closes the current
// wrapper and opens a new one. Child lists render inside the parent <li>.
func renderListLevel(nodes []*listNode, depth int) string {
	var b strings.Builder

	i := 0
	for i < len(nodes) {
		ordered := nodes[i].ordered
		j := i
		for j < len(nodes) && nodes[j].ordered == ordered {
			j++
		}

		tag := "ul"
		styleType := ulStyleTypes[(depth-1)%len(ulStyleTypes)]
		if ordered {
			tag = "ol"
			styleType = olStyleTypes[(depth-1)%len(olStyleTypes)]
		}
		b.WriteString("<" + tag + ` style="list-style-type: ` + styleType +
			`;padding-left: 1.2em;color: rgb(37, 37, 37);width: fit-content;" class="list-paddingleft-1">`)

		for _, node := range nodes[i:j] {
			b.WriteString("<li>")
			b.WriteString(listItemSection(node))
			if len(node.children) > 0 {
				b.WriteString(renderListLevel(node.children, depth+1))
			}
			b.WriteString("</li>")
		}

		b.WriteString("</" + tag + ">")
		i = j
	}

	return b.String()
}

// listItemSection wraps one item's inline-rendered text in the fixed WeChat
// editor item markup.
func listItemSection(node *listNode) string {
	key := "bullet-list"
	if node.ordered {
		key = "ordered-list"
	}
	return `<section style="margin-bottom: 8px;font-size: 15px;color:#333333;letter-spacing: 1px;" ` +
		`data-mpa-md-content="t" data-mpa-md-key="` + key + `" data-mpa-md-template="30005">` +
		`<span leaf="">` + renderInline(node.text) + `</span></section>`
}
