package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"expcalc/internal/dom"
)

// blockTags start on their own line.
var blockTags = map[string]bool{
	"div": true, "form": true, "h1": true, "h5": true,
	"ul": true, "li": true, "p": true,
}

// renderer draws a widget tree as terminal text. Inputs are replaced by the
// host's own views and the selected row is marked.
type renderer struct {
	inputs   map[string]string
	selected *html.Node
}

func (r *renderer) render(root *html.Node) string {
	return r.node(root)
}

func (r *renderer) node(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return n.Data
	case html.ElementNode:
	default:
		return ""
	}
	if dom.HasClass(n, "d-none") || dom.IsElement(n, "link") {
		return ""
	}
	if dom.IsElement(n, "input") {
		id, _ := dom.Attr(n, "id")
		return r.inputs[id]
	}

	var lines []string
	var inline []string
	flush := func() {
		if len(inline) > 0 {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Center, inline...))
			inline = nil
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out := r.node(c)
		if out == "" {
			continue
		}
		if c.Type == html.ElementNode && blockTags[c.Data] {
			flush()
			lines = append(lines, out)
			continue
		}
		if len(inline) > 0 {
			inline = append(inline, " ")
		}
		inline = append(inline, out)
	}
	flush()

	content := applyStyles(n, strings.Join(lines, "\n"))
	if dom.IsElement(n, "li") {
		if n == r.selected {
			return Styles.Selected.Render("› ") + content
		}
		return Styles.Row.Render("  ") + content
	}
	return content
}

// applyStyles renders content with the tag style and then each class style
// in markup order, so later classes wrap earlier ones.
func applyStyles(n *html.Node, content string) string {
	if s, ok := tagSheet[n.Data]; ok {
		content = s.Render(content)
	}
	for _, class := range dom.Classes(n) {
		if s, ok := classSheet[class]; ok {
			content = s.Render(content)
		}
	}
	return content
}
