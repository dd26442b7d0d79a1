package page

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxContextLevels bounds how far ContextText climbs from a text node.
const maxContextLevels = 3

var skippedParents = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Input:    true,
	atom.Textarea: true,
	atom.Select:   true,
	atom.Option:   true,
	atom.Button:   true,
	atom.Code:     true,
	atom.Pre:      true,
	atom.Noscript: true,
}

// TextNodes returns the candidate text nodes under root in document order.
// A text node is skipped when its parent element is a form control, code,
// script or style element, as is whitespace-only text. Elements nested inside
// those are still walked. Existing annotations are skipped entirely.
func TextNodes(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		skipText := n.Type == html.ElementNode && skippedParents[n.DataAtom]
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if !skipText && strings.TrimSpace(c.Data) != "" {
					out = append(out, c)
				}
			case html.ElementNode:
				if isAnnotationPart(c) {
					continue
				}
				walk(c)
			}
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// ContextText returns the text of the node's parent element, widened up to
// three times to an ancestor whose text is longer.
func ContextText(n *html.Node) string {
	cur := n
	if n.Type == html.TextNode && n.Parent != nil {
		cur = n.Parent
	}
	text := textContent(cur)
	for i := 0; i < maxContextLevels; i++ {
		parent := cur.Parent
		if parent == nil || parent.Type != html.ElementNode {
			break
		}
		pt := textContent(parent)
		if len(pt) <= len(text) {
			break
		}
		cur, text = parent, pt
	}
	return text
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
