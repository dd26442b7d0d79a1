// Package page is the only code that touches page structure: it walks the
// visible text of an HTML document, swaps accepted words for annotation
// elements and flips annotations when the reader interacts with them.
package page

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	//go:embed assets/toggle.js
	toggleScript string
	//go:embed assets/style.css
	annotationStyle string
)

// Document is a parsed page.
type Document struct {
	doc    *goquery.Document
	toggle *ToggleController
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("page: parse html: %w", err)
	}
	return &Document{doc: doc, toggle: &ToggleController{}}, nil
}

// ParseString parses an HTML string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.doc.Nodes[0]
}

// Body returns the <body> element, or the document node if there is none.
func (d *Document) Body() *html.Node {
	if body := d.doc.Find("body").First(); body.Length() > 0 {
		return body.Nodes[0]
	}
	return d.Root()
}

// Title returns the text of the first <title>.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Toggles returns the document's single interaction handler.
func (d *Document) Toggles() *ToggleController {
	return d.toggle
}

// Find runs a CSS selector over the document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// InjectAssets adds the annotation stylesheet and the document-level toggle
// listener to <head>. Calling it twice has no further effect.
func (d *Document) InjectAssets() {
	if d.doc.Find("script[data-wordweave]").Length() > 0 {
		return
	}
	head := d.doc.Find("head").First()
	if head.Length() == 0 {
		return
	}
	head.AppendNodes(
		rawElement(atom.Style, annotationStyle),
		rawElement(atom.Script, toggleScript),
	)
}

func rawElement(a atom.Atom, content string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     []html.Attribute{{Key: "data-wordweave", Val: "true"}},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: content})
	return n
}

// SetBase points relative links at base unless the page declares its own.
func (d *Document) SetBase(base string) {
	if d.doc.Find("base[href]").Length() > 0 {
		return
	}
	head := d.doc.Find("head").First()
	if head.Length() == 0 {
		return
	}
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Base,
		Data:     "base",
		Attr:     []html.Attribute{{Key: "href", Val: base}},
	}
	head.PrependNodes(n)
}

// HTML renders the whole document.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.Root()); err != nil {
		return "", fmt.Errorf("page: render: %w", err)
	}
	return buf.String(), nil
}
