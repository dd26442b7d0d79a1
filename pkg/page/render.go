package page

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// State is the display state of an annotation.
type State string

const (
	// Revealed shows the script form above the phonetic form.
	Revealed State = "revealed"
	// Original shows the word as it appeared on the page.
	Original State = "original"
)

const (
	annotationClass = "ww-word"
	scriptClass     = "ww-script"
	phoneticClass   = "ww-phonetic"
)

// Annotation is one rendered occurrence.
type Annotation struct {
	ID           string
	Original     string
	ScriptForm   string
	PhoneticForm string
	Meaning      string
	State        State

	// Not rendered; kept for exposure history.
	Context    string
	SourceList string
}

// Render builds the annotation element for a, in a's state.
func Render(a Annotation) *html.Node {
	if a.State == "" {
		a.State = Revealed
	}
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr: []html.Attribute{
			{Key: "class", Val: annotationClass},
			{Key: "data-annotation-id", Val: a.ID},
			{Key: "data-original", Val: a.Original},
			{Key: "data-script", Val: a.ScriptForm},
			{Key: "data-phonetic", Val: a.PhoneticForm},
			{Key: "data-meaning", Val: a.Meaning},
		},
	}
	applyState(n, a)
	return n
}

// applyState replaces n's children and state attributes. The title always
// carries the chosen meaning.
func applyState(n *html.Node, a Annotation) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if a.State == Original {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: a.Original})
	} else {
		n.AppendChild(classedSpan(scriptClass, a.ScriptForm))
		n.AppendChild(classedSpan(phoneticClass, a.PhoneticForm))
	}
	setAttr(n, "data-state", string(a.State))
	setAttr(n, "title", a.Meaning)
}

func classedSpan(class, text string) *html.Node {
	s := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
	s.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return s
}

// AnnotationFromNode reads an annotation back from its rendered element.
func AnnotationFromNode(n *html.Node) (Annotation, bool) {
	if n == nil || n.Type != html.ElementNode || !hasClass(n, annotationClass) {
		return Annotation{}, false
	}
	a := Annotation{}
	a.ID, _ = attr(n, "data-annotation-id")
	a.Original, _ = attr(n, "data-original")
	a.ScriptForm, _ = attr(n, "data-script")
	a.PhoneticForm, _ = attr(n, "data-phonetic")
	a.Meaning, _ = attr(n, "data-meaning")
	state, _ := attr(n, "data-state")
	a.State = State(state)
	if a.State != Original {
		a.State = Revealed
	}
	return a, true
}

func isAnnotationPart(n *html.Node) bool {
	return hasClass(n, annotationClass) || hasClass(n, scriptClass) || hasClass(n, phoneticClass)
}
