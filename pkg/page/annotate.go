package page

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/japaniel/wordweave/pkg/dictionary"
	"github.com/japaniel/wordweave/pkg/gloss"
	"github.com/japaniel/wordweave/pkg/tokenize"
)

// Annotator decides which words are annotated and with which meaning.
// *engine.Engine implements it.
type Annotator interface {
	Lookup(word string) (*dictionary.Entry, bool)
	Exhausted() bool
	Accept() bool
	Gloss(entry *dictionary.Entry, context string) string
}

// Annotate walks the body text once, replacing accepted words with annotation
// elements. It stops as soon as the annotator's budget is spent.
func (d *Document) Annotate(a Annotator) []Annotation {
	var out []Annotation
	for _, tn := range TextNodes(d.Body()) {
		if a.Exhausted() {
			break
		}
		var (
			repl    []*html.Node
			pending strings.Builder
		)
		flush := func() {
			if pending.Len() > 0 {
				repl = append(repl, &html.Node{Type: html.TextNode, Data: pending.String()})
				pending.Reset()
			}
		}
		for _, f := range tokenize.Split(tn.Data) {
			if f.Word && !a.Exhausted() {
				if ann, ok := annotateWord(a, tn, f.Text); ok {
					flush()
					repl = append(repl, Render(ann))
					out = append(out, ann)
					continue
				}
			}
			pending.WriteString(f.Text)
		}
		if !containsElement(repl) {
			continue
		}
		flush()
		replaceNode(tn, repl)
	}
	return out
}

func annotateWord(a Annotator, tn *html.Node, word string) (Annotation, bool) {
	entry, ok := a.Lookup(word)
	if !ok || !a.Accept() {
		return Annotation{}, false
	}
	ctx := gloss.ExtractContext(ContextText(tn), word)
	return Annotation{
		ID:           uuid.NewString(),
		Original:     word,
		ScriptForm:   entry.ScriptForm,
		PhoneticForm: entry.PhoneticForm,
		Meaning:      a.Gloss(entry, ctx),
		State:        Revealed,
		Context:      ctx,
		SourceList:   entry.SourceList,
	}, true
}

func containsElement(nodes []*html.Node) bool {
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func replaceNode(old *html.Node, with []*html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	for _, n := range with {
		parent.InsertBefore(n, old)
	}
	parent.RemoveChild(old)
}
