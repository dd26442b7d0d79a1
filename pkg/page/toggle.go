package page

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ToggleController flips annotations between revealed and original. A
// document has exactly one, attached at document level: it resolves any
// interaction target to its enclosing annotation.
type ToggleController struct {
	mu sync.Mutex
	// OnToggle, if set, observes every flip with the new state.
	OnToggle func(Annotation)
}

// Handle toggles the annotation that contains target. Targets outside any
// annotation are ignored.
func (c *ToggleController) Handle(target *html.Node) (Annotation, bool) {
	n := closestAnnotation(target)
	if n == nil {
		return Annotation{}, false
	}

	c.mu.Lock()
	a, _ := AnnotationFromNode(n)
	if a.State == Revealed {
		a.State = Original
	} else {
		a.State = Revealed
	}
	applyState(n, a)
	c.mu.Unlock()

	if c.OnToggle != nil {
		c.OnToggle(a)
	}
	return a, true
}

// HandleID toggles the annotation with the given id.
func (c *ToggleController) HandleID(d *Document, id string) (Annotation, bool) {
	var target *html.Node
	d.Find("span." + annotationClass).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, _ := s.Attr("data-annotation-id"); v == id {
			target = s.Nodes[0]
			return false
		}
		return true
	})
	if target == nil {
		return Annotation{}, false
	}
	return c.Handle(target)
}

func closestAnnotation(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hasClass(n, annotationClass) {
			return n
		}
	}
	return nil
}
