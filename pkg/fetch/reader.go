package fetch

import (
	"fmt"
	"html"

	"github.com/go-shiori/go-readability"
)

// ReaderMode extracts the main article from p and returns it as a minimal
// standalone page, keeping the original URL.
func ReaderMode(p *Page) (*Page, error) {
	article, err := readability.FromReader(p.reader(), p.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch: extract article: %w", err)
	}

	title := html.EscapeString(article.Title)
	doc := fmt.Sprintf("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>%s</title></head><body><article><h1>%s</h1>%s</article></body></html>",
		title, title, article.Content)

	return &Page{
		URL:      p.URL,
		HTML:     []byte(doc),
		Title:    article.Title,
		SiteName: article.SiteName,
		Byline:   article.Byline,
	}, nil
}
