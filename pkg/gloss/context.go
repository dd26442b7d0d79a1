// Package gloss picks which meaning of a multi-meaning entry fits the text
// around an occurrence.
package gloss

import (
	"strings"

	"github.com/japaniel/wordweave/pkg/tokenize"
)

// MaxContextSentences caps how many collected sentences form a context.
const MaxContextSentences = 3

// ExtractContext returns the lower-cased sentences around every whole-word
// occurrence of word in text: the matching sentence with its neighbours,
// truncated to MaxContextSentences overall.
func ExtractContext(text, word string) string {
	sentences := tokenize.Sentences(text)
	var picked []string
	for i, s := range sentences {
		if !tokenize.ContainsWord(s, word) {
			continue
		}
		if i > 0 {
			picked = append(picked, sentences[i-1])
		}
		picked = append(picked, s)
		if i < len(sentences)-1 {
			picked = append(picked, sentences[i+1])
		}
		if len(picked) >= MaxContextSentences {
			break
		}
	}
	if len(picked) > MaxContextSentences {
		picked = picked[:MaxContextSentences]
	}
	return strings.ToLower(strings.Join(picked, " "))
}
