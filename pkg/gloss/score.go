package gloss

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/wordweave/pkg/dictionary"
	"github.com/japaniel/wordweave/pkg/tokenize"
)

const (
	directMatchScore = 3
	categoryScore    = 2
	shortScore       = 1
	singleWordScore  = 0.5

	shortLimit = 10 // characters
	minMargin  = 1
)

// category ties context keywords to the translation words they favour.
// Substring triggers also fire inside longer words ("sometimes", "personal");
// the others need a whole context word.
type category struct {
	name      string
	triggers  []string
	members   []string
	substring bool
}

var categories = []category{
	{"time", []string{"time"}, []string{"time", "hour", "moment", "period"}, true},
	{"money", []string{"money"}, []string{"money", "cost", "price", "pay"}, true},
	{"person", []string{"person"}, []string{"person", "people", "man", "woman"}, true},
	{"food", []string{"eat", "food", "cook", "meal", "restaurant"}, []string{"eat", "food", "dish", "meal", "cook"}, false},
	{"work", []string{"work", "job", "office", "business"}, []string{"work", "job", "business", "office"}, false},
	{"travel", []string{"go", "come", "travel", "move"}, []string{"go", "come", "travel", "move", "arrive"}, false},
}

// Candidate is one scored translation.
type Candidate struct {
	Translation string
	Score       float64
}

// Score rates how well translation fits context. context is expected to be
// lower-case already, as produced by ExtractContext.
func Score(translation, context string) float64 {
	return newScorer(context).score(translation)
}

type scorer struct {
	fields map[string]bool
	active []category
}

func newScorer(context string) scorer {
	s := scorer{fields: make(map[string]bool)}
	for _, f := range strings.Fields(context) {
		s.fields[f] = true
	}
	words := make(map[string]bool)
	for _, w := range tokenize.Words(context) {
		words[strings.ToLower(w)] = true
	}
	for _, c := range categories {
		for _, t := range c.triggers {
			if words[t] || (c.substring && strings.Contains(context, t)) {
				s.active = append(s.active, c)
				break
			}
		}
	}
	return s
}

func (s scorer) score(translation string) float64 {
	var total float64
	words := strings.Fields(strings.ToLower(translation))
	for _, w := range words {
		if s.fields[w] {
			total += directMatchScore
		}
		for _, c := range s.active {
			if contains(c.members, w) {
				total += categoryScore
			}
		}
	}
	if utf8.RuneCountInString(translation) < shortLimit {
		total += shortScore
	}
	if len(words) == 1 {
		total += singleWordScore
	}
	return total
}

func contains(list []string, w string) bool {
	for _, v := range list {
		if v == w {
			return true
		}
	}
	return false
}

// Rank scores every translation of e against context, best first. Ties keep
// list order.
func Rank(e *dictionary.Entry, context string) []Candidate {
	s := newScorer(context)
	out := make([]Candidate, 0, len(e.Translations))
	for _, t := range e.Translations {
		out = append(out, Candidate{Translation: t, Score: s.score(t)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Choose returns the meaning of e that best fits context. Weak evidence (a
// zero top score, or a lead under one point) yields the primary meaning.
func Choose(e *dictionary.Entry, context string) string {
	if e == nil {
		return ""
	}
	if len(e.Translations) <= 1 {
		return e.Primary()
	}
	ranked := Rank(e, context)
	top := ranked[0]
	if top.Score == 0 || top.Score-ranked[1].Score < minMargin {
		return e.Primary()
	}
	return top.Translation
}
