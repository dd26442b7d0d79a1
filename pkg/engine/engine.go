// Package engine owns a built dictionary together with the annotation budget
// for one page, and rebuilds both when the configuration changes.
package engine

import (
	"math/rand/v2"

	"github.com/japaniel/wordweave/pkg/dictionary"
	"github.com/japaniel/wordweave/pkg/gloss"
)

const (
	DefaultMaxAnnotations = 50
	DefaultProbability    = 0.25
)

// Options parameterize an Engine.
type Options struct {
	// MaxAnnotations is the budget per page and dictionary load. <= 0 means the default.
	MaxAnnotations int
	// Probability that a candidate occurrence is annotated. <= 0 means the default.
	Probability float64
	// Contextual enables context scoring of multi-meaning entries.
	// When false the primary meaning is always used.
	Contextual bool
	// Rand drives acceptance. nil seeds a fresh source.
	Rand *rand.Rand
}

// DefaultOptions returns the stock budget, probability and contextual scoring.
func DefaultOptions() Options {
	return Options{
		MaxAnnotations: DefaultMaxAnnotations,
		Probability:    DefaultProbability,
		Contextual:     true,
	}
}

// Engine decides which occurrences get annotated. An Engine is used by one
// goroutine at a time; Fork gives each concurrent page its own.
type Engine struct {
	dict *dictionary.Dictionary
	opts Options
	rng  *rand.Rand
	used int
}

// New creates an Engine with a zero budget counter.
func New(dict *dictionary.Dictionary, opts Options) *Engine {
	if opts.MaxAnnotations <= 0 {
		opts.MaxAnnotations = DefaultMaxAnnotations
	}
	if opts.Probability <= 0 {
		opts.Probability = DefaultProbability
	}
	if opts.Probability > 1 {
		opts.Probability = 1
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	opts.Rand = nil
	return &Engine{dict: dict, opts: opts, rng: rng}
}

// Fork returns an Engine sharing e's dictionary and options with a fresh
// budget and its own random source.
func (e *Engine) Fork() *Engine {
	return New(e.dict, e.opts)
}

// Dictionary returns the dictionary the engine was built with.
func (e *Engine) Dictionary() *dictionary.Dictionary { return e.dict }

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Lookup reports whether word is a replacement candidate.
func (e *Engine) Lookup(word string) (*dictionary.Entry, bool) {
	return e.dict.Lookup(word)
}

// Exhausted reports whether the budget is used up. Once true, a pass stops.
func (e *Engine) Exhausted() bool {
	return e.used >= e.opts.MaxAnnotations
}

// Accept rolls for one candidate and consumes budget on success.
func (e *Engine) Accept() bool {
	if e.Exhausted() {
		return false
	}
	if e.rng.Float64() >= e.opts.Probability {
		return false
	}
	e.used++
	return true
}

// Used returns the number of annotations accepted so far.
func (e *Engine) Used() int { return e.used }

// Remaining returns the budget left.
func (e *Engine) Remaining() int { return e.opts.MaxAnnotations - e.used }

// Gloss picks the meaning to show for an accepted occurrence.
func (e *Engine) Gloss(entry *dictionary.Entry, context string) string {
	if !e.opts.Contextual {
		return entry.Primary()
	}
	return gloss.Choose(entry, context)
}
