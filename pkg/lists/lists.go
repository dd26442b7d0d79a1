// Package lists resolves word-list identifiers to parsed list content.
//
// A Resolver only knows how to fetch one list; the load order and the
// handling of failed lists belong to the engine.
package lists

import (
	"context"
	"errors"
	"fmt"

	"github.com/japaniel/wordweave/pkg/dictionary"
)

const (
	// PersonalID selects the personal override list.
	PersonalID = "personal"
	// DefaultListID is loaded when nothing is selected.
	DefaultListID = "hsk1"
)

var (
	// ErrUnknownList is returned for ids missing from the catalog.
	ErrUnknownList = errors.New("lists: unknown list id")
	// ErrNotFound is returned when a catalog list has no content at its location.
	ErrNotFound = errors.New("lists: list content not found")
)

// Resolver returns the parsed content of a list.
type Resolver interface {
	Resolve(ctx context.Context, id string) ([]dictionary.Record, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, id string) ([]dictionary.Record, error)

func (f ResolverFunc) Resolve(ctx context.Context, id string) ([]dictionary.Record, error) {
	return f(ctx, id)
}

// CatalogEntry names a base list and the relative file holding it.
type CatalogEntry struct {
	ID   string
	File string
}

// Catalog is the ordered set of base lists. Its order is the load order.
type Catalog []CatalogEntry

// DefaultCatalog lists HSK levels 1 to 6 in ascending order.
func DefaultCatalog() Catalog {
	c := make(Catalog, 0, 6)
	for level := 1; level <= 6; level++ {
		c = append(c, CatalogEntry{
			ID:   fmt.Sprintf("hsk%d", level),
			File: fmt.Sprintf("hsk/hsk-level-%d.json", level),
		})
	}
	return c
}

// File returns the relative file for id.
func (c Catalog) File(id string) (string, bool) {
	for _, e := range c {
		if e.ID == id {
			return e.File, true
		}
	}
	return "", false
}

// IDs returns all list ids in load order.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, e := range c {
		ids = append(ids, e.ID)
	}
	return ids
}

// Order returns the selected base lists in catalog order. Selected ids the
// catalog does not know are returned in unknown; PersonalID is in neither.
func (c Catalog) Order(selected []string) (ordered, unknown []string) {
	want := make(map[string]bool, len(selected))
	for _, id := range selected {
		want[id] = true
	}
	for _, e := range c {
		if want[e.ID] {
			ordered = append(ordered, e.ID)
			delete(want, e.ID)
		}
	}
	for _, id := range selected {
		if id != PersonalID && want[id] {
			unknown = append(unknown, id)
			delete(want, id)
		}
	}
	return ordered, unknown
}

// ResolveAll concatenates every catalog list in order. Lists that fail to
// resolve contribute nothing; their errors are returned joined alongside
// whatever did load.
func ResolveAll(ctx context.Context, r Resolver, c Catalog) ([]dictionary.Record, error) {
	var (
		all  []dictionary.Record
		errs []error
	)
	for _, e := range c {
		records, err := r.Resolve(ctx, e.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", e.ID, err))
			continue
		}
		all = append(all, records...)
	}
	return all, errors.Join(errs...)
}
