package dictionary

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Entry is what a translation key resolves to. Entries are never mutated
// after Build returns.
type Entry struct {
	ScriptForm   string
	PhoneticForm string
	Translations []string
	SourceList   string
}

// Primary returns the first-listed meaning.
func (e *Entry) Primary() string {
	if e == nil || len(e.Translations) == 0 {
		return ""
	}
	return e.Translations[0]
}

// Dictionary maps normalized translations to entries.
// It is read-only once built and safe for concurrent lookups.
type Dictionary struct {
	index map[string]*Entry
	lists []string
}

// Normalize produces the lookup key form of s: NFC, trimmed, lower-cased.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// Build merges lists in the order given. For a key defined by several lists
// the entry from the list processed last wins.
func Build(lists ...List) *Dictionary {
	d := &Dictionary{index: make(map[string]*Entry)}
	for _, l := range lists {
		d.lists = append(d.lists, l.ID)
		for _, r := range l.Records {
			translations := cleanTranslations(r.Translations)
			if len(translations) == 0 {
				continue
			}
			entry := &Entry{
				ScriptForm:   r.ScriptForm,
				PhoneticForm: r.PhoneticForm,
				Translations: translations,
				SourceList:   l.ID,
			}
			for _, t := range translations {
				d.index[Normalize(t)] = entry
			}
		}
	}
	return d
}

// cleanTranslations drops blank translations, keeping order.
func cleanTranslations(in []string) []string {
	var out []string
	for _, t := range in {
		if Normalize(t) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Lookup finds the entry for a word, ignoring case and surrounding space.
func (d *Dictionary) Lookup(word string) (*Entry, bool) {
	if d == nil {
		return nil, false
	}
	e, ok := d.index[Normalize(word)]
	return e, ok
}

// Len returns the number of distinct keys.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.index)
}

// Lists returns the ids of the lists merged into d, in merge order.
func (d *Dictionary) Lists() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.lists...)
}
