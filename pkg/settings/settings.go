// Package settings holds the reader's configuration: which lists are
// selected and the personal word list. Changes are announced to subscribers.
package settings

import (
	"context"
	"sync"

	"github.com/japaniel/wordweave/pkg/dictionary"
)

// Setting keys, shared with the persisted store.
const (
	KeySelectedLists = "selectedLists"
	KeyPersonalWords = "savedPersonalWords"
)

// Provider returns the current configuration and reports changes to it.
type Provider interface {
	SelectedLists(ctx context.Context) ([]string, error)
	PersonalWords(ctx context.Context) ([]dictionary.Record, error)
	// Subscribe registers fn to run after every change. The returned func unregisters it.
	Subscribe(fn func()) (unsubscribe func())
}

// notifier fans change events out to subscribers.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

func (n *notifier) Subscribe(fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func())
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// notify calls subscribers outside the lock so they may read settings back.
func (n *notifier) notify() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Memory is a Provider kept in process memory.
type Memory struct {
	notifier
	mu       sync.RWMutex
	selected []string
	personal []dictionary.Record
}

// NewMemory creates a Memory provider with the given initial values.
func NewMemory(selected []string, personal []dictionary.Record) *Memory {
	return &Memory{selected: selected, personal: personal}
}

func (m *Memory) SelectedLists(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.selected...), nil
}

func (m *Memory) PersonalWords(context.Context) ([]dictionary.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]dictionary.Record(nil), m.personal...), nil
}

// Set replaces both values and notifies subscribers.
func (m *Memory) Set(selected []string, personal []dictionary.Record) {
	m.mu.Lock()
	m.selected = selected
	m.personal = personal
	m.mu.Unlock()
	m.notify()
}
