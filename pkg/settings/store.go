package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/japaniel/wordweave/pkg/db"
	"github.com/japaniel/wordweave/pkg/dictionary"
)

// Store is a Provider persisted in the settings table.
type Store struct {
	notifier
	conn *sql.DB
	// mu serializes read-modify-write of the personal list.
	mu sync.Mutex
}

// NewStore creates a Store on an initialized database.
func NewStore(conn *sql.DB) *Store {
	return &Store{conn: conn}
}

func (s *Store) SelectedLists(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.get(ctx, KeySelectedLists, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) PersonalWords(ctx context.Context) ([]dictionary.Record, error) {
	var words []dictionary.Record
	if err := s.get(ctx, KeyPersonalWords, &words); err != nil {
		return nil, err
	}
	return words, nil
}

// SetSelectedLists saves the list selection and notifies subscribers.
func (s *Store) SetSelectedLists(ctx context.Context, ids []string) error {
	if err := s.put(ctx, KeySelectedLists, ids); err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetPersonalWords replaces the personal list and notifies subscribers.
func (s *Store) SetPersonalWords(ctx context.Context, words []dictionary.Record) error {
	s.mu.Lock()
	err := s.put(ctx, KeyPersonalWords, words)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// AddPersonalWord appends r unless a word with the same id is already saved.
// It reports whether the list changed.
func (s *Store) AddPersonalWord(ctx context.Context, r dictionary.Record) (bool, error) {
	return s.updatePersonal(ctx, func(words []dictionary.Record) ([]dictionary.Record, bool) {
		for _, w := range words {
			if w.ID == r.ID {
				return words, false
			}
		}
		return append(words, r), true
	})
}

// RemovePersonalWord drops the word with the given id.
func (s *Store) RemovePersonalWord(ctx context.Context, id int) (bool, error) {
	return s.updatePersonal(ctx, func(words []dictionary.Record) ([]dictionary.Record, bool) {
		out := words[:0]
		for _, w := range words {
			if w.ID != id {
				out = append(out, w)
			}
		}
		return out, len(out) != len(words)
	})
}

// ClearPersonalWords empties the personal list.
func (s *Store) ClearPersonalWords(ctx context.Context) error {
	return s.SetPersonalWords(ctx, []dictionary.Record{})
}

func (s *Store) updatePersonal(ctx context.Context, fn func([]dictionary.Record) ([]dictionary.Record, bool)) (bool, error) {
	s.mu.Lock()
	words, err := s.PersonalWords(ctx)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	words, changed := fn(words)
	if changed {
		err = s.put(ctx, KeyPersonalWords, words)
	}
	s.mu.Unlock()
	if err != nil {
		return false, err
	}
	if changed {
		s.notify()
	}
	return changed, nil
}

func (s *Store) get(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := db.GetSetting(s.conn, key)
	if errors.Is(err, db.ErrSettingNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("settings: decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("settings: encode %s: %w", key, err)
	}
	return db.PutSetting(s.conn, key, string(raw))
}
