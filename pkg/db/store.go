package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSettingNotFound is returned by GetSetting for absent keys.
var ErrSettingNotFound = errors.New("db: setting not found")

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// GetSetting returns the raw value stored under key.
func GetSetting(db DBExecutor, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

// PutSetting stores value under key, replacing any previous value.
func PutSetting(db DBExecutor, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("setting key must be non-empty")
	}
	_, err := db.Exec(`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now())
	if err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

// CreateOrGetEntry returns the existing entry id or inserts a new entry and returns its id.
func CreateOrGetEntry(db DBExecutor, scriptForm, phoneticForm, sourceList string) (int64, error) {
	trimmed := strings.TrimSpace(scriptForm)
	if trimmed == "" {
		return 0, fmt.Errorf("script form must be non-empty")
	}

	var id int64
	query := `INSERT INTO entries (script_form, phonetic_form, source_list)
			  VALUES (?, ?, ?)
			  ON CONFLICT(script_form, phonetic_form)
			  DO UPDATE SET
			    source_list = COALESCE(NULLIF(excluded.source_list, ''), entries.source_list)
			  RETURNING id`

	err := db.QueryRow(query, trimmed, strings.TrimSpace(phoneticForm), sourceList).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert entry: %w", err)
	}
	return id, nil
}

// CreateOrGetPage returns the existing page id for url or inserts a new page and returns its id.
func CreateOrGetPage(db DBExecutor, url, title, host, siteName string) (int64, error) {
	trimmedURL := strings.TrimSpace(url)
	if trimmedURL == "" {
		return 0, fmt.Errorf("page url must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(`SELECT id FROM pages WHERE url = ?`, trimmedURL).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, err
		}

		res, err := db.Exec(
			`INSERT INTO pages (url, title, host, site_name, added_at) VALUES (?, ?, ?, ?, ?)`,
			trimmedURL, title, host, siteName, time.Now(),
		)
		if err != nil {
			// If another concurrent transaction inserted the same page, retry the SELECT.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get page after %d retries", maxRetries)
}

func getOrCreateSentence(db DBExecutor, text string) (int64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, nil
	}
	var id int64
	if err := db.QueryRow(`SELECT id FROM sentences WHERE text = ?`, trimmed).Scan(&id); err == nil {
		return id, nil
	} else if err != sql.ErrNoRows {
		return 0, err
	}
	// Insert if missing (concurrent-safe via UNIQUE constraint)
	if _, err := db.Exec(`INSERT OR IGNORE INTO sentences (text) VALUES (?)`, trimmed); err != nil {
		return 0, err
	}
	if err := db.QueryRow(`SELECT id FROM sentences WHERE text = ?`, trimmed).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// maxContextsPerExposure limits stored context sentences per entry-page pair.
const maxContextsPerExposure = 5

// LinkEntryToPage records that an entry was shown on a page, creating or
// updating the exposure row.
func LinkEntryToPage(db DBExecutor, entryID, pageID int64, original, meaning, context string, incrementAmount int) error {
	if entryID <= 0 {
		return fmt.Errorf("entryID must be positive")
	}
	if pageID <= 0 {
		return fmt.Errorf("pageID must be positive")
	}
	if incrementAmount < 1 {
		return fmt.Errorf("incrementAmount must be positive, got %d", incrementAmount)
	}

	ctxID, err := getOrCreateSentence(db, context)
	if err != nil {
		return fmt.Errorf("get/create context sentence: %w", err)
	}

	now := time.Now()
	var exposureID int64
	err = db.QueryRow(`INSERT INTO exposures (entry_id, page_id, original_text, meaning, context_sentence_id, occurrence_count, first_seen_at, last_seen_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(entry_id, page_id) DO UPDATE SET
	  occurrence_count = exposures.occurrence_count + excluded.occurrence_count,
	  original_text = excluded.original_text,
	  meaning = excluded.meaning,
	  context_sentence_id = COALESCE(excluded.context_sentence_id, exposures.context_sentence_id),
	  last_seen_at = excluded.last_seen_at
	RETURNING id`, entryID, pageID, original, meaning, nullableInt64(ctxID), incrementAmount, now, now).Scan(&exposureID)
	if err != nil {
		return err
	}
	if ctxID == 0 {
		return nil
	}

	_, err = db.Exec(`
		INSERT INTO exposure_contexts (exposure_id, sentence_id)
		SELECT ?, ?
		WHERE (SELECT COUNT(*) FROM exposure_contexts WHERE exposure_id = ?) < ?
		ON CONFLICT DO NOTHING`,
		exposureID, ctxID, exposureID, maxContextsPerExposure)
	return err
}

// nullableInt64 returns nil for 0 (meaning no sentence) else the value.
func nullableInt64(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

// GetExposuresByPage returns what was shown on the page with the given url.
func GetExposuresByPage(db DBExecutor, url string) ([]Exposure, error) {
	rows, err := db.Query(`SELECT x.id, x.entry_id, x.page_id, e.script_form, e.phonetic_form,
			x.original_text, x.meaning, s.text, x.occurrence_count, x.first_seen_at, x.last_seen_at
		FROM exposures x
		JOIN entries e ON e.id = x.entry_id
		JOIN pages p ON p.id = x.page_id
		LEFT JOIN sentences s ON s.id = x.context_sentence_id
		WHERE p.url = ?
		ORDER BY x.id`, url)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Exposure
	for rows.Next() {
		var x Exposure
		var ctx sql.NullString
		if err := rows.Scan(&x.ID, &x.EntryID, &x.PageID, &x.ScriptForm, &x.PhoneticForm,
			&x.OriginalText, &x.Meaning, &ctx, &x.OccurrenceCount, &x.FirstSeenAt, &x.LastSeenAt); err != nil {
			return nil, err
		}
		if ctx.Valid {
			x.ContextSentence = ctx.String
		}
		out = append(out, x)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
