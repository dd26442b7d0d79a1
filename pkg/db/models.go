package db

import "time"

// Entry is a glossed word that has been shown on at least one page.
type Entry struct {
	ID           int64
	ScriptForm   string
	PhoneticForm string
	SourceList   string
}

// Page is a provenance record for where entries were shown.
type Page struct {
	ID       int64
	URL      string
	Title    string
	Host     string
	SiteName string
	AddedAt  time.Time
}

// Exposure links an Entry with a Page and holds what was shown there.
type Exposure struct {
	ID              int64
	EntryID         int64
	PageID          int64
	ScriptForm      string
	PhoneticForm    string
	OriginalText    string
	Meaning         string
	ContextSentence string
	OccurrenceCount int
	FirstSeenAt     time.Time
	LastSeenAt      time.Time
}
