// Package history records which annotations were shown on which pages. It is
// provenance only; annotation state is never restored from it.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/japaniel/wordweave/pkg/db"
	"github.com/japaniel/wordweave/pkg/page"
)

const (
	DefaultBatchSize     = 50
	DefaultFlushInterval = 2 * time.Second
)

// PageInfo identifies the page annotations were rendered on.
type PageInfo struct {
	URL      string
	Title    string
	SiteName string
}

// Host returns the URL's host, or "" if the URL does not parse.
func (p PageInfo) Host() string {
	u, err := url.Parse(p.URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Recorder queues exposure writes on a BatchWriter.
type Recorder struct {
	conn   *sql.DB
	writer *BatchWriter
	logger *zap.Logger
}

// NewRecorder returns a Recorder writing to conn.
func NewRecorder(conn *sql.DB, batchSize int, flushInterval time.Duration, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Recorder{
		conn:   conn,
		writer: NewBatchWriter(conn, batchSize, flushInterval, logger),
		logger: logger,
	}
}

type exposureKey struct{ script, phonetic string }

type exposure struct {
	first page.Annotation
	count int
}

// Record queues one write covering every annotation shown on p. Repeated
// occurrences of an entry add to its count; the first one supplies the shown
// text, meaning and context.
func (r *Recorder) Record(p PageInfo, anns []page.Annotation) error {
	if len(anns) == 0 {
		return nil
	}
	var order []exposureKey
	grouped := make(map[exposureKey]*exposure)
	for _, a := range anns {
		k := exposureKey{a.ScriptForm, a.PhoneticForm}
		if x, ok := grouped[k]; ok {
			x.count++
			continue
		}
		grouped[k] = &exposure{first: a, count: 1}
		order = append(order, k)
	}

	return r.writer.Submit(func(ctx context.Context, tx *sql.Tx) error {
		pageID, err := db.CreateOrGetPage(tx, p.URL, p.Title, p.Host(), p.SiteName)
		if err != nil {
			return fmt.Errorf("history: page %s: %w", p.URL, err)
		}
		for _, k := range order {
			x := grouped[k]
			entryID, err := db.CreateOrGetEntry(tx, k.script, k.phonetic, x.first.SourceList)
			if err != nil {
				return fmt.Errorf("history: entry %s: %w", k.script, err)
			}
			if err := db.LinkEntryToPage(tx, entryID, pageID, x.first.Original, x.first.Meaning, x.first.Context, x.count); err != nil {
				return fmt.Errorf("history: link %s: %w", k.script, err)
			}
		}
		r.logger.Debug("recorded exposures", zap.String("url", p.URL), zap.Int("entries", len(order)))
		return nil
	})
}

// Flush hands queued writes to the committer.
func (r *Recorder) Flush() {
	r.writer.Flush()
}

// Exposures returns what was recorded for url. Writes still queued are not
// visible until they are committed.
func (r *Recorder) Exposures(url string) ([]db.Exposure, error) {
	return db.GetExposuresByPage(r.conn, url)
}

// Close commits pending writes.
func (r *Recorder) Close() error {
	return r.writer.Close()
}
