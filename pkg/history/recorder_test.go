package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/wordweave/pkg/db"
	"github.com/japaniel/wordweave/pkg/page"
)

func TestRecorderGroupsOccurrences(t *testing.T) {
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	r := NewRecorder(conn, 10, 0, nil)
	p := PageInfo{URL: "https://example.com/lunch", Title: "Lunch"}
	assert.Equal(t, "example.com", p.Host())

	water := page.Annotation{Original: "water", ScriptForm: "水", PhoneticForm: "shuǐ", Meaning: "water", Context: "we drank water", SourceList: "hsk1"}
	eat := page.Annotation{Original: "eat", ScriptForm: "吃", PhoneticForm: "chī", Meaning: "eat", Context: "time to eat", SourceList: "hsk1"}
	require.NoError(t, r.Record(p, []page.Annotation{water, eat, water}))
	require.NoError(t, r.Record(p, nil))
	require.NoError(t, r.Close())

	got, err := r.Exposures(p.URL)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "水", got[0].ScriptForm)
	assert.Equal(t, 2, got[0].OccurrenceCount)
	assert.Equal(t, "we drank water", got[0].ContextSentence)
	assert.Equal(t, "吃", got[1].ScriptForm)
	assert.Equal(t, 1, got[1].OccurrenceCount)
	assert.Equal(t, "eat", got[1].Meaning)
}

func TestRecorderAccumulatesAcrossVisits(t *testing.T) {
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	r := NewRecorder(conn, 1, 0, nil)
	p := PageInfo{URL: "https://example.com/"}
	a := page.Annotation{Original: "Water", ScriptForm: "水", PhoneticForm: "shuǐ", Meaning: "water"}
	require.NoError(t, r.Record(p, []page.Annotation{a}))
	require.NoError(t, r.Record(p, []page.Annotation{a, a}))
	require.NoError(t, r.Close())

	got, err := r.Exposures(p.URL)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].OccurrenceCount)
	assert.Equal(t, "Water", got[0].OriginalText)
}

func TestRecorderClosed(t *testing.T) {
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	r := NewRecorder(conn, 0, 0, nil)
	require.NoError(t, r.Close())
	err = r.Record(PageInfo{URL: "https://example.com/"}, []page.Annotation{{ScriptForm: "水"}})
	assert.ErrorIs(t, err, ErrBatchWriterClosed)
}
