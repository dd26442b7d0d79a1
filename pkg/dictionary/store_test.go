package dictionary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPersonalListWins(t *testing.T) {
	base := List{ID: "hsk1", Records: []Record{
		{ID: 1, ScriptForm: "一", PhoneticForm: "yī", Translations: []string{"one", "a"}},
	}}
	personal := List{ID: "personal", Records: []Record{
		{ID: 900, ScriptForm: "壹", PhoneticForm: "yī", Translations: []string{"One"}},
	}}

	d := Build(base, personal)

	e, ok := d.Lookup("one")
	require.True(t, ok)
	assert.Equal(t, "壹", e.ScriptForm)
	assert.Equal(t, "personal", e.SourceList)

	// "a" is only defined by the base list.
	e, ok = d.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "一", e.ScriptForm)
	assert.Equal(t, []string{"hsk1", "personal"}, d.Lists())
}

func TestLookupIgnoresCaseAndSpace(t *testing.T) {
	d := Build(List{ID: "hsk1", Records: []Record{
		{ScriptForm: "房子", PhoneticForm: "fángzi", Translations: []string{"house"}},
	}})
	for _, q := range []string{"house", "House", "HOUSE", "house ", "  hOuSe"} {
		e, ok := d.Lookup(q)
		require.True(t, ok, "lookup %q", q)
		assert.Equal(t, "房子", e.ScriptForm)
	}
	_, ok := d.Lookup("houses")
	assert.False(t, ok)
}

func TestBuildSkipsEntriesWithoutTranslations(t *testing.T) {
	d := Build(List{ID: "hsk1", Records: []Record{
		{ScriptForm: "空"},
		{ScriptForm: "白", Translations: []string{"", "  "}},
		{ScriptForm: "好", Translations: []string{" ", "good", "nice"}},
	}})
	assert.Equal(t, 2, d.Len())
	e, ok := d.Lookup("good")
	require.True(t, ok)
	assert.Equal(t, "good", e.Primary())
	assert.Equal(t, []string{"good", "nice"}, e.Translations)
}

func TestNilDictionary(t *testing.T) {
	var d *Dictionary
	_, ok := d.Lookup("x")
	assert.False(t, ok)
	assert.Zero(t, d.Len())
}

func TestParseListFormats(t *testing.T) {
	array := `[{"id": 1, "hanzi": "爱", "pinyin": "ài", "translations": ["love", "like"]}]`
	wrapped := `{"words": [{"id": 2, "hanzi": "八", "pinyin": "bā", "translations": ["eight"]}]}`
	yml := "- id: 3\n  hanzi: 爸爸\n  pinyin: bàba\n  translations: [dad, father]\n"

	recs, err := ParseList([]byte(array), FormatJSON)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "爱", recs[0].ScriptForm)
	assert.Equal(t, []string{"love", "like"}, recs[0].Translations)

	recs, err = ParseList([]byte(wrapped), FormatJSON)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].ID)

	recs, err = ParseList([]byte(yml), FormatYAML)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "bàba", recs[0].PhoneticForm)

	_, err = ParseList([]byte("not json"), FormatJSON)
	assert.Error(t, err)
}

func TestLoadList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hsk-level-1.yaml")
	require.NoError(t, os.WriteFile(path, []byte("words:\n  - hanzi: 猫\n    pinyin: māo\n    translations: [cat]\n"), 0o644))

	recs, err := LoadList(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "猫", recs[0].ScriptForm)

	_, err = LoadList(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	records := []Record{
		{ID: 1, ScriptForm: "爱", PhoneticForm: "Ài", Translations: []string{"love"}},
		{ID: 2, ScriptForm: "八", PhoneticForm: "bā", Translations: []string{"eight"}},
		{ID: 3, ScriptForm: "爸爸", PhoneticForm: "bàba", Translations: []string{"Dad", "father"}},
	}

	got := Search(records, "ài", 0)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)

	got = Search(records, "DAD", 0)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)

	got = Search(records, "爸", 0)
	require.Len(t, got, 1)

	got = Search(records, "e", 1)
	assert.Len(t, got, 1)

	assert.Nil(t, Search(records, "  ", 5))
}
