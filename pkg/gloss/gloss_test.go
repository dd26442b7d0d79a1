package gloss

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/japaniel/wordweave/pkg/dictionary"
)

func TestExtractContext(t *testing.T) {
	text := "I like tea. We EAT rice! Dogs bark? Cats sleep."

	assert.Equal(t, "i like tea we eat rice dogs bark", ExtractContext(text, "eat"))
	assert.Equal(t, "i like tea we eat rice", ExtractContext(text, "tea"))
	assert.Equal(t, "", ExtractContext(text, "eating"))
	assert.Equal(t, "", ExtractContext("", "eat"))
}

func TestExtractContextCapsSentences(t *testing.T) {
	text := "Go now. Then go home. We go out. Stay."
	// First match alone already yields two sentences, the second fills the cap.
	assert.Equal(t, "go now then go home go now", ExtractContext(text, "go"))
}

func TestChooseFallsBackToPrimary(t *testing.T) {
	e := &dictionary.Entry{Translations: []string{"good", "nice"}}
	assert.Equal(t, "good", Choose(e, "the weather was mild today"))
	assert.Equal(t, "good", Choose(e, ""))
}

func TestChooseUsesContext(t *testing.T) {
	ctx := "we went to a restaurant to eat"

	e := &dictionary.Entry{Translations: []string{"eat", "go"}}
	assert.Equal(t, "eat", Choose(e, ctx))
	assert.GreaterOrEqual(t, Score("eat", ctx)-Score("go", ctx), 2.0)

	// The context beats list order, too.
	e = &dictionary.Entry{Translations: []string{"go", "eat"}}
	assert.Equal(t, "eat", Choose(e, ctx))
}

func TestChooseTrivialEntries(t *testing.T) {
	assert.Equal(t, "one", Choose(&dictionary.Entry{Translations: []string{"one"}}, "anything"))
	assert.Equal(t, "", Choose(nil, "anything"))
}

func TestScoreComponents(t *testing.T) {
	// direct match 3, category (time) 2, short 1, single word 0.5
	assert.Equal(t, 6.5, Score("time", "what time is it"))
	// no context: short + single word
	assert.Equal(t, 1.5, Score("hour", ""))
	// long multi-word phrase without matches scores nothing
	assert.Equal(t, 0.0, Score("a rather long phrase", "unrelated words"))
	// category words only count when the trigger appears as a whole word
	assert.Equal(t, 1.5, Score("cook", "the restaurants were closed"))
	assert.Equal(t, 3.5, Score("cook", "the restaurant was closed"))
	assert.Equal(t, 1.5, Score("go", "the food was good"))
}

func TestSubstringCategoryTriggers(t *testing.T) {
	// time, money and person fire inside longer words
	e := &dictionary.Entry{Translations: []string{"instant", "moment"}}
	assert.Equal(t, "moment", Choose(e, "sometimes it rains all day"))
	assert.Equal(t, 3.5, Score("people", "a personal letter"))
	assert.Equal(t, 3.5, Score("price", "moneybags paid"))
	// food, work and travel do not
	assert.Equal(t, 1.5, Score("job", "homework was due"))
}

func TestRankIsStable(t *testing.T) {
	e := &dictionary.Entry{Translations: []string{"big", "large", "great"}}
	ranked := Rank(e, "")
	assert.Equal(t, "big", ranked[0].Translation)
	assert.Equal(t, "large", ranked[1].Translation)
	assert.Equal(t, "great", ranked[2].Translation)
}
