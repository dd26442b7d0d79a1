package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/japaniel/wordweave/pkg/dictionary"
)

func testDict() *dictionary.Dictionary {
	return dictionary.Build(dictionary.List{ID: "hsk1", Records: []dictionary.Record{
		{ScriptForm: "吃", PhoneticForm: "chī", Translations: []string{"go", "eat"}},
		{ScriptForm: "好", PhoneticForm: "hǎo", Translations: []string{"good", "nice"}},
	}})
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestAcceptNeverExceedsBudget(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		e := New(testDict(), Options{MaxAnnotations: 7, Probability: 0.25, Rand: seeded(seed)})
		accepted := 0
		for i := 0; i < 1000; i++ {
			if e.Accept() {
				accepted++
			}
		}
		assert.Equal(t, 7, accepted, "seed %d", seed)
		assert.True(t, e.Exhausted())
		assert.Equal(t, 0, e.Remaining())
	}
}

func TestAcceptProbability(t *testing.T) {
	e := New(testDict(), Options{MaxAnnotations: 100000, Probability: 0.25, Rand: seeded(42)})
	accepted := 0
	const rolls = 10000
	for i := 0; i < rolls; i++ {
		if e.Accept() {
			accepted++
		}
	}
	assert.InDelta(t, 0.25, float64(accepted)/rolls, 0.03)
	assert.Equal(t, accepted, e.Used())
}

func TestNewAppliesDefaults(t *testing.T) {
	e := New(nil, Options{})
	assert.Equal(t, DefaultMaxAnnotations, e.Options().MaxAnnotations)
	assert.Equal(t, DefaultProbability, e.Options().Probability)

	e = New(nil, Options{Probability: 3})
	assert.Equal(t, 1.0, e.Options().Probability)
	assert.True(t, e.Accept())
}

func TestForkHasFreshBudget(t *testing.T) {
	e := New(testDict(), Options{MaxAnnotations: 2, Probability: 1})
	assert.True(t, e.Accept())
	assert.True(t, e.Accept())
	assert.False(t, e.Accept())

	f := e.Fork()
	assert.Same(t, e.Dictionary(), f.Dictionary())
	assert.Equal(t, 0, f.Used())
	assert.True(t, f.Accept())
	assert.Equal(t, 2, e.Used())
}

func TestGlossHonoursContextualFlag(t *testing.T) {
	d := testDict()
	entry, ok := d.Lookup("eat")
	assert.True(t, ok)
	ctx := "we went to a restaurant to eat"

	on := New(d, Options{Contextual: true})
	assert.Equal(t, "eat", on.Gloss(entry, ctx))

	off := New(d, Options{Contextual: false})
	assert.Equal(t, "go", off.Gloss(entry, ctx))
}

func TestBlocklist(t *testing.T) {
	b := Blocklist(DefaultBlockedDomains)
	for _, host := range []string{"www.google.com", "google.co.uk", "GOOGLE.de", "bing.com", "www.bing.com:443", "search.yahoo.com", "duckduckgo.com."} {
		assert.True(t, b.Blocked(host), host)
	}
	for _, host := range []string{"example.com", "notbing.com", "google", "mygoogle.com", "yahoo.co", ""} {
		assert.False(t, b.Blocked(host), host)
	}
}
