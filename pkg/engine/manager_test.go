package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/wordweave/pkg/dictionary"
	"github.com/japaniel/wordweave/pkg/lists"
	"github.com/japaniel/wordweave/pkg/settings"
)

// fakeLists serves one record per list id whose only translation is shared
// ("shared") plus one unique to the list (the id itself).
func fakeLists(calls *int32, failing ...string) lists.Resolver {
	return lists.ResolverFunc(func(ctx context.Context, id string) ([]dictionary.Record, error) {
		atomic.AddInt32(calls, 1)
		for _, f := range failing {
			if f == id {
				return nil, errors.New("unreachable")
			}
		}
		return []dictionary.Record{
			{ScriptForm: "字" + id, Translations: []string{"shared", id}},
		}, nil
	})
}

func TestManagerPersonalListWins(t *testing.T) {
	var calls int32
	provider := settings.NewMemory([]string{lists.PersonalID, "hsk2", "hsk1"}, []dictionary.Record{
		{ID: 1, ScriptForm: "我的", Translations: []string{"Shared"}},
	})
	m := NewManager(fakeLists(&calls), provider, DefaultOptions(), nil)

	eng, err := m.Start(context.Background(), "example.com")
	require.NoError(t, err)
	defer m.Stop()

	e, ok := eng.Lookup("shared")
	require.True(t, ok)
	assert.Equal(t, "我的", e.ScriptForm)
	assert.Equal(t, []string{"hsk1", "hsk2", lists.PersonalID}, eng.Dictionary().Lists())
}

func TestManagerBaseListsFollowCatalogOrder(t *testing.T) {
	var calls int32
	provider := settings.NewMemory([]string{"hsk3", "hsk1"}, nil)
	m := NewManager(fakeLists(&calls), provider, DefaultOptions(), nil)

	eng, err := m.Reset(context.Background())
	require.NoError(t, err)
	e, ok := eng.Lookup("shared")
	require.True(t, ok)
	// hsk3 loads after hsk1 and therefore wins.
	assert.Equal(t, "字hsk3", e.ScriptForm)
}

func TestManagerDefaultsToFirstLevel(t *testing.T) {
	var calls int32
	m := NewManager(fakeLists(&calls), settings.NewMemory(nil, nil), DefaultOptions(), nil)
	eng, err := m.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hsk1"}, eng.Dictionary().Lists())
}

func TestManagerPersonalIgnoredUnlessSelected(t *testing.T) {
	var calls int32
	provider := settings.NewMemory([]string{"hsk1"}, []dictionary.Record{
		{ScriptForm: "我的", Translations: []string{"mine"}},
	})
	m := NewManager(fakeLists(&calls), provider, DefaultOptions(), nil)
	eng, err := m.Reset(context.Background())
	require.NoError(t, err)
	_, ok := eng.Lookup("mine")
	assert.False(t, ok)
}

func TestManagerPartialFailure(t *testing.T) {
	var calls int32
	provider := settings.NewMemory([]string{"hsk1", "hsk2", "hsk3"}, nil)
	m := NewManager(fakeLists(&calls, "hsk2"), provider, DefaultOptions(), nil)

	eng, err := m.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hsk1", "hsk3"}, eng.Dictionary().Lists())
	for _, key := range []string{"hsk1", "hsk3", "shared"} {
		_, ok := eng.Lookup(key)
		assert.True(t, ok, key)
	}
	_, ok := eng.Lookup("hsk2")
	assert.False(t, ok)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestManagerBlockedHostFetchesNothing(t *testing.T) {
	var calls int32
	m := NewManager(fakeLists(&calls), settings.NewMemory([]string{"hsk1"}, nil), DefaultOptions(), nil)

	eng, err := m.Start(context.Background(), "www.google.com")
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Nil(t, eng)
	assert.Nil(t, m.Current())
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestManagerDisabledWithoutSettings(t *testing.T) {
	var calls int32
	m := NewManager(fakeLists(&calls), nil, DefaultOptions(), nil)
	_, err := m.Start(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestManagerResetsOnSettingsChange(t *testing.T) {
	var calls int32
	provider := settings.NewMemory([]string{"hsk1"}, nil)
	m := NewManager(fakeLists(&calls), provider, Options{MaxAnnotations: 3, Probability: 1}, nil)

	first, err := m.Start(context.Background(), "example.com")
	require.NoError(t, err)
	defer m.Stop()
	require.True(t, first.Accept())
	require.True(t, first.Accept())

	provider.Set([]string{"hsk2"}, nil)

	second := m.Current()
	require.NotSame(t, first, second)
	assert.Equal(t, 0, second.Used())
	assert.Equal(t, []string{"hsk2"}, second.Dictionary().Lists())
	// The previous engine is untouched.
	assert.Equal(t, 2, first.Used())
}

func TestManagerLatestReloadWins(t *testing.T) {
	release := make(chan struct{})
	var blockOnce sync.Once
	var resolved []string
	var mu sync.Mutex
	resolver := lists.ResolverFunc(func(ctx context.Context, id string) ([]dictionary.Record, error) {
		mu.Lock()
		resolved = append(resolved, id)
		mu.Unlock()
		if id == "hsk1" {
			blockOnce.Do(func() { <-release })
		}
		return []dictionary.Record{{ScriptForm: id, Translations: []string{"word"}}}, nil
	})
	provider := settings.NewMemory([]string{"hsk1"}, nil)
	m := NewManager(resolver, provider, DefaultOptions(), nil)
	ctx := context.Background()

	var (
		wg    sync.WaitGroup
		first *Engine
	)
	wg.Add(1)
	go func() { defer wg.Done(); first, _ = m.Reset(ctx) }()

	// Wait until the first load is inside the resolver.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(resolved) == 1
	}, time.Second, time.Millisecond)

	provider.Set([]string{"hsk2"}, nil)
	wg.Add(2)
	go func() { defer wg.Done(); _, _ = m.Reset(ctx) }()
	require.Eventually(t, func() bool { return m.gen.Load() == 2 }, time.Second, time.Millisecond)
	provider.Set([]string{"hsk3"}, nil)
	go func() { defer wg.Done(); _, _ = m.Reset(ctx) }()
	require.Eventually(t, func() bool { return m.gen.Load() == 3 }, time.Second, time.Millisecond)

	close(release)
	wg.Wait()

	cur := m.Current()
	require.NotNil(t, cur)
	assert.Equal(t, []string{"hsk3"}, cur.Dictionary().Lists())
	require.NotNil(t, first, "a superseded first load still yields an engine")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"hsk1", "hsk3"}, resolved, "the intermediate configuration is never loaded")
}

func TestManagerSupersededFirstLoadReturnsEngine(t *testing.T) {
	var m *Manager
	resolver := lists.ResolverFunc(func(ctx context.Context, id string) ([]dictionary.Record, error) {
		// A newer reset is requested while the first one is loading.
		m.gen.Add(1)
		return []dictionary.Record{{ScriptForm: "水", Translations: []string{"water"}}}, nil
	})
	m = NewManager(resolver, settings.NewMemory([]string{"hsk1"}, nil), DefaultOptions(), nil)

	eng, err := m.Reset(context.Background())
	require.NoError(t, err)
	require.NotNil(t, eng)
	assert.Same(t, eng, m.Current())

	// Once an engine exists, a superseded load is discarded.
	next, err := m.Reset(context.Background())
	require.NoError(t, err)
	assert.Same(t, eng, next)
}
