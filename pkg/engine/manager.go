package engine

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/japaniel/wordweave/pkg/dictionary"
	"github.com/japaniel/wordweave/pkg/lists"
	"github.com/japaniel/wordweave/pkg/settings"
)

var (
	// ErrBlocked is returned by Start for hosts on the blocklist.
	ErrBlocked = errors.New("engine: host is blocked")
	// ErrDisabled is returned by Start when there is no settings provider.
	ErrDisabled = errors.New("engine: no settings provider, engine disabled")
)

// Manager owns the current Engine and replaces it whenever the settings
// change. Reloads are serialized; when several are requested while one is
// running, only the latest configuration is loaded.
type Manager struct {
	Resolver  lists.Resolver
	Catalog   lists.Catalog
	Settings  settings.Provider
	Options   Options
	Blocklist Blocklist
	Logger    *zap.Logger

	loadMu  sync.Mutex
	gen     atomic.Uint64
	current atomic.Pointer[Engine]

	subMu       sync.Mutex
	unsubscribe func()
}

// NewManager creates a Manager with the default catalog and blocklist.
func NewManager(resolver lists.Resolver, provider settings.Provider, opts Options, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		Resolver:  resolver,
		Catalog:   lists.DefaultCatalog(),
		Settings:  provider,
		Options:   opts,
		Blocklist: Blocklist(DefaultBlockedDomains),
		Logger:    logger,
	}
}

// Allowed reports whether the engine may run on host.
func (m *Manager) Allowed(host string) bool {
	return !m.Blocklist.Blocked(host)
}

// Start gates on host, loads the first dictionary and subscribes to settings
// changes. Nothing is fetched for a blocked host.
func (m *Manager) Start(ctx context.Context, host string) (*Engine, error) {
	if !m.Allowed(host) {
		m.Logger.Debug("host blocked, not starting", zap.String("host", host))
		return nil, ErrBlocked
	}
	return m.Watch(ctx)
}

// Watch loads the first dictionary and reloads it on every settings change
// until Stop. Hosts are not gated; callers serving many hosts check Allowed
// per page.
func (m *Manager) Watch(ctx context.Context) (*Engine, error) {
	if m.Settings == nil {
		m.Logger.Debug("settings unavailable, engine disabled")
		return nil, ErrDisabled
	}

	eng, err := m.Reset(ctx)
	if err != nil {
		return nil, err
	}

	m.subMu.Lock()
	if m.unsubscribe == nil {
		m.unsubscribe = m.Settings.Subscribe(func() {
			m.Logger.Info("settings changed, reloading dictionary")
			if _, err := m.Reset(context.WithoutCancel(ctx)); err != nil {
				m.Logger.Warn("reload failed", zap.Error(err))
			}
		})
	}
	m.subMu.Unlock()
	return eng, nil
}

// Stop unsubscribes from settings changes.
func (m *Manager) Stop() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Current returns the active Engine, or nil before the first load.
func (m *Manager) Current() *Engine {
	return m.current.Load()
}

// Reset rebuilds the dictionary from scratch and installs a new Engine with a
// zero budget. Annotations already rendered from an earlier Engine stay.
func (m *Manager) Reset(ctx context.Context) (*Engine, error) {
	gen := m.gen.Add(1)

	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	// A newer Reset is waiting and will load fresher settings. Until some
	// engine exists a superseded load is still installed, so callers never
	// get a nil Engine without an error.
	if cur := m.current.Load(); cur != nil && gen != m.gen.Load() {
		return cur, nil
	}

	dict, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if cur := m.current.Load(); cur != nil && gen != m.gen.Load() {
		m.Logger.Debug("discarding superseded dictionary load", zap.Uint64("generation", gen))
		return cur, nil
	}

	eng := New(dict, m.Options)
	m.current.Store(eng)
	m.Logger.Info("dictionary loaded",
		zap.Int("entries", dict.Len()),
		zap.Strings("lists", dict.Lists()),
		zap.Uint64("generation", gen),
	)
	return eng, nil
}

func (m *Manager) load(ctx context.Context) (*dictionary.Dictionary, error) {
	selected, err := m.Settings.SelectedLists(ctx)
	if err != nil {
		m.Logger.Warn("cannot read selected lists, using default", zap.Error(err))
		selected = nil
	}
	if len(selected) == 0 {
		selected = []string{lists.DefaultListID}
	}

	var personal []dictionary.Record
	if slices.Contains(selected, lists.PersonalID) {
		personal, err = m.Settings.PersonalWords(ctx)
		if err != nil {
			m.Logger.Warn("cannot read personal words", zap.Error(err))
			personal = nil
		}
	}

	return BuildDictionary(ctx, m.Resolver, m.Catalog, selected, personal, m.Logger)
}

// BuildDictionary resolves the selected base lists in catalog order and
// merges the personal list last. Lists that fail to resolve are logged and
// skipped; only cancellation of ctx aborts the build.
func BuildDictionary(ctx context.Context, resolver lists.Resolver, catalog lists.Catalog, selected []string, personal []dictionary.Record, logger *zap.Logger) (*dictionary.Dictionary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ordered, unknown := catalog.Order(selected)
	for _, id := range unknown {
		logger.Warn("skipping unknown list", zap.String("list", id))
	}

	var loaded []dictionary.List
	for _, id := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := resolver.Resolve(ctx, id)
		if err != nil {
			logger.Warn("failed to load list", zap.String("list", id), zap.Error(err))
			continue
		}
		logger.Debug("loaded list", zap.String("list", id), zap.Int("words", len(records)))
		loaded = append(loaded, dictionary.List{ID: id, Records: records})
	}

	if slices.Contains(selected, lists.PersonalID) && len(personal) > 0 {
		loaded = append(loaded, dictionary.List{ID: lists.PersonalID, Records: personal})
		logger.Debug("loaded personal words", zap.Int("words", len(personal)))
	}
	return dictionary.Build(loaded...), nil
}
