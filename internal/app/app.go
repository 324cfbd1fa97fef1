// Package app builds and owns the application components: configuration,
// logging, the sqlite store, the shield engine and its updater.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sw3do/sw3do-browser/internal/config"
	"github.com/sw3do/sw3do-browser/internal/logging"
	"github.com/sw3do/sw3do-browser/internal/persistence/sqlite"
	"github.com/sw3do/sw3do-browser/internal/shield"
)

// customListName holds rules declared in the config file. It is registered
// first so user rules are scanned before the remote lists, and it has no
// source URL so the updater never touches it.
const customListName = "custom"

// refreshStartupDelay postpones the first background refresh so startup is
// not competing with network fetches.
const refreshStartupDelay = 2 * time.Minute

// App wires the engine to configuration and persistence.
type App struct {
	Log     zerolog.Logger
	Config  *config.Manager
	Engine  *shield.Engine
	Updater *shield.Updater
	Cache   *shield.RuleCache

	db         *sql.DB
	shieldRepo *sqlite.ShieldRepository
	statsRepo  *sqlite.StatsRepository
	listRepo   *sqlite.ListStateRepository
}

// New loads configuration, opens the database and restores the engine state
// from the sqlite store and the on-disk rule cache.
func New(ctx context.Context) (*App, error) {
	mgr, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("config manager: %w", err)
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Get()

	log := logging.New(logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		TimeFormat: time.RFC3339,
	})

	ctx = logging.WithContext(ctx, log)
	db, err := sqlite.NewConnection(logging.WithComponent(ctx, "sqlite"), cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cache, err := shield.NewRuleCache(cfg.Filtering.CacheDir)
	if err != nil {
		sqlite.Close(db)
		return nil, fmt.Errorf("rule cache: %w", err)
	}

	a := &App{
		Log:        log,
		Config:     mgr,
		Cache:      cache,
		db:         db,
		shieldRepo: sqlite.NewShieldRepository(db),
		statsRepo:  sqlite.NewStatsRepository(db),
		listRepo:   sqlite.NewListStateRepository(db),
	}

	engine, err := a.restoreEngine(ctx, cfg)
	if err != nil {
		sqlite.Close(db)
		return nil, err
	}
	a.Engine = engine
	a.Updater = shield.NewUpdater(engine, log)

	mgr.OnConfigChange(a.applyConfigChange)

	return a, nil
}

// restoreEngine rebuilds the engine aggregate: lists come from the config
// with cached rules, shields and stats from sqlite. Persisted list state
// wins over the config for enablement.
func (a *App) restoreEngine(ctx context.Context, cfg *config.Config) (*shield.Engine, error) {
	persisted := make(map[string]shield.ListInfo)
	states, err := a.listRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load list state: %w", err)
	}
	for _, st := range states {
		persisted[st.Name] = st
	}

	lists := []shield.FilterList{{
		Name:    customListName,
		Enabled: true,
		Rules:   customRules(cfg.Filtering.CustomRules),
	}}
	for _, lc := range cfg.Filtering.FilterLists {
		l := shield.FilterList{
			Name:      lc.Name,
			SourceURL: lc.URL,
			Enabled:   lc.Enabled,
		}
		if st, ok := persisted[lc.Name]; ok {
			l.Enabled = st.Enabled
			l.LastUpdated = st.LastUpdated
		}
		if rules, savedAt, err := a.Cache.Load(lc.Name); err == nil {
			l.Rules = rules
			if l.LastUpdated.IsZero() {
				l.LastUpdated = savedAt
			}
		} else {
			a.Log.Debug().Err(err).Str("list", lc.Name).Msg("no cached rules")
		}
		lists = append(lists, l)
	}

	shields, err := a.shieldRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shields: %w", err)
	}
	stats, err := a.statsRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	engine := shield.NewEngine(nil, shield.WithLogger(a.Log))
	if err := engine.Import(shield.Snapshot{
		Lists:   lists,
		Shields: shields,
		Stats:   stats,
	}); err != nil {
		return nil, fmt.Errorf("restore engine state: %w", err)
	}

	for _, cp := range cfg.Filtering.CompiledPatterns {
		if err := engine.CompilePattern(cp.Pattern, cp.Regex); err != nil {
			a.Log.Warn().Err(err).Str("pattern", cp.Pattern).Msg("skipping compiled pattern")
		}
	}

	return engine, nil
}

func customRules(configured []config.CustomRuleConfig) []shield.Rule {
	rules := make([]shield.Rule, 0, len(configured))
	for _, rc := range configured {
		rules = append(rules, shield.Rule{
			Pattern:    rc.Pattern,
			Kind:       shield.RuleKind(rc.Kind),
			Domains:    rc.Domains,
			Exceptions: rc.Exceptions,
			Resources:  shield.ResourceFlagsFor(rc.Resources),
		})
	}
	return rules
}

// applyConfigChange reconciles the live engine with a reloaded config:
// custom rules are replaced wholesale, list enablement is synced, and new
// lists are registered. Removed lists are left registered until restart.
func (a *App) applyConfigChange(cfg *config.Config) {
	if err := a.Engine.ReplaceRules(customListName, customRules(cfg.Filtering.CustomRules)); err != nil {
		a.Log.Error().Err(err).Msg("failed to apply custom rules")
	}

	known := make(map[string]shield.ListInfo)
	for _, info := range a.Engine.Lists() {
		known[info.Name] = info
	}
	for _, lc := range cfg.Filtering.FilterLists {
		info, ok := known[lc.Name]
		switch {
		case !ok:
			if err := a.Engine.AddList(lc.Name, lc.URL, lc.Enabled); err != nil {
				a.Log.Error().Err(err).Str("list", lc.Name).Msg("failed to add list")
			}
		case info.Enabled != lc.Enabled:
			if err := a.Engine.SetListEnabled(lc.Name, lc.Enabled); err != nil {
				a.Log.Error().Err(err).Str("list", lc.Name).Msg("failed to toggle list")
			}
		}
	}

	for _, cp := range cfg.Filtering.CompiledPatterns {
		if err := a.Engine.CompilePattern(cp.Pattern, cp.Regex); err != nil {
			a.Log.Warn().Err(err).Str("pattern", cp.Pattern).Msg("skipping compiled pattern")
		}
	}

	a.Log.Info().Msg("configuration reloaded")
}

// FilteringEnabled reports the config-level kill switch.
func (a *App) FilteringEnabled() bool {
	return a.Config.Get().Filtering.Enabled
}

// RefreshAll re-downloads every registered list and persists the result.
// Per-list failures are joined into the returned error; lists that did
// refresh are saved regardless.
func (a *App) RefreshAll(ctx context.Context) error {
	refreshErr := a.Updater.RefreshAll(ctx)
	if err := a.SaveState(ctx); err != nil {
		a.Log.Error().Err(err).Msg("failed to persist state after refresh")
	}
	return refreshErr
}

// RefreshList re-downloads a single list and persists the result.
func (a *App) RefreshList(ctx context.Context, name string) error {
	if err := a.Updater.RefreshList(ctx, name); err != nil {
		return err
	}
	return a.SaveState(ctx)
}

// SaveState writes shields, stats, list state and cached rules to disk.
func (a *App) SaveState(ctx context.Context) error {
	snap := a.Engine.Export()

	for _, s := range snap.Shields {
		if err := a.shieldRepo.Upsert(ctx, s); err != nil {
			return fmt.Errorf("save shields for %s: %w", s.Domain, err)
		}
	}
	if err := a.statsRepo.Save(ctx, snap.Stats); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}

	for _, l := range snap.Lists {
		if l.Name == customListName {
			continue
		}
		if err := a.listRepo.Upsert(ctx, shield.ListInfo{
			Name:        l.Name,
			SourceURL:   l.SourceURL,
			Enabled:     l.Enabled,
			LastUpdated: l.LastUpdated,
		}); err != nil {
			return fmt.Errorf("save list state for %s: %w", l.Name, err)
		}
		if len(l.Rules) == 0 {
			continue
		}
		if err := a.Cache.Save(l.Name, l.Rules); err != nil {
			return fmt.Errorf("cache rules for %s: %w", l.Name, err)
		}
	}

	return nil
}

// Run blocks, refreshing lists on the configured interval until the context
// is canceled. Config file changes are watched and applied live.
func (a *App) Run(ctx context.Context) error {
	if err := a.Config.Watch(); err != nil {
		a.Log.Warn().Err(err).Msg("config watching unavailable")
	}

	interval := time.Duration(a.Config.Get().Filtering.UpdateIntervalHours) * time.Hour
	a.Log.Info().Dur("interval", interval).Msg("starting filter update loop")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(refreshStartupDelay):
	}

	if err := a.RefreshAll(ctx); err != nil {
		a.Log.Warn().Err(err).Msg("initial refresh incomplete")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.RefreshAll(ctx); err != nil {
				a.Log.Warn().Err(err).Msg("scheduled refresh incomplete")
			}
		}
	}
}

// Close persists state and releases the database.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.SaveState(ctx); err != nil {
		a.Log.Error().Err(err).Msg("failed to persist state on shutdown")
	}
	return sqlite.Close(a.db)
}
