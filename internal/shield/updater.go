package shield

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	fetchTimeout         = 30 * time.Second
	maxConcurrentFetches = 4
	updaterUserAgent     = "sw3do-browser/1.0 filter updater"
)

// Updater refreshes filter list rules from their source URLs. Fetching and
// parsing happen with no engine lock held; only the final rule swap takes the
// exclusive lock, so an in-flight download never stalls classification.
type Updater struct {
	engine *Engine
	client *http.Client
	log    zerolog.Logger
}

// NewUpdater creates an updater for the given engine.
func NewUpdater(engine *Engine, log zerolog.Logger) *Updater {
	return &Updater{
		engine: engine,
		client: &http.Client{Timeout: fetchTimeout},
		log:    log,
	}
}

// RefreshAll refreshes every enabled list with a source URL. A failure on one
// list leaves its previous rules intact and never aborts the others; all
// per-list errors are joined into the returned error after every list has
// been attempted.
func (u *Updater) RefreshAll(ctx context.Context) error {
	sources := u.engine.listSources()
	if len(sources) == 0 {
		u.log.Debug().Msg("no enabled filter lists to refresh")
		return nil
	}

	errs := make([]error, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := u.refreshOne(ctx, src); err != nil {
				u.log.Warn().Err(err).Str("list", src.Name).Msg("filter list refresh failed, keeping previous rules")
				errs[i] = fmt.Errorf("refresh %s: %w", src.Name, err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errs...)
}

// RefreshList refreshes a single list by name.
func (u *Updater) RefreshList(ctx context.Context, name string) error {
	info, err := u.engine.List(name)
	if err != nil {
		return err
	}
	if info.SourceURL == "" {
		return fmt.Errorf("list %s has no source URL", name)
	}
	return u.refreshOne(ctx, ListSource{Name: info.Name, URL: info.SourceURL})
}

func (u *Updater) refreshOne(ctx context.Context, src ListSource) error {
	rules, err := u.fetchAndParse(ctx, src.URL)
	if err != nil {
		return err
	}

	if err := u.engine.ReplaceRules(src.Name, rules); err != nil {
		// List removed while the fetch was in flight.
		return err
	}

	u.log.Info().Str("list", src.Name).Int("rules", len(rules)).Msg("filter list refreshed")
	return nil
}

func (u *Updater) fetchAndParse(ctx context.Context, sourceURL string) ([]Rule, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", sourceURL, err)
	}
	req.Header.Set("User-Agent", updaterUserAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %v", sourceURL, ErrNetwork, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			u.log.Warn().Err(closeErr).Str("url", sourceURL).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %w: HTTP %d", sourceURL, ErrNetwork, resp.StatusCode)
	}

	rules, err := ParseRules(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", sourceURL, ErrParse, err)
	}
	return rules, nil
}
