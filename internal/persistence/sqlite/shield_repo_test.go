package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw3do/sw3do-browser/internal/persistence/sqlite"
	"github.com/sw3do/sw3do-browser/internal/shield"
)

func TestShieldRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "sw3do.sqlite")

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	repo := sqlite.NewShieldRepository(db)

	s := shield.DefaultSiteShields("news.example")
	s.ThirdPartyCookies = true
	s.AdsBlocked = 7
	s.LastUpdated = time.Unix(1700000000, 0)
	require.NoError(t, repo.Upsert(ctx, s))

	got, err := repo.Get(ctx, "news.example")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "news.example", got.Domain)
	assert.True(t, got.AdBlocking)
	assert.True(t, got.ThirdPartyCookies)
	assert.Equal(t, uint64(7), got.AdsBlocked)
	assert.Equal(t, int64(1700000000), got.LastUpdated.Unix())

	// Upsert replaces in full.
	s.AdBlocking = false
	s.AdsBlocked = 8
	require.NoError(t, repo.Upsert(ctx, s))

	got, err = repo.Get(ctx, "news.example")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.AdBlocking)
	assert.Equal(t, uint64(8), got.AdsBlocked)

	require.NoError(t, repo.Delete(ctx, "news.example"))
	got, err = repo.Get(ctx, "news.example")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestShieldRepository_GetAll(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "sw3do.sqlite")

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	repo := sqlite.NewShieldRepository(db)

	for _, domain := range []string{"b.example", "a.example", "c.example"} {
		require.NoError(t, repo.Upsert(ctx, shield.DefaultSiteShields(domain)))
	}

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a.example", all[0].Domain)
	assert.Equal(t, "b.example", all[1].Domain)
	assert.Equal(t, "c.example", all[2].Domain)
}

func TestStatsRepository(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "sw3do.sqlite")

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	repo := sqlite.NewStatsRepository(db)

	t.Run("load with no row returns fresh stats", func(t *testing.T) {
		stats, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalAdsBlocked)
		assert.False(t, stats.LastReset.IsZero())
	})

	t.Run("save and load roundtrip", func(t *testing.T) {
		stats := shield.GlobalStats{
			TotalAdsBlocked:      10,
			TotalTrackersBlocked: 4,
			TotalScriptsBlocked:  1,
			BandwidthSaved:       15 * 30 * 1024,
			LastReset:            time.Unix(1700000000, 0),
		}
		require.NoError(t, repo.Save(ctx, stats))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, stats.TotalAdsBlocked, loaded.TotalAdsBlocked)
		assert.Equal(t, stats.TotalTrackersBlocked, loaded.TotalTrackersBlocked)
		assert.Equal(t, stats.TotalScriptsBlocked, loaded.TotalScriptsBlocked)
		assert.Equal(t, stats.BandwidthSaved, loaded.BandwidthSaved)
		assert.Equal(t, int64(1700000000), loaded.LastReset.Unix())
	})
}

func TestListStateRepository(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "sw3do.sqlite")

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	repo := sqlite.NewListStateRepository(db)

	info := shield.ListInfo{
		Name:        "easylist",
		SourceURL:   "https://example.com/easylist.txt",
		Enabled:     true,
		LastUpdated: time.Unix(1700000000, 0),
	}
	require.NoError(t, repo.Upsert(ctx, info))

	got, err := repo.Get(ctx, "easylist")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, info.SourceURL, got.SourceURL)
	assert.True(t, got.Enabled)
	assert.Equal(t, int64(1700000000), got.LastUpdated.Unix())

	info.Enabled = false
	require.NoError(t, repo.Upsert(ctx, info))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Enabled)

	missing, err := repo.Get(ctx, "easyprivacy")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
