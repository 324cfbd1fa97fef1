package shield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine([]ListSource{
		{Name: "easylist", URL: "https://example.com/easylist.txt", Enabled: true},
	})
}

func TestEngineShouldBlock(t *testing.T) {
	t.Run("no rules means nothing blocked", func(t *testing.T) {
		e := newTestEngine(t)
		assert.False(t, e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "news.example"))
	})

	t.Run("block rule blocks", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleBlock)))
		assert.True(t, e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "news.example"))
	})

	t.Run("earlier allow beats later block", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleAllow)))
		require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleBlock)))
		assert.False(t, e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "news.example"))
	})

	t.Run("earlier block beats later allow", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleBlock)))
		require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleAllow)))
		assert.True(t, e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "news.example"))
	})

	t.Run("hide rules never decide", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleHide)))
		require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleBlock)))
		assert.True(t, e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "news.example"),
			"scan must continue past the hide rule to the block rule")
	})

	t.Run("lists scanned in registration order", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.AddList("custom", "", true))
		require.NoError(t, e.AddRule("easylist", NewRule("cdn.example", RuleBlock)))
		require.NoError(t, e.AddRule("custom", NewRule("cdn.example", RuleAllow)))
		assert.True(t, e.ShouldBlock("https://cdn.example/app.js", ResourceScript, "news.example"),
			"easylist was registered first so its block decides")
	})

	t.Run("disabled lists are skipped", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleBlock)))
		require.NoError(t, e.SetListEnabled("easylist", false))
		assert.False(t, e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "news.example"))

		require.NoError(t, e.SetListEnabled("easylist", true))
		assert.True(t, e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "news.example"))
	})

	t.Run("unparsable url fails open", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.AddRule("easylist", NewRule(":", RuleBlock)))
		assert.False(t, e.ShouldBlock("http://[::1]:namedport", ResourceScript, "news.example"))
	})

	t.Run("shields fully off overrides rules", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleBlock)))

		s := DefaultSiteShields("news.example")
		s.AdBlocking = false
		s.TrackerBlocking = false
		e.UpdateShields("news.example", s)

		assert.False(t, e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "news.example"))
		assert.True(t, e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "other.example"),
			"the override is scoped to the configured origin")
	})

	t.Run("one shield off still consults rules", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleBlock)))

		s := DefaultSiteShields("news.example")
		s.AdBlocking = false
		e.UpdateShields("news.example", s)

		assert.True(t, e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "news.example"))
	})

	t.Run("third party cookie blocking blocks cross domain", func(t *testing.T) {
		e := newTestEngine(t)

		s := DefaultSiteShields("news.example")
		s.ThirdPartyCookies = true
		e.UpdateShields("news.example", s)

		assert.True(t, e.ShouldBlock("https://cdn.example/lib.js", ResourceScript, "news.example"))
		assert.False(t, e.ShouldBlock("https://news.example/app.js", ResourceScript, "news.example"))
	})

	t.Run("default shields do not block cross domain", func(t *testing.T) {
		e := newTestEngine(t)
		assert.False(t, e.ShouldBlock("https://cdn.example/lib.js", ResourceScript, "news.example"),
			"an origin with no persisted entry gets no third-party blocking")
	})
}

func TestEngineBypass(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleBlock)))

	url := "https://ads.example.com/banner.js"
	e.AllowOnce(url)

	assert.False(t, e.ShouldBlock(url, ResourceScript, "news.example"), "first check consumes the bypass")
	assert.True(t, e.ShouldBlock(url, ResourceScript, "news.example"), "second check is filtered again")
}

func TestEngineShields(t *testing.T) {
	t.Run("unknown domain gets defaults without persisting", func(t *testing.T) {
		e := newTestEngine(t)

		s := e.GetShields("news.example")
		assert.Equal(t, "news.example", s.Domain)
		assert.True(t, s.AdBlocking)
		assert.True(t, s.TrackerBlocking)
		assert.False(t, s.ThirdPartyCookies)
		assert.True(t, s.FingerprintingProtection)
		assert.True(t, s.HTTPSOnly)

		assert.Empty(t, e.AllShields(), "reads must not create entries")
	})

	t.Run("update persists and get returns a copy", func(t *testing.T) {
		e := newTestEngine(t)

		s := DefaultSiteShields("news.example")
		s.HTTPSOnly = false
		e.UpdateShields("news.example", s)

		got := e.GetShields("news.example")
		assert.False(t, got.HTTPSOnly)

		got.HTTPSOnly = true
		assert.False(t, e.GetShields("news.example").HTTPSOnly, "mutation of the copy must not leak")

		require.Len(t, e.AllShields(), 1)
	})

	t.Run("increment without entry is a no-op on both counters", func(t *testing.T) {
		e := newTestEngine(t)

		e.IncrementBlocked("news.example", CategoryAd)

		assert.Zero(t, e.GetShields("news.example").AdsBlocked)
		assert.Zero(t, e.Stats().TotalAdsBlocked)
		assert.Zero(t, e.Stats().BandwidthSaved)
	})

	t.Run("increments accumulate per category and globally", func(t *testing.T) {
		e := newTestEngine(t)
		e.UpdateShields("news.example", DefaultSiteShields("news.example"))

		for i := 0; i < 3; i++ {
			e.IncrementBlocked("news.example", CategoryAd)
		}
		e.IncrementBlocked("news.example", CategoryTracker)
		e.IncrementBlocked("news.example", CategoryTracker)

		s := e.GetShields("news.example")
		assert.Equal(t, uint64(3), s.AdsBlocked)
		assert.Equal(t, uint64(2), s.TrackersBlocked)
		assert.Zero(t, s.ScriptsBlocked)

		stats := e.Stats()
		assert.Equal(t, uint64(3), stats.TotalAdsBlocked)
		assert.Equal(t, uint64(2), stats.TotalTrackersBlocked)
		assert.Equal(t, uint64(5*estimatedBytesPerBlockedRequest), stats.BandwidthSaved)
	})

	t.Run("unknown category is dropped", func(t *testing.T) {
		e := newTestEngine(t)
		e.UpdateShields("news.example", DefaultSiteShields("news.example"))

		e.IncrementBlocked("news.example", "popup")

		assert.Zero(t, e.Stats().BandwidthSaved)
	})

	t.Run("reset zeroes global counters only", func(t *testing.T) {
		e := newTestEngine(t)
		e.UpdateShields("news.example", DefaultSiteShields("news.example"))
		e.IncrementBlocked("news.example", CategoryAd)

		e.ResetStats()

		stats := e.Stats()
		assert.Zero(t, stats.TotalAdsBlocked)
		assert.Zero(t, stats.BandwidthSaved)
		assert.False(t, stats.LastReset.IsZero())

		assert.Equal(t, uint64(1), e.GetShields("news.example").AdsBlocked,
			"per-domain counters survive a global reset")
	})
}

func TestEngineLists(t *testing.T) {
	t.Run("add remove and lookup", func(t *testing.T) {
		e := newTestEngine(t)

		require.NoError(t, e.AddList("easyprivacy", "https://example.com/easyprivacy.txt", true))
		assert.ErrorIs(t, e.AddList("easyprivacy", "https://example.com/other.txt", true), ErrListExists)

		infos := e.Lists()
		require.Len(t, infos, 2)
		assert.Equal(t, "easylist", infos[0].Name)
		assert.Equal(t, "easyprivacy", infos[1].Name)

		info, err := e.List("easyprivacy")
		require.NoError(t, err)
		assert.True(t, info.Enabled)
		assert.Zero(t, info.RuleCount)

		require.NoError(t, e.RemoveList("easyprivacy"))
		assert.ErrorIs(t, e.RemoveList("easyprivacy"), ErrListNotFound)
		_, err = e.List("easyprivacy")
		assert.ErrorIs(t, err, ErrListNotFound)
	})

	t.Run("rule management", func(t *testing.T) {
		e := newTestEngine(t)

		assert.ErrorIs(t, e.AddRule("easylist", NewRule("", RuleBlock)), ErrEmptyPattern)
		assert.ErrorIs(t, e.AddRule("missing", NewRule("x", RuleBlock)), ErrListNotFound)

		require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleBlock)))
		info, err := e.List("easylist")
		require.NoError(t, err)
		assert.Equal(t, 1, info.RuleCount)

		assert.ErrorIs(t, e.RemoveRule("easylist", "nope"), ErrRuleNotFound)
		require.NoError(t, e.RemoveRule("easylist", "ads.example.com"))
		info, err = e.List("easylist")
		require.NoError(t, err)
		assert.Zero(t, info.RuleCount)
	})

	t.Run("replace rules swaps wholesale", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.AddRule("easylist", NewRule("old", RuleBlock)))

		rules, err := ParseRulesString("||ads.example.com^\n@@||cdn.example.com^")
		require.NoError(t, err)
		require.NoError(t, e.ReplaceRules("easylist", rules))

		info, err := e.List("easylist")
		require.NoError(t, err)
		assert.Equal(t, 2, info.RuleCount)
		assert.False(t, e.ShouldBlock("https://site.example/old-banner", ResourceScript, "news.example"))

		assert.ErrorIs(t, e.ReplaceRules("missing", rules), ErrListNotFound)
	})

	t.Run("set enabled on unknown list", func(t *testing.T) {
		e := newTestEngine(t)
		assert.ErrorIs(t, e.SetListEnabled("missing", true), ErrListNotFound)
	})
}

func TestEngineCompiledPatterns(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddRule("easylist", NewRule("doubleclick", RuleBlock)))

	t.Run("invalid expression is rejected", func(t *testing.T) {
		err := e.CompilePattern("doubleclick", "[unclosed")
		assert.Error(t, err)
	})

	t.Run("compiled matcher widens the match", func(t *testing.T) {
		assert.False(t, e.ShouldBlock("https://ads.example.com/track", ResourceScript, "news.example"))

		require.NoError(t, e.CompilePattern("doubleclick", `(?i)/(track|beacon)`))
		assert.True(t, e.ShouldBlock("https://ads.example.com/track", ResourceScript, "news.example"))
	})

	t.Run("drop reverts to containment", func(t *testing.T) {
		e.DropCompiledPattern("doubleclick")
		assert.False(t, e.ShouldBlock("https://ads.example.com/track", ResourceScript, "news.example"))
		assert.True(t, e.ShouldBlock("https://doubleclick.example/ad", ResourceScript, "news.example"))
	})
}

func TestEngineConcurrentAccess(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddRule("easylist", NewRule("ads.example.com", RuleBlock)))
	e.UpdateShields("news.example", DefaultSiteShields("news.example"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			e.IncrementBlocked("news.example", CategoryAd)
			e.UpdateShields("news.example", e.GetShields("news.example"))
		}
	}()

	for i := 0; i < 500; i++ {
		e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "news.example")
		e.Stats()
		e.Lists()
	}
	<-done

	assert.Equal(t, uint64(500), e.Stats().TotalAdsBlocked)
}
