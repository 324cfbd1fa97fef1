package shield

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testListBody = `! Title: Test List
||ads.example.com^
@@||cdn.example.com^
example.com##.ad-banner
`

func TestUpdaterRefreshAll(t *testing.T) {
	t.Run("refreshes every enabled list", func(t *testing.T) {
		var gotUA atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA.Store(r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(testListBody))
		}))
		defer server.Close()

		e := NewEngine([]ListSource{
			{Name: "easylist", URL: server.URL + "/easylist.txt", Enabled: true},
			{Name: "easyprivacy", URL: server.URL + "/easyprivacy.txt", Enabled: true},
		})
		u := NewUpdater(e, zerolog.Nop())

		require.NoError(t, u.RefreshAll(context.Background()))

		for _, name := range []string{"easylist", "easyprivacy"} {
			info, err := e.List(name)
			require.NoError(t, err)
			assert.Equal(t, 3, info.RuleCount)
			assert.WithinDuration(t, time.Now(), info.LastUpdated, 5*time.Second)
		}
		assert.Equal(t, updaterUserAgent, gotUA.Load())

		assert.True(t, e.ShouldBlock("https://ads.example.com/banner.js", ResourceScript, "news.example"))
		assert.False(t, e.ShouldBlock("https://cdn.example.com/lib.js", ResourceScript, "news.example"))
	})

	t.Run("failed list keeps previous rules and reports the error", func(t *testing.T) {
		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(testListBody))
		}))
		defer good.Close()
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer bad.Close()

		e := NewEngine([]ListSource{
			{Name: "good", URL: good.URL, Enabled: true},
			{Name: "bad", URL: bad.URL, Enabled: true},
		})
		require.NoError(t, e.AddRule("bad", NewRule("previous.example", RuleBlock)))
		before, err := e.List("bad")
		require.NoError(t, err)

		u := NewUpdater(e, zerolog.Nop())
		err = u.RefreshAll(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNetwork)
		assert.Contains(t, err.Error(), "refresh bad")

		goodInfo, err := e.List("good")
		require.NoError(t, err)
		assert.Equal(t, 3, goodInfo.RuleCount, "the healthy list still refreshed")

		after, err := e.List("bad")
		require.NoError(t, err)
		assert.Equal(t, before.RuleCount, after.RuleCount)
		assert.Equal(t, before.LastUpdated, after.LastUpdated, "a failed refresh must not touch last_updated")
	})

	t.Run("disabled and sourceless lists are skipped", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte(testListBody))
		}))
		defer server.Close()

		e := NewEngine([]ListSource{
			{Name: "enabled", URL: server.URL, Enabled: true},
			{Name: "disabled", URL: server.URL, Enabled: false},
		})
		require.NoError(t, e.AddList("custom", "", true))

		u := NewUpdater(e, zerolog.Nop())
		require.NoError(t, u.RefreshAll(context.Background()))
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("no lists is a no-op", func(t *testing.T) {
		e := NewEngine(nil)
		u := NewUpdater(e, zerolog.Nop())
		assert.NoError(t, u.RefreshAll(context.Background()))
	})

	t.Run("canceled context aborts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		e := NewEngine([]ListSource{{Name: "slow", URL: server.URL, Enabled: true}})
		u := NewUpdater(e, zerolog.Nop())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := u.RefreshAll(ctx)
		require.Error(t, err)

		info, lookupErr := e.List("slow")
		require.NoError(t, lookupErr)
		assert.Zero(t, info.RuleCount)
	})
}

func TestUpdaterRefreshList(t *testing.T) {
	t.Run("refreshes a single list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(testListBody))
		}))
		defer server.Close()

		e := NewEngine([]ListSource{
			{Name: "easylist", URL: server.URL, Enabled: true},
			{Name: "easyprivacy", URL: server.URL, Enabled: true},
		})
		u := NewUpdater(e, zerolog.Nop())

		require.NoError(t, u.RefreshList(context.Background(), "easylist"))

		easylist, err := e.List("easylist")
		require.NoError(t, err)
		assert.Equal(t, 3, easylist.RuleCount)

		easyprivacy, err := e.List("easyprivacy")
		require.NoError(t, err)
		assert.Zero(t, easyprivacy.RuleCount, "other lists are untouched")
	})

	t.Run("unknown list", func(t *testing.T) {
		e := NewEngine(nil)
		u := NewUpdater(e, zerolog.Nop())
		assert.ErrorIs(t, u.RefreshList(context.Background(), "missing"), ErrListNotFound)
	})

	t.Run("list without source url", func(t *testing.T) {
		e := NewEngine(nil)
		require.NoError(t, e.AddList("custom", "", true))
		u := NewUpdater(e, zerolog.Nop())
		assert.Error(t, u.RefreshList(context.Background(), "custom"))
	})
}
