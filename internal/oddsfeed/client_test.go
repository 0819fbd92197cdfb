package oddsfeed

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/longshot/internal/models"
	"github.com/yourusername/longshot/internal/provider"
)

const outrightsBody = `[
  {
    "id": "evt1",
    "sport_key": "americanfootball_nfl_super_bowl_winner",
    "commence_time": "2027-02-07T23:30:00Z",
    "bookmakers": [
      {
        "key": "draftkings",
        "title": "DraftKings",
        "last_update": "2026-08-30T12:00:00Z",
        "markets": [
          {
            "key": "outrights",
            "outcomes": [
              {"name": "Kansas City Chiefs", "price": 500},
              {"name": "Buffalo Bills", "price": 700}
            ]
          }
        ]
      },
      {
        "key": "fanduel",
        "title": "FanDuel",
        "last_update": "2026-08-30T12:05:00Z",
        "markets": [
          {
            "key": "outrights",
            "outcomes": [
              {"name": "Kansas City Chiefs", "price": 450},
              {"name": "Buffalo Bills", "price": 750}
            ]
          }
        ]
      }
    ]
  }
]`

func newTestFeed(t *testing.T, handler http.HandlerFunc) *Feed {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.APIKey = "test-key"
	cfg.CacheTTL = time.Minute

	return NewFeed(cfg, provider.NewRateLimitedHTTPClient(provider.DefaultHTTPClientConfig(), logger), logger)
}

func TestGetReferenceKeepsBestLine(t *testing.T) {
	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "outrights", r.URL.Query().Get("markets"))
		w.Write([]byte(outrightsBody))
	})

	ref, err := feed.GetReference(context.Background(), "super_bowl", "Kansas City Chiefs")

	require.NoError(t, err)
	// FanDuel's +450 implies more probability than DraftKings' +500
	assert.Equal(t, 450, ref.AmericanOdds)
	assert.Equal(t, "FanDuel", ref.ProviderLabel)
	assert.InDelta(t, 100.0/5.5, ref.ImpliedProbabilityPct, 0.01)
}

func TestGetReferenceCachesAcrossCalls(t *testing.T) {
	var calls atomic.Int32
	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(outrightsBody))
	})

	_, err := feed.GetReference(context.Background(), "super_bowl", "Kansas City Chiefs")
	require.NoError(t, err)
	_, err = feed.GetReference(context.Background(), "super_bowl", "Buffalo Bills")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
}

func TestGetReferenceUnknownMarket(t *testing.T) {
	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(outrightsBody))
	})

	_, err := feed.GetReference(context.Background(), "coach_of_the_year", "Andy Reid")

	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestGetReferenceUnknownEntity(t *testing.T) {
	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(outrightsBody))
	})

	_, err := feed.GetReference(context.Background(), "super_bowl", "London Monarchs")

	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestGetReferenceMalformedBody(t *testing.T) {
	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	})

	_, err := feed.GetReference(context.Background(), "super_bowl", "Kansas City Chiefs")

	assert.True(t, errors.Is(err, models.ErrMalformedResponse))
}

func TestRefreshWarmsEveryMarket(t *testing.T) {
	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(outrightsBody))
	})

	require.NoError(t, feed.Refresh(context.Background()))

	probs := feed.MarketProbs()
	assert.Contains(t, probs, "super_bowl:kansas city chiefs")
	assert.Contains(t, probs, "super_bowl:buffalo bills")
	assert.False(t, feed.FetchedAt().IsZero())
}

func TestParseOutrightsSkipsNonOutrightMarkets(t *testing.T) {
	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
  {"id": "evt1", "bookmakers": [
    {"key": "dk", "title": "DraftKings", "last_update": "2026-08-30T12:00:00Z",
     "markets": [{"key": "h2h", "outcomes": [{"name": "Kansas City Chiefs", "price": 200}]}]}
  ]}
]`))
	})

	_, err := feed.GetReference(context.Background(), "super_bowl", "Kansas City Chiefs")

	assert.True(t, errors.Is(err, models.ErrNotFound))
}
