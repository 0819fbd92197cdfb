package fallback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/longshot/internal/models"
	"github.com/yourusername/longshot/internal/provider"
)

func playerEntity(name string) models.Entity {
	return models.Entity{Kind: models.EntityPlayer, Player: &models.Player{Name: name}}
}

func TestEligible(t *testing.T) {
	entities := []models.Entity{playerEntity("Patrick Mahomes")}

	assert.True(t, Eligible("mahomes throws 6 touchdowns in one game", entities, false))
	assert.True(t, Eligible("mahomes wins a game in the snow", entities, false))
	assert.False(t, Eligible("mahomes throws 6 touchdowns in one game", entities, true))
	assert.False(t, Eligible("mahomes throws 6 touchdowns in one game", nil, false))
	assert.False(t, Eligible("something about mahomes legacy", entities, false))
}

func completionResponse(content string) string {
	body := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = srv.URL
	cfg.APIKey = "test-key"

	return NewGateway(cfg, provider.NewRateLimitedHTTPClient(provider.DefaultHTTPClientConfig(), logger), logger)
}

func TestEstimateStructuredAnswer(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(completionResponse(
			`{"probability_pct": 3.5, "confidence": "Medium", "assumptions": ["six-touchdown games are rare"], "entities": ["Patrick Mahomes"]}`)))
	})

	out := gw.Estimate(context.Background(), "mahomes throws 6 touchdowns in one game",
		[]models.Entity{playerEntity("Patrick Mahomes")})

	require.True(t, out.OK())
	est := out.Resolved
	assert.Equal(t, models.SourceGenerativeFallback, est.SourceType)
	// always tagged Low regardless of the model's own confidence claim
	assert.Equal(t, models.ConfidenceLow, est.Confidence)
	assert.InDelta(t, 3.5, est.ProbabilityPct, 0.01)
	assert.Contains(t, est.Assumptions[0], "generative fallback")
}

func TestEstimateToleratesProseAroundObject(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse(
			"Here is my estimate:\n" + `{"probability_pct": 10, "confidence": "Low", "assumptions": [], "entities": []}` + "\nHope that helps.")))
	})

	out := gw.Estimate(context.Background(), "prompt", []models.Entity{playerEntity("x")})

	require.True(t, out.OK())
	assert.InDelta(t, 10.0, out.Resolved.ProbabilityPct, 0.01)
}

func TestEstimateInsufficientData(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse(`{"error": "insufficient_data"}`)))
	})

	out := gw.Estimate(context.Background(), "prompt", nil)

	require.False(t, out.OK())
	assert.Equal(t, models.SourceUnsupported, out.Declined.Reason)
	assert.Contains(t, out.Declined.Detail, "insufficient data")
}

func TestEstimateRejectsOutOfRangeProbability(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse(`{"probability_pct": 140, "confidence": "High", "assumptions": [], "entities": []}`)))
	})

	out := gw.Estimate(context.Background(), "prompt", nil)

	require.False(t, out.OK())
	assert.Contains(t, out.Declined.Detail, "out of range")
}

func TestEstimateRejectsUnparseableContent(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse("about a coin flip, maybe fifty-fifty")))
	})

	out := gw.Estimate(context.Background(), "prompt", nil)

	require.False(t, out.OK())
	assert.Equal(t, models.SourceUnsupported, out.Declined.Reason)
}

type stubHeuristic struct {
	est *models.ProbabilityEstimate
}

func (s *stubHeuristic) Estimate(string, []models.Entity) *models.ProbabilityEstimate {
	return s.est
}

func TestEstimateTimeoutDegradesToHeuristic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = srv.URL
	cfg.APIKey = "test-key"
	cfg.Timeout = 20 * time.Millisecond

	clientCfg := provider.DefaultHTTPClientConfig()
	clientCfg.MaxRetries = 0

	gw := NewGateway(cfg, provider.NewRateLimitedHTTPClient(clientCfg, logger), logger)
	gw.SetHeuristic(&stubHeuristic{est: &models.ProbabilityEstimate{
		ProbabilityPct: 3.1,
		Confidence:     models.ConfidenceLow,
		SourceType:     models.SourceHistoricalBaseline,
	}})

	out := gw.Estimate(context.Background(), "prompt", []models.Entity{playerEntity("x")})

	require.True(t, out.OK())
	assert.Equal(t, models.SourceHistoricalBaseline, out.Resolved.SourceType)
	assert.InDelta(t, 3.1, out.Resolved.ProbabilityPct, 0.01)
}

func TestEstimateMalformedDegradesToHeuristic(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a completion payload"))
	})
	gw.SetHeuristic(&stubHeuristic{est: &models.ProbabilityEstimate{
		ProbabilityPct: 2.0,
		Confidence:     models.ConfidenceLow,
		SourceType:     models.SourceHistoricalBaseline,
	}})

	out := gw.Estimate(context.Background(), "prompt", []models.Entity{playerEntity("x")})

	require.True(t, out.OK())
	assert.InDelta(t, 2.0, out.Resolved.ProbabilityPct, 0.01)
}

func TestEstimateInsufficientDataNeverDegrades(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse(`{"error": "insufficient_data"}`)))
	})
	gw.SetHeuristic(&stubHeuristic{est: &models.ProbabilityEstimate{ProbabilityPct: 2.0}})

	out := gw.Estimate(context.Background(), "prompt", nil)

	require.False(t, out.OK())
	assert.Contains(t, out.Declined.Detail, "insufficient data")
}

func TestEstimateDisabledGateway(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	gw := NewGateway(DefaultConfig(), nil, logger)

	out := gw.Estimate(context.Background(), "prompt", nil)

	require.False(t, out.OK())
	assert.Contains(t, out.Declined.Detail, "disabled")
}

func TestParseStructuredRejectsUnknownFields(t *testing.T) {
	_, err := parseStructured(`{"probability_pct": 10, "verdict": "lock of the week"}`)

	assert.Error(t, err)
}
