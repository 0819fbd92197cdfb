package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/models"
	"github.com/yourusername/longshot/internal/oddsmath"
	"github.com/yourusername/longshot/internal/provider"
)

// Config holds odds-provider settings. Sport keys bind each futures market
// to the provider's outright competition; a market without a key has no
// live reference line and resolvers fall back to modeled baselines.
type Config struct {
	BaseURL   string            `mapstructure:"base_url" validate:"required,url"`
	APIKey    string            `mapstructure:"api_key"`
	Region    string            `mapstructure:"region"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	CacheTTL  time.Duration     `mapstructure:"cache_ttl"`
	SportKeys map[string]string `mapstructure:"sport_keys"`
}

// DefaultConfig returns production defaults for The Odds API shape
func DefaultConfig() Config {
	return Config{
		BaseURL:  "https://api.the-odds-api.com",
		Region:   "us",
		Timeout:  10 * time.Second,
		CacheTTL: 15 * time.Minute,
		SportKeys: map[string]string{
			"super_bowl": "americanfootball_nfl_super_bowl_winner",
		},
	}
}

// Feed fetches outright futures lines and serves them as market references.
// References are cached per market for a short TTL so a burst of prompts
// about the same market costs one upstream call.
type Feed struct {
	cfg    Config
	client *provider.RateLimitedHTTPClient
	logger logrus.FieldLogger

	refs *gocache.Cache

	mu        sync.RWMutex
	fetchedAt time.Time
}

// NewFeed creates a market-odds feed
func NewFeed(cfg Config, client *provider.RateLimitedHTTPClient, logger logrus.FieldLogger) *Feed {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	return &Feed{
		cfg:    cfg,
		client: client,
		logger: logger.WithField("component", "oddsfeed"),
		refs:   gocache.New(cfg.CacheTTL, cfg.CacheTTL*2),
	}
}

// GetReference returns the live reference line for a market and entity, or
// a models.ErrNotFound-wrapped error when the provider carries no line.
func (f *Feed) GetReference(ctx context.Context, market, entity string) (*models.MarketReference, error) {
	sportKey, ok := f.cfg.SportKeys[market]
	if !ok {
		return nil, fmt.Errorf("market %s: %w", market, models.ErrNotFound)
	}

	key := refKey(market, entity)
	if v, found := f.refs.Get(key); found {
		if ref, ok := v.(*models.MarketReference); ok {
			return ref, nil
		}
	}

	refs, err := f.fetchOutrights(ctx, market, sportKey)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		f.refs.Set(refKey(market, ref.Entity), ref, f.cfg.CacheTTL)
	}

	if v, found := f.refs.Get(key); found {
		if ref, ok := v.(*models.MarketReference); ok {
			return ref, nil
		}
	}
	return nil, fmt.Errorf("no %s line for %s: %w", market, entity, models.ErrNotFound)
}

// MarketProbs returns the implied probabilities currently cached, keyed
// market:entity, for snapshot fingerprinting.
func (f *Feed) MarketProbs() map[string]float64 {
	out := make(map[string]float64)
	for key, item := range f.refs.Items() {
		if ref, ok := item.Object.(*models.MarketReference); ok {
			out[key] = ref.ImpliedProbabilityPct
		}
	}
	return out
}

// FetchedAt reports the last successful upstream fetch
func (f *Feed) FetchedAt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.fetchedAt
}

// Refresh warms the reference cache for every configured market
func (f *Feed) Refresh(ctx context.Context) error {
	var firstErr error
	for market, sportKey := range f.cfg.SportKeys {
		refs, err := f.fetchOutrights(ctx, market, sportKey)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, ref := range refs {
			f.refs.Set(refKey(market, ref.Entity), ref, f.cfg.CacheTTL)
		}
	}
	return firstErr
}

func (f *Feed) fetchOutrights(ctx context.Context, market, sportKey string) ([]*models.MarketReference, error) {
	params := url.Values{}
	params.Set("apiKey", f.cfg.APIKey)
	params.Set("regions", f.cfg.Region)
	params.Set("markets", "outrights")
	params.Set("oddsFormat", "american")
	params.Set("dateFormat", "iso")

	fullURL := fmt.Sprintf("%s/v4/sports/%s/odds?%s", f.cfg.BaseURL, sportKey, params.Encode())

	fetchCtx := ctx
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	resp, err := f.client.Get(fetchCtx, fullURL)
	if err != nil {
		if fetchCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("fetch %s outrights: %w", market, models.ErrProviderTimeout)
		}
		return nil, fmt.Errorf("fetch %s outrights: %w: %v", market, models.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s outrights: %w: %v", market, models.ErrMalformedResponse, err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetch %s outrights: status %d: %w", market, resp.StatusCode, models.ErrProviderUnavailable)
	}

	var events []oddsEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("parse %s outrights: %w: %v", market, models.ErrMalformedResponse, err)
	}

	refs := f.parseOutrights(market, events)

	f.mu.Lock()
	f.fetchedAt = time.Now()
	f.mu.Unlock()

	f.logger.WithFields(logrus.Fields{"market": market, "lines": len(refs)}).Debug("refreshed outright lines")
	return refs, nil
}

// parseOutrights keeps the best (most probable) line per outcome across
// bookmakers, converting prices to implied percentages.
func (f *Feed) parseOutrights(market string, events []oddsEvent) []*models.MarketReference {
	best := make(map[string]*models.MarketReference)

	for _, event := range events {
		for _, bk := range event.Bookmakers {
			asOf, err := time.Parse(time.RFC3339, bk.LastUpdate)
			if err != nil {
				asOf = time.Now()
			}
			for _, mk := range bk.Markets {
				if mk.Key != "outrights" {
					continue
				}
				for _, oc := range mk.Outcomes {
					implied, err := oddsmath.AmericanToImpliedPct(oc.Price)
					if err != nil {
						continue
					}
					name := strings.ToLower(oc.Name)
					if cur, ok := best[name]; ok && cur.ImpliedProbabilityPct >= implied {
						continue
					}
					best[name] = &models.MarketReference{
						Market:                market,
						Entity:                oc.Name,
						AmericanOdds:          oc.Price,
						ImpliedProbabilityPct: implied,
						AsOfDate:              asOf,
						ProviderLabel:         bk.Title,
					}
				}
			}
		}
	}

	out := make([]*models.MarketReference, 0, len(best))
	for _, ref := range best {
		out = append(out, ref)
	}
	return out
}

func refKey(market, entity string) string {
	return market + ":" + strings.ToLower(entity)
}

// wire structures matching the provider's JSON

type oddsEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime string      `json:"commence_time"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key        string      `json:"key"`
	Title      string      `json:"title"`
	LastUpdate string      `json:"last_update"`
	Markets    []oddMarket `json:"markets"`
}

type oddMarket struct {
	Key      string    `json:"key"`
	Outcomes []outcome `json:"outcomes"`
}

type outcome struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}
