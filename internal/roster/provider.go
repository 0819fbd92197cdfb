// Package roster maintains the player/team name index and resolves entity
// mentions in normalized prompt text. The index is read-only to the
// estimation pipeline and refreshed in the background on its own TTL.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/models"
	"github.com/yourusername/longshot/internal/provider"
)

// ProviderConfig configures the roster index provider client
type ProviderConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Provider pulls the player list from the external roster index
type Provider struct {
	httpClient *provider.RateLimitedHTTPClient
	cfg        ProviderConfig
	logger     logrus.FieldLogger
}

// NewProvider creates a roster provider client
func NewProvider(cfg ProviderConfig, httpClient *provider.RateLimitedHTTPClient, logger logrus.FieldLogger) *Provider {
	return &Provider{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

type listPlayersResponse struct {
	Players []models.Player `json:"players"`
}

// ListPlayers pulls the full player list from the provider
func (p *Provider) ListPlayers(ctx context.Context) ([]models.Player, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	url := fmt.Sprintf("%s/v1/players?key=%s", p.cfg.BaseURL, p.cfg.APIKey)
	resp, err := p.httpClient.Get(ctx, url)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: roster list: %v", models.ErrProviderTimeout, err)
		}
		return nil, fmt.Errorf("%w: roster list: %v", models.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: roster list status %d", models.ErrProviderUnavailable, resp.StatusCode)
	}

	var parsed listPlayersResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: roster list: %v", models.ErrMalformedResponse, err)
	}

	p.logger.WithField("players", len(parsed.Players)).Debug("Roster list fetched")
	return parsed.Players, nil
}
