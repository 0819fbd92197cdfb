package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/models"
	"github.com/yourusername/longshot/internal/provider"
)

// Config holds generative-gateway settings
type Config struct {
	Enabled     bool          `mapstructure:"enabled"`
	Endpoint    string        `mapstructure:"endpoint" validate:"omitempty,url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
}

// DefaultConfig returns gateway defaults. The gateway is off unless
// explicitly enabled with an endpoint and key.
func DefaultConfig() Config {
	return Config{
		Endpoint:    "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		Timeout:     8 * time.Second,
		MaxTokens:   400,
		Temperature: 0,
	}
}

const systemPrompt = `You estimate probabilities for NFL hypotheticals. ` +
	`Respond with exactly one JSON object and nothing else: ` +
	`{"probability_pct": <number in (0,100)>, "confidence": "Low"|"Medium"|"High", ` +
	`"assumptions": [<strings>], "entities": [<strings>]}. ` +
	`If the question is not a measurable future event, respond {"error": "insufficient_data"}.`

var hasDigitRe = regexp.MustCompile(`\d`)
var measurableVerbRe = regexp.MustCompile(`\b(?:wins?|throws?|rushes?|passes|catches|records?|makes?|miss(?:es)?|goes|scores?|reach(?:es)?)\b`)

// Heuristic supplies a fast prior-based estimate when the generative
// provider times out or answers with something unusable. A nil estimate
// means no prior applies and the decline stands.
type Heuristic interface {
	Estimate(text string, entities []models.Entity) *models.ProbabilityEstimate
}

// Gateway prices prompts the deterministic resolvers declined, by asking a
// chat-completions model for a structured estimate. It is a last resort:
// eligibility is gated, responses are parsed strictly, and every answer is
// tagged generative_fallback with confidence capped at Low. Provider
// failures degrade to the heuristic tier before declining outright.
type Gateway struct {
	cfg       Config
	client    *provider.RateLimitedHTTPClient
	heuristic Heuristic
	logger    logrus.FieldLogger
}

func NewGateway(cfg Config, client *provider.RateLimitedHTTPClient, logger logrus.FieldLogger) *Gateway {
	return &Gateway{cfg: cfg, client: client, logger: logger.WithField("component", "fallback")}
}

// SetHeuristic installs the degraded-path estimator. Leaving it unset
// disables the intermediate tier, so provider failures decline directly.
func (g *Gateway) SetHeuristic(h Heuristic) {
	g.heuristic = h
}

// Enabled reports whether the gateway can be consulted at all
func (g *Gateway) Enabled() bool {
	return g.cfg.Enabled && g.cfg.Endpoint != "" && g.cfg.APIKey != ""
}

// Eligible reports whether a declined prompt may be escalated: it must
// name at least one resolved entity, look like a measurable event, and not
// be one of the shapes the engine already knows it cannot support.
func Eligible(text string, entities []models.Entity, subjective bool) bool {
	if subjective {
		return false
	}
	if len(entities) == 0 {
		return false
	}
	return hasDigitRe.MatchString(text) || measurableVerbRe.MatchString(text)
}

// Estimate asks the model for a structured probability. Failures never
// propagate as errors: an unreachable or misbehaving model yields a
// decline, and the caller keeps its deterministic sentinel semantics.
func (g *Gateway) Estimate(ctx context.Context, text string, entities []models.Entity) models.Outcome {
	if !g.Enabled() {
		return models.Declined(models.SourceUnsupported, "generative fallback disabled")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout())
	defer cancel()

	raw, err := g.complete(callCtx, text)
	if err != nil {
		g.logger.WithError(err).Warn("generative fallback unavailable")
		return g.degrade(text, entities, "generative fallback unavailable")
	}

	parsed, err := parseStructured(raw)
	if err != nil {
		g.logger.WithError(err).Warn("generative fallback returned an unusable answer")
		return g.degrade(text, entities, "generative fallback returned an unusable answer")
	}
	if parsed.Err == "insufficient_data" {
		return models.Declined(models.SourceUnsupported, "insufficient data for a grounded estimate")
	}
	if parsed.ProbabilityPct <= 0 || parsed.ProbabilityPct >= 100 {
		return g.degrade(text, entities,
			fmt.Sprintf("generative probability %.2f out of range", parsed.ProbabilityPct))
	}

	assumptions := append([]string{"estimated by the generative fallback, not a calibrated model"},
		parsed.Assumptions...)

	return models.Resolved(&models.ProbabilityEstimate{
		ProbabilityPct: parsed.ProbabilityPct,
		Confidence:     models.ConfidenceLow,
		SourceType:     models.SourceGenerativeFallback,
		Label:          text,
		Rationale:      "Structured estimate from the generative gateway for a shape outside the deterministic resolver families.",
		Assumptions:    assumptions,
	})
}

// degrade tries the heuristic tier after a provider-side failure. Policy
// declines (disabled gateway, model-reported insufficient data) never reach
// here: only unreachable providers and malformed answers do.
func (g *Gateway) degrade(text string, entities []models.Entity, detail string) models.Outcome {
	if g.heuristic != nil {
		if est := g.heuristic.Estimate(text, entities); est != nil {
			g.logger.WithField("cause", detail).Info("degraded to heuristic prior")
			return models.Resolved(est)
		}
	}
	return models.Declined(models.SourceUnsupported, detail)
}

func (g *Gateway) timeout() time.Duration {
	if g.cfg.Timeout > 0 {
		return g.cfg.Timeout
	}
	return 8 * time.Second
}

func (g *Gateway) complete(ctx context.Context, question string) (string, error) {
	body := map[string]any{
		"model": g.cfg.Model,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": question},
		},
		"max_tokens":  g.cfg.MaxTokens,
		"temperature": g.cfg.Temperature,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(g.cfg.Endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("completion: %w", models.ErrProviderTimeout)
		}
		return "", fmt.Errorf("completion: %w: %v", models.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion: %w: %v", models.ErrMalformedResponse, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion status %d: %w", resp.StatusCode, models.ErrProviderUnavailable)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse completion: %w: %v", models.ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty completion: %w", models.ErrMalformedResponse)
	}
	return parsed.Choices[0].Message.Content, nil
}

type structuredAnswer struct {
	ProbabilityPct float64  `json:"probability_pct"`
	Confidence     string   `json:"confidence"`
	Assumptions    []string `json:"assumptions"`
	Entities       []string `json:"entities"`
	Err            string   `json:"error"`
}

// parseStructured extracts the single JSON object the system prompt
// demands. Anything else, including prose around the object, is rejected.
func parseStructured(content string) (*structuredAnswer, error) {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in completion: %w", models.ErrMalformedResponse)
	}

	dec := json.NewDecoder(strings.NewReader(content[start : end+1]))
	dec.DisallowUnknownFields()
	var ans structuredAnswer
	if err := dec.Decode(&ans); err != nil {
		return nil, fmt.Errorf("malformed structured answer: %w: %v", models.ErrMalformedResponse, err)
	}
	return &ans, nil
}
