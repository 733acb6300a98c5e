// Package oddsapi fetches the totals market for NBA games from The
// Odds API.
package oddsapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/lucabrevi/nba-totals/internal/domain/game"
	"github.com/lucabrevi/nba-totals/internal/domain/odds"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
	"github.com/lucabrevi/nba-totals/internal/platform/resilience"
)

const (
	defaultBaseURL = "https://api.the-odds-api.com/v4"
	sportKey       = "basketball_nba"
)

var apiKeyParamRegex = regexp.MustCompile(`apiKey=[^&\s"']+`)
var errOddsTransient = crerr.New("oddsapi transient failure")

// Game times are published in UTC; the betting day follows US Eastern.
var easternTZ = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("ET", -5*3600)
	}
	return loc
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type eventPayload struct {
	CommenceTime time.Time        `json:"commence_time"`
	HomeTeam     string           `json:"home_team"`
	AwayTeam     string           `json:"away_team"`
	Bookmakers   []bookmakerBlock `json:"bookmakers"`
}

type bookmakerBlock struct {
	Key     string        `json:"key"`
	Markets []marketBlock `json:"markets"`
}

type marketBlock struct {
	Key      string         `json:"key"`
	Outcomes []outcomeBlock `json:"outcomes"`
}

type outcomeBlock struct {
	Name  string   `json:"name"`
	Point *float64 `json:"point"`
}

// FetchTotals returns one row per matchup with the consensus (mean)
// totals line across bookmakers. Team names are resolved to tricodes;
// events with unknown names are dropped with a warning.
func (c *Client) FetchTotals(ctx context.Context) ([]odds.Row, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("odds api key is not configured")
	}

	query := map[string]string{
		"regions":    "us",
		"markets":    "totals",
		"oddsFormat": "american",
	}

	var events []eventPayload
	if err := c.doJSON(ctx, "/sports/"+sportKey+"/odds", query, &events); err != nil {
		return nil, fmt.Errorf("fetch totals market: %w", err)
	}

	out := make([]odds.Row, 0, len(events))
	for _, ev := range events {
		home, okHome := game.CodeForTeamName(ev.HomeTeam)
		away, okAway := game.CodeForTeamName(ev.AwayTeam)
		if !okHome || !okAway {
			c.logger.WarnContext(ctx, "skipping odds event with unknown team name",
				"home", ev.HomeTeam,
				"away", ev.AwayTeam,
			)
			continue
		}

		line := consensusTotal(ev.Bookmakers)
		if line == nil {
			continue
		}

		gameDate := ev.CommenceTime.In(easternTZ)
		out = append(out, odds.Row{
			Date:        time.Date(gameDate.Year(), gameDate.Month(), gameDate.Day(), 0, 0, 0, 0, time.UTC),
			HomeTeam:    home,
			AwayTeam:    away,
			CurrentLine: line,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].HomeTeam != out[j].HomeTeam {
			return out[i].HomeTeam < out[j].HomeTeam
		}
		return out[i].AwayTeam < out[j].AwayTeam
	})
	return out, nil
}

// consensusTotal averages the Over point across every bookmaker that
// quotes the totals market.
func consensusTotal(bookmakers []bookmakerBlock) *float64 {
	sum, n := 0.0, 0
	for _, b := range bookmakers {
		for _, m := range b.Markets {
			if m.Key != "totals" {
				continue
			}
			for _, o := range m.Outcomes {
				if strings.EqualFold(o.Name, "Over") && o.Point != nil {
					sum += *o.Point
					n++
				}
			}
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "oddsapi circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("odds provider is temporarily unavailable: %w", err)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("apiKey", c.apiKey)

	fullURL := c.baseURL + path + "?" + values.Encode()
	key := path + "?" + values.Encode()

	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errOddsTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode odds payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errOddsTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errOddsTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				lastErr = fmt.Errorf("%w: provider status=%d", errOddsTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "oddsapi request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func sanitizeSensitiveText(value, key string) string {
	value = strings.TrimSpace(value)
	if key != "" {
		value = strings.ReplaceAll(value, key, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "apiKey=REDACTED")
}

func redactAPIURL(fullURL string) string {
	return apiKeyParamRegex.ReplaceAllString(fullURL, "apiKey=REDACTED")
}
