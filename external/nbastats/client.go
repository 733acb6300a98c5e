// Package nbastats fetches scoreboard data from the NBA stats API and
// maps it onto the pipeline's raw source rows.
package nbastats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/lucabrevi/nba-totals/internal/domain/game"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
	"github.com/lucabrevi/nba-totals/internal/platform/resilience"
)

const (
	defaultBaseURL = "https://stats.nba.com/stats"
	leagueID       = "00"
)

var errNBAStatsTransient = crerr.New("nbastats transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
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
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// scoreboardEnvelope is the stats API result-set shape: parallel header
// names and untyped row values.
type scoreboardEnvelope struct {
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// FetchScoreboard returns the game-header and line-score rows for one
// calendar date.
func (c *Client) FetchScoreboard(ctx context.Context, date time.Time) ([]game.HeaderRow, []game.LineScoreRow, error) {
	query := map[string]string{
		"GameDate":  date.Format("01/02/2006"),
		"LeagueID":  leagueID,
		"DayOffset": "0",
	}

	var envelope scoreboardEnvelope
	if err := c.doJSON(ctx, "/scoreboardv2", query, &envelope); err != nil {
		return nil, nil, fmt.Errorf("fetch scoreboard date=%s: %w", date.Format("2006-01-02"), err)
	}

	var headers []game.HeaderRow
	var lineScores []game.LineScoreRow
	for _, rs := range envelope.ResultSets {
		switch rs.Name {
		case "GameHeader":
			headers = parseGameHeaders(rs)
		case "LineScore":
			lineScores = parseLineScores(rs)
		}
	}
	return headers, lineScores, nil
}

func parseGameHeaders(rs resultSet) []game.HeaderRow {
	idx := columnIndex(rs.Headers)
	out := make([]game.HeaderRow, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		gameID, ok := cellInt64(row, col(idx, "GAME_ID"))
		if !ok {
			continue
		}
		out = append(out, game.HeaderRow{
			GameID:     gameID,
			Date:       cellDate(row, col(idx, "GAME_DATE_EST")),
			StatusText: cellString(row, col(idx, "GAME_STATUS_TEXT")),
			HomeTeamID: cellString(row, col(idx, "HOME_TEAM_ID")),
			AwayTeamID: cellString(row, col(idx, "VISITOR_TEAM_ID")),
		})
	}
	return out
}

func parseLineScores(rs resultSet) []game.LineScoreRow {
	idx := columnIndex(rs.Headers)
	out := make([]game.LineScoreRow, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		gameID, ok := cellInt64(row, col(idx, "GAME_ID"))
		if !ok {
			continue
		}
		out = append(out, game.LineScoreRow{
			GameID:           gameID,
			TeamID:           cellString(row, col(idx, "TEAM_ID")),
			TeamAbbreviation: cellString(row, col(idx, "TEAM_ABBREVIATION")),
			Points:           cellInt(row, col(idx, "PTS")),
		})
	}
	return out
}

func columnIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	return idx
}

// col returns the column position or -1 when the result set does not
// carry it.
func col(idx map[string]int, name string) int {
	if i, ok := idx[name]; ok {
		return i
	}
	return -1
}

func cellString(row []any, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// cellDate parses the EST date column, which arrives either as a bare
// date or a date-time.
func cellDate(row []any, idx int) *time.Time {
	s := cellString(row, idx)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

func cellInt64(row []any, idx int) (int64, bool) {
	s := cellString(row, idx)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cellInt(row []any, idx int) *int {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return nil
	}
	switch v := row[idx].(type) {
	case float64:
		value := int(v)
		return &value
	case string:
		value, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &value
	default:
		return nil
	}
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "nbastats circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("stats provider is temporarily unavailable: %w", err)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errNBAStatsTransient) {
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
		return fmt.Errorf("decode scoreboard payload: %w", err)
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
		// The stats endpoint rejects requests without browser-ish
		// headers.
		req.Header.Set("accept", "application/json")
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
		req.Header.Set("Referer", "https://stats.nba.com/")
		req.Header.Set("Origin", "https://stats.nba.com")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errNBAStatsTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errNBAStatsTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errNBAStatsTransient, resp.StatusCode)
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
	c.logger.WarnContext(ctx, "nbastats request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
