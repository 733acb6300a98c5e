package nbastats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

const scoreboardFixture = `{
  "resultSets": [
    {
      "name": "GameHeader",
      "headers": ["GAME_DATE_EST", "GAME_ID", "GAME_STATUS_TEXT", "HOME_TEAM_ID", "VISITOR_TEAM_ID"],
      "rowSet": [
        ["2025-11-02T00:00:00", "0022500123", "Final", 1610612738, 1610612752],
        ["2025-11-02T00:00:00", "0022500124", "8:00 pm ET", 1610612748, 1610612741]
      ]
    },
    {
      "name": "LineScore",
      "headers": ["GAME_ID", "TEAM_ID", "TEAM_ABBREVIATION", "PTS"],
      "rowSet": [
        ["0022500123", 1610612738, "BOS", 110],
        ["0022500123", 1610612752, "NYK", 105],
        ["0022500124", 1610612748, "MIA", null]
      ]
    }
  ]
}`

func TestFetchScoreboardParsesResultSets(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scoreboardFixture))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		Logger:  logging.NewNop(),
	})

	date := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	headers, lineScores, err := client.FetchScoreboard(context.Background(), date)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotPath == "" || gotPath[:len("/scoreboardv2")] != "/scoreboardv2" {
		t.Fatalf("unexpected path %q", gotPath)
	}

	if len(headers) != 2 {
		t.Fatalf("headers = %d, want 2", len(headers))
	}
	h := headers[0]
	if h.GameID != 22500123 || h.StatusText != "Final" {
		t.Fatalf("header = %+v", h)
	}
	if h.Date == nil || h.Date.Format("2006-01-02") != "2025-11-02" {
		t.Fatalf("header date = %v", h.Date)
	}
	if h.HomeTeamID != "1610612738" || h.AwayTeamID != "1610612752" {
		t.Fatalf("team ids = %s/%s", h.HomeTeamID, h.AwayTeamID)
	}

	if len(lineScores) != 3 {
		t.Fatalf("line scores = %d, want 3", len(lineScores))
	}
	if lineScores[0].Points == nil || *lineScores[0].Points != 110 {
		t.Fatalf("points = %v", lineScores[0].Points)
	}
	if lineScores[2].Points != nil {
		t.Fatal("null points must stay nil")
	}
}

func TestFetchScoreboardRetriesServerErrors(t *testing.T) {
	t.Parallel()

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultSets":[]}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL:    srv.URL,
		MaxRetries: 2,
		Logger:     logging.NewNop(),
	})

	_, _, err := client.FetchScoreboard(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}
