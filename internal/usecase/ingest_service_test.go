package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lucabrevi/nba-totals/internal/domain/game"
	"github.com/lucabrevi/nba-totals/internal/domain/odds"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

type stubOddsStore struct {
	rows  []odds.Row
	saved [][]odds.Row
}

func (s *stubOddsStore) Load(ctx context.Context) ([]odds.Row, error) { return s.rows, nil }
func (s *stubOddsStore) Save(ctx context.Context, rows []odds.Row) error {
	s.saved = append(s.saved, rows)
	s.rows = rows
	return nil
}

type stubScoreboard struct {
	mu         sync.Mutex
	fetched    []string
	headers    map[string][]game.HeaderRow
	lineScores map[string][]game.LineScoreRow
	failDates  map[string]bool
}

func (s *stubScoreboard) FetchScoreboard(ctx context.Context, date time.Time) ([]game.HeaderRow, []game.LineScoreRow, error) {
	day := date.Format("2006-01-02")
	s.mu.Lock()
	s.fetched = append(s.fetched, day)
	s.mu.Unlock()
	if s.failDates[day] {
		return nil, nil, fmt.Errorf("scoreboard unavailable")
	}
	return s.headers[day], s.lineScores[day], nil
}

func (s *stubScoreboard) fetchedDays() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.fetched))
	copy(out, s.fetched)
	return out
}

type stubOddsFeed struct {
	rows []odds.Row
	err  error
}

func (s *stubOddsFeed) FetchTotals(ctx context.Context) ([]odds.Row, error) {
	return s.rows, s.err
}

func pfloat(v float64) *float64 { return &v }

var ingestTarget = *testDate("2025-11-03")

func newTestIngester(
	scoreboard *stubScoreboard,
	oddsFeed *stubOddsFeed,
	sources *stubSourceStore,
	oddsRepo *stubOddsStore,
	cfg IngestConfig,
) *IngestService {
	var feed OddsProvider
	if oddsFeed != nil {
		feed = oddsFeed
	}
	var repo odds.Repository
	if oddsRepo != nil {
		repo = oddsRepo
	}
	svc := NewIngestService(scoreboard, feed, sources, repo, cfg, logging.NewNop())
	svc.now = func() time.Time { return ingestTarget }
	return svc
}

func TestIngestDailyWindowFetchesYesterdayAndToday(t *testing.T) {
	t.Parallel()

	scoreboard := &stubScoreboard{
		headers: map[string][]game.HeaderRow{
			"2025-11-02": {{GameID: 1001, Date: testDate("2025-11-02"), StatusText: "Final", HomeTeamID: "1610612738", AwayTeamID: "1610612752"}},
			"2025-11-03": {{GameID: 1002, Date: testDate("2025-11-03"), StatusText: "7:30 pm ET", HomeTeamID: "1610612748", AwayTeamID: "1610612738"}},
		},
		lineScores: map[string][]game.LineScoreRow{
			"2025-11-02": {
				{GameID: 1001, TeamID: "1610612738", Points: pint(110)},
				{GameID: 1001, TeamID: "1610612752", Points: pint(105)},
			},
		},
	}
	sources := &stubSourceStore{
		// Stale copy of game 1001 from an earlier run; the refetch wins.
		headers: []game.HeaderRow{{GameID: 1001, Date: testDate("2025-11-02"), StatusText: "3rd Qtr", HomeTeamID: "1610612738", AwayTeamID: "1610612752"}},
	}
	svc := newTestIngester(scoreboard, nil, sources, nil, IngestConfig{MaxWorkers: 2})

	summary, err := svc.Ingest(context.Background(), IngestInput{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if summary.DaysRequested != 2 || summary.DaysFailed != 0 {
		t.Fatalf("summary = %+v, want 2 days no failures", summary)
	}
	if days := scoreboard.fetchedDays(); len(days) != 2 {
		t.Fatalf("fetched days = %v, want yesterday and today", days)
	}

	if len(sources.headers) != 2 {
		t.Fatalf("headers = %d, want 2", len(sources.headers))
	}
	for _, h := range sources.headers {
		if h.GameID == 1001 && h.StatusText != "Final" {
			t.Fatalf("stale header survived the refetch: %+v", h)
		}
	}
	if len(sources.lineScores) != 2 {
		t.Fatalf("line scores = %d, want 2", len(sources.lineScores))
	}
}

func TestIngestFullBackfillCoversSeasonWindow(t *testing.T) {
	t.Parallel()

	scoreboard := &stubScoreboard{}
	sources := &stubSourceStore{}
	svc := newTestIngester(scoreboard, nil, sources, nil, IngestConfig{
		SeasonStart: *testDate("2025-10-31"),
		MaxWorkers:  3,
	})

	summary, err := svc.Ingest(context.Background(), IngestInput{Full: true})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if summary.DaysRequested != 4 {
		t.Fatalf("days requested = %d, want 4", summary.DaysRequested)
	}
	if days := scoreboard.fetchedDays(); len(days) != 4 {
		t.Fatalf("fetched days = %v, want the full season window", days)
	}
}

func TestIngestFullBackfillRequiresSeasonStart(t *testing.T) {
	t.Parallel()

	svc := newTestIngester(&stubScoreboard{}, nil, &stubSourceStore{}, nil, IngestConfig{})

	_, err := svc.Ingest(context.Background(), IngestInput{Full: true})
	if err == nil {
		t.Fatal("expected an error without a season start")
	}
}

func TestIngestToleratesSingleFailedDay(t *testing.T) {
	t.Parallel()

	scoreboard := &stubScoreboard{
		headers: map[string][]game.HeaderRow{
			"2025-11-03": {{GameID: 1002, Date: testDate("2025-11-03"), HomeTeamID: "1610612748", AwayTeamID: "1610612738"}},
		},
		failDates: map[string]bool{"2025-11-02": true},
	}
	sources := &stubSourceStore{}
	svc := newTestIngester(scoreboard, nil, sources, nil, IngestConfig{MaxWorkers: 2})

	summary, err := svc.Ingest(context.Background(), IngestInput{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if summary.DaysFailed != 1 {
		t.Fatalf("days failed = %d, want 1", summary.DaysFailed)
	}
	if len(sources.headers) != 1 {
		t.Fatalf("headers = %d, want the surviving day", len(sources.headers))
	}
}

func TestIngestFailsWhenEveryDayFails(t *testing.T) {
	t.Parallel()

	scoreboard := &stubScoreboard{
		failDates: map[string]bool{"2025-11-02": true, "2025-11-03": true},
	}
	svc := newTestIngester(scoreboard, nil, &stubSourceStore{}, nil, IngestConfig{MaxWorkers: 2})

	if _, err := svc.Ingest(context.Background(), IngestInput{}); err == nil {
		t.Fatal("expected an error when no scoreboard day succeeds")
	}
}

func TestIngestMergesOddsAndPromotesClosingLines(t *testing.T) {
	t.Parallel()

	oddsRepo := &stubOddsStore{rows: []odds.Row{
		// Yesterday's matchup, still without a closing line.
		{Date: *testDate("2025-11-02"), HomeTeam: "BOS", AwayTeam: "NYK", CurrentLine: pfloat(217.5)},
		// Settled matchup keeps its confirmed lines.
		{Date: *testDate("2025-11-01"), HomeTeam: "MIA", AwayTeam: "BOS", CurrentLine: pfloat(210.0), ClosingLine: pfloat(211.0), FinalLine: pfloat(211.5)},
	}}
	feed := &stubOddsFeed{rows: []odds.Row{
		{Date: *testDate("2025-11-03"), HomeTeam: "MIA", AwayTeam: "BOS", CurrentLine: pfloat(214.0)},
	}}
	svc := newTestIngester(&stubScoreboard{}, feed, &stubSourceStore{}, oddsRepo, IngestConfig{MaxWorkers: 2})

	summary, err := svc.Ingest(context.Background(), IngestInput{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if summary.OddsTotal != 3 {
		t.Fatalf("odds total = %d, want 3", summary.OddsTotal)
	}
	if summary.ClosingAssigned != 1 {
		t.Fatalf("closing assigned = %d, want 1", summary.ClosingAssigned)
	}

	byKey := make(map[odds.Key]odds.Row)
	for _, row := range oddsRepo.rows {
		byKey[row.Key()] = row
	}

	promoted := byKey[odds.Key{Date: "2025-11-02", HomeTeam: "BOS", AwayTeam: "NYK"}]
	if promoted.ClosingLine == nil || *promoted.ClosingLine != 217.5 {
		t.Fatalf("yesterday's line not promoted to closing: %+v", promoted)
	}

	settled := byKey[odds.Key{Date: "2025-11-01", HomeTeam: "MIA", AwayTeam: "BOS"}]
	if settled.ClosingLine == nil || *settled.ClosingLine != 211.0 {
		t.Fatalf("settled closing line changed: %+v", settled)
	}
	if settled.FinalLine == nil || *settled.FinalLine != 211.5 {
		t.Fatalf("settled final line changed: %+v", settled)
	}

	fresh := byKey[odds.Key{Date: "2025-11-03", HomeTeam: "MIA", AwayTeam: "BOS"}]
	if fresh.CurrentLine == nil || *fresh.CurrentLine != 214.0 {
		t.Fatalf("fresh matchup missing: %+v", fresh)
	}
	if fresh.ClosingLine != nil {
		t.Fatalf("today's matchup must not get a closing line yet: %+v", fresh)
	}
}

func TestIngestKeepsOddsTableOnFeedFailure(t *testing.T) {
	t.Parallel()

	oddsRepo := &stubOddsStore{rows: []odds.Row{
		{Date: *testDate("2025-11-02"), HomeTeam: "BOS", AwayTeam: "NYK", CurrentLine: pfloat(217.5)},
	}}
	feed := &stubOddsFeed{err: fmt.Errorf("quota exhausted")}
	svc := newTestIngester(&stubScoreboard{}, feed, &stubSourceStore{}, oddsRepo, IngestConfig{MaxWorkers: 2})

	if _, err := svc.Ingest(context.Background(), IngestInput{}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(oddsRepo.saved) != 0 {
		t.Fatalf("odds table rewritten despite feed failure: %d saves", len(oddsRepo.saved))
	}
}
