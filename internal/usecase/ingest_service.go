package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/lucabrevi/nba-totals/internal/domain/game"
	"github.com/lucabrevi/nba-totals/internal/domain/odds"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

// ScoreboardProvider fetches the raw scoreboard tables for one
// calendar date.
type ScoreboardProvider interface {
	FetchScoreboard(ctx context.Context, date time.Time) ([]game.HeaderRow, []game.LineScoreRow, error)
}

// OddsProvider fetches the current totals market across upcoming games.
type OddsProvider interface {
	FetchTotals(ctx context.Context) ([]odds.Row, error)
}

type IngestConfig struct {
	SeasonStart time.Time
	MaxWorkers  int
}

type IngestInput struct {
	// TargetDate is the day being processed; zero means today.
	TargetDate time.Time
	// Full refetches every day from the season start instead of the
	// yesterday+today pair.
	Full bool
}

type IngestSummary struct {
	DaysRequested   int `json:"days_requested"`
	DaysFailed      int `json:"days_failed"`
	HeadersTotal    int `json:"headers_total"`
	LineScoresTotal int `json:"line_scores_total"`
	OddsTotal       int `json:"odds_total"`
	ClosingAssigned int `json:"closing_assigned"`
}

type IngestService struct {
	scoreboard ScoreboardProvider
	oddsFeed   OddsProvider
	sources    game.SourceRepository
	oddsRepo   odds.Repository
	cfg        IngestConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewIngestService(
	scoreboard ScoreboardProvider,
	oddsFeed OddsProvider,
	sources game.SourceRepository,
	oddsRepo odds.Repository,
	cfg IngestConfig,
	logger *logging.Logger,
) *IngestService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestService{
		scoreboard: scoreboard,
		oddsFeed:   oddsFeed,
		sources:    sources,
		oddsRepo:   oddsRepo,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

type scoreboardDay struct {
	date       time.Time
	headers    []game.HeaderRow
	lineScores []game.LineScoreRow
	err        error
}

// Ingest pulls the scoreboard for the requested window and the current
// totals market, then folds both into the accumulated source tables.
// Scoreboard days and the odds feed fail independently; a bad day is
// logged and skipped.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (IngestSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.Ingest")
	defer span.End()

	if s.scoreboard == nil || s.sources == nil {
		return IngestSummary{}, fmt.Errorf("%w: ingest is not fully configured", ErrDependencyUnavailable)
	}

	target := dateOnly(input.TargetDate)
	if input.TargetDate.IsZero() {
		target = dateOnly(s.now())
	}

	dates, err := s.resolveIngestDates(target, input.Full)
	if err != nil {
		return IngestSummary{}, err
	}

	summary := IngestSummary{DaysRequested: len(dates)}

	var days []scoreboardDay
	var oddsRows []odds.Row
	var oddsErr error

	var wg conc.WaitGroup
	wg.Go(func() {
		days = s.fetchScoreboardDays(ctx, dates)
	})
	if s.oddsFeed != nil {
		wg.Go(func() {
			oddsRows, oddsErr = s.oddsFeed.FetchTotals(ctx)
		})
	}
	wg.Wait()

	var fetchedHeaders []game.HeaderRow
	var fetchedLineScores []game.LineScoreRow
	for _, day := range days {
		if day.err != nil {
			summary.DaysFailed++
			s.logger.WarnContext(ctx, "scoreboard day fetch failed",
				"date", day.date.Format("2006-01-02"),
				"error", day.err,
			)
			continue
		}
		fetchedHeaders = append(fetchedHeaders, day.headers...)
		fetchedLineScores = append(fetchedLineScores, day.lineScores...)
	}
	if summary.DaysFailed == len(dates) && len(dates) > 0 {
		return summary, fmt.Errorf("%w: every scoreboard day failed", ErrDependencyUnavailable)
	}

	headersTotal, lineScoresTotal, err := s.mergeScoreboard(ctx, fetchedHeaders, fetchedLineScores)
	if err != nil {
		return summary, err
	}
	summary.HeadersTotal = headersTotal
	summary.LineScoresTotal = lineScoresTotal

	if s.oddsFeed != nil && s.oddsRepo != nil {
		if oddsErr != nil {
			s.logger.WarnContext(ctx, "odds fetch failed, keeping existing odds table", "error", oddsErr)
		} else {
			total, assigned, err := s.mergeOdds(ctx, oddsRows, target)
			if err != nil {
				return summary, err
			}
			summary.OddsTotal = total
			summary.ClosingAssigned = assigned
		}
	}

	s.logger.InfoContext(ctx, "ingest pass complete",
		"days_requested", summary.DaysRequested,
		"days_failed", summary.DaysFailed,
		"headers_total", summary.HeadersTotal,
		"line_scores_total", summary.LineScoresTotal,
		"odds_total", summary.OddsTotal,
		"closing_assigned", summary.ClosingAssigned,
	)
	return summary, nil
}

func (s *IngestService) resolveIngestDates(target time.Time, full bool) ([]time.Time, error) {
	if !full {
		return []time.Time{target.AddDate(0, 0, -1), target}, nil
	}

	start := dateOnly(s.cfg.SeasonStart)
	if start.IsZero() {
		return nil, fmt.Errorf("%w: season start date is required for a full backfill", ErrInvalidInput)
	}
	if start.After(target) {
		return nil, fmt.Errorf("%w: season start %s is after target date %s", ErrInvalidInput, start.Format("2006-01-02"), target.Format("2006-01-02"))
	}

	var out []time.Time
	for d := start; !d.After(target); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out, nil
}

func (s *IngestService) fetchScoreboardDays(ctx context.Context, dates []time.Time) []scoreboardDay {
	workerCount := normalizeIngestWorkerCount(s.cfg.MaxWorkers, len(dates))
	results := make(chan scoreboardDay, len(dates))

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		// Fall back to sequential fetching rather than dropping the run.
		s.logger.WarnContext(ctx, "worker pool unavailable, fetching sequentially", "error", err)
		out := make([]scoreboardDay, 0, len(dates))
		for _, date := range dates {
			out = append(out, s.fetchScoreboardDay(ctx, date))
		}
		return out
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, date := range dates {
		date := date
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results <- s.fetchScoreboardDay(ctx, date)
		}); err != nil {
			workers.Done()
			results <- scoreboardDay{date: date, err: fmt.Errorf("submit day to worker pool: %w", err)}
		}
	}

	workers.Wait()
	close(results)

	out := make([]scoreboardDay, 0, len(dates))
	for day := range results {
		out = append(out, day)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].date.Before(out[j].date)
	})
	return out
}

func (s *IngestService) fetchScoreboardDay(ctx context.Context, date time.Time) scoreboardDay {
	headers, lineScores, err := s.scoreboard.FetchScoreboard(ctx, date)
	if err != nil {
		return scoreboardDay{date: date, err: err}
	}
	return scoreboardDay{date: date, headers: headers, lineScores: lineScores}
}

// mergeScoreboard folds the fetched rows into the accumulated source
// tables, newest fetch winning on conflicts.
func (s *IngestService) mergeScoreboard(ctx context.Context, headers []game.HeaderRow, lineScores []game.LineScoreRow) (int, int, error) {
	existingHeaders, err := s.sources.LoadHeaders(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load game headers: %w", err)
	}
	existingLineScores, err := s.sources.LoadLineScores(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load line scores: %w", err)
	}

	mergedHeaders := dedupeHeaders(append(existingHeaders, headers...))
	sort.SliceStable(mergedHeaders, func(i, j int) bool {
		if di, dj := mergedHeaders[i].Date, mergedHeaders[j].Date; di != nil && dj != nil && !di.Equal(*dj) {
			return di.Before(*dj)
		}
		return mergedHeaders[i].GameID < mergedHeaders[j].GameID
	})

	mergedLineScores := dedupeLineScores(append(existingLineScores, lineScores...))
	sort.SliceStable(mergedLineScores, func(i, j int) bool {
		if mergedLineScores[i].GameID != mergedLineScores[j].GameID {
			return mergedLineScores[i].GameID < mergedLineScores[j].GameID
		}
		return mergedLineScores[i].TeamID < mergedLineScores[j].TeamID
	})

	if err := s.sources.SaveHeaders(ctx, mergedHeaders); err != nil {
		return 0, 0, fmt.Errorf("save game headers: %w", err)
	}
	if err := s.sources.SaveLineScores(ctx, mergedLineScores); err != nil {
		return 0, 0, fmt.Errorf("save line scores: %w", err)
	}
	return len(mergedHeaders), len(mergedLineScores), nil
}

// mergeOdds folds the fresh market snapshot into the odds table. A
// matchup already on file keeps its closing line; once the game day is
// behind the target date, the last observed current line is promoted
// to the closing line.
func (s *IngestService) mergeOdds(ctx context.Context, fresh []odds.Row, target time.Time) (int, int, error) {
	existing, err := s.oddsRepo.Load(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load odds: %w", err)
	}

	byKey := make(map[odds.Key]int, len(existing))
	merged := make([]odds.Row, len(existing))
	copy(merged, existing)
	for i, row := range merged {
		byKey[row.Key()] = i
	}

	for _, row := range fresh {
		if i, ok := byKey[row.Key()]; ok {
			merged[i].CurrentLine = row.CurrentLine
			continue
		}
		byKey[row.Key()] = len(merged)
		merged = append(merged, row)
	}

	assigned := 0
	for i := range merged {
		row := &merged[i]
		if row.ClosingLine == nil && row.CurrentLine != nil && dateOnly(row.Date).Before(target) {
			line := *row.CurrentLine
			row.ClosingLine = &line
			assigned++
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Date.Equal(merged[j].Date) {
			return merged[i].Date.Before(merged[j].Date)
		}
		if merged[i].HomeTeam != merged[j].HomeTeam {
			return merged[i].HomeTeam < merged[j].HomeTeam
		}
		return merged[i].AwayTeam < merged[j].AwayTeam
	})

	if err := s.oddsRepo.Save(ctx, merged); err != nil {
		return 0, 0, fmt.Errorf("save odds: %w", err)
	}
	return len(merged), assigned, nil
}

func dedupeHeaders(rows []game.HeaderRow) []game.HeaderRow {
	last := make(map[int64]int, len(rows))
	for i, row := range rows {
		last[row.GameID] = i
	}
	out := make([]game.HeaderRow, 0, len(last))
	for i, row := range rows {
		if last[row.GameID] == i {
			out = append(out, row)
		}
	}
	return out
}

type lineScoreKey struct {
	gameID int64
	teamID string
}

func dedupeLineScores(rows []game.LineScoreRow) []game.LineScoreRow {
	last := make(map[lineScoreKey]int, len(rows))
	for i, row := range rows {
		last[lineScoreKey{row.GameID, row.TeamID}] = i
	}
	out := make([]game.LineScoreRow, 0, len(last))
	for i, row := range rows {
		if last[lineScoreKey{row.GameID, row.TeamID}] == i {
			out = append(out, row)
		}
	}
	return out
}

func normalizeIngestWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 4
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
