package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/lucabrevi/nba-totals/internal/domain/game"
	"github.com/lucabrevi/nba-totals/internal/domain/override"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

// ReconcileService merges the raw source tables, manual overrides and
// the closing-dataset fallback into the canonical per-game table.
// Data-quality problems never fail a run; only environment errors
// (unreadable store, unwritable output) propagate.
type ReconcileService struct {
	canonical game.Repository
	sources   game.SourceRepository
	overrides override.Repository
	closing   game.ClosingRepository
	logger    *logging.Logger
	now       func() time.Time
}

func NewReconcileService(
	canonical game.Repository,
	sources game.SourceRepository,
	overrides override.Repository,
	closing game.ClosingRepository,
	logger *logging.Logger,
) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconcileService{
		canonical: canonical,
		sources:   sources,
		overrides: overrides,
		closing:   closing,
		logger:    logger,
		now:       time.Now,
	}
}

// ReconcileSummary counts what a pass did, for the run log.
type ReconcileSummary struct {
	Rows             int `json:"rows"`
	Finals           int `json:"finals"`
	SideMerges       int `json:"side_merges"`
	SumFallbacks     int `json:"sum_fallbacks"`
	OverridesApplied int `json:"overrides_applied"`
	OverridesSkipped int `json:"overrides_skipped"`
	ClosingFills     int `json:"closing_fills"`
	ZerosSuppressed  int `json:"zeros_suppressed"`
	DuplicatesPruned int `json:"duplicates_pruned"`
	DegradedTeams    int `json:"degraded_teams"`
}

// Reconcile runs one full pass and saves the canonical table.
func (s *ReconcileService) Reconcile(ctx context.Context) (ReconcileSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.Reconcile")
	defer span.End()

	if s.canonical == nil || s.sources == nil {
		return ReconcileSummary{}, fmt.Errorf("%w: reconcile service is not fully configured", ErrDependencyUnavailable)
	}

	headers, err := s.sources.LoadHeaders(ctx)
	if err != nil {
		return ReconcileSummary{}, fmt.Errorf("load game headers: %w", err)
	}
	lineScores, err := s.sources.LoadLineScores(ctx)
	if err != nil {
		return ReconcileSummary{}, fmt.Errorf("load line scores: %w", err)
	}

	var overrideRows []override.Row
	if s.overrides != nil {
		overrideRows, err = s.overrides.Load(ctx)
		if err != nil {
			return ReconcileSummary{}, fmt.Errorf("load manual overrides: %w", err)
		}
	}

	var closingRows []game.ClosingRow
	if s.closing != nil {
		closingRows, err = s.closing.LoadClosing(ctx)
		if err != nil {
			return ReconcileSummary{}, fmt.Errorf("load closing fallback: %w", err)
		}
	}

	today := dateOnly(s.now())
	records, summary := reconcile(headers, lineScores, overrideRows, closingRows, today)

	for _, warn := range summary.warnings {
		s.logger.WarnContext(ctx, warn.msg, warn.args...)
	}

	if err := s.canonical.Save(ctx, records); err != nil {
		return ReconcileSummary{}, fmt.Errorf("save canonical table: %w", err)
	}

	s.logger.InfoContext(ctx, "reconcile pass complete",
		"rows", summary.Rows,
		"finals", summary.Finals,
		"side_merges", summary.SideMerges,
		"sum_fallbacks", summary.SumFallbacks,
		"overrides_applied", summary.OverridesApplied,
		"overrides_skipped", summary.OverridesSkipped,
		"closing_fills", summary.ClosingFills,
		"zeros_suppressed", summary.ZerosSuppressed,
		"duplicates_pruned", summary.DuplicatesPruned,
	)

	return summary.ReconcileSummary, nil
}

type reconcileWarning struct {
	msg  string
	args []any
}

type reconcileState struct {
	ReconcileSummary
	warnings []reconcileWarning
}

// reconcile is the pure merge; it never fails. Empty sources produce an
// empty table.
func reconcile(
	headers []game.HeaderRow,
	lineScores []game.LineScoreRow,
	overrides []override.Row,
	closing []game.ClosingRow,
	today time.Time,
) ([]game.Record, reconcileState) {
	var st reconcileState

	records := buildSkeleton(headers, &st)
	mergeLineScores(records, lineScores, &st)
	applyOverrides(records, overrides, &st)
	applyClosingFallback(records, closing, &st)
	recomputeFinality(records, today, &st)
	recomputeTotals(records)
	suppressSpuriousZeros(records, today, &st)
	records = dedupeByGameID(records, &st)
	sortCanonical(records)

	st.Rows = len(records)
	for _, rec := range records {
		if rec.IsFinal {
			st.Finals++
		}
	}
	return records, st
}

// buildSkeleton turns header rows into one record per row, resolving
// team identifiers to tricodes. Unparseable dates stay nil and the row
// is retained.
func buildSkeleton(headers []game.HeaderRow, st *reconcileState) []game.Record {
	records := make([]game.Record, 0, len(headers))
	for _, h := range headers {
		rec := game.Record{
			GameID:     h.GameID,
			Date:       h.Date,
			StatusText: h.StatusText,
			HomeTeam:   resolveTeam(h.HomeTeamID, st),
			AwayTeam:   resolveTeam(h.AwayTeamID, st),
		}
		records = append(records, rec)
	}
	return records
}

// resolveTeam maps a raw team field (numeric ID or name) to a tricode.
// Unrecognized names fall back to uppercased truncation, counted and
// logged as degraded.
func resolveTeam(raw string, st *reconcileState) string {
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if code, ok := game.CodeForTeamID(id); ok {
			return code
		}
	}
	if code, ok := game.CodeForTeamName(raw); ok {
		return code
	}
	st.DegradedTeams++
	st.warnings = append(st.warnings, reconcileWarning{
		msg:  "unrecognized team identifier, using degraded code",
		args: []any{"raw", raw},
	})
	return game.DegradedCode(raw)
}

// mergeLineScores joins per-side points by game and team; when side
// attribution fails but the game has exactly two numeric point rows,
// their sum fills total_points directly.
func mergeLineScores(records []game.Record, lineScores []game.LineScoreRow, st *reconcileState) {
	type sideKey struct {
		gameID int64
		team   string
	}
	bySide := make(map[sideKey]*int, len(lineScores))
	pointsByGame := make(map[int64][]int, len(lineScores))

	for _, ls := range lineScores {
		if ls.Points == nil {
			continue
		}
		code := lineScoreTeamCode(ls)
		if code != "" {
			bySide[sideKey{gameID: ls.GameID, team: code}] = ls.Points
		}
		pointsByGame[ls.GameID] = append(pointsByGame[ls.GameID], *ls.Points)
	}

	for i := range records {
		rec := &records[i]
		merged := false
		if pts, ok := bySide[sideKey{gameID: rec.GameID, team: rec.HomeTeam}]; ok && rec.HomePoints == nil {
			v := *pts
			rec.HomePoints = &v
			merged = true
		}
		if pts, ok := bySide[sideKey{gameID: rec.GameID, team: rec.AwayTeam}]; ok && rec.AwayPoints == nil {
			v := *pts
			rec.AwayPoints = &v
			merged = true
		}
		if merged {
			st.SideMerges++
		}

		// Last resort: sum the game's two point rows into the total
		// when side attribution failed.
		if rec.TotalPoints == nil && !rec.FullyScored() {
			if pts := pointsByGame[rec.GameID]; len(pts) == 2 {
				total := pts[0] + pts[1]
				rec.TotalPoints = &total
				st.SumFallbacks++
			}
		}
	}
}

func lineScoreTeamCode(ls game.LineScoreRow) string {
	if id, err := strconv.ParseInt(ls.TeamID, 10, 64); err == nil {
		if code, ok := game.CodeForTeamID(id); ok {
			return code
		}
	}
	if code, ok := game.CodeForTeamName(ls.TeamAbbreviation); ok {
		return code
	}
	if code, ok := game.CodeForTeamName(ls.TeamID); ok {
		return code
	}
	return ""
}

// applyOverrides fills null point fields from operator corrections.
// Resolution is by game id first; the matchup fallback applies only
// when the id is absent or matches zero rows, and an ambiguous fallback
// skips the override entirely.
func applyOverrides(records []game.Record, overrides []override.Row, st *reconcileState) {
	for _, o := range overrides {
		if o.Empty() {
			continue
		}

		var targets []int
		if o.GameID != nil {
			for i := range records {
				if records[i].GameID == *o.GameID {
					targets = append(targets, i)
				}
			}
		}
		if len(targets) != 1 {
			// Fall back to the matchup key when the id is absent or
			// ambiguous; an ambiguous fallback skips the override.
			targets = targets[:0]
			if o.Date != nil {
				for i := range records {
					if records[i].SameMatchup(*o.Date, o.HomeTeam, o.AwayTeam) {
						targets = append(targets, i)
					}
				}
			}
			if len(targets) != 1 {
				st.OverridesSkipped++
				continue
			}
		}

		if fillPoints(&records[targets[0]], o.HomePoints, o.AwayPoints, o.TotalPoints) {
			st.OverridesApplied++
		}
	}
}

func applyClosingFallback(records []game.Record, closing []game.ClosingRow, st *reconcileState) {
	byID := make(map[int64]game.ClosingRow, len(closing))
	for _, c := range closing {
		byID[c.GameID] = c
	}
	for i := range records {
		c, ok := byID[records[i].GameID]
		if !ok {
			continue
		}
		if fillPoints(&records[i], c.HomePoints, c.AwayPoints, c.TotalPoints) {
			st.ClosingFills++
		}
	}
}

// fillPoints writes only to currently-null fields; populated values are
// never overwritten.
func fillPoints(rec *game.Record, home, away, total *int) bool {
	changed := false
	if rec.HomePoints == nil && home != nil {
		v := *home
		rec.HomePoints = &v
		changed = true
	}
	if rec.AwayPoints == nil && away != nil {
		v := *away
		rec.AwayPoints = &v
		changed = true
	}
	if rec.TotalPoints == nil && total != nil {
		v := *total
		rec.TotalPoints = &v
		changed = true
	}
	return changed
}

// recomputeFinality derives is_final from the status text, a known
// total, or both point fields. A 0-0 score without a final status is
// fabricated source noise and is cleared before it can mark the game
// final. Future-dated rows are never final.
func recomputeFinality(records []game.Record, today time.Time, st *reconcileState) {
	for i := range records {
		rec := &records[i]

		statusFinal := game.HasFinalStatus(rec.StatusText)
		if !statusFinal && bothZero(rec) && zeroOrNil(rec.TotalPoints) {
			rec.HomePoints = nil
			rec.AwayPoints = nil
			rec.TotalPoints = nil
			st.ZerosSuppressed++
		}

		rec.IsFinal = statusFinal || rec.TotalPoints != nil || rec.FullyScored()
		if rec.Date != nil && rec.Date.After(today) {
			rec.IsFinal = false
		}
	}
}

func bothZero(rec *game.Record) bool {
	return rec.HomePoints != nil && rec.AwayPoints != nil &&
		*rec.HomePoints == 0 && *rec.AwayPoints == 0
}

func zeroOrNil(v *int) bool {
	return v == nil || *v == 0
}

func recomputeTotals(records []game.Record) {
	for i := range records {
		rec := &records[i]
		if rec.TotalPoints == nil && rec.FullyScored() {
			total := *rec.HomePoints + *rec.AwayPoints
			rec.TotalPoints = &total
		}
	}
}

// suppressSpuriousZeros nulls zero scores on rows that are not final or
// are future-dated. Real 0-0 finals keep their points because the
// status marked them final.
func suppressSpuriousZeros(records []game.Record, today time.Time, st *reconcileState) {
	for i := range records {
		rec := &records[i]
		future := rec.Date != nil && rec.Date.After(today)
		if rec.IsFinal && !future {
			continue
		}
		suppressed := false
		if rec.HomePoints != nil && *rec.HomePoints == 0 {
			rec.HomePoints = nil
			suppressed = true
		}
		if rec.AwayPoints != nil && *rec.AwayPoints == 0 {
			rec.AwayPoints = nil
			suppressed = true
		}
		if rec.TotalPoints != nil && *rec.TotalPoints == 0 {
			rec.TotalPoints = nil
			suppressed = true
		}
		if suppressed {
			st.ZerosSuppressed++
		}
	}
}

func dedupeByGameID(records []game.Record, st *reconcileState) []game.Record {
	lastIdx := make(map[int64]int, len(records))
	for i, rec := range records {
		lastIdx[rec.GameID] = i
	}
	out := make([]game.Record, 0, len(lastIdx))
	for i, rec := range records {
		if lastIdx[rec.GameID] == i {
			out = append(out, rec)
		} else {
			st.DuplicatesPruned++
		}
	}
	return out
}

// sortCanonical orders by (date, game_id) with null dates last.
func sortCanonical(records []game.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case a.Date == nil && b.Date == nil:
			return a.GameID < b.GameID
		case a.Date == nil:
			return false
		case b.Date == nil:
			return true
		case !a.Date.Equal(*b.Date):
			return a.Date.Before(*b.Date)
		default:
			return a.GameID < b.GameID
		}
	})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
