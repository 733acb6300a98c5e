package app

import (
	"context"
	"time"

	"github.com/lucabrevi/nba-totals/internal/domain/game"
	"github.com/lucabrevi/nba-totals/internal/platform/cache"
	"github.com/lucabrevi/nba-totals/internal/usecase"
)

type scoreboardDayPayload struct {
	headers    []game.HeaderRow
	lineScores []game.LineScoreRow
}

// cachedScoreboard memoizes per-day scoreboard fetches so a rerun
// within the TTL does not hit the upstream API again for the same day.
type cachedScoreboard struct {
	next  usecase.ScoreboardProvider
	store *cache.Store
}

func newCachedScoreboard(next usecase.ScoreboardProvider, store *cache.Store) *cachedScoreboard {
	return &cachedScoreboard{next: next, store: store}
}

func (c *cachedScoreboard) FetchScoreboard(ctx context.Context, date time.Time) ([]game.HeaderRow, []game.LineScoreRow, error) {
	key := "scoreboard:" + date.Format("2006-01-02")

	value, err := c.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		headers, lineScores, err := c.next.FetchScoreboard(ctx, date)
		if err != nil {
			return nil, err
		}
		return scoreboardDayPayload{headers: headers, lineScores: lineScores}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	payload, ok := value.(scoreboardDayPayload)
	if !ok {
		return c.next.FetchScoreboard(ctx, date)
	}
	return payload.headers, payload.lineScores, nil
}
