package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lucabrevi/nba-totals/internal/config"
	"github.com/lucabrevi/nba-totals/internal/domain/game"
	"github.com/lucabrevi/nba-totals/internal/platform/cache"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

type countingScoreboard struct {
	calls   int
	headers []game.HeaderRow
	err     error
}

func (c *countingScoreboard) FetchScoreboard(_ context.Context, _ time.Time) ([]game.HeaderRow, []game.LineScoreRow, error) {
	c.calls++
	if c.err != nil {
		return nil, nil, c.err
	}
	return c.headers, nil, nil
}

func TestCachedScoreboardServesRepeatFetchesFromCache(t *testing.T) {
	t.Parallel()

	upstream := &countingScoreboard{
		headers: []game.HeaderRow{{GameID: 22500101, StatusText: "Final"}},
	}
	cached := newCachedScoreboard(upstream, cache.NewStore(time.Minute))

	day := time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)

	first, _, err := cached.FetchScoreboard(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, _, err := cached.FetchScoreboard(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, upstream.calls)
}

func TestCachedScoreboardKeysByDay(t *testing.T) {
	t.Parallel()

	upstream := &countingScoreboard{}
	cached := newCachedScoreboard(upstream, cache.NewStore(time.Minute))

	_, _, err := cached.FetchScoreboard(context.Background(), time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, _, err = cached.FetchScoreboard(context.Background(), time.Date(2025, time.November, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 2, upstream.calls)
}

func TestCachedScoreboardDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	upstream := &countingScoreboard{err: errors.New("upstream down")}
	cached := newCachedScoreboard(upstream, cache.NewStore(time.Minute))

	day := time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)

	_, _, err := cached.FetchScoreboard(context.Background(), day)
	require.Error(t, err)

	upstream.err = nil
	_, _, err = cached.FetchScoreboard(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, 2, upstream.calls)
}

func TestBuildPipelineCSVBackend(t *testing.T) {
	cfg := config.Config{
		DataDir:          t.TempDir(),
		StorageBackend:   config.StorageCSV,
		IngestMaxWorkers: 2,
		NBAStatsTimeout:  time.Second,
		CacheEnabled:     true,
		CacheTTL:         time.Minute,
	}

	pipeline, err := BuildPipeline(cfg, logging.NewNop())
	require.NoError(t, err)
	require.NotNil(t, pipeline.Service)
	require.NoError(t, pipeline.Close())
}
