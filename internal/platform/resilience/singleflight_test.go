package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlightCollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var runs atomic.Int32
	var shared atomic.Int32

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			value, err, dedup := g.Do("scoreboard:2025-11-03", func() (any, error) {
				runs.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "rows", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if value != "rows" {
				t.Errorf("unexpected value: %v", value)
			}
			if dedup {
				shared.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := runs.Load(); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
	if got := shared.Load(); got != workers-1 {
		t.Fatalf("expected %d deduplicated callers, got %d", workers-1, got)
	}
}

func TestSingleFlightDistinctKeysRunIndependently(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var runs atomic.Int32

	for _, key := range []string{"scoreboard:2025-11-02", "scoreboard:2025-11-03"} {
		if _, err, _ := g.Do(key, func() (any, error) {
			runs.Add(1)
			return nil, nil
		}); err != nil {
			t.Fatalf("singleflight call failed: %v", err)
		}
	}

	if got := runs.Load(); got != 2 {
		t.Fatalf("expected two runs, got %d", got)
	}
}
