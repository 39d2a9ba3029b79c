package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefreshCountersConcurrent(t *testing.T) {
	var counters RefreshCounters
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counters.Attempt()
			counters.Failure()
			counters.Coalesce()
		}()
	}
	wg.Wait()

	require.Equal(t, RefreshUsage{Attempts: 50, Failures: 50, Coalesced: 50}, counters.Usage())
}
