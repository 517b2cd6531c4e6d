package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewLimiterDefaults(t *testing.T) {
	limiter := NewLimiter(10, -1)
	assert.Equal(t, 5, limiter.defaultBurst)

	unlimited := NewLimiter(0, 1)
	assert.Equal(t, rate.Inf, unlimited.defaultRate)
}

func TestLimiterWaitPerHost(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "https://www.wikidata.org/w/api.php"))
	require.NoError(t, limiter.Wait(ctx, "https://query.wikidata.org/sparql"))
}

func TestLimiterAllowExhaustsPerHost(t *testing.T) {
	limiter := NewLimiter(1, 1)

	assert.True(t, limiter.Allow("https://www.wikidata.org/w/api.php"))
	assert.False(t, limiter.Allow("https://www.wikidata.org/w/api.php?action=wbgetentities"))
	assert.True(t, limiter.Allow("https://query.wikidata.org/sparql"))
}

func TestLimiterWaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	require.True(t, limiter.Allow("https://example.org"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limiter.Wait(ctx, "https://example.org"))
}

func TestLimiterSetCrawlDelay(t *testing.T) {
	limiter := NewLimiter(10, 5)

	assert.True(t, limiter.SetCrawlDelay("slow.example", time.Second))
	assert.Equal(t, rate.Every(time.Second), limiter.RateFor("slow.example"))

	// A crawl delay faster than the default rate is ignored
	assert.False(t, limiter.SetCrawlDelay("fast.example", time.Millisecond))
	assert.Equal(t, rate.Limit(10), limiter.RateFor("fast.example"))

	assert.False(t, limiter.SetCrawlDelay("slow.example", 0))
	assert.False(t, limiter.SetCrawlDelay("slow.example", time.Second))
}
