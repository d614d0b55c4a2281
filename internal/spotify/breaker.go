package spotify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"trackrate/internal/metrics"
	"trackrate/internal/models"
)

// Searcher is the subset of the catalog the breaker wraps.
type Searcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)
}

// BreakerCatalog stops calling the catalog for a while after repeated failures.
// A cache miss during that window fails fast instead of waiting on timeouts.
type BreakerCatalog struct {
	next Searcher
	cb   *gobreaker.CircuitBreaker[[]models.Track]
}

// BreakerSettings configures when the circuit opens.
type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
}

// DefaultBreakerSettings opens once 60% of at least 5 requests in a minute
// fail, and probes again after 30 seconds.
var DefaultBreakerSettings = BreakerSettings{
	MinRequests:  5,
	FailureRatio: 0.6,
	OpenTimeout:  30 * time.Second,
}

func NewBreakerCatalog(next Searcher, s BreakerSettings) *BreakerCatalog {
	cb := gobreaker.NewCircuitBreaker[[]models.Track](gobreaker.Settings{
		Name:        "spotify-search",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
		// A caller going away is not the catalog's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerCatalog{next: next, cb: cb}
}

func (b *BreakerCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	tracks, err := b.cb.Execute(func() ([]models.Track, error) {
		return b.next.SearchTracks(ctx, query, limit)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CatalogErrors.WithLabelValues("breaker_open").Inc()
	case err != nil:
		metrics.CatalogErrors.WithLabelValues("search").Inc()
	}
	return tracks, err
}

// State reports the breaker state, for health output.
func (b *BreakerCatalog) State() string {
	return b.cb.State().String()
}
