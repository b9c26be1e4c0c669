package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the AMM engine
type Metrics struct {
	// Swap metrics
	SwapsTotal *prometheus.CounterVec
	SwapVolume *prometheus.CounterVec

	// Liquidity metrics
	PoolsCreated     prometheus.Counter
	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec

	// Session metrics
	SessionsStarted prometheus.Counter

	// Quote routing metrics
	BridgeFetches   prometheus.Counter
	BridgeCacheHits prometheus.Counter

	// Protection metrics
	ProtectionRejections *prometheus.CounterVec
	BreakerTrips         prometheus.Counter

	// Commit-reveal metrics
	Commitments prometheus.Counter
	Reveals     *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// NewMetrics creates and registers AMM metrics (singleton pattern)
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "swaps_total",
					Help:      "Total number of swaps executed",
				},
				[]string{"status"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "swap_volume_total",
					Help:      "Total swap input volume in base units",
				},
				[]string{"denom"},
			),
			PoolsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "pool_creations_total",
					Help:      "Total number of pools created",
				},
			),
			LiquidityAdded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "liquidity_added_total",
					Help:      "Total liquidity added to pools",
				},
				[]string{"denom"},
			),
			LiquidityRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "liquidity_removed_total",
					Help:      "Total liquidity removed from pools",
				},
				[]string{"denom"},
			),
			SessionsStarted: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "sessions_started_total",
					Help:      "Total flash accounting sessions opened",
				},
			),
			BridgeFetches: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "bridge_fetches_total",
					Help:      "Data bridge fetches performed",
				},
			),
			BridgeCacheHits: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "bridge_cache_hits_total",
					Help:      "Data bridge fetches served from the per-call cache",
				},
			),
			ProtectionRejections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "protection_rejections_total",
					Help:      "Swaps rejected by trader protection checks",
				},
				[]string{"reason"},
			),
			BreakerTrips: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "circuit_breaker_trips_total",
					Help:      "Circuit breaker open events",
				},
			),
			Commitments: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "swap_commitments_total",
					Help:      "Swap commitments recorded",
				},
			),
			Reveals: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "fluxdex",
					Subsystem: "amm",
					Name:      "swap_reveals_total",
					Help:      "Swap reveals by outcome",
				},
				[]string{"status"},
			),
		}
	})
	return metrics
}
