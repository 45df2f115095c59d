package worker

// Periodic sweep that keeps the low-stock gauge in line with the catalog,
// including products that dropped without an order event (seeds, manual
// corrections).

import (
	"context"
	"time"

	"retailpos/internal/metrics"

	"github.com/rs/zerolog/log"
)

type StockSweepConfig struct {
	Products  StockReader
	Threshold int
	Interval  time.Duration
}

// StartStockSweep runs one sweep immediately and then every Interval until
// ctx is cancelled.
func StartStockSweep(ctx context.Context, cfg StockSweepConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("stock_sweep: started")
		sweepOnce(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stock_sweep: shutting down")
				return
			case <-ticker.C:
				sweepOnce(ctx, cfg)
			}
		}
	}()
}

func sweepOnce(ctx context.Context, cfg StockSweepConfig) (int64, error) {
	n, err := cfg.Products.CountBelowStock(ctx, cfg.Threshold)
	if err != nil {
		log.Error().Err(err).Msg("stock_sweep: count failed")
		return 0, err
	}
	metrics.LowStockProducts.Set(float64(n))
	if n > 0 {
		log.Info().Int64("count", n).Int("threshold", cfg.Threshold).Msg("stock_sweep: products below threshold")
	}
	return n, nil
}
