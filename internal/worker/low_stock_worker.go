package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"retailpos/internal/dto"
	"retailpos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StockReader is the read side the low-stock checks need.
type StockReader interface {
	ListBelowStock(ctx context.Context, ids []uuid.UUID, threshold int) ([]model.Product, error)
	CountBelowStock(ctx context.Context, threshold int) (int64, error)
}

// AlertEnqueuer hands a low-stock alert to the mail queue.
type AlertEnqueuer interface {
	EnqueueAlert(ctx context.Context, payload any) error
}

// LowStockWorker inspects the products of each order.created event and
// raises an alert for those whose global stock fell below the threshold.
type LowStockWorker struct {
	products  StockReader
	alerts    AlertEnqueuer
	threshold int
}

// NewLowStockWorker returns a worker; alerts may be nil, in which case low
// stock is only logged.
func NewLowStockWorker(products StockReader, alerts AlertEnqueuer, threshold int) *LowStockWorker {
	return &LowStockWorker{products: products, alerts: alerts, threshold: threshold}
}

func (w *LowStockWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var ev dto.OrderEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("low_stock_worker: invalid payload: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(ev.Items))
	for _, it := range ev.Items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			log.Warn().Str("product_id", it.ProductID).Msg("low_stock_worker: skipping malformed product id")
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	low, err := w.products.ListBelowStock(ctx, ids, w.threshold)
	if err != nil {
		return fmt.Errorf("low_stock_worker: list products: %w", err)
	}
	if len(low) == 0 {
		return nil
	}

	alert := dto.LowStockAlert{
		BranchID:  ev.BranchID,
		OrderID:   ev.OrderID,
		Threshold: w.threshold,
		Products:  make([]dto.LowStockEntry, len(low)),
	}
	for i, p := range low {
		alert.Products[i] = dto.LowStockEntry{
			ProductID:     p.ID.String(),
			Name:          p.Name,
			SKU:           p.SKU,
			StockQuantity: p.StockQuantity,
		}
		log.Warn().
			Str("product_id", p.ID.String()).
			Str("sku", p.SKU).
			Int("stock", p.StockQuantity).
			Int("threshold", w.threshold).
			Str("order_id", ev.OrderID).
			Msg("product below stock threshold")
	}

	if w.alerts == nil {
		return nil
	}
	return w.alerts.EnqueueAlert(ctx, alert)
}

// ProcessRefund only records the event; a refund can only raise stock.
func (w *LowStockWorker) ProcessRefund(_ context.Context, raw json.RawMessage) error {
	var ev dto.OrderEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("low_stock_worker: invalid payload: %w", err)
	}
	log.Debug().Str("order_id", ev.OrderID).Int("items", len(ev.Items)).Msg("refund event consumed")
	return nil
}
