package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"retailpos/internal/dto"

	"github.com/rs/zerolog/log"
)

// AlertMailer sends a rendered low-stock alert.
type AlertMailer interface {
	SendLowStockAlert(to string, alert dto.LowStockAlert) error
}

// EmailWorker mails low-stock alerts to the system owner.
type EmailWorker struct {
	mailer AlertMailer
	to     string
}

func NewEmailWorker(mailer AlertMailer, to string) *EmailWorker {
	return &EmailWorker{mailer: mailer, to: to}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var alert dto.LowStockAlert
	if err := json.Unmarshal(raw, &alert); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if w.to == "" {
		log.Warn().Msg("email_worker: no recipient configured, skipping")
		return nil
	}
	if len(alert.Products) == 0 {
		return nil
	}

	if err := w.mailer.SendLowStockAlert(w.to, alert); err != nil {
		return err
	}
	log.Info().Str("to", w.to).Int("products", len(alert.Products)).Msg("email_worker: low stock alert sent")
	return nil
}
