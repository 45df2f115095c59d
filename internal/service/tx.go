package service

import (
	"context"
	"errors"

	"retailpos/internal/apierror"
	"retailpos/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// runTx executes fn inside one transaction. When the database reports a lost
// race (deadlock or serialization failure) fn runs once more against fresh
// reads; fn must therefore rebuild all of its state on every call.
func runTx(ctx context.Context, txr repository.Transactor, fn func(tx *gorm.DB) error) error {
	err := txr.Transaction(ctx, fn)
	if errors.Is(err, apierror.ErrConcurrencyConflict) {
		log.Warn().Err(err).Msg("transaction conflict, retrying once")
		err = txr.Transaction(ctx, fn)
	}
	return err
}
