package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs fn inside one database transaction: everything fn writes
// through tx commits together or not at all.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct{ db *gorm.DB }

func NewTransactor(db *gorm.DB) Transactor { return &gormTransactor{db: db} }

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return translate(t.db.WithContext(ctx).Transaction(fn))
}
