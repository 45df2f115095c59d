package model

import (
	"time"

	"github.com/google/uuid"
)

// Store owns one or more branches and a shared catalog.
type Store struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string     `gorm:"not null"`
	OwnerID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Branch is a physical sales location.
type Branch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Customer is an optional order reference.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName  string    `gorm:"not null"`
	Email     *string   `gorm:"index"`
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
