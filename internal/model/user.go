package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin         Role = "ROLE_ADMIN"
	RoleStoreAdmin    Role = "ROLE_STORE_ADMIN"
	RoleStoreManager  Role = "ROLE_STORE_MANAGER"
	RoleBranchManager Role = "ROLE_BRANCH_MANAGER"
	RoleBranchAdmin   Role = "ROLE_BRANCH_ADMIN"
	RoleBranchCashier Role = "ROLE_BRANCH_CASHIER"
)

// Capability names an operation a role may be allowed to perform.
type Capability string

const (
	CapSell        Capability = "sell"
	CapRefund      Capability = "refund"
	CapRunShift    Capability = "run_shift"
	CapViewOrders  Capability = "view_orders"
	CapViewShifts  Capability = "view_shifts"
	CapViewRefunds Capability = "view_refunds"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin:         {CapSell, CapRefund, CapRunShift, CapViewOrders, CapViewShifts, CapViewRefunds},
	RoleStoreAdmin:    {CapRefund, CapViewOrders, CapViewShifts, CapViewRefunds},
	RoleStoreManager:  {CapRefund, CapViewOrders, CapViewShifts, CapViewRefunds},
	RoleBranchManager: {CapSell, CapRefund, CapRunShift, CapViewOrders, CapViewShifts, CapViewRefunds},
	RoleBranchAdmin:   {CapSell, CapRefund, CapRunShift, CapViewOrders, CapViewShifts, CapViewRefunds},
	RoleBranchCashier: {CapSell, CapRunShift, CapViewOrders},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether r grants c.
func (r Role) Can(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// RolesWith returns every role granting c, in declaration order.
func RolesWith(c Capability) []Role {
	var out []Role
	for _, r := range []Role{RoleAdmin, RoleStoreAdmin, RoleStoreManager, RoleBranchManager, RoleBranchAdmin, RoleBranchCashier} {
		if r.Can(c) {
			out = append(out, r)
		}
	}
	return out
}

// User is any person who signs in: admins, managers and cashiers share this
// table and differ only by Role. Branch-scoped roles carry a BranchID.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName     string     `gorm:"not null"`
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	Role         Role       `gorm:"type:varchar(32);not null"`
	StoreID      *uuid.UUID `gorm:"type:uuid;index"`
	BranchID     *uuid.UUID `gorm:"type:uuid;index"`
	Active       bool       `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
