// Seeds a demo store: one branch, a cashier, the system owner and a few
// stocked products. Prints a bearer token for the cashier.
// Usage: go run ./cmd/seeduser
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"retailpos/internal/apierror"
	"retailpos/internal/config"
	"retailpos/internal/infra"
	"retailpos/internal/middleware"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	demoPassword = "retailpos"
	cashierEmail = "cashier@retailpos.local"
	storeName    = "Demo Store"
	branchName   = "Main Branch"
	branchStock  = 50
)

var demoProducts = []struct {
	sku, name, price string
}{
	{"MLK-1L", "Milk 1L", "1.20"},
	{"BRD-WHT", "White Bread", "2.50"},
	{"EGG-12", "Eggs x12", "3.80"},
	{"COF-250", "Ground Coffee 250g", "6.90"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	var cashier model.User
	ctx := context.Background()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner := model.User{FullName: "System Owner", Email: cfg.SystemOwnerEmail, PasswordHash: string(hash), Role: model.RoleAdmin, Active: true}
		if err := upsertUser(tx, &owner); err != nil {
			return err
		}

		store := model.Store{Name: storeName, OwnerID: &owner.ID}
		if err := tx.Where(model.Store{Name: storeName}).FirstOrCreate(&store).Error; err != nil {
			return err
		}
		branch := model.Branch{StoreID: store.ID, Name: branchName}
		if err := tx.Where(model.Branch{StoreID: store.ID, Name: branchName}).FirstOrCreate(&branch).Error; err != nil {
			return err
		}

		cashier = model.User{
			FullName:     "Demo Cashier",
			Email:        cashierEmail,
			PasswordHash: string(hash),
			Role:         model.RoleBranchCashier,
			StoreID:      &store.ID,
			BranchID:     &branch.ID,
			Active:       true,
		}
		if err := upsertUser(tx, &cashier); err != nil {
			return err
		}

		products := repository.NewProductRepository(tx)
		for _, p := range demoProducts {
			product := model.Product{
				StoreID:       &store.ID,
				Name:          p.name,
				SKU:           p.sku,
				ListPrice:     decimal.RequireFromString(p.price),
				SellingPrice:  decimal.RequireFromString(p.price),
				StockQuantity: branchStock,
			}
			err := tx.Where("sku = ?", p.sku).First(&product).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = products.Create(ctx, &product)
			}
			if err != nil {
				return err
			}

			_, err = products.FindInventory(ctx, product.ID, branch.ID)
			if errors.Is(err, apierror.ErrNotFound) {
				err = products.CreateInventory(ctx, &model.Inventory{ProductID: product.ID, BranchID: branch.ID, Quantity: product.StockQuantity})
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	log.Info().Str("email", cashierEmail).Str("password", demoPassword).Msg("demo cashier ready")
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; the token below only works against a server with the same empty secret")
	}
	token, err := middleware.SignToken(cfg.JWTSecret, cashier.ID, cashier.Email, cashier.Role, 12*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("sign token")
	}
	fmt.Println(token)
}

func upsertUser(tx *gorm.DB, u *model.User) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "password_hash", "role", "store_id", "branch_id", "active", "updated_at"}),
	}).Create(u).Error
}
