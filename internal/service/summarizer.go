package service

import (
	"sort"

	"retailpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryOptions bounds the derived lists of a Summary.
type SummaryOptions struct {
	TopProducts  int
	RecentOrders int
}

// DefaultSummaryOptions keeps five entries in each list.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{TopProducts: 5, RecentOrders: 5}
}

// ProductSales is a product's sold quantity within a summary.
type ProductSales struct {
	ProductID uuid.UUID
	Name      string
	SKU       string
	Quantity  int
}

// PaymentSummary is the share of sales paid with one payment type.
type PaymentSummary struct {
	PaymentType      model.PaymentType
	TotalAmount      decimal.Decimal
	TransactionCount int
	Percentage       decimal.Decimal
}

func (o SummaryOptions) withDefaults() SummaryOptions {
	def := DefaultSummaryOptions()
	if o.TopProducts <= 0 {
		o.TopProducts = def.TopProducts
	}
	if o.RecentOrders <= 0 {
		o.RecentOrders = def.RecentOrders
	}
	return o
}

// Summary aggregates a set of orders and refunds.
type Summary struct {
	TotalSales       decimal.Decimal
	TotalRefunds     decimal.Decimal
	NetSale          decimal.Decimal
	TotalOrders      int
	TopProducts      []ProductSales
	RecentOrders     []model.Order
	PaymentSummaries []PaymentSummary
}

var hundred = decimal.NewFromInt(100)

// Summarize is pure: it reads orders and refunds and returns new values.
// Orders are walked oldest first whatever order they arrive in, so products
// tied on quantity rank by their earliest sale and payment types appear in
// the order they were first used. Orders without a payment type count as
// CASH. Percentages are of TotalSales, rounded to two places, and zero when
// there were no sales.
func Summarize(orders []model.Order, refunds []model.Refund, opts SummaryOptions) Summary {
	opts = opts.withDefaults()
	s := Summary{
		TotalSales:   decimal.Zero,
		TotalRefunds: decimal.Zero,
		TotalOrders:  len(orders),
	}

	var (
		products   []ProductSales
		productIdx = make(map[uuid.UUID]int)
		payments   []PaymentSummary
		paymentIdx = make(map[model.PaymentType]int)
	)
	chrono := make([]model.Order, len(orders))
	copy(chrono, orders)
	sort.SliceStable(chrono, func(i, j int) bool {
		return chrono[i].CreatedAt.Before(chrono[j].CreatedAt)
	})

	for _, o := range chrono {
		s.TotalSales = s.TotalSales.Add(o.TotalAmount)

		pt := o.PaymentType
		if pt == "" {
			pt = model.PaymentCash
		}
		i, ok := paymentIdx[pt]
		if !ok {
			i = len(payments)
			paymentIdx[pt] = i
			payments = append(payments, PaymentSummary{PaymentType: pt, TotalAmount: decimal.Zero})
		}
		payments[i].TotalAmount = payments[i].TotalAmount.Add(o.TotalAmount)
		payments[i].TransactionCount++

		for _, it := range o.Items {
			j, ok := productIdx[it.ProductID]
			if !ok {
				j = len(products)
				productIdx[it.ProductID] = j
				ps := ProductSales{ProductID: it.ProductID}
				if it.Product != nil {
					ps.Name = it.Product.Name
					ps.SKU = it.Product.SKU
				}
				products = append(products, ps)
			}
			products[j].Quantity += it.Quantity
		}
	}

	for _, rf := range refunds {
		s.TotalRefunds = s.TotalRefunds.Add(rf.Amount)
	}
	s.NetSale = s.TotalSales.Sub(s.TotalRefunds)

	for i := range payments {
		payments[i].Percentage = decimal.Zero
		if !s.TotalSales.IsZero() {
			payments[i].Percentage = payments[i].TotalAmount.Div(s.TotalSales).Mul(hundred).Round(2)
		}
	}
	s.PaymentSummaries = payments

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Quantity > products[j].Quantity
	})
	s.TopProducts = truncate(products, opts.TopProducts)

	recent := make([]model.Order, len(chrono))
	copy(recent, chrono)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	s.RecentOrders = truncate(recent, opts.RecentOrders)

	return s
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
