package service_test

import (
	"testing"
	"time"

	"retailpos/internal/model"
	"retailpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidOrder(amount string, pt model.PaymentType, at time.Time, items ...model.OrderItem) model.Order {
	return model.Order{
		ID:          uuid.New(),
		TotalAmount: mustDecimal(amount),
		PaymentType: pt,
		Status:      model.OrderCompleted,
		CreatedAt:   at,
		Items:       items,
	}
}

func soldItem(p *model.Product, qty int) model.OrderItem {
	return model.OrderItem{ProductID: p.ID, Quantity: qty, Product: p}
}

func TestSummarizeTotalsAndPaymentBreakdown(t *testing.T) {
	base := time.Now()
	orders := []model.Order{
		paidOrder("100", model.PaymentCash, base),
		paidOrder("50", model.PaymentCash, base.Add(time.Minute)),
		paidOrder("30", model.PaymentCard, base.Add(2*time.Minute)),
	}
	refunds := []model.Refund{
		{Amount: mustDecimal("12.50")},
		{Amount: mustDecimal("7.50")},
	}

	s := service.Summarize(orders, refunds, service.DefaultSummaryOptions())

	assert.Equal(t, "180", s.TotalSales.String())
	assert.Equal(t, "20", s.TotalRefunds.String())
	assert.Equal(t, "160", s.NetSale.String())
	assert.Equal(t, 3, s.TotalOrders)

	require.Len(t, s.PaymentSummaries, 2)
	cash, card := s.PaymentSummaries[0], s.PaymentSummaries[1]
	assert.Equal(t, model.PaymentCash, cash.PaymentType)
	assert.Equal(t, "150", cash.TotalAmount.String())
	assert.Equal(t, 2, cash.TransactionCount)
	assert.Equal(t, "83.33", cash.Percentage.String())
	assert.Equal(t, model.PaymentCard, card.PaymentType)
	assert.Equal(t, "30", card.TotalAmount.String())
	assert.Equal(t, 1, card.TransactionCount)
	assert.Equal(t, "16.67", card.Percentage.String())
}

func TestSummarizeTopProducts(t *testing.T) {
	a := &model.Product{ID: uuid.New(), Name: "Apple", SKU: "A"}
	b := &model.Product{ID: uuid.New(), Name: "Bread", SKU: "B"}
	base := time.Now()
	orders := []model.Order{
		paidOrder("10", model.PaymentCash, base, soldItem(a, 5)),
		paidOrder("10", model.PaymentCash, base, soldItem(b, 3)),
		paidOrder("10", model.PaymentCash, base, soldItem(a, 2)),
	}

	s := service.Summarize(orders, nil, service.DefaultSummaryOptions())

	require.Len(t, s.TopProducts, 2)
	assert.Equal(t, a.ID, s.TopProducts[0].ProductID)
	assert.Equal(t, 7, s.TopProducts[0].Quantity)
	assert.Equal(t, "Apple", s.TopProducts[0].Name)
	assert.Equal(t, b.ID, s.TopProducts[1].ProductID)
	assert.Equal(t, 3, s.TopProducts[1].Quantity)
}

func TestSummarizeTopProductsTiesKeepFirstSeen(t *testing.T) {
	var items []model.OrderItem
	var products []*model.Product
	for i := 0; i < 7; i++ {
		p := &model.Product{ID: uuid.New()}
		products = append(products, p)
		items = append(items, soldItem(p, 2))
	}
	s := service.Summarize([]model.Order{paidOrder("1", model.PaymentCash, time.Now(), items...)}, nil, service.DefaultSummaryOptions())

	require.Len(t, s.TopProducts, 5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, products[i].ID, s.TopProducts[i].ProductID)
	}
}

func TestSummarizeRecentOrdersNewestFirst(t *testing.T) {
	base := time.Now()
	var orders []model.Order
	for i := 0; i < 7; i++ {
		orders = append(orders, paidOrder("1", model.PaymentCash, base.Add(time.Duration(i)*time.Minute)))
	}

	s := service.Summarize(orders, nil, service.SummaryOptions{RecentOrders: 3})

	require.Len(t, s.RecentOrders, 3)
	assert.Equal(t, orders[6].ID, s.RecentOrders[0].ID)
	assert.Equal(t, orders[5].ID, s.RecentOrders[1].ID)
	assert.Equal(t, orders[4].ID, s.RecentOrders[2].ID)
	// input order is untouched
	assert.Equal(t, orders[0].CreatedAt, base)
}

func TestSummarizeZeroSalesHasZeroPercentages(t *testing.T) {
	orders := []model.Order{paidOrder("0", model.PaymentOnline, time.Now())}

	s := service.Summarize(orders, nil, service.DefaultSummaryOptions())

	require.Len(t, s.PaymentSummaries, 1)
	assert.True(t, s.PaymentSummaries[0].Percentage.Equal(decimal.Zero))
	assert.Equal(t, 1, s.PaymentSummaries[0].TransactionCount)
}

func TestSummarizeMissingPaymentTypeCountsAsCash(t *testing.T) {
	orders := []model.Order{
		paidOrder("40", "", time.Now()),
		paidOrder("60", model.PaymentCash, time.Now()),
	}

	s := service.Summarize(orders, nil, service.DefaultSummaryOptions())

	require.Len(t, s.PaymentSummaries, 1)
	assert.Equal(t, model.PaymentCash, s.PaymentSummaries[0].PaymentType)
	assert.Equal(t, 2, s.PaymentSummaries[0].TransactionCount)
	assert.Equal(t, "100", s.PaymentSummaries[0].Percentage.String())
}

func TestSummarizeEmpty(t *testing.T) {
	s := service.Summarize(nil, nil, service.DefaultSummaryOptions())

	assert.True(t, s.TotalSales.IsZero())
	assert.True(t, s.NetSale.IsZero())
	assert.Zero(t, s.TotalOrders)
	assert.Empty(t, s.PaymentSummaries)
	assert.Empty(t, s.TopProducts)
	assert.Empty(t, s.RecentOrders)
}

func TestSummarizeTopProductsTiesGoToEarliestSale(t *testing.T) {
	a := &model.Product{ID: uuid.New(), Name: "Apple", SKU: "A"}
	b := &model.Product{ID: uuid.New(), Name: "Bread", SKU: "B"}
	base := time.Now()
	// Listings arrive newest first.
	orders := []model.Order{
		paidOrder("10", model.PaymentCard, base.Add(time.Minute), soldItem(b, 3)),
		paidOrder("10", model.PaymentCash, base, soldItem(a, 3)),
	}

	s := service.Summarize(orders, nil, service.DefaultSummaryOptions())

	require.Len(t, s.TopProducts, 2)
	assert.Equal(t, "A", s.TopProducts[0].SKU)
	assert.Equal(t, "B", s.TopProducts[1].SKU)
	require.Len(t, s.PaymentSummaries, 2)
	assert.Equal(t, model.PaymentCash, s.PaymentSummaries[0].PaymentType)
	require.Len(t, s.RecentOrders, 2)
	assert.Equal(t, orders[0].ID, s.RecentOrders[0].ID)
	assert.Equal(t, b.ID, orders[0].Items[0].ProductID, "input order is untouched")
}
