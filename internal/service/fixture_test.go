package service_test

import (
	"context"
	"sync"
	"time"

	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeClock returns a fixed start time and moves one minute forward on every
// read so that consecutive orders get distinct timestamps.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(time.Minute)
	return now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// eventSink records published events; a non-nil err makes Publish fail.
type eventSink struct {
	mu     sync.Mutex
	topics []string
	events []dto.OrderEvent
	err    error
}

func (e *eventSink) Publish(_ context.Context, topic string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.topics = append(e.topics, topic)
	if ev, ok := payload.(dto.OrderEvent); ok {
		e.events = append(e.events, ev)
	}
	return nil
}

type fixture struct {
	store     *memStore
	clock     *fakeClock
	events    *eventSink
	ledger    *service.InventoryLedger
	orders    service.OrderService
	shifts    service.ShiftService
	branchID  uuid.UUID
	cashier   model.User
	noBranch  model.User
	customer  model.Customer
	movements movementRepo
}

func newFixture() *fixture {
	store := newMemStore()
	clock := newFakeClock()
	events := &eventSink{}
	branchID := uuid.New()

	cashier := store.addUser(model.User{
		FullName: "Ana Cashier",
		Email:    "ana@shop.test",
		Role:     model.RoleBranchCashier,
		BranchID: &branchID,
		Active:   true,
	})
	noBranch := store.addUser(model.User{
		FullName: "Store Manager",
		Email:    "manager@shop.test",
		Role:     model.RoleStoreManager,
		Active:   true,
	})
	customer := model.Customer{ID: uuid.New(), FullName: "Walk In"}
	store.customers[customer.ID] = customer

	users := userRepo{store}
	callers := service.NewCallerResolver(users)
	movements := movementRepo{store}
	ledger := service.NewInventoryLedger(store, productRepo{store}, movements)
	opts := []service.Option{service.WithClock(clock.Now), service.WithLocation(time.UTC)}

	return &fixture{
		store:  store,
		clock:  clock,
		events: events,
		ledger: ledger,
		orders: service.NewOrderService(store, callers, productRepo{store}, customerRepo{store},
			orderRepo{store}, refundRepo{store}, ledger, events, opts...),
		shifts: service.NewShiftService(store, callers, users, shiftRepo{store},
			orderRepo{store}, refundRepo{store}, opts...),
		branchID:  branchID,
		cashier:   cashier,
		noBranch:  noBranch,
		customer:  customer,
		movements: movements,
	}
}

func (f *fixture) product(sku, price string, stock int) model.Product {
	return f.store.addProduct(model.Product{
		Name:          "Product " + sku,
		SKU:           sku,
		SellingPrice:  mustDecimal(price),
		ListPrice:     mustDecimal(price),
		StockQuantity: stock,
	})
}

func orderOf(lines ...any) dto.CreateOrderRequest {
	var req dto.CreateOrderRequest
	for i := 0; i+1 < len(lines); i += 2 {
		req.Items = append(req.Items, dto.OrderItemRequest{
			ProductID: lines[i].(model.Product).ID.String(),
			Quantity:  lines[i+1].(int),
		})
	}
	return req
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
