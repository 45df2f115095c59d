package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"retailpos/internal/apierror"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore implements every repository the services use on top of plain
// maps. Transaction holds one lock for the whole unit of work and restores a
// snapshot when fn fails, which gives the same all-or-nothing and
// serialization guarantees the gorm implementation gets from Postgres.
//
// *Tx methods assume the lock is held; the others take it.
type memStore struct {
	mu sync.Mutex

	products    map[uuid.UUID]model.Product
	inventories map[uuid.UUID]model.Inventory
	users       map[uuid.UUID]model.User
	customers   map[uuid.UUID]model.Customer
	orders      map[uuid.UUID]model.Order
	refunds     []model.Refund
	movements   []model.StockMovement
	shifts      map[uuid.UUID]model.ShiftReport

	// test hooks
	failOrderCreate error
	conflicts       int
	transactions    int
}

type memSnapshot struct {
	products    map[uuid.UUID]model.Product
	inventories map[uuid.UUID]model.Inventory
	orders      map[uuid.UUID]model.Order
	refunds     []model.Refund
	movements   []model.StockMovement
	shifts      map[uuid.UUID]model.ShiftReport
}

var (
	_ repository.Transactor              = (*memStore)(nil)
	_ repository.ProductRepository       = productRepo{}
	_ repository.UserRepository          = userRepo{}
	_ repository.CustomerRepository      = customerRepo{}
	_ repository.OrderRepository         = orderRepo{}
	_ repository.RefundRepository        = refundRepo{}
	_ repository.StockMovementRepository = movementRepo{}
	_ repository.ShiftRepository         = shiftRepo{}
)

func newMemStore() *memStore {
	return &memStore{
		products:    make(map[uuid.UUID]model.Product),
		inventories: make(map[uuid.UUID]model.Inventory),
		users:       make(map[uuid.UUID]model.User),
		customers:   make(map[uuid.UUID]model.Customer),
		orders:      make(map[uuid.UUID]model.Order),
		shifts:      make(map[uuid.UUID]model.ShiftReport),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	return memSnapshot{
		products:    cloneMap(s.products),
		inventories: cloneMap(s.inventories),
		orders:      cloneMap(s.orders),
		refunds:     append([]model.Refund(nil), s.refunds...),
		movements:   append([]model.StockMovement(nil), s.movements...),
		shifts:      cloneMap(s.shifts),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.products = snap.products
	s.inventories = snap.inventories
	s.orders = snap.orders
	s.refunds = snap.refunds
	s.movements = snap.movements
	s.shifts = snap.shifts
}

// ── Transactor ───────────────────────────────────────────────────────────────

func (s *memStore) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions++

	snap := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snap)
		return err
	}
	if s.conflicts > 0 {
		s.conflicts--
		s.restore(snap)
		return apierror.Conflict("simulated serialization failure")
	}
	return nil
}

// ── seeding helpers ──────────────────────────────────────────────────────────

func (s *memStore) addProduct(p model.Product) model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addInventory(productID, branchID uuid.UUID, qty int) {
	id := uuid.New()
	s.inventories[id] = model.Inventory{ID: id, ProductID: productID, BranchID: branchID, Quantity: qty}
}

func (s *memStore) addUser(u model.User) model.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) stock(productID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].StockQuantity
}

func (s *memStore) branchQty(productID, branchID uuid.UUID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.inventories {
		if inv.ProductID == productID && inv.BranchID == branchID {
			return inv.Quantity, true
		}
	}
	return 0, false
}

func (s *memStore) setPrice(productID uuid.UUID, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[productID]
	p.SellingPrice = mustDecimal(price)
	s.products[productID] = p
}

// ── ProductRepository ────────────────────────────────────────────────────────

type productRepo struct{ *memStore }

func (s productRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.FindByIDTx(nil, id)
}

func (s productRepo) Create(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*p = s.addProduct(*p)
	return nil
}

func (s productRepo) CreateInventory(_ context.Context, inv *model.Inventory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	s.inventories[inv.ID] = *inv
	return nil
}

func (s productRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, apierror.NotFound("product %s not found", id)
	}
	return &p, nil
}

func (s productRepo) FindInventory(_ context.Context, productID, branchID uuid.UUID) (*model.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.inventories {
		if inv.ProductID == productID && inv.BranchID == branchID {
			return &inv, nil
		}
	}
	return nil, apierror.NotFound("inventory for product %s not found", productID)
}

func (s productRepo) AdjustStockTx(_ *gorm.DB, id uuid.UUID, delta int) (int, bool, error) {
	p, ok := s.products[id]
	if !ok || p.StockQuantity+delta < 0 {
		return 0, false, nil
	}
	p.StockQuantity += delta
	s.products[id] = p
	return p.StockQuantity, true, nil
}

func (s productRepo) LockInventoryTx(_ *gorm.DB, productID, branchID uuid.UUID) (*model.Inventory, error) {
	for _, inv := range s.inventories {
		if inv.ProductID == productID && inv.BranchID == branchID {
			return &inv, nil
		}
	}
	return nil, nil
}

func (s productRepo) SetInventoryQuantityTx(_ *gorm.DB, inventoryID uuid.UUID, qty int) error {
	inv := s.inventories[inventoryID]
	inv.Quantity = qty
	s.inventories[inventoryID] = inv
	return nil
}

func (s productRepo) ListBelowStock(_ context.Context, ids []uuid.UUID, threshold int) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok && p.StockQuantity < threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s productRepo) CountBelowStock(_ context.Context, threshold int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, p := range s.products {
		if p.StockQuantity < threshold {
			n++
		}
	}
	return n, nil
}

// ── UserRepository / CustomerRepository ──────────────────────────────────────

type customerRepo struct{ *memStore }

func (c customerRepo) Create(_ context.Context, cu *model.Customer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cu.ID == uuid.Nil {
		cu.ID = uuid.New()
	}
	c.customers[cu.ID] = *cu
	return nil
}

func (c customerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cu, ok := c.customers[id]
	if !ok {
		return nil, apierror.NotFound("customer %s not found", id)
	}
	return &cu, nil
}

type userRepo struct{ *memStore }

func (u userRepo) Create(_ context.Context, usr *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	*usr = u.addUser(*usr)
	return nil
}

func (u userRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	usr, ok := u.users[id]
	if !ok {
		return nil, apierror.NotFound("user %s not found", id)
	}
	return &usr, nil
}

func (u userRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, usr := range u.users {
		if usr.Email == email {
			return &usr, nil
		}
	}
	return nil, apierror.NotFound("user %s not found", email)
}

func (u userRepo) LockByIDTx(_ *gorm.DB, id uuid.UUID) error {
	if _, ok := u.users[id]; !ok {
		return apierror.NotFound("user %s not found", id)
	}
	return nil
}

// ── OrderRepository ──────────────────────────────────────────────────────────

type orderRepo struct{ *memStore }

func (o orderRepo) CreateTx(_ *gorm.DB, order *model.Order) error {
	if o.failOrderCreate != nil {
		return o.failOrderCreate
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	items := make([]model.OrderItem, len(order.Items))
	for i, it := range order.Items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.OrderID = order.ID
		it.Product = nil
		order.Items[i].ID = it.ID
		order.Items[i].OrderID = order.ID
		items[i] = it
	}
	stored := *order
	stored.Items = items
	o.orders[order.ID] = stored
	return nil
}

func (o orderRepo) withProducts(order model.Order) model.Order {
	items := make([]model.OrderItem, len(order.Items))
	for i, it := range order.Items {
		if p, ok := o.products[it.ProductID]; ok {
			it.Product = &p
		}
		items[i] = it
	}
	order.Items = items
	return order
}

func (o orderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.FindByIDTx(nil, id)
}

func (o orderRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	order, ok := o.orders[id]
	if !ok {
		return nil, apierror.NotFound("order %s not found", id)
	}
	order = o.withProducts(order)
	return &order, nil
}

func (o orderRepo) MarkRefundedTx(_ *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	order, ok := o.orders[id]
	if !ok || order.Status != model.OrderCompleted {
		return false, nil
	}
	order.Status = model.OrderRefunded
	order.UpdatedAt = at
	o.orders[id] = order
	return true, nil
}

func (o orderRepo) List(_ context.Context, f repository.OrderFilter) ([]model.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ListTx(nil, f)
}

func (o orderRepo) ListTx(_ *gorm.DB, f repository.OrderFilter) ([]model.Order, error) {
	var out []model.Order
	for _, order := range o.orders {
		switch {
		case f.BranchID != nil && order.BranchID != *f.BranchID,
			f.CashierID != nil && order.CashierID != *f.CashierID,
			f.CustomerID != nil && (order.CustomerID == nil || *order.CustomerID != *f.CustomerID),
			f.PaymentType != nil && order.PaymentType != *f.PaymentType,
			f.Status != nil && order.Status != *f.Status,
			f.From != nil && order.CreatedAt.Before(*f.From),
			f.To != nil && order.CreatedAt.After(*f.To),
			f.Until != nil && !order.CreatedAt.Before(*f.Until):
			continue
		}
		out = append(out, o.withProducts(order))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ── RefundRepository / StockMovementRepository ───────────────────────────────

type refundRepo struct{ *memStore }

func (r refundRepo) CreateTx(_ *gorm.DB, rf *model.Refund) error {
	for _, existing := range r.refunds {
		if existing.OrderID == rf.OrderID {
			return apierror.InvalidState("order %s is already refunded", rf.OrderID)
		}
	}
	if rf.ID == uuid.Nil {
		rf.ID = uuid.New()
	}
	r.refunds = append(r.refunds, *rf)
	return nil
}

func (r refundRepo) List(_ context.Context, f repository.RefundFilter) ([]model.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ListTx(nil, f)
}

func (r refundRepo) ListTx(_ *gorm.DB, f repository.RefundFilter) ([]model.Refund, error) {
	var out []model.Refund
	for _, rf := range r.refunds {
		switch {
		case f.BranchID != nil && rf.BranchID != *f.BranchID,
			f.CashierID != nil && rf.CashierID != *f.CashierID,
			f.From != nil && rf.CreatedAt.Before(*f.From),
			f.To != nil && rf.CreatedAt.After(*f.To):
			continue
		}
		out = append(out, rf)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type movementRepo struct{ *memStore }

func (m movementRepo) CreateTx(_ *gorm.DB, mv *model.StockMovement) error {
	if mv.ID == uuid.Nil {
		mv.ID = uuid.New()
	}
	m.movements = append(m.movements, *mv)
	return nil
}

func (m movementRepo) List(_ context.Context, f repository.StockMovementFilter) ([]model.StockMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StockMovement
	for _, mv := range m.movements {
		if f.ReferenceID != nil && (mv.ReferenceID == nil || *mv.ReferenceID != *f.ReferenceID) {
			continue
		}
		if f.ProductID != nil && mv.ProductID != *f.ProductID {
			continue
		}
		if f.Type != "" && mv.Type != f.Type {
			continue
		}
		out = append(out, mv)
	}
	return out, nil
}

// ── ShiftRepository ──────────────────────────────────────────────────────────

type shiftRepo struct{ *memStore }

func (s shiftRepo) CreateTx(_ *gorm.DB, r *model.ShiftReport) error {
	for _, existing := range s.shifts {
		if existing.CashierID == r.CashierID && existing.ShiftEnd == nil {
			return apierror.InvalidState("shift already started")
		}
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.shifts[r.ID] = *r
	return nil
}

func (s shiftRepo) FindOpenByCashierTx(_ *gorm.DB, cashierID uuid.UUID) (*model.ShiftReport, error) {
	for _, r := range s.shifts {
		if r.CashierID == cashierID && r.ShiftEnd == nil {
			return &r, nil
		}
	}
	return nil, nil
}

func (s shiftRepo) FindOpenByCashier(_ context.Context, cashierID uuid.UUID) (*model.ShiftReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, _ := s.FindOpenByCashierTx(nil, cashierID)
	if r == nil {
		return nil, apierror.NotFound("no open shift for cashier %s", cashierID)
	}
	return r, nil
}

func (s shiftRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ShiftReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.shifts[id]
	if !ok {
		return nil, apierror.NotFound("shift %s not found", id)
	}
	return &r, nil
}

func (s shiftRepo) FindLatestStarted(_ context.Context, cashierID uuid.UUID, from, until time.Time) (*model.ShiftReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *model.ShiftReport
	for _, r := range s.shifts {
		if r.CashierID != cashierID || r.ShiftStart.Before(from) || !r.ShiftStart.Before(until) {
			continue
		}
		if best == nil || r.ShiftStart.After(best.ShiftStart) {
			r := r
			best = &r
		}
	}
	if best == nil {
		return nil, apierror.NotFound("no shift for cashier %s", cashierID)
	}
	return best, nil
}

func (s shiftRepo) SaveSnapshotTx(_ *gorm.DB, r *model.ShiftReport) error {
	if _, ok := s.shifts[r.ID]; !ok {
		return apierror.NotFound("shift %s not found", r.ID)
	}
	s.shifts[r.ID] = *r
	return nil
}

func (s shiftRepo) List(_ context.Context, f repository.ShiftFilter) ([]model.ShiftReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ShiftReport
	for _, r := range s.shifts {
		if f.BranchID != nil && r.BranchID != *f.BranchID {
			continue
		}
		if f.CashierID != nil && r.CashierID != *f.CashierID {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ShiftStart.After(out[j].ShiftStart) })
	return out, nil
}
