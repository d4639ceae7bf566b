package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/flicky/coffeebar-pos/internal/model"
	"github.com/flicky/coffeebar-pos/internal/repository"
)

var errDBDown = errors.New("connection refused")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int64
	roles  map[string]*model.Role
	err    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users: make(map[string]*model.User),
		roles: map[string]*model.Role{
			"Administrator": {ID: model.RoleAdmin, Name: "Administrator"},
			"Customer":      {ID: 2, Name: "Customer"},
		},
	}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	user.ID = m.nextID
	user.RegistrationDate = time.Now()
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, m.err
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users[username], nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetRoleByName(_ context.Context, name string) (*model.Role, error) {
	return m.roles[name], m.err
}

type mockProductRepo struct {
	products map[int64]*model.Product
	nextID   int64
	calls    int
	err      error
	// deleteErr is returned by Delete for existing rows
	deleteErr error
}

func newMockProductRepo(products ...model.Product) *mockProductRepo {
	m := &mockProductRepo{products: make(map[int64]*model.Product)}
	for i := range products {
		p := products[i]
		m.products[p.ID] = &p
		if p.ID > m.nextID {
			m.nextID = p.ID
		}
	}
	return m
}

func (m *mockProductRepo) sorted(keep func(*model.Product) bool) []model.Product {
	var out []model.Product
	for _, p := range m.products {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockProductRepo) ListAvailable(_ context.Context, categoryID int64) ([]model.Product, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(p *model.Product) bool {
		return p.IsAvailable && (categoryID == 0 || p.CategoryID == categoryID)
	}), nil
}

func (m *mockProductRepo) ListAll(_ context.Context) ([]model.Product, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(*model.Product) bool { return true }), nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*model.Product, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []int64) ([]model.Product, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.sorted(func(p *model.Product) bool { return want[p.ID] }), nil
}

func (m *mockProductRepo) Create(_ context.Context, product *model.Product) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.nextID++
	product.ID = m.nextID
	cp := *product
	m.products[cp.ID] = &cp
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, product *model.Product) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	if _, ok := m.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *product
	m.products[cp.ID] = &cp
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id int64) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	if _, ok := m.products[id]; !ok {
		return pgx.ErrNoRows
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.products, id)
	return nil
}

type mockCategoryRepo struct {
	categories []model.Category
	calls      int
}

func (m *mockCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	m.calls++
	return m.categories, nil
}

// mockOrderRepo stages writes made inside WithTx and keeps them only when the
// callback succeeds.
type mockOrderRepo struct {
	orders map[int64]*model.Order
	nextID int64
	calls  int
	// failItemAt makes the n-th InsertItem of a transaction fail (1-based)
	failItemAt int
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[int64]*model.Order)}
}

type stagedTx struct {
	repo     *mockOrderRepo
	orders   []*model.Order
	items    []model.OrderItem
	inserted int
}

func (tx *stagedTx) InsertOrder(_ context.Context, order *model.Order) error {
	tx.repo.nextID++
	order.ID = tx.repo.nextID
	cp := *order
	tx.orders = append(tx.orders, &cp)
	return nil
}

func (tx *stagedTx) InsertItem(_ context.Context, item *model.OrderItem) error {
	tx.inserted++
	if tx.repo.failItemAt > 0 && tx.inserted == tx.repo.failItemAt {
		return errors.New("insert order item: deadlock detected")
	}
	tx.items = append(tx.items, *item)
	return nil
}

func (m *mockOrderRepo) WithTx(_ context.Context, fn func(tx repository.OrderTx) error) error {
	m.calls++
	tx := &stagedTx{repo: m}
	if err := fn(tx); err != nil {
		return err
	}
	for _, o := range tx.orders {
		for _, item := range tx.items {
			if item.OrderID == o.ID {
				o.Items = append(o.Items, item)
			}
		}
		m.orders[o.ID] = o
	}
	return nil
}

func (m *mockOrderRepo) itemCount() int {
	n := 0
	for _, o := range m.orders {
		n += len(o.Items)
	}
	return n
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*model.Order, error) {
	m.calls++
	return m.orders[id], nil
}

func (m *mockOrderRepo) ListByUserID(_ context.Context, userID int64) ([]model.Order, error) {
	m.calls++
	var out []model.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id int64, from, to model.OrderStatus) error {
	m.calls++
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return pgx.ErrNoRows
	}
	o.Status = to
	return nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishOrder(ctx context.Context, msg model.OrderMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
