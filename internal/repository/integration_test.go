package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/coffeebar-pos/internal/model"
)

var allTables = []string{"order_items", "orders", "products", "categories", "users"}

func seedCategory(t *testing.T, name string) model.Category {
	t.Helper()
	c := model.Category{Name: name}
	require.NoError(t, testPool.QueryRow(context.Background(),
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name,
	).Scan(&c.ID))
	return c
}

func seedUser(t *testing.T, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username: username, Password: "secret1", FirstName: "Ivan", LastName: "Petrov",
		Email: username + "@example.com", RoleID: 2,
	}
	require.NoError(t, NewUserRepository(testPool).Create(context.Background(), user))
	return user
}

func TestUserRepo_CreateAndLookup(t *testing.T) {
	cleanupTable(t, allTables...)
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	user := seedUser(t, "barista")
	assert.NotZero(t, user.ID)
	assert.False(t, user.RegistrationDate.IsZero())

	found, err := repo.GetByUsername(ctx, "barista")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
	assert.Nil(t, found.Phone)

	byEmail, err := repo.GetByEmail(ctx, "barista@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	missing, err := repo.GetByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)

	role, err := repo.GetRoleByName(ctx, "Customer")
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, 2, role.ID)
}

func TestProductRepo_CRUD(t *testing.T) {
	cleanupTable(t, allTables...)
	repo := NewProductRepository(testPool)
	ctx := context.Background()
	coffee := seedCategory(t, "Coffee")
	tea := seedCategory(t, "Tea")

	latte := &model.Product{Name: "Latte", Price: decimal.NewFromFloat(2.5), CategoryID: coffee.ID, IsAvailable: true}
	require.NoError(t, repo.Create(ctx, latte))
	assert.NotZero(t, latte.ID)

	sencha := &model.Product{Name: "Sencha", Description: "green", Price: decimal.NewFromInt(2), CategoryID: tea.ID, IsAvailable: true}
	require.NoError(t, repo.Create(ctx, sencha))
	hidden := &model.Product{Name: "Seasonal", Price: decimal.NewFromInt(4), CategoryID: tea.ID, IsAvailable: false}
	require.NoError(t, repo.Create(ctx, hidden))

	found, err := repo.GetByID(ctx, latte.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", found.CategoryName)
	assert.True(t, latte.Price.Equal(found.Price))

	available, err := repo.ListAvailable(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	teaOnly, err := repo.ListAvailable(ctx, tea.ID)
	require.NoError(t, err)
	require.Len(t, teaOnly, 1)
	assert.Equal(t, "Sencha", teaOnly[0].Name)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latte.Name = "Flat white"
	require.NoError(t, repo.Update(ctx, latte))
	found, _ = repo.GetByID(ctx, latte.ID)
	assert.Equal(t, "Flat white", found.Name)

	assert.ErrorIs(t, repo.Update(ctx, &model.Product{ID: -1, Name: "x", CategoryID: coffee.ID}), pgx.ErrNoRows)

	require.NoError(t, repo.Delete(ctx, latte.ID))
	found, _ = repo.GetByID(ctx, latte.ID)
	assert.Nil(t, found)
	assert.ErrorIs(t, repo.Delete(ctx, latte.ID), pgx.ErrNoRows)

	byIDs, err := repo.GetByIDs(ctx, []int64{sencha.ID, hidden.ID, latte.ID})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)
}

func TestOrderRepo_WithTxCommitsOrderAndItems(t *testing.T) {
	cleanupTable(t, allTables...)
	ctx := context.Background()
	user := seedUser(t, "customer")
	cat := seedCategory(t, "Coffee")
	productRepo := NewProductRepository(testPool)
	p := &model.Product{Name: "Mocha", Price: decimal.NewFromInt(100), CategoryID: cat.ID, IsAvailable: true}
	require.NoError(t, productRepo.Create(ctx, p))

	repo := NewOrderRepository(testPool)
	order := &model.Order{
		UserID: user.ID, OrderDate: time.Now(), TotalAmount: decimal.NewFromInt(200), Status: model.OrderStatusPlaced,
	}
	err := repo.WithTx(ctx, func(tx OrderTx) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		return tx.InsertItem(ctx, &model.OrderItem{OrderID: order.ID, ProductID: p.ID, Quantity: 2, UnitPrice: p.Price})
	})
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, model.OrderStatusPlaced, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items[0].Quantity)

	list, err := repo.ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, model.OrderStatusPlaced, model.OrderStatusAccepted))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, order.ID, model.OrderStatusPlaced, model.OrderStatusAccepted), pgx.ErrNoRows)
}

func TestOrderRepo_WithTxRollsBackOnItemFailure(t *testing.T) {
	cleanupTable(t, allTables...)
	ctx := context.Background()
	user := seedUser(t, "customer")
	cat := seedCategory(t, "Coffee")
	productRepo := NewProductRepository(testPool)
	p := &model.Product{Name: "Mocha", Price: decimal.NewFromInt(100), CategoryID: cat.ID, IsAvailable: true}
	require.NoError(t, productRepo.Create(ctx, p))

	repo := NewOrderRepository(testPool)
	order := &model.Order{UserID: user.ID, OrderDate: time.Now(), TotalAmount: decimal.NewFromInt(150), Status: model.OrderStatusPlaced}
	err := repo.WithTx(ctx, func(tx OrderTx) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		if err := tx.InsertItem(ctx, &model.OrderItem{OrderID: order.ID, ProductID: p.ID, Quantity: 1, UnitPrice: p.Price}); err != nil {
			return err
		}
		// unknown product violates the foreign key
		return tx.InsertItem(ctx, &model.OrderItem{OrderID: order.ID, ProductID: -1, Quantity: 1, UnitPrice: p.Price})
	})
	require.Error(t, err)

	var orders, items int
	require.NoError(t, testPool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orders))
	require.NoError(t, testPool.QueryRow(ctx, `SELECT COUNT(*) FROM order_items`).Scan(&items))
	assert.Zero(t, orders)
	assert.Zero(t, items)

	found, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}
