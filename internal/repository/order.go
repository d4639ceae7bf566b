package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/coffeebar-pos/internal/model"
)

// OrderTx is the write side of an open order transaction.
type OrderTx interface {
	InsertOrder(ctx context.Context, order *model.Order) error
	InsertItem(ctx context.Context, item *model.OrderItem) error
}

type OrderRepository interface {
	// WithTx runs fn inside one transaction. It commits when fn returns nil
	// and rolls everything back otherwise.
	WithTx(ctx context.Context, fn func(tx OrderTx) error) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.OrderStatus) error
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

type pgOrderTx struct{ tx pgx.Tx }

func (r *pgOrderRepo) WithTx(ctx context.Context, fn func(tx OrderTx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgOrderTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (t *pgOrderTx) InsertOrder(ctx context.Context, order *model.Order) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO orders (user_id, order_date, total_amount, status_id)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		order.UserID, order.OrderDate, order.TotalAmount, order.Status,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (t *pgOrderTx) InsertItem(ctx context.Context, item *model.OrderItem) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// UpdateStatus moves an order from one status to another. It returns
// pgx.ErrNoRows when the order is missing or not in the from status.
func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id int64, from, to model.OrderStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET status_id = $3 WHERE id = $1 AND status_id = $2`, id, from, to,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	order := &model.Order{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, order_date, total_amount, status_id FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &order.UserID, &order.OrderDate, &order.TotalAmount, &order.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT product_id, quantity, unit_price FROM order_items WHERE order_id = $1 ORDER BY product_id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	return order, nil
}

func (r *pgOrderRepo) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_date, total_amount, status_id FROM orders WHERE user_id = $1 ORDER BY order_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		o.UserID = userID
		if err := rows.Scan(&o.ID, &o.OrderDate, &o.TotalAmount, &o.Status); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
