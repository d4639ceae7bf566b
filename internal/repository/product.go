package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/coffeebar-pos/internal/model"
)

type ProductRepository interface {
	ListAvailable(ctx context.Context, categoryID int64) ([]model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id int64) error
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productSelect = `SELECT p.id, p.name, COALESCE(p.description, ''), p.price, p.category_id, c.name, p.is_available
	FROM products p
	INNER JOIN categories c ON p.category_id = c.id`

func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.CategoryName, &p.IsAvailable); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return products, nil
}

// ListAvailable returns available products, optionally narrowed to one
// category. A categoryID of 0 means every category.
func (r *pgProductRepo) ListAvailable(ctx context.Context, categoryID int64) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		productSelect+` WHERE p.is_available AND ($1::bigint = 0 OR p.category_id = $1) ORDER BY p.id`, categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list available products: %w", err)
	}
	return scanProducts(rows)
}

func (r *pgProductRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, productSelect+` ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return scanProducts(rows)
}

func (r *pgProductRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	p := &model.Product{}
	err := r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.CategoryName, &p.IsAvailable,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, productSelect+` WHERE p.id = ANY($1) ORDER BY p.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return scanProducts(rows)
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	query := `INSERT INTO products (name, description, price, category_id, is_available)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		product.Name, product.Description, product.Price, product.CategoryID, product.IsAvailable,
	).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Update returns pgx.ErrNoRows when no product has the given id.
func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE products SET name=$2, description=$3, price=$4, category_id=$5, is_available=$6 WHERE id=$1`,
		product.ID, product.Name, product.Description, product.Price, product.CategoryID, product.IsAvailable,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
