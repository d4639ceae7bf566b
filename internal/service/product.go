package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/flicky/coffeebar-pos/internal/dto"
	"github.com/flicky/coffeebar-pos/internal/model"
	"github.com/flicky/coffeebar-pos/internal/repository"
)

const pgForeignKeyViolation = "23503"

// ProductService is the admin side of the catalog. Every method requires an
// admin session.
type ProductService struct {
	productRepo repository.ProductRepository
	log         *slog.Logger
}

func NewProductService(productRepo repository.ProductRepository, log *slog.Logger) *ProductService {
	return &ProductService{productRepo: productRepo, log: log}
}

// List returns every product, available or not, ordered by id.
func (s *ProductService) List(ctx context.Context, sess model.Session) ([]dto.ProductResponse, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	return toProductResponses(products), nil
}

func (s *ProductService) Create(ctx context.Context, sess model.Session, req dto.ProductRequest) (*dto.ProductResponse, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, categoryOrStorageErr("create product", err)
	}
	s.log.Info("product created", "product_id", product.ID, "by", sess.UserID)
	return s.reload(ctx, product.ID)
}

func (s *ProductService) Update(ctx context.Context, sess model.Session, id int64, req dto.ProductRequest) (*dto.ProductResponse, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	product.ID = id
	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
		}
		return nil, categoryOrStorageErr("update product", err)
	}
	s.log.Info("product updated", "product_id", id, "by", sess.UserID)
	return s.reload(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, sess model.Session, id int64) error {
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: id %d", ErrProductNotFound, id)
		}
		if isForeignKeyViolation(err) {
			return invalid("id", "product is referenced by existing orders")
		}
		return storageErr("delete product", err)
	}
	s.log.Info("product deleted", "product_id", id, "by", sess.UserID)
	return nil
}

// reload reads the product back so the response carries its category name.
func (s *ProductService) reload(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get product", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	resp := dto.ToProductResponse(product)
	return &resp, nil
}

// Prices are stored as NUMERIC(10,2).
const priceScale = 2

var maxPrice = decimal.New(1, 8)

func productFromRequest(req dto.ProductRequest) (*model.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.IsNegative() {
		return nil, invalid("price", "must be a non-negative number")
	}
	if !price.Equal(price.Round(priceScale)) {
		return nil, invalid("price", "must have at most two decimal places")
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return nil, invalid("price", "must be less than "+maxPrice.String())
	}
	if req.CategoryID <= 0 {
		return nil, invalid("category_id", "must be selected")
	}
	return &model.Product{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Price:       price,
		CategoryID:  req.CategoryID,
		IsAvailable: req.IsAvailable,
	}, nil
}

func categoryOrStorageErr(op string, err error) error {
	if isForeignKeyViolation(err) {
		return invalid("category_id", "does not exist")
	}
	return storageErr(op, err)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
