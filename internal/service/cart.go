package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flicky/coffeebar-pos/internal/cart"
	"github.com/flicky/coffeebar-pos/internal/catalog"
	"github.com/flicky/coffeebar-pos/internal/dto"
	"github.com/flicky/coffeebar-pos/internal/model"
	"github.com/flicky/coffeebar-pos/internal/repository"
)

// CartService edits the ledger that belongs to a login session. Carts are
// keyed by the session token id, so two logins of one user get separate carts.
type CartService struct {
	store       cart.Store
	productRepo repository.ProductRepository
}

func NewCartService(store cart.Store, productRepo repository.ProductRepository) *CartService {
	return &CartService{store: store, productRepo: productRepo}
}

func (s *CartService) View(ctx context.Context, sess model.Session) (*dto.CartResponse, error) {
	ledger, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, ledger)
}

// Add puts one more unit of an available product into the cart.
func (s *CartService) Add(ctx context.Context, sess model.Session, productID int64) (*dto.CartResponse, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, storageErr("get product", err)
	}
	if product == nil || !product.IsAvailable {
		return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
	}
	return s.mutate(ctx, sess, func(l *cart.Ledger) { l.Add(productID) })
}

func (s *CartService) Decrement(ctx context.Context, sess model.Session, productID int64) (*dto.CartResponse, error) {
	return s.mutate(ctx, sess, func(l *cart.Ledger) { l.Decrement(productID) })
}

func (s *CartService) Remove(ctx context.Context, sess model.Session, productID int64) (*dto.CartResponse, error) {
	return s.mutate(ctx, sess, func(l *cart.Ledger) { l.Remove(productID) })
}

func (s *CartService) Clear(ctx context.Context, sess model.Session) error {
	if err := s.store.Delete(ctx, sess.TokenID); err != nil {
		return storageErr("clear cart", err)
	}
	return nil
}

func (s *CartService) mutate(ctx context.Context, sess model.Session, fn func(*cart.Ledger)) (*dto.CartResponse, error) {
	ledger, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	fn(ledger)
	if err := s.store.Save(ctx, sess.TokenID, ledger); err != nil {
		return nil, storageErr("save cart", err)
	}
	return s.render(ctx, ledger)
}

func (s *CartService) load(ctx context.Context, sess model.Session) (*cart.Ledger, error) {
	ledger, err := s.store.Load(ctx, sess.TokenID)
	if err != nil {
		return nil, storageErr("load cart", err)
	}
	return ledger, nil
}

// render prices the ledger at current catalog prices. Entries whose product
// has since been deleted are left out of both the lines and the total.
func (s *CartService) render(ctx context.Context, ledger *cart.Ledger) (*dto.CartResponse, error) {
	resp := &dto.CartResponse{Items: []dto.CartItemResponse{}}
	if ledger.IsEmpty() {
		return resp, nil
	}

	products, err := s.productRepo.GetByIDs(ctx, ledger.ProductIDs())
	if err != nil {
		return nil, storageErr("price cart", err)
	}
	idx := catalog.NewIndex(products)
	for _, line := range ledger.Lines() {
		p, ok := idx.Resolve(line.ProductID)
		if !ok {
			continue
		}
		resp.Items = append(resp.Items, dto.CartItemResponse{
			ProductID:  p.ID,
			Name:       p.Name,
			Price:      p.Price,
			Quantity:   line.Quantity,
			TotalPrice: p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
		resp.Count += line.Quantity
	}
	resp.Total = ledger.Total(idx)
	return resp, nil
}
