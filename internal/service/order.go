package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flicky/coffeebar-pos/internal/cart"
	"github.com/flicky/coffeebar-pos/internal/catalog"
	"github.com/flicky/coffeebar-pos/internal/model"
	"github.com/flicky/coffeebar-pos/internal/repository"
)

// OrderPublisher hands committed orders to the bar.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, msg model.OrderMessage) error
}

type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	carts       cart.Store
	publisher   OrderPublisher
	log         *slog.Logger
	now         func() time.Time
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, carts cart.Store, publisher OrderPublisher, log *slog.Logger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		carts:       carts,
		publisher:   publisher,
		log:         log,
		now:         time.Now,
	}
}

// Checkout turns the ledger into one order with one item per line, priced
// at current catalog prices. The order and its items are written in a single
// transaction; the ledger is cleared only after commit.
func (s *OrderService) Checkout(ctx context.Context, sess model.Session, ledger *cart.Ledger) (*model.Order, error) {
	if ledger.IsEmpty() {
		return nil, ErrEmptyCart
	}

	products, err := s.productRepo.GetByIDs(ctx, ledger.ProductIDs())
	if err != nil {
		return nil, storageErr("load cart products", err)
	}
	prices := catalog.NewIndex(products)

	lines := ledger.Lines()
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		p, ok := prices.Resolve(line.ProductID)
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, line.ProductID)
		}
		items = append(items, model.OrderItem{ProductID: p.ID, Quantity: line.Quantity, UnitPrice: p.Price})
	}

	order := &model.Order{
		UserID:      sess.UserID,
		OrderDate:   s.now(),
		TotalAmount: ledger.Total(prices),
		Status:      model.OrderStatusPlaced,
	}
	err = s.orderRepo.WithTx(ctx, func(tx repository.OrderTx) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.InsertItem(ctx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("checkout rolled back", "user_id", sess.UserID, "error", err)
		return nil, storageErr("checkout", err)
	}

	order.Items = items
	ledger.Clear()
	s.log.Info("order placed", "order_id", order.ID, "user_id", order.UserID, "total", order.TotalAmount.String())
	s.publish(ctx, order)
	return order, nil
}

// PlaceOrder checks out the cart of the given session and stores the
// emptied cart back.
func (s *OrderService) PlaceOrder(ctx context.Context, sess model.Session) (*model.Order, error) {
	ledger, err := s.carts.Load(ctx, sess.TokenID)
	if err != nil {
		return nil, storageErr("load cart", err)
	}
	order, err := s.Checkout(ctx, sess, ledger)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Delete(ctx, sess.TokenID); err != nil {
		// the order is already committed
		s.log.Error("clear cart after checkout", "order_id", order.ID, "error", err)
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, order *model.Order) {
	if s.publisher == nil {
		return
	}
	msg := model.OrderMessage{OrderID: order.ID, UserID: order.UserID}
	if err := s.publisher.PublishOrder(ctx, msg); err != nil {
		s.log.Warn("publish order", "order_id", order.ID, "error", err)
	}
}

func (s *OrderService) ListOrders(ctx context.Context, sess model.Session) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, storageErr("list orders", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, sess model.Session, id int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get order", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != sess.UserID && !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	return order, nil
}
