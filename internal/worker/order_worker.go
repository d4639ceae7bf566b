package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/coffeebar-pos/internal/model"
	"github.com/flicky/coffeebar-pos/internal/repository"
)

const (
	orderQueueName = "orders"
	dlxExchange    = "orders.dlx"
	dlqQueueName   = "orders.dlq"
	idempotencyTTL = 24 * time.Hour
)

// Deduper remembers which orders the bar has already accepted.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string, ttl time.Duration) error
}

type RedisDeduper struct {
	client *redis.Client
}

func NewRedisDeduper(client *redis.Client) *RedisDeduper {
	return &RedisDeduper{client: client}
}

func (d *RedisDeduper) Seen(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *RedisDeduper) Mark(ctx context.Context, key string, ttl time.Duration) error {
	return d.client.Set(ctx, key, "1", ttl).Err()
}

// OrderWorker is the bar side of checkout: it consumes placed orders and
// moves them to accepted.
type OrderWorker struct {
	channel   *amqp.Channel
	orderRepo repository.OrderRepository
	dedupe    Deduper
	log       *slog.Logger
	done      chan struct{}
	stopOnce  sync.Once
}

func NewOrderWorker(ch *amqp.Channel, orderRepo repository.OrderRepository, dedupe Deduper, log *slog.Logger) *OrderWorker {
	return &OrderWorker{
		channel:   ch,
		orderRepo: orderRepo,
		dedupe:    dedupe,
		log:       log,
		done:      make(chan struct{}),
	}
}

// SetupRabbitMQ declares the order queue and its dead-letter pair.
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, orderQueueName, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": orderQueueName,
	}); err != nil {
		return fmt.Errorf("declare order queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

func (w *OrderWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(orderQueueName, "bar", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("bar worker started", "queue", orderQueueName)
	return nil
}

func (w *OrderWorker) Stop() { w.stopOnce.Do(func() { close(w.done) }) }

func idempotencyKey(orderID int64) string {
	return "order_accepted:" + strconv.FormatInt(orderID, 10)
}

func (w *OrderWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var orderMsg model.OrderMessage
	if err := json.Unmarshal(msg.Body, &orderMsg); err != nil || orderMsg.OrderID <= 0 {
		w.log.Error("decode order message", "error", err, "body", string(msg.Body))
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("order_id", orderMsg.OrderID, "user_id", orderMsg.UserID)

	key := idempotencyKey(orderMsg.OrderID)
	seen, err := w.dedupe.Seen(ctx, key)
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if seen {
		log.Info("order already accepted, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.acceptOrder(ctx, orderMsg.OrderID); err != nil {
		log.Error("accept order failed", "error", err)
		_ = msg.Nack(false, false) // dead-lettered
		return
	}

	if err := w.dedupe.Mark(ctx, key, idempotencyTTL); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("order accepted")
}

func (w *OrderWorker) acceptOrder(ctx context.Context, orderID int64) error {
	order, err := w.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return fmt.Errorf("order %d not found", orderID)
	}

	err = w.orderRepo.UpdateStatus(ctx, orderID, model.OrderStatusPlaced, model.OrderStatusAccepted)
	if errors.Is(err, pgx.ErrNoRows) {
		w.log.Warn("order not in placed status", "order_id", orderID, "status", int(order.Status))
		return nil
	}
	if err != nil {
		return fmt.Errorf("accept order: %w", err)
	}
	return nil
}
