// The notifier worker is the real-time barman feed: it consumes the order
// lifecycle topics, deduplicates events via Redis and surfaces them on the
// log. Status-bearing events also drop the cached order view so the next
// public read sees fresh state.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/delmas-dev/bartab/internal/config"
	kafkax "github.com/delmas-dev/bartab/internal/kafka"
	"github.com/delmas-dev/bartab/internal/orders"
	"github.com/delmas-dev/bartab/internal/redisx"
)

type feed struct {
	rdb  *redis.Client
	log  *zap.Logger
	name string
}

func (f *feed) handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup on event id
	dkey := fmt.Sprintf(redisx.KeyDedup, f.name, env.EventID)
	if exists, _ := redisx.Exists(ctx, f.rdb, dkey); exists {
		return nil
	}
	_ = f.rdb.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		f.log.Info("new order placed",
			zap.String("order_id", p.OrderID),
			zap.String("customer", p.CustomerName),
			zap.Int("items", len(p.Items)),
			zap.String("total", p.TotalAmount.String()))
	case orders.EventStatusUpdated:
		p, err := kafkax.UnwrapPayload[orders.StatusUpdatedPayload](env.Payload)
		if err != nil {
			return err
		}
		f.log.Info("order status changed",
			zap.String("order_id", p.OrderID),
			zap.String("status", string(p.Status)))
		f.dropOrderCache(ctx, p.OrderID)
	case orders.EventOrderReady:
		p, err := kafkax.UnwrapPayload[orders.OrderReadyPayload](env.Payload)
		if err != nil {
			return err
		}
		f.log.Info("order ready for pickup",
			zap.String("order_id", p.OrderID),
			zap.String("customer", p.CustomerName))
		f.dropOrderCache(ctx, p.OrderID)
	case orders.EventOrderModified:
		p, err := kafkax.UnwrapPayload[orders.OrderModifiedPayload](env.Payload)
		if err != nil {
			return err
		}
		f.log.Info("order modified",
			zap.String("order_id", p.OrderID),
			zap.String("reason", p.Reason),
			zap.String("new_total", p.TotalAmount.String()))
		f.dropOrderCache(ctx, p.OrderID)
	case orders.EventStockUpdated:
		p, err := kafkax.UnwrapPayload[orders.StockUpdatedPayload](env.Payload)
		if err != nil {
			return err
		}
		f.log.Info("stock level changed",
			zap.String("drink_id", p.DrinkID),
			zap.String("quantity", p.Quantity.String()))
	}
	return nil
}

func (f *feed) dropOrderCache(ctx context.Context, orderID string) {
	_ = f.rdb.Del(ctx, fmt.Sprintf(redisx.KeyOrder, orderID)).Err()
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := zap.NewProduction()
	if cfg.Environment != "production" {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	group := getenv("NOTIFIER_GROUP", "bartab-notifier")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), 4)

	f := &feed{rdb: rdb, log: log, name: group}

	topics := []string{
		orders.TopicOrderCreated,
		orders.TopicOrderStatus,
		orders.TopicOrderReady,
		orders.TopicOrderModified,
		orders.TopicStockUpdated,
	}
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func(topic string) {
			log.Info("consumer started",
				zap.String("group", group), zap.String("topic", topic), zap.Int("workers", workers))
			if err := cons.Start(ctx, f.handle); err != nil {
				log.Error("consumer exit", zap.String("topic", topic), zap.Error(err))
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down notifier")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
