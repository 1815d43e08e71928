package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/delmas-dev/bartab/internal/catalog"
	"github.com/delmas-dev/bartab/internal/config"
	"github.com/delmas-dev/bartab/internal/httpx"
	"github.com/delmas-dev/bartab/internal/memstore"
	"github.com/delmas-dev/bartab/internal/notify"
	"github.com/delmas-dev/bartab/internal/orders"
	"github.com/delmas-dev/bartab/internal/postgres"
	"github.com/delmas-dev/bartab/internal/redisx"
)

func newLogger(env string) *zap.Logger {
	if env == "production" {
		l, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return l
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return l
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg.Environment)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		orderStore orders.Store
		drinkStore catalog.Store
		rdb        *redis.Client
		kafkaSink  *notify.Kafka
	)

	notifier := notify.Fanout{&notify.Log{L: log}}

	if cfg.Environment == "memory" {
		// self-contained mode: no Postgres, Redis or Kafka required
		ms := memstore.New()
		orderStore, drinkStore = ms, ms
	} else {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("db connect", zap.Error(err))
		}
		defer db.Close()

		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()

		kafkaSink = notify.NewKafka(cfg.KafkaBrokers, cfg.ServiceName)
		kafkaSink.Start(ctx)
		notifier = append(notifier, kafkaSink)

		orderStore = &orders.Repo{DB: db}
		drinkStore = &catalog.Repo{DB: db}
	}

	orderSvc := &orders.Service{
		Store:            orderStore,
		Notifier:         notifier,
		Log:              log,
		NotifyOnComplete: cfg.NotifyOnComplete,
	}
	drinkSvc := &catalog.Service{
		Store:    drinkStore,
		Notifier: notifier,
		Log:      log,
	}

	router := httpx.NewRouter()
	ph := &httpx.PublicHandler{Orders: orderSvc, Catalog: drinkSvc, Redis: rdb}
	ph.Register(router)
	ah := &httpx.AdminHandler{Orders: orderSvc, Catalog: drinkSvc, Redis: rdb}
	ah.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if kafkaSink != nil {
		kafkaSink.Close() // flushes queued events, then closes the writers
	}
}
