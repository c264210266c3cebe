package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/subosito/gotenv"

	"github.com/Spok95/fitclub-bot/internal/attendance"
	"github.com/Spok95/fitclub-bot/internal/bot"
	"github.com/Spok95/fitclub-bot/internal/config"
	"github.com/Spok95/fitclub-bot/internal/dialog"
	"github.com/Spok95/fitclub-bot/internal/infra/db"
	httpx "github.com/Spok95/fitclub-bot/internal/infra/http"
	"github.com/Spok95/fitclub-bot/internal/infra/lock"
	"github.com/Spok95/fitclub-bot/internal/infra/logger"
	"github.com/Spok95/fitclub-bot/internal/infra/metrics"
	"github.com/Spok95/fitclub-bot/internal/notify"
	"github.com/Spok95/fitclub-bot/internal/store/postgres"
	"github.com/Spok95/fitclub-bot/internal/venue"
)

func main() {
	// .env необязателен
	_ = gotenv.Load()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/example.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := db.Migrate(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	store, err := postgres.New(pool)
	if err != nil {
		log.Error("store init failed", "err", err)
		return
	}

	m := metrics.MustNew(prometheus.DefaultRegisterer)
	clock := venue.NewClock(cfg.Venue.UTCOffsetHours)

	var api *tgbotapi.BotAPI
	if cfg.Telegram.Token != "" {
		api, err = tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			log.Error("telegram init failed", "err", err)
			return
		}
		log.Info("telegram authorized", "username", api.Self.UserName)
	}

	var sender notify.Sender = notify.LogSender{Log: log}
	if api != nil {
		sender = notify.NewTelegramSender(api)
	}
	trigger := notify.NewTrigger(store.Clients(), sender, log, cfg.Notify.Timeout, m)

	opts := []attendance.Option{attendance.WithObserver(m), attendance.WithLogger(log)}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("redis connect failed", "err", err)
			return
		}
		opts = append(opts, attendance.WithLocker(lock.NewRedisLocker(rdb, cfg.Attendance.LockTTL, cfg.Attendance.LockWait)))
		log.Info("redis lock enabled", "addr", cfg.Redis.Addr)
	}
	svc := attendance.NewService(store, clock, trigger, opts...)

	srv := httpx.New(cfg.HTTP.Addr, httpx.Deps{
		Attendance:    svc,
		Visits:        store.Visits(),
		Clients:       store.Clients(),
		Clock:         clock,
		Log:           log,
		ExposeMetrics: cfg.Metrics.Enabled,
	})
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	if api != nil {
		b := bot.New(api, log, dialog.NewRepo(pool), svc)
		go func() {
			if err := b.Run(ctx, cfg.Telegram.PollTimeout); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("bot stopped", "err", err)
			}
		}()
		log.Info("telegram bot started")
	} else {
		log.Warn("telegram token is empty, bot disabled")
	}

	<-ctx.Done()
	shutdown(log, srv, trigger)
}

func shutdown(log *slog.Logger, srv *httpx.Server, trigger *notify.Trigger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	done := make(chan struct{})
	go func() {
		trigger.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warn("notifications still in flight on shutdown")
	}
	log.Info("graceful shutdown complete")
}
