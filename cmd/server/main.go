package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"medledger/internal/access"
	accesshandler "medledger/internal/access/handler"
	accessstore "medledger/internal/access/store"
	"medledger/internal/events"
	eventstore "medledger/internal/events/store"
	jwttoken "medledger/internal/jwt_token"
	"medledger/internal/platform/config"
	"medledger/internal/platform/httpserver"
	"medledger/internal/platform/logger"
	"medledger/internal/platform/metrics"
	redisplatform "medledger/internal/platform/redis"
	"medledger/internal/record"
	recordhandler "medledger/internal/record/handler"
	recordstore "medledger/internal/record/store"
	transporthttp "medledger/internal/transport/http"
	txpkg "medledger/pkg/platform/tx"
)

const shutdownTimeout = 10 * time.Second

// sqlHealth adapts *sql.DB to the router's health check surface.
type sqlHealth struct {
	db *sql.DB
}

func (h sqlHealth) Health(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	router := transporthttp.NewRouter(log)

	// Storage: postgres when configured, in-memory otherwise. The in-memory
	// stores need no transaction runner; their writes are already atomic.
	var (
		recordsStore record.Store
		grantsStore  access.Store
		outbox       events.Store
		runner       txpkg.Runner
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(context.Background()); err != nil {
			log.Error("failed to ping postgres", "error", err)
			os.Exit(1)
		}
		recordsStore = recordstore.NewPostgresStore(db)
		grantsStore = accessstore.NewPostgresStore(db)
		outbox = eventstore.NewPostgresStore(db)
		runner = txpkg.SQLRunner{DB: db}
		router.AddHealthCheck("postgres", sqlHealth{db: db})
		log.Info("using postgres stores")
	} else {
		recordsStore = record.NewInMemoryStore()
		grantsStore = access.NewInMemoryStore()
		outbox = events.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	redisClient, err := redisplatform.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		grantsStore = accessstore.NewCachedStore(grantsStore, redisClient.Client, cfg.GrantCacheTTL)
		router.AddHealthCheck("redis", redisClient)
		log.Info("grant cache enabled")
	}

	publisher := events.NewPublisher(outbox)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "medledger", "medledger")
	validator := jwttoken.NewMiddlewareAdapter(jwtService)

	ledger := access.NewService(grantsStore, publisher, runner, log, m)
	records := record.NewService(recordsStore, ledger, publisher, runner, log, m)

	router.Add(recordhandler.New(records, log, m, validator))
	router.Add(accesshandler.New(ledger, log, m, validator))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if len(cfg.KafkaBrokers) > 0 {
		kafkaClient, err := kgo.NewClient(kgo.SeedBrokers(cfg.KafkaBrokers...))
		if err != nil {
			log.Error("failed to create kafka client", "error", err)
			os.Exit(1)
		}
		defer kafkaClient.Close()

		relay := events.NewRelay(outbox, kafkaClient, cfg.KafkaTopic, log, events.WithMetrics(m))
		if err := relay.EnsureTopic(ctx); err != nil {
			log.Error("failed to ensure notification topic", "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			log.Info("notification relay started", "topic", cfg.KafkaTopic)
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		log.Warn("kafka brokers not configured, notifications stay in the outbox")
	}

	srv := httpserver.New(cfg.Addr, router.Handler())

	g.Go(func() error {
		log.Info("starting medledger", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
