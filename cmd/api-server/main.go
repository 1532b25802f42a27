package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atlasdental/clinic-booking/internal/api"
	"github.com/atlasdental/clinic-booking/internal/booking"
	"github.com/atlasdental/clinic-booking/internal/catalog"
	"github.com/atlasdental/clinic-booking/internal/config"
	"github.com/atlasdental/clinic-booking/internal/db"
	redisclient "github.com/atlasdental/clinic-booking/internal/redis"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s demo_mode=%t", cfg.Env, cfg.HTTPPort, cfg.DemoMode())

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		pgPool      *pgxpool.Pool
		bookingRepo booking.Repository
		catalogRepo catalog.Repository
	)

	if cfg.DemoMode() {
		log.Println("POSTGRES_DSN not set, running with the in-memory store")
		bookingRepo = booking.NewMemRepository()
		catalogRepo = catalog.NewMemRepository()
	} else {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatalf("postgres connection error: %v", err)
		}
		defer pgPool.Close()

		migrateCtx, cancelMigrate := context.WithTimeout(rootCtx, 30*time.Second)
		err = db.EnsureSchema(migrateCtx, pgPool)
		cancelMigrate()
		if err != nil {
			log.Fatalf("schema error: %v", err)
		}
		log.Println("connected to Postgres")

		bookingRepo = booking.NewPgRepository(pgPool)
		catalogRepo = catalog.NewPgRepository(pgPool)
	}

	var rdb *redis.Client
	locker := redisclient.NewNopLocker()
	if cfg.RedisAddr != "" {
		rdb, err = redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		locker = redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
		log.Println("connected to Redis")
	} else {
		log.Println("REDIS_ADDR not set, booking runs without the distributed slot lock")
	}

	svc := booking.NewService(bookingRepo, locker)

	router := api.NewRouter(api.RouterConfig{
		Booking: svc,
		Catalog: catalogRepo,
		PgPool:  pgPool,
		Redis:   rdb,
		Env:     cfg.Env,
		Version: version,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
