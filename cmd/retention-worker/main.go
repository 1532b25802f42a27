package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlasdental/clinic-booking/internal/booking"
	"github.com/atlasdental/clinic-booking/internal/config"
	"github.com/atlasdental/clinic-booking/internal/db"
	"github.com/atlasdental/clinic-booking/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("retention-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if cfg.DemoMode() {
		log.Fatal("POSTGRES_DSN is required, the retention worker has nothing to prune in demo mode")
	}

	log.Printf("running retention worker in env=%s interval=%s keep_days=%d",
		cfg.Env, cfg.WorkerInterval, cfg.RetentionKeepDays)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	repo := booking.NewPgRepository(pgPool)
	svc := booking.NewService(repo, nil)

	// Run once at startup
	runOnce(rootCtx, svc, cfg.RetentionKeepDays)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping retention worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, cfg.RetentionKeepDays)
		}
	}
}

// runOnce prunes Available slots that are already in the past; a slot that
// was never booked has no value once its day is over. Booked slots stay as
// appointment history.
func runOnce(ctx context.Context, svc *booking.Service, keepDays int) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	cutoff := schedule.DateOf(time.Now().AddDate(0, 0, -keepDays))

	start := time.Now()
	removed, err := svc.PruneExpiredSlots(runCtx, cutoff)
	if err != nil {
		log.Printf("retention run error: %v", err)
		return
	}
	log.Printf("retention run complete: removed=%d cutoff=%s elapsed=%s", removed, cutoff, time.Since(start))
}
