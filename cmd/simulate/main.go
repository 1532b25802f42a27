// simulate drives concurrent booking traffic against a running api-server
// and reports how the allocator behaved under contention: every (date,
// time) must be won at most once no matter how many workers fight for it.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasdental/clinic-booking/internal/config"
	"github.com/atlasdental/clinic-booking/internal/db"
)

type simConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	ConfirmRatio float64
	ReadRatio    float64
	SlotLimit    int
	PostgresDSN  string
}

type slotKey struct {
	Date string
	Time string
}

// dataPool is shared across workers: the slots to fight over, the
// appointments created so far, and a per-slot win counter that catches any
// double booking the server lets through.
type dataPool struct {
	slots []slotKey

	mu           sync.Mutex
	appointments []uuid.UUID
	wins         map[slotKey]int
}

func (dp *dataPool) randomSlot(rng *rand.Rand) slotKey {
	return dp.slots[rng.Intn(len(dp.slots))]
}

func (dp *dataPool) recordWin(key slotKey, apptID uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.wins[key]++
	if apptID != uuid.Nil {
		dp.appointments = append(dp.appointments, apptID)
	}
}

func (dp *dataPool) randomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

func (dp *dataPool) doubleWins() []slotKey {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	var out []slotKey
	for key, n := range dp.wins {
		if n > 1 {
			out = append(out, key)
		}
	}
	return out
}

// opStats accumulates per-operation outcomes and latencies.
type opStats struct {
	mu        sync.Mutex
	success   int
	conflict  int
	failed    int
	latencies []time.Duration
}

func (s *opStats) record(latency time.Duration, outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch outcome {
	case "success":
		s.success++
	case "conflict":
		s.conflict++
	default:
		s.failed++
	}
	s.latencies = append(s.latencies, latency)
}

func (s *opStats) report(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.success + s.conflict + s.failed
	if total == 0 {
		return
	}

	sorted := make([]time.Duration, len(s.latencies))
	copy(sorted, s.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	pct := func(p int) time.Duration {
		idx := len(sorted) * p / 100
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return sorted[idx]
	}

	fmt.Printf("%-14s total=%d success=%d conflict=%d failed=%d p50=%s p95=%s max=%s\n",
		name, total, s.success, s.conflict, s.failed,
		pct(50).Round(time.Millisecond),
		pct(95).Round(time.Millisecond),
		sorted[len(sorted)-1].Round(time.Millisecond))
}

type simulator struct {
	cfg    simConfig
	pool   *dataPool
	client *http.Client

	booking      opStats
	confirm      opStats
	availability opStats
	listSlots    opStats
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadSimConfig()
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required to load the slot pool")
	}
	if cfg.Workers <= 0 || cfg.Duration <= 0 {
		log.Fatal("SIM_WORKERS and SIM_DURATION must be positive")
	}

	log.Printf("config: base_url=%s duration=%s workers=%d booking=%.2f confirm=%.2f read=%.2f",
		cfg.APIBaseURL, cfg.Duration, cfg.Workers, cfg.BookingRatio, cfg.ConfirmRatio, cfg.ReadRatio)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	pool, err := loadSlotPool(ctx, pgPool, cfg.SlotLimit)
	if err != nil {
		log.Fatalf("load slot pool: %v", err)
	}
	log.Printf("loaded %d available slots", len(pool.slots))

	gofakeit.Seed(time.Now().UnixNano())

	sim := &simulator{
		cfg:    cfg,
		pool:   pool,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	sim.run()
	sim.printReport()
}

func loadSimConfig() simConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("load base config: %v", err)
	}

	cfg := simConfig{
		APIBaseURL:   envStr("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     envDuration("SIM_DURATION", 30*time.Second),
		Workers:      envInt("SIM_WORKERS", 10),
		BookingRatio: envFloat("SIM_BOOKING_RATIO", 0.6),
		ConfirmRatio: envFloat("SIM_CONFIRM_RATIO", 0.1),
		ReadRatio:    envFloat("SIM_READ_RATIO", 0.3),
		SlotLimit:    envInt("SIM_SLOT_LIMIT", 500),
		PostgresDSN:  baseCfg.PostgresDSN,
	}

	if total := cfg.BookingRatio + cfg.ConfirmRatio + cfg.ReadRatio; total > 0 {
		cfg.BookingRatio /= total
		cfg.ConfirmRatio /= total
		cfg.ReadRatio /= total
	}
	return cfg
}

func loadSlotPool(ctx context.Context, pgPool *pgxpool.Pool, limit int) (*dataPool, error) {
	rows, err := pgPool.Query(ctx, `
		SELECT slot_date::text, slot_time
		FROM slots
		WHERE status = 'Available'
		ORDER BY slot_date, time_sort
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	pool := &dataPool{wins: make(map[slotKey]int)}
	for rows.Next() {
		var key slotKey
		if err := rows.Scan(&key.Date, &key.Time); err != nil {
			return nil, err
		}
		pool.slots = append(pool.slots, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(pool.slots) == 0 {
		return nil, fmt.Errorf("no available slots, run the seed first")
	}
	return pool, nil
}

func (s *simulator) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Duration)
	defer cancel()

	log.Printf("running for %s with %d workers", s.cfg.Duration, s.cfg.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + seed))
			for ctx.Err() == nil {
				switch r := rng.Float64(); {
				case r < s.cfg.BookingRatio:
					s.doBooking(ctx, rng)
				case r < s.cfg.BookingRatio+s.cfg.ConfirmRatio:
					s.doConfirm(ctx, rng)
				default:
					if rng.Intn(2) == 0 {
						s.doAvailability(ctx, rng)
					} else {
						s.doListSlots(ctx)
					}
				}
			}
		}(int64(i))
	}
	wg.Wait()

	log.Println("simulation complete")
}

func (s *simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	key := s.pool.randomSlot(rng)

	payload, _ := json.Marshal(map[string]string{
		"date":         key.Date,
		"time":         key.Time,
		"full_name":    gofakeit.Name(),
		"email":        gofakeit.Email(),
		"phone":        gofakeit.Phone(),
		"service_name": "Consultation",
	})

	start := time.Now()
	resp, err := s.post(ctx, "/appointments", payload)
	latency := time.Since(start)

	if err != nil {
		s.booking.record(latency, "failed")
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var created struct {
			ID uuid.UUID `json:"id"`
		}
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &created)
		s.pool.recordWin(key, created.ID)
		s.booking.record(latency, "success")
	case http.StatusConflict:
		s.booking.record(latency, "conflict")
	default:
		s.booking.record(latency, "failed")
	}
}

func (s *simulator) doConfirm(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.randomAppointment(rng)
	if !ok {
		return
	}

	payload, _ := json.Marshal(map[string]string{"status": "Confirmed"})

	start := time.Now()
	resp, err := s.post(ctx, "/admin/appointments/"+apptID.String()+"/status", payload)
	latency := time.Since(start)

	if err != nil {
		s.confirm.record(latency, "failed")
		return
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		s.confirm.record(latency, "success")
	case http.StatusConflict:
		// Already confirmed or cancelled by another worker; expected churn.
		s.confirm.record(latency, "conflict")
	default:
		s.confirm.record(latency, "failed")
	}
}

func (s *simulator) doAvailability(ctx context.Context, rng *rand.Rand) {
	key := s.pool.randomSlot(rng)

	start := time.Now()
	resp, err := s.get(ctx, "/availability?date="+key.Date)
	latency := time.Since(start)

	if err != nil {
		s.availability.record(latency, "failed")
		return
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		s.availability.record(latency, "success")
	} else {
		s.availability.record(latency, "failed")
	}
}

func (s *simulator) doListSlots(ctx context.Context) {
	start := time.Now()
	resp, err := s.get(ctx, "/admin/slots")
	latency := time.Since(start)

	if err != nil {
		s.listSlots.record(latency, "failed")
		return
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		s.listSlots.record(latency, "success")
	} else {
		s.listSlots.record(latency, "failed")
	}
}

func (s *simulator) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.client.Do(req)
}

func (s *simulator) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.APIBaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return s.client.Do(req)
}

func (s *simulator) printReport() {
	fmt.Println()
	fmt.Printf("simulation report: duration=%s workers=%d slots=%d\n",
		s.cfg.Duration, s.cfg.Workers, len(s.pool.slots))

	s.booking.report("booking")
	s.confirm.report("confirm")
	s.availability.report("availability")
	s.listSlots.report("list-slots")

	if doubles := s.pool.doubleWins(); len(doubles) == 0 {
		fmt.Println("consistency: every slot was booked at most once")
	} else {
		fmt.Printf("consistency VIOLATION: %d slots booked more than once\n", len(doubles))
		for _, key := range doubles {
			fmt.Printf("  %s %s\n", key.Date, key.Time)
		}
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
