package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/atlasdental/clinic-booking/internal/booking"
	"github.com/atlasdental/clinic-booking/internal/catalog"
	"github.com/atlasdental/clinic-booking/internal/db"
	"github.com/atlasdental/clinic-booking/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	catalogRepo := catalog.NewPgRepository(pool)
	if err := seedCatalog(ctx, catalogRepo); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	svc := booking.NewService(booking.NewPgRepository(pool), nil)
	if err := seedSlots(ctx, svc); err != nil {
		log.Fatalf("seed slots: %v", err)
	}
	if err := seedAppointments(ctx, svc, catalogRepo, 25); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedCatalog(ctx context.Context, repo *catalog.PgRepository) error {
	services := []catalog.Service{
		{TitleFr: "Consultation", TitleAr: "استشارة", Price: "200 MAD"},
		{TitleFr: "Détartrage", TitleAr: "تنظيف الأسنان", Price: "400 MAD"},
		{TitleFr: "Blanchiment", TitleAr: "تبييض الأسنان", Price: "1500 MAD"},
		{TitleFr: "Traitement de Canal", TitleAr: "علاج العصب", Price: "1200 MAD"},
		{TitleFr: "Couronne Dentaire", TitleAr: "تاج الأسنان", Price: "2500 MAD"},
		{TitleFr: "Extraction", TitleAr: "قلع الأسنان", Price: "300 MAD"},
		{TitleFr: "Orthodontie", TitleAr: "تقويم الأسنان", Price: "sur devis"},
		{TitleFr: "Implant Dentaire", TitleAr: "زرع الأسنان", Price: "8000 MAD"},
	}
	log.Printf("seeding %d services", len(services))
	for _, svc := range services {
		if _, err := repo.AddService(ctx, svc); err != nil {
			return err
		}
	}

	return repo.UpdateSettings(ctx, catalog.ClinicSettings{
		ID:         uuid.New(),
		ClinicName: "Atlas Dental Care",
		Phone:      "+212 5 35 52 10 10",
		Email:      "contact@atlasdentalcare.ma",
		Address:    "12 Avenue des FAR, Meknès",
		Whatsapp:   "+212 6 61 52 10 10",
	})
}

func seedSlots(ctx context.Context, svc *booking.Service) error {
	start := schedule.DateOf(time.Now())
	end := schedule.DateOf(time.Now().AddDate(0, 0, 28))
	startTime, _ := schedule.ParseTimeOfDay("09:00")
	endTime, _ := schedule.ParseTimeOfDay("17:00")
	breakStart, _ := schedule.ParseTimeOfDay("12:00")
	breakEnd, _ := schedule.ParseTimeOfDay("14:00")

	count, err := svc.GenerateSlots(ctx, schedule.Config{
		StartDate:       start,
		EndDate:         end,
		Weekdays:        []int{1, 2, 3, 4, 5, 6}, // closed Sundays
		StartTime:       startTime,
		EndTime:         endTime,
		DurationMinutes: 60,
		BreakStart:      &breakStart,
		BreakEnd:        &breakEnd,
	})
	if err != nil {
		return err
	}
	log.Printf("seeded %d slots", count)
	return nil
}

func seedAppointments(ctx context.Context, svc *booking.Service, catalogRepo catalog.Repository, count int) error {
	log.Printf("seeding up to %d appointments", count)

	services, err := catalogRepo.ListServices(ctx)
	if err != nil {
		return err
	}

	slots, err := svc.ListSlots(ctx, nil)
	if err != nil {
		return err
	}

	booked := 0
	for _, slot := range slots {
		if booked >= count {
			break
		}
		if slot.Status != booking.SlotAvailable {
			continue
		}
		if gofakeit.Number(0, 3) != 0 { // book roughly a quarter of them
			continue
		}

		serviceName := services[gofakeit.Number(0, len(services)-1)].TitleFr

		// Go through the real allocator so seeded data obeys the same
		// invariants as live bookings.
		_, err := svc.BookAppointment(ctx, booking.BookingRequest{
			Date:        slot.Date,
			Time:        slot.Time,
			FullName:    gofakeit.Name(),
			Email:       gofakeit.Email(),
			Phone:       gofakeit.Phone(),
			ServiceName: serviceName,
			Notes:       gofakeit.Sentence(6),
		})
		if err != nil {
			if errors.Is(err, booking.ErrSlotUnavailable) {
				continue
			}
			return err
		}
		booked++
	}

	log.Printf("seeded %d appointments", booked)
	return nil
}
