package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	redisclient "github.com/atlasdental/clinic-booking/internal/redis"
	"github.com/atlasdental/clinic-booking/internal/schedule"
)

// failingLocker always reports the lock as held elsewhere.
type failingLocker struct{}

func (failingLocker) WithSlotLock(ctx context.Context, slotKey string, fn func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

func newTestService(t *testing.T) (*Service, *MemRepository) {
	t.Helper()
	repo := NewMemRepository()
	return NewService(repo, nil), repo
}

func generationConfig(t *testing.T) schedule.Config {
	t.Helper()
	bs, _ := schedule.ParseTimeOfDay("12:00")
	be, _ := schedule.ParseTimeOfDay("14:00")
	return schedule.Config{
		StartDate:       date(t, "2025-06-09"),
		EndDate:         date(t, "2025-06-13"),
		Weekdays:        []int{1, 2, 3, 4, 5},
		StartTime:       9 * 60,
		EndTime:         17 * 60,
		DurationMinutes: 60,
		BreakStart:      &bs,
		BreakEnd:        &be,
	}
}

func TestGenerateSlots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTestService(t)

	count, err := svc.GenerateSlots(ctx, generationConfig(t))
	if err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}
	// 5 days x 6 slots (8 hours minus the 2-hour break)
	if count != 30 {
		t.Errorf("generated %d slots, want 30", count)
	}

	// Regeneration over the identical range creates nothing new.
	count, err = svc.GenerateSlots(ctx, generationConfig(t))
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if count != 0 {
		t.Errorf("regeneration created %d slots, want 0", count)
	}
}

func TestGenerateSlotsInvalidConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestService(t)

	cfg := generationConfig(t)
	cfg.DurationMinutes = -15

	if _, err := svc.GenerateSlots(ctx, cfg); !errors.Is(err, schedule.ErrInvalidConfig) {
		t.Fatalf("GenerateSlots = %v, want ErrInvalidConfig", err)
	}

	// Aborted generation persists nothing.
	slots, err := repo.ListSlots(ctx, nil)
	if err != nil {
		t.Fatalf("ListSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("invalid config inserted %d slots", len(slots))
	}
}

func TestAvailableTimes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTestService(t)
	if _, err := svc.GenerateSlots(ctx, generationConfig(t)); err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}

	d := date(t, "2025-06-10")
	times, err := svc.AvailableTimes(ctx, d)
	if err != nil {
		t.Fatalf("AvailableTimes: %v", err)
	}
	want := []string{"09:00 AM", "10:00 AM", "11:00 AM", "02:00 PM", "03:00 PM", "04:00 PM"}
	if len(times) != len(want) {
		t.Fatalf("got %d times %v, want %d", len(times), times, len(want))
	}
	for i := range want {
		if times[i] != want[i] {
			t.Errorf("times[%d] = %q, want %q", i, times[i], want[i])
		}
	}

	// Booked times disappear from availability.
	if _, err := svc.BookAppointment(ctx, bookingRequest(d, "09:00 AM")); err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}
	times, err = svc.AvailableTimes(ctx, d)
	if err != nil {
		t.Fatalf("AvailableTimes: %v", err)
	}
	for _, tm := range times {
		if tm == "09:00 AM" {
			t.Error("booked time still listed as available")
		}
	}
	if len(times) != len(want)-1 {
		t.Errorf("got %d times after booking, want %d", len(times), len(want)-1)
	}
}

func bookingRequest(d schedule.Date, displayTime string) BookingRequest {
	return BookingRequest{
		Date:        d,
		Time:        displayTime,
		FullName:    "Yasmine Berrada",
		Email:       "yasmine@example.com",
		Phone:       "+212600000000",
		ServiceName: "Détartrage",
	}
}

func TestBookAppointment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestService(t)
	if _, err := svc.GenerateSlots(ctx, generationConfig(t)); err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}

	d := date(t, "2025-06-11")
	appt, err := svc.BookAppointment(ctx, bookingRequest(d, "10:00 AM"))
	if err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}
	if appt.Status != StatusPending {
		t.Errorf("new appointment status = %s, want Pending", appt.Status)
	}
	if appt.ServiceName != "Détartrage" {
		t.Errorf("service name = %q, want the copied label", appt.ServiceName)
	}
	if appt.Date != d || appt.Time != "10:00 AM" {
		t.Errorf("appointment carries %s %s, want %s 10:00 AM", appt.Date, appt.Time, d)
	}

	slot := findSlot(t, repo, d, "10:00 AM")
	if slot.Status != SlotBooked || slot.AppointmentID == nil || *slot.AppointmentID != appt.ID {
		t.Errorf("slot not linked to appointment: %+v", slot)
	}

	// Second claim for the same time loses.
	if _, err := svc.BookAppointment(ctx, bookingRequest(d, "10:00 AM")); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("second booking = %v, want ErrSlotUnavailable", err)
	}
}

func TestBookAppointmentValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTestService(t)
	d := date(t, "2025-06-11")

	tests := []struct {
		name   string
		mutate func(*BookingRequest)
	}{
		{"missing name", func(r *BookingRequest) { r.FullName = "  " }},
		{"missing phone", func(r *BookingRequest) { r.Phone = "" }},
		{"24h time format", func(r *BookingRequest) { r.Time = "10:00" }},
		{"garbage time", func(r *BookingRequest) { r.Time = "sometime" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := bookingRequest(d, "10:00 AM")
			tt.mutate(&req)
			if _, err := svc.BookAppointment(ctx, req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("BookAppointment = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestBookAppointmentLockContended(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemRepository()
	svc := NewService(repo, failingLocker{})

	if _, err := svc.GenerateSlots(ctx, generationConfig(t)); err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}

	_, err := svc.BookAppointment(ctx, bookingRequest(date(t, "2025-06-09"), "09:00 AM"))
	if !errors.Is(err, ErrSlotBeingBooked) {
		t.Errorf("BookAppointment under contended lock = %v, want ErrSlotBeingBooked", err)
	}
}

func TestConcurrentBookingSingleWinner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTestService(t)
	if _, err := svc.GenerateSlots(ctx, generationConfig(t)); err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}

	const attempts = 16
	d := date(t, "2025-06-12")

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, losses := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.BookAppointment(ctx, bookingRequest(d, "03:00 PM"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrSlotUnavailable):
				losses++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || losses != attempts-1 {
		t.Errorf("wins=%d losses=%d, want 1 and %d", wins, losses, attempts-1)
	}
}

func TestSetAppointmentStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestService(t)
	if _, err := svc.GenerateSlots(ctx, generationConfig(t)); err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}

	d := date(t, "2025-06-13")
	appt, err := svc.BookAppointment(ctx, bookingRequest(d, "11:00 AM"))
	if err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}

	confirmed, err := svc.SetAppointmentStatus(ctx, appt.ID, StatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Errorf("status = %s, want Confirmed", confirmed.Status)
	}

	// Confirming does not free the slot.
	if slot := findSlot(t, repo, d, "11:00 AM"); slot.Status != SlotBooked {
		t.Errorf("slot status after confirm = %s, want Booked", slot.Status)
	}

	done, err := svc.SetAppointmentStatus(ctx, appt.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("status = %s, want Completed", done.Status)
	}

	// Completed is terminal.
	if _, err := svc.SetAppointmentStatus(ctx, appt.ID, StatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Completed -> Pending = %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.SetAppointmentStatus(ctx, appt.ID, StatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Completed -> Cancelled = %v, want ErrInvalidTransition", err)
	}

	// Unknown status names are rejected up front.
	if _, err := svc.SetAppointmentStatus(ctx, appt.ID, "Archived"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown status = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelFreesTimeForRebooking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestService(t)
	if _, err := svc.GenerateSlots(ctx, generationConfig(t)); err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}

	d := date(t, "2025-06-09")
	appt, err := svc.BookAppointment(ctx, bookingRequest(d, "02:00 PM"))
	if err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}

	if _, err := svc.SetAppointmentStatus(ctx, appt.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	slot := findSlot(t, repo, d, "02:00 PM")
	if slot.Status != SlotAvailable || slot.AppointmentID != nil {
		t.Errorf("slot not released after cancel: %+v", slot)
	}

	rebooked, err := svc.BookAppointment(ctx, bookingRequest(d, "02:00 PM"))
	if err != nil {
		t.Fatalf("rebooking after cancel: %v", err)
	}
	if rebooked.ID == appt.ID {
		t.Error("rebooking returned the cancelled appointment")
	}

	// The cancelled record itself is preserved.
	old, err := svc.GetAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if old.Status != StatusCancelled {
		t.Errorf("old appointment status = %s, want Cancelled", old.Status)
	}
}

func TestDeleteAppointmentViaService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestService(t)
	if _, err := svc.GenerateSlots(ctx, generationConfig(t)); err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}

	d := date(t, "2025-06-10")
	appt, err := svc.BookAppointment(ctx, bookingRequest(d, "04:00 PM"))
	if err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}

	if err := svc.DeleteAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if slot := findSlot(t, repo, d, "04:00 PM"); slot.Status != SlotAvailable {
		t.Errorf("slot not freed by hard delete: %+v", slot)
	}

	if err := svc.DeleteAppointment(ctx, appt.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("double delete = %v, want ErrAppointmentNotFound", err)
	}
}

func TestListAppointmentsFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTestService(t)
	if _, err := svc.GenerateSlots(ctx, generationConfig(t)); err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}

	d1 := date(t, "2025-06-09")
	d2 := date(t, "2025-06-10")
	a1, err := svc.BookAppointment(ctx, bookingRequest(d1, "09:00 AM"))
	if err != nil {
		t.Fatalf("book 1: %v", err)
	}
	if _, err := svc.BookAppointment(ctx, bookingRequest(d2, "09:00 AM")); err != nil {
		t.Fatalf("book 2: %v", err)
	}
	if _, err := svc.SetAppointmentStatus(ctx, a1.ID, StatusConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	confirmed, err := svc.ListAppointments(ctx, AppointmentFilter{Status: StatusConfirmed})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(confirmed) != 1 || confirmed[0].ID != a1.ID {
		t.Errorf("confirmed filter returned %+v", confirmed)
	}

	byDate, err := svc.ListAppointments(ctx, AppointmentFilter{Date: &d2})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(byDate) != 1 || byDate[0].Date != d2 {
		t.Errorf("date filter returned %+v", byDate)
	}
}
