package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	redisclient "github.com/atlasdental/clinic-booking/internal/redis"
	"github.com/atlasdental/clinic-booking/internal/schedule"
)

var (
	// ErrSlotBeingBooked means another booking attempt currently holds the
	// lock for this slot; the caller should retry shortly or pick another
	// time.
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
	// ErrInvalidRequest means a booking or status request is missing
	// required fields.
	ErrInvalidRequest = errors.New("invalid request")
)

// BookingRequest is a patient's claim on a specific (date, time).
type BookingRequest struct {
	Date        schedule.Date
	Time        string // display form, e.g. "09:00 AM"
	FullName    string
	Email       string
	Phone       string
	ServiceName string
	Notes       string
}

// Service wires slot generation and the booking allocator to the store.
// It holds no state of its own; all coordination between concurrent
// callers happens in the repository.
type Service struct {
	repo   Repository
	locker redisclient.Locker
}

func NewService(repo Repository, locker redisclient.Locker) *Service {
	if locker == nil {
		locker = redisclient.NewNopLocker()
	}
	return &Service{
		repo:   repo,
		locker: locker,
	}
}

// GenerateSlots expands the config into candidate slots and persists the
// ones that do not already exist. Validation failures abort before any
// insert; re-running over an overlapping range only creates the genuinely
// new (date, time) pairs and never disturbs booked slots.
func (s *Service) GenerateSlots(ctx context.Context, cfg schedule.Config) (int, error) {
	candidates, err := schedule.Collect(cfg)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	count, err := s.repo.BulkInsertSlots(ctx, candidates)
	if err != nil {
		return 0, fmt.Errorf("persist generated slots: %w", err)
	}
	return count, nil
}

func (s *Service) ListSlots(ctx context.Context, date *schedule.Date) ([]Slot, error) {
	return s.repo.ListSlots(ctx, date)
}

func (s *Service) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteSlot(ctx, id)
}

// AvailableTimes returns the bookable display times for one date in
// chronological order, the list the patient picks from.
func (s *Service) AvailableTimes(ctx context.Context, date schedule.Date) ([]string, error) {
	slots, err := s.repo.ListSlots(ctx, &date)
	if err != nil {
		return nil, fmt.Errorf("list slots for %s: %w", date, err)
	}

	times := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot.Status == SlotAvailable {
			times = append(times, slot.Time)
		}
	}
	return times, nil
}

// BookAppointment atomically claims the requested slot and creates the
// Pending appointment. Exactly one of any set of concurrent attempts for
// the same (date, time) succeeds; the rest see ErrSlotUnavailable or, when
// the per-slot lock is contended, ErrSlotBeingBooked. Nothing is retried
// here; retry policy belongs to the caller.
func (s *Service) BookAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var created *Appointment
	key := req.Date.String() + ":" + req.Time

	err := s.locker.WithSlotLock(ctx, key, func(lockCtx context.Context) error {
		appt, err := s.repo.BookSlot(lockCtx, req.Date, req.Time, NewAppointment{
			FullName:    req.FullName,
			Email:       req.Email,
			Phone:       req.Phone,
			ServiceName: req.ServiceName,
			Notes:       req.Notes,
		})
		if err != nil {
			return err
		}
		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	return created, nil
}

func (req BookingRequest) validate() error {
	if strings.TrimSpace(req.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidRequest)
	}
	if _, err := schedule.ParseDisplay(req.Time); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// SetAppointmentStatus moves an appointment along the lifecycle state
// machine. Cancelling releases the slot back to Available in the same
// transaction, so the freed time is immediately bookable again.
func (s *Service) SetAppointmentStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus) (*Appointment, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, to)
	}

	release := to == StatusCancelled
	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, appt.Status, to, release)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAppointment hard-deletes an appointment regardless of status and
// frees its slot.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAppointment(ctx, id)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	return s.repo.ListAppointments(ctx, f)
}

// PruneExpiredSlots removes stale Available slots dated before the cutoff.
// Intended to be called by the retention worker periodically.
func (s *Service) PruneExpiredSlots(ctx context.Context, before schedule.Date) (int, error) {
	removed, err := s.repo.DeletePastSlots(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("prune expired slots: %w", err)
	}
	return removed, nil
}
