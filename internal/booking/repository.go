package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/atlasdental/clinic-booking/internal/schedule"
)

var (
	// ErrSlotNotFound means no slot exists with the given id.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSlotUnavailable means the requested (date, time) is not currently
	// bookable: already booked, blocked, or never generated.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrSlotNotDeletable means the slot is not Available and so may not be
	// deleted; deleting a booked slot would orphan its appointment.
	ErrSlotNotDeletable = errors.New("slot is not deletable")
	// ErrAppointmentNotFound means no appointment exists with the given id.
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository is the persistence boundary for slots and appointments. All
// write operations are durable and safe under concurrent callers; the
// (date, time) uniqueness invariant and the atomicity of BookSlot are
// enforced by the implementation, never by caller-side check-then-write.
type Repository interface {
	// BulkInsertSlots inserts each candidate as an Available slot, silently
	// skipping (date, time) pairs that already exist. Returns the number of
	// slots actually created. Safe to re-run over overlapping ranges.
	BulkInsertSlots(ctx context.Context, candidates []schedule.Candidate) (int, error)

	// ListSlots returns all slots, optionally filtered to one date, ordered
	// by date then chronological time.
	ListSlots(ctx context.Context, date *schedule.Date) ([]Slot, error)

	GetSlot(ctx context.Context, id uuid.UUID) (*Slot, error)

	// DeleteSlot removes a slot, failing with ErrSlotNotDeletable unless its
	// status is Available.
	DeleteSlot(ctx context.Context, id uuid.UUID) error

	// DeletePastSlots removes Available slots dated strictly before the
	// cutoff and returns how many were removed. Booked and blocked slots are
	// kept as history.
	DeletePastSlots(ctx context.Context, before schedule.Date) (int, error)

	// BookSlot atomically claims the Available slot at (date, time): it
	// creates a Pending appointment, marks the slot Booked, and links the
	// two, all in one transaction. Returns ErrSlotUnavailable if the slot is
	// absent or not Available at the instant of commit.
	BookSlot(ctx context.Context, date schedule.Date, displayTime string, na NewAppointment) (*Appointment, error)

	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error)

	// UpdateAppointmentStatus performs a compare-and-swap from -> to. When
	// releaseSlot is set, the owning slot is flipped back to Available and
	// unlinked in the same transaction. A lost race surfaces as
	// ErrInvalidTransition.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus, releaseSlot bool) (*Appointment, error)

	// DeleteAppointment hard-deletes the appointment and releases its slot
	// atomically.
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
}
