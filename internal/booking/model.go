package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/atlasdental/clinic-booking/internal/schedule"
)

type SlotStatus string

const (
	SlotAvailable SlotStatus = "Available"
	SlotBooked    SlotStatus = "Booked"
	SlotBlocked   SlotStatus = "Blocked"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusCompleted AppointmentStatus = "Completed"
)

// Slot is a single bookable unit of clinic time. The (Date, Time) pair is
// unique across all slots; the storage layer enforces it. Time is the
// 12-hour display string ("09:00 AM") and is the exact form the booking
// flow sends back when claiming the slot.
type Slot struct {
	ID            uuid.UUID
	Date          schedule.Date
	Time          string
	Status        SlotStatus
	AppointmentID *uuid.UUID
	CreatedAt     time.Time
}

// Appointment is a patient's claim on one slot. Date and Time are a
// denormalized copy of the claimed slot's key, and ServiceName is a copy
// of the service label at booking time rather than a reference, so the
// record stays accurate if the catalog changes later.
type Appointment struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	FullName    string
	Email       string
	Phone       string
	ServiceName string
	Notes       string
	Date        schedule.Date
	Time        string
	Status      AppointmentStatus
}

// NewAppointment carries the patient fields for a booking attempt.
type NewAppointment struct {
	FullName    string
	Email       string
	Phone       string
	ServiceName string
	Notes       string
}

// AppointmentFilter narrows ListAppointments. Zero values match all.
type AppointmentFilter struct {
	Status AppointmentStatus
	Date   *schedule.Date
}
