package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atlasdental/clinic-booking/internal/schedule"
)

// MemRepository is an in-memory Repository used for tests and for demo
// mode, where the service runs without a database configured. A single
// mutex serializes every write, which makes BookSlot and the release
// paths atomic by construction.
type MemRepository struct {
	mu           sync.Mutex
	slots        map[uuid.UUID]*Slot
	slotByKey    map[string]uuid.UUID
	appointments map[uuid.UUID]*Appointment
}

func NewMemRepository() *MemRepository {
	return &MemRepository{
		slots:        make(map[uuid.UUID]*Slot),
		slotByKey:    make(map[string]uuid.UUID),
		appointments: make(map[uuid.UUID]*Appointment),
	}
}

func slotKey(date schedule.Date, displayTime string) string {
	return date.String() + "|" + displayTime
}

func (r *MemRepository) BulkInsertSlots(ctx context.Context, candidates []schedule.Candidate) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, c := range candidates {
		key := slotKey(c.Date, c.DisplayTime())
		if _, exists := r.slotByKey[key]; exists {
			continue
		}
		s := &Slot{
			ID:        uuid.New(),
			Date:      c.Date,
			Time:      c.DisplayTime(),
			Status:    SlotAvailable,
			CreatedAt: time.Now(),
		}
		r.slots[s.ID] = s
		r.slotByKey[key] = s.ID
		inserted++
	}
	return inserted, nil
}

func (r *MemRepository) ListSlots(ctx context.Context, date *schedule.Date) ([]Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Slot
	for _, s := range r.slots {
		if date != nil && *date != s.Date {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date.Before(result[j].Date)
		}
		ti, _ := schedule.ParseDisplay(result[i].Time)
		tj, _ := schedule.ParseDisplay(result[j].Time)
		return ti < tj
	})
	return result, nil
}

func (r *MemRepository) GetSlot(ctx context.Context, id uuid.UUID) (*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MemRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return ErrSlotNotFound
	}
	if s.Status != SlotAvailable {
		return ErrSlotNotDeletable
	}
	delete(r.slots, id)
	delete(r.slotByKey, slotKey(s.Date, s.Time))
	return nil
}

func (r *MemRepository) DeletePastSlots(ctx context.Context, before schedule.Date) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.slots {
		if s.Status == SlotAvailable && s.Date.Before(before) {
			delete(r.slots, id)
			delete(r.slotByKey, slotKey(s.Date, s.Time))
			removed++
		}
	}
	return removed, nil
}

func (r *MemRepository) BookSlot(ctx context.Context, date schedule.Date, displayTime string, na NewAppointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.slotByKey[slotKey(date, displayTime)]
	if !ok {
		return nil, ErrSlotUnavailable
	}
	s := r.slots[id]
	if s.Status != SlotAvailable {
		return nil, ErrSlotUnavailable
	}

	appt := &Appointment{
		ID:          uuid.New(),
		CreatedAt:   time.Now(),
		FullName:    na.FullName,
		Email:       na.Email,
		Phone:       na.Phone,
		ServiceName: na.ServiceName,
		Notes:       na.Notes,
		Date:        date,
		Time:        displayTime,
		Status:      StatusPending,
	}
	r.appointments[appt.ID] = appt

	apptID := appt.ID
	s.Status = SlotBooked
	s.AppointmentID = &apptID

	cp := *appt
	return &cp, nil
}

func (r *MemRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemRepository) ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Appointment
	for _, a := range r.appointments {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Date != nil && *f.Date != a.Date {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[j].Date.Before(result[i].Date)
		}
		return result[j].CreatedAt.Before(result[i].CreatedAt)
	})
	return result, nil
}

func (r *MemRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus, releaseSlot bool) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if a.Status != from {
		return nil, ErrInvalidTransition
	}
	a.Status = to
	if releaseSlot {
		r.releaseSlotLocked(id)
	}
	cp := *a
	return &cp, nil
}

func (r *MemRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	r.releaseSlotLocked(id)
	delete(r.appointments, id)
	return nil
}

func (r *MemRepository) releaseSlotLocked(appointmentID uuid.UUID) {
	for _, s := range r.slots {
		if s.AppointmentID != nil && *s.AppointmentID == appointmentID {
			s.Status = SlotAvailable
			s.AppointmentID = nil
		}
	}
}
