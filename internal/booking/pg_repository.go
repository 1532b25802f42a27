package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasdental/clinic-booking/internal/schedule"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	var date time.Time
	var apptID *uuid.UUID

	err := row.Scan(
		&s.ID,
		&date,
		&s.Time,
		&s.Status,
		&apptID,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	s.Date = schedule.DateOf(date)
	s.AppointmentID = apptID
	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var date time.Time

	err := row.Scan(
		&a.ID,
		&a.CreatedAt,
		&a.FullName,
		&a.Email,
		&a.Phone,
		&a.ServiceName,
		&a.Notes,
		&date,
		&a.Time,
		&a.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Date = schedule.DateOf(date)
	return &a, nil
}

const slotColumns = `id, slot_date, slot_time, status, appointment_id, created_at`

const appointmentColumns = `id, created_at, full_name, email, phone, service_name, notes, appointment_date, appointment_time, status`

// Interface methods

func (r *PgRepository) BulkInsertSlots(ctx context.Context, candidates []schedule.Candidate) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, c := range candidates {
		// The unique index on (slot_date, slot_time) makes re-running
		// generation over an overlapping range a no-op for existing rows.
		ct, err := tx.Exec(ctx, `
			INSERT INTO slots (id, slot_date, slot_time, time_sort, status, created_at)
			VALUES ($1, $2, $3, $4, 'Available', now())
			ON CONFLICT (slot_date, slot_time) DO NOTHING
		`, uuid.New(), c.Date.Time(), c.DisplayTime(), int(c.Time))
		if err != nil {
			return 0, fmt.Errorf("insert slot %s %s: %w", c.Date, c.DisplayTime(), err)
		}
		inserted += int(ct.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit bulk insert: %w", err)
	}
	return inserted, nil
}

func (r *PgRepository) ListSlots(ctx context.Context, date *schedule.Date) ([]Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		ORDER BY slot_date, time_sort
	`
	args := []any{}
	if date != nil {
		query = `
			SELECT ` + slotColumns + `
			FROM slots
			WHERE slot_date = $1
			ORDER BY time_sort
		`
		args = append(args, date.Time())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) GetSlot(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `
		DELETE FROM slots
		WHERE id = $1 AND status = 'Available'
	`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	// Either the slot is gone or it is not Available; look to tell which.
	if _, err := r.GetSlot(ctx, id); err != nil {
		return err
	}
	return ErrSlotNotDeletable
}

func (r *PgRepository) DeletePastSlots(ctx context.Context, before schedule.Date) (int, error) {
	ct, err := r.pool.Exec(ctx, `
		DELETE FROM slots
		WHERE slot_date < $1 AND status = 'Available'
	`, before.Time())
	if err != nil {
		return 0, fmt.Errorf("delete past slots: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

// BookSlot runs the whole claim in one transaction: the row lock taken by
// SELECT ... FOR UPDATE serializes concurrent attempts on the same
// (date, time) while leaving other rows untouched, and the partial unique
// index on active appointments backstops the invariant.
func (r *PgRepository) BookSlot(ctx context.Context, date schedule.Date, displayTime string, na NewAppointment) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking: %w", err)
	}
	defer tx.Rollback(ctx)

	var slotID uuid.UUID
	var status SlotStatus
	err = tx.QueryRow(ctx, `
		SELECT id, status
		FROM slots
		WHERE slot_date = $1 AND slot_time = $2
		FOR UPDATE
	`, date.Time(), displayTime).Scan(&slotID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("lock slot: %w", err)
	}
	if status != SlotAvailable {
		return nil, ErrSlotUnavailable
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO appointments (id, created_at, full_name, email, phone, service_name, notes, appointment_date, appointment_time, status)
		VALUES ($1, now(), $2, $3, $4, $5, $6, $7, $8, 'Pending')
		RETURNING `+appointmentColumns+`
	`, uuid.New(), na.FullName, na.Email, na.Phone, na.ServiceName, na.Notes, date.Time(), displayTime)

	appt, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE slots
		SET status = 'Booked', appointment_id = $2
		WHERE id = $1
	`, slotID, appt.ID)
	if err != nil {
		return nil, fmt.Errorf("mark slot booked: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking: %w", err)
	}
	return appt, nil
}

func (r *PgRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE ($1 = '' OR status = $1)
		  AND ($2::date IS NULL OR appointment_date = $2)
		ORDER BY appointment_date DESC, created_at DESC
	`
	var date *time.Time
	if f.Date != nil {
		t := f.Date.Time()
		date = &t
	}

	rows, err := r.pool.Query(ctx, query, string(f.Status), date)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus, releaseSlot bool) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)

	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Distinguish a missing row from a concurrent status change.
			if _, getErr := r.GetAppointment(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	if releaseSlot {
		if err := releaseSlotTx(ctx, tx, appt.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return appt, nil
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin appointment delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := releaseSlotTx(ctx, tx, id); err != nil {
		return err
	}

	ct, err := tx.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit appointment delete: %w", err)
	}
	return nil
}

// releaseSlotTx frees the slot owned by the appointment, inside the
// caller's transaction so the slot never points at a cancelled or deleted
// appointment outside it.
func releaseSlotTx(ctx context.Context, tx pgx.Tx, appointmentID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE slots
		SET status = 'Available', appointment_id = NULL
		WHERE appointment_id = $1
	`, appointmentID)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	return nil
}
