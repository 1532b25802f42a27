package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title_fr, title_ar, price, description_fr, description_ar
		FROM services
		ORDER BY title_fr
	`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var result []Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(&svc.ID, &svc.TitleFr, &svc.TitleAr, &svc.Price, &svc.DescriptionFr, &svc.DescriptionAr); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) AddService(ctx context.Context, svc Service) (*Service, error) {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, title_fr, title_ar, price, description_fr, description_ar)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, svc.ID, svc.TitleFr, svc.TitleAr, svc.Price, svc.DescriptionFr, svc.DescriptionAr)
	if err != nil {
		return nil, fmt.Errorf("add service: %w", err)
	}
	return &svc, nil
}

func (r *PgRepository) UpdateService(ctx context.Context, svc Service) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE services
		SET title_fr = $2, title_ar = $3, price = $4, description_fr = $5, description_ar = $6
		WHERE id = $1
	`, svc.ID, svc.TitleFr, svc.TitleAr, svc.Price, svc.DescriptionFr, svc.DescriptionAr)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *PgRepository) DeleteService(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `
		DELETE FROM services
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *PgRepository) GetSettings(ctx context.Context) (*ClinicSettings, error) {
	var s ClinicSettings
	err := r.pool.QueryRow(ctx, `
		SELECT id, clinic_name, phone, email, address, whatsapp
		FROM clinic_settings
		LIMIT 1
	`).Scan(&s.ID, &s.ClinicName, &s.Phone, &s.Email, &s.Address, &s.Whatsapp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

func (r *PgRepository) UpdateSettings(ctx context.Context, settings ClinicSettings) error {
	// Single-row table: upsert on the fixed row.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clinic_settings (id, clinic_name, phone, email, address, whatsapp)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET clinic_name = EXCLUDED.clinic_name,
		    phone = EXCLUDED.phone,
		    email = EXCLUDED.email,
		    address = EXCLUDED.address,
		    whatsapp = EXCLUDED.whatsapp
	`, settings.ID, settings.ClinicName, settings.Phone, settings.Email, settings.Address, settings.Whatsapp)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}
