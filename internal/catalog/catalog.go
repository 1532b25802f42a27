// Package catalog holds the clinic's reference data: the service list the
// booking flow offers and the clinic contact settings. Plain CRUD with no
// invariants; the booking core copies the service name at booking time
// rather than referencing rows here.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrServiceNotFound  = errors.New("service not found")
	ErrSettingsNotFound = errors.New("clinic settings not found")
)

// Service is one treatment offered by the clinic, with French and Arabic
// labels matching the two site languages.
type Service struct {
	ID            uuid.UUID
	TitleFr       string
	TitleAr       string
	Price         string
	DescriptionFr string
	DescriptionAr string
}

// ClinicSettings is the single row of clinic contact details.
type ClinicSettings struct {
	ID         uuid.UUID
	ClinicName string
	Phone      string
	Email      string
	Address    string
	Whatsapp   string
}

type Repository interface {
	ListServices(ctx context.Context) ([]Service, error)
	AddService(ctx context.Context, svc Service) (*Service, error)
	UpdateService(ctx context.Context, svc Service) error
	DeleteService(ctx context.Context, id uuid.UUID) error

	GetSettings(ctx context.Context) (*ClinicSettings, error)
	UpdateSettings(ctx context.Context, settings ClinicSettings) error
}
