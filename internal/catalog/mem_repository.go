package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemRepository backs demo mode and tests.
type MemRepository struct {
	mu       sync.Mutex
	services map[uuid.UUID]Service
	settings *ClinicSettings
}

func NewMemRepository() *MemRepository {
	return &MemRepository{
		services: make(map[uuid.UUID]Service),
	}
}

func (r *MemRepository) ListServices(ctx context.Context) ([]Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Service, 0, len(r.services))
	for _, svc := range r.services {
		result = append(result, svc)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TitleFr < result[j].TitleFr
	})
	return result, nil
}

func (r *MemRepository) AddService(ctx context.Context, svc Service) (*Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	r.services[svc.ID] = svc
	return &svc, nil
}

func (r *MemRepository) UpdateService(ctx context.Context, svc Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[svc.ID]; !ok {
		return ErrServiceNotFound
	}
	r.services[svc.ID] = svc
	return nil
}

func (r *MemRepository) DeleteService(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[id]; !ok {
		return ErrServiceNotFound
	}
	delete(r.services, id)
	return nil
}

func (r *MemRepository) GetSettings(ctx context.Context) (*ClinicSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settings == nil {
		return nil, ErrSettingsNotFound
	}
	cp := *r.settings
	return &cp, nil
}

func (r *MemRepository) UpdateSettings(ctx context.Context, settings ClinicSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = &settings
	return nil
}
