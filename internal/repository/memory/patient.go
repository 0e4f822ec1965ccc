// Package memory holds process-local repositories. They are the default
// backend and the one used by tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/google/uuid"
)

// PatientRepository keeps patients in insertion order and only ever hands
// out deep copies.
type PatientRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*patient.Patient
	order []uuid.UUID
	now   func() time.Time
}

var _ patient.Repository = (*PatientRepository)(nil)

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{
		byID: make(map[uuid.UUID]*patient.Patient),
		now:  time.Now,
	}
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, exists := r.byID[p.ID]; exists {
		return patient.ErrPatientAlreadyExists
	}
	now := r.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Version == 0 {
		p.Version = 1
	}

	r.byID[p.ID] = p.Clone()
	r.order = append(r.order, p.ID)
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return p.Clone(), nil
}

func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[p.ID]
	if !ok {
		return patient.ErrPatientNotFound
	}
	if stored.Version != p.Version {
		return patient.ErrVersionConflict
	}

	p.Version++
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = r.now().UTC()
	r.byID[p.ID] = p.Clone()
	return nil
}

func (r *PatientRepository) List(ctx context.Context, q *patient.ListPatientsQuery) ([]*patient.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*patient.Patient, 0, len(r.order))
	for _, id := range r.order {
		p := r.byID[id]
		if q.Matches(p) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}
