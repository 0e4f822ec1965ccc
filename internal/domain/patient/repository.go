package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new patient, assigning ID and version when unset.
	Create(ctx context.Context, p *Patient) error

	// GetByID returns a copy of the stored patient. Returns ErrPatientNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// Update replaces the stored record when its version still equals p.Version,
	// then bumps p.Version. Returns ErrVersionConflict otherwise.
	Update(ctx context.Context, p *Patient) error

	// List returns matching patients in creation order.
	List(ctx context.Context, q *ListPatientsQuery) ([]*Patient, error)
}
