// Package postgres implements the repositories on gorm for deployments that
// want the registry to outlive the process.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository struct {
	db *gorm.DB
}

var _ patient.Repository = (*PatientRepository)(nil)

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Version == 0 {
		p.Version = 1
	}

	err := r.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return patient.ErrPatientAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("inserting patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading patient: %w", err)
	}
	return &p, nil
}

// Update writes every column in one statement guarded by the version the
// caller read.
func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	next := *p
	next.Version = p.Version + 1

	res := r.db.WithContext(ctx).
		Model(&next).
		Where("version = ?", p.Version).
		Select("*").
		Omit("id", "created_at").
		Updates(&next)
	if res.Error != nil {
		return fmt.Errorf("updating patient: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&patient.Patient{}).Where("id = ?", p.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("checking patient: %w", err)
		}
		if count == 0 {
			return patient.ErrPatientNotFound
		}
		return patient.ErrVersionConflict
	}

	p.Version = next.Version
	p.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *PatientRepository) List(ctx context.Context, q *patient.ListPatientsQuery) ([]*patient.Patient, error) {
	tx := r.db.WithContext(ctx).Model(&patient.Patient{})
	if q != nil {
		if q.OwnerEmail != "" {
			tx = tx.Where("estudiante_email = ?", q.OwnerEmail)
		}
		if q.OwnerSearch != "" {
			tx = tx.Where("strpos(estudiante_email, ?) > 0", q.OwnerSearch)
		}
		if q.Status != nil {
			tx = tx.Where("status = ?", *q.Status)
		}
	}

	var out []*patient.Patient
	if err := tx.Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	return out, nil
}
