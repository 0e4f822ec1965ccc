package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewService moves clinical histories through
// Borrador → Pendiente → Aprobado | Rechazado.
type ReviewService struct {
	repo     patient.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time
}

func NewReviewService(repo patient.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *ReviewService {
	return &ReviewService{repo: repo, auditSvc: auditSvc, metrics: m, log: log, now: time.Now}
}

// Readiness lists the required fields still blocking submission.
type Readiness struct {
	Status    patient.Status `json:"status"`
	CanSubmit bool           `json:"can_submit"`
	Missing   []string       `json:"missing"`
}

func (s *ReviewService) Readiness(ctx context.Context, caller Caller, id uuid.UUID) (*Readiness, error) {
	ctx, span := startSpan(ctx, "ReviewService.Readiness", caller)
	defer span.End()

	p, err := loadForRead(ctx, s.repo, caller, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	missing := p.MissingRequiredFields()
	if missing == nil {
		missing = []string{}
	}
	return &Readiness{
		Status:    p.Status,
		CanSubmit: caller.IsStudent() && p.IsOwnedBy(caller.Email) && p.IsEditable() && len(missing) == 0,
		Missing:   missing,
	}, nil
}

func (s *ReviewService) Submit(ctx context.Context, caller Caller, id uuid.UUID) (*patient.Patient, error) {
	ctx, span := startSpan(ctx, "ReviewService.Submit", caller)
	defer span.End()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if !caller.IsStudent() || !p.IsOwnedBy(caller.Email) {
		return nil, ErrForbidden
	}
	if err := p.Submit(); err != nil {
		s.metrics.ReviewTransition("submit", outcome(err))
		if errors.Is(err, patient.ErrIncompleteHistory) {
			return nil, &ValidationError{Fields: p.MissingRequiredFields()}
		}
		return nil, err
	}
	return s.save(ctx, caller, p, "submit", domain.ActionSubmit, "")
}

func (s *ReviewService) Approve(ctx context.Context, caller Caller, id uuid.UUID) (*patient.Patient, error) {
	ctx, span := startSpan(ctx, "ReviewService.Approve", caller)
	defer span.End()

	if !caller.IsProfessor() {
		return nil, ErrForbidden
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if err := p.Approve(caller.Email, caller.Name, s.now().UTC()); err != nil {
		s.metrics.ReviewTransition("approve", outcome(err))
		return nil, err
	}
	return s.save(ctx, caller, p, "approve", domain.ActionApprove, "")
}

func (s *ReviewService) Reject(ctx context.Context, caller Caller, id uuid.UUID, observations string) (*patient.Patient, error) {
	ctx, span := startSpan(ctx, "ReviewService.Reject", caller)
	defer span.End()

	if !caller.IsProfessor() {
		return nil, ErrForbidden
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if err := p.Reject(observations); err != nil {
		s.metrics.ReviewTransition("reject", outcome(err))
		if errors.Is(err, patient.ErrObservationsRequired) {
			return nil, validationError("observations are required")
		}
		return nil, err
	}
	return s.save(ctx, caller, p, "reject", domain.ActionReject, auditChanges(map[string]any{"observaciones": *p.RejectionNotes}))
}

func (s *ReviewService) save(ctx context.Context, caller Caller, p *patient.Patient, action string, audit domain.AuditAction, changes string) (*patient.Patient, error) {
	if err := s.repo.Update(ctx, p); err != nil {
		s.metrics.ReviewTransition(action, outcome(err))
		return nil, fmt.Errorf("saving %s: %w", action, err)
	}

	s.metrics.ReviewTransition(action, "ok")
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       audit,
		ResourceType: resourcePatient,
		ResourceID:   p.ID.String(),
		Changes:      changes,
	})
	s.log.Info("clinical history "+action,
		zap.String("patient_id", p.ID.String()),
		zap.String("status", string(p.Status)),
		zap.String("by", caller.Email),
	)
	return p, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, patient.ErrInvalidStatusTransition):
		return "invalid_transition"
	case errors.Is(err, patient.ErrIncompleteHistory), errors.Is(err, patient.ErrObservationsRequired):
		return "invalid_input"
	case errors.Is(err, patient.ErrVersionConflict):
		return "conflict"
	default:
		return "error"
	}
}
