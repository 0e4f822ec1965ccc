package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/dmehra2102/prod-golang-projects/odontoflow/internal/service")

const resourcePatient = "patient"

type PatientService struct {
	repo     patient.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time
}

func NewPatientService(repo patient.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *PatientService {
	return &PatientService{
		repo:     repo,
		auditSvc: auditSvc,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// ReviewerFilter narrows the professor's list. Student is matched as a
// substring of the owner email.
type ReviewerFilter struct {
	Student string
	Status  *patient.Status
}

func (s *PatientService) CreatePatient(ctx context.Context, caller Caller, cmd *patient.CreatePatientCommand) (*patient.Patient, error) {
	ctx, span := startSpan(ctx, "PatientService.CreatePatient", caller)
	defer span.End()

	if !caller.IsStudent() {
		return nil, ErrForbidden
	}
	if err := validateCreateCommand(cmd); err != nil {
		return nil, err
	}

	p := patient.New(strings.TrimSpace(cmd.Name), cmd.Age, caller.Email, caller.Name, s.now())
	if err := s.repo.Create(ctx, p); err != nil {
		recordError(span, err)
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, fmt.Errorf("creating patient: %w", err)
	}
	span.SetAttributes(attribute.String("patient.id", p.ID.String()))

	s.metrics.PatientCreated()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionCreate,
		ResourceType: resourcePatient,
		ResourceID:   p.ID.String(),
	})

	s.log.Info("patient created",
		zap.String("patient_id", p.ID.String()),
		zap.String("owner", caller.Email),
	)

	return p, nil
}

func (s *PatientService) GetPatient(ctx context.Context, caller Caller, id uuid.UUID) (*patient.Patient, error) {
	ctx, span := startSpan(ctx, "PatientService.GetPatient", caller)
	defer span.End()

	p, err := loadForRead(ctx, s.repo, caller, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionRead,
		ResourceType: resourcePatient,
		ResourceID:   id.String(),
	})

	return p, nil
}

// ListForOwner returns the caller's own patients in creation order.
func (s *PatientService) ListForOwner(ctx context.Context, caller Caller) ([]*patient.Patient, error) {
	ctx, span := startSpan(ctx, "PatientService.ListForOwner", caller)
	defer span.End()

	out, err := s.repo.List(ctx, &patient.ListPatientsQuery{OwnerEmail: caller.Email})
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("listing own patients: %w", err)
	}
	return out, nil
}

func (s *PatientService) ListForReviewer(ctx context.Context, caller Caller, f ReviewerFilter) ([]*patient.Patient, error) {
	ctx, span := startSpan(ctx, "PatientService.ListForReviewer", caller)
	defer span.End()

	if !caller.IsProfessor() {
		return nil, ErrForbidden
	}
	if f.Status != nil && !f.Status.IsValid() {
		return nil, validationError("status is invalid")
	}

	out, err := s.repo.List(ctx, &patient.ListPatientsQuery{
		OwnerSearch: strings.TrimSpace(f.Student),
		Status:      f.Status,
	})
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("listing patients for review: %w", err)
	}
	return out, nil
}

// StudentEmails lists every owner email, sorted and without duplicates.
func (s *PatientService) StudentEmails(ctx context.Context, caller Caller) ([]string, error) {
	ctx, span := startSpan(ctx, "PatientService.StudentEmails", caller)
	defer span.End()

	if !caller.IsProfessor() {
		return nil, ErrForbidden
	}

	all, err := s.repo.List(ctx, nil)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("listing patients: %w", err)
	}

	seen := make(map[string]struct{}, len(all))
	emails := make([]string, 0, len(all))
	for _, p := range all {
		if _, ok := seen[p.OwnerEmail]; ok || p.OwnerEmail == "" {
			continue
		}
		seen[p.OwnerEmail] = struct{}{}
		emails = append(emails, p.OwnerEmail)
	}
	sort.Strings(emails)
	return emails, nil
}

func validateCreateCommand(cmd *patient.CreatePatientCommand) error {
	if cmd == nil {
		return validationError("nombre is required", "edad must be positive")
	}

	var errs []string
	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "nombre is required")
	}
	if cmd.Age <= 0 {
		errs = append(errs, "edad must be positive")
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// loadForRead enforces that students only see their own patients.
func loadForRead(ctx context.Context, repo patient.Repository, caller Caller, id uuid.UUID) (*patient.Patient, error) {
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case caller.IsProfessor():
	case caller.IsStudent() && p.IsOwnedBy(caller.Email):
	default:
		return nil, ErrForbidden
	}
	return p, nil
}

// loadForEdit returns a patient the caller may modify: the owning student,
// while the history is a draft or was rejected.
func loadForEdit(ctx context.Context, repo patient.Repository, caller Caller, id uuid.UUID) (*patient.Patient, error) {
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsStudent() || !p.IsOwnedBy(caller.Email) {
		return nil, ErrForbidden
	}
	if !p.IsEditable() {
		return nil, patient.ErrRecordLocked
	}
	return p, nil
}

func startSpan(ctx context.Context, name string, caller Caller) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("user.id", caller.UserID.String()),
		attribute.String("user.role", string(caller.Role)),
	))
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
