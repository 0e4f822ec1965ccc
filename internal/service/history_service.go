package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// HistoryService edits the clinical history form of a patient.
type HistoryService struct {
	repo     patient.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time
}

func NewHistoryService(repo patient.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *HistoryService {
	return &HistoryService{repo: repo, auditSvc: auditSvc, metrics: m, log: log, now: time.Now}
}

// FieldUpdate sets one history field. Kind is optional; when given it must
// match the schema. Value is a string or a bool; a string sent to a boolean
// field is decoded as the form literal "true".
type FieldUpdate struct {
	Path  []string
	Kind  history.Kind
	Value any
}

func (s *HistoryService) UpdateField(ctx context.Context, caller Caller, id uuid.UUID, u FieldUpdate) (*patient.Patient, error) {
	ctx, span := startSpan(ctx, "HistoryService.UpdateField", caller)
	defer span.End()
	span.SetAttributes(attribute.String("history.path", strings.Join(u.Path, ".")))

	p, err := loadForEdit(ctx, s.repo, caller, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if err := applyFieldUpdate(&p.History, u); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("saving history field: %w", err)
	}

	s.metrics.HistoryEdited("field")
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionUpdate,
		ResourceType: resourcePatient,
		ResourceID:   id.String(),
		Changes:      auditChanges(map[string]any{"path": strings.Join(u.Path, ".")}),
	})
	return p, nil
}

// GetField reads one history field, returning the kind's zero value when it
// was never filled in.
func (s *HistoryService) GetField(ctx context.Context, caller Caller, id uuid.UUID, path []string) (any, history.Kind, error) {
	ctx, span := startSpan(ctx, "HistoryService.GetField", caller)
	defer span.End()

	kind, err := history.Lookup(path)
	if err != nil {
		return nil, "", err
	}
	p, err := loadForRead(ctx, s.repo, caller, id)
	if err != nil {
		recordError(span, err)
		return nil, "", err
	}

	var def any = ""
	if kind == history.KindBool {
		def = false
	}
	return p.History.Get(path, def), kind, nil
}

func (s *HistoryService) AddNote(ctx context.Context, caller Caller, id uuid.UUID, procedure, observations string) (history.FollowUpNote, error) {
	ctx, span := startSpan(ctx, "HistoryService.AddNote", caller)
	defer span.End()

	procedure, observations = strings.TrimSpace(procedure), strings.TrimSpace(observations)
	if procedure == "" && observations == "" {
		return history.FollowUpNote{}, validationError("procedimiento_signos_vitales or observaciones is required")
	}

	p, err := loadForEdit(ctx, s.repo, caller, id)
	if err != nil {
		recordError(span, err)
		return history.FollowUpNote{}, err
	}
	note := p.History.AddNote(procedure, observations, s.now())
	if err := s.repo.Update(ctx, p); err != nil {
		recordError(span, err)
		return history.FollowUpNote{}, fmt.Errorf("saving note: %w", err)
	}

	s.metrics.HistoryEdited("note_add")
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionUpdate,
		ResourceType: resourcePatient,
		ResourceID:   id.String(),
		Changes:      auditChanges(map[string]any{"seguimiento": "add"}),
	})
	return note, nil
}

func (s *HistoryService) DeleteNote(ctx context.Context, caller Caller, id uuid.UUID, index int) error {
	ctx, span := startSpan(ctx, "HistoryService.DeleteNote", caller)
	defer span.End()

	p, err := loadForEdit(ctx, s.repo, caller, id)
	if err != nil {
		recordError(span, err)
		return err
	}
	if err := p.History.DeleteNote(index); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		recordError(span, err)
		return fmt.Errorf("deleting note: %w", err)
	}

	s.metrics.HistoryEdited("note_delete")
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionUpdate,
		ResourceType: resourcePatient,
		ResourceID:   id.String(),
		Changes:      auditChanges(map[string]any{"seguimiento": "delete", "index": index}),
	})
	return nil
}

func applyFieldUpdate(h *history.ClinicalHistory, u FieldUpdate) error {
	kind, err := history.Lookup(u.Path)
	if err != nil {
		return err
	}
	if u.Kind != "" && u.Kind != kind {
		return history.ErrFieldKind
	}

	switch v := u.Value.(type) {
	case string:
		if kind == history.KindBool {
			return h.SetBool(u.Path, v)
		}
		return h.SetString(u.Path, v)
	case bool:
		return h.Set(u.Path, v)
	default:
		return validationError("value must be a string or a boolean")
	}
}
