package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ToolBox remembers the odontogram tool each signed-in user has selected.
type ToolBox struct {
	mu    sync.RWMutex
	tools map[string]history.Tool
}

func NewToolBox() *ToolBox {
	return &ToolBox{tools: make(map[string]history.Tool)}
}

func (b *ToolBox) SetActiveTool(user string, tool history.Tool) error {
	if !tool.IsValid() {
		return history.ErrUnknownTool
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if tool == history.ToolNone {
		delete(b.tools, key(user))
		return nil
	}
	b.tools[key(user)] = tool
	return nil
}

// ActiveTool defaults to Ninguno.
func (b *ToolBox) ActiveTool(user string) history.Tool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if t, ok := b.tools[key(user)]; ok {
		return t
	}
	return history.ToolNone
}

// Forget drops a user's selection, e.g. on sign-out.
func (b *ToolBox) Forget(user string) {
	b.mu.Lock()
	delete(b.tools, key(user))
	b.mu.Unlock()
}

func key(user string) string {
	return strings.ToLower(user)
}

type OdontogramService struct {
	repo     patient.Repository
	tools    *ToolBox
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewOdontogramService(repo patient.Repository, tools *ToolBox, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *OdontogramService {
	return &OdontogramService{repo: repo, tools: tools, auditSvc: auditSvc, metrics: m, log: log}
}

func (s *OdontogramService) SetActiveTool(caller Caller, tool history.Tool) error {
	return s.tools.SetActiveTool(caller.Email, tool)
}

func (s *OdontogramService) ActiveTool(caller Caller) history.Tool {
	return s.tools.ActiveTool(caller.Email)
}

func (s *OdontogramService) Forget(caller Caller) {
	s.tools.Forget(caller.Email)
}

// ToggleSurface applies the caller's active tool to a tooth surface. With no
// tool selected nothing is written and the current state is returned.
func (s *OdontogramService) ToggleSurface(ctx context.Context, caller Caller, id uuid.UUID, tooth string, surface history.Surface) (history.ToothState, error) {
	ctx, span := startSpan(ctx, "OdontogramService.ToggleSurface", caller)
	defer span.End()
	span.SetAttributes(attribute.String("tooth", tooth), attribute.String("surface", string(surface)))

	p, err := loadForEdit(ctx, s.repo, caller, id)
	if err != nil {
		recordError(span, err)
		return history.ToothState{}, err
	}
	if p.History.IsMissing(tooth) {
		return history.ToothState{}, patient.ErrToothMissing
	}

	tool := s.tools.ActiveTool(caller.Email)
	changed, err := p.History.ToggleSurface(tooth, surface, tool)
	if err != nil {
		return history.ToothState{}, err
	}
	if !changed {
		return p.History.Tooth(tooth), nil
	}
	if err := s.repo.Update(ctx, p); err != nil {
		recordError(span, err)
		return history.ToothState{}, fmt.Errorf("saving odontogram: %w", err)
	}

	s.metrics.OdontogramEdited("surface")
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionUpdate,
		ResourceType: resourcePatient,
		ResourceID:   id.String(),
		Changes:      auditChanges(map[string]any{"tooth": tooth, "surface": surface, "tool": tool}),
	})
	return p.History.Tooth(tooth), nil
}

func (s *OdontogramService) ToggleMissing(ctx context.Context, caller Caller, id uuid.UUID, tooth string) (history.ToothState, error) {
	ctx, span := startSpan(ctx, "OdontogramService.ToggleMissing", caller)
	defer span.End()
	span.SetAttributes(attribute.String("tooth", tooth))

	p, err := loadForEdit(ctx, s.repo, caller, id)
	if err != nil {
		recordError(span, err)
		return history.ToothState{}, err
	}
	missing, err := p.History.ToggleMissing(tooth)
	if err != nil {
		return history.ToothState{}, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		recordError(span, err)
		return history.ToothState{}, fmt.Errorf("saving odontogram: %w", err)
	}

	s.metrics.OdontogramEdited("missing")
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionUpdate,
		ResourceType: resourcePatient,
		ResourceID:   id.String(),
		Changes:      auditChanges(map[string]any{"tooth": tooth, "missing": missing}),
	})
	return p.History.Tooth(tooth), nil
}
