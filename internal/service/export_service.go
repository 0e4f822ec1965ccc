package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/export"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Document is a rendered clinical history ready to be downloaded.
type Document struct {
	Filename    string
	ContentType string
	Body        string
}

type ExportService struct {
	repo     patient.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewExportService(repo patient.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *ExportService {
	return &ExportService{repo: repo, auditSvc: auditSvc, metrics: m, log: log}
}

// Export renders the history of any patient the caller may read.
func (s *ExportService) Export(ctx context.Context, caller Caller, id uuid.UUID) (*Document, error) {
	ctx, span := startSpan(ctx, "ExportService.Export", caller)
	defer span.End()

	p, err := loadForRead(ctx, s.repo, caller, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	body, err := export.Render(p)
	if err != nil {
		recordError(span, err)
		s.log.Error("failed to render history", zap.String("patient_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("rendering history: %w", err)
	}

	s.metrics.Exported()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionExport,
		ResourceType: resourcePatient,
		ResourceID:   id.String(),
	})

	return &Document{
		Filename:    export.Filename(p),
		ContentType: export.ContentType,
		Body:        body,
	}, nil
}
