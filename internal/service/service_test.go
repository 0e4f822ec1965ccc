package service

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 5, 20, 9, 15, 0, 0, time.UTC)

type testEnv struct {
	repo       *memory.PatientRepository
	auditRepo  *memory.AuditRepository
	audit      *AuditService
	metrics    *metrics.Collector
	patients   *PatientService
	histories  *HistoryService
	odontogram *OdontogramService
	review     *ReviewService
	exports    *ExportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	m := metrics.NewCollector("odontoflow_test")
	repo := memory.NewPatientRepository()
	auditRepo := memory.NewAuditRepository()
	audit := NewAuditService(auditRepo, log, m, 100)
	t.Cleanup(audit.Shutdown)

	env := &testEnv{
		repo:       repo,
		auditRepo:  auditRepo,
		audit:      audit,
		metrics:    m,
		patients:   NewPatientService(repo, audit, m, log),
		histories:  NewHistoryService(repo, audit, m, log),
		odontogram: NewOdontogramService(repo, NewToolBox(), audit, m, log),
		review:     NewReviewService(repo, audit, m, log),
		exports:    NewExportService(repo, audit, m, log),
	}
	env.patients.now = func() time.Time { return fixedNow }
	env.histories.now = func() time.Time { return fixedNow }
	env.review.now = func() time.Time { return fixedNow }
	return env
}

func student(email string) Caller {
	return Caller{UserID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(email)), Email: email, Name: "Estudiante " + email, Role: domain.RoleStudent, IP: "127.0.0.1"}
}

var professor = Caller{
	UserID: uuid.NewSHA1(uuid.NameSpaceURL, []byte("profesor@odontotess.com")),
	Email:  "profesor@odontotess.com",
	Name:   "Dra. Ana García",
	Role:   domain.RoleProfessor,
	IP:     "127.0.0.1",
}

// createReady creates a patient owned by caller with every required field set.
func (e *testEnv) createReady(t *testing.T, caller Caller, name string) *patient.Patient {
	t.Helper()
	ctx := context.Background()
	p, err := e.patients.CreatePatient(ctx, caller, &patient.CreatePatientCommand{Name: name, Age: 30})
	require.NoError(t, err)
	p, err = e.histories.UpdateField(ctx, caller, p.ID, FieldUpdate{
		Path:  []string{history.SectionCurrentCondition, "motivo_consulta"},
		Value: "Dolor en molar",
	})
	require.NoError(t, err)
	return p
}
