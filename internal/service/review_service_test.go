package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadiness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := student("ana@x.com")

	p, err := env.patients.CreatePatient(ctx, owner, &patient.CreatePatientCommand{Name: "Ana", Age: 20})
	require.NoError(t, err)

	r, err := env.review.Readiness(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.False(t, r.CanSubmit)
	assert.Equal(t, []string{"padecimiento_actual.motivo_consulta"}, r.Missing)

	_, err = env.histories.UpdateField(ctx, owner, p.ID, FieldUpdate{Path: []string{history.SectionCurrentCondition, "motivo_consulta"}, Value: "Dolor"})
	require.NoError(t, err)
	r, err = env.review.Readiness(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.True(t, r.CanSubmit)
	assert.Empty(t, r.Missing)

	r, err = env.review.Readiness(ctx, professor, p.ID)
	require.NoError(t, err)
	assert.False(t, r.CanSubmit, "only the owner can submit")
	assert.Empty(t, r.Missing)
}

func TestSubmit_IncompleteReportsFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := student("ana@x.com")
	p, err := env.patients.CreatePatient(ctx, owner, &patient.CreatePatientCommand{Name: "Ana", Age: 20})
	require.NoError(t, err)

	_, err = env.review.Submit(ctx, owner, p.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"padecimiento_actual.motivo_consulta"}, verr.Fields)

	stored, _ := env.repo.GetByID(ctx, p.ID)
	assert.Equal(t, patient.StatusDraft, stored.Status)
}

func TestReviewWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := student("ana@x.com")
	p := env.createReady(t, owner, "Ana Torres")

	_, err := env.review.Submit(ctx, student("luis@x.com"), p.ID)
	assert.ErrorIs(t, err, ErrForbidden, "only the owner submits")
	_, err = env.review.Approve(ctx, owner, p.ID)
	assert.ErrorIs(t, err, ErrForbidden, "students cannot approve")
	_, err = env.review.Approve(ctx, professor, p.ID)
	assert.ErrorIs(t, err, patient.ErrInvalidStatusTransition, "draft cannot be approved")

	got, err := env.review.Submit(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, patient.StatusPending, got.Status)
	_, err = env.review.Submit(ctx, owner, p.ID)
	assert.ErrorIs(t, err, patient.ErrInvalidStatusTransition)

	_, err = env.review.Reject(ctx, professor, p.ID, "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	got, err = env.review.Reject(ctx, professor, p.ID, "Falta odontograma")
	require.NoError(t, err)
	assert.Equal(t, patient.StatusRejected, got.Status)
	require.NotNil(t, got.RejectionNotes)
	assert.Equal(t, "Falta odontograma", *got.RejectionNotes)

	got, err = env.review.Submit(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RejectionNotes)

	got, err = env.review.Approve(ctx, professor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, patient.StatusApproved, got.Status)
	require.NotNil(t, got.ProfessorSignature)
	assert.Equal(t, patient.ProfessorSignatureURL, got.ProfessorSignature.URL)
	assert.Equal(t, professor.Email, got.ProfessorSignature.ProfessorEmail)
	assert.Equal(t, professor.Name, got.ProfessorSignature.ProfessorName)
	assert.Equal(t, fixedNow, got.ProfessorSignature.SignedAt)

	_, err = env.review.Reject(ctx, professor, p.ID, "tarde")
	assert.ErrorIs(t, err, patient.ErrInvalidStatusTransition, "approved is terminal")

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ReviewTransitionsTotal.WithLabelValues("approve", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.ReviewTransitionsTotal.WithLabelValues("submit", "ok")))
}

func TestReview_AuditsTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := student("ana@x.com")
	p := env.createReady(t, owner, "Ana Torres")

	_, err := env.review.Submit(ctx, owner, p.ID)
	require.NoError(t, err)
	_, err = env.review.Approve(ctx, professor, p.ID)
	require.NoError(t, err)

	env.audit.Shutdown()

	var actions []domain.AuditAction
	for _, e := range env.auditRepo.Entries() {
		if e.ResourceID == p.ID.String() {
			actions = append(actions, e.Action)
		}
	}
	assert.Equal(t, []domain.AuditAction{domain.ActionCreate, domain.ActionUpdate, domain.ActionSubmit, domain.ActionApprove}, actions)
}

func TestReview_RejectAuditChangesAreValidJSON(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := student("ana@x.com")
	p := env.createReady(t, owner, "Ana Torres")

	_, err := env.review.Submit(ctx, owner, p.ID)
	require.NoError(t, err)
	observations := "  \"ATM\" pendiente \x01 \x7f\n"
	rejected, err := env.review.Reject(ctx, professor, p.ID, observations)
	require.NoError(t, err)
	assert.Equal(t, observations, *rejected.RejectionNotes)

	env.audit.Shutdown()

	var found bool
	for _, e := range env.auditRepo.Entries() {
		if e.Changes == "" {
			continue
		}
		assert.True(t, json.Valid([]byte(e.Changes)), e.Changes)
		if e.Action != domain.ActionReject {
			continue
		}
		var changes map[string]string
		require.NoError(t, json.Unmarshal([]byte(e.Changes), &changes))
		assert.Equal(t, observations, changes["observaciones"])
		found = true
	}
	assert.True(t, found)
}

func TestReview_StaleWriteIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := student("ana@x.com")
	p := env.createReady(t, owner, "Ana Torres")

	stale, err := env.repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	_, err = env.review.Submit(ctx, owner, p.ID)
	require.NoError(t, err)

	require.NoError(t, stale.Submit())
	assert.ErrorIs(t, env.repo.Update(ctx, stale), patient.ErrVersionConflict)
}
