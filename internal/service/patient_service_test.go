package service

import (
	"context"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePatient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s := student("estudiante@odontotess.com")

	p, err := env.patients.CreatePatient(ctx, s, &patient.CreatePatientCommand{Name: "  Ana Torres ", Age: 34})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "Ana Torres", p.Name)
	assert.Equal(t, patient.StatusDraft, p.Status)
	assert.Equal(t, "2026-05-20", p.RegisteredOn)
	assert.Equal(t, s.Email, p.OwnerEmail)
	assert.Equal(t, s.Name, p.History.GetString(history.SectionAdministrative, "nombre_estudiante"))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.PatientsCreatedTotal))
}

func TestCreatePatient_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.patients.CreatePatient(ctx, professor, &patient.CreatePatientCommand{Name: "Ana", Age: 30})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.patients.CreatePatient(ctx, student("a@x.com"), &patient.CreatePatientCommand{Name: " ", Age: 0})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	all, _ := env.repo.List(ctx, nil)
	assert.Empty(t, all)
}

func TestGetPatient_Ownership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := student("ana@x.com")
	p := env.createReady(t, owner, "Ana Torres")

	_, err := env.patients.GetPatient(ctx, owner, p.ID)
	assert.NoError(t, err)

	_, err = env.patients.GetPatient(ctx, professor, p.ID)
	assert.NoError(t, err)

	_, err = env.patients.GetPatient(ctx, student("luis@x.com"), p.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.patients.GetPatient(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)
}

func TestListForOwner_AllStatusesInCreationOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := student("ana@x.com")

	first := env.createReady(t, ana, "Uno")
	env.createReady(t, student("luis@x.com"), "Otro")
	env.createReady(t, ana, "Dos")
	_, err := env.review.Submit(ctx, ana, first.ID)
	require.NoError(t, err)

	out, err := env.patients.ListForOwner(ctx, ana)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Uno", out[0].Name)
	assert.Equal(t, patient.StatusPending, out[0].Status)
	assert.Equal(t, "Dos", out[1].Name)
}

func TestListForReviewer_SubstringAndStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana, anabel, luis := student("ana@x.com"), student("anabel@y.com"), student("luis@x.com")

	a := env.createReady(t, ana, "A")
	env.createReady(t, anabel, "B")
	l := env.createReady(t, luis, "L")
	_, err := env.review.Submit(ctx, ana, a.ID)
	require.NoError(t, err)
	_, err = env.review.Submit(ctx, luis, l.ID)
	require.NoError(t, err)

	out, err := env.patients.ListForReviewer(ctx, professor, ReviewerFilter{Student: "ana"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, patientNames(out))

	pending := patient.StatusPending
	out, err = env.patients.ListForReviewer(ctx, professor, ReviewerFilter{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "L"}, patientNames(out))

	out, err = env.patients.ListForReviewer(ctx, professor, ReviewerFilter{Student: "ana", Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, patientNames(out))

	_, err = env.patients.ListForReviewer(ctx, ana, ReviewerFilter{})
	assert.ErrorIs(t, err, ErrForbidden)

	bogus := patient.Status("Archivado")
	_, err = env.patients.ListForReviewer(ctx, professor, ReviewerFilter{Status: &bogus})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStudentEmails_SortedUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createReady(t, student("luis@x.com"), "1")
	env.createReady(t, student("ana@x.com"), "2")
	env.createReady(t, student("luis@x.com"), "3")

	emails, err := env.patients.StudentEmails(ctx, professor)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@x.com", "luis@x.com"}, emails)

	_, err = env.patients.StudentEmails(ctx, student("ana@x.com"))
	assert.ErrorIs(t, err, ErrForbidden)
}

func patientNames(ps []*patient.Patient) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}
