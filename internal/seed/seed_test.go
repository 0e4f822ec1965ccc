package seed

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	patients := memory.NewPatientRepository()
	opts := Options{Now: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC), HashCost: bcrypt.MinCost}

	res, err := Run(ctx, users, patients, zap.NewNop(), opts)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 2, Patients: 2}, res)

	prof, err := users.GetByEmail(ctx, ProfessorEmail)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProfessor, prof.Role)
	assert.Equal(t, ID(ProfessorEmail), prof.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(prof.PasswordHash), []byte(Password)))

	all, err := patients.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	ana, carlos := all[0], all[1]
	assert.Equal(t, "Ana Torres", ana.Name)
	assert.Equal(t, patient.StatusDraft, ana.Status)
	assert.Equal(t, "2026-05-20", ana.RegisteredOn)
	assert.Equal(t, "Caries", ana.History.Finding("16", history.SurfaceOcclusal))
	assert.True(t, ana.History.IsMissing("36"))

	assert.Equal(t, "Carlos Ruiz", carlos.Name)
	assert.Equal(t, patient.StatusPending, carlos.Status)
	assert.Equal(t, StudentEmail, carlos.OwnerEmail)
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	patients := memory.NewPatientRepository()
	opts := Options{HashCost: bcrypt.MinCost}

	_, err := Run(ctx, users, patients, zap.NewNop(), opts)
	require.NoError(t, err)
	res, err := Run(ctx, users, patients, zap.NewNop(), opts)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	all, err := patients.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
