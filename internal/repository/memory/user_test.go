package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	u := &domain.User{Email: "profesor@odontotess.com", FullName: "Dra. Ana García", Role: domain.RoleProfessor}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.ID)

	dup := &domain.User{Email: "Profesor@Odontotess.com", Role: domain.RoleStudent}
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrEmailTaken)

	got, err := repo.GetByEmail(ctx, "PROFESOR@odontotess.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	at := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastLogin(ctx, u.ID, at))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.Equal(t, at, *got.LastLoginAt)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = repo.GetByEmail(ctx, "nadie@odontotess.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAuditRepository_Append(t *testing.T) {
	repo := NewAuditRepository()
	require.NoError(t, repo.Create(context.Background(), &domain.AuditLog{Action: domain.ActionRead, ResourceType: "patient"}))

	entries := repo.Entries()
	require.Len(t, entries, 1)
	assert.NotEqual(t, uuid.Nil, entries[0].ID)
	assert.False(t, entries[0].OccurredAt.IsZero())
}
