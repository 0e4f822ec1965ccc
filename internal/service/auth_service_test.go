package service

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, *auth.JWTManager) {
	t.Helper()
	log := zap.NewNop()
	audit := NewAuditService(memory.NewAuditRepository(), log, nil, 10)
	t.Cleanup(audit.Shutdown)
	jwtm := auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-test-secret-test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "odontoflow-test",
	})
	svc := NewAuthService(memory.NewUserRepository(), jwtm, audit, nil, log).WithHashCost(bcrypt.MinCost)
	return svc, jwtm
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, jwtm := newAuthService(t)
	ctx := context.Background()

	u, err := svc.SignUp(ctx, &SignUpCommand{
		Email:    " Estudiante@OdontoTess.com ",
		Password: "password123",
		FullName: "Juan Pérez",
		Role:     domain.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, "estudiante@odontotess.com", u.Email)
	assert.NotEqual(t, "password123", u.PasswordHash)

	pair, user, err := svc.SignIn(ctx, "ESTUDIANTE@odontotess.com", "password123", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	require.NotNil(t, user.LastLoginAt)

	claims, err := jwtm.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, claims.Role)
	assert.Equal(t, "Juan Pérez", claims.FullName)
}

func TestSignUp_Validation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, &SignUpCommand{Email: "", Password: "", FullName: " ", Role: "admin"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)

	_, err = svc.SignUp(ctx, &SignUpCommand{Email: "no-es-correo", Password: "short", FullName: "X", Role: domain.RoleProfessor})
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	cmd := &SignUpCommand{Email: "p@odontotess.com", Password: "password123", FullName: "P", Role: domain.RoleProfessor}
	_, err = svc.SignUp(ctx, cmd)
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, &SignUpCommand{Email: "a@x.com", Password: "password123", FullName: "A", Role: domain.RoleStudent})
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, "a@x.com", "wrong-password", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.SignIn(ctx, "nadie@x.com", "password123", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesAndSignOutRevokes(t *testing.T) {
	svc, jwtm := newAuthService(t)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, &SignUpCommand{Email: "a@x.com", Password: "password123", FullName: "A", Role: domain.RoleStudent})
	require.NoError(t, err)
	pair, _, err := svc.SignIn(ctx, "a@x.com", "password123", "")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "refresh tokens are single use")

	access, err := jwtm.ValidateAccessToken(next.AccessToken)
	require.NoError(t, err)
	caller := CallerFromClaims(access, "", "")

	me, err := svc.Me(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", me.Email)

	svc.SignOut(ctx, caller, access, next.RefreshToken)
	_, err = jwtm.ValidateAccessToken(next.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
	_, err = svc.Refresh(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
