package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const minPasswordLength = 8

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type AuthService struct {
	userRepo   UserRepository
	jwtManager *auth.JWTManager
	auditSvc   *AuditService
	metrics    *metrics.Collector
	log        *zap.Logger
	cost       int
}

func NewAuthService(userRepo UserRepository, jwtManager *auth.JWTManager, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		auditSvc:   auditSvc,
		metrics:    m,
		log:        log,
		cost:       bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

type SignUpCommand struct {
	Email    string
	Password string
	FullName string
	Role     domain.Role
}

func (s *AuthService) SignUp(ctx context.Context, cmd *SignUpCommand) (*domain.User, error) {
	if err := validateSignUp(cmd); err != nil {
		s.metrics.AuthAttempt("sign_up", "invalid")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(cmd.FullName),
		Role:         cmd.Role,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			s.metrics.AuthAttempt("sign_up", "duplicate")
			return nil, err
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.metrics.AuthAttempt("sign_up", "ok")
	s.log.Info("user signed up",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
	)
	return u, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password, ip string) (*domain.TokenPair, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, fmt.Errorf("loading user: %w", err)
		}
		// Hash anyway so response time does not reveal whether the email exists.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), s.cost)
		s.metrics.AuthAttempt("sign_in", "invalid")
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.AuthAttempt("sign_in", "invalid")
		s.log.Warn("failed sign-in attempt",
			zap.String("email", email),
			zap.String("ip", ip),
		)
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.jwtManager.GenerateTokenPair(claimsFor(user))
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, nil, fmt.Errorf("generating tokens: %w", err)
	}

	now := time.Now().UTC()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to record last login", zap.Error(err))
	}
	user.LastLoginAt = &now

	s.metrics.AuthAttempt("sign_in", "ok")
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       Caller{UserID: user.ID, Email: user.Email, Name: user.FullName, Role: user.Role, IP: ip},
		Action:       domain.ActionLogin,
		ResourceType: "session",
		ResourceID:   user.ID.String(),
	})
	s.log.Info("user signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", ip),
	)

	return pair, user, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued for the still-existing user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.metrics.AuthAttempt("refresh", "invalid")
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		s.metrics.AuthAttempt("refresh", "invalid")
		return nil, ErrInvalidCredentials
	}

	s.jwtManager.Revoke(claims)
	s.metrics.AuthAttempt("refresh", "ok")
	return s.jwtManager.GenerateTokenPair(claimsFor(user))
}

// SignOut revokes the session's access token and, when given, its refresh
// token.
func (s *AuthService) SignOut(ctx context.Context, caller Caller, access *domain.Claims, refreshToken string) {
	if access == nil {
		return
	}
	s.jwtManager.Revoke(access)
	if refreshToken != "" {
		if rc, err := s.jwtManager.ValidateRefreshToken(refreshToken); err == nil && rc.UserID == access.UserID {
			s.jwtManager.Revoke(rc)
		}
	}

	s.metrics.AuthAttempt("sign_out", "ok")
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Caller:       caller,
		Action:       domain.ActionLogout,
		ResourceType: "session",
		ResourceID:   caller.UserID.String(),
	})
}

func (s *AuthService) Me(ctx context.Context, caller Caller) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, caller.UserID)
}

func claimsFor(u *domain.User) *domain.Claims {
	return &domain.Claims{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     u.Role,
		FullName: u.FullName,
	}
}

func validateSignUp(cmd *SignUpCommand) error {
	var errs []string

	email := strings.TrimSpace(cmd.Email)
	if email == "" {
		errs = append(errs, "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, "email is invalid")
	}
	if strings.TrimSpace(cmd.Password) == "" {
		errs = append(errs, "password is required")
	} else if len(cmd.Password) < minPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if strings.TrimSpace(cmd.FullName) == "" {
		errs = append(errs, "full_name is required")
	}
	if !cmd.Role.IsValid() {
		errs = append(errs, "role must be student or professor")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
