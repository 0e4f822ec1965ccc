package service

import (
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/google/uuid"
)

// Caller is the signed-in user on whose behalf an operation runs.
type Caller struct {
	UserID    uuid.UUID
	Email     string
	Name      string
	Role      domain.Role
	IP        string
	RequestID string
}

func CallerFromClaims(c *domain.Claims, ip, requestID string) Caller {
	return Caller{
		UserID:    c.UserID,
		Email:     c.Email,
		Name:      c.FullName,
		Role:      c.Role,
		IP:        ip,
		RequestID: requestID,
	}
}

func (c Caller) IsStudent() bool   { return c.Role == domain.RoleStudent }
func (c Caller) IsProfessor() bool { return c.Role == domain.RoleProfessor }
