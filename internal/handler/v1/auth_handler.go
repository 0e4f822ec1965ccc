package v1

import (
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	auth       *service.AuthService
	odontogram *service.OdontogramService
}

// NewAuthHandler wires sign-out to also drop the user's odontogram tool.
func NewAuthHandler(auth *service.AuthService, odontogram *service.OdontogramService) *AuthHandler {
	return &AuthHandler{auth: auth, odontogram: odontogram}
}

type signUpRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Role     domain.Role `json:"role"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type signOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// userResponse is the public view of a user; the password hash never leaves
// the service layer.
type userResponse struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	Role        domain.Role `json:"role"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
}

type sessionResponse struct {
	Tokens *domain.TokenPair `json:"tokens"`
	User   userResponse      `json:"user"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
	}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.auth.SignUp(c.Request.Context(), &service.SignUpCommand{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toUserResponse(u))
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, u, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, sessionResponse{Tokens: pair, User: toUserResponse(u)})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, pair)
}

// SignOut accepts an empty body; a refresh token, when sent, is revoked too.
func (h *AuthHandler) SignOut(c *gin.Context) {
	var req signOutRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	caller := callerFrom(c)
	h.auth.SignOut(c.Request.Context(), caller, claimsFrom(c), req.RefreshToken)
	if h.odontogram != nil {
		h.odontogram.Forget(caller)
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.auth.Me(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toUserResponse(u))
}
