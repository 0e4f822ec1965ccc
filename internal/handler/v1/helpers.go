package v1

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, history.ErrNoteNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, patient.ErrVersionConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "VERSION_CONFLICT"})

	case errors.Is(err, patient.ErrRecordLocked):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "RECORD_LOCKED"})

	case errors.Is(err, patient.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "INVALID_TRANSITION"})

	case errors.Is(err, patient.ErrToothMissing):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "TOOTH_MISSING"})

	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, patient.ErrPatientAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, history.ErrEmptyPath),
		errors.Is(err, history.ErrUnknownField),
		errors.Is(err, history.ErrFieldKind),
		errors.Is(err, history.ErrPathConflict),
		errors.Is(err, history.ErrInvalidTooth),
		errors.Is(err, history.ErrInvalidSurface),
		errors.Is(err, history.ErrUnknownTool):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func respondAuthError(c *gin.Context, err error) {
	msg := "invalid token"
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		msg = "token expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		msg = "token revoked"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: msg, Code: "UNAUTHENTICATED"})
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// parsePath accepts a dotted field path such as "datos_generales.sexo".
func parsePath(raw string) []string {
	raw = strings.Trim(raw, ".")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ".")
}

// attachment builds a Content-Disposition value; non-ASCII names are
// encoded per RFC 2231.
func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
