package v1

import (
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/service"
	"github.com/gin-gonic/gin"
)

// WorkflowHandler covers the odontogram tool and the review transitions.
type WorkflowHandler struct {
	odontogram *service.OdontogramService
	review     *service.ReviewService
}

func NewWorkflowHandler(odontogram *service.OdontogramService, review *service.ReviewService) *WorkflowHandler {
	return &WorkflowHandler{odontogram: odontogram, review: review}
}

type toolRequest struct {
	Tool history.Tool `json:"tool" binding:"required"`
}

type toolResponse struct {
	Tool history.Tool `json:"tool"`
}

type rejectRequest struct {
	Observations string `json:"observations"`
}

func (h *WorkflowHandler) SetTool(c *gin.Context) {
	var req toolRequest
	if !bindJSON(c, &req) {
		return
	}
	caller := callerFrom(c)
	if err := h.odontogram.SetActiveTool(caller, req.Tool); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toolResponse{Tool: h.odontogram.ActiveTool(caller)})
}

func (h *WorkflowHandler) GetTool(c *gin.Context) {
	respondOK(c, toolResponse{Tool: h.odontogram.ActiveTool(callerFrom(c))})
}

func (h *WorkflowHandler) ToggleSurface(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	state, err := h.odontogram.ToggleSurface(c.Request.Context(), callerFrom(c), id,
		c.Param("tooth"), history.Surface(c.Param("surface")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, state)
}

func (h *WorkflowHandler) ToggleMissing(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	state, err := h.odontogram.ToggleMissing(c.Request.Context(), callerFrom(c), id, c.Param("tooth"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, state)
}

func (h *WorkflowHandler) Readiness(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	r, err := h.review.Readiness(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, r)
}

func (h *WorkflowHandler) Submit(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.review.Submit(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *WorkflowHandler) Approve(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.review.Approve(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *WorkflowHandler) Reject(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req rejectRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.review.Reject(c.Request.Context(), callerFrom(c), id, req.Observations)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}
