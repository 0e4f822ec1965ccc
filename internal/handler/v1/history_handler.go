package v1

import (
	"net/http"
	"strconv"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/service"
	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	histories *service.HistoryService
	catalog   history.Catalog
}

func NewHistoryHandler(histories *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{histories: histories, catalog: history.NewCatalog()}
}

type fieldRequest struct {
	Path  []string     `json:"path" binding:"required"`
	Kind  history.Kind `json:"kind"`
	Value any          `json:"value"`
}

type fieldResponse struct {
	Path  []string     `json:"path"`
	Kind  history.Kind `json:"kind"`
	Value any          `json:"value"`
}

type noteRequest struct {
	Procedure    string `json:"procedimiento_signos_vitales"`
	Observations string `json:"observaciones"`
}

// GetField reads ?path=section.field.
func (h *HistoryHandler) GetField(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	path := parsePath(c.Query("path"))

	value, kind, err := h.histories.GetField(c.Request.Context(), callerFrom(c), id, path)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, fieldResponse{Path: path, Kind: kind, Value: value})
}

func (h *HistoryHandler) UpdateField(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req fieldRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.histories.UpdateField(c.Request.Context(), callerFrom(c), id, service.FieldUpdate{
		Path:  req.Path,
		Kind:  req.Kind,
		Value: req.Value,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *HistoryHandler) AddNote(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}

	note, err := h.histories.AddNote(c.Request.Context(), callerFrom(c), id, req.Procedure, req.Observations)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, note)
}

func (h *HistoryHandler) DeleteNote(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid index: must be an integer")
		return
	}

	if err := h.histories.DeleteNote(c.Request.Context(), callerFrom(c), id, index); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Catalog lists the form's option lists and field schema.
func (h *HistoryHandler) Catalog(c *gin.Context) {
	respondOK(c, h.catalog)
}
