package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/service"
	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	patients *service.PatientService
	exports  *service.ExportService
}

func NewPatientHandler(patients *service.PatientService, exports *service.ExportService) *PatientHandler {
	return &PatientHandler{patients: patients, exports: exports}
}

type createPatientRequest struct {
	Name string `json:"nombre"`
	Age  int    `json:"edad"`
}

type listResponse struct {
	Items []*patient.Patient `json:"items"`
	Count int                `json:"count"`
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.patients.CreatePatient(c.Request.Context(), callerFrom(c), &patient.CreatePatientCommand{
		Name: req.Name,
		Age:  req.Age,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

// List returns the student's own patients, or for professors every patient
// filtered by ?student_search= and ?status=.
func (h *PatientHandler) List(c *gin.Context) {
	caller := callerFrom(c)

	var (
		out []*patient.Patient
		err error
	)
	if caller.IsProfessor() {
		f := service.ReviewerFilter{Student: c.Query("student_search")}
		if raw := c.Query("status"); raw != "" {
			status := patient.Status(raw)
			f.Status = &status
		}
		out, err = h.patients.ListForReviewer(c.Request.Context(), caller, f)
	} else {
		out, err = h.patients.ListForOwner(c.Request.Context(), caller)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if out == nil {
		out = []*patient.Patient{}
	}
	respondOK(c, listResponse{Items: out, Count: len(out)})
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.patients.GetPatient(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) Students(c *gin.Context) {
	emails, err := h.patients.StudentEmails(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, emails)
}

// Export serves the rendered history as a download.
func (h *PatientHandler) Export(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	doc, err := h.exports.Export(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment(doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, []byte(doc.Body))
}
