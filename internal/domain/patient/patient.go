package patient

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/google/uuid"
)

// Status is the review state of a clinical history.
//
// State transitions possibilities:
//
//	Borrador → Pendiente → Aprobado
//	Pendiente → Rechazado → Pendiente
type Status string

const (
	StatusDraft    Status = "Borrador"
	StatusPending  Status = "Pendiente"
	StatusApproved Status = "Aprobado"
	StatusRejected Status = "Rechazado"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// RegistrationDateLayout formats fecha_registro and fecha_ingreso.
const RegistrationDateLayout = "2006-01-02"

// ProfessorSignatureURL is the signature image stamped on approval.
const ProfessorSignatureURL = "/placeholder.svg"

// Signature records the professor who approved a history.
type Signature struct {
	URL            string    `json:"url"`
	ProfessorEmail string    `json:"profesor_email"`
	ProfessorName  string    `json:"profesor_nombre"`
	SignedAt       time.Time `json:"fecha_firma"`
}

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string `gorm:"column:nombre;type:varchar(200);not null" json:"nombre"`
	Age          int    `gorm:"column:edad;not null" json:"edad"`
	RegisteredOn string `gorm:"column:fecha_registro;type:varchar(10);not null" json:"fecha_registro"`
	Status       Status `gorm:"column:status;type:varchar(20);not null;default:'Borrador';index" json:"status"`
	OwnerEmail   string `gorm:"column:estudiante_email;type:varchar(255);not null;index" json:"estudiante_email"`

	History history.ClinicalHistory `gorm:"column:historia_clinica;type:jsonb;serializer:json" json:"historia_clinica"`

	PatientSignatureURL *string    `gorm:"column:firma_paciente_url;type:text" json:"firma_paciente_url"`
	ProfessorSignature  *Signature `gorm:"column:firma_profesor;type:jsonb;serializer:json" json:"firma_profesor"`
	RejectionNotes      *string    `gorm:"column:observaciones_rechazo;type:text" json:"observaciones_rechazo"`

	// Version guards against lost updates between sessions editing the same record.
	Version int `gorm:"column:version;not null;default:1" json:"version"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

// requiredFields must be non-empty before a history can be submitted.
var requiredFields = [][]string{
	{history.SectionGeneralData, "nombre_completo"},
	{history.SectionGeneralData, "edad"},
	{history.SectionCurrentCondition, "motivo_consulta"},
}

// New builds a draft patient owned by a student with the history seeded from
// the registration data.
func New(name string, age int, ownerEmail, ownerName string, now time.Time) *Patient {
	today := now.Format(RegistrationDateLayout)
	h := history.New()
	// Registration paths are part of the schema; the errors cannot occur.
	_ = h.SetString([]string{history.SectionGeneralData, "nombre_completo"}, name)
	_ = h.SetString([]string{history.SectionGeneralData, "edad"}, strconv.Itoa(age))
	_ = h.SetString([]string{history.SectionGeneralData, "fecha_ingreso"}, today)
	_ = h.SetString([]string{history.SectionAdministrative, "nombre_estudiante"}, ownerName)
	_ = h.SetString([]string{history.SectionAdministrative, "matricula_estudiante"}, ownerEmail)

	return &Patient{
		Name:         name,
		Age:          age,
		RegisteredOn: today,
		Status:       StatusDraft,
		OwnerEmail:   ownerEmail,
		History:      h,
	}
}

func (p *Patient) IsOwnedBy(email string) bool {
	return p.OwnerEmail != "" && strings.EqualFold(p.OwnerEmail, email)
}

// IsEditable reports whether the history may still be changed by its owner.
func (p *Patient) IsEditable() bool {
	return p.Status == StatusDraft || p.Status == StatusRejected
}

// MissingRequiredFields lists the dotted paths of required fields that are
// still empty.
func (p *Patient) MissingRequiredFields() []string {
	var missing []string
	for _, path := range requiredFields {
		if strings.TrimSpace(p.History.GetString(path...)) == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}
	return missing
}

func (p *Patient) CanTransitionTo(newStatus Status) bool {
	allowed := map[Status][]Status{
		StatusDraft:    {StatusPending},
		StatusPending:  {StatusApproved, StatusRejected},
		StatusRejected: {StatusPending},
		StatusApproved: {},
	}

	for _, s := range allowed[p.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// Submit sends the history for review and clears previous observations.
func (p *Patient) Submit() error {
	if !p.CanTransitionTo(StatusPending) {
		return ErrInvalidStatusTransition
	}
	if len(p.MissingRequiredFields()) > 0 {
		return ErrIncompleteHistory
	}
	p.Status = StatusPending
	p.RejectionNotes = nil
	return nil
}

// Approve marks the history approved and stamps the professor signature.
func (p *Patient) Approve(professorEmail, professorName string, at time.Time) error {
	if !p.CanTransitionTo(StatusApproved) {
		return ErrInvalidStatusTransition
	}
	p.Status = StatusApproved
	p.ProfessorSignature = &Signature{
		URL:            ProfessorSignatureURL,
		ProfessorEmail: professorEmail,
		ProfessorName:  professorName,
		SignedAt:       at,
	}
	return nil
}

// Reject returns the history to the student with observations, stored as
// given.
func (p *Patient) Reject(observations string) error {
	if !p.CanTransitionTo(StatusRejected) {
		return ErrInvalidStatusTransition
	}
	if strings.TrimSpace(observations) == "" {
		return ErrObservationsRequired
	}
	p.Status = StatusRejected
	p.RejectionNotes = &observations
	return nil
}

// Clone returns a deep copy of the patient.
func (p *Patient) Clone() *Patient {
	c := *p
	c.History = p.History.Clone()
	if p.PatientSignatureURL != nil {
		v := *p.PatientSignatureURL
		c.PatientSignatureURL = &v
	}
	if p.ProfessorSignature != nil {
		s := *p.ProfessorSignature
		c.ProfessorSignature = &s
	}
	if p.RejectionNotes != nil {
		v := *p.RejectionNotes
		c.RejectionNotes = &v
	}
	return &c
}

type CreatePatientCommand struct {
	Name string
	Age  int
}

// ListPatientsQuery filters patients. Empty fields are ignored and the rest
// are combined with AND.
type ListPatientsQuery struct {
	OwnerEmail  string // exact owner match
	OwnerSearch string // substring of the owner email
	Status      *Status
}

func (q *ListPatientsQuery) Matches(p *Patient) bool {
	if q == nil {
		return true
	}
	if q.OwnerEmail != "" && p.OwnerEmail != q.OwnerEmail {
		return false
	}
	if q.OwnerSearch != "" && !strings.Contains(p.OwnerEmail, q.OwnerSearch) {
		return false
	}
	if q.Status != nil && p.Status != *q.Status {
		return false
	}
	return true
}
