package patient

import (
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

func draft(t *testing.T) *Patient {
	t.Helper()
	p := New("Ana Torres", 34, "estudiante@odontotess.com", "Juan Pérez", now)
	require.NoError(t, p.History.SetString([]string{history.SectionCurrentCondition, "motivo_consulta"}, "Revisión"))
	return p
}

func TestNew_SeedsHistoryFromRegistration(t *testing.T) {
	p := New("Ana Torres", 34, "estudiante@odontotess.com", "Juan Pérez", now)

	assert.Equal(t, StatusDraft, p.Status)
	assert.Equal(t, "2026-05-20", p.RegisteredOn)
	assert.Equal(t, "Ana Torres", p.History.GetString(history.SectionGeneralData, "nombre_completo"))
	assert.Equal(t, "34", p.History.GetString(history.SectionGeneralData, "edad"))
	assert.Equal(t, "2026-05-20", p.History.GetString(history.SectionGeneralData, "fecha_ingreso"))
	assert.Equal(t, "Juan Pérez", p.History.GetString(history.SectionAdministrative, "nombre_estudiante"))
	assert.Equal(t, "estudiante@odontotess.com", p.History.GetString(history.SectionAdministrative, "matricula_estudiante"))
	assert.Nil(t, p.RejectionNotes)
}

func TestSubmit_RequiresFields(t *testing.T) {
	p := New("Ana Torres", 34, "e@x.com", "E", now)

	assert.Equal(t, []string{"padecimiento_actual.motivo_consulta"}, p.MissingRequiredFields())
	assert.ErrorIs(t, p.Submit(), ErrIncompleteHistory)
	assert.Equal(t, StatusDraft, p.Status)

	require.NoError(t, p.History.SetString([]string{history.SectionCurrentCondition, "motivo_consulta"}, "   "))
	assert.ErrorIs(t, p.Submit(), ErrIncompleteHistory, "blank counts as empty")
}

func TestWorkflow_HappyPath(t *testing.T) {
	p := draft(t)

	require.NoError(t, p.Submit())
	assert.Equal(t, StatusPending, p.Status)

	require.NoError(t, p.Approve("profesor@odontotess.com", "Dra. Ana García", now))
	assert.Equal(t, StatusApproved, p.Status)
	require.NotNil(t, p.ProfessorSignature)
	assert.Equal(t, ProfessorSignatureURL, p.ProfessorSignature.URL)
	assert.Equal(t, now, p.ProfessorSignature.SignedAt)
	assert.False(t, p.IsEditable())
}

func TestWorkflow_RejectThenResubmitClearsObservations(t *testing.T) {
	p := draft(t)
	require.NoError(t, p.Submit())

	assert.ErrorIs(t, p.Reject("  "), ErrObservationsRequired)
	assert.Equal(t, StatusPending, p.Status)

	require.NoError(t, p.Reject("Falta exploración de tejidos blandos"))
	assert.Equal(t, StatusRejected, p.Status)
	require.NotNil(t, p.RejectionNotes)
	assert.Equal(t, "Falta exploración de tejidos blandos", *p.RejectionNotes)
	assert.True(t, p.IsEditable())

	require.NoError(t, p.Submit())
	assert.Equal(t, StatusPending, p.Status)
	assert.Nil(t, p.RejectionNotes)

	require.NoError(t, p.Reject("  Falta ATM\n"))
	require.NotNil(t, p.RejectionNotes)
	assert.Equal(t, "  Falta ATM\n", *p.RejectionNotes)
}

func TestWorkflow_InvalidTransitions(t *testing.T) {
	cases := []struct {
		name   string
		status Status
		act    func(p *Patient) error
	}{
		{"submit pending", StatusPending, func(p *Patient) error { return p.Submit() }},
		{"submit approved", StatusApproved, func(p *Patient) error { return p.Submit() }},
		{"approve draft", StatusDraft, func(p *Patient) error { return p.Approve("p", "P", now) }},
		{"approve rejected", StatusRejected, func(p *Patient) error { return p.Approve("p", "P", now) }},
		{"reject draft", StatusDraft, func(p *Patient) error { return p.Reject("x") }},
		{"reject approved", StatusApproved, func(p *Patient) error { return p.Reject("x") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := draft(t)
			p.Status = tc.status
			assert.ErrorIs(t, tc.act(p), ErrInvalidStatusTransition)
			assert.Equal(t, tc.status, p.Status)
		})
	}
}

func TestClone_IsIndependent(t *testing.T) {
	p := draft(t)
	notes := "obs"
	p.RejectionNotes = &notes

	c := p.Clone()
	*c.RejectionNotes = "changed"
	require.NoError(t, c.History.SetString([]string{history.SectionGeneralData, "sexo"}, "Femenino"))

	assert.Equal(t, "obs", *p.RejectionNotes)
	assert.Equal(t, "", p.History.GetString(history.SectionGeneralData, "sexo"))
}

func TestListPatientsQuery_Matches(t *testing.T) {
	ana := &Patient{OwnerEmail: "ana@x.com", Status: StatusPending}
	anabel := &Patient{OwnerEmail: "anabel@y.com", Status: StatusDraft}
	pending := StatusPending

	q := &ListPatientsQuery{OwnerSearch: "ana"}
	assert.True(t, q.Matches(ana))
	assert.True(t, q.Matches(anabel))

	q = &ListPatientsQuery{OwnerEmail: "ana"}
	assert.False(t, q.Matches(ana), "exact owner does not match substrings")

	q = &ListPatientsQuery{OwnerSearch: "ana", Status: &pending}
	assert.True(t, q.Matches(ana))
	assert.False(t, q.Matches(anabel))

	var none *ListPatientsQuery
	assert.True(t, none.Matches(ana))
}
