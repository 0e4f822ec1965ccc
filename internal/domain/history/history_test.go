package history

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SeedsDefaults(t *testing.T) {
	h := New()

	assert.False(t, h.GetBool(SectionFamilyHistory, "diabetes"))
	assert.Equal(t, false, h.Get([]string{SectionTMJExam, "dolor"}, "x"))
	assert.Equal(t, "", h.Get([]string{SectionTMJExam, "limitacion_apertura"}, "x"))
	assert.Equal(t, false, h.Get([]string{SectionConsent, "aceptado"}, "x"))
	assert.Empty(t, h.Teeth())
	assert.Empty(t, h.FollowUp)
}

func TestGet_ReturnsDefaultForAbsentOrEmpty(t *testing.T) {
	h := New()

	assert.Equal(t, "N/A", h.Get([]string{SectionGeneralData, "nombre_completo"}, "N/A"))
	assert.Equal(t, "N/A", h.Get([]string{SectionGeneralData}, "N/A"), "empty section")
	assert.Equal(t, "N/A", h.Get([]string{"no_such_section", "x", "y"}, "N/A"))
	assert.Equal(t, "N/A", h.Get(nil, "N/A"))
}

func TestSet_RoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		path  []string
		value any
	}{
		{"string leaf", []string{SectionGeneralData, "nombre_completo"}, "Ana Torres"},
		{"bool leaf", []string{SectionDentalHistory, "protesis_dental"}, true},
		{"top level", []string{FieldMedicalHistorySummary}, "Paciente sano"},
		{"tooth missing", []string{SectionOdontogram, "teeth", "36", "missing"}, true},
		{"tooth surface", []string{SectionOdontogram, "teeth", "16", "surfaces", "oclusal"}, "Caries"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New()
			require.NoError(t, h.Set(tc.path, tc.value))
			assert.Equal(t, tc.value, h.Get(tc.path, nil))
		})
	}
}

func TestSet_CreatesMissingIntermediates(t *testing.T) {
	h := ClinicalHistory{}

	require.NoError(t, h.SetString([]string{SectionDiagnosis, "clinico"}, "Caries dental"))
	assert.Equal(t, "Caries dental", h.GetString(SectionDiagnosis, "clinico"))
}

func TestSet_RejectsUnknownPathsAndKinds(t *testing.T) {
	h := New()

	err := h.Set([]string{SectionGeneralData, "color_favorito"}, "azul")
	assert.ErrorIs(t, err, ErrUnknownField)

	err = h.Set([]string{SectionGeneralData, "edad"}, true)
	assert.ErrorIs(t, err, ErrFieldKind)

	err = h.Set([]string{SectionOdontogram, "teeth", "19", "missing"}, true)
	assert.ErrorIs(t, err, ErrInvalidTooth)

	err = h.Set([]string{SectionOdontogram, "teeth", "11", "surfaces", "palatina"}, "Caries")
	assert.ErrorIs(t, err, ErrInvalidSurface)

	assert.ErrorIs(t, h.Set(nil, "x"), ErrEmptyPath)
}

func TestSet_RejectsScalarIntermediate(t *testing.T) {
	h := New()
	h.Sections[SectionDiagnosis] = "texto libre"

	err := h.SetString([]string{SectionDiagnosis, "clinico"}, "Caries")
	assert.ErrorIs(t, err, ErrPathConflict)
	assert.Equal(t, "texto libre", h.Sections[SectionDiagnosis], "nothing written")
}

func TestSetBool_DecodesFormLiteral(t *testing.T) {
	h := New()
	path := []string{SectionConsent, "aceptado"}

	require.NoError(t, h.SetBool(path, "true"))
	assert.True(t, h.GetBool(path...))

	require.NoError(t, h.SetBool(path, "false"))
	assert.False(t, h.GetBool(path...))

	require.NoError(t, h.SetBool(path, "yes"))
	assert.False(t, h.GetBool(path...))
}

func TestSetRaw_UsesSchemaKind(t *testing.T) {
	h := New()

	require.NoError(t, h.SetRaw([]string{SectionTMJExam, "ruido"}, "true"))
	require.NoError(t, h.SetRaw([]string{SectionTMJExam, "limitacion_apertura"}, "true"))

	assert.Equal(t, true, h.Get([]string{SectionTMJExam, "ruido"}, nil))
	assert.Equal(t, "true", h.Get([]string{SectionTMJExam, "limitacion_apertura"}, nil))
}

func TestNotes_AddAndDeleteKeepOrder(t *testing.T) {
	h := New()
	at := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)

	h.AddNote("Profilaxis", "", at)
	h.AddNote("Resina 16", "Sin complicaciones", at.Add(time.Hour))
	h.AddNote("", "Control", at.Add(2*time.Hour))

	require.NoError(t, h.DeleteNote(1))
	require.Len(t, h.FollowUp, 2)
	assert.Equal(t, "Profilaxis", h.FollowUp[0].Procedure)
	assert.Equal(t, "2026-03-04 09:30", h.FollowUp[0].Timestamp)
	assert.Equal(t, "Control", h.FollowUp[1].Observations)

	assert.ErrorIs(t, h.DeleteNote(5), ErrNoteNotFound)
	assert.ErrorIs(t, h.DeleteNote(-1), ErrNoteNotFound)
}

func TestClone_IsDeep(t *testing.T) {
	h := New()
	require.NoError(t, h.SetString([]string{SectionGeneralData, "nombre_completo"}, "Ana"))
	h.AddNote("a", "b", time.Now())

	c := h.Clone()
	require.NoError(t, c.SetString([]string{SectionGeneralData, "nombre_completo"}, "Otra"))
	c.FollowUp[0].Procedure = "cambiado"

	assert.Equal(t, "Ana", h.GetString(SectionGeneralData, "nombre_completo"))
	assert.Equal(t, "a", h.FollowUp[0].Procedure)
}

func TestJSON_RoundTripKeepsNotesUnderSeguimiento(t *testing.T) {
	h := New()
	require.NoError(t, h.SetString([]string{SectionCurrentCondition, "motivo_consulta"}, "Dolor"))
	_, err := h.ToggleMissing("36")
	require.NoError(t, err)
	h.AddNote("Limpieza", "", time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC))

	data, err := json.Marshal(h)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "seguimiento")
	assert.Contains(t, doc, SectionOdontogram)

	var back ClinicalHistory
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "Dolor", back.GetString(SectionCurrentCondition, "motivo_consulta"))
	assert.True(t, back.IsMissing("36"))
	require.Len(t, back.FollowUp, 1)
	assert.Equal(t, "Limpieza", back.FollowUp[0].Procedure)
}
