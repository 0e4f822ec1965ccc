package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const followUpKey = "seguimiento"

// NoteTimeLayout is the timestamp format of follow-up notes.
const NoteTimeLayout = "2006-01-02 15:04"

// FollowUpNote is one evolution note appended during treatment.
type FollowUpNote struct {
	Timestamp    string `json:"fecha_hora"`
	Procedure    string `json:"procedimiento_signos_vitales"`
	Observations string `json:"observaciones"`
}

// ClinicalHistory is the record tree of one patient. Sections holds the
// schema-defined sections as nested maps of string and bool leaves; follow-up
// notes are kept apart because they are an ordered list.
//
// It serialises as a single JSON document with the notes under "seguimiento".
type ClinicalHistory struct {
	Sections map[string]any
	FollowUp []FollowUpNote
}

// New returns an empty history with the defaults a fresh record starts with.
func New() ClinicalHistory {
	return ClinicalHistory{
		Sections: map[string]any{
			SectionGeneralData:         map[string]any{},
			SectionAdministrative:      map[string]any{},
			SectionFamilyHistory:       falseFlags(SectionFamilyHistory),
			SectionPathologicalHistory: map[string]any{},
			SectionLifestyleHistory:    map[string]any{},
			SectionCurrentCondition:    map[string]any{},
			SectionGeneralExam:         map[string]any{},
			SectionExtraoralExam:       map[string]any{},
			SectionTMJExam:             withString(falseFlags(SectionTMJExam), "limitacion_apertura"),
			SectionSoftTissueExam:      map[string]any{},
			SectionOdontogram: map[string]any{
				odontogramTeethKey:        map[string]any{},
				odontogramGeneralNotesKey: "",
			},
			SectionDiagnosis:           map[string]any{},
			SectionTreatmentPlan:       map[string]any{},
			SectionConsent:             withString(falseFlags(SectionConsent), "firma_data_url"),
			SectionDentalHistory:       falseFlags(SectionDentalHistory),
			FieldMedicalHistorySummary: "",
			SectionClinicalRoute:       map[string]any{},
		},
		FollowUp: []FollowUpNote{},
	}
}

func falseFlags(name string) map[string]any {
	m := map[string]any{}
	for _, s := range sections {
		if s.name != name {
			continue
		}
		for _, f := range s.bools {
			m[f] = false
		}
	}
	return m
}

func withString(m map[string]any, key string) map[string]any {
	m[key] = ""
	return m
}

// Get walks path and returns the value found, or def as soon as a key is
// absent or the value reached is an empty mapping.
func (h *ClinicalHistory) Get(path []string, def any) any {
	if len(path) == 0 {
		return def
	}
	var cur any = h.Sections
	for _, key := range path {
		node, ok := cur.(map[string]any)
		if !ok {
			return def
		}
		next, ok := node[key]
		if !ok {
			return def
		}
		cur = next
	}
	if m, ok := cur.(map[string]any); ok && len(m) == 0 {
		return def
	}
	return cur
}

// GetString returns the string leaf at path, or "" when absent.
func (h *ClinicalHistory) GetString(path ...string) string {
	s, _ := h.Get(path, "").(string)
	return s
}

// GetBool returns the bool leaf at path, or false when absent.
func (h *ClinicalHistory) GetBool(path ...string) bool {
	b, _ := h.Get(path, false).(bool)
	return b
}

// Set stores value at path. The path must resolve in the schema and value
// must match the field kind. Missing intermediate mappings are created; an
// intermediate scalar is reported as ErrPathConflict and nothing is written.
func (h *ClinicalHistory) Set(path []string, value any) error {
	kind, err := Lookup(path)
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.Join(path, "."))
	}
	if !kind.accepts(value) {
		return fmt.Errorf("%w: %s expects %s", ErrFieldKind, strings.Join(path, "."), kind)
	}
	return h.set(path, value)
}

// SetString stores a string field.
func (h *ClinicalHistory) SetString(path []string, value string) error {
	return h.Set(path, value)
}

// SetBool stores a boolean field from its form encoding: the literal "true"
// is true, any other text is false.
func (h *ClinicalHistory) SetBool(path []string, raw string) error {
	return h.Set(path, raw == "true")
}

// SetRaw stores a form-encoded value according to the kind the schema
// declares for path.
func (h *ClinicalHistory) SetRaw(path []string, raw string) error {
	kind, err := Lookup(path)
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.Join(path, "."))
	}
	if kind == KindBool {
		return h.SetBool(path, raw)
	}
	return h.SetString(path, raw)
}

func (h *ClinicalHistory) set(path []string, value any) error {
	if err := h.walkable(path[:len(path)-1]); err != nil {
		return err
	}
	if h.Sections == nil {
		h.Sections = map[string]any{}
	}
	node := h.Sections
	for _, key := range path[:len(path)-1] {
		next, ok := node[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[key] = next
		}
		node = next
	}
	node[path[len(path)-1]] = value
	return nil
}

// walkable reports ErrPathConflict when a key along path holds a scalar.
func (h *ClinicalHistory) walkable(path []string) error {
	var cur any = h.Sections
	for i, key := range path {
		node, ok := cur.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPathConflict, strings.Join(path[:i], "."))
		}
		next, ok := node[key]
		if !ok || next == nil {
			return nil
		}
		cur = next
	}
	if _, ok := cur.(map[string]any); !ok {
		return fmt.Errorf("%w: %s", ErrPathConflict, strings.Join(path, "."))
	}
	return nil
}

// AddNote appends a follow-up note stamped with at.
func (h *ClinicalHistory) AddNote(procedure, observations string, at time.Time) FollowUpNote {
	note := FollowUpNote{
		Timestamp:    at.Format(NoteTimeLayout),
		Procedure:    procedure,
		Observations: observations,
	}
	h.FollowUp = append(h.FollowUp, note)
	return note
}

// DeleteNote removes the note at index, keeping the order of the rest.
func (h *ClinicalHistory) DeleteNote(index int) error {
	if index < 0 || index >= len(h.FollowUp) {
		return fmt.Errorf("%w: index %d", ErrNoteNotFound, index)
	}
	h.FollowUp = append(h.FollowUp[:index:index], h.FollowUp[index+1:]...)
	return nil
}

// Clone returns a deep copy sharing no maps or slices with h.
func (h ClinicalHistory) Clone() ClinicalHistory {
	out := ClinicalHistory{FollowUp: make([]FollowUpNote, len(h.FollowUp))}
	copy(out.FollowUp, h.FollowUp)
	if h.Sections != nil {
		out.Sections = cloneMap(h.Sections)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if child, ok := v.(map[string]any); ok {
			out[k] = cloneMap(child)
			continue
		}
		out[k] = v
	}
	return out
}

func (h ClinicalHistory) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(h.Sections)+1)
	for k, v := range h.Sections {
		doc[k] = v
	}
	notes := h.FollowUp
	if notes == nil {
		notes = []FollowUpNote{}
	}
	doc[followUpKey] = notes
	return json.Marshal(doc)
}

func (h *ClinicalHistory) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	h.FollowUp = []FollowUpNote{}
	if notes, ok := raw[followUpKey]; ok {
		if err := json.Unmarshal(notes, &h.FollowUp); err != nil {
			return fmt.Errorf("decoding %s: %w", followUpKey, err)
		}
		delete(raw, followUpKey)
	}
	h.Sections = make(map[string]any, len(raw))
	for k, v := range raw {
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return fmt.Errorf("decoding %s: %w", k, err)
		}
		h.Sections[k] = decoded
	}
	return nil
}
