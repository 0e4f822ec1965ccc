package history

import (
	"sort"
	"strconv"
)

// Surface is one tracked face of a tooth.
type Surface string

const (
	SurfaceVestibular Surface = "vestibular"
	SurfaceLingual    Surface = "lingual"
	SurfaceDistal     Surface = "distal"
	SurfaceMesial     Surface = "mesial"
	SurfaceOcclusal   Surface = "oclusal"
)

// Surfaces in the order they are reported.
var Surfaces = []Surface{SurfaceVestibular, SurfaceLingual, SurfaceDistal, SurfaceMesial, SurfaceOcclusal}

func (s Surface) IsValid() bool {
	switch s {
	case SurfaceVestibular, SurfaceLingual, SurfaceDistal, SurfaceMesial, SurfaceOcclusal:
		return true
	}
	return false
}

// Tool is the finding applied by the next surface edit. ToolNone disables
// surface edits.
type Tool string

const (
	ToolNone        Tool = "Ninguno"
	ToolCaries      Tool = "Caries"
	ToolSealant     Tool = "Sellante"
	ToolRestoration Tool = "Restauración"
)

var Tools = []Tool{ToolNone, ToolCaries, ToolSealant, ToolRestoration}

func (t Tool) IsValid() bool {
	switch t {
	case ToolNone, ToolCaries, ToolSealant, ToolRestoration:
		return true
	}
	return false
}

// applies reports whether t writes a finding at all.
func (t Tool) applies() bool {
	return t != "" && t != ToolNone
}

// IsValidTooth reports whether n is a permanent tooth in FDI notation.
func IsValidTooth(n string) bool {
	if len(n) != 2 {
		return false
	}
	v, err := strconv.Atoi(n)
	if err != nil {
		return false
	}
	quadrant, position := v/10, v%10
	return quadrant >= 1 && quadrant <= 4 && position >= 1 && position <= 8
}

// Arches returns the tooth numbers of the upper and lower arch in chart
// order, patient right to patient left.
func Arches() (upper, lower []string) {
	for i := 18; i > 10; i-- {
		upper = append(upper, strconv.Itoa(i))
	}
	for i := 21; i < 29; i++ {
		upper = append(upper, strconv.Itoa(i))
	}
	for i := 48; i > 40; i-- {
		lower = append(lower, strconv.Itoa(i))
	}
	for i := 31; i < 39; i++ {
		lower = append(lower, strconv.Itoa(i))
	}
	return upper, lower
}

// ToothState is the typed view of one charted tooth.
type ToothState struct {
	Number   string             `json:"numero"`
	Missing  bool               `json:"missing"`
	Surfaces map[Surface]string `json:"surfaces"`
}

// ToggleSurface applies tool to a tooth surface. With no tool selected it
// does nothing and reports false. A surface already holding the tool's
// finding is cleared; any other value is overwritten.
func (h *ClinicalHistory) ToggleSurface(tooth string, surface Surface, tool Tool) (bool, error) {
	if !IsValidTooth(tooth) {
		return false, ErrInvalidTooth
	}
	if !surface.IsValid() {
		return false, ErrInvalidSurface
	}
	if !tool.IsValid() && tool != "" {
		return false, ErrUnknownTool
	}
	if !tool.applies() {
		return false, nil
	}
	state, err := h.tooth(tooth)
	if err != nil {
		return false, err
	}
	surfaces, ok := state[toothSurfacesKey].(map[string]any)
	if !ok {
		surfaces = map[string]any{}
		state[toothSurfacesKey] = surfaces
	}
	current, _ := surfaces[string(surface)].(string)
	if current == string(tool) {
		surfaces[string(surface)] = ""
	} else {
		surfaces[string(surface)] = string(tool)
	}
	return true, nil
}

// ToggleMissing flips the missing flag of a tooth and returns the new value.
// Surface findings are left as they are.
func (h *ClinicalHistory) ToggleMissing(tooth string) (bool, error) {
	if !IsValidTooth(tooth) {
		return false, ErrInvalidTooth
	}
	state, err := h.tooth(tooth)
	if err != nil {
		return false, err
	}
	missing, _ := state[toothMissingKey].(bool)
	state[toothMissingKey] = !missing
	return !missing, nil
}

// tooth returns the mutable state map of a tooth, creating it with no
// surfaces and missing=false on first use.
func (h *ClinicalHistory) tooth(n string) (map[string]any, error) {
	path := []string{SectionOdontogram, odontogramTeethKey}
	if err := h.walkable(path); err != nil {
		return nil, err
	}
	if h.Sections == nil {
		h.Sections = map[string]any{}
	}
	odonto, ok := h.Sections[SectionOdontogram].(map[string]any)
	if !ok {
		odonto = map[string]any{}
		h.Sections[SectionOdontogram] = odonto
	}
	teeth, ok := odonto[odontogramTeethKey].(map[string]any)
	if !ok {
		teeth = map[string]any{}
		odonto[odontogramTeethKey] = teeth
	}
	switch state := teeth[n].(type) {
	case map[string]any:
		return state, nil
	case nil:
		created := map[string]any{toothSurfacesKey: map[string]any{}, toothMissingKey: false}
		teeth[n] = created
		return created, nil
	default:
		return nil, ErrPathConflict
	}
}

// IsMissing reports whether a tooth is marked missing.
func (h *ClinicalHistory) IsMissing(tooth string) bool {
	return h.GetBool(SectionOdontogram, odontogramTeethKey, tooth, toothMissingKey)
}

// Finding returns the finding recorded on a tooth surface, "" when none.
func (h *ClinicalHistory) Finding(tooth string, surface Surface) string {
	return h.GetString(SectionOdontogram, odontogramTeethKey, tooth, toothSurfacesKey, string(surface))
}

// Teeth returns every charted tooth sorted by tooth number string.
func (h *ClinicalHistory) Teeth() []ToothState {
	teeth, _ := h.Get([]string{SectionOdontogram, odontogramTeethKey}, nil).(map[string]any)
	numbers := make([]string, 0, len(teeth))
	for n := range teeth {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)

	out := make([]ToothState, 0, len(numbers))
	for _, n := range numbers {
		raw, _ := teeth[n].(map[string]any)
		out = append(out, toothState(n, raw))
	}
	return out
}

// Tooth returns the state of one tooth without charting it; a tooth never
// touched reads as present with no findings.
func (h *ClinicalHistory) Tooth(n string) ToothState {
	raw, _ := h.Get([]string{SectionOdontogram, odontogramTeethKey, n}, nil).(map[string]any)
	return toothState(n, raw)
}

func toothState(n string, raw map[string]any) ToothState {
	state := ToothState{Number: n, Surfaces: map[Surface]string{}}
	state.Missing, _ = raw[toothMissingKey].(bool)
	surfaces, _ := raw[toothSurfacesKey].(map[string]any)
	for k, v := range surfaces {
		if finding, ok := v.(string); ok {
			state.Surfaces[Surface(k)] = finding
		}
	}
	return state
}
