package history

import "strings"

// Kind is the value type stored at a leaf of the history tree.
type Kind string

const (
	KindString Kind = "string"
	KindBool   Kind = "bool"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindString, KindBool:
		return true
	}
	return false
}

func (k Kind) accepts(v any) bool {
	switch v.(type) {
	case string:
		return k == KindString
	case bool:
		return k == KindBool
	}
	return false
}

// Section names of a clinical history.
const (
	SectionGeneralData         = "datos_generales"
	SectionAdministrative      = "datos_administrativos"
	SectionFamilyHistory       = "antecedentes_heredo_familiares"
	SectionPathologicalHistory = "antecedentes_personales_patologicos"
	SectionLifestyleHistory    = "antecedentes_personales_no_patologicos"
	SectionCurrentCondition    = "padecimiento_actual"
	SectionGeneralExam         = "exploracion_clinica_general"
	SectionDentalHistory       = "antecedentes_dentales"
	SectionExtraoralExam       = "exploracion_fisica_extraoral"
	SectionTMJExam             = "articulacion_temporomandibular"
	SectionSoftTissueExam      = "exploracion_tejidos_blandos"
	SectionOdontogram          = "odontograma"
	SectionDiagnosis           = "diagnostico"
	SectionTreatmentPlan       = "plan_tratamiento"
	SectionClinicalRoute       = "ruta_clinica"
	SectionConsent             = "firma_consentimiento"
	FieldMedicalHistorySummary = "resumen_historia_medica"
	odontogramTeethKey         = "teeth"
	odontogramGeneralNotesKey  = "general_notes"
	toothMissingKey            = "missing"
	toothSurfacesKey           = "surfaces"
)

type section struct {
	name    string
	strings []string
	bools   []string
}

// sections is the closed schema. Odontogram teeth are keyed dynamically and
// resolved separately in Lookup.
var sections = []section{
	{name: SectionGeneralData, strings: []string{
		"nombre_completo", "edad", "sexo", "fecha_nacimiento", "estado_civil", "escolaridad",
		"ocupacion", "direccion", "telefono", "correo", "fecha_ingreso", "responsable_paciente",
	}},
	{name: SectionAdministrative, strings: []string{
		"matricula_estudiante", "nombre_estudiante", "profesor_responsable",
	}},
	{name: SectionFamilyHistory,
		bools:   []string{"diabetes", "hipertension", "cancer", "tuberculosis", "enfermedades_mentales"},
		strings: []string{"otros"},
	},
	{name: SectionPathologicalHistory, strings: []string{
		"hospitalizaciones", "cirugias", "alergias", "medicamentos_actuales", "enfermedades_actuales", "vacunas_recientes",
	}},
	{name: SectionLifestyleHistory, strings: []string{
		"higiene_bucal", "frecuencia_cepillado", "uso_hilo_enjuague", "consumo_tabaco", "consumo_alcohol", "consumo_drogas", "dieta",
	}},
	{name: SectionCurrentCondition, strings: []string{
		"motivo_consulta", "descripcion_problema", "evolucion", "factores_asociados",
	}},
	{name: SectionGeneralExam, strings: []string{
		"frecuencia_cardiaca", "presion_arterial", "temperatura", "saturacion", "peso", "talla", "estado_general",
	}},
	{name: SectionDentalHistory,
		strings: []string{"primera_vez_consulta", "motivo_ultima_consulta", "experiencia_negativa", "tipo_protesis"},
		bools:   []string{"golpeado_dientes", "rechina_dientes", "dolor_chasquido_atm", "protesis_dental"},
	},
	{name: SectionExtraoralExam, strings: []string{"cabeza", "cuello", "ganglios_linfaticos"}},
	{name: SectionTMJExam,
		bools:   []string{"dolor", "ruido", "dificultad_abrir_cerrar", "cansancio_muscular"},
		strings: []string{"limitacion_apertura"},
	},
	{name: SectionSoftTissueExam, strings: []string{
		"labios", "carrillos", "encia", "vestibulo", "paladar", "orofaringe", "region_retromolar",
		"piso_boca", "frenillos", "lengua", "glandulas_salivales", "resumen_diagnostico_presuncion_bucal",
	}},
	{name: SectionOdontogram, strings: []string{odontogramGeneralNotesKey}},
	{name: SectionDiagnosis, strings: []string{"clinico", "cie_10", "diferencial", "pronostico"}},
	{name: SectionTreatmentPlan, strings: []string{"fases", "procedimientos", "frecuencia_citas", "materiales"}},
	{name: SectionClinicalRoute, strings: []string{
		"periodontal", "endodental", "resinas_incrustaciones", "cirugia_extracciones",
		"rehabilitacion_estetico", "radiografia_panoramica", "observaciones",
	}},
	{name: SectionConsent, bools: []string{"aceptado"}, strings: []string{"firma_data_url"}},
}

var staticFields = buildStaticFields()

func buildStaticFields() map[string]Kind {
	fields := map[string]Kind{FieldMedicalHistorySummary: KindString}
	for _, s := range sections {
		for _, f := range s.strings {
			fields[s.name+"."+f] = KindString
		}
		for _, f := range s.bools {
			fields[s.name+"."+f] = KindBool
		}
	}
	return fields
}

// Lookup resolves a field path against the schema and returns the kind of
// value it holds. Paths under odontograma.teeth are accepted for valid tooth
// numbers and surfaces only.
func Lookup(path []string) (Kind, error) {
	if len(path) == 0 {
		return "", ErrEmptyPath
	}
	if kind, ok := staticFields[strings.Join(path, ".")]; ok {
		return kind, nil
	}
	if len(path) >= 4 && path[0] == SectionOdontogram && path[1] == odontogramTeethKey {
		if !IsValidTooth(path[2]) {
			return "", ErrInvalidTooth
		}
		switch {
		case len(path) == 4 && path[3] == toothMissingKey:
			return KindBool, nil
		case len(path) == 5 && path[3] == toothSurfacesKey:
			if !Surface(path[4]).IsValid() {
				return "", ErrInvalidSurface
			}
			return KindString, nil
		}
	}
	return "", ErrUnknownField
}

// Fields lists every static schema path in a stable order.
func Fields() []FieldInfo {
	out := make([]FieldInfo, 0, len(staticFields))
	for _, s := range sections {
		for _, f := range s.strings {
			out = append(out, FieldInfo{Path: []string{s.name, f}, Kind: KindString})
		}
		for _, f := range s.bools {
			out = append(out, FieldInfo{Path: []string{s.name, f}, Kind: KindBool})
		}
	}
	out = append(out, FieldInfo{Path: []string{FieldMedicalHistorySummary}, Kind: KindString})
	return out
}

type FieldInfo struct {
	Path []string `json:"path"`
	Kind Kind     `json:"kind"`
}
