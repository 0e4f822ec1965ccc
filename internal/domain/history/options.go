package history

// Option lists offered by the history form select fields. They are
// suggestions only; the field editor stores whatever text it is given.
var (
	SexOptions = []string{
		"Masculino",
		"Femenino",
		"No especificado",
	}
	MaritalStatusOptions = []string{
		"Soltero(a)",
		"Casado(a)",
		"Divorciado(a)",
		"Viudo(a)",
		"Unión Libre",
	}
	SchoolingOptions = []string{
		"Sin estudios",
		"Primaria",
		"Secundaria",
		"Bachillerato",
		"Licenciatura",
		"Posgrado",
	}
)

type Catalog struct {
	Sex           []string    `json:"sexo"`
	MaritalStatus []string    `json:"estado_civil"`
	Schooling     []string    `json:"escolaridad"`
	Tools         []Tool      `json:"herramientas_odontograma"`
	Surfaces      []Surface   `json:"superficies"`
	UpperArch     []string    `json:"arcada_superior"`
	LowerArch     []string    `json:"arcada_inferior"`
	Fields        []FieldInfo `json:"campos"`
}

func NewCatalog() Catalog {
	upper, lower := Arches()
	return Catalog{
		Sex:           SexOptions,
		MaritalStatus: MaritalStatusOptions,
		Schooling:     SchoolingOptions,
		Tools:         Tools,
		Surfaces:      Surfaces,
		UpperArch:     upper,
		LowerArch:     lower,
		Fields:        Fields(),
	}
}
