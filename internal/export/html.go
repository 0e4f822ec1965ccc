// Package export renders a clinical history as a standalone HTML document
// meant to be printed or saved by the browser.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/odontoflow/internal/domain/patient"
)

const (
	Stylesheet  = "/pdf_styles.css"
	Logo        = "/logo_design_upem.png"
	Title       = "Historia Clínica Odontológica"
	ContentType = "text/html; charset=utf-8"

	placeholder = "N/A"
)

var generalFields = []struct {
	label string
	key   string
}{
	{"Nombre Completo", "nombre_completo"},
	{"Edad", "edad"},
	{"Sexo", "sexo"},
	{"Fecha de Nacimiento", "fecha_nacimiento"},
	{"Estado Civil", "estado_civil"},
	{"Ocupación", "ocupacion"},
	{"Dirección", "direccion"},
	{"Teléfono", "telefono"},
}

var surfaceLabels = map[history.Surface]string{
	history.SurfaceVestibular: "Vestibular",
	history.SurfaceLingual:    "Lingual",
	history.SurfaceDistal:     "Distal",
	history.SurfaceMesial:     "Mesial",
	history.SurfaceOcclusal:   "Oclusal",
}

type field struct {
	Label string
	Value string
}

type toothRow struct {
	Number string
	Status string
}

type document struct {
	Stylesheet         string
	Logo               string
	Title              string
	General            []field
	Teeth              []toothRow
	Notes              []history.FollowUpNote
	ConsentAccepted    bool
	ProfessorSignature bool
}

var page = template.Must(template.New("historia").Parse(`<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="{{.Stylesheet}}">
</head>
<body>
<div class="pdf-container">
<div class="pdf-header">
<img src="{{.Logo}}" alt="Logo UPEM">
<h1>{{.Title}}</h1>
</div>
<div class="pdf-section">
<h2>Datos Generales</h2>
<div class="pdf-grid">
{{- range .General}}
<div class="pdf-field"><span class="pdf-field-label">{{.Label}}</span><span class="pdf-field-value">{{.Value}}</span></div>
{{- end}}
</div>
</div>
<div class="pdf-section">
<h2>Odontograma</h2>
<table class="odontogram-table">
<tr><th>Diente</th><th>Estado</th></tr>
{{- range .Teeth}}
<tr><td>{{.Number}}</td><td>{{.Status}}</td></tr>
{{- end}}
</table>
</div>
<div class="pdf-section">
<h2>Notas de Evolución</h2>
<div class="pdf-grid">
{{- range .Notes}}
<div class="pdf-field" style="grid-column: span 2;"><span class="pdf-field-label">Fecha: {{.Timestamp}}</span><p class="pdf-field-value"><b>Procedimiento:</b> {{.Procedure}}<br><b>Observaciones:</b> {{.Observations}}</p></div>
{{- end}}
</div>
</div>
<div class="pdf-section">
<h2>Firmas y Consentimiento</h2>
<p>Consentimiento Paciente: {{if .ConsentAccepted}}Aceptado{{else}}No Aceptado{{end}}</p>
<p>Firma Profesor: {{if .ProfessorSignature}}Sí{{else}}No{{end}}</p>
</div>
</div>
</body>
</html>
`))

// Render produces the document for p. Output depends only on p.
func Render(p *patient.Patient) (string, error) {
	if p == nil {
		return "", fmt.Errorf("export: nil patient")
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, build(p)); err != nil {
		return "", fmt.Errorf("rendering clinical history: %w", err)
	}
	return buf.String(), nil
}

// Filename is the download name for p's document.
func Filename(p *patient.Patient) string {
	return "historia_clinica_" + strings.ReplaceAll(p.Name, " ", "_") + ".html"
}

func build(p *patient.Patient) document {
	h := &p.History
	doc := document{
		Stylesheet:         Stylesheet,
		Logo:               Logo,
		Title:              Title,
		Notes:              h.FollowUp,
		ConsentAccepted:    h.GetBool(history.SectionConsent, "aceptado"),
		ProfessorSignature: p.ProfessorSignature != nil && p.ProfessorSignature.URL != "",
	}

	for _, f := range generalFields {
		v := h.GetString(history.SectionGeneralData, f.key)
		if v == "" {
			v = placeholder
		}
		doc.General = append(doc.General, field{Label: f.label, Value: v})
	}

	for _, t := range h.Teeth() {
		doc.Teeth = append(doc.Teeth, toothRow{Number: t.Number, Status: toothStatus(t)})
	}
	return doc
}

func toothStatus(t history.ToothState) string {
	var parts []string
	if t.Missing {
		parts = append(parts, "Ausente")
	}
	for _, s := range history.Surfaces {
		if finding := t.Surfaces[s]; finding != "" {
			parts = append(parts, surfaceLabels[s]+": "+finding)
		}
	}
	if len(parts) == 0 {
		return "Sano"
	}
	return strings.Join(parts, ", ")
}
