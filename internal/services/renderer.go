package services

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"alfredoptarigan/admission-tracker/internal/models"
)

type InvoiceData struct {
	Number          string
	ApplicantName   string
	ApplicantEmail  string
	StartDate       time.Time
	EndDate         time.Time
	IssuedAt        time.Time
	Breakdown       models.InvoiceBreakdown
	ScholarshipPct  float64
	RegistrationFee float64
}

// Renderer turns composed documents into downloadable bytes.
type Renderer interface {
	RenderLetter(data LetterData) ([]byte, error)
	RenderInvoice(data InvoiceData) ([]byte, error)
}

var renderFuncs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"date":  func(t time.Time) string { return t.Format("2 January 2006") },
}

const letterTemplate = `ACCEPTANCE LETTER
{{.ProgramTitle}}

Date: {{date .IssuedAt}}
To: {{.ApplicantName}} <{{.ApplicantEmail}}>

Dear {{.ApplicantName}},
{{range .Paragraphs}}
{{.}}
{{end}}
Sincerely,
The Admissions Office
`

const invoiceTemplate = `INVOICE {{.Number}}

Issued: {{date .IssuedAt}}
Billed to: {{.ApplicantName}} <{{.ApplicantEmail}}>
Program dates: {{date .StartDate}} to {{date .EndDate}} ({{.Breakdown.Weeks}} weeks)

Tuition per week:            {{money .Breakdown.TuitionPerWeek}}
Tuition before scholarship:  {{money .Breakdown.TuitionBeforeScholarship}}
Scholarship ({{money .ScholarshipPct}}%):      -{{money .Breakdown.ScholarshipDiscount}}
Subtotal:                    {{money .Breakdown.Subtotal}}
Tax (10%):                   {{money .Breakdown.Tax}}
TOTAL DUE:                   {{money .Breakdown.Total}}

Registration fee of {{money .RegistrationFee}} is billed separately and is not included in the total above.
`

type textRenderer struct {
	letter  *template.Template
	invoice *template.Template
}

func NewTextRenderer() Renderer {
	return &textRenderer{
		letter:  template.Must(template.New("letter").Funcs(renderFuncs).Parse(letterTemplate)),
		invoice: template.Must(template.New("invoice").Funcs(renderFuncs).Parse(invoiceTemplate)),
	}
}

func (r *textRenderer) RenderLetter(data LetterData) ([]byte, error) {
	return execute(r.letter, data)
}

func (r *textRenderer) RenderInvoice(data InvoiceData) ([]byte, error) {
	if !data.Breakdown.Computable() {
		return nil, fmt.Errorf("invoice has no billable weeks")
	}
	return execute(r.invoice, data)
}

func execute(tmpl *template.Template, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}
