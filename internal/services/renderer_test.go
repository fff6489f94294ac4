package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/models"
)

func TestComposeLetter_Variants(t *testing.T) {
	applicant := &models.Applicant{Email: "ana@example.com", FirstName: "Ana", LastName: "Lima"}
	issued := time.Date(2030, time.March, 1, 0, 0, 0, 0, time.UTC)

	onsite, err := ComposeLetter(models.ProgramOnsite, applicant, issued)
	require.NoError(t, err)
	hybrid, err := ComposeLetter(models.ProgramHybrid, applicant, issued)
	require.NoError(t, err)

	assert.Equal(t, "Ana Lima", onsite.ApplicantName)
	assert.Equal(t, "On-site Program", onsite.ProgramTitle)
	assert.Equal(t, "Hybrid Program", hybrid.ProgramTitle)
	assert.NotEqual(t, onsite.Paragraphs[1], hybrid.Paragraphs[1])
	assert.Equal(t, onsite.Paragraphs[3], hybrid.Paragraphs[3])
}

func TestComposeLetter_UnknownVariant(t *testing.T) {
	_, err := ComposeLetter("remote", &models.Applicant{Email: "a@b.c"}, time.Now())
	assert.True(t, apperror.IsValidation(err))
}

func TestComposeLetter_FallsBackToEmail(t *testing.T) {
	data, err := ComposeLetter(models.ProgramOnsite, &models.Applicant{Email: "a@b.c"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", data.ApplicantName)
}

func TestTextRenderer_RenderLetter(t *testing.T) {
	data, err := ComposeLetter(models.ProgramHybrid, &models.Applicant{Email: "ana@example.com", FirstName: "Ana"}, time.Date(2030, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	out, err := NewTextRenderer().RenderLetter(data)

	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "Dear Ana,")
	assert.Contains(t, text, "Hybrid Program")
	assert.Contains(t, text, "1 March 2030")
}

func TestTextRenderer_RenderInvoice(t *testing.T) {
	start := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 56)

	out, err := NewTextRenderer().RenderInvoice(InvoiceData{
		Number:          "INV-1",
		ApplicantName:   "Ana Lima",
		ApplicantEmail:  "ana@example.com",
		StartDate:       start,
		EndDate:         end,
		IssuedAt:        start,
		Breakdown:       ComputeInvoice(start, end, 15),
		ScholarshipPct:  15,
		RegistrationFee: RegistrationFee,
	})

	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "(8 weeks)")
	assert.Contains(t, text, "TOTAL DUE:                   2244.00")
	assert.Contains(t, text, "Registration fee of 250.00")
}

func TestTextRenderer_RefusesEmptyInvoice(t *testing.T) {
	_, err := NewTextRenderer().RenderInvoice(InvoiceData{})
	assert.Error(t, err)
}
