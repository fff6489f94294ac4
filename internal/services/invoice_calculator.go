package services

import (
	"math"
	"time"

	"alfredoptarigan/admission-tracker/internal/models"
)

const (
	// RegistrationFee is printed on the invoice but billed separately.
	RegistrationFee = 250.0

	TaxRate = 0.10

	standardWeeklyTuition   = 350.0
	discountedWeeklyTuition = 300.0
	discountMinWeeks        = 7
	discountMaxWeeks        = 12
)

// ComputeInvoice prices a stay from start to end. A partial final week is
// billed as a full week. The scholarship percentage is clamped to [0,100].
func ComputeInvoice(start, end time.Time, scholarshipPercentage float64) models.InvoiceBreakdown {
	weeks := ProgramWeeks(start, end)
	if weeks == 0 {
		return models.InvoiceBreakdown{}
	}

	pct := math.Max(0, math.Min(100, scholarshipPercentage))

	perWeek := standardWeeklyTuition
	if weeks >= discountMinWeeks && weeks <= discountMaxWeeks {
		perWeek = discountedWeeklyTuition
	}

	beforeScholarship := float64(weeks) * perWeek
	discount := beforeScholarship * (pct / 100)
	subtotal := beforeScholarship - discount
	tax := round2(subtotal * TaxRate)

	return models.InvoiceBreakdown{
		Weeks:                    weeks,
		TuitionPerWeek:           perWeek,
		TuitionBeforeScholarship: beforeScholarship,
		ScholarshipDiscount:      discount,
		Subtotal:                 subtotal,
		Tax:                      tax,
		Total:                    round2(subtotal + tax),
	}
}

// ProgramWeeks is ceil(ceil(days)/7), or 0 for an empty or inverted range.
// Days are counted on wall-clock values, so a UTC offset change between start
// and end does not add a day.
func ProgramWeeks(start, end time.Time) int {
	days := math.Ceil(wallClock(end).Sub(wallClock(start)).Hours() / 24)
	if days <= 0 {
		return 0
	}
	return int(math.Ceil(days / 7))
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
