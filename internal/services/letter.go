package services

import (
	"fmt"
	"strings"
	"time"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/models"
)

// letterFragments holds the parts of the acceptance letter that differ
// between program variants.
type letterFragments struct {
	Title      string
	Attendance string
	Logistics  string
}

var variantFragments = map[models.ProgramVariant]letterFragments{
	models.ProgramOnsite: {
		Title:      "On-site Program",
		Attendance: "The program is delivered entirely on campus. Attendance is expected at every scheduled session, Monday to Friday.",
		Logistics:  "Please plan your arrival at least two days before the first session. Accommodation guidance will follow with your invoice.",
	},
	models.ProgramHybrid: {
		Title:      "Hybrid Program",
		Attendance: "The program combines on-campus workshops with live online sessions. On-campus attendance is required during the opening and closing weeks.",
		Logistics:  "Online sessions require a stable connection and a webcam. Access details for the virtual classroom will be sent before the start date.",
	},
}

type LetterData struct {
	ApplicantName  string
	ApplicantEmail string
	ProgramTitle   string
	ProgramVariant models.ProgramVariant
	IssuedAt       time.Time
	Paragraphs     []string
}

// ComposeLetter assembles the acceptance letter content for an applicant.
func ComposeLetter(variant models.ProgramVariant, applicant *models.Applicant, issuedAt time.Time) (LetterData, error) {
	fragments, ok := variantFragments[variant]
	if !ok {
		return LetterData{}, apperror.Validation("compose letter", fmt.Sprintf("unknown program variant %q", variant))
	}

	name := applicantName(applicant)
	return LetterData{
		ApplicantName:  name,
		ApplicantEmail: applicant.Email,
		ProgramTitle:   fragments.Title,
		ProgramVariant: variant,
		IssuedAt:       issuedAt,
		Paragraphs: []string{
			fmt.Sprintf("We are pleased to inform you that you have been accepted to the %s.", fragments.Title),
			fragments.Attendance,
			fragments.Logistics,
			"To secure your place, confirm your program dates in the application portal. Your invoice will be issued once the dates are approved.",
		},
	}, nil
}

func applicantName(a *models.Applicant) string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Email
	}
	return name
}
