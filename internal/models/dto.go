package models

import "time"

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
	AnalysisID   string `json:"analysis_id"`
}

type CVAnalysisResponse struct {
	ID           string   `json:"id"`
	Status       string   `json:"status"`
	Skills       []string `json:"skills,omitempty"`
	CVScore      *int     `json:"cv_score,omitempty"`
	ErrorMessage *string  `json:"error_message,omitempty"`
}

type CreateApplicantRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ApplicantProfileResponse struct {
	ID                    string            `json:"id"`
	Email                 string            `json:"email"`
	FirstName             string            `json:"first_name"`
	LastName              string            `json:"last_name"`
	Skills                []string          `json:"skills"`
	CVScore               int               `json:"cv_score"`
	InterviewScore        *int              `json:"interview_score,omitempty"`
	InterviewCompleted    bool              `json:"interview_completed"`
	SoftSkills            *InstrumentResult `json:"soft_skills,omitempty"`
	MultipleIntelligences *InstrumentResult `json:"multiple_intelligences,omitempty"`
}

// Step1Form is the mandatory first application step.
type Step1Form struct {
	FirstName              string `json:"firstName"`
	MiddleName             string `json:"middleName,omitempty"`
	LastName               string `json:"lastName"`
	DateOfBirth            string `json:"dateOfBirth"`
	Gender                 string `json:"gender"`
	Nationality            string `json:"nationality"`
	Phone                  string `json:"phone"`
	Email                  string `json:"email"`
	Address                string `json:"address"`
	Institution            string `json:"institution"`
	Major                  string `json:"major"`
	EnglishLevel           string `json:"englishLevel"`
	PaymentSource          string `json:"paymentSource"`
	PlagiarismConfirmation bool   `json:"plagiarismConfirmation"`
	Signature              string `json:"signature"`
}

type ScheduleScreeningRequest struct {
	DateTime        time.Time `json:"dateTime"`
	DurationMinutes int       `json:"durationMinutes,omitempty"`
	Timezone        string    `json:"timezone,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

type ScheduleScreeningResponse struct {
	ScheduledMeeting *ScheduledMeeting `json:"scheduledMeeting"`
	Warnings         []string          `json:"warnings"`
}

type InvoiceDatesRequest struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type ApproveInvoiceRequest struct {
	ScholarshipPercentage float64 `json:"scholarshipPercentage"`
}

type GenerateLetterRequest struct {
	ProgramVariant ProgramVariant `json:"programVariant"`
}

type InterviewRequest struct {
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
}

type SurveyRequest struct {
	Responses map[int]interface{} `json:"responses"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ApplicationStatus is the effective status returned to clients. It is derived
// at read time and never persisted.
type ApplicationStatus struct {
	Exists                      bool          `json:"exists"`
	CurrentStep                 int           `json:"currentStep"`
	Step1Completed              bool          `json:"step1Completed"`
	Step2Completed              bool          `json:"step2Completed"`
	Step3Completed              bool          `json:"step3Completed"`
	Step4Completed              bool          `json:"step4Completed"`
	AcceptanceLetterGeneratedAt *time.Time    `json:"acceptanceLetterGeneratedAt"`
	InvoiceDateRange            *DateRange    `json:"invoiceDateRange"`
	InvoiceStatus               InvoiceStatus `json:"invoiceStatus"`
	ScholarshipPercentage       float64       `json:"scholarshipPercentage"`
	InvoiceApprovedAt           *time.Time    `json:"invoiceApprovedAt"`
}
