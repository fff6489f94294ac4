package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/metrics"
	"alfredoptarigan/admission-tracker/internal/models"
	"alfredoptarigan/admission-tracker/internal/repositories"
)

const maxScreeningMinutes = 240

// ApplicationStateTracker drives an applicant through the four gated
// application steps.
type ApplicationStateTracker interface {
	SaveDraft(ctx context.Context, applicantID uuid.UUID, formData json.RawMessage) (*models.ApplicationStatus, error)
	SubmitStep1(ctx context.Context, applicantID uuid.UUID, form models.Step1Form) (*models.ApplicationStatus, error)
	ScheduleScreening(ctx context.Context, applicantID uuid.UUID, req models.ScheduleScreeningRequest) (*models.ScheduleScreeningResponse, error)
	DownloadAcceptanceLetter(ctx context.Context, applicantID uuid.UUID) ([]byte, error)
	ConfirmInvoiceDates(ctx context.Context, applicantID uuid.UUID, start, end time.Time) (*models.ApplicationStatus, error)
	DownloadInvoice(ctx context.Context, applicantID uuid.UUID) ([]byte, error)
	PreviewInvoice(ctx context.Context, applicantID uuid.UUID) (*models.InvoiceBreakdown, error)
	Status(ctx context.Context, applicantID uuid.UUID) (*models.ApplicationStatus, error)

	// Administrative transitions.
	GenerateAcceptanceLetter(ctx context.Context, applicantID uuid.UUID, variant models.ProgramVariant) (*models.ApplicationStatus, error)
	ApproveInvoice(ctx context.Context, applicantID uuid.UUID, scholarshipPercentage float64) (*models.ApplicationStatus, error)
}

type TrackerOptions struct {
	StrictScreening        bool
	CollaboratorTimeout    time.Duration
	DefaultDurationMinutes int
	DefaultTimezone        string
}

type applicationStateTracker struct {
	applications repositories.ApplicationRepository
	applicants   repositories.ApplicantRepository
	video        MeetingScheduler
	calendar     MeetingScheduler
	notifier     Notifier
	renderer     Renderer
	locker       Locker
	opts         TrackerOptions
	log          logger.Logger
	now          func() time.Time
}

func NewApplicationStateTracker(
	applications repositories.ApplicationRepository,
	applicants repositories.ApplicantRepository,
	video MeetingScheduler,
	calendar MeetingScheduler,
	notifier Notifier,
	renderer Renderer,
	locker Locker,
	opts TrackerOptions,
	log logger.Logger,
) ApplicationStateTracker {
	if opts.CollaboratorTimeout <= 0 {
		opts.CollaboratorTimeout = 15 * time.Second
	}
	if opts.DefaultDurationMinutes <= 0 {
		opts.DefaultDurationMinutes = 30
	}
	if opts.DefaultTimezone == "" {
		opts.DefaultTimezone = "UTC"
	}

	return &applicationStateTracker{
		applications: applications,
		applicants:   applicants,
		video:        video,
		calendar:     calendar,
		notifier:     notifier,
		renderer:     renderer,
		locker:       locker,
		opts:         opts,
		log:          log,
		now:          time.Now,
	}
}

// EffectiveStatus derives the client-facing status. An interview completed
// outside the record counts as step 2.
func EffectiveStatus(record *models.ApplicationRecord, interviewCompleted bool) models.ApplicationStatus {
	if record == nil {
		return models.ApplicationStatus{
			CurrentStep:   1,
			InvoiceStatus: models.InvoiceStatusNone,
		}
	}

	step2 := record.Step2Completed || interviewCompleted
	floor := 1
	if step2 {
		floor = 3
	}
	current := record.CurrentStep
	if floor > current {
		current = floor
	}

	status := models.ApplicationStatus{
		Exists:                      true,
		CurrentStep:                 current,
		Step1Completed:              record.Step1Completed,
		Step2Completed:              step2,
		Step3Completed:              record.Step3Completed,
		Step4Completed:              record.Step4Completed,
		AcceptanceLetterGeneratedAt: record.AcceptanceLetterGeneratedAt,
		InvoiceStatus:               record.InvoiceStatus,
		ScholarshipPercentage:       record.ScholarshipPercentage,
		InvoiceApprovedAt:           record.InvoiceApprovedAt,
	}
	if status.InvoiceStatus == "" {
		status.InvoiceStatus = models.InvoiceStatusNone
	}
	if record.HasInvoiceRange() {
		status.InvoiceDateRange = &models.DateRange{Start: *record.InvoiceStartDate, End: *record.InvoiceEndDate}
	}
	return status
}

func (t *applicationStateTracker) Status(ctx context.Context, applicantID uuid.UUID) (*models.ApplicationStatus, error) {
	applicant, err := t.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	record, err := t.applications.FindByApplicantID(ctx, applicantID)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	status := EffectiveStatus(record, applicant.InterviewCompleted)
	return &status, nil
}

func (t *applicationStateTracker) SaveDraft(ctx context.Context, applicantID uuid.UUID, formData json.RawMessage) (_ *models.ApplicationStatus, err error) {
	defer func() { metrics.ObserveTransition("save_draft", err) }()

	if len(formData) == 0 || !json.Valid(formData) {
		return nil, apperror.Validation("tracker.SaveDraft", "form data must be a JSON document")
	}

	applicant, err := t.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	now := t.now()
	record, err := t.applications.Upsert(ctx, applicantID, func(r *models.ApplicationRecord) error {
		r.IsDraft = true
		r.FormData = []byte(formData)
		r.LastSavedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	status := EffectiveStatus(record, applicant.InterviewCompleted)
	return &status, nil
}

func (t *applicationStateTracker) SubmitStep1(ctx context.Context, applicantID uuid.UUID, form models.Step1Form) (_ *models.ApplicationStatus, err error) {
	defer func() { metrics.ObserveTransition("submit_step1", err) }()

	form = trimStep1(form)
	if problems := validateStep1(form); len(problems) > 0 {
		return nil, apperror.Validation("tracker.SubmitStep1", "missing mandatory fields", problems...)
	}

	applicant, err := t.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal step 1 form: %w", err)
	}

	now := t.now()
	record, err := t.applications.Upsert(ctx, applicantID, func(r *models.ApplicationRecord) error {
		r.Step1Completed = true
		r.AdvanceTo(2)
		r.IsDraft = false
		r.FormData = raw
		r.SubmittedAt = &now
		r.LastSavedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.log.Info("step 1 submitted", map[string]interface{}{"applicant_id": applicantID.String()})

	status := EffectiveStatus(record, applicant.InterviewCompleted)
	return &status, nil
}

func trimStep1(f models.Step1Form) models.Step1Form {
	for _, s := range []*string{
		&f.FirstName, &f.MiddleName, &f.LastName, &f.DateOfBirth, &f.Gender,
		&f.Nationality, &f.Phone, &f.Email, &f.Address, &f.Institution,
		&f.Major, &f.EnglishLevel, &f.PaymentSource, &f.Signature,
	} {
		*s = strings.TrimSpace(*s)
	}
	return f
}

// validateStep1 returns every problem with the form in field order.
func validateStep1(f models.Step1Form) []string {
	fields := []struct {
		value interface{}
		rules []validation.Rule
	}{
		{f.FirstName, []validation.Rule{validation.Required.Error("first name is required")}},
		{f.LastName, []validation.Rule{validation.Required.Error("last name is required")}},
		{f.DateOfBirth, []validation.Rule{validation.Required.Error("date of birth is required")}},
		{f.Gender, []validation.Rule{validation.Required.Error("gender is required")}},
		{f.Nationality, []validation.Rule{validation.Required.Error("nationality is required")}},
		{f.Phone, []validation.Rule{validation.Required.Error("phone is required")}},
		{f.Email, []validation.Rule{validation.Required.Error("email is required")}},
		{f.Address, []validation.Rule{validation.Required.Error("address is required")}},
		{f.Institution, []validation.Rule{validation.Required.Error("institution is required")}},
		{f.Major, []validation.Rule{validation.Required.Error("major is required")}},
		{f.EnglishLevel, []validation.Rule{validation.Required.Error("English level is required")}},
		{f.PaymentSource, []validation.Rule{validation.Required.Error("payment source is required")}},
		{f.PlagiarismConfirmation, []validation.Rule{validation.Required.Error("plagiarism confirmation is required")}},
		{f.Signature, []validation.Rule{
			validation.Required.Error("signature is required"),
			validation.RuneLength(3, 0).Error("signature must be at least 3 characters"),
		}},
	}

	var problems []string
	for _, field := range fields {
		if err := validation.Validate(field.value, field.rules...); err != nil {
			problems = append(problems, err.Error())
		}
	}
	return problems
}

func (t *applicationStateTracker) ScheduleScreening(ctx context.Context, applicantID uuid.UUID, req models.ScheduleScreeningRequest) (_ *models.ScheduleScreeningResponse, err error) {
	const op = "tracker.ScheduleScreening"
	defer func() { metrics.ObserveTransition("schedule_screening", err) }()

	spec, err := t.meetingSpec(req)
	if err != nil {
		return nil, err
	}

	applicant, err := t.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	spec.AttendeeEmail = applicant.Email
	spec.AttendeeName = applicantName(applicant)
	spec.Topic = "Admission screening: " + spec.AttendeeName

	release, ok, err := t.locker.Acquire(ctx, "screening:"+applicantID.String())
	if err != nil {
		return nil, apperror.Collaborator(op, "lock", err)
	}
	if !ok {
		return nil, apperror.StateConflict(op, "screening is already being scheduled for this applicant")
	}
	defer release()

	record, err := t.applications.FindByApplicantID(ctx, applicantID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.StateConflict(op, "step 1 must be completed before scheduling screening")
		}
		return nil, err
	}
	if err := t.screeningGate(op, record, applicant.InterviewCompleted); err != nil {
		return nil, err
	}

	meeting, warnings := t.bookMeeting(ctx, spec)
	meeting.ScheduledAt = t.now()

	_, err = t.applications.Update(ctx, applicantID, func(r *models.ApplicationRecord) error {
		if err := t.screeningGate(op, r, applicant.InterviewCompleted); err != nil {
			return err
		}
		if err := r.SetScheduledMeeting(meeting); err != nil {
			return err
		}
		r.Step3Completed = true
		r.AdvanceTo(4)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := t.sendConfirmation(ctx, spec, meeting); err != nil {
		warnings = append(warnings, "confirmation email could not be sent")
	}

	t.log.Info("screening scheduled", map[string]interface{}{
		"applicant_id": applicantID.String(),
		"date_time":    spec.Start,
		"warnings":     len(warnings),
	})

	return &models.ScheduleScreeningResponse{
		ScheduledMeeting: meeting,
		Warnings:         warnings,
	}, nil
}

func (t *applicationStateTracker) meetingSpec(req models.ScheduleScreeningRequest) (MeetingSpec, error) {
	const op = "tracker.ScheduleScreening"

	if req.DateTime.IsZero() {
		return MeetingSpec{}, apperror.Validation(op, "dateTime is required")
	}
	if !req.DateTime.After(t.now()) {
		return MeetingSpec{}, apperror.Validation(op, "dateTime must be in the future")
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = t.opts.DefaultDurationMinutes
	}
	if duration < 0 || duration > maxScreeningMinutes {
		return MeetingSpec{}, apperror.Validation(op, fmt.Sprintf("durationMinutes must be between 1 and %d", maxScreeningMinutes))
	}

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = t.opts.DefaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return MeetingSpec{}, apperror.Validation(op, fmt.Sprintf("unknown timezone %q", tz))
	}

	return MeetingSpec{
		Description:     strings.TrimSpace(req.Notes),
		Start:           req.DateTime,
		DurationMinutes: duration,
		Timezone:        tz,
	}, nil
}

func (t *applicationStateTracker) screeningGate(op string, r *models.ApplicationRecord, interviewCompleted bool) error {
	if !r.Step1Completed {
		return apperror.StateConflict(op, "step 1 must be completed before scheduling screening")
	}
	if t.opts.StrictScreening && !(r.Step2Completed || interviewCompleted) {
		return apperror.StateConflict(op, "the interview must be completed before scheduling screening")
	}
	if r.Step3Completed {
		return apperror.StateConflict(op, "screening is already scheduled")
	}
	return nil
}

// bookMeeting calls the video and calendar collaborators concurrently. A
// failing collaborator leaves its slot nil and adds a warning.
func (t *applicationStateTracker) bookMeeting(ctx context.Context, spec MeetingSpec) (*models.ScheduledMeeting, []string) {
	meeting := &models.ScheduledMeeting{
		DateTime:        spec.Start,
		DurationMinutes: spec.DurationMinutes,
		Timezone:        spec.Timezone,
	}

	var videoErr, calendarErr error
	var g errgroup.Group
	g.Go(func() error {
		meeting.ZoomMeeting, videoErr = t.callScheduler(ctx, t.video, spec)
		return nil
	})
	g.Go(func() error {
		meeting.CalendarEvent, calendarErr = t.callScheduler(ctx, t.calendar, spec)
		return nil
	})
	g.Wait()

	warnings := []string{}
	if videoErr != nil {
		warnings = append(warnings, "video meeting could not be created")
		t.collaboratorFailed("video", videoErr)
	}
	if calendarErr != nil {
		warnings = append(warnings, "calendar event could not be created")
		t.collaboratorFailed("calendar", calendarErr)
	}
	return meeting, warnings
}

func (t *applicationStateTracker) callScheduler(ctx context.Context, s MeetingScheduler, spec MeetingSpec) (models.MeetingInfo, error) {
	if s == nil {
		return nil, fmt.Errorf("scheduler not configured")
	}
	callCtx, cancel := context.WithTimeout(ctx, t.opts.CollaboratorTimeout)
	defer cancel()

	info, err := s.Create(callCtx, spec)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (t *applicationStateTracker) collaboratorFailed(name string, err error) {
	metrics.CollaboratorFailures.WithLabelValues(name).Inc()
	t.log.WithError(err).Warn("collaborator call failed", map[string]interface{}{"collaborator": name})
}

func (t *applicationStateTracker) sendConfirmation(ctx context.Context, spec MeetingSpec, meeting *models.ScheduledMeeting) error {
	if t.notifier == nil {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", spec.AttendeeName)
	fmt.Fprintf(&b, "Your admission screening is scheduled for %s (%s), lasting %d minutes.\n",
		spec.Start.Format(time.RFC1123), spec.Timezone, spec.DurationMinutes)
	if link, ok := meeting.ZoomMeeting["joinUrl"].(string); ok && link != "" {
		fmt.Fprintf(&b, "Join link: %s\n", link)
	}
	b.WriteString("\nThe Admissions Office\n")

	sendCtx, cancel := context.WithTimeout(ctx, t.opts.CollaboratorTimeout)
	defer cancel()

	err := t.notifier.Send(sendCtx, Email{
		To:      spec.AttendeeEmail,
		Subject: "Your admission screening is scheduled",
		Body:    b.String(),
	})
	if err != nil {
		t.collaboratorFailed("email", err)
	}
	return err
}

func (t *applicationStateTracker) DownloadAcceptanceLetter(ctx context.Context, applicantID uuid.UUID) (_ []byte, err error) {
	const op = "tracker.DownloadAcceptanceLetter"
	defer func() { metrics.ObserveTransition("download_acceptance_letter", err) }()

	record, err := t.applications.FindByApplicantID(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if record.AcceptanceLetterGeneratedAt == nil {
		return nil, apperror.StateConflict(op, "the acceptance letter has not been issued yet")
	}

	applicant, err := t.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	letter, err := ComposeLetter(record.ProgramVariant, applicant, *record.AcceptanceLetterGeneratedAt)
	if err != nil {
		return nil, err
	}
	doc, err := t.renderer.RenderLetter(letter)
	if err != nil {
		return nil, apperror.Collaborator(op, "renderer", err)
	}

	_, err = t.applications.Update(ctx, applicantID, func(r *models.ApplicationRecord) error {
		if r.AcceptanceLetterGeneratedAt == nil {
			return apperror.StateConflict(op, "the acceptance letter has not been issued yet")
		}
		r.Step4Completed = true
		r.AdvanceTo(4)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (t *applicationStateTracker) ConfirmInvoiceDates(ctx context.Context, applicantID uuid.UUID, start, end time.Time) (_ *models.ApplicationStatus, err error) {
	const op = "tracker.ConfirmInvoiceDates"
	defer func() { metrics.ObserveTransition("confirm_invoice_dates", err) }()

	if start.IsZero() || end.IsZero() {
		return nil, apperror.Validation(op, "startDate and endDate are required")
	}
	if !end.After(start) {
		return nil, apperror.Validation(op, "endDate must be after startDate")
	}

	applicant, err := t.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	record, err := t.applications.Update(ctx, applicantID, func(r *models.ApplicationRecord) error {
		if !r.Step4Completed {
			return apperror.StateConflict(op, "the acceptance letter must be downloaded first")
		}
		if r.InvoiceStatus == models.InvoiceStatusApproved {
			return apperror.StateConflict(op, "the invoice is already approved")
		}
		r.InvoiceStartDate = &start
		r.InvoiceEndDate = &end
		r.InvoiceStatus = models.InvoiceStatusPending
		r.ScholarshipPercentage = 0
		r.InvoiceApprovedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	status := EffectiveStatus(record, applicant.InterviewCompleted)
	return &status, nil
}

func (t *applicationStateTracker) PreviewInvoice(ctx context.Context, applicantID uuid.UUID) (*models.InvoiceBreakdown, error) {
	record, err := t.applications.FindByApplicantID(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if !record.HasInvoiceRange() {
		return nil, apperror.StateConflict("tracker.PreviewInvoice", "invoice dates have not been confirmed")
	}

	breakdown := ComputeInvoice(*record.InvoiceStartDate, *record.InvoiceEndDate, record.ScholarshipPercentage)
	return &breakdown, nil
}

func (t *applicationStateTracker) DownloadInvoice(ctx context.Context, applicantID uuid.UUID) ([]byte, error) {
	const op = "tracker.DownloadInvoice"

	record, err := t.applications.FindByApplicantID(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if record.InvoiceStatus != models.InvoiceStatusApproved || !record.HasInvoiceRange() {
		return nil, apperror.StateConflict(op, "the invoice has not been approved")
	}

	breakdown := ComputeInvoice(*record.InvoiceStartDate, *record.InvoiceEndDate, record.ScholarshipPercentage)
	if !breakdown.Computable() {
		return nil, apperror.StateConflict(op, "the invoice date range has no billable weeks")
	}

	applicant, err := t.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	issued := t.now()
	if record.InvoiceApprovedAt != nil {
		issued = *record.InvoiceApprovedAt
	}

	doc, err := t.renderer.RenderInvoice(InvoiceData{
		Number:          invoiceNumber(record, issued),
		ApplicantName:   applicantName(applicant),
		ApplicantEmail:  applicant.Email,
		StartDate:       *record.InvoiceStartDate,
		EndDate:         *record.InvoiceEndDate,
		IssuedAt:        issued,
		Breakdown:       breakdown,
		ScholarshipPct:  record.ScholarshipPercentage,
		RegistrationFee: RegistrationFee,
	})
	if err != nil {
		return nil, apperror.Collaborator(op, "renderer", err)
	}
	return doc, nil
}

func invoiceNumber(r *models.ApplicationRecord, issued time.Time) string {
	return fmt.Sprintf("INV-%s-%s", issued.Format("20060102"), strings.ToUpper(r.ID.String()[:8]))
}

func (t *applicationStateTracker) GenerateAcceptanceLetter(ctx context.Context, applicantID uuid.UUID, variant models.ProgramVariant) (_ *models.ApplicationStatus, err error) {
	const op = "tracker.GenerateAcceptanceLetter"
	defer func() { metrics.ObserveTransition("generate_acceptance_letter", err) }()

	if !variant.Valid() {
		return nil, apperror.Validation(op, fmt.Sprintf("programVariant must be %q or %q", models.ProgramOnsite, models.ProgramHybrid))
	}

	applicant, err := t.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	now := t.now()
	record, err := t.applications.Update(ctx, applicantID, func(r *models.ApplicationRecord) error {
		if !r.Step3Completed {
			return apperror.StateConflict(op, "screening must be scheduled before issuing the letter")
		}
		r.AcceptanceLetterGeneratedAt = &now
		r.ProgramVariant = variant
		return nil
	})
	if err != nil {
		return nil, err
	}

	status := EffectiveStatus(record, applicant.InterviewCompleted)
	return &status, nil
}

func (t *applicationStateTracker) ApproveInvoice(ctx context.Context, applicantID uuid.UUID, scholarshipPercentage float64) (_ *models.ApplicationStatus, err error) {
	const op = "tracker.ApproveInvoice"
	defer func() { metrics.ObserveTransition("approve_invoice", err) }()

	if scholarshipPercentage < 0 || scholarshipPercentage > 100 {
		return nil, apperror.Validation(op, "scholarshipPercentage must be between 0 and 100")
	}

	applicant, err := t.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	now := t.now()
	record, err := t.applications.Update(ctx, applicantID, func(r *models.ApplicationRecord) error {
		if r.InvoiceStatus != models.InvoiceStatusPending {
			return apperror.StateConflict(op, "only a pending invoice can be approved")
		}
		r.InvoiceStatus = models.InvoiceStatusApproved
		r.ScholarshipPercentage = scholarshipPercentage
		r.InvoiceApprovedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	status := EffectiveStatus(record, applicant.InterviewCompleted)
	return &status, nil
}
