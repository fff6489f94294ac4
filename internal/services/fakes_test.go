package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/models"
	"alfredoptarigan/admission-tracker/internal/repositories"
)

// fakeApplications keeps records in memory. Mutations run on a copy so a
// failing mutate leaves the stored record unchanged, like a rolled back
// transaction.
type fakeApplications struct {
	mu        sync.Mutex
	records   map[uuid.UUID]models.ApplicationRecord
	existsErr error
}

func newFakeApplications() *fakeApplications {
	return &fakeApplications{records: make(map[uuid.UUID]models.ApplicationRecord)}
}

func (f *fakeApplications) put(r models.ApplicationRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[r.ApplicantID] = r
}

func (f *fakeApplications) get(applicantID uuid.UUID) (models.ApplicationRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[applicantID]
	return r, ok
}

func (f *fakeApplications) FindByApplicantID(_ context.Context, applicantID uuid.UUID) (*models.ApplicationRecord, error) {
	r, ok := f.get(applicantID)
	if !ok {
		return nil, apperror.NotFound("find application", "no application record for this applicant")
	}
	return &r, nil
}

func (f *fakeApplications) Exists(_ context.Context, applicantID uuid.UUID) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.get(applicantID)
	return ok, nil
}

func (f *fakeApplications) Upsert(ctx context.Context, applicantID uuid.UUID, mutate repositories.MutateFunc) (*models.ApplicationRecord, error) {
	f.mu.Lock()
	if _, ok := f.records[applicantID]; !ok {
		f.records[applicantID] = *models.NewApplicationRecord(applicantID)
	}
	f.mu.Unlock()
	return f.Update(ctx, applicantID, mutate)
}

func (f *fakeApplications) Update(_ context.Context, applicantID uuid.UUID, mutate repositories.MutateFunc) (*models.ApplicationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.records[applicantID]
	if !ok {
		return nil, apperror.NotFound("update application", "no application record for this applicant")
	}
	if err := mutate(&r); err != nil {
		return nil, err
	}
	f.records[applicantID] = r
	out := r
	return &out, nil
}

type fakeApplicants struct {
	mu         sync.Mutex
	applicants map[uuid.UUID]models.Applicant
}

func newFakeApplicants(list ...models.Applicant) *fakeApplicants {
	f := &fakeApplicants{applicants: make(map[uuid.UUID]models.Applicant)}
	for _, a := range list {
		f.applicants[a.ID] = a
	}
	return f
}

func (f *fakeApplicants) Create(_ context.Context, a *models.Applicant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.applicants {
		if existing.Email == a.Email {
			return apperror.StateConflict("create applicant", "an applicant with this email already exists")
		}
	}
	f.applicants[a.ID] = *a
	return nil
}

func (f *fakeApplicants) FindByID(_ context.Context, id uuid.UUID) (*models.Applicant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.applicants[id]
	if !ok {
		return nil, apperror.NotFound("find applicant", "applicant not found")
	}
	return &a, nil
}

func (f *fakeApplicants) UpdateSkills(_ context.Context, id uuid.UUID, skills []string, cvScore int) error {
	return f.update(id, func(a *models.Applicant) {
		a.Skills = skills
		a.CVScore = cvScore
	})
}

func (f *fakeApplicants) UpdateInterview(_ context.Context, id uuid.UUID, score int) error {
	return f.update(id, func(a *models.Applicant) {
		a.InterviewScore = &score
		a.InterviewCompleted = true
	})
}

func (f *fakeApplicants) UpdateSurvey(_ context.Context, id uuid.UUID, instrument string, result datatypes.JSON) error {
	if instrument != InstrumentSoftSkills && instrument != InstrumentMultipleIntelligences {
		return apperror.Validation("update applicant survey", "unknown instrument")
	}
	return f.update(id, func(a *models.Applicant) {
		if instrument == InstrumentSoftSkills {
			a.SoftSkills = result
		} else {
			a.Intelligences = result
		}
	})
}

func (f *fakeApplicants) update(id uuid.UUID, apply func(*models.Applicant)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.applicants[id]
	if !ok {
		return apperror.NotFound("update applicant", "applicant not found")
	}
	apply(&a)
	f.applicants[id] = a
	return nil
}
