package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mzagorenko/clinic/internal/apperr"
	"github.com/mzagorenko/clinic/internal/filter"
	"github.com/mzagorenko/clinic/internal/logging"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/util"
)

type PatientService struct {
	DB *gorm.DB
}

type PatientSearch struct {
	Filters    []filter.Rule
	Sorting    []filter.Sort
	GlobalRule string
	Offset     int
	Limit      int
}

func (s *PatientService) Create(ctx context.Context, p *models.Patient) error {
	l := logging.FromContext(ctx).With("svc", "patients.create", "therapist_id", p.TherapistID)

	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		l.Error("create failed", "status", 500, "error", err)
		return fmt.Errorf("db error: %w", err)
	}

	l.Info("patient created", "patient_id", p.ID)
	return nil
}

func (s *PatientService) Get(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	var p models.Patient
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrPatientNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}

// Search lists patients matching the caller's filters, shaped for the
// caller's role.
func (s *PatientService) Search(ctx context.Context, role string, q PatientSearch) (any, error) {
	offset, limit := util.Calculate(q.Offset, q.Limit)

	globalRule := q.GlobalRule
	if globalRule == "" {
		globalRule = filter.GlobalEvery
	}

	where, err := filter.Patients().Scope(q.Filters, globalRule)
	if err != nil {
		return nil, err
	}
	order, err := filter.Patients().OrderScope(q.Sorting)
	if err != nil {
		return nil, err
	}

	var patients []models.Patient
	if err := s.DB.WithContext(ctx).
		Scopes(where, order).
		Offset(offset).Limit(limit).
		Find(&patients).Error; err != nil {
		logging.FromContext(ctx).Error("patient search failed", "status", 500, "error", err)
		return nil, fmt.Errorf("db error: %w", err)
	}

	return filter.ProjectPatients(role, patients)
}

func (s *PatientService) ListByTherapist(ctx context.Context, therapistID uuid.UUID, offset, limit int) ([]models.Patient, error) {
	offset, limit = util.Calculate(offset, limit)

	var patients []models.Patient
	if err := s.DB.WithContext(ctx).
		Where("therapist_id = ?", therapistID).
		Offset(offset).Limit(limit).
		Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return patients, nil
}

type PatientUpdate struct {
	Gender            *string `json:"gender"`
	Birthday          *string `json:"birthday"`
	FullName          *string `json:"full_name"`
	LivingPlace       *string `json:"living_place"`
	JobTitle          *string `json:"job_title"`
	InhabitedLocality *string `json:"inhabited_locality"`
	BP                *bool   `json:"bp"`
	Ischemia          *bool   `json:"ischemia"`
	Dep               *bool   `json:"dep"`
}

func (u PatientUpdate) changes() map[string]any {
	patch := map[string]any{}
	if u.Gender != nil {
		patch["gender"] = *u.Gender
	}
	if u.Birthday != nil {
		patch["birthday"] = *u.Birthday
	}
	if u.FullName != nil {
		patch["full_name"] = *u.FullName
	}
	if u.LivingPlace != nil {
		patch["living_place"] = *u.LivingPlace
	}
	if u.JobTitle != nil {
		patch["job_title"] = *u.JobTitle
	}
	if u.InhabitedLocality != nil {
		patch["inhabited_locality"] = *u.InhabitedLocality
	}
	if u.BP != nil {
		patch["bp"] = *u.BP
	}
	if u.Ischemia != nil {
		patch["ischemia"] = *u.Ischemia
	}
	if u.Dep != nil {
		patch["dep"] = *u.Dep
	}
	return patch
}

// Update patches a patient owned by the calling therapist.
func (s *PatientService) Update(ctx context.Context, id, therapistID uuid.UUID, in PatientUpdate) (*models.Patient, error) {
	patch := in.changes()
	if len(patch) > 0 {
		res := s.DB.WithContext(ctx).Model(&models.Patient{}).
			Where("id = ? AND therapist_id = ?", id, therapistID).
			Updates(patch)
		if res.Error != nil {
			return nil, fmt.Errorf("db error: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.ErrPatientNotFound
		}
	}
	return s.Get(ctx, id)
}

func (s *PatientService) Delete(ctx context.Context, id, therapistID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND therapist_id = ?", id, therapistID).
		Delete(&models.Patient{})
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrPatientNotFound
	}
	return nil
}
