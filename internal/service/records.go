package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mzagorenko/clinic/internal/apperr"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/util"
)

type RecordService struct {
	DB *gorm.DB
}

func (s *RecordService) Create(ctx context.Context, r *models.PatientRecord) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Patient{}).
		Where("id = ? AND therapist_id = ?", r.PatientID, r.TherapistID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if count == 0 {
		return apperr.ErrPatientNotFound
	}

	if err := s.DB.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *RecordService) Get(ctx context.Context, id, therapistID uuid.UUID) (*models.PatientRecord, error) {
	var r models.PatientRecord
	if err := s.DB.WithContext(ctx).
		Where("id = ? AND therapist_id = ?", id, therapistID).
		First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrRecordNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &r, nil
}

func (s *RecordService) ListByPatient(ctx context.Context, patientID, therapistID uuid.UUID, offset, limit int) ([]models.PatientRecord, error) {
	offset, limit = util.Calculate(offset, limit)

	var records []models.PatientRecord
	if err := s.DB.WithContext(ctx).
		Where("patient_id = ? AND therapist_id = ?", patientID, therapistID).
		Offset(offset).Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return records, nil
}

type RecordUpdate struct {
	Diagnosis *string `json:"diagnosis"`
	Visit     *string `json:"visit"`
	Treatment *string `json:"treatment"`
}

func (s *RecordService) Update(ctx context.Context, id, therapistID uuid.UUID, in RecordUpdate) (*models.PatientRecord, error) {
	patch := map[string]any{}
	if in.Diagnosis != nil {
		patch["diagnosis"] = *in.Diagnosis
	}
	if in.Visit != nil {
		patch["visit"] = *in.Visit
	}
	if in.Treatment != nil {
		patch["treatment"] = *in.Treatment
	}

	if len(patch) > 0 {
		res := s.DB.WithContext(ctx).Model(&models.PatientRecord{}).
			Where("id = ? AND therapist_id = ?", id, therapistID).
			Updates(patch)
		if res.Error != nil {
			return nil, fmt.Errorf("db error: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.ErrRecordNotFound
		}
	}
	return s.Get(ctx, id, therapistID)
}

func (s *RecordService) Delete(ctx context.Context, id, therapistID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND therapist_id = ?", id, therapistID).
		Delete(&models.PatientRecord{})
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrRecordNotFound
	}
	return nil
}
