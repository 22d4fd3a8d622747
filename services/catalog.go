package services

import (
	"context"

	"github.com/meinhoongagan/clinic-app/models"
)

type CatalogService struct {
	service
}

type SpecialtyInput struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SpecialtyPatch struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type FeeInput struct {
	ExaminationType string  `json:"examination_type"`
	Fee             float64 `json:"fee"`
	Description     string  `json:"description"`
	SpecialtyID     *uint   `json:"specialty_id"`
}

type FeePatch struct {
	ExaminationType *string  `json:"examination_type"`
	Fee             *float64 `json:"fee"`
	Description     *string  `json:"description"`
	SpecialtyID     *uint    `json:"specialty_id"`
	IsActive        *bool    `json:"is_active"`
}

func (s *CatalogService) ListSpecialties(ctx context.Context, activeOnly bool) ([]models.Specialty, error) {
	return s.repos().Specialties.List(ctx, activeOnly)
}

func (s *CatalogService) CreateSpecialty(ctx context.Context, in SpecialtyInput) (*models.Specialty, error) {
	sp := &models.Specialty{Code: in.Code, Name: in.Name, Description: in.Description, IsActive: true}
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos().Specialties.Create(ctx, sp); err != nil {
		return nil, duplicateName(err, "Mã chuyên khoa đã tồn tại")
	}
	return sp, nil
}

func (s *CatalogService) UpdateSpecialty(ctx context.Context, id uint, in SpecialtyPatch) (*models.Specialty, error) {
	repos := s.repos()
	sp, err := repos.Specialties.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy chuyên khoa")
	}
	if in.Code != nil {
		sp.Code = *in.Code
	}
	if in.Name != nil {
		sp.Name = *in.Name
	}
	if in.Description != nil {
		sp.Description = *in.Description
	}
	if in.IsActive != nil {
		sp.IsActive = *in.IsActive
	}
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	if err := repos.Specialties.Save(ctx, sp); err != nil {
		return nil, duplicateName(err, "Mã chuyên khoa đã tồn tại")
	}
	return sp, nil
}

func (s *CatalogService) DeactivateSpecialty(ctx context.Context, id uint) (*models.Specialty, error) {
	inactive := false
	return s.UpdateSpecialty(ctx, id, SpecialtyPatch{IsActive: &inactive})
}

func (s *CatalogService) ListFees(ctx context.Context, activeOnly bool) ([]models.ExaminationFee, error) {
	return s.repos().Fees.List(ctx, activeOnly)
}

func (s *CatalogService) checkSpecialty(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.repos().Specialties.GetByID(ctx, *id); err != nil {
		return lookup(err, "Không tìm thấy chuyên khoa %d", *id)
	}
	return nil
}

func (s *CatalogService) CreateFee(ctx context.Context, in FeeInput) (*models.ExaminationFee, error) {
	if err := s.checkSpecialty(ctx, in.SpecialtyID); err != nil {
		return nil, err
	}
	fee := &models.ExaminationFee{
		ExaminationType: in.ExaminationType,
		Fee:             in.Fee,
		Description:     in.Description,
		SpecialtyID:     in.SpecialtyID,
		IsActive:        true,
	}
	if err := fee.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos().Fees.Create(ctx, fee); err != nil {
		return nil, duplicateName(err, "Loại khám đã tồn tại")
	}
	return fee, nil
}

// UpdateFee changes the catalog entry only; appointments keep the amount they snapshotted.
func (s *CatalogService) UpdateFee(ctx context.Context, id uint, in FeePatch) (*models.ExaminationFee, error) {
	repos := s.repos()
	fee, err := repos.Fees.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy loại phí khám")
	}
	if in.ExaminationType != nil {
		fee.ExaminationType = *in.ExaminationType
	}
	if in.Fee != nil {
		fee.Fee = *in.Fee
	}
	if in.Description != nil {
		fee.Description = *in.Description
	}
	if in.SpecialtyID != nil {
		if err := s.checkSpecialty(ctx, in.SpecialtyID); err != nil {
			return nil, err
		}
		fee.SpecialtyID = in.SpecialtyID
		fee.Specialty = nil
	}
	if in.IsActive != nil {
		fee.IsActive = *in.IsActive
	}
	if err := fee.Validate(); err != nil {
		return nil, err
	}
	if err := repos.Fees.Save(ctx, fee); err != nil {
		return nil, duplicateName(err, "Loại khám đã tồn tại")
	}
	return fee, nil
}

func (s *CatalogService) DeactivateFee(ctx context.Context, id uint) (*models.ExaminationFee, error) {
	inactive := false
	return s.UpdateFee(ctx, id, FeePatch{IsActive: &inactive})
}

