package repository

import (
	"context"

	"clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.DoctorProfile, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	// FindByIDForUpdate locks the doctor row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.DoctorProfile, error)
	UpdateAvailability(ctx context.Context, db *gorm.DB, id uuid.UUID, available bool) (int64, error)
}

type PatientProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.PatientProfile, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error)
}
