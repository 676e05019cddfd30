package repository

import (
	"context"

	"clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TelemedicineSessionRepository interface {
	Create(ctx context.Context, db *gorm.DB, session *entity.TelemedicineSession) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.TelemedicineSession, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.TelemedicineSession, error)
	FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (*entity.TelemedicineSession, error)
	Update(ctx context.Context, db *gorm.DB, session *entity.TelemedicineSession, from entity.SessionStatus) (int64, error)
	CancelByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error)
	DeleteByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error)
}
