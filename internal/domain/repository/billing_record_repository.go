package repository

import (
	"context"

	"clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BillingRecordRepository interface {
	Create(ctx context.Context, db *gorm.DB, record *entity.BillingRecord) error
	FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) ([]entity.BillingRecord, error)
	CancelPendingByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error)
	DetachAppointment(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error)
}
