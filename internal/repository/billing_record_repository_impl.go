package repository

import (
	"context"

	"clinic-scheduler/internal/domain/entity"
	domainRepo "clinic-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type billingRecordRepository struct{}

func NewBillingRecordRepository() domainRepo.BillingRecordRepository {
	return &billingRecordRepository{}
}

func (r *billingRecordRepository) Create(ctx context.Context, db *gorm.DB, record *entity.BillingRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *billingRecordRepository) FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) ([]entity.BillingRecord, error) {
	var records []entity.BillingRecord
	err := db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CancelPendingByAppointmentID only touches pending records; settled ones need an explicit refund.
func (r *billingRecordRepository) CancelPendingByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.BillingRecord{}).
		Where("appointment_id = ? AND status = ?", appointmentID, entity.BillingStatusPending).
		Update("status", entity.BillingStatusCancelled)
	return result.RowsAffected, result.Error
}

func (r *billingRecordRepository) DetachAppointment(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.BillingRecord{}).
		Where("appointment_id = ?", appointmentID).
		Update("appointment_id", nil)
	return result.RowsAffected, result.Error
}
