package repository

import (
	"context"
	"errors"
	"time"

	"clinic-scheduler/internal/domain/entity"
	domainRepo "clinic-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return r.findOne(db.WithContext(ctx).
		Preload("Patient.User").
		Preload("Doctor.User").
		Where("id = ?", id))
}

func (r *appointmentRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return r.findOne(db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Patient").
		Preload("Doctor").
		Where("id = ?", id))
}

func (r *appointmentRepository) findOne(query *gorm.DB) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := query.First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter, limit, offset int) ([]entity.Appointment, int64, error) {
	var appointments []entity.Appointment
	var total int64

	query := db.WithContext(ctx).Model(&entity.Appointment{})
	if filter != nil {
		if filter.PatientID != nil {
			query = query.Where("patient_id = ?", *filter.PatientID)
		}
		if filter.DoctorID != nil {
			query = query.Where("doctor_id = ?", *filter.DoctorID)
		}
		if filter.StartAt != "" {
			if start, err := time.Parse("2006-01-02", filter.StartAt); err == nil {
				query = query.Where("appointment_date >= ?", start)
			}
		}
		if filter.EndAt != "" {
			if end, err := time.Parse("2006-01-02", filter.EndAt); err == nil {
				query = query.Where("appointment_date <= ?", end)
			}
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Patient.User").
		Preload("Doctor.User").
		Order("appointment_date ASC, appointment_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

// ExistsActiveInSlot reports whether a non-cancelled appointment holds the exact slot.
func (r *appointmentRepository) ExistsActiveInSlot(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time, clock string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status <> ?",
			doctorID, date, clock, entity.AppointmentStatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateStatus moves an appointment from one status to another.
// Returns affected rows: 1 = success, 0 = status was no longer `from`.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus, reason string, changedAt time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":            to,
		"status_changed_at": changedAt,
	}
	if to == entity.AppointmentStatusCancelled {
		updates["cancellation_reason"] = reason
	}

	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}
