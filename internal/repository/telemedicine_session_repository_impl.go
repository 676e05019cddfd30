package repository

import (
	"context"
	"errors"

	"clinic-scheduler/internal/domain/entity"
	domainRepo "clinic-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type telemedicineSessionRepository struct{}

func NewTelemedicineSessionRepository() domainRepo.TelemedicineSessionRepository {
	return &telemedicineSessionRepository{}
}

func (r *telemedicineSessionRepository) Create(ctx context.Context, db *gorm.DB, session *entity.TelemedicineSession) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(session).Error
}

func (r *telemedicineSessionRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.TelemedicineSession, error) {
	return r.findOne(db.WithContext(ctx).
		Preload("Appointment.Patient").
		Preload("Appointment.Doctor").
		Where("id = ?", id))
}

func (r *telemedicineSessionRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.TelemedicineSession, error) {
	return r.findOne(db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Appointment.Patient").
		Preload("Appointment.Doctor").
		Where("id = ?", id))
}

func (r *telemedicineSessionRepository) FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (*entity.TelemedicineSession, error) {
	return r.findOne(db.WithContext(ctx).Where("appointment_id = ?", appointmentID))
}

func (r *telemedicineSessionRepository) findOne(query *gorm.DB) (*entity.TelemedicineSession, error) {
	var session entity.TelemedicineSession
	err := query.First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Update writes the mutable session fields only while the stored status is still `from`.
func (r *telemedicineSessionRepository) Update(ctx context.Context, db *gorm.DB, session *entity.TelemedicineSession, from entity.SessionStatus) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.TelemedicineSession{}).
		Where("id = ? AND status = ?", session.ID, from).
		Updates(map[string]interface{}{
			"status":     session.Status,
			"start_time": session.StartTime,
			"end_time":   session.EndTime,
			"notes":      session.Notes,
		})
	return result.RowsAffected, result.Error
}

// CancelByAppointmentID cancels the session unless it already reached a terminal status.
func (r *telemedicineSessionRepository) CancelByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.TelemedicineSession{}).
		Where("appointment_id = ? AND status IN ?", appointmentID,
			[]entity.SessionStatus{entity.SessionStatusScheduled, entity.SessionStatusActive}).
		Update("status", entity.SessionStatusCancelled)
	return result.RowsAffected, result.Error
}

func (r *telemedicineSessionRepository) DeleteByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("appointment_id = ?", appointmentID).Delete(&entity.TelemedicineSession{})
	return result.RowsAffected, result.Error
}
