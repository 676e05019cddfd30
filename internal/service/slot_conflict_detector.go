package service

import (
	"context"
	"time"

	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SlotConflictDetector guards the (doctor, date, time) slot. Both methods
// must run on the booking transaction.
type SlotConflictDetector interface {
	// HasConflict reports whether a non-cancelled appointment holds the exact slot.
	// Duration is not considered.
	HasConflict(ctx context.Context, tx *gorm.DB, doctorID uuid.UUID, date time.Time, clock string) (bool, error)
	// ReserveSlot locks the doctor row, rejects unknown or unavailable doctors,
	// then fails with ErrSlotAlreadyBooked when the slot is taken.
	ReserveSlot(ctx context.Context, tx *gorm.DB, doctorID uuid.UUID, date time.Time, clock string) (*entity.DoctorProfile, error)
}

type slotConflictDetector struct {
	log             *logrus.Logger
	doctorRepo      repository.DoctorProfileRepository
	appointmentRepo repository.AppointmentRepository
}

func NewSlotConflictDetector(
	log *logrus.Logger,
	doctorRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
) SlotConflictDetector {
	return &slotConflictDetector{
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
	}
}

func (d *slotConflictDetector) HasConflict(ctx context.Context, tx *gorm.DB, doctorID uuid.UUID, date time.Time, clock string) (bool, error) {
	taken, err := d.appointmentRepo.ExistsActiveInSlot(ctx, tx, doctorID, date, clock)
	if err != nil {
		d.log.Warnf("Failed to scan slot %s %s %s: %+v", doctorID, date.Format("2006-01-02"), clock, err)
		return false, err
	}
	return taken, nil
}

func (d *slotConflictDetector) ReserveSlot(ctx context.Context, tx *gorm.DB, doctorID uuid.UUID, date time.Time, clock string) (*entity.DoctorProfile, error) {
	doctor, err := d.doctorRepo.FindByIDForUpdate(ctx, tx, doctorID)
	if err != nil {
		d.log.Warnf("Failed to lock doctor %s: %+v", doctorID, err)
		return nil, apperror.Infra(err)
	}
	if doctor == nil {
		return nil, apperror.ErrDoctorNotFound
	}
	if !doctor.Available() {
		return nil, apperror.ErrDoctorUnavailable
	}

	taken, err := d.HasConflict(ctx, tx, doctorID, date, clock)
	if err != nil {
		return nil, apperror.Infra(err)
	}
	if taken {
		return nil, apperror.ErrSlotAlreadyBooked
	}
	return doctor, nil
}
