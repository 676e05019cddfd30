package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Cascade step names reported in CascadeFailure.Step.
const (
	StepCreateSession  = "telemedicine.create_session"
	StepCancelSession  = "telemedicine.cancel_session"
	StepCancelBilling  = "billing.cancel_pending"
	StepCompleteNotice = "appointment.complete"
)

// CascadeCoordinator keeps telemedicine sessions and billing records in step
// with appointment status. Every handler is idempotent so a cascade can be
// replayed after a partial failure.
type CascadeCoordinator struct {
	db          *gorm.DB
	log         *logrus.Logger
	sessionRepo repository.TelemedicineSessionRepository
	billingRepo repository.BillingRecordRepository
}

func NewCascadeCoordinator(
	db *gorm.DB,
	log *logrus.Logger,
	sessionRepo repository.TelemedicineSessionRepository,
	billingRepo repository.BillingRecordRepository,
) *CascadeCoordinator {
	return &CascadeCoordinator{
		db:          db,
		log:         log,
		sessionRepo: sessionRepo,
		billingRepo: billingRepo,
	}
}

// Register subscribes the coordinator's handlers on the bus.
func (c *CascadeCoordinator) Register(bus *EventBus) {
	bus.Subscribe(entity.EventAppointmentCreated, StepCreateSession, c.OnCreate)
	bus.Subscribe(entity.EventAppointmentCancelled, StepCancelSession, c.OnCancelSession)
	bus.Subscribe(entity.EventAppointmentCancelled, StepCancelBilling, c.OnCancelBilling)
	bus.Subscribe(entity.EventAppointmentCompleted, StepCompleteNotice, c.OnComplete)
}

// OnCreate opens the session shell of a telemedicine appointment. An existing
// session satisfies the step.
func (c *CascadeCoordinator) OnCreate(ctx context.Context, event entity.AppointmentEvent) error {
	if event.AppointmentType != entity.AppointmentTypeTelemedicine {
		return nil
	}

	existing, err := c.sessionRepo.FindByAppointmentID(ctx, c.db, event.AppointmentID)
	if err != nil {
		return fmt.Errorf("find session for appointment %s: %w", event.AppointmentID, err)
	}
	if existing != nil {
		return nil
	}

	date, err := time.Parse("2006-01-02", event.AppointmentDate)
	if err != nil {
		return fmt.Errorf("parse appointment date %q: %w", event.AppointmentDate, err)
	}

	session := entity.NewTelemedicineSession(event.AppointmentID, date)
	if err := c.sessionRepo.Create(ctx, c.db, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("create session for appointment %s: %w", event.AppointmentID, err)
	}

	c.log.WithFields(logrus.Fields{
		"appointment_id": event.AppointmentID,
		"session_id":     session.ID,
	}).Info("Telemedicine session created")
	return nil
}

// OnCancelSession cancels a scheduled or active session.
func (c *CascadeCoordinator) OnCancelSession(ctx context.Context, event entity.AppointmentEvent) error {
	affected, err := c.sessionRepo.CancelByAppointmentID(ctx, c.db, event.AppointmentID)
	if err != nil {
		return fmt.Errorf("cancel session for appointment %s: %w", event.AppointmentID, err)
	}
	if affected > 0 {
		c.log.WithField("appointment_id", event.AppointmentID).Info("Telemedicine session cancelled")
	}
	return nil
}

// OnCancelBilling cancels pending billing records. Completed records stay as they are.
func (c *CascadeCoordinator) OnCancelBilling(ctx context.Context, event entity.AppointmentEvent) error {
	affected, err := c.billingRepo.CancelPendingByAppointmentID(ctx, c.db, event.AppointmentID)
	if err != nil {
		return fmt.Errorf("cancel pending billing for appointment %s: %w", event.AppointmentID, err)
	}
	if affected > 0 {
		c.log.WithFields(logrus.Fields{
			"appointment_id": event.AppointmentID,
			"records":        affected,
		}).Info("Pending billing records cancelled")
	}
	return nil
}

// OnComplete changes no dependent record; billing is created explicitly afterwards.
func (c *CascadeCoordinator) OnComplete(ctx context.Context, event entity.AppointmentEvent) error {
	c.log.WithField("appointment_id", event.AppointmentID).Debug("Appointment completed")
	return nil
}
