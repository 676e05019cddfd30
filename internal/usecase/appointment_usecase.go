package usecase

import (
	"context"
	"strings"
	"time"

	"clinic-scheduler/internal/converter"
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/pkg/apperror"
	"clinic-scheduler/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const activeSlotIndex = "idx_appointments_active_slot"

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, principal entity.Principal, req *dto.CreateAppointmentRequest) (*dto.AppointmentResult, error)
	GetAppointment(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.AppointmentResponse, error)
	ListAppointments(ctx context.Context, principal entity.Principal, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error)
	UpdateStatus(ctx context.Context, principal entity.Principal, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResult, error)
	DeleteAppointment(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.AppointmentResult, error)
	RetryCascade(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.AppointmentResult, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientProfileRepository
	doctorRepo      repository.DoctorProfileRepository
	sessionRepo     repository.TelemedicineSessionRepository
	billingRepo     repository.BillingRecordRepository
	gate            service.AccessControl
	slots           service.SlotConflictDetector
	auditService    service.AuditService
	events          service.EventPublisher
	now             func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientProfileRepository,
	doctorRepo repository.DoctorProfileRepository,
	sessionRepo repository.TelemedicineSessionRepository,
	billingRepo repository.BillingRecordRepository,
	gate service.AccessControl,
	slots service.SlotConflictDetector,
	auditService service.AuditService,
	events service.EventPublisher,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		doctorRepo:      doctorRepo,
		sessionRepo:     sessionRepo,
		billingRepo:     billingRepo,
		gate:            gate,
		slots:           slots,
		auditService:    auditService,
		events:          events,
		now:             time.Now,
	}
}

// CreateAppointment books a slot for a patient.
//
// Flow:
// 1. Role check, input parsing, resolve the booking patient
// 2. Ownership check against the patient
// 3. In one transaction: lock doctor row, doctor checks, slot scan, insert, audit
// 4. After commit: emit appointment.created and run the cascade
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, principal entity.Principal, req *dto.CreateAppointmentRequest) (*dto.AppointmentResult, error) {
	if err := u.gate.CheckRole(principal, service.Do(service.ActionCreateAppointment)); err != nil {
		return nil, err
	}

	appointmentType, ok := entity.ParseAppointmentType(req.Type)
	if !ok {
		return nil, apperror.ErrInvalidField.WithMessage("type must be one of in-person, telemedicine, follow-up")
	}
	date, err := time.Parse(validator.DateLayout, req.Date)
	if err != nil {
		return nil, apperror.ErrInvalidField.WithMessage("date must use the YYYY-MM-DD format")
	}
	clock, err := time.Parse(validator.ClockLayout, req.Time)
	if err != nil {
		return nil, apperror.ErrInvalidField.WithMessage("time must use the HH:MM format")
	}
	slotAt := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	if slotAt.Before(u.now().UTC()) {
		return nil, apperror.ErrAppointmentInPast
	}
	if req.DoctorID == uuid.Nil {
		return nil, apperror.ErrMissingField.WithMessage("doctor_id is required")
	}

	patient, err := u.bookingPatient(ctx, principal, req.PatientID)
	if err != nil {
		return nil, err
	}
	if err := u.gate.Authorize(principal, service.Do(service.ActionCreateAppointment), entity.ResourceOwners{
		PatientOwnerUserID: patient.UserID,
	}); err != nil {
		return nil, err
	}

	appointment := &entity.Appointment{
		PatientID:       patient.ID,
		DoctorID:        req.DoctorID,
		AppointmentDate: date,
		AppointmentTime: clock.Format(validator.ClockLayout),
		DurationMinutes: req.DurationMinutes,
		Status:          entity.AppointmentStatusScheduled,
		Type:            appointmentType,
		Reason:          strings.TrimSpace(req.Reason),
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.slots.ReserveSlot(ctx, tx, req.DoctorID, date, appointment.AppointmentTime)
	if err != nil {
		return nil, err
	}

	if err := u.appointmentRepo.Create(ctx, tx, appointment); err != nil {
		if isDuplicateKeyError(err, activeSlotIndex) {
			return nil, apperror.ErrSlotAlreadyBooked
		}
		u.log.Warnf("Failed to create appointment for doctor %s: %+v", req.DoctorID, err)
		return nil, apperror.Infra(err)
	}

	if err := u.auditService.LogCreate(ctx, tx, principal.SubjectID, entity.AuditActionAppointmentCreate,
		"appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment)); err != nil {
		return nil, apperror.Infra(err)
	}

	if err := tx.Commit().Error; err != nil {
		if isDuplicateKeyError(err, activeSlotIndex) {
			return nil, apperror.ErrSlotAlreadyBooked
		}
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Infra(err)
	}

	appointment.Patient = *patient
	appointment.Doctor = *doctor

	u.log.Infof("Appointment created: id=%s, doctor=%s, slot=%s %s, type=%s",
		appointment.ID, appointment.DoctorID, req.Date, appointment.AppointmentTime, appointment.Type)

	failures := u.events.Publish(ctx, entity.NewAppointmentEvent(entity.EventAppointmentCreated, appointment, principal.SubjectID))
	return u.result(ctx, appointment, failures), nil
}

// bookingPatient resolves who the appointment is for. Patients book for
// themselves; admins must name the patient.
func (u *appointmentUsecase) bookingPatient(ctx context.Context, principal entity.Principal, patientID *uuid.UUID) (*entity.PatientProfile, error) {
	var (
		patient *entity.PatientProfile
		err     error
	)

	switch principal.Role {
	case entity.RoleTypePatient:
		patient, err = u.patientRepo.FindByUserID(ctx, u.db, principal.SubjectID)
	default:
		if patientID == nil || *patientID == uuid.Nil {
			return nil, apperror.ErrMissingField.WithMessage("patient_id is required")
		}
		patient, err = u.patientRepo.FindByID(ctx, u.db, *patientID)
	}
	if err != nil {
		u.log.Warnf("Failed to find booking patient: %+v", err)
		return nil, apperror.Infra(err)
	}
	if patient == nil {
		return nil, apperror.ErrPatientNotFound
	}
	return patient, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.AppointmentResponse, error) {
	if err := u.gate.CheckRole(principal, service.Do(service.ActionReadAppointment)); err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, apperror.Infra(err)
	}
	if appointment == nil {
		return nil, missingResource(principal, apperror.ErrAppointmentNotFound)
	}
	if err := u.gate.Authorize(principal, service.Do(service.ActionReadAppointment), appointment.Owners()); err != nil {
		return nil, err
	}

	return u.result(ctx, appointment, nil).Appointment, nil
}

// ListAppointments scopes the listing to the principal: patients and doctors
// see their own appointments, admins see all.
func (u *appointmentUsecase) ListAppointments(ctx context.Context, principal entity.Principal, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error) {
	if err := u.gate.CheckRole(principal, service.Do(service.ActionReadAppointment)); err != nil {
		return nil, err
	}

	filter := &entity.AppointmentFilter{
		StartAt: req.StartDate,
		EndAt:   req.EndDate,
	}
	if req.Status != "" {
		status, ok := entity.ParseAppointmentStatus(req.Status)
		if !ok {
			return nil, apperror.ErrInvalidStatusValue
		}
		filter.Status = status
	}

	empty := &dto.AppointmentListResponse{Appointments: []dto.AppointmentResponse{}}
	switch principal.Role {
	case entity.RoleTypePatient:
		patient, err := u.patientRepo.FindByUserID(ctx, u.db, principal.SubjectID)
		if err != nil {
			u.log.Warnf("Failed to find patient profile for %s: %+v", principal.SubjectID, err)
			return nil, apperror.Infra(err)
		}
		if patient == nil {
			return empty, nil
		}
		filter.PatientID = &patient.ID
	case entity.RoleTypeDoctor:
		doctor, err := u.doctorRepo.FindByUserID(ctx, u.db, principal.SubjectID)
		if err != nil {
			u.log.Warnf("Failed to find doctor profile for %s: %+v", principal.SubjectID, err)
			return nil, apperror.Infra(err)
		}
		if doctor == nil {
			return empty, nil
		}
		filter.DoctorID = &doctor.ID
	}

	offset := (req.Page - 1) * req.Limit
	appointments, total, err := u.appointmentRepo.FindAll(ctx, u.db, filter, req.Limit, offset)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, apperror.Infra(err)
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        total,
	}, nil
}

// UpdateStatus drives one transition of the appointment state machine.
//
// Flow:
// 1. Parse the target status and apply the role half of the policy
// 2. In one transaction: lock the row, ownership check, no-op on same status,
//    legal-edge check, cancellation reason check, conditional write, audit
// 3. After commit: emit the status event and run the cascade
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, principal entity.Principal, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResult, error) {
	target, ok := entity.ParseAppointmentStatus(req.Status)
	if !ok {
		return nil, apperror.ErrInvalidStatusValue
	}
	action := service.UpdateStatus(target)
	if err := u.gate.CheckRole(principal, action); err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to lock appointment %s: %+v", id, err)
		return nil, apperror.Infra(err)
	}
	if appointment == nil {
		return nil, missingResource(principal, apperror.ErrAppointmentNotFound)
	}
	if err := u.gate.Authorize(principal, action, appointment.Owners()); err != nil {
		return nil, err
	}

	from := appointment.Status
	if from == target {
		tx.Rollback()
		return u.result(ctx, appointment, nil), nil
	}
	if !from.CanTransitionTo(target) {
		return nil, apperror.ErrIllegalTransition.WithMessage(
			"cannot move appointment from " + string(from) + " to " + string(target))
	}

	reason := strings.TrimSpace(req.CancellationReason)
	if target == entity.AppointmentStatusCancelled && reason == "" && !principal.IsAdmin() {
		return nil, apperror.ErrReasonRequired
	}

	changedAt := u.now().UTC()
	affected, err := u.appointmentRepo.UpdateStatus(ctx, tx, id, from, target, reason, changedAt)
	if err != nil {
		u.log.Warnf("Failed to update appointment %s status: %+v", id, err)
		return nil, apperror.Infra(err)
	}
	if affected == 0 {
		return nil, apperror.ErrIllegalTransition
	}

	if err := u.auditService.LogUpdate(ctx, tx, principal.SubjectID, entity.AuditActionAppointmentTransition,
		"appointment", id.String(),
		map[string]interface{}{"status": from},
		map[string]interface{}{"status": target, "cancellation_reason": reason},
	); err != nil {
		return nil, apperror.Infra(err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Infra(err)
	}

	appointment.Status = target
	appointment.StatusChangedAt = &changedAt
	if target == entity.AppointmentStatusCancelled {
		appointment.CancellationReason = reason
	}

	u.log.Infof("Appointment %s moved %s -> %s by %s", id, from, target, principal.Role)

	eventType, _ := entity.EventTypeForStatus(target)
	failures := u.events.Publish(ctx, entity.NewAppointmentEvent(eventType, appointment, principal.SubjectID))
	return u.result(ctx, appointment, failures), nil
}

// DeleteAppointment removes the appointment, its telemedicine session, and
// the billing link in one transaction. Billing records survive unlinked.
func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.AppointmentResult, error) {
	action := service.Do(service.ActionDeleteAppointment)
	if err := u.gate.CheckRole(principal, action); err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to lock appointment %s: %+v", id, err)
		return nil, apperror.Infra(err)
	}
	if appointment == nil {
		return nil, missingResource(principal, apperror.ErrAppointmentNotFound)
	}
	if err := u.gate.Authorize(principal, action, appointment.Owners()); err != nil {
		return nil, err
	}

	if _, err := u.sessionRepo.DeleteByAppointmentID(ctx, tx, id); err != nil {
		u.log.Warnf("Failed to delete session of appointment %s: %+v", id, err)
		return nil, apperror.Infra(err)
	}
	if _, err := u.billingRepo.DetachAppointment(ctx, tx, id); err != nil {
		u.log.Warnf("Failed to detach billing of appointment %s: %+v", id, err)
		return nil, apperror.Infra(err)
	}
	affected, err := u.appointmentRepo.Delete(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", id, err)
		return nil, apperror.Infra(err)
	}
	if affected == 0 {
		return nil, missingResource(principal, apperror.ErrAppointmentNotFound)
	}

	snapshot := converter.AppointmentToResponse(appointment)
	if err := u.auditService.LogDelete(ctx, tx, principal.SubjectID, entity.AuditActionAppointmentDelete,
		"appointment", id.String(), snapshot); err != nil {
		return nil, apperror.Infra(err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Infra(err)
	}

	u.log.Infof("Appointment deleted: id=%s, by=%s", id, principal.SubjectID)

	failures := u.events.Publish(ctx, entity.NewAppointmentEvent(entity.EventAppointmentDeleted, appointment, principal.SubjectID))
	return &dto.AppointmentResult{Appointment: snapshot, Warnings: toWarnings(failures)}, nil
}

// RetryCascade replays the event of the appointment's current status. The
// caller needs the same permission as for moving the appointment into it.
func (u *appointmentUsecase) RetryCascade(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.AppointmentResult, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, apperror.Infra(err)
	}
	if appointment == nil {
		return nil, missingResource(principal, apperror.ErrAppointmentNotFound)
	}
	if err := u.gate.Authorize(principal, service.UpdateStatus(appointment.Status), appointment.Owners()); err != nil {
		return nil, err
	}

	eventType, ok := entity.EventTypeForStatus(appointment.Status)
	if !ok {
		return nil, apperror.ErrInvalidStatusValue
	}

	u.log.Infof("Retrying cascade %s for appointment %s", eventType, id)
	failures := u.events.Publish(ctx, entity.NewAppointmentEvent(eventType, appointment, principal.SubjectID))
	return u.result(ctx, appointment, failures), nil
}

// result builds the response after a write, attaching the telemedicine
// session as it stands once the cascade has run.
func (u *appointmentUsecase) result(ctx context.Context, appointment *entity.Appointment, failures []service.CascadeFailure) *dto.AppointmentResult {
	response := converter.AppointmentToResponse(appointment)
	if appointment.IsTelemedicine() {
		session, err := u.sessionRepo.FindByAppointmentID(ctx, u.db, appointment.ID)
		if err != nil {
			u.log.Warnf("Failed to load session of appointment %s: %+v", appointment.ID, err)
		}
		response.Session = converter.TelemedicineSessionToResponse(session)
	}
	return &dto.AppointmentResult{Appointment: response, Warnings: toWarnings(failures)}
}
