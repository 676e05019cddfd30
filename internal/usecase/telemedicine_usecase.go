package usecase

import (
	"context"
	"time"

	"clinic-scheduler/internal/converter"
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TelemedicineUsecase interface {
	CreateSession(ctx context.Context, principal entity.Principal, appointmentID uuid.UUID) (*dto.TelemedicineSessionResponse, error)
	UpdateSession(ctx context.Context, principal entity.Principal, sessionID uuid.UUID, req *dto.UpdateTelemedicineSessionRequest) (*dto.TelemedicineSessionResponse, error)
}

type telemedicineUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	sessionRepo     repository.TelemedicineSessionRepository
	gate            service.AccessControl
	auditService    service.AuditService
	now             func() time.Time
}

func NewTelemedicineUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	sessionRepo repository.TelemedicineSessionRepository,
	gate service.AccessControl,
	auditService service.AuditService,
) TelemedicineUsecase {
	return &telemedicineUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		sessionRepo:     sessionRepo,
		gate:            gate,
		auditService:    auditService,
		now:             time.Now,
	}
}

// CreateSession opens a session by hand, for when the creation cascade did
// not run or failed.
func (u *telemedicineUsecase) CreateSession(ctx context.Context, principal entity.Principal, appointmentID uuid.UUID) (*dto.TelemedicineSessionResponse, error) {
	action := service.Do(service.ActionCreateTelemedicineSession)
	if err := u.gate.CheckRole(principal, action); err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to lock appointment %s: %+v", appointmentID, err)
		return nil, apperror.Infra(err)
	}
	if appointment == nil {
		return nil, missingResource(principal, apperror.ErrAppointmentNotFound)
	}
	if err := u.gate.Authorize(principal, action, appointment.Owners()); err != nil {
		return nil, err
	}

	if !appointment.IsTelemedicine() {
		return nil, apperror.ErrNotTelemedicine
	}
	if appointment.Status.IsTerminal() {
		return nil, apperror.ErrIllegalTransition.WithMessage("appointment is " + string(appointment.Status))
	}

	existing, err := u.sessionRepo.FindByAppointmentID(ctx, tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find session of appointment %s: %+v", appointmentID, err)
		return nil, apperror.Infra(err)
	}
	if existing != nil {
		return nil, apperror.ErrSessionAlreadyExists
	}

	session := entity.NewTelemedicineSession(appointment.ID, appointment.AppointmentDate)
	if err := u.sessionRepo.Create(ctx, tx, session); err != nil {
		if isDuplicateKeyError(err, "") {
			return nil, apperror.ErrSessionAlreadyExists
		}
		u.log.Warnf("Failed to create session: %+v", err)
		return nil, apperror.Infra(err)
	}

	response := converter.TelemedicineSessionToResponse(session)
	if err := u.auditService.LogCreate(ctx, tx, principal.SubjectID, entity.AuditActionSessionCreate,
		"telemedicine_session", session.ID.String(), response); err != nil {
		return nil, apperror.Infra(err)
	}

	if err := tx.Commit().Error; err != nil {
		if isDuplicateKeyError(err, "") {
			return nil, apperror.ErrSessionAlreadyExists
		}
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Infra(err)
	}

	u.log.Infof("Telemedicine session created: id=%s, appointment=%s, room=%s", session.ID, appointmentID, session.RoomCode)
	return response, nil
}

func (u *telemedicineUsecase) UpdateSession(ctx context.Context, principal entity.Principal, sessionID uuid.UUID, req *dto.UpdateTelemedicineSessionRequest) (*dto.TelemedicineSessionResponse, error) {
	target, ok := entity.ParseSessionStatus(req.Status)
	if !ok {
		return nil, apperror.ErrInvalidStatusValue
	}
	action := service.Do(service.ActionUpdateTelemedicineSession)
	if err := u.gate.CheckRole(principal, action); err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	session, err := u.sessionRepo.FindByIDForUpdate(ctx, tx, sessionID)
	if err != nil {
		u.log.Warnf("Failed to lock session %s: %+v", sessionID, err)
		return nil, apperror.Infra(err)
	}
	if session == nil {
		return nil, missingResource(principal, apperror.ErrSessionNotFound)
	}
	if err := u.gate.Authorize(principal, action, session.Appointment.Owners()); err != nil {
		return nil, err
	}

	before := converter.TelemedicineSessionToResponse(session)
	from := session.Status

	notesChanged := req.Notes != nil && *req.Notes != session.Notes
	if from == target && !notesChanged {
		return before, nil
	}
	if from != target && !from.CanTransitionTo(target) {
		return nil, apperror.ErrIllegalTransition.WithMessage(
			"cannot move session from " + string(from) + " to " + string(target))
	}

	now := u.now().UTC()
	if req.Notes != nil {
		session.Notes = *req.Notes
	}
	if from != target {
		session.Status = target
		switch target {
		case entity.SessionStatusActive:
			session.StartTime = &now
		case entity.SessionStatusCompleted:
			end := now
			if req.EndTime != nil {
				end = req.EndTime.UTC()
			}
			if session.StartTime != nil && end.Before(*session.StartTime) {
				return nil, apperror.ErrInvalidField.WithMessage("end_time is before the session start")
			}
			session.EndTime = &end
		}
	}

	affected, err := u.sessionRepo.Update(ctx, tx, session, from)
	if err != nil {
		u.log.Warnf("Failed to update session %s: %+v", sessionID, err)
		return nil, apperror.Infra(err)
	}
	if affected == 0 {
		return nil, apperror.ErrIllegalTransition
	}

	after := converter.TelemedicineSessionToResponse(session)
	if err := u.auditService.LogUpdate(ctx, tx, principal.SubjectID, entity.AuditActionSessionUpdate,
		"telemedicine_session", sessionID.String(), before, after); err != nil {
		return nil, apperror.Infra(err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Infra(err)
	}

	u.log.Infof("Telemedicine session %s moved %s -> %s", sessionID, from, target)
	return after, nil
}
