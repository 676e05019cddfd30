package usecase

import (
	"context"
	"strings"

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

type BillingUsecase interface {
	CreateBillingRecord(ctx context.Context, principal entity.Principal, appointmentID uuid.UUID, req *dto.CreateBillingRecordRequest) (*dto.BillingRecordResponse, error)
}

type billingUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	billingRepo     repository.BillingRecordRepository
	gate            service.AccessControl
	auditService    service.AuditService
}

func NewBillingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	billingRepo repository.BillingRecordRepository,
	gate service.AccessControl,
	auditService service.AuditService,
) BillingUsecase {
	return &billingUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		billingRepo:     billingRepo,
		gate:            gate,
		auditService:    auditService,
	}
}

// CreateBillingRecord opens a pending charge against an appointment.
func (u *billingUsecase) CreateBillingRecord(ctx context.Context, principal entity.Principal, appointmentID uuid.UUID, req *dto.CreateBillingRecordRequest) (*dto.BillingRecordResponse, error) {
	action := service.Do(service.ActionCreateBillingRecord)
	if err := u.gate.CheckRole(principal, action); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidField.WithMessage("amount must be greater than zero")
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
	if appointment.Status == entity.AppointmentStatusCancelled {
		return nil, apperror.ErrIllegalTransition.WithMessage("cannot bill a cancelled appointment")
	}

	record := &entity.BillingRecord{
		AppointmentID: &appointment.ID,
		PatientID:     appointment.PatientID,
		DoctorID:      appointment.DoctorID,
		Amount:        req.Amount.Round(2),
		Status:        entity.BillingStatusPending,
		Description:   strings.TrimSpace(req.Description),
	}
	if err := u.billingRepo.Create(ctx, tx, record); err != nil {
		u.log.Warnf("Failed to create billing record: %+v", err)
		return nil, apperror.Infra(err)
	}

	response := converter.BillingRecordToResponse(record)
	if err := u.auditService.LogCreate(ctx, tx, principal.SubjectID, entity.AuditActionBillingCreate,
		"billing_record", record.ID.String(), response); err != nil {
		return nil, apperror.Infra(err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Infra(err)
	}

	u.log.Infof("Billing record created: id=%s, appointment=%s, amount=%s", record.ID, appointmentID, record.Amount.StringFixed(2))
	return response, nil
}
