package usecase

import (
	"context"

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

type DoctorProfileUsecase interface {
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorProfileResponse, error)
	SetAvailability(ctx context.Context, principal entity.Principal, doctorID uuid.UUID, req *dto.SetDoctorAvailabilityRequest) (*dto.DoctorProfileResponse, error)
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	gate              service.AccessControl
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	gate service.AccessControl,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		gate:              gate,
		auditService:      auditService,
	}
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorProfileResponse, error) {
	profile, err := u.doctorProfileRepo.FindByID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, apperror.Infra(err)
	}
	if profile == nil {
		return nil, apperror.ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(profile), nil
}

// SetAvailability opens or closes the doctor's calendar for new bookings.
// Existing appointments are left as they are.
func (u *doctorProfileUsecase) SetAvailability(ctx context.Context, principal entity.Principal, doctorID uuid.UUID, req *dto.SetDoctorAvailabilityRequest) (*dto.DoctorProfileResponse, error) {
	action := service.Do(service.ActionSetDoctorAvailability)
	if err := u.gate.CheckRole(principal, action); err != nil {
		return nil, err
	}
	if req.IsAvailable == nil {
		return nil, apperror.ErrMissingField.WithMessage("is_available is required")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByIDForUpdate(ctx, tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to lock doctor profile %s: %+v", doctorID, err)
		return nil, apperror.Infra(err)
	}
	if profile == nil {
		return nil, missingResource(principal, apperror.ErrDoctorNotFound)
	}
	if err := u.gate.Authorize(principal, action, entity.ResourceOwners{DoctorOwnerUserID: profile.UserID}); err != nil {
		return nil, err
	}

	oldValue := map[string]interface{}{"is_available": profile.Available()}
	available := *req.IsAvailable
	if _, err := u.doctorProfileRepo.UpdateAvailability(ctx, tx, doctorID, available); err != nil {
		u.log.Warnf("Failed to update doctor availability: %+v", err)
		return nil, apperror.Infra(err)
	}
	profile.IsAvailable = &available

	if err := u.auditService.LogUpdate(ctx, tx, principal.SubjectID, entity.AuditActionDoctorAvailability,
		"doctor_profile", doctorID.String(), oldValue, map[string]interface{}{"is_available": available}); err != nil {
		return nil, apperror.Infra(err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Infra(err)
	}

	u.log.Infof("Doctor %s availability set to %t", doctorID, available)
	return converter.DoctorProfileToResponse(profile), nil
}
