package usecase

import (
	"context"

	"clinic-scheduler/internal/converter"
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/pkg/apperror"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, principal entity.Principal, page, limit int) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, principal entity.Principal, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
	gate         service.AccessControl
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
	gate service.AccessControl,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
		gate:         gate,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, principal entity.Principal, page, limit int) (*dto.AuditLogListResponse, error) {
	if err := u.gate.CheckRole(principal, service.Do(service.ActionReadAuditLogs)); err != nil {
		return nil, err
	}

	logs, total, err := u.auditLogRepo.FindAll(ctx, u.db, limit, (page-1)*limit)
	if err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, apperror.Infra(err)
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: total,
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, principal entity.Principal, id int64) (*dto.AuditLogResponse, error) {
	if err := u.gate.CheckRole(principal, service.Do(service.ActionReadAuditLogs)); err != nil {
		return nil, err
	}

	auditLog, err := u.auditLogRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, apperror.Infra(err)
	}
	if auditLog == nil {
		return nil, apperror.ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
