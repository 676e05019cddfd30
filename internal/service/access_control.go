package service

import (
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/pkg/apperror"

	"github.com/google/uuid"
)

// ActionKind is the closed set of guarded operations.
type ActionKind int

const (
	ActionCreateAppointment ActionKind = iota + 1
	ActionReadAppointment
	ActionUpdateStatus
	ActionDeleteAppointment
	ActionCreateTelemedicineSession
	ActionUpdateTelemedicineSession
	ActionCreateBillingRecord
	ActionSetDoctorAvailability
	ActionReadAuditLogs
)

func (k ActionKind) String() string {
	switch k {
	case ActionCreateAppointment:
		return "CreateAppointment"
	case ActionReadAppointment:
		return "ReadAppointment"
	case ActionUpdateStatus:
		return "UpdateStatus"
	case ActionDeleteAppointment:
		return "DeleteAppointment"
	case ActionCreateTelemedicineSession:
		return "CreateTelemedicineSession"
	case ActionUpdateTelemedicineSession:
		return "UpdateTelemedicineSession"
	case ActionCreateBillingRecord:
		return "CreateBillingRecord"
	case ActionSetDoctorAvailability:
		return "SetDoctorAvailability"
	case ActionReadAuditLogs:
		return "ReadAuditLogs"
	}
	return "Unknown"
}

// Action is a guarded operation. TargetStatus is only set for ActionUpdateStatus.
type Action struct {
	Kind         ActionKind
	TargetStatus entity.AppointmentStatus
}

func Do(kind ActionKind) Action {
	return Action{Kind: kind}
}

func UpdateStatus(target entity.AppointmentStatus) Action {
	return Action{Kind: ActionUpdateStatus, TargetStatus: target}
}

// AccessControl decides whether a principal may perform an action. It does no I/O.
type AccessControl interface {
	// CheckRole applies the role half of the policy, before any resource is loaded.
	CheckRole(principal entity.Principal, action Action) error
	// Authorize applies the full policy against the resource owners.
	Authorize(principal entity.Principal, action Action, owners entity.ResourceOwners) error
}

type accessControl struct{}

func NewAccessControl() AccessControl {
	return &accessControl{}
}

func (g *accessControl) CheckRole(principal entity.Principal, action Action) error {
	switch principal.Role {
	case entity.RoleTypeAdmin:
		return nil
	case entity.RoleTypeDoctor:
		switch action.Kind {
		case ActionReadAppointment,
			ActionUpdateStatus,
			ActionCreateTelemedicineSession,
			ActionUpdateTelemedicineSession,
			ActionCreateBillingRecord,
			ActionSetDoctorAvailability:
			return nil
		}
		return apperror.ErrRoleNotPermitted
	case entity.RoleTypePatient:
		switch action.Kind {
		case ActionCreateAppointment,
			ActionReadAppointment,
			ActionDeleteAppointment,
			ActionCreateTelemedicineSession,
			ActionUpdateTelemedicineSession:
			return nil
		case ActionUpdateStatus:
			if action.TargetStatus == entity.AppointmentStatusCancelled {
				return nil
			}
		}
		return apperror.ErrRoleNotPermitted
	}
	return apperror.ErrRoleNotPermitted
}

func (g *accessControl) Authorize(principal entity.Principal, action Action, owners entity.ResourceOwners) error {
	if err := g.CheckRole(principal, action); err != nil {
		return err
	}

	var owner uuid.UUID
	switch principal.Role {
	case entity.RoleTypeAdmin:
		return nil
	case entity.RoleTypeDoctor:
		owner = owners.DoctorOwnerUserID
	case entity.RoleTypePatient:
		owner = owners.PatientOwnerUserID
	}

	if owner == uuid.Nil || owner != principal.SubjectID {
		return apperror.ErrNotOwner
	}
	return nil
}
