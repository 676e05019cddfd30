package entity

import "github.com/google/uuid"

// Principal is the authenticated caller of a request. It is never persisted.
type Principal struct {
	SubjectID uuid.UUID
	Role      RoleType
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleTypeAdmin
}

// ResourceOwners carries the owning user ids of the patient and doctor
// rows behind a resource. Zero values mean "no owner of that kind".
type ResourceOwners struct {
	PatientOwnerUserID uuid.UUID
	DoctorOwnerUserID  uuid.UUID
}
