package entity

import "github.com/google/uuid"

// AppointmentFilter is a domain-level filter for listing appointments.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	StartAt   string // Format: YYYY-MM-DD
	EndAt     string // Format: YYYY-MM-DD
	Status    AppointmentStatus
}
