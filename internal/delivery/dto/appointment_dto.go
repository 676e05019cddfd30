package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateAppointmentRequest books a slot. PatientID is only honoured for admins
// booking on behalf of a patient; patients always book for themselves.
type CreateAppointmentRequest struct {
	PatientID       *uuid.UUID `json:"patient_id" validate:"omitempty"`
	DoctorID        uuid.UUID  `json:"doctor_id" validate:"required"`
	Date            string     `json:"date" validate:"required,date"` // Format: YYYY-MM-DD
	Time            string     `json:"time" validate:"required,clock"` // Format: HH:MM
	DurationMinutes int        `json:"duration_minutes" validate:"required,min=5,max=480"`
	Type            string     `json:"type" validate:"required,oneof=in-person telemedicine follow-up"`
	Reason          string     `json:"reason" validate:"required,max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status             string `json:"status" validate:"required"`
	CancellationReason string `json:"cancellation_reason" validate:"omitempty,max=1000"`
}

type AppointmentListRequest struct {
	StartDate string `validate:"omitempty,date"`
	EndDate   string `validate:"omitempty,date"`
	Status    string `validate:"omitempty,oneof=scheduled confirmed completed cancelled no-show"`
	Page      int    `validate:"gte=1"`
	Limit     int    `validate:"gte=1,lte=100"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                 uuid.UUID                    `json:"id"`
	PatientID          uuid.UUID                    `json:"patient_id"`
	DoctorID           uuid.UUID                    `json:"doctor_id"`
	Date               string                       `json:"date"`
	Time               string                       `json:"time"`
	DurationMinutes    int                          `json:"duration_minutes"`
	Status             string                       `json:"status"`
	Type               string                       `json:"type"`
	Reason             string                       `json:"reason"`
	CancellationReason string                       `json:"cancellation_reason,omitempty"`
	StatusChangedAt    *time.Time                   `json:"status_changed_at,omitempty"`
	Patient            *PatientProfileResponse      `json:"patient,omitempty"`
	Doctor             *DoctorProfileResponse       `json:"doctor,omitempty"`
	Session            *TelemedicineSessionResponse `json:"telemedicine_session,omitempty"`
	CreatedAt          time.Time                    `json:"created_at"`
	UpdatedAt          time.Time                    `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int64                 `json:"total"`
}

// CascadeWarning reports a dependent update that failed after the
// appointment change was committed. The step can be retried.
type CascadeWarning struct {
	Code    string `json:"code"`
	Step    string `json:"step"`
	Message string `json:"message"`
}

// AppointmentResult is the outcome of a write on an appointment.
type AppointmentResult struct {
	Appointment *AppointmentResponse
	Warnings    []CascadeWarning
}
