package dto

import "github.com/google/uuid"

type DoctorProfileResponse struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	FullName       string    `json:"full_name,omitempty"`
	STRNumber      string    `json:"str_number"`
	Specialization string    `json:"specialization"`
	Biography      string    `json:"biography,omitempty"`
	IsAvailable    bool      `json:"is_available"`
}

type PatientProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	FullName    string    `json:"full_name,omitempty"`
	NIK         string    `json:"nik"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	DateOfBirth string    `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Address     string    `json:"address,omitempty"`
}

type SetDoctorAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}
