package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateTelemedicineSessionRequest struct {
	Status  string     `json:"status" validate:"required"`
	EndTime *time.Time `json:"end_time" validate:"omitempty"`
	Notes   *string    `json:"notes" validate:"omitempty,max=5000"`
}

type TelemedicineSessionResponse struct {
	ID            uuid.UUID  `json:"id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	RoomCode      string     `json:"room_code"`
	Status        string     `json:"status"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
