package converter

import (
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
)

func TelemedicineSessionToResponse(session *entity.TelemedicineSession) *dto.TelemedicineSessionResponse {
	if session == nil {
		return nil
	}

	return &dto.TelemedicineSessionResponse{
		ID:            session.ID,
		AppointmentID: session.AppointmentID,
		RoomCode:      session.RoomCode,
		Status:        string(session.Status),
		StartTime:     session.StartTime,
		EndTime:       session.EndTime,
		Notes:         session.Notes,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}
}
