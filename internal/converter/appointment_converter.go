package converter

import (
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:                 appointment.ID,
		PatientID:          appointment.PatientID,
		DoctorID:           appointment.DoctorID,
		Date:               appointment.AppointmentDate.Format("2006-01-02"),
		Time:               appointment.AppointmentTime,
		DurationMinutes:    appointment.DurationMinutes,
		Status:             string(appointment.Status),
		Type:               string(appointment.Type),
		Reason:             appointment.Reason,
		CancellationReason: appointment.CancellationReason,
		StatusChangedAt:    appointment.StatusChangedAt,
		Patient:            PatientProfileToResponse(&appointment.Patient),
		Doctor:             DoctorProfileToResponse(&appointment.Doctor),
		CreatedAt:          appointment.CreatedAt,
		UpdatedAt:          appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
