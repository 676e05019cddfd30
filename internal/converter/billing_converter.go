package converter

import (
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
)

func BillingRecordToResponse(record *entity.BillingRecord) *dto.BillingRecordResponse {
	if record == nil {
		return nil
	}

	return &dto.BillingRecordResponse{
		ID:            record.ID,
		AppointmentID: record.AppointmentID,
		PatientID:     record.PatientID,
		DoctorID:      record.DoctorID,
		Amount:        record.Amount,
		Status:        string(record.Status),
		Description:   record.Description,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}
