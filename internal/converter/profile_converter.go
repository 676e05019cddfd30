package converter

import (
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
)

func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorProfileResponse {
	if profile == nil || profile.ID == uuid.Nil {
		return nil
	}

	return &dto.DoctorProfileResponse{
		ID:             profile.ID,
		UserID:         profile.UserID,
		FullName:       profile.User.FullName,
		STRNumber:      profile.STRNumber,
		Specialization: profile.Specialization,
		Biography:      profile.Biography,
		IsAvailable:    profile.Available(),
	}
}

func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientProfileResponse {
	if profile == nil || profile.ID == uuid.Nil {
		return nil
	}

	return &dto.PatientProfileResponse{
		ID:          profile.ID,
		UserID:      profile.UserID,
		FullName:    profile.User.FullName,
		NIK:         profile.NIK,
		PhoneNumber: profile.PhoneNumber,
		DateOfBirth: profile.DateOfBirth.Format("2006-01-02"),
		Gender:      profile.Gender,
		Address:     profile.Address,
	}
}
