package usecase

import (
	"context"
	"testing"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/internal/testutil"
	"clinic-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patientRegistration(email, nik string) *dto.RegisterPatientRequest {
	return &dto.RegisterPatientRequest{
		Email:       email,
		Password:    "secret123",
		FullName:    "Siti Rahma",
		NIK:         nik,
		DateOfBirth: "1992-07-14",
		Gender:      entity.GenderFemale,
	}
}

func TestRegisterPatient(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	user, err := h.auth.RegisterPatient(ctx, patientRegistration(" Siti@Clinic.test ", "3171234567890001"))
	require.NoError(t, err)
	assert.Equal(t, "siti@clinic.test", user.Email)
	assert.Equal(t, entity.RolePatient, user.Role)
	require.NotNil(t, user.PatientProfile)
	assert.Equal(t, "1992-07-14", user.PatientProfile.DateOfBirth)

	_, err = h.auth.RegisterPatient(ctx, patientRegistration("siti@clinic.test", "3171234567890002"))
	assert.ErrorIs(t, err, apperror.ErrEmailAlreadyExists)

	_, err = h.auth.RegisterPatient(ctx, patientRegistration("other@clinic.test", "3171234567890001"))
	assert.ErrorIs(t, err, apperror.ErrProfileAlreadyExists)

	_, err = h.auth.RegisterPatient(ctx, &dto.RegisterPatientRequest{Email: "x@clinic.test", DateOfBirth: "14-07-1992"})
	assert.ErrorIs(t, err, apperror.ErrInvalidField)

	var users int64
	require.NoError(t, h.db.Model(&entity.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 1, h.auditCount(t, entity.AuditActionUserRegister))
}

func TestRegisterDoctor(t *testing.T) {
	h := newHarness(t)

	user, err := h.auth.RegisterDoctor(context.Background(), &dto.RegisterDoctorRequest{
		Email:          "budi@clinic.test",
		Password:       "secret123",
		FullName:       "dr. Budi",
		STRNumber:      "STR-0001",
		Specialization: "Cardiology",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleDoctor, user.Role)
	require.NotNil(t, user.DoctorProfile)
	assert.True(t, user.DoctorProfile.IsAvailable)
}

func TestLoginRefreshLogout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	resolver := service.NewIdentityResolver(h.db, testutil.NewLogger(), h.jwt, h.tokenStore, repositoryUsers())

	_, err := h.auth.RegisterPatient(ctx, patientRegistration("siti@clinic.test", "3171234567890001"))
	require.NoError(t, err)

	_, err = h.auth.Login(ctx, &dto.LoginRequest{Email: "siti@clinic.test", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
	_, err = h.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@clinic.test", Password: "secret123"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)

	tokens, err := h.auth.Login(ctx, &dto.LoginRequest{Email: "SITI@clinic.test", Password: "secret123"})
	require.NoError(t, err)
	assert.EqualValues(t, 900, tokens.ExpiresIn)

	session, err := resolver.ResolveSession(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleTypePatient, session.Principal.Role)

	me, err := h.auth.GetCurrentUser(ctx, session.Principal)
	require.NoError(t, err)
	require.NotNil(t, me.PatientProfile)

	rotated, err := h.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	_, err = h.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
	_, err = h.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: rotated.AccessToken})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)

	require.NoError(t, h.auth.Logout(ctx, *session, &dto.LogoutRequest{}))
	_, err = resolver.Resolve(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)

	// The rotated pair is still live.
	_, err = resolver.Resolve(ctx, rotated.AccessToken)
	require.NoError(t, err)
}

func TestSetUserActive(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	resolver := service.NewIdentityResolver(h.db, testutil.NewLogger(), h.jwt, h.tokenStore, repositoryUsers())
	_, admin := testutil.CreateAdmin(t, h.db)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)

	tokens, err := h.auth.Login(ctx, &dto.LoginRequest{Email: doctor.User.Email, Password: testutil.DefaultPassword})
	require.NoError(t, err)

	_, err = h.auth.SetUserActive(ctx, doctorPrincipal, doctorPrincipal.SubjectID, false)
	assert.ErrorIs(t, err, apperror.ErrRoleNotPermitted)

	_, err = h.auth.SetUserActive(ctx, admin, uuid.New(), false)
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)

	user, err := h.auth.SetUserActive(ctx, admin, doctorPrincipal.SubjectID, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	_, err = resolver.Resolve(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)

	_, err = h.auth.Login(ctx, &dto.LoginRequest{Email: doctor.User.Email, Password: testutil.DefaultPassword})
	assert.ErrorIs(t, err, apperror.ErrSubjectDeactivated)

	_, err = h.auth.SetUserActive(ctx, admin, doctorPrincipal.SubjectID, true)
	require.NoError(t, err)
	_, err = h.auth.Login(ctx, &dto.LoginRequest{Email: doctor.User.Email, Password: testutil.DefaultPassword})
	require.NoError(t, err)

	assert.EqualValues(t, 2, h.auditCount(t, entity.AuditActionUserStatus))
}

func TestAuditLogs(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)
	_, patient := testutil.CreatePatient(t, h.db)
	_, admin := testutil.CreateAdmin(t, h.db)

	booked, err := h.appointments.CreateAppointment(ctx, patient, bookingRequest(doctor.ID, entity.AppointmentTypeInPerson))
	require.NoError(t, err)
	_, err = h.appointments.UpdateStatus(ctx, doctorPrincipal, booked.Appointment.ID,
		&dto.UpdateAppointmentStatusRequest{Status: string(entity.AppointmentStatusConfirmed)})
	require.NoError(t, err)

	_, err = h.auditLogs.GetAllAuditLogs(ctx, doctorPrincipal, 1, 20)
	assert.ErrorIs(t, err, apperror.ErrRoleNotPermitted)

	list, err := h.auditLogs.GetAllAuditLogs(ctx, admin, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, list.Total)

	actions := []string{list.Logs[0].Action, list.Logs[1].Action}
	assert.ElementsMatch(t, []string{entity.AuditActionAppointmentCreate, entity.AuditActionAppointmentTransition}, actions)

	for _, entry := range list.Logs {
		if entry.Action != entity.AuditActionAppointmentTransition {
			continue
		}
		assert.Equal(t, "appointment", entry.Metadata["entity"])
		assert.Equal(t, booked.Appointment.ID.String(), entry.Metadata["entity_id"])
		assert.Equal(t, map[string]interface{}{"status": "scheduled"}, entry.Metadata["old_value"])

		fetched, err := h.auditLogs.GetAuditLog(ctx, admin, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, entry.Action, fetched.Action)
	}

	_, err = h.auditLogs.GetAuditLog(ctx, admin, 999999)
	assert.ErrorIs(t, err, apperror.ErrAuditLogNotFound)
}
