package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/testutil"
	"clinic-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)
	patient, patientPrincipal := testutil.CreatePatient(t, h.db)
	_, otherPatient := testutil.CreatePatient(t, h.db)
	date := testutil.Date(2024, time.March, 20)

	telemedicine := testutil.CreateAppointment(t, h.db, patient.ID, doctor.ID, date, "09:00", entity.AppointmentTypeTelemedicine, entity.AppointmentStatusScheduled)
	inPerson := testutil.CreateAppointment(t, h.db, patient.ID, doctor.ID, date, "10:00", entity.AppointmentTypeInPerson, entity.AppointmentStatusScheduled)
	finished := testutil.CreateAppointment(t, h.db, patient.ID, doctor.ID, date, "11:00", entity.AppointmentTypeTelemedicine, entity.AppointmentStatusCompleted)

	_, err := h.telemedicine.CreateSession(ctx, otherPatient, telemedicine.ID)
	assert.ErrorIs(t, err, apperror.ErrNotOwner)

	_, err = h.telemedicine.CreateSession(ctx, patientPrincipal, inPerson.ID)
	assert.ErrorIs(t, err, apperror.ErrNotTelemedicine)

	_, err = h.telemedicine.CreateSession(ctx, doctorPrincipal, finished.ID)
	assert.ErrorIs(t, err, apperror.ErrIllegalTransition)

	session, err := h.telemedicine.CreateSession(ctx, patientPrincipal, telemedicine.ID)
	require.NoError(t, err)
	assert.Equal(t, telemedicine.ID, session.AppointmentID)
	assert.Equal(t, string(entity.SessionStatusScheduled), session.Status)
	assert.EqualValues(t, 1, h.auditCount(t, entity.AuditActionSessionCreate))

	_, err = h.telemedicine.CreateSession(ctx, doctorPrincipal, telemedicine.ID)
	assert.ErrorIs(t, err, apperror.ErrSessionAlreadyExists)
}

func TestUpdateSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)
	_, patient := testutil.CreatePatient(t, h.db)
	_, stranger := testutil.CreatePatient(t, h.db)

	booked, err := h.appointments.CreateAppointment(ctx, patient, bookingRequest(doctor.ID, entity.AppointmentTypeTelemedicine))
	require.NoError(t, err)
	sessionID := booked.Appointment.Session.ID

	update := func(principal entity.Principal, req *dto.UpdateTelemedicineSessionRequest) (*dto.TelemedicineSessionResponse, error) {
		return h.telemedicine.UpdateSession(ctx, principal, sessionID, req)
	}
	notes := func(text string) *string { return &text }

	_, err = update(doctorPrincipal, &dto.UpdateTelemedicineSessionRequest{Status: "paused"})
	assert.ErrorIs(t, err, apperror.ErrInvalidStatusValue)

	_, err = update(stranger, &dto.UpdateTelemedicineSessionRequest{Status: string(entity.SessionStatusActive)})
	assert.ErrorIs(t, err, apperror.ErrNotOwner)

	_, err = update(doctorPrincipal, &dto.UpdateTelemedicineSessionRequest{Status: string(entity.SessionStatusCompleted)})
	assert.ErrorIs(t, err, apperror.ErrIllegalTransition)

	unchanged, err := update(doctorPrincipal, &dto.UpdateTelemedicineSessionRequest{Status: string(entity.SessionStatusScheduled)})
	require.NoError(t, err)
	assert.Equal(t, string(entity.SessionStatusScheduled), unchanged.Status)
	assert.Zero(t, h.auditCount(t, entity.AuditActionSessionUpdate))

	h.telemedicine.now = func() time.Time { return time.Date(2024, time.March, 20, 9, 2, 0, 0, time.UTC) }
	active, err := update(doctorPrincipal, &dto.UpdateTelemedicineSessionRequest{Status: string(entity.SessionStatusActive)})
	require.NoError(t, err)
	require.NotNil(t, active.StartTime)
	assert.True(t, active.StartTime.Equal(time.Date(2024, time.March, 20, 9, 2, 0, 0, time.UTC)))

	noted, err := update(patient, &dto.UpdateTelemedicineSessionRequest{Status: string(entity.SessionStatusActive), Notes: notes("Camera works")})
	require.NoError(t, err)
	assert.Equal(t, "Camera works", noted.Notes)

	tooEarly := time.Date(2024, time.March, 20, 8, 0, 0, 0, time.UTC)
	_, err = update(doctorPrincipal, &dto.UpdateTelemedicineSessionRequest{Status: string(entity.SessionStatusCompleted), EndTime: &tooEarly})
	assert.ErrorIs(t, err, apperror.ErrInvalidField)

	end := time.Date(2024, time.March, 20, 9, 30, 0, 0, time.UTC)
	completed, err := update(doctorPrincipal, &dto.UpdateTelemedicineSessionRequest{
		Status:  string(entity.SessionStatusCompleted),
		EndTime: &end,
		Notes:   notes("Prescribed rest"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.SessionStatusCompleted), completed.Status)
	require.NotNil(t, completed.EndTime)
	assert.True(t, completed.EndTime.Equal(end))
	assert.Equal(t, "Prescribed rest", completed.Notes)

	_, err = update(doctorPrincipal, &dto.UpdateTelemedicineSessionRequest{Status: string(entity.SessionStatusCancelled)})
	assert.ErrorIs(t, err, apperror.ErrIllegalTransition)

	assert.EqualValues(t, 3, h.auditCount(t, entity.AuditActionSessionUpdate))
}

func TestUpdateSession_Missing(t *testing.T) {
	h := newHarness(t)
	_, admin := testutil.CreateAdmin(t, h.db)
	_, doctor := testutil.CreateDoctor(t, h.db)
	req := &dto.UpdateTelemedicineSessionRequest{Status: string(entity.SessionStatusActive)}

	_, err := h.telemedicine.UpdateSession(context.Background(), admin, uuid.New(), req)
	assert.ErrorIs(t, err, apperror.ErrSessionNotFound)

	_, err = h.telemedicine.UpdateSession(context.Background(), doctor, uuid.New(), req)
	assert.ErrorIs(t, err, apperror.ErrNotOwner)
}
