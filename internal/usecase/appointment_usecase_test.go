package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/internal/testutil"
	"clinic-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func bookingRequest(doctorID uuid.UUID, appointmentType entity.AppointmentType) *dto.CreateAppointmentRequest {
	return &dto.CreateAppointmentRequest{
		DoctorID:        doctorID,
		Date:            "2024-03-20",
		Time:            "09:00",
		DurationMinutes: 30,
		Type:            string(appointmentType),
		Reason:          "Follow-up on blood pressure",
	}
}

func TestCreateAppointment_Telemedicine(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, _ := testutil.CreateDoctor(t, h.db)
	patient, patientPrincipal := testutil.CreatePatient(t, h.db)

	result, err := h.appointments.CreateAppointment(ctx, patientPrincipal, bookingRequest(doctor.ID, entity.AppointmentTypeTelemedicine))
	require.NoError(t, err)

	assert.Empty(t, result.Warnings)
	assert.Equal(t, string(entity.AppointmentStatusScheduled), result.Appointment.Status)
	assert.Equal(t, patient.ID, result.Appointment.PatientID)
	assert.Equal(t, "2024-03-20", result.Appointment.Date)
	assert.Equal(t, "09:00", result.Appointment.Time)
	require.NotNil(t, result.Appointment.Session)
	assert.Equal(t, string(entity.SessionStatusScheduled), result.Appointment.Session.Status)
	assert.Regexp(t, `^TM-20240320-[0-9A-F]{8}$`, result.Appointment.Session.RoomCode)

	assert.EqualValues(t, 1, h.auditCount(t, entity.AuditActionAppointmentCreate))
	assert.EqualValues(t, 1, h.streamLength(t))
}

func TestCreateAppointment_InPersonHasNoSession(t *testing.T) {
	h := newHarness(t)
	doctor, _ := testutil.CreateDoctor(t, h.db)
	_, patient := testutil.CreatePatient(t, h.db)

	result, err := h.appointments.CreateAppointment(context.Background(), patient, bookingRequest(doctor.ID, entity.AppointmentTypeInPerson))
	require.NoError(t, err)

	assert.Nil(t, result.Appointment.Session)
	assert.Nil(t, h.session(t, result.Appointment.ID))
}

func TestCreateAppointment_Rejects(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)
	away, _ := testutil.CreateDoctor(t, h.db)
	unavailable := false
	_, err := h.doctors.SetAvailability(ctx, entity.Principal{Role: entity.RoleTypeAdmin}, away.ID, &dto.SetDoctorAvailabilityRequest{IsAvailable: &unavailable})
	require.NoError(t, err)

	_, patient := testutil.CreatePatient(t, h.db)
	_, admin := testutil.CreateAdmin(t, h.db)

	tests := []struct {
		name      string
		principal entity.Principal
		mutate    func(req *dto.CreateAppointmentRequest)
		wantErr   error
	}{
		{"doctor cannot book", doctorPrincipal, nil, apperror.ErrRoleNotPermitted},
		{"slot in the past", patient, func(req *dto.CreateAppointmentRequest) { req.Date = "2024-03-19"; req.Time = "07:30" }, apperror.ErrAppointmentInPast},
		{"unknown type", patient, func(req *dto.CreateAppointmentRequest) { req.Type = "house-call" }, apperror.ErrInvalidField},
		{"bad date", patient, func(req *dto.CreateAppointmentRequest) { req.Date = "20-03-2024" }, apperror.ErrInvalidField},
		{"bad time", patient, func(req *dto.CreateAppointmentRequest) { req.Time = "9am" }, apperror.ErrInvalidField},
		{"missing doctor", patient, func(req *dto.CreateAppointmentRequest) { req.DoctorID = uuid.Nil }, apperror.ErrMissingField},
		{"unknown doctor", patient, func(req *dto.CreateAppointmentRequest) { req.DoctorID = uuid.New() }, apperror.ErrDoctorNotFound},
		{"unavailable doctor", patient, func(req *dto.CreateAppointmentRequest) { req.DoctorID = away.ID }, apperror.ErrDoctorUnavailable},
		{"admin must name the patient", admin, nil, apperror.ErrMissingField},
		{"admin names unknown patient", admin, func(req *dto.CreateAppointmentRequest) {
			id := uuid.New()
			req.PatientID = &id
		}, apperror.ErrPatientNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bookingRequest(doctor.ID, entity.AppointmentTypeInPerson)
			if tt.mutate != nil {
				tt.mutate(req)
			}
			_, err := h.appointments.CreateAppointment(ctx, tt.principal, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var count int64
	require.NoError(t, h.db.Model(&entity.Appointment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateAppointment_AdminBooksForPatient(t *testing.T) {
	h := newHarness(t)
	doctor, _ := testutil.CreateDoctor(t, h.db)
	patient, _ := testutil.CreatePatient(t, h.db)
	_, admin := testutil.CreateAdmin(t, h.db)

	req := bookingRequest(doctor.ID, entity.AppointmentTypeFollowUp)
	req.PatientID = &patient.ID

	result, err := h.appointments.CreateAppointment(context.Background(), admin, req)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, result.Appointment.PatientID)
	assert.Equal(t, string(entity.AppointmentTypeFollowUp), result.Appointment.Type)
}

// The sqlite test store serializes transactions on one connection, so this
// covers the booking path's outcome, not lock contention. The partial unique
// index is exercised directly in the repository tests.
func TestCreateAppointment_NoDoubleBookingUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, _ := testutil.CreateDoctor(t, h.db)

	const contenders = 8
	principals := make([]entity.Principal, contenders)
	for i := range principals {
		_, principals[i] = testutil.CreatePatient(t, h.db)
	}

	errs := make([]error, contenders)
	var g errgroup.Group
	for i := range principals {
		i := i
		g.Go(func() error {
			_, errs[i] = h.appointments.CreateAppointment(ctx, principals[i], bookingRequest(doctor.ID, entity.AppointmentTypeTelemedicine))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	booked := 0
	for _, err := range errs {
		if err == nil {
			booked++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrSlotAlreadyBooked)
	}
	assert.Equal(t, 1, booked)

	var active int64
	require.NoError(t, h.db.Model(&entity.Appointment{}).
		Where("doctor_id = ? AND status <> ?", doctor.ID, entity.AppointmentStatusCancelled).
		Count(&active).Error)
	assert.EqualValues(t, 1, active)

	var sessions int64
	require.NoError(t, h.db.Model(&entity.TelemedicineSession{}).Count(&sessions).Error)
	assert.EqualValues(t, 1, sessions)
}

func expiredContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	t.Cleanup(cancel)
	return ctx
}

func TestCreateAppointment_DeadlineLeavesNoRows(t *testing.T) {
	h := newHarness(t)
	doctor, _ := testutil.CreateDoctor(t, h.db)
	_, patient := testutil.CreatePatient(t, h.db)

	result, err := h.appointments.CreateAppointment(expiredContext(t), patient, bookingRequest(doctor.ID, entity.AppointmentTypeTelemedicine))

	require.ErrorIs(t, err, apperror.ErrTimeout)
	assert.Nil(t, result)

	var appointments, sessions int64
	require.NoError(t, h.db.Model(&entity.Appointment{}).Count(&appointments).Error)
	require.NoError(t, h.db.Model(&entity.TelemedicineSession{}).Count(&sessions).Error)
	assert.Zero(t, appointments)
	assert.Zero(t, sessions)
	assert.Zero(t, h.auditCount(t, entity.AuditActionAppointmentCreate))
	assert.Zero(t, h.streamLength(t))
}

func TestUpdateStatus_DeadlineLeavesStatusUntouched(t *testing.T) {
	h := newHarness(t)
	doctor, _ := testutil.CreateDoctor(t, h.db)
	_, patient := testutil.CreatePatient(t, h.db)

	created, err := h.appointments.CreateAppointment(context.Background(), patient, bookingRequest(doctor.ID, entity.AppointmentTypeTelemedicine))
	require.NoError(t, err)
	id := created.Appointment.ID

	_, err = h.appointments.UpdateStatus(expiredContext(t), patient, id, &dto.UpdateAppointmentStatusRequest{
		Status:             string(entity.AppointmentStatusCancelled),
		CancellationReason: "Travelling",
	})

	require.ErrorIs(t, err, apperror.ErrTimeout)
	assert.Equal(t, entity.AppointmentStatusScheduled, h.appointment(t, id).Status)
	assert.Equal(t, entity.SessionStatusScheduled, h.session(t, id).Status)
	assert.Zero(t, h.auditCount(t, entity.AuditActionAppointmentTransition))
	assert.EqualValues(t, 1, h.streamLength(t))
}

func TestUpdateStatus_TransitionTable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, _ := testutil.CreateDoctor(t, h.db)
	patient, _ := testutil.CreatePatient(t, h.db)
	_, admin := testutil.CreateAdmin(t, h.db)

	statuses := []entity.AppointmentStatus{
		entity.AppointmentStatusScheduled,
		entity.AppointmentStatusConfirmed,
		entity.AppointmentStatusCompleted,
		entity.AppointmentStatusCancelled,
		entity.AppointmentStatusNoShow,
	}

	slot := 0
	for _, from := range statuses {
		for _, to := range statuses {
			clock := fmt.Sprintf("%02d:%02d", 8+slot/4, (slot%4)*15)
			slot++

			t.Run(fmt.Sprintf("%s to %s", from, to), func(t *testing.T) {
				appointment := testutil.CreateAppointment(t, h.db, patient.ID, doctor.ID,
					testutil.Date(2024, time.March, 20), clock, entity.AppointmentTypeInPerson, from)

				result, err := h.appointments.UpdateStatus(ctx, admin, appointment.ID, &dto.UpdateAppointmentStatusRequest{Status: string(to)})

				switch {
				case from == to:
					require.NoError(t, err)
					assert.Equal(t, string(from), result.Appointment.Status)
				case from.CanTransitionTo(to):
					require.NoError(t, err)
					assert.Equal(t, string(to), result.Appointment.Status)
					assert.NotNil(t, result.Appointment.StatusChangedAt)
				default:
					assert.ErrorIs(t, err, apperror.ErrIllegalTransition)
				}

				stored := h.appointment(t, appointment.ID)
				if from == to || from.CanTransitionTo(to) {
					assert.Equal(t, to, stored.Status)
				} else {
					assert.Equal(t, from, stored.Status)
				}
			})
		}
	}
}

func TestUpdateStatus_SameStatusIsNoOp(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)
	patient, _ := testutil.CreatePatient(t, h.db)
	appointment := testutil.CreateAppointment(t, h.db, patient.ID, doctor.ID, testutil.Date(2024, time.March, 20), "09:00",
		entity.AppointmentTypeInPerson, entity.AppointmentStatusScheduled)

	confirm := &dto.UpdateAppointmentStatusRequest{Status: string(entity.AppointmentStatusConfirmed)}
	first, err := h.appointments.UpdateStatus(ctx, doctorPrincipal, appointment.ID, confirm)
	require.NoError(t, err)
	second, err := h.appointments.UpdateStatus(ctx, doctorPrincipal, appointment.ID, confirm)
	require.NoError(t, err)

	assert.Equal(t, first.Appointment.Status, second.Appointment.Status)
	assert.EqualValues(t, 1, h.auditCount(t, entity.AuditActionAppointmentTransition))
	assert.EqualValues(t, 1, h.streamLength(t))
}

func TestUpdateStatus_Authorization(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)
	_, otherDoctor := testutil.CreateDoctor(t, h.db)
	patient, patientPrincipal := testutil.CreatePatient(t, h.db)
	_, otherPatient := testutil.CreatePatient(t, h.db)
	_, admin := testutil.CreateAdmin(t, h.db)

	appointment := testutil.CreateAppointment(t, h.db, patient.ID, doctor.ID, testutil.Date(2024, time.March, 20), "09:00",
		entity.AppointmentTypeInPerson, entity.AppointmentStatusScheduled)

	cancel := &dto.UpdateAppointmentStatusRequest{Status: string(entity.AppointmentStatusCancelled), CancellationReason: "Travelling"}
	confirm := &dto.UpdateAppointmentStatusRequest{Status: string(entity.AppointmentStatusConfirmed)}

	tests := []struct {
		name      string
		principal entity.Principal
		id        uuid.UUID
		req       *dto.UpdateAppointmentStatusRequest
		wantErr   error
	}{
		{"unknown status value", admin, appointment.ID, &dto.UpdateAppointmentStatusRequest{Status: "done"}, apperror.ErrInvalidStatusValue},
		{"patient cannot confirm", patientPrincipal, appointment.ID, confirm, apperror.ErrRoleNotPermitted},
		{"other patient cannot cancel", otherPatient, appointment.ID, cancel, apperror.ErrNotOwner},
		{"other doctor cannot confirm", otherDoctor, appointment.ID, confirm, apperror.ErrNotOwner},
		{"patient must give a reason", patientPrincipal, appointment.ID, &dto.UpdateAppointmentStatusRequest{Status: string(entity.AppointmentStatusCancelled), CancellationReason: "  "}, apperror.ErrReasonRequired},
		{"doctor must give a reason", doctorPrincipal, appointment.ID, &dto.UpdateAppointmentStatusRequest{Status: string(entity.AppointmentStatusCancelled)}, apperror.ErrReasonRequired},
		{"missing appointment hidden from patients", patientPrincipal, uuid.New(), cancel, apperror.ErrNotOwner},
		{"missing appointment reported to admins", admin, uuid.New(), cancel, apperror.ErrAppointmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.appointments.UpdateStatus(ctx, tt.principal, tt.id, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, entity.AppointmentStatusScheduled, h.appointment(t, appointment.ID).Status)
	assert.Zero(t, h.auditCount(t, entity.AuditActionAppointmentTransition))

	result, err := h.appointments.UpdateStatus(ctx, patientPrincipal, appointment.ID, cancel)
	require.NoError(t, err)
	assert.Equal(t, "Travelling", result.Appointment.CancellationReason)
}

// TestClinicDay walks one telemedicine booking through its life: booked,
// confirmed, contested, billed, cancelled, and rebooked by someone else.
func TestClinicDay(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)
	_, alice := testutil.CreatePatient(t, h.db)
	_, bob := testutil.CreatePatient(t, h.db)

	booked, err := h.appointments.CreateAppointment(ctx, alice, bookingRequest(doctor.ID, entity.AppointmentTypeTelemedicine))
	require.NoError(t, err)
	appointmentID := booked.Appointment.ID
	require.NotNil(t, booked.Appointment.Session)

	confirmed, err := h.appointments.UpdateStatus(ctx, doctorPrincipal, appointmentID,
		&dto.UpdateAppointmentStatusRequest{Status: string(entity.AppointmentStatusConfirmed)})
	require.NoError(t, err)
	assert.Equal(t, string(entity.AppointmentStatusConfirmed), confirmed.Appointment.Status)

	_, err = h.appointments.CreateAppointment(ctx, bob, bookingRequest(doctor.ID, entity.AppointmentTypeInPerson))
	assert.ErrorIs(t, err, apperror.ErrSlotAlreadyBooked)

	bill, err := h.billing.CreateBillingRecord(ctx, doctorPrincipal, appointmentID,
		&dto.CreateBillingRecordRequest{Amount: decimal.RequireFromString("150000"), Description: "Consultation"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.BillingStatusPending), bill.Status)

	cancelled, err := h.appointments.UpdateStatus(ctx, alice, appointmentID, &dto.UpdateAppointmentStatusRequest{
		Status:             string(entity.AppointmentStatusCancelled),
		CancellationReason: "Feeling better",
	})
	require.NoError(t, err)
	assert.Empty(t, cancelled.Warnings)
	assert.Equal(t, "Feeling better", cancelled.Appointment.CancellationReason)
	require.NotNil(t, cancelled.Appointment.Session)
	assert.Equal(t, string(entity.SessionStatusCancelled), cancelled.Appointment.Session.Status)

	var record entity.BillingRecord
	require.NoError(t, h.db.First(&record, "id = ?", bill.ID).Error)
	assert.Equal(t, entity.BillingStatusCancelled, record.Status)

	rebooked, err := h.appointments.CreateAppointment(ctx, bob, bookingRequest(doctor.ID, entity.AppointmentTypeTelemedicine))
	require.NoError(t, err)
	assert.NotEqual(t, appointmentID, rebooked.Appointment.ID)
	require.NotNil(t, rebooked.Appointment.Session)
	assert.NotEqual(t, booked.Appointment.Session.RoomCode, rebooked.Appointment.Session.RoomCode)

	_, err = h.appointments.UpdateStatus(ctx, doctorPrincipal, appointmentID,
		&dto.UpdateAppointmentStatusRequest{Status: string(entity.AppointmentStatusConfirmed)})
	assert.ErrorIs(t, err, apperror.ErrIllegalTransition)

	// created, confirmed, cancelled, created
	assert.EqualValues(t, 4, h.streamLength(t))
}

func TestUpdateStatus_CascadeFailureIsAWarning(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)
	patient, _ := testutil.CreatePatient(t, h.db)
	appointment := testutil.CreateAppointment(t, h.db, patient.ID, doctor.ID, testutil.Date(2024, time.March, 20), "09:00",
		entity.AppointmentTypeInPerson, entity.AppointmentStatusScheduled)

	h.redis.Close()

	result, err := h.appointments.UpdateStatus(ctx, doctorPrincipal, appointment.ID,
		&dto.UpdateAppointmentStatusRequest{Status: string(entity.AppointmentStatusConfirmed)})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, apperror.ErrPartialFailure.Code, result.Warnings[0].Code)
	assert.Equal(t, service.StepPublishNotification, result.Warnings[0].Step)
	assert.Equal(t, entity.AppointmentStatusConfirmed, h.appointment(t, appointment.ID).Status)
}

func TestRetryCascade(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)
	patient, patientPrincipal := testutil.CreatePatient(t, h.db)
	appointment := testutil.CreateAppointment(t, h.db, patient.ID, doctor.ID, testutil.Date(2024, time.March, 20), "09:00",
		entity.AppointmentTypeTelemedicine, entity.AppointmentStatusScheduled)
	require.Nil(t, h.session(t, appointment.ID))

	_, err := h.appointments.RetryCascade(ctx, patientPrincipal, appointment.ID)
	assert.ErrorIs(t, err, apperror.ErrRoleNotPermitted)

	result, err := h.appointments.RetryCascade(ctx, doctorPrincipal, appointment.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	require.NotNil(t, result.Appointment.Session)

	again, err := h.appointments.RetryCascade(ctx, doctorPrincipal, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Appointment.Session.ID, again.Appointment.Session.ID)

	_, err = h.appointments.RetryCascade(ctx, doctorPrincipal, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotOwner)
}

func TestDeleteAppointment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)
	_, patient := testutil.CreatePatient(t, h.db)
	_, otherPatient := testutil.CreatePatient(t, h.db)

	booked, err := h.appointments.CreateAppointment(ctx, patient, bookingRequest(doctor.ID, entity.AppointmentTypeTelemedicine))
	require.NoError(t, err)
	id := booked.Appointment.ID

	bill, err := h.billing.CreateBillingRecord(ctx, doctorPrincipal, id, &dto.CreateBillingRecordRequest{Amount: decimal.NewFromInt(75000)})
	require.NoError(t, err)

	_, err = h.appointments.DeleteAppointment(ctx, doctorPrincipal, id)
	assert.ErrorIs(t, err, apperror.ErrRoleNotPermitted)
	_, err = h.appointments.DeleteAppointment(ctx, otherPatient, id)
	assert.ErrorIs(t, err, apperror.ErrNotOwner)

	deleted, err := h.appointments.DeleteAppointment(ctx, patient, id)
	require.NoError(t, err)
	assert.Equal(t, id, deleted.Appointment.ID)

	var count int64
	require.NoError(t, h.db.Model(&entity.Appointment{}).Where("id = ?", id).Count(&count).Error)
	assert.Zero(t, count)
	assert.Nil(t, h.session(t, id))

	var record entity.BillingRecord
	require.NoError(t, h.db.First(&record, "id = ?", bill.ID).Error)
	assert.Nil(t, record.AppointmentID)
	assert.EqualValues(t, 1, h.auditCount(t, entity.AuditActionAppointmentDelete))

	_, err = h.appointments.DeleteAppointment(ctx, patient, id)
	assert.ErrorIs(t, err, apperror.ErrNotOwner)
}

func TestGetAndListAppointments(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doctor, doctorPrincipal := testutil.CreateDoctor(t, h.db)
	otherDoctor, _ := testutil.CreateDoctor(t, h.db)
	patient, patientPrincipal := testutil.CreatePatient(t, h.db)
	otherPatient, otherPrincipal := testutil.CreatePatient(t, h.db)
	_, admin := testutil.CreateAdmin(t, h.db)

	date := testutil.Date(2024, time.March, 20)
	mine := testutil.CreateAppointment(t, h.db, patient.ID, doctor.ID, date, "09:00", entity.AppointmentTypeInPerson, entity.AppointmentStatusScheduled)
	testutil.CreateAppointment(t, h.db, patient.ID, otherDoctor.ID, date, "10:00", entity.AppointmentTypeInPerson, entity.AppointmentStatusCancelled)
	testutil.CreateAppointment(t, h.db, otherPatient.ID, doctor.ID, date, "11:00", entity.AppointmentTypeInPerson, entity.AppointmentStatusScheduled)

	page := func(status string) *dto.AppointmentListRequest {
		return &dto.AppointmentListRequest{Status: status, Page: 1, Limit: 20}
	}

	t.Run("patient sees own", func(t *testing.T) {
		list, err := h.appointments.ListAppointments(ctx, patientPrincipal, page(""))
		require.NoError(t, err)
		assert.EqualValues(t, 2, list.Total)
		for _, appointment := range list.Appointments {
			assert.Equal(t, patient.ID, appointment.PatientID)
		}
	})

	t.Run("doctor sees own", func(t *testing.T) {
		list, err := h.appointments.ListAppointments(ctx, doctorPrincipal, page(string(entity.AppointmentStatusScheduled)))
		require.NoError(t, err)
		assert.EqualValues(t, 2, list.Total)
	})

	t.Run("admin sees all", func(t *testing.T) {
		list, err := h.appointments.ListAppointments(ctx, admin, &dto.AppointmentListRequest{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 3, list.Total)
		assert.Len(t, list.Appointments, 1)
	})

	t.Run("bad status filter", func(t *testing.T) {
		_, err := h.appointments.ListAppointments(ctx, admin, page("pending"))
		assert.ErrorIs(t, err, apperror.ErrInvalidStatusValue)
	})

	t.Run("get own", func(t *testing.T) {
		appointment, err := h.appointments.GetAppointment(ctx, patientPrincipal, mine.ID)
		require.NoError(t, err)
		assert.Equal(t, mine.ID, appointment.ID)
	})

	t.Run("get foreign", func(t *testing.T) {
		_, err := h.appointments.GetAppointment(ctx, otherPrincipal, mine.ID)
		assert.ErrorIs(t, err, apperror.ErrNotOwner)
		assert.True(t, errors.Is(err, apperror.ErrNotOwner))
	})
}
