package service

import (
	"context"
	"testing"
	"time"

	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/repository"
	"clinic-scheduler/internal/testutil"
	"clinic-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotConflictDetector(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	detector := NewSlotConflictDetector(testutil.NewLogger(), repository.NewDoctorProfileRepository(), repository.NewAppointmentRepository())

	doctor, _ := testutil.CreateDoctor(t, db)
	patient, _ := testutil.CreatePatient(t, db)
	date := testutil.Date(2024, time.March, 20)

	testutil.CreateAppointment(t, db, patient.ID, doctor.ID, date, "09:00", entity.AppointmentTypeInPerson, entity.AppointmentStatusConfirmed)
	testutil.CreateAppointment(t, db, patient.ID, doctor.ID, date, "10:00", entity.AppointmentTypeInPerson, entity.AppointmentStatusCancelled)

	t.Run("active appointment holds the slot", func(t *testing.T) {
		taken, err := detector.HasConflict(ctx, db, doctor.ID, date, "09:00")
		require.NoError(t, err)
		assert.True(t, taken)

		_, err = detector.ReserveSlot(ctx, db, doctor.ID, date, "09:00")
		assert.ErrorIs(t, err, apperror.ErrSlotAlreadyBooked)
	})

	t.Run("cancelled appointment frees the slot", func(t *testing.T) {
		reserved, err := detector.ReserveSlot(ctx, db, doctor.ID, date, "10:00")
		require.NoError(t, err)
		assert.Equal(t, doctor.ID, reserved.ID)
	})

	t.Run("overlapping durations are not conflicts", func(t *testing.T) {
		taken, err := detector.HasConflict(ctx, db, doctor.ID, date, "09:15")
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("other day is free", func(t *testing.T) {
		taken, err := detector.HasConflict(ctx, db, doctor.ID, date.AddDate(0, 0, 1), "09:00")
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		_, err := detector.ReserveSlot(ctx, db, uuid.New(), date, "11:00")
		assert.ErrorIs(t, err, apperror.ErrDoctorNotFound)
	})

	t.Run("unavailable doctor", func(t *testing.T) {
		away, _ := testutil.CreateDoctor(t, db)
		_, err := repository.NewDoctorProfileRepository().UpdateAvailability(ctx, db, away.ID, false)
		require.NoError(t, err)

		_, err = detector.ReserveSlot(ctx, db, away.ID, date, "11:00")
		assert.ErrorIs(t, err, apperror.ErrDoctorUnavailable)
	})
}
