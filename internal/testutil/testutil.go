// Package testutil wires in-memory stores and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultPassword is the plain password of every fixture user.
const DefaultPassword = "secret123"

var nikSeq atomic.Int64

// NewLogger returns a logger that discards output.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// NewTestDB opens a private in-memory SQLite database with the full schema
// and the default roles. One connection is shared so transactions serialize
// the way row locks do on PostgreSQL.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.DoctorProfile{},
		&entity.PatientProfile{},
		&entity.Appointment{},
		&entity.TelemedicineSession{},
		&entity.BillingRecord{},
		&entity.AuditLog{},
	))
	require.NoError(t, repository.NewRoleRepository().EnsureDefaults(context.Background(), db))

	return db
}

// NewTestRedis starts a miniredis server bound to the test lifetime.
func NewTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return server, client
}

// CreateUser inserts an active user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, roleID int, email string) *entity.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	require.NoError(t, err)

	active := true
	user := &entity.User{
		RoleID:   roleID,
		Email:    email,
		Password: string(hashed),
		FullName: "User " + email,
		IsActive: &active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateAdmin inserts an admin user and returns its principal.
func CreateAdmin(t *testing.T, db *gorm.DB) (*entity.User, entity.Principal) {
	t.Helper()

	user := CreateUser(t, db, entity.RoleIDAdmin, uniqueEmail("admin"))
	return user, entity.Principal{SubjectID: user.ID, Role: entity.RoleTypeAdmin}
}

// CreateDoctor inserts an available doctor and returns its profile and principal.
func CreateDoctor(t *testing.T, db *gorm.DB) (*entity.DoctorProfile, entity.Principal) {
	t.Helper()

	user := CreateUser(t, db, entity.RoleIDDoctor, uniqueEmail("doctor"))
	available := true
	profile := &entity.DoctorProfile{
		UserID:         user.ID,
		STRNumber:      "STR-" + uuid.NewString()[:8],
		Specialization: "General Practice",
		IsAvailable:    &available,
	}
	require.NoError(t, db.Create(profile).Error)
	profile.User = *user

	return profile, entity.Principal{SubjectID: user.ID, Role: entity.RoleTypeDoctor}
}

// CreatePatient inserts a patient and returns its profile and principal.
func CreatePatient(t *testing.T, db *gorm.DB) (*entity.PatientProfile, entity.Principal) {
	t.Helper()

	user := CreateUser(t, db, entity.RoleIDPatient, uniqueEmail("patient"))
	profile := &entity.PatientProfile{
		UserID:      user.ID,
		NIK:         fmt.Sprintf("%016d", nikSeq.Add(1)),
		DateOfBirth: time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		Gender:      entity.GenderFemale,
	}
	require.NoError(t, db.Create(profile).Error)
	profile.User = *user

	return profile, entity.Principal{SubjectID: user.ID, Role: entity.RoleTypePatient}
}

// CreateAppointment inserts an appointment directly, bypassing the booking flow.
func CreateAppointment(t *testing.T, db *gorm.DB, patientID, doctorID uuid.UUID, date time.Time, clock string, appointmentType entity.AppointmentType, status entity.AppointmentStatus) *entity.Appointment {
	t.Helper()

	appointment := &entity.Appointment{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: date,
		AppointmentTime: clock,
		DurationMinutes: 30,
		Status:          status,
		Type:            appointmentType,
		Reason:          "Checkup",
	}
	require.NoError(t, db.Omit("Patient", "Doctor").Create(appointment).Error)
	return appointment
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@clinic.test", prefix, uuid.NewString()[:8])
}
