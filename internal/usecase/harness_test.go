package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-scheduler/config"
	"clinic-scheduler/internal/domain/entity"
	domainRepo "clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/internal/repository"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/internal/testutil"
	"clinic-scheduler/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const eventStream = "appointment-events"

// clinicNow is the wall clock of every usecase test: the day before the
// appointments they book.
var clinicNow = time.Date(2024, time.March, 19, 8, 0, 0, 0, time.UTC)

type harness struct {
	db     *gorm.DB
	redis  *miniredis.Miniredis
	client *redis.Client

	appointments *appointmentUsecase
	telemedicine *telemedicineUsecase
	billing      BillingUsecase
	doctors      DoctorProfileUsecase
	auditLogs    AuditLogUsecase
	auth         AuthUsecase
	tokenStore   service.TokenStore
	jwt          *jwt.JWTService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewTestDB(t)
	server, client := testutil.NewTestRedis(t)
	log := testutil.NewLogger()

	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	doctorRepo := repository.NewDoctorProfileRepository()
	patientRepo := repository.NewPatientProfileRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	sessionRepo := repository.NewTelemedicineSessionRepository()
	billingRepo := repository.NewBillingRecordRepository()
	auditRepo := repository.NewAuditLogRepository()

	gate := service.NewAccessControl()
	auditService := service.NewAuditService(log, auditRepo)
	tokenStore := service.NewTokenStore(client, log)
	slots := service.NewSlotConflictDetector(log, doctorRepo, appointmentRepo)
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "usecase-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})

	bus := service.NewEventBus(log)
	service.NewCascadeCoordinator(db, log, sessionRepo, billingRepo).Register(bus)
	service.NewNotificationPublisher(client, log, eventStream, 1000).Register(bus)

	appointments := NewAppointmentUsecase(db, log, appointmentRepo, patientRepo, doctorRepo, sessionRepo, billingRepo,
		gate, slots, auditService, bus).(*appointmentUsecase)
	appointments.now = func() time.Time { return clinicNow }

	telemedicine := NewTelemedicineUsecase(db, log, appointmentRepo, sessionRepo, gate, auditService).(*telemedicineUsecase)
	telemedicine.now = func() time.Time { return clinicNow }

	return &harness{
		db:           db,
		redis:        server,
		client:       client,
		appointments: appointments,
		telemedicine: telemedicine,
		billing:      NewBillingUsecase(db, log, appointmentRepo, billingRepo, gate, auditService),
		doctors:      NewDoctorProfileUsecase(db, log, doctorRepo, gate, auditService),
		auditLogs:    NewAuditLogUsecase(db, log, auditRepo, gate),
		auth:         NewAuthUsecase(db, log, userRepo, roleRepo, doctorRepo, patientRepo, jwtService, tokenStore, auditService),
		tokenStore:   tokenStore,
		jwt:          jwtService,
	}
}

func (h *harness) appointment(t *testing.T, id uuid.UUID) *entity.Appointment {
	t.Helper()

	var appointment entity.Appointment
	require.NoError(t, h.db.First(&appointment, "id = ?", id).Error)
	return &appointment
}

func (h *harness) session(t *testing.T, appointmentID uuid.UUID) *entity.TelemedicineSession {
	t.Helper()

	session, err := repository.NewTelemedicineSessionRepository().FindByAppointmentID(context.Background(), h.db, appointmentID)
	require.NoError(t, err)
	return session
}

func (h *harness) auditCount(t *testing.T, action string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, h.db.Model(&entity.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}

func (h *harness) streamLength(t *testing.T) int64 {
	t.Helper()

	length, err := h.client.XLen(context.Background(), eventStream).Result()
	require.NoError(t, err)
	return length
}

func repositoryUsers() domainRepo.UserRepository {
	return repository.NewUserRepository()
}
