package http

import (
	"net/http"
	"time"

	"clinic-scheduler/internal/delivery/http/handler"
	"clinic-scheduler/internal/delivery/http/middleware"
	"clinic-scheduler/internal/domain/entity"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router              *mux.Router
	log                 *logrus.Logger
	requestTimeout      time.Duration
	authHandler         *handler.AuthHandler
	appointmentHandler  *handler.AppointmentHandler
	telemedicineHandler *handler.TelemedicineHandler
	billingHandler      *handler.BillingHandler
	doctorHandler       *handler.DoctorHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	log *logrus.Logger,
	requestTimeout time.Duration,
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	telemedicineHandler *handler.TelemedicineHandler,
	billingHandler *handler.BillingHandler,
	doctorHandler *handler.DoctorHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		log:                 log,
		requestTimeout:      requestTimeout,
		authHandler:         authHandler,
		appointmentHandler:  appointmentHandler,
		telemedicineHandler: telemedicineHandler,
		billingHandler:      billingHandler,
		doctorHandler:       doctorHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Everything below requires a resolved principal
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/auth/logout", r.authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Appointments; ownership is decided per resource in the usecases
	protected.HandleFunc("/appointments", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", r.appointmentHandler.ListAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.DeleteAppointment).Methods(http.MethodDelete)
	protected.HandleFunc("/appointments/{id}/status", r.appointmentHandler.UpdateAppointmentStatus).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/cascade/retry", r.appointmentHandler.RetryCascade).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/telemedicine", r.telemedicineHandler.CreateSession).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/billing", r.billingHandler.CreateBillingRecord).Methods(http.MethodPost)

	protected.HandleFunc("/telemedicine/{id}", r.telemedicineHandler.UpdateSession).Methods(http.MethodPatch)

	protected.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	doctors := protected.PathPrefix("/doctors").Subrouter()
	doctors.Use(middleware.RequireRole(entity.RoleTypeAdmin, entity.RoleTypeDoctor))
	doctors.HandleFunc("/{id}/availability", r.doctorHandler.SetAvailability).Methods(http.MethodPatch)

	// Admin routes (protected - admin only)
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/active", r.authHandler.SetUserActive).Methods(http.MethodPatch)

	r.router.Use(r.corsMiddleware.Handle)
	r.router.Use(middleware.RequestLogger(r.log))
	r.router.Use(middleware.Timeout(r.requestTimeout))

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
