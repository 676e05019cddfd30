package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

// appointmentTransitions is the legal edge set. Statuses without an entry are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
}

// ParseAppointmentStatus validates a client supplied status value.
func ParseAppointmentStatus(value string) (AppointmentStatus, bool) {
	switch status := AppointmentStatus(value); status {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return status, true
	}
	return "", false
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, next := range appointmentTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s AppointmentStatus) IsTerminal() bool {
	return len(appointmentTransitions[s]) == 0
}

// AppointmentType is the kind of visit booked
type AppointmentType string

const (
	AppointmentTypeInPerson     AppointmentType = "in-person"
	AppointmentTypeTelemedicine AppointmentType = "telemedicine"
	AppointmentTypeFollowUp     AppointmentType = "follow-up"
)

func ParseAppointmentType(value string) (AppointmentType, bool) {
	switch t := AppointmentType(value); t {
	case AppointmentTypeInPerson, AppointmentTypeTelemedicine, AppointmentTypeFollowUp:
		return t, true
	}
	return "", false
}

// Appointment books one doctor slot for one patient.
// At most one non-cancelled appointment may hold a (doctor, date, time) slot;
// idx_appointments_active_slot enforces it in the store.
type Appointment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID           uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_appointments_active_slot,where:status <> 'cancelled'" json:"doctor_id"`
	AppointmentDate    time.Time         `gorm:"type:date;not null;uniqueIndex:idx_appointments_active_slot,where:status <> 'cancelled'" json:"appointment_date"`
	AppointmentTime    string            `gorm:"type:varchar(5);not null;uniqueIndex:idx_appointments_active_slot,where:status <> 'cancelled'" json:"appointment_time"`
	DurationMinutes    int               `gorm:"not null;default:30" json:"duration_minutes"`
	Status             AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Type               AppointmentType   `gorm:"type:varchar(20);not null" json:"type"`
	Reason             string            `gorm:"type:text;not null" json:"reason"`
	CancellationReason string            `gorm:"type:text" json:"cancellation_reason,omitempty"`
	StatusChangedAt    *time.Time        `json:"status_changed_at,omitempty"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient PatientProfile `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  DoctorProfile  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the appointment still occupies its slot.
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentStatusCancelled
}

// IsTelemedicine checks the appointment type
func (a *Appointment) IsTelemedicine() bool {
	return a.Type == AppointmentTypeTelemedicine
}

// Owners returns the owning user ids. Patient and Doctor must be loaded.
func (a *Appointment) Owners() ResourceOwners {
	return ResourceOwners{
		PatientOwnerUserID: a.Patient.UserID,
		DoctorOwnerUserID:  a.Doctor.UserID,
	}
}
