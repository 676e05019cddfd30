package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentEventType names a domain event emitted after a committed change.
type AppointmentEventType string

const (
	EventAppointmentCreated   AppointmentEventType = "appointment.created"
	EventAppointmentConfirmed AppointmentEventType = "appointment.confirmed"
	EventAppointmentCompleted AppointmentEventType = "appointment.completed"
	EventAppointmentCancelled AppointmentEventType = "appointment.cancelled"
	EventAppointmentNoShow    AppointmentEventType = "appointment.no_show"
	EventAppointmentDeleted   AppointmentEventType = "appointment.deleted"
)

// EventTypeForStatus returns the event announcing that an appointment entered status.
func EventTypeForStatus(status AppointmentStatus) (AppointmentEventType, bool) {
	switch status {
	case AppointmentStatusScheduled:
		return EventAppointmentCreated, true
	case AppointmentStatusConfirmed:
		return EventAppointmentConfirmed, true
	case AppointmentStatusCompleted:
		return EventAppointmentCompleted, true
	case AppointmentStatusCancelled:
		return EventAppointmentCancelled, true
	case AppointmentStatusNoShow:
		return EventAppointmentNoShow, true
	}
	return "", false
}

// AppointmentEvent is a snapshot of an appointment at the moment of a change.
type AppointmentEvent struct {
	Type               AppointmentEventType `json:"type"`
	AppointmentID      uuid.UUID            `json:"appointment_id"`
	PatientID          uuid.UUID            `json:"patient_id"`
	DoctorID           uuid.UUID            `json:"doctor_id"`
	AppointmentType    AppointmentType      `json:"appointment_type"`
	Status             AppointmentStatus    `json:"status"`
	AppointmentDate    string               `json:"appointment_date"`
	AppointmentTime    string               `json:"appointment_time"`
	CancellationReason string               `json:"cancellation_reason,omitempty"`
	ActorID            uuid.UUID            `json:"actor_id"`
	OccurredAt         time.Time            `json:"occurred_at"`
}

func NewAppointmentEvent(eventType AppointmentEventType, appointment *Appointment, actorID uuid.UUID) AppointmentEvent {
	return AppointmentEvent{
		Type:               eventType,
		AppointmentID:      appointment.ID,
		PatientID:          appointment.PatientID,
		DoctorID:           appointment.DoctorID,
		AppointmentType:    appointment.Type,
		Status:             appointment.Status,
		AppointmentDate:    appointment.AppointmentDate.Format("2006-01-02"),
		AppointmentTime:    appointment.AppointmentTime,
		CancellationReason: appointment.CancellationReason,
		ActorID:            actorID,
		OccurredAt:         time.Now().UTC(),
	}
}
