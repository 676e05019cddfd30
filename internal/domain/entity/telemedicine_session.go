package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStatus represents the status of a telemedicine session
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusScheduled: {SessionStatusActive, SessionStatusCancelled},
	SessionStatusActive:    {SessionStatusCompleted, SessionStatusCancelled},
}

func ParseSessionStatus(value string) (SessionStatus, bool) {
	switch status := SessionStatus(value); status {
	case SessionStatusScheduled, SessionStatusActive, SessionStatusCompleted, SessionStatusCancelled:
		return status, true
	}
	return "", false
}

func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	for _, next := range sessionTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TelemedicineSession is the video-visit shell of a telemedicine appointment.
// AppointmentID is unique: one session per appointment.
type TelemedicineSession struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"appointment_id"`
	RoomCode      string        `gorm:"type:varchar(50);uniqueIndex;not null" json:"room_code"`
	Status        SessionStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	StartTime     *time.Time    `json:"start_time,omitempty"`
	EndTime       *time.Time    `json:"end_time,omitempty"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

func (TelemedicineSession) TableName() string {
	return "telemedicine_sessions"
}

func (s *TelemedicineSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// NewTelemedicineSession builds the scheduled session shell for an appointment.
func NewTelemedicineSession(appointmentID uuid.UUID, appointmentDate time.Time) *TelemedicineSession {
	return &TelemedicineSession{
		AppointmentID: appointmentID,
		RoomCode:      generateRoomCode(appointmentDate),
		Status:        SessionStatusScheduled,
	}
}

// generateRoomCode generates a room code: TM-YYYYMMDD-XXXXXXXX, taking the
// suffix from the random bits of a v4 UUID.
func generateRoomCode(date time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("TM-%s-%X", date.Format("20060102"), id[:4])
}
