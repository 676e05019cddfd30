package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog is one append-only entry of the audit trail. UserID is nil for
// actions taken by the system.
type AuditLog struct {
	ID        int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID    `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string        `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  AuditMetadata `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time     `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditMetadata holds the entity snapshot of an audit entry and is stored as
// a JSON document.
type AuditMetadata map[string]interface{}

func (m AuditMetadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode audit metadata: %w", err)
	}
	return string(encoded), nil
}

func (m *AuditMetadata) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("decode audit metadata: unsupported type %T", src)
	}

	decoded := AuditMetadata{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decode audit metadata: %w", err)
	}
	*m = decoded
	return nil
}

// Common audit actions
const (
	AuditActionUserLogin             = "user.login"
	AuditActionUserLogout            = "user.logout"
	AuditActionUserRegister          = "user.register"
	AuditActionUserStatus            = "user.status"
	AuditActionAppointmentCreate     = "appointment.create"
	AuditActionAppointmentTransition = "appointment.transition"
	AuditActionAppointmentDelete     = "appointment.delete"
	AuditActionSessionCreate         = "telemedicine.create"
	AuditActionSessionUpdate         = "telemedicine.update"
	AuditActionBillingCreate         = "billing.create"
	AuditActionDoctorAvailability    = "doctor.availability"
)
