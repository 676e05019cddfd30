package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillingStatus represents the status of a billing record
type BillingStatus string

const (
	BillingStatusPending   BillingStatus = "pending"
	BillingStatusCompleted BillingStatus = "completed"
	BillingStatusFailed    BillingStatus = "failed"
	BillingStatusCancelled BillingStatus = "cancelled"
	BillingStatusRefunded  BillingStatus = "refunded"
)

// BillingRecord is loosely coupled to an appointment: deleting the
// appointment nulls AppointmentID instead of removing the record.
type BillingRecord struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID *uuid.UUID      `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	PatientID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        BillingStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BillingRecord) TableName() string {
	return "billing_records"
}

func (b *BillingRecord) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsPending checks if billing is still open
func (b *BillingRecord) IsPending() bool {
	return b.Status == BillingStatusPending
}
