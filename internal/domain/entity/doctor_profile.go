package entity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorProfile represents doctor-specific profile data.
// UserID is the owning user and the basis of every ownership check.
type DoctorProfile struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	STRNumber      string    `gorm:"column:str_number;type:varchar(50);uniqueIndex;not null" json:"str_number"`
	Specialization string    `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Biography      string    `gorm:"type:text" json:"biography,omitempty"`
	IsAvailable    *bool     `gorm:"not null;default:true" json:"is_available"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

func (d *DoctorProfile) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Available reports whether the doctor accepts new bookings.
func (d *DoctorProfile) Available() bool {
	return d.IsAvailable == nil || *d.IsAvailable
}
