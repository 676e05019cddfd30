package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants
const (
	RoleIDAdmin   = 1
	RoleIDDoctor  = 2
	RoleIDPatient = 3
)

// RoleNames constants
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// RoleType is the closed set of roles a principal can act as.
type RoleType int

const (
	RoleTypeAdmin RoleType = iota + 1
	RoleTypeDoctor
	RoleTypePatient
)

// RoleTypeFromID maps a stored role id to its RoleType.
func RoleTypeFromID(roleID int) (RoleType, bool) {
	switch roleID {
	case RoleIDAdmin:
		return RoleTypeAdmin, true
	case RoleIDDoctor:
		return RoleTypeDoctor, true
	case RoleIDPatient:
		return RoleTypePatient, true
	}
	return 0, false
}

func (r RoleType) String() string {
	switch r {
	case RoleTypeAdmin:
		return RoleAdmin
	case RoleTypeDoctor:
		return RoleDoctor
	case RoleTypePatient:
		return RolePatient
	}
	return "unknown"
}

// DefaultRoles are seeded by migrations and test fixtures.
func DefaultRoles() []Role {
	return []Role{
		{ID: RoleIDAdmin, RoleName: RoleAdmin, Description: "Clinic administrator"},
		{ID: RoleIDDoctor, RoleName: RoleDoctor, Description: "Practicing doctor"},
		{ID: RoleIDPatient, RoleName: RolePatient, Description: "Registered patient"},
	}
}
