package model

import "time"

// OperatorRole is the clearance level of an admin account
type OperatorRole string

const (
	RoleOperator  OperatorRole = "Operator"
	RoleLead      OperatorRole = "Lead"
	RoleAnalyst   OperatorRole = "Analyst"
	RoleAdmin     OperatorRole = "Admin"
	RoleModerator OperatorRole = "Moderator"
)

// OperatorStatus is whether an account may sign in
type OperatorStatus string

const (
	OperatorActive    OperatorStatus = "Active"
	OperatorSuspended OperatorStatus = "Suspended"
)

// Operator represents an admin account of the dashboard
type Operator struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"` // always uppercase
	Credential   string         `gorm:"type:varchar(255)" json:"-"`                        // bcrypt hash, never exposed
	Role         OperatorRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status       OperatorStatus `gorm:"type:varchar(20);not null" json:"status"`
	IsSuperAdmin bool           `gorm:"not null" json:"isSuperAdmin"`
	TokenVersion int            `gorm:"not null" json:"-"` // Increment to invalidate all operator tokens
	LastActive   time.Time      `json:"lastActive"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// TableName specifies the table name for Operator
func (Operator) TableName() string {
	return "operators"
}

// IsActive reports whether the operator may sign in
func (o Operator) IsActive() bool {
	return o.Status == OperatorActive
}

// OperatorRoles lists every assignable role
var OperatorRoles = []OperatorRole{RoleOperator, RoleLead, RoleAnalyst, RoleAdmin, RoleModerator}

// Valid reports whether r is a known role
func (r OperatorRole) Valid() bool {
	for _, known := range OperatorRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status
func (s OperatorStatus) Valid() bool {
	return s == OperatorActive || s == OperatorSuspended
}
