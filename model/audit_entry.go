package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditCategory groups audit entries by the kind of resource touched
type AuditCategory string

const (
	AuditCategoryAuth     AuditCategory = "AUTH"
	AuditCategoryOperator AuditCategory = "OPERATOR"
	AuditCategoryUser     AuditCategory = "USER"
	AuditCategoryConfig   AuditCategory = "CONFIG"
	AuditCategorySignal   AuditCategory = "SIGNAL"
	AuditCategorySystem   AuditCategory = "SYSTEM"
)

// AuditCategories lists every accepted category in display order
var AuditCategories = []AuditCategory{
	AuditCategoryAuth,
	AuditCategoryOperator,
	AuditCategoryUser,
	AuditCategoryConfig,
	AuditCategorySignal,
	AuditCategorySystem,
}

// Valid reports whether c is one of the fixed categories
func (c AuditCategory) Valid() bool {
	for _, known := range AuditCategories {
		if c == known {
			return true
		}
	}
	return false
}

// AuditEntry is an immutable record of one administrative action.
// Rows are only ever inserted, or removed all at once by a purge.
type AuditEntry struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	OperatorName string         `gorm:"type:varchar(100);not null;index" json:"operatorName"`
	Action       string         `gorm:"type:varchar(100);not null" json:"action"`
	Target       string         `gorm:"type:varchar(255)" json:"target,omitempty"`
	Detail       string         `gorm:"type:text" json:"detail,omitempty"`
	Category     AuditCategory  `gorm:"type:varchar(20);not null;index" json:"category"`
	Changes      datatypes.JSON `json:"changes,omitempty"` // key -> new value, CONFIG entries only
	CreatedAt    time.Time      `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name for AuditEntry
func (AuditEntry) TableName() string {
	return "audit_entries"
}
