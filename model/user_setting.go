package model

import "time"

// UserSetting is one key/value preference of a viewer
type UserSetting struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_setting_key" json:"userId"`
	Key       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_user_setting_key" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for UserSetting
func (UserSetting) TableName() string {
	return "user_settings"
}
