package model

import "time"

// Channel is a public catalogue entry viewers can watch and favorite
type Channel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Category  string    `gorm:"type:varchar(50);not null;index" json:"category"`
	Logo      string    `gorm:"type:text" json:"logo,omitempty"`
	Viewers   string    `gorm:"type:varchar(20);default:'0'" json:"viewers"`
	Trending  bool      `gorm:"not null" json:"trending"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for Channel
func (Channel) TableName() string {
	return "channels"
}

// DefaultUserID is used for anonymous viewers
const DefaultUserID = "default_user"

// Favorite links a viewer to a channel they starred
type Favorite struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_favorite_user_channel" json:"userId"`
	ChannelID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_favorite_user_channel" json:"channelId"`
	CreatedAt time.Time `json:"createdAt"`

	// Relationships
	Channel Channel `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Favorite
func (Favorite) TableName() string {
	return "favorites"
}
