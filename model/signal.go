package model

import (
	"net/url"
	"time"
)

// SignalStatus is the broadcast state of a stream source
type SignalStatus string

const (
	SignalLive      SignalStatus = "Live"
	SignalOffline   SignalStatus = "Offline"
	SignalScheduled SignalStatus = "Scheduled"
)

// Valid reports whether s is a known status
func (s SignalStatus) Valid() bool {
	return s == SignalLive || s == SignalOffline || s == SignalScheduled
}

// DefaultSignalCategory is used when a signal is injected without one
const DefaultSignalCategory = "Entertainment"

// maskedPath replaces the path of masked URLs in listings
const maskedPath = "/••••"

// Signal is an administrator-managed stream source
type Signal struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(128);not null;index" json:"name"`
	URL         string       `gorm:"type:text;not null" json:"url"`
	Category    string       `gorm:"type:varchar(50);not null" json:"category"`
	Status      SignalStatus `gorm:"type:varchar(20);not null" json:"status"`
	Masked      bool         `gorm:"not null" json:"masked"`
	LastChecked time.Time    `json:"lastChecked"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TableName specifies the table name for Signal
func (Signal) TableName() string {
	return "signals"
}

// DisplayURL is the URL as it may be shown in listings. Masked signals
// keep scheme and host so operators can still tell sources apart.
func (s Signal) DisplayURL() string {
	if !s.Masked {
		return s.URL
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.Host == "" {
		return maskedPath[1:]
	}
	return u.Scheme + "://" + u.Host + maskedPath
}

// Redacted returns a copy safe to serialize in listings
func (s Signal) Redacted() Signal {
	s.URL = s.DisplayURL()
	return s
}
