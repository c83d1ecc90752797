package model

import "time"

// SiteConfigID is the primary key of the single live configuration row
const SiteConfigID uint = 1

// DefaultAccentColor is the cyan accent used until an operator picks another
const DefaultAccentColor = "#06b6d4"

// SiteConfig stores the site-wide appearance and feature flags.
// This is a singleton table; the row with ID=SiteConfigID is the only one read or written.
type SiteConfig struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	AccentColor     string    `gorm:"type:varchar(16);not null" json:"accentColor"`
	BrandingText    string    `gorm:"type:varchar(255);not null" json:"brandingText"`
	ShowHero        bool      `gorm:"not null" json:"showHero"`
	ShowFeatures    bool      `gorm:"not null" json:"showFeatures"`
	ShowWhatsNew    bool      `gorm:"not null" json:"showWhatsNew"`
	ShowFAQ         bool      `gorm:"column:show_faq;not null" json:"showFAQ"`
	MaintenanceMode bool      `gorm:"not null" json:"maintenanceMode"`
	AdSenseActive   bool      `gorm:"column:ad_sense_active;not null" json:"adSenseActive"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName specifies the table name for SiteConfig
func (SiteConfig) TableName() string {
	return "site_config"
}

// DefaultSiteConfig returns the hard-coded defaults applied on first use and on reset
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		ID:              SiteConfigID,
		AccentColor:     DefaultAccentColor,
		BrandingText:    "",
		ShowHero:        true,
		ShowFeatures:    true,
		ShowWhatsNew:    true,
		ShowFAQ:         true,
		MaintenanceMode: false,
		AdSenseActive:   false,
	}
}

// SameFlags reports whether two records carry identical settings, ignoring bookkeeping columns
func (c SiteConfig) SameFlags(o SiteConfig) bool {
	return c.AccentColor == o.AccentColor &&
		c.BrandingText == o.BrandingText &&
		c.ShowHero == o.ShowHero &&
		c.ShowFeatures == o.ShowFeatures &&
		c.ShowWhatsNew == o.ShowWhatsNew &&
		c.ShowFAQ == o.ShowFAQ &&
		c.MaintenanceMode == o.MaintenanceMode &&
		c.AdSenseActive == o.AdSenseActive
}
