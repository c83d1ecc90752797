package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/utils"
	"github.com/vpoint-tv/vpoint-api/utils/auth"
	"gorm.io/gorm"
)

// SystemOperatorName is recorded as the operator of entries written by the system itself
const SystemOperatorName = "SYSTEM"

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll(adminName, adminPassword string) error {
	utils.Log.Info("Starting database seeding...")

	if err := s.SeedSuperAdmin(adminName, adminPassword); err != nil {
		return fmt.Errorf("failed to seed super admin: %w", err)
	}

	if err := s.SeedSiteConfig(); err != nil {
		return fmt.Errorf("failed to seed site config: %w", err)
	}

	if err := s.SeedSignals(); err != nil {
		return fmt.Errorf("failed to seed signals: %w", err)
	}

	if err := s.SeedChannels(DefaultChannels()); err != nil {
		return fmt.Errorf("failed to seed channels: %w", err)
	}

	utils.Log.Info("Database seeding completed successfully!")
	return nil
}

// SeedSuperAdmin creates the super-admin operator if none exists
func (s *Seeder) SeedSuperAdmin(name, password string) error {
	var count int64
	if err := s.db.Model(&model.Operator{}).Where("is_super_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		utils.Log.Info("Super admin already exists, skipping...")
		return nil
	}

	if name == "" || password == "" {
		utils.Log.Warn("ADMIN_NAME and ADMIN_PASSWORD not set, skipping super admin creation")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	op := model.Operator{
		ID:           uuid.New().String(),
		Name:         strings.ToUpper(strings.TrimSpace(name)),
		Credential:   hash,
		Role:         model.RoleAdmin,
		Status:       model.OperatorActive,
		IsSuperAdmin: true,
		LastActive:   time.Now().UTC(),
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&op).Error; err != nil {
			return err
		}
		utils.Log.WithField("operator", op.Name).Info("Created super admin operator")
		return tx.Create(&model.AuditEntry{
			OperatorName: SystemOperatorName,
			Action:       "seed",
			Target:       op.Name,
			Detail:       "super admin provisioned",
			Category:     model.AuditCategorySystem,
		}).Error
	})
}

// SeedSiteConfig writes the default configuration row if missing
func (s *Seeder) SeedSiteConfig() error {
	cfg := model.DefaultSiteConfig()
	return s.db.Where(model.SiteConfig{ID: model.SiteConfigID}).FirstOrCreate(&cfg).Error
}

// SeedSignals inserts the stock signals on an empty registry
func (s *Seeder) SeedSignals() error {
	var count int64
	if err := s.db.Model(&model.Signal{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		utils.Log.Info("Signals already present, skipping...")
		return nil
	}

	now := time.Now().UTC()
	signals := []model.Signal{
		{ID: uuid.New().String(), Name: "ASIA TV", URL: "https://stream.asiatvnet.com/1/live/master.m3u8", Category: "Entertainment", Status: model.SignalLive, Masked: true, LastChecked: now},
		{ID: uuid.New().String(), Name: "SKY SPORTS", URL: "m3u8-placeholder", Category: "Sports", Status: model.SignalLive, Masked: true, LastChecked: now},
	}
	return s.db.Create(&signals).Error
}

// SeedChannels inserts channels whose id is not stored yet
func (s *Seeder) SeedChannels(channels []model.Channel) error {
	for _, ch := range channels {
		var existing model.Channel
		err := s.db.First(&existing, "id = ?", ch.ID).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.db.Create(&ch).Error; err != nil {
			return err
		}
	}
	return nil
}

// DefaultChannels is the starter catalogue shown to viewers
func DefaultChannels() []model.Channel {
	return []model.Channel{
		{ID: "asia-tv", Name: "Asia TV", URL: "https://stream.asiatvnet.com/1/live/master.m3u8", Category: "Entertainment", Viewers: "1.2K", Trending: true},
		{ID: "sky-sports", Name: "Sky Sports", URL: "m3u8-placeholder", Category: "Sports", Viewers: "860"},
		{ID: "world-news", Name: "World News", URL: "m3u8-placeholder", Category: "News", Viewers: "430"},
	}
}
