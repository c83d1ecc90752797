package services

import (
	"context"
	"errors"
	"time"

	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigPublisher is told about every committed configuration change
type ConfigPublisher interface {
	Publish(ctx context.Context, cfg model.SiteConfig) error
}

// ConfigService owns the singleton site configuration row
type ConfigService struct {
	db        *gorm.DB
	publisher ConfigPublisher
}

// NewConfigService creates a new config service. publisher may be nil.
func NewConfigService(db *gorm.DB, publisher ConfigPublisher) *ConfigService {
	return &ConfigService{db: db, publisher: publisher}
}

// Get returns the current configuration, creating the default row on first use
func (s *ConfigService) Get(ctx context.Context) (*model.SiteConfig, error) {
	cfg, err := loadConfig(s.db.WithContext(ctx))
	if err != nil {
		return nil, storageErr("load site config", err)
	}
	return cfg, nil
}

func loadConfig(db *gorm.DB) (*model.SiteConfig, error) {
	var cfg model.SiteConfig
	err := db.First(&cfg, model.SiteConfigID).Error
	if err == nil {
		return &cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// first use; a concurrent creator may win the insert
	defaults := model.DefaultSiteConfig()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error; err != nil {
		return nil, err
	}
	if err := db.First(&cfg, model.SiteConfigID).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Update merges patch onto the stored record. Only the changed columns are
// written, so concurrent updates of different keys do not overwrite each other.
func (s *ConfigService) Update(ctx context.Context, actor Actor, patch ConfigPatch) (*model.SiteConfig, error) {
	var (
		updated *model.SiteConfig
		changed map[string]interface{}
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := loadConfig(tx)
		if err != nil {
			return err
		}

		var columns map[string]interface{}
		changed, columns = patch.changes(*cur)
		if len(columns) == 0 {
			updated = cur
			return nil
		}
		columns["updated_at"] = time.Now().UTC()

		if err := tx.Model(&model.SiteConfig{}).Where("id = ?", model.SiteConfigID).Updates(columns).Error; err != nil {
			return err
		}

		if _, err := recordAudit(tx, AuditInput{
			OperatorName: actor.auditName(),
			Action:       "update",
			Target:       "site_config",
			Detail:       describeChanges(changed),
			Category:     model.AuditCategoryConfig,
			Changes:      changed,
		}); err != nil {
			return err
		}

		updated, err = loadConfig(tx)
		return err
	})
	if err != nil {
		return nil, storageErr("update site config", err)
	}

	if len(changed) > 0 {
		utils.Component("config").WithFields(map[string]interface{}{
			"operator": actor.Name,
			"changes":  describeChanges(changed),
		}).Info("site config updated")
		s.publish(ctx, *updated)
	}
	return updated, nil
}

// Reset restores the hard-coded defaults
func (s *ConfigService) Reset(ctx context.Context, actor Actor) (*model.SiteConfig, error) {
	var updated *model.SiteConfig

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadConfig(tx); err != nil {
			return err
		}

		def := model.DefaultSiteConfig()
		columns := make(map[string]interface{}, len(configFields)+1)
		for _, field := range configFields {
			columns[field.column] = field.get(def)
		}
		columns["updated_at"] = time.Now().UTC()

		if err := tx.Model(&model.SiteConfig{}).Where("id = ?", model.SiteConfigID).Updates(columns).Error; err != nil {
			return err
		}

		if _, err := recordAudit(tx, AuditInput{
			OperatorName: actor.auditName(),
			Action:       "reset",
			Target:       "site_config",
			Detail:       "restored default configuration",
			Category:     model.AuditCategoryConfig,
		}); err != nil {
			return err
		}

		var err error
		updated, err = loadConfig(tx)
		return err
	})
	if err != nil {
		return nil, storageErr("reset site config", err)
	}

	utils.Component("config").WithField("operator", actor.Name).Info("site config reset")
	s.publish(ctx, *updated)
	return updated, nil
}

func (s *ConfigService) publish(ctx context.Context, cfg model.SiteConfig) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, cfg); err != nil {
		utils.Component("config").WithError(err).Warn("failed to publish config change")
	}
}
