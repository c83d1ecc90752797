package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxSettingKeyLength = 100

// ChannelService serves the viewer catalogue, favorites and preferences
type ChannelService struct {
	db *gorm.DB
}

// NewChannelService creates a new channel service
func NewChannelService(db *gorm.DB) *ChannelService {
	return &ChannelService{db: db}
}

func viewerID(userID string) string {
	if userID = strings.TrimSpace(userID); userID == "" {
		return model.DefaultUserID
	}
	return userID
}

// ListChannels returns the catalogue, optionally restricted to one category
func (s *ChannelService) ListChannels(ctx context.Context, category string) ([]model.Channel, error) {
	query := s.db.WithContext(ctx).Model(&model.Channel{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var channels []model.Channel
	if err := query.Order("trending DESC").Order("name ASC").Find(&channels).Error; err != nil {
		return nil, storageErr("list channels", err)
	}
	return channels, nil
}

// ListFavorites returns the favorites of a viewer, newest first
func (s *ChannelService) ListFavorites(ctx context.Context, userID string) ([]model.Favorite, error) {
	var favorites []model.Favorite
	err := s.db.WithContext(ctx).
		Where("user_id = ?", viewerID(userID)).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, storageErr("list favorites", err)
	}
	return favorites, nil
}

// ToggleFavorite stars the channel, or un-stars it when already starred.
// It returns whether the channel is a favorite afterwards.
func (s *ChannelService) ToggleFavorite(ctx context.Context, userID, channelID string) (bool, error) {
	userID = viewerID(userID)
	favorited := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ch model.Channel
		if err := tx.Select("id").First(&ch, "id = ?", channelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "channel", ID: channelID}
			}
			return err
		}

		result := tx.Where("user_id = ? AND channel_id = ?", userID, channelID).Delete(&model.Favorite{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		favorited = true
		return tx.Create(&model.Favorite{
			ID:        uuid.New().String(),
			UserID:    userID,
			ChannelID: channelID,
			CreatedAt: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return false, storageErr("toggle favorite", err)
	}
	return favorited, nil
}

// GetSettings returns the preferences of a viewer as a key/value map
func (s *ChannelService) GetSettings(ctx context.Context, userID string) (map[string]string, error) {
	var rows []model.UserSetting
	if err := s.db.WithContext(ctx).Where("user_id = ?", viewerID(userID)).Find(&rows).Error; err != nil {
		return nil, storageErr("load settings", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// UpdateSetting creates or overwrites one preference
func (s *ChannelService) UpdateSetting(ctx context.Context, userID, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return invalid("key", "key is required")
	}
	if len(key) > maxSettingKeyLength {
		return invalid("key", "must be at most %d characters", maxSettingKeyLength)
	}

	row := model.UserSetting{
		ID:        uuid.New().String(),
		UserID:    viewerID(userID),
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	return storageErr("update setting", err)
}

// ClearViewer removes every favorite and preference of a viewer.
// Run by operators on request, so it is audited under USER.
func (s *ChannelService) ClearViewer(ctx context.Context, actor Actor, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, invalid("userId", "user id is required")
	}

	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fav := tx.Where("user_id = ?", userID).Delete(&model.Favorite{})
		if fav.Error != nil {
			return fav.Error
		}
		set := tx.Where("user_id = ?", userID).Delete(&model.UserSetting{})
		if set.Error != nil {
			return set.Error
		}
		removed = fav.RowsAffected + set.RowsAffected
		if removed == 0 {
			return &NotFoundError{Resource: "viewer", ID: userID}
		}

		_, err := recordAudit(tx, AuditInput{
			OperatorName: actor.auditName(),
			Action:       "clear_viewer",
			Target:       userID,
			Detail:       "favorites and settings removed",
			Category:     model.AuditCategoryUser,
		})
		return err
	})
	if err != nil {
		return 0, storageErr("clear viewer", err)
	}

	utils.Component("viewers").WithField("user", userID).Info("viewer data cleared")
	return removed, nil
}
