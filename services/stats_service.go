package services

import (
	"context"
	"sort"
	"time"

	"github.com/vpoint-tv/vpoint-api/model"
	"gorm.io/gorm"
)

// StatsService computes dashboard figures from the live tables
type StatsService struct {
	db *gorm.DB
}

// NewStatsService creates a new stats service
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// DBStats are row counts shown on the system screen
type DBStats struct {
	Channels        int64 `json:"channels"`
	Signals         int64 `json:"signals"`
	LiveSignals     int64 `json:"liveSignals"`
	Operators       int64 `json:"operators"`
	ActiveOperators int64 `json:"activeOperators"`
	Users           int64 `json:"users"`
	Favorites       int64 `json:"favorites"`
	Settings        int64 `json:"settings"`
	AuditEntries    int64 `json:"auditEntries"`
}

// UserActivity summarises what one viewer has stored
type UserActivity struct {
	UserID     string    `json:"userId"`
	Favorites  int       `json:"favorites"`
	Settings   int       `json:"settings"`
	LastActive time.Time `json:"lastActive"`
}

// DBStats counts rows in every table the dashboard reports on
func (s *StatsService) DBStats(ctx context.Context) (*DBStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DBStats{}

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{db.Model(&model.Channel{}), &stats.Channels},
		{db.Model(&model.Signal{}), &stats.Signals},
		{db.Model(&model.Signal{}).Where("status = ?", model.SignalLive), &stats.LiveSignals},
		{db.Model(&model.Operator{}), &stats.Operators},
		{db.Model(&model.Operator{}).Where("status = ?", model.OperatorActive), &stats.ActiveOperators},
		{db.Model(&model.Favorite{}), &stats.Favorites},
		{db.Model(&model.UserSetting{}), &stats.Settings},
		{db.Model(&model.AuditEntry{}), &stats.AuditEntries},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, storageErr("count rows", err)
		}
	}

	activity, err := s.UserActivity(ctx, 0)
	if err != nil {
		return nil, err
	}
	stats.Users = int64(len(activity))
	return stats, nil
}

type activityRow struct {
	UserID   string
	ActiveAt time.Time
}

// UserActivity aggregates favorites and settings per viewer, most recently
// active first. limit <= 0 returns every viewer.
func (s *StatsService) UserActivity(ctx context.Context, limit int) ([]UserActivity, error) {
	db := s.db.WithContext(ctx)

	var favs, sets []activityRow
	if err := db.Model(&model.Favorite{}).Select("user_id, created_at AS active_at").Scan(&favs).Error; err != nil {
		return nil, storageErr("load favorite activity", err)
	}
	if err := db.Model(&model.UserSetting{}).Select("user_id, updated_at AS active_at").Scan(&sets).Error; err != nil {
		return nil, storageErr("load setting activity", err)
	}

	byUser := make(map[string]*UserActivity)
	touch := func(row activityRow) *UserActivity {
		a, ok := byUser[row.UserID]
		if !ok {
			a = &UserActivity{UserID: row.UserID}
			byUser[row.UserID] = a
		}
		if row.ActiveAt.After(a.LastActive) {
			a.LastActive = row.ActiveAt
		}
		return a
	}
	for _, row := range favs {
		touch(row).Favorites++
	}
	for _, row := range sets {
		touch(row).Settings++
	}

	out := make([]UserActivity, 0, len(byUser))
	for _, a := range byUser {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActive.Equal(out[j].LastActive) {
			return out[i].LastActive.After(out[j].LastActive)
		}
		return out[i].UserID < out[j].UserID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
