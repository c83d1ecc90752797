package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/utils"
	"golang.org/x/net/idna"
	"gorm.io/gorm"
)

// SignalService manages stream sources
type SignalService struct {
	db *gorm.DB
}

// NewSignalService creates a new signal service
func NewSignalService(db *gorm.DB) *SignalService {
	return &SignalService{db: db}
}

// SignalInput is the payload of an inject call
type SignalInput struct {
	Name     string `json:"name" validate:"required,max=128"`
	URL      string `json:"url" validate:"required,max=2048"`
	Category string `json:"category,omitempty" validate:"omitempty,max=50"`
}

// SignalPatch edits an existing signal. Nil fields are left alone.
type SignalPatch struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// SignalFilter narrows a listing
type SignalFilter struct {
	Search string
	Status model.SignalStatus
}

// List returns signals ordered by name
func (s *SignalService) List(ctx context.Context, f SignalFilter) ([]model.Signal, error) {
	query := s.db.WithContext(ctx).Model(&model.Signal{})
	if search := strings.TrimSpace(f.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(search))
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var signals []model.Signal
	if err := query.Order("name ASC").Order("created_at ASC").Find(&signals).Error; err != nil {
		return nil, storageErr("list signals", err)
	}
	return signals, nil
}

// Get returns one signal
func (s *SignalService) Get(ctx context.Context, id string) (*model.Signal, error) {
	sig, err := findSignal(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, storageErr("load signal", err)
	}
	return sig, nil
}

func findSignal(db *gorm.DB, id string) (*model.Signal, error) {
	var sig model.Signal
	if err := db.First(&sig, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "signal", ID: id}
		}
		return nil, err
	}
	return &sig, nil
}

// Inject registers a new signal. New signals are always Live and masked.
func (s *SignalService) Inject(ctx context.Context, actor Actor, in SignalInput) (*model.Signal, error) {
	in.Name = strings.ToUpper(strings.TrimSpace(in.Name))
	in.URL = strings.TrimSpace(in.URL)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return nil, invalid("name", "name is required")
	}
	if in.URL == "" {
		return nil, invalid("url", "url is required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	normalized, err := NormalizeSignalURL(in.URL)
	if err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = model.DefaultSignalCategory
	}

	now := time.Now().UTC()
	sig := &model.Signal{
		ID:          uuid.New().String(),
		Name:        in.Name,
		URL:         normalized,
		Category:    in.Category,
		Status:      model.SignalLive,
		Masked:      true,
		LastChecked: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sig).Error; err != nil {
			return err
		}
		_, err := recordAudit(tx, AuditInput{
			OperatorName: actor.auditName(),
			Action:       "inject",
			Target:       sig.Name,
			Detail:       fmt.Sprintf("category=%s", sig.Category),
			Category:     model.AuditCategorySignal,
		})
		return err
	})
	if err != nil {
		return nil, storageErr("inject signal", err)
	}

	utils.Component("signals").WithFields(map[string]interface{}{
		"signal": sig.Name,
		"id":     sig.ID,
	}).Info("signal injected")
	return sig, nil
}

// Update applies status, category or name edits
func (s *SignalService) Update(ctx context.Context, actor Actor, id string, patch SignalPatch) (*model.Signal, error) {
	updates := make(map[string]interface{})
	var details []string

	if patch.Name != nil {
		name := strings.ToUpper(strings.TrimSpace(*patch.Name))
		if name == "" {
			return nil, invalid("name", "name is required")
		}
		updates["name"] = name
		details = append(details, "name="+name)
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		if category == "" {
			return nil, invalid("category", "category cannot be empty")
		}
		updates["category"] = category
		details = append(details, "category="+category)
	}
	if patch.Status != nil {
		status := model.SignalStatus(*patch.Status)
		if !status.Valid() {
			return nil, invalid("status", "must be one of: Live, Offline, Scheduled")
		}
		updates["status"] = status
		details = append(details, "status="+string(status))
	}
	if len(updates) == 0 {
		return nil, invalid("", "no signal fields supplied")
	}
	updates["updated_at"] = time.Now().UTC()

	var sig *model.Signal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := findSignal(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(cur).Updates(updates).Error; err != nil {
			return err
		}
		if sig, err = findSignal(tx, id); err != nil {
			return err
		}
		_, err = recordAudit(tx, AuditInput{
			OperatorName: actor.auditName(),
			Action:       "update",
			Target:       sig.Name,
			Detail:       strings.Join(details, " "),
			Category:     model.AuditCategorySignal,
		})
		return err
	})
	if err != nil {
		return nil, storageErr("update signal", err)
	}
	return sig, nil
}

// ToggleMask flips whether the signal URL is hidden in listings
func (s *SignalService) ToggleMask(ctx context.Context, actor Actor, id string) (*model.Signal, error) {
	var sig *model.Signal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := findSignal(tx, id)
		if err != nil {
			return err
		}
		masked := !cur.Masked
		if err := tx.Model(cur).Updates(map[string]interface{}{
			"masked":     masked,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
			return err
		}
		cur.Masked = masked
		sig = cur

		action := "unmask"
		if masked {
			action = "mask"
		}
		_, err = recordAudit(tx, AuditInput{
			OperatorName: actor.auditName(),
			Action:       action,
			Target:       cur.Name,
			Category:     model.AuditCategorySignal,
		})
		return err
	})
	if err != nil {
		return nil, storageErr("toggle signal mask", err)
	}
	return sig, nil
}

// Delete removes a signal
func (s *SignalService) Delete(ctx context.Context, actor Actor, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sig, err := findSignal(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(sig).Error; err != nil {
			return err
		}
		_, err = recordAudit(tx, AuditInput{
			OperatorName: actor.auditName(),
			Action:       "delete",
			Target:       sig.Name,
			Category:     model.AuditCategorySignal,
		})
		return err
	})
	if err != nil {
		return storageErr("delete signal", err)
	}

	utils.Component("signals").WithField("id", id).Info("signal deleted")
	return nil
}

// RecordProbe stores the outcome of a reachability check. A change of
// status is written to the audit log on behalf of SYSTEM. Signals that are
// Scheduled by the time the result arrives are left untouched.
func (s *SignalService) RecordProbe(ctx context.Context, id string, status model.SignalStatus, checkedAt time.Time, detail string) (bool, error) {
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := findSignal(tx, id)
		if err != nil {
			return err
		}
		// scheduled while the sweep was running
		if cur.Status == model.SignalScheduled {
			return nil
		}
		changed = cur.Status != status
		if err := tx.Model(cur).Updates(map[string]interface{}{
			"status":       status,
			"last_checked": checkedAt.UTC(),
		}).Error; err != nil {
			return err
		}
		if !changed {
			return nil
		}
		_, err = recordAudit(tx, AuditInput{
			OperatorName: SystemActor.Name,
			Action:       "status_change",
			Target:       cur.Name,
			Detail:       fmt.Sprintf("%s -> %s %s", cur.Status, status, detail),
			Category:     model.AuditCategorySignal,
		})
		return err
	})
	if err != nil {
		return false, storageErr("record probe", err)
	}
	return changed, nil
}

// NormalizeSignalURL converts the host of absolute URLs to its ASCII form.
// Values without a host (placeholders) are stored as given.
func NormalizeSignalURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", invalid("url", "url is malformed")
	}
	if u.Host == "" {
		return raw, nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", invalid("url", "unsupported scheme %q", u.Scheme)
	}

	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return u.String(), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", invalid("url", "invalid host %q", host)
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(ascii, port)
	} else {
		u.Host = ascii
	}
	return u.String(), nil
}
