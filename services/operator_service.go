package services

import (
	"context"
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

var (
	ErrInvalidCredentials = errors.New("invalid operator name or password")
	ErrOperatorSuspended  = errors.New("operator account is suspended")
)

// OperatorService manages admin accounts
type OperatorService struct {
	db *gorm.DB
}

// NewOperatorService creates a new operator service
func NewOperatorService(db *gorm.DB) *OperatorService {
	return &OperatorService{db: db}
}

// OperatorInput is the provisioning payload. Name is the identity key.
type OperatorInput struct {
	Name     string `json:"name" validate:"required,max=64"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=Operator Lead Analyst Admin Moderator"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=Active Suspended"`
}

// OperatorFilter narrows a listing
type OperatorFilter struct {
	Search string
}

// UpsertResult reports the outcome of Upsert
type UpsertResult struct {
	Success  bool            `json:"success"`
	Created  bool            `json:"created"`
	Operator *model.Operator `json:"operator"`
}

// OperatorSummary holds counts derived from a listing
type OperatorSummary struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Lead   int `json:"lead"`
}

// NormalizeOperatorName trims and upper-cases a display name
func NormalizeOperatorName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// List returns operators ordered by name
func (s *OperatorService) List(ctx context.Context, f OperatorFilter) ([]model.Operator, error) {
	query := s.db.WithContext(ctx).Model(&model.Operator{})
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(role) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var operators []model.Operator
	if err := query.Order("name ASC").Find(&operators).Error; err != nil {
		return nil, storageErr("list operators", err)
	}
	return operators, nil
}

// Get returns a single operator by id
func (s *OperatorService) Get(ctx context.Context, id string) (*model.Operator, error) {
	var op model.Operator
	if err := s.db.WithContext(ctx).First(&op, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "operator", ID: id}
		}
		return nil, storageErr("load operator", err)
	}
	return &op, nil
}

// Upsert creates the operator or updates the one with the same name.
// A blank password leaves an existing credential untouched.
func (s *OperatorService) Upsert(ctx context.Context, actor Actor, in OperatorInput) (*UpsertResult, error) {
	in.Name = NormalizeOperatorName(in.Name)
	if in.Name == "" {
		return nil, invalid("name", "name is required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	role := model.RoleOperator
	if in.Role != "" {
		role = model.OperatorRole(in.Role)
	}
	status := model.OperatorActive
	if in.Status != "" {
		status = model.OperatorStatus(in.Status)
	}

	var hash string
	if in.Password != "" {
		var err error
		if hash, err = auth.HashPassword(in.Password); err != nil {
			return nil, invalid("password", "%v", err)
		}
	}

	result := &UpsertResult{Success: true}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Operator
		err := tx.Where("name = ?", in.Name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			op := model.Operator{
				ID:         uuid.New().String(),
				Name:       in.Name,
				Credential: hash,
				Role:       role,
				Status:     status,
				LastActive: time.Now().UTC(),
			}
			if err := tx.Create(&op).Error; err != nil {
				return err
			}
			result.Created = true
			result.Operator = &op
			_, err := recordAudit(tx, AuditInput{
				OperatorName: actor.auditName(),
				Action:       "provision",
				Target:       op.Name,
				Detail:       fmt.Sprintf("role=%s status=%s", op.Role, op.Status),
				Category:     model.AuditCategoryOperator,
			})
			return err
		case err != nil:
			return err
		}

		if existing.IsSuperAdmin && !actor.SuperAdmin && actor.OperatorID != "" {
			return &PermissionError{Action: "modify super admin"}
		}

		// omitted role or status keeps the stored value
		updates := map[string]interface{}{"updated_at": time.Now().UTC()}
		if in.Role != "" {
			updates["role"] = role
		}
		if in.Status != "" {
			updates["status"] = status
		}
		if hash != "" {
			updates["credential"] = hash
		}
		// suspension or a new password ends every open session
		if hash != "" || (in.Status != "" && status == model.OperatorSuspended && existing.Status != status) {
			updates["token_version"] = gorm.Expr("token_version + 1")
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&existing, "id = ?", existing.ID).Error; err != nil {
			return err
		}
		result.Operator = &existing

		detail := fmt.Sprintf("role=%s status=%s", existing.Role, existing.Status)
		if hash != "" {
			detail += " credential rotated"
		}
		_, err = recordAudit(tx, AuditInput{
			OperatorName: actor.auditName(),
			Action:       "update",
			Target:       existing.Name,
			Detail:       detail,
			Category:     model.AuditCategoryOperator,
		})
		return err
	})
	if err != nil {
		return nil, storageErr("upsert operator", err)
	}

	utils.Component("operators").WithFields(map[string]interface{}{
		"operator": result.Operator.Name,
		"created":  result.Created,
		"by":       actor.auditName(),
	}).Info("operator provisioned")
	return result, nil
}

// Delete terminates an operator. Termination cannot be undone.
func (s *OperatorService) Delete(ctx context.Context, actor Actor, id string) error {
	if actor.OperatorID != "" && actor.OperatorID == id {
		return invalid("id", "operators cannot terminate their own account")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var op model.Operator
		if err := tx.First(&op, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "operator", ID: id}
			}
			return err
		}
		if op.IsSuperAdmin && !actor.SuperAdmin {
			return &PermissionError{Action: "terminate super admin"}
		}

		if err := tx.Delete(&op).Error; err != nil {
			return err
		}
		_, err := recordAudit(tx, AuditInput{
			OperatorName: actor.auditName(),
			Action:       "terminate",
			Target:       op.Name,
			Category:     model.AuditCategoryOperator,
		})
		return err
	})
	if err != nil {
		return storageErr("delete operator", err)
	}

	utils.Component("operators").WithField("id", id).Info("operator terminated")
	return nil
}

// SetSuperAdmin grants or revokes super-admin rights. Only reachable from the CLI.
func (s *OperatorService) SetSuperAdmin(ctx context.Context, actor Actor, name string, super bool) error {
	name = NormalizeOperatorName(name)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Operator{}).Where("name = ?", name).Updates(map[string]interface{}{
			"is_super_admin": super,
			"token_version":  gorm.Expr("token_version + 1"),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &NotFoundError{Resource: "operator", ID: name}
		}

		action := "promote"
		if !super {
			action = "demote"
		}
		_, err := recordAudit(tx, AuditInput{
			OperatorName: actor.auditName(),
			Action:       action,
			Target:       name,
			Detail:       "super admin",
			Category:     model.AuditCategoryOperator,
		})
		return err
	})
	return storageErr("set super admin", err)
}

// Summarize folds a listing into the dashboard counters
func Summarize(operators []model.Operator) OperatorSummary {
	sum := OperatorSummary{Total: len(operators)}
	for _, op := range operators {
		if op.IsActive() {
			sum.Active++
		}
		if op.Role == model.RoleLead {
			sum.Lead++
		}
	}
	return sum
}

// Authenticate checks a name/password pair. Successful and failed attempts
// are both written to the audit log under AUTH.
func (s *OperatorService) Authenticate(ctx context.Context, name, password, ip string) (*model.Operator, error) {
	name = NormalizeOperatorName(name)
	log := utils.Component("auth").WithFields(map[string]interface{}{"operator": name, "ip": ip})

	var op model.Operator
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&op).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr("load operator", err)
	}

	failure := ""
	switch {
	case err != nil, op.Credential == "":
		failure = "unknown operator or no credential"
	case auth.VerifyPassword(op.Credential, password) != nil:
		failure = "wrong password"
	case !op.IsActive():
		failure = "account suspended"
	}

	if failure != "" {
		if _, aerr := recordAudit(s.db.WithContext(ctx), AuditInput{
			OperatorName: name,
			Action:       "login_failed",
			Target:       ip,
			Detail:       failure,
			Category:     model.AuditCategoryAuth,
		}); aerr != nil {
			log.WithError(aerr).Error("failed to record login failure")
		}
		log.WithField("reason", failure).Warn("operator login rejected")
		if failure == "account suspended" {
			return nil, ErrOperatorSuspended
		}
		return nil, ErrInvalidCredentials
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Model(&op).Update("last_active", now).Error; err != nil {
			return err
		}
		op.LastActive = now
		_, err := recordAudit(tx, AuditInput{
			OperatorName: op.Name,
			Action:       "login",
			Target:       ip,
			Category:     model.AuditCategoryAuth,
		})
		return err
	})
	if err != nil {
		return nil, storageErr("record login", err)
	}

	log.Info("operator logged in")
	return &op, nil
}

// Logout records the end of a session
func (s *OperatorService) Logout(ctx context.Context, actor Actor) error {
	_, err := recordAudit(s.db.WithContext(ctx), AuditInput{
		OperatorName: actor.auditName(),
		Action:       "logout",
		Category:     model.AuditCategoryAuth,
	})
	return storageErr("record logout", err)
}
