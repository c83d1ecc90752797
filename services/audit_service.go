package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditCSVHeader is the first line of every export
const AuditCSVHeader = "Time,Operator,Action,Target,Detail,Category"

// AuditArchiver stores a copy of the log before it is purged
type AuditArchiver interface {
	ArchiveAudit(ctx context.Context, name string, body []byte) (string, error)
}

// AuditService records and queries administrative actions
type AuditService struct {
	db       *gorm.DB
	archiver AuditArchiver
}

// NewAuditService creates a new audit service
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// SetArchiver enables archiving of the log on purge
func (s *AuditService) SetArchiver(a AuditArchiver) {
	s.archiver = a
}

// AuditInput is the caller-supplied part of an audit entry
type AuditInput struct {
	OperatorName string
	Action       string
	Target       string
	Detail       string
	Category     model.AuditCategory
	Changes      map[string]interface{}
}

// AuditFilter narrows a listing. Zero values mean no restriction.
type AuditFilter struct {
	Search   string
	Category model.AuditCategory
	Page     int
	Limit    int

	// upTo limits the filter to ids at or below it when non-zero
	upTo uint
}

// Append stores a new entry and returns it with id and timestamp assigned
func (s *AuditService) Append(ctx context.Context, in AuditInput) (*model.AuditEntry, error) {
	entry, err := recordAudit(s.db.WithContext(ctx), in)
	if err != nil {
		return nil, storageErr("append audit entry", err)
	}
	return entry, nil
}

// recordAudit writes an entry through db, which is the caller's transaction
// when the entry accompanies a mutation.
func recordAudit(db *gorm.DB, in AuditInput) (*model.AuditEntry, error) {
	if !in.Category.Valid() {
		return nil, invalid("category", "unknown audit category %q", in.Category)
	}
	if strings.TrimSpace(in.Action) == "" {
		return nil, invalid("action", "action is required")
	}
	if in.OperatorName == "" {
		in.OperatorName = SystemActor.Name
	}

	entry := &model.AuditEntry{
		OperatorName: in.OperatorName,
		Action:       in.Action,
		Target:       in.Target,
		Detail:       in.Detail,
		Category:     in.Category,
		CreatedAt:    time.Now().UTC(),
	}
	if len(in.Changes) > 0 {
		raw, err := json.Marshal(in.Changes)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal audit changes: %w", err)
		}
		entry.Changes = datatypes.JSON(raw)
	}

	if err := db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *AuditService) filtered(ctx context.Context, f AuditFilter) (*gorm.DB, error) {
	query := s.db.WithContext(ctx).Model(&model.AuditEntry{})
	if f.upTo > 0 {
		query = query.Where("id <= ?", f.upTo)
	}

	if f.Category != "" {
		if !f.Category.Valid() {
			return nil, invalid("category", "unknown audit category %q", f.Category)
		}
		query = query.Where("category = ?", f.Category)
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where(
			"(LOWER(action) LIKE ? ESCAPE '\\' OR LOWER(operator_name) LIKE ? ESCAPE '\\' OR LOWER(target) LIKE ? ESCAPE '\\' OR LOWER(detail) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern, pattern,
		)
	}

	return query, nil
}

// List returns matching entries, newest first
func (s *AuditService) List(ctx context.Context, f AuditFilter) ([]model.AuditEntry, error) {
	query, err := s.filtered(ctx, f)
	if err != nil {
		return nil, err
	}

	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * f.Limit).Limit(f.Limit)
	}

	var entries []model.AuditEntry
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, storageErr("list audit entries", err)
	}
	return entries, nil
}

// Count returns how many entries match the filter, ignoring paging
func (s *AuditService) Count(ctx context.Context, f AuditFilter) (int64, error) {
	query, err := s.filtered(ctx, f)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, storageErr("count audit entries", err)
	}
	return total, nil
}

// Purge deletes every entry. Only super admins may purge; when an archiver is
// configured the full log is uploaded first and a failed upload aborts the purge.
// Entries appended while the purge runs are kept.
func (s *AuditService) Purge(ctx context.Context, actor Actor) (int64, error) {
	if !actor.SuperAdmin {
		utils.Component("audit").WithField("operator", actor.Name).Warn("rejected audit purge")
		return 0, &PermissionError{Action: "purge audit log"}
	}

	var bound struct{ MaxID *uint }
	if err := s.db.WithContext(ctx).Model(&model.AuditEntry{}).Select("MAX(id) AS max_id").Scan(&bound).Error; err != nil {
		return 0, storageErr("purge audit log", err)
	}
	if bound.MaxID == nil {
		return 0, nil
	}
	cutoff := *bound.MaxID

	if s.archiver != nil {
		var buf bytes.Buffer
		if err := s.ExportCSV(ctx, &buf, AuditFilter{upTo: cutoff}); err != nil {
			return 0, err
		}
		name := fmt.Sprintf("audit-%s.csv", time.Now().UTC().Format("20060102T150405Z"))
		location, err := s.archiver.ArchiveAudit(ctx, name, buf.Bytes())
		if err != nil {
			return 0, storageErr("archive audit log", err)
		}
		utils.Component("audit").WithField("location", location).Info("archived audit log before purge")
	}

	result := s.db.WithContext(ctx).Where("id <= ?", cutoff).Delete(&model.AuditEntry{})
	if result.Error != nil {
		return 0, storageErr("purge audit log", result.Error)
	}

	utils.Component("audit").WithFields(map[string]interface{}{
		"operator": actor.Name,
		"removed":  result.RowsAffected,
	}).Info("audit log purged")
	return result.RowsAffected, nil
}

// ExportCSV writes the matching entries as CSV, newest first, every value quoted
func (s *AuditService) ExportCSV(ctx context.Context, w io.Writer, f AuditFilter) error {
	f.Page, f.Limit = 0, 0
	entries, err := s.List(ctx, f)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(AuditCSVHeader)
	b.WriteString("\n")
	for _, e := range entries {
		writeCSVRow(&b,
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.OperatorName,
			e.Action,
			e.Target,
			e.Detail,
			string(e.Category),
		)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write audit export: %w", err)
	}
	return nil
}

func writeCSVRow(b *strings.Builder, values ...string) {
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// likePattern lower-cases s and escapes LIKE wildcards for a substring match
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
