package admin

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/handlers"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/utils/middleware"
	"github.com/vpoint-tv/vpoint-api/utils/response"
)

const defaultAuditPageSize = 50

func auditFilter(c *fiber.Ctx) services.AuditFilter {
	return services.AuditFilter{
		Search:   c.Query("search"),
		Category: model.AuditCategory(strings.ToUpper(c.Query("category"))),
	}
}

// ListAuditLogs retrieves audit entries with pagination
// GET /api/v1/admin/audit?search=&category=&page=&limit=
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", defaultAuditPageSize)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > response.MaxPerPage {
		limit = defaultAuditPageSize
	}

	filter := auditFilter(c)
	filter.Page, filter.Limit = page, limit

	total, err := h.audit.Count(c.UserContext(), filter)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	entries, err := h.audit.List(c.UserContext(), filter)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	return response.Paginated(c, entries, response.CalculatePagination(page, limit, total))
}

// ExportAuditLogs streams matching entries as CSV
// GET /api/v1/admin/audit/export.csv
func (h *AdminHandler) ExportAuditLogs(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.audit.ExportCSV(c.UserContext(), &buf, auditFilter(c)); err != nil {
		return handlers.RespondError(c, err)
	}

	filename := fmt.Sprintf("vpoint-audit-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

// PurgeAuditLogs deletes the whole log. Super admin only.
// DELETE /api/v1/admin/audit
func (h *AdminHandler) PurgeAuditLogs(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return unauthenticated(c)
	}

	removed, err := h.audit.Purge(c.UserContext(), actor)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	return response.SuccessWithMessage(c, "Audit log purged", fiber.Map{"removed": removed})
}

// AuditCategories lists the categories accepted by the filter
// GET /api/v1/admin/audit/categories
func (h *AdminHandler) AuditCategories(c *fiber.Ctx) error {
	return response.Success(c, model.AuditCategories)
}

// ListAuditArchives lists CSV archives written by earlier purges
// GET /api/v1/admin/audit/archives
func (h *AdminHandler) ListAuditArchives(c *fiber.Ctx) error {
	if h.archives == nil {
		return response.ServiceUnavailable(c, "Audit archiving is not configured")
	}

	names, err := h.archives.ListArchives(c.UserContext())
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, names)
}

// DownloadAuditArchive returns one archived CSV
// GET /api/v1/admin/audit/archives/:name
func (h *AdminHandler) DownloadAuditArchive(c *fiber.Ctx) error {
	if h.archives == nil {
		return response.ServiceUnavailable(c, "Audit archiving is not configured")
	}

	name := c.Params("name")
	if name == "" || strings.ContainsAny(name, "/\\") || !strings.HasSuffix(name, ".csv") {
		return response.BadRequest(c, "Invalid archive name")
	}

	body, err := h.archives.DownloadArchive(c.UserContext(), name)
	if err != nil {
		return handlers.RespondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(body)
}
