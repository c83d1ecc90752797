package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/database"
	"github.com/vpoint-tv/vpoint-api/handlers"
	admin_handlers "github.com/vpoint-tv/vpoint-api/handlers/admin"
	auth_handlers "github.com/vpoint-tv/vpoint-api/handlers/auth"
	public_handlers "github.com/vpoint-tv/vpoint-api/handlers/public"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/utils"
	"github.com/vpoint-tv/vpoint-api/utils/auth"
	"github.com/vpoint-tv/vpoint-api/utils/cache"
	"github.com/vpoint-tv/vpoint-api/utils/middleware"
)

// Config carries everything the route table needs
type Config struct {
	Store      database.Storage
	JWTManager *auth.JWTManager
	Redis      *cache.RedisCache // nil disables brute force protection
	Security   middleware.SecurityConfig
	Admin      admin_handlers.Services
	Public     *public_handlers.PublicHandler
}

func SetupRoutes(app *fiber.App, cfg Config) {
	db := cfg.Store.GetDB()

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if cfg.Redis != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(cfg.Redis)
	} else {
		utils.Log.Warn("Redis unavailable, brute force protection is disabled")
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTManager, db)

	authHandler := auth_handlers.NewAuthHandler(
		cfg.Admin.Operators,
		cfg.JWTManager,
		auth.NewBlacklistService(db),
		bruteForceProtection,
	)
	adminHandler := admin_handlers.NewAdminHandler(cfg.Admin)
	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.Redis)
	publicHandler := cfg.Public

	// Apply security middleware
	middleware.SetupSecurity(app, cfg.Security)

	// Health check endpoint (public)
	app.Get("/ping", healthHandler.Ping)

	// Server-rendered pages
	app.Get("/", publicHandler.Landing)
	app.Get("/warning", publicHandler.Warning)

	// API v1 group
	api := app.Group("/api/v1")

	// Viewer routes (public)
	api.Get("/config", publicHandler.GetConfig)
	api.Get("/config/stream", publicHandler.StreamConfig)
	api.Get("/channels", publicHandler.ListChannels)
	api.Get("/favorites", publicHandler.ListFavorites)
	api.Post("/favorites/:channel_id", publicHandler.ToggleFavorite)
	api.Get("/settings", publicHandler.GetSettings)
	api.Put("/settings/:key", publicHandler.UpdateSetting)

	// Auth routes
	authGroup := api.Group("/auth")

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/logout-all", authMiddleware.Required(), authHandler.LogoutAll)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Operator console
	admin := api.Group("/admin", authMiddleware.Required())
	manageOperators := authMiddleware.RequireRole(model.RoleAdmin, model.RoleLead)

	admin.Get("/config", adminHandler.GetConfig)
	admin.Get("/config/keys", adminHandler.ConfigKeys)
	admin.Patch("/config", adminHandler.UpdateConfig)
	admin.Post("/config/reset", adminHandler.ResetConfig)

	admin.Get("/audit", adminHandler.ListAuditLogs)
	admin.Get("/audit/export.csv", adminHandler.ExportAuditLogs)
	admin.Get("/audit/categories", adminHandler.AuditCategories)
	admin.Get("/audit/archives", adminHandler.ListAuditArchives)
	admin.Get("/audit/archives/:name", adminHandler.DownloadAuditArchive)
	admin.Delete("/audit", adminHandler.PurgeAuditLogs) // super admin check lives in AuditService

	admin.Get("/operators", adminHandler.ListOperators)
	admin.Put("/operators", manageOperators, adminHandler.UpsertOperator)
	admin.Delete("/operators/:id", manageOperators, adminHandler.DeleteOperator)

	admin.Get("/signals", adminHandler.ListSignals)
	admin.Post("/signals", adminHandler.InjectSignal)
	admin.Post("/signals/probe", adminHandler.ProbeSignals)
	admin.Patch("/signals/:id", adminHandler.UpdateSignal)
	admin.Post("/signals/:id/mask", adminHandler.ToggleSignalMask)
	admin.Delete("/signals/:id", adminHandler.DeleteSignal)

	admin.Get("/stats", adminHandler.GetStats)
	admin.Get("/activity", adminHandler.GetUserActivity)
	admin.Delete("/users/:id", adminHandler.ClearViewer)
}
