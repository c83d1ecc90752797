package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vpoint-tv/vpoint-api/api"
	"github.com/vpoint-tv/vpoint-api/config"
	"github.com/vpoint-tv/vpoint-api/database"
	admin_handlers "github.com/vpoint-tv/vpoint-api/handlers/admin"
	public_handlers "github.com/vpoint-tv/vpoint-api/handlers/public"
	"github.com/vpoint-tv/vpoint-api/router"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/services/cron"
	"github.com/vpoint-tv/vpoint-api/services/spaces"
	"github.com/vpoint-tv/vpoint-api/utils"
	"github.com/vpoint-tv/vpoint-api/utils/auth"
	"github.com/vpoint-tv/vpoint-api/utils/cache"
	"github.com/vpoint-tv/vpoint-api/utils/middleware"
	"github.com/vpoint-tv/vpoint-api/utils/sse"
)

// OpenStore connects to Postgres and runs the migrations
func OpenStore(env *config.EnviornmentVariable) (*database.GORMStore, error) {
	store, err := database.StartGORM(env)
	if err != nil {
		utils.Log.Error("Check whether the Postgres is running or not")
		return nil, err
	}

	if err := store.Init(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize database tables: %w", err)
	}
	return store, nil
}

// SetupAndRunServer wires every component and serves until ctx is cancelled
func SetupAndRunServer(ctx context.Context, env *config.EnviornmentVariable) error {
	if env.JWT_SECRET == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}

	store, err := OpenStore(env)
	if err != nil {
		return err
	}
	db := store.GetDB()

	// Config changes reach SSE clients through the in-process hub. With
	// CONFIG_NOTIFY they go through postgres first so every instance sees them.
	hub := sse.NewHub()
	hubPublisher := services.NewHubPublisher(hub)
	var publisher services.ConfigPublisher = hubPublisher
	if env.CONFIG_NOTIFY {
		channel := database.NewConfigChannel(db, env.DSN())
		publisher = channel
		go func() {
			if err := channel.Listen(ctx, hubPublisher.Forward); err != nil {
				utils.Log.WithError(err).Error("config listener stopped")
			}
		}()
	}

	auditService := services.NewAuditService(db)
	signalService := services.NewSignalService(db)
	channelService := services.NewChannelService(db)
	prober := services.NewSignalProber(signalService, services.ProberConfig{
		RatePerSecond: env.PROBE_RATE_PER_SEC,
		Timeout:       env.PROBE_TIMEOUT,
		RetryMax:      2,
	})

	adminServices := admin_handlers.Services{
		Config:    services.NewConfigService(db, publisher),
		Audit:     auditService,
		Operators: services.NewOperatorService(db),
		Signals:   signalService,
		Prober:    prober,
		Channels:  channelService,
		Stats:     services.NewStatsService(db),
	}

	if env.ArchiveEnabled() {
		archive, err := spaces.NewSpacesClient(spaces.SpacesConfig{
			AccessKey: env.ARCHIVE_ACCESS_KEY,
			SecretKey: env.ARCHIVE_SECRET_KEY,
			Bucket:    env.ARCHIVE_BUCKET,
			Region:    env.ARCHIVE_REGION,
			Endpoint:  env.ARCHIVE_ENDPOINT,
		})
		if err != nil {
			store.Close()
			return fmt.Errorf("failed to set up audit archive: %w", err)
		}
		auditService.SetArchiver(archive)
		adminServices.Archives = archive
		utils.Log.WithField("bucket", env.ARCHIVE_BUCKET).Info("audit purges will be archived")
	}

	// Redis is optional; without it login lockout is off
	redisCache, err := cache.NewRedisCache(env.REDIS_URL)
	if err != nil {
		utils.Log.WithError(err).Warn("Failed to connect to Redis")
		redisCache = nil
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if env.CRON_ENABLED {
		cronManager = cron.NewCronManager(prober, auth.NewBlacklistService(db), env.PROBE_SCHEDULE)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			utils.Log.WithError(err).Warn("Failed to start cron jobs")
			cronManager = nil
		}
	}

	// Defer Closing DB, Redis and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if redisCache != nil {
			redisCache.Close()
		}
		store.Close()
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT))
	publicHandler := public_handlers.NewPublicHandler(adminServices.Config, channelService, hub)

	router.SetupRoutes(server.GetEngine(), router.Config{
		Store: store,
		JWTManager: auth.NewJWTManager(auth.JWTConfig{
			Secret: env.JWT_SECRET,
			Expiry: env.JWT_EXPIRY,
			Issuer: env.JWT_ISSUER,
		}),
		Redis: redisCache,
		Security: middleware.SecurityConfig{
			AllowedOrigins:    env.ALLOWED_ORIGINS,
			RateLimitRequests: env.RATE_LIMIT_PER_MIN,
			RateLimitWindow:   time.Minute,
		},
		Admin:  adminServices,
		Public: publicHandler,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	publicHandler.Close()
	return server.Shutdown(10 * time.Second)
}
