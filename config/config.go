package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	LOG_LEVEL    string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// JWT Configuration
	JWT_SECRET string
	JWT_ISSUER string
	JWT_EXPIRY time.Duration
	// Redis Configuration
	REDIS_URL string
	// HTTP
	ALLOWED_ORIGINS    string
	RATE_LIMIT_PER_MIN int
	// Broadcast config changes to other instances over postgres NOTIFY
	CONFIG_NOTIFY bool
	// Background jobs
	CRON_ENABLED       bool
	PROBE_SCHEDULE     string
	PROBE_RATE_PER_SEC float64
	PROBE_TIMEOUT      time.Duration
	// Audit archive (S3-compatible, optional)
	ARCHIVE_BUCKET     string
	ARCHIVE_REGION     string
	ARCHIVE_ENDPOINT   string
	ARCHIVE_ACCESS_KEY string
	ARCHIVE_SECRET_KEY string
	// Seed credentials for the super-admin operator
	ADMIN_NAME     string
	ADMIN_PASSWORD string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("GO_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("PORT", 8080)
	v.SetDefault("JWT_ISSUER", "vpoint-admin-api")
	v.SetDefault("JWT_EXPIRY", "12h")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("RATE_LIMIT_PER_MIN", 100)
	v.SetDefault("CONFIG_NOTIFY", true)
	v.SetDefault("CRON_ENABLED", true)
	v.SetDefault("PROBE_SCHEDULE", "0 */5 * * * *")
	v.SetDefault("PROBE_RATE_PER_SEC", 2.0)
	v.SetDefault("PROBE_TIMEOUT", "10s")
	v.SetDefault("ADMIN_NAME", "ROOT")
	return v
}

func Get() (*EnviornmentVariable, error) {
	v := newViper()

	envVariables := &EnviornmentVariable{
		GO_ENV:       v.GetString("GO_ENV"),
		LOG_LEVEL:    v.GetString("LOG_LEVEL"),
		DB_USER_NAME: v.GetString("DB_USER_NAME"),
		DB_PASSWORD:  v.GetString("DB_PASSWORD"),
		DB_NAME:      v.GetString("DB_NAME"),
		DB_HOST:      v.GetString("DB_HOST"),
		DB_PORT:      v.GetString("DB_PORT"),
		DB_SSL_MODE:  v.GetString("DB_SSL_MODE"),
		PORT:         v.GetInt("PORT"),
		// JWT
		JWT_SECRET: v.GetString("JWT_SECRET"),
		JWT_ISSUER: v.GetString("JWT_ISSUER"),
		JWT_EXPIRY: v.GetDuration("JWT_EXPIRY"),
		// Redis
		REDIS_URL: v.GetString("REDIS_URL"),
		// HTTP
		ALLOWED_ORIGINS:    v.GetString("ALLOWED_ORIGINS"),
		RATE_LIMIT_PER_MIN: v.GetInt("RATE_LIMIT_PER_MIN"),
		CONFIG_NOTIFY:      v.GetBool("CONFIG_NOTIFY"),
		// Jobs
		CRON_ENABLED:       v.GetBool("CRON_ENABLED"),
		PROBE_SCHEDULE:     v.GetString("PROBE_SCHEDULE"),
		PROBE_RATE_PER_SEC: v.GetFloat64("PROBE_RATE_PER_SEC"),
		PROBE_TIMEOUT:      v.GetDuration("PROBE_TIMEOUT"),
		// Archive
		ARCHIVE_BUCKET:     v.GetString("ARCHIVE_BUCKET"),
		ARCHIVE_REGION:     v.GetString("ARCHIVE_REGION"),
		ARCHIVE_ENDPOINT:   v.GetString("ARCHIVE_ENDPOINT"),
		ARCHIVE_ACCESS_KEY: v.GetString("ARCHIVE_ACCESS_KEY"),
		ARCHIVE_SECRET_KEY: v.GetString("ARCHIVE_SECRET_KEY"),
		// Seed
		ADMIN_NAME:     v.GetString("ADMIN_NAME"),
		ADMIN_PASSWORD: v.GetString("ADMIN_PASSWORD"),
	}

	if envVariables.PORT == 0 {
		envVariables.PORT = 8080
	}

	return envVariables, nil
}

// DSN builds the postgres connection string
func (e *EnviornmentVariable) DSN() string {
	return "host=" + e.DB_HOST +
		" user=" + e.DB_USER_NAME +
		" password=" + e.DB_PASSWORD +
		" dbname=" + e.DB_NAME +
		" port=" + e.DB_PORT +
		" sslmode=" + e.DB_SSL_MODE +
		" TimeZone=UTC"
}

// ArchiveEnabled reports whether audit purges should be archived first
func (e *EnviornmentVariable) ArchiveEnabled() bool {
	return e.ARCHIVE_BUCKET != "" && e.ARCHIVE_REGION != ""
}
