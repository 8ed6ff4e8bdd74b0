package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	// DevJWTSecret signs tokens when no secret is configured outside production.
	DevJWTSecret = "portal-dev-secret-change-me"

	defaultPort              = 3000
	defaultEnv               = "development"
	defaultDBDriver          = DriverMySQL
	defaultDBHost            = "127.0.0.1"
	defaultDBPort            = 3306
	defaultDBUser            = "root"
	defaultDBPassword        = "password"
	defaultDBName            = "tsystem"
	defaultDBCharset         = "utf8mb4"
	defaultDBLoc             = "Local"
	defaultSQLitePath        = "data/portal.db"
	defaultRedisHost         = "localhost"
	defaultRedisPort         = 6379
	defaultRedisDB           = 0
	defaultRedisPrefix       = "portal"
	defaultTokenTTL          = 24 * time.Hour
	defaultMaxLoginAttempts  = 5
	defaultLockoutWindow     = 15 * time.Minute
	defaultFallbackCompanyID = "tsystem-demo"
	defaultAPIRateMax        = 100
	defaultAPIRateWindow     = 15 * time.Minute
	defaultStaticDir         = "dist"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)
