package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInsecureSecret is returned when production runs without a real signing secret.
var ErrInsecureSecret = errors.New("jwt_secret must be set in production")

// Load reads the YAML config at configPath, applies environment overrides and validates
// the result. A missing file at the default path is not an error; defaults are used.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != "" && path != DefaultConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	raw := rawAppConfig{}
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := applyRawAppConfig(&cfg, raw); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	finalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Driver:    defaultDBDriver,
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
			Path:      defaultSQLitePath,
		},
		Redis: RedisRuntimeConfig{
			Host:   defaultRedisHost,
			Port:   defaultRedisPort,
			DB:     defaultRedisDB,
			Prefix: defaultRedisPrefix,
		},
		Auth: AuthRuntimeConfig{
			TokenTTL:          defaultTokenTTL,
			MaxLoginAttempts:  defaultMaxLoginAttempts,
			LockoutWindow:     defaultLockoutWindow,
			FallbackCompanyID: defaultFallbackCompanyID,
		},
		APIRateLimit: RateLimitRuntimeConfig{
			Enable: true,
			Max:    defaultAPIRateMax,
			Window: defaultAPIRateWindow,
		},
		Paths: RuntimePathsConfig{
			Static: defaultStaticDir,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}

	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw.Database)
	if v := strings.TrimSpace(raw.DatabaseURL); v != "" {
		cfg.Database.DSN = v
	}
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw.Redis)
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.Redis.URL = v
		cfg.Redis.Enable = true
	}

	if raw.Auth.MaxLoginAttempts != 0 {
		cfg.Auth.MaxLoginAttempts = raw.Auth.MaxLoginAttempts
	}
	if v := strings.TrimSpace(raw.Auth.FallbackCompanyID); v != "" {
		cfg.Auth.FallbackCompanyID = v
	}
	if err := parseDurationInto(&cfg.Auth.TokenTTL, raw.Auth.TokenTTL, "auth.token_ttl"); err != nil {
		return err
	}
	if err := parseDurationInto(&cfg.Auth.LockoutWindow, raw.Auth.LockoutWindow, "auth.lockout_window"); err != nil {
		return err
	}

	if raw.APIRateLimit.Enable != nil {
		cfg.APIRateLimit.Enable = *raw.APIRateLimit.Enable
	}
	if raw.APIRateLimit.Max != 0 {
		cfg.APIRateLimit.Max = raw.APIRateLimit.Max
	}
	if err := parseDurationInto(&cfg.APIRateLimit.Window, raw.APIRateLimit.Window, "api_rate_limit.window"); err != nil {
		return err
	}

	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Paths.Static); v != "" {
		cfg.Paths.Static = v
	}
	return nil
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawDatabase) DatabaseRuntimeConfig {
	if v := strings.TrimSpace(raw.Driver); v != "" {
		current.Driver = v
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		current.DSN = v
	}
	if v := strings.TrimSpace(raw.Host); v != "" {
		current.Host = v
	}
	if raw.Port != 0 {
		current.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.User); v != "" {
		current.User = v
	}
	if raw.Password != "" {
		current.Password = raw.Password
	}
	if v := strings.TrimSpace(raw.Name); v != "" {
		current.Name = v
	}
	if v := strings.TrimSpace(raw.Charset); v != "" {
		current.Charset = v
	}
	if raw.ParseTime != nil {
		current.ParseTime = *raw.ParseTime
	}
	if v := strings.TrimSpace(raw.Loc); v != "" {
		current.Loc = v
	}
	if raw.Params != nil {
		current.Params = copyStringMap(raw.Params)
	}
	if v := strings.TrimSpace(raw.Path); v != "" {
		current.Path = v
	}
	return current
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawRedis) RedisRuntimeConfig {
	if raw.Enable != nil {
		current.Enable = *raw.Enable
	}
	if v := strings.TrimSpace(raw.URL); v != "" {
		current.URL = v
	}
	if v := strings.TrimSpace(raw.Host); v != "" {
		current.Host = v
	}
	if raw.Port != 0 {
		current.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Username); v != "" {
		current.Username = v
	}
	if raw.Password != "" {
		current.Password = raw.Password
	}
	if raw.DB != nil {
		current.DB = *raw.DB
	}
	if raw.TLS != nil {
		current.TLS = *raw.TLS
	}
	if v := strings.TrimSpace(raw.Prefix); v != "" {
		current.Prefix = v
	}
	return current
}

func parseDurationInto(dst *time.Duration, raw, field string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	*dst = d
	return nil
}

// finalize normalizes nested sections and derives DSN and RedisURL.
func finalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = DevJWTSecret
	}
}

// Validate checks ranges and the production secret requirement.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
		}
	case DriverSQLite:
		if c.Database.Path == "" && c.Database.DSN == "" {
			return errors.New("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Redis.Enable {
		if c.Redis.Port < 1 || c.Redis.Port > 65535 {
			return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
		}
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid auth.token_ttl %s", c.Auth.TokenTTL)
	}
	if c.Auth.MaxLoginAttempts < 1 {
		return fmt.Errorf("invalid auth.max_login_attempts %d", c.Auth.MaxLoginAttempts)
	}
	if c.Auth.LockoutWindow <= 0 {
		return fmt.Errorf("invalid auth.lockout_window %s", c.Auth.LockoutWindow)
	}
	if c.APIRateLimit.Enable && (c.APIRateLimit.Max < 1 || c.APIRateLimit.Window <= 0) {
		return fmt.Errorf("invalid api_rate_limit max=%d window=%s", c.APIRateLimit.Max, c.APIRateLimit.Window)
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == DevJWTSecret) {
		return ErrInsecureSecret
	}
	return nil
}

func (c *AppConfig) IsDev() bool { return c.Env == "development" }

func (c *AppConfig) IsProduction() bool { return c.Env == "production" }

// Addr returns the HTTP listen address.
func (c *AppConfig) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func (c *AppConfig) LogDir() string {
	if c.Paths.Logs == "" {
		return ""
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

func (c *AppConfig) StaticDir() string {
	return ResolveRuntimePath(c.Paths.Static, defaultStaticDir)
}
