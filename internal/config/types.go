package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int
	Env            string // "development" | "production" | "test"
	JWTSecret      string
	Database       DatabaseRuntimeConfig
	Redis          RedisRuntimeConfig
	Auth           AuthRuntimeConfig
	APIRateLimit   RateLimitRuntimeConfig
	AllowedOrigins []string
	Paths          RuntimePathsConfig

	// DSN and RedisURL are derived from Database and Redis after normalization.
	DSN      string
	RedisURL string
}

type DatabaseRuntimeConfig struct {
	Driver    string
	DSN       string
	Host      string
	Port      int
	User      string
	Password  string
	Name      string
	Charset   string
	ParseTime bool
	Loc       string
	Params    map[string]string
	// Path is the SQLite database file (or a file: URI).
	Path string
}

type RedisRuntimeConfig struct {
	Enable   bool
	URL      string
	Host     string
	Port     int
	Username string
	Password string
	DB       int
	TLS      bool
	Prefix   string
}

type AuthRuntimeConfig struct {
	TokenTTL          time.Duration
	MaxLoginAttempts  int
	LockoutWindow     time.Duration
	FallbackCompanyID string
}

type RateLimitRuntimeConfig struct {
	Enable bool
	Max    int
	Window time.Duration
}

type RuntimePathsConfig struct {
	Logs   string
	Static string
}

type rawAppConfig struct {
	Port           int             `yaml:"port"`
	Env            string          `yaml:"env"`
	NodeEnv        string          `yaml:"node_env"`
	JWTSecret      string          `yaml:"jwt_secret"`
	Database       rawDatabase     `yaml:"database"`
	DatabaseURL    string          `yaml:"database_url"`
	Redis          rawRedis        `yaml:"redis"`
	RedisURL       string          `yaml:"redis_url"`
	Auth           rawAuth         `yaml:"auth"`
	APIRateLimit   rawRateLimit    `yaml:"api_rate_limit"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	Paths          rawRuntimePaths `yaml:"paths"`
}

type rawDatabase struct {
	Driver    string            `yaml:"driver"`
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
	Path      string            `yaml:"path"`
}

type rawRedis struct {
	Enable   *bool  `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
	Prefix   string `yaml:"prefix"`
}

type rawAuth struct {
	TokenTTL          string `yaml:"token_ttl"`
	MaxLoginAttempts  int    `yaml:"max_login_attempts"`
	LockoutWindow     string `yaml:"lockout_window"`
	FallbackCompanyID string `yaml:"fallback_company_id"`
}

type rawRateLimit struct {
	Enable *bool  `yaml:"enable"`
	Max    int    `yaml:"max"`
	Window string `yaml:"window"`
}

type rawRuntimePaths struct {
	Logs   string `yaml:"logs"`
	Static string `yaml:"static"`
}
