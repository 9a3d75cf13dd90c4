package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	PublicURL      string        `yaml:"public_url"` // base for absolute links (check-in URL)
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

type OpsConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	CookieName     string        `yaml:"cookie_name"`
	CookieDomain   string        `yaml:"cookie_domain"`
	SecureCookie   bool          `yaml:"secure_cookie"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	CSRFCookieName string        `yaml:"csrf_cookie_name"`
	CSRFHeaderName string        `yaml:"csrf_header_name"`
}

type CheckinConfig struct {
	TokenTTL    time.Duration `yaml:"token_ttl"`
	RateLimit   int           `yaml:"rate_limit"` // attempts per user per window
	RateWindow  time.Duration `yaml:"rate_window"`
	FrontendURL string        `yaml:"frontend_url"` // optional; defaults to http.public_url
}

type NotificationConfig struct {
	DedupWindow          time.Duration `yaml:"dedup_window"`
	SendEmailImmediately bool          `yaml:"send_email_immediately"`
	Timezone             string        `yaml:"timezone"` // used for "today" in inscription windows
}

type MailConfig struct {
	Provider       string `yaml:"provider"` // sendgrid|console
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
}

type SchedulerConfig struct {
	ReleaseInterval  time.Duration `yaml:"release_interval"`
	CampaignInterval time.Duration `yaml:"campaign_interval"`
	ReleaseBatch     int           `yaml:"release_batch"`
}

type WorkersConfig struct {
	Mail int `yaml:"mail"` // worker pool size for campaign e-mail fan-out
}

type Config struct {
	HTTP          HTTPConfig         `yaml:"http"`
	Ops           OpsConfig          `yaml:"ops"`
	Log           LogConfig          `yaml:"log"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	Auth          AuthConfig         `yaml:"auth"`
	Checkin       CheckinConfig      `yaml:"checkin"`
	Notifications NotificationConfig `yaml:"notifications"`
	Mail          MailConfig         `yaml:"mail"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Workers       WorkersConfig      `yaml:"workers"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var envPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.StringVar(&envPath, "env", ".env", "path to optional .env file")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	cfg, err := Load(configPath, envPath)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// Load reads the YAML file, overlays environment variables (after loading
// envPath when it exists) and applies defaults.
func Load(configPath, envPath string) (*Config, error) {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("load env: %w", err)
			}
		}
	}

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overlay := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	overlay(&c.Database.URL, "DATABASE_URL")
	overlay(&c.Redis.URL, "REDIS_URL")
	overlay(&c.Redis.Password, "REDIS_PASSWORD")
	overlay(&c.Auth.JWTSecret, "JWT_SECRET")
	overlay(&c.Mail.SendGridAPIKey, "SENDGRID_API_KEY")
	overlay(&c.HTTP.PublicURL, "PUBLIC_URL")
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8000"
	}
	if c.HTTP.PublicURL == "" {
		c.HTTP.PublicURL = "http://localhost:8000"
	}
	c.HTTP.PublicURL = strings.TrimRight(c.HTTP.PublicURL, "/")
	if c.HTTP.RequestTimeout <= 0 {
		c.HTTP.RequestTimeout = 15 * time.Second
	}
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout <= 0 {
		c.HTTP.WriteTimeout = 20 * time.Second
	}
	if c.Ops.Port == 0 {
		c.Ops.Port = 9090
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	c.Redis.TTL = normalizeTTL(c.Redis.TTL)

	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "sessionid"
	}
	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = 14 * 24 * time.Hour
	}
	if c.Auth.CSRFCookieName == "" {
		c.Auth.CSRFCookieName = "csrftoken"
	}
	if c.Auth.CSRFHeaderName == "" {
		c.Auth.CSRFHeaderName = "X-CSRFToken"
	}

	if c.Checkin.TokenTTL <= 0 {
		c.Checkin.TokenTTL = 10 * time.Minute
	}
	if c.Checkin.RateLimit <= 0 {
		c.Checkin.RateLimit = 10
	}
	if c.Checkin.RateWindow <= 0 {
		c.Checkin.RateWindow = time.Minute
	}
	if c.Checkin.FrontendURL == "" {
		c.Checkin.FrontendURL = c.HTTP.PublicURL
	}

	if c.Notifications.DedupWindow <= 0 {
		c.Notifications.DedupWindow = 10 * time.Minute
	}
	if c.Notifications.Timezone == "" {
		c.Notifications.Timezone = "UTC"
	}

	if c.Mail.Provider == "" {
		c.Mail.Provider = "console"
	}
	if c.Mail.FromEmail == "" {
		c.Mail.FromEmail = "no-reply@cadi.local"
	}
	if c.Mail.FromName == "" {
		c.Mail.FromName = "CADI"
	}

	if c.Scheduler.ReleaseInterval <= 0 {
		c.Scheduler.ReleaseInterval = time.Minute
	}
	if c.Scheduler.CampaignInterval <= 0 {
		c.Scheduler.CampaignInterval = time.Minute
	}
	if c.Scheduler.ReleaseBatch <= 0 {
		c.Scheduler.ReleaseBatch = 200
	}
	if c.Workers.Mail <= 0 {
		c.Workers.Mail = 4
	}
}

// Minimal validation
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	switch c.Mail.Provider {
	case "console":
	case "sendgrid":
		if c.Mail.SendGridAPIKey == "" {
			return errors.New("mail.sendgrid_api_key is required for the sendgrid provider")
		}
	default:
		return fmt.Errorf("mail.provider %q is not supported", c.Mail.Provider)
	}
	if _, err := time.LoadLocation(c.Notifications.Timezone); err != nil {
		return fmt.Errorf("notifications.timezone: %w", err)
	}
	return nil
}

// Location returns the configured timezone; validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Notifications.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
