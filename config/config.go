package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevSecret is the fallback session secret. Release mode refuses it.
const DevSecret = "dev-insecure-secret-change"

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release or test
}

type DBConfig struct {
	Driver      string `mapstructure:"driver"` // sqlite or postgres
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"autoMigrate"`
	LogLevel    string `mapstructure:"logLevel"`
}

type SessionConfig struct {
	Secret       string        `mapstructure:"secret"`
	TTL          time.Duration `mapstructure:"ttl"`
	CookieName   string        `mapstructure:"cookieName"`
	SecureCookie bool          `mapstructure:"secureCookie"`
}

type SeedConfig struct {
	AdminName     string `mapstructure:"adminName"`
	AdminUsername string `mapstructure:"adminUsername"`
	AdminPassword string `mapstructure:"adminPassword"`
	Beneficiaries int    `mapstructure:"beneficiaries"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type ReceiptConfig struct {
	LogoPath string `mapstructure:"logoPath"`
	Compress bool   `mapstructure:"compress"`
}

type TemplatesConfig struct {
	// Dir, when set, serves templates from disk and reloads them on change.
	Dir string `mapstructure:"dir"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
	Prefix           string `mapstructure:"prefix"`
}

type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ReportConfig struct {
	CronSchedule string `mapstructure:"cronSchedule"`
	Timezone     string `mapstructure:"timezone"`
}

// Config is built once at startup and handed to every component.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Session   SessionConfig   `mapstructure:"session"`
	Seed      SeedConfig      `mapstructure:"seed"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Receipt   ReceiptConfig   `mapstructure:"receipt"`
	Templates TemplatesConfig `mapstructure:"templates"`
	S3        S3Config        `mapstructure:"s3"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Report    ReportConfig    `mapstructure:"report"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "ration.db")
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("session.secret", DevSecret)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookieName", "ration_session")
	v.SetDefault("session.secureCookie", false)
	v.SetDefault("seed.adminName", "Admin")
	v.SetDefault("seed.adminUsername", "admin")
	v.SetDefault("seed.adminPassword", "admin123")
	v.SetDefault("seed.beneficiaries", 10)
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("receipt.logoPath", "")
	v.SetDefault("receipt.compress", true)
	v.SetDefault("templates.dir", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.accessKeyID", "")
	v.SetDefault("s3.secretAccessKey", "")
	v.SetDefault("s3.cloudFrontDomain", "")
	v.SetDefault("s3.prefix", "receipts")
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.timeout", "5s")
	v.SetDefault("report.cronSchedule", "0 20 * * *")
	v.SetDefault("report.timezone", "Local")
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.mode", "GIN_MODE")
	_ = v.BindEnv("db.driver", "DB_DRIVER")
	_ = v.BindEnv("db.dsn", "DB_DSN")
	_ = v.BindEnv("db.autoMigrate", "DB_AUTO_MIGRATE")
	_ = v.BindEnv("db.logLevel", "DB_LOG_LEVEL")
	_ = v.BindEnv("session.secret", "JWT_SECRET")
	_ = v.BindEnv("session.ttl", "SESSION_TTL")
	_ = v.BindEnv("session.secureCookie", "SESSION_SECURE_COOKIE")
	_ = v.BindEnv("seed.adminPassword", "ADMIN_PASSWORD")
	_ = v.BindEnv("cors.allowedOrigins", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("receipt.logoPath", "RECEIPT_LOGO_PATH")
	_ = v.BindEnv("templates.dir", "TEMPLATES_DIR")
	_ = v.BindEnv("s3.bucket", "S3_BUCKET")
	_ = v.BindEnv("s3.region", "S3_REGION")
	_ = v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	_ = v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	_ = v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	_ = v.BindEnv("webhook.url", "WEBHOOK_URL")
	_ = v.BindEnv("webhook.timeout", "WEBHOOK_TIMEOUT")
	_ = v.BindEnv("report.cronSchedule", "REPORT_CRON_SCHEDULE")
	_ = v.BindEnv("report.timezone", "TIMEZONE")
}

// LoadConfig reads .env (if present), then config.yaml from path (if
// present), then environment overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	// a missing .env is fine, configuration may come from the environment
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	if path != "" {
		v.AddConfigPath(path)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(err)
	}
	cfg.normalize()
	return cfg
}

func (c *Config) normalize() {
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	c.Server.Mode = strings.ToLower(strings.TrimSpace(c.Server.Mode))
	origins := c.CORS.AllowedOrigins[:0]
	for _, o := range c.CORS.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORS.AllowedOrigins = origins
}

// Validate ensures required fields are populated and consistent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("SERVER_PORT must be provided")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server mode %q", c.Server.Mode)
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (sqlite or postgres)", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("DB_DSN must be provided")
	}
	if c.Session.Secret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	if c.Server.Mode == "release" && c.Session.Secret == DevSecret {
		return errors.New("JWT_SECRET must be changed from the development default in release mode")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Seed.AdminUsername == "" || c.Seed.AdminPassword == "" {
		return errors.New("seed admin username and password must be provided")
	}
	if c.S3.Bucket != "" && c.S3.Region == "" {
		return errors.New("S3_REGION must be provided when S3_BUCKET is set")
	}
	if c.Report.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	return nil
}
