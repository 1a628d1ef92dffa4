package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	AI        AIConfig
	Backup    BackupConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string
}

// StorageConfig selects the bucket store backend.
type StorageConfig struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	MySQLDSN    string
	// SeedFile optionally replaces the embedded first-run dataset.
	SeedFile string
}

// MongoDBConfig holds settings for MongoDB. It backs both the "mongodb"
// storage driver and the daily report archive.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether a MongoDB deployment is configured.
func (c MongoDBConfig) Enabled() bool { return c.URI != "" }

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	// OwnerID receives scheduled summaries and feed alerts.
	OwnerID string
}

// Enabled reports whether the WhatsApp channel is configured.
func (c WhatsAppConfig) Enabled() bool { return c.AccessToken != "" }

// SheetsConfig contains configuration required to mirror audit logs to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Sheets mirror is configured.
func (c SheetsConfig) Enabled() bool { return c.SpreadsheetID != "" }

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule      string
	FeedAlertSchedule string
	BackupSchedule    string
	Timezone          string
}

// Location resolves the configured timezone.
func (c ReportingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// AIConfig holds settings for LLM providers.
type AIConfig struct {
	AnthropicKey string
	BaseURL      string
}

// BackupConfig holds S3 snapshot settings.
type BackupConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
	// Static keys; when empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether S3 backups are configured.
func (c BackupConfig) Enabled() bool { return c.Bucket != "" }

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:      getenvWithDefault("STORAGE_DRIVER", "sqlite"),
			SQLitePath:  getenvWithDefault("SQLITE_PATH", "lirio.db"),
			PostgresDSN: os.Getenv("POSTGRES_DSN"),
			MySQLDSN:    os.Getenv("MYSQL_DSN"),
			SeedFile:    os.Getenv("SEED_FILE"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "lirio"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			OwnerID:       os.Getenv("WHATSAPP_OWNER_ID"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule:      getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			FeedAlertSchedule: getenvWithDefault("FEED_ALERT_CRON_SCHEDULE", "0 7 * * *"),
			BackupSchedule:    os.Getenv("BACKUP_CRON_SCHEDULE"),
			Timezone:          getenvWithDefault("TIMEZONE", "Africa/Maputo"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
			BaseURL:      getenvWithDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		},
		Backup: BackupConfig{
			Bucket:          os.Getenv("BACKUP_S3_BUCKET"),
			Region:          getenvWithDefault("BACKUP_S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("BACKUP_S3_ENDPOINT"),
			PathStyle:       strings.EqualFold(os.Getenv("BACKUP_S3_PATH_STYLE"), "true"),
			AccessKeyID:     os.Getenv("BACKUP_S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("BACKUP_S3_SECRET_ACCESS_KEY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and
// that optional integrations are configured consistently.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Driver {
	case "memory", "none":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be provided for the sqlite driver")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN must be provided for the postgres driver")
		}
	case "mysql":
		if c.Storage.MySQLDSN == "" {
			return errors.New("MYSQL_DSN must be provided for the mysql driver")
		}
	case "mongodb":
		if !c.MongoDB.Enabled() {
			return errors.New("MONGODB_URI must be provided for the mongodb driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Sheets.Enabled() && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.FeedAlertSchedule == "" {
		return errors.New("FEED_ALERT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.BackupSchedule != "" && !c.Backup.Enabled() {
		return errors.New("BACKUP_S3_BUCKET must be provided when BACKUP_CRON_SCHEDULE is set")
	}

	if (c.Backup.AccessKeyID == "") != (c.Backup.SecretAccessKey == "") {
		return errors.New("BACKUP_S3_ACCESS_KEY_ID and BACKUP_S3_SECRET_ACCESS_KEY must be set together")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := c.Reporting.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
