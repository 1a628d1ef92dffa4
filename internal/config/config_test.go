package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "LOG_LEVEL", "STORAGE_DRIVER", "SQLITE_PATH", "POSTGRES_DSN", "MYSQL_DSN",
		"SEED_FILE", "MONGODB_URI", "MONGODB_DB_NAME", "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID",
		"META_VERIFY_TOKEN", "WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION", "WHATSAPP_OWNER_ID",
		"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID", "REPORT_CRON_SCHEDULE",
		"FEED_ALERT_CRON_SCHEDULE", "BACKUP_CRON_SCHEDULE", "TIMEZONE", "ANTHROPIC_API_KEY",
		"ANTHROPIC_BASE_URL", "BACKUP_S3_BUCKET", "BACKUP_S3_REGION", "BACKUP_S3_ENDPOINT",
		"BACKUP_S3_PATH_STYLE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "lirio.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "Africa/Maputo", cfg.Reporting.Timezone)
	assert.Equal(t, "0 20 * * *", cfg.Reporting.CronSchedule)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.Backup.Enabled())
	assert.False(t, cfg.MongoDB.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to "".
	for _, key := range []string{"STORAGE_DRIVER", "POSTGRES_DSN", "BACKUP_S3_BUCKET", "BACKUP_S3_PATH_STYLE"} {
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), "test.env")
	content := "STORAGE_DRIVER=postgres\nPOSTGRES_DSN=postgres://localhost/lirio\nBACKUP_S3_BUCKET=farm\nBACKUP_S3_PATH_STYLE=TRUE\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, key := range []string{"STORAGE_DRIVER", "POSTGRES_DSN", "BACKUP_S3_BUCKET", "BACKUP_S3_PATH_STYLE"} {
			_ = os.Unsetenv(key)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/lirio", cfg.Storage.PostgresDSN)
	assert.True(t, cfg.Backup.Enabled())
	assert.True(t, cfg.Backup.PathStyle)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: "8080"},
			Storage: StorageConfig{Driver: "memory"},
			Reporting: ReportingConfig{
				CronSchedule:      "0 20 * * *",
				FeedAlertSchedule: "0 7 * * *",
				Timezone:          "UTC",
			},
		}
	}

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: "unknown STORAGE_DRIVER"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Driver = "postgres" }, wantErr: "POSTGRES_DSN"},
		{name: "mysql without dsn", mutate: func(c *Config) { c.Storage.Driver = "mysql" }, wantErr: "MYSQL_DSN"},
		{name: "mongodb without uri", mutate: func(c *Config) { c.Storage.Driver = "mongodb" }, wantErr: "MONGODB_URI"},
		{name: "partial whatsapp", mutate: func(c *Config) { c.WhatsApp.AccessToken = "tok" }, wantErr: "WHATSAPP_PHONE_NUMBER_ID"},
		{name: "sheets without credentials", mutate: func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, wantErr: "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{name: "backup schedule without bucket", mutate: func(c *Config) { c.Reporting.BackupSchedule = "0 2 * * *" }, wantErr: "BACKUP_S3_BUCKET"},
		{name: "half static s3 keys", mutate: func(c *Config) { c.Backup.AccessKeyID = "AKIA" }, wantErr: "BACKUP_S3_SECRET_ACCESS_KEY"},
		{name: "bad timezone", mutate: func(c *Config) { c.Reporting.Timezone = "Mars/Olympus" }, wantErr: "invalid TIMEZONE"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "APP_PORT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
