package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config represents the full application configuration surface.
type Config struct {
	Server      ServerConfig
	MongoDB     MongoDBConfig
	Log         LogConfig
	Pricing     PricingConfig
	Sheets      SheetsConfig
	Mail        MailConfig
	Maintenance MaintenanceConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port    string
	GinMode string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// LogConfig holds the logger level.
type LogConfig struct {
	Level string
}

// PricingConfig holds catalog pricing defaults.
type PricingConfig struct {
	DefaultCurrency string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
// The integration is off when CredentialsPath or SpreadsheetID is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	LedgerRange     string
}

// Enabled reports whether both the credentials and the spreadsheet are set.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// MailConfig holds SMTP settings. Email delivery is off without credentials.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether SMTP credentials are set.
func (m MailConfig) Enabled() bool {
	return m.Username != "" && m.Password != ""
}

// MaintenanceConfig holds scheduler-related settings. SweepCron set to "off"
// disables the scheduled catalog sweep.
type MaintenanceConfig struct {
	SweepCron string
	Timezone  string
}

// SweepEnabled reports whether the catalog sweep is scheduled.
func (m MaintenanceConfig) SweepEnabled() bool {
	return m.SweepCron != "" && !strings.EqualFold(m.SweepCron, "off")
}

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
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	smtpPort, err := strconv.Atoi(getenvWithDefault("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("SMTP_PORT must be a number: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    getenvWithDefault("APP_PORT", "8080"),
			GinMode: getenvWithDefault("GIN_MODE", "release"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "enginuity"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Pricing: PricingConfig{
			DefaultCurrency: strings.ToUpper(getenvWithDefault("DEFAULT_CURRENCY", "PHP")),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			LedgerRange:     os.Getenv("QUOTATION_LEDGER_RANGE"),
		},
		Mail: MailConfig{
			Host:     getenvWithDefault("SMTP_HOST", "smtp.gmail.com"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("MAIL_FROM"),
		},
		Maintenance: MaintenanceConfig{
			SweepCron: getenvWithDefault("CATALOG_SWEEP_CRON", "0 3 * * *"),
			Timezone:  getenvWithDefault("TIMEZONE", "Asia/Manila"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be one of debug, release, test; got %q", c.Server.GinMode)
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if len(c.Pricing.DefaultCurrency) != 3 {
		return fmt.Errorf("DEFAULT_CURRENCY must be a three-letter code; got %q", c.Pricing.DefaultCurrency)
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Sheets.LedgerRange != "" && !c.Sheets.Enabled() {
		return errors.New("QUOTATION_LEDGER_RANGE requires the Google Sheets settings")
	}

	if (c.Mail.Username == "") != (c.Mail.Password == "") {
		return errors.New("SMTP_USER and SMTP_PASS must be provided together")
	}

	if c.Mail.Port <= 0 {
		return errors.New("SMTP_PORT must be positive")
	}

	if c.Maintenance.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if _, err := time.LoadLocation(c.Maintenance.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	if c.Maintenance.SweepEnabled() {
		if _, err := cron.ParseStandard(c.Maintenance.SweepCron); err != nil {
			return fmt.Errorf("CATALOG_SWEEP_CRON is invalid: %w", err)
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
