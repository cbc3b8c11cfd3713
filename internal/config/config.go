package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ehr/querybuilder/internal/domain/alerts"
	"github.com/ehr/querybuilder/internal/domain/collision"
	"github.com/ehr/querybuilder/internal/domain/infobutton"
	"github.com/ehr/querybuilder/internal/domain/resultdisplay"
)

// Ontology store backends.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	BodyLimit     string   `mapstructure:"BODY_LIMIT"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
	OntologyStore string   `mapstructure:"ONTOLOGY_STORE"`
	DatabaseURL   string   `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32    `mapstructure:"DB_MIN_CONNS"`
	DBSchema      string   `mapstructure:"DB_SCHEMA"`
	SQLitePath    string   `mapstructure:"SQLITE_PATH"`

	AuthSigningKey string   `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer     string   `mapstructure:"AUTH_ISSUER"`
	AuthAudience   string   `mapstructure:"AUTH_AUDIENCE"`
	DevRoles       []string `mapstructure:"DEV_ROLES"`

	DimcodeParenStrip  string   `mapstructure:"DIMCODE_PAREN_STRIP"`
	BillingCodeMarkers []string `mapstructure:"BILLING_CODE_MARKERS"`

	MaskZero                bool     `mapstructure:"MASK_ZERO"`
	LowThresholdStyle       int      `mapstructure:"LOW_THRESHOLD_STYLE"`
	PermittedRoles          []string `mapstructure:"PERMITTED_ROLES"`
	UseFloorThreshold       bool     `mapstructure:"USE_FLOOR_THRESHOLD"`
	FloorThresholdNumber    int      `mapstructure:"FLOOR_THRESHOLD_NUMBER"`
	FloorThresholdText      string   `mapstructure:"FLOOR_THRESHOLD_TEXT"`
	ObfuscatedDisplayNumber int      `mapstructure:"OBFUSCATED_DISPLAY_NUMBER"`

	MaintDate        string `mapstructure:"MAINT_DATE"`
	MaintHour        int    `mapstructure:"MAINT_HOUR"`
	MaintAmPm        string `mapstructure:"MAINT_AM_PM"`
	MaintLengthHours int    `mapstructure:"MAINT_LENGTH_HOURS"`
	MaintLengthDays  int    `mapstructure:"MAINT_LENGTH_DAYS"`
	MaintMessage     string `mapstructure:"MAINT_MESSAGE"`

	HolidayDate        string `mapstructure:"HOLIDAY_DATE"`
	HolidayHour        int    `mapstructure:"HOLIDAY_HOUR"`
	HolidayAmPm        string `mapstructure:"HOLIDAY_AM_PM"`
	HolidayLengthHours int    `mapstructure:"HOLIDAY_LENGTH_HOURS"`
	HolidayLengthDays  int    `mapstructure:"HOLIDAY_LENGTH_DAYS"`
	HolidayMessage     string `mapstructure:"HOLIDAY_MESSAGE"`

	SystemAlertActive  bool   `mapstructure:"SYSTEM_ALERT_ACTIVE"`
	SystemAlertTitle   string `mapstructure:"SYSTEM_ALERT_TITLE"`
	SystemAlertMessage string `mapstructure:"SYSTEM_ALERT_MESSAGE"`
	AlertTimezone      string `mapstructure:"ALERT_TIMEZONE"`

	LoginHeaderText string `mapstructure:"LOGIN_HEADER_TEXT"`
	LoginAnnounce   string `mapstructure:"LOGIN_ANNOUNCE"`

	OntInfoDictionary    string `mapstructure:"ONT_INFO_DICTIONARY"`
	OntDataDictionaryURL string `mapstructure:"ONT_DATA_DICTIONARY_URL"`
}

var keys = []string{
	"PORT", "ENV", "BODY_LIMIT", "CORS_ORIGINS",
	"ONTOLOGY_STORE", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_SCHEMA", "SQLITE_PATH",
	"AUTH_SIGNING_KEY", "AUTH_ISSUER", "AUTH_AUDIENCE", "DEV_ROLES",
	"DIMCODE_PAREN_STRIP", "BILLING_CODE_MARKERS",
	"MASK_ZERO", "LOW_THRESHOLD_STYLE", "PERMITTED_ROLES", "USE_FLOOR_THRESHOLD",
	"FLOOR_THRESHOLD_NUMBER", "FLOOR_THRESHOLD_TEXT", "OBFUSCATED_DISPLAY_NUMBER",
	"MAINT_DATE", "MAINT_HOUR", "MAINT_AM_PM", "MAINT_LENGTH_HOURS", "MAINT_LENGTH_DAYS", "MAINT_MESSAGE",
	"HOLIDAY_DATE", "HOLIDAY_HOUR", "HOLIDAY_AM_PM", "HOLIDAY_LENGTH_HOURS", "HOLIDAY_LENGTH_DAYS", "HOLIDAY_MESSAGE",
	"SYSTEM_ALERT_ACTIVE", "SYSTEM_ALERT_TITLE", "SYSTEM_ALERT_MESSAGE", "ALERT_TIMEZONE",
	"LOGIN_HEADER_TEXT", "LOGIN_ANNOUNCE",
	"ONT_INFO_DICTIONARY", "ONT_DATA_DICTIONARY_URL",
}

// listKeys hold comma separated values in the environment.
var listKeys = []string{"CORS_ORIGINS", "DEV_ROLES", "BILLING_CODE_MARKERS", "PERMITTED_ROLES"}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("ONTOLOGY_STORE", StoreSQLite)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("SQLITE_PATH", "ontology.db")
	v.SetDefault("DIMCODE_PAREN_STRIP", string(collision.ParenStripLegacy))
	v.SetDefault("LOW_THRESHOLD_STYLE", 10)
	v.SetDefault("PERMITTED_ROLES", "DATA_LDS,DATA_DEID,DATA_PROT")
	v.SetDefault("FLOOR_THRESHOLD_NUMBER", 10)
	v.SetDefault("FLOOR_THRESHOLD_TEXT", "Less Than ")
	v.SetDefault("OBFUSCATED_DISPLAY_NUMBER", 3)
	v.SetDefault("MAINT_AM_PM", "AM")
	v.SetDefault("HOLIDAY_AM_PM", "AM")
	v.SetDefault("ONT_INFO_DICTIONARY", "dict/infobutton.yaml")

	for _, k := range keys {
		v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Environment values arrive as a single string; split them here.
	for _, k := range listKeys {
		raw := v.GetString(k)
		if raw == "" {
			continue
		}
		list := splitList(raw)
		switch k {
		case "CORS_ORIGINS":
			cfg.CORSOrigins = list
		case "DEV_ROLES":
			cfg.DevRoles = list
		case "BILLING_CODE_MARKERS":
			cfg.BillingCodeMarkers = list
		case "PERMITTED_ROLES":
			cfg.PermittedRoles = list
		}
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active and bearer tokens are ignored.")
		log.Println("WARNING: Set ENV=production and AUTH_SIGNING_KEY for real deployments.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	switch c.OntologyStore {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when ONTOLOGY_STORE is %q", StorePostgres)
		}
		if c.DBMaxConns < 1 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) and DB_MAX_CONNS (%d) must satisfy 0 <= min <= max, max >= 1",
				c.DBMinConns, c.DBMaxConns)
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when ONTOLOGY_STORE is %q", StoreSQLite)
		}
	default:
		return fmt.Errorf("ONTOLOGY_STORE must be %q or %q, got %q", StorePostgres, StoreSQLite, c.OntologyStore)
	}

	if !c.IsDev() && len(c.AuthSigningKey) < 32 {
		return fmt.Errorf(
			"AUTH_SIGNING_KEY must be at least 32 bytes outside development (current ENV=%q). "+
				"Refusing to start without authentication configuration", c.Env)
	}

	if _, err := collision.ParseParenStrip(c.DimcodeParenStrip); err != nil {
		return fmt.Errorf("DIMCODE_PAREN_STRIP: %w", err)
	}

	if c.UseFloorThreshold && c.FloorThresholdNumber < 1 {
		return fmt.Errorf("FLOOR_THRESHOLD_NUMBER must be positive when USE_FLOOR_THRESHOLD is true")
	}
	if c.LowThresholdStyle < 0 {
		return fmt.Errorf("LOW_THRESHOLD_STYLE must not be negative")
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the zone alert windows are scheduled in.
func (c *Config) Location() (*time.Location, error) {
	if c.AlertTimezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.AlertTimezone)
	if err != nil {
		return nil, fmt.Errorf("ALERT_TIMEZONE: %w", err)
	}
	return loc, nil
}

// CollisionOptions returns the checker settings. Call Validate first.
func (c *Config) CollisionOptions() collision.Options {
	strip, _ := collision.ParseParenStrip(c.DimcodeParenStrip)
	return collision.Options{
		ParenStrip:         strip,
		BillingCodeMarkers: c.BillingCodeMarkers,
	}
}

// DisplayConfig returns the result count display settings.
func (c *Config) DisplayConfig() resultdisplay.Config {
	return resultdisplay.Config{
		MaskZero:                c.MaskZero,
		LowThreshold:            c.LowThresholdStyle,
		PermittedRoles:          c.PermittedRoles,
		UseFloorThreshold:       c.UseFloorThreshold,
		FloorThresholdNumber:    c.FloorThresholdNumber,
		FloorThresholdText:      c.FloorThresholdText,
		ObfuscatedDisplayNumber: c.ObfuscatedDisplayNumber,
	}
}

// InfoButtonConfig returns the ontology help dictionary settings.
func (c *Config) InfoButtonConfig() infobutton.Config {
	return infobutton.Config{
		DictionaryPath:    c.OntInfoDictionary,
		DataDictionaryURL: c.OntDataDictionaryURL,
	}
}

// AlertsConfig returns the login banner settings. Call Validate first.
func (c *Config) AlertsConfig() alerts.Config {
	loc, _ := c.Location()
	return alerts.Config{
		LoginHeader:   c.LoginHeaderText,
		LoginAnnounce: c.LoginAnnounce,
		Maintenance: alerts.Window{
			Date:        c.MaintDate,
			Hour:        c.MaintHour,
			AmPm:        c.MaintAmPm,
			LengthHours: c.MaintLengthHours,
			LengthDays:  c.MaintLengthDays,
		},
		MaintenanceMessage: c.MaintMessage,
		Holiday: alerts.Window{
			Date:        c.HolidayDate,
			Hour:        c.HolidayHour,
			AmPm:        c.HolidayAmPm,
			LengthHours: c.HolidayLengthHours,
			LengthDays:  c.HolidayLengthDays,
		},
		HolidayMessage: c.HolidayMessage,
		System: alerts.SystemAlert{
			Active:  c.SystemAlertActive,
			Title:   c.SystemAlertTitle,
			Message: c.SystemAlertMessage,
		},
		Location: loc,
	}
}
