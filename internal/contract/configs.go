package contract

import (
	"fmt"
	"strings"

	"github.com/huangsam/pmpulse/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 8
	MaxResultLimit     = 1000
	DefaultAuditBuffer = 64
	DefaultRange       = schema.Range6Months
	DefaultWeekLabels  = schema.LegacyWeekLabels
)

// Fixed report shapes.
const (
	// CurveBucketCap bounds the S-curve to a legible number of months,
	// independent of the requested range.
	CurveBucketCap = 12

	// CompletionWeeks is the trailing week count of the completion trend.
	CompletionWeeks = 8

	// LabelMaxRunes is the ranking label length before truncation.
	LabelMaxRunes = 20
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for reports.
// This struct remains the "final, validated" config.
type Config struct {
	UserID      string
	ProjectID   string
	Range       schema.RangeSelector
	ResultLimit int
	WeekLabels  schema.WeekLabelStyle
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	AuditBackend   schema.DatabaseBackend
	AuditDBConnect string // Please use env var as this is plaintext
	AuditBuffer    int
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	User           string `mapstructure:"user"`
	Project        string `mapstructure:"project"`
	Range          string `mapstructure:"range"`
	Limit          int    `mapstructure:"limit"`
	WeekLabels     string `mapstructure:"week-labels"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	AuditBackend   string `mapstructure:"audit-backend"`
	AuditDBConnect string `mapstructure:"audit-db-connect"`
	AuditBuffer    int    `mapstructure:"audit-buffer"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processReportScope(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.YAMLBackend:
		if connStr == "" {
			return fmt.Errorf("a dataset file path is required when using %s backend", backend)
		}
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseStoreBackend validates a snapshot store backend name.
func ParseStoreBackend(s string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if backend == "" {
		return schema.SQLiteBackend, nil
	}
	if _, ok := schema.ValidStoreBackends[backend]; !ok {
		return "", fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, yaml", s)
	}
	return backend, nil
}

// ParseAuditBackend validates an audit store backend name. Empty disables auditing.
func ParseAuditBackend(s string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if backend == "" {
		return schema.NoneBackend, nil
	}
	if _, ok := schema.ValidAuditBackends[backend]; !ok {
		return "", fmt.Errorf("invalid audit backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// validateBackendConfigs validates snapshot and audit backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Snapshot Store Validation ---
	backend, err := ParseStoreBackend(input.StoreBackend)
	if err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// --- Audit Store Validation ---
	backend, err = ParseAuditBackend(input.AuditBackend)
	if err != nil {
		return err
	}
	cfg.AuditBackend = backend
	cfg.AuditDBConnect = input.AuditDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AuditBackend, cfg.AuditDBConnect); err != nil {
		return err
	}

	if input.AuditBuffer < 0 {
		return fmt.Errorf("audit-buffer cannot be negative (received %d)", input.AuditBuffer)
	}
	cfg.AuditBuffer = input.AuditBuffer
	if cfg.AuditBuffer == 0 {
		cfg.AuditBuffer = DefaultAuditBuffer
	}

	// Audit runs must not land in the snapshot database file
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.AuditBackend == schema.SQLiteBackend {
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetStoreDBFilePath()
		}
		auditPath := cfg.AuditDBConnect
		if auditPath == "" {
			auditPath = GetAuditDBFilePath()
		}
		if storePath == auditPath {
			return fmt.Errorf("store and audit must use different SQLite database files. Both resolve to %q", storePath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates the presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	cfg.WeekLabels = schema.WeekLabelStyle(strings.ToLower(input.WeekLabels))
	if cfg.WeekLabels == "" {
		cfg.WeekLabels = DefaultWeekLabels
	}
	if _, ok := schema.ValidWeekLabelStyles[cfg.WeekLabels]; !ok {
		return fmt.Errorf("invalid week label style '%s'. must be legacy, iso", input.WeekLabels)
	}

	return nil
}

// processReportScope handles the caller, project and range parameters.
func processReportScope(cfg *Config, input *ConfigRawInput) error {
	cfg.UserID = strings.TrimSpace(input.User)
	cfg.ProjectID = strings.TrimSpace(input.Project)

	sel, err := ParseRange(input.Range)
	if err != nil {
		return err
	}
	cfg.Range = sel
	return nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
