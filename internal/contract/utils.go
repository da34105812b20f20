package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/pmpulse/schema"
)

// Margin label constants.
const (
	LossValue    = "Loss"    // Loss value
	ThinValue    = "Thin"    // Thin value
	HealthyValue = "Healthy" // Healthy value
)

// ThinMarginThreshold is the margin percentage below which a profitable project is flagged.
const ThinMarginThreshold = 10.0

// Color variables for console output.
var (
	LossColor    = color.New(color.FgRed, color.Bold) // LossColor represents a project losing money.
	ThinColor    = color.New(color.FgYellow)          // ThinColor represents standard caution, not bold.
	HealthyColor = color.New(color.FgGreen)           // HealthyColor represents a comfortable margin.
	StatusColor  = color.New(color.FgCyan)            // StatusColor highlights status names.
)

// GetPlainMarginLabel returns a plain text label for a profit margin percentage.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainMarginLabel(margin float64) string {
	switch {
	case margin < 0:
		return LossValue
	case margin < ThinMarginThreshold:
		return ThinValue
	default:
		return HealthyValue
	}
}

// GetColorMarginLabel returns a colored margin label for console output (table).
func GetColorMarginLabel(margin float64) string {
	text := GetPlainMarginLabel(margin)

	switch text {
	case LossValue:
		return LossColor.Sprint(text)
	case ThinValue:
		return ThinColor.Sprint(text)
	default:
		return HealthyColor.Sprint(text)
	}
}

// GetColorStatus returns a colored status name for console output.
func GetColorStatus(status string) string {
	if status == string(schema.PhaseComplete) || status == string(schema.ProjectCompleted) {
		return HealthyColor.Sprint(status)
	}
	return StatusColor.Sprint(status)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pmpulse.db"
	}
	return filepath.Join(homeDir, ".pmpulse.db")
}

// GetAuditDBFilePath returns the path to the SQLite DB file for audit storage.
func GetAuditDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pmpulse_audit.db"
	}
	return filepath.Join(homeDir, ".pmpulse_audit.db")
}

// TruncateLabel cuts a label to maxRunes runes and appends an ellipsis.
// Labels within the limit are returned unchanged. A non-positive limit disables truncation.
func TruncateLabel(label string, maxRunes int) string {
	runes := []rune(label)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return label
	}
	return string(runes[:maxRunes]) + "..."
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
