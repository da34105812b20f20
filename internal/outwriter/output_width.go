package outwriter

import (
	"os"

	"github.com/huangsam/pmpulse/internal/contract"
	"golang.org/x/term"
)

// Bounds for the label column of a text table.
const (
	minLabelWidth = 12
	maxLabelWidth = 60
)

// GetMaxLabelWidth calculates the maximum width for the label column of a
// table with the given number of columns, based on the terminal width.
func GetMaxLabelWidth(cfg *contract.Config, columns int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Every other column gets a fixed share, plus borders and padding
	baseWidth := 12*max(columns-1, 0) + 10

	available := termWidth - baseWidth
	if available < minLabelWidth {
		return minLabelWidth
	}
	if available > maxLabelWidth {
		return maxLabelWidth
	}
	return available
}
