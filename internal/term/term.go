// Package term provides color state and terminal detection.
//
// Colors are package-level values because multiple packages (logging,
// display) paint with them. [Configure] resolves the mode once during
// startup; when colors are disabled every paint call returns its input
// unchanged.
package term

import (
	"os"
	"strings"

	"github.com/fatih/color"
	xterm "golang.org/x/term"

	"github.com/backmassage/pixelbatch/internal/config"
)

// Level colors shared by the logger and the banner.
var (
	Red     = color.New(color.Bold, color.FgHiRed)
	Green   = color.New(color.Bold, color.FgHiGreen)
	Yellow  = color.New(color.Bold, color.FgHiYellow)
	Orange  = color.New(color.Bold, 38, 5, 208)
	Blue    = color.New(color.Bold, color.FgHiBlue)
	Cyan    = color.New(color.Bold, color.FgHiCyan)
	Magenta = color.New(color.Bold, color.FgHiMagenta)
)

// Configure resolves the color mode and toggles color output globally.
// Call once during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode) {
	color.NoColor = !resolve(mode)
}

// Enabled reports whether colors are currently active.
func Enabled() bool { return !color.NoColor }

// Paint wraps s in c's escape sequence when colors are enabled.
func Paint(c *color.Color, s string) string {
	return c.Sprint(s)
}

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return xterm.IsTerminal(int(f.Fd()))
}
