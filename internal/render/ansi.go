// Package render draws the planner model as ANSI-styled terminal text for the
// interactive shell.
package render

import (
	"fmt"
	"strconv"
)

// ANSI escape code constants for terminal styling.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	BgBlue  = "\033[44m"
	Reverse = "\033[7m"

	BrightBlack  = "\033[90m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
)

// Colorize wraps text with the given ANSI code and a reset suffix.
//
// Postcondition: Returns text wrapped with the code and Reset.
func Colorize(code, text string) string {
	return code + text + Reset
}

// Colorf wraps a formatted string with the given ANSI code.
func Colorf(code, format string, args ...any) string {
	return code + fmt.Sprintf(format, args...) + Reset
}

// HexColor converts a "#rrggbb" display hint into a 24-bit foreground escape.
//
// Postcondition: Returns ("", false) for anything that is not a 7-character
// hex color.
func HexColor(hex string) (string, bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return "", false
	}
	rgb, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", rgb>>16&0xff, rgb>>8&0xff, rgb&0xff), true
}

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns s with all \033[...m sequences removed.
func StripANSI(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
