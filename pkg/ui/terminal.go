package ui

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

// Logo printed by the CLI on interactive terminals
const Logo = `
  ┌─┐┬─┐ ┬┬┬  ┬┌─┐┬─┐┌─┐┬ ┬┬  ┌─┐┬─┐
  ├─┘│┌┴┬┘│└┐┌┘│  ├┬┘├─┤││││  ├┤ ├┬┘
  ┴  ┴┴ └─┴ └┘ └─┘┴└─┴ ┴└┴┘┴─┘└─┘┴└─
`

var (
	// Out receives all console output
	Out io.Writer = os.Stdout

	quiet atomic.Bool
	color atomic.Bool
)

func init() {
	color.Store(term.IsTerminal(int(os.Stdout.Fd())))
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(q bool) {
	quiet.Store(q)
}

// IsQuietMode reports whether console output is suppressed
func IsQuietMode() bool {
	return quiet.Load()
}

// SetColor enables or disables ANSI colors
func SetColor(enabled bool) {
	color.Store(enabled)
}

// IsInteractive reports whether stdout is a terminal
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !color.Load() {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the logo with color
func PrintLogo() {
	if IsQuietMode() {
		return
	}
	fmt.Fprint(Out, Cyan(Logo))
}

// PrintError prints an error message in red, even in quiet mode
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Out, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Out, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintln(Out, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintf(Out, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if IsQuietMode() {
		return
	}
	if len(args) > 0 {
		fmt.Fprintln(Out, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Out, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintln(Out, Magenta(msg))
}

// PrintRule prints a separator line
func PrintRule() {
	if IsQuietMode() {
		return
	}
	fmt.Fprintln(Out, Dim("------------------------------"))
}
