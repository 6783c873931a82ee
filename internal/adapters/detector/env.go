// Package detector provides environment detection for output mode selection.
package detector

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// OutputMode represents how diagnostics are written to stderr.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModePretty forces coloured, human-readable logs.
	ModePretty
	// ModeJSON forces structured JSON logs.
	ModeJSON
)

func (m OutputMode) String() string {
	switch m {
	case ModePretty:
		return "pretty"
	case ModeJSON:
		return "json"
	default:
		return "auto"
	}
}

// Environment is the part of the process environment detection looks at.
type Environment struct {
	IsTerminal func(fd int) bool
	Getenv     func(key string) string
	Fd         uintptr
}

// OSEnvironment inspects the real stderr and environment variables.
func OSEnvironment() Environment {
	return Environment{
		IsTerminal: term.IsTerminal,
		Getenv:     os.Getenv,
		Fd:         os.Stderr.Fd(),
	}
}

// Detect returns the recommended output mode for env.
// Logs go to stderr, so stderr decides: a pipe or a CI runner gets JSON.
func (env Environment) Detect() OutputMode {
	ci := strings.ToLower(env.Getenv("CI"))
	if ci == "true" || ci == "1" {
		return ModeJSON
	}
	if !env.IsTerminal(int(env.Fd)) {
		return ModeJSON
	}
	return ModePretty
}

// DetectEnvironment returns the recommended output mode for this process.
func DetectEnvironment() OutputMode {
	return OSEnvironment().Detect()
}

// ResolveMode applies user override flag to auto-detection.
// userFlag should be one of: "auto", "pretty", "json", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch strings.ToLower(userFlag) {
	case "pretty", "text":
		return ModePretty
	case "json":
		return ModeJSON
	default:
		return autoDetected
	}
}
