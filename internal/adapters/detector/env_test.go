package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/tsload/internal/adapters/detector"
)

func fakeEnv(tty bool, vars map[string]string) detector.Environment {
	return detector.Environment{
		IsTerminal: func(int) bool { return tty },
		Getenv:     func(key string) string { return vars[key] },
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		tty      bool
		ci       string
		expected detector.OutputMode
	}{
		{name: "terminal without CI is pretty", tty: true, expected: detector.ModePretty},
		{name: "pipe is json", tty: false, expected: detector.ModeJSON},
		{name: "CI=true forces json", tty: true, ci: "true", expected: detector.ModeJSON},
		{name: "CI=1 forces json", tty: true, ci: "1", expected: detector.ModeJSON},
		{name: "CI=TRUE forces json", tty: true, ci: "TRUE", expected: detector.ModeJSON},
		{name: "CI=false does not force json", tty: true, ci: "false", expected: detector.ModePretty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := fakeEnv(tt.tty, map[string]string{"CI": tt.ci})
			assert.Equal(t, tt.expected, env.Detect())
		})
	}
}

func TestDetectEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, detector.ModeJSON, detector.DetectEnvironment())
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name         string
		autoDetected detector.OutputMode
		userFlag     string
		expected     detector.OutputMode
	}{
		{"auto respects auto-detection (pretty)", detector.ModePretty, "auto", detector.ModePretty},
		{"auto respects auto-detection (json)", detector.ModeJSON, "auto", detector.ModeJSON},
		{"empty flag respects auto-detection", detector.ModePretty, "", detector.ModePretty},
		{"json overrides auto-detection", detector.ModePretty, "json", detector.ModeJSON},
		{"pretty overrides auto-detection", detector.ModeJSON, "pretty", detector.ModePretty},
		{"text is alias for pretty", detector.ModeJSON, "text", detector.ModePretty},
		{"flag is case insensitive", detector.ModePretty, "JSON", detector.ModeJSON},
		{"invalid flag respects auto-detection", detector.ModeJSON, "invalid", detector.ModeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.ResolveMode(tt.autoDetected, tt.userFlag)
			if got != tt.expected {
				t.Errorf("ResolveMode(%v, %q) = %v, want %v",
					tt.autoDetected, tt.userFlag, got, tt.expected)
			}
		})
	}
}

func TestOutputMode_String(t *testing.T) {
	assert.Equal(t, "auto", detector.ModeAuto.String())
	assert.Equal(t, "pretty", detector.ModePretty.String())
	assert.Equal(t, "json", detector.ModeJSON.String())
}
