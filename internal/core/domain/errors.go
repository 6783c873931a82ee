package domain

import "go.trai.ch/zerr"

var (
	// ErrSourceNotFound is returned when a file cannot be located by any resolution strategy.
	ErrSourceNotFound = zerr.New("source not found")

	// ErrSourceReadFailed is returned when a file exists but cannot be read.
	ErrSourceReadFailed = zerr.New("failed to read source")

	// ErrCompileFailed is returned when a compiler backend cannot produce output.
	ErrCompileFailed = zerr.New("compilation failed")

	// ErrBundleEntryPointMissing is returned when the compiler bundle has no command-line entry point to patch.
	ErrBundleEntryPointMissing = zerr.New("compiler bundle entry point not found")

	// ErrBackendUnavailable is returned when a compiler backend cannot run in this environment.
	ErrBackendUnavailable = zerr.New("compiler backend unavailable")

	// ErrNoBackend is returned when no compiler backend could be constructed.
	ErrNoBackend = zerr.New("no compiler backend available")

	// ErrCompilerClosed is returned when a closed compiler is used.
	ErrCompilerClosed = zerr.New("compiler is closed")

	// ErrInvalidCacheMode is returned when the configured cache mode is unknown.
	ErrInvalidCacheMode = zerr.New("invalid cache mode")

	// ErrInvalidCacheSize is returned when the memory cache capacity is not positive.
	ErrInvalidCacheSize = zerr.New("cache size must be positive")

	// ErrConfigReadFailed is returned when the configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the configuration file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrUnsupportedConfigFormat is returned for configuration files with an unknown extension.
	ErrUnsupportedConfigFormat = zerr.New("unsupported config format")

	// ErrNoInputFiles is returned when a command that compiles files receives none.
	ErrNoInputFiles = zerr.New("no input files specified")

	// ErrNotConfigured is returned when the application is used before its configuration is loaded.
	ErrNotConfigured = zerr.New("application is not configured")

	// ErrNotTypeScript is returned when a compile target does not name a TypeScript file.
	ErrNotTypeScript = zerr.New("not a TypeScript file")
)
