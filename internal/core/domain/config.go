package domain

import (
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// CacheMode selects the compilation cache variant.
type CacheMode string

const (
	// CacheNone disables caching.
	CacheNone CacheMode = "none"
	// CacheMemory keeps compiled output in a bounded in-memory cache.
	CacheMemory CacheMode = "memory"
	// CacheDisk persists compiled output to a directory, backed by a memory tier.
	CacheDisk CacheMode = "disk"
)

// Defaults used when the configuration leaves a value unset.
const (
	DefaultCacheSize     = 1024
	DefaultBundle        = "typescript/lib/typescript.js"
	DefaultProcessBundle = "typescript/bin/tsc.js"
	DefaultLib           = "typescript/lib/lib.d.ts"
	DefaultEntryPoint    = `(?m)^ts\.executeCommandLine`
	DefaultInterpreter   = "node"
	DefaultProbeTimeout  = 5 * time.Second
	DefaultProbeArg      = "-v"
)

// ParseCacheMode converts a configuration value into a CacheMode.
// An empty value selects CacheNone.
func ParseCacheMode(s string) (CacheMode, error) {
	switch mode := CacheMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return CacheNone, nil
	case CacheNone, CacheMemory, CacheDisk:
		return mode, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidCacheMode, "parse cache mode"), "mode", s)
	}
}

// CacheConfig configures the compilation cache.
type CacheConfig struct {
	Mode CacheMode
	Dir  string
	Size int
}

// CompilerConfig configures backend selection and the backends themselves.
type CompilerConfig struct {
	DisableNative  bool
	DisableProcess bool
	Share          bool

	// Bundle is the TypeScript services script loaded by the embedded backends.
	Bundle string
	// Adapter optionally names a script replacing the built-in compile adapter.
	Adapter string
	// DefaultLib is the default library declaration file handed to the compiler.
	DefaultLib string

	// ProcessBundle is the command-line compiler script run by the process backend.
	ProcessBundle   string
	EntryPoint      string
	Interpreter     string
	InterpreterArgs []string
	ProbeArgs       []string
	ProbeTimeout    time.Duration
}

// Config is the complete runtime configuration.
type Config struct {
	Cache    CacheConfig
	Compiler CompilerConfig
}

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Mode: CacheNone,
			Dir:  DefaultCachePath(),
			Size: DefaultCacheSize,
		},
		Compiler: CompilerConfig{
			Bundle:        DefaultBundle,
			DefaultLib:    DefaultLib,
			ProcessBundle: DefaultProcessBundle,
			EntryPoint:    DefaultEntryPoint,
			Interpreter:   DefaultInterpreter,
			ProbeArgs:     []string{DefaultProbeArg},
			ProbeTimeout:  DefaultProbeTimeout,
		},
	}
}

// Validate reports configuration errors that must stop startup.
func (c *Config) Validate() error {
	mode, err := ParseCacheMode(string(c.Cache.Mode))
	if err != nil {
		return err
	}
	c.Cache.Mode = mode
	if mode != CacheNone && c.Cache.Size <= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidCacheSize, "validate config"), "size", c.Cache.Size)
	}
	return nil
}
