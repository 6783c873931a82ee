// Package config loads the tsload configuration from YAML or TOML files and
// the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the configuration schema version this build understands.
const SupportedVersion = "1"

// Environment variables overriding the configuration file.
const (
	EnvCache          = "TSLOAD_CACHE"
	EnvCacheDir       = "TSLOAD_CACHE_DIR"
	EnvCacheSize      = "TSLOAD_CACHE_SIZE"
	EnvDisableNative  = "TSLOAD_DISABLE_NATIVE"
	EnvDisableProcess = "TSLOAD_DISABLE_PROCESS"
	EnvShareCompiler  = "TSLOAD_SHARE_COMPILER"
	EnvInterpreter    = "TSLOAD_INTERPRETER"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
	Getenv func(string) string
}

// NewLoader creates a Loader reading from the local filesystem and environment.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		Logger: logger,
		FS:     NewOSFS(),
		Getenv: os.Getenv,
	}
}

// Load builds the configuration for cwd. An explicit path is read as is;
// otherwise the nearest configuration file in cwd or its parents is used.
// Without a file the defaults apply. Environment overrides are applied last.
func (l *Loader) Load(cwd, path string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()
	cfg.Cache.Dir = filepath.Join(cwd, cfg.Cache.Dir)

	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	if path == "" {
		path = l.findConfiguration(cwd)
	} else if _, err := l.FS.Stat(path); err != nil {
		return nil, errors.Join(domain.ErrConfigReadFailed, zerr.With(err, "path", path))
	}

	if path != "" {
		file, err := l.readConfigfile(path)
		if err != nil {
			return nil, err
		}
		if err := l.apply(cfg, file, filepath.Dir(path)); err != nil {
			return nil, zerr.With(err, "path", path)
		}
	}

	if err := l.applyEnv(cfg, cwd); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfiguration returns the first configuration file found walking up
// from cwd, or "" when there is none.
func (l *Loader) findConfiguration(cwd string) string {
	currentDir := cwd
	for {
		for _, name := range domain.ConfigFileNames {
			candidate := filepath.Join(currentDir, name)
			if info, err := l.FS.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

func (l *Loader) readConfigfile(path string) (*Configfile, error) {
	data, err := l.FS.ReadFile(path)
	if err != nil {
		return nil, errors.Join(domain.ErrConfigReadFailed, zerr.With(err, "path", path))
	}

	var file Configfile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Join(domain.ErrConfigParseFailed, zerr.With(err, "path", path))
		}
	case ".toml":
		md, err := toml.Decode(string(data), &file)
		if err != nil {
			return nil, errors.Join(domain.ErrConfigParseFailed, zerr.With(err, "path", path))
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, key := range undecoded {
				keys = append(keys, key.String())
			}
			return nil, errors.Join(domain.ErrConfigParseFailed,
				zerr.With(zerr.With(zerr.New("unknown keys"), "keys", strings.Join(keys, ", ")), "path", path))
		}
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedConfigFormat, "read config"), "extension", ext)
	}

	if file.Version != "" && file.Version != SupportedVersion && l.Logger != nil {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", filepath.Base(path), file.Version, SupportedVersion))
	}
	return &file, nil
}

// apply copies the values set in file onto cfg. Relative paths are resolved
// against the directory holding the file.
func (l *Loader) apply(cfg *domain.Config, file *Configfile, dir string) error {
	if c := file.Cache; c != nil {
		if c.Mode != "" {
			cfg.Cache.Mode = domain.CacheMode(c.Mode)
		}
		if c.Dir != "" {
			cfg.Cache.Dir = resolvePath(dir, c.Dir)
		}
		if c.Size != nil {
			cfg.Cache.Size = *c.Size
		}
	}

	c := file.Compiler
	if c == nil {
		return nil
	}
	setBool(&cfg.Compiler.DisableNative, c.DisableNative)
	setBool(&cfg.Compiler.DisableProcess, c.DisableProcess)
	setBool(&cfg.Compiler.Share, c.Share)
	setString(&cfg.Compiler.Bundle, c.Bundle)
	setString(&cfg.Compiler.Adapter, c.Adapter)
	setString(&cfg.Compiler.DefaultLib, c.DefaultLib)
	setString(&cfg.Compiler.ProcessBundle, c.ProcessBundle)
	setString(&cfg.Compiler.EntryPoint, c.EntryPoint)
	setString(&cfg.Compiler.Interpreter, c.Interpreter)
	if c.InterpreterArgs != nil {
		cfg.Compiler.InterpreterArgs = slices.Clone(c.InterpreterArgs)
	}
	if c.ProbeArgs != nil {
		cfg.Compiler.ProbeArgs = slices.Clone(c.ProbeArgs)
	}
	if c.ProbeTimeout != "" {
		timeout, err := time.ParseDuration(c.ProbeTimeout)
		if err != nil {
			return errors.Join(domain.ErrConfigParseFailed, zerr.With(err, "probe_timeout", c.ProbeTimeout))
		}
		cfg.Compiler.ProbeTimeout = timeout
	}
	return nil
}

func (l *Loader) applyEnv(cfg *domain.Config, cwd string) error {
	if v := l.Getenv(EnvCache); v != "" {
		cfg.Cache.Mode = domain.CacheMode(v)
	}
	if v := l.Getenv(EnvCacheDir); v != "" {
		cfg.Cache.Dir = resolvePath(cwd, v)
	}
	if v := l.Getenv(EnvCacheSize); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return errors.Join(domain.ErrInvalidCacheSize, zerr.With(err, "env", EnvCacheSize))
		}
		cfg.Cache.Size = size
	}

	for name, target := range map[string]*bool{
		EnvDisableNative:  &cfg.Compiler.DisableNative,
		EnvDisableProcess: &cfg.Compiler.DisableProcess,
		EnvShareCompiler:  &cfg.Compiler.Share,
	} {
		v := l.Getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Join(domain.ErrConfigParseFailed, zerr.With(err, "env", name))
		}
		*target = b
	}

	if v := l.Getenv(EnvInterpreter); v != "" {
		cfg.Compiler.Interpreter = v
	}
	return nil
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
