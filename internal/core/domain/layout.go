package domain

import "path/filepath"

const (
	// DefaultCacheDirName is the disk cache directory, relative to the working directory.
	DefaultCacheDirName = "typescript_code_cache"

	// ConfigFileName is the base name of the configuration file.
	ConfigFileName = "tsload"

	// TypeScriptExt is the extension of sources compiled on load.
	TypeScriptExt = ".ts"

	// CompiledAliasExt is the alias extension that requests a compiled source by its output name.
	CompiledAliasExt = ".ts.js"

	// JavaScriptExt is the extension of compiled output.
	JavaScriptExt = ".js"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// ConfigFileNames lists the configuration files searched for, in order.
var ConfigFileNames = []string{
	ConfigFileName + ".yaml",
	ConfigFileName + ".yml",
	ConfigFileName + ".toml",
}

// DefaultCachePath returns the default disk cache directory.
func DefaultCachePath() string {
	return filepath.Clean(DefaultCacheDirName)
}

// OutputName returns the compiled file name for a TypeScript source.
// It replaces a trailing .ts with .js.
func OutputName(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)] + JavaScriptExt
}
