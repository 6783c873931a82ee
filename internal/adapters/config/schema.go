package config

// Configfile represents the structure of tsload.yaml and tsload.toml.
// Pointer fields distinguish an unset value from its zero value.
type Configfile struct {
	Version  string       `yaml:"version" toml:"version"`
	Cache    *CacheDTO    `yaml:"cache" toml:"cache"`
	Compiler *CompilerDTO `yaml:"compiler" toml:"compiler"`
}

// CacheDTO represents the cache section.
type CacheDTO struct {
	Mode string `yaml:"mode" toml:"mode"`
	Dir  string `yaml:"dir" toml:"dir"`
	Size *int   `yaml:"size" toml:"size"`
}

// CompilerDTO represents the compiler section.
type CompilerDTO struct {
	DisableNative  *bool  `yaml:"disable_native" toml:"disable_native"`
	DisableProcess *bool  `yaml:"disable_process" toml:"disable_process"`
	Share          *bool  `yaml:"share" toml:"share"`
	Bundle         string `yaml:"bundle" toml:"bundle"`
	Adapter        string `yaml:"adapter" toml:"adapter"`
	DefaultLib     string `yaml:"default_lib" toml:"default_lib"`

	ProcessBundle   string   `yaml:"process_bundle" toml:"process_bundle"`
	EntryPoint      string   `yaml:"entry_point" toml:"entry_point"`
	Interpreter     string   `yaml:"interpreter" toml:"interpreter"`
	InterpreterArgs []string `yaml:"interpreter_args" toml:"interpreter_args"`
	ProbeArgs       []string `yaml:"probe_args" toml:"probe_args"`
	ProbeTimeout    string   `yaml:"probe_timeout" toml:"probe_timeout"`
}
