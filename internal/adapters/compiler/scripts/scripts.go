// Package scripts embeds the JavaScript glue run alongside the TypeScript compiler.
package scripts

import _ "embed"

// ReadFileMarker prefixes a file request written by the process shim.
const ReadFileMarker = "TSLOAD_READFILE"

// EntryFunction is the adapter function the embedded backends call.
const EntryFunction = "compileTypescript"

// AdapterName is the script name reported for the built-in adapter.
const AdapterName = "tsload/compile.js"

// Adapter defines compileTypescript(file, host) on top of the global ts object.
//
//go:embed compile.js
var Adapter string

// NativePrelude defines the __host object for the V8 backend.
//
//go:embed native_prelude.js
var NativePrelude string

// ProcessShim replaces ts.sys file access with requests to the parent process.
//
//go:embed process_sys.js
var ProcessShim string
