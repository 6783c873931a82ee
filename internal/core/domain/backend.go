package domain

// BackendKind identifies a compiler backend implementation.
// Lower values have higher selection priority.
type BackendKind uint8

const (
	// BackendNative runs the compiler in an embedded V8 isolate.
	BackendNative BackendKind = iota
	// BackendProcess runs the compiler in an external interpreter process.
	BackendProcess
	// BackendEngine runs the compiler in the embedded pure-Go interpreter.
	BackendEngine
)

// BackendKinds lists all kinds in selection order.
var BackendKinds = []BackendKind{BackendNative, BackendProcess, BackendEngine}

func (k BackendKind) String() string {
	switch k {
	case BackendNative:
		return "native"
	case BackendProcess:
		return "process"
	case BackendEngine:
		return "engine"
	default:
		return "unknown"
	}
}

// BackendStatus reports whether a backend can be selected.
type BackendStatus struct {
	Kind      BackendKind
	Available bool
	// Reason explains why the backend is unavailable.
	Reason string
	// Selected is set on the backend the selector settled on.
	Selected bool
}
