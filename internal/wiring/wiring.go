// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/tsload/internal/adapters/cache"
	_ "go.trai.ch/tsload/internal/adapters/compiler/engine"
	_ "go.trai.ch/tsload/internal/adapters/compiler/native"
	_ "go.trai.ch/tsload/internal/adapters/compiler/process"
	_ "go.trai.ch/tsload/internal/adapters/config"
	_ "go.trai.ch/tsload/internal/adapters/logger"
	_ "go.trai.ch/tsload/internal/adapters/telemetry"
	_ "go.trai.ch/tsload/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/tsload/internal/app"
	_ "go.trai.ch/tsload/internal/engine/selector"
)
