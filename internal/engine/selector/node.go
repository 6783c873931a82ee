package selector

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tsload/internal/adapters/compiler/engine"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tsload/internal/adapters/compiler/native"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tsload/internal/adapters/compiler/process" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tsload/internal/adapters/logger"           //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tsload/internal/adapters/telemetry"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tsload/internal/core/ports"
)

const (
	// RegistryNodeID is the unique identifier for the process-wide compiler registry Graft node.
	RegistryNodeID graft.ID = "engine.compiler_registry"
	// NodeID is the unique identifier for the selector factory Graft node.
	NodeID graft.ID = "engine.selector"
)

func init() {
	graft.Register(graft.Node[*Registry]{
		ID:        RegistryNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Registry, error) {
			return NewRegistry(), nil
		},
	})

	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			RegistryNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			native.NodeID,
			process.NodeID,
			engine.NodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			registry, err := graft.Dep[*Registry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			nativeBackend, err := graft.Dep[*native.Backend](ctx)
			if err != nil {
				return nil, err
			}

			processBackend, err := graft.Dep[*process.Backend](ctx)
			if err != nil {
				return nil, err
			}

			engineBackend, err := graft.Dep[*engine.Backend](ctx)
			if err != nil {
				return nil, err
			}

			return NewFactory(registry, log, tracer, nativeBackend, processBackend, engineBackend), nil
		},
	})
}
