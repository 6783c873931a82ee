package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tsload/internal/adapters/cache"     //nolint:depguard // Wired in app layer
	"go.trai.ch/tsload/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/tsload/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/tsload/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/tsload/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/tsload/internal/engine/selector"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			cache.NodeID,
			selector.NodeID,
			watcher.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	configLoader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	caches, err := graft.Dep[ports.CacheFactory](ctx)
	if err != nil {
		return nil, err
	}

	selectors, err := graft.Dep[*selector.Factory](ctx)
	if err != nil {
		return nil, err
	}

	watchers, err := graft.Dep[ports.WatcherFactory](ctx)
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

	return New(configLoader, caches, selectors, watchers, log, tracer), nil
}
