package engine

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the engine backend Graft node.
const NodeID graft.ID = "adapter.compiler.engine"

func init() {
	graft.Register(graft.Node[*Backend]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Backend, error) {
			return NewBackend(), nil
		},
	})
}
