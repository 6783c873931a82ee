package process

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the process backend Graft node.
const NodeID graft.ID = "adapter.compiler.process"

func init() {
	graft.Register(graft.Node[*Backend]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Backend, error) {
			return NewBackend(), nil
		},
	})
}
