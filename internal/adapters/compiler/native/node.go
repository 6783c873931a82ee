package native

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the native backend Graft node.
const NodeID graft.ID = "adapter.compiler.native"

func init() {
	graft.Register(graft.Node[*Backend]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Backend, error) {
			return NewBackend(), nil
		},
	})
}
