package ports

import (
	"context"

	"rtcports/internal/types"
)

// TreeNode is one node of the tree of directories, managers and components.
type TreeNode interface {
	InstanceName() string
	FullPathStr() string
	Kind() types.NodeKind
	Owner() TreeNode
	Root() TreeNode
	// Search walks the subtree rooted at this node and returns every node
	// of one of kinds (all kinds when none given) for which match is true.
	Search(match func(TreeNode) bool, kinds ...types.NodeKind) []TreeNode
}

// PortOwner is a tree node that exposes ports, usually a component.
type PortOwner interface {
	TreeNode
	PortObjects() []PortService
}

// TreePort resolves human-readable paths to tree nodes.
type TreePort interface {
	Root() TreeNode
	Find(path string) (TreeNode, bool)
}

// OwnerResolver locates the component that exposes a port reference.
type OwnerResolver interface {
	FindOwner(ctx context.Context, obj PortService) (PortOwner, bool)
}
