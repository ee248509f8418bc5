package adapters

import (
	"context"
	"slices"

	"rtcports/internal/ports"
	"rtcports/internal/shared"
	"rtcports/internal/types"
)

// Node is one directory, manager or component of an in-process tree.
type Node struct {
	name     string
	kind     types.NodeKind
	parent   *Node
	children []*Node
	objs     []ports.PortService
}

func (n *Node) InstanceName() string {
	if n.kind == types.NodeKindComponent {
		return shared.InstanceNameFromNode(n.name)
	}
	return n.name
}

func (n *Node) FullPathStr() string {
	if n.parent == nil {
		return "/" + n.name
	}
	return n.parent.FullPathStr() + "/" + n.name
}

func (n *Node) Kind() types.NodeKind {
	return n.kind
}

func (n *Node) Owner() ports.TreeNode {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Root() ports.TreeNode {
	node := n
	for node.parent != nil {
		node = node.parent
	}
	return node
}

func (n *Node) Search(match func(ports.TreeNode) bool, kinds ...types.NodeKind) []ports.TreeNode {
	var result []ports.TreeNode
	if (len(kinds) == 0 || slices.Contains(kinds, n.kind)) && match(n) {
		result = append(result, n)
	}
	for _, child := range n.children {
		result = append(result, child.Search(match, kinds...)...)
	}
	return result
}

func (n *Node) PortObjects() []ports.PortService {
	return slices.Clone(n.objs)
}

// Tree is an in-process component tree built from a fixture.
type Tree struct {
	root  *Node
	index map[string]*Node
}

func (t *Tree) Root() ports.TreeNode {
	return t.root
}

func (t *Tree) Find(path string) (ports.TreeNode, bool) {
	node, ok := t.index[shared.NormalizePath(path)]
	if !ok {
		return nil, false
	}
	return node, true
}

// BuildTree mirrors the fixture's nodes and looks up each component port in
// framework. Every port must already be registered.
func BuildTree(ctx context.Context, fixture types.Fixture, framework ports.FrameworkPort) (*Tree, error) {
	tree := &Tree{index: map[string]*Node{}}
	root, err := tree.build(ctx, fixture.Root, nil, framework)
	if err != nil {
		return nil, err
	}
	tree.root = root
	return tree, nil
}

func (t *Tree) build(ctx context.Context, def types.FixtureNode, parent *Node, framework ports.FrameworkPort) (*Node, error) {
	node := &Node{name: def.Name, kind: def.Kind, parent: parent}
	if node.kind == "" {
		node.kind = types.NodeKindDirectory
	}
	path := node.FullPathStr()
	t.index[path] = node
	if node.kind == types.NodeKindComponent {
		for _, port := range def.Ports {
			obj, err := framework.Object(ctx, shared.JoinPortPath(path, port.Name))
			if err != nil {
				return nil, err
			}
			node.objs = append(node.objs, obj)
		}
	}
	for _, childDef := range def.Children {
		child, err := t.build(ctx, childDef, node, framework)
		if err != nil {
			return nil, err
		}
		node.children = append(node.children, child)
	}
	return node, nil
}
