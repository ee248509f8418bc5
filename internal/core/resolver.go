package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"rtcports/internal/ports"
	"rtcports/internal/types"
)

// TreeResolver finds port owners by searching the components under a tree
// root.
type TreeResolver struct {
	root ports.TreeNode
}

func NewTreeResolver(root ports.TreeNode) TreeResolver {
	return TreeResolver{root: root}
}

// FindOwner returns the first component exposing a port with the same
// remote identity as obj.
func (r TreeResolver) FindOwner(ctx context.Context, obj ports.PortService) (ports.PortOwner, bool) {
	if r.root == nil {
		return nil, false
	}
	matches := r.root.Search(func(node ports.TreeNode) bool {
		owner, ok := node.(ports.PortOwner)
		if !ok {
			return false
		}
		for _, candidate := range owner.PortObjects() {
			if ports.SameObject(candidate, obj) {
				return true
			}
		}
		return false
	}, types.NodeKindComponent)
	if len(matches) == 0 {
		log.Ctx(ctx).Debug().Str("ref", obj.Ref()).Msg("no owner found for port")
		return nil, false
	}
	owner, ok := matches[0].(ports.PortOwner)
	return owner, ok
}
