package schema

import (
	"github.com/goliatone/go-formbuilder/pkg/ids"
	"github.com/goliatone/go-formbuilder/pkg/tree"
)

// Placement is the parent collection and index of a node. Parent is nil for
// root fields; BranchID is set for nodes inside a tab, item or step.
type Placement struct {
	Parent   *Node
	BranchID string
	Index    int
}

// FindByID returns the node with the given id, or nil.
func FindByID(fields []*Node, id string) *Node {
	node, ok := tree.Find(fields, id)
	if !ok {
		return nil
	}
	return node
}

// RemoveByID splices the node with the given id out of fields, reporting
// whether anything was removed.
func RemoveByID(fields *[]*Node, id string) bool {
	_, ok := tree.Remove(fields, id)
	return ok
}

// FindParentAndIndex locates the collection holding id.
func FindParentAndIndex(fields []*Node, id string) (Placement, bool) {
	loc, ok := tree.Locate(&fields, id)
	if !ok {
		return Placement{}, false
	}
	placement := Placement{BranchID: loc.Branch.ID, Index: loc.Index}
	if loc.HasParent {
		placement.Parent = loc.Parent
	}
	return placement, true
}

// RegenerateIDs assigns fresh ids to n and every descendant, including the
// entries of tab/item/step branches.
func RegenerateIDs(n *Node, gen ids.Generator) {
	if n == nil {
		return
	}
	if gen == nil {
		gen = ids.Default()
	}
	tree.RegenerateIDs(n, gen.NewID)
}

// Walk visits every node of s depth-first in rendering order.
func (s *FormSchema) Walk(visit func(n *Node, depth int) bool) {
	if s == nil {
		return
	}
	tree.Walk(s.Fields, visit)
}

// Find returns the node with the given id.
func (s *FormSchema) Find(id string) (*Node, bool) {
	if s == nil {
		return nil, false
	}
	return tree.Find(s.Fields, id)
}

// Count returns the number of nodes in the document.
func (s *FormSchema) Count() int {
	if s == nil {
		return 0
	}
	return tree.Count(s.Fields)
}
