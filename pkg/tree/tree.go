package tree

import "slices"

// End is the insertion index meaning "append to the collection".
const End = -1

// Branch is one ordered child collection of a container node. Containers with
// a single children slot expose one branch with an empty ID; multi-branch
// containers (tabs, accordion items, steps) expose one branch per entry and
// carry that entry's id so it can be addressed directly.
type Branch[T any] struct {
	ID       string
	Children *[]T
}

// Node is implemented by every tree flavor handled by this package. Leaves
// return no branches. Implementations are expected to be pointer types so the
// branch slices stay addressable.
type Node[T any] interface {
	NodeID() string
	SetNodeID(id string)
	Branches() []Branch[T]
	Clone() T
}

// Relabeler is implemented by nodes whose branch entries carry their own ids.
// RegenerateIDs calls it after assigning the node a new id.
type Relabeler interface {
	RelabelBranches(next func() string)
}

// Location describes where a node currently sits.
type Location[T Node[T]] struct {
	Parent    T
	HasParent bool
	Branch    Branch[T]
	Index     int
}

// ParentKey returns the placement key addressing the collection holding the
// node: empty for the root, the branch id for multi-branch containers and the
// owner id otherwise.
func (l Location[T]) ParentKey() string {
	if !l.HasParent {
		return ""
	}
	if l.Branch.ID != "" {
		return l.Branch.ID
	}
	return l.Parent.NodeID()
}

// Target is a resolved insertion point.
type Target[T Node[T]] struct {
	Owner    T
	HasOwner bool
	Branch   Branch[T]
}

// Key returns the canonical placement key for the target. Two targets with
// the same key address the same collection.
func (t Target[T]) Key() string {
	if !t.HasOwner {
		return ""
	}
	if t.Branch.ID != "" {
		return t.Branch.ID
	}
	return t.Owner.NodeID()
}

// Len reports how many children the target collection holds.
func (t Target[T]) Len() int {
	if t.Branch.Children == nil {
		return 0
	}
	return len(*t.Branch.Children)
}

// Walk visits nodes depth-first in document order, descending into every
// branch. Returning false from visit stops the walk; Walk reports whether it
// ran to completion.
func Walk[T Node[T]](roots []T, visit func(node T, depth int) bool) bool {
	return walk(roots, 0, visit)
}

func walk[T Node[T]](nodes []T, depth int, visit func(T, int) bool) bool {
	for _, node := range nodes {
		if !visit(node, depth) {
			return false
		}
		for _, branch := range node.Branches() {
			if branch.Children == nil {
				continue
			}
			if !walk(*branch.Children, depth+1, visit) {
				return false
			}
		}
	}
	return true
}

// Find returns the node with the given id. Ids are unique, so the first match
// is the only one.
func Find[T Node[T]](roots []T, id string) (T, bool) {
	var (
		found T
		ok    bool
	)
	if id == "" {
		return found, false
	}
	Walk(roots, func(node T, _ int) bool {
		if node.NodeID() == id {
			found, ok = node, true
			return false
		}
		return true
	})
	return found, ok
}

// Locate returns the parent, branch and index of the node with the given id.
func Locate[T Node[T]](roots *[]T, id string) (Location[T], bool) {
	if roots == nil || id == "" {
		return Location[T]{}, false
	}
	var zero T
	return locate(Branch[T]{Children: roots}, zero, false, id)
}

func locate[T Node[T]](branch Branch[T], owner T, hasOwner bool, id string) (Location[T], bool) {
	for idx, node := range *branch.Children {
		if node.NodeID() == id {
			return Location[T]{Parent: owner, HasParent: hasOwner, Branch: branch, Index: idx}, true
		}
		for _, child := range node.Branches() {
			if child.Children == nil {
				continue
			}
			if loc, ok := locate(child, node, true, id); ok {
				return loc, true
			}
		}
	}
	return Location[T]{}, false
}

// Path returns the chain of nodes from a root down to (and including) the
// node with the given id.
func Path[T Node[T]](roots []T, id string) ([]T, bool) {
	if id == "" {
		return nil, false
	}
	var (
		stack []T
		found []T
	)
	var search func(nodes []T) bool
	search = func(nodes []T) bool {
		for _, node := range nodes {
			stack = append(stack, node)
			if node.NodeID() == id {
				found = append([]T(nil), stack...)
				return true
			}
			for _, branch := range node.Branches() {
				if branch.Children != nil && search(*branch.Children) {
					return true
				}
			}
			stack = stack[:len(stack)-1]
		}
		return false
	}
	if !search(roots) {
		return nil, false
	}
	return found, true
}

// ResolveTarget maps a placement key to a collection. An empty key is the
// root; a node id addresses the node's first branch; a branch id addresses
// that branch. Leaves and branchless containers do not resolve.
func ResolveTarget[T Node[T]](roots *[]T, parentID string) (Target[T], bool) {
	if roots == nil {
		return Target[T]{}, false
	}
	if parentID == "" {
		return Target[T]{Branch: Branch[T]{Children: roots}}, true
	}
	var (
		out Target[T]
		ok  bool
	)
	Walk(*roots, func(node T, _ int) bool {
		branches := node.Branches()
		if node.NodeID() == parentID {
			if len(branches) > 0 && branches[0].Children != nil {
				out = Target[T]{Owner: node, HasOwner: true, Branch: branches[0]}
				ok = true
			}
			return false
		}
		for _, branch := range branches {
			if branch.ID != "" && branch.ID == parentID && branch.Children != nil {
				out = Target[T]{Owner: node, HasOwner: true, Branch: branch}
				ok = true
				return false
			}
		}
		return true
	})
	return out, ok
}

// Remove splices the node with the given id out of the tree and returns it.
func Remove[T Node[T]](roots *[]T, id string) (T, bool) {
	loc, ok := Locate(roots, id)
	if !ok {
		var zero T
		return zero, false
	}
	children := *loc.Branch.Children
	removed := children[loc.Index]
	*loc.Branch.Children = slices.Delete(children, loc.Index, loc.Index+1)
	return removed, true
}

// Insert places node into the collection addressed by parentID. Indexes
// outside [0, len] append. It reports false when the target does not resolve.
func Insert[T Node[T]](roots *[]T, parentID string, index int, node T) bool {
	target, ok := ResolveTarget(roots, parentID)
	if !ok {
		return false
	}
	InsertAt(target.Branch, index, node)
	return true
}

// InsertAt places node into branch at index (clamped to append) and returns
// the index actually used.
func InsertAt[T any](branch Branch[T], index int, node T) int {
	children := *branch.Children
	if index < 0 || index > len(children) {
		index = len(children)
	}
	*branch.Children = slices.Insert(children, index, node)
	return index
}

// Contains reports whether id names root or one of its descendants.
func Contains[T Node[T]](root T, id string) bool {
	_, ok := Find([]T{root}, id)
	return ok
}

// IDs lists every node id and branch id in document order.
func IDs[T Node[T]](roots []T) []string {
	var out []string
	Walk(roots, func(node T, _ int) bool {
		out = append(out, node.NodeID())
		for _, branch := range node.Branches() {
			if branch.ID != "" {
				out = append(out, branch.ID)
			}
		}
		return true
	})
	return out
}

// DuplicateIDs returns ids appearing more than once, in first-seen order.
func DuplicateIDs[T Node[T]](roots []T) []string {
	seen := make(map[string]int)
	var dupes []string
	for _, id := range IDs(roots) {
		seen[id]++
		if seen[id] == 2 {
			dupes = append(dupes, id)
		}
	}
	return dupes
}

// Count returns the number of nodes in the tree.
func Count[T Node[T]](roots []T) int {
	total := 0
	Walk(roots, func(T, int) bool {
		total++
		return true
	})
	return total
}

// RegenerateIDs assigns fresh ids to node and all of its descendants across
// every branch shape.
func RegenerateIDs[T Node[T]](node T, next func() string) {
	Walk([]T{node}, func(current T, _ int) bool {
		current.SetNodeID(next())
		if relabeler, ok := any(current).(Relabeler); ok {
			relabeler.RelabelBranches(next)
		}
		return true
	})
}
