// Package tree holds the menu tree: an arena of nodes addressed by NodeID,
// each with an ordered list of children and a back-reference to its parent.
//
// A Store is built once during setup and frozen when the engine activates.
// After that only the per-node selected flags change.
package tree

// NodeID identifies a node within its Store.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

// ActivationFunc is invoked when a leaf is selected. It receives the parent
// the leaf belongs to and the leaf's index among the parent's children.
type ActivationFunc func(parent NodeID, index int)

// NodeSpec describes a node to create.
type NodeSpec struct {
	Title      string
	Info       string
	Mode       Mode
	Selected   bool
	OnActivate ActivationFunc
}

type node struct {
	title    string
	info     string
	mode     Mode
	selected bool
	end      bool
	parent   NodeID
	children []NodeID
	activate ActivationFunc
}

// Store owns every node of one menu tree.
type Store struct {
	nodes    []node
	capacity int
	frozen   bool
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity bounds the number of nodes (root included) the store accepts.
// Zero means unbounded.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// NewStore creates a store holding only the root node.
func NewStore(title string, mode Mode, opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	s.nodes = append(s.nodes, node{
		title:  title,
		mode:   mode,
		parent: NoNode,
	})
	return s
}

// Root returns the root node.
func (s *Store) Root() NodeID {
	return 0
}

// Len returns the number of nodes, root included.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Create appends a new child to parent and returns its ID.
//
// Children of a node whose mode is not ModeNone are end nodes: they can be
// selected but never hold children of their own.
func (s *Store) Create(parent NodeID, spec NodeSpec) (NodeID, error) {
	if s.frozen {
		return NoNode, newNodeError("create", spec.Title, ErrStructureFrozen)
	}
	if !s.attached(parent) {
		return NoNode, newNodeError("create", spec.Title, ErrDetachedNode)
	}
	p := &s.nodes[parent]
	if p.end {
		return NoNode, newNodeError("create", spec.Title, ErrEndNode)
	}
	if s.capacity > 0 && len(s.nodes) >= s.capacity {
		return NoNode, newNodeError("create", spec.Title, ErrAllocation)
	}

	id := NodeID(len(s.nodes))
	p.children = append(p.children, id)
	s.nodes = append(s.nodes, node{
		title:    spec.Title,
		info:     spec.Info,
		mode:     spec.Mode,
		selected: spec.Selected,
		end:      p.mode != ModeNone,
		parent:   parent,
		activate: spec.OnActivate,
	})
	return id, nil
}

// attached reports whether id exists and its ancestor chain ends at the root.
// The walk is bounded by the node count so a corrupted chain cannot loop.
func (s *Store) attached(id NodeID) bool {
	cur := id
	for steps := 0; steps <= len(s.nodes); steps++ {
		if !s.valid(cur) {
			return false
		}
		if cur == s.Root() {
			return true
		}
		cur = s.nodes[cur].parent
	}
	return false
}

func (s *Store) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(s.nodes)
}

// Freeze forbids further structural changes.
func (s *Store) Freeze() {
	s.frozen = true
}

// Frozen reports whether the structure is frozen.
func (s *Store) Frozen() bool {
	return s.frozen
}

// Title returns the node's title, or "" for an unknown ID.
func (s *Store) Title(id NodeID) string {
	if !s.valid(id) {
		return ""
	}
	return s.nodes[id].title
}

// Info returns the node's info text.
func (s *Store) Info(id NodeID) string {
	if !s.valid(id) {
		return ""
	}
	return s.nodes[id].info
}

// Mode returns the selection mode the node applies to its children.
func (s *Store) Mode(id NodeID) Mode {
	if !s.valid(id) {
		return ModeNone
	}
	return s.nodes[id].mode
}

// Selected returns the node's selected flag.
func (s *Store) Selected(id NodeID) bool {
	if !s.valid(id) {
		return false
	}
	return s.nodes[id].selected
}

// IsEnd reports whether the node may not receive children.
func (s *Store) IsEnd(id NodeID) bool {
	if !s.valid(id) {
		return false
	}
	return s.nodes[id].end
}

// Parent returns the node's parent, or NoNode for the root.
func (s *Store) Parent(id NodeID) NodeID {
	if !s.valid(id) {
		return NoNode
	}
	return s.nodes[id].parent
}

// Activation returns the node's activation callback, which may be nil.
func (s *Store) Activation(id NodeID) ActivationFunc {
	if !s.valid(id) {
		return nil
	}
	return s.nodes[id].activate
}

// ChildCount returns the number of children of id.
func (s *Store) ChildCount(id NodeID) int {
	if !s.valid(id) {
		return 0
	}
	return len(s.nodes[id].children)
}

// Child returns the index-th child of id, or NoNode if out of range.
func (s *Store) Child(id NodeID, index int) NodeID {
	if !s.valid(id) {
		return NoNode
	}
	children := s.nodes[id].children
	if index < 0 || index >= len(children) {
		return NoNode
	}
	return children[index]
}

// Children returns a copy of the children of id in display order.
func (s *Store) Children(id NodeID) []NodeID {
	if !s.valid(id) {
		return nil
	}
	out := make([]NodeID, len(s.nodes[id].children))
	copy(out, s.nodes[id].children)
	return out
}

// Titles returns the titles of the children of id in display order.
func (s *Store) Titles(id NodeID) []string {
	if !s.valid(id) {
		return nil
	}
	children := s.nodes[id].children
	titles := make([]string, len(children))
	for i, c := range children {
		titles[i] = s.nodes[c].title
	}
	return titles
}

// Depth returns the number of edges between id and the root.
func (s *Store) Depth(id NodeID) int {
	depth := 0
	for cur := s.Parent(id); cur != NoNode; cur = s.Parent(cur) {
		depth++
	}
	return depth
}

// Walk visits every node depth-first in display order, starting at the root.
// Returning false from fn skips the node's subtree.
func (s *Store) Walk(fn func(id NodeID, depth int) bool) {
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		if !fn(id, depth) {
			return
		}
		for _, c := range s.nodes[id].children {
			visit(c, depth+1)
		}
	}
	visit(s.Root(), 0)
}
