package tree

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by Store.Create.
var (
	// ErrAllocation indicates the store has no room left for another node.
	ErrAllocation = errors.New("node capacity exhausted")

	// ErrStructureFrozen indicates a mutation after the tree was frozen by activation.
	ErrStructureFrozen = errors.New("tree structure is frozen")

	// ErrEndNode indicates an attempt to add a child to an end node.
	ErrEndNode = errors.New("parent is an end node")

	// ErrDetachedNode indicates the parent's ancestry does not reach the root.
	ErrDetachedNode = errors.New("node is not attached to the root")
)

// NodeError describes a failed tree operation.
type NodeError struct {
	Op    string // Operation that failed (e.g., "create")
	Title string // Title of the node being created
	Err   error  // One of the sentinel errors above
}

func (e *NodeError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("tree: %s %q: %v", e.Op, e.Title, e.Err)
	}
	return fmt.Sprintf("tree: %s: %v", e.Op, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func newNodeError(op, title string, err error) *NodeError {
	return &NodeError{Op: op, Title: title, Err: err}
}
