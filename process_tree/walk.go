package process_tree

import (
	"errors"
	"fmt"

	"proctree/process"
)

var (
	// ErrDuplicateNode is returned by Validate when a node is reachable twice
	ErrDuplicateNode = errors.New("node reachable more than once")

	// ErrMixedClassification is returned by Validate when a service and a
	// process are linked
	ErrMixedClassification = errors.New("service and process linked")

	// ErrParentMismatch is returned by Validate when a child's parent id does
	// not match its parent
	ErrParentMismatch = errors.New("child parent id mismatch")

	// ErrDuplicatePID is returned by Validate when an id appears twice
	ErrDuplicatePID = errors.New("process id appears more than once")
)

// Walk visits the forest depth first, parents before children. Returning
// false from fn skips the node's children.
func Walk(roots []*process.ProcessNode, fn func(node *process.ProcessNode, depth int) bool) {
	for _, root := range roots {
		walk(root, 0, fn)
	}
}

func walk(node *process.ProcessNode, depth int, fn func(*process.ProcessNode, int) bool) {
	if node == nil {
		return
	}
	if !fn(node, depth) {
		return
	}
	for _, child := range node.Children {
		walk(child, depth+1, fn)
	}
}

// Find returns the first node with the given pid, nil if there is none
func Find(roots []*process.ProcessNode, pid process.ProcessID) *process.ProcessNode {
	var found *process.ProcessNode
	Walk(roots, func(node *process.ProcessNode, _ int) bool {
		if found != nil {
			return false
		}
		if node.PID == pid {
			found = node
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the forest
func Count(roots []*process.ProcessNode) int {
	count := 0
	Walk(roots, func(*process.ProcessNode, int) bool {
		count++
		return true
	})
	return count
}

// Flatten returns all nodes of the forest in walk order
func Flatten(roots []*process.ProcessNode) []*process.ProcessNode {
	var nodes []*process.ProcessNode
	Walk(roots, func(node *process.ProcessNode, _ int) bool {
		nodes = append(nodes, node)
		return true
	})
	return nodes
}

// Validate checks that every node is reachable once, that links never cross
// the service/process boundary and that every child names its parent.
func Validate(roots []*process.ProcessNode) error {
	seen := make(map[*process.ProcessNode]struct{})
	pids := make(map[process.ProcessID]struct{})

	var visit func(node *process.ProcessNode, parent *process.ProcessNode) error
	visit = func(node *process.ProcessNode, parent *process.ProcessNode) error {
		if _, dup := seen[node]; dup {
			return fmt.Errorf("%w: pid %d", ErrDuplicateNode, node.PID)
		}
		seen[node] = struct{}{}

		if _, dup := pids[node.PID]; dup {
			return fmt.Errorf("%w: pid %d", ErrDuplicatePID, node.PID)
		}
		pids[node.PID] = struct{}{}

		if parent != nil {
			if parent.IsService != node.IsService {
				return fmt.Errorf("%w: pid %d under pid %d", ErrMixedClassification, node.PID, parent.PID)
			}
			if node.PPID != parent.PID {
				return fmt.Errorf("%w: pid %d has ppid %d but sits under pid %d", ErrParentMismatch, node.PID, node.PPID, parent.PID)
			}
		}

		for _, child := range node.Children {
			if child == nil {
				continue
			}
			if err := visit(child, node); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if root == nil {
			continue
		}
		if err := visit(root, nil); err != nil {
			return err
		}
	}
	return nil
}
