package process_tree

import (
	"proctree/process"
)

type forestConfig struct {
	exclude ParentExclusion
}

// ForestOption configures BuildForest
type ForestOption func(*forestConfig)

// WithParentExclusion replaces the default explorer exclusion. A nil
// predicate lets every node receive children.
func WithParentExclusion(exclude ParentExclusion) ForestOption {
	return func(c *forestConfig) {
		c.exclude = exclude
	}
}

type parentKey struct {
	pid       process.ProcessID
	isService bool
}

// BuildForest links the flat node list into parent/child trees and returns
// the roots. The nodes are restructured in place.
//
// A node is attached to the first node, in list order, that has its parent
// id, the same service classification and is not excluded by the parent
// exclusion. Nodes without such a parent remain roots, in list order.
// Children keep the order in which they were discovered. Self-parented
// records and links that would close a cycle (after pid reuse) are left as
// roots.
//
// Picking the first candidate is a tie-break policy only; the detailed
// sources report every id once.
func BuildForest(nodes []*process.ProcessNode, opts ...ForestOption) []*process.ProcessNode {
	cfg := forestConfig{exclude: DefaultParentExclusion()}
	for _, opt := range opts {
		opt(&cfg)
	}

	// candidates per (pid, classification), in list order
	index := make(map[parentKey][]int, len(nodes))
	for i, n := range nodes {
		if n == nil {
			continue
		}
		n.Children = nil
		key := parentKey{pid: n.PID, isService: n.IsService}
		index[key] = append(index[key], i)
	}

	parent := make([]int, len(nodes))
	for i := range parent {
		parent[i] = -1
	}

	for i, n := range nodes {
		if n == nil {
			continue
		}

		for _, j := range index[parentKey{pid: n.PPID, isService: n.IsService}] {
			if j == i {
				continue
			}
			if cfg.exclude != nil && cfg.exclude(nodes[j]) {
				continue
			}
			if isAncestor(parent, i, j) {
				continue
			}

			parent[i] = j
			nodes[j].Children = append(nodes[j].Children, n)
			break
		}
	}

	roots := make([]*process.ProcessNode, 0, len(nodes))
	for i, n := range nodes {
		if n != nil && parent[i] == -1 {
			roots = append(roots, n)
		}
	}
	return roots
}

// isAncestor reports whether ancestor is node itself or one of its ancestors
func isAncestor(parent []int, ancestor, node int) bool {
	for k := node; k != -1; k = parent[k] {
		if k == ancestor {
			return true
		}
	}
	return false
}
