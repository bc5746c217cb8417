package process_tree

import (
	"path/filepath"
	"strconv"

	"proctree/process"
)

// NodeMatcher selects nodes of a forest
type NodeMatcher func(node *process.ProcessNode) bool

// MatchName matches nodes by process name or executable base name, like
// pidof. Matching ignores case and a trailing ".exe". Service nodes also
// match on the service name.
func MatchName(name string) NodeMatcher {
	want := normalizeName(name)
	return func(node *process.ProcessNode) bool {
		if want == "" {
			return false
		}
		if node.Service != nil && normalizeName(node.Service.Name) == want {
			return true
		}
		if !node.HasProcess() {
			return false
		}
		if normalizeName(node.Process.Name) == want {
			return true
		}
		return node.Process.Exe != "" && normalizeName(filepath.Base(node.Process.Exe)) == want
	}
}

// MatchPID matches the node with the given pid
func MatchPID(pid process.ProcessID) NodeMatcher {
	return func(node *process.ProcessNode) bool {
		return node.PID == pid
	}
}

// MatchNameOrPID treats a numeric selector as a pid and anything else as a name
func MatchNameOrPID(selector string) NodeMatcher {
	if pid, err := strconv.Atoi(selector); err == nil {
		return MatchPID(process.ProcessID(pid))
	}
	return MatchName(selector)
}

// AnyMatch matches a node when any of the matchers does
func AnyMatch(matchers ...NodeMatcher) NodeMatcher {
	return func(node *process.ProcessNode) bool {
		for _, match := range matchers {
			if match(node) {
				return true
			}
		}
		return false
	}
}

// Subtrees returns the topmost matching nodes in walk order. A match below
// another match is part of that subtree and is not returned again.
func Subtrees(roots []*process.ProcessNode, match NodeMatcher) []*process.ProcessNode {
	var found []*process.ProcessNode
	Walk(roots, func(node *process.ProcessNode, _ int) bool {
		if match(node) {
			found = append(found, node)
			return false
		}
		return true
	})
	return found
}
