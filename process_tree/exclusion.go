package process_tree

import (
	"strings"

	"proctree/process"
)

// DefaultExcludedParentName is the shell process whose children are kept at
// the root of the forest instead of being nested under it.
const DefaultExcludedParentName = "explorer"

// ParentExclusion reports whether parent must never receive children.
type ParentExclusion func(parent *process.ProcessNode) bool

// DefaultParentExclusion excludes parents named DefaultExcludedParentName
func DefaultParentExclusion() ParentExclusion {
	return ExcludeParentNames(DefaultExcludedParentName)
}

// ExcludeParentNames excludes parents by process name. Matching ignores case
// and a trailing ".exe". A parent without a process never matches.
func ExcludeParentNames(names ...string) ParentExclusion {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name = normalizeName(name); name != "" {
			set[name] = struct{}{}
		}
	}

	return func(parent *process.ProcessNode) bool {
		if len(set) == 0 || !parent.HasProcess() {
			return false
		}
		_, excluded := set[normalizeName(parent.Process.Name)]
		return excluded
	}
}

// ExcludeParentIDs excludes parents by pid
func ExcludeParentIDs(ids ...process.ProcessID) ParentExclusion {
	set := make(map[process.ProcessID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return func(parent *process.ProcessNode) bool {
		_, excluded := set[parent.PID]
		return excluded
	}
}

// AnyParentExclusion excludes a parent when any of the given predicates does
func AnyParentExclusion(predicates ...ParentExclusion) ParentExclusion {
	return func(parent *process.ProcessNode) bool {
		for _, excluded := range predicates {
			if excluded != nil && excluded(parent) {
				return true
			}
		}
		return false
	}
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".exe")
}
