package process

import (
	"fmt"
	"strings"

	"github.com/aarondl/opt/null"
)

// ProcessID represents a unique identifier for a process
type ProcessID int

// ProcessInfo contains basic information about a process as reported by the
// fast process enumeration. Everything but PID is best effort.
type ProcessInfo struct {
	PID        ProcessID `json:"pid" yaml:"pid"`                                 // Process ID
	Name       string    `json:"name" yaml:"name"`                               // Process name
	Exe        string    `json:"exe,omitempty" yaml:"exe,omitempty"`             // Path to the executable
	Cmdline    []string  `json:"cmdline,omitempty" yaml:"cmdline,omitempty"`     // Command line arguments
	CreateTime int64     `json:"createTime,omitempty" yaml:"createTime,omitempty"` // Creation time, ms since epoch
	User       string    `json:"user,omitempty" yaml:"user,omitempty"`           // User running the process
	Threads    int       `json:"threads,omitempty" yaml:"threads,omitempty"`     // Number of threads
	Memory     uint64    `json:"memory,omitempty" yaml:"memory,omitempty"`       // Resident Set Size in bytes
}

// ServiceInfo describes a running OS service.
type ServiceInfo struct {
	Name        string    `json:"name" yaml:"name"`
	DisplayName string    `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	State       string    `json:"state,omitempty" yaml:"state,omitempty"`
	PID         ProcessID `json:"pid" yaml:"pid"`
}

// DetailedRecord is one entry of the detailed process query. It carries the
// parent linkage and the attributes requested by the caller.
type DetailedRecord struct {
	PID        ProcessID
	PPID       ProcessID
	Attributes map[string]null.Val[string]
}

// Attribute returns the value of the named attribute, null when the source
// did not expose it.
func (r DetailedRecord) Attribute(name string) null.Val[string] {
	if r.Attributes == nil {
		return null.Val[string]{}
	}
	return r.Attributes[name]
}

// ProcessNode represents a node in a process forest
type ProcessNode struct {
	PID  ProcessID `json:"pid" yaml:"pid"`
	PPID ProcessID `json:"ppid" yaml:"ppid"`

	// Process is nil when the process exited between the enumerations.
	Process *ProcessInfo `json:"process" yaml:"process"`

	// Service is set for nodes classified as services.
	Service   *ServiceInfo `json:"service,omitempty" yaml:"service,omitempty"`
	IsService bool         `json:"isService" yaml:"isService"`

	// Attributes is aligned with the requested attribute names, nil when
	// nothing was requested.
	Attributes []null.Val[string] `json:"-" yaml:"-"`

	Children []*ProcessNode `json:"children" yaml:"children,omitempty"`
}

// HasProcess reports whether the node was matched to a running process.
func (n *ProcessNode) HasProcess() bool {
	return n != nil && n.Process != nil
}

// Name returns the process name, empty when the process is unknown.
func (n *ProcessNode) Name() string {
	if !n.HasProcess() {
		return ""
	}
	return n.Process.Name
}

// String renders the node and its descendants on one line:
// "name #pid (children) child child ..."
func (n *ProcessNode) String() string {
	if n == nil {
		return "<nil>"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s #%d (%d)", n.Name(), n.PID, len(n.Children))
	for _, child := range n.Children {
		sb.WriteString(" ")
		sb.WriteString(child.String())
	}
	return sb.String()
}
