// Package process provides the data model and collaborator interfaces for
// building process trees.
package process

import "errors"

var (
	// ErrSourceUnavailable is wrapped by collaborators when the underlying OS
	// facility cannot be queried at all.
	ErrSourceUnavailable = errors.New("process source unavailable")

	// ErrNotSupported is returned for features the current OS backend lacks.
	ErrNotSupported = errors.New("not supported on this platform")
)

// Attribute names understood by every DetailedProcessSource backend. Backends
// accept further, OS specific names.
const (
	AttrName             = "Name"
	AttrExecutablePath   = "ExecutablePath"
	AttrCommandLine      = "CommandLine"
	AttrProcessID        = "ProcessId"
	AttrParentProcessID  = "ParentProcessId"
	AttrThreadCount      = "ThreadCount"
	AttrWorkingSetSize   = "WorkingSetSize"
	AttrPriority         = "Priority"
	AttrSessionID        = "SessionId"
	AttrCreationDate     = "CreationDate"
	AttrCurrentDirectory = "CurrentDirectory"
)
