package process

import "context"

// ProcessEnumerator lists the running processes. It is fast but carries no
// parent linkage.
type ProcessEnumerator interface {
	// Processes returns a snapshot of all running processes
	Processes(ctx context.Context) ([]ProcessInfo, error)
}

// ServiceEnumerator lists the running OS services and their process ids.
type ServiceEnumerator interface {
	// Services returns every service that currently owns a process
	Services(ctx context.Context) ([]ServiceInfo, error)
}

// DetailedProcessSource reports parent ids and named attributes for
// processes and services alike, at a higher cost than ProcessEnumerator.
type DetailedProcessSource interface {
	// Query returns one record per live process or service. Attributes
	// lists the attribute names to capture for each record.
	Query(ctx context.Context, attributes []string) ([]DetailedRecord, error)
}

// Sources bundles the three collaborators used to build a process forest.
type Sources struct {
	Processes ProcessEnumerator
	Services  ServiceEnumerator
	Detailed  DetailedProcessSource

	// Close releases whatever the sources keep open between calls. May be nil.
	Close func() error
}
