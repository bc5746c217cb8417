package process_tree

import (
	"context"
	"fmt"

	"proctree/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

func newLogger(component string) *logger.Logger {
	return logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "process-tree-"+component))
}

// Fetcher exposes the process forest and the flat process and service
// lists. It keeps no state between calls; every call takes a new snapshot.
type Fetcher struct {
	sources process.Sources
	forest  []ForestOption
	log     *logger.Logger
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithForestOptions sets the options used when assembling the forest
func WithForestOptions(opts ...ForestOption) FetcherOption {
	return func(f *Fetcher) {
		f.forest = append(f.forest, opts...)
	}
}

// WithLogger replaces the default logger
func WithLogger(log *logger.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.log = log
	}
}

// NewFetcher creates a Fetcher over the given sources
func NewFetcher(sources process.Sources, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{sources: sources}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = newLogger("fetcher")
	}
	return f
}

// GetProcessesTreeStructure returns the process forest. Services are left
// out when excludeServices is set, otherwise they form their own trees.
// Each node carries the requested attributes in request order.
func (f *Fetcher) GetProcessesTreeStructure(ctx context.Context, attributes []string, excludeServices bool) ([]*process.ProcessNode, error) {
	nodes, err := NewReconciler(f.sources, f.log).Reconcile(ctx, attributes, excludeServices)
	if err != nil {
		return nil, err
	}

	roots := BuildForest(nodes, f.forest...)
	f.log.Debugln(fmt.Sprintf("built forest: %d nodes, %d roots", len(nodes), len(roots)))

	return roots, nil
}

// GetProcesses returns the running processes without any service process.
func (f *Fetcher) GetProcesses(ctx context.Context) ([]process.ProcessInfo, error) {
	if err := checkSources(f.sources); err != nil {
		return nil, err
	}

	services, err := f.sources.Services.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate services: %w", err)
	}

	processes, err := f.sources.Processes.Processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	servicePIDs := make(map[process.ProcessID]struct{}, len(services))
	for _, svc := range services {
		servicePIDs[svc.PID] = struct{}{}
	}

	result := make([]process.ProcessInfo, 0, len(processes))
	for _, proc := range processes {
		if _, isService := servicePIDs[proc.PID]; isService {
			continue
		}
		result = append(result, proc)
	}

	return result, nil
}

// ServiceEntry pairs a service with its process, nil when the process could
// not be found.
type ServiceEntry struct {
	Service process.ServiceInfo  `json:"service" yaml:"service"`
	Process *process.ProcessInfo `json:"process" yaml:"process"`
}

// GetServices returns the process of every service, in service enumeration
// order. The entry is nil when the service's process could not be found.
func (f *Fetcher) GetServices(ctx context.Context) ([]*process.ProcessInfo, error) {
	entries, err := f.GetServiceEntries(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*process.ProcessInfo, len(entries))
	for i, entry := range entries {
		result[i] = entry.Process
	}
	return result, nil
}

// GetServiceEntries returns every service with its process, from a single
// snapshot of both enumerations.
func (f *Fetcher) GetServiceEntries(ctx context.Context) ([]ServiceEntry, error) {
	if err := checkSources(f.sources); err != nil {
		return nil, err
	}

	services, err := f.sources.Services.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate services: %w", err)
	}

	processes, err := f.sources.Processes.Processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	byPID := indexProcesses(processes)
	entries := make([]ServiceEntry, len(services))
	for i, svc := range services {
		entries[i] = ServiceEntry{Service: svc, Process: byPID[svc.PID]}
	}

	return entries, nil
}

// GetServiceInfos returns the services as reported by the service enumerator
func (f *Fetcher) GetServiceInfos(ctx context.Context) ([]process.ServiceInfo, error) {
	if f.sources.Services == nil {
		return nil, fmt.Errorf("%w: no service enumerator", process.ErrSourceUnavailable)
	}

	services, err := f.sources.Services.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate services: %w", err)
	}
	return services, nil
}

// Close releases the sources
func (f *Fetcher) Close() error {
	if f.sources.Close == nil {
		return nil
	}
	return f.sources.Close()
}
