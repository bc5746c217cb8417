package process_tree

import (
	"context"
	"fmt"

	"proctree/process"

	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/aarondl/opt/null"
)

// Reconciler merges the fast process enumeration, the service enumeration
// and the detailed source into a flat list of classified nodes.
type Reconciler struct {
	sources process.Sources
	log     *logger.Logger
}

// NewReconciler creates a Reconciler over the given sources
func NewReconciler(sources process.Sources, log *logger.Logger) *Reconciler {
	if log == nil {
		log = newLogger("reconcile")
	}
	return &Reconciler{sources: sources, log: log}
}

// Reconcile returns one node per detailed record, in detailed source order.
//
// A record whose id matches a not yet consumed service is a service node;
// the service is consumed so the same id is never counted twice. Service
// nodes are dropped when excludeServices is set. Every other record becomes a
// process node, with a nil Process when the process exited between the
// enumerations.
func (r *Reconciler) Reconcile(ctx context.Context, attributes []string, excludeServices bool) ([]*process.ProcessNode, error) {
	if err := checkSources(r.sources); err != nil {
		return nil, err
	}

	processes, err := r.sources.Processes.Processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	services, err := r.sources.Services.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate services: %w", err)
	}

	records, err := r.sources.Detailed.Query(ctx, attributes)
	if err != nil {
		return nil, fmt.Errorf("query detailed source: %w", err)
	}

	byPID := indexProcesses(processes)
	pool := newServicePool(services)

	nodes := make([]*process.ProcessNode, 0, len(records))
	var dropped, stale int

	for _, rec := range records {
		values := captureAttributes(rec, attributes)

		if svc, ok := pool.take(rec.PID); ok {
			if excludeServices {
				dropped++
				continue
			}

			nodes = append(nodes, &process.ProcessNode{
				PID:        rec.PID,
				PPID:       rec.PPID,
				Process:    byPID[rec.PID],
				Service:    &svc,
				IsService:  true,
				Attributes: values,
			})
			continue
		}

		proc := byPID[rec.PID]
		if proc == nil {
			stale++
		}

		nodes = append(nodes, &process.ProcessNode{
			PID:        rec.PID,
			PPID:       rec.PPID,
			Process:    proc,
			Attributes: values,
		})
	}

	r.log.Debugln(fmt.Sprintf("reconciled %d records: %d nodes, %d services dropped, %d without process",
		len(records), len(nodes), dropped, stale))

	return nodes, nil
}

// captureAttributes reads the requested attributes in order. Missing values
// stay null.
func captureAttributes(rec process.DetailedRecord, attributes []string) []null.Val[string] {
	if len(attributes) == 0 {
		return nil
	}

	values := make([]null.Val[string], len(attributes))
	for i, name := range attributes {
		values[i] = rec.Attribute(name)
	}
	return values
}

// indexProcesses maps each pid to the first process reported with it
func indexProcesses(processes []process.ProcessInfo) map[process.ProcessID]*process.ProcessInfo {
	byPID := make(map[process.ProcessID]*process.ProcessInfo, len(processes))
	for i := range processes {
		if _, exists := byPID[processes[i].PID]; exists {
			continue
		}
		byPID[processes[i].PID] = &processes[i]
	}
	return byPID
}

// servicePool holds the services not yet matched to a detailed record.
// Several services may share one process.
type servicePool struct {
	byPID map[process.ProcessID][]process.ServiceInfo
}

func newServicePool(services []process.ServiceInfo) *servicePool {
	pool := &servicePool{byPID: make(map[process.ProcessID][]process.ServiceInfo, len(services))}
	for _, svc := range services {
		pool.byPID[svc.PID] = append(pool.byPID[svc.PID], svc)
	}
	return pool
}

// take removes and returns the first remaining service running as pid
func (p *servicePool) take(pid process.ProcessID) (process.ServiceInfo, bool) {
	queue := p.byPID[pid]
	if len(queue) == 0 {
		return process.ServiceInfo{}, false
	}

	svc := queue[0]
	if len(queue) == 1 {
		delete(p.byPID, pid)
	} else {
		p.byPID[pid] = queue[1:]
	}
	return svc, true
}

func checkSources(sources process.Sources) error {
	switch {
	case sources.Processes == nil:
		return fmt.Errorf("%w: no process enumerator", process.ErrSourceUnavailable)
	case sources.Services == nil:
		return fmt.Errorf("%w: no service enumerator", process.ErrSourceUnavailable)
	case sources.Detailed == nil:
		return fmt.Errorf("%w: no detailed process source", process.ErrSourceUnavailable)
	}
	return nil
}
