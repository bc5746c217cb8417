package process_tree

import (
	"context"

	"proctree/process"

	"github.com/aarondl/opt/null"
)

type fakeProcesses struct {
	list  []process.ProcessInfo
	err   error
	calls int
}

func (f *fakeProcesses) Processes(context.Context) ([]process.ProcessInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]process.ProcessInfo, len(f.list))
	copy(out, f.list)
	return out, nil
}

type fakeServices struct {
	list  []process.ServiceInfo
	err   error
	calls int
}

func (f *fakeServices) Services(context.Context) ([]process.ServiceInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]process.ServiceInfo, len(f.list))
	copy(out, f.list)
	return out, nil
}

type fakeDetailed struct {
	records   []process.DetailedRecord
	err       error
	calls     int
	requested []string
}

func (f *fakeDetailed) Query(_ context.Context, attributes []string) ([]process.DetailedRecord, error) {
	f.calls++
	f.requested = attributes
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type snapshot struct {
	processes *fakeProcesses
	services  *fakeServices
	detailed  *fakeDetailed
}

func newSnapshot() *snapshot {
	return &snapshot{
		processes: &fakeProcesses{},
		services:  &fakeServices{},
		detailed:  &fakeDetailed{},
	}
}

func (s *snapshot) proc(pid process.ProcessID, name string) *snapshot {
	s.processes.list = append(s.processes.list, process.ProcessInfo{PID: pid, Name: name})
	return s
}

func (s *snapshot) service(pid process.ProcessID, name string) *snapshot {
	s.services.list = append(s.services.list, process.ServiceInfo{PID: pid, Name: name, State: "running"})
	return s
}

func (s *snapshot) record(pid, ppid process.ProcessID, attrs ...string) *snapshot {
	rec := process.DetailedRecord{PID: pid, PPID: ppid}
	if len(attrs) > 0 {
		rec.Attributes = make(map[string]null.Val[string], len(attrs)/2)
		for i := 0; i+1 < len(attrs); i += 2 {
			rec.Attributes[attrs[i]] = null.From(attrs[i+1])
		}
	}
	s.detailed.records = append(s.detailed.records, rec)
	return s
}

func (s *snapshot) sources() process.Sources {
	return process.Sources{
		Processes: s.processes,
		Services:  s.services,
		Detailed:  s.detailed,
	}
}

func pidsOf(nodes []*process.ProcessNode) []process.ProcessID {
	pids := make([]process.ProcessID, 0, len(nodes))
	for _, n := range nodes {
		pids = append(pids, n.PID)
	}
	return pids
}

func node(pid, ppid process.ProcessID, name string) *process.ProcessNode {
	n := &process.ProcessNode{PID: pid, PPID: ppid}
	if name != "" {
		n.Process = &process.ProcessInfo{PID: pid, Name: name}
	}
	return n
}

func serviceNode(pid, ppid process.ProcessID, name string) *process.ProcessNode {
	n := node(pid, ppid, name)
	n.IsService = true
	n.Service = &process.ServiceInfo{PID: pid, Name: name}
	return n
}
