//go:build linux

package process_linux

import (
	"fmt"
	"strings"

	"proctree/process"
	"proctree/process_psutil"
)

// Process sources
const (
	ProcessSourcePsutil = "psutil"
	ProcessSourceProcfs = "procfs"
)

// Options configures the Linux sources
type Options struct {
	// ProcfsPath is where procfs is mounted, DefaultProcfsPath when empty
	ProcfsPath string

	// ProcessSource is ProcessSourcePsutil (default) or ProcessSourceProcfs
	ProcessSource string
}

// NewSources wires the Linux collaborators: gopsutil or procfs for the
// process list, systemd for services and procfs for parent ids and
// attributes.
func NewSources(opts Options) (process.Sources, error) {
	var processes process.ProcessEnumerator
	switch strings.ToLower(opts.ProcessSource) {
	case "", ProcessSourcePsutil:
		processes = process_psutil.NewEnumerator()
	case ProcessSourceProcfs:
		processes = NewProcfsEnumerator(opts.ProcfsPath)
	default:
		return process.Sources{}, fmt.Errorf("unknown process source %q", opts.ProcessSource)
	}

	return process.Sources{
		Processes: processes,
		Services:  NewSystemdServices(),
		Detailed:  NewDetailedSource(opts.ProcfsPath),
	}, nil
}
