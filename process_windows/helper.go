//go:build windows

package process_windows

import (
	"fmt"
	"strings"

	"proctree/process"
	"proctree/process_psutil"
)

// Service sources
const (
	ServiceSourceSCM = "scm"
	ServiceSourceWMI = "wmi"
)

// Options configures the Windows sources
type Options struct {
	// ServiceSource is ServiceSourceSCM (default) or ServiceSourceWMI
	ServiceSource string
}

// NewSources wires the Windows collaborators: gopsutil for the process list,
// the SCM or WMI for services and WMI for parent ids and attributes.
func NewSources(opts Options) (process.Sources, error) {
	var services process.ServiceEnumerator
	switch strings.ToLower(opts.ServiceSource) {
	case "", ServiceSourceSCM:
		services = NewSCMServices()
	case ServiceSourceWMI:
		services = NewWMIServices()
	default:
		return process.Sources{}, fmt.Errorf("unknown service source %q", opts.ServiceSource)
	}

	return process.Sources{
		Processes: process_psutil.NewEnumerator(),
		Services:  services,
		Detailed:  NewWMIDetailedSource(),
	}, nil
}
