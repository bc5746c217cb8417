//go:build windows

package process_windows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"proctree/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/yusufpapurcu/wmi"
	"golang.org/x/sys/windows"
)

const (
	serviceRunning  = "Running"
	wmiServiceQuery = "SELECT Name, DisplayName, ProcessId, State, StartMode FROM Win32_Service WHERE ProcessId <> 0"
)

// serviceRow is one service as reported by either the SCM or WMI
type serviceRow struct {
	Name        string
	DisplayName string
	State       string
	PID         uint32
}

// runningServices keeps the running services that own a process
func runningServices(rows []serviceRow) []process.ServiceInfo {
	var services []process.ServiceInfo
	for _, row := range rows {
		if row.PID == 0 || !strings.EqualFold(row.State, serviceRunning) {
			continue
		}
		services = append(services, process.ServiceInfo{
			Name:        row.Name,
			DisplayName: row.DisplayName,
			State:       serviceRunning,
			PID:         process.ProcessID(row.PID),
		})
	}
	return services
}

// serviceStateName maps an SCM state to the name WMI uses for it
func serviceStateName(state uint32) string {
	switch state {
	case windows.SERVICE_STOPPED:
		return "Stopped"
	case windows.SERVICE_START_PENDING:
		return "Start Pending"
	case windows.SERVICE_STOP_PENDING:
		return "Stop Pending"
	case windows.SERVICE_RUNNING:
		return serviceRunning
	case windows.SERVICE_CONTINUE_PENDING:
		return "Continue Pending"
	case windows.SERVICE_PAUSE_PENDING:
		return "Pause Pending"
	case windows.SERVICE_PAUSED:
		return "Paused"
	}
	return "Unknown"
}

// SCMServices implements process.ServiceEnumerator with the Service Control
// Manager.
type SCMServices struct {
	log *logger.Logger
}

// NewSCMServices creates a new SCMServices
func NewSCMServices() *SCMServices {
	return &SCMServices{
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "scm")),
	}
}

// Services returns the running Win32 services that own a process
func (s *SCMServices) Services(ctx context.Context) ([]process.ServiceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manager, err := windows.OpenSCManager(nil, nil, windows.SC_MANAGER_ENUMERATE_SERVICE)
	if err != nil {
		return nil, fmt.Errorf("%w: open service manager: %v", process.ErrSourceUnavailable, err)
	}
	defer windows.CloseServiceHandle(manager)

	rows, err := enumServices(manager)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate services: %v", process.ErrSourceUnavailable, err)
	}

	services := runningServices(rows)
	s.log.Debugln(fmt.Sprintf("%d of %d active services own a process", len(services), len(rows)))
	return services, nil
}

func enumServices(manager windows.Handle) ([]serviceRow, error) {
	var (
		buf              []byte
		bytesNeeded      uint32
		servicesReturned uint32
	)

	for {
		var p *byte
		if len(buf) > 0 {
			p = &buf[0]
		}
		err := windows.EnumServicesStatusEx(manager, windows.SC_ENUM_PROCESS_INFO, windows.SERVICE_WIN32,
			windows.SERVICE_ACTIVE, p, uint32(len(buf)), &bytesNeeded, &servicesReturned, nil, nil)
		if err == nil {
			break
		}
		if !errors.Is(err, windows.ERROR_MORE_DATA) || bytesNeeded <= uint32(len(buf)) {
			return nil, err
		}
		buf = make([]byte, bytesNeeded)
	}

	if servicesReturned == 0 {
		return nil, nil
	}

	entries := unsafe.Slice((*windows.ENUM_SERVICE_STATUS_PROCESS)(unsafe.Pointer(&buf[0])), int(servicesReturned))
	rows := make([]serviceRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, serviceRow{
			Name:        windows.UTF16PtrToString(entry.ServiceName),
			DisplayName: windows.UTF16PtrToString(entry.DisplayName),
			State:       serviceStateName(entry.ServiceStatusProcess.CurrentState),
			PID:         entry.ServiceStatusProcess.ProcessId,
		})
	}
	return rows, nil
}

// win32Service is the subset of Win32_Service that is read
type win32Service struct {
	Name        string
	DisplayName string
	ProcessId   uint32
	State       string
	StartMode   string
}

// WMIServices implements process.ServiceEnumerator with a Win32_Service query
type WMIServices struct {
	log   *logger.Logger
	query func(query string, dst interface{}, connectServerArgs ...interface{}) error
}

// NewWMIServices creates a new WMIServices
func NewWMIServices() *WMIServices {
	return &WMIServices{
		log:   logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "wmi-service")),
		query: wmi.Query,
	}
}

// Services returns the running services that own a process
func (s *WMIServices) Services(ctx context.Context) ([]process.ServiceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var dst []win32Service
	if err := s.query(wmiServiceQuery, &dst); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", process.ErrSourceUnavailable, wmiServiceQuery, err)
	}

	rows := make([]serviceRow, 0, len(dst))
	for _, svc := range dst {
		rows = append(rows, serviceRow{
			Name:        svc.Name,
			DisplayName: svc.DisplayName,
			State:       svc.State,
			PID:         svc.ProcessId,
		})
	}

	services := runningServices(rows)
	s.log.Debugln(fmt.Sprintf("%d of %d services own a process", len(services), len(rows)))
	return services, nil
}
