//go:build linux

package process_linux

import (
	"context"
	"fmt"
	"strings"

	"proctree/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/godbus/dbus/v5"
	"go.uber.org/multierr"
)

const (
	systemdDest      = "org.freedesktop.systemd1"
	systemdPath      = dbus.ObjectPath("/org/freedesktop/systemd1")
	systemdListUnits = "org.freedesktop.systemd1.Manager.ListUnits"
	systemdMainPID   = "org.freedesktop.systemd1.Service.MainPID"
)

// unitStatus mirrors one entry of the systemd ListUnits reply (a(ssssssouso))
type unitStatus struct {
	Name        string
	Description string
	LoadState   string
	ActiveState string
	SubState    string
	Followed    string
	Path        dbus.ObjectPath
	JobID       uint32
	JobType     string
	JobPath     dbus.ObjectPath
}

// systemdBus is the part of the systemd D-Bus API used to list services
type systemdBus interface {
	ListUnits(ctx context.Context) ([]unitStatus, error)
	MainPID(ctx context.Context, unit dbus.ObjectPath) (uint32, error)
	Close() error
}

// SystemdServices implements process.ServiceEnumerator using systemd over
// the system bus. A private connection is opened for each call and closed
// before returning.
type SystemdServices struct {
	dial func() (systemdBus, error)
	log  *logger.Logger
}

// NewSystemdServices creates a new SystemdServices
func NewSystemdServices() *SystemdServices {
	return &SystemdServices{
		dial: dialSystemBus,
		log:  logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "systemd")),
	}
}

// Services returns the active systemd services that have a main process
func (s *SystemdServices) Services(ctx context.Context) (services []process.ServiceInfo, err error) {
	bus, err := s.dial()
	if err != nil {
		return nil, fmt.Errorf("%w: connect system bus: %v", process.ErrSourceUnavailable, err)
	}
	defer func() {
		if closeErr := bus.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close system bus: %w", closeErr))
		}
	}()

	units, err := bus.ListUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list systemd units: %v", process.ErrSourceUnavailable, err)
	}

	for _, unit := range units {
		if !strings.HasSuffix(unit.Name, ".service") || unit.ActiveState != "active" {
			continue
		}

		pid, err := bus.MainPID(ctx, unit.Path)
		if err != nil {
			// unit may have stopped since it was listed
			s.log.Debugln(fmt.Sprintf("skipping %s: %v", unit.Name, err))
			continue
		}
		if pid == 0 {
			continue
		}

		services = append(services, process.ServiceInfo{
			Name:        strings.TrimSuffix(unit.Name, ".service"),
			DisplayName: unit.Description,
			State:       unit.SubState,
			PID:         process.ProcessID(pid),
		})
	}

	return services, nil
}

// dbusSystemd talks to systemd over a private system bus connection
type dbusSystemd struct {
	conn *dbus.Conn
}

func dialSystemBus() (systemdBus, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, err
	}
	return &dbusSystemd{conn: conn}, nil
}

func (d *dbusSystemd) ListUnits(ctx context.Context) ([]unitStatus, error) {
	var units []unitStatus
	err := d.conn.Object(systemdDest, systemdPath).CallWithContext(ctx, systemdListUnits, 0).Store(&units)
	if err != nil {
		return nil, err
	}
	return units, nil
}

func (d *dbusSystemd) MainPID(_ context.Context, unit dbus.ObjectPath) (uint32, error) {
	variant, err := d.conn.Object(systemdDest, unit).GetProperty(systemdMainPID)
	if err != nil {
		return 0, err
	}
	pid, ok := variant.Value().(uint32)
	if !ok {
		return 0, fmt.Errorf("could not assert type of %s:%s", unit, systemdMainPID)
	}
	return pid, nil
}

func (d *dbusSystemd) Close() error {
	return d.conn.Close()
}
