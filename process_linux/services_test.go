//go:build linux

package process_linux

import (
	"context"
	"errors"
	"testing"

	"proctree/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	units    []unitStatus
	listErr  error
	pids     map[dbus.ObjectPath]uint32
	pidErrs  map[dbus.ObjectPath]error
	closeErr error
	closed   int
}

func (b *fakeBus) ListUnits(context.Context) ([]unitStatus, error) {
	return b.units, b.listErr
}

func (b *fakeBus) MainPID(_ context.Context, unit dbus.ObjectPath) (uint32, error) {
	if err := b.pidErrs[unit]; err != nil {
		return 0, err
	}
	return b.pids[unit], nil
}

func (b *fakeBus) Close() error {
	b.closed++
	return b.closeErr
}

func unit(name, active, sub string) unitStatus {
	return unitStatus{
		Name:        name,
		Description: "unit " + name,
		LoadState:   "loaded",
		ActiveState: active,
		SubState:    sub,
		Path:        dbus.ObjectPath("/org/freedesktop/systemd1/unit/" + name),
	}
}

func servicesWith(bus *fakeBus, dialErr error) *SystemdServices {
	return &SystemdServices{
		dial: func() (systemdBus, error) {
			if dialErr != nil {
				return nil, dialErr
			}
			return bus, nil
		},
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "systemd-test")),
	}
}

func TestSystemdServices_FiltersUnits(t *testing.T) {
	sshd := unit("sshd.service", "active", "running")
	cron := unit("cron.service", "active", "running")
	oneshot := unit("setup.service", "active", "exited")
	stopped := unit("nginx.service", "inactive", "dead")
	socket := unit("dbus.socket", "active", "listening")
	vanished := unit("gone.service", "active", "running")

	bus := &fakeBus{
		units: []unitStatus{sshd, cron, oneshot, stopped, socket, vanished},
		pids: map[dbus.ObjectPath]uint32{
			sshd.Path:    812,
			cron.Path:    640,
			oneshot.Path: 0,
			socket.Path:  1,
		},
		pidErrs: map[dbus.ObjectPath]error{
			vanished.Path: errors.New("unknown object"),
		},
	}

	services, err := servicesWith(bus, nil).Services(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []process.ServiceInfo{
		{Name: "sshd", DisplayName: "unit sshd.service", State: "running", PID: 812},
		{Name: "cron", DisplayName: "unit cron.service", State: "running", PID: 640},
	}, services)
	assert.Equal(t, 1, bus.closed)
}

func TestSystemdServices_DialFailure(t *testing.T) {
	_, err := servicesWith(nil, errors.New("no such file or directory")).Services(context.Background())
	assert.ErrorIs(t, err, process.ErrSourceUnavailable)
}

func TestSystemdServices_ListFailureClosesBus(t *testing.T) {
	bus := &fakeBus{listErr: errors.New("access denied")}

	_, err := servicesWith(bus, nil).Services(context.Background())
	assert.ErrorIs(t, err, process.ErrSourceUnavailable)
	assert.Equal(t, 1, bus.closed)
}

func TestSystemdServices_CloseErrorReported(t *testing.T) {
	closeErr := errors.New("connection reset")
	bus := &fakeBus{closeErr: closeErr}

	_, err := servicesWith(bus, nil).Services(context.Background())
	assert.ErrorIs(t, err, closeErr)
}
