package process_psutil

import (
	"context"
	"errors"
	"os"
	"testing"

	"proctree/process"

	psprocess "github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerator_IncludesSelf(t *testing.T) {
	processes, err := NewEnumerator().Processes(context.Background())
	require.NoError(t, err)

	self := process.ProcessID(os.Getpid())
	var found *process.ProcessInfo
	for i := range processes {
		if processes[i].PID == self {
			found = &processes[i]
			break
		}
	}

	require.NotNil(t, found, "own process missing from enumeration")
	assert.NotEmpty(t, found.Name)
	assert.NotZero(t, found.CreateTime)
}

func TestEnumerator_ListFailure(t *testing.T) {
	e := NewEnumerator()
	e.list = func(context.Context) ([]*psprocess.Process, error) {
		return nil, errors.New("permission denied")
	}

	_, err := e.Processes(context.Background())
	assert.ErrorIs(t, err, process.ErrSourceUnavailable)
}

func TestEnumerator_SkipsExitedProcesses(t *testing.T) {
	self, err := psprocess.NewProcess(int32(os.Getpid()))
	require.NoError(t, err)

	e := NewEnumerator()
	e.list = func(context.Context) ([]*psprocess.Process, error) {
		// pid far above any pid_max
		return []*psprocess.Process{self, {Pid: 1 << 30}}, nil
	}

	processes, err := e.Processes(context.Background())
	require.NoError(t, err)
	require.Len(t, processes, 1)
	assert.Equal(t, process.ProcessID(os.Getpid()), processes[0].PID)
}
