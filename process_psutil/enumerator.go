// Package process_psutil implements process.ProcessEnumerator on gopsutil.
package process_psutil

import (
	"context"
	"errors"
	"fmt"

	"proctree/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	psprocess "github.com/shirou/gopsutil/process"
)

// Enumerator lists processes through gopsutil. It reads the same fields on
// every OS; fields the OS refuses are left empty.
type Enumerator struct {
	log  *logger.Logger
	list func(ctx context.Context) ([]*psprocess.Process, error)
}

// NewEnumerator creates a new Enumerator
func NewEnumerator() *Enumerator {
	return &Enumerator{
		log:  logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "process-enum")),
		list: psprocess.ProcessesWithContext,
	}
}

// Processes returns a snapshot of all running processes
func (e *Enumerator) Processes(ctx context.Context) ([]process.ProcessInfo, error) {
	procs, err := e.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list processes: %v", process.ErrSourceUnavailable, err)
	}

	result := make([]process.ProcessInfo, 0, len(procs))
	skipped := 0
	for _, p := range procs {
		info, err := readProcess(ctx, p)
		if err != nil {
			// Process may have terminated while we were reading
			skipped++
			continue
		}
		result = append(result, info)
	}

	if skipped > 0 {
		e.log.Debugln(fmt.Sprintf("skipped %d processes that exited during enumeration", skipped))
	}

	return result, nil
}

func readProcess(ctx context.Context, p *psprocess.Process) (process.ProcessInfo, error) {
	info := process.ProcessInfo{PID: process.ProcessID(p.Pid)}

	name, err := p.NameWithContext(ctx)
	if err != nil {
		if isGone(ctx, p) {
			return info, err
		}
		name = ""
	}
	info.Name = name

	info.Exe, _ = p.ExeWithContext(ctx)
	info.Cmdline, _ = p.CmdlineSliceWithContext(ctx)
	info.CreateTime, _ = p.CreateTimeWithContext(ctx)
	info.User, _ = p.UsernameWithContext(ctx)

	if threads, err := p.NumThreadsWithContext(ctx); err == nil {
		info.Threads = int(threads)
	}

	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		info.Memory = mem.RSS
	}

	return info, nil
}

func isGone(ctx context.Context, p *psprocess.Process) bool {
	exists, err := psprocess.PidExistsWithContext(ctx, p.Pid)
	if err != nil {
		return errors.Is(err, psprocess.ErrorProcessNotRunning)
	}
	return !exists
}
