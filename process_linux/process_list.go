//go:build linux

package process_linux

import (
	"context"
	"fmt"
	"os/user"
	"strconv"

	"proctree/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/prometheus/procfs"
)

// ProcfsEnumerator implements process.ProcessEnumerator directly on procfs.
// It is an alternative to the gopsutil enumerator for hosts where procfs is
// mounted somewhere other than /proc, since both collaborators then read the
// same mount.
type ProcfsEnumerator struct {
	path string
	log  *logger.Logger
}

// NewProcfsEnumerator creates a ProcfsEnumerator reading the procfs mounted at path
func NewProcfsEnumerator(path string) *ProcfsEnumerator {
	if path == "" {
		path = DefaultProcfsPath
	}
	return &ProcfsEnumerator{
		path: path,
		log:  logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "procfs-enum")),
	}
}

// Processes returns a snapshot of all processes found in procfs
func (e *ProcfsEnumerator) Processes(ctx context.Context) ([]process.ProcessInfo, error) {
	fs, err := procfs.NewFS(e.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open procfs %s: %v", process.ErrSourceUnavailable, e.path, err)
	}

	procs, err := fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", process.ErrSourceUnavailable, e.path, err)
	}

	users := userNames{}

	result := make([]process.ProcessInfo, 0, len(procs))
	skipped := 0
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stat, err := p.Stat()
		if err != nil {
			// Process may have terminated while we were reading
			skipped++
			continue
		}

		result = append(result, readProcess(p, stat, users))
	}

	if skipped > 0 {
		e.log.Debugln(fmt.Sprintf("skipped %d processes that exited during enumeration", skipped))
	}

	return result, nil
}

func readProcess(p procfs.Proc, stat procfs.ProcStat, users userNames) process.ProcessInfo {
	info := process.ProcessInfo{
		PID:     process.ProcessID(stat.PID),
		Name:    stat.Comm,
		Threads: stat.NumThreads,
		Memory:  uint64(stat.ResidentMemory()),
	}

	if exe, err := p.Executable(); err == nil {
		info.Exe = exe
	}
	if args, err := p.CmdLine(); err == nil && len(args) > 0 {
		info.Cmdline = args
	}
	if seconds, err := stat.StartTime(); err == nil {
		info.CreateTime = int64(seconds * 1000)
	}
	if status, err := p.NewStatus(); err == nil {
		info.User = users.lookup(status.UIDs[1])
	}

	return info
}

// userNames caches uid lookups for one snapshot
type userNames map[uint64]string

func (u userNames) lookup(uid uint64) string {
	if name, ok := u[uid]; ok {
		return name
	}

	id := strconv.FormatUint(uid, 10)
	name := id
	if found, err := user.LookupId(id); err == nil {
		name = found.Username
	}
	u[uid] = name
	return name
}
