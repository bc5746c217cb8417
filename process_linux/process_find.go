//go:build linux

package process_linux

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"proctree/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/aarondl/opt/null"
	"github.com/prometheus/procfs"
)

// DefaultProcfsPath is where procfs is normally mounted
const DefaultProcfsPath = procfs.DefaultMountPoint

// DetailedSource implements process.DetailedProcessSource on top of /proc
type DetailedSource struct {
	path string
	log  *logger.Logger
}

// NewDetailedSource creates a DetailedSource reading the procfs mounted at path
func NewDetailedSource(path string) *DetailedSource {
	if path == "" {
		path = DefaultProcfsPath
	}
	return &DetailedSource{
		path: path,
		log:  logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "procfs")),
	}
}

// Query returns one record per process found in procfs
func (s *DetailedSource) Query(ctx context.Context, attributes []string) ([]process.DetailedRecord, error) {
	fs, err := procfs.NewFS(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open procfs %s: %v", process.ErrSourceUnavailable, s.path, err)
	}

	procs, err := fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", process.ErrSourceUnavailable, s.path, err)
	}

	records := make([]process.DetailedRecord, 0, len(procs))
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

		entry := &procEntry{proc: p, stat: stat}
		rec := process.DetailedRecord{
			PID:  process.ProcessID(stat.PID),
			PPID: process.ProcessID(stat.PPID),
		}

		if len(attributes) > 0 {
			rec.Attributes = make(map[string]null.Val[string], len(attributes))
			for _, name := range attributes {
				rec.Attributes[name] = entry.attribute(name)
			}
		}

		records = append(records, rec)
	}

	if skipped > 0 {
		s.log.Debugln(fmt.Sprintf("skipped %d processes that exited during the query", skipped))
	}

	return records, nil
}

// procEntry is one process being read. The stat file is always read, the
// other files only when an attribute needs them.
type procEntry struct {
	proc procfs.Proc
	stat procfs.ProcStat
}

type attributeReader func(e *procEntry) (string, bool)

// attributeReaders maps lower-cased attribute names to readers. The Win32
// names are accepted so callers can request the same attributes on every
// OS.
var attributeReaders = map[string]attributeReader{
	"name":             readComm,
	"comm":             readComm,
	"executablepath":   readExecutable,
	"exe":              readExecutable,
	"commandline":      readCmdline,
	"cmdline":          readCmdline,
	"processid":        func(e *procEntry) (string, bool) { return strconv.Itoa(e.stat.PID), true },
	"pid":              func(e *procEntry) (string, bool) { return strconv.Itoa(e.stat.PID), true },
	"parentprocessid":  func(e *procEntry) (string, bool) { return strconv.Itoa(e.stat.PPID), true },
	"ppid":             func(e *procEntry) (string, bool) { return strconv.Itoa(e.stat.PPID), true },
	"threadcount":      func(e *procEntry) (string, bool) { return strconv.Itoa(e.stat.NumThreads), true },
	"workingsetsize":   func(e *procEntry) (string, bool) { return strconv.Itoa(e.stat.ResidentMemory()), true },
	"priority":         func(e *procEntry) (string, bool) { return strconv.Itoa(e.stat.Priority), true },
	"nice":             func(e *procEntry) (string, bool) { return strconv.Itoa(e.stat.Nice), true },
	"sessionid":        func(e *procEntry) (string, bool) { return strconv.Itoa(e.stat.Session), true },
	"state":            func(e *procEntry) (string, bool) { return e.stat.State, e.stat.State != "" },
	"creationdate":     readStartTime,
	"currentdirectory": readCwd,
	"cwd":              readCwd,
	"user":             readUID,
	"uid":              readUID,
}

// attribute returns the named attribute, null when unknown or unreadable
func (e *procEntry) attribute(name string) null.Val[string] {
	read, ok := attributeReaders[strings.ToLower(name)]
	if !ok {
		return null.Val[string]{}
	}
	value, ok := read(e)
	if !ok {
		return null.Val[string]{}
	}
	return null.From(value)
}

func readComm(e *procEntry) (string, bool) {
	return e.stat.Comm, e.stat.Comm != ""
}

func readExecutable(e *procEntry) (string, bool) {
	exe, err := e.proc.Executable()
	if err != nil || exe == "" {
		// kernel threads have no executable
		return "", false
	}
	return strings.TrimSuffix(exe, " (deleted)"), true
}

func readCmdline(e *procEntry) (string, bool) {
	args, err := e.proc.CmdLine()
	if err != nil || len(args) == 0 {
		return "", false
	}
	return strings.Join(args, " "), true
}

func readCwd(e *procEntry) (string, bool) {
	cwd, err := e.proc.Cwd()
	if err != nil || cwd == "" {
		return "", false
	}
	return cwd, true
}

func readStartTime(e *procEntry) (string, bool) {
	seconds, err := e.stat.StartTime()
	if err != nil {
		return "", false
	}
	started := time.Unix(0, int64(seconds*float64(time.Second))).UTC()
	return started.Format(time.RFC3339), true
}

func readUID(e *procEntry) (string, bool) {
	status, err := e.proc.NewStatus()
	if err != nil {
		return "", false
	}
	// effective uid
	return strconv.FormatUint(status.UIDs[1], 10), true
}
