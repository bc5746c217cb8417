package render

import (
	"io"
	"strconv"
	"strings"

	"proctree/process"
	"proctree/process_tree"

	"github.com/dustin/go-humanize"
)

// Processes writes the process list as a table
func Processes(w io.Writer, processes []process.ProcessInfo, opts Options) error {
	table := NewTable(
		ColumnSpec{Header: "PID", AlignRight: true},
		ColumnSpec{Header: "NAME", MaxWidth: 32},
		ColumnSpec{Header: "THREADS", AlignRight: true},
		ColumnSpec{Header: "MEMORY", AlignRight: true},
		ColumnSpec{Header: "USER", MaxWidth: 24, FormatFunc: opts.painter(ansiYellow)},
		ColumnSpec{Header: "COMMAND", MaxWidth: 80, FormatFunc: opts.painter(ansiGray)},
	)

	for _, p := range processes {
		table.AddRow(
			strconv.Itoa(int(p.PID)),
			p.Name,
			count(p.Threads),
			memory(p.Memory),
			p.User,
			command(p),
		)
	}

	return table.Render(w)
}

// Services writes the services with their processes as a table. Services
// whose process could not be found are marked exited.
func Services(w io.Writer, entries []process_tree.ServiceEntry, opts Options) error {
	table := NewTable(
		ColumnSpec{Header: "PID", AlignRight: true},
		ColumnSpec{Header: "SERVICE", MaxWidth: 32, FormatFunc: opts.painter(ansiCyan)},
		ColumnSpec{Header: "DISPLAY NAME", MaxWidth: 48},
		ColumnSpec{Header: "STATE", FormatFunc: stateFormatter(opts)},
		ColumnSpec{Header: "PROCESS", MaxWidth: 32},
		ColumnSpec{Header: "MEMORY", AlignRight: true},
	)

	for _, e := range entries {
		name, mem := exitedName, ""
		if e.Process != nil {
			name, mem = e.Process.Name, memory(e.Process.Memory)
		}
		table.AddRow(
			strconv.Itoa(int(e.Service.PID)),
			e.Service.Name,
			e.Service.DisplayName,
			e.Service.State,
			name,
			mem,
		)
	}

	return table.Render(w)
}

func stateFormatter(opts Options) FormatFunc {
	if !opts.Color {
		return nil
	}
	return func(s string) string {
		switch strings.ToLower(s) {
		case "running":
			return opts.paint(ansiGreen, s)
		case "-":
			return s
		}
		return opts.paint(ansiRed, s)
	}
}

func count(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func memory(bytes uint64) string {
	if bytes == 0 {
		return ""
	}
	return humanize.IBytes(bytes)
}

func command(p process.ProcessInfo) string {
	if len(p.Cmdline) > 0 {
		return strings.Join(p.Cmdline, " ")
	}
	return p.Exe
}
