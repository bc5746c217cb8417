package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"proctree/config"
	"proctree/process"

	"github.com/aarondl/opt/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProcesses []process.ProcessInfo

func (s staticProcesses) Processes(context.Context) ([]process.ProcessInfo, error) {
	return s, nil
}

type staticServices []process.ServiceInfo

func (s staticServices) Services(context.Context) ([]process.ServiceInfo, error) {
	return s, nil
}

type staticDetailed []process.DetailedRecord

func (s staticDetailed) Query(_ context.Context, attributes []string) ([]process.DetailedRecord, error) {
	out := make([]process.DetailedRecord, len(s))
	for i, rec := range s {
		out[i] = process.DetailedRecord{PID: rec.PID, PPID: rec.PPID, Attributes: map[string]null.Val[string]{}}
		for _, name := range attributes {
			out[i].Attributes[name] = rec.Attribute(name)
		}
	}
	return out, nil
}

func record(pid, ppid process.ProcessID, name string) process.DetailedRecord {
	return process.DetailedRecord{
		PID:        pid,
		PPID:       ppid,
		Attributes: map[string]null.Val[string]{"Name": null.From(name)},
	}
}

// desktop is a small Windows-like snapshot: explorer launched a shell and
// services.exe hosts one service.
func desktop(closed *int) sourcesFunc {
	return func(config.Config) (process.Sources, error) {
		return process.Sources{
			Processes: staticProcesses{
				{PID: 4, Name: "System"},
				{PID: 600, Name: "services.exe"},
				{PID: 1500, Name: "explorer.exe"},
				{PID: 2000, Name: "cmd.exe"},
				{PID: 1812, Name: "svchost.exe"},
			},
			Services: staticServices{
				{Name: "Dnscache", DisplayName: "DNS Client", State: "Running", PID: 1812},
			},
			Detailed: staticDetailed{
				record(4, 0, "System"),
				record(600, 4, "services.exe"),
				record(1812, 600, "svchost.exe"),
				record(1500, 1400, "explorer.exe"),
				record(2000, 1500, "cmd.exe"),
			},
			Close: func() error {
				*closed++
				return nil
			},
		}, nil
	}
}

func run(t *testing.T, sources sourcesFunc, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := newRootCmd(sources)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestTree_Text(t *testing.T) {
	closed := 0
	out, err := run(t, desktop(&closed), "tree", "--no-color")
	require.NoError(t, err)

	assert.Equal(t, ""+
		"System #4\n"+
		"└─ services.exe #600\n"+
		"explorer.exe #1500\n"+
		"cmd.exe #2000\n", out)
	assert.Equal(t, 1, closed)
}

func TestTree_IncludeServicesAndAttributes(t *testing.T) {
	closed := 0
	out, err := run(t, desktop(&closed), "tree", "--include-services", "--attributes", "Name", "--validate")
	require.NoError(t, err)

	assert.Contains(t, out, "svchost.exe #1812 [service Dnscache] Name=svchost.exe\n")
}

func TestTree_ExcludeParentOverride(t *testing.T) {
	closed := 0
	out, err := run(t, desktop(&closed), "tree", "--exclude-parent", "System")
	require.NoError(t, err)

	assert.Equal(t, ""+
		"System #4\n"+
		"services.exe #600\n"+
		"explorer.exe #1500\n"+
		"└─ cmd.exe #2000\n", out)
}

func TestTree_Root(t *testing.T) {
	closed := 0
	out, err := run(t, desktop(&closed), "tree", "--root", "services,2000")
	require.NoError(t, err)

	assert.Equal(t, "services.exe #600\ncmd.exe #2000\n", out)
}

func TestTree_JSON(t *testing.T) {
	closed := 0
	out, err := run(t, desktop(&closed), "tree", "-o", "json", "--attributes", "Name,CommandLine")
	require.NoError(t, err)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 3)

	attrs := docs[0]["attributes"].([]any)
	require.Len(t, attrs, 2)
	assert.Equal(t, "System", attrs[0].(map[string]any)["value"])
	assert.Nil(t, attrs[1].(map[string]any)["value"])
}

func TestProcesses_SkipsServices(t *testing.T) {
	closed := 0
	out, err := run(t, desktop(&closed), "processes", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "explorer.exe")
	assert.NotContains(t, out, "svchost.exe")
}

func TestServices_YAML(t *testing.T) {
	closed := 0
	out, err := run(t, desktop(&closed), "services", "--output", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "name: Dnscache")
	assert.Contains(t, out, "name: svchost.exe")
}

func TestSourcesFailure(t *testing.T) {
	failing := func(config.Config) (process.Sources, error) {
		return process.Sources{}, process.ErrNotSupported
	}

	_, err := run(t, failing, "processes")
	assert.ErrorIs(t, err, process.ErrNotSupported)
}

func TestInvalidOutput(t *testing.T) {
	closed := 0
	_, err := run(t, desktop(&closed), "tree", "--output", "xml")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Equal(t, 0, closed)
}

func TestCloseErrorReported(t *testing.T) {
	boom := errors.New("release failed")
	sources := func(cfg config.Config) (process.Sources, error) {
		closed := 0
		s, _ := desktop(&closed)(cfg)
		s.Close = func() error { return boom }
		return s, nil
	}

	out, err := run(t, sources, "processes", "--no-color")
	assert.ErrorIs(t, err, boom)
	assert.True(t, strings.Contains(out, "explorer.exe"))
}
