package render

import (
	"bytes"
	"testing"

	"proctree/process"

	"github.com/aarondl/opt/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proc(pid, ppid process.ProcessID, name string, children ...*process.ProcessNode) *process.ProcessNode {
	return &process.ProcessNode{
		PID:      pid,
		PPID:     ppid,
		Process:  &process.ProcessInfo{PID: pid, Name: name},
		Children: children,
	}
}

func sampleTree() []*process.ProcessNode {
	sshd := proc(812, 1, "sshd", proc(900, 812, "bash"))
	sshd.IsService = true
	sshd.Service = &process.ServiceInfo{Name: "ssh", State: "running", PID: 812}

	exited := &process.ProcessNode{PID: 77, PPID: 1}

	return []*process.ProcessNode{
		proc(1, 0, "systemd", sshd, exited),
		proc(2, 0, "kthreadd"),
	}
}

func TestTree_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tree(&buf, sampleTree(), nil, Options{}))

	assert.Equal(t, ""+
		"systemd #1\n"+
		"├─ sshd #812 [service ssh]\n"+
		"│  └─ bash #900\n"+
		"└─ <exited> #77\n"+
		"kthreadd #2\n", buf.String())
}

func TestTree_Attributes(t *testing.T) {
	root := proc(1, 0, "init")
	root.Attributes = []null.Val[string]{null.From("/sbin/init splash"), {}, null.From("1")}

	var buf bytes.Buffer
	require.NoError(t, Tree(&buf, []*process.ProcessNode{root}, []string{"CommandLine", "ExecutablePath", "ThreadCount"}, Options{}))

	assert.Equal(t, "init #1 CommandLine=\"/sbin/init splash\" ExecutablePath=- ThreadCount=1\n", buf.String())
}

func TestTree_ExitedServiceUsesServiceName(t *testing.T) {
	n := &process.ProcessNode{
		PID:       640,
		IsService: true,
		Service:   &process.ServiceInfo{Name: "cron", PID: 640},
	}

	var buf bytes.Buffer
	require.NoError(t, Tree(&buf, []*process.ProcessNode{n}, nil, Options{}))
	assert.Equal(t, "cron #640 [service cron]\n", buf.String())
}

func TestTree_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tree(&buf, sampleTree(), nil, Options{Color: true}))

	assert.Contains(t, buf.String(), "\033[36msshd\033[0m #812")
	assert.Contains(t, buf.String(), "\033[90m<exited>\033[0m #77")
}
