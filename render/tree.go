package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"proctree/process"

	"github.com/aarondl/opt/null"
)

const (
	branchMid  = "├─ "
	branchLast = "└─ "
	indentMid  = "│  "
	indentLast = "   "
	exitedName = "<exited>"
)

// Tree writes the forest as an indented tree, one node per line:
//
//	systemd #1
//	├─ sshd #812 [service sshd]
//	│  └─ bash #900 Name=bash
//	└─ <exited> #77
//
// Attributes are printed in request order as name=value, null values as "-".
// Names are taken from the process, or from the service for service nodes
// whose process has exited.
func Tree(w io.Writer, roots []*process.ProcessNode, attributes []string, opts Options) error {
	for _, root := range roots {
		if err := writeNode(w, root, attributes, "", "", opts); err != nil {
			return err
		}
	}
	return nil
}

func writeNode(w io.Writer, n *process.ProcessNode, attributes []string, branch, indent string, opts Options) error {
	if n == nil {
		return nil
	}

	if _, err := fmt.Fprintln(w, branch+nodeLabel(n, attributes, opts)); err != nil {
		return err
	}

	for i, child := range n.Children {
		childBranch, childIndent := branchMid, indentMid
		if i == len(n.Children)-1 {
			childBranch, childIndent = branchLast, indentLast
		}
		if err := writeNode(w, child, attributes, indent+childBranch, indent+childIndent, opts); err != nil {
			return err
		}
	}

	return nil
}

func nodeLabel(n *process.ProcessNode, attributes []string, opts Options) string {
	var sb strings.Builder

	switch {
	case n.HasProcess() && n.Process.Name != "":
		name := n.Process.Name
		if n.IsService {
			name = opts.paint(ansiCyan, name)
		}
		sb.WriteString(name)
	case n.Service != nil:
		sb.WriteString(opts.paint(ansiGray, n.Service.Name))
	default:
		sb.WriteString(opts.paint(ansiGray, exitedName))
	}

	fmt.Fprintf(&sb, " #%d", n.PID)

	if n.Service != nil {
		sb.WriteString(" ")
		sb.WriteString(opts.paint(ansiCyan, "[service "+n.Service.Name+"]"))
	}

	for i, name := range attributes {
		var value null.Val[string]
		if i < len(n.Attributes) {
			value = n.Attributes[i]
		}
		sb.WriteString(" ")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(attributeText(value, opts))
	}

	return sb.String()
}

func attributeText(value null.Val[string], opts Options) string {
	s, ok := value.Get()
	if !ok {
		return opts.paint(ansiGray, "-")
	}
	if s == "" || strings.ContainsAny(s, " \t\"") {
		return strconv.Quote(s)
	}
	return s
}
