package render

import (
	"encoding/json"
	"fmt"
	"io"

	"proctree/process"

	"gopkg.in/yaml.v3"
)

// Attribute is one requested attribute of a node. Value is nil when the
// attribute is null.
type Attribute struct {
	Name  string  `json:"name" yaml:"name"`
	Value *string `json:"value" yaml:"value"`
}

// NodeDocument is the serializable form of a process node
type NodeDocument struct {
	PID        process.ProcessID    `json:"pid" yaml:"pid"`
	PPID       process.ProcessID    `json:"ppid" yaml:"ppid"`
	IsService  bool                 `json:"isService" yaml:"isService"`
	Process    *process.ProcessInfo `json:"process" yaml:"process"`
	Service    *process.ServiceInfo `json:"service,omitempty" yaml:"service,omitempty"`
	Attributes []Attribute          `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Children   []NodeDocument       `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewTreeDocument converts the forest, pairing node attributes with the
// requested names.
func NewTreeDocument(roots []*process.ProcessNode, attributes []string) []NodeDocument {
	docs := make([]NodeDocument, 0, len(roots))
	for _, root := range roots {
		if root == nil {
			continue
		}
		docs = append(docs, newNodeDocument(root, attributes))
	}
	return docs
}

func newNodeDocument(n *process.ProcessNode, attributes []string) NodeDocument {
	doc := NodeDocument{
		PID:       n.PID,
		PPID:      n.PPID,
		IsService: n.IsService,
		Process:   n.Process,
		Service:   n.Service,
	}

	for i, name := range attributes {
		attr := Attribute{Name: name}
		if i < len(n.Attributes) {
			if v, ok := n.Attributes[i].Get(); ok {
				attr.Value = &v
			}
		}
		doc.Attributes = append(doc.Attributes, attr)
	}

	if len(n.Children) > 0 {
		doc.Children = NewTreeDocument(n.Children, attributes)
	}

	return doc
}

// JSON writes v as indented JSON
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAML writes v as a YAML document
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}
