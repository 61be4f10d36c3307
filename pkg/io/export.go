package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/arbor/pkg/arbor"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

type document struct {
	ID         int64                     `json:"id,omitempty"`
	Name       string                    `json:"name,omitempty"`
	Nodes      []node                    `json:"nodes"`
	Connectors []connector               `json:"connectors,omitempty"`
	Tags       map[string][]arbor.NodeID `json:"tags,omitempty"`
}

type node struct {
	ID     arbor.NodeID  `json:"id"`
	Parent *arbor.NodeID `json:"parent"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Z      float64       `json:"z"`
	Radius float64       `json:"radius,omitempty"`
}

type connector struct {
	Node     arbor.NodeID `json:"node"`
	Relation string       `json:"relation"`
}

// toDocument converts s into the native document with nodes, connectors and
// tag members in ascending NodeID order, so equal skeletons encode to equal
// bytes.
func toDocument(s *skeleton.Skeleton) document {
	nodes := s.Arbor.Nodes()
	doc := document{
		ID:    s.ID,
		Name:  s.Name,
		Nodes: make([]node, len(nodes)),
	}
	for i, id := range nodes {
		p := s.Positions[id]
		nd := node{ID: id, X: p.X, Y: p.Y, Z: p.Z, Radius: s.Radii[id]}
		if paren, ok := s.Arbor.Parent(id); ok {
			nd.Parent = &paren
		}
		doc.Nodes[i] = nd
	}

	synaptic := slices.Sorted(maps.Keys(s.SynapseMap()))
	for _, id := range synaptic {
		for range s.Outputs[id] {
			doc.Connectors = append(doc.Connectors, connector{Node: id, Relation: skeleton.Presynaptic.String()})
		}
		for range s.Inputs[id] {
			doc.Connectors = append(doc.Connectors, connector{Node: id, Relation: skeleton.Postsynaptic.String()})
		}
	}

	if len(s.Tags) > 0 {
		doc.Tags = make(map[string][]arbor.NodeID, len(s.Tags))
		for name, ids := range s.Tags {
			doc.Tags[name] = slices.Sorted(slices.Values(ids))
		}
	}
	return doc
}

// Marshal encodes s as compact native JSON. The encoding is deterministic and
// suitable for content hashing.
func Marshal(s *skeleton.Skeleton) ([]byte, error) {
	return json.Marshal(toDocument(s))
}

// WriteJSON encodes s as indented native JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(s *skeleton.Skeleton, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes s to a native JSON file at path.
func ExportJSON(s *skeleton.Skeleton, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(s, f)
}

// Export writes s to path in the format implied by its extension, ".json" or
// ".swc".
func Export(s *skeleton.Skeleton, path string) error {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = WriteJSON(s, &buf)
	case ".swc":
		err = WriteSWC(s, &buf)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
