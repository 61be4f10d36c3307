package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/arbor/pkg/arbor"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

var (
	// ErrDuplicateNode is returned when a node ID appears more than once.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnsupportedFormat is returned by [Import] and [Export] for unknown
	// file extensions or content.
	ErrUnsupportedFormat = errors.New("unsupported skeleton format")
)

// Format names accepted by [Import], [Export] and the CLI --format flags.
const (
	FormatJSON    = "json"
	FormatCompact = "compact"
	FormatSWC     = "swc"
)

// ReadJSON decodes a skeleton in the native JSON format from r.
//
// The input must be an object with a "nodes" array. Exactly one node must have
// a null (or absent) parent; it becomes the root. Optional fields:
//   - id, name: skeleton identity
//   - radius: per-node radius, ignored when not positive
//   - connectors: synapses as {"node": id, "relation": "pre"|"post"}
//   - tags: object mapping tag names to node ID arrays
//
// ReadJSON returns an error wrapping [arbor.ErrMalformedTree] when the nodes
// do not form a single tree, [ErrDuplicateNode] for repeated IDs, and
// [skeleton.ErrUnknownNode] for connectors or tags referring to unknown nodes.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*skeleton.Skeleton, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	rows := make([]nodeRow, len(data.Nodes))
	for i, n := range data.Nodes {
		rows[i] = nodeRow{
			id:     n.ID,
			parent: n.Parent,
			pos:    arbor.Point{X: n.X, Y: n.Y, Z: n.Z},
			radius: n.Radius,
		}
	}
	s, err := buildSkeleton(rows)
	if err != nil {
		return nil, err
	}
	s.ID, s.Name = data.ID, data.Name

	for _, c := range data.Connectors {
		rel, err := skeleton.ParseRelation(c.Relation)
		if err != nil {
			return nil, fmt.Errorf("connector at node %d: %w", c.Node, err)
		}
		s.AddSynapse(c.Node, rel)
	}
	for name, nodes := range data.Tags {
		s.Tags[name] = append(s.Tags[name], nodes...)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ImportJSON reads a native JSON skeleton file at path.
// It returns the same errors as [ReadJSON], wrapped with the path.
func ImportJSON(path string) (*skeleton.Skeleton, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Import reads a skeleton file, choosing the decoder from the extension:
// ".swc" for SWC, ".json" for native JSON or, when the document is a
// top-level array, the compact-skeleton format.
func Import(path string) (*skeleton.Skeleton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	format, err := DetectFormat(path, data)
	if err != nil {
		return nil, err
	}
	s, err := Read(format, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read decodes r in the named format.
func Read(format string, r io.Reader) (*skeleton.Skeleton, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatCompact:
		return ReadCompact(r)
	case FormatSWC:
		return ReadSWC(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// DetectFormat guesses the format of a skeleton file from its extension and,
// for JSON, its first non-space byte.
func DetectFormat(path string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".swc":
		return FormatSWC, nil
	case ".json":
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
			return FormatCompact, nil
		}
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// nodeRow is the format-independent node record shared by all decoders.
type nodeRow struct {
	id     arbor.NodeID
	parent *arbor.NodeID
	pos    arbor.Point
	radius float64
}

// buildSkeleton assembles the arbor, positions and radii from node rows.
func buildSkeleton(rows []nodeRow) (*skeleton.Skeleton, error) {
	var (
		edges []arbor.Edge
		roots []arbor.NodeID
	)
	seen := make(map[arbor.NodeID]bool, len(rows))
	for _, r := range rows {
		if seen[r.id] {
			return nil, fmt.Errorf("node %d: %w", r.id, ErrDuplicateNode)
		}
		seen[r.id] = true
		if r.parent == nil {
			roots = append(roots, r.id)
			continue
		}
		edges = append(edges, arbor.Edge{Child: r.id, Parent: *r.parent})
	}
	if len(roots) != 1 {
		return nil, fmt.Errorf("%w: %d nodes without parent", arbor.ErrMalformedTree, len(roots))
	}

	a := arbor.NewSingle(roots[0])
	if err := a.AddEdges(edges); err != nil {
		return nil, err
	}
	if root, _ := a.Root(); root != roots[0] {
		return nil, fmt.Errorf("%w: node %d is a parent but not listed", arbor.ErrMalformedTree, root)
	}

	s := skeleton.New(a)
	for _, r := range rows {
		s.Positions[r.id] = r.pos
		if r.radius > 0 {
			s.Radii[r.id] = r.radius
		}
	}
	return s, nil
}

// scanLines calls fn for every non-empty line of r that is not a comment.
func scanLines(r io.Reader, comment string, fn func(lineno int, line string) error) error {
	sc := bufio.NewScanner(r)
	for lineno := 1; sc.Scan(); lineno++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, comment) {
			continue
		}
		if err := fn(lineno, line); err != nil {
			return err
		}
	}
	return sc.Err()
}
