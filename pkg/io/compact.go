package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/arbor/pkg/arbor"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

// Column layout of compact-skeleton rows.
const (
	compactNodeID     = 0
	compactNodeParent = 1
	compactNodeX      = 3
	compactNodeY      = 4
	compactNodeZ      = 5
	compactNodeRadius = 6

	compactConnNode     = 0
	compactConnRelation = 2

	// Relations other than these two (gap junctions, abutting connectors)
	// are not synapses and are skipped.
	compactRelPre  = 0
	compactRelPost = 1
)

// ReadCompact decodes the compact-skeleton export of a tracing server:
//
//	[
//	  [[id, parent|null, user, x, y, z, radius, confidence], ...],
//	  [[node, connector, relation, x, y, z], ...],
//	  {"tag": [node, ...]}
//	]
//
// Connector relations are 0 for presynaptic and 1 for postsynaptic sites.
// The connector and tag sections are optional.
func ReadCompact(r io.Reader) (*skeleton.Skeleton, error) {
	var sections []json.RawMessage
	if err := json.NewDecoder(r).Decode(&sections); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("decode: empty compact skeleton")
	}

	var nodeRows [][]*float64
	if err := json.Unmarshal(sections[0], &nodeRows); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	rows := make([]nodeRow, 0, len(nodeRows))
	for i, cols := range nodeRows {
		if len(cols) <= compactNodeZ || cols[compactNodeID] == nil {
			return nil, fmt.Errorf("node row %d: expected at least %d columns", i, compactNodeZ+1)
		}
		row := nodeRow{
			id: arbor.NodeID(*cols[compactNodeID]),
			pos: arbor.Point{
				X: value(cols[compactNodeX]),
				Y: value(cols[compactNodeY]),
				Z: value(cols[compactNodeZ]),
			},
		}
		if p := cols[compactNodeParent]; p != nil {
			parent := arbor.NodeID(*p)
			row.parent = &parent
		}
		if len(cols) > compactNodeRadius {
			row.radius = value(cols[compactNodeRadius])
		}
		rows = append(rows, row)
	}
	s, err := buildSkeleton(rows)
	if err != nil {
		return nil, err
	}

	if len(sections) > 1 {
		var connRows [][]*float64
		if err := json.Unmarshal(sections[1], &connRows); err != nil {
			return nil, fmt.Errorf("decode connectors: %w", err)
		}
		for i, cols := range connRows {
			if len(cols) <= compactConnRelation || cols[compactConnNode] == nil {
				return nil, fmt.Errorf("connector row %d: expected at least %d columns", i, compactConnRelation+1)
			}
			node := arbor.NodeID(*cols[compactConnNode])
			switch int(value(cols[compactConnRelation])) {
			case compactRelPre:
				s.AddSynapse(node, skeleton.Presynaptic)
			case compactRelPost:
				s.AddSynapse(node, skeleton.Postsynaptic)
			}
		}
	}

	if len(sections) > 2 {
		var tags map[string][]arbor.NodeID
		if err := json.Unmarshal(sections[2], &tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		for name, nodes := range tags {
			s.Tags[name] = append(s.Tags[name], nodes...)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
