package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/arbor/pkg/arbor"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

// SWC structure identifiers.
const (
	swcUndefined = 0
	swcSoma      = 1
)

// SomaTag is the tag given to SWC soma samples on import; tagged nodes are
// written back with the soma structure identifier.
const SomaTag = "soma"

// ReadSWC decodes the SWC morphology format: one sample per line with the
// whitespace-separated columns
//
//	id type x y z radius parent
//
// A parent of -1 marks the root. Lines starting with '#' are comments.
// Samples of type 1 are tagged [SomaTag].
func ReadSWC(r io.Reader) (*skeleton.Skeleton, error) {
	var (
		rows []nodeRow
		soma []arbor.NodeID
	)
	err := scanLines(r, "#", func(lineno int, line string) error {
		f := strings.Fields(line)
		if len(f) < 7 {
			return fmt.Errorf("line %d: expected 7 columns, got %d", lineno, len(f))
		}
		id, err := strconv.ParseInt(f[0], 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: id: %w", lineno, err)
		}
		kind, err := strconv.Atoi(f[1])
		if err != nil {
			return fmt.Errorf("line %d: type: %w", lineno, err)
		}
		var nums [4]float64
		for i := range nums {
			if nums[i], err = strconv.ParseFloat(f[2+i], 64); err != nil {
				return fmt.Errorf("line %d: column %d: %w", lineno, 3+i, err)
			}
		}
		parent, err := strconv.ParseInt(f[6], 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: parent: %w", lineno, err)
		}

		row := nodeRow{
			id:     arbor.NodeID(id),
			pos:    arbor.Point{X: nums[0], Y: nums[1], Z: nums[2]},
			radius: nums[3],
		}
		if parent >= 0 {
			p := arbor.NodeID(parent)
			row.parent = &p
		}
		if kind == swcSoma {
			soma = append(soma, row.id)
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s, err := buildSkeleton(rows)
	if err != nil {
		return nil, err
	}
	if len(soma) > 0 {
		s.Tags[SomaTag] = soma
	}
	return s, nil
}

// WriteSWC encodes s in the SWC format. Synapses and tags other than
// [SomaTag] are not representable and are dropped. Nodes are written in
// breadth-first order from the root so parents precede their children.
func WriteSWC(s *skeleton.Skeleton, w io.Writer) error {
	soma := make(map[arbor.NodeID]bool)
	for _, n := range s.Tags[SomaTag] {
		soma[n] = true
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", swcHeader(s))
	root, ok := s.Arbor.Root()
	if ok {
		succ := s.Arbor.AllSuccessors()
		open := []arbor.NodeID{root}
		for len(open) > 0 {
			n := open[0]
			open = open[1:]

			kind := swcUndefined
			if soma[n] {
				kind = swcSoma
			}
			parent := int64(-1)
			if p, ok := s.Arbor.Parent(n); ok {
				parent = int64(p)
			}
			p := s.Positions[n]
			fmt.Fprintf(bw, "%d %d %s %s %s %s %d\n", n, kind,
				formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z),
				formatFloat(s.Radii[n]), parent)
			open = append(open, succ[n]...)
		}
	}
	return bw.Flush()
}

func swcHeader(s *skeleton.Skeleton) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("skeleton %d", s.ID)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
