// Package skeleton couples an [arbor.Arbor] with the per-node data a traced
// neuron carries: positions, radii, synapse counts and tags.
//
// The arbor package operates on bare topology and takes attribute maps as
// arguments. A Skeleton keeps those maps together so importers, the analysis
// runner and renderers agree on what belongs to a neuron.
package skeleton

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/arbor/pkg/arbor"
)

// NotABranchTag marks the end node of a terminal branch that is a tracing
// artifact rather than real morphology.
const NotABranchTag = "not a branch"

// Relation is the role a node plays at a synaptic connector.
type Relation int

const (
	// Presynaptic nodes are outputs of the neuron.
	Presynaptic Relation = iota
	// Postsynaptic nodes are inputs to the neuron.
	Postsynaptic
)

func (r Relation) String() string {
	switch r {
	case Presynaptic:
		return "pre"
	case Postsynaptic:
		return "post"
	default:
		return fmt.Sprintf("relation(%d)", int(r))
	}
}

// ParseRelation parses "pre" or "post".
func ParseRelation(s string) (Relation, error) {
	switch s {
	case "pre", "presynaptic":
		return Presynaptic, nil
	case "post", "postsynaptic":
		return Postsynaptic, nil
	}
	return 0, fmt.Errorf("unknown synaptic relation %q", s)
}

var (
	// ErrMissingPosition is returned by [Skeleton.Validate] when a node of the
	// arbor has no position.
	ErrMissingPosition = errors.New("node has no position")

	// ErrUnknownNode is returned when a synapse or tag refers to a node that
	// is not part of the arbor.
	ErrUnknownNode = errors.New("node not in arbor")
)

// Skeleton is a traced neuron.
//
// Inputs and Outputs count postsynaptic and presynaptic sites per node; nodes
// without synapses are absent. Tags maps a tag name to the nodes carrying it.
type Skeleton struct {
	ID        int64
	Name      string
	Arbor     *arbor.Arbor
	Positions map[arbor.NodeID]arbor.Point
	Radii     map[arbor.NodeID]float64
	Inputs    map[arbor.NodeID]int
	Outputs   map[arbor.NodeID]int
	Tags      map[string][]arbor.NodeID
}

// New creates a skeleton around a with empty attribute maps.
// A nil arbor is replaced by an empty one.
func New(a *arbor.Arbor) *Skeleton {
	if a == nil {
		a = arbor.New()
	}
	return &Skeleton{
		Arbor:     a,
		Positions: make(map[arbor.NodeID]arbor.Point),
		Radii:     make(map[arbor.NodeID]float64),
		Inputs:    make(map[arbor.NodeID]int),
		Outputs:   make(map[arbor.NodeID]int),
		Tags:      make(map[string][]arbor.NodeID),
	}
}

// AddSynapse records one synapse of the given relation at node.
func (s *Skeleton) AddSynapse(node arbor.NodeID, rel Relation) {
	switch rel {
	case Presynaptic:
		s.Outputs[node]++
	case Postsynaptic:
		s.Inputs[node]++
	}
}

// InputCount returns the total number of postsynaptic sites.
func (s *Skeleton) InputCount() int { return total(s.Inputs) }

// OutputCount returns the total number of presynaptic sites.
func (s *Skeleton) OutputCount() int { return total(s.Outputs) }

func total(m map[arbor.NodeID]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}

// SynapseMap returns the number of synapses of either kind at every node
// that has at least one.
func (s *Skeleton) SynapseMap() map[arbor.NodeID]int {
	m := maps.Clone(s.Inputs)
	if m == nil {
		m = make(map[arbor.NodeID]int, len(s.Outputs))
	}
	for node, n := range s.Outputs {
		m[node] += n
	}
	return m
}

// Validate checks that the arbor is a well-formed tree, that every node has a
// position, and that synapses and tags only refer to nodes of the arbor.
func (s *Skeleton) Validate() error {
	if s.Arbor == nil {
		return fmt.Errorf("skeleton %d: %w: no arbor", s.ID, arbor.ErrMalformedTree)
	}
	if err := s.Arbor.Validate(); err != nil {
		return fmt.Errorf("skeleton %d: %w", s.ID, err)
	}
	for _, node := range s.Arbor.Nodes() {
		if _, ok := s.Positions[node]; !ok {
			return fmt.Errorf("skeleton %d: node %d: %w", s.ID, node, ErrMissingPosition)
		}
	}
	for _, m := range []map[arbor.NodeID]int{s.Inputs, s.Outputs} {
		for _, node := range slices.Sorted(maps.Keys(m)) {
			if !s.Arbor.Contains(node) {
				return fmt.Errorf("skeleton %d: synapse at node %d: %w", s.ID, node, ErrUnknownNode)
			}
		}
	}
	for _, tag := range slices.Sorted(maps.Keys(s.Tags)) {
		for _, node := range s.Tags[tag] {
			if !s.Arbor.Contains(node) {
				return fmt.Errorf("skeleton %d: tag %q at node %d: %w", s.ID, tag, node, ErrUnknownNode)
			}
		}
	}
	return nil
}

// CollapseArtifactualBranches removes every terminal branch whose end node
// carries tag, from the end node up to the nearest branch node (or the root).
// The synapses of the removed nodes are moved onto that node, and their
// positions, radii and tags are dropped. It returns the number of collapsed
// branches.
//
// Branch nodes are determined before any removal, so a branch node left with
// a single child still receives the synapses of a collapsed sibling.
func (s *Skeleton) CollapseArtifactualBranches(tag string) int {
	tagged := s.Tags[tag]
	if len(tagged) == 0 {
		return 0
	}
	isTagged := make(map[arbor.NodeID]bool, len(tagged))
	for _, n := range tagged {
		isTagged[n] = true
	}

	be := s.Arbor.FindBranchAndEndNodes()
	branches := make(map[arbor.NodeID]bool, len(be.Branches))
	for _, b := range be.Branches {
		branches[b] = true
	}
	root, _ := s.Arbor.Root()

	var removed []arbor.NodeID
	collapsed := 0
	for _, end := range be.Ends {
		if !isTagged[end] {
			continue
		}
		var inputs, outputs int
		node := end
		for !branches[node] && node != root {
			inputs += s.Inputs[node]
			outputs += s.Outputs[node]
			delete(s.Inputs, node)
			delete(s.Outputs, node)
			removed = append(removed, node)
			node, _ = s.Arbor.Parent(node)
		}
		if inputs > 0 {
			s.Inputs[node] += inputs
		}
		if outputs > 0 {
			s.Outputs[node] += outputs
		}
		collapsed++
	}

	if len(removed) == 0 {
		return collapsed
	}
	s.Arbor = s.Arbor.Without(removed)
	gone := make(map[arbor.NodeID]bool, len(removed))
	for _, n := range removed {
		gone[n] = true
		delete(s.Positions, n)
		delete(s.Radii, n)
	}
	for name, nodes := range s.Tags {
		kept := slices.DeleteFunc(slices.Clone(nodes), func(n arbor.NodeID) bool { return gone[n] })
		if len(kept) == 0 {
			delete(s.Tags, name)
			continue
		}
		s.Tags[name] = kept
	}
	return collapsed
}

// Clone returns a deep copy of the skeleton.
func (s *Skeleton) Clone() *Skeleton {
	c := &Skeleton{
		ID:        s.ID,
		Name:      s.Name,
		Arbor:     s.Arbor.Clone(),
		Positions: maps.Clone(s.Positions),
		Radii:     maps.Clone(s.Radii),
		Inputs:    maps.Clone(s.Inputs),
		Outputs:   maps.Clone(s.Outputs),
		Tags:      make(map[string][]arbor.NodeID, len(s.Tags)),
	}
	for name, nodes := range s.Tags {
		c.Tags[name] = slices.Clone(nodes)
	}
	return c
}
