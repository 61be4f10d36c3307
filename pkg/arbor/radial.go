package arbor

import (
	"fmt"
	"math"
)

// Point is a position in skeleton space, usually nanometers.
type Point struct {
	X, Y, Z float64
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Sqrt(p.DistanceToSquared(q))
}

// DistanceToSquared returns the squared Euclidean distance between p and q.
func (p Point) DistanceToSquared(q Point) float64 {
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return dx*dx + dy*dy + dz*dz
}

// ShollProfile pairs shell radii with the number of edges crossing them.
type ShollProfile struct {
	Radius    []float64 `json:"radius"`
	Crossings []int     `json:"crossings"`
}

// DensityProfile pairs bin start distances with the accumulated count of the
// nodes falling in each bin.
type DensityProfile struct {
	Bins   []float64 `json:"bins"`
	Counts []float64 `json:"counts"`
}

// Sholl counts the edges crossing concentric shell boundaries at radii
// k*increment, for k = 0, 1, 2, ... An edge crosses boundary k when one of its
// nodes lies at or inside it and the other strictly outside:
// min(d) <= k*increment < max(d).
//
// The profile is dense: it has one entry for every boundary below the largest
// node distance, including boundaries with no crossings. distanceToCenter is
// evaluated once per node.
//
// Returns ErrInvalidIncrement when increment is not positive.
func (a *Arbor) Sholl(increment float64, distanceToCenter func(NodeID) float64) (ShollProfile, error) {
	if !(increment > 0) {
		return ShollProfile{}, fmt.Errorf("sholl increment %v: %w", increment, ErrInvalidIncrement)
	}
	if len(a.edges) == 0 {
		return ShollProfile{}, nil
	}

	dist := make(map[NodeID]float64, len(a.edges)+1)
	distance := func(node NodeID) float64 {
		d, ok := dist[node]
		if !ok {
			d = distanceToCenter(node)
			dist[node] = d
		}
		return d
	}

	type span struct{ lo, hi int }
	spans := make([]span, 0, len(a.edges))
	bins := 0
	for _, child := range sortedKeys(a.edges) {
		dc, dp := distance(child), distance(a.edges[child])
		lo := int(math.Ceil(min(dc, dp) / increment))
		hi := int(math.Ceil(max(dc, dp)/increment)) - 1
		lo = max(lo, 0)
		if lo > hi {
			continue
		}
		spans = append(spans, span{lo, hi})
		bins = max(bins, hi+1)
	}

	// Difference array: each edge updates its whole range in O(1).
	diff := make([]int, bins+1)
	for _, s := range spans {
		diff[s.lo]++
		diff[s.hi+1]--
	}
	profile := ShollProfile{
		Radius:    make([]float64, bins),
		Crossings: make([]int, bins),
	}
	running := 0
	for k := range bins {
		running += diff[k]
		profile.Radius[k] = float64(k) * increment
		profile.Crossings[k] = running
	}
	return profile, nil
}

// RadialDensity bins the nodes of the arbor by their distance to center into
// shells of width increment, accumulating countFn(node) per bin. Only nodes
// present in positions are measured, so callers can restrict the analysis to
// e.g. branch, end or synapse nodes.
//
// The profile is dense from the bin at distance 0 up to the outermost occupied
// bin. Returns ErrInvalidIncrement when increment is not positive.
func (a *Arbor) RadialDensity(center Point, increment float64, positions map[NodeID]Point, countFn func(NodeID) float64) (DensityProfile, error) {
	if !(increment > 0) {
		return DensityProfile{}, fmt.Errorf("radial density increment %v: %w", increment, ErrInvalidIncrement)
	}

	counts := make(map[int]float64)
	bins := 0
	for _, node := range a.Nodes() {
		p, ok := positions[node]
		if !ok {
			continue
		}
		index := int(math.Floor(center.DistanceTo(p) / increment))
		counts[index] += countFn(node)
		bins = max(bins, index+1)
	}

	profile := DensityProfile{
		Bins:   make([]float64, bins),
		Counts: make([]float64, bins),
	}
	for k := range bins {
		profile.Bins[k] = float64(k) * increment
		profile.Counts[k] = counts[k]
	}
	return profile, nil
}
