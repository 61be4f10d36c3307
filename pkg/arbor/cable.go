package arbor

import "math"

// TerminalCable summarizes the terminal segments of an arbor.
type TerminalCable struct {
	Cable    float64 `json:"cable"`
	Branches int     `json:"branches"`
	Ends     int     `json:"ends"`
}

// CableLength returns the summed length of every edge. Edges with an endpoint
// missing from positions are skipped.
func (a *Arbor) CableLength(positions map[NodeID]Point) float64 {
	sum := 0.0
	for _, child := range sortedKeys(a.edges) {
		pc, ok1 := positions[child]
		pp, ok2 := positions[a.edges[child]]
		if ok1 && ok2 {
			sum += pc.DistanceTo(pp)
		}
	}
	return sum
}

// DistanceToUpstreamNodeIn measures the cable from node up to its nearest
// ancestor present in stops. node itself is never considered a stop. The
// second result is false when the root is passed without finding one.
func (a *Arbor) DistanceToUpstreamNodeIn(node NodeID, positions map[NodeID]Point, stops map[NodeID]bool) (float64, bool) {
	length := 0.0
	loc := positions[node]
	paren, ok := a.edges[node]
	for ok {
		next := positions[paren]
		length += loc.DistanceTo(next)
		if stops[paren] {
			return length, true
		}
		loc = next
		paren, ok = a.edges[paren]
	}
	return 0, false
}

// PathToUpstreamNodeIn returns the nodes from node up to and including its
// nearest ancestor present in stops. The second result is false when no
// ancestor is a stop.
func (a *Arbor) PathToUpstreamNodeIn(node NodeID, stops map[NodeID]bool) ([]NodeID, bool) {
	path := []NodeID{node}
	paren, ok := a.edges[node]
	for ok {
		path = append(path, paren)
		if stops[paren] {
			return path, true
		}
		paren, ok = a.edges[paren]
	}
	return nil, false
}

// TerminalCableLength sums the cable of every terminal segment: the run from
// each end node up to the nearest branch node, or to the root when no branch
// node lies in between.
func (a *Arbor) TerminalCableLength(positions map[NodeID]Point) TerminalCable {
	be := a.FindBranchAndEndNodes()
	stops := make(map[NodeID]bool, len(be.Branches)+1)
	for _, b := range be.Branches {
		stops[b] = true
	}
	if a.hasRoot {
		stops[a.root] = true
	}

	tc := TerminalCable{Branches: len(be.Branches), Ends: len(be.Ends)}
	for _, end := range be.Ends {
		if d, ok := a.DistanceToUpstreamNodeIn(end, positions, stops); ok {
			tc.Cable += d
		}
	}
	return tc
}

// SmoothPositions returns a position for every node reachable by a slab, with
// slab interior nodes replaced by a Gaussian-weighted average of their
// neighbors along the slab. Root, branch and end nodes keep their positions.
// Every node must be present in positions.
func (a *Arbor) SmoothPositions(positions map[NodeID]Point, sigma float64) map[NodeID]Point {
	smoothed := make(map[NodeID]Point, a.CountNodes())
	a.convolveSlabs(positions, sigma,
		func(node NodeID, p Point) { smoothed[node] = p },
		func(_ Point, node NodeID, p Point) { smoothed[node] = p })
	return smoothed
}

// SmoothCableLength returns the cable length measured over the positions
// produced by [Arbor.SmoothPositions].
func (a *Arbor) SmoothCableLength(positions map[NodeID]Point, sigma float64) float64 {
	sum := 0.0
	a.convolveSlabs(positions, sigma,
		func(NodeID, Point) {},
		func(prev Point, _ NodeID, p Point) { sum += prev.DistanceTo(p) })
	return sum
}

// gaussianThreshold is the weight below which neighbors stop contributing.
const gaussianThreshold = 0.01

// gaussian returns the unnormalized Gaussian weight between two points. A
// zero sigma gives every distinct neighbor weight 0.
func gaussian(sigma float64) func(p, q Point) float64 {
	s := 2 * sigma * sigma
	return func(p, q Point) float64 {
		if s == 0 {
			return 0
		}
		return math.Exp(-p.DistanceToSquared(q) / s)
	}
}

// convolveSlabs walks every slab, calling start for its first node and visit
// for each following node with the previous (smoothed) point. Interior nodes
// are convolved with their neighbors along the slab until the Gaussian weight
// drops below gaussianThreshold in each direction.
func (a *Arbor) convolveSlabs(positions map[NodeID]Point, sigma float64,
	start func(node NodeID, p Point), visit func(prev Point, node NodeID, p Point)) {
	weight := gaussian(sigma)

	for _, slab := range a.Slabs() {
		last := positions[slab[0]]
		start(slab[0], last)
		for i := 1; i < len(slab)-1; i++ {
			point := positions[slab[i]]
			var sx, sy, sz, total float64
			add := func(q Point, w float64) {
				sx += q.X * w
				sy += q.Y * w
				sz += q.Z * w
				total += w
			}
			add(point, 1)
			for k := i - 1; k >= 0; k-- {
				q := positions[slab[k]]
				w := weight(point, q)
				if w < gaussianThreshold {
					break
				}
				add(q, w)
			}
			for k := i + 1; k < len(slab); k++ {
				q := positions[slab[k]]
				w := weight(point, q)
				if w < gaussianThreshold {
					break
				}
				add(q, w)
			}
			p := Point{sx / total, sy / total, sz / total}
			visit(last, slab[i], p)
			last = p
		}
		end := slab[len(slab)-1]
		visit(last, end, positions[end])
	}
}
