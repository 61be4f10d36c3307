package arbor

import (
	"fmt"
	"math"
)

// ResampleSlabs rebuilds the arbor with nodes spaced roughly delta apart
// along every slab. Root, branch and end nodes keep their positions; the
// nodes in between are placed by stepping delta towards a Gaussian-weighted
// average (sigma) of the original nodes ahead. The edge into a branch or end
// node is usually within half a delta of delta.
//
// The returned arbor has new IDs: the root is 0 and the rest are numbered in
// slab order. minNeighbors forces that many slab neighbors into each average
// even when their weight is negligible, which helps with very jittery traces.
//
// Returns ErrInvalidIncrement when delta is not positive. Every node must be
// present in positions.
func (a *Arbor) ResampleSlabs(positions map[NodeID]Point, sigma, delta float64, minNeighbors int) (*Arbor, map[NodeID]Point, error) {
	if !(delta > 0) {
		return nil, nil, fmt.Errorf("resample spacing %v: %w", delta, ErrInvalidIncrement)
	}
	if !a.hasRoot {
		return New(), map[NodeID]Point{}, nil
	}
	minNeighbors = max(minNeighbors, 0)

	out := NewSingle(0)
	points := map[NodeID]Point{0: positions[a.root]}
	ids := map[NodeID]NodeID{a.root: 0}
	var next NodeID
	idOf := func(node NodeID) NodeID {
		id, ok := ids[node]
		if !ok {
			next++
			id = next
			ids[node] = id
			points[id] = positions[node]
		}
		return id
	}

	weight := gaussian(sigma)
	for _, slab := range a.Slabs() {
		resampled := resampleSlab(slab, positions, weight, delta, minNeighbors)
		paren := idOf(slab[0])
		if len(resampled) > 2 {
			for _, p := range resampled[1 : len(resampled)-1] {
				next++
				out.edges[next] = paren
				points[next] = p
				paren = next
			}
		}
		out.edges[idOf(slab[len(slab)-1])] = paren
	}
	return out, points, nil
}

// resampleSlab returns the new points of one slab. The first and last points
// are the positions of the slab ends.
func resampleSlab(slab []NodeID, positions map[NodeID]Point, weight func(p, q Point) float64, delta float64, minNeighbors int) []Point {
	pts := make([]Point, len(slab))
	for i, node := range slab {
		pts[i] = positions[node]
	}
	gw := slabWeights(pts, weight, minNeighbors)
	sqDelta := delta * delta

	last := pts[0]
	out := []Point{last}
	for i := 1; i < len(pts); {
		// Pivot on the first node beyond delta from the last point.
		k := i
		for k < len(pts) && last.DistanceToSquared(pts[k]) <= sqDelta {
			k++
		}
		if k == len(pts) {
			break
		}

		var sx, sy, sz, total float64
		add := func(q Point, w float64) {
			sx += q.X * w
			sy += q.Y * w
			sz += q.Z * w
			total += w
		}
		add(pts[k], 1)
		for j := k - 1; j > 0 && k-j < len(gw[j]); j-- {
			add(pts[j], gw[j][k-j])
		}
		for j := k + 1; j < len(pts) && j-k < len(gw[k]); j++ {
			add(pts[j], gw[k][j-k])
		}

		dx, dy, dz := sx/total-last.X, sy/total-last.Y, sz/total-last.Z
		p := last
		if norm := math.Sqrt(dx*dx + dy*dy + dz*dz); norm > 0 {
			f := delta / norm
			p = Point{last.X + dx*f, last.Y + dy*f, last.Z + dz*f}
		}

		// Stay on the pivot only while the new point approaches it.
		if p.DistanceToSquared(pts[k]) < last.DistanceToSquared(pts[k]) {
			i = k
		} else {
			i = k + 1
		}
		out = append(out, p)
		last = p
	}

	end := pts[len(pts)-1]
	if last.DistanceToSquared(end) < sqDelta/2 {
		out[len(out)-1] = end
	} else {
		out = append(out, end)
	}
	return out
}

// slabWeights returns, for each point, the weights towards the points after
// it: element 0 is the point itself (1) and the list stops at the first
// weight below gaussianThreshold once minNeighbors have been taken.
func slabWeights(pts []Point, weight func(p, q Point) float64, minNeighbors int) [][]float64 {
	weights := make([][]float64, len(pts))
	for i, p := range pts {
		w := []float64{1}
		for k := i + 1; k < len(pts); k++ {
			g := weight(p, pts[k])
			if g < gaussianThreshold && k-i >= minNeighbors {
				break
			}
			w = append(w, g)
		}
		weights[i] = w
	}
	return weights
}
