package arbor

import (
	"cmp"
	"math"
	"slices"
)

// SubtreesMeasurements records, for every branch node, one measurement per
// subtree hanging from it. initial seeds the value at an end node, cumulative
// extends a value across the edge from child to parent, and merge combines
// the values of two subtrees that meet at a branch node.
//
// The root is reported only when it has more than one child.
func SubtreesMeasurements[T any](a *Arbor, initial func(end NodeID) T,
	cumulative func(acc T, child, parent NodeID) T, merge func(x, y T) T) map[NodeID][]T {
	branch := make(map[NodeID][]T)
	for _, seq := range a.PartitionSorted() {
		acc := initial(seq[0])
		last := len(seq) - 1
		for i := 1; i < last; i++ {
			acc = cumulative(acc, seq[i-1], seq[i])
			if list, ok := branch[seq[i]]; ok {
				own := acc
				for _, v := range list {
					acc = merge(acc, v)
				}
				branch[seq[i]] = append(list, own)
			}
		}
		acc = cumulative(acc, seq[last-1], seq[last])
		branch[seq[last]] = append(branch[seq[last]], acc)
	}
	if a.hasRoot && len(branch[a.root]) == 1 {
		delete(branch, a.root)
	}
	return branch
}

// SubtreesCable measures the cable of every subtree at each branch node,
// including the edge that joins the subtree to the branch node.
func (a *Arbor) SubtreesCable(positions map[NodeID]Point) map[NodeID][]float64 {
	return SubtreesMeasurements(a,
		func(NodeID) float64 { return 0 },
		func(acc float64, child, parent NodeID) float64 {
			return acc + positions[child].DistanceTo(positions[parent])
		},
		plus[float64])
}

// SubtreesEndCount counts the end nodes of every subtree at each branch node.
func (a *Arbor) SubtreesEndCount() map[NodeID][]int {
	return SubtreesMeasurements(a,
		func(NodeID) int { return 1 },
		func(acc int, _, _ NodeID) int { return acc },
		plus[int])
}

// SubtreesLoad sums load (for example input synapses per node) over the nodes
// of every subtree at each branch node. Nodes absent from load count as 0.
func (a *Arbor) SubtreesLoad(load map[NodeID]int) map[NodeID][]int {
	return SubtreesMeasurements(a,
		func(NodeID) int { return 0 },
		func(acc int, child, _ NodeID) int { return acc + load[child] },
		plus[int])
}

func plus[T int | float64](x, y T) T { return x + y }

// AsymmetryBins is the number of histogram bins in [AsymmetryStats].
const AsymmetryBins = 10

// AsymmetryStats summarizes the asymmetry of the branch points of an arbor.
type AsymmetryStats struct {
	Mean      float64                `json:"mean"`
	StdDev    float64                `json:"std_dev"`
	Histogram [AsymmetryBins]float64 `json:"histogram"`
	Branches  int                    `json:"branches"`
}

// Asymmetry computes fn over the subtree measurements of every branch node.
// Branch nodes with more than two subtrees are treated as nested binary
// branches: subtrees are sorted from large to small and each one is compared
// against the accumulated sum of the larger ones.
//
// Values are expected in [0, 1] and are binned into AsymmetryBins bins. The
// standard deviation is the population one. An arbor without branch nodes
// yields the zero value.
func Asymmetry(m map[NodeID][]float64, fn func(x, y float64) float64) AsymmetryStats {
	var values []float64
	for _, node := range sortedKeys(m) {
		subtrees := m[node]
		if len(subtrees) < 2 {
			continue
		}
		if len(subtrees) == 2 {
			values = append(values, fn(subtrees[0], subtrees[1]))
			continue
		}
		sorted := slices.Clone(subtrees)
		slices.SortFunc(sorted, func(x, y float64) int { return cmp.Compare(y, x) })
		acc := sorted[0]
		for _, sub := range sorted[1:] {
			values = append(values, fn(acc, sub))
			acc += sub
		}
	}

	var stats AsymmetryStats
	if len(values) == 0 {
		return stats
	}
	stats.Branches = len(values)
	total := 0.0
	for _, v := range values {
		total += v
	}
	stats.Mean = total / float64(len(values))

	sq := 0.0
	for _, v := range values {
		index := min(max(int(v*AsymmetryBins), 0), AsymmetryBins-1)
		stats.Histogram[index]++
		sq += (v - stats.Mean) * (v - stats.Mean)
	}
	stats.StdDev = math.Sqrt(sq / float64(len(values)))
	return stats
}

// AsymmetryIndex is the topological partition asymmetry of van Pelt et al.
// (1992), computed over end node counts:
// |a-b| / (a+b-2), and 0 when a == b.
func (a *Arbor) AsymmetryIndex() AsymmetryStats {
	return Asymmetry(toFloats(a.SubtreesEndCount()), func(x, y float64) float64 {
		if x == y {
			return 0
		}
		return math.Abs(x-y) / (x + y - 2)
	})
}

// CableAsymmetryIndex is the asymmetry of subtree cable lengths:
// |a-b| / (a+b), and 0 when a == b.
func (a *Arbor) CableAsymmetryIndex(positions map[NodeID]Point) AsymmetryStats {
	return Asymmetry(a.SubtreesCable(positions), ratioAsymmetry)
}

// LoadAsymmetryIndex is the asymmetry of subtree loads, such as input synapse
// counts: |a-b| / (a+b), and 0 when a == b.
func (a *Arbor) LoadAsymmetryIndex(load map[NodeID]int) AsymmetryStats {
	return Asymmetry(toFloats(a.SubtreesLoad(load)), ratioAsymmetry)
}

func ratioAsymmetry(x, y float64) float64 {
	if x == y {
		return 0
	}
	return math.Abs(x-y) / (x + y)
}

func toFloats(m map[NodeID][]int) map[NodeID][]float64 {
	out := make(map[NodeID][]float64, len(m))
	for node, counts := range m {
		fs := make([]float64, len(counts))
		for i, c := range counts {
			fs[i] = float64(c)
		}
		out[node] = fs
	}
	return out
}
