package arbor

// AmountFunc returns the amount contributed by the edge between parent and
// child, such as 1 for node counts or the cable length of the edge.
type AmountFunc func(parent, child NodeID) float64

// DownstreamAmount returns, for every node, the sum of amountFn over every
// edge strictly downstream of it. End nodes get 0 and the root gets the global
// total.
//
// Partitions are walked from shortest to longest. Each walk carries a running
// total upward and adds the totals already recorded at merge points, so every
// edge is evaluated once.
//
// If normalize is true every value is divided by the root's value; when that
// total is 0 the values are returned unnormalized.
func (a *Arbor) DownstreamAmount(amountFn AmountFunc, normalize bool) map[NodeID]float64 {
	values := make(map[NodeID]float64, a.CountNodes())
	if !a.hasRoot {
		return values
	}
	values[a.root] = 0

	for _, seq := range a.PartitionSorted() {
		child := seq[0]
		values[child] = 0
		val := 0.0
		for _, paren := range seq[1:] {
			val += amountFn(paren, child) + values[paren]
			values[paren] = val
			child = paren
		}
	}

	if total := values[a.root]; normalize && total != 0 {
		for node := range values {
			values[node] /= total
		}
	}
	return values
}

// StrahlerAnalysis assigns every node its Strahler order. End nodes have
// order 1. A node whose children share the same maximum order m on two or more
// children has order m+1; otherwise it inherits the maximum child order. A
// single-node arbor assigns its root order 1.
func (a *Arbor) StrahlerAnalysis() map[NodeID]int {
	strahler := make(map[NodeID]int, a.CountNodes())
	succ := a.AllSuccessors()
	for _, node := range a.postorder(succ) {
		children := succ[node]
		if len(children) == 0 {
			strahler[node] = 1
			continue
		}
		best, count := 0, 0
		for _, c := range children {
			switch order := strahler[c]; {
			case order > best:
				best, count = order, 1
			case order == best:
				count++
			}
		}
		if count > 1 {
			best++
		}
		strahler[node] = best
	}
	return strahler
}
