package arbor

// PruneBareTerminalSegments removes every terminal segment that carries no
// load: the nodes from an end node up to, but excluding, the nearest branch
// node (or the root), provided none of them is present in load. It mutates
// the receiver and returns the number of removed nodes.
//
// Branch nodes are determined once before pruning, so a branch node left with
// a single child is not pruned in the same call.
func (a *Arbor) PruneBareTerminalSegments(load map[NodeID]int) int {
	be := a.FindBranchAndEndNodes()
	branches := make(map[NodeID]bool, len(be.Branches))
	for _, b := range be.Branches {
		branches[b] = true
	}

	removed := 0
	for _, end := range be.Ends {
		var path []NodeID
		bare := true
		for node := end; !branches[node] && node != a.root; node = a.edges[node] {
			if _, ok := load[node]; ok {
				bare = false
				break
			}
			path = append(path, node)
		}
		if !bare {
			continue
		}
		for _, node := range path {
			delete(a.edges, node)
		}
		removed += len(path)
	}
	return removed
}
