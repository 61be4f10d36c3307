package arbor_test

import (
	"fmt"

	"github.com/matzehuels/arbor/pkg/arbor"
)

func ExampleFromEdges() {
	// A soma (1) with a primary neurite (2) that splits in two.
	a, err := arbor.FromEdges([]arbor.Edge{
		{Child: 2, Parent: 1},
		{Child: 3, Parent: 2},
		{Child: 4, Parent: 2},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	root, _ := a.Root()
	fmt.Println("Root:", root)
	fmt.Println("Nodes:", a.CountNodes())
	fmt.Println("Ends:", a.FindEndNodes())
	fmt.Println("Branches:", a.FindBranchNodes())
	// Output:
	// Root: 1
	// Nodes: 4
	// Ends: [3 4]
	// Branches: [2]
}

func ExampleArbor_PartitionSorted() {
	a := arbor.New()
	a.AddPath([]arbor.NodeID{1, 2, 3, 4})
	a.AddPath([]arbor.NodeID{2, 5})

	for _, seq := range a.PartitionSorted() {
		fmt.Println(seq)
	}
	// Output:
	// [5 2]
	// [4 3 2 1]
}

func ExampleArbor_StrahlerAnalysis() {
	a := arbor.New()
	a.AddPath([]arbor.NodeID{1, 2, 3})
	a.AddPath([]arbor.NodeID{2, 4})
	a.AddPath([]arbor.NodeID{1, 5})

	fmt.Println(a.StrahlerAnalysis())
	// Output:
	// map[1:2 2:2 3:1 4:1 5:1]
}

func ExampleArbor_FlowCentrality() {
	a := arbor.New()
	a.AddPath([]arbor.NodeID{1, 2, 3})
	a.AddPath([]arbor.NodeID{2, 4})

	// One input at 3, one output at 4: the flow runs through the
	// edges joining 3 and 4 to their parent 2.
	flow, ok := a.FlowCentrality(
		map[arbor.NodeID]int{4: 1},
		map[arbor.NodeID]int{3: 1},
	)
	fmt.Println(ok, flow)

	_, ok = a.FlowCentrality(map[arbor.NodeID]int{4: 1}, nil)
	fmt.Println(ok)
	// Output:
	// true map[1:0 2:0 3:1 4:1]
	// false
}

func ExampleArbor_SpanningTree() {
	a := arbor.New()
	a.AddPath([]arbor.NodeID{1, 2, 3, 4})
	a.AddPath([]arbor.NodeID{2, 5, 6})

	sub, _ := a.SpanningTree([]arbor.NodeID{4, 6})
	root, _ := sub.Root()
	fmt.Println("Root:", root)
	fmt.Println("Nodes:", sub.Nodes())
	// Output:
	// Root: 4
	// Nodes: [2 3 4 5 6]
}
