package kdtree

import (
	"fmt"

	"github.com/hupe1980/vecml/sampleset"
)

// NodeSnapshot is the persisted form of a tree node. Child indices refer to
// Snapshot.Nodes; -1 marks a missing child.
type NodeSnapshot struct {
	Sample  int     `json:"sample"`
	Dim     int     `json:"dim"`
	Split   float64 `json:"split"`
	Smaller int     `json:"smaller"`
	Larger  int     `json:"larger"`
}

// Snapshot is the persisted form of a Tree.
type Snapshot struct {
	Features int            `json:"features"`
	Samples  []float64      `json:"samples"`
	Nodes    []NodeSnapshot `json:"nodes"`
	Root     int            `json:"root"`
}

// Snapshot captures the tree for persistence.
func (t *Tree) Snapshot() Snapshot {
	nodes := make([]NodeSnapshot, len(t.nodes))
	for i, n := range t.nodes {
		nodes[i] = NodeSnapshot{
			Sample:  n.sample,
			Dim:     n.dim,
			Split:   n.split,
			Smaller: n.smaller,
			Larger:  n.larger,
		}
	}
	return Snapshot{
		Features: t.samples.Features(),
		Samples:  append([]float64(nil), t.samples.Data()...),
		Nodes:    nodes,
		Root:     t.root,
	}
}

// FromSnapshot rebuilds a tree, validating all indices and the tree shape.
func FromSnapshot(s Snapshot) (*Tree, error) {
	samples, err := sampleset.FromData(s.Samples, s.Features)
	if err != nil {
		return nil, err
	}
	if len(s.Nodes) == 0 {
		return &Tree{samples: samples, root: nilNode}, nil
	}

	check := func(ref int) bool { return ref == nilNode || (ref >= 0 && ref < len(s.Nodes)) }
	if !check(s.Root) || s.Root == nilNode {
		return nil, fmt.Errorf("kdtree: invalid root %d", s.Root)
	}

	nodes := make([]node, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.Sample < 0 || n.Sample >= samples.Len() {
			return nil, fmt.Errorf("kdtree: node %d references sample %d of %d", i, n.Sample, samples.Len())
		}
		if n.Dim < 0 || n.Dim >= s.Features {
			return nil, fmt.Errorf("kdtree: node %d splits dimension %d of %d", i, n.Dim, s.Features)
		}
		if !check(n.Smaller) || !check(n.Larger) {
			return nil, fmt.Errorf("kdtree: node %d has invalid children", i)
		}
		nodes[i] = node{
			sample:  n.Sample,
			dim:     n.Dim,
			split:   n.Split,
			smaller: n.Smaller,
			larger:  n.Larger,
		}
	}

	if err := checkShape(nodes, s.Root, samples.Len()); err != nil {
		return nil, err
	}
	return &Tree{samples: samples, nodes: nodes, root: s.Root}, nil
}

// checkShape verifies that nodes form a single tree under root that holds
// every sample exactly once. Search recurses along child links, so a cycle
// or a shared subtree must never get past loading.
func checkShape(nodes []node, root, samples int) error {
	if len(nodes) != samples {
		return fmt.Errorf("kdtree: %d nodes for %d samples", len(nodes), samples)
	}
	visited := make([]bool, len(nodes))
	seen := make([]bool, samples)
	stack := []int{root}
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ni == nilNode {
			continue
		}
		if visited[ni] {
			return fmt.Errorf("kdtree: node %d is reachable twice", ni)
		}
		visited[ni] = true
		n := nodes[ni]
		if seen[n.sample] {
			return fmt.Errorf("kdtree: sample %d is stored twice", n.sample)
		}
		seen[n.sample] = true
		stack = append(stack, n.smaller, n.larger)
	}
	for i, ok := range visited {
		if !ok {
			return fmt.Errorf("kdtree: node %d is unreachable", i)
		}
	}
	return nil
}
