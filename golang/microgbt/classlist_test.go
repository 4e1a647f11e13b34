package microgbt

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestBFSBuilderMatchesRecursiveBuilder checks the equivalence spec.md §4.6
// claims: for the same inputs and tie-breaks, the BFS and recursive
// builders produce trees with identical predictions.
func TestBFSBuilderMatchesRecursiveBuilder(t *testing.T) {
	x := mat.NewDense(8, 2, []float64{
		1, 8,
		2, 7,
		3, 6,
		4, 5,
		5, 4,
		6, 3,
		7, 2,
		8, 1,
	})
	y := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	d, err := NewDataset(x, y)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}

	g := []float64{-1, -1, -1, -1, 1, 1, 1, 1}
	h := make([]float64, 8)
	for i := range h {
		h[i] = 1
	}

	lambda := 1.0
	params := defaultParams(NewExactGreedySplitter(lambda, 1), lambda, 0, 1, 3)

	recursive, err := buildTreeNode(d, g, h, params, 1.0, 0)
	if err != nil {
		t.Fatalf("buildTreeNode: %v", err)
	}
	bfs, err := buildTreeBFS(d, g, h, params, 1.0)
	if err != nil {
		t.Fatalf("buildTreeBFS: %v", err)
	}

	for i := 0; i < d.NRows(); i++ {
		row := d.Row(i)
		want, got := recursive.Score(row), bfs.Score(row)
		if math.Abs(want-got) > 1e-9 {
			t.Errorf("row %d: recursive score %v, BFS score %v", i, want, got)
		}
	}
}

func TestBFSBuilderSingleRowDegeneracy(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{7})
	y := []float64{0}
	d, err := NewDataset(x, y)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}

	g, h := []float64{-2}, []float64{4}
	lambda := 1.0
	params := defaultParams(NewExactGreedySplitter(lambda, 1), lambda, 0, 1, 3)

	root, err := buildTreeBFS(d, g, h, params, 1.0)
	if err != nil {
		t.Fatalf("buildTreeBFS: %v", err)
	}
	if !root.isLeaf {
		t.Fatalf("a single-row dataset must build exactly one leaf")
	}
	want := -g[0] / (h[0] + lambda)
	if math.Abs(root.weight-want) > 1e-12 {
		t.Errorf("leaf weight = %v, want %v", root.weight, want)
	}
}
