package microgbt

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBuildTreeAppliesShrinkage(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{1})
	y := []float64{0}
	d, err := NewDataset(x, y)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}

	lambda := 0.0
	params := treeParams{lambda: lambda, minSplitGain: 0, minTreeSize: 1, maxDepth: 1, splitter: NewExactGreedySplitter(lambda, 1)}

	g, h := []float64{-4}, []float64{2}
	unshrunk := -g[0] / (h[0] + lambda)

	tree, err := buildTree(d, g, h, params, 0.5, BuildStrategyRecursive)
	if err != nil {
		t.Fatalf("buildTree: %v", err)
	}
	if got, want := tree.Score([]float64{1}), unshrunk*0.5; got != want {
		t.Fatalf("Score = %v, want %v", got, want)
	}
}

func TestBuildTreeStrategiesAgree(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := []float64{0, 0, 1, 1}
	d, err := NewDataset(x, y)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	g := []float64{-1, -1, 1, 1}
	h := []float64{1, 1, 1, 1}

	lambda := 1.0
	params := treeParams{lambda: lambda, minSplitGain: 0, minTreeSize: 1, maxDepth: 2, splitter: NewExactGreedySplitter(lambda, 1)}

	recursive, err := buildTree(d, g, h, params, 1.0, BuildStrategyRecursive)
	if err != nil {
		t.Fatalf("buildTree (recursive): %v", err)
	}
	bfs, err := buildTree(d, g, h, params, 1.0, BuildStrategyBFS)
	if err != nil {
		t.Fatalf("buildTree (bfs): %v", err)
	}

	for i := 0; i < 4; i++ {
		row := d.Row(i)
		if recursive.Score(row) != bfs.Score(row) {
			t.Errorf("row %d: recursive=%v bfs=%v", i, recursive.Score(row), bfs.Score(row))
		}
	}
	if recursive.Depth() != bfs.Depth() {
		t.Errorf("depth mismatch: recursive=%d bfs=%d", recursive.Depth(), bfs.Depth())
	}
}
