package microgbt

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func baseParams() map[string]float64 {
	return map[string]float64{
		"lambda":         1.0,
		"shrinkage_rate": 0.5,
		"min_split_gain": 0,
		"min_tree_size":  1,
		"learning_rate":  1.0,
		"max_depth":      3,
		"metric":         0,
	}
}

func TestNewRejectsMissingRequiredKey(t *testing.T) {
	params := baseParams()
	delete(params, "lambda")
	if _, err := New(params); err == nil {
		t.Fatalf("expected InvalidConfig error for a missing lambda key")
	}
}

func TestNewRejectsOutOfRangeShrinkage(t *testing.T) {
	params := baseParams()
	params["shrinkage_rate"] = 0
	if _, err := New(params); err == nil {
		t.Fatalf("expected InvalidConfig error for shrinkage_rate == 0")
	}
}

func logisticDataset() (*mat.Dense, []float64) {
	x := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := []float64{0, 0, 1, 1}
	return x, y
}

// TestTrainDeterministic is P2 of spec.md §8.
func TestTrainDeterministic(t *testing.T) {
	x, y := logisticDataset()

	train := func() *GBT {
		model, err := New(baseParams(), WithWorkers(1))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := model.Train(x, y, x, y, 5, 5); err != nil {
			t.Fatalf("Train: %v", err)
		}
		return model
	}

	a, b := train(), train()
	if a.NumTrees() != b.NumTrees() {
		t.Fatalf("tree counts differ: %d vs %d", a.NumTrees(), b.NumTrees())
	}
	for i := range []float64{0, 1, 2, 3} {
		row := []float64{float64(i)}
		pa, err := a.Predict(row, 0)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		pb, err := b.Predict(row, 0)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if pa != pb {
			t.Errorf("row %d: predictions differ across identical training runs: %v vs %v", i, pa, pb)
		}
	}
}

// TestPredictTruncation is scenario 6 of spec.md §8.
func TestPredictTruncation(t *testing.T) {
	x, y := logisticDataset()
	model, err := New(baseParams(), WithWorkers(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := model.Train(x, y, x, y, 10, 100); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if model.NumTrees() != 10 {
		t.Fatalf("expected 10 trees, got %d", model.NumTrees())
	}

	row := []float64{1.5}
	sum3 := model.rawScore(row, 3)
	want3 := model.metric.ScoreToPrediction(sum3)
	got3, err := model.Predict(row, 3)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got3 != want3 {
		t.Errorf("Predict(x,3) = %v, want %v", got3, want3)
	}

	p0, err := model.Predict(row, 0)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	p10, err := model.Predict(row, 10)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if p0 != p10 {
		t.Errorf("Predict(x,0) = %v, want equal to Predict(x,10) = %v", p0, p10)
	}
}

// TestEarlyStopping is scenario 3 of spec.md §8 and P6 of §8.
func TestEarlyStopping(t *testing.T) {
	x, y := logisticDataset()
	model, err := New(baseParams(), WithWorkers(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	earlyStoppingRounds := 3
	if err := model.Train(x, y, x, y, 100, earlyStoppingRounds); err != nil {
		t.Fatalf("Train: %v", err)
	}

	if model.NumTrees() != 100 && model.NumTrees()-model.BestIteration()-1 < earlyStoppingRounds {
		t.Fatalf("training stopped without satisfying the early-stopping condition: trees=%d best=%d",
			model.NumTrees(), model.BestIteration())
	}
	if model.BestIteration() > 99 {
		t.Fatalf("best_iteration = %d, want <= 99", model.BestIteration())
	}
}

// TestRMSEConstantTargetCollapsesToZeroLeaf is scenario 2 of spec.md §8: with
// no regularisation and a full Newton step, the first tree fits the
// constant target exactly, so every later tree's gradient vector is zero
// and its best split gain is zero, collapsing it to a single zero-weight
// leaf.
func TestRMSEConstantTargetCollapsesToZeroLeaf(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := []float64{5, 5, 5, 5}

	params := map[string]float64{
		"lambda":         0,
		"shrinkage_rate": 1.0,
		"min_split_gain": 0,
		"min_tree_size":  1,
		"learning_rate":  1.0,
		"max_depth":      3,
		"metric":         1,
	}

	model, err := New(params, WithWorkers(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := model.Train(x, y, x, y, 3, 100); err != nil {
		t.Fatalf("Train: %v", err)
	}

	for i := 0; i < 4; i++ {
		p, err := model.Predict([]float64{x.At(i, 0)}, 0)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if math.Abs(p-5) > 1e-9 {
			t.Errorf("row %d: predicted %v, want 5 (constant target)", i, p)
		}
	}

	for u := 1; u < model.NumTrees(); u++ {
		root := model.trees[u].root
		if !root.isLeaf || root.weight != 0 {
			t.Errorf("tree %d: leaf=%v weight=%v, want a single leaf of weight 0", u, root.isLeaf, root.weight)
		}
	}
}
