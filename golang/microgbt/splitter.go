package microgbt

// Splitter finds the best (feature, threshold) split of a Dataset given its
// current gradient and Hessian vectors.
//
// Grounded on original_source/src/trees/splitter.h /
// numerical_splliter.h, and on golang/extra_boost/ebl/tree.go's
// TheBestSplit (per-feature scan with an optional worker pool). The
// histogram-binned variant in histogram.go implements the same interface.
type Splitter interface {
	FindBestSplit(dataset *Dataset, g, h []float64) (SplitInfo, error)
}

// ExactGreedySplitter scans, for each feature, the cumulative gradient and
// Hessian sums over the feature's sorted order and picks the split with
// maximum gain (spec.md §4.4).
type ExactGreedySplitter struct {
	Lambda  float64
	Workers int
}

// NewExactGreedySplitter builds an ExactGreedySplitter. workers <= 1 disables
// per-feature parallelism.
func NewExactGreedySplitter(lambda float64, workers int) *ExactGreedySplitter {
	return &ExactGreedySplitter{Lambda: lambda, Workers: workers}
}

func objective(g, h, lambda float64) float64 {
	return (g * g) / (h + lambda)
}

// splitGain is the regularised objective reduction of replacing a leaf with
// two children holding (G_l, H_l) and (G-G_l, H-H_l). spec.md §9 fixes the
// XGBoost convention (gradient = p - y) and drops the historical /2 factor
// on the parent term that appears in original_source/src/trees/numerical_splliter.h.
func splitGain(g, h, gl, hl, lambda float64) float64 {
	return objective(gl, hl, lambda) + objective(g-gl, h-hl, lambda) - objective(g, h, lambda)
}

// FindBestSplit implements the Splitter contract. It returns a
// DegenerateDataset error only when the dataset has 1 or fewer rows;
// otherwise it always returns the argmax split, even when its gain is <= 0
// (the caller — buildTreeNode — decides whether to accept it).
func (s *ExactGreedySplitter) FindBestSplit(dataset *Dataset, g, h []float64) (SplitInfo, error) {
	n := dataset.NRows()
	if n <= 1 {
		return SplitInfo{}, newError(DegenerateDataset, "cannot split a node with %d rows", n)
	}

	numFeatures := dataset.NFeatures()
	candidates := make([]SplitInfo, numFeatures)
	found := make([]bool, numFeatures)

	parallelFor(numFeatures, s.Workers, func(j int) {
		split, ok := s.bestSplitForFeature(dataset, g, h, j)
		candidates[j] = split
		found[j] = ok
	})

	bestIdx := -1
	for j := 0; j < numFeatures; j++ {
		if !found[j] {
			continue
		}
		if bestIdx == -1 || candidates[j].Gain > candidates[bestIdx].Gain {
			bestIdx = j
		}
	}

	if bestIdx == -1 {
		// Every feature was constant over this row subset: no valid
		// threshold exists anywhere. Report the largest sample as a
		// zero-gain split on feature 0 so callers uniformly reject it as
		// a non-positive-gain split rather than special-casing "no
		// candidate".
		perm := dataset.SortedColumn(0)
		return SplitInfo{FeatureID: 0, Threshold: dataset.At(perm[n-1], 0), Gain: 0,
			leftRows: perm[:n-1], rightRows: perm[n-1:]}, nil
	}

	return candidates[bestIdx], nil
}

func (s *ExactGreedySplitter) bestSplitForFeature(dataset *Dataset, g, h []float64, j int) (SplitInfo, bool) {
	n := dataset.NRows()
	perm := dataset.SortedColumn(j)

	gTot, hTot := 0.0, 0.0
	for _, idx := range perm {
		gTot += g[idx]
		hTot += h[idx]
	}

	best := SplitInfo{}
	found := false
	gl, hl := 0.0, 0.0

	for i := 0; i < n-1; i++ {
		gl += g[perm[i]]
		hl += h[perm[i]]

		if dataset.At(perm[i], j) == dataset.At(perm[i+1], j) {
			// No valid threshold separates equal feature values; skip
			// (grounded on golang/poisson_legacy/split.go's
			// selectTheBestSplit, which skips runs of equal values the
			// same way).
			continue
		}

		gain := splitGain(gTot, hTot, gl, hl, s.Lambda)
		if !found || gain > best.Gain {
			found = true
			best = SplitInfo{
				FeatureID: j,
				Threshold: dataset.At(perm[i+1], j),
				Gain:      gain,
				leftRows:  append([]int(nil), perm[:i+1]...),
				rightRows: append([]int(nil), perm[i+1:]...),
			}
		}
	}

	return best, found
}
