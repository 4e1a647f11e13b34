package microgbt

// SplitInfo describes one candidate binary split: which feature and
// threshold it uses, the gain it achieves, and the row-index partition (in
// the parent dataset's local index space) it induces.
//
// Grounded on original_source/src/trees/split_info.h and
// golang/extra_boost/ebl/find_the_best_split.go's BestSplit, simplified to
// microGBT's scalar-leaf split (no per-side weight vectors carried here;
// leaf weights are recomputed from g/h sums by TreeNode).
type SplitInfo struct {
	FeatureID int
	Threshold float64
	Gain      float64

	leftRows  []int
	rightRows []int
}

// LeftRows returns the parent-local row indices routed to the left child.
func (s SplitInfo) LeftRows() []int { return s.leftRows }

// RightRows returns the parent-local row indices routed to the right child.
func (s SplitInfo) RightRows() []int { return s.rightRows }

// SplitVec projects a length-NRows() vector (e.g. gradient or Hessian) onto
// one side of the split, in the same order as the corresponding Subset.
func (s SplitInfo) SplitVec(v []float64, side Side) []float64 {
	var ids []int
	if side == Left {
		ids = s.leftRows
	} else {
		ids = s.rightRows
	}
	out := make([]float64, len(ids))
	for i, id := range ids {
		out[i] = v[id]
	}
	return out
}
