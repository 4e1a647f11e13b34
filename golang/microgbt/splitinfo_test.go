package microgbt

import "testing"

func TestSplitVecProjectsOntoSide(t *testing.T) {
	split := SplitInfo{leftRows: []int{0, 2}, rightRows: []int{1, 3}}
	v := []float64{10, 20, 30, 40}

	left := split.SplitVec(v, Left)
	if len(left) != 2 || left[0] != 10 || left[1] != 30 {
		t.Fatalf("left projection = %v, want [10 30]", left)
	}

	right := split.SplitVec(v, Right)
	if len(right) != 2 || right[0] != 20 || right[1] != 40 {
		t.Fatalf("right projection = %v, want [20 40]", right)
	}
}

func TestLeftRightRowsPartitionParent(t *testing.T) {
	split := SplitInfo{leftRows: []int{0, 1}, rightRows: []int{2, 3}}
	seen := make(map[int]bool)
	for _, r := range append(append([]int{}, split.LeftRows()...), split.RightRows()...) {
		if seen[r] {
			t.Fatalf("row %d appears on both sides", r)
		}
		seen[r] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 distinct rows, got %d", len(seen))
	}
}
