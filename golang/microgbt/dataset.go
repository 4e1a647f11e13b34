package microgbt

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Dataset owns a design matrix X and a target vector y, restricted to a
// subset of rows, plus a per-feature permutation that sorts that subset by
// feature value. X and y are shared by reference across a whole training
// run; only the row-index list and the sorted-index table are local to a
// given Dataset value.
//
// Grounded on golang/extra_boost/ebl/ematrix.go's EMatrix (shared *mat.Dense
// plus a RecordIds row-index list) and on original_source/src/dataset.h,
// simplified to microGBT's single feature matrix.
type Dataset struct {
	x    *mat.Dense
	y    []float64
	rows []int // rows[i] is the original row index of local row i

	sortedIdx [][]int // sortedIdx[j][i] is the local row index of the i-th smallest value of feature j
}

// NewDataset builds a Dataset over the whole matrix X and target y, sorting
// every feature column once. O(S*F*log S).
func NewDataset(x *mat.Dense, y []float64) (*Dataset, error) {
	if x == nil {
		return nil, newError(InvalidShape, "nil design matrix")
	}
	h, _ := x.Dims()
	if h != len(y) {
		return nil, newError(InvalidShape, "X has %d rows but y has %d entries", h, len(y))
	}
	if h == 0 {
		return nil, newError(DegenerateDataset, "empty design matrix")
	}

	rows := make([]int, h)
	for i := range rows {
		rows[i] = i
	}

	d := &Dataset{x: x, y: append([]float64(nil), y...), rows: rows}
	d.sortColumns()
	return d, nil
}

func (d *Dataset) sortColumns() {
	_, w := d.x.Dims()
	n := len(d.rows)
	d.sortedIdx = make([][]int, w)
	for j := 0; j < w; j++ {
		perm := make([]int, n)
		for i := range perm {
			perm[i] = i
		}
		col := d.x.ColView(j)
		sort.SliceStable(perm, func(a, b int) bool {
			return col.AtVec(d.rows[perm[a]]) < col.AtVec(d.rows[perm[b]])
		})
		d.sortedIdx[j] = perm
	}
}

// NRows returns the number of rows in the current subset.
func (d *Dataset) NRows() int { return len(d.rows) }

// NFeatures returns the number of feature columns.
func (d *Dataset) NFeatures() int {
	_, w := d.x.Dims()
	return w
}

// Row returns the i-th row (in the current subset) of the design matrix.
func (d *Dataset) Row(i int) []float64 {
	_, w := d.x.Dims()
	row := make([]float64, w)
	mat.Row(row, d.rows[i], d.x)
	return row
}

// At returns feature j of local row i.
func (d *Dataset) At(i, j int) float64 {
	return d.x.At(d.rows[i], j)
}

// YProjected returns the y values for the current row subset.
func (d *Dataset) YProjected() []float64 {
	out := make([]float64, len(d.rows))
	for i, r := range d.rows {
		out[i] = d.y[r]
	}
	return out
}

// SortedColumn returns the permutation P_j for feature j over the current
// row subset: Row(SortedColumn(j)[i])[j] is non-decreasing in i.
func (d *Dataset) SortedColumn(j int) []int {
	return d.sortedIdx[j]
}

// Side identifies which partition of a split a derived Dataset belongs to.
type Side int

const (
	// Left holds rows with X[r,featureID] < threshold.
	Left Side = iota
	// Right holds rows with X[r,featureID] >= threshold.
	Right
)

// Subset derives a child Dataset restricted to one side of a split. The
// child shares X and y by reference; it owns its own row-index list and
// recomputes per-column sort permutations over just that list.
func (d *Dataset) Subset(split SplitInfo, side Side) *Dataset {
	var localIDs []int
	if side == Left {
		localIDs = split.leftRows
	} else {
		localIDs = split.rightRows
	}

	rows := make([]int, len(localIDs))
	for i, local := range localIDs {
		rows[i] = d.rows[local]
	}

	child := &Dataset{x: d.x, y: d.y, rows: rows}
	child.sortColumns()
	return child
}
