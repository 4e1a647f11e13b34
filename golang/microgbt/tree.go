package microgbt

// Tree is one boosted regression tree: its root node and the shrinkage its
// leaf weights were scaled by. The other hyperparameters it was grown under
// (treeParams) are not kept. It exposes a builder-agnostic Score, so callers
// never need to know whether BuildStrategyRecursive or BuildStrategyBFS
// produced the underlying node tree.
//
// Grounded on golang/extra_boost/ebl/tree.go's OneTree (a thin wrapper
// around a node arena plus Score/DrawGraph), adapted to wrap a *TreeNode
// pointer tree instead of an index arena since microGBT keeps the
// pointer-based shape from golang/poisson_legacy/tree.go.
type Tree struct {
	root  *TreeNode
	shrinkage float64
}

// BuildStrategy selects which of the two equivalent tree-growing algorithms
// spec.md §4.5/§4.6 describes is used.
type BuildStrategy int

const (
	// BuildStrategyRecursive grows each node by rematerialising row subsets
	// top-down (buildTreeNode / Dataset.Subset).
	BuildStrategyRecursive BuildStrategy = iota
	// BuildStrategyBFS grows every node at a given depth before any node at
	// the next, threading a single ClassList vector instead of resorting
	// per node (buildTreeBFS).
	BuildStrategyBFS
)

// buildTree grows one Tree over dataset/g/h according to params and strategy.
func buildTree(dataset *Dataset, g, h []float64, params treeParams, shrinkage float64, strategy BuildStrategy) (*Tree, error) {
	var root *TreeNode
	var err error

	switch strategy {
	case BuildStrategyBFS:
		root, err = buildTreeBFS(dataset, g, h, params, shrinkage)
	default:
		root, err = buildTreeNode(dataset, g, h, params, shrinkage, 0)
	}
	if err != nil {
		return nil, err
	}

	return &Tree{root: root, shrinkage: shrinkage}, nil
}

// Score returns this tree's (already shrinkage-scaled) contribution to the
// raw ensemble score for one sample.
func (t *Tree) Score(x []float64) float64 {
	return t.root.Score(x)
}

// Depth returns the tree's maximum depth (0 for a tree that is a single leaf).
func (t *Tree) Depth() int {
	return t.root.Depth()
}
