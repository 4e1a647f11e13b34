package microgbt

// TreeNode is a node of a regression tree. It is either a leaf, carrying a
// single scalar weight, or internal, carrying a (feature, threshold) split
// and two children it exclusively owns.
//
// Grounded on original_source/src/trees/treenode.h; the recursive
// build/score shape follows golang/poisson_legacy/tree.go's plain
// *TreeNode with explicit error returns rather than the teacher's
// panic-on-shape-mismatch style in golang/extra_boost/ebl/tree.go.
type TreeNode struct {
	isLeaf bool
	weight float64

	featureID int
	threshold float64
	left      *TreeNode
	right     *TreeNode
}

// treeParams collects the regularisation constants and the splitter that one
// tree build uses. The resulting Tree does not keep them.
type treeParams struct {
	lambda       float64
	minSplitGain float64
	minTreeSize  int
	maxDepth     int
	splitter     Splitter
}

func leafWeight(g, h []float64, lambda float64) (float64, error) {
	sumG, sumH := 0.0, 0.0
	for i := range g {
		sumG += g[i]
		sumH += h[i]
	}
	denom := sumH + lambda
	if denom <= 0 {
		return 0, newError(NumericalInstability, "hessian denominator %.6g is not strictly positive", denom)
	}
	return -sumG / denom, nil
}

// buildTreeNode grows one node (and, recursively, its subtree) over
// dataset/g/h at the given depth. shrinkage scales the leaf weight before
// it is added to the ensemble.
func buildTreeNode(dataset *Dataset, g, h []float64, params treeParams, shrinkage float64, depth int) (*TreeNode, error) {
	node := &TreeNode{}

	makeLeaf := func() error {
		w, err := leafWeight(g, h, params.lambda)
		if err != nil {
			return err
		}
		node.isLeaf = true
		node.weight = w * shrinkage
		return nil
	}

	if depth >= params.maxDepth || dataset.NRows() <= params.minTreeSize {
		return node, makeLeaf()
	}

	best, err := params.splitter.FindBestSplit(dataset, g, h)
	if err != nil {
		return nil, err
	}

	if best.Gain <= 0 || best.Gain < params.minSplitGain {
		return node, makeLeaf()
	}

	leftDataset := dataset.Subset(best, Left)
	rightDataset := dataset.Subset(best, Right)

	leftG, leftH := best.SplitVec(g, Left), best.SplitVec(h, Left)
	rightG, rightH := best.SplitVec(g, Right), best.SplitVec(h, Right)

	node.featureID = best.FeatureID
	node.threshold = best.Threshold

	node.left, err = buildTreeNode(leftDataset, leftG, leftH, params, shrinkage, depth+1)
	if err != nil {
		return nil, err
	}
	node.right, err = buildTreeNode(rightDataset, rightG, rightH, params, shrinkage, depth+1)
	if err != nil {
		return nil, err
	}

	return node, nil
}

// Score routes a sample down the tree and returns the resulting leaf
// weight.
func (n *TreeNode) Score(x []float64) float64 {
	if n.isLeaf {
		return n.weight
	}
	if x[n.featureID] < n.threshold {
		return n.left.Score(x)
	}
	return n.right.Score(x)
}

// Depth returns the maximum depth reached below this node (0 for a leaf).
func (n *TreeNode) Depth() int {
	if n.isLeaf {
		return 0
	}
	ld, rd := n.left.Depth(), n.right.Depth()
	if ld > rd {
		return ld + 1
	}
	return rd + 1
}
