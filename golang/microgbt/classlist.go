package microgbt

// ClassList is the SLIQ-style per-sample bookkeeping structure used by the
// breadth-first tree builder: instead of recursively rematerialising a
// per-node row subset (as buildTreeNode/Dataset.Subset does), it threads a
// single "current leaf id" vector over the whole training subset and walks
// every feature's *global* sorted order once per depth.
//
// Grounded on original_source/src/trees/class_list.h, generalized from its
// std::set-based left-candidate bookkeeping to the plain running-sum
// bookkeeping spec.md §4.6 describes.
type ClassList struct {
	nodeOf []int // nodeOf[i] is the id of the leaf sample i currently belongs to
}

// NewClassList initialises every sample as belonging to the root leaf (id 0).
func NewClassList(n int) *ClassList {
	return &ClassList{nodeOf: make([]int, n)}
}

// leafAccum holds the running state the breadth-first builder tracks for one
// currently-open leaf during a single depth's processing.
type leafAccum struct {
	totalG, totalH float64
	size           int

	bestFound     bool
	bestGain      float64
	bestFeature   int
	bestThreshold float64
	bestLeftG     float64
	bestLeftH     float64
	bestLeftSize  int

	// running state for whichever feature is currently being scanned
	leftG, leftH float64
	leftSize     int
	haveValue    bool
	lastValue    float64
}

// bfsNode is one entry of the node arena the breadth-first builder produces;
// it is converted to a *TreeNode tree once every depth has been processed.
type bfsNode struct {
	isLeaf    bool
	weight    float64
	featureID int
	threshold float64
	left      int
	right     int
}

// buildTreeBFS grows a full tree breadth-first: it decides every node at
// depth d before any node at depth d+1, using one pass per depth and one
// scan per feature over the dataset's global per-feature sort order rather
// than a per-node column re-sort. With min_tree_size == 1 it produces the
// same tree as buildTreeNode for the same inputs and tie-breaks. With
// min_tree_size > 1 the two can differ: this builder only records splits
// whose two sides each hold at least min_tree_size samples, while
// buildTreeNode takes ExactGreedySplitter's best split without checking the
// size of either side.
func buildTreeBFS(dataset *Dataset, g, h []float64, params treeParams, shrinkage float64) (*TreeNode, error) {
	n := dataset.NRows()
	classList := NewClassList(n)

	nodes := []bfsNode{{}} // root, id 0
	open := map[int]bool{0: true}

	for depth := 0; ; depth++ {
		if len(open) == 0 {
			break
		}

		accum := make(map[int]*leafAccum, len(open))
		for id := range open {
			accum[id] = &leafAccum{}
		}
		for i := 0; i < n; i++ {
			id := classList.nodeOf[i]
			if a, ok := accum[id]; ok {
				a.totalG += g[i]
				a.totalH += h[i]
				a.size++
			}
		}

		forceLeaf := depth >= params.maxDepth
		if !forceLeaf {
			for j := 0; j < dataset.NFeatures(); j++ {
				for id := range accum {
					accum[id].leftG, accum[id].leftH, accum[id].leftSize = 0, 0, 0
					accum[id].haveValue = false
				}

				perm := dataset.SortedColumn(j)
				for _, i := range perm {
					id := classList.nodeOf[i]
					a, ok := accum[id]
					if !ok {
						continue
					}

					v := dataset.At(i, j)
					if a.haveValue && v != a.lastValue {
						a.considerSplit(j, v, params)
					}

					a.leftG += g[i]
					a.leftH += h[i]
					a.leftSize++
					a.lastValue = v
					a.haveValue = true
				}
			}
		}

		var nextOpen []int
		for id := range open {
			a := accum[id]

			shouldSplit := !forceLeaf && a.size > params.minTreeSize && a.bestFound &&
				a.bestGain >= params.minSplitGain

			if !shouldSplit {
				w, err := leafFromSums(a.totalG, a.totalH, params.lambda)
				if err != nil {
					return nil, err
				}
				nodes[id].isLeaf = true
				nodes[id].weight = w * shrinkage
				continue
			}

			leftID := len(nodes)
			nodes = append(nodes, bfsNode{})
			rightID := len(nodes)
			nodes = append(nodes, bfsNode{})

			nodes[id].featureID = a.bestFeature
			nodes[id].threshold = a.bestThreshold
			nodes[id].left = leftID
			nodes[id].right = rightID

			leftAccum := &leafAccum{totalG: a.bestLeftG, totalH: a.bestLeftH, size: a.bestLeftSize}
			rightAccum := &leafAccum{totalG: a.totalG - a.bestLeftG, totalH: a.totalH - a.bestLeftH, size: a.size - a.bestLeftSize}
			accum[leftID] = leftAccum
			accum[rightID] = rightAccum
			nextOpen = append(nextOpen, leftID, rightID)

			for i := 0; i < n; i++ {
				if classList.nodeOf[i] != id {
					continue
				}
				if dataset.At(i, a.bestFeature) < a.bestThreshold {
					classList.nodeOf[i] = leftID
				} else {
					classList.nodeOf[i] = rightID
				}
			}
		}

		open = make(map[int]bool, len(nextOpen))
		for _, id := range nextOpen {
			open[id] = true
		}
	}

	return toTreeNode(nodes, 0), nil
}

// considerSplit evaluates the candidate boundary just before the value
// change from a.lastValue to v: everything accumulated so far in this
// feature's scan goes left, v is the first right-side value. Grounded on
// the same tie-skip idea as ExactGreedySplitter.bestSplitForFeature, applied
// per leaf instead of per node.
func (a *leafAccum) considerSplit(feature int, v float64, params treeParams) {
	rightSize := a.size - a.leftSize
	if a.leftSize < params.minTreeSize || rightSize < params.minTreeSize {
		return
	}
	gain := splitGain(a.totalG, a.totalH, a.leftG, a.leftH, params.lambda)
	if gain <= 0 {
		return
	}
	if a.bestFound && gain <= a.bestGain {
		return
	}
	a.bestFound = true
	a.bestGain = gain
	a.bestFeature = feature
	a.bestThreshold = v
	a.bestLeftG = a.leftG
	a.bestLeftH = a.leftH
	a.bestLeftSize = a.leftSize
}

func leafFromSums(sumG, sumH, lambda float64) (float64, error) {
	denom := sumH + lambda
	if denom <= 0 {
		return 0, newError(NumericalInstability, "hessian denominator %.6g is not strictly positive", denom)
	}
	return -sumG / denom, nil
}

// toTreeNode converts the flat bfsNode arena into the *TreeNode shape shared
// with the recursive builder, so Tree.Score doesn't need to know which
// builder produced a given tree.
func toTreeNode(nodes []bfsNode, id int) *TreeNode {
	n := nodes[id]
	if n.isLeaf {
		return &TreeNode{isLeaf: true, weight: n.weight}
	}
	return &TreeNode{
		featureID: n.featureID,
		threshold: n.threshold,
		left:      toTreeNode(nodes, n.left),
		right:     toTreeNode(nodes, n.right),
	}
}
