package microgbt

import (
	"fmt"
	"path"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// RenderTrees renders every tree in the ensemble to its own image file
// named "<dumpPrefix>_%05d.<figureType>" inside dir.
//
// Grounded on golang/extra_boost/ebl/tree.go's DrawGraph/recurrentDraw and
// golang/extra_boost/ebl/ebooster.go's RenderTrees, adapted from the
// teacher's flat []TreeNode node arena (indexed by TreeNodeId) to
// microGBT's pointer-based *TreeNode tree, walked directly instead of by
// index.
func (g *GBT) RenderTrees(dumpPrefix, figureType, dir string) error {
	format, ok := map[string]graphviz.Format{
		"png": graphviz.PNG,
		"svg": graphviz.SVG,
		"jpg": graphviz.JPG,
	}[figureType]
	if !ok {
		return newError(InvalidConfig, "unsupported figure type %q", figureType)
	}

	for idx, tree := range g.trees {
		gv, graph, err := drawTree(tree)
		if err != nil {
			return err
		}
		filename := fmt.Sprintf("%s_%05d.%s", dumpPrefix, idx, figureType)
		if err := gv.RenderFilename(graph, format, path.Join(dir, filename)); err != nil {
			return newError(InvalidConfig, "rendering tree %d: %v", idx, err)
		}
	}
	return nil
}

func drawTree(tree *Tree) (*graphviz.Graphviz, *cgraph.Graph, error) {
	gv := graphviz.New()
	graph, err := gv.Graph()
	if err != nil {
		return nil, nil, newError(InvalidConfig, "creating graph: %v", err)
	}

	nextID := 0
	var draw func(node *TreeNode, parent *cgraph.Node) error
	draw = func(node *TreeNode, parent *cgraph.Node) error {
		id := nextID
		nextID++

		current, err := graph.CreateNode(fmt.Sprint(id))
		if err != nil {
			return newError(InvalidConfig, "creating node %d: %v", id, err)
		}
		if parent != nil {
			if _, err := graph.CreateEdge("", parent, current); err != nil {
				return newError(InvalidConfig, "creating edge to node %d: %v", id, err)
			}
		}

		if node.isLeaf {
			current.Set("label", fmt.Sprintf("leaf\nweight=%.4g", node.weight))
			current.Set("shape", "box")
			return nil
		}

		current.Set("label", fmt.Sprintf("f[%d] < %.4g", node.featureID, node.threshold))
		if err := draw(node.left, current); err != nil {
			return err
		}
		return draw(node.right, current)
	}

	if err := draw(tree.root, nil); err != nil {
		return nil, nil, err
	}
	return gv, graph, nil
}
