package textindex

import "github.com/wudi/pdfengine/coords"

// maxDepth stops subdivision when many boxes share one spot.
const maxDepth = 12

// quadTree is a spatial index of char boxes keyed by char index.
type quadTree struct {
	bounds   coords.Box
	capacity int
	depth    int
	items    []item
	nodes    []*quadTree
}

type item struct {
	box   coords.Box
	index int
}

func newQuadTree(bounds coords.Box, capacity int) *quadTree {
	return &quadTree{bounds: bounds, capacity: capacity}
}

func (qt *quadTree) insert(box coords.Box, index int) bool {
	if !qt.bounds.Intersects(box) {
		return false
	}
	if qt.nodes != nil {
		for _, node := range qt.nodes {
			if node.bounds.ContainsBox(box) && node.insert(box, index) {
				return true
			}
		}
		// Straddles a split line, so it stays here.
		qt.items = append(qt.items, item{box, index})
		return true
	}
	if len(qt.items) < qt.capacity || qt.depth >= maxDepth {
		qt.items = append(qt.items, item{box, index})
		return true
	}
	qt.subdivide()
	old := qt.items
	qt.items = nil
	for _, it := range old {
		qt.insert(it.box, it.index)
	}
	return qt.insert(box, index)
}

func (qt *quadTree) subdivide() {
	b := qt.bounds
	xMid := (b.LLX + b.URX) / 2
	yMid := (b.LLY + b.URY) / 2
	child := func(box coords.Box) *quadTree {
		return &quadTree{bounds: box, capacity: qt.capacity, depth: qt.depth + 1}
	}
	qt.nodes = []*quadTree{
		child(coords.Box{LLX: b.LLX, LLY: yMid, URX: xMid, URY: b.URY}),
		child(coords.Box{LLX: xMid, LLY: yMid, URX: b.URX, URY: b.URY}),
		child(coords.Box{LLX: b.LLX, LLY: b.LLY, URX: xMid, URY: yMid}),
		child(coords.Box{LLX: xMid, LLY: b.LLY, URX: b.URX, URY: yMid}),
	}
}

// query appends the indexes of every box touching area.
func (qt *quadTree) query(area coords.Box, found []int) []int {
	if !qt.bounds.Intersects(area) {
		return found
	}
	for _, it := range qt.items {
		if it.box.Intersects(area) {
			found = append(found, it.index)
		}
	}
	for _, node := range qt.nodes {
		found = node.query(area, found)
	}
	return found
}
