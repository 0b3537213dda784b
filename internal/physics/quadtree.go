package physics

const (
	quadCapacity = 8
	quadMaxDepth = 8
)

// rect is an axis-aligned rectangle on the XZ plane.
type rect struct {
	X0, Z0 float32
	X1, Z1 float32
}

func (r rect) intersects(o rect) bool {
	return r.X0 <= o.X1 && r.X1 >= o.X0 && r.Z0 <= o.Z1 && r.Z1 >= o.Z0
}

func (r rect) contains(o rect) bool {
	return o.X0 >= r.X0 && o.X1 <= r.X1 && o.Z0 >= r.Z0 && o.Z1 <= r.Z1
}

type quadItem struct {
	tri    int
	bounds rect
}

// quadNode indexes triangle footprints so the ball only tests faces under it.
// Items that straddle a split stay in the parent.
type quadNode struct {
	bounds rect
	depth  int
	items  []quadItem
	child  [4]*quadNode
}

func newQuadNode(bounds rect, depth int) *quadNode {
	return &quadNode{
		bounds: bounds,
		depth:  depth,
		items:  make([]quadItem, 0, quadCapacity),
	}
}

// buildQuadTree indexes every triangle of the mesh.
func buildQuadTree(m *TriangleMesh) *quadNode {
	root := newQuadNode(rect{X0: m.min.X(), Z0: m.min.Z(), X1: m.max.X(), Z1: m.max.Z()}, 0)
	for i, t := range m.tris {
		root.insert(i, triangleRect(t))
	}
	return root
}

func (n *quadNode) insert(tri int, bounds rect) {
	if n.child[0] != nil {
		if c := n.childThatContains(bounds); c != nil {
			c.insert(tri, bounds)
			return
		}
	}

	n.items = append(n.items, quadItem{tri: tri, bounds: bounds})

	if len(n.items) > quadCapacity && n.depth < quadMaxDepth {
		n.subdivide()
		kept := n.items[:0]
		for _, it := range n.items {
			if c := n.childThatContains(it.bounds); c != nil {
				c.insert(it.tri, it.bounds)
			} else {
				kept = append(kept, it)
			}
		}
		n.items = kept
	}
}

// query appends the indices of triangles whose footprint overlaps r.
func (n *quadNode) query(r rect, out *[]int) {
	if !n.bounds.intersects(r) {
		return
	}
	for _, it := range n.items {
		if it.bounds.intersects(r) {
			*out = append(*out, it.tri)
		}
	}
	if n.child[0] == nil {
		return
	}
	for i := 0; i < 4; i++ {
		n.child[i].query(r, out)
	}
}

func (n *quadNode) subdivide() {
	if n.child[0] != nil {
		return
	}
	mx := (n.bounds.X0 + n.bounds.X1) * 0.5
	mz := (n.bounds.Z0 + n.bounds.Z1) * 0.5
	n.child[0] = newQuadNode(rect{X0: n.bounds.X0, Z0: n.bounds.Z0, X1: mx, Z1: mz}, n.depth+1)
	n.child[1] = newQuadNode(rect{X0: mx, Z0: n.bounds.Z0, X1: n.bounds.X1, Z1: mz}, n.depth+1)
	n.child[2] = newQuadNode(rect{X0: n.bounds.X0, Z0: mz, X1: mx, Z1: n.bounds.Z1}, n.depth+1)
	n.child[3] = newQuadNode(rect{X0: mx, Z0: mz, X1: n.bounds.X1, Z1: n.bounds.Z1}, n.depth+1)
}

func (n *quadNode) childThatContains(b rect) *quadNode {
	for i := 0; i < 4; i++ {
		c := n.child[i]
		if c != nil && c.bounds.contains(b) {
			return c
		}
	}
	return nil
}
