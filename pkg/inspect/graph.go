package inspect

// EdgeKind distinguishes ownership from back references.
type EdgeKind int

const (
	// EdgeContains links a tracked record to a tracked record nested in it.
	EdgeContains EdgeKind = iota
	// EdgeRef links a tracked record to the target of a $ref inside it.
	EdgeRef
)

func (k EdgeKind) String() string {
	if k == EdgeRef {
		return "ref"
	}
	return "contains"
}

// Node is a record that carries identity, or the root record.
type Node struct {
	Path    string `json:"path"`
	Type    string `json:"type"`
	ID      int64  `json:"id,omitempty"`
	Tracked bool   `json:"tracked"`
}

// Edge connects two nodes. Label is the path of the edge's origin
// relative to From, such as ".Children[0]".
type Edge struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Kind  EdgeKind `json:"kind"`
	Label string   `json:"label"`
}

// Graph is the identity graph of a document: nodes in document order,
// edges in the order they were met.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func (g *Graph) addNode(n Node) {
	g.Nodes = append(g.Nodes, n)
}

func (g *Graph) addEdge(e Edge) {
	g.Edges = append(g.Edges, e)
}

// Node returns the node at path.
func (g *Graph) Node(path string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Path == path {
			return n, true
		}
	}
	return Node{}, false
}

// Refs returns the reference edges.
func (g *Graph) Refs() []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Kind == EdgeRef {
			out = append(out, e)
		}
	}
	return out
}
