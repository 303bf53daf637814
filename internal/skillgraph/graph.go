package skillgraph

import (
	"fmt"
	"slices"
	"sort"
)

// Graph is an immutable, validated prerequisite DAG with precomputed indices.
type Graph struct {
	nodes      []Node
	byID       map[string]int
	dependents map[string][]string
	roots      []Node
	topoOrder  []Node
	byGrade    map[int][]Node
	bySubject  map[Subject][]Node
}

// New validates nodes and builds a graph from them. Declaration order is
// preserved and used wherever several nodes must be reported together.
func New(nodes []Node) (*Graph, error) {
	if err := validateNodes(nodes); err != nil {
		return nil, err
	}
	return buildGraph(nodes), nil
}

// MustNew is like New but panics on an invalid node set. It is meant for
// package-level seed data.
func MustNew(nodes []Node) *Graph {
	g, err := New(nodes)
	if err != nil {
		panic(err)
	}
	return g
}

func buildGraph(nodes []Node) *Graph {
	g := &Graph{
		nodes:      make([]Node, len(nodes)),
		byID:       make(map[string]int, len(nodes)),
		dependents: make(map[string][]string),
		byGrade:    make(map[int][]Node),
		bySubject:  make(map[Subject][]Node),
	}

	for i, n := range nodes {
		n.Prerequisites = slices.Clone(n.Prerequisites)
		g.nodes[i] = n
		g.byID[n.ID] = i
	}

	// Reverse edges, in declaration order of the dependent.
	for _, n := range g.nodes {
		for _, prereqID := range n.Prerequisites {
			g.dependents[prereqID] = append(g.dependents[prereqID], n.ID)
		}
		if n.IsEntry() {
			g.roots = append(g.roots, n)
		}
		g.byGrade[n.GradeLevel] = append(g.byGrade[n.GradeLevel], n)
		g.bySubject[n.Subject] = append(g.bySubject[n.Subject], n)
	}

	// Kahn's algorithm; ties broken by declaration order.
	inDegree := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		inDegree[n.ID] = len(n.Prerequisites)
	}
	var queue []int
	for i, n := range g.nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		g.topoOrder = append(g.topoOrder, g.nodes[i])

		var ready []int
		for _, depID := range g.dependents[g.nodes[i].ID] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				ready = append(ready, g.byID[depID])
			}
		}
		sort.Ints(ready)
		queue = append(queue, ready...)
	}

	return g
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// GetNode returns a node by ID, or an error if it is not in the graph.
func (g *Graph) GetNode(id string) (Node, error) {
	n, ok := g.Node(id)
	if !ok {
		return Node{}, fmt.Errorf("node not found: %q", id)
	}
	return n, nil
}

// Has reports whether id names a node in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Index returns the declaration position of id, or -1.
func (g *Graph) Index(id string) int {
	i, ok := g.byID[id]
	if !ok {
		return -1
	}
	return i
}

// Nodes returns all nodes in declaration order.
func (g *Graph) Nodes() []Node {
	return slices.Clone(g.nodes)
}

// Roots returns the entry nodes.
func (g *Graph) Roots() []Node {
	return slices.Clone(g.roots)
}

// TopologicalOrder returns all nodes so that every node follows its prerequisites.
func (g *Graph) TopologicalOrder() []Node {
	return slices.Clone(g.topoOrder)
}

// ByGrade returns the nodes for a grade level in declaration order.
func (g *Graph) ByGrade(grade int) []Node {
	return slices.Clone(g.byGrade[grade])
}

// Grades returns the grade levels present in the graph, ascending.
func (g *Graph) Grades() []int {
	grades := make([]int, 0, len(g.byGrade))
	for grade := range g.byGrade {
		grades = append(grades, grade)
	}
	sort.Ints(grades)
	return grades
}

// BySubject returns the nodes for a subject in declaration order.
func (g *Graph) BySubject(s Subject) []Node {
	return slices.Clone(g.bySubject[s])
}

// Prerequisites returns the direct prerequisite nodes of id.
func (g *Graph) Prerequisites(id string) []Node {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	result := make([]Node, 0, len(n.Prerequisites))
	for _, prereqID := range n.Prerequisites {
		if p, ok := g.Node(prereqID); ok {
			result = append(result, p)
		}
	}
	return result
}

// Dependents returns the nodes that list id as a direct prerequisite.
func (g *Graph) Dependents(id string) []Node {
	depIDs := g.dependents[id]
	result := make([]Node, 0, len(depIDs))
	for _, depID := range depIDs {
		if n, ok := g.Node(depID); ok {
			result = append(result, n)
		}
	}
	return result
}

// IsUnlocked returns true if every prerequisite of id is in the completed set.
func (g *Graph) IsUnlocked(id string, completed map[string]bool) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	for _, prereqID := range n.Prerequisites {
		if !completed[prereqID] {
			return false
		}
	}
	return true
}

// Available returns unlocked nodes that are not yet completed, in
// topological order.
func (g *Graph) Available(completed map[string]bool) []Node {
	var result []Node
	for _, n := range g.topoOrder {
		if !completed[n.ID] && g.IsUnlocked(n.ID, completed) {
			result = append(result, n)
		}
	}
	return result
}

// MissingPrerequisites lists the prerequisites of id that are not completed,
// in declaration order.
func (g *Graph) MissingPrerequisites(id string, completed map[string]bool) []string {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	var missing []string
	for _, prereqID := range n.Prerequisites {
		if !completed[prereqID] {
			missing = append(missing, prereqID)
		}
	}
	return missing
}

// TotalXP sums the XP reward of every node.
func (g *Graph) TotalXP() int {
	total := 0
	for _, n := range g.nodes {
		total += n.XPReward
	}
	return total
}
