package skillgraph

import (
	"fmt"
	"strings"
)

// validateNodes performs all structural checks on the given node set.
// Returns a combined error describing all problems found, or nil if valid.
func validateNodes(nodes []Node) error {
	var errs []string

	if len(nodes) == 0 {
		return fmt.Errorf("skill graph validation failed: no nodes")
	}

	idSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			errs = append(errs, "node with empty ID")
			continue
		}
		if idSet[n.ID] {
			errs = append(errs, fmt.Sprintf("duplicate node ID: %q", n.ID))
		}
		idSet[n.ID] = true
	}

	for _, n := range nodes {
		if n.XPReward < 0 {
			errs = append(errs, fmt.Sprintf("node %q has negative XP reward %d", n.ID, n.XPReward))
		}
		seen := make(map[string]bool, len(n.Prerequisites))
		for _, prereqID := range n.Prerequisites {
			if !idSet[prereqID] {
				errs = append(errs, fmt.Sprintf("node %q references nonexistent prerequisite %q", n.ID, prereqID))
			}
			if prereqID == n.ID {
				errs = append(errs, fmt.Sprintf("node %q lists itself as a prerequisite", n.ID))
			}
			if seen[prereqID] {
				errs = append(errs, fmt.Sprintf("node %q lists prerequisite %q twice", n.ID, prereqID))
			}
			seen[prereqID] = true
		}
	}

	// Cycle check (Kahn's algorithm). Only edges to known nodes count so a
	// dangling prerequisite is reported once, above.
	inDegree := make(map[string]int, len(nodes))
	adjList := make(map[string][]string)
	for _, n := range nodes {
		for _, prereqID := range n.Prerequisites {
			if idSet[prereqID] {
				inDegree[n.ID]++
				adjList[prereqID] = append(adjList[prereqID], n.ID)
			}
		}
	}

	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	visited := make(map[string]bool, len(nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		for _, depID := range adjList[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if len(visited) < len(idSet) {
		var cycleNodes []string
		for _, n := range nodes {
			if inDegree[n.ID] > 0 && !visited[n.ID] {
				cycleNodes = append(cycleNodes, n.ID)
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving nodes: %s", strings.Join(cycleNodes, ", ")))
	}

	hasRoot := false
	for _, n := range nodes {
		if n.IsEntry() {
			hasRoot = true
			break
		}
	}
	if !hasRoot {
		errs = append(errs, "no entry nodes found (at least one node must have no prerequisites)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("skill graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
