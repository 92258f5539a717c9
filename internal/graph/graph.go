// Package graph maintains the dependency DAG: forward (predecessor ->
// successors) and reverse (successor -> predecessors) adjacency, cycle
// detection, and topological ordering with insertion-order tie-breaks so
// the CPM solver is deterministic.
package graph

import (
	"fmt"

	"project-scheduler/internal/core"
)

// Edge is a minimal view of a Dependency for graph purposes.
type Edge struct {
	PredecessorID string
	SuccessorID   string
}

// Graph is rebuilt from scratch after any edge mutation; it owns no state
// beyond the two adjacency maps and the insertion order used for
// deterministic tie-breaks.
type Graph struct {
	forward map[string][]string // predecessor -> successors, in insertion order
	reverse map[string][]string // successor -> predecessors, in insertion order
	order   []string            // activity ids in insertion order
	index   map[string]int      // activity id -> position in order
}

// Build constructs a Graph from the full activity id list (in insertion
// order, for deterministic topological tie-breaks) and the current edges.
func Build(activityIDs []string, edges []Edge) *Graph {
	g := &Graph{
		forward: make(map[string][]string, len(activityIDs)),
		reverse: make(map[string][]string, len(activityIDs)),
		order:   append([]string(nil), activityIDs...),
		index:   make(map[string]int, len(activityIDs)),
	}
	for i, id := range activityIDs {
		g.index[id] = i
	}
	for _, e := range edges {
		g.forward[e.PredecessorID] = append(g.forward[e.PredecessorID], e.SuccessorID)
		g.reverse[e.SuccessorID] = append(g.reverse[e.SuccessorID], e.PredecessorID)
	}
	return g
}

// Predecessors returns the ids of activities that must precede id.
func (g *Graph) Predecessors(id string) []string {
	return g.reverse[id]
}

// Successors returns the ids of activities that must follow id.
func (g *Graph) Successors(id string) []string {
	return g.forward[id]
}

// WouldCreateCycle reports whether adding newEdge to the graph would create
// a cycle, via a DFS from the proposed successor looking for a path back to
// the proposed predecessor. On a cycle it also returns the offending path
// (predecessor -> ... -> successor -> ... -> predecessor) for diagnostics.
func (g *Graph) WouldCreateCycle(newEdge Edge) (bool, []string) {
	visited := make(map[string]bool)
	var path []string

	var visit func(id string) bool
	visit = func(id string) bool {
		if id == newEdge.PredecessorID {
			path = append(path, id)
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		path = append(path, id)
		for _, next := range g.forward[id] {
			if visit(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if visit(newEdge.SuccessorID) {
		full := append([]string{newEdge.PredecessorID}, path...)
		return true, full
	}
	return false, nil
}

// DetectCycle runs a full recursion-stack DFS cycle check over the current
// graph (ignoring any proposed new edge) and returns the offending path, if
// any.
func (g *Graph) DetectCycle() (bool, []string) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.order))
	var cyclePath []string

	var visit func(id string, path []string) bool
	visit = func(id string, path []string) bool {
		color[id] = gray
		path = append(path, id)
		for _, next := range g.forward[id] {
			switch color[next] {
			case gray:
				// Found the back edge; trim path to start at next.
				start := 0
				for i, p := range path {
					if p == next {
						start = i
						break
					}
				}
				cyclePath = append(append([]string(nil), path[start:]...), next)
				return true
			case white:
				if visit(next, path) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.order {
		if color[id] == white {
			if visit(id, nil) {
				return true, cyclePath
			}
		}
	}
	return false, nil
}

// TopologicalOrder returns a topological sort of the graph's activities,
// breaking ties by original insertion order so the result is deterministic
// regardless of map iteration order. Returns a *core.CycleError if the graph
// is not acyclic.
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		inDegree[id] = 0
	}
	for _, id := range g.order {
		for _, succ := range g.forward[id] {
			inDegree[succ]++
		}
	}

	// A simple priority queue keyed by insertion index, implemented as a
	// linear scan: the activity counts here are small enough (bounded by a
	// single project's activity list) that this stays well within the
	// O(|V|+|E|) budget in practice while keeping the tie-break trivial to
	// reason about.
	remaining := make(map[string]bool, len(g.order))
	for _, id := range g.order {
		remaining[id] = true
	}

	var result []string
	for len(result) < len(g.order) {
		next := ""
		for _, id := range g.order {
			if !remaining[id] || inDegree[id] != 0 {
				continue
			}
			next = id
			break
		}
		if next == "" {
			ok, path := g.DetectCycle()
			if ok {
				return nil, &core.CycleError{Path: path}
			}
			return nil, &core.CycleError{Path: nil}
		}
		result = append(result, next)
		delete(remaining, next)
		for _, succ := range g.forward[next] {
			inDegree[succ]--
		}
	}
	return result, nil
}

// ReverseTopologicalOrder returns the activities in reverse topological
// order, used by the CPM solver's backward pass.
func (g *Graph) ReverseTopologicalOrder() ([]string, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	reversed := make([]string, len(order))
	for i, id := range order {
		reversed[len(order)-1-i] = id
	}
	return reversed, nil
}

// ValidateEndpoints returns an error if an edge references unknown or equal
// endpoints. validate.Dependency makes its own endpoint checks and does not
// call it.
func ValidateEndpoints(e Edge, knownIDs map[string]bool) error {
	if e.PredecessorID == e.SuccessorID {
		return fmt.Errorf("dependency cannot link activity %q to itself", e.PredecessorID)
	}
	if !knownIDs[e.PredecessorID] {
		return &core.NotFoundError{Kind: "activity", ID: e.PredecessorID}
	}
	if !knownIDs[e.SuccessorID] {
		return &core.NotFoundError{Kind: "activity", ID: e.SuccessorID}
	}
	return nil
}
