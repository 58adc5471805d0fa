// Package depgraph validates dependency graphs declared between task
// specifications before any of them exist in the store. Tasks reference
// each other through temp_ids, so the whole graph has to be checked up
// front: identifier integrity first, then reference validity, then cycle
// detection, and finally a topological creation order.
package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/taskcrusade/crusader/internal/domain"
)

// ResearchSpec is a research item attached to a task or campaign at
// creation time.
type ResearchSpec struct {
	Content string
	Type    string
}

// TaskSpec describes a task before it has an ID. Dependencies refer to
// the temp_ids of other specs in the same batch.
type TaskSpec struct {
	TempID             string
	Title              string
	Description        string
	Priority           string
	TaskType           string
	Tags               []string
	Dependencies       []string
	AcceptanceCriteria []string
	Research           []ResearchSpec
}

// CampaignSpec is a campaign plus the batch of tasks to create with it.
type CampaignSpec struct {
	Name        string
	Description string
	Priority    string
	Tasks       []TaskSpec
	Research    []ResearchSpec
}

// Validate checks a batch of task specs and, when the graph is sound,
// returns the temp_ids in a safe creation order (dependencies first) as
// the result data under "order".
func Validate(specs []TaskSpec) domain.Result {
	if errs := checkTempIDs(specs); len(errs) > 0 {
		return domain.ValidationError("Invalid task temp_ids", map[string]any{"errors": errs})
	}

	var errs []string
	errs = append(errs, checkReferences(specs)...)
	if len(errs) == 0 {
		errs = append(errs, findCycles(specs)...)
	}
	if len(errs) > 0 {
		return domain.ValidationError("Dependency validation failed", map[string]any{"errors": errs})
	}

	order, err := topologicalOrder(specs)
	if err != nil {
		return domain.ValidationError("Failed to determine task creation order", map[string]any{"reason": err.Error()})
	}
	return domain.OK(map[string]any{"order": order})
}

// checkTempIDs enforces that every spec carries a unique, non-empty
// temp_id. These errors short-circuit the rest of validation since the
// graph cannot be interpreted without stable identifiers.
func checkTempIDs(specs []TaskSpec) []string {
	var errs []string
	seen := make(map[string]bool, len(specs))
	for i, spec := range specs {
		if spec.TempID == "" {
			errs = append(errs, fmt.Sprintf("Task at index %d ('%s') missing required 'temp_id'", i, spec.Title))
			continue
		}
		if seen[spec.TempID] {
			errs = append(errs, fmt.Sprintf("Duplicate temp_id: '%s'", spec.TempID))
		}
		seen[spec.TempID] = true
	}
	return errs
}

// checkReferences collects every dependency that points at a temp_id not
// present in the batch. All bad references are reported, not just the
// first one.
func checkReferences(specs []TaskSpec) []string {
	valid := make(map[string]bool, len(specs))
	for _, spec := range specs {
		valid[spec.TempID] = true
	}
	available := make([]string, 0, len(specs))
	for id := range valid {
		available = append(available, id)
	}
	sort.Strings(available)

	var errs []string
	for _, spec := range specs {
		for _, dep := range spec.Dependencies {
			if !valid[dep] {
				errs = append(errs, fmt.Sprintf(
					"Task '%s' ('%s') depends on '%s' which doesn't exist. Available temp_ids: %s",
					spec.TempID, spec.Title, dep, quoteList(available)))
			}
		}
	}
	return errs
}

const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // fully explored
)

// findCycles runs a depth-first search over the dependency graph and
// reports the first cycle it encounters, reconstructed through the
// parent map so the message shows the full loop.
func findCycles(specs []TaskSpec) []string {
	titles := make(map[string]string, len(specs))
	deps := make(map[string][]string, len(specs))
	for _, spec := range specs {
		titles[spec.TempID] = spec.Title
		deps[spec.TempID] = spec.Dependencies
	}

	color := make(map[string]int, len(specs))
	parent := make(map[string]string, len(specs))

	var cycle []string
	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, dep := range deps[id] {
			switch color[dep] {
			case gray:
				// Walk the parent chain back to the repeated node.
				cycle = []string{dep}
				for cur := id; cur != dep; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, dep)
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return true
			case white:
				parent[dep] = id
				if visit(dep) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, spec := range specs {
		if color[spec.TempID] == white && visit(spec.TempID) {
			parts := make([]string, len(cycle))
			for i, id := range cycle {
				parts[i] = fmt.Sprintf("%s ('%s')", id, titles[id])
			}
			return []string{"Circular dependency detected: " + strings.Join(parts, " -> ")}
		}
	}
	return nil
}

// topologicalOrder computes a creation order via Kahn's algorithm.
// Nodes that become ready at the same time keep their input order, so
// independent tasks are created in the order the caller listed them.
func topologicalOrder(specs []TaskSpec) ([]string, error) {
	indegree := make(map[string]int, len(specs))
	dependents := make(map[string][]string, len(specs))
	position := make(map[string]int, len(specs))
	for i, spec := range specs {
		position[spec.TempID] = i
		if _, ok := indegree[spec.TempID]; !ok {
			indegree[spec.TempID] = 0
		}
		for _, dep := range spec.Dependencies {
			indegree[spec.TempID]++
			dependents[dep] = append(dependents[dep], spec.TempID)
		}
	}

	var queue []string
	for _, spec := range specs {
		if indegree[spec.TempID] == 0 {
			queue = append(queue, spec.TempID)
		}
	}

	order := make([]string, 0, len(specs))
	for len(queue) > 0 {
		sort.Slice(queue, func(i, j int) bool { return position[queue[i]] < position[queue[j]] })
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(specs) {
		return nil, fmt.Errorf("graph contains a cycle involving %d tasks", len(specs)-len(order))
	}
	return order, nil
}

// quoteList renders ids as ['a', 'b'] to match the format agents see in
// the rest of the error surface.
func quoteList(ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "'" + id + "'"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
