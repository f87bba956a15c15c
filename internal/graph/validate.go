package graph

import (
	"fmt"
	"strings"
)

// StructuralError reports a proposed mutation that would break a graph
// invariant. It carries every violation found, and no state is changed
// when one is returned.
type StructuralError struct {
	Violations []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("graph validation failed:\n  %s", strings.Join(e.Violations, "\n  "))
}

// validateUnits performs all structural checks on the given unit set:
// non-empty unique ids, referential closure of dependencies, acyclicity.
// Returns a *StructuralError describing every problem found, or nil.
func validateUnits(units []Unit) error {
	var errs []string

	idSet := make(map[string]bool, len(units))
	for _, u := range units {
		if u.ID == "" {
			errs = append(errs, "unit with empty id")
			continue
		}
		if strings.Contains(u.ID, "/") {
			errs = append(errs, fmt.Sprintf("unit id %q contains reserved character '/'", u.ID))
		}
		if idSet[u.ID] {
			errs = append(errs, fmt.Sprintf("duplicate unit id: %q", u.ID))
		}
		idSet[u.ID] = true
	}

	for _, u := range units {
		for _, dep := range u.Dependencies {
			if !idSet[dep] {
				errs = append(errs, fmt.Sprintf("unit %q references nonexistent dependency %q", u.ID, dep))
			}
			if dep == u.ID {
				errs = append(errs, fmt.Sprintf("unit %q depends on itself", u.ID))
			}
		}
	}

	// Cycle check via Kahn's algorithm: any node never reaching
	// in-degree zero sits on a cycle.
	inDegree := make(map[string]int, len(units))
	adjList := make(map[string][]string)
	for _, u := range units {
		inDegree[u.ID] = len(u.Dependencies)
		for _, dep := range u.Dependencies {
			adjList[dep] = append(adjList[dep], u.ID)
		}
	}

	var queue []string
	for _, u := range units {
		if inDegree[u.ID] == 0 {
			queue = append(queue, u.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range adjList[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visited < len(units) {
		var cycleNodes []string
		for _, u := range units {
			if inDegree[u.ID] > 0 {
				cycleNodes = append(cycleNodes, u.ID)
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving units: %s", strings.Join(cycleNodes, ", ")))
	}

	if len(errs) > 0 {
		return &StructuralError{Violations: errs}
	}
	return nil
}
