// Package depgraph computes dependency orderings for table creation and
// seed-data application.
package depgraph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is wrapped by Order when the graph cannot be ordered.
var ErrCycle = errors.New("dependency cycle detected")

// Graph holds named nodes and their dependencies. Order emits every added
// node after all of its added dependencies; dependencies that were never
// added are assumed to exist already and are skipped.
type Graph struct {
	nodes map[string][]string
}

func New() *Graph {
	return &Graph{nodes: make(map[string][]string)}
}

func (g *Graph) Add(name string, deps ...string) {
	g.nodes[name] = append(g.nodes[name], deps...)
}

// Order returns a dependency-first ordering via depth-first visit.
// Self-references are ignored; any other cycle returns ErrCycle naming an
// involved node. Roots are visited in sorted order so the result is
// deterministic.
func (g *Graph) Order() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []string

	var visit func(string) error
	visit = func(name string) error {
		if temp[name] {
			return fmt.Errorf("%w involving %s", ErrCycle, name)
		}
		if visited[name] {
			return nil
		}

		temp[name] = true
		for _, dep := range g.nodes[name] {
			if dep == name {
				continue
			}
			if _, known := g.nodes[dep]; !known {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		temp[name] = false

		visited[name] = true
		order = append(order, name)
		return nil
	}

	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
