// Package graph records the resources produced during resolution and the
// consumers they were produced for, and renders the result as text or DOT.
package graph

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Node is one produced resource.
type Node struct {
	Key   string
	Scope string

	// Dependencies are the keys of the resources produced for this node,
	// in the order they were first produced.
	Dependencies []string
}

func (n *Node) String() string {
	if n.Scope == "" {
		return n.Key
	}
	return fmt.Sprintf("%s [%s]", n.Key, n.Scope)
}

// Graph is a concurrency-safe directed graph of produced resources.
type Graph struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	order    []string
	incoming map[string]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		incoming: make(map[string]int),
	}
}

// AddNode records key. Adding a known key only fills in a missing scope.
func (g *Graph) AddNode(key, scope string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNode(key, scope)
}

func (g *Graph) addNode(key, scope string) *Node {
	if n, ok := g.nodes[key]; ok {
		if n.Scope == "" {
			n.Scope = scope
		}
		return n
	}
	n := &Node{Key: key, Scope: scope}
	g.nodes[key] = n
	g.order = append(g.order, key)
	return n
}

// AddEdge records that to was produced for from. Both nodes are created as needed
// and repeated edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.addNode(from, "")
	g.addNode(to, "")
	for _, d := range n.Dependencies {
		if d == to {
			return
		}
	}
	n.Dependencies = append(n.Dependencies, to)
	g.incoming[to]++
}

// Node returns the node of key.
func (g *Graph) Node(key string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[key]
	return n, ok
}

// Size returns the number of nodes.
func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Roots returns the nodes nothing depends on, in insertion order.
func (g *Graph) Roots() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roots()
}

func (g *Graph) roots() []*Node {
	var roots []*Node
	for _, key := range g.order {
		if g.incoming[key] == 0 {
			roots = append(roots, g.nodes[key])
		}
	}
	return roots
}

// WriteText writes the graph as an indented tree below each root.
// A node reached again on the same path is marked and not expanded.
func (g *Graph) WriteText(w io.Writer) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var err error
	var walk func(n *Node, depth int, path map[string]bool)
	walk = func(n *Node, depth int, path map[string]bool) {
		if err != nil {
			return
		}
		line := strings.Repeat("  ", depth) + n.String()
		if path[n.Key] {
			_, err = fmt.Fprintln(w, line+" (cycle)")
			return
		}
		if _, err = fmt.Fprintln(w, line); err != nil {
			return
		}
		path[n.Key] = true
		for _, d := range n.Dependencies {
			walk(g.nodes[d], depth+1, path)
		}
		delete(path, n.Key)
	}

	for _, root := range g.roots() {
		walk(root, 0, make(map[string]bool))
	}
	return err
}

// WriteDOT writes the graph in Graphviz DOT format with stable node ids.
func (g *Graph) WriteDOT(w io.Writer) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var b strings.Builder
	b.WriteString("digraph resolution {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	ids := make(map[string]string, len(g.order))
	for i, key := range g.order {
		ids[key] = fmt.Sprintf("n%d", i)
		n := g.nodes[key]
		fmt.Fprintf(&b, "  %s [label=%q, fillcolor=%q, style=filled];\n", ids[key], n.String(), scopeColor(n.Scope))
	}

	for _, key := range g.order {
		deps := append([]string(nil), g.nodes[key].Dependencies...)
		sort.Strings(deps)
		for _, d := range deps {
			fmt.Fprintf(&b, "  %s -> %s;\n", ids[key], ids[d])
		}
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func scopeColor(scope string) string {
	switch scope {
	case "container", "application":
		return "lightblue"
	case "strand":
		return "lightyellow"
	case "injection":
		return "lightgreen"
	default:
		return "lightgray"
	}
}
