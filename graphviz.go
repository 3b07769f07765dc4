package fsm

import (
	"fmt"
	"strings"

	"github.com/enetx/g"
	"github.com/enetx/g/cmp"
)

// edge is one (from, to) pair of a diagram with the actions that connect them.
// A null edge ends in the null state and has an empty to.
type edge struct {
	from, to g.String
	null     bool
	labels   g.Slice[g.String]
}

// rank orders null edges after the others.
func (e edge) rank() int {
	if e.null {
		return 1
	}

	return 0
}

type edgeKey struct {
	from, to g.String
	null     bool
}

// topology is the diagram view of the node table shared by ToDOT and ToMermaid.
type topology struct {
	states   g.Slice[g.String]
	present  g.Set[g.String]
	terminal g.Set[g.String]
	edges    g.Slice[edge]
	initial  g.String
	current  g.Option[g.String]
	null     bool
}

// topology collects states and grouped edges in a stable order.
func (m *Machine[K, A, C, M]) topology() topology {
	top := topology{
		present:  g.NewSet[g.String](),
		terminal: g.NewSet[g.String](),
		initial:  keyName(m.initial),
		current:  g.None[g.String](),
	}

	if m.current.IsSome() {
		top.current = g.Some(keyName(m.current.Some()))
	}

	states := g.NewSet[g.String]()
	states.Insert(top.initial)

	grouped := make(map[edgeKey]g.Slice[g.String])

	for key, n := range m.nodes {
		from := keyName(key)
		states.Insert(from)
		top.present.Insert(from)

		if n.Terminal() {
			top.terminal.Insert(from)
		}

		for action, t := range n.transitions {
			pair := edgeKey{from: from, null: t.target.IsNone()}
			if t.target.IsSome() {
				pair.to = keyName(t.target.Some())
				states.Insert(pair.to)
			} else {
				top.null = true
			}

			label := g.String(fmt.Sprint(action))
			if t.act != nil {
				label += " (act)"
			}

			grouped[pair] = append(grouped[pair], label)
		}
	}

	top.states = states.ToSlice()
	top.states.SortBy(cmp.Cmp)

	for pair, labels := range grouped {
		labels.SortBy(cmp.Cmp)
		top.edges.Push(edge{from: pair.from, to: pair.to, null: pair.null, labels: labels})
	}

	top.edges.SortBy(func(a, b edge) cmp.Ordering {
		if c := cmp.Cmp(a.from, b.from); c != 0 {
			return c
		}

		if c := cmp.Cmp(a.rank(), b.rank()); c != 0 {
			return c
		}

		return cmp.Cmp(a.to, b.to)
	})

	return top
}

// reserve returns base, extended with underscores until it names no state.
func (top topology) reserve(base g.String) g.String {
	for top.states.Contains(base) {
		base += "_"
	}

	return base
}

// ToDOT generates a DOT language string representation of the machine for visualization.
func (m *Machine[K, A, C, M]) ToDOT() g.String {
	top := m.topology()
	b := g.NewBuilder()

	start, null, legend := top.reserve("__start"), top.reserve("__null"), top.reserve("key")

	b.WriteString("digraph FSM {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString(
		"  node [shape=circle, style=filled, fillcolor=\"#f8f8f8\", color=\"#444444\", fontname=\"Helvetica\"];\n",
	)
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	b.WriteString(g.Format("  \"{}\" [shape=point, style=invis];\n", dotQuote(start)))
	b.WriteString(g.Format("  \"{}\" -> \"{}\" [label=\" initial\"];\n\n", dotQuote(start), dotQuote(top.initial)))

	for state := range top.states.Iter() {
		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\"{}\"", dotQuote(state)))

		switch {
		case top.current.IsSome() && top.current.Some() == state:
			attrs.Push("fillcolor=\"#90ee90\"", "shape=doublecircle")
		case !top.present.Contains(state):
			attrs.Push("style=dashed", "fillcolor=\"#ffffff\"")
		case top.terminal.Contains(state):
			attrs.Push("fillcolor=\"#d3d3d3\"", "shape=doublecircle")
		}

		b.WriteString(g.Format("  \"{}\" [{}];\n", dotQuote(state), attrs.Join(", ")))
	}

	if top.null {
		b.WriteString(g.Format("  \"{}\" [shape=point, label=\"\"];\n", dotQuote(null)))
	}

	b.WriteByte('\n')

	for e := range top.edges.Iter() {
		label := e.labels.Join("\\n")

		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\" {} \"", dotQuote(label)))

		if label.Contains("(act)") {
			attrs.Push("color=\"#1f6feb\"", "penwidth=1.5")
		}

		to := e.to
		if e.null {
			to = null
		}

		b.WriteString(g.Format("  \"{}\" -> \"{}\" [{}];\n", dotQuote(e.from), dotQuote(to), attrs.Join(", ")))
	}

	b.WriteString("\n  subgraph cluster_legend {\n")
	b.WriteString("    label = \"Legend\";\n")
	b.WriteString("    style = dashed;\n")
	b.WriteString(g.Format("    \"{}\" [label=<", dotQuote(legend)))
	b.WriteString(`
      <table border="0" cellpadding="4" cellspacing="0" cellborder="0">
        <tr><td align="right">●</td><td>Regular state</td></tr>
        <tr><td align="right"><font color="green">◎</font></td><td>Current state</td></tr>
        <tr><td align="right"><font color="gray">◎</font></td><td>Terminal state</td></tr>
        <tr><td align="right">○</td><td>Missing node</td></tr>
        <tr><td align="right"><font color="blue">→</font></td><td>Transition with handler</td></tr>
      </table>
    >, shape=none];`)

	b.WriteString("\n  }\n")
	b.WriteString("}\n")

	return b.String()
}

func keyName[K any](key K) g.String { return g.String(fmt.Sprint(key)) }

func dotQuote(s g.String) string { return strings.ReplaceAll(string(s), `"`, `\"`) }
