package fsm

import (
	"unicode"

	"github.com/enetx/g"
)

// ToMermaid renders the machine as a Mermaid stateDiagram-v2. Transitions to
// None end in [*]; the current state is styled with the "current" class.
// Keys that are not valid Mermaid ids are declared with a generated id.
func (m *Machine[K, A, C, M]) ToMermaid() g.String {
	top := m.topology()
	ids := mermaidIDs(top.states)
	b := g.NewBuilder()

	b.WriteString("stateDiagram-v2\n")
	b.WriteString(g.Format("    [*] --> {}\n", ids[top.initial]))

	for state := range top.states.Iter() {
		if id := ids[state]; id != state {
			b.WriteString(g.Format("    state \"{}\" as {}\n", state, id))
		}
	}

	for e := range top.edges.Iter() {
		to := g.String("[*]")
		if !e.null {
			to = ids[e.to]
		}

		b.WriteString(g.Format("    {} --> {} : {}\n", ids[e.from], to, e.labels.Join(", ")))
	}

	if top.current.IsSome() {
		b.WriteString("    classDef current fill:#90ee90\n")
		b.WriteString(g.Format("    class {} current\n", ids[top.current.Some()]))
	}

	return b.String()
}

// mermaidIDs assigns every state a distinct Mermaid id. States that already
// are valid ids keep their name; the others get a sanitized name, suffixed
// with a counter when it is taken.
func mermaidIDs(states g.Slice[g.String]) map[g.String]g.String {
	ids := make(map[g.String]g.String, len(states))
	taken := g.NewSet[g.String]()

	for state := range states.Iter() {
		if mermaidID(state) == state {
			ids[state] = state
			taken.Insert(state)
		}
	}

	for state := range states.Iter() {
		if _, ok := ids[state]; ok {
			continue
		}

		base := mermaidID(state)
		id := base

		for n := 2; taken.Contains(id); n++ {
			id = g.Format("{}_{}", base, n)
		}

		ids[state] = id
		taken.Insert(id)
	}

	return ids
}

// mermaidID replaces every character Mermaid does not accept in a state id.
func mermaidID(s g.String) g.String {
	out := []rune(string(s))
	for i, r := range out {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			out[i] = '_'
		}
	}

	return g.String(out)
}
