package definition_test

import (
	"bytes"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/enetx/freefsm/definition"
	"github.com/enetx/freefsm/examples/toggler"
	"github.com/enetx/g"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const door = `
name: door
initial: closed
nodes:
  - key: closed
    transitions:
      - action: open
        to: opened
        handler: creak
      - action: lock
        to: locked
  - key: opened
    transitions:
      - action: close
        to: closed
      - action: vanish
  - key: locked
  - key: attic
`

func creak(n *int) (iter.Seq[string], error) {
	return func(yield func(string) bool) {
		*n++
		yield("creak")
	}, nil
}

func registry() definition.Registry[*int, string] {
	return definition.Registry[*int, string]{"creak": creak}
}

func TestParse(t *testing.T) {
	t.Parallel()

	d, err := definition.Parse([]byte(door))
	require.NoError(t, err)

	assert.Equal(t, "door", d.Name)
	assert.Equal(t, "closed", d.Initial)
	require.Len(t, d.Nodes, 4)
	assert.Equal(t, definition.Transition{Action: "open", To: "opened", Handler: "creak"}, d.Nodes[0].Transitions[0])
	assert.Equal(t, definition.Transition{Action: "vanish"}, d.Nodes[1].Transitions[1])
	assert.Empty(t, d.Nodes[2].Transitions)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		err  error
	}{
		{
			name: "missing initial",
			yaml: "nodes: [{key: a}]",
			err:  definition.ErrInitialRequired,
		},
		{
			name: "no nodes",
			yaml: "initial: a",
			err:  definition.ErrNodesRequired,
		},
		{
			name: "empty key",
			yaml: "initial: a\nnodes: [{key: a}, {key: ''}]",
			err:  definition.ErrNodeKeyRequired,
		},
		{
			name: "duplicate node",
			yaml: "initial: a\nnodes: [{key: a}, {key: a}]",
			err:  definition.ErrDuplicateNode,
		},
		{
			name: "initial not found",
			yaml: "initial: z\nnodes: [{key: a}]",
			err:  definition.ErrInitialNotFound,
		},
		{
			name: "empty action",
			yaml: "initial: a\nnodes: [{key: a, transitions: [{to: a}]}]",
			err:  definition.ErrActionRequired,
		},
		{
			name: "duplicate action",
			yaml: "initial: a\nnodes: [{key: a, transitions: [{action: x, to: a}, {action: x}]}]",
			err:  definition.ErrDuplicateAction,
		},
		{
			name: "unknown target",
			yaml: "initial: a\nnodes: [{key: a, transitions: [{action: x, to: b}]}]",
			err:  definition.ErrTargetNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := definition.Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := definition.Parse([]byte("nodes: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "door.yaml")
	require.NoError(t, os.WriteFile(path, []byte(door), 0o600))

	d, err := definition.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "door", d.Name)

	_, err = definition.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"defs/door.yaml": &fstest.MapFile{Data: []byte(door)}}

	d, err := definition.LoadFS(fsys, "defs/door.yaml")
	require.NoError(t, err)
	assert.Len(t, d.Nodes, 4)
}

func TestMarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	d, err := definition.Parse([]byte(door))
	require.NoError(t, err)

	data, err := d.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "handler: \"\"")

	again, err := definition.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, d, again)
}

func TestUnreachable(t *testing.T) {
	t.Parallel()

	d, err := definition.Parse([]byte(door))
	require.NoError(t, err)

	assert.Equal(t, g.Slice[string]{"attic"}, d.Unreachable())
}

func TestBuild(t *testing.T) {
	t.Parallel()

	d, err := definition.Parse([]byte(door))
	require.NoError(t, err)

	var (
		n   int
		out []string
	)

	interpret := func(cmds iter.Seq[string]) error {
		for c := range cmds {
			out = append(out, c)
		}

		return nil
	}

	m, err := definition.Build(d, registry(), interpret, &n)
	require.NoError(t, err)

	assert.Equal(t, "door", m.Name())
	assert.Equal(t, "closed", m.CurrentKey().Some())
	assert.Len(t, m.Nodes(), 4)

	require.NoError(t, m.Do("open"))
	assert.Equal(t, []string{"creak"}, out)
	assert.Equal(t, 1, n)

	require.NoError(t, m.Do("vanish"))
	assert.True(t, m.CurrentKey().IsNone())

	m.Reset()
	require.NoError(t, m.Do("lock"))
	assert.True(t, m.CurrentNode().Some().Terminal())
}

func TestBuild_UnknownHandler(t *testing.T) {
	t.Parallel()

	d, err := definition.Parse([]byte(door))
	require.NoError(t, err)

	_, err = definition.Build(d, definition.Registry[*int, string]{}, nil, new(int))
	require.ErrorIs(t, err, definition.ErrUnknownHandler)
	assert.Contains(t, err.Error(), "creak")
}

func TestBuild_RevalidatesEditedDefinition(t *testing.T) {
	t.Parallel()

	d, err := definition.Parse([]byte(door))
	require.NoError(t, err)

	d.Initial = "cellar"

	_, err = definition.Build(d, registry(), nil, new(int))
	require.ErrorIs(t, err, definition.ErrInitialNotFound)
}

func TestBuild_Toggler(t *testing.T) {
	t.Parallel()

	d, err := definition.Parse(toggler.Definition)
	require.NoError(t, err)

	var out bytes.Buffer

	console := toggler.NewConsole(strings.NewReader("7\n"), &out)
	m, err := definition.Build(d, toggler.Handlers(), console.Interpret, &toggler.Counter{})
	require.NoError(t, err)

	require.NoError(t, m.Do("Input"))
	for range 3 {
		require.NoError(t, m.Do("Toggle"))
	}

	assert.Equal(t, "Active", m.CurrentKey().Some())
	assert.Equal(t, 10, m.State().Accumulator)
	assert.Equal(t, "Input init counter handler\n"+
		"Inactive -> Active 8 times\n"+
		"Active -> Inactive 9 times\n"+
		"Inactive -> Active 10 times\n", out.String())

	// The built topology renders like the hand-written one.
	m.Reset()
	assert.Equal(t, string(toggler.New(nil).ToDOT()), string(m.ToDOT()))
	assert.Contains(t, string(m.ToMermaid()), "Inactive --> Active : Toggle (act)")
}
