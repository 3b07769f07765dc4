package fsm

import "github.com/enetx/g"

// StateMachine is the surface shared by Machine and SyncMachine.
type StateMachine[K, A comparable, C, M any] interface {
	Do(action A) error
	CurrentKey() g.Option[K]
	CurrentNode() g.Option[*Node[K, A, C, M]]
	State() C
	Nodes() g.Map[K, *Node[K, A, C, M]]
	SetNodes(nodes g.Map[K, *Node[K, A, C, M]])
	SetCurrentKey(key g.Option[K])
	Reset()
	History() g.Slice[g.Option[K]]
	ToDOT() g.String
	ToMermaid() g.String
}

// Interface compliance checks.
var (
	_ StateMachine[string, string, any, any] = (*Machine[string, string, any, any])(nil)
	_ StateMachine[string, string, any, any] = (*SyncMachine[string, string, any, any])(nil)
)
