package fsm_test

import (
	"errors"
	"iter"

	. "github.com/enetx/freefsm"
	"github.com/enetx/g"
)

type counter struct{ n int }

// cmd is the command type used by the tests. reply is written by the
// interpreter and read back by handlers.
type cmd struct {
	text  string
	reply int
}

type (
	machine    = Machine[string, string, *counter, *cmd]
	transition = Transition[string, string, *counter, *cmd]
	node       = Node[string, string, *counter, *cmd]
)

var errBoom = errors.New("boom")

func newTransition(action string) *transition {
	return NewTransition[string, string, *counter, *cmd](action)
}

// recorder returns an interpreter appending every command's text to out and
// replying with the number of commands seen so far.
func recorder(out *[]string) Interpreter[*cmd] {
	return func(cmds iter.Seq[*cmd]) error {
		for c := range cmds {
			*out = append(*out, c.text)
			c.reply = len(*out)
		}

		return nil
	}
}

func say(text string) Handler[*counter, *cmd] {
	return func(*counter) (iter.Seq[*cmd], error) {
		return Emit(&cmd{text: text}), nil
	}
}

// door builds the test topology:
//
//	closed --open(act)--> opened --close--> closed
//	closed --lock--> locked (terminal)
//	opened --vanish--> None
func door() g.Slice[*node] {
	open := newTransition("open").To("opened").Act(func(c *counter) (iter.Seq[*cmd], error) {
		c.n++
		return Emit(&cmd{text: "opened"}), nil
	})

	return g.Slice[*node]{
		NewNodeOf("closed", open, newTransition("lock").To("locked")),
		NewNodeOf("opened", newTransition("close").To("closed"), newTransition("vanish")),
		NewNodeOf[string, string, *counter, *cmd]("locked"),
	}
}

func newDoor(out *[]string) *machine {
	return NewOf(door(), "closed", recorder(out), &counter{})
}
