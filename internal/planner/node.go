package planner

import (
	"fmt"
	"strings"

	"github.com/msto63/devcmd/internal/model"
)

// Node is one element of an execution plan: an *Exec, a *Serial or a
// *Parallel.
type Node interface {
	node()
}

// Exec launches a single command.
type Exec struct {
	Command *model.Command

	// Target is the name of the top-level command or task this launch
	// belongs to; the reporter uses it as the line prefix.
	Target string

	// Args is the final argv: interpreter substitution and extra args
	// applied.
	Args []string

	// Env is the complete child environment in "key=value" form.
	Env []string

	Dir string
}

// Serial runs its steps strictly in order.
type Serial struct {
	// Name is the task name, or empty for an anonymous nested list.
	Name  string
	Steps []Node
}

// Parallel launches its members concurrently and waits for all of them.
type Parallel struct {
	Members []Node
}

func (*Exec) node()     {}
func (*Serial) node()   {}
func (*Parallel) node() {}

// Name returns the command name.
func (e *Exec) Name() string {
	return e.Command.Name
}

func (e *Exec) String() string {
	return strings.Join(e.Args, " ")
}

// Describe renders a node the way lifecycle messages refer to it.
func Describe(n Node) string {
	switch v := n.(type) {
	case *Exec:
		return v.Name()
	case *Serial:
		if v.Name != "" {
			return v.Name
		}
		return fmt.Sprintf("%d serial steps", len(v.Steps))
	case *Parallel:
		return fmt.Sprintf("%d parallel steps", len(v.Members))
	default:
		return ""
	}
}

// Execs returns every command launch under n in depth-first, left-to-right
// order.
func Execs(n Node) []*Exec {
	var out []*Exec
	walk(n, func(e *Exec) { out = append(out, e) })
	return out
}

func walk(n Node, fn func(*Exec)) {
	switch v := n.(type) {
	case *Exec:
		fn(v)
	case *Serial:
		for _, s := range v.Steps {
			walk(s, fn)
		}
	case *Parallel:
		for _, m := range v.Members {
			walk(m, fn)
		}
	}
}
