package planner

import (
	"sort"
	"strings"

	dcerror "github.com/msto63/devcmd/foundation/core/error"
	"github.com/msto63/devcmd/internal/model"
)

// ArgumentError reports a request that the configuration cannot satisfy. It
// is always raised before any process is started.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

// Code classifies the error for exit status mapping.
func (e *ArgumentError) Code() dcerror.Code {
	return dcerror.CodeInvalidArgument
}

func argumentError(lines ...string) *ArgumentError {
	return &ArgumentError{Message: strings.Join(lines, "\n")}
}

// available lists every task and command name, sorted.
func available(cfg *model.Configuration) []string {
	tasks := make([]string, 0, len(cfg.Tasks))
	for _, t := range cfg.Tasks {
		tasks = append(tasks, t.Name)
	}
	commands := make([]string, 0, len(cfg.Commands))
	for _, c := range cfg.Commands {
		commands = append(commands, c.Name)
	}
	sort.Strings(tasks)
	sort.Strings(commands)
	return []string{
		"Available tasks: " + strings.Join(tasks, " "),
		"Available commands: " + strings.Join(commands, " "),
	}
}

// humanList joins names as "a", "a and b" or "a, b and c".
func humanList(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
