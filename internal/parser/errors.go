package parser

import (
	"fmt"
	"regexp"
	"strconv"

	dcerror "github.com/msto63/devcmd/foundation/core/error"
)

// SchemaError reports structurally invalid configuration. Path names the
// offending key, e.g. "commands.fmt.args" or "tasks.ci[1][0]".
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid configuration at %s: %s", e.Path, e.Message)
}

// Code classifies the error for exit status mapping.
func (e *SchemaError) Code() dcerror.Code {
	return dcerror.CodeInvalidConfig
}

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// keyPath builds diagnostic key paths, quoting keys the way TOML would.
type keyPath string

func (p keyPath) key(k string) keyPath {
	if !bareKey.MatchString(k) {
		k = strconv.Quote(k)
	}
	if p == "" {
		return keyPath(k)
	}
	return keyPath(string(p) + "." + k)
}

func (p keyPath) index(i int) keyPath {
	return keyPath(fmt.Sprintf("%s[%d]", p, i))
}

func (p keyPath) errorf(format string, args ...any) *SchemaError {
	return &SchemaError{Path: string(p), Message: fmt.Sprintf(format, args...)}
}
