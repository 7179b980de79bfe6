package ordering

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidVertex   = errors.New("invalid vertex")
	ErrDuplicateVertex = errors.New("duplicate vertex")
	ErrUnsupported     = errors.New("unsupported graph operation")
	ErrCycleFound      = errors.New("cycle detected")
)

// GraphError wraps structural graph failures.
type GraphError struct {
	Kind error
	Msg  string
	// Cycle lists the identities along a detected cycle, first == last.
	Cycle []string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func graphErrorf(kind error, format string, args ...any) error {
	return &GraphError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	msg := "cycle"
	if len(path) > 0 {
		msg = strings.Join(path, " -> ")
	}
	return &GraphError{Kind: ErrCycleFound, Msg: msg, Cycle: path}
}
