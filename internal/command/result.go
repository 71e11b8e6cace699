package command

import (
	"errors"
	"fmt"
)

// Kind classifies a failed command.
type Kind string

const (
	KindAgentNotFound  Kind = "AGENT_NOT_FOUND"
	KindUnknownCommand Kind = "UNKNOWN_COMMAND"
	KindBadParams      Kind = "BAD_PARAMS"
	KindInternal       Kind = "INTERNAL"
)

var (
	ErrAgentNotFound  = errors.New("agent not found")
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadParams      = errors.New("bad params")
	ErrInternal       = errors.New("internal error")
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of one command. It is what the HTTP layer serializes.
type Result struct {
	Status  string `json:"status"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the command was applied.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Err converts a failed result back into an error matching one of the
// package sentinels. Returns nil for a successful result.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s", kindErr(r.Kind), r.Message)
}

func success() Result {
	return Result{Status: StatusSuccess}
}

// failure builds an error result from an error wrapping one of the sentinels.
// Anything else is reported as INTERNAL.
func failure(err error) Result {
	return Result{
		Status:  StatusError,
		Kind:    errKind(err),
		Message: err.Error(),
	}
}

func errKind(err error) Kind {
	switch {
	case errors.Is(err, ErrAgentNotFound):
		return KindAgentNotFound
	case errors.Is(err, ErrUnknownCommand):
		return KindUnknownCommand
	case errors.Is(err, ErrBadParams):
		return KindBadParams
	default:
		return KindInternal
	}
}

func kindErr(k Kind) error {
	switch k {
	case KindAgentNotFound:
		return ErrAgentNotFound
	case KindUnknownCommand:
		return ErrUnknownCommand
	case KindBadParams:
		return ErrBadParams
	default:
		return ErrInternal
	}
}
