// Package command validates external commands and applies them to agents.
package command

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/sarsim/internal/agent"
	"github.com/udisondev/sarsim/internal/model"
	"github.com/udisondev/sarsim/internal/world"
)

// Command names accepted by Execute.
const (
	Scout          = "scout"
	Monitor        = "monitor"
	GoTo           = "goto"
	Return         = "return"
	StopMonitoring = "stop_monitoring"
)

// World is the part of the simulation the dispatcher mutates.
type World interface {
	WithAgent(id string, fn func(model.Agent) error) (found bool, err error)
	Rules() agent.Rules
	Emit(world.Event)
}

// Dispatcher applies commands to agents.
type Dispatcher struct {
	world World
}

// NewDispatcher creates a dispatcher bound to w.
func NewDispatcher(w World) *Dispatcher {
	return &Dispatcher{world: w}
}

// Execute applies command to the agent with agentID.
//
// It never panics: every failure, including a panic while applying the
// command, is reported as an error Result.
func (d *Dispatcher) Execute(agentID, command string, params Params) (res Result) {
	command = strings.ToLower(strings.TrimSpace(command))

	defer func() {
		if r := recover(); r != nil {
			slog.Error("command panicked",
				"agent", agentID,
				"command", command,
				"panic", r)
			res = failure(fmt.Errorf("%w: applying %s to %s: %v", ErrInternal, command, agentID, r))
		}
	}()

	apply, err := d.resolve(command, params)
	if err != nil {
		// A missing agent takes precedence over a malformed command.
		found, _ := d.world.WithAgent(agentID, func(model.Agent) error { return nil })
		if !found {
			return failure(fmt.Errorf("%w: %s", ErrAgentNotFound, agentID))
		}
		return failure(err)
	}

	var pos model.Position
	found, err := d.world.WithAgent(agentID, func(a model.Agent) error {
		pos = a.Base().Position()
		return apply(a)
	})
	if !found {
		return failure(fmt.Errorf("%w: %s", ErrAgentNotFound, agentID))
	}
	if err != nil {
		slog.Warn("command rejected",
			"agent", agentID,
			"command", command,
			"err", err)
		return failure(err)
	}

	slog.Debug("command applied", "agent", agentID, "command", command)
	d.world.Emit(world.Event{
		Kind:     world.EventCommand,
		AgentID:  agentID,
		Position: pos,
		Detail:   describe(command, params),
	})

	return success()
}

type applyFunc func(model.Agent) error

// resolve validates command and its params and returns the mutation to apply
// under the world lock.
func (d *Dispatcher) resolve(command string, params Params) (applyFunc, error) {
	rules := d.world.Rules()

	switch command {
	case Scout:
		return func(a model.Agent) error {
			if err := agent.Scout(a, rules); err != nil {
				return fmt.Errorf("%w: %v", ErrInternal, err)
			}
			return nil
		}, nil

	case Monitor:
		p, err := params.Position()
		if err != nil {
			return nil, err
		}
		return func(a model.Agent) error {
			agent.Monitor(a, p)
			return nil
		}, nil

	case GoTo:
		p, err := params.Position()
		if err != nil {
			return nil, err
		}
		return func(a model.Agent) error {
			agent.GoTo(a, p)
			return nil
		}, nil

	case Return:
		return func(a model.Agent) error {
			if err := agent.Return(a, rules); err != nil {
				return fmt.Errorf("%w: %v", ErrInternal, err)
			}
			return nil
		}, nil

	case StopMonitoring:
		return func(a model.Agent) error {
			s, ok := a.(*model.Scout)
			if !ok {
				return fmt.Errorf("%w: %s only applies to scouts", ErrUnknownCommand, StopMonitoring)
			}
			if s.State() != model.StateMonitoring {
				return nil
			}
			if err := agent.StopMonitoring(s, rules); err != nil {
				return fmt.Errorf("%w: %v", ErrInternal, err)
			}
			return nil
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

func describe(command string, params Params) string {
	switch command {
	case Monitor, GoTo:
		if p, err := params.Position(); err == nil {
			return fmt.Sprintf("%s %s", command, p)
		}
	}
	return command
}
