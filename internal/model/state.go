package model

import "fmt"

// AgentState is the finite-state-machine state of a simulated entity.
type AgentState int32

const (
	// StateIdle - entity is stationary at its station or wherever it stopped
	StateIdle AgentState = iota
	// StateScouting - scout is sweeping its coverage lane
	StateScouting
	// StateMonitoring - scout is tracking a victim or holding over a point
	StateMonitoring
	// StateRescuing - rescuer is heading out to pick victims up
	StateRescuing
	// StateReturning - entity is heading back to its home station
	StateReturning
)

// String returns human-readable state name
func (s AgentState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateScouting:
		return "SCOUTING"
	case StateMonitoring:
		return "MONITORING"
	case StateRescuing:
		return "RESCUING"
	case StateReturning:
		return "RETURNING"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the state as its name.
func (s AgentState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *AgentState) UnmarshalText(text []byte) error {
	parsed, err := ParseAgentState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseAgentState converts a state name back into an AgentState.
func ParseAgentState(name string) (AgentState, error) {
	for s := StateIdle; s <= StateReturning; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return StateIdle, fmt.Errorf("unknown agent state %q", name)
}

// Kind identifies the variant of an entity.
type Kind int32

const (
	KindScout Kind = iota + 1
	KindRescuer
	KindVictim
)

func (k Kind) String() string {
	switch k {
	case KindScout:
		return "uav"
	case KindRescuer:
		return "boat"
	case KindVictim:
		return "victim"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{KindScout, KindRescuer, KindVictim} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown entity kind %q", text)
}
