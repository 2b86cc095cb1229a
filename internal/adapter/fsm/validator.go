package fsm

import (
	"context"
	"fmt"
	"slices"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// Validator checks registration status changes against domain.Transitions
// using looplab/fsm. The machine is stateful, so each Apply seeds a fresh one
// with the registration's current status.
type Validator struct {
	events loopfsm.Events
}

// New creates a validator for the registration lifecycle.
func New() *Validator {
	return &Validator{events: eventsFrom(domain.Transitions)}
}

// eventsFrom merges transitions that share an event and destination into one
// EventDesc with several sources, the shape looplab/fsm expects.
func eventsFrom(transitions []domain.Transition) loopfsm.Events {
	var events loopfsm.Events
	for _, t := range transitions {
		i := slices.IndexFunc(events, func(e loopfsm.EventDesc) bool {
			return e.Name == string(t.Event) && e.Dst == string(t.Dst)
		})
		if i < 0 {
			events = append(events, loopfsm.EventDesc{Name: string(t.Event), Dst: string(t.Dst)})
			i = len(events) - 1
		}
		events[i].Src = append(events[i].Src, string(t.Src))
	}
	return events
}

// Apply returns the status the event leads to from current, or a
// domain.TransitionError when the lifecycle has no such edge.
func (v *Validator) Apply(ctx context.Context, current domain.RegistrationStatus, event domain.Event) (domain.RegistrationStatus, error) {
	machine := loopfsm.NewFSM(string(current), v.events, nil)
	if !machine.Can(string(event)) {
		return "", &domain.TransitionError{Event: event, Current: current}
	}
	if err := machine.Event(ctx, string(event)); err != nil {
		return "", fmt.Errorf("applying %s to %s registration: %w", event, current, err)
	}
	return domain.RegistrationStatus(machine.Current()), nil
}
