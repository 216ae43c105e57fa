package thesis

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/shokrpour/thesisflow/internal/models"
)

const (
	eventApprove = "approve"
	eventReject  = "reject"
)

// statusMachine guards the request state machine: Pending is the only
// state with outgoing transitions, Approved and Rejected are terminal.
func statusMachine(current models.RequestStatus) *fsm.FSM {
	return fsm.NewFSM(
		string(current),
		fsm.Events{
			{Name: eventApprove, Src: []string{string(models.ThesisPending)}, Dst: string(models.ThesisApproved)},
			{Name: eventReject, Src: []string{string(models.ThesisPending)}, Dst: string(models.ThesisRejected)},
		},
		fsm.Callbacks{},
	)
}

func advance(current models.RequestStatus, event string) (models.RequestStatus, error) {
	m := statusMachine(current)
	if err := m.Event(context.Background(), event); err != nil {
		return current, fmt.Errorf("%w: cannot %s a request in state %q", models.ErrInvalidState, event, current)
	}
	return models.RequestStatus(m.Current()), nil
}
