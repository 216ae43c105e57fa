package defense

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

// statusMachine guards the defense state machine: UnderReview is the only
// state with outgoing transitions, Approved and Rejected are terminal.
func statusMachine(current models.DefenseStatus) *fsm.FSM {
	return fsm.NewFSM(
		string(current),
		fsm.Events{
			{Name: eventApprove, Src: []string{string(models.DefenseUnderReview)}, Dst: string(models.DefenseApproved)},
			{Name: eventReject, Src: []string{string(models.DefenseUnderReview)}, Dst: string(models.DefenseRejected)},
		},
		fsm.Callbacks{},
	)
}

func advance(current models.DefenseStatus, event string) (models.DefenseStatus, error) {
	m := statusMachine(current)
	if err := m.Event(context.Background(), event); err != nil {
		return current, fmt.Errorf("%w: cannot %s a defense in state %q", models.ErrInvalidState, event, current)
	}
	return models.DefenseStatus(m.Current()), nil
}
