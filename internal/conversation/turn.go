package conversation

import "github.com/diogo/chatweb/internal/models"

// TurnState is the lifecycle position of one submission
type TurnState int

const (
	TurnPending TurnState = iota
	TurnCommitted
	TurnRolledBack
)

func (s TurnState) String() string {
	switch s {
	case TurnCommitted:
		return "committed"
	case TurnRolledBack:
		return "rolled-back"
	default:
		return "pending"
	}
}

// Turn is one optimistic submission: the user message is already in the
// history when the turn is created, and the turn settles exactly once.
type Turn struct {
	Input  string
	UserID models.UserID
	// History is the context sent to the backend, ending with Input
	History []models.Message

	state TurnState
	reply string
	err   error
}

// State returns where the turn is in its lifecycle
func (t *Turn) State() TurnState {
	return t.state
}

// Reply returns the assistant reply of a committed turn
func (t *Turn) Reply() string {
	return t.reply
}

// Err returns the failure of a rolled-back turn
func (t *Turn) Err() error {
	return t.err
}
