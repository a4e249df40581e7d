package game

// ErrorKind groups engine errors into the four caller-facing categories.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindInvalidState
	KindAuthorization
	KindRuleViolation
)

// String returns the string representation of an error kind
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindAuthorization:
		return "authorization"
	case KindRuleViolation:
		return "rule_violation"
	default:
		return "unknown"
	}
}

// Error is a rejected engine operation. Every rejection leaves game
// state untouched; the Code is stable and safe to put on the wire.
type Error struct {
	Kind ErrorKind
	Code string
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

var (
	ErrGameNotFound = &Error{KindNotFound, "game_not_found", "game not found"}

	ErrGameNotWaiting    = &Error{KindInvalidState, "game_not_waiting", "game is not accepting players"}
	ErrGameFull          = &Error{KindInvalidState, "game_full", "game is full"}
	ErrGameNotInProgress = &Error{KindInvalidState, "game_not_in_progress", "game is not in progress"}
	ErrSetupPending      = &Error{KindInvalidState, "setup_pending", "game start is awaiting its random seed"}
	ErrNotEnoughPlayers  = &Error{KindInvalidState, "not_enough_players", "not enough players to start"}
	ErrAlreadyJoined     = &Error{KindInvalidState, "already_joined", "player already joined this game"}

	ErrNotYourTurn    = &Error{KindAuthorization, "not_your_turn", "it is not your turn"}
	ErrPlayerNotFound = &Error{KindAuthorization, "player_not_found", "player is not in this game"}

	ErrIllegalPlay = &Error{KindRuleViolation, "illegal_play", "card cannot be played on the current top card"}
	ErrNotEligible = &Error{KindRuleViolation, "not_eligible", "low hand can only be declared with exactly one card"}
)
