package game

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrGameAlreadyStarted  = errors.New("game already started")
	ErrRoomFull            = errors.New("room is full")
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrHostCannotLeave     = errors.New("host must disband the room instead of leaving")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrAlreadySubmitted    = errors.New("already submitted")
	ErrTargetMismatch      = errors.New("target team does not match an active attempt")
	ErrPlayerCountMismatch = errors.New("player count does not match room target")
	ErrPlayerNotInTeam     = errors.New("player is not assigned to a team")
	ErrInvalidPlayerCount  = errors.New("target player count must be 4, 6 or 8")
	ErrInvalidCode         = errors.New("guess must be three distinct digits from 1 to 4")
)

// Error kinds used by the transport layer as machine-readable codes.
const (
	KindNotFound         = "NOT_FOUND"
	KindInvalidState     = "INVALID_STATE"
	KindNotAuthorized    = "NOT_AUTHORIZED"
	KindAlreadySubmitted = "ALREADY_SUBMITTED"
	KindMismatch         = "MISMATCH"
	KindCapacity         = "CAPACITY"
	KindInvalidArgument  = "INVALID_ARGUMENT"
	KindInternal         = "INTERNAL"
)

// Kind classifies an engine error into its taxonomy bucket.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrPlayerNotFound),
		errors.Is(err, ErrTeamNotFound):
		return KindNotFound
	case errors.Is(err, ErrGameAlreadyStarted),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrHostCannotLeave):
		return KindInvalidState
	case errors.Is(err, ErrNotAuthorized):
		return KindNotAuthorized
	case errors.Is(err, ErrAlreadySubmitted):
		return KindAlreadySubmitted
	case errors.Is(err, ErrTargetMismatch),
		errors.Is(err, ErrPlayerNotInTeam):
		return KindMismatch
	case errors.Is(err, ErrRoomFull),
		errors.Is(err, ErrPlayerCountMismatch):
		return KindCapacity
	case errors.Is(err, ErrInvalidPlayerCount),
		errors.Is(err, ErrInvalidCode):
		return KindInvalidArgument
	default:
		return KindInternal
	}
}
