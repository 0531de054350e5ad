package game

// Lifecycle transition table. A room moves LOBBY -> IN_GAME -> FINISHED;
// FINISHED is terminal. Phase cycling (SPEAKING <-> GUESSING) happens only
// while IN_GAME and is driven by the round engine.
var statusTransitions = map[Status]map[Status]bool{
	StatusLobby: {
		StatusInGame: true,
	},
	StatusInGame: {
		StatusFinished: true,
	},
	StatusFinished: {},
}

// canTransition reports whether moving from one lifecycle status to another
// is legal.
func canTransition(from, to Status) bool {
	allowed, ok := statusTransitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}

// setStatusLocked applies a lifecycle transition. Caller holds the room lock.
// Illegal transitions are programming errors and are reported as
// ErrInvalidState so they surface instead of silently corrupting state.
func setStatusLocked(room *Room, to Status) error {
	if !canTransition(room.Status, to) {
		return ErrInvalidState
	}
	room.Status = to
	return nil
}
