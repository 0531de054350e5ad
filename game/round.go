package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/cluecrypt/gameserver/clue"
)

// winScore is the cumulative score at which a team wins the game.
const winScore = 2

// newAttemptCode draws three pairwise-distinct digits from {1,2,3,4} by
// Fisher-Yates shuffling the full set and taking the first three.
func newAttemptCode() Code {
	digits := [4]int{1, 2, 3, 4}
	for i := len(digits) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		digits[i], digits[j] = digits[j], digits[i]
	}
	return Code{digits[0], digits[1], digits[2]}
}

// startRoundLocked opens a round: one attempt per team, all played
// simultaneously. The speaker alternates between the two teammates each
// round; the other teammate is the designated internal guesser. With fewer
// than two teams left there is no game, so the room finishes immediately.
func (e *Engine) startRoundLocked(room *Room) {
	if room.Status != StatusInGame {
		return
	}

	if len(room.TeamOrder) < 2 {
		winners := []string{}
		if len(room.TeamOrder) == 1 {
			winners = []string{room.TeamOrder[0]}
		}
		e.finishGameLocked(room, FinishNormal, winners)
		return
	}

	now := time.Now()
	attempts := make([]*Attempt, 0, len(room.TeamOrder))
	for _, teamID := range room.TeamOrder {
		team := room.Teams[teamID]
		speakerIdx := (room.Round - 1) % 2
		speakerID := team.PlayerIDs[speakerIdx]
		guesserID := team.PlayerIDs[1-speakerIdx]

		attempts = append(attempts, &Attempt{
			ID:                      uuid.New().String(),
			Round:                   room.Round,
			TargetTeamID:            teamID,
			SpeakerPlayerID:         speakerID,
			InternalGuesserPlayerID: guesserID,
			Code:                    newAttemptCode(),
			InterceptGuesses:        make(map[string]Code),
			ScoreDeltas:             []ScoreDelta{},
			StartedAt:               now,
		})
	}

	room.CurrentAttempts = attempts
	room.Phase = PhaseSpeaking
	e.clearDisconnectLocked(room)
	e.armSpeakingTimerLocked(room)
}

// SubmitClues records the speaker's three clues for their team's attempt.
// Once every team's speaker has submitted, the round advances to guessing.
func (e *Engine) SubmitClues(roomCode, playerID string, rawClues [3]string) (*Room, error) {
	room, err := e.roomForUpdate(roomCode)
	if err != nil {
		return nil, err
	}

	room.lock()
	if room.Status != StatusInGame || room.Phase != PhaseSpeaking {
		room.unlock()
		return nil, ErrInvalidState
	}

	var attempt *Attempt
	for _, a := range room.CurrentAttempts {
		if a.SpeakerPlayerID == playerID {
			attempt = a
			break
		}
	}
	if attempt == nil {
		room.unlock()
		return nil, ErrNotAuthorized
	}
	if attempt.Clues != nil {
		room.unlock()
		return nil, ErrAlreadySubmitted
	}

	var clues [3]string
	for i, raw := range rawClues {
		clues[i] = clue.Trim(raw)
	}
	attempt.Clues = &clues
	attempt.CluesSubmittedAt = time.Now()

	if allCluesSubmittedLocked(room) {
		e.cancelSpeakingTimerLocked(room)
		room.Phase = PhaseGuessing
	}
	room.unlock()

	e.notifyRoomChanged(room.Code)
	return room, nil
}

func allCluesSubmittedLocked(room *Room) bool {
	for _, a := range room.CurrentAttempts {
		if a.Clues == nil {
			return false
		}
	}
	return true
}

func (e *Engine) armSpeakingTimerLocked(room *Room) {
	e.cancelSpeakingTimerLocked(room)
	roomCode := room.Code
	round := room.Round
	room.speakingTimerID = e.timers.Schedule(e.speakingTimeout, 0, func() {
		e.onSpeakingTimeout(roomCode, round)
	})
}

func (e *Engine) cancelSpeakingTimerLocked(room *Room) {
	if room.speakingTimerID != 0 {
		e.timers.Cancel(room.speakingTimerID)
		room.speakingTimerID = 0
	}
}

// onSpeakingTimeout fires when the 60s clue window closes. Attempts whose
// speakers never submitted get blank clues and the round advances anyway.
// The callback re-validates the room state first: a stale timer that lost
// the race against clue submission or a finished game must do nothing.
func (e *Engine) onSpeakingTimeout(roomCode string, round int) {
	room, exists := e.store.Get(roomCode)
	if !exists {
		return
	}

	room.lock()
	if room.Status != StatusInGame || room.Phase != PhaseSpeaking || room.Round != round {
		room.unlock()
		return
	}

	now := time.Now()
	for _, a := range room.CurrentAttempts {
		if a.Clues == nil {
			a.Clues = &[3]string{"", "", ""}
			a.CluesSubmittedAt = now
		}
	}
	room.Phase = PhaseGuessing
	room.speakingTimerID = 0
	room.unlock()

	e.notifyRoomChanged(room.Code)
}

// SubmitGuess records either the designated teammate's internal guess or an
// opponent's intercept guess against the target team's attempt. When every
// required guess is in for every attempt, the whole round resolves.
func (e *Engine) SubmitGuess(roomCode, playerID, targetTeamID string, guess Code) (*Room, error) {
	if !guess.Valid() {
		return nil, ErrInvalidCode
	}

	room, err := e.roomForUpdate(roomCode)
	if err != nil {
		return nil, err
	}

	room.lock()
	if room.Status != StatusInGame || room.Phase != PhaseGuessing {
		room.unlock()
		return nil, ErrInvalidState
	}
	player, perr := room.player(playerID)
	if perr != nil {
		room.unlock()
		return nil, perr
	}
	if player.TeamID == "" {
		room.unlock()
		return nil, ErrPlayerNotInTeam
	}
	attempt := room.attemptForTeam(targetTeamID)
	if attempt == nil {
		room.unlock()
		return nil, ErrTargetMismatch
	}

	if player.TeamID == targetTeamID {
		if playerID != attempt.InternalGuesserPlayerID {
			room.unlock()
			return nil, ErrNotAuthorized
		}
		if attempt.InternalGuess != nil {
			room.unlock()
			return nil, ErrAlreadySubmitted
		}
		attempt.InternalGuess = &guess
		attempt.InternalGuessByPlayerID = playerID
	} else {
		if _, dup := attempt.InterceptGuesses[playerID]; dup {
			room.unlock()
			return nil, ErrAlreadySubmitted
		}
		attempt.InterceptGuesses[playerID] = guess
	}

	if roundCompleteLocked(room) {
		e.resolveRoundLocked(room)
	}
	room.unlock()

	e.notifyRoomChanged(room.Code)
	return room, nil
}

// roundCompleteLocked reports whether every attempt has clues, an internal
// guess, and an intercept guess from every player on every non-target team.
func roundCompleteLocked(room *Room) bool {
	for _, attempt := range room.CurrentAttempts {
		if attempt.Clues == nil || attempt.InternalGuess == nil {
			return false
		}
		for _, teamID := range room.TeamOrder {
			if teamID == attempt.TargetTeamID {
				continue
			}
			for _, pid := range room.Teams[teamID].PlayerIDs {
				if _, ok := attempt.InterceptGuesses[pid]; !ok {
					return false
				}
			}
		}
	}
	return len(room.CurrentAttempts) > 0
}

// resolveRoundLocked scores every attempt, records the deduction rows, moves
// the attempts to history, then either declares winners or opens the next
// round.
func (e *Engine) resolveRoundLocked(room *Room) {
	for _, attempt := range room.CurrentAttempts {
		resolveAttemptLocked(room, attempt)
	}

	room.AttemptHistory = append(room.AttemptHistory, room.CurrentAttempts...)
	room.CurrentAttempts = nil
	room.Phase = PhaseNone
	e.cancelSpeakingTimerLocked(room)

	if e.metrics != nil {
		e.metrics.RoundResolved()
	}

	winners := winningTeamsLocked(room)
	if len(winners) > 0 {
		e.finishGameLocked(room, FinishNormal, winners)
		return
	}

	room.Round++
	e.startRoundLocked(room)
}

// resolveAttemptLocked applies the scoring rules to a single attempt:
//   - every team with at least one member who guessed the exact code gets
//     +1 INTERCEPT_CORRECT; multiple correct guessers on one team do not stack
//   - if the internal guess missed, every team except the target gets
//     +1 INTERNAL_MISS
//
// Resolution is idempotent: an already-resolved attempt is left untouched.
func resolveAttemptLocked(room *Room, attempt *Attempt) {
	if attempt.Resolved || attempt.Clues == nil || attempt.InternalGuess == nil {
		return
	}
	attempt.Resolved = true
	attempt.ScoreDeltas = []ScoreDelta{}

	correctTeams := make(map[string]bool)
	for pid, guess := range attempt.InterceptGuesses {
		if guess != attempt.Code {
			continue
		}
		guesser, ok := room.Players[pid]
		if !ok || guesser.TeamID == "" || guesser.TeamID == attempt.TargetTeamID {
			continue
		}
		correctTeams[guesser.TeamID] = true
	}
	for _, teamID := range room.TeamOrder {
		if !correctTeams[teamID] {
			continue
		}
		room.Teams[teamID].Score++
		attempt.ScoreDeltas = append(attempt.ScoreDeltas, ScoreDelta{
			TeamID: teamID,
			Points: 1,
			Reason: ScoreInterceptCorrect,
		})
	}

	if *attempt.InternalGuess != attempt.Code {
		for _, teamID := range room.TeamOrder {
			if teamID == attempt.TargetTeamID {
				continue
			}
			room.Teams[teamID].Score++
			attempt.ScoreDeltas = append(attempt.ScoreDeltas, ScoreDelta{
				TeamID: teamID,
				Points: 1,
				Reason: ScoreInternalMiss,
			})
		}
	}

	recordDeductionLocked(room, attempt)
}

// recordDeductionLocked appends the permanent digit-to-clue mapping for a
// resolved attempt.
func recordDeductionLocked(room *Room, attempt *Attempt) {
	if attempt.Clues == nil {
		return
	}
	row := DeductionRow{
		Round:    attempt.Round,
		TeamID:   attempt.TargetTeamID,
		ByNumber: map[int]string{1: "", 2: "", 3: "", 4: ""},
	}
	for i, digit := range attempt.Code {
		row.ByNumber[digit] = attempt.Clues[i]
	}
	room.DeductionRows = append(room.DeductionRows, row)
}

// winningTeamsLocked returns every team at or above the win threshold, in
// team order. Ties produce multiple winners.
func winningTeamsLocked(room *Room) []string {
	var winners []string
	for _, teamID := range room.TeamOrder {
		if room.Teams[teamID].Score >= winScore {
			winners = append(winners, teamID)
		}
	}
	return winners
}
