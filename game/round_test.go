package game

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAttemptCode_AlwaysValid(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := newAttemptCode()
		require.True(t, code.Valid(), "generated code %v must be three distinct digits in 1..4", code)
	}
}

func TestCodeValid(t *testing.T) {
	assert.True(t, Code{1, 2, 3}.Valid())
	assert.True(t, Code{4, 2, 1}.Valid())
	assert.False(t, Code{1, 1, 2}.Valid(), "repeated digit")
	assert.False(t, Code{0, 1, 2}.Valid(), "digit below range")
	assert.False(t, Code{3, 4, 5}.Valid(), "digit above range")
}

func TestSubmitClues_Authorization(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _ := startedGame(t, f, 4)
	attempt := room.attemptForTeam("T1")

	// Only the speaker of the attempt may submit.
	_, err := f.engine.SubmitClues(room.Code, attempt.InternalGuesserPlayerID, [3]string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = f.engine.SubmitClues(room.Code, attempt.SpeakerPlayerID, [3]string{"a", "b", "c"})
	require.NoError(t, err)

	_, err = f.engine.SubmitClues(room.Code, attempt.SpeakerPlayerID, [3]string{"x", "y", "z"})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitClues_TrimsAndTruncates(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _ := startedGame(t, f, 4)
	attempt := room.attemptForTeam("T1")

	long := strings.Repeat("猫", 15)
	_, err := f.engine.SubmitClues(room.Code, attempt.SpeakerPlayerID, [3]string{"  hello  ", long, ""})
	require.NoError(t, err)

	require.NotNil(t, attempt.Clues)
	assert.Equal(t, "hello", attempt.Clues[0])
	assert.Equal(t, strings.Repeat("猫", 10), attempt.Clues[1], "clues are capped at 10 runes")
	assert.Equal(t, "", attempt.Clues[2], "blank clues are allowed")
}

func TestSubmitClues_AdvancesToGuessing(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _ := startedGame(t, f, 4)

	attempts := append([]*Attempt(nil), room.CurrentAttempts...)
	_, err := f.engine.SubmitClues(room.Code, attempts[0].SpeakerPlayerID, [3]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, PhaseSpeaking, room.Phase, "phase holds until every speaker has submitted")

	_, err = f.engine.SubmitClues(room.Code, attempts[1].SpeakerPlayerID, [3]string{"d", "e", "f"})
	require.NoError(t, err)
	assert.Equal(t, PhaseGuessing, room.Phase)
}

func TestSpeakingTimeout_BlanksMissingClues(t *testing.T) {
	f := newTestEngine(t, Options{SpeakingTimeout: 50 * time.Millisecond})
	room, _ := startedGame(t, f, 4)

	attempts := append([]*Attempt(nil), room.CurrentAttempts...)
	_, err := f.engine.SubmitClues(room.Code, attempts[0].SpeakerPlayerID, [3]string{"a", "b", "c"})
	require.NoError(t, err)

	time.Sleep(300 * time.Millisecond)

	room.lock()
	defer room.unlock()
	assert.Equal(t, PhaseGuessing, room.Phase, "timeout must advance the round")
	assert.Equal(t, [3]string{"a", "b", "c"}, *attempts[0].Clues, "submitted clues survive the timeout")
	require.NotNil(t, attempts[1].Clues)
	assert.Equal(t, [3]string{"", "", ""}, *attempts[1].Clues, "missing clues are blanked")
}

func TestSubmitGuess_Validations(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _ := startedGame(t, f, 4)
	attempt := room.attemptForTeam("T1")

	_, err := f.engine.SubmitGuess(room.Code, attempt.InternalGuesserPlayerID, "T1", Code{1, 1, 2})
	assert.ErrorIs(t, err, ErrInvalidCode)

	// Still in SPEAKING: no guesses yet.
	_, err = f.engine.SubmitGuess(room.Code, attempt.InternalGuesserPlayerID, "T1", Code{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidState)

	playCluesOnly(t, f, room)

	_, err = f.engine.SubmitGuess(room.Code, attempt.InternalGuesserPlayerID, "T9", Code{1, 2, 3})
	assert.ErrorIs(t, err, ErrTargetMismatch)

	// The speaker is not the designated internal guesser.
	_, err = f.engine.SubmitGuess(room.Code, attempt.SpeakerPlayerID, "T1", Code{1, 2, 3})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = f.engine.SubmitGuess(room.Code, attempt.InternalGuesserPlayerID, "T1", Code{1, 2, 3})
	require.NoError(t, err)
	_, err = f.engine.SubmitGuess(room.Code, attempt.InternalGuesserPlayerID, "T1", Code{2, 3, 4})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	// Intercepts are per-player, one each.
	interceptor := room.Teams["T2"].PlayerIDs[0]
	_, err = f.engine.SubmitGuess(room.Code, interceptor, "T1", Code{1, 2, 3})
	require.NoError(t, err)
	_, err = f.engine.SubmitGuess(room.Code, interceptor, "T1", Code{2, 3, 4})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

// playCluesOnly moves a fresh round into the GUESSING phase.
func playCluesOnly(t *testing.T, f *testFixture, room *Room) {
	t.Helper()
	for _, a := range append([]*Attempt(nil), room.CurrentAttempts...) {
		if _, err := f.engine.SubmitClues(room.Code, a.SpeakerPlayerID, [3]string{"one", "two", "three"}); err != nil {
			t.Fatalf("SubmitClues failed: %v", err)
		}
	}
	if room.Phase != PhaseGuessing {
		t.Fatalf("Expected GUESSING after all clues, got %q", room.Phase)
	}
}

func TestRoundResolution_AdvancesAndAlternatesSpeaker(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _ := startedGame(t, f, 4)

	firstSpeakers := map[string]string{}
	firstGuessers := map[string]string{}
	for _, a := range room.CurrentAttempts {
		firstSpeakers[a.TargetTeamID] = a.SpeakerPlayerID
		firstGuessers[a.TargetTeamID] = a.InternalGuesserPlayerID
	}

	playRound(t, f, room, true, false)

	assert.Equal(t, StatusInGame, room.Status)
	assert.Equal(t, 2, room.Round)
	assert.Equal(t, PhaseSpeaking, room.Phase)
	assert.Len(t, room.AttemptHistory, 2, "both attempts move to history")
	assert.Len(t, room.DeductionRows, 2, "one deduction row per resolved attempt")
	for _, teamID := range room.TeamOrder {
		assert.Equal(t, 0, room.Teams[teamID].Score, "correct internal guess and missed intercepts score nothing")
	}
	for _, a := range room.CurrentAttempts {
		assert.Equal(t, firstGuessers[a.TargetTeamID], a.SpeakerPlayerID, "round 2 speaker is the round 1 guesser")
		assert.Equal(t, firstSpeakers[a.TargetTeamID], a.InternalGuesserPlayerID)
	}
}

func TestRoundResolution_DeductionRowMapsDigitsToClues(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _ := startedGame(t, f, 4)

	attempt := room.attemptForTeam("T1")
	code := attempt.Code
	clues := [3]string{"alpha", "beta", "gamma"}
	_, err := f.engine.SubmitClues(room.Code, attempt.SpeakerPlayerID, clues)
	require.NoError(t, err)

	playRound(t, f, room, true, false)

	var row *DeductionRow
	for i := range room.DeductionRows {
		if room.DeductionRows[i].TeamID == "T1" {
			row = &room.DeductionRows[i]
		}
	}
	require.NotNil(t, row)
	assert.Equal(t, 1, row.Round)
	for i, digit := range code {
		assert.Equal(t, clues[i], row.ByNumber[digit])
	}
	for digit := 1; digit <= 4; digit++ {
		if digit != code[0] && digit != code[1] && digit != code[2] {
			assert.Equal(t, "", row.ByNumber[digit], "the unused digit stays blank")
		}
	}
}

func TestGameFinishes_TieWhenBothTeamsReachWinScore(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _ := startedGame(t, f, 4)

	// Every internal guess misses, so each round hands every opposing team a
	// point. Two rounds put both teams at the threshold simultaneously.
	playRound(t, f, room, false, false)
	require.Equal(t, StatusInGame, room.Status)
	assert.Equal(t, 1, room.Teams["T1"].Score)
	assert.Equal(t, 1, room.Teams["T2"].Score)

	playRound(t, f, room, false, false)

	assert.Equal(t, StatusFinished, room.Status)
	assert.Equal(t, FinishNormal, room.FinishReason)
	assert.Equal(t, []string{"T1", "T2"}, room.WinnerTeamIDs, "ties declare every team at the threshold")
	assert.Equal(t, 2, room.Teams["T1"].Score)
	assert.Equal(t, 2, room.Teams["T2"].Score)
	assert.Empty(t, room.CurrentAttempts)
	assert.Equal(t, PhaseNone, room.Phase)
}

// buildScoringRoom hand-assembles an in-game room with teamCount teams of two
// and a single unresolved attempt against T1 with code {1,2,3}.
func buildScoringRoom(teamCount int) (*Room, *Attempt) {
	room := &Room{
		Status:  StatusInGame,
		Round:   1,
		Players: map[string]*Player{},
		Teams:   map[string]*Team{},
	}
	for i := 0; i < teamCount; i++ {
		teamID := fmt.Sprintf("T%d", i+1)
		room.TeamOrder = append(room.TeamOrder, teamID)
		team := &Team{ID: teamID}
		for s := 0; s < 2; s++ {
			pid := fmt.Sprintf("p%d-%d", i+1, s)
			room.Players[pid] = &Player{ID: pid, TeamID: teamID, SeatIndex: s}
			team.PlayerIDs = append(team.PlayerIDs, pid)
		}
		room.Teams[teamID] = team
	}

	attempt := &Attempt{
		Round:                   1,
		TargetTeamID:            "T1",
		SpeakerPlayerID:         "p1-0",
		InternalGuesserPlayerID: "p1-1",
		Code:                    Code{1, 2, 3},
		Clues:                   &[3]string{"a", "b", "c"},
		InterceptGuesses:        map[string]Code{},
	}
	room.CurrentAttempts = []*Attempt{attempt}
	return room, attempt
}

func TestResolveAttempt_InterceptPointsDoNotStack(t *testing.T) {
	room, attempt := buildScoringRoom(2)
	attempt.InternalGuess = &Code{1, 2, 3}
	attempt.InterceptGuesses["p2-0"] = Code{1, 2, 3}
	attempt.InterceptGuesses["p2-1"] = Code{1, 2, 3}

	resolveAttemptLocked(room, attempt)

	assert.Equal(t, 1, room.Teams["T2"].Score, "two correct guessers on one team still score a single point")
	assert.Equal(t, 0, room.Teams["T1"].Score)
	require.Len(t, attempt.ScoreDeltas, 1)
	assert.Equal(t, ScoreDelta{TeamID: "T2", Points: 1, Reason: ScoreInterceptCorrect}, attempt.ScoreDeltas[0])
}

func TestResolveAttempt_InternalMissAwardsEveryOtherTeam(t *testing.T) {
	room, attempt := buildScoringRoom(3)
	attempt.InternalGuess = &Code{2, 3, 1}
	attempt.InterceptGuesses["p2-0"] = Code{3, 2, 1}
	attempt.InterceptGuesses["p3-0"] = Code{4, 2, 1}

	resolveAttemptLocked(room, attempt)

	assert.Equal(t, 0, room.Teams["T1"].Score, "the target team never scores from its own attempt")
	assert.Equal(t, 1, room.Teams["T2"].Score)
	assert.Equal(t, 1, room.Teams["T3"].Score)
	require.Len(t, attempt.ScoreDeltas, 2)
	for _, delta := range attempt.ScoreDeltas {
		assert.Equal(t, ScoreInternalMiss, delta.Reason)
	}
}

func TestResolveAttempt_InterceptAndMissCombine(t *testing.T) {
	room, attempt := buildScoringRoom(2)
	attempt.InternalGuess = &Code{3, 2, 1}
	attempt.InterceptGuesses["p2-1"] = Code{1, 2, 3}

	resolveAttemptLocked(room, attempt)

	// T2 intercepted correctly and T1's internal guess missed: two points.
	assert.Equal(t, 2, room.Teams["T2"].Score)
	assert.Len(t, attempt.ScoreDeltas, 2)
}

func TestResolveAttempt_Idempotent(t *testing.T) {
	room, attempt := buildScoringRoom(2)
	attempt.InternalGuess = &Code{3, 2, 1}

	resolveAttemptLocked(room, attempt)
	require.Equal(t, 1, room.Teams["T2"].Score)

	resolveAttemptLocked(room, attempt)
	assert.Equal(t, 1, room.Teams["T2"].Score, "a resolved attempt must not score twice")
	assert.Len(t, room.DeductionRows, 1)
}

func TestResolveAttempt_IncompleteAttemptIsSkipped(t *testing.T) {
	room, attempt := buildScoringRoom(2)
	attempt.Clues = nil
	attempt.InternalGuess = &Code{1, 2, 3}

	resolveAttemptLocked(room, attempt)

	assert.False(t, attempt.Resolved)
	assert.Equal(t, 0, room.Teams["T2"].Score)
}
