package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewedAttempt(t *testing.T, view *RoomView, teamID string) *AttemptView {
	t.Helper()
	for i := range view.CurrentAttempts {
		if view.CurrentAttempts[i].TargetTeamID == teamID {
			return &view.CurrentAttempts[i]
		}
	}
	t.Fatalf("No attempt for team %s in view", teamID)
	return nil
}

func TestProjectRoom_RejectsNonMembers(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _ := startedGame(t, f, 4)

	_, err := f.engine.ProjectRoom(room.Code, "stranger")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = f.engine.ProjectRoom("ZZZZZZ", "anyone")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestProjectRoom_CodeVisibleOnlyToSpeaker(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _ := startedGame(t, f, 4)
	attempt := room.attemptForTeam("T1")

	speakerView, err := f.engine.ProjectRoom(room.Code, attempt.SpeakerPlayerID)
	require.NoError(t, err)
	av := viewedAttempt(t, speakerView, "T1")
	require.NotNil(t, av.Code, "the speaker sees their own attempt's code")
	assert.Equal(t, attempt.Code, *av.Code)
	assert.Nil(t, viewedAttempt(t, speakerView, "T2").Code, "the speaker never sees another attempt's code")

	guesserView, err := f.engine.ProjectRoom(room.Code, attempt.InternalGuesserPlayerID)
	require.NoError(t, err)
	assert.Nil(t, viewedAttempt(t, guesserView, "T1").Code, "even the teammate guesser is blind to the code")
}

func TestProjectRoom_SecretWordsOwnTeamOnly(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _ := startedGame(t, f, 4)

	viewer := room.Teams["T1"].PlayerIDs[0]
	view, err := f.engine.ProjectRoom(room.Code, viewer)
	require.NoError(t, err)

	for _, tv := range view.Teams {
		if tv.ID == "T1" {
			assert.Len(t, tv.SecretWords, 4, "own team's words are visible")
		} else {
			assert.Empty(t, tv.SecretWords, "opposing words stay hidden while the game runs")
		}
	}
}

func TestProjectRoom_FinishedRevealsEverything(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, players := startedGame(t, f, 4)

	playRound(t, f, room, false, false)
	playRound(t, f, room, false, false)
	require.Equal(t, StatusFinished, room.Status)

	view, err := f.engine.ProjectRoom(room.Code, players[0].ID)
	require.NoError(t, err)

	for _, tv := range view.Teams {
		assert.Len(t, tv.SecretWords, 4, "all secret words revealed after finish")
	}
	require.Len(t, view.History, 4, "two resolved attempts per round")
	for _, h := range view.History {
		assert.True(t, h.Code.Valid(), "history exposes the real codes")
		assert.NotNil(t, h.InternalGuess)
	}
	assert.Equal(t, []string{"T1", "T2"}, view.WinnerTeamIDs)
}

func TestProjectRoom_InFlightGuessesShownAsMarkersOnly(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _ := startedGame(t, f, 4)
	attempt := room.attemptForTeam("T1")

	playCluesOnly(t, f, room)

	_, err := f.engine.SubmitGuess(room.Code, attempt.InternalGuesserPlayerID, "T1", rotated(attempt.Code))
	require.NoError(t, err)
	interceptor := room.Teams["T2"].PlayerIDs[0]
	_, err = f.engine.SubmitGuess(room.Code, interceptor, "T1", rotated(attempt.Code))
	require.NoError(t, err)

	view, err := f.engine.ProjectRoom(room.Code, attempt.SpeakerPlayerID)
	require.NoError(t, err)
	av := viewedAttempt(t, view, "T1")

	assert.True(t, av.InternalGuessSubmitted, "progress marker for the internal guess")
	assert.Equal(t, []string{interceptor}, av.InterceptPlayerIDs, "only who guessed, never what")
}

func TestProjectRoom_DisconnectWindowVisible(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, players := startedGame(t, f, 4)

	f.engine.HandleSessionClosed(players[1].SessionID)

	view, err := f.engine.ProjectRoom(room.Code, players[0].ID)
	require.NoError(t, err)
	require.NotNil(t, view.Disconnect)
	assert.Equal(t, []string{players[1].ID}, view.Disconnect.PlayerIDs)
	assert.False(t, view.Disconnect.Deadline.IsZero())
}
