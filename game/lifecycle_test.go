package game

import (
	"fmt"
	"testing"
)

func TestCreateRoom_InvalidPlayerCount(t *testing.T) {
	f := newTestEngine(t, Options{})

	for _, count := range []int{0, 2, 5, 7, 10} {
		if _, _, err := f.engine.CreateRoom("sess-0", "host", count); err != ErrInvalidPlayerCount {
			t.Errorf("CreateRoom(%d): expected ErrInvalidPlayerCount, got %v", count, err)
		}
	}
}

func TestCreateRoom_HostBecomesMember(t *testing.T) {
	f := newTestEngine(t, Options{})

	room, host, err := f.engine.CreateRoom("sess-0", "alice", 4)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if room.HostPlayerID != host.ID {
		t.Error("Creator should be the host")
	}
	if room.Status != StatusLobby {
		t.Errorf("Expected LOBBY, got %s", room.Status)
	}
	if _, ok := room.Players[host.ID]; !ok {
		t.Error("Host should be in the player roster")
	}
	if host.SessionID != "sess-0" {
		t.Errorf("Host should be bound to the creating session, got %q", host.SessionID)
	}
}

func TestJoinRoom_RejectsFullAndStarted(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, host, _ := f.engine.CreateRoom("sess-0", "host", 4)

	for i := 1; i < 4; i++ {
		if _, _, err := f.engine.JoinRoom(room.Code, fmt.Sprintf("sess-%d", i), fmt.Sprintf("p%d", i)); err != nil {
			t.Fatalf("JoinRoom failed: %v", err)
		}
	}
	if _, _, err := f.engine.JoinRoom(room.Code, "sess-extra", "late"); err != ErrRoomFull {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}

	if _, err := f.engine.StartGame(room.Code, host.ID); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	if _, _, err := f.engine.JoinRoom(room.Code, "sess-extra", "late"); err != ErrGameAlreadyStarted {
		t.Errorf("Expected ErrGameAlreadyStarted, got %v", err)
	}
}

func TestJoinRoom_UnknownRoom(t *testing.T) {
	f := newTestEngine(t, Options{})

	if _, _, err := f.engine.JoinRoom("ZZZZZZ", "sess-1", "p1"); err != ErrRoomNotFound {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestLeaveRoom_HostCannotLeave(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, host, _ := f.engine.CreateRoom("sess-0", "host", 4)
	_, guest, _ := f.engine.JoinRoom(room.Code, "sess-1", "guest")

	if err := f.engine.LeaveRoom(room.Code, host.ID); err != ErrHostCannotLeave {
		t.Errorf("Expected ErrHostCannotLeave, got %v", err)
	}
	if err := f.engine.LeaveRoom(room.Code, guest.ID); err != nil {
		t.Errorf("Guest leave failed: %v", err)
	}
	if len(room.Players) != 1 {
		t.Errorf("Expected 1 player after leave, got %d", len(room.Players))
	}
}

func TestLeaveRoom_RejectedMidGame(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, players := startedGame(t, f, 4)

	if err := f.engine.LeaveRoom(room.Code, players[1].ID); err != ErrInvalidState {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestDisbandRoom_HostOnly(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, host, _ := f.engine.CreateRoom("sess-0", "host", 4)
	_, guest, _ := f.engine.JoinRoom(room.Code, "sess-1", "guest")

	if _, err := f.engine.DisbandRoom(room.Code, guest.ID); err != ErrNotAuthorized {
		t.Errorf("Expected ErrNotAuthorized, got %v", err)
	}

	sessions, err := f.engine.DisbandRoom(room.Code, host.ID)
	if err != nil {
		t.Fatalf("DisbandRoom failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("Expected 2 evicted sessions, got %d", len(sessions))
	}
	if _, exists := f.store.Get(room.Code); exists {
		t.Error("Room should be removed after disband")
	}
}

func TestStartGame_Validations(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, host, _ := f.engine.CreateRoom("sess-0", "host", 4)
	_, guest, _ := f.engine.JoinRoom(room.Code, "sess-1", "guest")

	if _, err := f.engine.StartGame(room.Code, guest.ID); err != ErrNotAuthorized {
		t.Errorf("Expected ErrNotAuthorized for non-host, got %v", err)
	}
	if _, err := f.engine.StartGame(room.Code, host.ID); err != ErrPlayerCountMismatch {
		t.Errorf("Expected ErrPlayerCountMismatch at 2/4 players, got %v", err)
	}
}

func TestStartGame_FormsTeamsOfTwo(t *testing.T) {
	for _, count := range []int{4, 6, 8} {
		t.Run(fmt.Sprintf("%d_players", count), func(t *testing.T) {
			f := newTestEngine(t, Options{})
			room, _ := startedGame(t, f, count)

			if room.Status != StatusInGame {
				t.Fatalf("Expected IN_GAME, got %s", room.Status)
			}
			if room.Phase != PhaseSpeaking {
				t.Errorf("Expected SPEAKING phase, got %q", room.Phase)
			}
			if room.Round != 1 {
				t.Errorf("Expected round 1, got %d", room.Round)
			}
			if len(room.TeamOrder) != count/2 {
				t.Fatalf("Expected %d teams, got %d", count/2, len(room.TeamOrder))
			}

			seated := make(map[string]bool)
			for _, teamID := range room.TeamOrder {
				team := room.Teams[teamID]
				if len(team.PlayerIDs) != 2 {
					t.Errorf("Team %s has %d players, want 2", teamID, len(team.PlayerIDs))
				}
				if len(team.SecretWords) != 4 {
					t.Errorf("Team %s has %d secret words, want 4", teamID, len(team.SecretWords))
				}
				for _, pid := range team.PlayerIDs {
					if seated[pid] {
						t.Errorf("Player %s seated twice", pid)
					}
					seated[pid] = true
					if room.Players[pid].TeamID != teamID {
						t.Errorf("Player %s team binding mismatch", pid)
					}
				}
			}
			if len(seated) != count {
				t.Errorf("Expected all %d players seated, got %d", count, len(seated))
			}

			if len(room.CurrentAttempts) != count/2 {
				t.Fatalf("Expected one attempt per team, got %d", len(room.CurrentAttempts))
			}
			for _, a := range room.CurrentAttempts {
				team := room.Teams[a.TargetTeamID]
				if a.SpeakerPlayerID != team.PlayerIDs[0] {
					t.Errorf("Round 1 speaker should be seat 0 of %s", a.TargetTeamID)
				}
				if a.InternalGuesserPlayerID != team.PlayerIDs[1] {
					t.Errorf("Round 1 guesser should be seat 1 of %s", a.TargetTeamID)
				}
				if !a.Code.Valid() {
					t.Errorf("Attempt code %v is not a valid code", a.Code)
				}
			}
		})
	}
}

func TestForceFinishGame(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, players := startedGame(t, f, 4)

	if _, err := f.engine.ForceFinishGame(room.Code, players[1].ID); err != ErrNotAuthorized {
		t.Errorf("Expected ErrNotAuthorized for non-host, got %v", err)
	}

	if _, err := f.engine.ForceFinishGame(room.Code, players[0].ID); err != nil {
		t.Fatalf("ForceFinishGame failed: %v", err)
	}
	if room.Status != StatusFinished {
		t.Errorf("Expected FINISHED, got %s", room.Status)
	}
	if room.FinishReason != FinishHostForced {
		t.Errorf("Expected HOST_FORCED, got %s", room.FinishReason)
	}
	if len(room.WinnerTeamIDs) != 0 {
		t.Errorf("Forced finish should declare no winners, got %v", room.WinnerTeamIDs)
	}
	if len(room.CurrentAttempts) != 0 {
		t.Error("Attempts should be cleared on finish")
	}

	// Finished rooms can only be left or disbanded, not restarted.
	if _, err := f.engine.ForceFinishGame(room.Code, players[0].ID); err != ErrInvalidState {
		t.Errorf("Expected ErrInvalidState on second force finish, got %v", err)
	}
}

func TestReconnectPlayer_UnknownPlayer(t *testing.T) {
	f := newTestEngine(t, Options{})
	room, _, _ := f.engine.CreateRoom("sess-0", "host", 4)

	if _, err := f.engine.ReconnectPlayer(room.Code, "ghost", "sess-9"); err != ErrPlayerNotFound {
		t.Errorf("Expected ErrPlayerNotFound, got %v", err)
	}
}
