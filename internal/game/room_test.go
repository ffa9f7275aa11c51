package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoom_LobbyReadyAndSettings(t *testing.T) {
	h := newHarness(t, testPolicy())
	_, hostRes := h.mustJoin("Alice", h.hostID)
	assert.Equal(t, h.hostID, hostRes.PlayerID)

	bobConn, bobRes := h.mustJoin("Bob", 0)
	assert.NotEqual(t, h.hostID, bobRes.PlayerID)
	assert.GreaterOrEqual(t, bobRes.PlayerID, 10000)
	assert.LessOrEqual(t, bobRes.PlayerID, 99999)

	h.room.handleAction(bobRes.PlayerID, SetReadyAction{Ready: true})
	snap := h.room.snapshot()
	for _, p := range snap.Players {
		if p.ID == bobRes.PlayerID {
			assert.True(t, p.IsReady)
		}
	}

	// Only the host may touch settings.
	h.room.handleAction(bobRes.PlayerID, UpdateSettingsAction{Settings: Settings{TotalRounds: 5, MusicDuration: 15, GameType: ModeRegular}})
	require.NotNil(t, bobConn.lastOf("error"))
	assert.Equal(t, DefaultSettings(), h.room.settings)

	// Out-of-range values are rejected wholesale.
	h.room.handleAction(h.hostID, UpdateSettingsAction{Settings: Settings{TotalRounds: 3, MusicDuration: 30, GameType: ModeRegular}})
	assert.Equal(t, DefaultSettings(), h.room.settings)

	h.room.handleAction(h.hostID, UpdateSettingsAction{Settings: Settings{TotalRounds: 7, MusicDuration: 20, GameType: ModeSpeed}})
	assert.Equal(t, 7, h.room.settings.TotalRounds)
	require.NotNil(t, bobConn.lastOf("settings_updated"))
}

func TestRoom_RegularGameScenario(t *testing.T) {
	h := newHarness(t, testPolicy())
	aliceConn, _ := h.mustJoin("Alice", h.hostID)
	bobConn, bobRes := h.mustJoin("Bob", 0)

	// Only the host can start.
	h.room.handleAction(bobRes.PlayerID, StartGameAction{})
	assert.Equal(t, PhaseLobby, h.room.phase)

	h.startGame()
	assert.Equal(t, PhaseRoundActive, h.room.phase)
	assert.Equal(t, 1, h.room.round)

	// Mid-round state must not leak the answer.
	state := bobConn.lastOf("update_state")["state"].(map[string]any)
	track := state["current_track"].(map[string]any)
	assert.NotEmpty(t, track["preview_url"])
	assert.Nil(t, track["answer"])
	assert.Nil(t, track["title"])

	// Alice guesses right at 5s: flat 10 in regular mode.
	h.clock.Advance(5 * time.Second)
	h.drain()
	h.room.handleAction(h.hostID, GuessAction{Text: "aashiqui 2"})
	result := aliceConn.lastOf("guess_result")
	require.NotNil(t, result)
	assert.Equal(t, true, result["correct"])
	assert.Equal(t, float64(10), result["points_earned"])

	// A second guess from the same player is ignored.
	h.room.handleAction(h.hostID, GuessAction{Text: "aashiqui 2"})
	assert.Equal(t, 1, aliceConn.countOf("guess_result"))
	assert.Equal(t, 10, h.room.snapshot().Scores[h.hostID])

	// Bob guesses wrong: 0 points, and with all players in the reveal
	// starts without waiting out the clock.
	h.room.handleAction(bobRes.PlayerID, GuessAction{Text: "some other song"})
	bobResult := bobConn.lastOf("guess_result")
	require.NotNil(t, bobResult)
	assert.Equal(t, false, bobResult["correct"])
	assert.Equal(t, float64(0), bobResult["points_earned"])
	assert.Equal(t, PhaseReveal, h.room.phase)

	end := bobConn.lastOf("round_end")
	require.NotNil(t, end)
	assert.Equal(t, "Aashiqui 2", end["correct_answer"])

	// Guesses after the reveal are dropped.
	h.room.handleAction(bobRes.PlayerID, GuessAction{Text: "aashiqui 2"})
	assert.Equal(t, 0, h.room.snapshot().Scores[bobRes.PlayerID])

	// The original 30s round timer still fires, but it is stale: the round
	// must end exactly once no matter how many expirations arrive.
	h.clock.Advance(30 * time.Second)
	h.drain()
	assert.Equal(t, 1, bobConn.countOf("round_end"))

	// The reveal pause elapsed during that advance, so round 2 is fetching.
	h.awaitOne()
	snap := h.room.snapshot()
	assert.Equal(t, 2, snap.CurrentRound)
	assert.True(t, snap.IsRoundActive)
}

func TestRoom_RoundExpiresWithNoGuesses(t *testing.T) {
	h := newHarness(t, testPolicy())
	aliceConn, _ := h.mustJoin("Alice", h.hostID)

	h.startGame()
	h.clock.Advance(30 * time.Second)
	h.drain()

	assert.Equal(t, PhaseReveal, h.room.phase)
	assert.Equal(t, 0, aliceConn.countOf("guess_result"))
	assert.Equal(t, 0, h.room.snapshot().Scores[h.hostID])
	require.NotNil(t, aliceConn.lastOf("round_end"))
}

func TestRoom_SpeedScoring(t *testing.T) {
	h := newHarness(t, testPolicy())
	aliceConn, _ := h.mustJoin("Alice", h.hostID)
	bobConn, bobRes := h.mustJoin("Bob", 0)

	h.room.handleAction(h.hostID, UpdateSettingsAction{Settings: Settings{TotalRounds: 5, MusicDuration: 30, GameType: ModeSpeed}})
	h.startGame()

	// Instant guess earns the max.
	h.room.handleAction(h.hostID, GuessAction{Text: "aashiqui 2"})
	assert.Equal(t, float64(20), aliceConn.lastOf("guess_result")["points_earned"])

	// Halfway through the clip: 20 - 15*(15/30) rounds to 13.
	h.clock.Advance(15 * time.Second)
	h.drain()
	h.room.handleAction(bobRes.PlayerID, GuessAction{Text: "aashiqui 2"})
	assert.Equal(t, float64(13), bobConn.lastOf("guess_result")["points_earned"])

	scores := h.room.snapshot().Scores
	assert.Equal(t, 20, scores[h.hostID])
	assert.Equal(t, 13, scores[bobRes.PlayerID])
}

func TestRoom_KickAndHostReassign(t *testing.T) {
	h := newHarness(t, testPolicy())
	aliceConn, _ := h.mustJoin("Alice", h.hostID)
	bobConn, bobRes := h.mustJoin("Bob", 0)
	_, charlieRes := h.mustJoin("Charlie", 0)

	// Non-host kicks are ignored.
	h.room.handleAction(bobRes.PlayerID, KickPlayerAction{PlayerID: charlieRes.PlayerID})
	assert.Len(t, h.room.players, 3)

	h.room.handleAction(h.hostID, KickPlayerAction{PlayerID: bobRes.PlayerID})
	assert.Len(t, h.room.players, 2)
	assert.True(t, bobConn.closed)
	assert.Equal(t, "Kicked by host", bobConn.reason)
	require.NotNil(t, aliceConn.lastOf("game_notification"))

	// Host drops and the grace window runs out: the role moves to the
	// earliest remaining joiner.
	h.room.handleDisconnect(h.hostID, aliceConn.ID())
	h.clock.Advance(60 * time.Second)
	h.drain()

	snap := h.room.snapshot()
	assert.Equal(t, charlieRes.PlayerID, snap.HostID)
	assert.Len(t, snap.Players, 1)
}

func TestRoom_ReconnectKeepsSeatAndScore(t *testing.T) {
	h := newHarness(t, testPolicy())
	h.mustJoin("Alice", h.hostID)
	bobConn, bobRes := h.mustJoin("Bob", 0)

	h.startGame()
	h.room.handleAction(bobRes.PlayerID, GuessAction{Text: "aashiqui 2"})
	assert.Equal(t, 10, h.room.snapshot().Scores[bobRes.PlayerID])

	h.room.handleDisconnect(bobRes.PlayerID, bobConn.ID())

	// A stale disconnect notice for an already replaced connection is a no-op.
	h.room.handleDisconnect(bobRes.PlayerID, bobConn.ID())

	// Reconnect by name within the grace window resumes the same seat.
	h.clock.Advance(30 * time.Second)
	h.drain()
	_, res, err := h.join("Bob", 0)
	require.NoError(t, err)
	assert.Equal(t, bobRes.PlayerID, res.PlayerID)
	assert.True(t, res.Reconnect)
	assert.Equal(t, 10, h.room.snapshot().Scores[bobRes.PlayerID])

	// The old grace timer must not evict the reconnected player.
	h.clock.Advance(60 * time.Second)
	h.drain()
	assert.Len(t, h.room.players, 2)
}

func TestRoom_SeatTokenReconnectDuringGame(t *testing.T) {
	h := newHarness(t, testPolicy())
	h.mustJoin("Alice", h.hostID)
	bobConn, bobRes := h.mustJoin("Bob", 0)

	h.startGame()
	h.room.handleDisconnect(bobRes.PlayerID, bobConn.ID())

	// A seat claim by id works even mid-game.
	_, res, err := h.join("", bobRes.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, bobRes.PlayerID, res.PlayerID)

	// A brand-new name cannot enter a running game.
	_, _, err = h.join("Mallory", 0)
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestRoom_GraceExpiryRemovesPlayer(t *testing.T) {
	h := newHarness(t, testPolicy())
	h.mustJoin("Alice", h.hostID)
	bobConn, bobRes := h.mustJoin("Bob", 0)

	h.room.handleDisconnect(bobRes.PlayerID, bobConn.ID())
	h.clock.Advance(60 * time.Second)
	h.drain()

	snap := h.room.snapshot()
	assert.Len(t, snap.Players, 1)
	_, hasScore := snap.Scores[bobRes.PlayerID]
	assert.False(t, hasScore)
}

func TestRoom_StaleSeatClaimNeedsName(t *testing.T) {
	h := newHarness(t, testPolicy())
	h.mustJoin("Alice", h.hostID)

	// A seat id that no longer exists falls through to the fresh-join
	// rules, which demand a display name.
	_, _, err := h.join("", 54321)
	assert.ErrorIs(t, err, ErrNameRequired)

	// With a name the same request simply becomes a new lobby join.
	_, res, err := h.join("Bob", 54321)
	require.NoError(t, err)
	assert.NotEqual(t, 54321, res.PlayerID)
	assert.False(t, res.Reconnect)
}

func TestRoom_RoomFull(t *testing.T) {
	policy := testPolicy()
	policy.MaxPlayers = 2
	h := newHarness(t, policy)
	h.mustJoin("Alice", h.hostID)
	h.mustJoin("Bob", 0)

	_, _, err := h.join("Charlie", 0)
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestRoom_TrackFetchFailureSkipsRound(t *testing.T) {
	h := newHarness(t, testPolicy())
	aliceConn, _ := h.mustJoin("Alice", h.hostID)

	// Both the fetch and its retry fail.
	h.tracks.push(Track{}, assert.AnError)
	h.tracks.push(Track{}, assert.AnError)

	h.startGame()
	assert.Equal(t, PhaseLobby, h.room.phase)
	assert.Equal(t, 1, h.room.round)
	note := aliceConn.lastOf("game_notification")
	require.NotNil(t, note)
	assert.Contains(t, note["message"], "Round 1")
	assert.Contains(t, note["message"], "skipped")

	// After the pause the next round proceeds with a healthy provider.
	h.clock.Advance(10 * time.Second)
	h.drain()
	h.awaitOne()
	assert.Equal(t, PhaseRoundActive, h.room.phase)
	assert.Equal(t, 2, h.room.round)
}

func TestRoom_GameOverRecordsStandings(t *testing.T) {
	h := newHarness(t, testPolicy())
	aliceConn, _ := h.mustJoin("Alice", h.hostID)

	h.room.handleAction(h.hostID, UpdateSettingsAction{Settings: Settings{TotalRounds: 5, MusicDuration: 15, GameType: ModeRegular}})
	h.startGame()

	for round := 1; round <= 5; round++ {
		assert.Equal(t, round, h.room.round)
		// Solo player guessing right ends the round immediately.
		h.room.handleAction(h.hostID, GuessAction{Text: "aashiqui 2"})
		assert.Equal(t, PhaseReveal, h.room.phase)
		h.clock.Advance(10 * time.Second)
		h.drain()
		if round < 5 {
			h.awaitOne()
		}
	}

	assert.Equal(t, PhaseFinished, h.room.phase)
	assert.Equal(t, 50, h.room.snapshot().Scores[h.hostID])

	over := aliceConn.lastOf("game_over")
	require.NotNil(t, over)

	require.Len(t, h.mirror.standings, 1)
	assert.Equal(t, "ABC123", h.mirror.codes[0])
	assert.Equal(t, Standing{PlayerID: h.hostID, Name: "Alice", Score: 50}, h.mirror.standings[0][0])

	// The finished room doubles as a lobby: the host can start a rematch
	// with scores wiped.
	h.startGame()
	assert.Equal(t, PhaseRoundActive, h.room.phase)
	assert.Equal(t, 1, h.room.round)
	assert.Equal(t, 0, h.room.snapshot().Scores[h.hostID])
}

func TestRoom_FinishResetsReadyAndAllowsKick(t *testing.T) {
	policy := testPolicy()
	policy.RequireReady = true
	h := newHarness(t, policy)
	h.mustJoin("Alice", h.hostID)
	bobConn, bobRes := h.mustJoin("Bob", 0)
	_, charlieRes := h.mustJoin("Charlie", 0)

	h.room.handleAction(h.hostID, UpdateSettingsAction{Settings: Settings{TotalRounds: 5, MusicDuration: 15, GameType: ModeRegular}})
	h.room.handleAction(bobRes.PlayerID, SetReadyAction{Ready: true})
	h.room.handleAction(charlieRes.PlayerID, SetReadyAction{Ready: true})
	h.startGame()

	for round := 1; round <= 5; round++ {
		h.room.handleAction(h.hostID, GuessAction{Text: "aashiqui 2"})
		h.room.handleAction(bobRes.PlayerID, GuessAction{Text: "aashiqui 2"})
		h.room.handleAction(charlieRes.PlayerID, GuessAction{Text: "aashiqui 2"})
		assert.Equal(t, PhaseReveal, h.room.phase)
		h.clock.Advance(10 * time.Second)
		h.drain()
		if round < 5 {
			h.awaitOne()
		}
	}
	require.Equal(t, PhaseFinished, h.room.phase)

	// Ready flags from the previous game must not leak into the rematch.
	for _, p := range h.room.snapshot().Players {
		assert.False(t, p.IsReady, "player %d still ready after game over", p.ID)
	}
	h.room.handleAction(h.hostID, StartGameAction{})
	assert.Equal(t, PhaseFinished, h.room.phase)

	// The host can still manage the post-game lobby.
	h.room.handleAction(h.hostID, KickPlayerAction{PlayerID: charlieRes.PlayerID})
	assert.Len(t, h.room.players, 2)

	h.room.handleAction(bobRes.PlayerID, SetReadyAction{Ready: true})
	require.NotNil(t, bobConn.lastOf("update_state"))
	h.startGame()
	assert.Equal(t, PhaseRoundActive, h.room.phase)
	assert.Equal(t, 1, h.room.round)
}

func TestRoom_ChatBroadcast(t *testing.T) {
	h := newHarness(t, testPolicy())
	aliceConn, _ := h.mustJoin("Alice", h.hostID)
	bobConn, bobRes := h.mustJoin("Bob", 0)

	h.room.handleAction(bobRes.PlayerID, ChatAction{Text: "<b>hi</b> all"})

	for _, conn := range []*fakeConn{aliceConn, bobConn} {
		msg := conn.lastOf("chat_message")
		require.NotNil(t, msg)
		assert.Equal(t, "Bob", msg["player_name"])
		assert.Equal(t, "hi all", msg["text"])
	}

	// Empty chat after sanitization is dropped.
	h.room.handleAction(bobRes.PlayerID, ChatAction{Text: "   "})
	assert.Equal(t, 1, aliceConn.countOf("chat_message"))
}

func TestRoom_RequireReadyGate(t *testing.T) {
	policy := testPolicy()
	policy.RequireReady = true
	h := newHarness(t, policy)
	aliceConn, _ := h.mustJoin("Alice", h.hostID)
	_, bobRes := h.mustJoin("Bob", 0)

	h.room.handleAction(h.hostID, StartGameAction{})
	assert.Equal(t, PhaseLobby, h.room.phase)
	require.NotNil(t, aliceConn.lastOf("error"))

	h.room.handleAction(bobRes.PlayerID, SetReadyAction{Ready: true})
	h.startGame()
	assert.Equal(t, PhaseRoundActive, h.room.phase)
}
