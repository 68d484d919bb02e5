package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S4LUD/quantum-nexus-sub000/internal/game"
	"github.com/S4LUD/quantum-nexus-sub000/internal/realtime"
)

// localState builds a bare 2-human state with an empty market.
func localState() *game.GameState {
	s := &game.GameState{
		Phase:        game.PhasePlaying,
		EnergyPool:   map[game.EnergyType]int{game.Solar: 4, game.Hydro: 4, game.Plasma: 4, game.Neural: 4, game.Flux: 5},
		PoolCapacity: map[game.EnergyType]int{game.Solar: 4, game.Hydro: 4, game.Plasma: 4, game.Neural: 4, game.Flux: 5},
		Decks:        make(map[game.NodeCategory][]game.Node),
		MarketNodes:  make([][]*game.Node, len(game.NodeCategories)),
	}
	for row := range game.NodeCategories {
		s.MarketNodes[row] = make([]*game.Node, game.MarketColumns)
	}
	s.Players = []game.Player{
		{ID: "p1", Name: "Player 1", Energy: make(map[game.EnergyType]int), Pending: game.NewPendingEffects()},
		{ID: "p2", Name: "Player 2", Energy: make(map[game.EnergyType]int), Pending: game.NewPendingEffects()},
	}
	return s
}

func TestSwapStageBlocksEndTurn(t *testing.T) {
	state := localState()
	state.Players[0].Pending.Swap = 1
	sess := New(state, 0, nil)
	defer sess.Close()

	assert.Equal(t, StageResolvingSwap, sess.Stage())
	assert.False(t, sess.EndTurn(), "an open swap obligation pins the turn")

	require.True(t, sess.SkipSwap())
	assert.Equal(t, StageActing, sess.Stage())
	require.True(t, sess.EndTurn())
	assert.Equal(t, 1, sess.State().CurrentPlayerIndex)
}

func TestDrawStageBlocksEndTurn(t *testing.T) {
	state := localState()
	state.Players[0].Pending.Draw = 1
	state.Decks[game.Research] = []game.Node{
		{ID: "revealed", Name: "revealed", Category: game.Research, Efficiency: 1, OutputType: game.Neural},
	}
	sess := New(state, 0, nil)
	defer sess.Close()

	assert.Equal(t, StageResolvingDraw, sess.Stage())
	assert.False(t, sess.EndTurn())

	require.True(t, sess.ResolveDraw(game.Research, "revealed", 0))
	assert.Equal(t, StageActing, sess.Stage())
	require.NotNil(t, sess.State().MarketNodes[0][0])
	require.True(t, sess.EndTurn())
}

func TestDiscardStageBlocksEndTurn(t *testing.T) {
	state := localState()
	state.Players[0].Energy = map[game.EnergyType]int{game.Solar: 11}
	state.EnergyPool[game.Solar] = 0
	sess := New(state, 0, nil)
	defer sess.Close()

	assert.Equal(t, StageDiscarding, sess.Stage())
	assert.False(t, sess.EndTurn())

	require.True(t, sess.Discard([]game.EnergyType{game.Solar}))
	assert.Equal(t, StageActing, sess.Stage())
	require.True(t, sess.EndTurn())
}

func TestRejectedActionsReportFalse(t *testing.T) {
	sess := New(localState(), 0, nil)
	defer sess.Close()

	before := sess.State()
	assert.False(t, sess.Collect([]game.EnergyType{game.Solar}), "illegal pick shape")
	assert.False(t, sess.Build("no_such_node"))
	assert.False(t, sess.Claim("no_such_protocol"))
	assert.False(t, sess.SkipSwap(), "nothing pending to skip")
	assert.Same(t, before, sess.State(), "rejected actions never swap the snapshot")
}

func TestWinningClaimEndsTheMatch(t *testing.T) {
	state := localState()
	p := &state.Players[0]
	p.Protocols = []game.Protocol{{ID: "c1", Claimed: true}, {ID: "c2", Claimed: true}}
	p.Nodes = []game.Node{
		{ID: "a", Category: game.Production, OutputType: game.Solar},
		{ID: "b", Category: game.Production, OutputType: game.Solar},
	}
	state.Protocols = []game.Protocol{{
		ID: "pro", Name: "Solar Charter", Efficiency: 2,
		Requirements: map[game.EnergyType]int{game.Solar: 2},
	}}

	events := make(chan Update, 4)
	sess := New(state, 0, func(u Update) { events <- u })
	defer sess.Close()

	require.True(t, sess.Claim("pro"))
	assert.Equal(t, StageEnded, sess.Stage())
	assert.Equal(t, "p1", sess.State().WinnerID)

	u := <-events
	assert.Equal(t, game.PhaseEnded, u.State.Phase)

	// Nothing moves after the match ends.
	assert.False(t, sess.Collect([]game.EnergyType{game.Solar, game.Hydro, game.Plasma}))
	assert.False(t, sess.EndTurn())
}

func TestStaleRemoteVersionsAreDiscarded(t *testing.T) {
	snapshot := func(version int) realtime.PublicMatchState {
		return realtime.PublicMatchState{
			MatchID:      "AB4CD",
			Status:       "playing",
			StateVersion: version,
			EnergyPool:   map[string]int{"solar": 4},
			Players: []realtime.PublicPlayer{
				{ID: "pl_1", Name: "Ada"},
				{ID: "pl_2", Name: "Grace"},
			},
		}
	}

	sess := New(localState(), 0, nil)
	defer sess.Close()

	require.True(t, sess.ApplySnapshot(snapshot(5)))
	assert.Equal(t, 5, sess.StateVersion())
	assert.Equal(t, "pl_1", sess.State().Players[0].ID)

	assert.False(t, sess.ApplyPatch(realtime.Patch{StateVersion: 5, State: snapshot(5)}), "same version is stale")
	assert.False(t, sess.ApplyPatch(realtime.Patch{StateVersion: 4, State: snapshot(4)}))
	assert.Equal(t, 5, sess.StateVersion())

	require.True(t, sess.ApplyPatch(realtime.Patch{StateVersion: 6, State: snapshot(6)}))
	assert.Equal(t, 6, sess.StateVersion())
}

func TestScheduledBotPlaysAfterHumanTurn(t *testing.T) {
	events := make(chan Update, 16)
	sess, err := NewLocal(
		game.MatchConfig{Players: 2, Bots: 1, BotDifficulty: game.BotEasy, Seed: 11},
		10*time.Millisecond,
		func(u Update) { events <- u },
	)
	require.NoError(t, err)
	defer sess.Close()

	require.True(t, sess.EndTurn(), "the human passes straight away")
	u := <-events
	assert.Equal(t, "turn ended", u.Notice)

	select {
	case u = <-events:
		assert.NotEmpty(t, u.Notice)
		assert.Contains(t, u.Notice, "Bot 1")
		assert.Equal(t, 0, u.State.CurrentPlayerIndex, "the bot hands the turn back")
	case <-time.After(2 * time.Second):
		t.Fatal("the scheduled bot move never fired")
	}
}

func TestCloseCancelsScheduledBot(t *testing.T) {
	events := make(chan Update, 16)
	sess, err := NewLocal(
		game.MatchConfig{Players: 2, Bots: 1, BotDifficulty: game.BotEasy, Seed: 11},
		50*time.Millisecond,
		func(u Update) { events <- u },
	)
	require.NoError(t, err)

	require.True(t, sess.EndTurn())
	<-events // the human's turn end
	sess.Close()

	select {
	case u := <-events:
		t.Fatalf("bot move %q fired after Close", u.Notice)
	case <-time.After(200 * time.Millisecond):
	}
}
