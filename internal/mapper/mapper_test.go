package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S4LUD/quantum-nexus-sub000/internal/game"
	"github.com/S4LUD/quantum-nexus-sub000/internal/realtime"
)

func serverSnapshot() realtime.PublicMatchState {
	return realtime.PublicMatchState{
		MatchID:             "AB4CD",
		Status:              "playing",
		StateVersion:        12,
		CurrentTurnPlayerID: "pl_2",
		TurnCount:           6,
		EnergyPool:          map[string]int{"solar": 2, "hydro": 4, "plasma": 0, "neural": 1, "flux": 3},
		MarketNodeIDs: [][]string{
			{"res_scan_array", "res_probe_lab", "", "res_field_survey"},
			{"prd_solar_farm", "prd_tidal_plant", "prd_fusion_cell", "prd_geo_tap"},
			{"net_relay_post", "net_mesh_link", "net_edge_router", "net_trunk_line"},
			{"ctl_overseer", "ctl_phase_gate", "ctl_null_buffer", "ctl_sync_beacon"},
		},
		DeckNodeIDs: map[string][]string{
			"research": {"res_quantum_sim", "res_lens_grid"},
			"control":  {"ctl_helm_matrix"},
		},
		Protocols: []realtime.PublicProtocol{
			{ID: "pro_solar_charter", ClaimedBy: "pl_1"},
			{ID: "pro_hydro_compact"},
			{ID: "pro_grid_concord"},
		},
		Players: []realtime.PublicPlayer{
			{
				ID: "pl_1", Name: "Ada", Efficiency: 5,
				Energy:      map[string]int{"solar": 2, "flux": 1},
				NodeIDs:     []string{"prd_dyson_petal", "net_backbone_ring"},
				ProtocolIDs: []string{"pro_solar_charter"},
			},
			{
				ID: "pl_2", Name: "Bot 1", IsBot: true, BotDifficulty: "hard",
				Energy:          map[string]int{"hydro": 1},
				ReservedNodeIDs: []string{"ctl_axiom_vault"},
			},
		},
	}
}

func TestMapRealtimeStateDenormalizesAgainstCatalog(t *testing.T) {
	s := MapRealtimeStateToGameState(serverSnapshot())

	assert.Equal(t, game.PhasePlaying, s.Phase)
	assert.Equal(t, 6, s.TurnCount)
	assert.Equal(t, 2, s.EnergyPool[game.Solar])
	assert.Equal(t, 3, s.EnergyPool[game.Flux])

	// Capacity comes from the player-count table, not the wire.
	assert.Equal(t, game.BasePoolSize(2), s.PoolCapacity[game.Hydro])
	assert.Equal(t, game.FluxPoolSize, s.PoolCapacity[game.Flux])

	// Market row for row; the empty ID stays an empty slot.
	require.Len(t, s.MarketNodes, 4)
	require.NotNil(t, s.MarketNodes[0][0])
	assert.Equal(t, "Scan Array", s.MarketNodes[0][0].Name)
	assert.Nil(t, s.MarketNodes[0][2])
	assert.Equal(t, "prd_geo_tap", s.MarketNodes[1][3].ID)

	// Decks keep the server's order; absent categories map to empty decks.
	require.Len(t, s.Decks[game.Research], 2)
	assert.Equal(t, "res_quantum_sim", s.Decks[game.Research][0].ID)
	assert.Empty(t, s.Decks[game.Production])

	// Protocols resolve with their claim flags.
	require.Len(t, s.Protocols, 3)
	assert.True(t, s.Protocols[0].Claimed)
	assert.False(t, s.Protocols[1].Claimed)
	assert.Equal(t, 2, s.Protocols[0].Efficiency, "catalog fields fill in the wire reference")

	// The acting seat follows currentTurnPlayerId.
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, "pl_2", s.CurrentPlayer().ID)
}

func TestMapRealtimePlayer(t *testing.T) {
	s := MapRealtimeStateToGameState(serverSnapshot())

	ada := s.Players[0]
	assert.Equal(t, "Ada", ada.Name)
	assert.Equal(t, 5, ada.Efficiency)
	assert.Equal(t, 2, ada.Energy[game.Solar])
	require.Len(t, ada.Nodes, 2)
	assert.Equal(t, "prd_dyson_petal", ada.Nodes[0].ID)
	require.Len(t, ada.Protocols, 1)
	assert.True(t, ada.Protocols[0].Claimed)

	bot := s.Players[1]
	assert.True(t, bot.IsBot)
	assert.Equal(t, game.BotHard, bot.BotDifficulty)
	require.Len(t, bot.ReservedNodes, 1)
	assert.Equal(t, "ctl_axiom_vault", bot.ReservedNodes[0].ID)

	// Pending effects never cross the wire: the server resolves them first.
	for _, p := range s.Players {
		assert.Zero(t, p.Pending.Draw)
		assert.Zero(t, p.Pending.Swap)
		assert.Empty(t, p.Pending.Discount)
		assert.Empty(t, p.Pending.Multiplier)
	}
}

func TestMapDropsUnknownIDs(t *testing.T) {
	ps := serverSnapshot()
	ps.MarketNodeIDs[0][0] = "not_in_catalog"
	ps.DeckNodeIDs["research"] = []string{"also_unknown", "res_lens_grid"}
	ps.Players[0].NodeIDs = []string{"ghost_node", "prd_dyson_petal"}
	ps.Protocols = append(ps.Protocols, realtime.PublicProtocol{ID: "pro_unknown"})

	s := MapRealtimeStateToGameState(ps)
	assert.Nil(t, s.MarketNodes[0][0])
	require.Len(t, s.Decks[game.Research], 1)
	require.Len(t, s.Players[0].Nodes, 1)
	assert.Len(t, s.Protocols, 3, "unknown protocol references are dropped")
}

func TestMapDefaultsActingSeatToZero(t *testing.T) {
	ps := serverSnapshot()
	ps.CurrentTurnPlayerID = "pl_gone"
	s := MapRealtimeStateToGameState(ps)
	assert.Equal(t, 0, s.CurrentPlayerIndex)
}

func TestMapEndedStatus(t *testing.T) {
	ps := serverSnapshot()
	ps.Status = "ended"
	ps.WinnerID = "pl_1"
	s := MapRealtimeStateToGameState(ps)
	assert.Equal(t, game.PhaseEnded, s.Phase)
	assert.Equal(t, "pl_1", s.WinnerID)
}

// The mapped state must be directly playable by the rules engine.
func TestMappedStateDrivesRules(t *testing.T) {
	s := MapRealtimeStateToGameState(serverSnapshot())

	next := game.ApplyEnergyCollection(s, []game.EnergyType{game.Flux})
	require.NotSame(t, s, next)
	assert.Equal(t, 1, next.CurrentPlayer().Energy[game.Flux])
	assert.Equal(t, 2, next.EnergyPool[game.Flux])
}
