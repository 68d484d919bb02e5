/*
Package mapper
File: mapper.go
Description:
    Stateless translation from the server's normalized PublicMatchState into
    the denormalized game.GameState the rules and bot engines operate on.
    Node and protocol IDs resolve against the static catalog; unknown IDs are
    dropped rather than invented.

    Pending effects are not transmitted in PublicMatchState (the server
    resolves them before publishing), so every mapped player carries zeroed
    counters.
*/

package mapper

import (
	"github.com/S4LUD/quantum-nexus-sub000/internal/game"
	"github.com/S4LUD/quantum-nexus-sub000/internal/realtime"
)

// MapRealtimeStateToGameState denormalizes a server snapshot into the local
// GameState shape.
func MapRealtimeStateToGameState(ps realtime.PublicMatchState) *game.GameState {
	s := &game.GameState{
		Phase:        phaseFor(ps.Status),
		WinnerID:     ps.WinnerID,
		TurnCount:    ps.TurnCount,
		EnergyPool:   mapEnergy(ps.EnergyPool),
		PoolCapacity: make(map[game.EnergyType]int),
		Decks:        make(map[game.NodeCategory][]game.Node),
		MarketNodes:  make([][]*game.Node, len(game.NodeCategories)),
	}

	// Pool capacity follows the same player-count table as initial supply.
	perType := game.BasePoolSize(len(ps.Players))
	for _, t := range game.BaseEnergyTypes {
		s.PoolCapacity[t] = perType
	}
	s.PoolCapacity[game.Flux] = game.FluxPoolSize

	// Market grid, row for row. Unknown or empty IDs become empty slots.
	for row := range game.NodeCategories {
		s.MarketNodes[row] = make([]*game.Node, game.MarketColumns)
		if row >= len(ps.MarketNodeIDs) {
			continue
		}
		for col, id := range ps.MarketNodeIDs[row] {
			if col >= game.MarketColumns {
				break
			}
			s.MarketNodes[row][col] = game.NodeByID(id)
		}
	}

	// Decks, in server order.
	for _, category := range game.NodeCategories {
		for _, id := range ps.DeckNodeIDs[string(category)] {
			if n := game.NodeByID(id); n != nil {
				s.Decks[category] = append(s.Decks[category], *n)
			}
		}
	}

	// Protocols available this match, with claim flags.
	for _, pp := range ps.Protocols {
		proto := game.ProtocolByID(pp.ID)
		if proto == nil {
			continue
		}
		resolved := *proto
		resolved.Claimed = pp.ClaimedBy != ""
		s.Protocols = append(s.Protocols, resolved)
	}

	s.Players = make([]game.Player, 0, len(ps.Players))
	for _, pp := range ps.Players {
		s.Players = append(s.Players, MapRealtimePlayer(pp, s.Protocols))
	}

	// Acting seat: locate the server's current turn player, default 0.
	for i, p := range s.Players {
		if p.ID == ps.CurrentTurnPlayerID {
			s.CurrentPlayerIndex = i
			break
		}
	}

	return s
}

// MapRealtimePlayer denormalizes one seat. matchProtocols supplies the claim
// pool so a player's claimed protocols resolve to the same entries.
func MapRealtimePlayer(pp realtime.PublicPlayer, matchProtocols []game.Protocol) game.Player {
	p := game.Player{
		ID:            pp.ID,
		Name:          pp.Name,
		Energy:        mapEnergy(pp.Energy),
		Efficiency:    pp.Efficiency,
		IsBot:         pp.IsBot,
		BotDifficulty: game.BotDifficulty(pp.BotDifficulty),
		Pending:       game.NewPendingEffects(),
	}

	for _, id := range pp.NodeIDs {
		if n := game.NodeByID(id); n != nil {
			p.Nodes = append(p.Nodes, *n)
		}
	}
	for _, id := range pp.ReservedNodeIDs {
		if n := game.NodeByID(id); n != nil {
			p.ReservedNodes = append(p.ReservedNodes, *n)
		}
	}
	for _, id := range pp.ProtocolIDs {
		for _, proto := range matchProtocols {
			if proto.ID == id {
				claimed := proto
				claimed.Claimed = true
				p.Protocols = append(p.Protocols, claimed)
				break
			}
		}
	}

	return p
}

func mapEnergy(wire map[string]int) map[game.EnergyType]int {
	out := make(map[game.EnergyType]int, len(wire))
	for k, v := range wire {
		out[game.EnergyType(k)] = v
	}
	return out
}

func phaseFor(status string) game.GamePhase {
	if status == "ended" {
		return game.PhaseEnded
	}
	return game.PhasePlaying
}
