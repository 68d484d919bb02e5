package bot

import (
	"github.com/S4LUD/quantum-nexus-sub000/internal/game"
)

// Plan is the bot's high-level intent for the turn.
type Plan string

const (
	PlanEfficiency Plan = "efficiency"
	PlanNetwork    Plan = "network"
	PlanProtocol   Plan = "protocol"
)

const (
	// protocolPressureMargin: how close to the protocol win counts as pressure.
	protocolPressureMargin = 2
	// efficiencyWinBuffer: efficiency distance from the win line that still
	// reads as "almost there" once the turn limit has passed.
	efficiencyWinBuffer = 3
	// denyMargin: an opponent lacking at most this much total output toward a
	// protocol is worth denying.
	denyMargin = 1
	// hardProtocolBias: progress-ratio bonus hard bots give the protocol plan
	// when a denial opportunity exists.
	hardProtocolBias = 0.15
)

// pickPlan computes the turn plan from situational rules, checked in order.
func pickPlan(s *game.GameState, p game.Player, difficulty game.BotDifficulty) Plan {
	claimable := claimableProtocols(s, p)
	unclaimed := 0
	for _, proto := range s.Protocols {
		if !proto.Claimed {
			unclaimed++
		}
	}

	// (a) Near the protocol endgame: one protocol left and we can take it.
	if unclaimed <= 1 && len(claimable) > 0 {
		return PlanProtocol
	}

	// (b) Protocol pressure: within reach of the protocol win and something
	// concrete to chase.
	if len(p.Protocols) >= game.ProtocolWinThreshold-protocolPressureMargin {
		if len(claimable) > 0 || len(pressureTypes(s, p)) > 0 {
			return PlanProtocol
		}
	}

	// (c) Turn limit passed and the efficiency line is close.
	if s.TurnCount >= game.TurnThreshold && p.Efficiency >= game.EfficiencyWinMinimum-efficiencyWinBuffer {
		return PlanEfficiency
	}

	// (d) One node from the network win.
	if len(p.Nodes) == game.NetworkWinThreshold-1 {
		return PlanNetwork
	}

	// (e) Default: easy bots chase efficiency; medium/hard pick the plan with
	// the best normalized progress.
	if difficulty == game.BotEasy {
		return PlanEfficiency
	}

	ratios := map[Plan]float64{
		PlanEfficiency: float64(p.Efficiency) / float64(game.EfficiencyWinMinimum),
		PlanNetwork:    float64(len(p.Nodes)) / float64(game.NetworkWinThreshold),
		PlanProtocol:   float64(len(p.Protocols)) / float64(game.ProtocolWinThreshold),
	}
	if difficulty == game.BotHard && len(denyTypes(s, p)) > 0 {
		ratios[PlanProtocol] += hardProtocolBias
	}

	best := PlanEfficiency
	for _, plan := range []Plan{PlanNetwork, PlanProtocol} {
		if ratios[plan] > ratios[best] {
			best = plan
		}
	}
	return best
}

// claimableProtocols lists the unclaimed protocols the player's output
// generation already satisfies.
func claimableProtocols(s *game.GameState, p game.Player) []game.Protocol {
	var out []game.Protocol
	for _, proto := range s.Protocols {
		if game.CanClaimProtocol(s, p, proto.ID) {
			out = append(out, proto)
		}
	}
	return out
}

// pressureTypes lists the base output types the player still lacks toward any
// unclaimed protocol. These are the outputs worth building next under the
// protocol plan.
func pressureTypes(s *game.GameState, p game.Player) []game.EnergyType {
	outputs := game.PlayerOutputs(p)
	seen := make(map[game.EnergyType]bool)
	var out []game.EnergyType
	for _, proto := range s.Protocols {
		if proto.Claimed {
			continue
		}
		for t, minimum := range proto.Requirements {
			if outputs[t] < minimum && !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// primaryOpponent picks the rival worth modeling: the highest-efficiency
// human, falling back to the highest-efficiency bot.
func primaryOpponent(s *game.GameState, self game.Player) *game.Player {
	var bestHuman, bestBot *game.Player
	for i := range s.Players {
		o := &s.Players[i]
		if o.ID == self.ID {
			continue
		}
		if o.IsBot {
			if bestBot == nil || o.Efficiency > bestBot.Efficiency {
				bestBot = o
			}
		} else {
			if bestHuman == nil || o.Efficiency > bestHuman.Efficiency {
				bestHuman = o
			}
		}
	}
	if bestHuman != nil {
		return bestHuman
	}
	return bestBot
}

// denyTypes computes the base output types the primary opponent is within
// denyMargin of needing for an unclaimed protocol. Building (or reserving)
// nodes of those outputs slows the opponent's claim.
func denyTypes(s *game.GameState, self game.Player) []game.EnergyType {
	opponent := primaryOpponent(s, self)
	if opponent == nil {
		return nil
	}
	outputs := game.PlayerOutputs(*opponent)

	seen := make(map[game.EnergyType]bool)
	var out []game.EnergyType
	for _, proto := range s.Protocols {
		if proto.Claimed {
			continue
		}
		shortfall := 0
		var lacking []game.EnergyType
		for t, minimum := range proto.Requirements {
			if outputs[t] < minimum {
				shortfall += minimum - outputs[t]
				lacking = append(lacking, t)
			}
		}
		if shortfall == 0 || shortfall > denyMargin {
			continue
		}
		for _, t := range lacking {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
