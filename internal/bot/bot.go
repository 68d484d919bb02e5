// Package bot implements the heuristic decision engine for bot players.
//
// A bot turn is a single call to SelectMove: pick a plan, walk a
// difficulty-tiered action cascade until something legal applies, resolve any
// pending obligations the action queued, then check win conditions and
// advance the turn. The cascade always bottoms out at "pass", so a bot turn
// can always complete.
package bot

import (
	"fmt"
	"strings"

	"github.com/S4LUD/quantum-nexus-sub000/internal/game"
)

// Decision is the outcome of one bot turn.
type Decision struct {
	State    *game.GameState
	WinnerID string // "" while the match continues
	Notice   string // human-readable account of the move
}

// SelectMove plays one full turn for the acting (bot) player.
func SelectMove(s *game.GameState, difficulty game.BotDifficulty) Decision {
	p := *s.CurrentPlayer()
	plan := pickPlan(s, p, difficulty)

	var next *game.GameState
	var notice string
	switch difficulty {
	case game.BotHard:
		next, notice = hardMove(s, p, plan)
	case game.BotMedium:
		next, notice = mediumMove(s, p, plan)
	default:
		next, notice = easyMove(s, p)
	}

	next = resolveObligations(next)
	next = game.ResolveWinner(next)
	if next.WinnerID != "" {
		return Decision{State: next, WinnerID: next.WinnerID, Notice: notice}
	}

	// The bot engine owns turn advancement for its own moves.
	next = game.AdvanceTurn(next)
	return Decision{State: next, Notice: notice}
}

// easyMove: claim anything claimable, build anything affordable (market then
// reserved), collect without targeting, reserve the first market node, pass.
func easyMove(s *game.GameState, p game.Player) (*game.GameState, string) {
	if claimable := claimableProtocols(s, p); len(claimable) > 0 {
		return claim(s, p, claimable[0])
	}
	if nodes := affordable(marketNodes(s), p); len(nodes) > 0 {
		return build(s, p, nodes[0])
	}
	if nodes := affordable(p.ReservedNodes, p); len(nodes) > 0 {
		return build(s, p, nodes[0])
	}
	if picks := planCollection(s, nil); picks != nil {
		return collect(s, p, picks)
	}
	if market := marketNodes(s); len(market) > 0 {
		if next, notice, ok := reserve(s, p, market[0]); ok {
			return next, notice
		}
	}
	return pass(s, p)
}

// mediumMove plays toward the plan: plan-best build (market then reserved),
// first claim, targeted collection, reservation, pass.
func mediumMove(s *game.GameState, p game.Player, plan Plan) (*game.GameState, string) {
	pressure := pressureTypes(s, p)

	if n, ok := bestNodeForPlan(plan, affordable(marketNodes(s), p), pressure); ok {
		return build(s, p, n)
	}
	if n, ok := bestNodeForPlan(plan, affordable(p.ReservedNodes, p), pressure); ok {
		return build(s, p, n)
	}
	if claimable := claimableProtocols(s, p); len(claimable) > 0 {
		return claim(s, p, claimable[0])
	}
	if next, notice, ok := targetedCollection(s, p); ok {
		return next, notice
	}
	if n, ok := bestNodeForPlan(plan, marketNodes(s), pressure); ok {
		if next, notice, ok := reserve(s, p, n); ok {
			return next, notice
		}
	}
	return pass(s, p)
}

// hardMove adds opponent modeling on top of the medium cascade: win-closing
// claims first, then denial builds/reserves, then an efficiency push when the
// turn limit looms, then the plan-driven fallbacks.
func hardMove(s *game.GameState, p game.Player, plan Plan) (*game.GameState, string) {
	pressure := pressureTypes(s, p)
	deny := denyTypes(s, p)
	claimable := claimableProtocols(s, p)

	// 1. A claim that wins outright.
	if len(p.Protocols)+1 >= game.ProtocolWinThreshold && len(claimable) > 0 {
		return claim(s, p, bestProtocol(claimable))
	}

	// 2. Denial: grab a node generating an output the primary opponent is
	// about to need, building it if possible, reserving it otherwise.
	if len(deny) > 0 {
		wanted := make(map[game.EnergyType]bool, len(deny))
		for _, t := range deny {
			wanted[t] = true
		}
		var denialTargets []game.Node
		for _, n := range marketNodes(s) {
			if wanted[n.OutputType] {
				denialTargets = append(denialTargets, n)
			}
		}
		if buildable := affordable(denialTargets, p); len(buildable) > 0 {
			return build(s, p, buildable[0])
		}
		if len(denialTargets) > 0 {
			if next, notice, ok := reserve(s, p, denialTargets[0]); ok {
				return next, notice
			}
		}
	}

	// 3. Efficiency push once the turn limit is close.
	if s.TurnCount >= game.TurnThreshold-2 {
		var push *game.Node
		for _, n := range affordable(marketNodes(s), p) {
			if p.Efficiency+n.Efficiency >= game.EfficiencyWinMinimum {
				if push == nil || n.Efficiency > push.Efficiency {
					cp := n
					push = &cp
				}
			}
		}
		if push != nil {
			return build(s, p, *push)
		}
	}

	// 4. Plan-best build, market then reserved.
	if n, ok := bestNodeForPlan(plan, affordable(marketNodes(s), p), pressure); ok {
		return build(s, p, n)
	}
	if n, ok := bestNodeForPlan(plan, affordable(p.ReservedNodes, p), pressure); ok {
		return build(s, p, n)
	}

	// 5. Any affordable build that completes the network outright.
	if len(p.Nodes) == game.NetworkWinThreshold-1 {
		closing := append(affordable(marketNodes(s), p), affordable(p.ReservedNodes, p)...)
		if len(closing) > 0 {
			return build(s, p, closing[0])
		}
	}

	// 6. Remaining claims, best first.
	if len(claimable) > 0 {
		return claim(s, p, bestProtocol(claimable))
	}

	// 7. Gather toward the next build, reserve, or pass.
	if next, notice, ok := targetedCollection(s, p); ok {
		return next, notice
	}
	if n, ok := bestNodeForPlan(plan, marketNodes(s), pressure); ok {
		if next, notice, ok := reserve(s, p, n); ok {
			return next, notice
		}
	}
	return pass(s, p)
}

func bestProtocol(candidates []game.Protocol) game.Protocol {
	best := candidates[0]
	for _, proto := range candidates[1:] {
		if proto.Efficiency > best.Efficiency {
			best = proto
		}
	}
	return best
}

// targetedCollection gathers toward the best-value market node: a covering
// triple, a supported double, a simulated exchange that unlocks the target,
// then a plain default collection.
func targetedCollection(s *game.GameState, p game.Player) (*game.GameState, string, bool) {
	var target *game.Node
	for _, n := range marketNodes(s) {
		if target == nil || scoreNode(n) > scoreNode(*target) {
			cp := n
			target = &cp
		}
	}

	var needed []game.EnergyType
	if target != nil {
		needed = neededTypesFor(*target, p)
	}

	if picks := planCollection(s, needed); picks != nil {
		next, notice := collect(s, p, picks)
		return next, notice, true
	}

	if target != nil {
		if take, takeCount, give, ok := planExchange(s, p, *target); ok {
			next := game.ApplyExchangeEnergy(s, take, takeCount, give)
			notice := fmt.Sprintf("%s exchanges for %dx %s", p.Name, takeCount, take)
			return next, notice, true
		}
	}

	if picks := planCollection(s, nil); picks != nil {
		next, notice := collect(s, p, picks)
		return next, notice, true
	}
	return s, "", false
}

func pass(s *game.GameState, p game.Player) (*game.GameState, string) {
	return s, fmt.Sprintf("%s passes", p.Name)
}

func claim(s *game.GameState, p game.Player, proto game.Protocol) (*game.GameState, string) {
	next := game.ApplyProtocolClaim(s, proto.ID)
	return next, fmt.Sprintf("%s claims %s", p.Name, proto.Name)
}

func build(s *game.GameState, p game.Player, n game.Node) (*game.GameState, string) {
	next := game.ApplyNodePurchase(s, n.ID)
	return next, fmt.Sprintf("%s builds %s", p.Name, n.Name)
}

func collect(s *game.GameState, p game.Player, picks []game.EnergyType) (*game.GameState, string) {
	next := game.ApplyEnergyCollection(s, picks)
	names := make([]string, len(picks))
	for i, t := range picks {
		names[i] = string(t)
	}
	return next, fmt.Sprintf("%s collects %s", p.Name, strings.Join(names, ", "))
}

func reserve(s *game.GameState, p game.Player, n game.Node) (*game.GameState, string, bool) {
	next := game.ApplyNodeReservation(s, n.ID, true)
	if next == s {
		return s, "", false
	}
	return next, fmt.Sprintf("%s reserves %s", p.Name, n.Name), true
}

// resolveObligations greedily settles whatever the chosen action queued:
// pending draws (first option, first slot), pending swaps (abundance trade,
// skipped when unsatisfiable), and any over-limit discard.
func resolveObligations(s *game.GameState) *game.GameState {
	p := s.CurrentPlayer()

	if p.Pending.Draw > 0 {
		for _, category := range game.NodeCategories {
			options := game.GetDrawOptions(s, category)
			if len(options) == 0 {
				continue
			}
			s = game.ApplyDrawEffect(s, category, options[0].ID, 0)
			break
		}
		// A draw with every deck empty is unresolvable; waive it.
		if s.CurrentPlayer().Pending.Draw > 0 {
			next := s.Clone()
			next.CurrentPlayer().Pending.Draw = 0
			s = next
		}
	}

	if s.CurrentPlayer().Pending.Swap > 0 {
		if give, take, ok := planSwap(s, *s.CurrentPlayer()); ok {
			s = game.ApplySwapEffect(s, give, take)
		}
		s = game.SkipSwap(s)
	}

	if discards := planDiscard(*s.CurrentPlayer()); discards != nil {
		s = game.ApplyEnergyDiscard(s, discards)
	}

	return s
}
