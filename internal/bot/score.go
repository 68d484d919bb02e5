package bot

import (
	"github.com/S4LUD/quantum-nexus-sub000/internal/game"
)

// scoreNode rates a node's general value:
// 2*efficiency, +1 for generating output, +effectValue when it carries an
// effect, minus 0.4 per printed cost token.
func scoreNode(n game.Node) float64 {
	score := 2 * float64(n.Efficiency)
	if game.IsBaseEnergy(n.OutputType) {
		score++
	}
	if n.EffectType != "" {
		score += float64(n.EffectValue)
	}
	score -= 0.4 * float64(n.TotalBaseCost())
	return score
}

// marketNodes flattens the market grid.
func marketNodes(s *game.GameState) []game.Node {
	var out []game.Node
	for _, row := range s.MarketNodes {
		for _, n := range row {
			if n != nil {
				out = append(out, *n)
			}
		}
	}
	return out
}

// affordable filters candidates down to what the player can pay for now.
func affordable(candidates []game.Node, p game.Player) []game.Node {
	var out []game.Node
	for _, n := range candidates {
		if game.CanAffordNode(n, p) {
			out = append(out, n)
		}
	}
	return out
}

// bestNodeForPlan picks the candidate the current plan favors.
//   - efficiency: highest efficiency-per-cost ratio
//   - network: lowest total printed cost
//   - protocol: nodes producing a pressure type first, then best score
func bestNodeForPlan(plan Plan, candidates []game.Node, pressure []game.EnergyType) (game.Node, bool) {
	if len(candidates) == 0 {
		return game.Node{}, false
	}

	switch plan {
	case PlanEfficiency:
		best := candidates[0]
		bestRatio := efficiencyRatio(best)
		for _, n := range candidates[1:] {
			if r := efficiencyRatio(n); r > bestRatio {
				best, bestRatio = n, r
			}
		}
		return best, true

	case PlanNetwork:
		best := candidates[0]
		for _, n := range candidates[1:] {
			if n.TotalBaseCost() < best.TotalBaseCost() {
				best = n
			}
		}
		return best, true

	case PlanProtocol:
		wanted := make(map[game.EnergyType]bool, len(pressure))
		for _, t := range pressure {
			wanted[t] = true
		}
		var matching []game.Node
		for _, n := range candidates {
			if wanted[n.OutputType] {
				matching = append(matching, n)
			}
		}
		if len(matching) > 0 {
			candidates = matching
		}
	}

	best := candidates[0]
	for _, n := range candidates[1:] {
		if scoreNode(n) > scoreNode(best) {
			best = n
		}
	}
	return best, true
}

func efficiencyRatio(n game.Node) float64 {
	cost := n.TotalBaseCost()
	if cost < 1 {
		cost = 1
	}
	return float64(n.Efficiency) / float64(cost)
}

// neededTypesFor lists the base types the player still lacks tokens for to
// afford the node, after outputs and discounts.
func neededTypesFor(n game.Node, p game.Player) []game.EnergyType {
	cost := game.CalculateNodeCost(n, p)
	var out []game.EnergyType
	for _, t := range game.BaseEnergyTypes {
		if cost[t] > p.Energy[t] {
			out = append(out, t)
		}
	}
	return out
}

// planCollection picks a legal collection shape, preferring coverage of the
// needed types: three different types covering the need, then a same-type
// double of the most needed type, then any legal default.
func planCollection(s *game.GameState, needed []game.EnergyType) []game.EnergyType {
	available := func(t game.EnergyType) bool { return s.EnergyPool[t] > 0 }

	// 1. Three different types, needed first, padded with whatever is left.
	var triple []game.EnergyType
	for _, t := range needed {
		if available(t) && len(triple) < 3 {
			triple = append(triple, t)
		}
	}
	for _, t := range game.BaseEnergyTypes {
		if len(triple) >= 3 {
			break
		}
		if !available(t) {
			continue
		}
		already := false
		for _, have := range triple {
			if have == t {
				already = true
				break
			}
		}
		if !already {
			triple = append(triple, t)
		}
	}
	if len(triple) == 3 {
		if v := game.ValidateEnergyCollection(s, triple); v.OK {
			return triple
		}
	}

	// 2. A double of the most needed (or any) type the pool supports.
	for _, t := range append(append([]game.EnergyType{}, needed...), game.BaseEnergyTypes...) {
		double := []game.EnergyType{t, t}
		if v := game.ValidateEnergyCollection(s, double); v.OK {
			return double
		}
	}

	// 3. A single flux.
	single := []game.EnergyType{game.Flux}
	if v := game.ValidateEnergyCollection(s, single); v.OK {
		return single
	}

	return nil
}

// planExchange simulates 1:1 then 2:3 exchanges toward affording the target
// node, returning the first exchange that makes it affordable. Used when no
// collection shape helps.
func planExchange(s *game.GameState, p game.Player, target game.Node) (take game.EnergyType, takeCount int, give []game.EnergyType, ok bool) {
	needed := neededTypesFor(target, p)
	if len(needed) == 0 {
		return "", 0, nil, false
	}

	cost := game.CalculateNodeCost(target, p)
	spare := func(t game.EnergyType) int {
		surplus := p.Energy[t] - cost[t]
		if surplus < 0 {
			return 0
		}
		return surplus
	}

	for _, want := range needed {
		// 1:1 from any surplus type.
		for _, giveType := range game.BaseEnergyTypes {
			if giveType == want || spare(giveType) < 1 {
				continue
			}
			giveSet := []game.EnergyType{giveType}
			if v := game.CanExchangeEnergy(s, want, 1, giveSet); v.OK {
				after := game.ApplyExchangeEnergy(s, want, 1, giveSet)
				if game.CanAffordNode(target, *after.CurrentPlayer()) {
					return want, 1, giveSet, true
				}
			}
		}

		// 2:3 burning any three surplus tokens.
		var giveSet []game.EnergyType
		for _, giveType := range game.BaseEnergyTypes {
			for i := 0; i < spare(giveType) && len(giveSet) < 3; i++ {
				giveSet = append(giveSet, giveType)
			}
		}
		if len(giveSet) == 3 {
			if v := game.CanExchangeEnergy(s, want, 2, giveSet); v.OK {
				after := game.ApplyExchangeEnergy(s, want, 2, giveSet)
				if game.CanAffordNode(target, *after.CurrentPlayer()) {
					return want, 2, giveSet, true
				}
			}
		}
	}
	return "", 0, nil, false
}

// planSwap plans a pending-swap trade: give from the most abundant holdings,
// take the least abundant pool-available base types, up to the swap count.
// Returns ok=false when no full trade can be satisfied.
func planSwap(s *game.GameState, p game.Player) (give, take []game.EnergyType, ok bool) {
	limit := p.Pending.Swap
	if limit <= 0 {
		return nil, nil, false
	}

	held := make(map[game.EnergyType]int, len(game.BaseEnergyTypes))
	for _, t := range game.BaseEnergyTypes {
		held[t] = p.Energy[t]
	}
	pool := make(map[game.EnergyType]int, len(game.BaseEnergyTypes))
	for _, t := range game.BaseEnergyTypes {
		pool[t] = s.EnergyPool[t]
	}

	for len(give) < limit {
		// Most abundant held type to give away.
		var giveType game.EnergyType
		for _, t := range game.BaseEnergyTypes {
			if held[t] > 0 && (giveType == "" || held[t] > held[giveType]) {
				giveType = t
			}
		}
		// Least abundant type still available in the pool.
		var takeType game.EnergyType
		for _, t := range game.BaseEnergyTypes {
			if t == giveType || pool[t] <= 0 {
				continue
			}
			if takeType == "" || pool[t] < pool[takeType] {
				takeType = t
			}
		}
		if giveType == "" || takeType == "" {
			break
		}
		held[giveType]--
		pool[takeType]--
		give = append(give, giveType)
		take = append(take, takeType)
	}

	if len(give) == 0 {
		return nil, nil, false
	}
	return give, take, true
}

// planDiscard picks the over-limit tokens to return: the most abundant base
// types first.
func planDiscard(p game.Player) []game.EnergyType {
	excess := game.MustDiscardEnergy(p)
	if excess <= 0 {
		return nil
	}

	held := make(map[game.EnergyType]int, len(game.BaseEnergyTypes))
	for _, t := range game.BaseEnergyTypes {
		held[t] = p.Energy[t]
	}

	var out []game.EnergyType
	for len(out) < excess {
		var best game.EnergyType
		for _, t := range game.BaseEnergyTypes {
			if held[t] > 0 && (best == "" || held[t] > held[best]) {
				best = t
			}
		}
		if best == "" {
			break
		}
		held[best]--
		out = append(out, best)
	}
	return out
}
