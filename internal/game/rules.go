/*
Package game
File: rules.go
Description:
    The rules engine: the single source of truth for which actions are legal
    and what they do. Every Apply* function is a pure transition — it deep
    copies the incoming state and returns the copy, or returns the INPUT
    state unchanged when the action is illegal.

    Validation helpers return a Validation value instead of an error; rule
    violations are expected flow, not exceptional.

    The economy is a closed loop: every payment returns to the shared pool,
    every collection drains it. Per base type,
    sum(player holdings) + pool is constant for the whole match.
*/

package game

// Validation is the non-throwing result of a rule check.
type Validation struct {
	OK     bool
	Reason string
}

func valid() Validation { return Validation{OK: true} }

func invalid(why string) Validation { return Validation{Reason: why} }

// PlayerOutputs computes the per-base-type output generation of a player:
// one unit per owned (built, non-reserved) node of that output type, plus any
// pending multiplier bonus. Outputs gate protocol claims and reduce build
// costs; they are not spendable tokens.
func PlayerOutputs(p Player) map[EnergyType]int {
	out := make(map[EnergyType]int, len(BaseEnergyTypes))
	for _, n := range p.Nodes {
		if IsBaseEnergy(n.OutputType) {
			out[n.OutputType]++
		}
	}
	for t, bonus := range p.Pending.Multiplier {
		out[t] += bonus
	}
	return out
}

// CalculateNodeCost returns the effective per-base-type cost of a node for a
// player: printed cost, minus output generation, minus any pending discount,
// minus 1 per claimed flat "-1 cost" protocol, floored at zero per type.
// Flux never appears in a cost.
func CalculateNodeCost(n Node, p Player) map[EnergyType]int {
	outputs := PlayerOutputs(p)

	flatDiscounts := 0
	for _, pr := range p.Protocols {
		if flatCostDiscount(pr) {
			flatDiscounts++
		}
	}

	cost := make(map[EnergyType]int, len(n.Cost))
	for _, t := range BaseEnergyTypes {
		c := n.Cost[t]
		if c == 0 {
			continue
		}
		c -= outputs[t]
		c -= p.Pending.Discount[t]
		c -= flatDiscounts
		if c < 0 {
			c = 0
		}
		cost[t] = c
	}
	return cost
}

// GenerateNodePayment builds a concrete payment for the effective cost:
// greedy from the matching base-type holdings, flux covering any per-type
// shortfall. Returns nil when the player cannot pay.
func GenerateNodePayment(n Node, p Player) map[EnergyType]int {
	cost := CalculateNodeCost(n, p)

	payment := make(map[EnergyType]int)
	fluxNeeded := 0
	for t, amt := range cost {
		if amt == 0 {
			continue
		}
		fromType := p.Energy[t]
		if fromType > amt {
			fromType = amt
		}
		if fromType > 0 {
			payment[t] = fromType
		}
		fluxNeeded += amt - fromType
	}

	if fluxNeeded > 0 {
		if p.Energy[Flux] < fluxNeeded {
			return nil
		}
		payment[Flux] = fluxNeeded
	}
	return payment
}

// CanAffordNode reports whether GenerateNodePayment would succeed.
func CanAffordNode(n Node, p Player) bool {
	return GenerateNodePayment(n, p) != nil
}

// findMarketNode locates a node in the market grid. Returns (-1,-1) if absent.
func findMarketNode(s *GameState, nodeID string) (row, col int) {
	for r := range s.MarketNodes {
		for c, n := range s.MarketNodes[r] {
			if n != nil && n.ID == nodeID {
				return r, c
			}
		}
	}
	return -1, -1
}

// refillMarketSlot pops the top of the category deck into the vacated slot,
// or leaves it nil when the deck is empty.
func refillMarketSlot(s *GameState, row, col int) {
	category := NodeCategories[row]
	deck := s.Decks[category]
	if len(deck) == 0 {
		s.MarketNodes[row][col] = nil
		return
	}
	card := deck[0]
	s.Decks[category] = deck[1:]
	s.MarketNodes[row][col] = &card
}

// ApplyNodePurchase builds a node for the acting player. The node may sit in
// the market grid or in the player's reservations. Returns the input state
// unchanged when the node is absent or unaffordable.
func ApplyNodePurchase(s *GameState, nodeID string) *GameState {
	p := s.CurrentPlayer()

	// 1. Locate the node: market first, then reservations.
	var node Node
	row, col := findMarketNode(s, nodeID)
	fromReserve := -1
	if row >= 0 {
		node = *s.MarketNodes[row][col]
	} else {
		for i, r := range p.ReservedNodes {
			if r.ID == nodeID {
				node = r
				fromReserve = i
				break
			}
		}
		if fromReserve < 0 {
			return s
		}
	}

	// 2. Price it.
	payment := GenerateNodePayment(node, *p)
	if payment == nil {
		return s
	}

	next := s.Clone()
	np := next.CurrentPlayer()

	// 3. Pay: deduct from the player, return every token to the pool.
	for t, amt := range payment {
		np.Energy[t] -= amt
		next.EnergyPool[t] += amt
	}

	// 4. Build.
	np.Nodes = append(np.Nodes, node)
	np.Efficiency += node.Efficiency

	// 5. Pending discounts are one-shot: this purchase consumes them.
	np.Pending.Discount = make(map[EnergyType]int)

	// 6. The purchased node may queue a new pending effect.
	switch node.EffectType {
	case EffectDiscount:
		for _, t := range effectTargets(node) {
			np.Pending.Discount[t] += node.EffectValue
		}
	case EffectMultiplier:
		for _, t := range effectTargets(node) {
			np.Pending.Multiplier[t] += node.EffectValue
		}
	case EffectDraw:
		np.Pending.Draw += node.EffectValue
	case EffectSwap:
		np.Pending.Swap += node.EffectValue
	}

	// 7. Clean up the source: reserved nodes just leave the reserve list;
	// market slots are restocked from the category deck.
	if fromReserve >= 0 {
		np.ReservedNodes = append(np.ReservedNodes[:fromReserve], np.ReservedNodes[fromReserve+1:]...)
	} else {
		refillMarketSlot(next, row, col)
	}

	return next
}

// effectTargets expands a discount/multiplier effect to the base types it
// touches: the printed target, or all four when untargeted.
func effectTargets(n Node) []EnergyType {
	if IsBaseEnergy(n.EffectTarget) {
		return []EnergyType{n.EffectTarget}
	}
	return BaseEnergyTypes
}

// ValidateEnergyCollection checks a collection pick against the three legal
// shapes:
//   - two of the SAME base type, pool holding at least 4 of it
//   - three DIFFERENT base types, each available in the pool
//   - a single flux, when the pool has flux
func ValidateEnergyCollection(s *GameState, picks []EnergyType) Validation {
	switch len(picks) {
	case 1:
		if picks[0] != Flux {
			return invalid("a single pick must be flux")
		}
		if s.EnergyPool[Flux] <= 0 {
			return invalid("no flux left in the pool")
		}
		return valid()

	case 2:
		if picks[0] != picks[1] {
			return invalid("a double pick must be two of the same type")
		}
		if !IsBaseEnergy(picks[0]) {
			return invalid("flux cannot be collected as a double")
		}
		if s.EnergyPool[picks[0]] < 4 {
			return invalid("double pick needs at least 4 of that type in the pool")
		}
		return valid()

	case 3:
		seen := make(map[EnergyType]bool, 3)
		for _, t := range picks {
			if !IsBaseEnergy(t) {
				return invalid("flux cannot be part of a triple pick")
			}
			if seen[t] {
				return invalid("a triple pick must be three different types")
			}
			seen[t] = true
			if s.EnergyPool[t] <= 0 {
				return invalid("the pool is out of " + string(t))
			}
		}
		return valid()
	}
	return invalid("pick one flux, two of a kind, or three different types")
}

// ApplyEnergyCollection moves the picked tokens from the pool to the acting
// player. Illegal picks leave the state unchanged.
func ApplyEnergyCollection(s *GameState, picks []EnergyType) *GameState {
	if v := ValidateEnergyCollection(s, picks); !v.OK {
		return s
	}

	next := s.Clone()
	p := next.CurrentPlayer()
	for _, t := range picks {
		next.EnergyPool[t]--
		p.Energy[t]++
	}
	return next
}

// MustDiscardEnergy returns how many tokens the player must return to the
// pool to get back under the hand limit.
func MustDiscardEnergy(p Player) int {
	excess := p.TotalEnergy() - EnergyHandLimit
	if excess < 0 {
		return 0
	}
	return excess
}

// ApplyEnergyDiscard returns the chosen base-type tokens to the pool. The
// discard must cover exactly the excess and may not include flux.
func ApplyEnergyDiscard(s *GameState, discards []EnergyType) *GameState {
	p := s.CurrentPlayer()
	if len(discards) != MustDiscardEnergy(*p) || len(discards) == 0 {
		return s
	}

	counts := make(map[EnergyType]int, len(discards))
	for _, t := range discards {
		if !IsBaseEnergy(t) {
			return s
		}
		counts[t]++
	}
	for t, amt := range counts {
		if p.Energy[t] < amt {
			return s
		}
	}

	next := s.Clone()
	np := next.CurrentPlayer()
	for t, amt := range counts {
		np.Energy[t] -= amt
		next.EnergyPool[t] += amt
	}
	return next
}

// ApplyNodeReservation sets a node aside for later. Requires pool flux and a
// free reservation slot; grants 1 flux from the pool (a one-way flow). With
// fromMarket false the reservation is a blind pull of the top card of the
// node's category deck.
func ApplyNodeReservation(s *GameState, nodeID string, fromMarket bool) *GameState {
	p := s.CurrentPlayer()
	if s.EnergyPool[Flux] <= 0 || len(p.ReservedNodes) >= MaxReservedNodes {
		return s
	}

	next := s.Clone()
	np := next.CurrentPlayer()

	if fromMarket {
		row, col := findMarketNode(next, nodeID)
		if row < 0 {
			return s
		}
		np.ReservedNodes = append(np.ReservedNodes, *next.MarketNodes[row][col])
		refillMarketSlot(next, row, col)
	} else {
		// Deck reservation: the named card must be the top of its deck.
		found := false
		for _, category := range NodeCategories {
			deck := next.Decks[category]
			if len(deck) > 0 && deck[0].ID == nodeID {
				np.ReservedNodes = append(np.ReservedNodes, deck[0])
				next.Decks[category] = deck[1:]
				found = true
				break
			}
		}
		if !found {
			return s
		}
	}

	next.EnergyPool[Flux]--
	np.Energy[Flux]++
	return next
}

// CanExchangeEnergy checks a market-style trade: take 1 of a type for 1 base
// token, or take 2 of one type for any 3 base tokens. The taken type must be
// in the pool and the give side may not push any pool type past its capacity
// ceiling.
func CanExchangeEnergy(s *GameState, takeType EnergyType, takeCount int, give []EnergyType) Validation {
	if !IsBaseEnergy(takeType) {
		return invalid("only base types can be taken in an exchange")
	}
	switch takeCount {
	case 1:
		if len(give) != 1 {
			return invalid("a 1-for-1 exchange gives exactly one token")
		}
	case 2:
		if len(give) != 3 {
			return invalid("a 2-for-3 exchange gives exactly three tokens")
		}
	default:
		return invalid("exchanges take one or two tokens")
	}

	if s.EnergyPool[takeType] < takeCount {
		return invalid("the pool is out of " + string(takeType))
	}

	p := s.CurrentPlayer()
	given := make(map[EnergyType]int, len(give))
	for _, t := range give {
		if !IsBaseEnergy(t) {
			return invalid("flux cannot be given in an exchange")
		}
		given[t]++
	}
	for t, amt := range given {
		if p.Energy[t] < amt {
			return invalid("not enough " + string(t) + " to give")
		}
		after := s.EnergyPool[t] + amt
		if t == takeType {
			after -= takeCount
		}
		if after > s.PoolCapacity[t] {
			return invalid("the pool cannot hold more " + string(t))
		}
	}
	return valid()
}

// ApplyExchangeEnergy performs a validated exchange symmetrically: given
// tokens enter the pool, taken tokens leave it.
func ApplyExchangeEnergy(s *GameState, takeType EnergyType, takeCount int, give []EnergyType) *GameState {
	if v := CanExchangeEnergy(s, takeType, takeCount, give); !v.OK {
		return s
	}

	next := s.Clone()
	p := next.CurrentPlayer()
	for _, t := range give {
		p.Energy[t]--
		next.EnergyPool[t]++
	}
	next.EnergyPool[takeType] -= takeCount
	p.Energy[takeType] += takeCount
	return next
}

// CanClaimProtocol reports whether the player's output generation meets every
// requirement of an unclaimed protocol in this match.
func CanClaimProtocol(s *GameState, p Player, protocolID string) bool {
	proto := matchProtocol(s, protocolID)
	if proto == nil || proto.Claimed {
		return false
	}
	outputs := PlayerOutputs(p)
	for t, minimum := range proto.Requirements {
		if outputs[t] < minimum {
			return false
		}
	}
	return true
}

// ApplyProtocolClaim claims a protocol for the acting player: efficiency is
// awarded and any pending multiplier is consumed by the claim.
func ApplyProtocolClaim(s *GameState, protocolID string) *GameState {
	p := s.CurrentPlayer()
	if !CanClaimProtocol(s, *p, protocolID) {
		return s
	}

	next := s.Clone()
	np := next.CurrentPlayer()
	proto := matchProtocol(next, protocolID)
	proto.Claimed = true

	claimed := *proto
	np.Protocols = append(np.Protocols, claimed)
	np.Efficiency += proto.Efficiency

	// Multipliers boost outputs toward exactly one claim.
	np.Pending.Multiplier = make(map[EnergyType]int)

	return next
}

func matchProtocol(s *GameState, protocolID string) *Protocol {
	for i := range s.Protocols {
		if s.Protocols[i].ID == protocolID {
			return &s.Protocols[i]
		}
	}
	return nil
}
