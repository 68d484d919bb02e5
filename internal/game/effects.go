/*
Package game
File: effects.go
Description:
    Resolution of the two pending effects that need an explicit follow-up
    choice: draw (pick a revealed deck card into the market) and swap (trade
    energy with the pool). Both must be resolved — or skipped — before the
    acting player's turn can close.
*/

package game

// GetDrawOptions exposes the cards a pending draw effect lets the player
// choose from: the top Pending.Draw cards of one category's deck. Empty when
// no draw is pending or the deck is exhausted.
func GetDrawOptions(s *GameState, category NodeCategory) []Node {
	p := s.CurrentPlayer()
	if p.Pending.Draw <= 0 {
		return nil
	}
	deck := s.Decks[category]
	n := p.Pending.Draw
	if n > len(deck) {
		n = len(deck)
	}
	options := make([]Node, n)
	copy(options, deck[:n])
	return options
}

// ApplyDrawEffect resolves a pending draw: the chosen revealed card replaces
// a market slot of its category, the displaced market card (if any) goes to
// the bottom of the deck, and the draw counter resets to zero. Illegal
// choices leave the state unchanged.
func ApplyDrawEffect(s *GameState, category NodeCategory, cardID string, slot int) *GameState {
	if slot < 0 || slot >= MarketColumns {
		return s
	}

	options := GetDrawOptions(s, category)
	chosen := -1
	for i, card := range options {
		if card.ID == cardID {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		return s
	}

	row := -1
	for r, cat := range NodeCategories {
		if cat == category {
			row = r
			break
		}
	}
	if row < 0 {
		return s
	}

	next := s.Clone()

	// 1. Pull the chosen card out of the deck.
	deck := next.Decks[category]
	card := deck[chosen]
	deck = append(deck[:chosen], deck[chosen+1:]...)

	// 2. The displaced market card returns to the bottom of the deck.
	if displaced := next.MarketNodes[row][slot]; displaced != nil {
		deck = append(deck, *displaced)
	}
	next.Decks[category] = deck

	// 3. Seat the chosen card and settle the obligation.
	next.MarketNodes[row][slot] = &card
	next.CurrentPlayer().Pending.Draw = 0

	return next
}

// ApplySwapEffect resolves a pending swap: a simultaneous N-for-N trade of
// base-type energy between the acting player and the pool. The trade size is
// capped by the pending swap count; flux is excluded on both sides. A trade
// that is empty, lopsided, or unaffordable leaves the state unchanged.
func ApplySwapEffect(s *GameState, give, take []EnergyType) *GameState {
	p := s.CurrentPlayer()
	if p.Pending.Swap <= 0 {
		return s
	}
	if len(give) == 0 || len(give) != len(take) || len(give) > p.Pending.Swap {
		return s
	}

	giveCounts := make(map[EnergyType]int, len(give))
	for _, t := range give {
		if !IsBaseEnergy(t) {
			return s
		}
		giveCounts[t]++
	}
	takeCounts := make(map[EnergyType]int, len(take))
	for _, t := range take {
		if !IsBaseEnergy(t) {
			return s
		}
		takeCounts[t]++
	}

	for t, amt := range giveCounts {
		if p.Energy[t] < amt {
			return s
		}
	}
	for t, amt := range takeCounts {
		if s.EnergyPool[t] < amt {
			return s
		}
	}

	next := s.Clone()
	np := next.CurrentPlayer()
	for t, amt := range giveCounts {
		np.Energy[t] -= amt
		next.EnergyPool[t] += amt
	}
	for t, amt := range takeCounts {
		next.EnergyPool[t] -= amt
		np.Energy[t] += amt
	}
	np.Pending.Swap = 0
	return next
}

// SkipSwap waives a pending swap obligation without trading.
func SkipSwap(s *GameState) *GameState {
	if s.CurrentPlayer().Pending.Swap <= 0 {
		return s
	}
	next := s.Clone()
	next.CurrentPlayer().Pending.Swap = 0
	return next
}

// TurnResolved reports whether the acting player has no outstanding
// obligations (pending draw/swap, or an over-limit hand) blocking the turn
// from advancing.
func TurnResolved(s *GameState) bool {
	p := s.CurrentPlayer()
	return p.Pending.Draw == 0 && p.Pending.Swap == 0 && MustDiscardEnergy(*p) == 0
}
