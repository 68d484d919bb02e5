package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawOptionsExposeTopOfDeck(t *testing.T) {
	s := twoPlayerState()
	s.Players[0].Pending.Draw = 2
	s.Decks[Research] = []Node{
		testNode("first", Research, 1, Solar, nil),
		testNode("second", Research, 1, Hydro, nil),
		testNode("buried", Research, 1, Plasma, nil),
	}

	options := GetDrawOptions(s, Research)
	require.Len(t, options, 2)
	assert.Equal(t, "first", options[0].ID)
	assert.Equal(t, "second", options[1].ID)

	// Capped by deck size.
	s.Players[0].Pending.Draw = 5
	assert.Len(t, GetDrawOptions(s, Research), 3)

	// No pending draw, no options.
	s.Players[0].Pending.Draw = 0
	assert.Nil(t, GetDrawOptions(s, Research))
}

func TestApplyDrawEffectReplacesSlotAndBuriesDisplaced(t *testing.T) {
	s := twoPlayerState()
	s.Players[0].Pending.Draw = 2
	s.Decks[Network] = []Node{
		testNode("pick_me", Network, 1, Solar, nil),
		testNode("passed_over", Network, 1, Hydro, nil),
	}
	placeInMarket(s, testNode("displaced", Network, 1, Plasma, nil), 1)

	next := ApplyDrawEffect(s, Network, "pick_me", 1)
	require.NotSame(t, s, next)

	require.NotNil(t, next.MarketNodes[2][1])
	assert.Equal(t, "pick_me", next.MarketNodes[2][1].ID)
	assert.Zero(t, next.Players[0].Pending.Draw)

	// The displaced card sits at the bottom, the passed-over reveal at the top.
	deck := next.Decks[Network]
	require.Len(t, deck, 2)
	assert.Equal(t, "passed_over", deck[0].ID)
	assert.Equal(t, "displaced", deck[1].ID)
}

func TestApplyDrawEffectIntoEmptySlot(t *testing.T) {
	s := twoPlayerState()
	s.Players[0].Pending.Draw = 1
	s.Decks[Control] = []Node{testNode("pick_me", Control, 1, Neural, nil)}

	next := ApplyDrawEffect(s, Control, "pick_me", 0)
	require.NotSame(t, s, next)
	require.NotNil(t, next.MarketNodes[3][0])
	assert.Empty(t, next.Decks[Control])
}

func TestApplyDrawEffectRejectsBadChoices(t *testing.T) {
	s := twoPlayerState()
	s.Players[0].Pending.Draw = 1
	s.Decks[Research] = []Node{
		testNode("on_offer", Research, 1, Solar, nil),
		testNode("buried", Research, 1, Hydro, nil),
	}

	assert.Same(t, s, ApplyDrawEffect(s, Research, "buried", 0), "card below the reveal window")
	assert.Same(t, s, ApplyDrawEffect(s, Research, "on_offer", -1))
	assert.Same(t, s, ApplyDrawEffect(s, Research, "on_offer", MarketColumns))
	assert.Same(t, s, ApplyDrawEffect(s, Research, "no_such_card", 0))
}

func TestApplySwapEffectTradesWithPool(t *testing.T) {
	s := twoPlayerState()
	p := &s.Players[0]
	p.Pending.Swap = 2
	p.Energy = map[EnergyType]int{Solar: 2}
	s.EnergyPool[Neural] = 4

	before := energyTotals(s)
	next := ApplySwapEffect(s, []EnergyType{Solar, Solar}, []EnergyType{Neural, Neural})
	require.NotSame(t, s, next)

	np := next.Players[0]
	assert.Equal(t, 0, np.Energy[Solar])
	assert.Equal(t, 2, np.Energy[Neural])
	assert.Zero(t, np.Pending.Swap, "one resolution settles the whole obligation")
	assert.Equal(t, before, energyTotals(next))
}

func TestApplySwapEffectAllowsPartialTrade(t *testing.T) {
	s := twoPlayerState()
	p := &s.Players[0]
	p.Pending.Swap = 3
	p.Energy = map[EnergyType]int{Hydro: 1}

	next := ApplySwapEffect(s, []EnergyType{Hydro}, []EnergyType{Plasma})
	require.NotSame(t, s, next)
	assert.Zero(t, next.Players[0].Pending.Swap)
}

func TestApplySwapEffectRejections(t *testing.T) {
	s := twoPlayerState()
	p := &s.Players[0]
	p.Pending.Swap = 1
	p.Energy = map[EnergyType]int{Solar: 1, Flux: 1}

	assert.Same(t, s, ApplySwapEffect(s, nil, nil), "empty trade")
	assert.Same(t, s, ApplySwapEffect(s, []EnergyType{Solar}, []EnergyType{Hydro, Plasma}), "lopsided")
	assert.Same(t, s, ApplySwapEffect(s, []EnergyType{Solar, Solar}, []EnergyType{Hydro, Plasma}), "over the swap cap")
	assert.Same(t, s, ApplySwapEffect(s, []EnergyType{Flux}, []EnergyType{Hydro}), "flux given")
	assert.Same(t, s, ApplySwapEffect(s, []EnergyType{Solar}, []EnergyType{Flux}), "flux taken")
	assert.Same(t, s, ApplySwapEffect(s, []EnergyType{Hydro}, []EnergyType{Plasma}), "token not held")

	s.EnergyPool[Neural] = 0
	assert.Same(t, s, ApplySwapEffect(s, []EnergyType{Solar}, []EnergyType{Neural}), "pool exhausted")

	p.Pending.Swap = 0
	assert.Same(t, s, ApplySwapEffect(s, []EnergyType{Solar}, []EnergyType{Hydro}), "nothing pending")
}

func TestSkipSwapWaivesObligation(t *testing.T) {
	s := twoPlayerState()
	assert.Same(t, s, SkipSwap(s), "nothing to waive")

	s.Players[0].Pending.Swap = 2
	next := SkipSwap(s)
	require.NotSame(t, s, next)
	assert.Zero(t, next.Players[0].Pending.Swap)
}

func TestTurnResolved(t *testing.T) {
	s := twoPlayerState()
	assert.True(t, TurnResolved(s))

	s.Players[0].Pending.Draw = 1
	assert.False(t, TurnResolved(s))
	s.Players[0].Pending.Draw = 0

	s.Players[0].Pending.Swap = 1
	assert.False(t, TurnResolved(s))
	s.Players[0].Pending.Swap = 0

	s.Players[0].Energy = map[EnergyType]int{Solar: 11}
	assert.False(t, TurnResolved(s))
}
