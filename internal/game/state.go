/*
Package game
File: state.go
Description:
    Match setup. Shuffles the four category decks, deals the market grid and
    the protocol row, sizes the shared energy pool from the player-count
    table, and seats the players (seat 0 human, bots after it).

    There is no global state here: every match is an owned *GameState value
    threaded through the pure transition functions in rules.go.
*/

package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Tuning constants. NetworkWinThreshold is the single authority for the
// network win; the bot engine imports it rather than deriving its own.
const (
	MarketColumns        = 4
	EnergyHandLimit      = 10
	MaxReservedNodes     = 3
	TurnThreshold        = 20
	EfficiencyWinMinimum = 20
	NetworkWinThreshold  = 12
	ProtocolWinThreshold = 3
	FluxPoolSize         = 5
)

// basePoolByPlayers maps player count -> per-base-type pool supply.
// The same table caps the pool during exchanges.
var basePoolByPlayers = map[int]int{
	2: 4,
	3: 5,
	4: 7,
}

// MatchConfig describes one local match.
type MatchConfig struct {
	Players       int // total seats, 2..4
	Bots          int // seats players[1..Bots] are bots
	BotDifficulty BotDifficulty
	Seed          int64 // 0 = seed from the clock
}

// NewGame creates the initial state for a local match.
// Seat 0 is the human; the next cfg.Bots seats are bots.
func NewGame(cfg MatchConfig) (*GameState, error) {
	if cfg.Players < 2 || cfg.Players > 4 {
		return nil, fmt.Errorf("game: player count %d out of range (2-4)", cfg.Players)
	}
	if cfg.Bots >= cfg.Players {
		return nil, fmt.Errorf("game: bot count %d leaves no human seat", cfg.Bots)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cat := Catalog()

	s := &GameState{
		Phase:        PhasePlaying,
		EnergyPool:   make(map[EnergyType]int),
		PoolCapacity: make(map[EnergyType]int),
		Decks:        make(map[NodeCategory][]Node),
		MarketNodes:  make([][]*Node, len(NodeCategories)),
	}

	// 1. Size the shared pool from the player-count table. Flux is fixed.
	perType := basePoolByPlayers[cfg.Players]
	for _, t := range BaseEnergyTypes {
		s.EnergyPool[t] = perType
		s.PoolCapacity[t] = perType
	}
	s.EnergyPool[Flux] = FluxPoolSize
	s.PoolCapacity[Flux] = FluxPoolSize

	// 2. Shuffle each category deck independently, then pop 4 cards into the
	// matching market row.
	for row, category := range NodeCategories {
		deck := make([]Node, len(cat.NodesFor(category)))
		copy(deck, cat.NodesFor(category))
		rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

		s.MarketNodes[row] = make([]*Node, MarketColumns)
		for col := 0; col < MarketColumns && len(deck) > 0; col++ {
			card := deck[0]
			deck = deck[1:]
			s.MarketNodes[row][col] = &card
		}
		s.Decks[category] = deck
	}

	// 3. Deal playerCount+1 protocols from the shuffled protocol pool.
	pool := make([]Protocol, len(cat.Protocols))
	copy(pool, cat.Protocols)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	dealt := cfg.Players + 1
	if dealt > len(pool) {
		dealt = len(pool)
	}
	s.Protocols = pool[:dealt]

	// 4. Seat the players.
	s.Players = make([]Player, cfg.Players)
	for i := range s.Players {
		p := Player{
			ID:      fmt.Sprintf("p%d", i+1),
			Name:    fmt.Sprintf("Player %d", i+1),
			Energy:  make(map[EnergyType]int),
			Pending: NewPendingEffects(),
		}
		if i >= 1 && i <= cfg.Bots {
			p.IsBot = true
			p.BotDifficulty = cfg.BotDifficulty
			p.Name = fmt.Sprintf("Bot %d", i)
		}
		s.Players[i] = p
	}

	return s, nil
}

// BasePoolSize returns the per-base-type supply (and cap) for a player count.
func BasePoolSize(players int) int {
	if v, ok := basePoolByPlayers[players]; ok {
		return v
	}
	return basePoolByPlayers[4]
}

// AdvanceTurn moves to the next seat and counts the completed move. Callers
// must not advance while the acting player still has pending draw/swap
// obligations or is over the hand limit.
func AdvanceTurn(s *GameState) *GameState {
	next := s.Clone()
	next.CurrentPlayerIndex = (next.CurrentPlayerIndex + 1) % len(next.Players)
	next.TurnCount++
	return next
}
