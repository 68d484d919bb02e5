/*
Package game
File: models.go
Description:
    Defines all data structures (Structs) used throughout the Quantum Nexus core.
    This file serves as the "schema" for the engine, mapping directly to the
    YAML catalog file and the JSON shapes the frontend consumes.

    No logic is performed here beyond deep-copy helpers; the rules live in
    rules.go / effects.go / win.go.
*/

package game

// EnergyType identifies one of the four base energies or the flux wildcard.
type EnergyType string

const (
	Solar  EnergyType = "solar"
	Hydro  EnergyType = "hydro"
	Plasma EnergyType = "plasma"
	Neural EnergyType = "neural"

	// Flux is the wildcard. It substitutes for any base-type shortfall when
	// paying, but cannot be collected normally, exchanged, or swapped.
	Flux EnergyType = "flux"
)

// BaseEnergyTypes lists the four collectible energies in canonical order.
var BaseEnergyTypes = []EnergyType{Solar, Hydro, Plasma, Neural}

// IsBaseEnergy reports whether t is one of the four base types.
func IsBaseEnergy(t EnergyType) bool {
	return t == Solar || t == Hydro || t == Plasma || t == Neural
}

// NodeCategory is one market row / deck per category.
type NodeCategory string

const (
	Research   NodeCategory = "research"
	Production NodeCategory = "production"
	Network    NodeCategory = "network"
	Control    NodeCategory = "control"
)

// NodeCategories lists the categories in market-row order (row 0..3).
var NodeCategories = []NodeCategory{Research, Production, Network, Control}

// EffectType marks a node's optional one-shot effect.
type EffectType string

const (
	EffectMultiplier EffectType = "multiplier" // output bonus until next purchase/claim
	EffectDiscount   EffectType = "discount"   // cost reduction on the next purchase
	EffectDraw       EffectType = "draw"       // reveal deck cards, restock a market slot
	EffectSwap       EffectType = "swap"       // trade energy with the pool
)

// Node is an immutable catalog entry. Copies of these move between decks,
// market slots, reservations and player tableaus; the entry itself never changes.
type Node struct {
	ID          string             `yaml:"id" json:"id"`
	Name        string             `yaml:"name" json:"name"`
	Category    NodeCategory       `yaml:"category" json:"category"`
	Efficiency  int                `yaml:"efficiency" json:"efficiency"`
	OutputType  EnergyType         `yaml:"output_type" json:"outputType"`
	Cost        map[EnergyType]int `yaml:"cost" json:"cost"`
	EffectType  EffectType         `yaml:"effect_type,omitempty" json:"effectType,omitempty"`
	EffectValue int                `yaml:"effect_value,omitempty" json:"effectValue,omitempty"`
	// EffectTarget narrows discount/multiplier effects to one base type.
	// Empty means the effect applies to every base type.
	EffectTarget EnergyType `yaml:"effect_target,omitempty" json:"effectTarget,omitempty"`
}

// TotalBaseCost sums the node's printed cost across base types.
func (n Node) TotalBaseCost() int {
	total := 0
	for t, amt := range n.Cost {
		if IsBaseEnergy(t) {
			total += amt
		}
	}
	return total
}

// Protocol is a claimable upgrade. Requirements are minimum OUTPUT GENERATION
// per base type (what a player's built nodes produce), not held energy.
type Protocol struct {
	ID           string             `yaml:"id" json:"id"`
	Name         string             `yaml:"name" json:"name"`
	Efficiency   int                `yaml:"efficiency" json:"efficiency"`
	Requirements map[EnergyType]int `yaml:"requirements" json:"requirements"`
	Effect       string             `yaml:"effect" json:"effect"`
	Claimed      bool               `yaml:"-" json:"claimed"`
}

// BotDifficulty tiers the bot decision engine.
type BotDifficulty string

const (
	BotEasy   BotDifficulty = "easy"
	BotMedium BotDifficulty = "medium"
	BotHard   BotDifficulty = "hard"
)

// PendingEffects holds one-shot, not-yet-resolved effect counters.
// Discount and Multiplier clear on the next relevant purchase/claim;
// Draw and Swap must reach zero before the turn is considered resolved.
type PendingEffects struct {
	Discount   map[EnergyType]int `json:"discount"`
	Multiplier map[EnergyType]int `json:"multiplier"`
	Draw       int                `json:"draw"`
	Swap       int                `json:"swap"`
}

// NewPendingEffects returns an empty set of counters.
func NewPendingEffects() PendingEffects {
	return PendingEffects{
		Discount:   make(map[EnergyType]int),
		Multiplier: make(map[EnergyType]int),
	}
}

func (pe PendingEffects) clone() PendingEffects {
	out := PendingEffects{
		Discount:   make(map[EnergyType]int, len(pe.Discount)),
		Multiplier: make(map[EnergyType]int, len(pe.Multiplier)),
		Draw:       pe.Draw,
		Swap:       pe.Swap,
	}
	for t, v := range pe.Discount {
		out.Discount[t] = v
	}
	for t, v := range pe.Multiplier {
		out.Multiplier[t] = v
	}
	return out
}

// Player holds one seat's mutable match state.
type Player struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Energy        map[EnergyType]int `json:"energy"`
	Nodes         []Node             `json:"nodes"`
	ReservedNodes []Node             `json:"reservedNodes"`
	Protocols     []Protocol         `json:"protocols"`
	Efficiency    int                `json:"efficiency"` // cumulative, never decreases
	IsBot         bool               `json:"isBot"`
	BotDifficulty BotDifficulty      `json:"botDifficulty,omitempty"`
	Pending       PendingEffects     `json:"pendingEffects"`
}

// TotalEnergy counts every held token, flux included.
func (p Player) TotalEnergy() int {
	total := 0
	for _, amt := range p.Energy {
		total += amt
	}
	return total
}

// GamePhase tracks the coarse match lifecycle.
type GamePhase string

const (
	PhasePlaying GamePhase = "playing"
	PhaseEnded   GamePhase = "ended"
)

// GameState is the complete denormalized match state. It is never mutated in
// place: every apply-function deep-copies first and returns the copy, so a
// held *GameState is always a stable snapshot.
type GameState struct {
	Players            []Player                `json:"players"`
	CurrentPlayerIndex int                     `json:"currentPlayerIndex"`
	EnergyPool         map[EnergyType]int      `json:"energyPool"`
	MarketNodes        [][]*Node               `json:"marketNodes"` // 4 rows (one per category) x 4 slots, nil = empty
	Decks              map[NodeCategory][]Node `json:"decks"`
	Protocols          []Protocol              `json:"protocols"`
	Phase              GamePhase               `json:"phase"`
	WinnerID           string                  `json:"winner,omitempty"`
	TurnCount          int                     `json:"turnCount"`
	PoolCapacity       map[EnergyType]int      `json:"-"` // per-type ceiling, from the player-count table
}

// CurrentPlayer returns a pointer into s.Players for the acting seat.
func (s *GameState) CurrentPlayer() *Player {
	return &s.Players[s.CurrentPlayerIndex]
}

// PlayerByID returns the player with the given id, or nil.
func (s *GameState) PlayerByID(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// Clone performs a deep copy of the game state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	out := &GameState{
		CurrentPlayerIndex: s.CurrentPlayerIndex,
		Phase:              s.Phase,
		WinnerID:           s.WinnerID,
		TurnCount:          s.TurnCount,
		EnergyPool:         make(map[EnergyType]int, len(s.EnergyPool)),
		PoolCapacity:       make(map[EnergyType]int, len(s.PoolCapacity)),
		Decks:              make(map[NodeCategory][]Node, len(s.Decks)),
	}

	for t, v := range s.EnergyPool {
		out.EnergyPool[t] = v
	}
	for t, v := range s.PoolCapacity {
		out.PoolCapacity[t] = v
	}

	out.Players = make([]Player, len(s.Players))
	for i := range s.Players {
		out.Players[i] = clonePlayer(s.Players[i])
	}

	out.MarketNodes = make([][]*Node, len(s.MarketNodes))
	for r, row := range s.MarketNodes {
		out.MarketNodes[r] = make([]*Node, len(row))
		for c, n := range row {
			if n != nil {
				cp := *n
				out.MarketNodes[r][c] = &cp
			}
		}
	}

	for cat, deck := range s.Decks {
		cp := make([]Node, len(deck))
		copy(cp, deck)
		out.Decks[cat] = cp
	}

	out.Protocols = make([]Protocol, len(s.Protocols))
	copy(out.Protocols, s.Protocols)

	return out
}

func clonePlayer(p Player) Player {
	out := Player{
		ID:            p.ID,
		Name:          p.Name,
		Efficiency:    p.Efficiency,
		IsBot:         p.IsBot,
		BotDifficulty: p.BotDifficulty,
		Energy:        make(map[EnergyType]int, len(p.Energy)),
		Pending:       p.Pending.clone(),
	}
	for t, v := range p.Energy {
		out.Energy[t] = v
	}
	out.Nodes = make([]Node, len(p.Nodes))
	copy(out.Nodes, p.Nodes)
	out.ReservedNodes = make([]Node, len(p.ReservedNodes))
	copy(out.ReservedNodes, p.ReservedNodes)
	out.Protocols = make([]Protocol, len(p.Protocols))
	copy(out.Protocols, p.Protocols)
	return out
}
