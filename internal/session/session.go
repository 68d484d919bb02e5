/*
Package session
File: session.go
Description:
    The owning controller for one match. Holds the single GameState value,
    exposes the rules-engine operations as replace-only updates, schedules
    bot turns on a cancelable timer, and reconciles server pushes by
    stateVersion.

    Turn resolution is an explicit stage machine
    (acting -> resolving draw? -> resolving swap? -> discarding? -> turn end)
    so the turn can never advance while an obligation is open.
*/

package session

import (
	"sync"
	"time"

	"github.com/S4LUD/quantum-nexus-sub000/internal/bot"
	"github.com/S4LUD/quantum-nexus-sub000/internal/game"
	"github.com/S4LUD/quantum-nexus-sub000/internal/mapper"
	"github.com/S4LUD/quantum-nexus-sub000/internal/realtime"
)

// Stage is the acting player's position in the turn-resolution sequence.
type Stage string

const (
	StageActing        Stage = "acting"
	StageResolvingDraw Stage = "resolving_draw"
	StageResolvingSwap Stage = "resolving_swap"
	StageDiscarding    Stage = "discarding"
	StageEnded         Stage = "ended"
)

// Update is pushed to the owner after every accepted state change.
type Update struct {
	State  *game.GameState
	Notice string
}

// Session owns one match's state. All methods are safe for concurrent use;
// the held *GameState is replace-only and safe to read after retrieval.
type Session struct {
	mu       sync.Mutex
	state    *game.GameState
	version  int // authoritative stateVersion (online mode)
	botDelay time.Duration
	botTimer *time.Timer
	closed   bool
	onUpdate func(Update)
}

// NewLocal starts a local match. botDelay is the simulated thinking time
// before a scheduled bot move fires.
func NewLocal(cfg game.MatchConfig, botDelay time.Duration, onUpdate func(Update)) (*Session, error) {
	state, err := game.NewGame(cfg)
	if err != nil {
		return nil, err
	}
	return New(state, botDelay, onUpdate), nil
}

// New wraps an existing state (e.g. a mapped server snapshot).
func New(state *game.GameState, botDelay time.Duration, onUpdate func(Update)) *Session {
	return &Session{
		state:    state,
		botDelay: botDelay,
		onUpdate: onUpdate,
	}
}

// Close cancels any pending bot move. Further calls become no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.botTimer != nil {
		s.botTimer.Stop()
		s.botTimer = nil
	}
}

// State returns the current snapshot.
func (s *Session) State() *game.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stage reports where the acting player sits in the turn sequence.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stageOf(s.state)
}

func stageOf(state *game.GameState) Stage {
	if state.Phase == game.PhaseEnded {
		return StageEnded
	}
	p := state.CurrentPlayer()
	switch {
	case p.Pending.Draw > 0:
		return StageResolvingDraw
	case p.Pending.Swap > 0:
		return StageResolvingSwap
	case game.MustDiscardEnergy(*p) > 0:
		return StageDiscarding
	default:
		return StageActing
	}
}

// apply runs one rules-engine transition. A transition that returns its
// input unchanged is a rejected action and reports false.
func (s *Session) apply(notice string, fn func(*game.GameState) *game.GameState) bool {
	s.mu.Lock()
	if s.closed || s.state.Phase == game.PhaseEnded {
		s.mu.Unlock()
		return false
	}
	next := fn(s.state)
	if next == s.state {
		s.mu.Unlock()
		return false
	}
	next = game.ResolveWinner(next)
	s.state = next
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(Update{State: next, Notice: notice})
	}
	return true
}

// Collect performs an energy-collection action for the acting player.
func (s *Session) Collect(picks []game.EnergyType) bool {
	return s.apply("collected energy", func(st *game.GameState) *game.GameState {
		return game.ApplyEnergyCollection(st, picks)
	})
}

// Build purchases a market or reserved node.
func (s *Session) Build(nodeID string) bool {
	return s.apply("built a node", func(st *game.GameState) *game.GameState {
		return game.ApplyNodePurchase(st, nodeID)
	})
}

// Reserve sets a node aside for 1 flux.
func (s *Session) Reserve(nodeID string, fromMarket bool) bool {
	return s.apply("reserved a node", func(st *game.GameState) *game.GameState {
		return game.ApplyNodeReservation(st, nodeID, fromMarket)
	})
}

// Claim claims a protocol.
func (s *Session) Claim(protocolID string) bool {
	return s.apply("claimed a protocol", func(st *game.GameState) *game.GameState {
		return game.ApplyProtocolClaim(st, protocolID)
	})
}

// Exchange trades with the pool (1-for-1 or 2-for-3).
func (s *Session) Exchange(takeType game.EnergyType, takeCount int, give []game.EnergyType) bool {
	return s.apply("exchanged energy", func(st *game.GameState) *game.GameState {
		return game.ApplyExchangeEnergy(st, takeType, takeCount, give)
	})
}

// ResolveDraw settles a pending draw effect.
func (s *Session) ResolveDraw(category game.NodeCategory, cardID string, slot int) bool {
	return s.apply("resolved a draw", func(st *game.GameState) *game.GameState {
		return game.ApplyDrawEffect(st, category, cardID, slot)
	})
}

// ResolveSwap settles a pending swap effect.
func (s *Session) ResolveSwap(give, take []game.EnergyType) bool {
	return s.apply("resolved a swap", func(st *game.GameState) *game.GameState {
		return game.ApplySwapEffect(st, give, take)
	})
}

// SkipSwap waives a pending swap.
func (s *Session) SkipSwap() bool {
	return s.apply("skipped the swap", game.SkipSwap)
}

// Discard returns over-limit tokens to the pool.
func (s *Session) Discard(discards []game.EnergyType) bool {
	return s.apply("discarded energy", func(st *game.GameState) *game.GameState {
		return game.ApplyEnergyDiscard(st, discards)
	})
}

// EndTurn closes the acting player's turn. Refused while any obligation is
// open. A bot seat coming up is scheduled automatically.
func (s *Session) EndTurn() bool {
	s.mu.Lock()
	if s.closed || s.state.Phase == game.PhaseEnded || !game.TurnResolved(s.state) {
		s.mu.Unlock()
		return false
	}
	next := game.ResolveWinner(game.AdvanceTurn(s.state))
	s.state = next
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(Update{State: next, Notice: "turn ended"})
	}
	s.scheduleBot()
	return true
}

// scheduleBot arms the thinking-time timer when a bot holds the turn.
func (s *Session) scheduleBot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state.Phase == game.PhaseEnded || !s.state.CurrentPlayer().IsBot {
		return
	}
	if s.botTimer != nil {
		s.botTimer.Stop()
	}
	s.botTimer = time.AfterFunc(s.botDelay, s.runBotTurn)
}

// runBotTurn plays the scheduled bot move, guarding against the state having
// moved on since scheduling.
func (s *Session) runBotTurn() {
	s.mu.Lock()
	if s.closed || s.state.Phase == game.PhaseEnded || !s.state.CurrentPlayer().IsBot {
		s.mu.Unlock()
		return
	}
	decision := bot.SelectMove(s.state, s.state.CurrentPlayer().BotDifficulty)
	s.state = decision.State
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(Update{State: decision.State, Notice: decision.Notice})
	}
	s.scheduleBot()
}

// StepBot plays one move for the acting seat synchronously with the bot
// engine, regardless of the seat's bot flag. Used by the exhibition frontend.
func (s *Session) StepBot(difficulty game.BotDifficulty) (Update, bool) {
	s.mu.Lock()
	if s.closed || s.state.Phase == game.PhaseEnded {
		s.mu.Unlock()
		return Update{}, false
	}
	decision := bot.SelectMove(s.state, difficulty)
	s.state = decision.State
	onUpdate := s.onUpdate
	s.mu.Unlock()

	update := Update{State: decision.State, Notice: decision.Notice}
	if onUpdate != nil {
		onUpdate(update)
	}
	return update, true
}

// ApplySnapshot replaces local state with a server snapshot, unless the
// snapshot is not newer than what is already held.
func (s *Session) ApplySnapshot(ps realtime.PublicMatchState) bool {
	return s.applyRemote(ps.StateVersion, ps)
}

// ApplyPatch applies a pushed incremental update under the same rule.
func (s *Session) ApplyPatch(patch realtime.Patch) bool {
	return s.applyRemote(patch.StateVersion, patch.State)
}

func (s *Session) applyRemote(version int, ps realtime.PublicMatchState) bool {
	s.mu.Lock()
	if s.closed || version <= s.version {
		s.mu.Unlock()
		return false
	}
	next := mapper.MapRealtimeStateToGameState(ps)
	s.version = version
	s.state = next
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(Update{State: next, Notice: "synchronized"})
	}
	return true
}

// StateVersion returns the newest applied server version (0 in local mode).
func (s *Session) StateVersion() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}
