/*
Package realtime
File: protocol.go
Description:
    Wire-protocol contracts for the realtime service. Every frame on the
    socket is an Envelope: requests carry a correlation ID the ack echoes
    back; pushes carry no ID and expect no reply.

    PublicMatchState is the server's normalized (ID-referenced) view of a
    match; the mapper package denormalizes it against the local catalog.
*/

package realtime

import "encoding/json"

// Client -> server request events.
const (
	EventMatchCreate  = "match:create"
	EventMatchQuick   = "match:quick"
	EventMatchJoin    = "match:join"
	EventMatchLeave   = "match:leave"
	EventMatchStart   = "match:start"
	EventMatchReady   = "match:ready"
	EventActionSubmit = "action:submit"
	EventStateResync  = "state:resync_request"
)

// Server -> client push events (fire-and-forget, no ack).
const (
	PushStateSnapshot  = "match:state_snapshot"
	PushStatePatch     = "match:state_patch"
	PushMatchEnded     = "match:ended"
	PushActionRejected = "action:rejected"
)

// EventAck is the reply type for every request.
const EventAck = "ack"

// Envelope is the JSON frame shared by requests, acks and pushes.
type Envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// Ack fields.
	OK    *bool           `json:"ok,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *ServerError    `json:"error,omitempty"`
}

// ServerError is the structured failure a negative ack carries.
type ServerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Request payloads.

type CreateMatchRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
}

type JoinMatchRequest struct {
	MatchID string `json:"matchId"`
	Name    string `json:"name"`
}

type LeaveMatchRequest struct {
	MatchID string `json:"matchId"`
}

type StartMatchRequest struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
}

type ReadyRequest struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
	Ready    bool   `json:"ready"`
}

type SubmitActionRequest struct {
	MatchID           string `json:"matchId"`
	PlayerID          string `json:"playerId"`
	ActionID          string `json:"actionId"`
	Action            Action `json:"action"`
	KnownStateVersion int    `json:"knownStateVersion"`
}

type ResyncRequest struct {
	MatchID string `json:"matchId"`
}

// Ack payloads.

// SessionAck answers match:create, match:quick and match:join.
type SessionAck struct {
	PlayerID string           `json:"playerId"`
	State    PublicMatchState `json:"state"`
}

// StateAck answers match:leave, match:start, match:ready and resync.
type StateAck struct {
	State PublicMatchState `json:"state"`
}

// SubmitAck answers action:submit.
type SubmitAck struct {
	AcceptedActionID string            `json:"acceptedActionId"`
	Patch            *Patch            `json:"patch,omitempty"`
	State            *PublicMatchState `json:"state,omitempty"`
}

// Action types, mirroring the local rules operations one-to-one.
const (
	ActionCollectEnergy  = "COLLECT_ENERGY"
	ActionBuildNode      = "BUILD_NODE"
	ActionReserveNode    = "RESERVE_NODE"
	ActionClaimProtocol  = "CLAIM_PROTOCOL"
	ActionExchangeEnergy = "EXCHANGE_ENERGY"
	ActionEndTurn        = "END_TURN"
	ActionApplyReclaim   = "APPLY_RECLAIM"
	ActionSkipReclaim    = "SKIP_RECLAIM"
	ActionApplySwap      = "APPLY_SWAP"
	ActionSkipSwap       = "SKIP_SWAP"
)

// Action is the tagged union submitted through action:submit. Only the
// fields the tagged type defines are populated.
type Action struct {
	Type       string   `json:"type"`
	Energy     []string `json:"energy,omitempty"`     // COLLECT_ENERGY, APPLY_RECLAIM
	NodeID     string   `json:"nodeId,omitempty"`     // BUILD_NODE, RESERVE_NODE
	FromMarket bool     `json:"fromMarket,omitempty"` // RESERVE_NODE
	ProtocolID string   `json:"protocolId,omitempty"` // CLAIM_PROTOCOL
	TakeType   string   `json:"takeType,omitempty"`   // EXCHANGE_ENERGY
	TakeCount  int      `json:"takeCount,omitempty"`  // EXCHANGE_ENERGY, 1 or 2
	Give       []string `json:"give,omitempty"`       // EXCHANGE_ENERGY, APPLY_SWAP
	Take       []string `json:"take,omitempty"`       // APPLY_SWAP
}

// Action constructors.

func CollectEnergy(energy ...string) Action {
	return Action{Type: ActionCollectEnergy, Energy: energy}
}

func BuildNode(nodeID string) Action {
	return Action{Type: ActionBuildNode, NodeID: nodeID}
}

func ReserveNode(nodeID string, fromMarket bool) Action {
	return Action{Type: ActionReserveNode, NodeID: nodeID, FromMarket: fromMarket}
}

func ClaimProtocol(protocolID string) Action {
	return Action{Type: ActionClaimProtocol, ProtocolID: protocolID}
}

func ExchangeEnergy(takeType string, takeCount int, give ...string) Action {
	return Action{Type: ActionExchangeEnergy, TakeType: takeType, TakeCount: takeCount, Give: give}
}

func EndTurn() Action { return Action{Type: ActionEndTurn} }

func ApplyReclaim(energy ...string) Action {
	return Action{Type: ActionApplyReclaim, Energy: energy}
}

func SkipReclaim() Action { return Action{Type: ActionSkipReclaim} }

func ApplySwap(give, take []string) Action {
	return Action{Type: ActionApplySwap, Give: give, Take: take}
}

func SkipSwap() Action { return Action{Type: ActionSkipSwap} }

// PublicMatchState is the server-authoritative, ID-referenced match state.
type PublicMatchState struct {
	MatchID             string              `json:"matchId"`
	Status              string              `json:"status"` // lobby | playing | ended
	StateVersion        int                 `json:"stateVersion"`
	HostPlayerID        string              `json:"hostPlayerId,omitempty"`
	CurrentTurnPlayerID string              `json:"currentTurnPlayerId,omitempty"`
	TurnCount           int                 `json:"turnCount"`
	EnergyPool          map[string]int      `json:"energyPool"`
	MarketNodeIDs       [][]string          `json:"marketNodeIds"` // 4x4, "" = empty slot
	DeckNodeIDs         map[string][]string `json:"deckNodeIds"`   // category -> ordered IDs
	Protocols           []PublicProtocol    `json:"protocols"`
	Players             []PublicPlayer      `json:"players"`
	WinnerID            string              `json:"winnerId,omitempty"`
}

// PublicProtocol references a catalog protocol plus its claim state.
type PublicProtocol struct {
	ID        string `json:"id"`
	ClaimedBy string `json:"claimedBy,omitempty"`
}

// PublicPlayer is one seat as the server exposes it. Pending effects are not
// transmitted: the server resolves them before publishing state.
type PublicPlayer struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Ready           bool           `json:"ready"`
	IsBot           bool           `json:"isBot"`
	BotDifficulty   string         `json:"botDifficulty,omitempty"`
	Energy          map[string]int `json:"energy"`
	NodeIDs         []string       `json:"nodeIds"`
	ReservedNodeIDs []string       `json:"reservedNodeIds"`
	ProtocolIDs     []string       `json:"protocolIds"`
	Efficiency      int            `json:"efficiency"`
}

// Patch is an incremental state push: the new authoritative version plus the
// refreshed match state.
type Patch struct {
	StateVersion int              `json:"stateVersion"`
	State        PublicMatchState `json:"state"`
}
