package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodesOf(n int) []Node {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = testNode(fmt.Sprintf("n%d", i), Production, 1, Solar, nil)
	}
	return nodes
}

func protocolsOf(n int) []Protocol {
	protos := make([]Protocol, n)
	for i := range protos {
		protos[i] = Protocol{ID: fmt.Sprintf("pr%d", i), Claimed: true}
	}
	return protos
}

func TestEfficiencyWinNeedsTurnLimitAndUniqueLead(t *testing.T) {
	s := twoPlayerState()
	s.Players[0].Efficiency = EfficiencyWinMinimum
	s.Players[1].Efficiency = 5

	// Before the turn limit the efficiency race never triggers.
	s.TurnCount = TurnThreshold - 1
	assert.Empty(t, CheckWinConditions(s))

	s.TurnCount = TurnThreshold
	assert.Equal(t, "p1", CheckWinConditions(s))

	// A tie at the top keeps the match going.
	s.Players[1].Efficiency = EfficiencyWinMinimum
	assert.Empty(t, CheckWinConditions(s))

	// A unique lead below the minimum does not win either.
	s.Players[0].Efficiency = EfficiencyWinMinimum - 1
	s.Players[1].Efficiency = 3
	assert.Empty(t, CheckWinConditions(s))
}

func TestNetworkWinOutranksProtocolWin(t *testing.T) {
	s := twoPlayerState()
	s.Players[0].Protocols = protocolsOf(ProtocolWinThreshold)
	s.Players[1].Nodes = nodesOf(NetworkWinThreshold)

	assert.Equal(t, "p2", CheckWinConditions(s))
}

func TestEfficiencyWinOutranksNetworkWin(t *testing.T) {
	s := twoPlayerState()
	s.TurnCount = TurnThreshold
	s.Players[0].Nodes = nodesOf(NetworkWinThreshold)
	s.Players[0].Efficiency = 4
	s.Players[1].Efficiency = EfficiencyWinMinimum

	assert.Equal(t, "p2", CheckWinConditions(s))
}

func TestNetworkAndProtocolWinsTakeFirstInSeatOrder(t *testing.T) {
	s := twoPlayerState()
	s.Players[0].Nodes = nodesOf(NetworkWinThreshold)
	s.Players[1].Nodes = nodesOf(NetworkWinThreshold + 2)
	assert.Equal(t, "p1", CheckWinConditions(s))

	s = twoPlayerState()
	s.Players[0].Protocols = protocolsOf(ProtocolWinThreshold)
	s.Players[1].Protocols = protocolsOf(ProtocolWinThreshold)
	assert.Equal(t, "p1", CheckWinConditions(s))
}

func TestResolveWinner(t *testing.T) {
	s := twoPlayerState()
	assert.Same(t, s, ResolveWinner(s), "no winner, no transition")

	s.Players[1].Protocols = protocolsOf(ProtocolWinThreshold)
	next := ResolveWinner(s)
	require.NotSame(t, s, next)
	assert.Equal(t, "p2", next.WinnerID)
	assert.Equal(t, PhaseEnded, next.Phase)

	// The input snapshot still says playing.
	assert.Equal(t, PhasePlaying, s.Phase)
	assert.Empty(t, s.WinnerID)
}
