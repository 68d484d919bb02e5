/*
Package game
File: win.go
Description:
    Win-condition evaluation, checked after every state-mutating action.
    Precedence is fixed:
      1. turn limit reached and a single highest efficiency of at least 20
      2. first player (array order) with 12 built nodes
      3. first player (array order) with 3 claimed protocols
*/

package game

// CheckWinConditions inspects the state and returns the winner's player ID,
// or "" when the match continues.
func CheckWinConditions(s *GameState) string {
	// 1. Turn-limit efficiency race.
	if s.TurnCount >= TurnThreshold {
		best, bestCount := 0, 0
		winner := ""
		for _, p := range s.Players {
			if p.Efficiency > best {
				best = p.Efficiency
				bestCount = 1
				winner = p.ID
			} else if p.Efficiency == best {
				bestCount++
			}
		}
		if best >= EfficiencyWinMinimum && bestCount == 1 {
			return winner
		}
	}

	// 2. Network size.
	for _, p := range s.Players {
		if len(p.Nodes) >= NetworkWinThreshold {
			return p.ID
		}
	}

	// 3. Claimed protocols.
	for _, p := range s.Players {
		if len(p.Protocols) >= ProtocolWinThreshold {
			return p.ID
		}
	}

	return ""
}

// ResolveWinner applies CheckWinConditions to the state, ending the match
// when a winner exists. Returns the input state unchanged otherwise.
func ResolveWinner(s *GameState) *GameState {
	winner := CheckWinConditions(s)
	if winner == "" {
		return s
	}
	next := s.Clone()
	next.WinnerID = winner
	next.Phase = PhaseEnded
	return next
}
