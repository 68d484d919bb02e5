/*
Package main
File: main.go
Description: Local exhibition frontend. Runs a bot-vs-bot match through the
session controller and renders the pool, the seats and the move feed live in
the terminal.
*/

package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/S4LUD/quantum-nexus-sub000/internal/game"
	"github.com/S4LUD/quantum-nexus-sub000/internal/session"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	noticeStyle = lipgloss.NewStyle().Faint(true)
	winnerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

type model struct {
	sess       *session.Session
	difficulty game.BotDifficulty
	delay      time.Duration
	state      *game.GameState
	notices    []string
	moves      int
	done       bool
}

type tickMsg time.Time

func tickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.delay)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.sess.Close()
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		update, ok := m.sess.StepBot(m.difficulty)
		if !ok {
			m.done = true
			return m, nil
		}
		m.state = update.State
		m.moves++
		m.notices = append([]string{update.Notice}, m.notices...)
		if len(m.notices) > 8 {
			m.notices = m.notices[:8]
		}
		if update.State.Phase == game.PhaseEnded {
			m.done = true
			return m, nil
		}
		return m, tickCmd(m.delay)
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("QUANTUM NEXUS — exhibition match"))
	fmt.Fprintf(&b, "\nturn %d, move %d\n\n", m.state.TurnCount, m.moves)

	// Shared pool.
	b.WriteString("Pool: ")
	types := append(append([]game.EnergyType{}, game.BaseEnergyTypes...), game.Flux)
	for _, t := range types {
		fmt.Fprintf(&b, "%s=%d ", t, m.state.EnergyPool[t])
	}
	b.WriteString("\n\n")

	// Seats.
	for i, p := range m.state.Players {
		marker := "  "
		if i == m.state.CurrentPlayerIndex && m.state.Phase == game.PhasePlaying {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%-9s eff=%-3d nodes=%-2d reserved=%d protocols=%d energy=%s\n",
			marker, p.Name, p.Efficiency, len(p.Nodes), len(p.ReservedNodes), len(p.Protocols),
			energySummary(p.Energy))
	}

	b.WriteString("\n")
	for _, n := range m.notices {
		b.WriteString(noticeStyle.Render("  " + n))
		b.WriteString("\n")
	}

	if m.state.Phase == game.PhaseEnded {
		winner := m.state.PlayerByID(m.state.WinnerID)
		name := m.state.WinnerID
		if winner != nil {
			name = winner.Name
		}
		b.WriteString("\n" + winnerStyle.Render(fmt.Sprintf("%s wins the match", name)) + "\n")
	}

	b.WriteString("\n[q] quit\n")
	return b.String()
}

func energySummary(energy map[game.EnergyType]int) string {
	var parts []string
	for t, amt := range energy {
		if amt > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", t, amt))
		}
	}
	sort.Strings(parts)
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func main() {
	players := flag.Int("players", 3, "seats in the match (2-4)")
	difficulty := flag.String("difficulty", "hard", "bot difficulty: easy, medium, hard")
	seed := flag.Int64("seed", 0, "deck shuffle seed (0 = random)")
	delay := flag.Duration("delay", 400*time.Millisecond, "thinking time between moves")
	flag.Parse()

	tier := game.BotDifficulty(*difficulty)
	sess, err := session.NewLocal(game.MatchConfig{
		Players:       *players,
		Bots:          *players - 1,
		BotDifficulty: tier,
		Seed:          *seed,
	}, *delay, nil)
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}
	defer sess.Close()

	m := model{
		sess:       sess,
		difficulty: tier,
		delay:      *delay,
		state:      sess.State(),
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatalf("frontend failed: %v", err)
	}
}
