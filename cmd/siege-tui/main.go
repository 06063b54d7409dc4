package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"siege-ca/internal/render"
	"siege-ca/internal/session"
	"siege-ca/internal/siege"
	"siege-ca/internal/sims/siegelife"
)

type TickMsg time.Time

type model struct {
	runner   *session.Runner
	interval time.Duration
	player   uint8
	pattern  string
	cursorX  int
	cursorY  int
	lastErr  error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

func (m model) apply(cmd session.Command) model {
	m.lastErr = m.runner.Apply(context.Background(), cmd)
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	size := m.runner.World().Config().Size
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.runner.Paused() {
				return m.apply(session.Command{Kind: session.CmdResume}), nil
			}
			return m.apply(session.Command{Kind: session.CmdPause}), nil
		case "n":
			return m.apply(session.Command{Kind: session.CmdStep}), nil
		case "r":
			m.runner.World().Reset(0)
			return m, nil
		case "up", "k":
			m.cursorY = (m.cursorY - 1 + size) % size
		case "down", "j":
			m.cursorY = (m.cursorY + 1) % size
		case "left", "h":
			m.cursorX = (m.cursorX - 1 + size) % size
		case "right", "l":
			m.cursorX = (m.cursorX + 1) % size
		case "enter":
			return m.apply(session.Command{Kind: session.CmdStamp, Player: m.player, X: m.cursorX, Y: m.cursorY, Pattern: m.pattern}), nil
		case "b":
			return m.apply(session.Command{Kind: session.CmdPlaceBase, Player: m.player, X: m.cursorX, Y: m.cursorY}), nil
		case "x":
			return m.apply(session.Command{Kind: session.CmdRemoveBase, Player: m.player}), nil
		default:
			if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
				m.player = key[0] - '0'
				if m.player == 0 {
					m.player = 10
				}
			}
		}
	case TickMsg:
		if err := m.runner.Tick(context.Background()); err != nil {
			m.lastErr = err
		}
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m model) View() string {
	world := m.runner.World()
	stats := world.Stats()

	board := []rune(render.Text(world.Grid(), world.Config().Size, world.Bases()))
	cursor := m.cursorY*(world.Config().Size+1) + m.cursorX
	if cursor < len(board) {
		board[cursor] = '+'
	}

	var sb strings.Builder
	sb.WriteString(string(board))
	state := "running"
	if m.runner.Paused() {
		state = "paused"
	}
	fmt.Fprintf(&sb, "\nSession %s  generation %d  alive %d  [%s]\n", m.runner.ID(), stats.Generation, stats.Alive, state)
	for id := uint8(1); id <= siege.MaxPlayers; id++ {
		oc, ok := stats.Owners[id]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "  P%c alive %4d  territory %4d\n", render.OwnerGlyph(id), oc.Alive, oc.Territory)
	}
	fmt.Fprintf(&sb, "\nPlayer P%c stamps %s at the cursor.\n", render.OwnerGlyph(m.player), m.pattern)
	if m.lastErr != nil {
		fmt.Fprintf(&sb, "error: %v\n", m.lastErr)
	}
	sb.WriteString("\nspace pause  n step  r reset  arrows move  enter stamp  b base  x remove base  0-9 player  q quit\n")
	return sb.String()
}

func main() {
	size := flag.Int("size", 40, "grid size")
	players := flag.Int("players", 4, "number of players")
	radius := flag.Int("zone-radius", siege.DefaultZoneRadius, "protection zone radius")
	seed := flag.Int64("seed", 42, "world seed")
	tps := flag.Int("tps", 8, "generations per second")
	pattern := flag.String("pattern", "glider", "pattern stamped with enter")
	flag.Parse()

	if _, err := siege.LookupPattern(*pattern); err != nil {
		log.Fatal(err)
	}

	cfg := siegelife.DefaultConfig()
	cfg.Size = *size
	cfg.Players = *players
	cfg.ZoneRadius = *radius
	cfg.Seed = *seed
	world := siegelife.NewWithConfig(cfg)
	world.Reset(0)

	if *tps <= 0 {
		*tps = 8
	}
	m := model{
		runner:   session.New(world, session.Options{TPS: *tps}),
		interval: time.Second / time.Duration(*tps),
		player:   1,
		pattern:  *pattern,
		cursorX:  world.Config().Size / 2,
		cursorY:  world.Config().Size / 2,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
