//go:build ebiten

package app

import (
	"image/color"
	"time"

	"siege-ca/internal/core"
	"siege-ca/internal/render"
	"siege-ca/internal/siege"
	"siege-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type paletteProvider interface {
	Palette() []color.RGBA
}

type patternStamper interface {
	StampPattern(name string, x, y int, owner uint8) error
}

type errReporter interface {
	Err() error
}

var playerKeys = [siege.MaxPlayers]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5,
	ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9, ebiten.KeyDigit0,
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	clock   *core.FixedStep

	onColor  color.Color
	offColor color.Color

	scale    int
	hudWidth int
	paused   bool
	tickOnce bool
	seed     int64
	player   uint8
	pattern  string
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, cfg *Config) *Game {
	size := sim.Size()
	player := uint8(1)
	if cfg.Player >= 1 && cfg.Player <= siege.MaxPlayers {
		player = uint8(cfg.Player)
	}
	g := &Game{
		sim:      sim,
		painter:  render.NewGridPainter(size.W, size.H),
		overlay:  ui.NewOverlay(sim, cfg.Scale),
		hud:      ui.NewHUD(sim, cfg.HUDWidth),
		clock:    core.NewFixedStep(cfg.TPS),
		onColor:  color.White,
		offColor: color.Black,
		scale:    cfg.Scale,
		hudWidth: cfg.HUDWidth,
		seed:     cfg.Seed,
		player:   player,
		pattern:  cfg.Pattern,
	}
	g.hud.SetStatus(g.status())
	return g
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
	g.clock.Reset()
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	for i, key := range playerKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.player = uint8(i + 1)
		}
	}
	g.handleClick()

	g.overlay.Update()
	g.hud.Update(g.sim.Size().W * g.scale)

	due := g.clock.ShouldStep()
	if (due && !g.paused) || g.tickOnce {
		g.sim.Step()
		g.tickOnce = false
		if rep, ok := g.sim.(errReporter); ok && rep.Err() != nil {
			return rep.Err()
		}
	}
	g.hud.SetStatus(g.status())
	return nil
}

func (g *Game) handleClick() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	stamper, ok := g.sim.(patternStamper)
	if !ok {
		return
	}
	mx, my := ebiten.CursorPosition()
	size := g.sim.Size()
	x, y := mx/g.scale, my/g.scale
	if x < 0 || y < 0 || x >= size.W || y >= size.H {
		return
	}
	_ = stamper.StampPattern(g.pattern, x, y, g.player)
}

func (g *Game) status() []string {
	state := "running"
	if g.paused {
		state = "paused"
	}
	return []string{
		"State: " + state,
		"Stamp: " + g.pattern + " as P" + string(render.OwnerGlyph(g.player)),
	}
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	if p, ok := g.sim.(paletteProvider); ok {
		g.painter.BlitPalette(screen, g.sim.Cells(), p.Palette(), g.scale)
	} else {
		g.painter.Blit(screen, g.sim.Cells(), g.onColor, g.offColor, g.scale)
	}
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.sim.Size().W*g.scale, g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + g.hudWidth, s.H * g.scale
}
