//go:build ebiten

package ui

import (
	"image/color"

	"siege-ca/internal/core"
	"siege-ca/internal/render"
	"siege-ca/internal/siege"
	"siege-ca/internal/sims/siegelife"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type zoneProvider interface {
	Bases() siege.Bases
	ZoneRadius() int
}

const zoneAlpha = 70

// Overlay draws protection zones and base markers over the grid.
// Z toggles zones, B toggles base markers.
type Overlay struct {
	sim       core.Sim
	scale     int
	showZones bool
	showBases bool

	painter *render.GridPainter
	zoneBuf []byte
	pixel   *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	if scale <= 0 {
		scale = 1
	}
	o := &Overlay{sim: sim, scale: scale, showZones: true, showBases: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update handles the overlay toggles.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyZ) {
		o.showZones = !o.showZones
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		o.showBases = !o.showBases
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	provider, ok := o.sim.(zoneProvider)
	if !ok {
		return
	}
	size := o.sim.Size()
	if size.W <= 0 || size.W != size.H {
		return
	}
	bases := provider.Bases()

	if o.showZones {
		o.drawZones(screen, size.W, bases, provider.ZoneRadius())
	}
	if o.showBases {
		for id := uint8(1); id <= siege.MaxPlayers; id++ {
			if b, ok := bases[id]; ok {
				o.drawMarker(screen, b, ownerTint(id))
			}
		}
	}
}

func (o *Overlay) drawZones(screen *ebiten.Image, n int, bases siege.Bases, radius int) {
	if o.painter == nil {
		o.painter = render.NewGridPainter(n, n)
		o.zoneBuf = make([]byte, 4*n*n)
	}
	render.FillZoneRGBA(o.zoneBuf, n, bases, siege.SquareZone(radius, n), ownerTint, zoneAlpha)
	o.painter.BlitRGBA(screen, o.zoneBuf, o.scale)
}

// drawMarker outlines the base cell with a one pixel frame.
func (o *Overlay) drawMarker(screen *ebiten.Image, b siege.BaseInfo, col color.RGBA) {
	s := float64(o.scale)
	x, y := float64(b.X)*s, float64(b.Y)*s
	o.fillRect(screen, x-1, y-1, s+2, 1, col)
	o.fillRect(screen, x-1, y+s, s+2, 1, col)
	o.fillRect(screen, x-1, y, 1, s, col)
	o.fillRect(screen, x+s, y, 1, s, col)
}

func (o *Overlay) fillRect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func ownerTint(owner uint8) color.RGBA {
	c := siegelife.OwnerColor(owner)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
