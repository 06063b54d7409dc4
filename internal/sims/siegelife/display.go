package siegelife

import (
	"image/color"

	"siege-ca/internal/siege"
)

// Display values 0..MaxPlayers are dead cells shaded by territory owner and
// aliveOffset+owner are live cells.
const aliveOffset = siege.MaxPlayers + 1

var ownerColors = [siege.MaxPlayers + 1]color.NRGBA{
	{R: 200, G: 200, B: 200, A: 255},
	{R: 230, G: 60, B: 60, A: 255},
	{R: 60, G: 120, B: 230, A: 255},
	{R: 70, G: 190, B: 90, A: 255},
	{R: 240, G: 200, B: 50, A: 255},
	{R: 170, G: 80, B: 210, A: 255},
	{R: 40, G: 200, B: 200, A: 255},
	{R: 240, G: 130, B: 40, A: 255},
	{R: 230, G: 90, B: 170, A: 255},
	{R: 150, G: 110, B: 70, A: 255},
	{R: 140, G: 220, B: 40, A: 255},
}

var background = color.NRGBA{R: 14, G: 14, B: 20, A: 255}

var siegePalette = buildSiegePalette()

// Palette exposes the color palette used for rendering the siege world.
func (w *World) Palette() []color.RGBA {
	return siegePalette
}

// OwnerColor returns the live-cell colour of an owner.
func OwnerColor(owner uint8) color.NRGBA {
	if int(owner) >= len(ownerColors) {
		return ownerColors[0]
	}
	return ownerColors[owner]
}

func buildSiegePalette() []color.RGBA {
	palette := make([]color.RGBA, 2*aliveOffset)
	for owner := 0; owner <= siege.MaxPlayers; owner++ {
		dead := background
		if owner != 0 {
			dead = blendColors(background, ownerColors[owner], 0.25)
		}
		palette[owner] = toRGBA(dead)
		palette[aliveOffset+owner] = toRGBA(ownerColors[owner])
	}
	return palette
}

func toRGBA(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func blendColors(base, overlay color.NRGBA, overlayWeight float64) color.NRGBA {
	if overlayWeight <= 0 {
		return base
	}
	if overlayWeight >= 1 {
		return overlay
	}
	inv := 1 - overlayWeight
	mix := func(b, o uint8) uint8 {
		return uint8(float64(b)*inv + float64(o)*overlayWeight + 0.5)
	}
	return color.NRGBA{
		R: mix(base.R, overlay.R),
		G: mix(base.G, overlay.G),
		B: mix(base.B, overlay.B),
		A: mix(base.A, overlay.A),
	}
}

func encodeDisplayValue(c siege.Cell) uint8 {
	if c.Alive {
		return aliveOffset + c.Owner
	}
	return c.Owner
}

// DecodeDisplayValue maps a display byte back to the cell it was built from.
func DecodeDisplayValue(v uint8) siege.Cell {
	if v >= aliveOffset {
		return siege.Cell{Alive: true, Owner: v - aliveOffset}
	}
	return siege.Cell{Owner: v}
}

func (w *World) rebuildDisplay() {
	for i, c := range w.cur {
		w.display[i] = encodeDisplayValue(c)
	}
}
