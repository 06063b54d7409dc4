package render

import (
	"image/color"

	"siege-ca/internal/core"
	"siege-ca/internal/siege"
)

func putRGBA(buf []byte, i int, r, g, b, a uint8) {
	p := buf[i*4 : i*4+4 : i*4+4]
	p[0], p[1], p[2], p[3] = r, g, b, a
}

// fillBinaryRGBA converts binary cell data (0/1) into RGBA pixels in buf.
func fillBinaryRGBA(buf []byte, cells []uint8, on, off color.Color) {
	onC := color.RGBAModel.Convert(on).(color.RGBA)
	offC := color.RGBAModel.Convert(off).(color.RGBA)
	for i, c := range cells {
		col := offC
		if c != 0 {
			col = onC
		}
		putRGBA(buf, i, col.R, col.G, col.B, col.A)
	}
}

// fillPaletteRGBA converts cell values into RGBA pixels using a palette.
// Values past the end of the palette use its last colour; an empty palette
// clears the buffer to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}
	last := len(palette) - 1
	for i, c := range cells {
		col := palette[min(int(c), last)]
		putRGBA(buf, i, col.R, col.G, col.B, col.A)
	}
}

// FillZoneRGBA paints each cell covered by a protection zone with the tint of
// the player holding it and clears every other pixel. alpha sets the opacity.
func FillZoneRGBA(buf []byte, size int, bases siege.Bases, zone siege.ZoneFunc, tint func(owner uint8) color.RGBA, alpha uint8) {
	total := size * size
	if size <= 0 || len(buf) < 4*total {
		return
	}
	clear(buf[:4*total])
	if len(bases) == 0 || zone == nil {
		return
	}

	t := core.Torus{N: size}
	for i := 0; i < total; i++ {
		x, y := t.Coords(i)
		owner, ok := siege.ZoneOwner(x, y, bases, zone, size)
		if !ok {
			continue
		}
		col := tint(owner)
		putRGBA(buf, i, premultiply(col.R, alpha), premultiply(col.G, alpha), premultiply(col.B, alpha), alpha)
	}
}

// ebiten images hold premultiplied alpha.
func premultiply(v, alpha uint8) uint8 {
	return uint8(uint16(v) * uint16(alpha) / 255)
}
