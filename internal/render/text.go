package render

import (
	"strings"

	"siege-ca/internal/siege"
)

const (
	glyphBase       = '@'
	glyphTerritory  = '.'
	glyphEmpty      = ' '
	glyphUnownedHit = 'o'
)

// OwnerGlyph returns the rune used for a live cell of owner: digits 1-9,
// 0 for player 10 and 'o' for unowned cells.
func OwnerGlyph(owner uint8) rune {
	switch {
	case owner == 0 || owner > siege.MaxPlayers:
		return glyphUnownedHit
	case owner == 10:
		return '0'
	default:
		return rune('0' + owner)
	}
}

// Text renders the grid one rune per cell, row by row. Bases are drawn on
// top of whatever cell they sit on.
func Text(grid siege.Grid, size int, bases siege.Bases) string {
	if size <= 0 || len(grid) != size*size {
		return ""
	}

	baseAt := make(map[int]struct{}, len(bases))
	for _, b := range bases {
		if b.X >= 0 && b.X < size && b.Y >= 0 && b.Y < size {
			baseAt[b.Y*size+b.X] = struct{}{}
		}
	}

	var sb strings.Builder
	sb.Grow(size * (size + 1))
	for y := 0; y < size; y++ {
		row := grid[y*size : (y+1)*size]
		for x, c := range row {
			if _, ok := baseAt[y*size+x]; ok {
				sb.WriteRune(glyphBase)
				continue
			}
			switch {
			case c.Alive:
				sb.WriteRune(OwnerGlyph(c.Owner))
			case c.Owner != 0:
				sb.WriteRune(glyphTerritory)
			default:
				sb.WriteRune(glyphEmpty)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
