//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"siege-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the parameter panel to the right of the simulation view.
type HUD struct {
	sim        core.Sim
	width      int
	panel      *ebiten.Image
	lastHeight int
	snapshot   core.ParameterSnapshot
	status     []string

	controls     []hudControlState
	intSetter    core.IntParameterSetter
	panelOffsetX int
	controlsTop  int
	title        string

	pixel *ebiten.Image
}

// NewHUD constructs a HUD for the provided simulation and panel width. A
// non-positive width yields a nil HUD, whose methods are no-ops.
func NewHUD(sim core.Sim, width int) *HUD {
	if width <= 0 {
		return nil
	}
	h := &HUD{sim: sim, width: width, title: buildTitle(sim)}
	h.pixel = ebiten.NewImage(1, 1)
	h.pixel.Fill(color.White)
	if provider, ok := sim.(core.ParameterControlsProvider); ok {
		for _, ctrl := range provider.ParameterControls() {
			h.controls = append(h.controls, hudControlState{control: ctrl})
		}
		h.layoutControls()
	}
	if setter, ok := sim.(core.IntParameterSetter); ok {
		h.intSetter = setter
	}
	return h
}

// SetStatus replaces the free-form lines shown under the title.
func (h *HUD) SetStatus(lines []string) {
	if h == nil {
		return
	}
	h.status = lines
}

// Update refreshes the cached parameter snapshot and handles button clicks.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	provider, ok := h.sim.(core.ParameterProvider)
	if !ok {
		h.snapshot = core.ParameterSnapshot{}
		return
	}
	h.snapshot = provider.Parameters()
	h.refreshControlValues()
	h.handleInput()
}

// Draw paints the HUD panel anchored to the right edge of the simulation view.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	height := h.sim.Size().H * scale
	if height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	y := h.drawHeader()
	y = h.drawControls(y)
	h.drawSnapshot(y)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func buildTitle(sim core.Sim) string {
	if sim == nil || sim.Name() == "" {
		return "Controls"
	}
	name := sim.Name()
	return fmt.Sprintf("%s%s", strings.ToUpper(name[:1]), name[1:])
}

func (h *HUD) refreshControlValues() {
	for i := range h.controls {
		state := &h.controls[i]
		param, ok := h.snapshot.Lookup(state.control.Key)
		if !ok || param.Type != core.ParamTypeInt {
			state.hasValue = false
			continue
		}
		parsed, err := strconv.Atoi(param.Value)
		if err != nil {
			state.hasValue = false
			continue
		}
		state.value = parsed
		state.hasValue = true
	}
}

func (h *HUD) handleInput() {
	if len(h.controls) == 0 || h.intSetter == nil {
		return
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		state := &h.controls[i]
		if !state.hasValue {
			continue
		}
		row := image.Pt(0, h.controlsTop+i*lineHeight)
		switch {
		case image.Pt(px, my).In(state.minusRect.Add(row)):
			h.adjust(state, -1)
			return
		case image.Pt(px, my).In(state.plusRect.Add(row)):
			h.adjust(state, 1)
			return
		}
	}
}

func (h *HUD) adjust(state *hudControlState, direction int) {
	target, ok := state.target(direction)
	if !ok {
		return
	}
	if h.intSetter.SetIntParameter(state.control.Key, target) {
		state.value = target
	}
}

func (h *HUD) drawHeader() int {
	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	text.Draw(h.panel, h.title, face, panelPadding, y, titleColor)
	for _, line := range h.status {
		y += infoSpacing
		text.Draw(h.panel, line, face, panelPadding, y, dimColor)
	}
	return y + sectionGap
}

func (h *HUD) drawControls(top int) int {
	face := basicfont.Face7x13
	h.controlsTop = top
	for i := range h.controls {
		state := &h.controls[i]
		rowTop := top + i*lineHeight
		minus := state.minusRect.Add(image.Pt(0, rowTop))
		plus := state.plusRect.Add(image.Pt(0, rowTop))

		labelY := rowTop + labelBaseline
		text.Draw(h.panel, state.control.Label, face, panelPadding, labelY, labelColor)

		value, col := "--", dimColor
		if state.hasValue {
			value, col = strconv.Itoa(state.value), labelColor
		}
		valueX := minus.Min.X - buttonGap - text.BoundString(face, value).Dx()
		text.Draw(h.panel, value, face, valueX, labelY, col)

		_, canDown := state.target(-1)
		_, canUp := state.target(1)
		h.drawButton(minus, "-", state.hasValue && h.intSetter != nil && canDown)
		h.drawButton(plus, "+", state.hasValue && h.intSetter != nil && canUp)
	}
	return top + len(h.controls)*lineHeight + sectionGap
}

func (h *HUD) drawSnapshot(y int) {
	face := basicfont.Face7x13
	for _, group := range h.snapshot.Groups {
		y += infoSpacing
		text.Draw(h.panel, group.Name, face, panelPadding, y, titleColor)
		for _, param := range group.Params {
			y += infoSpacing
			text.Draw(h.panel, param.Label, face, panelPadding, y, dimColor)
			w := text.BoundString(face, param.Value).Dx()
			text.Draw(h.panel, param.Value, face, h.width-panelPadding-w, y, labelColor)
		}
		y += sectionGap
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

// layoutControls positions buttons relative to their row top; Draw offsets
// them by where the controls section starts.
func (h *HUD) layoutControls() {
	for i := range h.controls {
		buttonY := (lineHeight - buttonSize) / 2
		plus := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].minusRect = minus
		h.controls[i].plusRect = plus
	}
}

type hudControlState struct {
	control  core.ParameterControl
	value    int
	hasValue bool

	minusRect image.Rectangle
	plusRect  image.Rectangle
}

func (s *hudControlState) target(direction int) (int, bool) {
	step := s.control.Step
	if step <= 0 {
		step = 1
	}
	target := s.control.Clamp(s.value + direction*step)
	return target, target != s.value
}

var (
	titleColor = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	labelColor = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	dimColor   = color.RGBA{R: 160, G: 160, B: 170, A: 255}
)

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	infoSpacing    = 16
	sectionGap     = 10
)
