package vistra

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// TextMeasurer is the metric source TextUi lays widgets out with. A
// GlyphAtlas satisfies it; tests use a fixed-advance stub.
type TextMeasurer interface {
	MeasureText(s string, scale float32) (float32, float32)
	LineHeight(scale float32) float32
}

// TextUi renders the core's widget calls as ASCII-styled text items, one
// widget per line, and resolves interaction by hit-testing the mouse
// against the line a widget was drawn on. Call BeginFrame once per frame
// with the current mouse state, issue the UI pass, then hand Items() to a
// text overlay for drawing.
type TextUi struct {
	measure TextMeasurer
	scale   float32

	items   []TextItem
	cursorY float32
	indent  float32

	idStack    []string
	openNodes  map[string]bool
	openPopups map[string]bool

	mouseX, mouseY float32
	clicked        bool
}

func NewTextUi(measure TextMeasurer) *TextUi {
	return &TextUi{
		measure:    measure,
		scale:      1.0,
		openNodes:  make(map[string]bool),
		openPopups: make(map[string]bool),
	}
}

// BeginFrame resets the draw list and records this frame's mouse state.
func (u *TextUi) BeginFrame(mouseX, mouseY float32, clicked bool) {
	u.items = u.items[:0]
	u.cursorY = 0
	u.indent = 0
	u.idStack = u.idStack[:0]
	u.mouseX = mouseX
	u.mouseY = mouseY
	u.clicked = clicked
}

// Items is the text draw list accumulated since BeginFrame.
func (u *TextUi) Items() []TextItem { return u.items }

func (u *TextUi) scopedID(id string) string {
	if len(u.idStack) == 0 {
		return id
	}
	return strings.Join(u.idStack, "/") + "/" + id
}

var (
	textUiColor     = [4]float32{1, 1, 1, 1}
	textUiHighlight = [4]float32{1, 1, 0, 1}
)

// line emits one widget line and reports whether it was clicked this
// frame.
func (u *TextUi) line(text string, color [4]float32) bool {
	w, h := u.measure.MeasureText(text, u.scale)
	y := u.cursorY

	u.items = append(u.items, TextItem{
		Text:     text,
		Position: [2]float32{u.indent, y},
		Scale:    u.scale,
		Color:    color,
	})
	u.cursorY += u.measure.LineHeight(u.scale)

	return u.clicked &&
		u.mouseX >= u.indent && u.mouseX <= u.indent+w &&
		u.mouseY >= y && u.mouseY <= y+h
}

func (u *TextUi) PushID(id string) { u.idStack = append(u.idStack, id) }
func (u *TextUi) PopID()           { u.idStack = u.idStack[:len(u.idStack)-1] }

func (u *TextUi) TreeNode(label string) bool {
	id := u.scopedID(label)
	open := u.openNodes[id]

	marker := "[+]"
	if open {
		marker = "[-]"
	}
	if u.line(marker+" "+label, textUiHighlight) {
		open = !open
		u.openNodes[id] = open
	}
	if open {
		u.indent += 20
	}
	return open
}

func (u *TextUi) TreePop() {
	u.indent -= 20
}

func (u *TextUi) Text(msg string) {
	u.line(msg, textUiColor)
}

func (u *TextUi) Checkbox(label string, value bool) bool {
	box := "[ ]"
	if value {
		box = "[x]"
	}
	if u.line(box+" "+label, textUiColor) {
		return !value
	}
	return value
}

func (u *TextUi) ColorEdit3(label string, color mgl32.Vec3) mgl32.Vec3 {
	text := fmt.Sprintf("%s (%.2f, %.2f, %.2f)", label, color[0], color[1], color[2])
	if u.line(text, [4]float32{color[0], color[1], color[2], 1}) {
		// Clicking rotates the channels; a real picker lives outside this
		// backend.
		return mgl32.Vec3{color[1], color[2], color[0]}
	}
	return color
}

func (u *TextUi) SliderFloat(label string, value, min, max float32) float32 {
	const notches = 20
	t := float32(0)
	if max > min {
		t = (value - min) / (max - min)
	}
	knob := int(t * notches)
	if knob > notches {
		knob = notches
	}

	bar := strings.Repeat("-", knob) + "o" + strings.Repeat("-", notches-knob)
	text := fmt.Sprintf("%s <%s> %.5f", label, bar, value)

	w, _ := u.measure.MeasureText(text, u.scale)
	if u.line(text, textUiColor) && w > 0 {
		frac := (u.mouseX - u.indent) / w
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		return min + frac*(max-min)
	}
	return value
}

func (u *TextUi) Button(label string) bool {
	return u.line("< "+label+" >", textUiHighlight)
}

func (u *TextUi) MenuItem(label string) bool {
	return u.line("- "+label, textUiColor)
}

func (u *TextUi) OpenPopup(id string) {
	u.openPopups[u.scopedID(id)] = true
}

func (u *TextUi) BeginPopup(id string) bool {
	if !u.openPopups[u.scopedID(id)] {
		return false
	}
	u.indent += 20
	return true
}

func (u *TextUi) EndPopup() {
	u.indent -= 20
}

func (u *TextUi) Columns(n int) {}

func (u *TextUi) Indent(amount float32) {
	u.indent += amount
}

func (u *TextUi) Spacing() {
	u.cursorY += u.measure.LineHeight(u.scale) * 0.5
}
