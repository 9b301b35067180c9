package vistra

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Ui is the widget surface the core issues calls into while building
// structure and quantity panels. It mirrors an immediate-mode toolkit:
// value widgets take the current value and return the (possibly edited)
// new one each frame. The core never depends on how a backend lays out or
// rasterizes widgets.
type Ui interface {
	PushID(id string)
	PopID()

	TreeNode(label string) bool
	TreePop()

	Text(msg string)
	Checkbox(label string, value bool) bool
	ColorEdit3(label string, color mgl32.Vec3) mgl32.Vec3
	SliderFloat(label string, value, min, max float32) float32
	Button(label string) bool
	MenuItem(label string) bool

	OpenPopup(id string)
	BeginPopup(id string) bool
	EndPopup()

	Columns(n int)
	Indent(amount float32)
	Spacing()
}

// NopUi discards every call. It is the default backend for headless use
// and tests.
type NopUi struct{}

func (NopUi) PushID(id string)                                          {}
func (NopUi) PopID()                                                    {}
func (NopUi) TreeNode(label string) bool                                { return false }
func (NopUi) TreePop()                                                  {}
func (NopUi) Text(msg string)                                           {}
func (NopUi) Checkbox(label string, value bool) bool                    { return value }
func (NopUi) ColorEdit3(label string, color mgl32.Vec3) mgl32.Vec3      { return color }
func (NopUi) SliderFloat(label string, value, min, max float32) float32 { return value }
func (NopUi) Button(label string) bool                                  { return false }
func (NopUi) MenuItem(label string) bool                                { return false }
func (NopUi) OpenPopup(id string)                                       {}
func (NopUi) BeginPopup(id string) bool                                 { return false }
func (NopUi) EndPopup()                                                 {}
func (NopUi) Columns(n int)                                             {}
func (NopUi) Indent(amount float32)                                     {}
func (NopUi) Spacing()                                                  {}
