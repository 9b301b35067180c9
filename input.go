package vistra

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyA int = iota
	KeyD
	KeyQ
	KeyS
	KeyW
	KeyZ
	KeySpace
	KeyEscape
	KeyTab
	KeyShift
	KeyControl
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	inputCodeCount
)

// Input is the per-frame keyboard and mouse snapshot polled from the
// window. JustPressed/JustReleased report edges since the previous poll.
type Input struct {
	Pressed      [inputCodeCount]bool
	JustPressed  [inputCodeCount]bool
	JustReleased [inputCodeCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	MouseCaptured            bool

	WindowWidth, WindowHeight int
}

var keyToGlfw = map[int]glfw.Key{
	KeyA:       glfw.KeyA,
	KeyD:       glfw.KeyD,
	KeyQ:       glfw.KeyQ,
	KeyS:       glfw.KeyS,
	KeyW:       glfw.KeyW,
	KeyZ:       glfw.KeyZ,
	KeySpace:   glfw.KeySpace,
	KeyEscape:  glfw.KeyEscape,
	KeyTab:     glfw.KeyTab,
	KeyShift:   glfw.KeyLeftShift,
	KeyControl: glfw.KeyLeftControl,
}

func (input *Input) updateCode(code int, pressed bool) {
	input.JustPressed[code] = false
	input.JustReleased[code] = false
	if pressed {
		if !input.Pressed[code] {
			input.JustPressed[code] = true
		}
		input.Pressed[code] = true
	} else {
		if input.Pressed[code] {
			input.JustReleased[code] = true
		}
		input.Pressed[code] = false
	}
}

// Poll refreshes the snapshot from the window. Call once per frame, after
// glfw.PollEvents.
func (input *Input) Poll(s *WindowState) {
	for key, glfwKey := range keyToGlfw {
		input.updateCode(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}

	// Tab toggles mouse capture; captured mouse drives the camera look.
	if input.JustPressed[KeyTab] {
		input.MouseCaptured = !input.MouseCaptured
	}

	mx, my := s.windowGlfw.GetCursorPos()
	if input.MouseCaptured {
		input.MouseDeltaX = mx - input.MouseX
		input.MouseDeltaY = my - input.MouseY
	} else {
		input.MouseDeltaX = 0
		input.MouseDeltaY = 0
	}
	input.MouseX = mx
	input.MouseY = my

	input.WindowWidth, input.WindowHeight = s.windowGlfw.GetSize()

	for btn := MouseButtonLeft; btn <= MouseButtonMiddle; btn++ {
		var glfwBtn glfw.MouseButton
		switch btn {
		case MouseButtonLeft:
			glfwBtn = glfw.MouseButtonLeft
		case MouseButtonRight:
			glfwBtn = glfw.MouseButtonRight
		case MouseButtonMiddle:
			glfwBtn = glfw.MouseButtonMiddle
		}
		input.updateCode(btn, s.windowGlfw.GetMouseButton(glfwBtn) == glfw.Press)
	}

	if input.MouseCaptured {
		s.windowGlfw.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		s.windowGlfw.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}
