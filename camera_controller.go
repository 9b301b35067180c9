package vistra

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraController turns the input snapshot into free-fly navigation of a
// CameraState. Translation speed is calibrated against the scene length
// scale so navigation feels the same at any scene size.
type CameraController struct {
	Speed       float32 // scene lengths per second
	Sensitivity float32 // degrees per mouse pixel

	lastFrame time.Time
}

func NewCameraController() *CameraController {
	return &CameraController{
		Speed:       0.5,
		Sensitivity: 0.1,
	}
}

// Update advances cam by one frame of input.
func (cc *CameraController) Update(cam *CameraState, input *Input, sceneLengthScale float64) {
	now := time.Now()
	dt := float32(0)
	if !cc.lastFrame.IsZero() {
		dt = float32(now.Sub(cc.lastFrame).Seconds())
	}
	cc.lastFrame = now
	if dt <= 0 {
		return
	}

	if input.MouseCaptured {
		cam.Yaw += float32(input.MouseDeltaX) * cc.Sensitivity
		cam.Pitch -= float32(input.MouseDeltaY) * cc.Sensitivity
	}
	if cam.Pitch > 89.0 {
		cam.Pitch = 89.0
	}
	if cam.Pitch < -89.0 {
		cam.Pitch = -89.0
	}

	var move mgl32.Vec3
	if input.Pressed[KeyW] {
		move[2] += 1
	}
	if input.Pressed[KeyS] {
		move[2] -= 1
	}
	if input.Pressed[KeyA] {
		move[0] -= 1
	}
	if input.Pressed[KeyD] {
		move[0] += 1
	}
	if input.Pressed[KeySpace] {
		move[1] += 1
	}
	if input.Pressed[KeyControl] {
		move[1] -= 1
	}
	if move.Len() == 0 {
		return
	}

	look, _, right := cam.Frame()
	up := mgl32.Vec3{0, 1, 0}

	dir := right.Mul(move[0]).Add(up.Mul(move[1])).Add(look.Mul(move[2])).Normalize()

	speed := cam.TranslationSpeed(cc.Speed, sceneLengthScale)
	if input.Pressed[KeyShift] {
		speed *= 4
	}
	cam.Position = cam.Position.Add(dir.Mul(speed * dt))
}
