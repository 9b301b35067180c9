package vistra

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraState holds the view parameters the render pass binds as uniforms:
// the view and projection matrices and the camera basis vectors billboarded
// point impostors orient against.
type CameraState struct {
	Position mgl32.Vec3
	Yaw      float32 // degrees
	Pitch    float32 // degrees

	FovYDeg     float32
	AspectRatio float32
	NearClip    float32
	FarClip     float32
}

func NewCameraState() *CameraState {
	return &CameraState{
		Position:    mgl32.Vec3{0, 0, 5},
		FovYDeg:     65.0,
		AspectRatio: 16.0 / 9.0,
		NearClip:    0.01,
		FarClip:     100.0,
	}
}

// Frame returns the camera basis: look (forward), up and right.
func (c *CameraState) Frame() (look, up, right mgl32.Vec3) {
	yawRad := mgl32.DegToRad(c.Yaw)
	pitchRad := mgl32.DegToRad(c.Pitch)

	look = mgl32.Vec3{
		float32(math.Sin(float64(yawRad)) * math.Cos(float64(pitchRad))),
		float32(math.Sin(float64(pitchRad))),
		float32(-math.Cos(float64(yawRad)) * math.Cos(float64(pitchRad))),
	}.Normalize()

	right = look.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up = right.Cross(look).Normalize()
	return look, up, right
}

// ViewMatrix is the world-to-camera transform for the current position and
// orientation.
func (c *CameraState) ViewMatrix() mgl32.Mat4 {
	look, up, _ := c.Frame()
	return mgl32.LookAtV(c.Position, c.Position.Add(look), up)
}

// ProjMatrix is the camera perspective projection.
func (c *CameraState) ProjMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovYDeg), c.AspectRatio, c.NearClip, c.FarClip)
}

// TranslationSpeed converts a unitless navigation speed into world units
// using the scene length scale, so navigating a millimeter-sized scene
// feels the same as a kilometer-sized one.
func (c *CameraState) TranslationSpeed(speed float32, sceneLengthScale float64) float32 {
	return speed * float32(sceneLengthScale)
}

// ClipFor widens the clip planes to cover a scene of the given length
// scale centered near the origin.
func (c *CameraState) ClipFor(sceneLengthScale float64) {
	c.NearClip = float32(sceneLengthScale) * 0.005
	c.FarClip = float32(sceneLengthScale) * 20.0
}
