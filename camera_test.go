package vistra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCameraFrameOrthonormal(t *testing.T) {
	c := NewCameraState()
	c.Yaw = 37
	c.Pitch = -12

	look, up, right := c.Frame()

	assert.InDelta(t, 1, look.Len(), 1e-5)
	assert.InDelta(t, 1, up.Len(), 1e-5)
	assert.InDelta(t, 1, right.Len(), 1e-5)

	assert.InDelta(t, 0, look.Dot(up), 1e-5)
	assert.InDelta(t, 0, look.Dot(right), 1e-5)
	assert.InDelta(t, 0, up.Dot(right), 1e-5)
}

func TestCameraFrameDefaultLooksDownNegZ(t *testing.T) {
	c := NewCameraState()
	look, up, right := c.Frame()

	assert.InDelta(t, -1, look.Z(), 1e-5)
	assert.InDelta(t, 1, up.Y(), 1e-5)
	assert.InDelta(t, 1, right.X(), 1e-5)
}

func TestTranslationSpeedScalesWithScene(t *testing.T) {
	c := NewCameraState()
	assert.InDelta(t, 0.2, c.TranslationSpeed(0.1, 2.0), 1e-6)
	assert.InDelta(t, 100, c.TranslationSpeed(0.1, 1000.0), 1e-4)
}

func TestClipForTracksLengthScale(t *testing.T) {
	c := NewCameraState()
	c.ClipFor(10)
	assert.InDelta(t, 0.05, c.NearClip, 1e-6)
	assert.InDelta(t, 200, c.FarClip, 1e-4)
	assert.Less(t, c.NearClip, c.FarClip)
}
