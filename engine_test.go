package vistra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadlessEngineFrame(t *testing.T) {
	factory := &fakeFactory{}
	e := NewEngineBuilder().
		WithProgramFactory(factory).
		WithLogger(NewNopLogger()).
		Build()

	pc := RegisterPointCloud(e.Scene(), "cloud1", testPoints())
	require.NotNil(t, pc)

	require.True(t, e.Frame())

	// the primary pass ran, the pick pass did not
	primary := factory.created[0]
	assert.Equal(t, 1, primary.drawCount)
	pick := factory.created[1]
	assert.Equal(t, 0, pick.drawCount)
}

func TestHeadlessEnginePickPass(t *testing.T) {
	factory := &fakeFactory{}
	e := NewEngineBuilder().
		WithProgramFactory(factory).
		WithLogger(NewNopLogger()).
		Build()

	RegisterPointCloud(e.Scene(), "cloud1", testPoints())

	e.RequestPickPass()
	require.True(t, e.Frame())
	assert.Equal(t, 1, factory.created[1].drawCount)

	// the request is one-shot
	require.True(t, e.Frame())
	assert.Equal(t, 1, factory.created[1].drawCount)
}

func TestEngineFrameAdjustsClipPlanes(t *testing.T) {
	factory := &fakeFactory{}
	e := NewEngineBuilder().
		WithProgramFactory(factory).
		WithLogger(NewNopLogger()).
		Build()

	RegisterPointCloud(e.Scene(), "huge", testPoints())
	e.Camera().ClipFor(500)
	require.True(t, e.Frame())

	// Frame recalibrates clips to the actual scene scale
	assert.NotEqual(t, float32(500*20), e.Camera().FarClip)
	assert.Less(t, e.Camera().NearClip, e.Camera().FarClip)
}

func TestEngineHandleResize(t *testing.T) {
	factory := &fakeFactory{}
	e := NewEngineBuilder().
		WithProgramFactory(factory).
		WithLogger(NewNopLogger()).
		Build()

	require.True(t, e.handleResize(800, 400))
	assert.Equal(t, float32(2), e.Camera().AspectRatio)

	// same size and degenerate sizes are no-ops
	assert.False(t, e.handleResize(800, 400))
	assert.False(t, e.handleResize(0, 400))
	assert.False(t, e.handleResize(800, -1))
	assert.Equal(t, float32(2), e.Camera().AspectRatio)
}
