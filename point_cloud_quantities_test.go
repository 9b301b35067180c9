package vistra

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuantity(t *testing.T) {
	scene, _, log := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	AddScalarQuantity(pc, "heat", []float64{1, 2, 3}, DataTypeStandard)

	assert.NotNil(t, pc.GetQuantity("heat", true))

	// absent without errorIfAbsent: nil, silent
	assert.Nil(t, pc.GetQuantity("missing", false))
	assert.Empty(t, log.errors)

	// absent with errorIfAbsent: nil, reported, not fatal
	assert.Nil(t, pc.GetQuantity("missing", true))
	assert.Len(t, log.errors, 1)
}

func TestAddQuantityReplacesSameName(t *testing.T) {
	scene, factory, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	first := AddScalarQuantity(pc, "X", []float64{1, 2, 3}, DataTypeStandard)
	scene.Draw()
	firstProgram := factory.last()

	second := AddColorQuantity(pc, "X", []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})

	// one entry under the name, and it is the new quantity
	assert.Same(t, second, pc.GetQuantity("X", true).(*ColorQuantity))
	assert.Len(t, pc.quantities, 1)

	// the replaced quantity's program did not leak
	assert.True(t, firstProgram.released)
	assert.False(t, first.Enabled())
}

func TestDrawingQuantityActivatesOnAdd(t *testing.T) {
	scene, _, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	group := AddScalarQuantity(pc, "colorByGroup", []float64{0, 1, 2}, DataTypeStandard)
	assert.True(t, group.Enabled())
	assert.Equal(t, ElementDrawingQuantity(group), pc.ActiveQuantity())

	height := AddScalarQuantity(pc, "colorByHeight", []float64{0, 0, 1}, DataTypeStandard)
	assert.True(t, height.Enabled())
	assert.False(t, group.Enabled(), "displaced quantity must be disabled")
	assert.Equal(t, ElementDrawingQuantity(height), pc.ActiveQuantity())
}

func TestNonDrawingQuantityNeverActivates(t *testing.T) {
	scene, _, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	vq := AddVectorQuantity(pc, "flow", testPoints(), VectorTypeStandard)
	assert.Nil(t, pc.ActiveQuantity())
	assert.False(t, vq.Enabled())
}

func TestReplacePreservesEnablement(t *testing.T) {
	scene, _, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	// non-drawing: enabled state carries over
	old := AddVectorQuantity(pc, "X", testPoints(), VectorTypeStandard)
	old.SetEnabled(true)
	replacement := AddVectorQuantity(pc, "X", testPoints(), VectorTypeAmbient)
	assert.True(t, replacement.Enabled())

	// replacing an active drawing quantity with a non-drawing one keeps
	// enablement but leaves the primary pass to the structure default
	AddScalarQuantity(pc, "Y", []float64{1, 2, 3}, DataTypeStandard)
	vec := AddVectorQuantity(pc, "Y", testPoints(), VectorTypeStandard)
	assert.True(t, vec.Enabled())
	assert.Nil(t, pc.ActiveQuantity())
}

func TestRemoveActiveQuantity(t *testing.T) {
	scene, factory, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	AddScalarQuantity(pc, "heat", []float64{1, 2, 3}, DataTypeStandard)
	scene.Draw()
	quantityProgram := factory.last()

	pc.RemoveQuantity("heat")

	assert.Nil(t, pc.ActiveQuantity())
	assert.True(t, quantityProgram.released, "quantity-built program must be invalidated")
	assert.Nil(t, pc.GetQuantity("heat", false))

	// the next draw rebuilds the structure default without error
	scene.Draw()
	rebuilt := factory.last()
	assert.Equal(t, "point-cloud-sphere", rebuilt.spec.Name)
	assert.Equal(t, 1, rebuilt.drawCount)
}

func TestRemoveQuantityAbsentIsNoop(t *testing.T) {
	scene, _, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())
	pc.RemoveQuantity("nope")
}

func TestRemoveAllQuantities(t *testing.T) {
	scene, _, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	AddScalarQuantity(pc, "a", []float64{1, 2, 3}, DataTypeStandard)
	AddColorQuantity(pc, "b", []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	AddVectorQuantity(pc, "c", testPoints(), VectorTypeStandard)

	pc.RemoveAllQuantities()

	assert.Empty(t, pc.quantities)
	assert.Nil(t, pc.ActiveQuantity())
}

func TestSetActiveQuantityUnregisteredPanics(t *testing.T) {
	scene, _, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	rogue := &ScalarQuantity{baseQuantity: baseQuantity{name: "rogue", cloud: pc}}
	assert.Panics(t, func() { pc.SetActiveQuantity(rogue) })
}

func TestScalarQuantityRanges(t *testing.T) {
	scene, _, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	std := AddScalarQuantity(pc, "std", []float64{-1, 0, 3}, DataTypeStandard)
	assert.InDelta(t, -1, std.dataRangeLow, 1e-6)
	assert.InDelta(t, 3, std.dataRangeHigh, 1e-6)

	sym := AddScalarQuantity(pc, "sym", []float64{-2, 0, 1}, DataTypeSymmetric)
	assert.InDelta(t, -2, sym.dataRangeLow, 1e-6)
	assert.InDelta(t, 2, sym.dataRangeHigh, 1e-6)

	mag := AddScalarQuantity(pc, "mag", []float64{-2, 0, 1}, DataTypeMagnitude)
	assert.InDelta(t, 0, mag.dataRangeLow, 1e-6)
	assert.InDelta(t, 2, mag.dataRangeHigh, 1e-6)
}

func TestScalarQuantityProgramValues(t *testing.T) {
	scene, factory, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	AddScalarQuantity(pc, "heat", []float64{1, 2, 3}, DataTypeStandard)
	scene.Draw()

	p := factory.last()
	require.Equal(t, "point-cloud-scalar", p.spec.Name)

	vals := p.attributes["a_value"].([]float32)
	assert.Equal(t, []float32{1, 2, 3}, vals)

	assert.Contains(t, p.uniforms, "u_rangeLow")
	assert.Contains(t, p.uniforms, "u_rangeHigh")
	cmap := p.uniforms["u_colormap"].([]mgl32.Vec3)
	assert.Len(t, cmap, colormapTableSize)
}

func TestVectorQuantityDrawsGlyphSegments(t *testing.T) {
	scene, factory, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	vq := AddVectorQuantity(pc, "flow", []mgl32.Vec3{{1, 0, 0}, {0, 2, 0}, {0, 0, 1}}, VectorTypeStandard)

	// disabled: no supplemental pass
	scene.Draw()
	before := len(factory.created)

	vq.SetEnabled(true)
	scene.Draw()
	require.Greater(t, len(factory.created), before)

	glyphs := factory.last()
	assert.Equal(t, "point-cloud-vector", glyphs.spec.Name)
	assert.Equal(t, 1, glyphs.drawCount)

	segments := glyphs.attributes["a_position"].([]mgl32.Vec3)
	require.Len(t, segments, 6)

	// standard scaling: the longest glyph spans lengthMult * scene scale
	longest := float32(0)
	for i := 0; i < len(segments); i += 2 {
		if l := segments[i+1].Sub(segments[i]).Len(); l > longest {
			longest = l
		}
	}
	assert.InDelta(t, vq.lengthMult*float32(scene.LengthScale()), longest, 1e-5)
}

func TestVectorQuantityRescalesWhenSceneGrows(t *testing.T) {
	scene, factory, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	vq := AddVectorQuantity(pc, "flow", []mgl32.Vec3{{1, 0, 0}, {0, 2, 0}, {0, 0, 1}}, VectorTypeStandard)
	vq.SetEnabled(true)
	scene.Draw()
	baked := factory.last()

	// a larger structure changes the scene length scale; the baked glyph
	// geometry is stale and must be rebuilt on the next pass
	RegisterPointCloud(scene, "big", []mgl32.Vec3{{0, 0, 0}, {100, 0, 0}})
	scene.Draw()

	var glyphs *fakeProgram
	for _, p := range factory.live() {
		if p.spec.Name == "point-cloud-vector" {
			glyphs = p
		}
	}
	require.NotNil(t, glyphs)
	require.NotSame(t, baked, glyphs)
	assert.True(t, baked.released)

	longest := float32(0)
	segments := glyphs.attributes["a_position"].([]mgl32.Vec3)
	for i := 0; i < len(segments); i += 2 {
		if l := segments[i+1].Sub(segments[i]).Len(); l > longest {
			longest = l
		}
	}
	assert.InDelta(t, vq.lengthMult*float32(scene.LengthScale()), longest, 1e-4)
}

func TestQuantitySizeMismatchPanics(t *testing.T) {
	scene, _, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	assert.Panics(t, func() { AddScalarQuantity(pc, "bad", []float64{1}, DataTypeStandard) })
	assert.Panics(t, func() { AddColorQuantity(pc, "bad", nil) })
	assert.Panics(t, func() { AddVectorQuantity(pc, "bad", []mgl32.Vec3{{1, 0, 0}}, VectorTypeStandard) })
}
