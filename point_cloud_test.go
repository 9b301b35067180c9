package vistra

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPoints() []mgl32.Vec3 {
	return []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
}

func TestPointCloudConstructionBuildsPrograms(t *testing.T) {
	scene, factory, _ := newTestScene()

	pc := RegisterPointCloud(scene, "cloud1", testPoints())
	require.NotNil(t, pc)

	// default primary program plus pick program
	require.Len(t, factory.created, 2)

	primary := factory.created[0]
	assert.Equal(t, "point-cloud-sphere", primary.spec.Name)
	positions, ok := primary.attributes["a_position"].([]mgl32.Vec3)
	require.True(t, ok)
	assert.Len(t, positions, 3)

	pick := factory.created[1]
	assert.Equal(t, "point-cloud-pick", pick.spec.Name)
	assert.Contains(t, pick.attributes, "a_color")
}

func TestDrawBindsUniformsAndFansOut(t *testing.T) {
	scene, factory, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	scene.Draw()

	primary := factory.created[0]
	assert.Equal(t, 1, primary.drawCount)
	for _, name := range []string{"u_modelView", "u_projMatrix", "u_camZ", "u_camUp", "u_camRight", "u_pointRadius", "u_baseColor"} {
		assert.Contains(t, primary.uniforms, name, "uniform %s not bound", name)
	}

	// radius uniform is relative radius scaled by the scene length scale
	radius := primary.uniforms["u_pointRadius"].(float32)
	assert.InDelta(t, pc.PointRadius()*float32(scene.LengthScale()), radius, 1e-6)
}

func TestDrawSkipsDisabledStructure(t *testing.T) {
	scene, factory, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	pc.SetEnabled(false)
	scene.Draw()
	scene.DrawPick()

	assert.Equal(t, 0, factory.created[0].drawCount)
	assert.Equal(t, 0, factory.created[1].drawCount)
}

func TestDrawPickSkipsLightingUniforms(t *testing.T) {
	scene, factory, _ := newTestScene()
	RegisterPointCloud(scene, "cloud1", testPoints())

	scene.DrawPick()

	pick := factory.created[1]
	assert.Equal(t, 1, pick.drawCount)
	assert.Contains(t, pick.uniforms, "u_modelView")
	assert.NotContains(t, pick.uniforms, "u_baseColor")
}

func TestBoundingBoxAndLengthScale(t *testing.T) {
	scene, _, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}})

	min, max := pc.BoundingBox()
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, min)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, max)

	// center (1,0,0), max distance 1, doubled
	assert.InDelta(t, 2.0, pc.LengthScale(), 1e-6)
}

func TestBoundingBoxFollowsTransform(t *testing.T) {
	scene, _, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}})

	pc.SetObjectTransform(mgl32.Translate3D(10, 0, 0))

	min, max := pc.BoundingBox()
	assert.InDelta(t, 10, min.X(), 1e-6)
	assert.InDelta(t, 12, max.X(), 1e-6)

	// translation must not change the characteristic size
	assert.InDelta(t, 2.0, pc.LengthScale(), 1e-6)

	pc.SetObjectTransform(mgl32.Scale3D(3, 3, 3))
	assert.InDelta(t, 6.0, pc.LengthScale(), 1e-6)
}

func TestDrawRebuildsAfterInvalidation(t *testing.T) {
	scene, factory, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())

	pc.invalidateProgram()
	assert.True(t, factory.created[0].released)

	scene.Draw()

	// a fresh default program was built and drawn
	rebuilt := factory.last()
	assert.Equal(t, "point-cloud-sphere", rebuilt.spec.Name)
	assert.Equal(t, 1, rebuilt.drawCount)
}

func TestReleaseFreesAllPrograms(t *testing.T) {
	scene, factory, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", testPoints())
	AddScalarQuantity(pc, "heat", []float64{1, 2, 3}, DataTypeStandard)
	scene.Draw()

	scene.RemoveStructure(PointCloudTypeName, "cloud1")

	assert.Empty(t, factory.live(), "all GPU programs should be released")
	assert.Nil(t, GetPointCloud(scene, "cloud1"))
}

func TestWritePointsToFile(t *testing.T) {
	scene, _, _ := newTestScene()
	pc := RegisterPointCloud(scene, "cloud1", []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}})

	path := filepath.Join(t.TempDir(), "points.txt")
	require.NoError(t, pc.WritePointsToFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "#vistra point cloud cloud1", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "#displayradius "))
	assert.Equal(t, "0 0 0", lines[2])
	assert.Equal(t, "2 0 0", lines[3])
}

func TestDrawPickUIListsQuantityInfo(t *testing.T) {
	f := &fakeFactory{}
	ui := NewTextUi(stubMeasurer{})
	scene := NewScene(f, NewCameraState(), ui, &captureLogger{})
	pc := RegisterPointCloud(scene, "cloud1", testPoints())
	AddScalarQuantity(pc, "height", []float64{0.5, 1.5, 2.5}, DataTypeStandard)
	AddVectorQuantity(pc, "flow", []mgl32.Vec3{{1, 0, 0}, {0, 2, 0}, {0, 0, 3}}, VectorTypeStandard)

	ui.BeginFrame(0, 0, false)
	pc.DrawPickUI(1)

	var lines []string
	for _, it := range ui.Items() {
		lines = append(lines, it.Text)
	}
	assert.Contains(t, lines, "#1")
	assert.Contains(t, lines, "<1, 0, 0>")
	assert.Contains(t, lines, "height")
	assert.Contains(t, lines, "1.5")
	assert.Contains(t, lines, "flow")
	assert.Contains(t, lines, "<0, 2, 0> |2|")
}
