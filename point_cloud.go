package vistra

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// PointCloudTypeName is the registry type key for point cloud structures.
const PointCloudTypeName = "Point Cloud"

// PointCloud is a structure over an ordered set of 3D positions. The local
// index of a point is its stable identity for the cloud's lifetime.
//
// The cloud owns every quantity in its registry and the GPU programs for
// its primary and pick passes. The primary program slot is lazily built and
// explicitly invalidated: any change of the active drawing quantity drops
// it, and the next Draw rebuilds it through whichever path now owns the
// pass.
type PointCloud struct {
	name   string
	scene  *Scene
	points []mgl32.Vec3

	enabled         bool
	objectTransform mgl32.Mat4

	quantities     map[string]PointCloudQuantity
	activeQuantity ElementDrawingQuantity

	program     Program
	pickProgram Program

	pickStart    uint64
	pickReserved bool

	initialBaseColor mgl32.Vec3
	pointColor       mgl32.Vec3
	pointRadius      float32 // relative to the scene length scale
}

// NewPointCloud builds a point cloud bound to scene. Construction reserves
// the cloud's pick index range and builds the default primary program;
// the caller still has to register the cloud before it takes part in the
// frame loop.
func NewPointCloud(scene *Scene, name string, points []mgl32.Vec3) *PointCloud {
	pc := &PointCloud{
		name:            name,
		scene:           scene,
		points:          points,
		enabled:         true,
		objectTransform: mgl32.Ident4(),
		quantities:      make(map[string]PointCloudQuantity),
		pointRadius:     0.005,
	}
	pc.initialBaseColor = scene.nextStructureColor()
	pc.pointColor = pc.initialBaseColor

	pc.Prepare()
	pc.PreparePick()
	return pc
}

// RegisterPointCloud constructs a point cloud and registers it with the
// scene. On a name conflict the new cloud is released and nil is returned;
// nothing about the previously registered structure changes.
func RegisterPointCloud(scene *Scene, name string, points []mgl32.Vec3) *PointCloud {
	pc := NewPointCloud(scene, name, points)
	if !scene.RegisterStructure(pc) {
		pc.Release()
		return nil
	}
	return pc
}

// GetPointCloud looks up a registered point cloud by name.
func GetPointCloud(scene *Scene, name string) *PointCloud {
	st := scene.GetStructure(PointCloudTypeName, name)
	if st == nil {
		return nil
	}
	return st.(*PointCloud)
}

func (pc *PointCloud) Name() string     { return pc.name }
func (pc *PointCloud) TypeName() string { return PointCloudTypeName }

func (pc *PointCloud) Enabled() bool           { return pc.enabled }
func (pc *PointCloud) SetEnabled(enabled bool) { pc.enabled = enabled }

func (pc *PointCloud) Points() []mgl32.Vec3 { return pc.points }
func (pc *PointCloud) NPoints() int         { return len(pc.points) }

func (pc *PointCloud) Scene() *Scene { return pc.scene }

func (pc *PointCloud) BaseColor() mgl32.Vec3         { return pc.pointColor }
func (pc *PointCloud) SetBaseColor(c mgl32.Vec3)     { pc.pointColor = c }
func (pc *PointCloud) PointRadius() float32          { return pc.pointRadius }
func (pc *PointCloud) SetPointRadius(r float32)      { pc.pointRadius = r }
func (pc *PointCloud) ObjectTransform() mgl32.Mat4   { return pc.objectTransform }
func (pc *PointCloud) SetObjectTransform(m mgl32.Mat4) {
	pc.objectTransform = m
}

// setPointCloudUniforms binds the frame-varying uniforms shared by the
// primary and pick programs. Shading-only uniforms are skipped for the
// pick pass so pick colors stay exact.
func (pc *PointCloud) setPointCloudUniforms(p Program, withLight bool) {
	cam := pc.scene.Camera()

	modelView := cam.ViewMatrix().Mul4(pc.objectTransform)
	p.SetUniform("u_modelView", modelView)
	p.SetUniform("u_projMatrix", cam.ProjMatrix())

	look, up, right := cam.Frame()
	p.SetUniform("u_camZ", look)
	p.SetUniform("u_camUp", up)
	p.SetUniform("u_camRight", right)

	p.SetUniform("u_pointRadius", pc.pointRadius*float32(pc.scene.LengthScale()))

	if withLight {
		p.SetUniform("u_baseColor", pc.pointColor)
	}
}

// Draw runs the cloud's primary pass, then fans out to every quantity for
// supplemental geometry. The primary program is rebuilt here if it was
// invalidated since the last frame.
func (pc *PointCloud) Draw() {
	if !pc.enabled {
		return
	}

	if pc.program == nil {
		pc.Prepare()
	}

	pc.setPointCloudUniforms(pc.program, true)
	if pc.activeQuantity != nil {
		// The program came from the active quantity; let it overlay its
		// per-frame uniforms after the structure defaults.
		pc.activeQuantity.SetProgramValues(pc.program)
	}

	pc.program.Draw()

	pc.forEachQuantity(func(q PointCloudQuantity) {
		q.Draw()
	})
}

// DrawPick renders the pick pass: every point carries its encoded global
// pick index as a color attribute.
func (pc *PointCloud) DrawPick() {
	if !pc.enabled {
		return
	}

	if pc.pickProgram == nil {
		pc.PreparePick()
	}

	pc.setPointCloudUniforms(pc.pickProgram, false)
	pc.pickProgram.Draw()
}

// Prepare builds the primary program. With no active quantity the cloud
// draws flat-shaded spheres; otherwise program construction is delegated
// to the active quantity, which yields a ready pipeline over the same
// point set.
func (pc *PointCloud) Prepare() {
	if pc.activeQuantity == nil {
		pc.program = pc.scene.Factory().NewProgram(sphereProgramSpec())
	} else {
		pc.program = pc.activeQuantity.CreateProgram()
	}

	pc.program.SetAttribute("a_position", pc.points)
}

// PreparePick reserves the cloud's slice of the global pick index space
// (once; ranges are stable for the structure's lifetime) and builds the
// pick program with per-point encoded index colors.
func (pc *PointCloud) PreparePick() {
	if !pc.pickReserved {
		pc.pickStart = pc.scene.Picker().RequestRange(pc, uint64(len(pc.points)))
		pc.pickReserved = true
	}

	if pc.pickProgram != nil {
		pc.pickProgram.Release()
	}
	pc.pickProgram = pc.scene.Factory().NewProgram(spherePickProgramSpec())

	pickColors := make([]mgl32.Vec3, len(pc.points))
	for i := range pc.points {
		pickColors[i] = IndexToColor(pc.pickStart + uint64(i))
	}

	pc.pickProgram.SetAttribute("a_position", pc.points)
	pc.pickProgram.SetAttribute("a_color", pickColors)
}

// invalidateProgram drops the primary program so the next Draw rebuilds it.
func (pc *PointCloud) invalidateProgram() {
	if pc.program != nil {
		pc.program.Release()
		pc.program = nil
	}
}

// === Quantities

// forEachQuantity visits quantities in name order.
func (pc *PointCloud) forEachQuantity(f func(PointCloudQuantity)) {
	names := make([]string, 0, len(pc.quantities))
	for n := range pc.quantities {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		f(pc.quantities[n])
	}
}

// AddQuantity inserts q into the cloud's registry, fully replacing any
// same-named quantity first. If the replaced quantity was enabled the new
// one is enabled too. An element-drawing quantity always takes over the
// primary pass on insertion.
func (pc *PointCloud) AddQuantity(q PointCloudQuantity) {
	wasEnabled := false
	if old, ok := pc.quantities[q.Name()]; ok {
		wasEnabled = old.Enabled()
		pc.RemoveQuantity(old.Name())
	}

	pc.quantities[q.Name()] = q

	if wasEnabled {
		q.SetEnabled(true)
	}
	if dq, ok := q.(ElementDrawingQuantity); ok {
		pc.SetActiveQuantity(dq)
	}
}

// GetQuantity returns the named quantity, or nil if absent. With
// errorIfAbsent set a missing name is reported on the error channel;
// the lookup still just returns nil.
func (pc *PointCloud) GetQuantity(name string, errorIfAbsent bool) PointCloudQuantity {
	q, ok := pc.quantities[name]
	if !ok {
		if errorIfAbsent {
			pc.scene.Logger().Errorf("no quantity named %q registered on %s %q", name, pc.TypeName(), pc.name)
		}
		return nil
	}
	return q
}

// RemoveQuantity destroys the named quantity. If it currently owns the
// primary pass, activation is cleared (and the primary program
// invalidated) before the quantity is released, so nothing dangles.
func (pc *PointCloud) RemoveQuantity(name string) {
	q, ok := pc.quantities[name]
	if !ok {
		return
	}

	if dq, isDrawing := q.(ElementDrawingQuantity); isDrawing && pc.activeQuantity == dq {
		pc.ClearActiveQuantity()
	}

	delete(pc.quantities, name)
	q.Release()
}

// RemoveAllQuantities empties the quantity registry.
func (pc *PointCloud) RemoveAllQuantities() {
	for len(pc.quantities) > 0 {
		for name := range pc.quantities {
			pc.RemoveQuantity(name)
			break
		}
	}
}

// SetActiveQuantity hands the primary pass to q. q must already be in the
// quantity registry; AddQuantity guarantees that ordering.
func (pc *PointCloud) SetActiveQuantity(q ElementDrawingQuantity) {
	if registered, ok := pc.quantities[q.Name()]; !ok || registered != PointCloudQuantity(q) {
		panic(fmt.Sprintf("quantity %q is not registered on point cloud %q", q.Name(), pc.name))
	}

	pc.ClearActiveQuantity()
	pc.activeQuantity = q
	q.SetEnabled(true)
}

// ClearActiveQuantity releases the primary pass back to the structure's
// default path. The cached program was built by the outgoing quantity and
// is invalid the moment activation changes, so it is dropped here.
func (pc *PointCloud) ClearActiveQuantity() {
	pc.invalidateProgram()
	if pc.activeQuantity != nil {
		pc.activeQuantity.SetEnabled(false)
		pc.activeQuantity = nil
	}
}

// ActiveQuantity returns the element-drawing quantity currently owning the
// primary pass, or nil.
func (pc *PointCloud) ActiveQuantity() ElementDrawingQuantity {
	return pc.activeQuantity
}

// === Derived geometry

// BoundingBox folds the transformed positions with componentwise min/max.
// Recomputed on every call so it reflects the current object transform.
func (pc *PointCloud) BoundingBox() (mgl32.Vec3, mgl32.Vec3) {
	inf := float32(mgl32.InfPos)
	min := mgl32.Vec3{inf, inf, inf}
	max := mgl32.Vec3{-inf, -inf, -inf}

	for _, rawP := range pc.points {
		p := pc.objectTransform.Mul4x1(rawP.Vec4(1)).Vec3()
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}

	return min, max
}

// LengthScale measures the cloud as twice the maximum distance from the
// bounding box center to any transformed point.
func (pc *PointCloud) LengthScale() float64 {
	min, max := pc.BoundingBox()
	center := min.Add(max).Mul(0.5)

	longest := float32(0)
	for _, rawP := range pc.points {
		p := pc.objectTransform.Mul4x1(rawP.Vec4(1)).Vec3()
		if d := p.Sub(center).Len(); d > longest {
			longest = d
		}
	}

	return 2 * float64(longest)
}

// Release frees the cloud's GPU programs and destroys every quantity. The
// pick index range stays reserved; the allocator never reuses it.
func (pc *PointCloud) Release() {
	pc.RemoveAllQuantities()
	pc.invalidateProgram()
	if pc.pickProgram != nil {
		pc.pickProgram.Release()
		pc.pickProgram = nil
	}
}

// === UI

// DrawUI renders the cloud's panel: stats, enable toggle, base color,
// options popup, radius slider, then each quantity's own controls.
func (pc *PointCloud) DrawUI() {
	ui := pc.scene.Ui()

	ui.PushID(pc.name)
	if ui.TreeNode(pc.name) {
		ui.Text(fmt.Sprintf("# points: %d", len(pc.points)))

		pc.enabled = ui.Checkbox("Enabled", pc.enabled)
		pc.pointColor = ui.ColorEdit3("Point color", pc.pointColor)

		if ui.Button("Options") {
			ui.OpenPopup("OptionsPopup")
		}
		if ui.BeginPopup("OptionsPopup") {
			if ui.MenuItem("Clear quantities") {
				pc.RemoveAllQuantities()
			}
			if ui.MenuItem("Write points to file") {
				if err := pc.WritePointsToFile(""); err != nil {
					pc.scene.Logger().Errorf("writing point cloud %q: %v", pc.name, err)
				}
			}
			ui.EndPopup()
		}

		pc.pointRadius = ui.SliderFloat("Point radius", pc.pointRadius, 0.0, 0.1)

		pc.forEachQuantity(func(q PointCloudQuantity) {
			q.DrawUI()
		})

		ui.TreePop()
	}
	ui.PopID()
}

// DrawPickUI shows the picked point's identity and coordinates, then each
// quantity's info contribution for that point.
func (pc *PointCloud) DrawPickUI(localPickID int) {
	ui := pc.scene.Ui()

	ui.Text(fmt.Sprintf("#%d", localPickID))
	p := pc.points[localPickID]
	ui.Text(fmt.Sprintf("<%g, %g, %g>", p.X(), p.Y(), p.Z()))

	ui.Spacing()
	ui.Indent(20)
	ui.Columns(2)
	pc.forEachQuantity(func(q PointCloudQuantity) {
		q.BuildInfoGUI(localPickID)
	})
	ui.Indent(-20)
}

// DrawSharedStructureUI is a reserved extension point for controls shared
// across all point clouds.
func (pc *PointCloud) DrawSharedStructureUI() {}

// === Export

// WritePointsToFile writes the cloud as text: a header naming the cloud, a
// header with the effective display radius in world units, then one point
// per line. An empty filename prompts on stdin.
func (pc *PointCloud) WritePointsToFile(filename string) error {
	if filename == "" {
		filename = promptForFilename()
		if filename == "" {
			return nil
		}
	}

	pc.scene.Logger().Infof("writing point cloud %q to file %s", pc.name, filename)

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "#vistra point cloud %s\n", pc.name)
	fmt.Fprintf(w, "#displayradius %g\n", pc.pointRadius*float32(pc.scene.LengthScale()))

	for _, p := range pc.points {
		fmt.Fprintf(w, "%g %g %g\n", p.X(), p.Y(), p.Z())
	}

	return w.Flush()
}

func promptForFilename() string {
	fmt.Print("filename: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}
