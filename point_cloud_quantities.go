package vistra

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PointCloudQuantity is a named data layer attached to exactly one point
// cloud. A quantity may contribute supplemental geometry from its own Draw
// hook, UI controls, and per-point info for the pick panel. Quantities are
// owned by their cloud's registry and released exactly once, on removal,
// replacement or structure teardown.
type PointCloudQuantity interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)

	// Draw renders supplemental geometry. Quantities that only color the
	// points themselves do nothing here; their drawing happens inside the
	// cloud's primary pass.
	Draw()
	DrawUI()
	BuildInfoGUI(pointInd int)
	Release()
}

// ElementDrawingQuantity is the refinement eligible to own the cloud's
// primary pass: it can build a complete draw program over the point set
// and overlay quantity-specific uniforms on it each frame.
type ElementDrawingQuantity interface {
	PointCloudQuantity

	// CreateProgram yields a ready-to-draw program; the owning cloud binds
	// positions and spatial uniforms, the quantity everything else.
	CreateProgram() Program
	SetProgramValues(p Program)
}

// baseQuantity carries the name, the non-owning back-reference to the
// owning cloud, and the enabled flag every quantity kind shares.
type baseQuantity struct {
	name    string
	cloud   *PointCloud
	enabled bool
}

func (q *baseQuantity) Name() string             { return q.name }
func (q *baseQuantity) Enabled() bool            { return q.enabled }
func (q *baseQuantity) SetEnabled(enabled bool)  { q.enabled = enabled }
func (q *baseQuantity) Draw()                    {}
func (q *baseQuantity) BuildInfoGUI(pointInd int) {}
func (q *baseQuantity) Release()                 {}

// DataType tells a scalar quantity how to map raw values onto its
// colormap range.
type DataType int

const (
	// DataTypeStandard spans [min, max] of the data.
	DataTypeStandard DataType = iota
	// DataTypeSymmetric spans [-m, m] for m the largest magnitude, on a
	// diverging colormap.
	DataTypeSymmetric
	// DataTypeMagnitude spans [0, m].
	DataTypeMagnitude
)

// === Scalar

// ScalarQuantity colors the cloud's points through a colormap. It is
// element-drawing: enabling it takes over the primary pass.
type ScalarQuantity struct {
	baseQuantity

	values   []float64
	dataType DataType
	cmap     Colormap

	dataRangeLow  float32
	dataRangeHigh float32
	vizRangeLow   float32
	vizRangeHigh  float32
}

// AddScalarQuantity attaches one scalar value per point to pc. len(values)
// must match the point count.
func AddScalarQuantity(pc *PointCloud, name string, values []float64, dataType DataType) *ScalarQuantity {
	if len(values) != pc.NPoints() {
		panic(fmt.Sprintf("scalar quantity %q has %d values for %d points", name, len(values), pc.NPoints()))
	}

	q := &ScalarQuantity{
		baseQuantity: baseQuantity{name: name, cloud: pc},
		values:       values,
		dataType:     dataType,
	}

	low, high := math.Inf(1), math.Inf(-1)
	maxAbs := 0.0
	for _, v := range values {
		low = math.Min(low, v)
		high = math.Max(high, v)
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}

	switch dataType {
	case DataTypeSymmetric:
		q.dataRangeLow, q.dataRangeHigh = float32(-maxAbs), float32(maxAbs)
		q.cmap = ColormapCoolwarm
	case DataTypeMagnitude:
		q.dataRangeLow, q.dataRangeHigh = 0, float32(maxAbs)
		q.cmap = ColormapViridis
	default:
		q.dataRangeLow, q.dataRangeHigh = float32(low), float32(high)
		q.cmap = ColormapViridis
	}
	q.vizRangeLow, q.vizRangeHigh = q.dataRangeLow, q.dataRangeHigh

	pc.AddQuantity(q)
	return q
}

func (q *ScalarQuantity) CreateProgram() Program {
	p := q.cloud.Scene().Factory().NewProgram(sphereScalarProgramSpec())

	vals := make([]float32, len(q.values))
	for i, v := range q.values {
		vals[i] = float32(v)
	}
	p.SetAttribute("a_value", vals)
	return p
}

func (q *ScalarQuantity) SetProgramValues(p Program) {
	p.SetUniform("u_rangeLow", q.vizRangeLow)
	p.SetUniform("u_rangeHigh", q.vizRangeHigh)
	p.SetUniform("u_colormap", q.cmap.Resample(colormapTableSize))
}

func (q *ScalarQuantity) DrawUI() {
	ui := q.cloud.Scene().Ui()
	ui.PushID(q.name)

	enabledNow := ui.Checkbox(q.name, q.enabled)
	if enabledNow != q.enabled {
		if enabledNow {
			q.cloud.SetActiveQuantity(q)
		} else if q.cloud.ActiveQuantity() == ElementDrawingQuantity(q) {
			q.cloud.ClearActiveQuantity()
		}
	}

	q.vizRangeLow = ui.SliderFloat("Low", q.vizRangeLow, q.dataRangeLow, q.vizRangeHigh)
	q.vizRangeHigh = ui.SliderFloat("High", q.vizRangeHigh, q.vizRangeLow, q.dataRangeHigh)

	ui.PopID()
}

func (q *ScalarQuantity) BuildInfoGUI(pointInd int) {
	ui := q.cloud.Scene().Ui()
	ui.Text(q.name)
	ui.Text(fmt.Sprintf("%g", q.values[pointInd]))
}

// === Color

// ColorQuantity colors points with one RGB value per point.
type ColorQuantity struct {
	baseQuantity

	values []mgl32.Vec3
}

// AddColorQuantity attaches one color per point to pc.
func AddColorQuantity(pc *PointCloud, name string, values []mgl32.Vec3) *ColorQuantity {
	if len(values) != pc.NPoints() {
		panic(fmt.Sprintf("color quantity %q has %d values for %d points", name, len(values), pc.NPoints()))
	}

	q := &ColorQuantity{
		baseQuantity: baseQuantity{name: name, cloud: pc},
		values:       values,
	}
	pc.AddQuantity(q)
	return q
}

func (q *ColorQuantity) CreateProgram() Program {
	p := q.cloud.Scene().Factory().NewProgram(sphereColorProgramSpec())
	p.SetAttribute("a_color", q.values)
	return p
}

// SetProgramValues has nothing to overlay; colors live in the attribute
// buffer.
func (q *ColorQuantity) SetProgramValues(p Program) {}

func (q *ColorQuantity) DrawUI() {
	ui := q.cloud.Scene().Ui()
	ui.PushID(q.name)

	enabledNow := ui.Checkbox(q.name, q.enabled)
	if enabledNow != q.enabled {
		if enabledNow {
			q.cloud.SetActiveQuantity(q)
		} else if q.cloud.ActiveQuantity() == ElementDrawingQuantity(q) {
			q.cloud.ClearActiveQuantity()
		}
	}

	ui.PopID()
}

func (q *ColorQuantity) BuildInfoGUI(pointInd int) {
	ui := q.cloud.Scene().Ui()
	c := q.values[pointInd]
	ui.Text(q.name)
	ui.Text(fmt.Sprintf("<%.3f, %.3f, %.3f>", c.X(), c.Y(), c.Z()))
}

// === Vector

// VectorType tells a vector quantity how to scale its glyphs.
type VectorType int

const (
	// VectorTypeStandard normalizes glyph lengths against the scene length
	// scale, with the longest vector drawn at the length multiplier.
	VectorTypeStandard VectorType = iota
	// VectorTypeAmbient draws vectors at their world-space length, for
	// data like displacements that already live in scene units.
	VectorTypeAmbient
)

// VectorQuantity draws one glyph per point from its own supplemental pass.
// It never competes for the primary program.
type VectorQuantity struct {
	baseQuantity

	vectors    []mgl32.Vec3
	vectorType VectorType
	longest    float32

	lengthMult float32 // relative to the scene length scale
	radiusMult float32
	color      mgl32.Vec3

	program        Program
	preparedFactor float32
}

// AddVectorQuantity attaches one vector per point to pc.
func AddVectorQuantity(pc *PointCloud, name string, vectors []mgl32.Vec3, vectorType VectorType) *VectorQuantity {
	if len(vectors) != pc.NPoints() {
		panic(fmt.Sprintf("vector quantity %q has %d vectors for %d points", name, len(vectors), pc.NPoints()))
	}

	longest := float32(0)
	for _, v := range vectors {
		if l := v.Len(); l > longest {
			longest = l
		}
	}

	q := &VectorQuantity{
		baseQuantity: baseQuantity{name: name, cloud: pc},
		vectors:      vectors,
		vectorType:   vectorType,
		longest:      longest,
		lengthMult:   0.02,
		radiusMult:   0.0025,
		color:        pc.Scene().nextStructureColor(),
	}
	pc.AddQuantity(q)
	return q
}

// mapFactor is the world-units-per-data-unit scaling applied to glyphs.
// It depends on the scene length scale, so it can change after the glyph
// geometry was baked; Draw compares it against the baked value.
func (q *VectorQuantity) mapFactor() float32 {
	if q.vectorType == VectorTypeAmbient || q.longest == 0 {
		return 1
	}
	return q.lengthMult * float32(q.cloud.Scene().LengthScale()) / q.longest
}

// mappedVectors returns glyph endpoint offsets in world units.
func (q *VectorQuantity) mappedVectors() []mgl32.Vec3 {
	factor := q.mapFactor()
	if factor == 1 {
		return q.vectors
	}

	mapped := make([]mgl32.Vec3, len(q.vectors))
	for i, v := range q.vectors {
		mapped[i] = v.Mul(factor)
	}
	return mapped
}

func (q *VectorQuantity) prepare() {
	q.program = q.cloud.Scene().Factory().NewProgram(vectorProgramSpec())
	q.preparedFactor = q.mapFactor()

	mapped := q.mappedVectors()
	segments := make([]mgl32.Vec3, 0, 2*len(q.vectors))
	for i, p := range q.cloud.Points() {
		segments = append(segments, p, p.Add(mapped[i]))
	}
	q.program.SetAttribute("a_position", segments)
}

// Draw renders the glyph pass. Supplemental and additive: it runs after
// the cloud's primary pass regardless of which quantity owns that pass.
func (q *VectorQuantity) Draw() {
	if !q.enabled {
		return
	}

	if q.program != nil && q.mapFactor() != q.preparedFactor {
		q.invalidate()
	}
	if q.program == nil {
		q.prepare()
	}

	cam := q.cloud.Scene().Camera()
	q.program.SetUniform("u_modelView", cam.ViewMatrix().Mul4(q.cloud.ObjectTransform()))
	q.program.SetUniform("u_projMatrix", cam.ProjMatrix())
	q.program.SetUniform("u_color", q.color)
	q.program.SetUniform("u_radius", q.radiusMult*float32(q.cloud.Scene().LengthScale()))

	q.program.Draw()
}

func (q *VectorQuantity) invalidate() {
	if q.program != nil {
		q.program.Release()
		q.program = nil
	}
}

func (q *VectorQuantity) DrawUI() {
	ui := q.cloud.Scene().Ui()
	ui.PushID(q.name)

	q.enabled = ui.Checkbox(q.name, q.enabled)
	q.color = ui.ColorEdit3("Color", q.color)

	newLength := ui.SliderFloat("Length", q.lengthMult, 0.0, 0.1)
	if newLength != q.lengthMult {
		q.lengthMult = newLength
		q.invalidate()
	}
	q.radiusMult = ui.SliderFloat("Radius", q.radiusMult, 0.0, 0.02)

	ui.PopID()
}

func (q *VectorQuantity) BuildInfoGUI(pointInd int) {
	ui := q.cloud.Scene().Ui()
	v := q.vectors[pointInd]
	ui.Text(q.name)
	ui.Text(fmt.Sprintf("<%g, %g, %g> |%g|", v.X(), v.Y(), v.Z(), v.Len()))
}

func (q *VectorQuantity) Release() {
	q.invalidate()
}
