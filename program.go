package vistra

// DrawMode selects the primitive topology of a Program.
type DrawMode int

const (
	DrawModePoints DrawMode = iota
	DrawModeLines
	DrawModeTriangles
)

// RenderTarget selects which kind of attachment a Program renders into.
// Pick programs write exact index-encoding colors and need a linear
// high-precision target; the swapchain format would quantize them.
type RenderTarget int

const (
	TargetSurface RenderTarget = iota
	TargetPick
)

// AttributeFormat describes the per-element layout of one vertex attribute.
type AttributeFormat int

const (
	AttributeFloat32 AttributeFormat = iota
	AttributeFloat32x2
	AttributeFloat32x3
	AttributeFloat32x4
)

func attributeFormatSize(f AttributeFormat) uint64 {
	switch f {
	case AttributeFloat32:
		return 4
	case AttributeFloat32x2:
		return 8
	case AttributeFloat32x3:
		return 12
	case AttributeFloat32x4:
		return 16
	}
	panic("unknown attribute format")
}

// AttributeSpec declares one named vertex attribute of a Program and the
// shader location it binds to.
type AttributeSpec struct {
	Name     string
	Location uint32
	Format   AttributeFormat
}

// UniformSpec declares one named uniform of a Program and the binding
// index it occupies in bind group 0.
type UniformSpec struct {
	Name    string
	Binding uint32
}

// ProgramSpec is everything a ProgramFactory needs to compile a draw
// pipeline. Shader is an opaque WGSL listing.
type ProgramSpec struct {
	Name       string
	Shader     string
	Mode       DrawMode
	Target     RenderTarget
	Attributes []AttributeSpec
	Uniforms   []UniformSpec
}

// Program is a compiled draw pipeline together with its attribute buffers
// and uniform bindings. Instances are created through a ProgramFactory and
// must be released exactly once.
//
// SetAttribute accepts a slice whose element layout matches the declared
// AttributeFormat ([]float32, []mgl32.Vec2, []mgl32.Vec3, []mgl32.Vec4).
// The element count of the first attribute set defines the draw count.
type Program interface {
	SetAttribute(name string, data any)
	SetUniform(name string, value any)
	Draw()
	Release()
}

// ProgramFactory compiles ProgramSpecs into Programs. The production
// implementation targets wgpu; tests substitute a recording fake.
type ProgramFactory interface {
	NewProgram(spec ProgramSpec) Program
}
