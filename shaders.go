package vistra

// WGSL listings for the built-in point cloud pipelines. Points render as
// camera-facing sphere impostors: each point is expanded to a quad in the
// vertex stage and shaded (or not, for picking) in the fragment stage.
// The listings are opaque to the rest of the core; only the attribute and
// uniform names are contract.

const sphereImpostorCommon = `
@group(0) @binding(0) var<uniform> u_modelView : mat4x4<f32>;
@group(0) @binding(1) var<uniform> u_projMatrix : mat4x4<f32>;
@group(0) @binding(2) var<uniform> u_camZ : vec3<f32>;
@group(0) @binding(3) var<uniform> u_camUp : vec3<f32>;
@group(0) @binding(4) var<uniform> u_camRight : vec3<f32>;
@group(0) @binding(5) var<uniform> u_pointRadius : f32;

fn quadCorner(vi : u32) -> vec2<f32> {
    var corners = array<vec2<f32>, 6>(
        vec2<f32>(-1.0, -1.0), vec2<f32>(1.0, -1.0), vec2<f32>(1.0, 1.0),
        vec2<f32>(-1.0, -1.0), vec2<f32>(1.0, 1.0), vec2<f32>(-1.0, 1.0),
    );
    return corners[vi];
}

fn billboard(center : vec3<f32>, corner : vec2<f32>) -> vec4<f32> {
    let world = center + u_pointRadius * (corner.x * u_camRight + corner.y * u_camUp);
    return u_projMatrix * u_modelView * vec4<f32>(world, 1.0);
}

fn sphereShade(corner : vec2<f32>, base : vec3<f32>) -> vec4<f32> {
    let r2 = dot(corner, corner);
    if (r2 > 1.0) {
        discard;
    }
    let n = vec3<f32>(corner, sqrt(1.0 - r2));
    let light = clamp(0.25 + 0.75 * n.z, 0.0, 1.0);
    return vec4<f32>(base * light, 1.0);
}
`

const sphereShader = sphereImpostorCommon + `
@group(0) @binding(6) var<uniform> u_baseColor : vec3<f32>;

struct VsOut {
    @builtin(position) pos : vec4<f32>,
    @location(0) corner : vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) vi : u32, @location(0) a_position : vec3<f32>) -> VsOut {
    var out : VsOut;
    out.corner = quadCorner(vi);
    out.pos = billboard(a_position, out.corner);
    return out;
}

@fragment
fn fs_main(in : VsOut) -> @location(0) vec4<f32> {
    return sphereShade(in.corner, u_baseColor);
}
`

const spherePickShader = sphereImpostorCommon + `
struct VsOut {
    @builtin(position) pos : vec4<f32>,
    @location(0) corner : vec2<f32>,
    @location(1) pickColor : vec3<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) vi : u32,
           @location(0) a_position : vec3<f32>,
           @location(1) a_color : vec3<f32>) -> VsOut {
    var out : VsOut;
    out.corner = quadCorner(vi);
    out.pos = billboard(a_position, out.corner);
    out.pickColor = a_color;
    return out;
}

@fragment
fn fs_main(in : VsOut) -> @location(0) vec4<f32> {
    if (dot(in.corner, in.corner) > 1.0) {
        discard;
    }
    // Flat pick color, no shading: the off-screen pass decodes it back to
    // an element index.
    return vec4<f32>(in.pickColor, 1.0);
}
`

const sphereColorShader = sphereImpostorCommon + `
struct VsOut {
    @builtin(position) pos : vec4<f32>,
    @location(0) corner : vec2<f32>,
    @location(1) color : vec3<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) vi : u32,
           @location(0) a_position : vec3<f32>,
           @location(1) a_color : vec3<f32>) -> VsOut {
    var out : VsOut;
    out.corner = quadCorner(vi);
    out.pos = billboard(a_position, out.corner);
    out.color = a_color;
    return out;
}

@fragment
fn fs_main(in : VsOut) -> @location(0) vec4<f32> {
    return sphereShade(in.corner, in.color);
}
`

const sphereScalarShader = sphereImpostorCommon + `
@group(0) @binding(6) var<uniform> u_rangeLow : f32;
@group(0) @binding(7) var<uniform> u_rangeHigh : f32;
@group(0) @binding(8) var<uniform> u_colormap : array<vec4<f32>, 16>;

struct VsOut {
    @builtin(position) pos : vec4<f32>,
    @location(0) corner : vec2<f32>,
    @location(1) value : f32,
}

@vertex
fn vs_main(@builtin(vertex_index) vi : u32,
           @location(0) a_position : vec3<f32>,
           @location(1) a_value : f32) -> VsOut {
    var out : VsOut;
    out.corner = quadCorner(vi);
    out.pos = billboard(a_position, out.corner);
    out.value = a_value;
    return out;
}

@fragment
fn fs_main(in : VsOut) -> @location(0) vec4<f32> {
    let t = clamp((in.value - u_rangeLow) / max(u_rangeHigh - u_rangeLow, 1e-8), 0.0, 1.0);
    let pos = t * 15.0;
    let lo = u32(floor(pos));
    let hi = min(lo + 1u, 15u);
    let c = mix(u_colormap[lo].rgb, u_colormap[hi].rgb, pos - floor(pos));
    return sphereShade(in.corner, c);
}
`

const vectorShader = `
@group(0) @binding(0) var<uniform> u_modelView : mat4x4<f32>;
@group(0) @binding(1) var<uniform> u_projMatrix : mat4x4<f32>;
@group(0) @binding(2) var<uniform> u_color : vec3<f32>;
@group(0) @binding(3) var<uniform> u_radius : f32;

@vertex
fn vs_main(@location(0) a_position : vec3<f32>) -> @builtin(position) vec4<f32> {
    return u_projMatrix * u_modelView * vec4<f32>(a_position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(u_color, 1.0);
}
`

// Spatial uniforms every sphere impostor pipeline binds, in binding order.
func sphereUniforms() []UniformSpec {
	return []UniformSpec{
		{Name: "u_modelView", Binding: 0},
		{Name: "u_projMatrix", Binding: 1},
		{Name: "u_camZ", Binding: 2},
		{Name: "u_camUp", Binding: 3},
		{Name: "u_camRight", Binding: 4},
		{Name: "u_pointRadius", Binding: 5},
	}
}

func sphereProgramSpec() ProgramSpec {
	return ProgramSpec{
		Name:   "point-cloud-sphere",
		Shader: sphereShader,
		Mode:   DrawModePoints,
		Attributes: []AttributeSpec{
			{Name: "a_position", Location: 0, Format: AttributeFloat32x3},
		},
		Uniforms: append(sphereUniforms(), UniformSpec{Name: "u_baseColor", Binding: 6}),
	}
}

func spherePickProgramSpec() ProgramSpec {
	return ProgramSpec{
		Name:   "point-cloud-pick",
		Shader: spherePickShader,
		Mode:   DrawModePoints,
		Target: TargetPick,
		Attributes: []AttributeSpec{
			{Name: "a_position", Location: 0, Format: AttributeFloat32x3},
			{Name: "a_color", Location: 1, Format: AttributeFloat32x3},
		},
		Uniforms: sphereUniforms(),
	}
}

func sphereColorProgramSpec() ProgramSpec {
	return ProgramSpec{
		Name:   "point-cloud-color",
		Shader: sphereColorShader,
		Mode:   DrawModePoints,
		Attributes: []AttributeSpec{
			{Name: "a_position", Location: 0, Format: AttributeFloat32x3},
			{Name: "a_color", Location: 1, Format: AttributeFloat32x3},
		},
		Uniforms: sphereUniforms(),
	}
}

func sphereScalarProgramSpec() ProgramSpec {
	return ProgramSpec{
		Name:   "point-cloud-scalar",
		Shader: sphereScalarShader,
		Mode:   DrawModePoints,
		Attributes: []AttributeSpec{
			{Name: "a_position", Location: 0, Format: AttributeFloat32x3},
			{Name: "a_value", Location: 1, Format: AttributeFloat32},
		},
		Uniforms: append(sphereUniforms(),
			UniformSpec{Name: "u_rangeLow", Binding: 6},
			UniformSpec{Name: "u_rangeHigh", Binding: 7},
			UniformSpec{Name: "u_colormap", Binding: 8},
		),
	}
}

func vectorProgramSpec() ProgramSpec {
	return ProgramSpec{
		Name:   "point-cloud-vector",
		Shader: vectorShader,
		Mode:   DrawModeLines,
		Attributes: []AttributeSpec{
			{Name: "a_position", Location: 0, Format: AttributeFloat32x3},
		},
		Uniforms: []UniformSpec{
			{Name: "u_modelView", Binding: 0},
			{Name: "u_projMatrix", Binding: 1},
			{Name: "u_color", Binding: 2},
			{Name: "u_radius", Binding: 3},
		},
	}
}
