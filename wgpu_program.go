package vistra

import (
	"encoding/binary"
	"math"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

type GpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Important: tell GLFW we don't want OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
}

func createGpuState(s *WindowState) *GpuState {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	// wraps GLFW window into a wgpu surface.
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(s.windowGlfw))
	// finds a suitable GPU (discrete GPU preferred)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	// allocates the device and command queue
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "Main Device",
		RequiredFeatures: nil,
		RequiredLimits:   nil,
	})
	if err != nil {
		panic(err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	// defines how the swapchain behaves (size, format, vsync)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(s.WindowWidth),
		Height:      uint32(s.WindowHeight),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}

	surface.Configure(adapter, device, &surfaceConfig)

	return &GpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
	}
}

// WgpuProgramFactory compiles ProgramSpecs to wgpu render pipelines. The
// engine hands it the frame's render pass encoder before the scene draws;
// every Program.Draw issued that frame records into that pass.
type WgpuProgramFactory struct {
	gpu  *GpuState
	pass *wgpu.RenderPassEncoder
}

func NewWgpuProgramFactory(gpu *GpuState) *WgpuProgramFactory {
	return &WgpuProgramFactory{gpu: gpu}
}

func (f *WgpuProgramFactory) beginPass(pass *wgpu.RenderPassEncoder) { f.pass = pass }
func (f *WgpuProgramFactory) endPass()                               { f.pass = nil }

// pickTargetFormat is the attachment format of the off-screen pick pass.
// Float channels carry the 16-bit index encoding exactly; the swapchain's
// 8-bit (usually sRGB) format would collapse neighboring indices.
const pickTargetFormat = wgpu.TextureFormatRGBA32Float

// pickTexelBytes is the byte size of one pickTargetFormat texel.
const pickTexelBytes = 16

func (f *WgpuProgramFactory) targetFormat(t RenderTarget) wgpu.TextureFormat {
	if t == TargetPick {
		return pickTargetFormat
	}
	return f.gpu.surfaceConfig.Format
}

func (f *WgpuProgramFactory) NewProgram(spec ProgramSpec) Program {
	shader, err := f.gpu.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          spec.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: spec.Shader},
	})
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	// Point impostors expand to a quad per element, so per-element
	// attributes step per instance; line and triangle data steps per
	// vertex.
	stepMode := wgpu.VertexStepModeVertex
	topology := wgpu.PrimitiveTopologyTriangleList
	switch spec.Mode {
	case DrawModePoints:
		stepMode = wgpu.VertexStepModeInstance
	case DrawModeLines:
		topology = wgpu.PrimitiveTopologyLineList
	}

	var layouts []wgpu.VertexBufferLayout
	for _, attr := range spec.Attributes {
		layouts = append(layouts, wgpu.VertexBufferLayout{
			ArrayStride: attributeFormatSize(attr.Format),
			StepMode:    stepMode,
			Attributes: []wgpu.VertexAttribute{
				{
					ShaderLocation: attr.Location,
					Offset:         0,
					Format:         wgpuVertexFormat(attr.Format),
				},
			},
		})
	}

	pipeline, err := f.gpu.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: spec.Name,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    layouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    f.targetFormat(spec.Target),
					Blend:     nil,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		panic(err)
	}

	return &wgpuProgram{
		id:             uuid.NewString(),
		spec:           spec,
		factory:        f,
		pipeline:       pipeline,
		vertexBuffers:  make([]*wgpu.Buffer, len(spec.Attributes)),
		uniformBuffers: make(map[string]*wgpu.Buffer),
	}
}

func wgpuVertexFormat(f AttributeFormat) wgpu.VertexFormat {
	switch f {
	case AttributeFloat32:
		return wgpu.VertexFormatFloat32
	case AttributeFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case AttributeFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case AttributeFloat32x4:
		return wgpu.VertexFormatFloat32x4
	}
	panic("unknown attribute format")
}

type wgpuProgram struct {
	id       string
	spec     ProgramSpec
	factory  *WgpuProgramFactory
	pipeline *wgpu.RenderPipeline

	vertexBuffers []*wgpu.Buffer
	elementCount  int

	uniformBuffers map[string]*wgpu.Buffer
	bindGroup      *wgpu.BindGroup
}

func (p *wgpuProgram) attributeIndex(name string) int {
	for i, attr := range p.spec.Attributes {
		if attr.Name == name {
			return i
		}
	}
	panic("program " + p.spec.Name + " has no attribute " + name)
}

func (p *wgpuProgram) uniformBinding(name string) uint32 {
	for _, u := range p.spec.Uniforms {
		if u.Name == name {
			return u.Binding
		}
	}
	panic("program " + p.spec.Name + " has no uniform " + name)
}

func (p *wgpuProgram) SetAttribute(name string, data any) {
	i := p.attributeIndex(name)
	raw, count := vertexBytes(data)

	if p.vertexBuffers[i] != nil {
		p.vertexBuffers[i].Release()
	}
	buf, err := p.factory.gpu.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    p.spec.Name + "/" + name + "/" + p.id,
		Contents: raw,
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		panic(err)
	}
	p.vertexBuffers[i] = buf

	if i == 0 {
		p.elementCount = count
	}
}

func (p *wgpuProgram) SetUniform(name string, value any) {
	raw := uniformBytes(value)

	if buf, ok := p.uniformBuffers[name]; ok {
		err := p.factory.gpu.queue.WriteBuffer(buf, 0, raw)
		if err != nil {
			panic(err)
		}
		return
	}

	buf, err := p.factory.gpu.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    p.spec.Name + "/" + name + "/" + p.id,
		Contents: raw,
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	p.uniformBuffers[name] = buf

	// Bind group entries changed; rebuild lazily on the next draw.
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
}

func (p *wgpuProgram) ensureBindGroup() {
	if p.bindGroup != nil || len(p.uniformBuffers) == 0 {
		return
	}

	var entries []wgpu.BindGroupEntry
	for name, buf := range p.uniformBuffers {
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: p.uniformBinding(name),
			Buffer:  buf,
			Size:    wgpu.WholeSize,
		})
	}

	layout := p.pipeline.GetBindGroupLayout(0)
	defer layout.Release()

	bg, err := p.factory.gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.spec.Name + "/" + p.id,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		panic(err)
	}
	p.bindGroup = bg
}

func (p *wgpuProgram) Draw() {
	pass := p.factory.pass
	if pass == nil || p.elementCount == 0 {
		return
	}

	p.ensureBindGroup()

	pass.SetPipeline(p.pipeline)
	for i, buf := range p.vertexBuffers {
		if buf != nil {
			pass.SetVertexBuffer(uint32(i), buf, 0, wgpu.WholeSize)
		}
	}
	if p.bindGroup != nil {
		pass.SetBindGroup(0, p.bindGroup, nil)
	}

	if p.spec.Mode == DrawModePoints {
		// 6 quad corners per point instance
		pass.Draw(6, uint32(p.elementCount), 0, 0)
	} else {
		pass.Draw(uint32(p.elementCount), 1, 0, 0)
	}
}

func (p *wgpuProgram) Release() {
	for i, buf := range p.vertexBuffers {
		if buf != nil {
			buf.Release()
			p.vertexBuffers[i] = nil
		}
	}
	for name, buf := range p.uniformBuffers {
		buf.Release()
		delete(p.uniformBuffers, name)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
}

// vertexBytes flattens an attribute slice to little-endian float32 bytes
// and returns the element count.
func vertexBytes(data any) ([]byte, int) {
	switch d := data.(type) {
	case []float32:
		out := make([]byte, 0, 4*len(d))
		for _, v := range d {
			out = appendFloat32(out, v)
		}
		return out, len(d)
	case []mgl32.Vec2:
		out := make([]byte, 0, 8*len(d))
		for _, v := range d {
			out = appendFloat32(out, v.X(), v.Y())
		}
		return out, len(d)
	case []mgl32.Vec3:
		out := make([]byte, 0, 12*len(d))
		for _, v := range d {
			out = appendFloat32(out, v.X(), v.Y(), v.Z())
		}
		return out, len(d)
	case []mgl32.Vec4:
		out := make([]byte, 0, 16*len(d))
		for _, v := range d {
			out = appendFloat32(out, v.X(), v.Y(), v.Z(), v.W())
		}
		return out, len(d)
	}
	panic("unsupported attribute data type")
}

// uniformBytes packs a uniform value with WGSL uniform address space
// alignment: vec3 pads to 16 bytes, and slice elements pad to vec4 stride.
func uniformBytes(value any) []byte {
	switch v := value.(type) {
	case float32:
		return appendFloat32(nil, v)
	case int:
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, uint32(v))
		return out
	case mgl32.Vec2:
		return appendFloat32(nil, v.X(), v.Y())
	case mgl32.Vec3:
		return appendFloat32(nil, v.X(), v.Y(), v.Z(), 0)
	case mgl32.Vec4:
		return appendFloat32(nil, v.X(), v.Y(), v.Z(), v.W())
	case mgl32.Mat4:
		out := make([]byte, 0, 64)
		for _, f := range v {
			out = appendFloat32(out, f)
		}
		return out
	case []mgl32.Vec3:
		out := make([]byte, 0, 16*len(v))
		for _, e := range v {
			out = appendFloat32(out, e.X(), e.Y(), e.Z(), 0)
		}
		return out
	case []float32:
		out := make([]byte, 0, 16*len(v))
		for _, f := range v {
			out = appendFloat32(out, f, 0, 0, 0)
		}
		return out
	}
	panic("unsupported uniform value type")
}

// pickRowBytes is the padded bytes-per-row of a pick readback copy;
// texture-to-buffer copies require rows aligned to 256 bytes.
func pickRowBytes(width uint32) uint32 {
	const align = 256
	row := width * pickTexelBytes
	return (row + align - 1) / align * align
}

// decodePickTexel reads the RGB channels of the texel at (x, y) from a
// mapped pick readback buffer.
func decodePickTexel(raw []byte, x, y int, rowBytes uint32) mgl32.Vec3 {
	off := y*int(rowBytes) + x*pickTexelBytes
	return mgl32.Vec3{
		math.Float32frombits(binary.LittleEndian.Uint32(raw[off : off+4])),
		math.Float32frombits(binary.LittleEndian.Uint32(raw[off+4 : off+8])),
		math.Float32frombits(binary.LittleEndian.Uint32(raw[off+8 : off+12])),
	}
}

func appendFloat32(out []byte, vals ...float32) []byte {
	for _, v := range vals {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}
