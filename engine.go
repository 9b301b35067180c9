package vistra

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Engine owns the window, GPU state and scene, and runs the per-frame
// render loop. Everything runs on the thread owning the graphics context;
// nothing here is safe for concurrent use.
type Engine struct {
	log    Logger
	window *WindowState
	gpu    *GpuState

	wgpuFactory *WgpuProgramFactory
	factory     ProgramFactory

	camera     *CameraState
	controller *CameraController
	input      *Input
	ui         Ui
	scene      *Scene

	fbWidth  int
	fbHeight int

	pickRequested bool
	pickTexture   *wgpu.Texture
	pickView      *wgpu.TextureView
}

// EngineBuilder configures an Engine. Zero values fall back to defaults;
// supplying a custom ProgramFactory skips window and GPU setup entirely,
// which is how tests run headless.
type EngineBuilder struct {
	width, height int
	title         string
	log           Logger
	ui            Ui
	factory       ProgramFactory
	debug         bool
}

func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{}
}

func (b *EngineBuilder) WithWindow(width, height int, title string) *EngineBuilder {
	b.width = width
	b.height = height
	b.title = title
	return b
}

func (b *EngineBuilder) WithLogger(log Logger) *EngineBuilder {
	b.log = log
	return b
}

func (b *EngineBuilder) WithUi(ui Ui) *EngineBuilder {
	b.ui = ui
	return b
}

func (b *EngineBuilder) WithProgramFactory(factory ProgramFactory) *EngineBuilder {
	b.factory = factory
	return b
}

func (b *EngineBuilder) WithDebug(debug bool) *EngineBuilder {
	b.debug = debug
	return b
}

func (b *EngineBuilder) Build() *Engine {
	if b.width <= 0 {
		b.width = 1280
	}
	if b.height <= 0 {
		b.height = 720
	}
	if b.title == "" {
		b.title = "vistra"
	}
	if b.log == nil {
		b.log = NewDefaultLogger("vistra", b.debug)
	}
	if b.ui == nil {
		b.ui = NopUi{}
	}

	e := &Engine{
		log:     b.log,
		ui:      b.ui,
		factory: b.factory,
		camera:  NewCameraState(),
	}

	if e.factory == nil {
		e.window = createWindowState(b.width, b.height, b.title)
		e.gpu = createGpuState(e.window)
		e.wgpuFactory = NewWgpuProgramFactory(e.gpu)
		e.factory = e.wgpuFactory
		e.input = &Input{}
		e.controller = NewCameraController()
		e.log.Infof("created window (%dx%d) %q", b.width, b.height, b.title)
	}

	e.fbWidth = b.width
	e.fbHeight = b.height
	e.camera.AspectRatio = float32(b.width) / float32(b.height)
	e.scene = NewScene(e.factory, e.camera, e.ui, e.log)
	return e
}

// handleResize tracks framebuffer size changes: camera aspect follows the
// new size, the surface is reconfigured, and the pick target is dropped so
// it is recreated at the new size. Reports whether a resize happened.
func (e *Engine) handleResize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width == e.fbWidth && height == e.fbHeight {
		return false
	}

	e.fbWidth = width
	e.fbHeight = height
	e.camera.AspectRatio = float32(width) / float32(height)

	if e.gpu != nil {
		e.gpu.surfaceConfig.Width = uint32(width)
		e.gpu.surfaceConfig.Height = uint32(height)
		e.gpu.surface.Configure(e.gpu.adapter, e.gpu.device, e.gpu.surfaceConfig)
	}
	e.releasePickTarget()
	return true
}

func (e *Engine) releasePickTarget() {
	if e.pickView != nil {
		e.pickView.Release()
		e.pickView = nil
	}
	if e.pickTexture != nil {
		e.pickTexture.Release()
		e.pickTexture = nil
	}
}

func (e *Engine) Scene() *Scene        { return e.scene }
func (e *Engine) Camera() *CameraState { return e.camera }
func (e *Engine) Input() *Input        { return e.input }
func (e *Engine) Logger() Logger       { return e.log }

// RequestPickPass schedules a pick render during the next Frame. The pick
// buffer is drawn off-screen; resolving a pixel back to an element is the
// caller's side of the contract, via Scene.ResolvePick.
func (e *Engine) RequestPickPass() {
	e.pickRequested = true
}

// PickAt renders the pick pass, reads the texel under (x, y) back from the
// GPU and resolves it to the structure and local element it encodes.
// Coordinates are framebuffer pixels with (0,0) at the top left. Headless
// engines have no pick buffer and always miss.
func (e *Engine) PickAt(x, y int) (Structure, uint64, bool) {
	if e.wgpuFactory == nil {
		return nil, 0, false
	}
	if x < 0 || y < 0 || x >= e.fbWidth || y >= e.fbHeight {
		return nil, 0, false
	}

	e.ensurePickTarget()

	encoder, err := e.gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	defer encoder.Release()

	pickPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       e.pickView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 1.0, G: 1.0, B: 1.0, A: 1.0},
			},
		},
	})
	e.wgpuFactory.beginPass(pickPass)
	e.scene.DrawPick()
	e.wgpuFactory.endPass()
	if err := pickPass.End(); err != nil {
		panic(err)
	}
	pickPass.Release()

	width := e.gpu.surfaceConfig.Width
	height := e.gpu.surfaceConfig.Height
	rowBytes := pickRowBytes(width)
	size := uint64(rowBytes) * uint64(height)

	staging, err := e.gpu.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "pick-readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	defer staging.Release()

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture: e.pickTexture,
			Aspect:  wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: staging,
			Layout: wgpu.TextureDataLayout{
				BytesPerRow:  rowBytes,
				RowsPerImage: height,
			},
		},
		&wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	defer cmdBuffer.Release()
	e.gpu.queue.Submit(cmdBuffer)

	mapped := false
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		mapped = status == wgpu.BufferMapAsyncStatusSuccess
	})
	if err != nil {
		panic(err)
	}
	e.gpu.device.Poll(true, nil)
	if !mapped {
		return nil, 0, false
	}

	raw := staging.GetMappedRange(0, uint(size))
	color := decodePickTexel(raw, x, y, rowBytes)
	staging.Unmap()

	// the white clear color decodes past every reserved range and misses
	return e.scene.ResolvePick(color)
}

// Frame runs one iteration of the render loop: primary pass, optional pick
// pass, then the UI fan-out. Returns false once the window wants to close.
func (e *Engine) Frame() bool {
	if e.window != nil {
		if e.window.windowGlfw.ShouldClose() {
			return false
		}
		glfw.PollEvents()
		e.handleResize(e.window.windowGlfw.GetFramebufferSize())
		e.input.Poll(e.window)
		e.controller.Update(e.camera, e.input, e.scene.LengthScale())

		if tui, ok := e.ui.(*TextUi); ok {
			tui.BeginFrame(float32(e.input.MouseX), float32(e.input.MouseY),
				e.input.JustPressed[MouseButtonLeft])
		}
	}

	e.camera.ClipFor(e.scene.LengthScale())

	if e.wgpuFactory == nil {
		// Headless: draw straight through the injected factory.
		e.scene.Draw()
		if e.pickRequested {
			e.scene.DrawPick()
			e.pickRequested = false
		}
		e.scene.BuildStructureGui()
		return true
	}

	nextTexture, err := e.gpu.surface.GetCurrentTexture()
	if err != nil {
		panic(err)
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	defer view.Release()

	encoder, err := e.gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	defer encoder.Release()

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0.12, G: 0.12, B: 0.14, A: 1.0},
			},
		},
	})
	e.wgpuFactory.beginPass(renderPass)
	e.scene.Draw()
	e.wgpuFactory.endPass()
	if err := renderPass.End(); err != nil {
		panic(err)
	}
	renderPass.Release()

	if e.pickRequested {
		e.pickRequested = false
		e.ensurePickTarget()

		pickPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{
					View:       e.pickView,
					LoadOp:     wgpu.LoadOpClear,
					StoreOp:    wgpu.StoreOpStore,
					ClearValue: wgpu.Color{R: 1.0, G: 1.0, B: 1.0, A: 1.0},
				},
			},
		})
		e.wgpuFactory.beginPass(pickPass)
		e.scene.DrawPick()
		e.wgpuFactory.endPass()
		if err := pickPass.End(); err != nil {
			panic(err)
		}
		pickPass.Release()
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	defer cmdBuffer.Release()

	e.gpu.queue.Submit(cmdBuffer)
	e.gpu.surface.Present()

	e.scene.BuildStructureGui()
	return true
}

// ensurePickTarget lazily creates the off-screen texture the pick pass
// renders into.
func (e *Engine) ensurePickTarget() {
	if e.pickTexture != nil {
		return
	}

	tex, err := e.gpu.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "pick-target",
		Size: wgpu.Extent3D{
			Width:              e.gpu.surfaceConfig.Width,
			Height:             e.gpu.surfaceConfig.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        pickTargetFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		panic(err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		panic(err)
	}

	e.pickTexture = tex
	e.pickView = view
}
