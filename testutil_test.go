package vistra

import (
	"fmt"
)

// fakeProgram records every call so tests can assert on attribute uploads,
// uniform binds and draw submissions without a GPU.
type fakeProgram struct {
	spec       ProgramSpec
	attributes map[string]any
	uniforms   map[string]any
	drawCount  int
	released   bool
}

func (p *fakeProgram) SetAttribute(name string, data any) {
	if p.released {
		panic(fmt.Sprintf("SetAttribute on released program %s", p.spec.Name))
	}
	p.attributes[name] = data
}

func (p *fakeProgram) SetUniform(name string, value any) {
	if p.released {
		panic(fmt.Sprintf("SetUniform on released program %s", p.spec.Name))
	}
	p.uniforms[name] = value
}

func (p *fakeProgram) Draw() {
	if p.released {
		panic(fmt.Sprintf("Draw on released program %s", p.spec.Name))
	}
	p.drawCount++
}

func (p *fakeProgram) Release() {
	if p.released {
		panic(fmt.Sprintf("double Release of program %s", p.spec.Name))
	}
	p.released = true
}

type fakeFactory struct {
	created []*fakeProgram
}

func (f *fakeFactory) NewProgram(spec ProgramSpec) Program {
	p := &fakeProgram{
		spec:       spec,
		attributes: make(map[string]any),
		uniforms:   make(map[string]any),
	}
	f.created = append(f.created, p)
	return p
}

// live returns the created programs not yet released.
func (f *fakeFactory) live() []*fakeProgram {
	var out []*fakeProgram
	for _, p := range f.created {
		if !p.released {
			out = append(out, p)
		}
	}
	return out
}

// last returns the most recently created program.
func (f *fakeFactory) last() *fakeProgram {
	return f.created[len(f.created)-1]
}

// captureLogger keeps logged errors so tests can assert the non-fatal
// error channel.
type captureLogger struct {
	nopLogger
	errors []string
}

func (l *captureLogger) Errorf(format string, args ...any) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func newTestScene() (*Scene, *fakeFactory, *captureLogger) {
	f := &fakeFactory{}
	log := &captureLogger{}
	return NewScene(f, NewCameraState(), NopUi{}, log), f, log
}
