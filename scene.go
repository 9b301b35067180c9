package vistra

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Scene is the name-keyed registry of structures and the per-frame entry
// point for the render and pick passes. It owns the collaborators every
// structure needs while drawing: the program factory, the pick index
// allocator, the camera and the UI backend.
//
// All scene and structure mutation happens on the render thread; there is
// no locking anywhere in the draw path.
type Scene struct {
	log     Logger
	factory ProgramFactory
	picker  *PickAllocator
	camera  *CameraState
	ui      Ui

	// typeName -> structure name -> structure
	structures map[string]map[string]Structure

	colorIdx int
}

func NewScene(factory ProgramFactory, camera *CameraState, ui Ui, log Logger) *Scene {
	if log == nil {
		log = NewNopLogger()
	}
	if ui == nil {
		ui = NopUi{}
	}
	return &Scene{
		log:        log,
		factory:    factory,
		picker:     NewPickAllocator(),
		camera:     camera,
		ui:         ui,
		structures: make(map[string]map[string]Structure),
	}
}

func (s *Scene) Camera() *CameraState    { return s.camera }
func (s *Scene) Picker() *PickAllocator  { return s.picker }
func (s *Scene) Ui() Ui                  { return s.ui }
func (s *Scene) Logger() Logger          { return s.log }
func (s *Scene) Factory() ProgramFactory { return s.factory }

// RegisterStructure adds st under its type and name. Registration fails on
// a duplicate name; in that case no scene state is mutated and the caller
// is responsible for discarding the unregistered structure.
func (s *Scene) RegisterStructure(st Structure) bool {
	byName, ok := s.structures[st.TypeName()]
	if !ok {
		byName = make(map[string]Structure)
		s.structures[st.TypeName()] = byName
	}
	if _, exists := byName[st.Name()]; exists {
		s.log.Errorf("structure %s named %q is already registered", st.TypeName(), st.Name())
		return false
	}
	byName[st.Name()] = st
	return true
}

// GetStructure returns the structure registered under the given type and
// name, or nil.
func (s *Scene) GetStructure(typeName, name string) Structure {
	if st, ok := s.structures[typeName][name]; ok {
		return st
	}
	return nil
}

// RemoveStructure releases the named structure's resources and drops it
// from the registry. No-op if absent.
func (s *Scene) RemoveStructure(typeName, name string) {
	st := s.GetStructure(typeName, name)
	if st == nil {
		return
	}
	st.Release()
	delete(s.structures[typeName], name)
}

// forEachStructure visits structures in deterministic type/name order.
func (s *Scene) forEachStructure(f func(Structure)) {
	typeNames := make([]string, 0, len(s.structures))
	for tn := range s.structures {
		typeNames = append(typeNames, tn)
	}
	sort.Strings(typeNames)
	for _, tn := range typeNames {
		names := make([]string, 0, len(s.structures[tn]))
		for n := range s.structures[tn] {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			f(s.structures[tn][n])
		}
	}
}

// Draw runs the primary render pass over every structure. Disabled
// structures skip themselves.
func (s *Scene) Draw() {
	s.forEachStructure(func(st Structure) {
		st.Draw()
	})
}

// DrawPick runs the pick pass over every structure.
func (s *Scene) DrawPick() {
	s.forEachStructure(func(st Structure) {
		st.DrawPick()
	})
}

// BuildStructureGui fans the UI pass out to every structure.
func (s *Scene) BuildStructureGui() {
	s.forEachStructure(func(st Structure) {
		st.DrawUI()
	})
	s.forEachStructure(func(st Structure) {
		st.DrawSharedStructureUI()
	})
}

// ResolvePick decodes a pick-buffer color back to the structure and local
// element index it encodes.
func (s *Scene) ResolvePick(color mgl32.Vec3) (Structure, uint64, bool) {
	return s.picker.Resolve(ColorToIndex(color))
}

// LengthScale is the scene-wide characteristic length: the largest length
// scale over all registered structures. Structures use it to convert
// relative element radii to world units; the camera uses it to calibrate
// navigation speed. Recomputed on demand since transforms mutate freely.
func (s *Scene) LengthScale() float64 {
	scale := 0.0
	s.forEachStructure(func(st Structure) {
		if ls := st.LengthScale(); ls > scale {
			scale = ls
		}
	})
	if scale == 0 {
		return 1.0
	}
	return scale
}

// nextStructureColor hands out the base color for a newly registered
// structure, stepping around the color wheel.
func (s *Scene) nextStructureColor() mgl32.Vec3 {
	c := structureColor(s.colorIdx)
	s.colorIdx++
	return c
}
