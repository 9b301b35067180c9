package vistra

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Structure is a named, user-registered geometric entity the scene can draw
// and pick. Concrete structure kinds (point clouds today) own their point
// data, their quantity registry and the GPU programs backing their passes.
//
// Draw and DrawPick run once per frame for every enabled structure; both
// must be cheap no-ops while the structure is disabled. BoundingBox and
// LengthScale reflect the structure's current spatial transform and are
// recomputed on demand, never cached.
type Structure interface {
	Name() string
	TypeName() string

	Enabled() bool
	SetEnabled(enabled bool)

	// Prepare builds the primary draw program; PreparePick reserves pick
	// indices and builds the pick program. Draw lazily calls Prepare when
	// the primary program has been invalidated.
	Prepare()
	PreparePick()
	Draw()
	DrawPick()

	DrawUI()
	DrawPickUI(localPickID int)
	DrawSharedStructureUI()

	BoundingBox() (mgl32.Vec3, mgl32.Vec3)
	LengthScale() float64

	// Release frees the structure's GPU programs and destroys its
	// quantities. Pick ranges are intentionally not reclaimed.
	Release()
}
