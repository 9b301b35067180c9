package vistra

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// bitsPerPickChannel is how many index bits are packed into each color
// channel of the pick buffer. 16 bits per channel covers 2^48 elements.
const bitsPerPickChannel = 16

const pickChannelFactor = 1 << bitsPerPickChannel

// PickAllocator hands out contiguous, disjoint ranges of the global pick
// index space and maps an index back to the structure that reserved it.
// Ranges are never reclaimed while the owning structure lives, so an index
// resolved from a stale frame still maps to the right owner.
type PickAllocator struct {
	next   uint64
	ranges []pickRange
}

type pickRange struct {
	start uint64
	count uint64
	owner Structure
}

func NewPickAllocator() *PickAllocator {
	return &PickAllocator{}
}

// RequestRange reserves count consecutive indices for owner and returns the
// first index of the range.
func (a *PickAllocator) RequestRange(owner Structure, count uint64) uint64 {
	start := a.next
	a.next += count
	a.ranges = append(a.ranges, pickRange{start: start, count: count, owner: owner})
	return start
}

// Resolve maps a global pick index to its owning structure and the local
// element offset within it.
func (a *PickAllocator) Resolve(ind uint64) (Structure, uint64, bool) {
	i := sort.Search(len(a.ranges), func(i int) bool {
		return a.ranges[i].start+a.ranges[i].count > ind
	})
	if i == len(a.ranges) || ind < a.ranges[i].start {
		return nil, 0, false
	}
	r := a.ranges[i]
	return r.owner, ind - r.start, true
}

// IndexToColor encodes a global pick index as an RGB color, packing
// bitsPerPickChannel bits per channel. The encoding is bijective over the
// representable range, so no two live elements share a pick color.
func IndexToColor(ind uint64) mgl32.Vec3 {
	x := ind % pickChannelFactor
	ind /= pickChannelFactor
	y := ind % pickChannelFactor
	ind /= pickChannelFactor
	z := ind % pickChannelFactor

	return mgl32.Vec3{
		float32(x) / float32(pickChannelFactor-1),
		float32(y) / float32(pickChannelFactor-1),
		float32(z) / float32(pickChannelFactor-1),
	}
}

// ColorToIndex inverts IndexToColor, rounding each channel back to its
// integer chunk.
func ColorToIndex(c mgl32.Vec3) uint64 {
	x := uint64(math.Round(float64(c.X()) * (pickChannelFactor - 1)))
	y := uint64(math.Round(float64(c.Y()) * (pickChannelFactor - 1)))
	z := uint64(math.Round(float64(c.Z()) * (pickChannelFactor - 1)))
	return x + y*pickChannelFactor + z*pickChannelFactor*pickChannelFactor
}
