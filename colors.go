package vistra

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// structureColor returns the i-th base color on the structure color wheel.
// Hues step by the golden-ratio conjugate so consecutive structures stay
// visually distinct.
func structureColor(i int) mgl32.Vec3 {
	const goldenRatioConjugate = 0.61803398875
	hue := math.Mod(0.11+float64(i)*goldenRatioConjugate, 1.0)
	return hsvToRgb(float32(hue), 0.85, 0.85)
}

func hsvToRgb(h, s, v float32) mgl32.Vec3 {
	hh := h * 6.0
	sector := int(hh) % 6
	f := hh - float32(int(hh))
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch sector {
	case 0:
		return mgl32.Vec3{v, t, p}
	case 1:
		return mgl32.Vec3{q, v, p}
	case 2:
		return mgl32.Vec3{p, v, t}
	case 3:
		return mgl32.Vec3{p, q, v}
	case 4:
		return mgl32.Vec3{t, p, v}
	default:
		return mgl32.Vec3{v, p, q}
	}
}

// Colormap is a lookup table sampled with linear interpolation. Tables are
// bound as uniform arrays so a drawing quantity can overlay its palette
// per frame without rebuilding the program.
type Colormap []mgl32.Vec3

// Viridis, perceptually uniform, dark blue to yellow.
var ColormapViridis = Colormap{
	{0.267, 0.005, 0.329},
	{0.283, 0.131, 0.449},
	{0.262, 0.242, 0.521},
	{0.220, 0.343, 0.549},
	{0.177, 0.438, 0.558},
	{0.143, 0.523, 0.556},
	{0.120, 0.607, 0.540},
	{0.166, 0.691, 0.497},
	{0.320, 0.771, 0.411},
	{0.526, 0.833, 0.288},
	{0.762, 0.876, 0.137},
	{0.993, 0.906, 0.144},
}

// Coolwarm, diverging, blue through white to red. The default for
// symmetric scalar data.
var ColormapCoolwarm = Colormap{
	{0.230, 0.299, 0.754},
	{0.406, 0.537, 0.934},
	{0.602, 0.731, 0.999},
	{0.788, 0.846, 0.939},
	{0.930, 0.820, 0.761},
	{0.968, 0.657, 0.537},
	{0.887, 0.413, 0.324},
	{0.706, 0.016, 0.150},
}

// colormapTableSize is the uniform array length the scalar shader samples
// from; tables are resampled to it before binding.
const colormapTableSize = 16

// Resample evaluates the table at n evenly spaced points.
func (m Colormap) Resample(n int) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, n)
	for i := range out {
		out[i] = m.Sample(float32(i) / float32(n-1))
	}
	return out
}

// Sample evaluates the table at t in [0,1]; t is clamped.
func (m Colormap) Sample(t float32) mgl32.Vec3 {
	if len(m) == 0 {
		return mgl32.Vec3{}
	}
	if t <= 0 {
		return m[0]
	}
	if t >= 1 {
		return m[len(m)-1]
	}
	pos := t * float32(len(m)-1)
	lo := int(pos)
	frac := pos - float32(lo)
	a, b := m[lo], m[lo+1]
	return mgl32.Vec3{
		a.X() + (b.X()-a.X())*frac,
		a.Y() + (b.Y()-a.Y())*frac,
		a.Z() + (b.Z()-a.Z())*frac,
	}
}
