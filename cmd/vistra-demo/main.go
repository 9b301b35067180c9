package main

import (
	"flag"
	"math"
	"math/rand"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vistra3d/vistra"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	n := flag.Int("n", 5000, "Number of demo points")
	flag.Parse()

	engine := vistra.NewEngineBuilder().
		WithWindow(1280, 720, "vistra demo").
		WithDebug(*debug).
		Build()

	points := make([]mgl32.Vec3, *n)
	height := make([]float64, *n)
	swirl := make([]mgl32.Vec3, *n)
	for i := range points {
		p := mgl32.Vec3{
			rand.Float32()*2 - 1,
			rand.Float32()*2 - 1,
			rand.Float32()*2 - 1,
		}
		points[i] = p
		height[i] = float64(p.Y())
		swirl[i] = mgl32.Vec3{-p.Z(), 0, p.X()}
	}

	pc := vistra.RegisterPointCloud(engine.Scene(), "demo", points)
	vistra.AddScalarQuantity(pc, "height", height, vistra.DataTypeSymmetric)
	vistra.AddVectorQuantity(pc, "swirl", swirl, vistra.VectorTypeStandard)

	distance := make([]float64, *n)
	for i, p := range points {
		distance[i] = math.Sqrt(float64(p.Dot(p)))
	}
	vistra.AddScalarQuantity(pc, "distance", distance, vistra.DataTypeMagnitude)

	for engine.Frame() {
		if engine.Input().JustPressed[vistra.MouseButtonRight] {
			in := engine.Input()
			if st, local, ok := engine.PickAt(int(in.MouseX), int(in.MouseY)); ok {
				engine.Logger().Infof("picked %s %q element %d", st.TypeName(), st.Name(), local)
			}
		}
	}
}
