package frustum

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/clusterindex/pkg/geom"
	"github.com/Faultbox/clusterindex/pkg/math"
)

// forwardZ looks down +Z from the origin with a 90 degree field of view.
func forwardZ() Frustum {
	proj := math.Perspective(float32(gomath.Pi/2), 1, 0.1, 300)
	view := math.LookAt(math.Vec3{}, math.Vec3{Z: 1}, math.Vec3{Y: 1})
	return Extract(proj.Mul(view))
}

// unitOrtho is the box x,y in [-1,1], z in [-10,-1].
func unitOrtho() Frustum {
	return Extract(math.Ortho(-1, 1, -1, 1, 1, 10))
}

func requirePlaneNear(t *testing.T, want, got Plane) {
	t.Helper()
	for i := range want {
		require.InDelta(t, want[i], got[i], 1e-5, "coefficient %d", i)
	}
}

func TestNormalize(t *testing.T) {
	p := Plane{0, 3, 4, 10}.Normalize()
	requirePlaneNear(t, Plane{0, 0.6, 0.8, 2}, p)
	require.InDelta(t, 1, p.Normal().Length(), 1e-6)
}

func TestNormalizeZeroNormal(t *testing.T) {
	p := Plane{0, 0, 0, 1}.Normalize()
	require.True(t, gomath.IsNaN(float64(p[0])) || gomath.IsInf(float64(p[3]), 0))
}

func TestClassifyPoint(t *testing.T) {
	p := Plane{1, 0, 0, -2}

	require.Equal(t, Positive, p.Classify(math.Vec3{X: 3}))
	require.Equal(t, Negative, p.Classify(math.Vec3{X: 1}))
	require.Equal(t, OnPlane, p.Classify(math.Vec3{X: 2, Y: 7}))
}

func TestExtractOrtho(t *testing.T) {
	f := unitOrtho()

	requirePlaneNear(t, Plane{1, 0, 0, 1}, f.Left)
	requirePlaneNear(t, Plane{-1, 0, 0, 1}, f.Right)
	requirePlaneNear(t, Plane{0, -1, 0, 1}, f.Top)
	requirePlaneNear(t, Plane{0, 1, 0, 1}, f.Bottom)
	requirePlaneNear(t, Plane{0, 0, 1, 10}, f.Far)
	requirePlaneNear(t, Plane{0, 0, -1, -1}, f.Near)
}

func TestExtractMGLMatchesExtract(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(70), 16.0/9.0, 0.1, 300)
	view := mgl32.LookAtV(mgl32.Vec3{8, 80, -20}, mgl32.Vec3{8, 64, 8}, mgl32.Vec3{0, 1, 0})
	viewProj := proj.Mul4(view)

	got := ExtractMGL(viewProj)
	want := Extract(math.Mat4(viewProj))
	require.Equal(t, want, got)

	for _, p := range got.Planes() {
		require.InDelta(t, 1, p.Normal().Length(), 1e-5)
	}
}

func TestPointForwardZ(t *testing.T) {
	f := forwardZ()

	require.Equal(t, Inside, f.Point(math.Vec3{Z: 150}))
	require.Equal(t, Outside, f.Point(math.Vec3{Z: 400}))
	require.Equal(t, Outside, f.Point(math.Vec3{Z: -5}))
	require.Equal(t, Outside, f.Point(math.Vec3{X: 200, Z: 150}))
}

func TestPointBoundary(t *testing.T) {
	f := unitOrtho()

	require.Equal(t, Inside, f.Point(math.Vec3{Z: -5}))
	require.Equal(t, Boundary, f.Point(math.Vec3{X: -1, Z: -5}))
	require.Equal(t, Boundary, f.Point(math.Vec3{X: 1, Y: 1, Z: -5}))
	require.Equal(t, Outside, f.Point(math.Vec3{X: -2, Z: -5}))
	// on the left plane but beyond the far plane
	require.Equal(t, Outside, f.Point(math.Vec3{X: -1, Z: -20}))
}

func TestSphereForwardZ(t *testing.T) {
	f := forwardZ()

	require.Equal(t, Intersect, f.Sphere(geom.BSphere{Z: 150, D: 400}))
	require.Equal(t, Inside, f.Sphere(geom.BSphere{Z: 150, D: 2}))
	require.Equal(t, Outside, f.Sphere(geom.BSphere{Z: -50, D: 2}))
}

func TestSphereOrtho(t *testing.T) {
	f := unitOrtho()

	cases := []struct {
		name string
		s    geom.BSphere
		want Space
	}{
		{"inside", geom.BSphere{Z: -5, D: 1}, Inside},
		{"straddles left and right", geom.BSphere{Z: -5, D: 4}, Intersect},
		{"beyond left", geom.BSphere{X: -5, Z: -5, D: 2}, Outside},
		{"tangent to left plane", geom.BSphere{X: -2, Z: -5, D: 2}, Inside},
		{"beyond far", geom.BSphere{Z: -30, D: 2}, Outside},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, f.Sphere(c.s))
		})
	}
}

func TestBox(t *testing.T) {
	f := forwardZ()

	cases := []struct {
		name string
		box  geom.AABB3f
		want Space
	}{
		{"inside", geom.Box[float32](-1, -1, 10, 1, 1, 20), Inside},
		{"behind camera", geom.Box[float32](-1, -1, -20, 1, 1, -10), Outside},
		{"crosses far plane", geom.Box[float32](-1, -1, 250, 1, 1, 350), Intersect},
		{"beyond far plane", geom.Box[float32](-1, -1, 310, 1, 1, 350), Outside},
		{"wide side", geom.Box[float32](200, -1, 10, 250, 1, 20), Outside},
		// Outside the volume, but no single plane has every corner behind it.
		{"corner region", geom.Box[float32](305, -1, 250, 400, 1, 350), Intersect},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, f.Box(c.box))
		})
	}
}

func TestBoxInWidths(t *testing.T) {
	f := forwardZ()

	require.Equal(t, Inside, BoxIn(f, geom.Box[uint8](0, 0, 20, 4, 4, 30)))
	require.Equal(t, Intersect, BoxIn(f, geom.Box[int32](-4, -4, -4, 4, 4, 4)))
	require.Equal(t, Outside, BoxIn(f, geom.Box[int32](-40, -4, -30, -20, 4, -10)))
}

func TestTranslateZeroIsRenormalized(t *testing.T) {
	f := forwardZ()
	got := Translate(f, 0, 0)

	want := f.Planes()
	for i, p := range got.Planes() {
		requirePlaneNear(t, want[i].Normalize(), p)
	}
}

func TestTranslateOffsets(t *testing.T) {
	f := unitOrtho()
	got := Translate(f, 0.5, 2)

	requirePlaneNear(t, Plane{1, 0, 0, 1.5}, got.Left)
	requirePlaneNear(t, Plane{-1, 0, 0, 0.5}, got.Right)
	requirePlaneNear(t, f.Top, got.Top)
	requirePlaneNear(t, f.Bottom, got.Bottom)
	requirePlaneNear(t, Plane{0, 0, 1, 8}, got.Far)
	requirePlaneNear(t, Plane{0, 0, -1, 1}, got.Near)

	// the source is untouched
	requirePlaneNear(t, Plane{1, 0, 0, 1}, f.Left)
}

func TestSpaceString(t *testing.T) {
	require.Equal(t, "inside", Inside.String())
	require.Equal(t, "outside", Outside.String())
	require.Equal(t, "intersect", Intersect.String())
}
