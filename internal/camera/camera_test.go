package camera

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/clusterindex/internal/config"
	"github.com/Faultbox/clusterindex/pkg/frustum"
	"github.com/Faultbox/clusterindex/pkg/geom"
	"github.com/Faultbox/clusterindex/pkg/math"
)

func newCamera() *FlyCamera {
	return New(config.Default().Camera)
}

func TestNew(t *testing.T) {
	c := newCamera()

	require.InDelta(t, 70*gomath.Pi/180, c.FOV, 1e-6)
	require.Equal(t, math.Vec3{Z: 1}, c.Direction)
	require.Equal(t, float32(300), c.Far)
}

func TestViewProjectionMatchesMGL(t *testing.T) {
	c := newCamera()
	c.Position = math.Vec3{X: 8, Y: 80, Z: -20}
	c.LookAt(math.Vec3{X: 8, Y: 64, Z: 8})

	eye := mgl32.Vec3{8, 80, -20}
	dir := mgl32.Vec3{c.Direction.X, c.Direction.Y, c.Direction.Z}
	want := mgl32.Perspective(c.FOV, c.Aspect, c.Near, c.Far).
		Mul4(mgl32.LookAtV(eye, eye.Add(dir), mgl32.Vec3{0, 1, 0}))

	got := c.ViewProjection()
	for i := range got {
		require.InDelta(t, want[i], got[i], 1e-3, "element %d", i)
	}
}

func TestFrustum(t *testing.T) {
	c := newCamera()
	f := c.Frustum()

	require.Equal(t, frustum.Inside, f.Point(math.Vec3{Z: 50}))
	require.Equal(t, frustum.Outside, f.Point(math.Vec3{Z: -50}))
	require.Equal(t, frustum.Outside, f.Point(math.Vec3{Z: 400}))
	require.Equal(t, frustum.Outside, f.Sphere(geom.BSphere{X: 500, Z: 50, D: 4}))
}

func TestShifted(t *testing.T) {
	c := newCamera()
	c.Position = math.Vec3{X: 8, Y: 70, Z: 8}

	require.Equal(t, frustum.Translate(c.Frustum(), 4, 10), c.Shifted(4, 10))

	still := c.Shifted(0, 0).Planes()
	for i, p := range c.Frustum().Planes() {
		for j := range p {
			require.InDelta(t, p[j], still[i][j], 1e-3)
		}
	}
}

func TestSetAngles(t *testing.T) {
	c := newCamera()

	c.SetAngles(float32(gomath.Pi/2), 0)
	require.InDelta(t, 1, c.Direction.X, 1e-6)
	require.InDelta(t, 0, c.Direction.Z, 1e-6)

	c.SetAngles(0, 10)
	require.InDelta(t, gomath.Sin(1.5), c.Direction.Y, 1e-6)
	require.InDelta(t, 1, c.Direction.Length(), 1e-6)
}

func TestMove(t *testing.T) {
	c := newCamera()
	c.SetAngles(0, -0.8)

	c.Move(10, 0, 0)
	require.InDelta(t, 0, c.Position.X, 1e-5)
	require.InDelta(t, 0, c.Position.Y, 1e-5)
	require.InDelta(t, 10, c.Position.Z, 1e-5)

	c.Move(0, 2, 3)
	require.InDelta(t, 2, gomath.Abs(float64(c.Position.X)), 1e-5)
	require.InDelta(t, 3, c.Position.Y, 1e-5)
}

func TestIsPointRenderable(t *testing.T) {
	c := newCamera()

	tests := []struct {
		name string
		p    math.Vec3
		want bool
	}{
		{"close behind", math.Vec3{Z: -10}, true},
		{"ahead", math.Vec3{Z: 100}, true},
		{"beyond far", math.Vec3{Z: 301}, false},
		{"behind", math.Vec3{Z: -100}, false},
		{"off to the side", math.Vec3{X: 100, Z: 20}, false},
		{"inside cone", math.Vec3{X: 40, Z: 100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, c.IsPointRenderable(tt.p))
		})
	}
}

func TestIsPointRenderableWideFOV(t *testing.T) {
	c := newCamera()
	c.FOV = 3

	require.True(t, c.IsPointRenderable(math.Vec3{X: 100, Z: 1}))
	require.False(t, c.IsPointRenderable(math.Vec3{X: 100, Z: -1}))
}
