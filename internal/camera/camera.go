// Package camera provides the fly camera the culling core is driven by.
package camera

import (
	gomath "math"

	"github.com/Faultbox/clusterindex/internal/config"
	"github.com/Faultbox/clusterindex/pkg/frustum"
	"github.com/Faultbox/clusterindex/pkg/math"
)

// nearRadiusSq is the squared distance under which points are always
// rendered: the diagonal of an 8 voxel cube.
const nearRadiusSq = 3 * 8 * 8

// coneFactor scales the field of view into the half angle of the cheap
// visibility cone used by IsPointRenderable.
const coneFactor = 0.7072

// FlyCamera is a free moving perspective camera.
type FlyCamera struct {
	Position  math.Vec3
	Direction math.Vec3 // unit length

	FOV    float32 // vertical, radians
	Aspect float32
	Near   float32
	Far    float32

	// Constraints
	MinPitch float32
	MaxPitch float32
}

// New creates a camera at the origin looking down +Z.
func New(cfg config.CameraConfig) *FlyCamera {
	return &FlyCamera{
		Direction: math.Vec3{Z: 1},
		FOV:       cfg.FOV * gomath.Pi / 180,
		Aspect:    cfg.Aspect,
		Near:      cfg.Near,
		Far:       cfg.Far,
		MinPitch:  -1.5,
		MaxPitch:  1.5,
	}
}

// Projection returns the perspective projection matrix.
func (c *FlyCamera) Projection() math.Mat4 {
	return math.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// View returns the view matrix with +Y up.
func (c *FlyCamera) View() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position, c.Position.Add(c.Direction), up)
}

// ViewProjection returns projection * view.
func (c *FlyCamera) ViewProjection() math.Mat4 {
	return c.Projection().Mul(c.View())
}

// Frustum returns the world space view frustum.
func (c *FlyCamera) Frustum() frustum.Frustum {
	return frustum.Extract(c.ViewProjection())
}

// Shifted returns the frustum of the camera moved by (dx, 0, dz) without
// rebuilding its matrices.
func (c *FlyCamera) Shifted(dx, dz float32) frustum.Frustum {
	return frustum.Translate(c.Frustum(), dx, dz)
}

// SetAngles points the camera by yaw (around +Y, 0 = +Z) and pitch
// (positive looks up). Pitch is clamped so the view never aligns with up.
func (c *FlyCamera) SetAngles(yaw, pitch float32) {
	if pitch < c.MinPitch {
		pitch = c.MinPitch
	}
	if pitch > c.MaxPitch {
		pitch = c.MaxPitch
	}

	cp := float32(gomath.Cos(float64(pitch)))
	c.Direction = math.Vec3{
		X: cp * float32(gomath.Sin(float64(yaw))),
		Y: float32(gomath.Sin(float64(pitch))),
		Z: cp * float32(gomath.Cos(float64(yaw))),
	}.Normalize()
}

// LookAt points the camera at target.
func (c *FlyCamera) LookAt(target math.Vec3) {
	if d := target.Sub(c.Position).Normalize(); d != (math.Vec3{}) {
		c.Direction = d
	}
}

// Move translates the camera. Forward and right follow the view direction
// projected on the XZ plane; up is world +Y.
func (c *FlyCamera) Move(forward, right, up float32) {
	dir := math.Vec3{X: c.Direction.X, Z: c.Direction.Z}.Normalize()
	side := math.Vec3{X: -dir.Z, Z: dir.X}

	c.Position = c.Position.
		Add(dir.Scale(forward)).
		Add(side.Scale(right)).
		Add(math.Vec3{Y: up})
}

// IsPointRenderable is a cheap visibility guess for a point, used before
// any plane test. Points close to the camera always pass; points beyond
// the far distance, behind the camera or outside a cone around the view
// direction are rejected.
func (c *FlyCamera) IsPointRenderable(p math.Vec3) bool {
	rel := p.Sub(c.Position)

	dist := rel.LengthSq()
	if dist <= nearRadiusSq {
		return true
	}
	if dist > c.Far*c.Far {
		return false
	}

	dot := c.Direction.Dot(rel)
	if dot < 0 {
		return false
	}

	half := float64(c.FOV) * coneFactor
	if half >= gomath.Pi/2 {
		return true
	}
	cos2 := float32(gomath.Cos(half) * gomath.Cos(half))
	return dot*dot/dist >= cos2
}
