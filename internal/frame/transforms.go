package frame

import (
	"github.com/go-gl/mathgl/mgl32"

	"marble-maze/internal/camera"
	"marble-maze/internal/physics"
)

// DepthRemap maps OpenGL clip depth [-1,1] to [0,1]: z' = 0.5·z + 0.5·w.
func DepthRemap() mgl32.Mat4 {
	return mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0.5, 0,
		0, 0, 0.5, 1,
	}
}

// Projection is a right-handed perspective with vertical field of view fovDeg (degrees),
// followed by DepthRemap.
func Projection(fovDeg, aspect, near, far float32) mgl32.Mat4 {
	return DepthRemap().Mul4(mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far))
}

// LookAt builds the view matrix for v.
func LookAt(v camera.View) mgl32.Mat4 {
	return mgl32.LookAtV(v.Eye, v.Target, v.Up)
}

// BoardModel places the board. The rendered board never rotates; only gravity does.
func BoardModel(pos [3]float32) mgl32.Mat4 {
	return mgl32.Translate3D(pos[0], pos[1], pos[2])
}

// BallModel is translation·rotation for the ball pose.
func BallModel(p physics.Pose) mgl32.Mat4 {
	r := p.Rotation
	return mgl32.Translate3D(p.Position[0], p.Position[1], p.Position[2]).Mul4(QuatMatrix(r[0], r[1], r[2], r[3]))
}

// QuatMatrix returns the rotation matrix of the unit quaternion (x, y, z, w).
// A zero quaternion yields the identity.
func QuatMatrix(x, y, z, w float32) mgl32.Mat4 {
	q := mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
	if q.Len() == 0 {
		return mgl32.Ident4()
	}
	return q.Normalize().Mat4()
}

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// GroundPlane is the horizontal plane y = height.
func GroundPlane(height float32) Plane {
	return Plane{Normal: mgl32.Vec3{0, 1, 0}, D: -height}
}

// Distance is the signed distance from p to the plane, assuming a unit normal.
func (pl Plane) Distance(p mgl32.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.D
}

// ShadowMatrix projects geometry onto pl along rays from the point light: dot(P,L)·I − L⊗P.
// Points on the plane are fixed points (up to the homogeneous divide).
func ShadowMatrix(pl Plane, light mgl32.Vec3) mgl32.Mat4 {
	p := pl.Normal.Vec4(pl.D)
	l := light.Vec4(1)
	d := p.Dot(l)
	var m mgl32.Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			v := -l[row] * p[col]
			if row == col {
				v += d
			}
			m[col*4+row] = v
		}
	}
	return m
}
