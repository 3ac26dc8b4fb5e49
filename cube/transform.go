package cube

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"spincube/gfx"
)

const (
	fovY  = float32(math.Pi) / 4
	zNear = 1
	zFar  = 100
)

var (
	eye    = mgl32.Vec3{0, 3, 5}
	center = mgl32.Vec3{0, 0, 0}
	up     = mgl32.Vec3{0, 1, 0}
)

// Transform holds the session's projection and the accumulated model-view.
type Transform struct {
	Projection mgl32.Mat4
	ModelView  mgl32.Mat4

	// width is the window width the session started with. Rotation speed is relative
	// to it even after a resize.
	width int
}

// NewTransform starts with a 45 degree perspective for the given size and the camera
// looking at the origin from (0, 3, 5).
func NewTransform(width, height int) Transform {
	return Transform{
		Projection: mgl32.Perspective(fovY, Aspect(width, height), zNear, zFar),
		ModelView:  mgl32.LookAtV(eye, center, up),
		width:      width,
	}
}

// Aspect returns width/height, or 1 for a degenerate size.
func Aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// RotationAngle is the Y rotation in radians applied for one tick: the cursor's horizontal
// position as a fraction of width, times two, per second.
func RotationAngle(elapsed, cursorX float64, width int) float32 {
	if width <= 0 {
		return 0
	}
	return float32(elapsed*cursorX/float64(width)) * 2
}

// Step rotates the model-view about the object's Y axis. mgl32 is column-major, so the
// rotation is the right-hand factor.
func (t *Transform) Step(elapsed, cursorX float64) {
	angle := RotationAngle(elapsed, cursorX, t.width)
	if angle == 0 {
		return
	}
	t.ModelView = t.ModelView.Mul4(mgl32.HomogRotate3DY(angle))
}

// Upload sends both matrices to p's uniforms.
func (t *Transform) Upload(d gfx.Driver, p Pipeline) {
	d.UniformMatrix4(p.Projection, false, t.Projection)
	t.UploadModelView(d, p)
}

// UploadModelView sends only the model-view, as done every tick.
func (t *Transform) UploadModelView(d gfx.Driver, p Pipeline) {
	d.UniformMatrix4(p.ModelView, false, t.ModelView)
}
