package main

import (
	"math"

	"openglhelper"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera defaults, trimmed from the teacher's pkg/render/constants.go down to
// what this demo's flying camera needs.
const (
	defaultYaw         = -90.0
	defaultPitch       = 0.0
	defaultFOV         = 70.0
	defaultMoveSpeed   = 24.0 // voxel units/sec, tuned for a render distance of a few TLCs
	defaultRotateSpeed = 0.12
	minPitch           = -89.0
	maxPitch           = 89.0
	minFOV             = 10.0
	maxFOV             = 100.0
)

// Camera is a flying demo camera driving the shift planner's per-frame
// camera-displacement input (spec.md §6's "camera displacement in TLC
// units"), adapted from the teacher's pkg/render/camera.go.
type Camera struct {
	position mgl32.Vec3
	worldUp  mgl32.Vec3
	front    mgl32.Vec3
	up       mgl32.Vec3
	right    mgl32.Vec3

	yaw   float32
	pitch float32

	fov         float32
	moveSpeed   float32
	rotateSpeed float32

	lastX      float64
	lastY      float64
	firstMouse bool

	projection mgl32.Mat4
	width      int
	height     int
}

// NewCamera creates a new camera with sensible defaults.
func NewCamera(position mgl32.Vec3) *Camera {
	camera := &Camera{
		position:    position,
		worldUp:     mgl32.Vec3{0, 1, 0},
		front:       mgl32.Vec3{0, 0, -1},
		yaw:         defaultYaw,
		pitch:       defaultPitch,
		fov:         defaultFOV,
		moveSpeed:   defaultMoveSpeed,
		rotateSpeed: defaultRotateSpeed,
		firstMouse:  true,
		width:       800,
		height:      600,
	}
	camera.updateCameraVectors()
	camera.updateProjectionMatrix()
	return camera
}

func (c *Camera) updateCameraVectors() {
	front := mgl32.Vec3{
		float32(math.Cos(float64(mgl32.DegToRad(c.yaw))) * math.Cos(float64(mgl32.DegToRad(c.pitch)))),
		float32(math.Sin(float64(mgl32.DegToRad(c.pitch)))),
		float32(math.Sin(float64(mgl32.DegToRad(c.yaw))) * math.Cos(float64(mgl32.DegToRad(c.pitch)))),
	}
	c.front = front.Normalize()
	c.right = c.front.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

func (c *Camera) updateProjectionMatrix() {
	aspect := float32(c.width) / float32(c.height)
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.fov), aspect, 0.1, 1000.0)
}

// UpdateProjectionMatrix updates the projection matrix with new dimensions.
func (c *Camera) UpdateProjectionMatrix(width, height int) {
	c.width = width
	c.height = height
	c.updateProjectionMatrix()
}

// ViewMatrix returns the current view matrix.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.position.Add(c.front), c.up)
}

// ProjectionMatrix returns the current projection matrix.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return c.projection
}

// Position returns the current camera position.
func (c *Camera) Position() mgl32.Vec3 {
	return c.position
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos mgl32.Vec3) {
	c.position = pos
}

// ProcessKeyboardInput moves the camera from WASD + Space/Shift input,
// returning the world-space displacement applied this frame so the caller
// can feed it to the shift planner.
func (c *Camera) ProcessKeyboardInput(deltaTime float32, window *openglhelper.Window) mgl32.Vec3 {
	start := c.position
	speed := c.moveSpeed * deltaTime

	if window.GetKeyState(glfw.KeyW) == glfw.Press {
		c.position = c.position.Add(c.front.Mul(speed))
	}
	if window.GetKeyState(glfw.KeyS) == glfw.Press {
		c.position = c.position.Sub(c.front.Mul(speed))
	}
	if window.GetKeyState(glfw.KeyA) == glfw.Press {
		c.position = c.position.Sub(c.right.Mul(speed))
	}
	if window.GetKeyState(glfw.KeyD) == glfw.Press {
		c.position = c.position.Add(c.right.Mul(speed))
	}
	if window.GetKeyState(glfw.KeySpace) == glfw.Press {
		c.position = c.position.Add(c.worldUp.Mul(speed))
	}
	if window.GetKeyState(glfw.KeyLeftShift) == glfw.Press {
		c.position = c.position.Sub(c.worldUp.Mul(speed))
	}

	return c.position.Sub(start)
}

// HandleMouseMovement updates camera orientation based on mouse movement.
func (c *Camera) HandleMouseMovement(xpos, ypos float64) {
	if c.firstMouse {
		c.lastX = xpos
		c.lastY = ypos
		c.firstMouse = false
		return
	}

	xoffset := float32(xpos - c.lastX)
	yoffset := float32(c.lastY - ypos)

	c.lastX = xpos
	c.lastY = ypos

	xoffset *= c.rotateSpeed
	yoffset *= c.rotateSpeed

	c.yaw += xoffset
	c.pitch += yoffset

	if c.pitch > maxPitch {
		c.pitch = maxPitch
	}
	if c.pitch < minPitch {
		c.pitch = minPitch
	}

	c.updateCameraVectors()
}

// HandleMouseScroll zooms the camera via FOV adjustment.
func (c *Camera) HandleMouseScroll(yoffset float64) {
	c.fov -= float32(yoffset)
	if c.fov < minFOV {
		c.fov = minFOV
	}
	if c.fov > maxFOV {
		c.fov = maxFOV
	}
	c.updateProjectionMatrix()
}

// ResetMouseState resets the first-mouse flag, e.g. after the window regains focus.
func (c *Camera) ResetMouseState() {
	c.firstMouse = true
}
