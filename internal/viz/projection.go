package viz

import (
	"math"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/dynamo"
)

// Camera projects points of a unit cube centred at the origin onto the
// canvas with a simple perspective.
type Camera struct {
	RotX, RotY float64
	Zoom       float64
	Distance   float64
}

func NewCamera() *Camera {
	return &Camera{RotX: 0.4, RotY: 0.6, Zoom: 1, Distance: 3}
}

func (c *Camera) Rotate(dx, dy float64) {
	c.RotX += dx
	c.RotY += dy
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(8, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.2, c.Zoom/1.2) }

func (c *Camera) rotate(p dynamo.Vec3) dynamo.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p[1], p[2] = p[1]*cx-p[2]*sx, p[1]*sx+p[2]*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p[0], p[2] = p[0]*cy+p[2]*sy, -p[0]*sy+p[2]*cy
	return p
}

// Project maps p to dot coordinates on a sw x sh canvas. The flag is false
// for points behind the camera.
func (c *Camera) Project(p dynamo.Vec3, sw, sh int) (int, int, bool) {
	r := c.rotate(p)
	if r[2] >= c.Distance {
		return 0, 0, false
	}
	persp := c.Distance / (c.Distance - r[2])
	scale := math.Min(float64(sw), float64(sh)) / 2 * c.Zoom * persp
	return int(math.Round(r[0]*scale)) + sw/2, int(math.Round(-r[1]*scale)) + sh/2, true
}

var cubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

func cubeCorners() [8]dynamo.Vec3 {
	const s = 0.5
	return [8]dynamo.Vec3{
		{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s},
		{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s},
	}
}

// RenderBox draws the cell outline and one dot per particle.
func RenderBox(cv *Canvas, b *box.Box, cam *Camera) {
	if cv == nil || b == nil || cam == nil || b.Length <= 0 {
		return
	}
	sw, sh := cv.DotWidth(), cv.DotHeight()

	corners := cubeCorners()
	for _, e := range cubeEdges {
		x0, y0, ok0 := cam.Project(corners[e[0]], sw, sh)
		x1, y1, ok1 := cam.Project(corners[e[1]], sw, sh)
		if ok0 && ok1 {
			cv.DrawLine(x0, y0, x1, y1)
		}
	}

	inv := 1 / b.Length
	for _, r := range b.Coordinates {
		if x, y, ok := cam.Project(r.Scale(inv), sw, sh); ok {
			cv.Set(x, y)
		}
	}
}
