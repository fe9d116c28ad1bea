package skeleton

import "github.com/milk9111/spine/common"

// Color is a straight (non premultiplied) RGBA tint with channels in [0, 1].
type Color struct {
	R, G, B, A float32
}

var White = Color{R: 1, G: 1, B: 1, A: 1}

func NewColor(r, g, b, a float32) Color {
	c := Color{R: r, G: g, B: b, A: a}
	c.Clamp()
	return c
}

func (c *Color) Set(r, g, b, a float32) {
	c.R, c.G, c.B, c.A = r, g, b, a
	c.Clamp()
}

func (c *Color) SetFrom(o Color) {
	*c = o
}

// Add offsets every channel and clamps the result.
func (c *Color) Add(r, g, b, a float32) {
	c.R += r
	c.G += g
	c.B += b
	c.A += a
	c.Clamp()
}

func (c *Color) Clamp() {
	c.R = common.Clamp(c.R, 0, 1)
	c.G = common.Clamp(c.G, 0, 1)
	c.B = common.Clamp(c.B, 0, 1)
	c.A = common.Clamp(c.A, 0, 1)
}
