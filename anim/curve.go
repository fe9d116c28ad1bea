package anim

import "github.com/milk9111/spine/common"

type CurveType int

const (
	CurveLinear CurveType = iota
	CurveStepped
	CurveBezier
)

const bezierSegments = 10

// Curves holds the easing of each keyframe segment. The curve of frame i
// shapes the transition from frame i to frame i+1.
type Curves struct {
	kinds  []CurveType
	points [][]float32
}

func newCurves(frameCount int) Curves {
	n := max(frameCount-1, 0)
	return Curves{kinds: make([]CurveType, n), points: make([][]float32, n)}
}

func (c *Curves) SetLinear(frame int) {
	if frame < 0 || frame >= len(c.kinds) {
		return
	}
	c.kinds[frame] = CurveLinear
	c.points[frame] = nil
}

func (c *Curves) SetStepped(frame int) {
	if frame < 0 || frame >= len(c.kinds) {
		return
	}
	c.kinds[frame] = CurveStepped
	c.points[frame] = nil
}

// SetBezier sets a cubic bezier with control points (cx1, cy1) and (cx2, cy2)
// in the unit square. The curve is sampled into a fixed table once here.
func (c *Curves) SetBezier(frame int, cx1, cy1, cx2, cy2 float32) {
	if frame < 0 || frame >= len(c.kinds) {
		return
	}
	tmpx := (-cx1*2 + cx2) * 0.03
	tmpy := (-cy1*2 + cy2) * 0.03
	dddfx := ((cx1-cx2)*3 + 1) * 0.006
	dddfy := ((cy1-cy2)*3 + 1) * 0.006
	ddfx := tmpx*2 + dddfx
	ddfy := tmpy*2 + dddfy
	dfx := cx1*0.3 + tmpx + dddfx*0.16666667
	dfy := cy1*0.3 + tmpy + dddfy*0.16666667

	pts := make([]float32, (bezierSegments-1)*2)
	x, y := dfx, dfy
	for i := 0; i < len(pts); i += 2 {
		pts[i] = x
		pts[i+1] = y
		dfx += ddfx
		dfy += ddfy
		ddfx += dddfx
		ddfy += dddfy
		x += dfx
		y += dfy
	}
	c.kinds[frame] = CurveBezier
	c.points[frame] = pts
}

func (c *Curves) Type(frame int) CurveType {
	if frame < 0 || frame >= len(c.kinds) {
		return CurveLinear
	}
	return c.kinds[frame]
}

// Percent maps the linear progress through a segment onto its curve.
func (c *Curves) Percent(frame int, percent float32) float32 {
	percent = common.Clamp(percent, 0, 1)
	switch c.Type(frame) {
	case CurveStepped:
		return 0
	case CurveBezier:
	default:
		return percent
	}

	pts := c.points[frame]
	var x float32
	for i := 0; i < len(pts); i += 2 {
		x = pts[i]
		if x >= percent {
			var prevX, prevY float32
			if i > 0 {
				prevX, prevY = pts[i-2], pts[i-1]
			}
			if x == prevX {
				return pts[i+1]
			}
			return prevY + (pts[i+1]-prevY)*(percent-prevX)/(x-prevX)
		}
	}
	y := pts[len(pts)-1]
	if x >= 1 {
		return y
	}
	return y + (1-y)*(percent-x)/(1-x)
}
