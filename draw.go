package main

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/spine/skeleton"
	"golang.org/x/image/colornames"
)

// view maps y-up skeleton space onto the y-down screen.
var view = mgl32.Translate2D(0, baseHeight).Mul3(mgl32.Scale2D(1, -1))

func toScreen(x, y float32) (float32, float32) {
	p := view.Mul3x1(mgl32.Vec3{x, y, 1})
	return p.X(), p.Y()
}

func slotColor(skel *skeleton.Skeleton, slot *skeleton.Slot, tint skeleton.Color) color.RGBA {
	c := skel.Color
	s := slot.Color
	return color.RGBA{
		R: uint8(c.R * s.R * tint.R * 255),
		G: uint8(c.G * s.G * tint.G * 255),
		B: uint8(c.B * s.B * tint.B * 255),
		A: uint8(c.A * s.A * tint.A * 255),
	}
}

func strokePolygon(screen *ebiten.Image, verts []float32, closed bool, width float32, clr color.Color) {
	n := len(verts) / 2
	if n < 2 {
		return
	}
	segments := n - 1
	if closed {
		segments = n
	}
	for i := 0; i < segments; i++ {
		j := (i + 1) % n
		x0, y0 := toScreen(verts[i*2], verts[i*2+1])
		x1, y1 := toScreen(verts[j*2], verts[j*2+1])
		vector.StrokeLine(screen, x0, y0, x1, y1, width, clr, true)
	}
}

func drawSkeleton(screen *ebiten.Image, skel *skeleton.Skeleton, debug, selected bool) {
	if skel == nil {
		return
	}

	var verts []float32
	for _, slot := range skel.DrawOrder {
		switch att := slot.Attachment().(type) {
		case *skeleton.RegionAttachment:
			verts = att.ComputeWorldVertices(slot.Bone, verts)
			strokePolygon(screen, verts, true, 2, slotColor(skel, slot, att.Color))
		case *skeleton.BoundingBoxAttachment:
			if debug {
				verts = att.ComputeWorldVertices(slot, verts)
				strokePolygon(screen, verts, true, 1, colornames.Lime)
			}
		case *skeleton.PathAttachment:
			if debug {
				verts = att.ComputeWorldVertices(slot, verts)
				strokePolygon(screen, verts, att.Closed, 1, colornames.Orange)
			}
		case *skeleton.MeshAttachment:
			verts = drawMesh(screen, skel, slot, att, verts)
		case *skeleton.LinkedMeshAttachment:
			verts = drawMesh(screen, skel, slot, &att.MeshAttachment, verts)
		}
	}

	if !debug && !selected {
		return
	}
	boneColor := colornames.Lightgrey
	if selected {
		boneColor = colornames.Gold
	}
	for _, b := range skel.Bones {
		x0, y0 := toScreen(b.WorldX, b.WorldY)
		if length := b.Data.Length; length > 0 {
			tip := view.Mul3(b.WorldMatrix()).Mul3x1(mgl32.Vec3{length, 0, 1})
			vector.StrokeLine(screen, x0, y0, tip.X(), tip.Y(), 2, boneColor, true)
		}
		vector.StrokeCircle(screen, x0, y0, 3, 1, colornames.Tomato, true)
	}
}

// drawMesh outlines the hull and marks every vertex.
func drawMesh(screen *ebiten.Image, skel *skeleton.Skeleton, slot *skeleton.Slot, mesh *skeleton.MeshAttachment, verts []float32) []float32 {
	verts = mesh.ComputeWorldVertices(slot, verts)
	clr := slotColor(skel, slot, mesh.Color)
	if hull := mesh.HullLength; hull > 0 && hull <= len(verts) {
		strokePolygon(screen, verts[:hull], true, 2, clr)
	}
	for i := 0; i+1 < len(verts); i += 2 {
		x, y := toScreen(verts[i], verts[i+1])
		vector.FillCircle(screen, x, y, 2, clr, true)
	}
	return verts
}
