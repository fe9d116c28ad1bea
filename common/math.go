package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DegRad = math.Pi / 180
	RadDeg = 180 / math.Pi
)

func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func Sqrt(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func SinDeg(deg float32) float32 {
	return float32(math.Sin(float64(deg) * DegRad))
}

func CosDeg(deg float32) float32 {
	return float32(math.Cos(float64(deg) * DegRad))
}

func Atan2Deg(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)) * RadDeg)
}

func Atan2(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

// WrapDegrees maps an angle into [-180, 180].
func WrapDegrees(deg float32) float32 {
	return deg - float32(16384-int(16384.499999999996-float64(deg)/360))*360
}

// Affine packs a 2x2 linear part and a translation into a column-major Mat3.
func Affine(a, b, c, d, x, y float32) mgl32.Mat3 {
	return mgl32.Mat3{
		a, c, 0,
		b, d, 0,
		x, y, 1,
	}
}
