package dynamo

import "math"

// Vec3 is a Cartesian vector.
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

func (v Vec3) Norm2() float64 {
	return v.Dot(v)
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Norm2())
}

// IsValid reports whether every component is finite.
func (v Vec3) IsValid() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Wrap maps x into [-length/2, length/2). Values already inside the
// interval are returned unchanged, so Wrap is idempotent.
func Wrap(x, length float64) float64 {
	half := 0.5 * length
	if x >= -half && x < half {
		return x
	}
	x -= length * math.Floor(x/length+0.5)
	if x >= half {
		x -= length
	} else if x < -half {
		x += length
	}
	return x
}

// WrapVec applies Wrap to each component. Applied to a separation vector it
// yields the minimum-image displacement.
func WrapVec(v Vec3, length float64) Vec3 {
	return Vec3{Wrap(v[0], length), Wrap(v[1], length), Wrap(v[2], length)}
}

// Zero sets every vector in vs to the zero vector.
func Zero(vs []Vec3) {
	for i := range vs {
		vs[i] = Vec3{}
	}
}
