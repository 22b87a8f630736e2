package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RVec3 is a world-space position.
type RVec3 = mgl32.Vec3

const epsilon = 1e-6

var (
	AxisY    = mgl32.Vec3{0, 1, 0}
	Identity = mgl32.QuatIdent()
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

func emptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func (b AABB) Valid() bool {
	return b.Min.X() <= b.Max.X() && b.Min.Y() <= b.Max.Y() && b.Min.Z() <= b.Max.Z()
}

func (b AABB) Encapsulate(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

func (b AABB) Union(o AABB) AABB {
	if !o.Valid() {
		return b
	}
	return b.Encapsulate(o.Min).Encapsulate(o.Max)
}

func (b AABB) Expand(r float32) AABB {
	d := mgl32.Vec3{r, r, r}
	return AABB{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

func (b AABB) Overlaps(o AABB) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] < o.Min[i] || o.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Transformed returns the bounds of b after rotating by rot and moving by pos.
func (b AABB) Transformed(pos mgl32.Vec3, rot mgl32.Quat) AABB {
	out := emptyAABB()
	for i := 0; i < 8; i++ {
		c := mgl32.Vec3{b.Min.X(), b.Min.Y(), b.Min.Z()}
		if i&1 != 0 {
			c[0] = b.Max.X()
		}
		if i&2 != 0 {
			c[1] = b.Max.Y()
		}
		if i&4 != 0 {
			c[2] = b.Max.Z()
		}
		out = out.Encapsulate(pos.Add(rot.Rotate(c)))
	}
	return out
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

// closestOnSegment returns the point of segment ab closest to p.
func closestOnSegment(p, a, b mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den < epsilon {
		return a
	}
	return a.Add(ab.Mul(clamp01(p.Sub(a).Dot(ab) / den)))
}

// closestSegmentSegment returns the closest points between segments p1q1
// and p2q2 (Ericson, Real-Time Collision Detection 5.1.9).
func closestSegmentSegment(p1, q1, p2, q2 mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	d1, d2 := q1.Sub(p1), q2.Sub(p2)
	r := p1.Sub(p2)
	a, e := d1.Dot(d1), d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float32
	switch {
	case a <= epsilon && e <= epsilon:
		return p1, p2
	case a <= epsilon:
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= epsilon {
			s = clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			den := a*e - b*b
			if den > epsilon {
				s = clamp01((b*f - c*e) / den)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / a)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

// closestOnTriangle returns the point of triangle abc closest to p
// (Ericson 5.1.5).
func closestOnTriangle(p, a, b, c mgl32.Vec3) mgl32.Vec3 {
	ab, ac, ap := b.Sub(a), c.Sub(a), p.Sub(a)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}
	bp := p.Sub(b)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Mul(d1 / (d1 - d3)))
	}
	cp := p.Sub(c)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Mul(d2 / (d2 - d6)))
	}
	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return b.Add(c.Sub(b).Mul((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}
	den := 1 / (va + vb + vc)
	v, w := vb*den, vc*den
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}

// closestSegmentTriangle returns the closest points between segment pq and
// triangle abc. The first point lies on the segment.
func closestSegmentTriangle(p, q, a, b, c mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	// Segment piercing the triangle.
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() > epsilon {
		dp, dq := n.Dot(p.Sub(a)), n.Dot(q.Sub(a))
		if dp*dq < 0 {
			x := p.Add(q.Sub(p).Mul(dp / (dp - dq)))
			if y := closestOnTriangle(x, a, b, c); y.Sub(x).Len() < epsilon {
				return x, x
			}
		}
	}

	bestS := p
	bestT := closestOnTriangle(p, a, b, c)
	best := bestT.Sub(bestS).LenSqr()
	try := func(s, t mgl32.Vec3) {
		if d := t.Sub(s).LenSqr(); d < best {
			best, bestS, bestT = d, s, t
		}
	}
	try(q, closestOnTriangle(q, a, b, c))
	try(closestSegmentSegment(p, q, a, b))
	try(closestSegmentSegment(p, q, b, c))
	try(closestSegmentSegment(p, q, c, a))
	return bestS, bestT
}
