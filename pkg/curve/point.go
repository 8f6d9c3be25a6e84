package curve

import (
	"errors"

	"github.com/luxfi/zkattest/pkg/bigint"
)

// Point is a curve point in homogeneous projective coordinates (X:Y:Z),
// representing the affine point (X/Z, Y/Z) when Z != 0, and the identity
// when Z == 0 (by convention (0,1,0), matching original_source's Point).
type Point struct {
	curve   *Params
	x, y, z FieldElement
}

// AffinePoint is a curve point in affine coordinates. The identity is
// represented separately via infinity.
type AffinePoint struct {
	curve      *Params
	x, y       FieldElement
	isIdentity bool
}

// Curve returns the curve a point belongs to.
func (p Point) Curve() *Params       { return p.curve }
func (a AffinePoint) Curve() *Params { return a.curve }

// NewPoint builds a projective point from raw coordinates on c. Callers
// construct identity via c.Identity().
func NewPoint(c *Params, x, y, z FieldElement) Point {
	return Point{curve: c, x: x, y: y, z: z}
}

// IsIdentity reports whether p is the point at infinity.
func (p Point) IsIdentity() bool { return p.z.IsZero() }

// ToAffine converts p to affine coordinates. The identity maps to the
// affine identity marker.
func (p Point) ToAffine() AffinePoint {
	if p.IsIdentity() {
		return AffinePoint{curve: p.curve, isIdentity: true}
	}
	zInv := p.z.Inverse()
	return AffinePoint{
		curve: p.curve,
		x:     p.x.Mul(zInv),
		y:     p.y.Mul(zInv),
	}
}

// ToProjective lifts an affine point back into projective coordinates.
func (a AffinePoint) ToProjective() Point {
	if a.isIdentity {
		return a.curve.Identity()
	}
	return Point{curve: a.curve, x: a.x, y: a.y, z: a.curve.oneField()}
}

func (a AffinePoint) IsIdentity() bool { return a.isIdentity }
func (a AffinePoint) X() FieldElement  { return a.x }
func (a AffinePoint) Y() FieldElement  { return a.y }

// Equal compares two projective points via cross-multiplication, avoiding
// a field inversion (mirrors original_source/point.rs's PartialEq impl):
// (X1,Y1,Z1) == (X2,Y2,Z2) iff X1*Z2 == X2*Z1 and Y1*Z2 == Y2*Z1.
func (p Point) Equal(o Point) bool {
	return p.x.Mul(o.z).Equal(o.x.Mul(p.z)) && p.y.Mul(o.z).Equal(o.y.Mul(p.z))
}

func (a AffinePoint) Equal(o AffinePoint) bool {
	if a.isIdentity || o.isIdentity {
		return a.isIdentity == o.isIdentity
	}
	return a.x.Equal(o.x) && a.y.Equal(o.y)
}

// IsOnCurve checks y^2*z = x^3 + a*x*z^2 + b*z^3 (homogeneous Weierstrass
// equation); always true for the identity.
func (p Point) IsOnCurve() bool {
	if p.IsIdentity() {
		return true
	}
	c := p.curve
	aField := FieldElement{m: c.p, v: c.a}
	bField := FieldElement{m: c.p, v: c.b}
	lhs := p.y.Mul(p.y).Mul(p.z)
	x2 := p.x.Mul(p.x)
	z2 := p.z.Mul(p.z)
	rhs := x2.Mul(p.x).Add(aField.Mul(p.x).Mul(z2)).Add(bField.Mul(p.z).Mul(z2))
	return lhs.Equal(rhs)
}

// b3 returns the field constant 3*b used by the complete addition formulas.
func (c *Params) b3() FieldElement {
	bField := FieldElement{m: c.p, v: c.b}
	return bField.Add(bField).Add(bField)
}

// Add computes p+o using the complete (exception-free) addition formulas
// for short Weierstrass curves with a=0 (Renes-Costello-Batina, Algorithm
// 7), valid for any combination of inputs including identities and p==o.
func (p Point) Add(o Point) Point {
	c := p.curve
	x1, y1, z1 := p.x, p.y, p.z
	x2, y2, z2 := o.x, o.y, o.z
	b3 := c.b3()

	t0 := x1.Mul(x2)
	t1 := y1.Mul(y2)
	t2 := z1.Mul(z2)
	t3 := x1.Add(y1)
	t4 := x2.Add(y2)
	t3 = t3.Mul(t4)
	t4 = t0.Add(t1)
	t3 = t3.Sub(t4)
	t4 = y1.Add(z1)
	x3 := y2.Add(z2)
	t4 = t4.Mul(x3)
	x3 = t1.Add(t2)
	t4 = t4.Sub(x3)
	x3 = x1.Add(z1)
	y3 := x2.Add(z2)
	x3 = x3.Mul(y3)
	y3 = t0.Add(t2)
	y3 = x3.Sub(y3)
	x3 = t0.Add(t0)
	t0 = x3.Add(t0)
	t2 = b3.Mul(t2)
	z3 := t1.Add(t2)
	t1 = t1.Sub(t2)
	y3 = b3.Mul(y3)
	x3 = t4.Mul(y3)
	t2 = t3.Mul(t1)
	x3 = t2.Sub(x3)
	y3 = y3.Mul(t0)
	t1 = t1.Mul(z3)
	y3 = t1.Add(y3)
	t0 = t0.Mul(t3)
	z3 = z3.Mul(t4)
	z3 = z3.Add(t0)

	return Point{curve: c, x: x3, y: y3, z: z3}
}

// Double returns p+p.
func (p Point) Double() Point { return p.Add(p) }

// Neg returns the additive inverse of p.
func (p Point) Neg() Point {
	return Point{curve: p.curve, x: p.x, y: p.y.Neg(), z: p.z}
}

// Sub returns p-o.
func (p Point) Sub(o Point) Point { return p.Add(o.Neg()) }

func (a AffinePoint) Neg() AffinePoint {
	if a.isIdentity {
		return a
	}
	return AffinePoint{curve: a.curve, x: a.x, y: a.y.Neg()}
}

// ConditionalSelect returns a if choice==0, b if choice==1. Both inputs
// must be on the same curve.
func ConditionalSelect(a, b Point, choice int) Point {
	if choice == 0 {
		return a
	}
	return b
}

// ScalarMul returns s*p via constant-time-shaped double-and-add (MSB
// first), consulting every bit of the scalar's modulus width so the
// number of loop iterations does not depend on the magnitude of s.
func (p Point) ScalarMul(s Scalar) Point {
	c := p.curve
	result := c.Identity()
	v := s.v
	for i := 255; i >= 0; i-- {
		result = result.Double()
		limb := v[i/32]
		bit := (limb >> uint(i%32)) & 1
		if bit == 1 {
			result = result.Add(p)
		}
	}
	return result
}

// DoubleScalarMul computes a*p + b*q in a single simultaneous
// double-and-add pass (Straus/Shamir's trick with a 2-element table),
// mirroring original_source/point.rs's double_mul.
func DoubleScalarMul(p Point, a Scalar, q Point, b Scalar) Point {
	c := p.curve
	// Precompute table: index 0 unused(identity handled separately),
	// 1=p, 2=q, 3=p+q.
	pq := p.Add(q)
	result := c.Identity()
	av, bv := a.v, b.v
	for i := 255; i >= 0; i-- {
		result = result.Double()
		abit := (av[i/32] >> uint(i%32)) & 1
		bbit := (bv[i/32] >> uint(i%32)) & 1
		switch {
		case abit == 1 && bbit == 1:
			result = result.Add(pq)
		case abit == 1:
			result = result.Add(p)
		case bbit == 1:
			result = result.Add(q)
		}
	}
	return result
}

// Bytes encodes an affine point as 65 bytes: a leading 0x00 byte for the
// identity, or 0x04 followed by 32-byte big-endian x and y for a normal
// point (an uncompressed SEC1-style encoding).
func (a AffinePoint) Bytes() []byte {
	if a.isIdentity {
		return make([]byte, 65)
	}
	out := make([]byte, 65)
	out[0] = 0x04
	copy(out[1:33], a.x.v.Bytes())
	copy(out[33:65], a.y.v.Bytes())
	return out
}

// SetBytesAffine decodes the format produced by Bytes for curve c.
func SetBytesAffine(c *Params, b []byte) (AffinePoint, error) {
	if len(b) != 65 {
		return AffinePoint{}, errors.New("curve: SetBytes: input must be 65 bytes")
	}
	if b[0] == 0x00 {
		return AffinePoint{curve: c, isIdentity: true}, nil
	}
	if b[0] != 0x04 {
		return AffinePoint{}, errors.New("curve: SetBytes: unsupported point encoding tag")
	}
	var xu, yu bigint.U256
	if err := xu.SetBytes(b[1:33]); err != nil {
		return AffinePoint{}, err
	}
	if err := yu.SetBytes(b[33:65]); err != nil {
		return AffinePoint{}, err
	}
	out := AffinePoint{curve: c, x: newField(c, xu), y: newField(c, yu)}
	if !out.ToProjective().IsOnCurve() {
		return AffinePoint{}, errors.New("curve: SetBytes: point is not on curve")
	}
	return out, nil
}
