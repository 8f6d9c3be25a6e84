package curve

import (
	"io"

	"github.com/luxfi/zkattest/pkg/bigint"
)

// FieldElement is an element of a curve's base field F_p.
type FieldElement struct {
	m *bigint.Modulus
	v bigint.U256
}

// Scalar is an element of a curve's scalar field F_q (the group order).
type Scalar struct {
	m *bigint.Modulus
	v bigint.U256
}

func newField(c *Params, v bigint.U256) FieldElement { return FieldElement{m: c.p, v: v} }
func newScalar(c *Params, v bigint.U256) Scalar       { return Scalar{m: c.q, v: v} }

// FieldElementFromU256 builds a base-field element of c, reducing v mod p.
func FieldElementFromU256(c *Params, v bigint.U256) FieldElement {
	return FieldElement{m: c.p, v: c.p.Add(v, bigint.Zero)}
}

// ScalarFromU256 builds a scalar-field element of c, reducing v mod q.
func ScalarFromU256(c *Params, v bigint.U256) Scalar {
	return Scalar{m: c.q, v: c.q.Add(v, bigint.Zero)}
}

// ZeroScalar returns the additive identity of c's scalar field.
func ZeroScalar(c *Params) Scalar { return Scalar{m: c.q, v: bigint.Zero} }

// OneScalar returns the multiplicative identity of c's scalar field.
func OneScalar(c *Params) Scalar { return Scalar{m: c.q, v: bigint.One} }

// RandomScalar draws a uniformly random nonzero scalar for c.
func RandomScalar(rng io.Reader, c *Params) (Scalar, error) {
	for {
		v, err := bigint.Random(rng, c.q.Value())
		if err != nil {
			return Scalar{}, err
		}
		if !v.IsZero() {
			return Scalar{m: c.q, v: v}, nil
		}
	}
}

func (f FieldElement) U256() bigint.U256 { return f.v }
func (s Scalar) U256() bigint.U256       { return s.v }

func (f FieldElement) IsZero() bool { return f.v.IsZero() }
func (s Scalar) IsZero() bool       { return s.v.IsZero() }

func (f FieldElement) Add(o FieldElement) FieldElement { return FieldElement{m: f.m, v: f.m.Add(f.v, o.v)} }
func (f FieldElement) Sub(o FieldElement) FieldElement { return FieldElement{m: f.m, v: f.m.Sub(f.v, o.v)} }
func (f FieldElement) Mul(o FieldElement) FieldElement { return FieldElement{m: f.m, v: f.m.Mul(f.v, o.v)} }
func (f FieldElement) Neg() FieldElement               { return FieldElement{m: f.m, v: f.m.Neg(f.v)} }
func (f FieldElement) Inverse() FieldElement            { return FieldElement{m: f.m, v: f.m.Inverse(f.v)} }
func (f FieldElement) Equal(o FieldElement) bool        { return f.v == o.v }

func (s Scalar) Add(o Scalar) Scalar    { return Scalar{m: s.m, v: s.m.Add(s.v, o.v)} }
func (s Scalar) Sub(o Scalar) Scalar    { return Scalar{m: s.m, v: s.m.Sub(s.v, o.v)} }
func (s Scalar) Mul(o Scalar) Scalar    { return Scalar{m: s.m, v: s.m.Mul(s.v, o.v)} }
func (s Scalar) Neg() Scalar            { return Scalar{m: s.m, v: s.m.Neg(s.v)} }
func (s Scalar) Inverse() Scalar        { return Scalar{m: s.m, v: s.m.Inverse(s.v)} }
func (s Scalar) Equal(o Scalar) bool    { return s.v == o.v }

// ToCycleScalar bit-reinterprets a base-field element of c as a scalar of
// c's cycle companion curve. This is the operation the cycle relation
// exists to make sound: c's base-field prime equals the companion's group
// order, so the little-endian limb representation carries over unchanged,
// only the modulus it is reduced against changes.
func (f FieldElement) ToCycleScalar(cycle *Params) Scalar {
	return Scalar{m: cycle.q, v: f.v}
}
