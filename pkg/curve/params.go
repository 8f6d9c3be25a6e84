// Package curve implements short Weierstrass curve arithmetic (y^2 = x^3 +
// a*x + b) over a pair of "cycling" 256-bit prime-order curves: Secp256k1
// and its companion Tom256k1, whose base-field prime equals Secp256k1's
// group order and vice versa. That cycle lets a Pedersen commitment on one
// curve hide the coordinates of a point on the other curve bit-for-bit.
//
// Curves are represented as runtime *Params values (not compile-time
// generic tags) so that code can hold "the other curve of this one" as
// ordinary data, the same way the teacher's own curve package represents
// a curve choice as a value rather than a type parameter.
package curve

import (
	"errors"

	"github.com/luxfi/zkattest/pkg/bigint"
)

// ErrCurveMismatch is returned by pedersen.NewCycle when the two curves do
// not form a cycle, and when decoding a generator that names an unknown
// curve. Field and point arithmetic does not check curve membership.
var ErrCurveMismatch = errors.New("curve: operands belong to different curves")

// Params describes one member of a cycling curve pair: y^2 = x^3 + a*x + b
// over F_p, with a cyclic group of prime order q generated by (gx, gy).
type Params struct {
	Name string

	p *bigint.Modulus // base field modulus
	q *bigint.Modulus // scalar field modulus (group order)

	a, b bigint.U256 // curve coefficients, reduced mod p

	gx, gy bigint.U256 // generator affine coordinates
}

func hex32(s string) bigint.U256 {
	var out bigint.U256
	b := make([]byte, 32)
	if len(s) != 64 {
		panic("curve: hex32: constant must be exactly 64 hex characters")
	}
	for i := 0; i < 32; i++ {
		hi := hexNibble(s[2*i])
		lo := hexNibble(s[2*i+1])
		b[i] = hi<<4 | lo
	}
	if err := out.SetBytes(b); err != nil {
		panic(err)
	}
	return out
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		panic("curve: hex32: invalid hex digit")
	}
}

// newParams builds a Params from hex-encoded 64-character constants,
// matching the layout of original_source/tom256/src/lib.rs's Curve trait
// constants.
func newParams(name, primeModulus, order, gx, gy string, a, b uint32) *Params {
	return &Params{
		Name: name,
		p:    bigint.NewModulus(hex32(primeModulus)),
		q:    bigint.NewModulus(hex32(order)),
		a:    bigint.U256{a},
		b:    bigint.U256{b},
		gx:   hex32(gx),
		gy:   hex32(gy),
	}
}

// Secp256k1 is the signature curve: y^2 = x^3 + 7.
var Secp256k1 = newParams(
	"secp256k1",
	"fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f",
	"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141",
	"79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
	"483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8",
	0, 7,
)

// Tom256k1 is the cycle companion curve: its base-field prime equals
// Secp256k1's group order, and its own group order equals Secp256k1's
// base-field prime.
var Tom256k1 = newParams(
	"tom256k1",
	"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141",
	"fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f",
	"ac81a9587b8da43a9519bd50d96191fd8f2c4f66b8f1550e366e3c7f9ed18897",
	"6ad7d16db13c428e5dce61c8bfe2b3860a306d201f059826120e7ac684ee209f",
	0, 7,
)

// IsCycleOf reports whether c is the cycle companion of base: c's base-field
// prime must equal base's group order, and vice versa.
func (c *Params) IsCycleOf(base *Params) bool {
	return c.p.Value() == base.q.Value() && c.q.Value() == base.p.Value()
}

// Generator returns the curve's base point in affine form.
func (c *Params) Generator() AffinePoint {
	return AffinePoint{curve: c, x: FieldElement{m: c.p, v: c.gx}, y: FieldElement{m: c.p, v: c.gy}}
}

// Identity returns the point at infinity for this curve.
func (c *Params) Identity() Point {
	return Point{curve: c, x: c.zeroField(), y: c.oneField(), z: c.zeroField()}
}

func (c *Params) zeroField() FieldElement { return FieldElement{m: c.p, v: bigint.Zero} }
func (c *Params) oneField() FieldElement  { return FieldElement{m: c.p, v: bigint.One} }

// ScalarFieldOrder returns the group order q as a U256.
func (c *Params) ScalarFieldOrder() bigint.U256 { return c.q.Value() }

// BaseFieldPrime returns the base field prime p as a U256.
func (c *Params) BaseFieldPrime() bigint.U256 { return c.p.Value() }
