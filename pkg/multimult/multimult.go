// Package multimult implements batched verification of many "this linear
// combination of points equals the identity" relations via a single
// multi-scalar multiplication, using random linear combination
// (Schwartz-Zippel) so that checking N relations costs one big MSM instead
// of N separate point additions-to-identity checks.
package multimult

import (
	"io"

	"github.com/luxfi/zkattest/pkg/curve"
)

// term is one (scalar, point) pair contributed to the aggregate MSM.
type term struct {
	scalar curve.Scalar
	point  curve.AffinePoint
}

// MultiMult accumulates terms from many relations, each scaled by an
// independent random coefficient, and checks that the resulting combined
// sum is the identity point.
type MultiMult struct {
	c     *curve.Params
	rng   io.Reader
	terms []term
}

// New starts a MultiMult engine for curve c.
func New(c *curve.Params, rng io.Reader) *MultiMult {
	return &MultiMult{c: c, rng: rng}
}

// Relation represents one "sum of scalar*point terms == identity" equation
// a verifier wants checked; terms are accumulated via Insert and folded
// into the shared MultiMult via Drain.
type Relation struct {
	terms []term
}

// NewRelation starts an empty relation.
func NewRelation() *Relation { return &Relation{} }

// Insert adds scalar*point to the relation.
func (r *Relation) Insert(point curve.AffinePoint, scalar curve.Scalar) {
	r.terms = append(r.terms, term{scalar: scalar, point: point})
}

// Drain folds relation into mm, scaling every one of its terms by a single
// fresh random coefficient rho, then clears relation so it cannot
// accidentally be drained twice.
func (mm *MultiMult) Drain(r *Relation) error {
	rho, err := curve.RandomScalar(mm.rng, mm.c)
	if err != nil {
		return err
	}
	for _, t := range r.terms {
		mm.terms = append(mm.terms, term{scalar: t.scalar.Mul(rho), point: t.point})
	}
	r.terms = nil
	return nil
}

// InsertKnown adds scalar*point directly to the aggregate without routing
// it through a per-relation random coefficient -- used for terms that are
// already safe to combine without re-randomization (e.g. a single relation
// whose soundness doesn't depend on batching).
func (mm *MultiMult) InsertKnown(point curve.AffinePoint, scalar curve.Scalar) {
	mm.terms = append(mm.terms, term{scalar: scalar, point: point})
}

// Evaluate computes the windowed (4-bit, Straus-style) simultaneous
// multi-scalar multiplication of every accumulated term and returns
// whether the sum is the identity point -- i.e. whether every drained
// relation held, with overwhelming probability over the random
// coefficients chosen in Drain.
func (mm *MultiMult) Evaluate() bool {
	if len(mm.terms) == 0 {
		return true
	}
	sum := straus(mm.c, mm.terms)
	return sum.IsIdentity()
}

const windowBits = 4
const windowSize = 1 << windowBits

// straus computes the simultaneous multi-scalar multiplication
// sum(scalar_i * point_i) using a shared 4-bit window scanned MSB-first
// across all 256 scalar bits, with one precomputed table per point
// (1..15 small multiples). This trades O(windowSize) precomputed points
// per term for roughly 1/windowBits as many doublings as naive per-term
// double-and-add.
func straus(c *curve.Params, terms []term) curve.Point {
	type table struct {
		multiples [windowSize]curve.Point // multiples[k] = k*point, k=0..15
	}

	tables := make([]table, len(terms))
	for i, t := range terms {
		p := t.point.ToProjective()
		tbl := &tables[i]
		tbl.multiples[0] = c.Identity()
		tbl.multiples[1] = p
		for k := 2; k < windowSize; k++ {
			tbl.multiples[k] = tbl.multiples[k-1].Add(p)
		}
	}

	acc := c.Identity()
	for window := 256/windowBits - 1; window >= 0; window-- {
		for b := 0; b < windowBits; b++ {
			acc = acc.Double()
		}
		for i, t := range terms {
			digit := scalarWindow(t.scalar, window)
			if digit != 0 {
				acc = acc.Add(tables[i].multiples[digit])
			}
		}
	}
	return acc
}

// scalarWindow extracts the windowBits-wide digit at position window
// (0 = least significant window) from s's canonical representative. Since
// windowBits (4) evenly divides the 32-bit limb width, a window never
// straddles a limb boundary.
func scalarWindow(s curve.Scalar, window int) int {
	v := s.U256()
	bitOffset := window * windowBits
	limbIdx := bitOffset / 32
	bitInLimb := bitOffset % 32
	digit := (v[limbIdx] >> uint(bitInLimb)) & (windowSize - 1)
	return int(digit)
}
