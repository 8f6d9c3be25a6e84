// Package pedersen implements Pedersen commitments over a single curve and
// over a cycling pair of curves, as used throughout the attestation proofs
// to hide scalars and point coordinates while keeping them provably bound
// to later-revealed values.
package pedersen

import (
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/zkattest/pkg/curve"
)

// Generator is a Pedersen commitment base pair (G, H) on one curve, where H
// is a second generator with unknown discrete log relative to G.
type Generator struct {
	c    *curve.Params
	g, h curve.AffinePoint
}

// NewGenerator builds a Generator for c, deriving H as a random scalar
// multiple of G (see hashToPoint). The scalar is discarded, so log_G(H) is
// not kept anywhere.
func NewGenerator(c *curve.Params, rng io.Reader) (Generator, error) {
	h, err := hashToPoint(c, rng)
	if err != nil {
		return Generator{}, err
	}
	return Generator{c: c, g: c.Generator(), h: h}, nil
}

// hashToPoint derives a second generator nothing-up-my-sleeve style: sample
// a random scalar and multiply the curve generator by it. The caller never
// learns the scalar after this function returns (it is discarded), so
// log_G(H) is not retained by anyone once H is built.
func hashToPoint(c *curve.Params, rng io.Reader) (curve.AffinePoint, error) {
	s, err := curve.RandomScalar(rng, c)
	if err != nil {
		return curve.AffinePoint{}, err
	}
	return c.Generator().ToProjective().ScalarMul(s).ToAffine(), nil
}

// Curve returns the curve this generator pair lives on.
func (g Generator) Curve() *curve.Params { return g.c }

// G returns the primary generator.
func (g Generator) G() curve.AffinePoint { return g.g }

// H returns the secondary (blinding) generator.
func (g Generator) H() curve.AffinePoint { return g.h }

// Commitment is a Pedersen commitment to a scalar value, C = value*G +
// randomness*H.
type Commitment struct {
	point curve.AffinePoint
}

// Point returns the commitment's curve point.
func (c Commitment) Point() curve.AffinePoint { return c.point }

// CommitmentFromPoint wraps an already-computed point as a Commitment,
// used when decoding a commitment from wire bytes rather than deriving it
// from Generator.Commit.
func CommitmentFromPoint(p curve.AffinePoint) Commitment { return Commitment{point: p} }

// Commit computes Commit(value, randomness) = value*G + randomness*H.
func (g Generator) Commit(value, randomness curve.Scalar) Commitment {
	vg := g.g.ToProjective().ScalarMul(value)
	rh := g.h.ToProjective().ScalarMul(randomness)
	return Commitment{point: vg.Add(rh).ToAffine()}
}

// CommitRandom draws fresh randomness and commits to value, returning both
// the commitment and the randomness used (the opening).
func CommitRandom(g Generator, value curve.Scalar, rng io.Reader) (Commitment, curve.Scalar, error) {
	r, err := curve.RandomScalar(rng, g.c)
	if err != nil {
		return Commitment{}, curve.Scalar{}, err
	}
	return g.Commit(value, r), r, nil
}

// Open reports whether commitment opens to (value, randomness) under g.
func (g Generator) Open(commitment Commitment, value, randomness curve.Scalar) bool {
	return g.Commit(value, randomness).point.Equal(commitment.point)
}

// Cycle pairs a Generator on each curve of a cycling pair, so a single
// proof can commit to scalars on curve A and, separately, to the
// coordinates of points on curve B using A's commitment scheme (and vice
// versa) -- the construction spec component D calls PedersenCycle.
type Cycle struct {
	base, cycle Generator
}

// NewCycle builds a Cycle from a base curve and its cycle companion.
func NewCycle(base, cycleCurve *curve.Params, rng io.Reader) (Cycle, error) {
	if !cycleCurve.IsCycleOf(base) {
		return Cycle{}, curve.ErrCurveMismatch
	}
	baseGen, err := NewGenerator(base, rng)
	if err != nil {
		return Cycle{}, err
	}
	cycleGen, err := NewGenerator(cycleCurve, rng)
	if err != nil {
		return Cycle{}, err
	}
	return Cycle{base: baseGen, cycle: cycleGen}, nil
}

// Base returns the generator pair for the signature curve.
func (c Cycle) Base() Generator { return c.base }

// CycleGen returns the generator pair for the companion curve.
func (c Cycle) CycleGen() Generator { return c.cycle }

// wireGenerator and wireCycle are the cbor-serializable projections of
// Generator/Cycle -- a PedersenCycle setup travels inside the serialized
// ZkAttestProof, so it needs a stable wire form independent of the live
// *curve.Params pointers.
type wireGenerator struct {
	Curve string `cbor:"curve"`
	G     []byte `cbor:"g"`
	H     []byte `cbor:"h"`
}

func (g Generator) marshalWire() wireGenerator {
	return wireGenerator{Curve: g.c.Name, G: g.g.Bytes(), H: g.h.Bytes()}
}

func curveByName(name string) (*curve.Params, error) {
	switch name {
	case curve.Secp256k1.Name:
		return curve.Secp256k1, nil
	case curve.Tom256k1.Name:
		return curve.Tom256k1, nil
	default:
		return nil, curve.ErrCurveMismatch
	}
}

func (w wireGenerator) unmarshal() (Generator, error) {
	c, err := curveByName(w.Curve)
	if err != nil {
		return Generator{}, err
	}
	g, err := curve.SetBytesAffine(c, w.G)
	if err != nil {
		return Generator{}, err
	}
	h, err := curve.SetBytesAffine(c, w.H)
	if err != nil {
		return Generator{}, err
	}
	return Generator{c: c, g: g, h: h}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler via cbor.
func (g Generator) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(g.marshalWire())
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler via cbor.
func (g *Generator) UnmarshalBinary(data []byte) error {
	var w wireGenerator
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := w.unmarshal()
	if err != nil {
		return err
	}
	*g = decoded
	return nil
}

type wireCycle struct {
	Base  wireGenerator `cbor:"base"`
	Cycle wireGenerator `cbor:"cycle"`
}

// MarshalBinary implements encoding.BinaryMarshaler via cbor.
func (c Cycle) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(wireCycle{Base: c.base.marshalWire(), Cycle: c.cycle.marshalWire()})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler via cbor.
func (c *Cycle) UnmarshalBinary(data []byte) error {
	var w wireCycle
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	base, err := w.Base.unmarshal()
	if err != nil {
		return err
	}
	cyc, err := w.Cycle.unmarshal()
	if err != nil {
		return err
	}
	c.base, c.cycle = base, cyc
	return nil
}
