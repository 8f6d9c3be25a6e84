// Package membership implements a CDS94-style one-out-of-many Schnorr OR
// proof: given a Pedersen commitment and a public list of ring members, it
// proves the commitment opens to one of the ring members without revealing
// which index, or the commitment's opening.
//
// This is the discrete-log analogue of the simulate-all-but-one-branch
// technique in the DualDory pairing-based ring proof (see
// other_examples' threshold.go RingProof: n-1 branches get random
// simulated challenges and responses, the real branch's challenge is
// whatever is left over from the overall Fiat-Shamir challenge, and its
// response is a genuine Schnorr response). Here each branch's statement is
// "Commitment - ring[i]*G is a multiple of H", i.e. a Schnorr
// proof-of-knowledge of the commitment's randomness relative to H, which
// only holds for the true index.
package membership

import (
	"errors"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/zkattest/pkg/bigint"
	"github.com/luxfi/zkattest/pkg/curve"
	"github.com/luxfi/zkattest/pkg/multimult"
	"github.com/luxfi/zkattest/pkg/pedersen"
	"github.com/luxfi/zkattest/pkg/transcript"
)

// ErrInvalidProof is returned when a proof fails verification.
var ErrInvalidProof = errors.New("membership: proof is invalid")

// ErrEmptyRing is returned when constructing or verifying against a ring
// with no members.
var ErrEmptyRing = errors.New("membership: ring must not be empty")

// ErrIndexOutOfRange is returned when Secrets.Index does not address a
// member of the ring passed to Construct.
var ErrIndexOutOfRange = errors.New("membership: index out of range")

const hashDomain = "membership-proof"

// Secrets is the prover's witness: Value equals ring[Index], and
// Commitment = Value*G + Randomness*H under gen.
type Secrets struct {
	Value      curve.Scalar
	Randomness curve.Scalar
	Index      int
}

// Proof is the non-interactive OR proof, one (A, c, z) triple per ring
// member.
type Proof struct {
	A []curve.AffinePoint
	C []curve.Scalar
	Z []curve.Scalar
}

// branchPoint returns Commitment - ring[i]*G, the point whose discrete log
// relative to H is Randomness exactly when ring[i] == Value.
func branchPoint(gen pedersen.Generator, commitment pedersen.Commitment, member curve.Scalar) curve.AffinePoint {
	return commitment.Point().ToProjective().
		Sub(gen.G().ToProjective().ScalarMul(member)).ToAffine()
}

func insertRing(tr *transcript.Hasher, commitment pedersen.Commitment, ring []curve.Scalar) {
	tr.Insert(commitment.Point())
	for _, m := range ring {
		tr.InsertScalar(m)
	}
}

// Construct builds a membership proof that commitment opens to some member
// of ring.
func Construct(
	rng io.Reader,
	gen pedersen.Generator,
	ring []curve.Scalar,
	commitment pedersen.Commitment,
	secrets Secrets,
	tr *transcript.Hasher,
) (*Proof, error) {
	n := len(ring)
	if n == 0 {
		return nil, ErrEmptyRing
	}
	if secrets.Index < 0 || secrets.Index >= n {
		return nil, ErrIndexOutOfRange
	}
	c := gen.Curve()

	as := make([]curve.AffinePoint, n)
	cs := make([]curve.Scalar, n)
	zs := make([]curve.Scalar, n)

	var k curve.Scalar
	for i := 0; i < n; i++ {
		if i == secrets.Index {
			kk, err := curve.RandomScalar(rng, c)
			if err != nil {
				return nil, err
			}
			k = kk
			as[i] = gen.H().ToProjective().ScalarMul(k).ToAffine()
			continue
		}
		ci, err := curve.RandomScalar(rng, c)
		if err != nil {
			return nil, err
		}
		zi, err := curve.RandomScalar(rng, c)
		if err != nil {
			return nil, err
		}
		cs[i] = ci
		zs[i] = zi
		// A_i = z_i*H - c_i*branchPoint_i, simulating a valid transcript.
		bp := branchPoint(gen, commitment, ring[i])
		as[i] = gen.H().ToProjective().ScalarMul(zi).
			Sub(bp.ToProjective().ScalarMul(ci)).ToAffine()
	}

	insertRing(tr, commitment, ring)
	for i := 0; i < n; i++ {
		tr.Insert(as[i])
	}
	challenge := curve.ScalarFromU256(c, tr.Challenge())

	sumOthers := curve.ZeroScalar(c)
	for i := 0; i < n; i++ {
		if i != secrets.Index {
			sumOthers = sumOthers.Add(cs[i])
		}
	}
	cIdx := challenge.Sub(sumOthers)
	cs[secrets.Index] = cIdx
	zs[secrets.Index] = k.Add(cIdx.Mul(secrets.Randomness))

	return &Proof{A: as, C: cs, Z: zs}, nil
}

func challengeSum(c *curve.Params, cs []curve.Scalar) curve.Scalar {
	sum := curve.ZeroScalar(c)
	for _, ci := range cs {
		sum = sum.Add(ci)
	}
	return sum
}

// Verify checks a Proof directly (without multimult batching).
func Verify(gen pedersen.Generator, ring []curve.Scalar, commitment pedersen.Commitment, proof *Proof, tr *transcript.Hasher) error {
	n := len(ring)
	if n == 0 {
		return ErrEmptyRing
	}
	if len(proof.A) != n || len(proof.C) != n || len(proof.Z) != n {
		return ErrInvalidProof
	}
	c := gen.Curve()

	insertRing(tr, commitment, ring)
	for i := 0; i < n; i++ {
		tr.Insert(proof.A[i])
	}
	challenge := curve.ScalarFromU256(c, tr.Challenge())
	if !challengeSum(c, proof.C).Equal(challenge) {
		return ErrInvalidProof
	}

	for i := 0; i < n; i++ {
		bp := branchPoint(gen, commitment, ring[i])
		lhs := gen.H().ToProjective().ScalarMul(proof.Z[i])
		rhs := proof.A[i].ToProjective().Add(bp.ToProjective().ScalarMul(proof.C[i]))
		if !lhs.ToAffine().Equal(rhs.ToAffine()) {
			return ErrInvalidProof
		}
	}
	return nil
}

// Aggregate checks a Proof the same way Verify does, but drains each
// branch's point equality into a shared multimult.MultiMult, leaving only
// the (cheap, scalar-only) total-challenge check to run directly.
func Aggregate(gen pedersen.Generator, ring []curve.Scalar, commitment pedersen.Commitment, proof *Proof, tr *transcript.Hasher, mm *multimult.MultiMult) error {
	n := len(ring)
	if n == 0 {
		return ErrEmptyRing
	}
	if len(proof.A) != n || len(proof.C) != n || len(proof.Z) != n {
		return ErrInvalidProof
	}
	c := gen.Curve()

	insertRing(tr, commitment, ring)
	for i := 0; i < n; i++ {
		tr.Insert(proof.A[i])
	}
	challenge := curve.ScalarFromU256(c, tr.Challenge())
	if !challengeSum(c, proof.C).Equal(challenge) {
		return ErrInvalidProof
	}

	neg1 := curve.ZeroScalar(c).Sub(curve.OneScalar(c))
	for i := 0; i < n; i++ {
		bp := branchPoint(gen, commitment, ring[i])
		r := multimult.NewRelation()
		r.Insert(gen.H(), proof.Z[i])
		r.Insert(proof.A[i], neg1)
		r.Insert(bp, proof.C[i].Neg())
		if err := mm.Drain(r); err != nil {
			return err
		}
	}
	return nil
}

// wireProof is the cbor-serializable projection of Proof -- it lives
// entirely on one curve, so UnmarshalProof needs that curve's
// *curve.Params to decode the result.
type wireProof struct {
	A [][]byte
	C [][]byte
	Z [][]byte
}

func scalarBytes(s curve.Scalar) []byte { v := s.U256(); return v.Bytes() }

func scalarFromBytes(c *curve.Params, b []byte) (curve.Scalar, error) {
	var u bigint.U256
	if err := u.SetBytes(b); err != nil {
		return curve.Scalar{}, err
	}
	return curve.ScalarFromU256(c, u), nil
}

// MarshalBinary implements a cbor wire encoding for Proof.
func (p *Proof) MarshalBinary() ([]byte, error) {
	w := wireProof{
		A: make([][]byte, len(p.A)),
		C: make([][]byte, len(p.C)),
		Z: make([][]byte, len(p.Z)),
	}
	for i := range p.A {
		w.A[i] = p.A[i].Bytes()
	}
	for i := range p.C {
		w.C[i] = scalarBytes(p.C[i])
	}
	for i := range p.Z {
		w.Z[i] = scalarBytes(p.Z[i])
	}
	return cbor.Marshal(w)
}

// UnmarshalProof decodes a Proof encoded by MarshalBinary, interpreting
// every point and scalar as belonging to curve c.
func UnmarshalProof(data []byte, c *curve.Params) (*Proof, error) {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	proof := &Proof{
		A: make([]curve.AffinePoint, len(w.A)),
		C: make([]curve.Scalar, len(w.C)),
		Z: make([]curve.Scalar, len(w.Z)),
	}
	for i, b := range w.A {
		p, err := curve.SetBytesAffine(c, b)
		if err != nil {
			return nil, err
		}
		proof.A[i] = p
	}
	for i, b := range w.C {
		s, err := scalarFromBytes(c, b)
		if err != nil {
			return nil, err
		}
		proof.C[i] = s
	}
	for i, b := range w.Z {
		s, err := scalarFromBytes(c, b)
		if err != nil {
			return nil, err
		}
		proof.Z[i] = s
	}
	return proof, nil
}
