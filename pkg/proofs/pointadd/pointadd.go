// Package pointadd proves, in zero knowledge, that three Pedersen-committed
// (or partly public) affine points satisfy P + Q = R, without revealing Q
// or R. It is the building block the exponentiation proof's "Even" branch
// uses to bind a revealed intermediate point to a still-secret one.
//
// Affine addition (x1,y1)+(x2,y2)=(x3,y3) with slope lambda decomposes into
// three polynomial equations:
//
//	(x2-x1)*lambda = y2-y1
//	lambda^2       = x3+x1+x2
//	lambda*(x1-x3) = y3+y1
//
// Each is a single multiplication of committed scalars once constants
// derived from the public point P=(x1,y1) are folded in, so each is proved
// with the same building block: productProof, a standard Pedersen
// commitment-multiplication sigma protocol (prove Cc opens to the product
// of Ca's and Cb's openings).
package pointadd

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

// ErrInvalidProof is returned by Verify when any equation fails to check out.
var ErrInvalidProof = errors.New("pointadd: proof is invalid")

// Secrets is the opening of a single Pedersen-committed scalar.
type Secrets struct {
	Value     curve.Scalar
	Randomness curve.Scalar
}

// PointSecrets is the pair of openings for a committed point's coordinates.
type PointSecrets struct {
	X, Y Secrets
}

// PointCommitments is the pair of commitments to a point's coordinates.
type PointCommitments struct {
	CX, CY pedersen.Commitment
}

// Proof is a zero-knowledge proof that P + Q = R for a public affine point
// P and Pedersen-committed points Q, R.
type Proof struct {
	CLambda pedersen.Commitment
	Eq1, Eq2, Eq3 productProof
}

// productProof proves that a Pedersen commitment Cc opens to the product
// of the openings of Ca and Cb.
type productProof struct {
	A, B, C curve.AffinePoint
	Za, Zra, Zb, Zrb, Zc curve.Scalar
}

// proveProduct builds a productProof that c = a*b, where c's commitment
// and opening are supplied directly (the caller derives them from a linear
// combination of other commitments, so "randomness" here is whatever that
// combination works out to, not a freshly sampled value).
func proveProduct(
	gen pedersen.Generator,
	a, b Secrets,
	cValue, cRandomness curve.Scalar,
	tr *transcript.Hasher,
	rng io.Reader,
) (productProof, error) {
	ka, err := curve.RandomScalar(rng, gen.Curve())
	if err != nil {
		return productProof{}, err
	}
	kra, err := curve.RandomScalar(rng, gen.Curve())
	if err != nil {
		return productProof{}, err
	}
	kb, err := curve.RandomScalar(rng, gen.Curve())
	if err != nil {
		return productProof{}, err
	}
	krb, err := curve.RandomScalar(rng, gen.Curve())
	if err != nil {
		return productProof{}, err
	}
	krc, err := curve.RandomScalar(rng, gen.Curve())
	if err != nil {
		return productProof{}, err
	}

	A := gen.Commit(ka, kra).Point()
	B := gen.Commit(kb, krb).Point()
	Cb := gen.Commit(b.Value, b.Randomness).Point()
	// C = ka*Cb + Commit(0, krc)
	C := Cb.ToProjective().ScalarMul(ka).Add(gen.Commit(curve.ZeroScalar(gen.Curve()), krc).Point().ToProjective()).ToAffine()

	tr.Insert(A)
	tr.Insert(B)
	tr.Insert(C)
	e := curve.ScalarFromU256(gen.Curve(), tr.Challenge())

	za := ka.Add(e.Mul(a.Value))
	zra := kra.Add(e.Mul(a.Randomness))
	zb := kb.Add(e.Mul(b.Value))
	zrb := krb.Add(e.Mul(b.Randomness))
	// zc = krc + e*(c_randomness - a.value*b.randomness)
	cross := cRandomness.Sub(a.Value.Mul(b.Randomness))
	zc := krc.Add(e.Mul(cross))

	return productProof{A: A, B: B, C: C, Za: za, Zra: zra, Zb: zb, Zrb: zrb, Zc: zc}, nil
}

// verifyProduct checks a productProof against public commitments Ca, Cb, Cc
// (c alleged to equal a*b), recomputing the same transcript challenge the
// prover used.
func verifyProduct(gen pedersen.Generator, ca, cb, cc curve.AffinePoint, p productProof, tr *transcript.Hasher) bool {
	tr.Insert(p.A)
	tr.Insert(p.B)
	tr.Insert(p.C)
	e := curve.ScalarFromU256(gen.Curve(), tr.Challenge())

	lhs1 := gen.Commit(p.Za, p.Zra).Point()
	rhs1 := p.A.ToProjective().Add(ca.ToProjective().ScalarMul(e)).ToAffine()
	if !lhs1.Equal(rhs1) {
		return false
	}

	lhs2 := gen.Commit(p.Zb, p.Zrb).Point()
	rhs2 := p.B.ToProjective().Add(cb.ToProjective().ScalarMul(e)).ToAffine()
	if !lhs2.Equal(rhs2) {
		return false
	}

	lhs3 := cb.ToProjective().ScalarMul(p.Za).Add(gen.H().ToProjective().ScalarMul(p.Zc))
	rhs3 := p.C.ToProjective().Add(cc.ToProjective().ScalarMul(e))
	return lhs3.ToAffine().Equal(rhs3.ToAffine())
}

// Construct builds a Proof that p + q = r, where p is a public affine
// point and q, r are committed points the prover knows the openings of.
func Construct(
	gen pedersen.Generator,
	p curve.AffinePoint,
	q, r PointSecrets,
	qCommitments, rCommitments PointCommitments,
	tr *transcript.Hasher,
	rng io.Reader,
) (*Proof, error) {
	c := gen.Curve()
	x1 := p.X()
	y1 := p.Y()

	lambdaRand, err := curve.RandomScalar(rng, c)
	if err != nil {
		return nil, err
	}
	// lambda = (y2-y1)/(x2-x1)
	x2x1 := q.X.Value.Sub(curve.ScalarFromU256(c, x1.U256()))
	if x2x1.IsZero() {
		return nil, errors.New("pointadd: degenerate addition (equal x-coordinates)")
	}
	lambda := q.Y.Value.Sub(curve.ScalarFromU256(c, y1.U256())).Mul(x2x1.Inverse())
	cLambda := gen.Commit(lambda, lambdaRand)
	lambdaSecrets := Secrets{Value: lambda, Randomness: lambdaRand}

	tr.Insert(p)
	tr.Insert(qCommitments.CX.Point())
	tr.Insert(qCommitments.CY.Point())
	tr.Insert(rCommitments.CX.Point())
	tr.Insert(rCommitments.CY.Point())
	tr.Insert(cLambda.Point())

	x1Scalar := curve.ScalarFromU256(c, x1.U256())
	y1Scalar := curve.ScalarFromU256(c, y1.U256())

	// Eq1: lambda*x2 = y2 - y1 + x1*lambda
	target1Value := q.Y.Value.Sub(y1Scalar).Add(x1Scalar.Mul(lambda))
	target1Rand := q.Y.Randomness.Add(x1Scalar.Mul(lambdaRand))
	eq1, err := proveProduct(gen, lambdaSecrets, q.X, target1Value, target1Rand, tr, rng)
	if err != nil {
		return nil, err
	}

	// Eq2: lambda*lambda = x3 + x1 + x2
	target2Value := r.X.Value.Add(x1Scalar).Add(q.X.Value)
	target2Rand := r.X.Randomness.Add(q.X.Randomness)
	eq2, err := proveProduct(gen, lambdaSecrets, lambdaSecrets, target2Value, target2Rand, tr, rng)
	if err != nil {
		return nil, err
	}

	// Eq3: lambda*x3 = x1*lambda - y3 - y1
	target3Value := x1Scalar.Mul(lambda).Sub(r.Y.Value).Sub(y1Scalar)
	target3Rand := x1Scalar.Mul(lambdaRand).Sub(r.Y.Randomness)
	eq3, err := proveProduct(gen, lambdaSecrets, r.X, target3Value, target3Rand, tr, rng)
	if err != nil {
		return nil, err
	}

	return &Proof{CLambda: cLambda, Eq1: eq1, Eq2: eq2, Eq3: eq3}, nil
}

// Verify checks a Proof directly (without multimult batching).
func Verify(gen pedersen.Generator, p curve.AffinePoint, qCommitments, rCommitments PointCommitments, proof *Proof, tr *transcript.Hasher) error {
	c := gen.Curve()
	x1Scalar := curve.ScalarFromU256(c, p.X().U256())
	y1Scalar := curve.ScalarFromU256(c, p.Y().U256())

	tr.Insert(p)
	tr.Insert(qCommitments.CX.Point())
	tr.Insert(qCommitments.CY.Point())
	tr.Insert(rCommitments.CX.Point())
	tr.Insert(rCommitments.CY.Point())
	tr.Insert(proof.CLambda.Point())

	target1 := gen.Commit(y1Scalar.Neg(), curve.ZeroScalar(c)).Point().ToProjective().
		Add(qCommitments.CY.Point().ToProjective()).
		Add(proof.CLambda.Point().ToProjective().ScalarMul(x1Scalar)).ToAffine()
	if !verifyProduct(gen, proof.CLambda.Point(), qCommitments.CX.Point(), target1, proof.Eq1, tr) {
		return ErrInvalidProof
	}

	target2 := rCommitments.CX.Point().ToProjective().
		Add(gen.G().ToProjective().ScalarMul(x1Scalar)).
		Add(qCommitments.CX.Point().ToProjective()).ToAffine()
	if !verifyProduct(gen, proof.CLambda.Point(), proof.CLambda.Point(), target2, proof.Eq2, tr) {
		return ErrInvalidProof
	}

	target3 := proof.CLambda.Point().ToProjective().ScalarMul(x1Scalar).
		Sub(rCommitments.CY.Point().ToProjective()).
		Sub(gen.G().ToProjective().ScalarMul(y1Scalar)).ToAffine()
	if !verifyProduct(gen, proof.CLambda.Point(), rCommitments.CX.Point(), target3, proof.Eq3, tr) {
		return ErrInvalidProof
	}

	return nil
}

// Aggregate checks a Proof the same way Verify does, but drains each
// equation's linear checks into a shared multimult.MultiMult instead of
// evaluating point equality immediately -- letting many point-add proofs
// (one per exponentiation-proof round) be checked with a single combined
// multi-scalar multiplication.
func Aggregate(gen pedersen.Generator, p curve.AffinePoint, qCommitments, rCommitments PointCommitments, proof *Proof, tr *transcript.Hasher, mm *multimult.MultiMult) error {
	c := gen.Curve()
	x1Scalar := curve.ScalarFromU256(c, p.X().U256())
	y1Scalar := curve.ScalarFromU256(c, p.Y().U256())

	tr.Insert(p)
	tr.Insert(qCommitments.CX.Point())
	tr.Insert(qCommitments.CY.Point())
	tr.Insert(rCommitments.CX.Point())
	tr.Insert(rCommitments.CY.Point())
	tr.Insert(proof.CLambda.Point())

	target1 := gen.Commit(y1Scalar.Neg(), curve.ZeroScalar(c)).Point().ToProjective().
		Add(qCommitments.CY.Point().ToProjective()).
		Add(proof.CLambda.Point().ToProjective().ScalarMul(x1Scalar)).ToAffine()
	if err := aggregateProduct(gen, proof.CLambda.Point(), qCommitments.CX.Point(), target1, proof.Eq1, tr, mm); err != nil {
		return err
	}

	target2 := rCommitments.CX.Point().ToProjective().
		Add(gen.G().ToProjective().ScalarMul(x1Scalar)).
		Add(qCommitments.CX.Point().ToProjective()).ToAffine()
	if err := aggregateProduct(gen, proof.CLambda.Point(), proof.CLambda.Point(), target2, proof.Eq2, tr, mm); err != nil {
		return err
	}

	target3 := proof.CLambda.Point().ToProjective().ScalarMul(x1Scalar).
		Sub(rCommitments.CY.Point().ToProjective()).
		Sub(gen.G().ToProjective().ScalarMul(y1Scalar)).ToAffine()
	if err := aggregateProduct(gen, proof.CLambda.Point(), rCommitments.CX.Point(), target3, proof.Eq3, tr, mm); err != nil {
		return err
	}

	return nil
}

func aggregateProduct(gen pedersen.Generator, ca, cb, cc curve.AffinePoint, p productProof, tr *transcript.Hasher, mm *multimult.MultiMult) error {
	tr.Insert(p.A)
	tr.Insert(p.B)
	tr.Insert(p.C)
	e := curve.ScalarFromU256(gen.Curve(), tr.Challenge())
	neg1 := curve.ZeroScalar(gen.Curve()).Sub(curve.OneScalar(gen.Curve()))

	r1 := multimult.NewRelation()
	r1.Insert(gen.G(), p.Za)
	r1.Insert(gen.H(), p.Zra)
	r1.Insert(p.A, neg1)
	r1.Insert(ca, e.Neg())
	if err := mm.Drain(r1); err != nil {
		return err
	}

	r2 := multimult.NewRelation()
	r2.Insert(gen.G(), p.Zb)
	r2.Insert(gen.H(), p.Zrb)
	r2.Insert(p.B, neg1)
	r2.Insert(cb, e.Neg())
	if err := mm.Drain(r2); err != nil {
		return err
	}

	r3 := multimult.NewRelation()
	r3.Insert(cb, p.Za)
	r3.Insert(gen.H(), p.Zc)
	r3.Insert(p.C, neg1)
	r3.Insert(cc, e.Neg())
	if err := mm.Drain(r3); err != nil {
		return err
	}

	return nil
}

// wireProductProof and wireProof are the cbor-serializable projections of
// productProof/Proof -- both live entirely on one curve, so unmarshalling
// only needs that curve's *curve.Params, supplied by the caller.
type wireProductProof struct {
	A, B, C              []byte
	Za, Zra, Zb, Zrb, Zc []byte
}

type wireProof struct {
	CLambda       []byte
	Eq1, Eq2, Eq3 wireProductProof
}

func (p productProof) marshalWire() wireProductProof {
	return wireProductProof{
		A: p.A.Bytes(), B: p.B.Bytes(), C: p.C.Bytes(),
		Za: p.Za.U256().Bytes(), Zra: p.Zra.U256().Bytes(),
		Zb: p.Zb.U256().Bytes(), Zrb: p.Zrb.U256().Bytes(),
		Zc: p.Zc.U256().Bytes(),
	}
}

func (w wireProductProof) unmarshal(c *curve.Params) (productProof, error) {
	a, err := curve.SetBytesAffine(c, w.A)
	if err != nil {
		return productProof{}, err
	}
	b, err := curve.SetBytesAffine(c, w.B)
	if err != nil {
		return productProof{}, err
	}
	cc, err := curve.SetBytesAffine(c, w.C)
	if err != nil {
		return productProof{}, err
	}
	za, err := scalarFromBytes(c, w.Za)
	if err != nil {
		return productProof{}, err
	}
	zra, err := scalarFromBytes(c, w.Zra)
	if err != nil {
		return productProof{}, err
	}
	zb, err := scalarFromBytes(c, w.Zb)
	if err != nil {
		return productProof{}, err
	}
	zrb, err := scalarFromBytes(c, w.Zrb)
	if err != nil {
		return productProof{}, err
	}
	zc, err := scalarFromBytes(c, w.Zc)
	if err != nil {
		return productProof{}, err
	}
	return productProof{A: a, B: b, C: cc, Za: za, Zra: zra, Zb: zb, Zrb: zrb, Zc: zc}, nil
}

// scalarFromBytes decodes a 32-byte big-endian scalar for curve c.
func scalarFromBytes(c *curve.Params, b []byte) (curve.Scalar, error) {
	var u bigint.U256
	if err := u.SetBytes(b); err != nil {
		return curve.Scalar{}, err
	}
	return curve.ScalarFromU256(c, u), nil
}

// MarshalBinary implements a cbor wire encoding for Proof. The proof lives
// entirely on the cycle curve, so UnmarshalProof needs that curve's
// *curve.Params to decode the result.
func (p *Proof) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(wireProof{
		CLambda: p.CLambda.Point().Bytes(),
		Eq1:     p.Eq1.marshalWire(),
		Eq2:     p.Eq2.marshalWire(),
		Eq3:     p.Eq3.marshalWire(),
	})
}

// UnmarshalProof decodes a Proof encoded by MarshalBinary, interpreting
// every point and scalar as belonging to curve c.
func UnmarshalProof(data []byte, c *curve.Params) (*Proof, error) {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	clPoint, err := curve.SetBytesAffine(c, w.CLambda)
	if err != nil {
		return nil, err
	}
	eq1, err := w.Eq1.unmarshal(c)
	if err != nil {
		return nil, err
	}
	eq2, err := w.Eq2.unmarshal(c)
	if err != nil {
		return nil, err
	}
	eq3, err := w.Eq3.unmarshal(c)
	if err != nil {
		return nil, err
	}
	return &Proof{CLambda: pedersen.CommitmentFromPoint(clPoint), Eq1: eq1, Eq2: eq2, Eq3: eq3}, nil
}
