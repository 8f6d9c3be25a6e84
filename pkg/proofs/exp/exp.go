// Package exp implements the cut-and-choose exponentiation proof: a
// non-interactive zero-knowledge proof of knowledge of a scalar `exp` such
// that a (hidden) point Q equals base^exp, for a public base point on the
// signature curve. Q's coordinates are hidden behind Pedersen commitments
// on the cycle curve; `exp` is hidden behind a Pedersen-style commitment
// on the base curve that reuses `base` itself as the commitment's value
// generator.
//
// Construction: for k independent rounds, the prover commits to a random
// exponent alpha and a blinded version of T=base^alpha; after the verifier
// (or, non-interactively, a Fiat-Shamir hash of every commitment) picks one
// of two challenge branches per round, the prover reveals either alpha
// itself (the "Odd" branch) or z=alpha-exp together with a proof that
// base^z + Q equals T without revealing Q or T's coordinates (the "Even"
// branch, which leans on pkg/proofs/pointadd). Soundness is 2^-k since a
// cheating prover would need to correctly guess, round by round, which
// branch it will be asked to open.
package exp

import (
	"errors"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/zkattest/pkg/bigint"
	"github.com/luxfi/zkattest/pkg/curve"
	"github.com/luxfi/zkattest/pkg/multimult"
	"github.com/luxfi/zkattest/pkg/pedersen"
	"github.com/luxfi/zkattest/pkg/pool"
	"github.com/luxfi/zkattest/pkg/proofs/pointadd"
	"github.com/luxfi/zkattest/pkg/transcript"
)

// ErrIdentityIntermediate is returned (and retried by the caller) when an
// unlucky random choice makes an intermediate point the identity, which
// would make the point-add proof for that round degenerate.
var ErrIdentityIntermediate = errors.New("exp: intermediate value is the identity point, retry with fresh randomness")

// ErrSecurityParamMismatch is returned when a proof's round count does not
// match the security parameter the verifier expects -- this module never
// permits the "subsampled indices" shortcut.
var ErrSecurityParamMismatch = errors.New("exp: security parameter does not match proof round count")

// ErrInvalidProof is returned when any round's checks fail.
var ErrInvalidProof = errors.New("exp: proof is invalid")

const hashDomain = "exp-proof"

// Secrets is the witness: Point = base^Exp on the base curve.
type Secrets struct {
	Point curve.AffinePoint
	Exp   curve.Scalar
}

// Commitments is the public commitment data an ExpProof is checked against.
type Commitments struct {
	PX, PY pedersen.Commitment // cycle curve, commitments to Point's coordinates
	Exp    curve.AffinePoint   // base curve, Exp*base + ExpRand*H_base
}

// Opening holds the randomness used to build Commitments, kept by the
// prover only.
type Opening struct {
	PXRand, PYRand curve.Scalar // cycle curve
	ExpRand        curve.Scalar // base curve
}

// Commit builds Commitments/Opening for secrets, with exp committed using
// base as the commitment's value generator (so the Even-branch response
// below can verify the per-round blinding value A without ever revealing
// alpha or exp).
func Commit(rng io.Reader, baseGen, cycleGen pedersen.Generator, base curve.AffinePoint, secrets Secrets) (Commitments, Opening, error) {
	pxRand, err := curve.RandomScalar(rng, cycleGen.Curve())
	if err != nil {
		return Commitments{}, Opening{}, err
	}
	pyRand, err := curve.RandomScalar(rng, cycleGen.Curve())
	if err != nil {
		return Commitments{}, Opening{}, err
	}
	expRand, err := curve.RandomScalar(rng, baseGen.Curve())
	if err != nil {
		return Commitments{}, Opening{}, err
	}

	px := cycleGen.Commit(secrets.Point.X().ToCycleScalar(cycleGen.Curve()), pxRand)
	py := cycleGen.Commit(secrets.Point.Y().ToCycleScalar(cycleGen.Curve()), pyRand)
	expCommit := commitWithGenerator(base, baseGen.H(), secrets.Exp, expRand)

	return Commitments{PX: px, PY: py, Exp: expCommit},
		Opening{PXRand: pxRand, PYRand: pyRand, ExpRand: expRand},
		nil
}

// commitWithGenerator computes value*g + randomness*h for an arbitrary
// affine generator g (not necessarily the curve's standard base point).
func commitWithGenerator(g, h curve.AffinePoint, value, randomness curve.Scalar) curve.AffinePoint {
	return g.ToProjective().ScalarMul(value).Add(h.ToProjective().ScalarMul(randomness)).ToAffine()
}

// auxiliary is the per-round phase-1 commitment data, kept by the prover
// between commit and response.
type auxiliary struct {
	alpha, r curve.Scalar
	t        curve.AffinePoint // base^alpha
	a        curve.AffinePoint // alpha*base + r*H_base == t "blinded"
	tx, ty   pedersen.Commitment
	txR, tyR curve.Scalar
}

func generateAuxiliary(rng io.Reader, baseGen, cycleGen pedersen.Generator, base curve.AffinePoint) (auxiliary, error) {
	var alpha curve.Scalar
	for {
		a, err := curve.RandomScalar(rng, baseGen.Curve())
		if err != nil {
			return auxiliary{}, err
		}
		if !a.IsZero() {
			alpha = a
			break
		}
	}
	r, err := curve.RandomScalar(rng, baseGen.Curve())
	if err != nil {
		return auxiliary{}, err
	}
	t := base.ToProjective().ScalarMul(alpha).ToAffine()
	if t.IsIdentity() {
		return auxiliary{}, ErrIdentityIntermediate
	}
	a := commitWithGenerator(base, baseGen.H(), alpha, r)

	tx, txR, err := pedersen.CommitRandom(cycleGen, t.X().ToCycleScalar(cycleGen.Curve()), rng)
	if err != nil {
		return auxiliary{}, err
	}
	ty, tyR, err := pedersen.CommitRandom(cycleGen, t.Y().ToCycleScalar(cycleGen.Curve()), rng)
	if err != nil {
		return auxiliary{}, err
	}

	return auxiliary{alpha: alpha, r: r, t: t, a: a, tx: tx, ty: ty, txR: txR, tyR: tyR}, nil
}

// OddResponse reveals the round's randomizers directly.
type OddResponse struct {
	Alpha, R, TxR, TyR curve.Scalar
}

// EvenResponse reveals z=alpha-exp and a point-add proof binding the
// now-public base^z to the still-hidden Point and T.
type EvenResponse struct {
	Z, RResp curve.Scalar
	AddProof *pointadd.Proof
}

// SingleExpProof is one round's commitment and response.
type SingleExpProof struct {
	A      curve.AffinePoint
	TX, TY pedersen.Commitment
	Odd    *OddResponse
	Even   *EvenResponse
}

// Proof is the full k-round exponentiation proof.
type Proof struct {
	Rounds []SingleExpProof
}

// Construct builds a Proof of k rounds. qPoint, if non-nil, is folded into
// every round's public operand (base^z + qPoint) -- used by the attest
// layer to bind the exponentiation to an externally derived public point.
func Construct(
	rng io.Reader,
	workers *pool.Pool,
	base curve.AffinePoint,
	baseGen, cycleGen pedersen.Generator,
	secrets Secrets,
	commitments Commitments,
	opening Opening,
	k int,
	qPoint *curve.AffinePoint,
) (*Proof, error) {
	auxes := make([]auxiliary, k)
	err := workers.Parallelize(k, func(i int) error {
		for {
			aux, err := generateAuxiliary(rng, baseGen, cycleGen, base)
			if errors.Is(err, ErrIdentityIntermediate) {
				continue
			}
			if err != nil {
				return err
			}
			auxes[i] = aux
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	tr := transcript.NewHasher(hashDomain)
	tr.Insert(commitments.PX.Point())
	tr.Insert(commitments.PY.Point())
	tr.Insert(commitments.Exp)
	for i := range auxes {
		tr.Insert(auxes[i].a)
		tr.Insert(auxes[i].tx.Point())
		tr.Insert(auxes[i].ty.Point())
	}
	challenge := tr.Challenge()
	bits := transcript.PaddedBits(challenge, k)

	rounds := make([]SingleExpProof, k)
	err = workers.Parallelize(k, func(i int) error {
		aux := auxes[i]
		round := SingleExpProof{A: aux.a, TX: aux.tx, TY: aux.ty}
		if bits[i] {
			round.Odd = &OddResponse{Alpha: aux.alpha, R: aux.r, TxR: aux.txR, TyR: aux.tyR}
			rounds[i] = round
			return nil
		}

		z := aux.alpha.Sub(secrets.Exp)
		t1Point := base.ToProjective().ScalarMul(z)
		if qPoint != nil {
			t1Point = t1Point.Add(qPoint.ToProjective())
		}
		t1 := t1Point.ToAffine()
		if t1.IsIdentity() {
			return ErrIdentityIntermediate
		}
		rResp := aux.r.Sub(opening.ExpRand)

		addProof, err := pointadd.Construct(
			cycleGen,
			t1,
			pointadd.PointSecrets{
				X: pointadd.Secrets{Value: secrets.Point.X().ToCycleScalar(cycleGen.Curve()), Randomness: opening.PXRand},
				Y: pointadd.Secrets{Value: secrets.Point.Y().ToCycleScalar(cycleGen.Curve()), Randomness: opening.PYRand},
			},
			pointadd.PointSecrets{
				X: pointadd.Secrets{Value: aux.t.X().ToCycleScalar(cycleGen.Curve()), Randomness: aux.txR},
				Y: pointadd.Secrets{Value: aux.t.Y().ToCycleScalar(cycleGen.Curve()), Randomness: aux.tyR},
			},
			pointadd.PointCommitments{CX: commitments.PX, CY: commitments.PY},
			pointadd.PointCommitments{CX: aux.tx, CY: aux.ty},
			transcript.NewHasher(hashDomain+"-pointadd"),
			rng,
		)
		if err != nil {
			return err
		}
		round.Even = &EvenResponse{Z: z, RResp: rResp, AddProof: addProof}
		rounds[i] = round
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Proof{Rounds: rounds}, nil
}

// Verify checks a k-round Proof against commitments.
func Verify(
	rng io.Reader,
	workers *pool.Pool,
	base curve.AffinePoint,
	baseGen, cycleGen pedersen.Generator,
	commitments Commitments,
	proof *Proof,
	k int,
	qPoint *curve.AffinePoint,
) error {
	if k != len(proof.Rounds) {
		return ErrSecurityParamMismatch
	}

	tr := transcript.NewHasher(hashDomain)
	tr.Insert(commitments.PX.Point())
	tr.Insert(commitments.PY.Point())
	tr.Insert(commitments.Exp)
	for i := range proof.Rounds {
		tr.Insert(proof.Rounds[i].A)
		tr.Insert(proof.Rounds[i].TX.Point())
		tr.Insert(proof.Rounds[i].TY.Point())
	}
	challenge := tr.Challenge()
	bits := transcript.PaddedBits(challenge, k)

	baseMM := multimult.New(baseGen.Curve(), rng)
	cycleMM := multimult.New(cycleGen.Curve(), rng)
	var mu sync.Mutex

	err := workers.Parallelize(k, func(i int) error {
		round := proof.Rounds[i]
		if bits[i] {
			if round.Odd == nil {
				return ErrInvalidProof
			}
			resp := round.Odd
			t := base.ToProjective().ScalarMul(resp.Alpha).ToAffine()
			expectedA := commitWithGenerator(base, baseGen.H(), resp.Alpha, resp.R)
			if !expectedA.Equal(round.A) {
				return ErrInvalidProof
			}
			if !cycleGen.Open(round.TX, t.X().ToCycleScalar(cycleGen.Curve()), resp.TxR) {
				return ErrInvalidProof
			}
			if !cycleGen.Open(round.TY, t.Y().ToCycleScalar(cycleGen.Curve()), resp.TyR) {
				return ErrInvalidProof
			}
			return nil
		}

		if round.Even == nil {
			return ErrInvalidProof
		}
		resp := round.Even
		t1Point := base.ToProjective().ScalarMul(resp.Z)
		if qPoint != nil {
			t1Point = t1Point.Add(qPoint.ToProjective())
		}
		t1 := t1Point.ToAffine()
		if t1.IsIdentity() {
			return ErrInvalidProof
		}

		mu.Lock()
		r := multimult.NewRelation()
		r.Insert(base, resp.Z)
		r.Insert(commitments.Exp, curve.OneScalar(baseGen.Curve()))
		r.Insert(round.A, curve.ZeroScalar(baseGen.Curve()).Sub(curve.OneScalar(baseGen.Curve())))
		r.Insert(baseGen.H(), resp.RResp)
		err := baseMM.Drain(r)
		mu.Unlock()
		if err != nil {
			return err
		}

		mu.Lock()
		err = pointadd.Aggregate(
			cycleGen,
			t1,
			pointadd.PointCommitments{CX: commitments.PX, CY: commitments.PY},
			pointadd.PointCommitments{CX: round.TX, CY: round.TY},
			resp.AddProof,
			transcript.NewHasher(hashDomain+"-pointadd"),
			cycleMM,
		)
		mu.Unlock()
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !baseMM.Evaluate() || !cycleMM.Evaluate() {
		return ErrInvalidProof
	}
	return nil
}

func scalarBytes(s curve.Scalar) []byte { v := s.U256(); return v.Bytes() }

func scalarFromBytes(c *curve.Params, b []byte) (curve.Scalar, error) {
	var u bigint.U256
	if err := u.SetBytes(b); err != nil {
		return curve.Scalar{}, err
	}
	return curve.ScalarFromU256(c, u), nil
}

type wireOdd struct {
	Alpha, R, TxR, TyR []byte
}

type wireEven struct {
	Z, RResp []byte
	AddProof []byte
}

type wireRound struct {
	A      []byte
	TX, TY []byte
	Odd    *wireOdd
	Even   *wireEven
}

type wireProof struct {
	Rounds []wireRound
}

func (r SingleExpProof) marshalWire() (wireRound, error) {
	w := wireRound{A: r.A.Bytes(), TX: r.TX.Point().Bytes(), TY: r.TY.Point().Bytes()}
	if r.Odd != nil {
		w.Odd = &wireOdd{
			Alpha: scalarBytes(r.Odd.Alpha), R: scalarBytes(r.Odd.R),
			TxR: scalarBytes(r.Odd.TxR), TyR: scalarBytes(r.Odd.TyR),
		}
	}
	if r.Even != nil {
		addProofBytes, err := r.Even.AddProof.MarshalBinary()
		if err != nil {
			return wireRound{}, err
		}
		w.Even = &wireEven{Z: scalarBytes(r.Even.Z), RResp: scalarBytes(r.Even.RResp), AddProof: addProofBytes}
	}
	return w, nil
}

func (w wireRound) unmarshal(baseCurve, cycleCurve *curve.Params) (SingleExpProof, error) {
	a, err := curve.SetBytesAffine(baseCurve, w.A)
	if err != nil {
		return SingleExpProof{}, err
	}
	txPoint, err := curve.SetBytesAffine(cycleCurve, w.TX)
	if err != nil {
		return SingleExpProof{}, err
	}
	tyPoint, err := curve.SetBytesAffine(cycleCurve, w.TY)
	if err != nil {
		return SingleExpProof{}, err
	}
	round := SingleExpProof{A: a, TX: pedersen.CommitmentFromPoint(txPoint), TY: pedersen.CommitmentFromPoint(tyPoint)}

	if w.Odd != nil {
		alpha, err := scalarFromBytes(baseCurve, w.Odd.Alpha)
		if err != nil {
			return SingleExpProof{}, err
		}
		r, err := scalarFromBytes(baseCurve, w.Odd.R)
		if err != nil {
			return SingleExpProof{}, err
		}
		txR, err := scalarFromBytes(cycleCurve, w.Odd.TxR)
		if err != nil {
			return SingleExpProof{}, err
		}
		tyR, err := scalarFromBytes(cycleCurve, w.Odd.TyR)
		if err != nil {
			return SingleExpProof{}, err
		}
		round.Odd = &OddResponse{Alpha: alpha, R: r, TxR: txR, TyR: tyR}
	}
	if w.Even != nil {
		z, err := scalarFromBytes(baseCurve, w.Even.Z)
		if err != nil {
			return SingleExpProof{}, err
		}
		rResp, err := scalarFromBytes(baseCurve, w.Even.RResp)
		if err != nil {
			return SingleExpProof{}, err
		}
		addProof, err := pointadd.UnmarshalProof(w.Even.AddProof, cycleCurve)
		if err != nil {
			return SingleExpProof{}, err
		}
		round.Even = &EvenResponse{Z: z, RResp: rResp, AddProof: addProof}
	}
	return round, nil
}

// MarshalBinary implements a cbor wire encoding for Proof.
func (p *Proof) MarshalBinary() ([]byte, error) {
	rounds := make([]wireRound, len(p.Rounds))
	for i, r := range p.Rounds {
		w, err := r.marshalWire()
		if err != nil {
			return nil, err
		}
		rounds[i] = w
	}
	return cbor.Marshal(wireProof{Rounds: rounds})
}

// UnmarshalProof decodes a Proof encoded by MarshalBinary.
func UnmarshalProof(data []byte, baseCurve, cycleCurve *curve.Params) (*Proof, error) {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	rounds := make([]SingleExpProof, len(w.Rounds))
	for i, wr := range w.Rounds {
		r, err := wr.unmarshal(baseCurve, cycleCurve)
		if err != nil {
			return nil, err
		}
		rounds[i] = r
	}
	return &Proof{Rounds: rounds}, nil
}
