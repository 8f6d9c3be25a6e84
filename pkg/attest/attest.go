// Package attest composes the building blocks in pkg/proofs into the full
// ZK attestation: given an ECDSA signature, the signed message's hash, the
// signer's public key, and a public ring of addresses, it proves the
// signature is valid for some key corresponding to a ring member, without
// revealing the public key or which member signed.
package attest

import (
	"errors"
	"io"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/zkattest/pkg/bigint"
	"github.com/luxfi/zkattest/pkg/curve"
	"github.com/luxfi/zkattest/pkg/multimult"
	"github.com/luxfi/zkattest/pkg/pedersen"
	"github.com/luxfi/zkattest/pkg/pool"
	"github.com/luxfi/zkattest/pkg/proofs/exp"
	"github.com/luxfi/zkattest/pkg/proofs/membership"
	"github.com/luxfi/zkattest/pkg/transcript"
)

// SecParam is the number of cut-and-choose rounds the Exp proof runs,
// giving soundness error 2^-SecParam. Enforced exactly at verify time:
// index subsampling (picking a subset of rounds to check) is never used.
const SecParam = 60

var (
	// ErrIdentityR is returned when the derived R point is the identity,
	// which would make the signature's r-coordinate meaningless.
	ErrIdentityR = errors.New("attest: derived R point is the identity")
	// ErrInvalidProof is returned when either sub-proof fails verification.
	ErrInvalidProof = errors.New("attest: proof is invalid")
	// ErrSecurityParamMismatch mirrors the exp package's error for the
	// composite proof's round count.
	ErrSecurityParamMismatch = errors.New("attest: security parameter does not match proof round count")
	// ErrInvalidPublicKey is returned when Input's public key bytes do not
	// decode to a valid secp256k1 point.
	ErrInvalidPublicKey = errors.New("attest: invalid public key encoding")
)

// Input is the raw, wire-format material a prover starts from: a SEC1
// public key, a 32-byte big-endian signature (r,s), and the 32-byte
// big-endian hash of the signed message.
type Input struct {
	PublicKey []byte   // SEC1 encoded (compressed or uncompressed)
	R, S      [32]byte // big-endian scalars
	MsgHash   [32]byte // big-endian scalar
}

// parsed is Input decoded into the internal curve types Construct needs.
type parsed struct {
	PK      curve.AffinePoint
	R, S    curve.Scalar
	MsgHash curve.Scalar
}

// ParseInput decodes raw wire bytes into internal curve values, using
// decred/dcrd's SEC1 point decompression as the sole parsing boundary (it
// rejects points not on secp256k1 before any bespoke arithmetic sees them).
func ParseInput(base *curve.Params, in Input) (parsed, error) {
	pub, err := secp256k1.ParsePubKey(in.PublicKey)
	if err != nil {
		return parsed{}, ErrInvalidPublicKey
	}
	uncompressed := pub.SerializeUncompressed()
	pk, err := curve.SetBytesAffine(base, uncompressed)
	if err != nil {
		return parsed{}, err
	}

	var rU, sU, hU bigint.U256
	if err := rU.SetBytes(in.R[:]); err != nil {
		return parsed{}, err
	}
	if err := sU.SetBytes(in.S[:]); err != nil {
		return parsed{}, err
	}
	if err := hU.SetBytes(in.MsgHash[:]); err != nil {
		return parsed{}, err
	}

	return parsed{
		PK:      pk,
		R:       curve.ScalarFromU256(base, rU),
		S:       curve.ScalarFromU256(base, sU),
		MsgHash: curve.ScalarFromU256(base, hU),
	}, nil
}

// ZkAttestProof is the published artefact: a Pedersen cycle setup, the
// message hash, the derived R point, commitments to s1/pk.x/pk.y/address,
// the Exp proof, the Membership proof, and the public ring.
type ZkAttestProof struct {
	Pedersen pedersen.Cycle
	MsgHash  curve.Scalar
	RPoint   curve.AffinePoint

	CommitmentToS1      pedersen.Commitment
	CommitmentToPKX     pedersen.Commitment
	CommitmentToPKY     pedersen.Commitment
	CommitmentToAddress pedersen.Commitment

	ExpProof        *exp.Proof
	MembershipProof *membership.Proof
	Ring            []curve.Scalar
}

// Construct builds a ZkAttestProof. address is the prover's address
// (already known to be one of ring's entries) and addressRand is the
// randomness used to build CommitmentToAddress -- both supplied by the
// caller since, unlike s1/pk, the commitment to address is expected to
// have been produced and possibly published ahead of time.
func Construct(
	rng io.Reader,
	workers *pool.Pool,
	pedersenCycle pedersen.Cycle,
	in Input,
	address curve.Scalar,
	addressRand curve.Scalar,
	ring []curve.Scalar,
	ringIndex int,
) (*ZkAttestProof, error) {
	baseGen := pedersenCycle.Base()
	cycleGen := pedersenCycle.CycleGen()
	base := baseGen.Curve()

	in2, err := ParseInput(base, in)
	if err != nil {
		return nil, err
	}

	sInv := in2.S.Inverse()
	rInv := in2.R.Inverse()
	u1 := sInv.Mul(in2.MsgHash)
	u2 := sInv.Mul(in2.R)
	rPoint := curve.DoubleScalarMul(base.Generator().ToProjective(), u1, in2.PK.ToProjective(), u2).ToAffine()
	if rPoint.IsIdentity() {
		return nil, ErrIdentityR
	}
	s1 := rInv.Mul(in2.S)
	z1 := rInv.Mul(in2.MsgHash)
	qPoint := base.Generator().ToProjective().ScalarMul(z1).ToAffine()

	s1Rand, err := curve.RandomScalar(rng, base)
	if err != nil {
		return nil, err
	}
	pkxRand, err := curve.RandomScalar(rng, cycleGen.Curve())
	if err != nil {
		return nil, err
	}
	pkyRand, err := curve.RandomScalar(rng, cycleGen.Curve())
	if err != nil {
		return nil, err
	}

	commitmentToS1 := pedersen.CommitmentFromPoint(rPoint.ToProjective().ScalarMul(s1).Add(baseGen.H().ToProjective().ScalarMul(s1Rand)).ToAffine())
	commitmentToPKX := cycleGen.Commit(in2.PK.X().ToCycleScalar(cycleGen.Curve()), pkxRand)
	commitmentToPKY := cycleGen.Commit(in2.PK.Y().ToCycleScalar(cycleGen.Curve()), pkyRand)
	commitmentToAddress := cycleGen.Commit(address, addressRand)

	expSecrets := exp.Secrets{Point: in2.PK, Exp: s1}
	expCommitments := exp.Commitments{PX: commitmentToPKX, PY: commitmentToPKY, Exp: commitmentToS1.Point()}
	expOpening := exp.Opening{PXRand: pkxRand, PYRand: pkyRand, ExpRand: s1Rand}

	expProof, err := exp.Construct(rng, workers, rPoint, baseGen, cycleGen, expSecrets, expCommitments, expOpening, SecParam, &qPoint)
	for errors.Is(err, exp.ErrIdentityIntermediate) {
		expProof, err = exp.Construct(rng, workers, rPoint, baseGen, cycleGen, expSecrets, expCommitments, expOpening, SecParam, &qPoint)
	}
	if err != nil {
		return nil, err
	}

	membershipProof, err := membership.Construct(
		rng, cycleGen, ring, commitmentToAddress,
		membership.Secrets{Value: address, Randomness: addressRand, Index: ringIndex},
		transcript.NewHasher("attest-membership"),
	)
	if err != nil {
		return nil, err
	}

	return &ZkAttestProof{
		Pedersen:            pedersenCycle,
		MsgHash:             in2.MsgHash,
		RPoint:              rPoint,
		CommitmentToS1:      commitmentToS1,
		CommitmentToPKX:     commitmentToPKX,
		CommitmentToPKY:     commitmentToPKY,
		CommitmentToAddress: commitmentToAddress,
		ExpProof:            expProof,
		MembershipProof:     membershipProof,
		Ring:                ring,
	}, nil
}

// Verify is the end-to-end verification entry point: it re-derives R and Q
// from the same (signature, msgHash, pubkey) triple a legitimate prover
// used (failing if the proof's published R disagrees), then checks both
// sub-proofs. securityParam must equal the Exp proof's round count exactly
// -- there is no index-subsampling shortcut.
func Verify(rng io.Reader, workers *pool.Pool, proof *ZkAttestProof, securityParam int, in Input) error {
	if proof.RPoint.IsIdentity() {
		return ErrIdentityR
	}
	if securityParam != len(proof.ExpProof.Rounds) {
		return ErrSecurityParamMismatch
	}

	base := proof.Pedersen.Base().Curve()
	in2, err := ParseInput(base, in)
	if err != nil {
		return err
	}
	sInv := in2.S.Inverse()
	rInv := in2.R.Inverse()
	u1 := sInv.Mul(in2.MsgHash)
	u2 := sInv.Mul(in2.R)
	rPoint := curve.DoubleScalarMul(base.Generator().ToProjective(), u1, in2.PK.ToProjective(), u2).ToAffine()
	if rPoint.IsIdentity() {
		return ErrIdentityR
	}
	if !rPoint.Equal(proof.RPoint) {
		return ErrInvalidProof
	}
	z1 := rInv.Mul(in2.MsgHash)
	qPoint := base.Generator().ToProjective().ScalarMul(z1).ToAffine()

	baseGen := proof.Pedersen.Base()
	cycleGen := proof.Pedersen.CycleGen()
	expCommitments := exp.Commitments{
		PX:  proof.CommitmentToPKX,
		PY:  proof.CommitmentToPKY,
		Exp: proof.CommitmentToS1.Point(),
	}
	if err := exp.Verify(rng, workers, proof.RPoint, baseGen, cycleGen, expCommitments, proof.ExpProof, securityParam, &qPoint); err != nil {
		return ErrInvalidProof
	}

	if err := membership.Verify(cycleGen, proof.Ring, proof.CommitmentToAddress, proof.MembershipProof, transcript.NewHasher("attest-membership")); err != nil {
		return ErrInvalidProof
	}

	return nil
}

// AggregateVerify checks only the membership sub-proof's linear relations
// into a caller-supplied multimult.MultiMult instead of evaluating them
// immediately, letting a batch verifier check many proofs' membership
// components with one combined multi-scalar multiplication. The Exp
// sub-proof still needs its own call to exp.Verify, since its per-round
// point-add proofs run against the cycle curve's own MultiMult internally.
func AggregateVerify(mm *multimult.MultiMult, proof *ZkAttestProof) error {
	return membership.Aggregate(
		proof.Pedersen.CycleGen(), proof.Ring, proof.CommitmentToAddress, proof.MembershipProof,
		transcript.NewHasher("attest-membership"), mm,
	)
}

// wireProof is the cbor-serializable projection of ZkAttestProof.
type wireProof struct {
	Pedersen            []byte   `cbor:"pedersen"`
	MsgHash             []byte   `cbor:"msg_hash"`
	RPoint              []byte   `cbor:"r_point"`
	CommitmentToS1      []byte   `cbor:"c_s1"`
	CommitmentToPKX     []byte   `cbor:"c_pkx"`
	CommitmentToPKY     []byte   `cbor:"c_pky"`
	CommitmentToAddress []byte   `cbor:"c_addr"`
	ExpProof            []byte   `cbor:"exp_proof"`
	MembershipProof     []byte   `cbor:"membership_proof"`
	Ring                [][]byte `cbor:"ring"`
}

// MarshalBinary implements encoding.BinaryMarshaler via cbor.
func (p *ZkAttestProof) MarshalBinary() ([]byte, error) {
	pedersenBytes, err := p.Pedersen.MarshalBinary()
	if err != nil {
		return nil, err
	}
	expBytes, err := p.ExpProof.MarshalBinary()
	if err != nil {
		return nil, err
	}
	membershipBytes, err := p.MembershipProof.MarshalBinary()
	if err != nil {
		return nil, err
	}
	ring := make([][]byte, len(p.Ring))
	for i, m := range p.Ring {
		v := m.U256()
		ring[i] = v.Bytes()
	}
	msgHashBytes := p.MsgHash.U256()

	return cbor.Marshal(wireProof{
		Pedersen:            pedersenBytes,
		MsgHash:             msgHashBytes.Bytes(),
		RPoint:              p.RPoint.Bytes(),
		CommitmentToS1:      p.CommitmentToS1.Point().Bytes(),
		CommitmentToPKX:     p.CommitmentToPKX.Point().Bytes(),
		CommitmentToPKY:     p.CommitmentToPKY.Point().Bytes(),
		CommitmentToAddress: p.CommitmentToAddress.Point().Bytes(),
		ExpProof:            expBytes,
		MembershipProof:     membershipBytes,
		Ring:                ring,
	})
}

// UnmarshalBinary decodes a ZkAttestProof encoded by MarshalBinary.
func (p *ZkAttestProof) UnmarshalBinary(data []byte) error {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	var pedersenCycle pedersen.Cycle
	if err := pedersenCycle.UnmarshalBinary(w.Pedersen); err != nil {
		return err
	}
	base := pedersenCycle.Base().Curve()
	cycle := pedersenCycle.CycleGen().Curve()

	msgHash, err := scalarFromBytes(base, w.MsgHash)
	if err != nil {
		return err
	}
	rPoint, err := curve.SetBytesAffine(base, w.RPoint)
	if err != nil {
		return err
	}
	cS1, err := curve.SetBytesAffine(base, w.CommitmentToS1)
	if err != nil {
		return err
	}
	cPKX, err := curve.SetBytesAffine(cycle, w.CommitmentToPKX)
	if err != nil {
		return err
	}
	cPKY, err := curve.SetBytesAffine(cycle, w.CommitmentToPKY)
	if err != nil {
		return err
	}
	cAddr, err := curve.SetBytesAffine(cycle, w.CommitmentToAddress)
	if err != nil {
		return err
	}
	expProof, err := exp.UnmarshalProof(w.ExpProof, base, cycle)
	if err != nil {
		return err
	}
	membershipProof, err := membership.UnmarshalProof(w.MembershipProof, cycle)
	if err != nil {
		return err
	}
	ring := make([]curve.Scalar, len(w.Ring))
	for i, b := range w.Ring {
		s, err := scalarFromBytes(cycle, b)
		if err != nil {
			return err
		}
		ring[i] = s
	}

	*p = ZkAttestProof{
		Pedersen:            pedersenCycle,
		MsgHash:             msgHash,
		RPoint:              rPoint,
		CommitmentToS1:      pedersen.CommitmentFromPoint(cS1),
		CommitmentToPKX:     pedersen.CommitmentFromPoint(cPKX),
		CommitmentToPKY:     pedersen.CommitmentFromPoint(cPKY),
		CommitmentToAddress: pedersen.CommitmentFromPoint(cAddr),
		ExpProof:            expProof,
		MembershipProof:     membershipProof,
		Ring:                ring,
	}
	return nil
}

func scalarFromBytes(c *curve.Params, b []byte) (curve.Scalar, error) {
	var u bigint.U256
	if err := u.SetBytes(b); err != nil {
		return curve.Scalar{}, err
	}
	return curve.ScalarFromU256(c, u), nil
}
