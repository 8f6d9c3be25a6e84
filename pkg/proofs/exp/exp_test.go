package exp_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/zkattest/pkg/curve"
	"github.com/luxfi/zkattest/pkg/pedersen"
	"github.com/luxfi/zkattest/pkg/pool"
	"github.com/luxfi/zkattest/pkg/proofs/exp"
)

const testSecParam = 8

// harness builds a base-curve point base, a secret exponent, a point
// satisfying point+qPoint=base^exponent (qPoint nil means point==base^exponent
// exactly), and the commitments/opening needed to construct and verify a
// Proof against them.
func harness(t *testing.T, qScalar *curve.Scalar) (pedersenCycle pedersen.Cycle, base curve.AffinePoint, secrets exp.Secrets, commitments exp.Commitments, opening exp.Opening, qPoint *curve.AffinePoint) {
	t.Helper()
	baseCurve, cycleCurve := curve.Secp256k1, curve.Tom256k1

	cyc, err := pedersen.NewCycle(baseCurve, cycleCurve, rand.Reader)
	require.NoError(t, err)

	k, err := curve.RandomScalar(rand.Reader, baseCurve)
	require.NoError(t, err)
	base = baseCurve.Generator().ToProjective().ScalarMul(k).ToAffine()

	exponent, err := curve.RandomScalar(rand.Reader, baseCurve)
	require.NoError(t, err)

	target := base.ToProjective().ScalarMul(exponent)

	if qScalar != nil {
		qP := baseCurve.Generator().ToProjective().ScalarMul(*qScalar).ToAffine()
		qPoint = &qP
		target = target.Sub(qP.ToProjective())
	}
	point := target.ToAffine()
	require.False(t, point.IsIdentity())

	secrets = exp.Secrets{Point: point, Exp: exponent}

	commitments, opening, err = exp.Commit(rand.Reader, cyc.Base(), cyc.CycleGen(), base, secrets)
	require.NoError(t, err)

	return cyc, base, secrets, commitments, opening, qPoint
}

func TestConstructVerifyWithoutQ(t *testing.T) {
	cyc, base, secrets, commitments, opening, _ := harness(t, nil)
	pl := pool.NewPool(2)
	defer pl.TearDown()

	proof, err := exp.Construct(rand.Reader, pl, base, cyc.Base(), cyc.CycleGen(), secrets, commitments, opening, testSecParam, nil)
	require.NoError(t, err)

	err = exp.Verify(rand.Reader, pl, base, cyc.Base(), cyc.CycleGen(), commitments, proof, testSecParam, nil)
	assert.NoError(t, err)
}

func TestConstructVerifyWithQ(t *testing.T) {
	q, err := curve.RandomScalar(rand.Reader, curve.Secp256k1)
	require.NoError(t, err)
	cyc, base, secrets, commitments, opening, qPoint := harness(t, &q)
	pl := pool.NewPool(2)
	defer pl.TearDown()

	proof, err := exp.Construct(rand.Reader, pl, base, cyc.Base(), cyc.CycleGen(), secrets, commitments, opening, testSecParam, qPoint)
	require.NoError(t, err)

	err = exp.Verify(rand.Reader, pl, base, cyc.Base(), cyc.CycleGen(), commitments, proof, testSecParam, qPoint)
	assert.NoError(t, err)
}

func TestVerifyRejectsWrongExpCommitment(t *testing.T) {
	cyc, base, secrets, commitments, opening, _ := harness(t, nil)
	pl := pool.NewPool(2)
	defer pl.TearDown()

	proof, err := exp.Construct(rand.Reader, pl, base, cyc.Base(), cyc.CycleGen(), secrets, commitments, opening, testSecParam, nil)
	require.NoError(t, err)

	other, err := curve.RandomScalar(rand.Reader, curve.Secp256k1)
	require.NoError(t, err)
	tampered := commitments
	tampered.Exp = curve.Secp256k1.Generator().ToProjective().ScalarMul(other).ToAffine()

	err = exp.Verify(rand.Reader, pl, base, cyc.Base(), cyc.CycleGen(), tampered, proof, testSecParam, nil)
	assert.Error(t, err)
}

func TestVerifyRejectsSecurityParamMismatch(t *testing.T) {
	cyc, base, secrets, commitments, opening, _ := harness(t, nil)
	pl := pool.NewPool(2)
	defer pl.TearDown()

	proof, err := exp.Construct(rand.Reader, pl, base, cyc.Base(), cyc.CycleGen(), secrets, commitments, opening, testSecParam, nil)
	require.NoError(t, err)

	err = exp.Verify(rand.Reader, pl, base, cyc.Base(), cyc.CycleGen(), commitments, proof, testSecParam+1, nil)
	assert.ErrorIs(t, err, exp.ErrSecurityParamMismatch)
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	cyc, base, secrets, commitments, opening, _ := harness(t, nil)
	pl := pool.NewPool(2)
	defer pl.TearDown()

	proof, err := exp.Construct(rand.Reader, pl, base, cyc.Base(), cyc.CycleGen(), secrets, commitments, opening, testSecParam, nil)
	require.NoError(t, err)

	data, err := proof.MarshalBinary()
	require.NoError(t, err)

	decoded, err := exp.UnmarshalProof(data, cyc.Base().Curve(), cyc.CycleGen().Curve())
	require.NoError(t, err)

	err = exp.Verify(rand.Reader, pl, base, cyc.Base(), cyc.CycleGen(), commitments, decoded, testSecParam, nil)
	assert.NoError(t, err)
}
