package pointadd_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/zkattest/pkg/curve"
	"github.com/luxfi/zkattest/pkg/multimult"
	"github.com/luxfi/zkattest/pkg/pedersen"
	"github.com/luxfi/zkattest/pkg/proofs/pointadd"
	"github.com/luxfi/zkattest/pkg/transcript"
)

// setup builds a random public point p and a random committed point q on
// the signature curve, both expressed as cycle-curve commitments (the shape
// every real call site -- the exponentiation proof's Even branch -- uses).
func setup(t *testing.T) (gen pedersen.Generator, p curve.AffinePoint, qSecrets, rSecrets pointadd.PointSecrets, qCommitments, rCommitments pointadd.PointCommitments) {
	t.Helper()
	base, cycle := curve.Secp256k1, curve.Tom256k1

	var err error
	gen, err = pedersen.NewGenerator(cycle, rand.Reader)
	require.NoError(t, err)

	k1, err := curve.RandomScalar(rand.Reader, base)
	require.NoError(t, err)
	k2, err := curve.RandomScalar(rand.Reader, base)
	require.NoError(t, err)

	g := base.Generator().ToProjective()
	pPoint := g.ScalarMul(k1).ToAffine()
	qPoint := g.ScalarMul(k2).ToAffine()
	rPoint := g.ScalarMul(k1).Add(g.ScalarMul(k2)).ToAffine()

	qxRand, err := curve.RandomScalar(rand.Reader, cycle)
	require.NoError(t, err)
	qyRand, err := curve.RandomScalar(rand.Reader, cycle)
	require.NoError(t, err)
	rxRand, err := curve.RandomScalar(rand.Reader, cycle)
	require.NoError(t, err)
	ryRand, err := curve.RandomScalar(rand.Reader, cycle)
	require.NoError(t, err)

	qSecrets = pointadd.PointSecrets{
		X: pointadd.Secrets{Value: qPoint.X().ToCycleScalar(cycle), Randomness: qxRand},
		Y: pointadd.Secrets{Value: qPoint.Y().ToCycleScalar(cycle), Randomness: qyRand},
	}
	rSecrets = pointadd.PointSecrets{
		X: pointadd.Secrets{Value: rPoint.X().ToCycleScalar(cycle), Randomness: rxRand},
		Y: pointadd.Secrets{Value: rPoint.Y().ToCycleScalar(cycle), Randomness: ryRand},
	}
	qCommitments = pointadd.PointCommitments{
		CX: gen.Commit(qSecrets.X.Value, qSecrets.X.Randomness),
		CY: gen.Commit(qSecrets.Y.Value, qSecrets.Y.Randomness),
	}
	rCommitments = pointadd.PointCommitments{
		CX: gen.Commit(rSecrets.X.Value, rSecrets.X.Randomness),
		CY: gen.Commit(rSecrets.Y.Value, rSecrets.Y.Randomness),
	}
	return gen, pPoint, qSecrets, rSecrets, qCommitments, rCommitments
}

func TestConstructVerifyRoundTrip(t *testing.T) {
	gen, p, q, r, qc, rc := setup(t)

	proof, err := pointadd.Construct(gen, p, q, r, qc, rc, transcript.NewHasher("pointadd-test"), rand.Reader)
	require.NoError(t, err)

	err = pointadd.Verify(gen, p, qc, rc, proof, transcript.NewHasher("pointadd-test"))
	assert.NoError(t, err)
}

func TestVerifyRejectsWrongResult(t *testing.T) {
	gen, p, q, r, qc, rc := setup(t)

	proof, err := pointadd.Construct(gen, p, q, r, qc, rc, transcript.NewHasher("pointadd-test"), rand.Reader)
	require.NoError(t, err)

	// swap rCommitments' X and Y commitments, breaking the claimed sum.
	tampered := pointadd.PointCommitments{CX: rc.CY, CY: rc.CX}
	err = pointadd.Verify(gen, p, qc, tampered, proof, transcript.NewHasher("pointadd-test"))
	assert.ErrorIs(t, err, pointadd.ErrInvalidProof)
}

func TestAggregateMatchesDirectVerify(t *testing.T) {
	gen, p, q, r, qc, rc := setup(t)

	proof, err := pointadd.Construct(gen, p, q, r, qc, rc, transcript.NewHasher("pointadd-test"), rand.Reader)
	require.NoError(t, err)

	mm := multimult.New(gen.Curve(), rand.Reader)
	err = pointadd.Aggregate(gen, p, qc, rc, proof, transcript.NewHasher("pointadd-test"), mm)
	require.NoError(t, err)
	assert.True(t, mm.Evaluate())
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	gen, p, q, r, qc, rc := setup(t)

	proof, err := pointadd.Construct(gen, p, q, r, qc, rc, transcript.NewHasher("pointadd-test"), rand.Reader)
	require.NoError(t, err)

	data, err := proof.MarshalBinary()
	require.NoError(t, err)

	decoded, err := pointadd.UnmarshalProof(data, gen.Curve())
	require.NoError(t, err)

	err = pointadd.Verify(gen, p, qc, rc, decoded, transcript.NewHasher("pointadd-test"))
	assert.NoError(t, err)
}
