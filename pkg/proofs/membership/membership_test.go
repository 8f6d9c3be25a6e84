package membership_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/zkattest/pkg/curve"
	"github.com/luxfi/zkattest/pkg/multimult"
	"github.com/luxfi/zkattest/pkg/pedersen"
	"github.com/luxfi/zkattest/pkg/proofs/membership"
	"github.com/luxfi/zkattest/pkg/transcript"
)

const ringSize = 8

func buildRing(t *testing.T, c *curve.Params, index int) (ring []curve.Scalar, value, randomness curve.Scalar, gen pedersen.Generator, commitment pedersen.Commitment) {
	t.Helper()
	var err error
	gen, err = pedersen.NewGenerator(c, rand.Reader)
	require.NoError(t, err)

	ring = make([]curve.Scalar, ringSize)
	for i := range ring {
		ring[i], err = curve.RandomScalar(rand.Reader, c)
		require.NoError(t, err)
	}
	value = ring[index]
	randomness, err = curve.RandomScalar(rand.Reader, c)
	require.NoError(t, err)
	commitment = gen.Commit(value, randomness)
	return ring, value, randomness, gen, commitment
}

func TestConstructVerifyRoundTrip(t *testing.T) {
	c := curve.Secp256k1
	ring, value, randomness, gen, commitment := buildRing(t, c, 3)

	proof, err := membership.Construct(rand.Reader, gen, ring, commitment,
		membership.Secrets{Value: value, Randomness: randomness, Index: 3},
		transcript.NewHasher("membership-test"))
	require.NoError(t, err)

	err = membership.Verify(gen, ring, commitment, proof, transcript.NewHasher("membership-test"))
	assert.NoError(t, err)
}

func TestConstructRejectsIndexOutOfRange(t *testing.T) {
	c := curve.Secp256k1
	ring, value, randomness, gen, commitment := buildRing(t, c, 0)

	_, err := membership.Construct(rand.Reader, gen, ring, commitment,
		membership.Secrets{Value: value, Randomness: randomness, Index: len(ring)},
		transcript.NewHasher("membership-test"))
	assert.ErrorIs(t, err, membership.ErrIndexOutOfRange)
}

func TestConstructRejectsEmptyRing(t *testing.T) {
	c := curve.Secp256k1
	gen, err := pedersen.NewGenerator(c, rand.Reader)
	require.NoError(t, err)
	value, err := curve.RandomScalar(rand.Reader, c)
	require.NoError(t, err)
	randomness, err := curve.RandomScalar(rand.Reader, c)
	require.NoError(t, err)
	commitment := gen.Commit(value, randomness)

	_, err = membership.Construct(rand.Reader, gen, nil, commitment,
		membership.Secrets{Value: value, Randomness: randomness, Index: 0},
		transcript.NewHasher("membership-test"))
	assert.ErrorIs(t, err, membership.ErrEmptyRing)
}

func TestVerifyRejectsValueNotInRing(t *testing.T) {
	c := curve.Secp256k1
	ring, _, randomness, gen, _ := buildRing(t, c, 2)

	notInRing, err := curve.RandomScalar(rand.Reader, c)
	require.NoError(t, err)
	commitment := gen.Commit(notInRing, randomness)

	// Construct would need a valid index into ring; simulate a forged proof
	// attempt by constructing honestly against a ring member, then verifying
	// against a commitment to a value that isn't actually in the ring.
	proof, err := membership.Construct(rand.Reader, gen, ring, gen.Commit(ring[0], randomness),
		membership.Secrets{Value: ring[0], Randomness: randomness, Index: 0},
		transcript.NewHasher("membership-test"))
	require.NoError(t, err)

	err = membership.Verify(gen, ring, commitment, proof, transcript.NewHasher("membership-test"))
	assert.ErrorIs(t, err, membership.ErrInvalidProof)
}

func TestAggregateMatchesDirectVerify(t *testing.T) {
	c := curve.Secp256k1
	ring, value, randomness, gen, commitment := buildRing(t, c, 5)

	proof, err := membership.Construct(rand.Reader, gen, ring, commitment,
		membership.Secrets{Value: value, Randomness: randomness, Index: 5},
		transcript.NewHasher("membership-test"))
	require.NoError(t, err)

	mm := multimult.New(c, rand.Reader)
	err = membership.Aggregate(gen, ring, commitment, proof, transcript.NewHasher("membership-test"), mm)
	require.NoError(t, err)
	assert.True(t, mm.Evaluate())
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	c := curve.Secp256k1
	ring, value, randomness, gen, commitment := buildRing(t, c, 1)

	proof, err := membership.Construct(rand.Reader, gen, ring, commitment,
		membership.Secrets{Value: value, Randomness: randomness, Index: 1},
		transcript.NewHasher("membership-test"))
	require.NoError(t, err)

	data, err := proof.MarshalBinary()
	require.NoError(t, err)

	decoded, err := membership.UnmarshalProof(data, c)
	require.NoError(t, err)

	err = membership.Verify(gen, ring, commitment, decoded, transcript.NewHasher("membership-test"))
	assert.NoError(t, err)
}
