package attest_test

import (
	"crypto/rand"
	"io"
	"testing"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/zkattest/pkg/attest"
	"github.com/luxfi/zkattest/pkg/curve"
	"github.com/luxfi/zkattest/pkg/pedersen"
	"github.com/luxfi/zkattest/pkg/pool"
)

// signedInput signs a random 32-byte message hash with a fresh secp256k1
// keypair and returns the wire-format attest.Input plus the raw address
// scalar the caller should place in its ring.
func signedInput(t *testing.T) (in attest.Input, address curve.Scalar) {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	var msgHash [32]byte
	_, err = io.ReadFull(rand.Reader, msgHash[:])
	require.NoError(t, err)

	sig := ecdsa.Sign(priv, msgHash[:])

	in = attest.Input{
		PublicKey: priv.PubKey().SerializeUncompressed(),
		R:         *sig.R().Bytes(),
		S:         *sig.S().Bytes(),
		MsgHash:   msgHash,
	}

	address, err = curve.RandomScalar(rand.Reader, curve.Tom256k1)
	require.NoError(t, err)
	return in, address
}

// buildRingAt builds a ring of size n with address at index idx. Ring
// members live on the cycle curve, same as the address commitment.
func buildRingAt(t *testing.T, n, idx int, address curve.Scalar) []curve.Scalar {
	t.Helper()
	ring := make([]curve.Scalar, n)
	for i := range ring {
		v, err := curve.RandomScalar(rand.Reader, curve.Tom256k1)
		require.NoError(t, err)
		ring[i] = v
	}
	ring[idx] = address
	return ring
}

func TestConstructVerifyRoundTrip(t *testing.T) {
	in, address := signedInput(t)
	ring := buildRingAt(t, 16, 7, address)
	addressRand, err := curve.RandomScalar(rand.Reader, curve.Tom256k1)
	require.NoError(t, err)

	pedersenCycle, err := pedersen.NewCycle(curve.Secp256k1, curve.Tom256k1, rand.Reader)
	require.NoError(t, err)
	pl := pool.NewPool(4)
	defer pl.TearDown()

	proof, err := attest.Construct(rand.Reader, pl, pedersenCycle, in, address, addressRand, ring, 7)
	require.NoError(t, err)

	err = attest.Verify(rand.Reader, pl, proof, attest.SecParam, in)
	assert.NoError(t, err)
}

func TestVerifyRejectsTamperedProofEncoding(t *testing.T) {
	in, address := signedInput(t)
	ring := buildRingAt(t, 16, 7, address)
	addressRand, err := curve.RandomScalar(rand.Reader, curve.Tom256k1)
	require.NoError(t, err)

	pedersenCycle, err := pedersen.NewCycle(curve.Secp256k1, curve.Tom256k1, rand.Reader)
	require.NoError(t, err)
	pl := pool.NewPool(4)
	defer pl.TearDown()

	proof, err := attest.Construct(rand.Reader, pl, pedersenCycle, in, address, addressRand, ring, 7)
	require.NoError(t, err)

	data, err := proof.MarshalBinary()
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF

	var tampered attest.ZkAttestProof
	if err := tampered.UnmarshalBinary(data); err != nil {
		// A corrupted trailing byte may break cbor framing outright, which
		// is an acceptable way for this test to demonstrate rejection.
		return
	}
	err = attest.Verify(rand.Reader, pl, &tampered, attest.SecParam, in)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSignature(t *testing.T) {
	in, address := signedInput(t)
	ring := buildRingAt(t, 16, 7, address)
	addressRand, err := curve.RandomScalar(rand.Reader, curve.Tom256k1)
	require.NoError(t, err)

	pedersenCycle, err := pedersen.NewCycle(curve.Secp256k1, curve.Tom256k1, rand.Reader)
	require.NoError(t, err)
	pl := pool.NewPool(4)
	defer pl.TearDown()

	proof, err := attest.Construct(rand.Reader, pl, pedersenCycle, in, address, addressRand, ring, 7)
	require.NoError(t, err)

	otherIn, _ := signedInput(t)
	otherIn.PublicKey = in.PublicKey // keep the same pubkey, but a different (r,s,msgHash) triple

	err = attest.Verify(rand.Reader, pl, proof, attest.SecParam, otherIn)
	assert.Error(t, err)
}

func TestVerifyRejectsSecurityParamMismatch(t *testing.T) {
	in, address := signedInput(t)
	ring := buildRingAt(t, 16, 7, address)
	addressRand, err := curve.RandomScalar(rand.Reader, curve.Tom256k1)
	require.NoError(t, err)

	pedersenCycle, err := pedersen.NewCycle(curve.Secp256k1, curve.Tom256k1, rand.Reader)
	require.NoError(t, err)
	pl := pool.NewPool(4)
	defer pl.TearDown()

	proof, err := attest.Construct(rand.Reader, pl, pedersenCycle, in, address, addressRand, ring, 7)
	require.NoError(t, err)

	err = attest.Verify(rand.Reader, pl, proof, attest.SecParam+1, in)
	assert.ErrorIs(t, err, attest.ErrSecurityParamMismatch)
}
