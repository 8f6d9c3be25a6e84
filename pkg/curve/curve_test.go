package curve_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/zkattest/pkg/bigint"
	"github.com/luxfi/zkattest/pkg/curve"
)

func TestCycleRelation(t *testing.T) {
	assert.True(t, curve.Tom256k1.IsCycleOf(curve.Secp256k1))
	assert.False(t, curve.Secp256k1.IsCycleOf(curve.Secp256k1))
}

func TestGeneratorIsOnCurveAndNotIdentity(t *testing.T) {
	for _, c := range []*curve.Params{curve.Secp256k1, curve.Tom256k1} {
		g := c.Generator().ToProjective()
		assert.True(t, g.IsOnCurve())
		assert.False(t, g.IsIdentity())
	}
}

func TestIdentityIsOnCurve(t *testing.T) {
	for _, c := range []*curve.Params{curve.Secp256k1, curve.Tom256k1} {
		assert.True(t, c.Identity().IsOnCurve())
		assert.True(t, c.Identity().IsIdentity())
	}
}

func TestPointAddAgainstScalarMul(t *testing.T) {
	c := curve.Secp256k1
	g := c.Generator().ToProjective()

	two := curve.OneScalar(c).Add(curve.OneScalar(c))
	double := g.ScalarMul(two)
	sum := g.Add(g)
	assert.True(t, double.Equal(sum))
	assert.True(t, double.Equal(g.Double()))
}

func TestScalarMulDistributesOverAddition(t *testing.T) {
	c := curve.Secp256k1
	g := c.Generator().ToProjective()

	a, err := curve.RandomScalar(rand.Reader, c)
	require.NoError(t, err)
	b, err := curve.RandomScalar(rand.Reader, c)
	require.NoError(t, err)

	lhs := g.ScalarMul(a.Add(b))
	rhs := g.ScalarMul(a).Add(g.ScalarMul(b))
	assert.True(t, lhs.Equal(rhs))
}

func TestDoubleScalarMulMatchesTwoScalarMuls(t *testing.T) {
	c := curve.Secp256k1
	g := c.Generator().ToProjective()
	h := g.ScalarMul(curve.OneScalar(c).Add(curve.OneScalar(c))) // 2G, an arbitrary second point

	a, err := curve.RandomScalar(rand.Reader, c)
	require.NoError(t, err)
	b, err := curve.RandomScalar(rand.Reader, c)
	require.NoError(t, err)

	got := curve.DoubleScalarMul(g, a, h, b)
	want := g.ScalarMul(a).Add(h.ScalarMul(b))
	assert.True(t, got.Equal(want))
}

func TestNegAndSub(t *testing.T) {
	c := curve.Secp256k1
	g := c.Generator().ToProjective()
	zero := g.Sub(g)
	assert.True(t, zero.IsIdentity())
	assert.True(t, g.Neg().Neg().Equal(g))
}

func TestAffineBytesRoundTrip(t *testing.T) {
	c := curve.Secp256k1
	g := c.Generator()
	encoded := g.Bytes()
	assert.Len(t, encoded, 65)
	assert.Equal(t, byte(0x04), encoded[0])

	decoded, err := curve.SetBytesAffine(c, encoded)
	require.NoError(t, err)
	assert.True(t, g.Equal(decoded))
}

func TestAffineBytesRoundTripIdentity(t *testing.T) {
	c := curve.Secp256k1
	identity := c.Identity().ToAffine()
	encoded := identity.Bytes()
	assert.Equal(t, make([]byte, 65), encoded)

	decoded, err := curve.SetBytesAffine(c, encoded)
	require.NoError(t, err)
	assert.True(t, decoded.IsIdentity())
}

func TestSetBytesAffineRejectsBadInput(t *testing.T) {
	_, err := curve.SetBytesAffine(curve.Secp256k1, make([]byte, 64))
	assert.Error(t, err)

	bad := make([]byte, 65)
	bad[0] = 0x02
	_, err = curve.SetBytesAffine(curve.Secp256k1, bad)
	assert.Error(t, err)
}

func TestToCycleScalarPreservesLimbs(t *testing.T) {
	base, cycle := curve.Secp256k1, curve.Tom256k1
	var u bigint.U256
	require.NoError(t, u.SetBytes(make([]byte, 32)))
	fe := curve.FieldElementFromU256(base, bigint.U256{1, 2, 3})
	sc := fe.ToCycleScalar(cycle)
	assert.Equal(t, fe.U256(), sc.U256())
}

func TestRandomScalarIsNeverZero(t *testing.T) {
	c := curve.Secp256k1
	for i := 0; i < 16; i++ {
		s, err := curve.RandomScalar(rand.Reader, c)
		require.NoError(t, err)
		assert.False(t, s.IsZero())
	}
}

func TestScalarInverse(t *testing.T) {
	c := curve.Secp256k1
	s, err := curve.RandomScalar(rand.Reader, c)
	require.NoError(t, err)
	inv := s.Inverse()
	assert.True(t, s.Mul(inv).Equal(curve.OneScalar(c)))
}
