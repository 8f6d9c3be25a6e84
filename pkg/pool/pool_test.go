package pool_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/zkattest/pkg/pool"
)

func TestParallelizeRunsAllJobs(t *testing.T) {
	pl := pool.NewPool(4)
	defer pl.TearDown()

	var count int64
	err := pl.Parallelize(100, func(i int) error {
		atomic.AddInt64(&count, 1)
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 100, count)
}

func TestParallelizeZeroIsNoop(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	called := false
	err := pl.Parallelize(0, func(i int) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestParallelizePropagatesFirstError(t *testing.T) {
	pl := pool.NewPool(4)
	defer pl.TearDown()

	sentinel := errors.New("boom")
	err := pl.Parallelize(10, func(i int) error {
		if i == 3 {
			return sentinel
		}
		return nil
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestSubmitRunsClosureAndReturnsItsError(t *testing.T) {
	pl := pool.NewPool(1)
	defer pl.TearDown()

	ran := false
	err := pl.Submit(func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	sentinel := errors.New("submit failed")
	err = pl.Submit(func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}
