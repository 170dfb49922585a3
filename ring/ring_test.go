package ring_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/iox"

	"code.hybscloud.com/xconnect/ring"
)

func TestClaimCommitDequeueOrder(t *testing.T) {
	r := ring.New[int](4)

	for i := 1; i <= 3; i++ {
		s, err := r.TryClaim()
		require.NoError(t, err)
		s.Data = i
		s.Commit()
	}

	for i := 1; i <= 3; i++ {
		got, err := r.TryDequeue()
		require.NoError(t, err)
		require.Equal(t, i, got)
	}

	_, err := r.TryDequeue()
	require.ErrorIs(t, err, iox.ErrWouldBlock)
}

func TestFullRingReturnsWouldBlock(t *testing.T) {
	r := ring.New[int](2)
	for i := 0; i < 2; i++ {
		s, err := r.TryClaim()
		require.NoError(t, err)
		s.Data = i
		s.Commit()
	}
	_, err := r.TryClaim()
	require.ErrorIs(t, err, iox.ErrWouldBlock)

	_, err = r.TryDequeue()
	require.NoError(t, err)
	_, err = r.TryClaim()
	require.NoError(t, err, "expected slot free after dequeue")
}

func TestConcurrentProducersPreserveCommitOrder(t *testing.T) {
	r := ring.New[int](1024)
	const n = 500
	var wg sync.WaitGroup
	results := make(chan int, n)

	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < n/4; i++ {
				var s *ring.Slot[int]
				var err error
				for {
					s, err = r.TryClaim()
					if err == nil {
						break
					}
				}
				s.Data = base + i
				s.Commit()
			}
		}(p * 1000)
	}
	wg.Wait()

	got := 0
	for got < n {
		v, err := r.TryDequeue()
		if err != nil {
			continue
		}
		results <- v
		got++
	}
	close(results)
	require.Len(t, results, n)
}

func TestNewPanicsBelowMinimumCapacity(t *testing.T) {
	require.Panics(t, func() { ring.New[int](1) }, "expected panic for capacity < 2")
}
