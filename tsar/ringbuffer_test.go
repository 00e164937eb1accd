package tsar_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vsariola/traverso/tsar"
)

func TestRingBufferFIFO(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 64).Draw(t, "capacity")
		values := rapid.SliceOfN(rapid.Int(), 0, capacity).Draw(t, "values")
		rb := tsar.NewRingBuffer[int](capacity)
		for _, v := range values {
			if !rb.Write(v) {
				t.Fatalf("write failed with %d of %d slots used", rb.ReadSpace(), capacity)
			}
		}
		for i, want := range values {
			got, ok := rb.Read()
			if !ok || got != want {
				t.Fatalf("read %d: got %v (ok %v), want %v", i, got, ok, want)
			}
		}
		if _, ok := rb.Read(); ok {
			t.Fatal("read from an empty buffer succeeded")
		}
	})
}

func TestRingBufferOverflowKeepsContents(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 32).Draw(t, "capacity")
		extra := rapid.IntRange(1, 32).Draw(t, "extra")
		rb := tsar.NewRingBuffer[int](capacity)
		for i := 0; i < capacity; i++ {
			rb.Write(i)
		}
		for i := 0; i < extra; i++ {
			if rb.Write(-1) {
				t.Fatal("write to a full buffer succeeded")
			}
		}
		for i := 0; i < capacity; i++ {
			if v, ok := rb.Read(); !ok || v != i {
				t.Fatalf("read %d: got %v (ok %v)", i, v, ok)
			}
		}
	})
}

func TestRingBufferWrapAround(t *testing.T) {
	rb := tsar.NewRingBuffer[int](3)
	for round := 0; round < 10; round++ {
		require.True(t, rb.Write(round))
		require.True(t, rb.Write(round+100))
		v, ok := rb.Read()
		require.True(t, ok)
		assert.Equal(t, round, v)
		v, ok = rb.Read()
		require.True(t, ok)
		assert.Equal(t, round+100, v)
	}
	assert.Equal(t, 0, rb.ReadSpace())
	assert.Equal(t, 3, rb.WriteSpace())
}

func TestRingBufferConcurrent(t *testing.T) {
	const n = 10000
	rb := tsar.NewRingBuffer[int](16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; {
			if rb.Write(i) {
				i++
			}
		}
	}()
	for want := 0; want < n; {
		if v, ok := rb.Read(); ok {
			require.Equal(t, want, v)
			want++
		}
	}
	wg.Wait()
}
