package traverso_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/vsariola/traverso"
)

func TestFramesRoundTrip(t *testing.T) {
	for _, rate := range []int{22050, 44100, 48000, 88200, 96000, 192000} {
		rapid.Check(t, func(t *rapid.T) {
			frames := rapid.Int64Range(0, 1<<32).Draw(t, "frames")
			ref := traverso.FramesToTimeRef(frames, rate)
			if got := ref.Frames(rate); got != frames {
				t.Fatalf("rate %d: %d frames became %d", rate, frames, got)
			}
		})
	}
}

func TestTimeRefString(t *testing.T) {
	tests := []struct {
		ref  traverso.TimeRef
		want string
	}{
		{0, "0:00:00.000"},
		{traverso.Second, "0:00:01.000"},
		{traverso.Hour + 2*traverso.Minute + 3*traverso.Second + 4*traverso.Millisecond, "1:02:03.004"},
		{-traverso.Second / 2, "-0:00:00.500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ref.String())
	}
}

func TestDurationConversion(t *testing.T) {
	ref := traverso.DurationToTimeRef(1500 * time.Millisecond)
	assert.Equal(t, 1.5, ref.Seconds())
	assert.Equal(t, 1500*time.Millisecond, ref.Duration())
	assert.Equal(t, int64(66150), ref.Frames(44100))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, traverso.TimeRef(0), traverso.TimeRef(-5).Clamp(0, 10))
	assert.Equal(t, traverso.TimeRef(10), traverso.TimeRef(15).Clamp(0, 10))
	assert.Equal(t, traverso.TimeRef(7), traverso.TimeRef(7).Clamp(0, 10))
}

func TestLongDurations(t *testing.T) {
	ref := traverso.DurationToTimeRef(2 * time.Hour)
	assert.Equal(t, 2*traverso.Hour, ref)
	assert.Equal(t, 2*time.Hour, ref.Duration())

	ref, err := traverso.ParseTimeRef("10m0.25s")
	assert.NoError(t, err)
	assert.Equal(t, 10*traverso.Minute+250*traverso.Millisecond, ref)
	_, err = traverso.ParseTimeRef("ten minutes")
	assert.Error(t, err)
}
