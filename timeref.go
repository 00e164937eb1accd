package traverso

import (
	"fmt"
	"time"
)

// UniversalSampleRate is the number of TimeRef ticks per second. It is
// divisible by all the common audio sample rates (22050, 44100, 48000, 88200,
// 96000, 192000), so converting frames to TimeRef and back is exact for them.
const UniversalSampleRate = 28224000

// TimeRef is a position or a length on the timeline, in ticks of
// UniversalSampleRate. The zero value is the start of the timeline.
type TimeRef int64

const (
	Millisecond TimeRef = UniversalSampleRate / 1000
	Second      TimeRef = UniversalSampleRate
	Minute              = 60 * Second
	Hour                = 60 * Minute
)

// FramesToTimeRef converts a frame count at the given sample rate to a TimeRef.
func FramesToTimeRef(frames int64, rate int) TimeRef {
	if rate <= 0 {
		return 0
	}
	if UniversalSampleRate%rate == 0 {
		return TimeRef(frames * int64(UniversalSampleRate/rate))
	}
	return TimeRef(frames * UniversalSampleRate / int64(rate))
}

// DurationToTimeRef converts a wall clock duration to a TimeRef, truncating to
// the nearest tick.
func DurationToTimeRef(d time.Duration) TimeRef {
	sec, rem := d/time.Second, d%time.Second
	return TimeRef(sec)*Second + TimeRef(int64(rem)*UniversalSampleRate/int64(time.Second))
}

// ParseTimeRef parses a duration string such as "1m30s" or "250ms".
func ParseTimeRef(s string) (TimeRef, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return DurationToTimeRef(d), nil
}

// Frames returns the number of whole frames at the given sample rate.
func (t TimeRef) Frames(rate int) int64 {
	if rate <= 0 {
		return 0
	}
	if UniversalSampleRate%rate == 0 {
		return int64(t) / int64(UniversalSampleRate/rate)
	}
	return int64(t) * int64(rate) / UniversalSampleRate
}

func (t TimeRef) Seconds() float64 {
	return float64(t) / UniversalSampleRate
}

func (t TimeRef) Duration() time.Duration {
	sec, rem := t/Second, t%Second
	return time.Duration(sec)*time.Second + time.Duration(int64(rem)*int64(time.Second)/UniversalSampleRate)
}

// String formats the TimeRef as h:mm:ss.mmm; negative values get a leading
// minus sign.
func (t TimeRef) String() string {
	sign := ""
	if t < 0 {
		sign = "-"
		t = -t
	}
	h := t / Hour
	t -= h * Hour
	m := t / Minute
	t -= m * Minute
	s := t / Second
	t -= s * Second
	ms := t / Millisecond
	return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign, h, m, s, ms)
}

// Clamp limits t to the range [lo, hi].
func (t TimeRef) Clamp(lo, hi TimeRef) TimeRef {
	if t < lo {
		return lo
	}
	if t > hi {
		return hi
	}
	return t
}
