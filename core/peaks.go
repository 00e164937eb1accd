package core

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/viterin/vek/vek32"

	"github.com/vsariola/traverso"
)

// PeakCache remembers the absolute peak of read sources so that normalizing
// several clips of the same source reads it only once.
type PeakCache struct {
	cache *gocache.Cache
}

const (
	DefaultPeakCacheTTL = 5 * time.Minute
	peakChunkFrames     = 4096
)

// NewPeakCache creates a cache whose entries expire after ttl (zero means
// DefaultPeakCacheTTL).
func NewPeakCache(ttl time.Duration) *PeakCache {
	if ttl <= 0 {
		ttl = DefaultPeakCacheTTL
	}
	return &PeakCache{cache: gocache.New(ttl, 2*ttl)}
}

// Peak returns the largest absolute sample value of src.
func (p *PeakCache) Peak(src traverso.ReadSource) (float32, error) {
	key := peakKey(src)
	if v, found := p.cache.Get(key); found {
		if peak, ok := v.(float32); ok {
			return peak, nil
		}
	}
	peak, err := scanPeak(src)
	if err != nil {
		return 0, fmt.Errorf("peak of %v: %w", src.Name(), err)
	}
	p.cache.SetDefault(key, peak)
	return peak, nil
}

// Forget drops the cached peak of src.
func (p *PeakCache) Forget(src traverso.ReadSource) {
	p.cache.Delete(peakKey(src))
}

func (p *PeakCache) Len() int { return p.cache.ItemCount() }

func peakKey(src traverso.ReadSource) string {
	return fmt.Sprintf("%s#%p", src.Name(), src)
}

func scanPeak(src traverso.ReadSource) (float32, error) {
	buf := make(traverso.AudioBuffer, peakChunkFrames*traverso.NumChannels)
	var peak float32
	for pos := traverso.TimeRef(0); pos < src.Length(); {
		n, err := src.ReadAt(buf, pos)
		if err != nil {
			return 0, err
		}
		if n <= 0 {
			break
		}
		chunk := buf[:n*traverso.NumChannels]
		vek32.Abs_Inplace(chunk)
		peak = max(peak, vek32.Max(chunk))
		pos += traverso.FramesToTimeRef(int64(n), src.Rate())
	}
	return peak, nil
}
