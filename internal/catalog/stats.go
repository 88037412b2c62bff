package catalog

import (
	"fmt"
	"math"
	"strconv"

	"github.com/samcharles93/envi/pkg/envi"
)

// BandStats summarizes the samples of one band. NaN samples are counted but
// excluded from the other figures.
type BandStats struct {
	Index  int     `json:"index"`
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	NaN    int     `json:"nan"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Summarize computes population statistics over values.
func Summarize(values []float64) BandStats {
	s := BandStats{Count: len(values)}
	var n int
	var mean, m2 float64
	for _, v := range values {
		if math.IsNaN(v) {
			s.NaN++
			continue
		}
		if n == 0 || v < s.Min {
			s.Min = v
		}
		if n == 0 || v > s.Max {
			s.Max = v
		}
		// Welford's online update.
		n++
		d := v - mean
		mean += d / float64(n)
		m2 += d * (v - mean)
	}
	if n > 0 {
		s.Mean = mean
		s.StdDev = math.Sqrt(m2 / float64(n))
	}
	return s
}

// ReadBand loads band index as float64 and summarizes it.
func ReadBand(r *envi.Reader, index int) (BandStats, []float64, error) {
	values, err := envi.Channel[float64](r, index)
	if err != nil {
		return BandStats{}, nil, err
	}
	s := Summarize(values)
	s.Index = index
	s.Name = r.ChannelNames()[index]
	return s, values, nil
}

// ResolveBand turns a band reference into an index. A reference that names
// a band wins over one that parses as an index.
func ResolveBand(r *envi.Reader, ref string) (int, error) {
	if i := r.ChannelIndex(ref); i >= 0 {
		return i, nil
	}
	if idx, err := strconv.Atoi(ref); err == nil {
		if idx < 0 || idx >= r.NumChannels() {
			return 0, fmt.Errorf("%w %d", envi.ErrInvalidChannel, idx)
		}
		return idx, nil
	}
	return 0, fmt.Errorf("%w: %q", envi.ErrChannelNotFound, ref)
}
