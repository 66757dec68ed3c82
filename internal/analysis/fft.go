package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short")

// Spectrum is the one-sided amplitude spectrum of a uniformly sampled,
// mean-subtracted series. Freqs are in cycles per unit time.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum transforms data sampled every dt.
func PowerSpectrum(data []float64, dt float64) Spectrum {
	n := len(data)
	if n == 0 {
		return Spectrum{}
	}

	seq := make([]float64, n)
	copy(seq, data)
	floats.AddConst(-stat.Mean(seq, nil), seq)

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, seq)

	s := Spectrum{
		Freqs: make([]float64, len(coeff)),
		Power: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Freqs[i] = fft.Freq(i) / dt
		s.Power[i] = cmplx.Abs(c) / float64(n)
	}
	return s
}

// DominantFrequency returns the strongest nonzero frequency of data.
// The resolution is 1/(len(data)·dt).
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: %d samples", ErrShortSeries, len(data))
	}
	s := PowerSpectrum(data, dt)
	i := floats.MaxIdx(s.Power[1:]) + 1
	return s.Freqs[i], nil
}

// UniformStep returns the spacing of an evenly spaced grid.
func UniformStep(times []float64) (float64, error) {
	if len(times) < 2 {
		return 0, fmt.Errorf("%w: %d time points", ErrShortSeries, len(times))
	}
	dt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	for i := 1; i < len(times); i++ {
		if math.Abs(times[i]-times[i-1]-dt) > 1e-9*math.Max(1, math.Abs(dt)) {
			return 0, fmt.Errorf("analysis: time grid is not uniform at index %d", i)
		}
	}
	return dt, nil
}
