package spectral

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Spectrum is a one-sided frequency-domain view of a real series.
// Frequencies are in cycles per observation.
type Spectrum struct {
	Frequencies []float64 `json:"frequencies"`
	Values      []float64 `json:"values"`
}

// FFT returns the magnitudes of the discrete Fourier transform of values at
// the non-negative frequencies 0, 1/n, ..., floor(n/2)/n.
func FFT(values []float64) *Spectrum {
	n := len(values)
	if n == 0 {
		return &Spectrum{}
	}
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, values)

	s := &Spectrum{
		Frequencies: make([]float64, len(coeffs)),
		Values:      make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		s.Frequencies[i] = fft.Freq(i)
		s.Values[i] = cmplx.Abs(c)
	}
	return s
}

// Periodogram returns |X_k|^2 of the mean-removed series for k = 1..n/2.
// The zero frequency is excluded.
func Periodogram(values []float64) []float64 {
	n := len(values)
	if n < 2 {
		return nil
	}
	mean := stat.Mean(values, nil)
	centered := make([]float64, n)
	for i, v := range values {
		centered[i] = v - mean
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, centered)
	power := make([]float64, 0, n/2)
	for k := 1; k <= n/2; k++ {
		a := cmplx.Abs(coeffs[k])
		power = append(power, a*a)
	}
	return power
}

// Entropy is the Shannon entropy of the normalized periodogram divided by the
// log of the number of frequencies. It is close to 1 for white noise and close
// to 0 for a single sinusoid. Series with fewer than 4 observations or no
// variation yield 0.
func Entropy(values []float64) float64 {
	if len(values) < 4 || floats.Min(values) == floats.Max(values) {
		return 0
	}
	// Variation at rounding level carries no spectrum.
	scale := floats.Norm(values, math.Inf(1))
	if stat.Variance(values, nil) <= 1e-20*scale*scale {
		return 0
	}
	power := Periodogram(values)
	if len(power) < 2 {
		return 0
	}
	total := floats.Sum(power)
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}

	p := make([]float64, len(power))
	floats.ScaleTo(p, 1/total, power)
	h := stat.Entropy(p) / math.Log(float64(len(p)))
	if math.IsNaN(h) {
		return 0
	}
	return math.Min(math.Max(h, 0), 1)
}

// WelchOptions configures Welch. Zero values select the defaults.
type WelchOptions struct {
	SegmentLength int     // samples per segment (default 256, capped at len)
	Overlap       int     // overlapping samples (default SegmentLength/2)
	SampleRate    float64 // default 1
}

// Welch estimates the one-sided power spectral density with Welch's method:
// Hann-windowed segments, each with its mean removed, averaged periodograms
// scaled as a density.
func Welch(values []float64, opts *WelchOptions) *Spectrum {
	n := len(values)
	if n < 2 {
		return &Spectrum{}
	}
	if opts == nil {
		opts = &WelchOptions{}
	}
	nperseg := opts.SegmentLength
	if nperseg <= 0 {
		nperseg = 256
	}
	nperseg = min(nperseg, n)
	overlap := opts.Overlap
	if overlap <= 0 || overlap >= nperseg {
		overlap = nperseg / 2
	}
	fs := opts.SampleRate
	if fs <= 0 {
		fs = 1
	}

	window := hann(nperseg)
	scale := 1 / (fs * floats.Dot(window, window))

	fft := fourier.NewFFT(nperseg)
	nfreq := nperseg/2 + 1
	psd := make([]float64, nfreq)
	segment := make([]float64, nperseg)
	coeffs := make([]complex128, nfreq)

	step := nperseg - overlap
	segments := 0
	for start := 0; start+nperseg <= n; start += step {
		mean := stat.Mean(values[start:start+nperseg], nil)
		for i := range segment {
			segment[i] = (values[start+i] - mean) * window[i]
		}
		coeffs = fft.Coefficients(coeffs, segment)
		for k, c := range coeffs {
			a := cmplx.Abs(c)
			psd[k] += a * a * scale
		}
		segments++
	}

	freqs := make([]float64, nfreq)
	for k := range psd {
		psd[k] /= float64(segments)
		// Fold the negative frequencies, except DC and an even-length Nyquist bin.
		if k > 0 && !(nperseg%2 == 0 && k == nfreq-1) {
			psd[k] *= 2
		}
		freqs[k] = fft.Freq(k) * fs
	}

	return &Spectrum{Frequencies: freqs, Values: psd}
}

// hann returns the periodic Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}
