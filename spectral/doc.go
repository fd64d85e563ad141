// Package spectral computes frequency-domain and density views of a single
// series.
//
//	fft := spectral.FFT(values)            // magnitudes at k/n
//	psd := spectral.Welch(values, nil)     // Hann, 256 samples, 50% overlap
//	kde := spectral.GaussianKDE(values, 10, 1000)
//
// Entropy reduces the periodogram to a single predictability score and is
// used as the "entropy" feature:
//
//	h := spectral.Entropy(values) // ~1 for white noise, ~0 for a pure tone
package spectral
