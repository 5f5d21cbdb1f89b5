// Package testkit provides the onset-detection, RMS, and spectral analysis
// helpers spec.md §8's Level-2/Level-3 test scenarios need (a 440Hz sine's
// FFT peak, an LFO-swept filter's spectral centroid sweep, bd/sn RMS
// independence, a legato RMS-ratio check). Grounded on
// gonum.org/v1/gonum/dsp/fourier, used the same way the pack's
// austinkregel-vscode-music-player audio feature extractor uses it:
// `fourier.NewFFT(n)` once, `.Coefficients(nil, frame)` per window,
// magnitude from the returned complex128s.
package testkit

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// RMS returns the root-mean-square level of samples.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if abs := float32(math.Abs(float64(s))); abs > peak {
			peak = abs
		}
	}
	return peak
}

// Onsets returns the sample indices where RMS computed over a sliding
// window of size windowSize rises by more than thresholdRatio relative to
// the previous window -- a simple energy-based onset detector sufficient
// for the bd/sn independence and legato-duration scenarios spec.md §8 names,
// without needing a full spectral-flux onset detector.
func Onsets(samples []float32, windowSize int, thresholdRatio float64) []int {
	if windowSize <= 0 || windowSize >= len(samples) {
		return nil
	}
	var onsets []int
	prevRMS := 0.0
	for start := 0; start+windowSize <= len(samples); start += windowSize {
		r := RMS(samples[start : start+windowSize])
		if r > prevRMS*thresholdRatio && r > 1e-4 {
			onsets = append(onsets, start)
		}
		prevRMS = r
	}
	return onsets
}

// Spectrum computes the magnitude spectrum of a windowSize-sample frame
// starting at offset via a real FFT, returning windowSize/2 bins from DC to
// Nyquist. frame is zero-padded if samples runs out before windowSize.
func Spectrum(samples []float32, offset, windowSize int) []float64 {
	frame := make([]float64, windowSize)
	for i := 0; i < windowSize && offset+i < len(samples); i++ {
		frame[i] = float64(samples[offset+i])
	}
	fft := fourier.NewFFT(windowSize)
	coeffs := fft.Coefficients(nil, frame)
	spectrum := make([]float64, windowSize/2)
	for i := range spectrum {
		re, im := real(coeffs[i]), imag(coeffs[i])
		spectrum[i] = math.Sqrt(re*re + im*im)
	}
	return spectrum
}

// PeakFrequency returns the frequency (Hz) of the strongest bin in
// spectrum, computed over a windowSize-sample FFT at sampleRate.
func PeakFrequency(spectrum []float64, sampleRate float64, windowSize int) float64 {
	best := 0
	for i, v := range spectrum {
		if v > spectrum[best] {
			best = i
		}
	}
	return float64(best) * sampleRate / float64(windowSize)
}

// SpectralCentroid returns the amplitude-weighted mean frequency of
// spectrum, the standard measure of a sound's "brightness" used to verify
// an LFO-swept filter cutoff actually moves the spectral content over time.
func SpectralCentroid(spectrum []float64, sampleRate float64, windowSize int) float64 {
	var weighted, total float64
	binHz := sampleRate / float64(windowSize)
	for i, mag := range spectrum {
		freq := float64(i) * binHz
		weighted += freq * mag
		total += mag
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}
