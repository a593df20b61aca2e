// Package indicator provides pure technical-indicator transforms over a
// close-price column. Parameter violations are programming errors and fail
// loudly, unlike the environmental faults elsewhere in the aggregation core.
package indicator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter signals a contract violation on indicator parameters.
var ErrInvalidParameter = errors.New("indicator: invalid parameter")

// Line is an indicator output aligned to its input series: Values[i]
// corresponds to input index Start+i. Inputs shorter than the window produce
// an empty line (no defined values).
type Line struct {
	Start  int       `json:"start"`
	Values []float64 `json:"values"`
}

// Bands is a Bollinger envelope. All three lines share the same Start.
type Bands struct {
	Middle Line `json:"middle"`
	Upper  Line `json:"upper"`
	Lower  Line `json:"lower"`
}

// SMA computes the simple moving average with the given window. The first
// defined value sits at input index window-1.
func SMA(closes []float64, window int) (Line, error) {
	if window < 1 {
		return Line{}, fmt.Errorf("%w: window must be >= 1, got %d", ErrInvalidParameter, window)
	}
	if len(closes) < window {
		return Line{Start: window - 1}, nil
	}

	values := make([]float64, 0, len(closes)-window+1)
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			values = append(values, sum/float64(window))
		}
	}
	return Line{Start: window - 1, Values: values}, nil
}

// Bollinger computes the volatility envelope SMA ± k·σ using the sample
// standard deviation over each window. k may be fractional; negative k is a
// contract violation.
func Bollinger(closes []float64, window int, k float64) (Bands, error) {
	if k < 0 {
		return Bands{}, fmt.Errorf("%w: multiplier must be >= 0, got %v", ErrInvalidParameter, k)
	}
	middle, err := SMA(closes, window)
	if err != nil {
		return Bands{}, err
	}

	upper := Line{Start: middle.Start, Values: make([]float64, len(middle.Values))}
	lower := Line{Start: middle.Start, Values: make([]float64, len(middle.Values))}
	for i, mean := range middle.Values {
		sd := sampleStdDev(closes[i:i+window], mean)
		upper.Values[i] = mean + k*sd
		lower.Values[i] = mean - k*sd
	}
	return Bands{Middle: middle, Upper: upper, Lower: lower}, nil
}

// sampleStdDev uses the n-1 denominator, matching the rolling std of the
// charting layer this core originally fed. A single-element window yields 0.
func sampleStdDev(window []float64, mean float64) float64 {
	if len(window) < 2 {
		return 0
	}
	var sum float64
	for _, v := range window {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(window)-1))
}
