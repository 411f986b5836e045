// Package notation renders a measured value and its uncertainty in scientific
// notation with the number of significant figures the uncertainty justifies.
//
// The uncertainty keeps the requested number of significant figures (2 by
// default) and fixes how many decimals the value shows:
//
//	Format(10.777777, 0.33)                             // (1.078 \pm 0.033)e+01
//	Format(10.777777, 0.33, WithStyle(StyleCompact))    // 1.078(33)e+01
//	Format(0.003, 0.007)                                // (3.0 \pm 7.0)e-03
//
// "\pm" is emitted literally so the output can be pasted into LaTeX.
//
// The compact style assumes dx is small compared to x. When it is not, the
// digits in parentheses no longer line up with the last digits of the value;
// the output is still produced as-is.
package notation

import (
	"fmt"
	"math"
	"strings"

	"github.com/YuminosukeSato/scifit/pkg/errors"
)

// DefaultSignificantFigures is the number of significant figures kept on the uncertainty.
const DefaultSignificantFigures = 2

type options struct {
	sig   int
	style Style
}

// Option configures Format.
type Option func(*options)

// WithSignificantFigures sets the number of significant figures kept on the uncertainty.
func WithSignificantFigures(n int) Option {
	return func(o *options) {
		o.sig = n
	}
}

// WithStyle selects the output style. It only applies when x > dx.
func WithStyle(s Style) Option {
	return func(o *options) {
		o.style = s
	}
}

// Exponent returns floor(log10(|v|)), exact at powers of ten.
// v must be finite and non-zero.
func Exponent(v float64) int {
	v = math.Abs(v)
	var p int
	if v < minNormal {
		// Log10 is off by whole decades on subnormals; estimate on a scaled copy.
		p = int(math.Floor(math.Log10(v*1e300))) - 300
	} else {
		p = int(math.Floor(math.Log10(v)))
	}
	// Log10 may land just below an integer for exact powers of ten.
	for math.Pow10(p) > v {
		p--
	}
	for math.Pow10(p+1) <= v {
		p++
	}
	return p
}

// minNormal is the smallest positive normal float64.
const minNormal = 0x1p-1022

// Format renders x ± dx in scientific notation.
//
// x must be finite and non-negative; sign handling is left to the caller
// (Measurement.Format does it). dx must be finite and strictly positive.
//
// When x > dx the exponent of x is used and dx decides the number of decimals.
// Otherwise both numbers are written at the exponent of dx with
// significant-figures − 1 decimals, and the style is ignored.
func Format(x, dx float64, opts ...Option) (string, error) {
	o := options{sig: DefaultSignificantFigures, style: StyleStandard}
	for _, opt := range opts {
		opt(&o)
	}

	if !(x >= 0) || math.IsInf(x, 0) {
		return "", errors.NewValidationError("x", "must be finite and non-negative", x)
	}
	if !(dx > 0) || math.IsInf(dx, 0) {
		return "", errors.NewValidationError("dx", "must be finite and strictly positive", dx)
	}
	if o.sig < 1 {
		return "", errors.NewValidationError("significant_figures", "must be at least 1", o.sig)
	}

	pdx := Exponent(dx)

	if x <= dx {
		decimals := o.sig - 1
		scale := math.Pow10(pdx)
		return pair(x/scale, dx/scale, decimals, pdx), nil
	}

	px := Exponent(x)
	decimals := px - pdx + o.sig - 1
	mx := x / math.Pow10(px)

	switch o.style {
	case StyleStandard:
		return pair(mx, dx/math.Pow10(px), decimals, px), nil
	case StyleCompact:
		mdx := dx / math.Pow10(pdx)
		// half away from zero; mdx is positive
		u := int(mdx*math.Pow10(o.sig-1) + 0.5)
		return fmt.Sprintf("%.*f(%2d)e%+03d", decimals, mx, u, px), nil
	default:
		return "", errors.NewUnknownStyleError(o.style.String())
	}
}

// pair writes "(a \pm b)e+NN" with both mantissas to the same number of decimals.
func pair(a, b float64, decimals, exp int) string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(fmt.Sprintf("%.*f", decimals, a))
	sb.WriteString(` \pm `)
	sb.WriteString(fmt.Sprintf("%.*f", decimals, b))
	sb.WriteByte(')')
	sb.WriteString(fmt.Sprintf("e%+03d", exp))
	return sb.String()
}

// Measurement is a value with its one-standard-deviation uncertainty.
type Measurement struct {
	Value       float64
	Uncertainty float64
}

// Format renders the measurement like Format, prefixing "-" for negative values.
func (m Measurement) Format(opts ...Option) (string, error) {
	s, err := Format(math.Abs(m.Value), m.Uncertainty, opts...)
	if err != nil {
		return "", err
	}
	if m.Value < 0 {
		return "-" + s, nil
	}
	return s, nil
}

// String formats with the defaults, falling back to %g when the measurement
// cannot be formatted.
func (m Measurement) String() string {
	s, err := m.Format()
	if err != nil {
		return fmt.Sprintf("%g ± %g", m.Value, m.Uncertainty)
	}
	return s
}
