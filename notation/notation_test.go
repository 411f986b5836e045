package notation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scifit/pkg/errors"
)

func TestExponent(t *testing.T) {
	tests := []struct {
		v    float64
		want int
	}{
		{1, 0},
		{9.999, 0},
		{10, 1},
		{10.777777, 1},
		{1000, 3},
		{999.999, 2},
		{1e15, 15},
		{0.33, -1},
		{0.1, -1},
		{0.001, -3},
		{0.007, -3},
		{1e-300, -300},
		{-250, 2},
		{math.MaxFloat64, 308},
		{5e-324, -324},
		{3e-320, -320},
		{2.2250738585072014e-308, -308},
		{2e-310, -310},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Exponent(tt.v), "Exponent(%g)", tt.v)
	}

	for p := -323; p <= 308; p++ {
		require.Equal(t, p, Exponent(math.Pow10(p)), "Exponent(1e%d)", p)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		dx   float64
		opts []Option
		want string
	}{
		{
			name: "standard",
			x:    10.777777, dx: 0.33,
			want: `(1.078 \pm 0.033)e+01`,
		},
		{
			name: "compact",
			x:    10.777777, dx: 0.33,
			opts: []Option{WithStyle(StyleCompact)},
			want: `1.078(33)e+01`,
		},
		{
			name: "standard one significant figure",
			x:    10.777777, dx: 0.33,
			opts: []Option{WithSignificantFigures(1)},
			want: `(1.08 \pm 0.03)e+01`,
		},
		{
			name: "compact one significant figure pads to two columns",
			x:    10.777777, dx: 0.33,
			opts: []Option{WithSignificantFigures(1), WithStyle(StyleCompact)},
			want: `1.08( 3)e+01`,
		},
		{
			name: "standard three significant figures",
			x:    10.777777, dx: 0.33,
			opts: []Option{WithSignificantFigures(3)},
			want: `(1.0778 \pm 0.0330)e+01`,
		},
		{
			name: "large value small uncertainty",
			x:    1234.5678, dx: 0.0123,
			want: `(1.234568 \pm 0.000012)e+03`,
		},
		{
			name: "large value small uncertainty compact",
			x:    1234.5678, dx: 0.0123,
			opts: []Option{WithStyle(StyleCompact)},
			want: `1.234568(12)e+03`,
		},
		{
			name: "negative exponent",
			x:    0.000123456, dx: 0.0000021,
			want: `(1.235 \pm 0.021)e-04`,
		},
		{
			name: "same decade",
			x:    5.5, dx: 1.2,
			want: `(5.5 \pm 1.2)e+00`,
		},
		{
			name: "x below dx",
			x:    0.003, dx: 0.007,
			want: `(3.0 \pm 7.0)e-03`,
		},
		{
			name: "x equal to dx",
			x:    2, dx: 2,
			want: `(2.0 \pm 2.0)e+00`,
		},
		{
			name: "x zero",
			x:    0, dx: 0.5,
			want: `(0.0 \pm 5.0)e-01`,
		},
		{
			name: "x below dx ignores compact style",
			x:    3, dx: 40,
			opts: []Option{WithStyle(StyleCompact)},
			want: `(0.3 \pm 4.0)e+01`,
		},
		{
			name: "x below dx ignores unknown style",
			x:    1, dx: 5,
			opts: []Option{WithStyle(Style(9))},
			want: `(1.0 \pm 5.0)e+00`,
		},
		{
			name: "three digit exponent",
			x:    6.02214076e123, dx: 3e118,
			want: `(6.022141 \pm 0.000030)e+123`,
		},
		{
			name: "subnormal uncertainty",
			x:    5e-318, dx: 3e-320,
			want: `(5.000 \pm 0.030)e-318`,
		},
		{
			name: "subnormal value and uncertainty",
			x:    1e-320, dx: 3e-320,
			want: `(1.0 \pm 3.0)e-320`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.x, tt.dx, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// pure: same input, same output
			again, err := Format(tt.x, tt.dx, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestFormat_DecimalsFollowUncertainty(t *testing.T) {
	// one more significant figure on dx means one more decimal on x
	for sig := 1; sig <= 5; sig++ {
		got, err := Format(123.456789, 0.0456, WithSignificantFigures(sig))
		require.NoError(t, err)
		mantissa := got[1:indexOf(got, ' ')]
		assert.Len(t, mantissa, 2+(2-(-2)+sig-1), "sig=%d: %s", sig, got)
	}
}

func indexOf(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return len(s)
}

func TestFormat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		x      float64
		dx     float64
		opts   []Option
		target error
	}{
		{"negative x", -1, 0.1, nil, errors.ErrInvalidInput},
		{"NaN x", math.NaN(), 0.1, nil, errors.ErrInvalidInput},
		{"Inf x", math.Inf(1), 0.1, nil, errors.ErrInvalidInput},
		{"zero dx", 1, 0, nil, errors.ErrInvalidInput},
		{"negative dx", 1, -0.1, nil, errors.ErrInvalidInput},
		{"Inf dx", 1, math.Inf(1), nil, errors.ErrInvalidInput},
		{"zero significant figures", 1, 0.1, []Option{WithSignificantFigures(0)}, errors.ErrInvalidInput},
		{"unknown style", 10, 0.1, []Option{WithStyle(Style(7))}, errors.ErrUnknownStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.x, tt.dx, tt.opts...)
			assert.Empty(t, got)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    Style
		wantErr bool
	}{
		{"standard", StyleStandard, false},
		{"STD", StyleStandard, false},
		{"compact", StyleCompact, false},
		{" NIST ", StyleCompact, false},
		{"latex", StyleStandard, true},
		{"", StyleStandard, true},
	}

	for _, tt := range tests {
		got, err := ParseStyle(tt.in)
		if tt.wantErr {
			var styleErr *errors.UnknownStyleError
			require.True(t, errors.As(err, &styleErr), "ParseStyle(%q)", tt.in)
			assert.Equal(t, tt.in, styleErr.Style)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestStyleText(t *testing.T) {
	var s Style
	require.NoError(t, s.UnmarshalText([]byte("nist")))
	assert.Equal(t, StyleCompact, s)

	b, err := s.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "compact", string(b))

	_, err = Style(3).MarshalText()
	assert.True(t, errors.Is(err, errors.ErrUnknownStyle))
	assert.Equal(t, "Style(3)", Style(3).String())
}

func TestMeasurement(t *testing.T) {
	got, err := Measurement{Value: -10.777777, Uncertainty: 0.33}.Format()
	require.NoError(t, err)
	assert.Equal(t, `-(1.078 \pm 0.033)e+01`, got)

	got, err = Measurement{Value: 10.777777, Uncertainty: 0.33}.Format(WithStyle(StyleCompact))
	require.NoError(t, err)
	assert.Equal(t, `1.078(33)e+01`, got)

	_, err = Measurement{Value: 1, Uncertainty: math.Inf(1)}.Format()
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	assert.Equal(t, `(2.0 \pm 2.0)e+00`, Measurement{Value: 2, Uncertainty: 2}.String())
	assert.Equal(t, "1 ± +Inf", Measurement{Value: 1, Uncertainty: math.Inf(1)}.String())
}
