package metrics

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/scifit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func TestChiSquare(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     *mat.VecDense
		yPred     *mat.VecDense
		sigma     *mat.VecDense
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     mat.NewVecDense(3, []float64{1, 2, 3}),
			yPred:     mat.NewVecDense(3, []float64{1, 2, 3}),
			sigma:     mat.NewVecDense(3, []float64{0.1, 0.1, 0.1}),
			want:      0,
			tolerance: 1e-12,
		},
		{
			name:      "unit sigma",
			yTrue:     mat.NewVecDense(3, []float64{10, 20, 30}),
			yPred:     mat.NewVecDense(3, []float64{12, 18, 33}),
			sigma:     mat.NewVecDense(3, []float64{1, 1, 1}),
			want:      17, // 4 + 4 + 9
			tolerance: 1e-12,
		},
		{
			name:      "non-uniform sigma",
			yTrue:     mat.NewVecDense(2, []float64{1, 1}),
			yPred:     mat.NewVecDense(2, []float64{2, 3}),
			sigma:     mat.NewVecDense(2, []float64{0.5, 2}),
			want:      5, // (1/0.5)² + (2/2)²
			tolerance: 1e-12,
		},
		{
			name:    "dimension mismatch",
			yTrue:   mat.NewVecDense(3, []float64{1, 2, 3}),
			yPred:   mat.NewVecDense(2, []float64{1, 2}),
			sigma:   mat.NewVecDense(3, []float64{1, 1, 1}),
			wantErr: true,
		},
		{
			name:    "zero sigma",
			yTrue:   mat.NewVecDense(2, []float64{1, 2}),
			yPred:   mat.NewVecDense(2, []float64{1, 2}),
			sigma:   mat.NewVecDense(2, []float64{1, 0}),
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			sigma:   &mat.VecDense{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChiSquare(tt.yTrue, tt.yPred, tt.sigma)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ChiSquare() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidInput) {
					t.Errorf("error %v should be an InvalidInput error", err)
				}
				return
			}
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("ChiSquare() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReducedChiSquare(t *testing.T) {
	got, err := ReducedChiSquare(12, 8, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2 {
		t.Errorf("ReducedChiSquare(12, 8, 2) = %v, want 2", got)
	}

	for _, tc := range [][2]int{{2, 2}, {2, 3}} {
		_, err := ReducedChiSquare(1, tc[0], tc[1])
		if !errors.Is(err, errors.ErrInvalidDegreesOfFreedom) {
			t.Errorf("ReducedChiSquare(1, %d, %d) error = %v, want ErrInvalidDegreesOfFreedom", tc[0], tc[1], err)
		}
	}
}

func TestRMSResidual(t *testing.T) {
	if got := RMSResidual(8, 2); got != 2 {
		t.Errorf("RMSResidual(8, 2) = %v, want 2", got)
	}
	if !math.IsNaN(RMSResidual(1, 0)) {
		t.Error("RMSResidual with no points should be NaN")
	}
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     *mat.VecDense
		yPred     *mat.VecDense
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     mat.NewVecDense(4, []float64{1, 2, 3, 4}),
			yPred:     mat.NewVecDense(4, []float64{1, 2, 3, 4}),
			want:      1,
			tolerance: 1e-12,
		},
		{
			name:      "mean prediction",
			yTrue:     mat.NewVecDense(4, []float64{1, 2, 3, 4}),
			yPred:     mat.NewVecDense(4, []float64{2.5, 2.5, 2.5, 2.5}),
			want:      0,
			tolerance: 1e-12,
		},
		{
			name:    "constant target",
			yTrue:   mat.NewVecDense(3, []float64{2, 2, 2}),
			yPred:   mat.NewVecDense(3, []float64{1, 2, 3}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2Score(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("R2Score() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("R2Score() = %v, want %v", got, tt.want)
			}
		})
	}
}
