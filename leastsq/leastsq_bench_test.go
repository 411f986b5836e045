package leastsq

import (
	"math/rand/v2"
	"testing"
)

// createBenchmarkData generates noisy Gaussian peak measurements.
func createBenchmarkData(n int) (x, y, sigma []float64) {
	rng := rand.New(rand.NewPCG(42, 42))

	x = linspace(-5, 5, n)
	y = sample(Gaussian.Func, x, []float64{4, 0.5, 1.2})
	sigma = constant(0.05, n)
	for i := range y {
		y[i] += sigma[i] * rng.NormFloat64()
	}
	return x, y, sigma
}

func BenchmarkFit(b *testing.B) {
	sizes := []struct {
		name string
		n    int
	}{
		{"Small_50", 50},
		{"Medium_500", 500},
		{"Large_5000", 5000},
	}
	modes := []struct {
		name string
		opts []Option
	}{
		{"forward", nil},
		{"central", []Option{WithDifference(Central)}},
		{"analytic", []Option{WithJacobian(Gaussian.Grad)}},
	}

	for _, size := range sizes {
		for _, mode := range modes {
			b.Run(size.name+"/"+mode.name, func(b *testing.B) {
				x, y, sigma := createBenchmarkData(size.n)
				opts := append([]Option{WithLogger(quietLogger())}, mode.opts...)

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := Fit(Gaussian.Func, x, y, sigma, []float64{3, 0, 1}, opts...); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
