package leastsq

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// covariance returns (JᵀJ)⁻¹ = V·Σ⁻²·Vᵀ from the thin SVD of jac, the numerical
// rank of jac and its condition number. The matrix is nil when the rank is
// below the number of columns.
func covariance(jac *mat.Dense) (*mat.SymDense, int, float64) {
	m, n := jac.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(jac, mat.SVDThin); !ok {
		return nil, 0, math.Inf(1)
	}
	values := svd.Values(nil)

	// singular values come back in descending order
	tol := float64(max(m, n)) * machEps * values[0]
	rank := 0
	for _, v := range values {
		if v > tol {
			rank++
		}
	}
	cond := math.Inf(1)
	if last := values[len(values)-1]; last > 0 {
		cond = values[0] / last
	}
	if rank < n {
		return nil, rank, cond
	}

	var v mat.Dense
	svd.VTo(&v)

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var c float64
			for k := 0; k < n; k++ {
				c += v.At(i, k) * v.At(j, k) / (values[k] * values[k])
			}
			cov.SetSym(i, j, c)
		}
	}
	return cov, rank, cond
}

// infiniteCovariance is the n×n matrix reported when the covariance is indeterminate.
func infiniteCovariance(n int) *mat.SymDense {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = math.Inf(1)
	}
	return mat.NewSymDense(n, data)
}
