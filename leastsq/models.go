package leastsq

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/scifit/pkg/errors"
)

// CatalogModel is a named model with its analytic gradient.
type CatalogModel struct {
	Name    string
	Formula string
	Params  []string
	Func    Model
	Grad    Gradient
}

// NParams returns the number of parameters of the model.
func (c CatalogModel) NParams() int {
	return len(c.Params)
}

// Line is a·x + b.
var Line = CatalogModel{
	Name:    "line",
	Formula: "a*x + b",
	Params:  []string{"a", "b"},
	Func: func(x float64, p []float64) float64 {
		return p[0]*x + p[1]
	},
	Grad: func(x float64, p []float64, grad []float64) {
		grad[0] = x
		grad[1] = 1
	},
}

// Exponential is a·exp(b·x).
var Exponential = CatalogModel{
	Name:    "exponential",
	Formula: "a*exp(b*x)",
	Params:  []string{"a", "b"},
	Func: func(x float64, p []float64) float64 {
		return p[0] * math.Exp(p[1]*x)
	},
	Grad: func(x float64, p []float64, grad []float64) {
		e := math.Exp(p[1] * x)
		grad[0] = e
		grad[1] = p[0] * x * e
	},
}

// ExponentialOffset is a·exp(b·x) + c.
var ExponentialOffset = CatalogModel{
	Name:    "exponential_offset",
	Formula: "a*exp(b*x) + c",
	Params:  []string{"a", "b", "c"},
	Func: func(x float64, p []float64) float64 {
		return p[0]*math.Exp(p[1]*x) + p[2]
	},
	Grad: func(x float64, p []float64, grad []float64) {
		e := math.Exp(p[1] * x)
		grad[0] = e
		grad[1] = p[0] * x * e
		grad[2] = 1
	},
}

// Gaussian is a·exp(-(x-mu)²/(2·s²)).
var Gaussian = CatalogModel{
	Name:    "gaussian",
	Formula: "a*exp(-(x-mu)^2/(2*s^2))",
	Params:  []string{"a", "mu", "s"},
	Func: func(x float64, p []float64) float64 {
		d := x - p[1]
		return p[0] * math.Exp(-d*d/(2*p[2]*p[2]))
	},
	Grad: func(x float64, p []float64, grad []float64) {
		a, mu, s := p[0], p[1], p[2]
		d := x - mu
		e := math.Exp(-d * d / (2 * s * s))
		grad[0] = e
		grad[1] = a * e * d / (s * s)
		grad[2] = a * e * d * d / (s * s * s)
	},
}

// PowerLaw is a·x^b, defined for x ≥ 0.
var PowerLaw = CatalogModel{
	Name:    "power_law",
	Formula: "a*x^b",
	Params:  []string{"a", "b"},
	Func: func(x float64, p []float64) float64 {
		return p[0] * math.Pow(x, p[1])
	},
	Grad: func(x float64, p []float64, grad []float64) {
		xb := math.Pow(x, p[1])
		grad[0] = xb
		if x == 0 {
			grad[1] = 0
			return
		}
		grad[1] = p[0] * xb * math.Log(x)
	},
}

// Polynomial returns c0 + c1·x + … + c_deg·x^deg. deg must be at least 0.
func Polynomial(deg int) CatalogModel {
	if deg < 0 {
		deg = 0
	}
	params := make([]string, deg+1)
	terms := make([]string, deg+1)
	for k := range params {
		params[k] = "c" + strconv.Itoa(k)
		switch k {
		case 0:
			terms[k] = params[k]
		case 1:
			terms[k] = params[k] + "*x"
		default:
			terms[k] = fmt.Sprintf("%s*x^%d", params[k], k)
		}
	}

	return CatalogModel{
		Name:    "poly" + strconv.Itoa(deg),
		Formula: strings.Join(terms, " + "),
		Params:  params,
		Func: func(x float64, p []float64) float64 {
			// Horner
			var v float64
			for k := len(p) - 1; k >= 0; k-- {
				v = v*x + p[k]
			}
			return v
		},
		Grad: func(x float64, p []float64, grad []float64) {
			xk := 1.0
			for k := range grad {
				grad[k] = xk
				xk *= x
			}
		},
	}
}

var catalog = map[string]CatalogModel{
	Line.Name:              Line,
	Exponential.Name:       Exponential,
	ExponentialOffset.Name: ExponentialOffset,
	Gaussian.Name:          Gaussian,
	PowerLaw.Name:          PowerLaw,
}

// maxPolyDegree bounds the degree accepted by Lookup.
const maxPolyDegree = 10

// Lookup returns the catalog model registered under name (case-insensitive).
// "polyN" selects Polynomial(N) for N in [0, 10].
func Lookup(name string) (CatalogModel, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := catalog[key]; ok {
		return c, nil
	}
	if rest, ok := strings.CutPrefix(key, "poly"); ok {
		if deg, err := strconv.Atoi(rest); err == nil && deg >= 0 && deg <= maxPolyDegree {
			return Polynomial(deg), nil
		}
	}
	return CatalogModel{}, errors.NewValidationError("model", "unknown model (see Catalog for the available names)", name)
}

// Catalog lists the fixed catalog models sorted by name, followed by poly2 as
// the representative polynomial.
func Catalog() []CatalogModel {
	out := make([]CatalogModel, 0, len(catalog)+1)
	for _, c := range catalog {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return append(out, Polynomial(2))
}

// Guess builds an initial parameter vector. A single value becomes a
// one-element vector, so scalar and sequence guesses are handled alike.
func Guess(v ...float64) []float64 {
	return append([]float64(nil), v...)
}

// FitModel fits a catalog model using its analytic gradient.
// Options may still override the gradient with WithJacobian.
func FitModel(c CatalogModel, xdata, ydata, sigma, p0 []float64, opts ...Option) (*Result, *Info, error) {
	if len(p0) != c.NParams() {
		return nil, nil, errors.NewDimensionError("leastsq.FitModel", "p0", c.NParams(), len(p0))
	}
	named := func(cfg *config) { cfg.modelName = c.Name }
	all := append([]Option{WithJacobian(c.Grad), named}, opts...)
	return FitFull(c.Func, xdata, ydata, sigma, p0, all...)
}
