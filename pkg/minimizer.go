package reco

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Minimizer finds the minimum of a function of npar parameters. The variable
// step sizes set the scale of the initial search.
type Minimizer interface {
	SetFunction(f func(x []float64) float64, npar int)
	SetVariable(i int, name string, value, step float64)
	SetLimits(maxCalls, maxIter int, tol float64)
	Minimize() error
	X() []float64
	CovMatrix(i, j int) float64
	MinValue() float64
}

var ErrNoFunction = errors.New("minimizer: no function set")

// GonumMinimizer runs a quasi-Newton search on a finite difference gradient
// and retries with a simplex search when that fails. The covariance is the
// inverse of half the Hessian at the minimum, which is the parameter error
// matrix of a least squares sum.
type GonumMinimizer struct {
	f     func(x []float64) float64
	names []string
	init  []float64
	steps []float64

	maxCalls int
	maxIter  int
	tol      float64

	x   []float64
	min float64
	cov *mat.SymDense
}

func NewGonumMinimizer() *GonumMinimizer {
	return &GonumMinimizer{}
}

func (m *GonumMinimizer) SetFunction(f func(x []float64) float64, npar int) {
	m.f = f
	m.names = make([]string, npar)
	m.init = make([]float64, npar)
	m.steps = make([]float64, npar)
	for i := range m.steps {
		m.steps[i] = 0.1
	}
}

// SetVariable ignores indices outside the range given to SetFunction.
func (m *GonumMinimizer) SetVariable(i int, name string, value, step float64) {
	if i < 0 || i >= len(m.init) {
		return
	}
	m.names[i] = name
	m.init[i] = value
	if step > 0 {
		m.steps[i] = step
	}
}

func (m *GonumMinimizer) SetLimits(maxCalls, maxIter int, tol float64) {
	m.maxCalls = maxCalls
	m.maxIter = maxIter
	m.tol = tol
}

func (m *GonumMinimizer) settings() *optimize.Settings {
	return &optimize.Settings{
		GradientThreshold: m.tol * 1e-3,
		Converger: &optimize.FunctionConverge{
			Absolute:   m.tol * 1e-4,
			Iterations: 20,
		},
		MajorIterations: m.maxIter,
		FuncEvaluations: m.maxCalls,
	}
}

// Minimize always leaves the best point found in X and MinValue. A non-nil
// error means neither search converged.
func (m *GonumMinimizer) Minimize() error {
	if m.f == nil {
		return ErrNoFunction
	}
	n := len(m.init)
	m.x = append(m.x[:0], m.init...)
	m.min = m.f(m.x)
	m.cov = nil

	problem := optimize.Problem{
		Func: m.f,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, m.f, x, &fd.Settings{Formula: fd.Central})
		},
	}

	result, err := optimize.Minimize(problem, m.init, m.settings(), &optimize.BFGS{})
	m.keep(result)
	err = stopErr(result, err)
	if err != nil {
		simplex := m.simplex()
		result, err = optimize.Minimize(problem, simplex.InitialVertices[0], m.settings(), simplex)
		m.keep(result)
		err = stopErr(result, err)
	}

	hess := &mat.SymDense{}
	fd.Hessian(hess, m.f, m.x, &fd.Settings{Formula: fd.Central})
	hess.ScaleSym(0.5, hess)
	var chol mat.Cholesky
	if !chol.Factorize(hess) {
		return errors.Join(err, fmt.Errorf("minimizer: hessian of %d parameters not positive definite", n))
	}
	cov := &mat.SymDense{}
	if cerr := chol.InverseTo(cov); cerr != nil {
		return errors.Join(err, fmt.Errorf("minimizer: inverting hessian: %w", cerr))
	}
	m.cov = cov
	return err
}

// stopErr turns a search stopped by its budget into an error. optimize
// reports those stops only through the result status.
func stopErr(result *optimize.Result, err error) error {
	if err == nil && result != nil && result.Status.Early() {
		return fmt.Errorf("minimizer: %s: %w", result.Status, result.Status.Err())
	}
	return err
}

// keep records the result if it improves on the current best point.
func (m *GonumMinimizer) keep(result *optimize.Result) {
	if result == nil || len(result.X) != len(m.x) {
		return
	}
	if result.F <= m.min {
		copy(m.x, result.X)
		m.min = result.F
	}
}

// simplex builds the starting simplex from the best point and the steps.
func (m *GonumMinimizer) simplex() *optimize.NelderMead {
	n := len(m.x)
	vertices := make([][]float64, n+1)
	values := make([]float64, n+1)
	for i := range vertices {
		v := append([]float64(nil), m.x...)
		if i > 0 {
			v[i-1] += m.steps[i-1]
		}
		vertices[i] = v
		values[i] = m.f(v)
	}
	return &optimize.NelderMead{InitialVertices: vertices, InitialValues: values}
}

func (m *GonumMinimizer) X() []float64 {
	return m.x
}

func (m *GonumMinimizer) MinValue() float64 {
	return m.min
}

// CovMatrix returns 0 when the covariance is unavailable.
func (m *GonumMinimizer) CovMatrix(i, j int) float64 {
	if m.cov == nil {
		return 0
	}
	n := m.cov.SymmetricDim()
	if i < 0 || j < 0 || i >= n || j >= n {
		return 0
	}
	return m.cov.At(i, j)
}
