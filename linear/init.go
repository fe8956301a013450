// SPDX-License-Identifier: MIT

package linear

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/costfn"
	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/internal/rng"
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// Bounds and regularization of the Sinkhorn solves nested in initializers.
var initSinkhornBounds = convergence.Bounds{MaxIterations: 1000, InnerIterations: 10, Threshold: 1e-6}

const initSinkhornEpsilon = 0.05

const opInitial = "linear.InitialPlan"

// initialFactors picks the starting (Q, R, g) for a low-rank solve.
func initialFactors(geom geometry.Geometry, a, b []float64, o Options) (factors, error) {
	if w := o.Warm; w != nil && w.IsLowRank() && w.Rank() == o.Rank {
		n, m := w.Shape()
		if n == len(a) && m == len(b) {
			q, r, g := w.Factors()
			return factors{q: q, r: r, g: g}, nil
		}
	}
	io := o.InitOptions
	switch o.Initializer {
	case InitRandom:
		return randomInit(a, b, o.Rank, io.Seed), nil
	case InitKMeans:
		return kmeansInit(geom.(*geometry.PointCloud), a, b, o.Rank, io)
	case InitGeneralizedKMeans:
		return generalizedKMeansInit(geom.(*geometry.PointCloud), a, b, o.Rank, io)
	default:
		return rank2Init(a, b, o.Rank), nil
	}
}

// uniformInner returns g = (Σa / r)·1.
func uniformInner(a []float64, r int) []float64 {
	g := make([]float64, r)
	floats.AddConst(floats.Sum(a)/float64(r), g)

	return g
}

// arange returns (1, 2, ..., n) normalized to total.
func arange(n int, total float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	floats.Scale(total/floats.Sum(out), out)

	return out
}

// rank2Init builds the rank-2 feasible coupling
//
//	Q = (λ/M)·a1·g1ᵀ + ((1−λ)/M)·a2·g2ᵀ,  a2 = (a − λ·a1)/(1 − λ)
//
// with a1, g1 increasing ramps of mass M and λ small enough for a2, g2 >= 0.
// R is built the same way from b. Both satisfy every coupling constraint.
func rank2Init(a, b []float64, r int) factors {
	mass := floats.Sum(a)
	g := uniformInner(a, r)
	lambda := math.Min(floats.Min(a), math.Min(floats.Min(b), floats.Min(g))) / (2 * mass)

	split := func(w []float64) ([]float64, []float64) {
		w1 := arange(len(w), mass)
		w2 := make([]float64, len(w))
		for i := range w {
			w2[i] = (w[i] - lambda*w1[i]) / (1 - lambda)
		}
		return w1, w2
	}
	g1, g2 := split(g)
	outer := func(w []float64) *matrix.Dense {
		w1, w2 := split(w)
		m, _ := matrix.NewDense(len(w), r)
		for i := range w {
			row := m.RawRow(i)
			for k := 0; k < r; k++ {
				row[k] = (lambda*w1[i]*g1[k] + (1-lambda)*w2[i]*g2[k]) / mass
			}
		}
		return m
	}

	return factors{q: outer(a), r: outer(b), g: g}
}

// Random streams of the initializers, derived from InitializerOptions.Seed.
const (
	streamRandom uint64 = iota + 1
	streamSourceClusters
	streamTargetClusters
)

// InitialPlan returns the low-rank plan o.Initializer starts a solve on geom from.
// Errors: those of Solve for the options and marginals; oterr.ErrConfiguration
// when o is not low rank.
func InitialPlan(geom geometry.Geometry, a, b []float64, o Options) (*Plan, error) {
	if err := ValidateOptions(o); err != nil {
		return nil, err
	}
	if !o.IsLowRank() {
		return nil, oterr.Errorf(opInitial, oterr.ErrConfiguration, "rank=%d, initial plans are low rank", o.Rank)
	}
	if err := validateProblem(geom, a, b, o); err != nil {
		return nil, err
	}
	f, err := initialFactors(geom, a, b, o)
	if err != nil {
		return nil, err
	}

	return &Plan{q: f.q, r: f.r, g: f.g}, nil
}

// InitialStructuralPlan returns the low-rank plan o.Initializer produces for
// matching the structure xx (n×n) under a with yy (m×m) under b, where the two
// sides may live in different spaces.
//
// InitRank2 and InitRandom ignore the structures. InitKMeans clusters each
// cloud into its own o.Rank centroids and couples it to them, so xx and yy must
// be point clouds. InitGeneralizedKMeans refines each side on its own structure.
//
// Errors: oterr.ErrConfiguration for invalid options or marginals, a rank above
// min(n, m), or k-means without point clouds; oterr.ErrShape for sizes that
// disagree with a and b.
func InitialStructuralPlan(xx, yy geometry.Geometry, a, b []float64, o Options) (*Plan, error) {
	if err := ValidateOptions(o); err != nil {
		return nil, err
	}
	if !o.IsLowRank() {
		return nil, oterr.Errorf(opInitial, oterr.ErrConfiguration, "rank=%d, initial plans are low rank", o.Rank)
	}
	if xx == nil || yy == nil {
		return nil, oterr.Errorf(opInitial, oterr.ErrConfiguration, "nil structure")
	}
	if n, _ := xx.Shape(); n != len(a) {
		return nil, oterr.Errorf(opInitial, oterr.ErrShape, "source structure has %d rows for %d weights", n, len(a))
	}
	if m, _ := yy.Shape(); m != len(b) {
		return nil, oterr.Errorf(opInitial, oterr.ErrShape, "target structure has %d rows for %d weights", m, len(b))
	}
	if o.Rank > min(len(a), len(b)) {
		return nil, oterr.Errorf(opInitial, oterr.ErrConfiguration, "rank=%d exceeds min(%d, %d)", o.Rank, len(a), len(b))
	}
	if err := ValidateMarginals(a, b, o); err != nil {
		return nil, err
	}

	io := o.InitOptions
	var (
		f   factors
		err error
	)
	switch o.Initializer {
	case InitRandom:
		f = randomInit(a, b, o.Rank, io.Seed)
	case InitKMeans:
		px, okx := xx.(*geometry.PointCloud)
		py, oky := yy.(*geometry.PointCloud)
		if !okx || !oky {
			return nil, oterr.Errorf(opInitial, oterr.ErrConfiguration, "initializer %q requires point-cloud structures", o.Initializer)
		}
		f, err = structuralKMeansInit(px, py, a, b, o.Rank, io)
	case InitGeneralizedKMeans:
		f = rank2Init(a, b, o.Rank)
		if f.q, err = refineCoupling(xx, f.q, a, f.g, io); err == nil {
			f.r, err = refineCoupling(yy, f.r, b, f.g, io)
		}
	default:
		f = rank2Init(a, b, o.Rank)
	}
	if err != nil {
		return nil, oterr.Wrap(opInitial, err)
	}

	return &Plan{q: f.q, r: f.r, g: f.g}, nil
}

// randomInit draws |N(0,1)| entries and rescales every row to its marginal.
func randomInit(a, b []float64, r int, seed int64) factors {
	src := rng.Derive(seed, streamRandom)
	draw := func(w []float64) *matrix.Dense {
		m, _ := matrix.NewDense(len(w), r)
		for i := range w {
			row := m.RawRow(i)
			for k := range row {
				row[k] = math.Abs(src.NormFloat64()) + tinyDenominator
			}
			floats.Scale(w[i]/floats.Sum(row), row)
		}
		return m
	}
	q := draw(a)

	return factors{q: q, r: draw(b), g: uniformInner(a, r)}
}

// kmeansInit clusters the source cloud into r centroids and couples each
// cloud to the centroids with entropic transport under marginals (a, g) and (b, g).
func kmeansInit(pc *geometry.PointCloud, a, b []float64, r int, io InitializerOptions) (factors, error) {
	x, y := pc.Points()
	z := kmeans(x, r, rng.Derive(io.Seed, streamSourceClusters), io.MaxIterations, io.Threshold)
	g := uniformInner(a, r)

	q, err := centroidCoupling(pc.CostFn(), x, z, a, g)
	if err != nil {
		return factors{}, err
	}
	rr, err := centroidCoupling(pc.CostFn(), y, z, b, g)
	if err != nil {
		return factors{}, err
	}

	return factors{q: q, r: rr, g: g}, nil
}

// structuralKMeansInit clusters each structure's cloud on its own.
func structuralKMeansInit(xx, yy *geometry.PointCloud, a, b []float64, r int, io InitializerOptions) (factors, error) {
	g := uniformInner(a, r)
	side := func(pc *geometry.PointCloud, w []float64, stream uint64) (*matrix.Dense, error) {
		x, _ := pc.Points()
		z := kmeans(x, r, rng.Derive(io.Seed, stream), io.MaxIterations, io.Threshold)
		return centroidCoupling(pc.CostFn(), x, z, w, g)
	}
	q, err := side(xx, a, streamSourceClusters)
	if err != nil {
		return factors{}, err
	}
	rr, err := side(yy, b, streamTargetClusters)
	if err != nil {
		return factors{}, err
	}

	return factors{q: q, r: rr, g: g}, nil
}

// centroidCoupling couples points to centroids z under marginals (w, g).
func centroidCoupling(fn costfn.Func, points, z *matrix.Dense, w, g []float64) (*matrix.Dense, error) {
	c, err := fn.Pairwise(points, z)
	if err != nil {
		return nil, err
	}

	return entropicCoupling(c, w, g)
}

// generalizedKMeansInit refines the rank-2 start of each cloud on its own
// structure (see refineCoupling).
func generalizedKMeansInit(pc *geometry.PointCloud, a, b []float64, r int, io InitializerOptions) (factors, error) {
	x, y := pc.Points()
	f := rank2Init(a, b, r)

	self := func(points *matrix.Dense) (geometry.Geometry, error) {
		return geometry.NewPointCloud(points, points, pc.CostFn())
	}
	sx, err := self(x)
	if err != nil {
		return factors{}, err
	}
	sy, err := self(y)
	if err != nil {
		return factors{}, err
	}
	if f.q, err = refineCoupling(sx, f.q, a, f.g, io); err != nil {
		return factors{}, err
	}
	if f.r, err = refineCoupling(sy, f.r, b, f.g, io); err != nil {
		return factors{}, err
	}

	return f, nil
}

// refineCoupling runs mirror descent on ⟨C, F·diag(1/g)·Fᵀ⟩ from f, each step a
// KL projection onto the couplings of (w, g).
func refineCoupling(self geometry.Geometry, f *matrix.Dense, w, g []float64, io InitializerOptions) (*matrix.Dense, error) {
	for it := 0; it < io.MaxIterations; it++ {
		grad, err := self.Apply(f)
		if err != nil {
			return nil, err
		}
		divideColumns(grad, g)
		gamma := io.Gamma
		if norm := maxAbs(grad.RawData()); norm > 0 {
			gamma /= norm * norm
		}
		// Cost γ·∇ − log F with ε = 1 gives F ⊙ exp(−γ·∇) up to scalings.
		cost := grad.Copy()
		cd, fd := cost.RawData(), f.RawData()
		for i := range cd {
			cd[i] = gamma*cd[i] - safeLog(fd[i])
		}
		next, err := sinkhornPlan(cost, w, g, 1)
		if err != nil {
			return nil, err
		}
		change := jeffreys(next.RawData(), f.RawData())
		f = next
		if change < io.Threshold {
			break
		}
	}

	return f, nil
}

// entropicCoupling solves a balanced Sinkhorn problem on the mean-normalized
// cost c and returns the plan.
func entropicCoupling(c *matrix.Dense, a, b []float64) (*matrix.Dense, error) {
	if mean := matrix.Sum(c) / float64(c.Rows()*c.Cols()); mean > 0 {
		c = matrix.Scale(c, 1/mean)
	}

	return sinkhornPlan(c, a, b, initSinkhornEpsilon)
}

// sinkhornPlan runs balanced Sinkhorn with the initializer bounds.
func sinkhornPlan(c *matrix.Dense, a, b []float64, eps float64) (*matrix.Dense, error) {
	ctl, err := convergence.New(initSinkhornBounds)
	if err != nil {
		return nil, err
	}
	st := sinkhorn(c, a, b, eps, 1, 1, ctl)

	return gibbsPlan(c, st.f, st.g, eps), nil
}
