// SPDX-License-Identifier: MIT

package costfn

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// Names accepted by Parse.
const (
	NameSqEuclidean = "sq_euclidean"
	NameEuclidean   = "euclidean"
	NameCosine      = "cosine"
	NameGeodesic    = "geodesic"
)

// DefaultGeodesicNeighbors is the k used by Parse("geodesic").
const DefaultGeodesicNeighbors = 5

// Func is a ground cost between point clouds.
type Func interface {
	// Name returns the canonical name accepted by Parse.
	Name() string
	// Pairwise returns the n×m cost matrix between the rows of x and y.
	Pairwise(x, y *matrix.Dense) (*matrix.Dense, error)
}

// Factorizer is implemented by costs with an exact low-rank form C = A·Bᵀ.
type Factorizer interface {
	Func
	Factors(x, y *matrix.Dense) (a, b *matrix.Dense, err error)
}

// Parse resolves a cost name ("" means sq_euclidean). A geodesic cost may be
// written "geodesic" or "geodesic:<k>".
func Parse(name string) (Func, error) {
	switch {
	case name == "" || name == NameSqEuclidean:
		return SqEuclidean{}, nil
	case name == NameEuclidean:
		return Euclidean{}, nil
	case name == NameCosine:
		return Cosine{}, nil
	case name == NameGeodesic:
		return Geodesic{Neighbors: DefaultGeodesicNeighbors}, nil
	case strings.HasPrefix(name, NameGeodesic+":"):
		var k int
		if _, err := fmt.Sscanf(name, NameGeodesic+":%d", &k); err != nil || k <= 0 {
			return nil, oterr.Errorf("costfn.Parse", oterr.ErrConfiguration, "bad neighbor count in %q", name)
		}
		return Geodesic{Neighbors: k}, nil
	}

	return nil, oterr.Errorf("costfn.Parse", oterr.ErrConfiguration, "unknown cost %q", name)
}

// checkClouds validates that x and y are non-nil and share a feature dimension.
func checkClouds(op string, x, y *matrix.Dense) error {
	if x == nil || y == nil {
		return oterr.Errorf(op, oterr.ErrShape, "nil point cloud")
	}
	if x.Cols() != y.Cols() {
		return oterr.Errorf(op, oterr.ErrShape, "feature dims %d vs %d", x.Cols(), y.Cols())
	}

	return nil
}

// SqEuclidean is |x - y|².
type SqEuclidean struct{}

// Name implements Func.
func (SqEuclidean) Name() string { return NameSqEuclidean }

// Pairwise implements Func. Negative round-off is clamped to zero.
func (SqEuclidean) Pairwise(x, y *matrix.Dense) (*matrix.Dense, error) {
	if err := checkClouds("SqEuclidean.Pairwise", x, y); err != nil {
		return nil, err
	}
	out, _ := matrix.NewDense(x.Rows(), y.Rows())
	data := out.RawData()
	m := y.Rows()
	var i, j int
	var d float64
	for i = 0; i < x.Rows(); i++ {
		xi := x.RawRow(i)
		for j = 0; j < m; j++ {
			d = floats.Distance(xi, y.RawRow(j), 2)
			data[i*m+j] = d * d
		}
	}

	return out, nil
}

// Factors returns A = [|x|², 1, -2x] (n×(d+2)) and B = [1, |y|², y] (m×(d+2))
// so that A·Bᵀ equals Pairwise(x, y) up to round-off.
func (SqEuclidean) Factors(x, y *matrix.Dense) (*matrix.Dense, *matrix.Dense, error) {
	if err := checkClouds("SqEuclidean.Factors", x, y); err != nil {
		return nil, nil, err
	}
	d := x.Cols()
	a, _ := matrix.NewDense(x.Rows(), d+2)
	b, _ := matrix.NewDense(y.Rows(), d+2)
	var i, k int
	for i = 0; i < x.Rows(); i++ {
		xi, ai := x.RawRow(i), a.RawRow(i)
		ai[0] = floats.Dot(xi, xi)
		ai[1] = 1
		for k = 0; k < d; k++ {
			ai[k+2] = -2 * xi[k]
		}
	}
	for i = 0; i < y.Rows(); i++ {
		yi, bi := y.RawRow(i), b.RawRow(i)
		bi[0] = 1
		bi[1] = floats.Dot(yi, yi)
		copy(bi[2:], yi)
	}

	return a, b, nil
}

// Euclidean is |x - y|.
type Euclidean struct{}

// Name implements Func.
func (Euclidean) Name() string { return NameEuclidean }

// Pairwise implements Func.
func (Euclidean) Pairwise(x, y *matrix.Dense) (*matrix.Dense, error) {
	if err := checkClouds("Euclidean.Pairwise", x, y); err != nil {
		return nil, err
	}
	out, _ := matrix.NewDense(x.Rows(), y.Rows())
	data := out.RawData()
	m := y.Rows()
	for i := 0; i < x.Rows(); i++ {
		for j := 0; j < m; j++ {
			data[i*m+j] = floats.Distance(x.RawRow(i), y.RawRow(j), 2)
		}
	}

	return out, nil
}

// Cosine is 1 - cos(x, y). A zero vector has cosine distance 1 to everything.
type Cosine struct{}

// Name implements Func.
func (Cosine) Name() string { return NameCosine }

// Pairwise implements Func.
func (Cosine) Pairwise(x, y *matrix.Dense) (*matrix.Dense, error) {
	if err := checkClouds("Cosine.Pairwise", x, y); err != nil {
		return nil, err
	}
	ny := make([]float64, y.Rows())
	for j := range ny {
		ny[j] = floats.Norm(y.RawRow(j), 2)
	}
	out, _ := matrix.NewDense(x.Rows(), y.Rows())
	data := out.RawData()
	m := y.Rows()
	var nx, den float64
	for i := 0; i < x.Rows(); i++ {
		xi := x.RawRow(i)
		nx = floats.Norm(xi, 2)
		for j := 0; j < m; j++ {
			den = nx * ny[j]
			if den == 0 {
				data[i*m+j] = 1
				continue
			}
			data[i*m+j] = math.Max(0, 1-floats.Dot(xi, y.RawRow(j))/den)
		}
	}

	return out, nil
}
