// SPDX-License-Identifier: MIT

package linear

// Test bridge: exposes unexported initializers and kernels to linear_test.

import (
	"math/rand"

	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/matrix"
)

// Factors_TestOnly is the low-rank triple returned by the initializers.
type Factors_TestOnly struct {
	Q, R *matrix.Dense
	G    []float64
}

func wrap(f factors) Factors_TestOnly { return Factors_TestOnly{Q: f.q, R: f.r, G: f.g} }

func Rank2Init_TestOnly(a, b []float64, r int) Factors_TestOnly { return wrap(rank2Init(a, b, r)) }

func RandomInit_TestOnly(a, b []float64, r int, seed int64) Factors_TestOnly {
	return wrap(randomInit(a, b, r, seed))
}

func KMeansInit_TestOnly(pc *geometry.PointCloud, a, b []float64, r int) (Factors_TestOnly, error) {
	f, err := kmeansInit(pc, a, b, r, DefaultInitializerOptions())
	return wrap(f), err
}

func GeneralizedKMeansInit_TestOnly(pc *geometry.PointCloud, a, b []float64, r int) (Factors_TestOnly, error) {
	f, err := generalizedKMeansInit(pc, a, b, r, DefaultInitializerOptions())
	return wrap(f), err
}

func KMeans_TestOnly(x *matrix.Dense, k int, seed int64) *matrix.Dense {
	return kmeans(x, k, rand.New(rand.NewSource(seed)), 100, 1e-9)
}
