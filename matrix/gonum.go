// SPDX-License-Identifier: MIT

package matrix

import (
	"gonum.org/v1/gonum/mat"
)

// Gonum returns a *mat.Dense that shares m's backing buffer.
// Mutations through either view are visible in both.
func (m *Dense) Gonum() *mat.Dense {
	return mat.NewDense(m.r, m.c, m.data)
}

// gonumResult wraps a freshly computed gonum dense without copying.
func gonumResult(g *mat.Dense) *Dense {
	r, c := g.Dims()
	raw := g.RawMatrix()
	if raw.Stride == c {
		return &Dense{r: r, c: c, data: raw.Data[:r*c]}
	}
	out, _ := NewDense(r, c)
	out.Gonum().Copy(g)

	return out
}
