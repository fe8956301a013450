// SPDX-License-Identifier: MIT

package cost

import (
	"github.com/katalvlaran/lvlot/costfn"
	"github.com/katalvlaran/lvlot/matrix"
	"github.com/katalvlaran/lvlot/oterr"
)

// Store is the read side of an annotated dataset. *dataset.Dataset satisfies it.
type Store interface {
	NObs() int
	ObsIndex(name string) (int, bool)
	Features(key string) (*matrix.Dense, error)
	Pairwise(key string) (*matrix.Dense, error)
	Custom(key string) (*matrix.Labeled, error)
}

// Resolved is a materialized, aligned cost input.
// Exactly one of Matrix or (X, Y) is set.
type Resolved struct {
	// Matrix is the len(Rows)×len(Cols) cost or kernel matrix.
	Matrix *matrix.Dense
	Tag    Tag

	// X and Y are the point clouds of a Features spec.
	X, Y   *matrix.Dense
	CostFn costfn.Func

	Rows []string
	Cols []string
}

// IsPointCloud reports whether r carries point clouds rather than a matrix.
func (r *Resolved) IsPointCloud() bool { return r.X != nil }

// Shape returns (len(Rows), len(Cols)).
func (r *Resolved) Shape() (int, int) { return len(r.Rows), len(r.Cols) }

const opResolve = "cost.Resolve"

// Resolve materializes spec for the given source (rows) and target (cols) labels.
//
// Errors:
//   - oterr.ErrConfiguration: nil/unknown spec, unknown data key, bad cost name.
//   - oterr.ErrAlignment: a label is absent, or Literal labels differ in identity or order.
//   - oterr.ErrShape: empty label sequences, pairwise matrix not NObs×NObs,
//     Literal matrix shape differs from its labels.
func Resolve(ds Store, spec Spec, rows, cols []string) (*Resolved, error) {
	if spec == nil {
		return nil, oterr.Errorf(opResolve, oterr.ErrConfiguration, "nil cost specification")
	}
	if len(rows) == 0 || len(cols) == 0 {
		return nil, oterr.Errorf(opResolve, oterr.ErrShape, "empty label sequence (%d,%d)", len(rows), len(cols))
	}

	var (
		out *Resolved
		err error
	)
	switch s := spec.(type) {
	case Features:
		out, err = resolveFeatures(ds, s, rows, cols)
	case Precomputed:
		out, err = resolvePrecomputed(ds, s, rows, cols)
	case Block:
		out, err = resolveBlock(ds, s, rows, cols)
	case Literal:
		out, err = resolveLiteral(s, rows, cols)
	default:
		return nil, oterr.Errorf(opResolve, oterr.ErrConfiguration, "unsupported specification %T", spec)
	}
	if err != nil {
		return nil, err
	}
	out.Rows = append([]string(nil), rows...)
	out.Cols = append([]string(nil), cols...)

	return out, nil
}

// positions maps labels to dataset positions.
func positions(ds Store, labels []string, spec Spec) ([]int, error) {
	idx := make([]int, len(labels))
	for i, l := range labels {
		p, ok := ds.ObsIndex(l)
		if !ok {
			return nil, oterr.Errorf(opResolve, oterr.ErrAlignment, "%s: observation %q not in dataset", spec, l)
		}
		idx[i] = p
	}

	return idx, nil
}

func resolveFeatures(ds Store, s Features, rows, cols []string) (*Resolved, error) {
	fn, err := costfn.Parse(s.CostFn)
	if err != nil {
		return nil, oterr.Wrap(opResolve, err)
	}
	feat, err := ds.Features(s.Key)
	if err != nil {
		return nil, oterr.Errorf(opResolve, oterr.ErrConfiguration, "%s: %v", s, err)
	}
	ri, err := positions(ds, rows, s)
	if err != nil {
		return nil, err
	}
	ci, err := positions(ds, cols, s)
	if err != nil {
		return nil, err
	}
	all := make([]int, feat.Cols())
	for k := range all {
		all[k] = k
	}
	x, err := feat.Induced(ri, all)
	if err != nil {
		return nil, oterr.Errorf(opResolve, oterr.ErrShape, "%s: %v", s, err)
	}
	y, err := feat.Induced(ci, all)
	if err != nil {
		return nil, oterr.Errorf(opResolve, oterr.ErrShape, "%s: %v", s, err)
	}

	return &Resolved{X: x, Y: y, CostFn: fn, Tag: TagCost}, nil
}

func resolvePrecomputed(ds Store, s Precomputed, rows, cols []string) (*Resolved, error) {
	lab, err := ds.Custom(s.Key)
	if err != nil {
		return nil, oterr.Errorf(opResolve, oterr.ErrConfiguration, "%s: %v", s, err)
	}
	m, err := lab.Reindex(rows, cols)
	if err != nil {
		return nil, oterr.Errorf(opResolve, oterr.ErrAlignment, "%s: %v", s, err)
	}

	return &Resolved{Matrix: m, Tag: s.Tag}, nil
}

func resolveBlock(ds Store, s Block, rows, cols []string) (*Resolved, error) {
	pw, err := ds.Pairwise(s.Key)
	if err != nil {
		return nil, oterr.Errorf(opResolve, oterr.ErrConfiguration, "%s: %v", s, err)
	}
	n := ds.NObs()
	if pw.Rows() != n || pw.Cols() != n {
		return nil, oterr.Errorf(opResolve, oterr.ErrShape, "%s: %dx%d, want %dx%d", s, pw.Rows(), pw.Cols(), n, n)
	}
	ri, err := positions(ds, rows, s)
	if err != nil {
		return nil, err
	}
	ci, err := positions(ds, cols, s)
	if err != nil {
		return nil, err
	}
	m, err := pw.Induced(ri, ci)
	if err != nil {
		return nil, oterr.Errorf(opResolve, oterr.ErrShape, "%s: %v", s, err)
	}
	if m.Rows() != len(rows) || m.Cols() != len(cols) {
		return nil, oterr.Errorf(opResolve, oterr.ErrShape, "%s: block %dx%d, want %dx%d", s, m.Rows(), m.Cols(), len(rows), len(cols))
	}

	return &Resolved{Matrix: m, Tag: s.Tag}, nil
}

func resolveLiteral(s Literal, rows, cols []string) (*Resolved, error) {
	if s.Matrix == nil {
		return nil, oterr.Errorf(opResolve, oterr.ErrConfiguration, "%s: nil matrix", s)
	}
	if s.Matrix.Rows() != len(s.Rows) || s.Matrix.Cols() != len(s.Cols) {
		return nil, oterr.Errorf(opResolve, oterr.ErrShape, "%s: matrix is %dx%d", s, s.Matrix.Rows(), s.Matrix.Cols())
	}
	if err := sameOrder(s.Rows, rows); err != nil {
		return nil, oterr.Errorf(opResolve, oterr.ErrAlignment, "%s: rows: %v", s, err)
	}
	if err := sameOrder(s.Cols, cols); err != nil {
		return nil, oterr.Errorf(opResolve, oterr.ErrAlignment, "%s: cols: %v", s, err)
	}

	return &Resolved{Matrix: s.Matrix.Copy(), Tag: s.Tag}, nil
}

// sameOrder returns a descriptive error unless got equals want element-wise.
func sameOrder(got, want []string) error {
	if len(got) != len(want) {
		return errLabels{pos: -1, got: len(got), want: len(want)}
	}
	for i := range got {
		if got[i] != want[i] {
			return errLabels{pos: i, gotLabel: got[i], wantLabel: want[i]}
		}
	}

	return nil
}
