// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
)

const (
	opNewLabeled = "NewLabeled"
	opReindex    = "Reindex"
)

// Labeled is a Dense whose rows and columns carry unique string labels.
// The label sequences are fixed at construction; lookups are O(1).
type Labeled struct {
	m        *Dense
	rows     []string
	cols     []string
	rowIndex map[string]int
	colIndex map[string]int
}

// NewLabeled attaches row and column labels to a copy of m.
//
// Errors:
//   - ErrNilMatrix when m is nil.
//   - ErrDimensionMismatch when label counts differ from the matrix shape.
//   - ErrDuplicateLabel when a label repeats within rows or within cols.
func NewLabeled(m *Dense, rows, cols []string) (*Labeled, error) {
	if m == nil {
		return nil, matrixErrorf(opNewLabeled, ErrNilMatrix)
	}
	if len(rows) != m.r || len(cols) != m.c {
		return nil, fmt.Errorf("%s: %d row / %d col labels for %dx%d: %w",
			opNewLabeled, len(rows), len(cols), m.r, m.c, ErrDimensionMismatch)
	}
	ri, err := indexLabels(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: rows: %w", opNewLabeled, err)
	}
	ci, err := indexLabels(cols)
	if err != nil {
		return nil, fmt.Errorf("%s: cols: %w", opNewLabeled, err)
	}

	return &Labeled{
		m:        m.Copy(),
		rows:     append([]string(nil), rows...),
		cols:     append([]string(nil), cols...),
		rowIndex: ri,
		colIndex: ci,
	}, nil
}

func indexLabels(labels []string) (map[string]int, error) {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := idx[l]; dup {
			return nil, fmt.Errorf("label %q: %w", l, ErrDuplicateLabel)
		}
		idx[l] = i
	}

	return idx, nil
}

// Dense returns a copy of the underlying matrix.
func (l *Labeled) Dense() *Dense { return l.m.Copy() }

// Shape returns the matrix dimensions.
func (l *Labeled) Shape() (rows, cols int) { return l.m.r, l.m.c }

// RowLabels returns a copy of the row label sequence.
func (l *Labeled) RowLabels() []string { return append([]string(nil), l.rows...) }

// ColLabels returns a copy of the column label sequence.
func (l *Labeled) ColLabels() []string { return append([]string(nil), l.cols...) }

// RowIndex reports the position of a row label.
func (l *Labeled) RowIndex(label string) (int, bool) {
	i, ok := l.rowIndex[label]

	return i, ok
}

// ColIndex reports the position of a column label.
func (l *Labeled) ColIndex(label string) (int, bool) {
	j, ok := l.colIndex[label]

	return j, ok
}

// Reindex returns a new Dense whose rows follow rows and whose columns follow cols.
// MAIN DESCRIPTION:
//   - Resolve each requested label to its stored position, then copy the
//     induced submatrix. Requested sequences may be any subset in any order.
//
// Errors:
//   - ErrUnknownLabel naming the first missing row or column label.
//   - ErrInvalidDimensions for empty requests.
//
// Complexity:
//   - Time O(len(rows)*len(cols)).
func (l *Labeled) Reindex(rows, cols []string) (*Dense, error) {
	ri := make([]int, len(rows))
	for i, label := range rows {
		pos, ok := l.rowIndex[label]
		if !ok {
			return nil, fmt.Errorf("%s: row %q: %w", opReindex, label, ErrUnknownLabel)
		}
		ri[i] = pos
	}
	ci := make([]int, len(cols))
	for j, label := range cols {
		pos, ok := l.colIndex[label]
		if !ok {
			return nil, fmt.Errorf("%s: col %q: %w", opReindex, label, ErrUnknownLabel)
		}
		ci[j] = pos
	}
	out, err := l.m.Induced(ri, ci)
	if err != nil {
		return nil, matrixErrorf(opReindex, err)
	}

	return out, nil
}
