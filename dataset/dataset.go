// SPDX-License-Identifier: MIT

// Package dataset is a small in-memory annotated dataset container.
//
// A Dataset holds N named observations plus four kinds of annotations:
//
//   - categorical and numeric observation columns (one value per observation);
//   - feature arrays: N×d matrices whose rows follow observation order;
//   - observation-pairwise matrices, expected to be N×N (shape is checked by consumers);
//   - custom labeled matrices with arbitrary row/column label sequences.
//
// All getters return copies. Dataset is safe for concurrent use.
package dataset

import (
	"errors"
	"fmt"
	"sync"

	"github.com/katalvlaran/lvlot/matrix"
)

var (
	// ErrUnknownKey indicates that no annotation is stored under the requested key.
	ErrUnknownKey = errors.New("dataset: unknown key")

	// ErrDuplicateObs indicates a repeated observation name.
	ErrDuplicateObs = errors.New("dataset: duplicate observation")

	// ErrLength indicates an annotation whose length differs from the number of observations.
	ErrLength = errors.New("dataset: length mismatch")

	// ErrEmpty indicates a dataset without observations.
	ErrEmpty = errors.New("dataset: no observations")
)

// Dataset is an annotated collection of observations.
type Dataset struct {
	mu          sync.RWMutex
	obs         []string
	obsIndex    map[string]int
	categorical map[string][]string
	numeric     map[string][]float64
	features    map[string]*matrix.Dense
	pairwise    map[string]*matrix.Dense
	custom      map[string]*matrix.Labeled
}

// New creates a dataset with the given observation names.
func New(obsNames []string) (*Dataset, error) {
	if len(obsNames) == 0 {
		return nil, ErrEmpty
	}
	idx := make(map[string]int, len(obsNames))
	for i, name := range obsNames {
		if _, dup := idx[name]; dup {
			return nil, fmt.Errorf("New: %q: %w", name, ErrDuplicateObs)
		}
		idx[name] = i
	}

	return &Dataset{
		obs:         append([]string(nil), obsNames...),
		obsIndex:    idx,
		categorical: make(map[string][]string),
		numeric:     make(map[string][]float64),
		features:    make(map[string]*matrix.Dense),
		pairwise:    make(map[string]*matrix.Dense),
		custom:      make(map[string]*matrix.Labeled),
	}, nil
}

// NObs returns the number of observations.
func (d *Dataset) NObs() int { return len(d.obs) }

// ObsNames returns a copy of the observation names in storage order.
func (d *Dataset) ObsNames() []string { return append([]string(nil), d.obs...) }

// ObsIndex returns the storage position of an observation.
func (d *Dataset) ObsIndex(name string) (int, bool) {
	i, ok := d.obsIndex[name]

	return i, ok
}

// SetCategorical stores a categorical observation column.
func (d *Dataset) SetCategorical(key string, values []string) error {
	if len(values) != len(d.obs) {
		return fmt.Errorf("SetCategorical(%q): %d values for %d obs: %w", key, len(values), len(d.obs), ErrLength)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.categorical[key] = append([]string(nil), values...)

	return nil
}

// Categorical returns a copy of a categorical column.
func (d *Dataset) Categorical(key string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.categorical[key]
	if !ok {
		return nil, fmt.Errorf("Categorical(%q): %w", key, ErrUnknownKey)
	}

	return append([]string(nil), v...), nil
}

// SetNumeric stores a numeric observation column.
func (d *Dataset) SetNumeric(key string, values []float64) error {
	if len(values) != len(d.obs) {
		return fmt.Errorf("SetNumeric(%q): %d values for %d obs: %w", key, len(values), len(d.obs), ErrLength)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.numeric[key] = append([]float64(nil), values...)

	return nil
}

// Numeric returns a copy of a numeric column.
func (d *Dataset) Numeric(key string) ([]float64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.numeric[key]
	if !ok {
		return nil, fmt.Errorf("Numeric(%q): %w", key, ErrUnknownKey)
	}

	return append([]float64(nil), v...), nil
}

// SetFeatures stores an N×d feature array (copied).
func (d *Dataset) SetFeatures(key string, m *matrix.Dense) error {
	if m == nil || m.Rows() != len(d.obs) {
		return fmt.Errorf("SetFeatures(%q): rows must equal %d obs: %w", key, len(d.obs), ErrLength)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.features[key] = m.Copy()

	return nil
}

// Features returns a copy of a feature array.
func (d *Dataset) Features(key string) (*matrix.Dense, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.features[key]
	if !ok {
		return nil, fmt.Errorf("Features(%q): %w", key, ErrUnknownKey)
	}

	return m.Copy(), nil
}

// SetPairwise stores an observation-pairwise matrix (copied). The shape is
// not checked here; consumers verify it is NObs×NObs.
func (d *Dataset) SetPairwise(key string, m *matrix.Dense) error {
	if m == nil {
		return fmt.Errorf("SetPairwise(%q): %w", key, matrix.ErrNilMatrix)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pairwise[key] = m.Copy()

	return nil
}

// Pairwise returns a copy of an observation-pairwise matrix.
func (d *Dataset) Pairwise(key string) (*matrix.Dense, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.pairwise[key]
	if !ok {
		return nil, fmt.Errorf("Pairwise(%q): %w", key, ErrUnknownKey)
	}

	return m.Copy(), nil
}

// SetCustom stores a labeled matrix. Labeled values are immutable, so the
// pointer is shared.
func (d *Dataset) SetCustom(key string, m *matrix.Labeled) error {
	if m == nil {
		return fmt.Errorf("SetCustom(%q): %w", key, matrix.ErrNilMatrix)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.custom[key] = m

	return nil
}

// Custom returns a labeled matrix.
func (d *Dataset) Custom(key string) (*matrix.Labeled, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.custom[key]
	if !ok {
		return nil, fmt.Errorf("Custom(%q): %w", key, ErrUnknownKey)
	}

	return m, nil
}
