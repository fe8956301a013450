// SPDX-License-Identifier: MIT

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/katalvlaran/lvlot/matrix"
)

// ErrFormat indicates a malformed CSV input.
var ErrFormat = errors.New("dataset: malformed csv")

// CSVOptions controls LoadCSV.
type CSVOptions struct {
	// Categorical lists the columns stored as categorical annotations.
	// Every other non-id column must be numeric.
	Categorical []string
	// FeatureKey names the feature array assembled from all numeric columns
	// (default "X"). Numeric columns are also stored individually.
	FeatureKey string
}

// LoadCSV reads "obs_id,<columns...>" rows with a header line.
// The first column names observations.
func LoadCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	if opts.FeatureKey == "" {
		opts.FeatureKey = "X"
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("LoadCSV: %v: %w", err, ErrFormat)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, fmt.Errorf("LoadCSV: need a header and at least one row with two columns: %w", ErrFormat)
	}
	header, rows := records[0], records[1:]

	isCat := make(map[string]bool, len(opts.Categorical))
	for _, c := range opts.Categorical {
		isCat[c] = true
	}
	for _, c := range opts.Categorical {
		found := false
		for _, h := range header[1:] {
			found = found || h == c
		}
		if !found {
			return nil, fmt.Errorf("LoadCSV: categorical column %q not in header: %w", c, ErrFormat)
		}
	}

	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row[0]
	}
	ds, err := New(names)
	if err != nil {
		return nil, fmt.Errorf("LoadCSV: %w", err)
	}

	var numericCols []int
	for c := 1; c < len(header); c++ {
		if !isCat[header[c]] {
			numericCols = append(numericCols, c)
		}
	}
	for c := 1; c < len(header); c++ {
		if !isCat[header[c]] {
			continue
		}
		vals := make([]string, len(rows))
		for i, row := range rows {
			vals[i] = row[c]
		}
		if err = ds.SetCategorical(header[c], vals); err != nil {
			return nil, fmt.Errorf("LoadCSV: %w", err)
		}
	}
	if len(numericCols) == 0 {
		return ds, nil
	}

	feat, _ := matrix.NewDense(len(rows), len(numericCols))
	data := feat.RawData()
	for k, c := range numericCols {
		col := make([]float64, len(rows))
		for i, row := range rows {
			v, perr := strconv.ParseFloat(row[c], 64)
			if perr != nil {
				return nil, fmt.Errorf("LoadCSV: row %d column %q: %v: %w", i+2, header[c], perr, ErrFormat)
			}
			col[i] = v
			data[i*len(numericCols)+k] = v
		}
		if err = ds.SetNumeric(header[c], col); err != nil {
			return nil, fmt.Errorf("LoadCSV: %w", err)
		}
	}
	if err = matrix.ValidateFinite(data); err != nil {
		return nil, fmt.Errorf("LoadCSV: %v: %w", err, ErrFormat)
	}
	if err = ds.SetFeatures(opts.FeatureKey, feat); err != nil {
		return nil, fmt.Errorf("LoadCSV: %w", err)
	}

	return ds, nil
}
