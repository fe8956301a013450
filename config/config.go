// SPDX-License-Identifier: MIT

// Package config is the flat, typed configuration surface of a solve.
//
// A Solver carries every knob of the linear and quadratic solvers. Validate
// checks struct tags first and then the cross-field rules of the solvers;
// every failure wraps oterr.ErrConfiguration. Load reads YAML for the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvlot/convergence"
	"github.com/katalvlaran/lvlot/geometry"
	"github.com/katalvlaran/lvlot/linear"
	"github.com/katalvlaran/lvlot/oterr"
	"github.com/katalvlaran/lvlot/quadratic"
)

// InitializerKwargs tune the low-rank initializers. Zero values keep defaults.
type InitializerKwargs struct {
	Seed          int64   `yaml:"seed"`
	MaxIterations int     `yaml:"max_iterations" validate:"gte=0"`
	Threshold     float64 `yaml:"threshold" validate:"gte=0"`
	Gamma         float64 `yaml:"gamma" validate:"gte=0"`
}

// LinearSolverKwargs bound the linear solves nested in a quadratic solve.
type LinearSolverKwargs struct {
	MinIterations   int     `yaml:"min_iterations" validate:"gte=0"`
	MaxIterations   int     `yaml:"max_iterations" validate:"gte=1"`
	InnerIterations int     `yaml:"inner_iterations" validate:"gte=1"`
	Threshold       float64 `yaml:"threshold" validate:"gt=0"`
}

// Solver configures one solve. For quadratic problems the top-level bounds
// drive the linearization steps and LinearSolverKwargs the nested solves.
type Solver struct {
	Epsilon float64 `yaml:"epsilon" validate:"gte=0"`
	Rank    int     `yaml:"rank" validate:"eq=-1|gt=0"`
	TauA    float64 `yaml:"tau_a" validate:"gt=0,lte=1"`
	TauB    float64 `yaml:"tau_b" validate:"gt=0,lte=1"`

	MinIterations   int     `yaml:"min_iterations" validate:"gte=0,ltefield=MaxIterations"`
	MaxIterations   int     `yaml:"max_iterations" validate:"gte=1"`
	InnerIterations int     `yaml:"inner_iterations" validate:"gte=1"`
	Threshold       float64 `yaml:"threshold" validate:"gt=0"`
	TailPolicy      string  `yaml:"tail_policy" validate:"omitempty,oneof=check skip"`
	CauchyNorm      string  `yaml:"cauchy_norm" validate:"omitempty,oneof=max_abs l1 relative_l2"`

	Initializer       string            `yaml:"initializer" validate:"omitempty,oneof=default rank2 random k-means generalized-k-means"`
	InitializerKwargs InitializerKwargs `yaml:"initializer_kwargs"`
	Gamma             float64           `yaml:"gamma" validate:"gt=0"`
	GammaRescale      bool              `yaml:"gamma_rescale"`

	Alpha              float64            `yaml:"alpha" validate:"gt=0,lte=1"`
	LinearSolverKwargs LinearSolverKwargs `yaml:"linear_solver_kwargs"`

	ScaleCost   string `yaml:"scale_cost" validate:"omitempty,oneof=none mean median max"`
	Parallelism int    `yaml:"parallelism" validate:"gte=0"`
}

// Default returns the default configuration: full-rank balanced transport
// with ε = 0.05, mean cost scaling and pure Gromov-Wasserstein for quadratic problems.
func Default() Solver {
	lo := linear.DefaultOptions()
	qo := quadratic.DefaultOptions()

	return Solver{
		Epsilon:         lo.Epsilon,
		Rank:            linear.FullRank,
		TauA:            1,
		TauB:            1,
		MinIterations:   lo.Bounds.MinIterations,
		MaxIterations:   lo.Bounds.MaxIterations,
		InnerIterations: lo.Bounds.InnerIterations,
		Threshold:       lo.Bounds.Threshold,
		Gamma:           lo.Gamma,
		GammaRescale:    lo.GammaRescale,
		Alpha:           qo.Alpha,
		LinearSolverKwargs: LinearSolverKwargs{
			MinIterations:   lo.Bounds.MinIterations,
			MaxIterations:   lo.Bounds.MaxIterations,
			InnerIterations: lo.Bounds.InnerIterations,
			Threshold:       lo.Bounds.Threshold,
		},
		ScaleCost: string(geometry.ScaleMean),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags, then the rules shared with linear.ValidateOptions
// and quadratic.ValidateOptions.
func (s Solver) Validate() error {
	const op = "config.Validate"
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return oterr.Errorf(op, oterr.ErrConfiguration, "%s=%v fails %q", fe.Namespace(), fe.Value(), fe.Tag())
		}
		return oterr.Errorf(op, oterr.ErrConfiguration, "%v", err)
	}
	if _, err := s.Linear(); err != nil {
		return oterr.Wrap(op, err)
	}
	if _, err := s.Quadratic(); err != nil {
		return oterr.Wrap(op, err)
	}

	return nil
}

// Linear maps s to linear.Options and validates them.
func (s Solver) Linear() (linear.Options, error) {
	return s.linear(convergence.Bounds{
		MinIterations:   s.MinIterations,
		MaxIterations:   s.MaxIterations,
		InnerIterations: s.InnerIterations,
		Threshold:       s.Threshold,
	})
}

// Quadratic maps s to quadratic.Options and validates them. The nested
// linear solves use LinearSolverKwargs as their bounds.
func (s Solver) Quadratic() (quadratic.Options, error) {
	lo, err := s.linear(convergence.Bounds{
		MinIterations:   s.LinearSolverKwargs.MinIterations,
		MaxIterations:   s.LinearSolverKwargs.MaxIterations,
		InnerIterations: s.LinearSolverKwargs.InnerIterations,
		Threshold:       s.LinearSolverKwargs.Threshold,
	})
	if err != nil {
		return quadratic.Options{}, err
	}
	o := quadratic.Options{
		Alpha: s.Alpha,
		Bounds: convergence.Bounds{
			MinIterations:   s.MinIterations,
			MaxIterations:   s.MaxIterations,
			InnerIterations: s.InnerIterations,
			Threshold:       s.Threshold,
		},
		TailPolicy: lo.TailPolicy,
		Linear:     lo,
	}
	if err = quadratic.ValidateOptions(o); err != nil {
		return quadratic.Options{}, err
	}

	return o, nil
}

// Scaling returns the cost scaling.
func (s Solver) Scaling() (geometry.Scaling, error) {
	return geometry.ParseScaling(s.ScaleCost)
}

func (s Solver) linear(b convergence.Bounds) (linear.Options, error) {
	o := linear.DefaultOptions()
	o.Epsilon = s.Epsilon
	o.Rank = s.Rank
	o.TauA, o.TauB = s.TauA, s.TauB
	o.Bounds = b
	o.Gamma = s.Gamma
	o.GammaRescale = s.GammaRescale

	var err error
	if o.TailPolicy, err = convergence.ParseTailPolicy(s.TailPolicy); err != nil {
		return linear.Options{}, err
	}
	if o.CauchyNorm, err = convergence.ParseCauchyNorm(s.CauchyNorm); err != nil {
		return linear.Options{}, err
	}
	if o.Initializer, err = linear.ParseInitializer(s.Initializer); err != nil {
		return linear.Options{}, err
	}
	kw := s.InitializerKwargs
	o.InitOptions.Seed = kw.Seed
	if kw.MaxIterations > 0 {
		o.InitOptions.MaxIterations = kw.MaxIterations
	}
	if kw.Threshold > 0 {
		o.InitOptions.Threshold = kw.Threshold
	}
	if kw.Gamma > 0 {
		o.InitOptions.Gamma = kw.Gamma
	}
	if err = linear.ValidateOptions(o); err != nil {
		return linear.Options{}, err
	}

	return o, nil
}

// Decode reads YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Solver, error) {
	const op = "config.Decode"
	s := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Solver{}, oterr.Errorf(op, oterr.ErrConfiguration, "%v", err)
	}
	if err := s.Validate(); err != nil {
		return Solver{}, err
	}

	return s, nil
}

// Load reads and validates a YAML file. An empty path returns the defaults.
func Load(path string) (Solver, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Solver{}, fmt.Errorf("config.Load: %w", err)
	}

	return Decode(bytes.NewReader(data))
}
