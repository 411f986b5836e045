// Package config loads scifit settings and fit jobs from YAML.
//
// A file may hold solver tolerances, formatter defaults, the log level and an
// optional job (model name plus measurements). Missing keys keep their defaults.
//
//	solver:
//	  ftol: 1.0e-10
//	  max_evals: 2000
//	  difference: central
//	format:
//	  significant_figures: 2
//	  style: compact
//	log:
//	  level: info
//	job:
//	  model: exponential
//	  x: [0, 1, 2, 3]
//	  y: [5.1, 3.0, 1.9, 1.1]
//	  sigma: [0.1, 0.1, 0.1, 0.1]
//	  p0: [5, -0.5]
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/scifit/leastsq"
	"github.com/YuminosukeSato/scifit/notation"
	"github.com/YuminosukeSato/scifit/pkg/errors"
	"github.com/YuminosukeSato/scifit/pkg/log"
)

// DefaultFiles are searched in order by Load when no path is given.
var DefaultFiles = []string{"scifit.yaml", "scifit.yml"}

// Config represents the full configuration for scifit.
type Config struct {
	Solver SolverConfig `yaml:"solver"`
	Format FormatConfig `yaml:"format"`
	Log    LogConfig    `yaml:"log"`
	Job    *Job         `yaml:"job,omitempty"`
}

// SolverConfig mirrors leastsq.Settings with YAML-friendly types.
type SolverConfig struct {
	FTol           float64 `yaml:"ftol"`
	XTol           float64 `yaml:"xtol"`
	GTol           float64 `yaml:"gtol"`
	MaxEvals       int     `yaml:"max_evals"`
	Difference     string  `yaml:"difference"`
	InitialDamping float64 `yaml:"initial_damping"`
}

// FormatConfig holds the formatter defaults.
type FormatConfig struct {
	SignificantFigures int    `yaml:"significant_figures"`
	Style              string `yaml:"style"`
}

// LogConfig holds the logging level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Job is one fit described in a file.
type Job struct {
	Model string    `yaml:"model"`
	X     []float64 `yaml:"x"`
	Y     []float64 `yaml:"y"`
	Sigma []float64 `yaml:"sigma"`
	P0    Guess     `yaml:"p0"`
}

// Guess is an initial parameter vector written either as a single number or as a list.
type Guess []float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (g *Guess) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := value.Decode(&v); err != nil {
			return errors.Wrapf(err, "p0 at line %d", value.Line)
		}
		*g = leastsq.Guess(v)
		return nil
	case yaml.SequenceNode:
		var vs []float64
		if err := value.Decode(&vs); err != nil {
			return errors.Wrapf(err, "p0 at line %d", value.Line)
		}
		*g = leastsq.Guess(vs...)
		return nil
	default:
		return errors.NewValidationError("p0", "expected a number or a list of numbers", value.Tag)
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	s := leastsq.DefaultSettings()
	return &Config{
		Solver: SolverConfig{
			FTol:           s.FTol,
			XTol:           s.XTol,
			GTol:           s.GTol,
			MaxEvals:       s.MaxEvals,
			Difference:     s.Difference.String(),
			InitialDamping: s.InitialDamping,
		},
		Format: FormatConfig{
			SignificantFigures: notation.DefaultSignificantFigures,
			Style:              notation.StyleStandard.String(),
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load reads configuration from a file.
// If path is empty, DefaultFiles are searched in order and the defaults are
// returned when none exists.
func Load(path string) (*Config, error) {
	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return DefaultConfig(), nil
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.Solver.Settings(); err != nil {
		return err
	}
	if _, err := c.Format.Options(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Job != nil {
		return c.Job.Validate()
	}
	return nil
}

// Settings converts the section into solver settings.
func (s SolverConfig) Settings() (leastsq.Settings, error) {
	diff, err := leastsq.ParseDifference(s.Difference)
	if err != nil {
		return leastsq.Settings{}, err
	}
	settings := leastsq.Settings{
		FTol:           s.FTol,
		XTol:           s.XTol,
		GTol:           s.GTol,
		MaxEvals:       s.MaxEvals,
		Difference:     diff,
		InitialDamping: s.InitialDamping,
	}
	if err := settings.Validate(); err != nil {
		return leastsq.Settings{}, err
	}
	return settings, nil
}

// Options converts the section into formatter options.
func (f FormatConfig) Options() ([]notation.Option, error) {
	if f.SignificantFigures < 1 {
		return nil, errors.NewValidationError("significant_figures", "must be at least 1", f.SignificantFigures)
	}
	style, err := notation.ParseStyle(f.Style)
	if err != nil {
		return nil, err
	}
	return []notation.Option{
		notation.WithSignificantFigures(f.SignificantFigures),
		notation.WithStyle(style),
	}, nil
}

// Validate checks that the job names a known model and that its measurement
// lists line up. Numeric preconditions are left to the fitters.
func (j *Job) Validate() error {
	if j.Model == "" {
		return errors.NewValidationError("job.model", "model name is required", j.Model)
	}
	if j.Model != "line" || len(j.P0) > 0 {
		m, err := leastsq.Lookup(j.Model)
		if err != nil {
			return err
		}
		if len(j.P0) != m.NParams() {
			return errors.NewDimensionError("config.Job", "p0", m.NParams(), len(j.P0))
		}
	}
	return errors.CheckSameLength("config.Job",
		errors.Series{Name: "x", Values: j.X},
		errors.Series{Name: "y", Values: j.Y},
		errors.Series{Name: "sigma", Values: j.Sigma},
	)
}
