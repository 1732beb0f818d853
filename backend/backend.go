/*
Copyright © 2015-2022 Leo Antunes <leo@costela.net>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package backend picks a solver from a configuration naming the backend
// and its options. The rest of the pipeline only sees lpmodel.Solver.
package backend

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/costela/lpmodel"
	"github.com/costela/lpmodel/backend/cbc"
	"github.com/costela/lpmodel/backend/glpk"
	"github.com/costela/lpmodel/backend/gurobi"
	"github.com/costela/lpmodel/backend/simplex"
)

// Kind names a solver backend.
type Kind string

const (
	CBC     Kind = "cbc"
	Gurobi  Kind = "gurobi"
	GLPK    Kind = "glpk"
	Simplex Kind = "simplex"

	// XPRESS is recognized but not supported: it needs problems in the
	// AMPL .nl format.
	XPRESS Kind = "xpress"
)

// Kinds lists the supported backends.
func Kinds() []Kind {
	return []Kind{CBC, Gurobi, GLPK, Simplex}
}

// ParseKind resolves a backend name, ignoring case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case CBC, Gurobi, GLPK, Simplex:
		return k, nil
	case XPRESS:
		return "", errors.Wrap(lpmodel.ErrUnsupported, "xpress needs AMPL .nl files")
	default:
		return "", errors.Errorf("unknown solver backend %q", s)
	}
}

// Config selects and configures a backend.
type Config struct {
	Kind Kind `yaml:"solver"`
	// Executable overrides the backend's default binary name.
	Executable string `yaml:"executable"`
	// Options are passed through to the solver unvalidated.
	Options   map[string]string `yaml:"-"`
	WorkDir   string            `yaml:"workdir"`
	KeepFiles bool              `yaml:"keepfiles"`

	Logger lpmodel.Logger `yaml:"-"`
}

type rawConfig struct {
	Config  `yaml:",inline"`
	Options map[string]interface{} `yaml:"options"`
}

// ParseConfig reads a YAML configuration such as
//
//	solver: cbc
//	executable: /opt/coin/bin/cbc
//	options:
//	  allowableGap: 0.05
//	  seconds: 60
//
// Option values of any scalar type are kept as their string form.
func ParseConfig(r io.Reader) (Config, error) {
	var raw rawConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decoding solver configuration")
	}

	cfg := raw.Config
	if cfg.Kind == "" {
		return Config{}, errors.New("solver configuration names no solver")
	}
	kind, err := ParseKind(string(cfg.Kind))
	if err != nil {
		return Config{}, err
	}
	cfg.Kind = kind

	cfg.Options = make(map[string]string, len(raw.Options))
	for k, v := range raw.Options {
		switch v := v.(type) {
		case nil:
			cfg.Options[k] = ""
		case float64:
			cfg.Options[k] = strconv.FormatFloat(v, 'g', -1, 64)
		case map[string]interface{}, []interface{}:
			return Config{}, errors.Errorf("option %s: value must be a scalar", k)
		default:
			cfg.Options[k] = fmt.Sprint(v)
		}
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "opening solver configuration")
	}
	defer f.Close()

	cfg, err := ParseConfig(f)
	if err != nil {
		return Config{}, errors.Wrapf(err, "loading %s", path)
	}
	return cfg, nil
}

// Merge returns a copy of cfg with extra options added; options already in
// cfg win.
func (cfg Config) Merge(extra map[string]string) Config {
	opts := make(map[string]string, len(cfg.Options)+len(extra))
	for k, v := range extra {
		opts[k] = v
	}
	for k, v := range cfg.Options {
		opts[k] = v
	}
	cfg.Options = opts
	return cfg
}

// New builds the solver described by cfg.
func New(cfg Config) (lpmodel.Solver, error) {
	kind, err := ParseKind(string(cfg.Kind))
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = lpmodel.NoopLogger()
	}

	var (
		solver lpmodel.Solver
		newErr error
	)
	switch kind {
	case CBC:
		opts := []cbc.Option{cbc.WithOptions(cfg.Options), cbc.WithWorkDir(cfg.WorkDir), cbc.WithKeepFiles(cfg.KeepFiles), cbc.WithLogger(logger)}
		if cfg.Executable != "" {
			opts = append(opts, cbc.WithExecutable(cfg.Executable))
		}
		solver, newErr = cbc.New(opts...)

	case Gurobi:
		opts := []gurobi.Option{gurobi.WithOptions(cfg.Options), gurobi.WithWorkDir(cfg.WorkDir), gurobi.WithKeepFiles(cfg.KeepFiles), gurobi.WithLogger(logger)}
		if cfg.Executable != "" {
			opts = append(opts, gurobi.WithExecutable(cfg.Executable))
		}
		solver, newErr = gurobi.New(opts...)

	case GLPK:
		opts := []glpk.Option{glpk.WithOptions(cfg.Options), glpk.WithWorkDir(cfg.WorkDir), glpk.WithKeepFiles(cfg.KeepFiles), glpk.WithLogger(logger)}
		if cfg.Executable != "" {
			opts = append(opts, glpk.WithExecutable(cfg.Executable))
		}
		solver, newErr = glpk.New(opts...)

	case Simplex:
		opts := []simplex.Option{simplex.WithLogger(logger)}
		for k, v := range cfg.Options {
			switch k {
			case "tol", "tolerance":
				tol, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, errors.Wrapf(err, "simplex option %s", k)
				}
				opts = append(opts, simplex.WithTolerance(tol))
			default:
				logger.Print(fmt.Sprintf("simplex: ignoring option %s", k))
			}
		}
		solver, newErr = simplex.New(opts...)

	default:
		return nil, errors.Errorf("unhandled solver backend %q", kind)
	}
	if newErr != nil {
		return nil, newErr
	}
	return solver, nil
}
