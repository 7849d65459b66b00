package osint

import (
	"fmt"
	"time"

	"github.com/maildive/maildive/internal/model"
)

// ProbeTimeout bounds the start-up availability probe of a single tool.
const ProbeTimeout = 5 * time.Second

// Spec tells how to locate, probe and invoke one external tool.
type Spec struct {
	Kind        model.ToolKind
	Interpreter string   // runs Candidates scripts, e.g. python3
	Candidates  []string // script paths relative to the tools root, tried in order
	Command     string   // PATH fallback when no candidate matches
	Args        []string // appended after the query
	ProbeArgs   []string // used instead of a query by the availability probe
	Timeout     time.Duration
	LocalPart   bool // query with the part before @, not the whole address
}

// DefaultSpecs is the built-in tool catalog.
func DefaultSpecs() []Spec {
	return []Spec{
		{
			Kind:        model.ToolMaigret,
			Interpreter: "python3",
			Candidates: []string{
				"maigret/maigret/__main__.py",
				"maigret/pyinstaller/maigret_standalone.py",
				"maigret/__main__.py",
			},
			Command:   "maigret",
			Args:      []string{"--timeout", "10", "--print-found"},
			ProbeArgs: []string{"--version"},
			Timeout:   180 * time.Second,
			LocalPart: true,
		},
		{
			Kind:        model.ToolSherlock,
			Interpreter: "python3",
			Candidates: []string{
				"sherlock/sherlock_project/__main__.py",
				"sherlock/__main__.py",
				"sherlock/sherlock_project/sherlock.py",
			},
			Command:   "sherlock",
			Args:      []string{"--timeout", "10"},
			ProbeArgs: []string{"--version"},
			Timeout:   180 * time.Second,
			LocalPart: true,
		},
		{
			Kind:      model.ToolHolehe,
			Command:   "holehe",
			Args:      []string{"--only-used"},
			ProbeArgs: []string{"--help"},
			Timeout:   120 * time.Second,
		},
	}
}

// Specs applies config overrides on top of DefaultSpecs and drops disabled
// tools.
func Specs(cfg model.Config) ([]Spec, error) {
	overrides := make(map[model.ToolKind]model.ToolConfig, len(cfg.Tools))
	for _, tc := range cfg.Tools {
		kind, err := model.ParseToolKind(tc.Name)
		if err != nil {
			return nil, err
		}
		overrides[kind] = tc
	}

	var specs []Spec
	for _, spec := range DefaultSpecs() {
		tc, ok := overrides[spec.Kind]
		if !ok {
			specs = append(specs, spec)
			continue
		}
		if tc.Enabled != nil && !*tc.Enabled {
			continue
		}
		if tc.Command != nil {
			spec.Command = *tc.Command
		}
		if len(tc.Candidates) > 0 {
			spec.Candidates = append([]string(nil), tc.Candidates...)
		}
		if len(tc.Args) > 0 {
			spec.Args = append([]string(nil), tc.Args...)
		}
		if tc.Timeout != nil {
			d, err := time.ParseDuration(*tc.Timeout)
			if err != nil {
				return nil, fmt.Errorf("tool %q timeout: %w", tc.Name, err)
			}
			spec.Timeout = d
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
