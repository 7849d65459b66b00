package model

import (
	"fmt"
	"io"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"

	_ "embed"
)

// Enum helpers (optional).
const (
	AuthTypeNone        = "none"
	AuthTypeStaticToken = "static_token"

	FormatJSON = "json"
	FormatText = "text"
	FormatPDF  = "pdf"

	LogStderr  = "stderr"
	LogStdout  = "stdout"
	LogDiscard = "discard"
)

//go:embed config.cue
var cueSource []byte

var (
	cueCtx     *cue.Context
	schema     cue.Value
	authSchema cue.Value
)

func init() {
	if len(cueSource) == 0 {
		panic("variable cueSource is empty")
	}
	cueCtx = cuecontext.New()
	compiled := cueCtx.CompileBytes(cueSource)
	if compiled.Err() != nil {
		panic(compiled.Err())
	}

	if err := compiled.Validate(); err != nil {
		panic(err)
	}

	schema = compiled.LookupPath(cue.ParsePath("#Config"))
	if schema.Err() != nil {
		panic(schema.Err())
	}
	if err := schema.Validate(); err != nil {
		panic(err)
	}

	authSchema = compiled.LookupPath(cue.ParsePath("#Auth.type"))
	if authSchema.Err() != nil {
		panic(authSchema.Err())
	}
}

type Config struct {
	Version int `json:"version" yaml:"version"` // fixed 0 for now
	// ToolsRoot is the directory the tool source checkouts live under.
	// Defaults to the user home directory.
	ToolsRoot *string      `json:"tools_root,omitempty" yaml:"tools_root,omitempty"`
	Tools     []ToolConfig `json:"tools,omitempty" yaml:"tools,omitempty"`
	Probes    *Probes      `json:"probes,omitempty" yaml:"probes,omitempty"`
	Whois     *Whois       `json:"whois,omitempty" yaml:"whois,omitempty"`
	Reports   *Reports     `json:"reports,omitempty" yaml:"reports,omitempty"`
	History   *History     `json:"history,omitempty" yaml:"history,omitempty"`
	Watch     *Watch       `json:"watch,omitempty" yaml:"watch,omitempty"`
	Service   Service      `json:"service" yaml:"service"`
}

// ToolConfig overrides the built-in catalog entry for one tool.
type ToolConfig struct {
	Name       string   `json:"name" yaml:"name"` // "maigret" | "sherlock" | "holehe"
	Enabled    *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Command    *string  `json:"command,omitempty" yaml:"command,omitempty"` // PATH name or absolute path
	Candidates []string `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Args       []string `json:"args,omitempty" yaml:"args,omitempty"`
	Timeout    *string  `json:"timeout,omitempty" yaml:"timeout,omitempty"` // Go duration, e.g. "180s"
}

// Probes controls the signup-page heuristic checks.
type Probes struct {
	Enabled   *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Timeout   *string  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	UserAgent *string  `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	Sites     []string `json:"sites,omitempty" yaml:"sites,omitempty"` // subset of the catalog, empty => all
}

// Whois controls the domain enrichment lookup.
type Whois struct {
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// Reports controls report export.
type Reports struct {
	Dir     *string  `json:"dir,omitempty" yaml:"dir,omitempty"`
	Formats []string `json:"formats,omitempty" yaml:"formats,omitempty"` // "json" | "text" | "pdf"
}

// History controls the local sqlite scan history.
type History struct {
	Enabled *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Path    *string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Watch configures the periodic scan service.
type Watch struct {
	Enabled  *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Schedule string   `json:"schedule" yaml:"schedule"` // cron expression
	Queries  []string `json:"queries,omitempty" yaml:"queries,omitempty"`
	Webhook  *Webhook `json:"webhook,omitempty" yaml:"webhook,omitempty"`
}

// Webhook is a remote sink receiving finished reports.
type Webhook struct {
	URL  string `json:"url" yaml:"url"`
	Auth Auth   `json:"auth" yaml:"auth"`
}

// Auth is a tagged union: Type "none" or "static_token".
type Auth struct {
	Type  string `json:"type" yaml:"type"`
	Token string `json:"token,omitempty" yaml:"token,omitempty"` // required when Type == "static_token"
}

// Service holds settings shared by all commands.
type Service struct {
	Verbose *bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	Log     *string `json:"log,omitempty" yaml:"log,omitempty"` // "stderr"|"stdout"|"discard"
}

// DefaultConfig is what gets materialized on the first run.
func DefaultConfig() Config {
	enabled := true
	reportsDir := "reports"
	return Config{
		Version: 0,
		Probes:  &Probes{Enabled: &enabled},
		Whois:   &Whois{Enabled: &enabled},
		Reports: &Reports{Dir: &reportsDir, Formats: []string{FormatJSON, FormatText}},
		History: &History{Enabled: &enabled},
		Service: Service{},
	}
}

// LoadConfig validates YAML from r against CUE schema and decodes to Config.
func LoadConfig(r io.Reader) (Config, error) {
	yamlFile, err := yaml.Extract("config.yaml", r)
	if err != nil {
		return Config{}, err
	}
	yamlValue := cueCtx.BuildFile(yamlFile)

	unified := schema.Unify(yamlValue)
	if err := unified.Validate(
		cue.All(),          // all constraints
		cue.Concrete(true), // no incomplete values
	); err != nil {
		return Config{}, err
	}

	var out Config
	if err := unified.Decode(&out); err != nil {
		return Config{}, err
	}

	if err := out.check(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// check covers what the CUE schema cannot express: duration syntax, cron
// syntax, duplicate tool overrides.
func (c Config) check() error {
	seen := make(map[string]struct{}, len(c.Tools))
	for _, t := range c.Tools {
		if _, ok := seen[t.Name]; ok {
			return fmt.Errorf("tool %q configured twice", t.Name)
		}
		seen[t.Name] = struct{}{}
		if t.Timeout != nil {
			if _, err := time.ParseDuration(*t.Timeout); err != nil {
				return fmt.Errorf("tool %q timeout: %w", t.Name, err)
			}
		}
	}
	if c.Probes != nil && c.Probes.Timeout != nil {
		if _, err := time.ParseDuration(*c.Probes.Timeout); err != nil {
			return fmt.Errorf("probes timeout: %w", err)
		}
	}
	if c.Watch != nil && c.Watch.Schedule != "" {
		if _, err := ParseCron(c.Watch.Schedule); err != nil {
			return fmt.Errorf("watch schedule: %w", err)
		}
	}
	return nil
}
