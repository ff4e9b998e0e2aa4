// Package config describes a preprocessing pipeline in YAML (or JSON) and
// builds it.
//
//	logging:
//	  level: debug
//	pipeline:
//	  name: nir
//	  steps:
//	    - type: absorbance
//	    - type: savgol_smooth
//	      params: {window_length: 11, polyorder: 2}
//	    - type: snv
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/spectro/pipeline"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
	"github.com/YuminosukeSato/spectro/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config is the top-level document.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty" json:"logging,omitempty"`
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`
}

// LoggingConfig configures pkg/log.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty" json:"level,omitempty"`
}

// PipelineConfig lists the steps in order.
type PipelineConfig struct {
	Name  string       `yaml:"name,omitempty" json:"name,omitempty"`
	Steps []StepConfig `yaml:"steps" json:"steps"`
}

// StepConfig is one step. Name defaults to Type, suffixed with its position
// when the type repeats.
type StepConfig struct {
	Type   string                 `yaml:"type" json:"type"`
	Name   string                 `yaml:"name,omitempty" json:"name,omitempty"`
	Params map[string]interface{} `yaml:"params,omitempty" json:"params,omitempty"`
}

// Parse decodes a YAML document. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			return nil, serrors.NewValidationError("pipeline", "empty configuration", "")
		}
		return nil, serrors.Wrap(err, "parse yaml")
	}
	return &cfg, nil
}

// ParseJSON decodes a JSON document.
func ParseJSON(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, serrors.Wrap(err, "parse json")
	}
	return &cfg, nil
}

// Load reads a configuration file. Files ending in .json are decoded as
// JSON, everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.Wrapf(err, "read config %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return Parse(data)
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, serrors.Wrap(err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, serrors.Wrap(err, "encode yaml")
	}
	return buf.Bytes(), nil
}

// Apply configures logging. An empty level leaves logging untouched.
func (c *Config) Apply() error {
	return c.ApplyTo(os.Stderr)
}

// ApplyTo is Apply with an explicit log destination.
func (c *Config) ApplyTo(w io.Writer) error {
	if c.Logging.Level == "" {
		return nil
	}
	if err := log.SetupWriter(w, c.Logging.Level); err != nil {
		return serrors.NewValidationError("logging.level", err.Error(), c.Logging.Level)
	}
	return nil
}

// Build constructs the pipeline with the default registry.
func (c *Config) Build() (*pipeline.Pipeline, error) {
	return c.BuildWith(DefaultRegistry)
}

// BuildWith constructs the pipeline with builders from r.
func (c *Config) BuildWith(r *Registry) (*pipeline.Pipeline, error) {
	if len(c.Pipeline.Steps) == 0 {
		return nil, serrors.NewValidationError("pipeline.steps", "at least one step is required", 0)
	}

	counts := make(map[string]int)
	for _, sc := range c.Pipeline.Steps {
		counts[sc.Type]++
	}

	steps := make([]pipeline.Step, 0, len(c.Pipeline.Steps))
	for i, sc := range c.Pipeline.Steps {
		tr, err := r.Build(sc.Type, sc.Params)
		if err != nil {
			return nil, serrors.Wrapf(err, "build step %d (%s)", i, sc.Type)
		}
		name := sc.Name
		if name == "" {
			name = sc.Type
			if counts[sc.Type] > 1 {
				name = fmt.Sprintf("%s_%d", sc.Type, i)
			}
		}
		steps = append(steps, pipeline.Step{Name: name, Transformer: tr})
	}

	p, err := pipeline.New(steps...)
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("config")
	logger.Info("pipeline built", log.PipelineNameKey, c.Pipeline.Name, log.PipelineStepsKey, len(steps))
	return p, nil
}
