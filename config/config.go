// Package config provides configuration loading and management for semgraph.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semgraph/export"
	"github.com/c360studio/semgraph/rdf"
)

// Config represents the complete semgraph configuration
type Config struct {
	// Namespaces maps prefixes to namespace IRIs. Conversion needs a "base" entry,
	// either here or declared by the input document.
	Namespaces map[string]string `yaml:"namespaces"`
	Input      InputConfig       `yaml:"input"`
	Output     OutputConfig      `yaml:"output"`
	Collapse   CollapseConfig    `yaml:"collapse"`
	Watch      WatchConfig       `yaml:"watch"`
	NATS       NATSConfig        `yaml:"nats"`
	Service    ServiceConfig     `yaml:"service"`
	Metrics    MetricsConfig     `yaml:"metrics"`
}

// InputConfig configures RDF input
type InputConfig struct {
	// Format forces an RDF format (turtle, ntriples, rdfxml). Empty infers it from the extension.
	Format string `yaml:"format"`
	// Paths are files or doublestar globs used when none are given on the command line
	Paths []string `yaml:"paths"`
}

// OutputConfig configures graph output
type OutputConfig struct {
	// Format is nodelink, turtle, ntriples or jsonld
	Format string `yaml:"format"`
	// Path is the output file (empty = stdout)
	Path string `yaml:"path"`
	// Profile is the RDF export profile (minimal, typed)
	Profile string `yaml:"profile"`
	Indent  bool   `yaml:"indent"`
}

// CollapseConfig configures the predicate collapser
type CollapseConfig struct {
	// Predicates are the predicate IRIs to fold into node attributes
	Predicates []string `yaml:"predicates"`
	// Subjects are node keys that must survive collapsing
	Subjects []string `yaml:"subjects"`
	// LiteralOnly collapses the suggested literal-only predicates when Predicates is empty
	LiteralOnly bool `yaml:"literal_only"`
	// ProtectSubjects keeps every subject of the input
	ProtectSubjects bool `yaml:"protect_subjects"`
}

// WatchConfig configures file watching
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = use embedded server)
	URL string `yaml:"url"`
	// Embedded indicates whether to use embedded NATS
	Embedded bool `yaml:"embedded"`
}

// ServiceConfig configures the conversion service
type ServiceConfig struct {
	// Subject is the request/reply subject
	Subject         string `yaml:"subject"`
	SaveSnapshots   bool   `yaml:"save_snapshots"`
	SnapshotHistory int    `yaml:"snapshot_history"`
	PublishEntities bool   `yaml:"publish_entities"`
	// ExportSubject serves stored snapshots when SaveSnapshots is set
	ExportSubject string `yaml:"export_subject"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address (empty = disabled)
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Namespaces: map[string]string{},
		Output: OutputConfig{
			Format:  string(export.FormatNodeLink),
			Profile: string(export.ProfileMinimal),
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		NATS: NATSConfig{
			URL:      "",
			Embedded: true,
		},
		Service: ServiceConfig{
			Subject:         "semgraph.convert.*",
			SnapshotHistory: 5,
			ExportSubject:   "semgraph.export.*",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
			Path: "/metrics",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	for prefix, iri := range c.Namespaces {
		if iri == "" {
			return fmt.Errorf("namespaces.%s is empty", prefix)
		}
	}
	if c.Input.Format != "" {
		if _, err := rdf.ParseFormat(c.Input.Format); err != nil {
			return fmt.Errorf("input.format: %w", err)
		}
	}
	if _, err := export.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Output.Profile != "" {
		if _, ok := export.Profiles[export.Profile(c.Output.Profile)]; !ok {
			return fmt.Errorf("output.profile: unknown profile %q", c.Output.Profile)
		}
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be non-negative")
	}
	if c.Service.Subject == "" {
		return fmt.Errorf("service.subject is required")
	}
	if c.Service.SaveSnapshots && c.Service.ExportSubject == "" {
		return fmt.Errorf("service.export_subject is required when save_snapshots is set")
	}
	if c.Service.SnapshotHistory < 0 || c.Service.SnapshotHistory > 64 {
		return fmt.Errorf("service.snapshot_history must be between 0 and 64")
	}
	return nil
}

// NamespaceTable returns the configured namespaces as an rdf table.
func (c *Config) NamespaceTable() rdf.Namespaces {
	if len(c.Namespaces) == 0 {
		return nil
	}
	ns := make(rdf.Namespaces, len(c.Namespaces))
	for prefix, iri := range c.Namespaces {
		ns[prefix] = iri
	}
	return ns
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Namespaces merge per prefix
	if len(other.Namespaces) > 0 && c.Namespaces == nil {
		c.Namespaces = make(map[string]string, len(other.Namespaces))
	}
	for prefix, iri := range other.Namespaces {
		c.Namespaces[prefix] = iri
	}

	// Input
	if other.Input.Format != "" {
		c.Input.Format = other.Input.Format
	}
	if len(other.Input.Paths) > 0 {
		c.Input.Paths = other.Input.Paths
	}

	// Output
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.Path != "" {
		c.Output.Path = other.Output.Path
	}
	if other.Output.Profile != "" {
		c.Output.Profile = other.Output.Profile
	}
	if other.Output.Indent {
		c.Output.Indent = true
	}

	// Collapse
	if len(other.Collapse.Predicates) > 0 {
		c.Collapse.Predicates = other.Collapse.Predicates
	}
	if len(other.Collapse.Subjects) > 0 {
		c.Collapse.Subjects = other.Collapse.Subjects
	}
	if other.Collapse.LiteralOnly {
		c.Collapse.LiteralOnly = true
	}
	if other.Collapse.ProtectSubjects {
		c.Collapse.ProtectSubjects = true
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Embedded = false
	}

	// Service
	if other.Service.Subject != "" {
		c.Service.Subject = other.Service.Subject
	}
	if other.Service.SaveSnapshots {
		c.Service.SaveSnapshots = true
	}
	if other.Service.SnapshotHistory != 0 {
		c.Service.SnapshotHistory = other.Service.SnapshotHistory
	}
	if other.Service.PublishEntities {
		c.Service.PublishEntities = true
	}
	if other.Service.ExportSubject != "" {
		c.Service.ExportSubject = other.Service.ExportSubject
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
	if other.Metrics.Path != "" {
		c.Metrics.Path = other.Metrics.Path
	}
}
