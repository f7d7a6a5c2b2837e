package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Output.Format != "nodelink" {
		t.Errorf("expected default output format nodelink, got %s", cfg.Output.Format)
	}
	if cfg.Service.Subject != "semgraph.convert.*" {
		t.Errorf("expected default subject semgraph.convert.*, got %s", cfg.Service.Subject)
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("expected default debounce 200ms, got %v", cfg.Watch.Debounce)
	}
	if !cfg.NATS.Embedded {
		t.Error("expected embedded NATS by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty namespace IRI",
			modify:  func(c *Config) { c.Namespaces["base"] = "" },
			wantErr: true,
		},
		{
			name:    "unknown input format",
			modify:  func(c *Config) { c.Input.Format = "yaml" },
			wantErr: true,
		},
		{
			name:    "input format by extension",
			modify:  func(c *Config) { c.Input.Format = "ttl" },
			wantErr: false,
		},
		{
			name:    "unknown output format",
			modify:  func(c *Config) { c.Output.Format = "graphml" },
			wantErr: true,
		},
		{
			name:    "unknown profile",
			modify:  func(c *Config) { c.Output.Profile = "bfo" },
			wantErr: true,
		},
		{
			name:    "missing subject",
			modify:  func(c *Config) { c.Service.Subject = "" },
			wantErr: true,
		},
		{
			name:    "snapshot history too high",
			modify:  func(c *Config) { c.Service.SnapshotHistory = 65 },
			wantErr: true,
		},
		{
			name: "snapshots without export subject",
			modify: func(c *Config) {
				c.Service.SaveSnapshots = true
				c.Service.ExportSubject = ""
			},
			wantErr: true,
		},
		{
			name:    "negative debounce",
			modify:  func(c *Config) { c.Watch.Debounce = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
namespaces:
  base: "http://example.org/"
  foaf: "http://xmlns.com/foaf/0.1/"
input:
  format: turtle
  paths:
    - "data/**/*.ttl"
output:
  format: ntriples
  profile: typed
collapse:
  predicates:
    - "http://xmlns.com/foaf/0.1/name"
  literal_only: true
watch:
  debounce: 1s
nats:
  url: "nats://test:4222"
service:
  publish_entities: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Namespaces["base"] != "http://example.org/" {
		t.Errorf("expected base namespace, got %q", cfg.Namespaces["base"])
	}
	if len(cfg.Input.Paths) != 1 || cfg.Input.Paths[0] != "data/**/*.ttl" {
		t.Errorf("unexpected input paths %v", cfg.Input.Paths)
	}
	if cfg.Output.Format != "ntriples" || cfg.Output.Profile != "typed" {
		t.Errorf("unexpected output %+v", cfg.Output)
	}
	if !cfg.Collapse.LiteralOnly || len(cfg.Collapse.Predicates) != 1 {
		t.Errorf("unexpected collapse %+v", cfg.Collapse)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.NATS.URL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.NATS.URL)
	}
	if !cfg.Service.PublishEntities {
		t.Error("expected publish_entities")
	}
	// Unset sections keep their defaults
	if cfg.Service.Subject != "semgraph.convert.*" {
		t.Errorf("expected default subject, got %s", cfg.Service.Subject)
	}
	if got := cfg.NamespaceTable(); got["foaf"] != "http://xmlns.com/foaf/0.1/" {
		t.Errorf("unexpected namespace table %v", got)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	base.Namespaces["base"] = "http://example.org/"
	base.Namespaces["ex"] = "http://example.org/"

	override := &Config{
		Namespaces: map[string]string{"base": "http://other.org/"},
		Output:     OutputConfig{Format: "turtle"},
		NATS:       NATSConfig{URL: "nats://remote:4222"},
	}

	base.Merge(override)

	if base.Namespaces["base"] != "http://other.org/" {
		t.Errorf("expected base override, got %s", base.Namespaces["base"])
	}
	if base.Namespaces["ex"] != "http://example.org/" {
		t.Error("expected unrelated prefix to remain")
	}
	if base.Output.Format != "turtle" {
		t.Errorf("expected output format turtle, got %s", base.Output.Format)
	}
	// Profile should remain from base since override didn't set it
	if base.Output.Profile != "minimal" {
		t.Errorf("expected profile to remain default, got %s", base.Output.Profile)
	}
	if base.NATS.Embedded {
		t.Error("external NATS URL should disable embedded mode")
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Namespaces["base"] = "http://saved.org/"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	// Load and verify
	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Namespaces["base"] != "http://saved.org/" {
		t.Errorf("expected saved base namespace, got %s", loaded.Namespaces["base"])
	}
}

func TestLoaderLayers(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)

	user := DefaultConfig()
	user.Namespaces["base"] = "http://user.org/"
	user.Output.Format = "turtle"
	if err := user.SaveToFile(filepath.Join(home, UserConfigDir, UserConfigFile)); err != nil {
		t.Fatal(err)
	}

	projectCfg := []byte("namespaces:\n  base: \"http://project.org/\"\n")
	if err := os.WriteFile(filepath.Join(project, ProjectConfigFile), projectCfg, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader(nil).Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Namespaces["base"] != "http://project.org/" {
		t.Errorf("project config should win, got %s", cfg.Namespaces["base"])
	}
	if cfg.Output.Format != "turtle" {
		t.Errorf("user config should apply, got %s", cfg.Output.Format)
	}

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("output:\n  format: jsonld\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = NewLoader(nil).Load(explicit)
	if err != nil {
		t.Fatalf("Load(explicit) error = %v", err)
	}
	if cfg.Output.Format != "jsonld" {
		t.Errorf("explicit config should win, got %s", cfg.Output.Format)
	}

	if _, err := NewLoader(nil).Load(filepath.Join(project, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	loader := NewLoader(nil)
	if err := loader.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	path := filepath.Join(home, UserConfigDir, UserConfigFile)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("user config not created: %v", err)
	}

	// Second call leaves the file alone
	if err := os.WriteFile(path, []byte("output:\n  format: turtle\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := loader.EnsureUserConfig(); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Format != "turtle" {
		t.Error("EnsureUserConfig overwrote an existing file")
	}
}
