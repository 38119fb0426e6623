package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes a temporary config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  host: 127.0.0.1
  port: 8080
database:
  path: /tmp/test.db
logging:
  level: debug
  format: text
machines:
  - name: molder-1
    kind: injection_molder
    params:
      file_path: /tmp/molder-1.json
  - name: molder-2
    kind: injection_molder
    params:
      file_path: /tmp/molder-2.json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Host != "127.0.0.1" || cfg.API.Port != 8080 {
		t.Errorf("API config = %+v, want host 127.0.0.1 port 8080", cfg.API)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want /tmp/test.db", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging config = %+v, want debug/text", cfg.Logging)
	}

	if len(cfg.Machines) != 2 {
		t.Fatalf("got %d machines, want 2", len(cfg.Machines))
	}
	if cfg.Machines[0].Name != "molder-1" || cfg.Machines[0].Kind != "injection_molder" {
		t.Errorf("Machines[0] = %+v", cfg.Machines[0])
	}
	if cfg.Machines[0].Params["file_path"] != "/tmp/molder-1.json" {
		t.Errorf("Machines[0].Params = %v", cfg.Machines[0].Params)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 3000 {
		t.Errorf("default API port = %d, want 3000", cfg.API.Port)
	}
	if cfg.API.Timeouts.Read != 15 || cfg.API.Timeouts.Idle != 60 {
		t.Errorf("default timeouts = %+v", cfg.API.Timeouts)
	}
	if !cfg.Database.WALMode {
		t.Error("WAL mode should default to enabled")
	}
	if cfg.MQTT.Enabled || cfg.Metrics.Enabled {
		t.Error("MQTT and metrics should default to disabled")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default logging = %+v", cfg.Logging)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIGURIZER_API_PORT", "9999")
	t.Setenv("CONFIGURIZER_DATABASE_PATH", "/tmp/env.db")

	cfg, err := Load(writeConfig(t, `
api:
  port: 8080
database:
  path: /tmp/file.db
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 9999 {
		t.Errorf("API port = %d, want env override 9999", cfg.API.Port)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("Database.Path = %q, want env override /tmp/env.db", cfg.Database.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(_ *Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name: "mqtt enabled without host",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Host = ""
			},
			wantErr: "mqtt.host",
		},
		{
			name: "metrics enabled without token",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
			},
			wantErr: "metrics.token",
		},
		{
			name: "machine without name",
			mutate: func(c *Config) {
				c.Machines = []MachineConfig{{Kind: "injection_molder"}}
			},
			wantErr: "machines[0].name",
		},
		{
			name: "machine without kind",
			mutate: func(c *Config) {
				c.Machines = []MachineConfig{{Name: "molder-1"}}
			},
			wantErr: "machines[0].kind",
		},
		{
			name: "duplicate machine names",
			mutate: func(c *Config) {
				c.Machines = []MachineConfig{
					{Name: "molder-1", Kind: "injection_molder"},
					{Name: "molder-1", Kind: "injection_molder"},
				}
			},
			wantErr: "declared more than once",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
