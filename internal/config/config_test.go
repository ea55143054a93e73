package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesContainerImage(t *testing.T) {
	cfg := Default()

	if len(cfg.Services) != 2 {
		t.Fatalf("Expected 2 default services, got %d", len(cfg.Services))
	}

	api := cfg.Services[0]
	if api.Name != "api" || api.Port != 8000 {
		t.Errorf("Expected api service on port 8000, got %s on %d", api.Name, api.Port)
	}
	if api.Command != "uvicorn" {
		t.Errorf("Expected api command uvicorn, got %s", api.Command)
	}

	ui := cfg.Services[1]
	if ui.Name != "ui" || ui.Port != 8501 {
		t.Errorf("Expected ui service on port 8501, got %s on %d", ui.Name, ui.Port)
	}
	if ui.Command != "streamlit" {
		t.Errorf("Expected ui command streamlit, got %s", ui.Command)
	}

	if cfg.Banner.EnvVar != "PUBLIC_HOSTNAME" {
		t.Errorf("Expected diagnostic variable PUBLIC_HOSTNAME, got %s", cfg.Banner.EnvVar)
	}
	if len(cfg.Banner.Tools) != 3 {
		t.Errorf("Expected 3 banner tools, got %d", len(cfg.Banner.Tools))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		services []ServiceConfig
		wantErr  bool
	}{
		{
			name:     "defaults are valid",
			services: DefaultServices(),
			wantErr:  false,
		},
		{
			name: "missing command",
			services: []ServiceConfig{
				{Name: "api", Port: 8000},
			},
			wantErr: true,
		},
		{
			name: "missing name",
			services: []ServiceConfig{
				{Command: "uvicorn", Port: 8000},
			},
			wantErr: true,
		},
		{
			name: "duplicate name",
			services: []ServiceConfig{
				{Name: "api", Command: "uvicorn", Port: 8000},
				{Name: "api", Command: "streamlit", Port: 8501},
			},
			wantErr: true,
		},
		{
			name: "duplicate port",
			services: []ServiceConfig{
				{Name: "api", Command: "uvicorn", Port: 8000},
				{Name: "ui", Command: "streamlit", Port: 8000},
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			services: []ServiceConfig{
				{Name: "api", Command: "uvicorn", Port: 0},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Services: tt.services}
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	// Run from a directory without launcher.yaml
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	defer os.Chdir(oldWd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no config file should use defaults, got error: %v", err)
	}

	if len(cfg.Services) != 2 {
		t.Errorf("Expected 2 default services, got %d", len(cfg.Services))
	}
	if cfg.GracePeriod <= 0 {
		t.Errorf("Expected positive grace period, got %v", cfg.GracePeriod)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launcher.yaml")

	content := `
services:
  - name: api
    command: uvicorn
    args: ["app:app", "--port", "9000"]
    port: 9000
admin:
  enabled: false
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Services) != 1 {
		t.Fatalf("Expected 1 service from file, got %d", len(cfg.Services))
	}
	if cfg.Services[0].Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Services[0].Port)
	}
	if cfg.Admin.Enabled {
		t.Error("Expected admin disabled")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	// Banner defaults still apply when the file doesn't set them
	if cfg.Banner.EnvVar != "PUBLIC_HOSTNAME" {
		t.Errorf("Expected default env var, got %s", cfg.Banner.EnvVar)
	}
}

func TestAddr(t *testing.T) {
	svc := ServiceConfig{Name: "api", Port: 8000}
	if svc.Addr() != "127.0.0.1:8000" {
		t.Errorf("Expected 127.0.0.1:8000, got %s", svc.Addr())
	}
}
