package banner

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/iwatkot/maps4fs-launcher/internal/config"
	"github.com/iwatkot/maps4fs-launcher/internal/sysinfo"
)

func TestRenderContainsEveryDiagnosticLine(t *testing.T) {
	info := &Info{
		Now:     time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		User:    "root",
		WorkDir: "/usr/src/app",
		Tools: []ToolInfo{
			{Name: "python3", Version: "Python 3.11.9"},
			{Name: "pip3", Version: "not found"},
			{Name: "gdal-config", Version: "3.6.2"},
		},
		EnvVar:   "PUBLIC_HOSTNAME",
		EnvValue: "maps4fs",
		Host: &sysinfo.HostInfo{
			CPUModel:      "test-cpu",
			CPUThreads:    4,
			RAMTotalBytes: 8 * 1024 * 1024 * 1024,
			OS:            "linux",
			Architecture:  "amd64",
		},
		Services: config.DefaultServices(),
	}

	var buf bytes.Buffer
	info.Render(&buf)
	out := buf.String()

	// Every diagnostic must have a line regardless of its value
	wantLines := []string{
		"Date:",
		"User:              root",
		"Working directory: /usr/src/app",
		"python3:",
		"pip3:",
		"gdal-config:",
		"PUBLIC_HOSTNAME:   maps4fs",
		"Starting api server on port 8000...",
		"Starting ui server on port 8501...",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("Banner missing %q:\n%s", want, out)
		}
	}

	// The unresolvable tool still gets its line
	if !strings.Contains(out, "pip3:              not found") {
		t.Errorf("Expected 'not found' line for pip3:\n%s", out)
	}
}

func TestRenderUnsetEnvVar(t *testing.T) {
	info := &Info{
		Now:    time.Now(),
		EnvVar: "PUBLIC_HOSTNAME",
	}

	var buf bytes.Buffer
	info.Render(&buf)

	if !strings.Contains(buf.String(), "PUBLIC_HOSTNAME:   (not set)") {
		t.Errorf("Expected placeholder for unset variable:\n%s", buf.String())
	}
}

func TestCollect(t *testing.T) {
	t.Setenv("PUBLIC_HOSTNAME", "maps4fs")

	cfg := config.Default()
	cfg.Banner.Tools = nil // tool probing covered separately

	info := Collect(context.Background(), cfg)

	if info.User == "" {
		t.Error("Expected a user name")
	}
	if info.WorkDir == "" {
		t.Error("Expected a working directory")
	}
	if info.EnvValue != "maps4fs" {
		t.Errorf("Expected env value maps4fs, got %q", info.EnvValue)
	}
	if len(info.Services) != 2 {
		t.Errorf("Expected 2 services, got %d", len(info.Services))
	}
}
