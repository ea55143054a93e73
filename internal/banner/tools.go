package banner

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// toolProbeTimeout bounds a single "<tool> --version" invocation
const toolProbeTimeout = 5 * time.Second

// ToolInfo holds the probed version of one external tool
type ToolInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ProbeTool resolves a tool's version by running "<tool> --version" and
// taking the first output line. A missing or broken tool reports "not found"
// so the banner line is printed either way.
func ProbeTool(ctx context.Context, tool string) ToolInfo {
	ctx, cancel := context.WithTimeout(ctx, toolProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, tool, "--version").CombinedOutput()
	if err != nil {
		return ToolInfo{Name: tool, Version: "not found"}
	}

	version := firstLine(string(out))
	if version == "" {
		version = "unknown"
	}
	return ToolInfo{Name: tool, Version: version}
}

// ProbeTools probes all configured tools in order
func ProbeTools(ctx context.Context, tools []string) []ToolInfo {
	infos := make([]ToolInfo, 0, len(tools))
	for _, tool := range tools {
		infos = append(infos, ProbeTool(ctx, tool))
	}
	return infos
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
