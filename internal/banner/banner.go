package banner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"time"

	"github.com/iwatkot/maps4fs-launcher/internal/config"
	"github.com/iwatkot/maps4fs-launcher/internal/sysinfo"
)

const rule = "============================================================"

// Info is everything the startup banner displays. Collect fills it from the
// ambient process environment; Render only formats, so tests can inject
// fixed values.
type Info struct {
	Now      time.Time
	User     string
	WorkDir  string
	Tools    []ToolInfo
	EnvVar   string
	EnvValue string
	Host     *sysinfo.HostInfo
	Services []config.ServiceConfig
}

// Collect gathers banner diagnostics from the current process environment
func Collect(ctx context.Context, cfg *config.Config) *Info {
	info := &Info{
		Now:      time.Now(),
		User:     currentUser(),
		WorkDir:  workDir(),
		Tools:    ProbeTools(ctx, cfg.Banner.Tools),
		EnvVar:   cfg.Banner.EnvVar,
		EnvValue: os.Getenv(cfg.Banner.EnvVar),
		Host:     sysinfo.Collect(),
		Services: cfg.Services,
	}
	return info
}

// Render writes the banner. Every diagnostic gets its own line even when the
// value could not be resolved, so container logs always have the same shape.
func (i *Info) Render(w io.Writer) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, " Maps4FS container startup")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Date:              %s\n", i.Now.Format(time.RFC1123))
	fmt.Fprintf(w, "User:              %s\n", i.User)
	fmt.Fprintf(w, "Working directory: %s\n", i.WorkDir)
	for _, tool := range i.Tools {
		fmt.Fprintf(w, "%-18s %s\n", tool.Name+":", tool.Version)
	}
	envValue := i.EnvValue
	if envValue == "" {
		envValue = "(not set)"
	}
	fmt.Fprintf(w, "%-18s %s\n", i.EnvVar+":", envValue)
	if i.Host != nil {
		fmt.Fprintf(w, "Host:              %s (%d threads), %s RAM, %s/%s\n",
			i.Host.CPUModel, i.Host.CPUThreads,
			sysinfo.FormatRAM(i.Host.RAMTotalBytes),
			i.Host.OS, i.Host.Architecture)
	}
	fmt.Fprintln(w, rule)
	for _, svc := range i.Services {
		fmt.Fprintf(w, "Starting %s server on port %d...\n", svc.Name, svc.Port)
	}
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	// Minimal containers often lack /etc/passwd entries
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return fmt.Sprintf("uid=%d", os.Getuid())
}

func workDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "unknown"
}
