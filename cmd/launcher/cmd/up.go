package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iwatkot/maps4fs-launcher/internal/admin"
	"github.com/iwatkot/maps4fs-launcher/internal/banner"
	"github.com/iwatkot/maps4fs-launcher/internal/launcher"
	"github.com/iwatkot/maps4fs-launcher/internal/metrics"
	"github.com/iwatkot/maps4fs-launcher/internal/shutdown"
)

// upCmd represents the up command, the container entry command
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Print startup diagnostics, then start and supervise all services",
	Long: `Prints the diagnostic banner (date, user, working directory, tool
versions, and the PUBLIC_HOSTNAME variable), starts the API and UI services,
and supervises them. The launcher exits when any service exits or on
SIGTERM/SIGINT; its exit code is the first failing service's exit code.`,
	Args: cobra.NoArgs,
	RunE: runUp,
}

func init() {
	rootCmd.AddCommand(upCmd)
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	// Banner goes to plain stdout, not through the structured logger, so the
	// container log starts with the familiar block.
	banner.Collect(cmd.Context(), cfg).Render(os.Stdout)

	sup := launcher.New(cfg.Services, log, cfg.GracePeriod)
	exporter := metrics.NewExporter(sup.Snapshot, sup.Uptime)
	sup.SetRecorder(exporter)

	mgr := shutdown.New(cfg.GracePeriod+5*time.Second, log)
	mgr.Register(func(ctx context.Context) error {
		log.Close()
		return nil
	})

	if cfg.Admin.Enabled {
		srv := admin.NewServer(cfg.Admin.Addr, sup, exporter, log)
		srv.Start()
		mgr.Register(srv.Shutdown)
	}

	code := sup.Run(cmd.Context(), shutdown.Notify())
	mgr.Shutdown()

	if code != 0 {
		os.Exit(code)
	}
	return nil
}
