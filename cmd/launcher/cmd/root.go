package cmd

import (
	"github.com/spf13/cobra"

	"github.com/iwatkot/maps4fs-launcher/internal/config"
	"github.com/iwatkot/maps4fs-launcher/internal/logging"
)

var (
	cfgFile      string
	outputFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "launcher",
	Short: "Container launcher for the Maps4FS services",
	Long: `launcher is the container entrypoint for the Maps4FS deployment.
It prints startup diagnostics, starts the API server (port 8000) and the
UI server (port 8501), and supervises both for the container's lifetime.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/maps4fs/launcher.yaml, then ./launcher.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
}

// loadConfig loads the layered configuration for the current invocation
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// buildLogger creates the launcher logger from config
func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	level := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.File {
		return logging.NewFileLogger(level, cfg.Log.JSON)
	}
	return logging.NewLogger(level, cfg.Log.JSON), nil
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}
