package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/iwatkot/maps4fs-launcher/internal/probe"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the configured service ports",
	Long: `Checks whether each configured service port accepts TCP connections
and reports the result. Intended for docker exec / healthcheck use from
outside a running launcher.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type serviceStatus struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Port      int    `json:"port"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	statuses := make([]serviceStatus, 0, len(cfg.Services))
	unreachable := 0
	for _, svc := range cfg.Services {
		st := serviceStatus{
			Name:    svc.Name,
			Command: svc.Command,
			Port:    svc.Port,
		}
		if err := probe.Check(svc.Addr()); err != nil {
			st.Error = err.Error()
			unreachable++
		} else {
			st.Reachable = true
		}
		statuses = append(statuses, st)
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
	} else {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Service", "Command", "Port", "Status")

		for _, st := range statuses {
			status := "up"
			if !st.Reachable {
				status = "down"
			}
			table.Append(st.Name, st.Command, fmt.Sprintf("%d", st.Port), status)
		}

		table.Render()
	}

	if unreachable > 0 {
		return fmt.Errorf("%d of %d services unreachable", unreachable, len(statuses))
	}
	return nil
}
