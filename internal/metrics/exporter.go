package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/iwatkot/maps4fs-launcher/internal/launcher"
)

// Exporter exports Prometheus metrics for the launcher. It combines
// hand-written gauges derived from live process snapshots with counter
// families kept in a client_golang registry.
type Exporter struct {
	snapshot  func() []launcher.Status
	uptime    func() time.Duration
	registry  *promclient.Registry
	starts    *promclient.CounterVec
	startErrs *promclient.CounterVec
	exits     *promclient.CounterVec
}

// NewExporter creates an exporter reading process state through snapshot
func NewExporter(snapshot func() []launcher.Status, uptime func() time.Duration) *Exporter {
	registry := promclient.NewRegistry()

	starts := promclient.NewCounterVec(promclient.CounterOpts{
		Name: "m4fs_launcher_service_starts_total",
		Help: "Total service process starts by service name",
	}, []string{"service"})

	startErrs := promclient.NewCounterVec(promclient.CounterOpts{
		Name: "m4fs_launcher_service_start_failures_total",
		Help: "Total failed spawn attempts by service name",
	}, []string{"service"})

	exits := promclient.NewCounterVec(promclient.CounterOpts{
		Name: "m4fs_launcher_service_exits_total",
		Help: "Total service exits by service name and exit code",
	}, []string{"service", "exit_code"})

	registry.MustRegister(starts, startErrs, exits)

	return &Exporter{
		snapshot:  snapshot,
		uptime:    uptime,
		registry:  registry,
		starts:    starts,
		startErrs: startErrs,
		exits:     exits,
	}
}

// RecordStart implements launcher.Recorder
func (e *Exporter) RecordStart(service string) {
	e.starts.WithLabelValues(service).Inc()
}

// RecordStartFailure implements launcher.Recorder
func (e *Exporter) RecordStartFailure(service string) {
	e.startErrs.WithLabelValues(service).Inc()
}

// RecordExit implements launcher.Recorder
func (e *Exporter) RecordExit(service string, exitCode int) {
	e.exits.WithLabelValues(service, strconv.Itoa(exitCode)).Inc()
}

// ServeHTTP serves Prometheus-compatible metrics at /metrics
func (e *Exporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	statuses := e.snapshot()

	fmt.Fprintf(w, "# HELP m4fs_launcher_uptime_seconds Launcher uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE m4fs_launcher_uptime_seconds gauge\n")
	fmt.Fprintf(w, "m4fs_launcher_uptime_seconds %.0f\n", e.uptime().Seconds())

	fmt.Fprintf(w, "\n# HELP m4fs_launcher_services Managed services by state\n")
	fmt.Fprintf(w, "# TYPE m4fs_launcher_services gauge\n")
	byState := map[string]int{
		string(launcher.StatePending): 0,
		string(launcher.StateRunning): 0,
		string(launcher.StateExited):  0,
		string(launcher.StateFailed):  0,
	}
	for _, st := range statuses {
		byState[st.State]++
	}
	// Always export all states (even if count is 0)
	for _, state := range []string{"pending", "running", "exited", "failed"} {
		fmt.Fprintf(w, "m4fs_launcher_services{state=\"%s\"} %d\n", state, byState[state])
	}

	fmt.Fprintf(w, "\n# HELP m4fs_launcher_service_up Whether the service process is running\n")
	fmt.Fprintf(w, "# TYPE m4fs_launcher_service_up gauge\n")
	for _, st := range statuses {
		up := 0
		if st.State == string(launcher.StateRunning) {
			up = 1
		}
		fmt.Fprintf(w, "m4fs_launcher_service_up{service=\"%s\",port=\"%d\"} %d\n", st.Name, st.Port, up)
	}

	fmt.Fprintf(w, "\n# HELP m4fs_launcher_service_uptime_seconds Service process uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE m4fs_launcher_service_uptime_seconds gauge\n")
	for _, st := range statuses {
		fmt.Fprintf(w, "m4fs_launcher_service_uptime_seconds{service=\"%s\"} %.0f\n", st.Name, st.UptimeSec)
	}

	// Append the registry-backed counter families using the text encoder
	metricFamilies, err := e.registry.Gather()
	if err != nil {
		fmt.Fprintf(w, "# Error gathering Prometheus metrics: %v\n", err)
		return
	}

	fmt.Fprintf(w, "\n")
	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, mf := range metricFamilies {
		if err := encoder.Encode(mf); err != nil {
			fmt.Fprintf(w, "# Error encoding metric %s: %v\n", mf.GetName(), err)
		}
	}
	w.Write(buf.Bytes())
}
