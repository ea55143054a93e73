package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iwatkot/maps4fs-launcher/internal/launcher"
)

func testExporter(statuses []launcher.Status) *Exporter {
	return NewExporter(
		func() []launcher.Status { return statuses },
		func() time.Duration { return 42 * time.Second },
	)
}

func scrape(t *testing.T, e *Exporter) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	return rr.Body.String()
}

func TestExporterSnapshotMetrics(t *testing.T) {
	e := testExporter([]launcher.Status{
		{Name: "api", Port: 8000, State: "running", UptimeSec: 12},
		{Name: "ui", Port: 8501, State: "failed", ExitCode: 127},
	})

	body := scrape(t, e)

	wantLines := []string{
		"m4fs_launcher_uptime_seconds 42",
		`m4fs_launcher_services{state="running"} 1`,
		`m4fs_launcher_services{state="failed"} 1`,
		`m4fs_launcher_services{state="exited"} 0`,
		`m4fs_launcher_service_up{service="api",port="8000"} 1`,
		`m4fs_launcher_service_up{service="ui",port="8501"} 0`,
		`m4fs_launcher_service_uptime_seconds{service="api"} 12`,
	}
	for _, want := range wantLines {
		if !strings.Contains(body, want) {
			t.Errorf("Metrics missing %q:\n%s", want, body)
		}
	}
}

func TestExporterCounters(t *testing.T) {
	e := testExporter(nil)

	e.RecordStart("api")
	e.RecordStart("ui")
	e.RecordStartFailure("api")
	e.RecordExit("ui", 3)

	body := scrape(t, e)

	if !strings.Contains(body, "m4fs_launcher_service_starts_total") {
		t.Errorf("Missing starts counter:\n%s", body)
	}
	if !strings.Contains(body, `m4fs_launcher_service_start_failures_total{service="api"} 1`) {
		t.Errorf("Missing start failure counter:\n%s", body)
	}
	if !strings.Contains(body, `exit_code="3"`) {
		t.Errorf("Missing exit code label:\n%s", body)
	}
}

func TestExporterContentType(t *testing.T) {
	e := testExporter(nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	contentType := rr.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/plain") {
		t.Errorf("Expected text/plain content type, got %s", contentType)
	}
}
