package launcher

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/iwatkot/maps4fs-launcher/internal/config"
	"github.com/iwatkot/maps4fs-launcher/internal/logging"
	"github.com/iwatkot/maps4fs-launcher/internal/probe"
	"github.com/iwatkot/maps4fs-launcher/internal/retry"
)

// Recorder receives lifecycle events for metrics. Implemented by the
// metrics exporter; a nil Recorder disables recording.
type Recorder interface {
	RecordStart(service string)
	RecordStartFailure(service string)
	RecordExit(service string, exitCode int)
}

// Supervisor starts every configured service and ties the launcher's
// lifetime to them: the first service exit (or a SIGTERM/SIGINT) tears the
// rest down and decides the launcher's own exit code. There is no restart
// policy; the container runtime owns restarts.
type Supervisor struct {
	processes []*Process
	log       *logging.Logger
	grace     time.Duration
	probeCfg  retry.Config
	recorder  Recorder
	startedAt time.Time
}

// New creates a supervisor for the given services
func New(services []config.ServiceConfig, log *logging.Logger, grace time.Duration) *Supervisor {
	processes := make([]*Process, 0, len(services))
	for _, svc := range services {
		processes = append(processes, NewProcess(svc))
	}
	return &Supervisor{
		processes: processes,
		log:       log,
		grace:     grace,
		probeCfg:  retry.DefaultConfig(),
		startedAt: time.Now(),
	}
}

// SetRecorder attaches a metrics recorder
func (s *Supervisor) SetRecorder(r Recorder) {
	s.recorder = r
}

// SetProbeConfig overrides the readiness probe retry policy
func (s *Supervisor) SetProbeConfig(cfg retry.Config) {
	s.probeCfg = cfg
}

// Processes returns the managed processes in configuration order
func (s *Supervisor) Processes() []*Process {
	return s.processes
}

// Snapshot returns the current status of every managed process
func (s *Supervisor) Snapshot() []Status {
	statuses := make([]Status, 0, len(s.processes))
	for _, p := range s.processes {
		statuses = append(statuses, p.Status())
	}
	return statuses
}

// Uptime returns time since the supervisor was created
func (s *Supervisor) Uptime() time.Duration {
	return time.Since(s.startedAt)
}

// Run starts all services and blocks until one of them exits or a signal
// arrives on sigs. A spawn failure for one service never prevents the others
// from being started; it is recorded and surfaces in the returned exit code.
// The return value is the launcher's process exit code.
func (s *Supervisor) Run(ctx context.Context, sigs <-chan os.Signal) int {
	probeCtx, cancelProbes := context.WithCancel(ctx)
	defer cancelProbes()

	for _, p := range s.processes {
		if err := p.Start(); err != nil {
			s.log.Error("Failed to start service", map[string]interface{}{
				"service": p.Spec.Name,
				"command": p.Spec.Command,
				"error":   err.Error(),
			})
			if s.recorder != nil {
				s.recorder.RecordStartFailure(p.Spec.Name)
			}
			continue
		}

		s.log.Info("Service started", map[string]interface{}{
			"service": p.Spec.Name,
			"pid":     p.PID(),
			"port":    p.Spec.Port,
		})
		if s.recorder != nil {
			s.recorder.RecordStart(p.Spec.Name)
		}

		if p.Spec.WaitReady {
			go s.probeReadiness(probeCtx, p)
		}
	}

	// Funnel every process exit into one channel. Processes that failed to
	// start are already done and show up here immediately.
	firstExit := make(chan *Process, len(s.processes))
	for _, p := range s.processes {
		go func(p *Process) {
			<-p.Done()
			firstExit <- p
		}(p)
	}

	select {
	case p := <-firstExit:
		code := p.ExitCode()
		if p.State() == StateFailed {
			s.log.Error("Service never started, shutting down", map[string]interface{}{
				"service":   p.Spec.Name,
				"exit_code": code,
			})
		} else {
			s.log.Error("Service exited, shutting down", map[string]interface{}{
				"service":   p.Spec.Name,
				"exit_code": code,
			})
		}
		if s.recorder != nil {
			s.recorder.RecordExit(p.Spec.Name, code)
		}
		s.StopAll()
		if code == 0 {
			// A clean exit of one service still means the deployment is
			// incomplete; report the first non-zero code if any other
			// process failed on the way down.
			code = s.worstExitCode()
		}
		return code

	case sig := <-sigs:
		s.log.Info("Received signal, shutting down services", map[string]interface{}{
			"signal": sig.String(),
		})
		s.StopAll()
		return 0

	case <-ctx.Done():
		s.StopAll()
		return 0
	}
}

// probeReadiness waits for the service port to accept TCP connections.
// Probe failure is logged but not fatal: the original entrypoint never
// enforced readiness ordering and services may bind late under load.
func (s *Supervisor) probeReadiness(ctx context.Context, p *Process) {
	start := time.Now()
	if err := probe.WaitReady(ctx, p.Spec.Addr(), s.probeCfg); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("Service did not become ready", map[string]interface{}{
			"service": p.Spec.Name,
			"addr":    p.Spec.Addr(),
			"error":   err.Error(),
		})
		return
	}
	s.log.Info("Service ready", map[string]interface{}{
		"service":  p.Spec.Name,
		"addr":     p.Spec.Addr(),
		"ready_in": time.Since(start).String(),
	})
}

// StopAll terminates every still-running process: SIGTERM to the process
// group, then SIGKILL for anything that outlives the grace period.
func (s *Supervisor) StopAll() {
	for _, p := range s.processes {
		if p.State() == StateRunning {
			if err := p.Signal(syscall.SIGTERM); err != nil {
				s.log.Warn("Failed to signal service", map[string]interface{}{
					"service": p.Spec.Name,
					"error":   err.Error(),
				})
			}
		}
	}

	deadline := time.After(s.grace)
	for _, p := range s.processes {
		select {
		case <-p.Done():
		case <-deadline:
			s.log.Warn("Grace period expired, killing remaining services")
			s.killRemaining()
			return
		}
	}
}

func (s *Supervisor) killRemaining() {
	for _, p := range s.processes {
		if p.State() == StateRunning {
			p.Signal(syscall.SIGKILL)
		}
	}
	for _, p := range s.processes {
		<-p.Done()
	}
}

// worstExitCode returns the first non-zero exit code among finished
// processes, 0 when everything exited clean
func (s *Supervisor) worstExitCode() int {
	for _, p := range s.processes {
		if p.State() == StatePending || p.State() == StateRunning {
			continue
		}
		if code := p.ExitCode(); code != 0 {
			return code
		}
	}
	return 0
}
