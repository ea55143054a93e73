package launcher

import (
	"errors"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/iwatkot/maps4fs-launcher/internal/config"
)

// ProcessState tracks where a managed process is in its lifecycle
type ProcessState string

const (
	StatePending ProcessState = "pending"
	StateRunning ProcessState = "running"
	StateExited  ProcessState = "exited"
	StateFailed  ProcessState = "failed" // never started
)

// Process is one managed service process
type Process struct {
	Spec config.ServiceConfig

	mu        sync.RWMutex
	cmd       *exec.Cmd
	state     ProcessState
	pid       int
	exitCode  int
	startErr  error
	startedAt time.Time
	exitedAt  time.Time
	done      chan struct{}
}

// Status is a point-in-time snapshot of a managed process
type Status struct {
	Name      string    `json:"name"`
	Command   string    `json:"command"`
	Port      int       `json:"port"`
	State     string    `json:"state"`
	PID       int       `json:"pid,omitempty"`
	ExitCode  int       `json:"exit_code"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	UptimeSec float64   `json:"uptime_seconds"`
}

// NewProcess creates a managed process in pending state
func NewProcess(spec config.ServiceConfig) *Process {
	return &Process{
		Spec:  spec,
		state: StatePending,
		done:  make(chan struct{}),
	}
}

// Start spawns the process. Stdout/stderr are forwarded unchanged so the
// container log stream carries service output directly. The process gets its
// own process group so signals can be delivered to the whole service tree.
func (p *Process) Start() error {
	cmd := exec.Command(p.Spec.Command, p.Spec.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), p.Spec.Env...)

	if err := cmd.Start(); err != nil {
		p.mu.Lock()
		p.state = StateFailed
		p.startErr = err
		p.exitCode = startFailureExitCode(err)
		p.exitedAt = time.Now()
		p.mu.Unlock()
		close(p.done)
		return err
	}

	p.mu.Lock()
	p.cmd = cmd
	p.state = StateRunning
	p.pid = cmd.Process.Pid
	p.startedAt = time.Now()
	p.mu.Unlock()

	go p.reap()

	return nil
}

// reap waits for the process to exit and records the outcome
func (p *Process) reap() {
	err := p.cmd.Wait()

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			if exitCode < 0 {
				// Killed by signal
				exitCode = 128 + signalExitOffset(exitErr)
			}
		} else {
			exitCode = 1
		}
	}

	p.mu.Lock()
	p.state = StateExited
	p.exitCode = exitCode
	p.exitedAt = time.Now()
	p.mu.Unlock()
	close(p.done)
}

// Done returns a channel closed when the process has exited (or failed
// to start)
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Signal delivers sig to the whole process group
func (p *Process) Signal(sig syscall.Signal) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state != StateRunning {
		return nil
	}
	// Negative pid targets the process group
	return syscall.Kill(-p.pid, sig)
}

// State returns the current lifecycle state
func (p *Process) State() ProcessState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// ExitCode returns the recorded exit code; 0 until the process has exited
func (p *Process) ExitCode() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitCode
}

// StartErr returns the spawn error for processes that never started
func (p *Process) StartErr() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.startErr
}

// PID returns the OS process id, 0 if never started
func (p *Process) PID() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pid
}

// Status returns a snapshot for the admin endpoint and status command
func (p *Process) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := Status{
		Name:     p.Spec.Name,
		Command:  p.Spec.Command,
		Port:     p.Spec.Port,
		State:    string(p.state),
		PID:      p.pid,
		ExitCode: p.exitCode,
	}
	if p.startErr != nil {
		st.Error = p.startErr.Error()
	}
	if !p.startedAt.IsZero() {
		st.StartedAt = p.startedAt
		end := time.Now()
		if !p.exitedAt.IsZero() {
			end = p.exitedAt
		}
		st.UptimeSec = end.Sub(p.startedAt).Seconds()
	}
	return st
}

// startFailureExitCode maps spawn errors to shell-convention exit codes:
// 127 for "command not found", 126 for permission problems.
func startFailureExitCode(err error) int {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return 127
	}
	if errors.Is(err, os.ErrPermission) {
		return 126
	}
	return 1
}

func signalExitOffset(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return int(ws.Signal())
	}
	return 1
}
