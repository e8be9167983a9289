//go:build e2e

// cli_harness_test.go builds the sortviz binary and runs it in an isolated
// workspace for E2E tests.
package integration

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thruflo/sortviz/internal/config"
	"github.com/thruflo/sortviz/internal/testutil"
)

// CLIHarness manages a sortviz binary for E2E testing.
type CLIHarness struct {
	// BinaryPath is the path to the built sortviz binary.
	BinaryPath string

	// WorkDir holds .sortviz/config.yaml and is the working directory of
	// every command.
	WorkDir string

	// EnvVars are added to the test's environment.
	EnvVars map[string]string

	t *testing.T
}

// CLIResult contains the output from a CLI command execution.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Success returns true if the command completed with exit code 0.
func (r *CLIResult) Success() bool {
	return r.ExitCode == 0 && r.Err == nil
}

// NewCLIHarness builds the binary and creates a workspace whose config is
// adjusted by mutate.
func NewCLIHarness(t *testing.T, mutate func(*config.Config)) *CLIHarness {
	t.Helper()

	projectRoot := testutil.FindProjectRoot(t)

	binaryPath := filepath.Join(t.TempDir(), "sortviz")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/sortviz")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build sortviz binary: %s", output)

	return &CLIHarness{
		BinaryPath: binaryPath,
		WorkDir:    testutil.SetupTestDir(t, mutate),
		EnvVars:    make(map[string]string),
		t:          t,
	}
}

// SetEnv sets an environment variable for subsequent commands.
func (h *CLIHarness) SetEnv(key, value string) {
	h.EnvVars[key] = value
}

// Run executes a command with a 30 second timeout.
func (h *CLIHarness) Run(args ...string) *CLIResult {
	return h.RunWithTimeout(30*time.Second, args...)
}

// RunWithTimeout executes a command with the specified timeout.
func (h *CLIHarness) RunWithTimeout(timeout time.Duration, args ...string) *CLIResult {
	h.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := h.command(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &CLIResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.Err = err
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}
	return result
}

// RequireSuccess runs a command and fails the test if it does not succeed.
func (h *CLIHarness) RequireSuccess(args ...string) *CLIResult {
	h.t.Helper()

	result := h.Run(args...)
	require.True(h.t, result.Success(),
		"command %v failed with exit code %d\nstdout: %s\nstderr: %s",
		args, result.ExitCode, result.Stdout, result.Stderr)
	return result
}

// RequireFailure runs a command and fails the test if it succeeds.
func (h *CLIHarness) RequireFailure(args ...string) *CLIResult {
	h.t.Helper()

	result := h.Run(args...)
	require.False(h.t, result.Success(),
		"command %v unexpectedly succeeded\nstdout: %s", args, result.Stdout)
	return result
}

func (h *CLIHarness) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, h.BinaryPath, args...)
	cmd.Dir = h.WorkDir
	cmd.Env = os.Environ()
	for k, v := range h.EnvVars {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	return cmd
}

// Process is a long-running command such as `sortviz serve`.
type Process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error

	mu     sync.Mutex
	stdout bytes.Buffer
	lines  chan string
}

// Start launches a command in the background. The process is killed when
// the test ends if it is still running.
func (h *CLIHarness) Start(args ...string) *Process {
	h.t.Helper()

	cmd := h.command(context.Background(), args...)
	pipe, err := cmd.StdoutPipe()
	require.NoError(h.t, err)
	cmd.Stderr = io.Discard
	require.NoError(h.t, cmd.Start())

	p := &Process{cmd: cmd, done: make(chan struct{}), lines: make(chan string, 64)}
	go func() {
		scanner := bufio.NewScanner(pipe)
		for scanner.Scan() {
			p.mu.Lock()
			p.stdout.WriteString(scanner.Text() + "\n")
			p.mu.Unlock()
			select {
			case p.lines <- scanner.Text():
			default:
			}
		}
		p.err = cmd.Wait()
		close(p.done)
	}()

	h.t.Cleanup(func() {
		select {
		case <-p.done:
		default:
			cmd.Process.Kill()
			<-p.done
		}
	})
	return p
}

// WaitForLine waits for a stdout line containing substr and returns it.
func (p *Process) WaitForLine(t *testing.T, substr string, timeout time.Duration) string {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case line := <-p.lines:
			if strings.Contains(line, substr) {
				return line
			}
		case <-p.done:
			t.Fatalf("process exited before printing %q\nstdout: %s", substr, p.Stdout())
		case <-deadline:
			t.Fatalf("timed out waiting for %q\nstdout: %s", substr, p.Stdout())
		}
	}
}

// Interrupt sends SIGINT and waits for the process to exit.
func (p *Process) Interrupt(t *testing.T, timeout time.Duration) error {
	t.Helper()

	require.NoError(t, p.cmd.Process.Signal(syscall.SIGINT))
	select {
	case <-p.done:
		return p.err
	case <-time.After(timeout):
		t.Fatalf("process did not exit within %s of SIGINT", timeout)
		return nil
	}
}

// Stdout returns everything the process has printed so far.
func (p *Process) Stdout() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stdout.String()
}

// freePort asks the kernel for an unused loopback port.
func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func portString(port int) string {
	return strconv.Itoa(port)
}
