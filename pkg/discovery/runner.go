package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// CommandRunner runs the scan command as a child process and interrupts it with SIGINT once the
// scan duration has elapsed, which makes hcitool restore the adapter's scan state before exiting.
type CommandRunner struct{}

func (CommandRunner) Run(ctx context.Context, duration time.Duration, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("discovery: failed to start %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case err := <-done:
		// The tool exited on its own, typically because it could not open the adapter.
		return stdout.Bytes(), stderr.Bytes(), exitError(err)
	case <-timer.C:
	case <-ctx.Done():
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		_ = cmd.Process.Kill()
	}
	err := <-done
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, nil, ctxErr
	}
	return stdout.Bytes(), stderr.Bytes(), exitError(err)
}

// exitError discards non-zero exit statuses. hcitool exits non-zero both when interrupted and
// when reporting adapter errors, and the latter are diagnosed from stderr.
func exitError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
