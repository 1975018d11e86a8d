// Package hooks runs operator scripts after a snapshot has been persisted.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"

	"host-witness/internal/snapshot"
)

type Runner struct {
	dir     string
	timeout time.Duration
	log     logr.Logger
}

func NewRunner(dir string, timeout time.Duration, log logr.Logger) *Runner {
	return &Runner{dir: dir, timeout: timeout, log: log}
}

// Run executes every executable *.sh in the hook directory in name order.
// All hooks run even if one fails; the failures are joined.
func (r *Runner) Run(ctx context.Context, snap snapshot.HostSnapshot, logPath string) error {
	scripts, err := r.findScripts()
	if err != nil {
		return fmt.Errorf("failed to find hooks: %w", err)
	}

	env := BuildEnv(snap, logPath)

	var errs []error
	for _, script := range scripts {
		if err := r.executeScript(ctx, script, env); err != nil {
			r.log.Error(err, "hook failed", "script", script)
			errs = append(errs, fmt.Errorf("hook %s failed: %w", script, err))
			continue
		}
		r.log.V(1).Info("hook completed", "script", script)
	}

	return errors.Join(errs...)
}

// BuildEnv returns the variables describing a snapshot to hook scripts.
func BuildEnv(snap snapshot.HostSnapshot, logPath string) map[string]string {
	return map[string]string{
		"HW_TIMESTAMP":       snap.TimestampUTC,
		"HW_HOSTNAME":        snap.Hostname,
		"HW_USERNAME":        snap.Username,
		"HW_PUBLIC_IP":       snap.PublicIPOr(""),
		"HW_DEFAULT_GATEWAY": snap.DefaultGatewayOr(""),
		"HW_UUID_HASH":       snap.UUIDHash,
		"HW_LOG_PATH":        logPath,
	}
}

// findScripts lists the executable regular *.sh files in the hook directory,
// sorted by name. A missing directory is an error.
func (r *Runner) findScripts() ([]string, error) {
	if _, err := os.Stat(r.dir); err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(r.dir, "*.sh"))
	if err != nil {
		return nil, err
	}

	scripts := matches[:0]
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
			continue
		}
		scripts = append(scripts, path)
	}
	return scripts, nil
}

func (r *Runner) executeScript(ctx context.Context, scriptPath string, env map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/bash", scriptPath)
	cmd.Env = os.Environ()

	for key, value := range env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("timed out after %s", r.timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("exit code %d", exitErr.ExitCode())
		}
		return err
	}

	return nil
}
