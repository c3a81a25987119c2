// Package process runs external programs in their own process group and
// tears the whole group down when they are done or time out.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a command outlives its deadline.
var ErrTimeout = errors.New("command timed out")

// Result holds the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Run executes name with args, bounded by timeout (zero means no bound
// beyond ctx). The process group is killed when the command ends, so
// helper processes the program spawned cannot linger.
func Run(ctx context.Context, timeout time.Duration, env []string, name string, args ...string) (Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	Setpgid(cmd)
	if len(env) > 0 {
		cmd.Env = append(cmd.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Cancel = func() error {
		KillGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = 2 * time.Second

	err := cmd.Run()
	if cmd.Process != nil {
		KillGroup(cmd.Process.Pid)
	}

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && timeout > 0 {
		return res, fmt.Errorf("%w after %v: %s", ErrTimeout, timeout, name)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return res, fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return res, fmt.Errorf("%s: %w", name, err)
}
