package nas

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/tomek7667/nasdash/internal/domain"
)

const (
	DefaultSambaUnit      = "smbd"
	DefaultRestartTimeout = 30 * time.Second
)

type commandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return []byte(stdout.String()), []byte(stderr.String()), err
}

// ServiceRestarter restarts one systemd unit, optionally through
// non-interactive sudo.
type ServiceRestarter struct {
	Unit    string
	Sudo    bool
	Timeout time.Duration
	run     commandRunner
}

func NewServiceRestarter(unit string, sudo bool) *ServiceRestarter {
	if unit == "" {
		unit = DefaultSambaUnit
	}
	return &ServiceRestarter{
		Unit:    unit,
		Sudo:    sudo,
		Timeout: DefaultRestartTimeout,
		run:     execRunner,
	}
}

func (r *ServiceRestarter) command() (string, []string) {
	args := []string{"systemctl", "restart", r.Unit}
	if r.Sudo {
		return "sudo", append([]string{"-n"}, args...)
	}
	return args[0], args[1:]
}

// Restart never returns an error: every outcome is reported in the result,
// which is what the API hands back to clients.
func (r *ServiceRestarter) Restart(ctx context.Context) domain.RestartResult {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	name, args := r.command()
	_, stderr, err := r.run(ctx, name, args...)
	switch {
	case err == nil:
		return domain.RestartResult{Status: domain.RestartStatusSuccess, Message: "Samba service restarted successfully"}
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.RestartResult{Status: "error", Message: "Restart command timed out"}
	}

	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		return domain.RestartResult{Status: "error", Message: "Failed to restart Samba: " + strings.TrimSpace(string(stderr))}
	}
	return domain.RestartResult{Status: "error", Message: fmt.Sprintf("Error restarting Samba: %v", err)}
}
