package nas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type exitError struct{ code int }

func (e exitError) Error() string { return "exit status" }
func (e exitError) ExitCode() int { return e.code }

func TestServiceRestarterCommand(t *testing.T) {
	r := NewServiceRestarter("", true)
	var gotName string
	var gotArgs []string
	r.run = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		gotName, gotArgs = name, args
		return nil, nil, nil
	}

	res := r.Restart(context.Background())
	assert.True(t, res.OK())
	assert.Equal(t, "Samba service restarted successfully", res.Message)
	assert.Equal(t, "sudo", gotName)
	assert.Equal(t, []string{"-n", "systemctl", "restart", "smbd"}, gotArgs)

	r = NewServiceRestarter("nmbd", false)
	r.run = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		gotName, gotArgs = name, args
		return nil, nil, nil
	}
	r.Restart(context.Background())
	assert.Equal(t, "systemctl", gotName)
	assert.Equal(t, []string{"restart", "nmbd"}, gotArgs)
}

func TestServiceRestarterFailures(t *testing.T) {
	tests := []struct {
		name string
		run  commandRunner
		want string
	}{
		{
			name: "non-zero exit",
			run: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
				return nil, []byte("sudo: a password is required\n"), exitError{code: 1}
			},
			want: "Failed to restart Samba: sudo: a password is required",
		},
		{
			name: "exec failure",
			run: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
				return nil, nil, errors.New("executable file not found")
			},
			want: "Error restarting Samba: executable file not found",
		},
		{
			name: "timeout",
			run: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
				<-ctx.Done()
				return nil, nil, ctx.Err()
			},
			want: "Restart command timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewServiceRestarter("smbd", true)
			r.Timeout = 10 * time.Millisecond
			r.run = tt.run

			res := r.Restart(context.Background())
			assert.False(t, res.OK())
			assert.Equal(t, "error", res.Status)
			assert.Equal(t, tt.want, res.Message)
		})
	}
}
