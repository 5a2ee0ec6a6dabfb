package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func dashboardApp(got *Dashboard, gotErr *error) *cli.App {
	flags := append(append([]cli.Flag{ConfigFlag()}, LoggingFlags()...), DashboardFlags()...)
	return &cli.App{
		Name:   "nasdash",
		Flags:  flags,
		Before: LoadFromFile(flags),
		Action: func(c *cli.Context) error {
			*got, *gotErr = LoadDashboard(c)
			return nil
		},
	}
}

func TestDashboardDefaults(t *testing.T) {
	var cfg Dashboard
	var err error
	require.NoError(t, dashboardApp(&cfg, &err).Run([]string{"nasdash"}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.BackendURL.String())
	assert.Equal(t, "/media/nas", cfg.NASRoot)
	assert.Equal(t, 30*time.Second, cfg.StatsInterval)
	assert.Equal(t, 4*time.Second, cfg.NotificationTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0, cfg.RetryMax)
}

func TestDashboardFlagsAndEnv(t *testing.T) {
	t.Setenv("NASDASH_BACKEND_URL", "https://nas.lan:9000")

	var cfg Dashboard
	var err error
	require.NoError(t, dashboardApp(&cfg, &err).Run([]string{"nasdash", "-p", "9090", "--stats-interval", "5s", "--retry-max", "2"}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "nas.lan:9000", cfg.BackendURL.Host)
	assert.Equal(t, 5*time.Second, cfg.StatsInterval)
	assert.Equal(t, 2, cfg.RetryMax)
}

func TestDashboardFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nasdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7070\nnas-root: /srv/share\nnotification-ttl: 2s\n"), 0o644))

	var cfg Dashboard
	var err error
	require.NoError(t, dashboardApp(&cfg, &err).Run([]string{"nasdash", "--config", path, "--nas-root", "/mnt/flag"}))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "/mnt/flag", cfg.NASRoot)
	assert.Equal(t, 2*time.Second, cfg.NotificationTTL)
}

func TestDashboardValidation(t *testing.T) {
	tests := map[string][]string{
		"bad url":         {"nasdash", "--backend-url", "ftp://nas"},
		"no host":         {"nasdash", "--backend-url", "http://"},
		"port":            {"nasdash", "--port", "70000"},
		"zero interval":   {"nasdash", "--stats-interval", "0s"},
		"negative retry":  {"nasdash", "--retry-max", "-1"},
		"zero timeout":    {"nasdash", "--request-timeout", "0s"},
		"zero toast time": {"nasdash", "--notification-ttl", "0s"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			var cfg Dashboard
			var err error
			require.NoError(t, dashboardApp(&cfg, &err).Run(args))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func backendApp(got *Backend, gotErr *error) *cli.App {
	flags := BackendFlags()
	return &cli.App{
		Name:  "nasdash",
		Flags: []cli.Flag{ConfigFlag()},
		Commands: []*cli.Command{{
			Name:   "backend",
			Flags:  flags,
			Before: LoadFromFile(flags),
			Action: func(c *cli.Context) error {
				*got, *gotErr = LoadBackend(c)
				return nil
			},
		}},
	}
}

func TestBackendConfig(t *testing.T) {
	var cfg Backend
	var err error
	require.NoError(t, backendApp(&cfg, &err).Run([]string{"nasdash", "backend", "--share-root", "/srv/nas", "--sudo=false", "--webdav"}))
	require.NoError(t, err)

	assert.Equal(t, Backend{
		Port:           8000,
		ShareRoot:      "/srv/nas",
		SambaUnit:      "smbd",
		Sudo:           false,
		WebDAV:         true,
		SampleInterval: 2 * time.Second,
	}, cfg)
}

func TestBackendRequiresShareRoot(t *testing.T) {
	var cfg Backend
	var err error
	require.NoError(t, backendApp(&cfg, &err).Run([]string{"nasdash", "backend"}))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadLogging(t *testing.T) {
	var got Logging
	app := &cli.App{
		Name:  "nasdash",
		Flags: LoggingFlags(),
		Action: func(c *cli.Context) error {
			got = LoadLogging(c)
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"nasdash", "--log-level", "debug", "--log-pretty"}))
	assert.Equal(t, Logging{Level: "debug", Pretty: true}, got)
}
