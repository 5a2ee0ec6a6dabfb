// Package config declares the command line flags of both servers and turns
// a parsed *cli.Context into validated settings. Every flag except --config
// can also be given in the YAML file named by --config.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

const (
	FlagConfig          = "config"
	FlagLogLevel        = "log-level"
	FlagLogPretty       = "log-pretty"
	FlagPort            = "port"
	FlagBackendURL      = "backend-url"
	FlagNASRoot         = "nas-root"
	FlagStatsInterval   = "stats-interval"
	FlagNotificationTTL = "notification-ttl"
	FlagRequestTimeout  = "request-timeout"
	FlagRetryMax        = "retry-max"
	FlagShareRoot       = "share-root"
	FlagSambaUnit       = "samba-unit"
	FlagSudo            = "sudo"
	FlagWebDAV          = "webdav"
	FlagSampleInterval  = "sample-interval"
)

var ErrInvalid = errors.New("invalid configuration")

type Logging struct {
	Level  string
	Pretty bool
}

type Dashboard struct {
	Port            int
	BackendURL      *url.URL
	NASRoot         string
	StatsInterval   time.Duration
	NotificationTTL time.Duration
	RequestTimeout  time.Duration
	RetryMax        int
}

type Backend struct {
	Port           int
	ShareRoot      string
	SambaUnit      string
	Sudo           bool
	WebDAV         bool
	SampleInterval time.Duration
}

func ConfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    FlagConfig,
		Usage:   "YAML file with flag values",
		EnvVars: []string{"NASDASH_CONFIG"},
	}
}

func LoggingFlags() []cli.Flag {
	return []cli.Flag{
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    FlagLogLevel,
			Usage:   "trace, debug, info, warn or error",
			EnvVars: []string{"NASDASH_LOG_LEVEL"},
			Value:   "info",
		}),
		altsrc.NewBoolFlag(&cli.BoolFlag{
			Name:    FlagLogPretty,
			Usage:   "human readable console logs instead of JSON",
			EnvVars: []string{"NASDASH_LOG_PRETTY"},
		}),
	}
}

func DashboardFlags() []cli.Flag {
	return []cli.Flag{
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    FlagPort,
			Aliases: []string{"p"},
			EnvVars: []string{"PORT"},
			Value:   8080,
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    FlagBackendURL,
			Usage:   "base URL of the NAS backend API",
			EnvVars: []string{"NASDASH_BACKEND_URL"},
			Value:   "http://127.0.0.1:8000",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  FlagNASRoot,
			Usage: "absolute share path shown in the breadcrumb",
			Value: "/media/nas",
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:  FlagStatsInterval,
			Usage: "how often system stats are refreshed",
			Value: 30 * time.Second,
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:  FlagNotificationTTL,
			Usage: "how long a notification stays visible",
			Value: 4 * time.Second,
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:  FlagRequestTimeout,
			Usage: "timeout of one backend API call",
			Value: 30 * time.Second,
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:  FlagRetryMax,
			Usage: "retries of a failed backend API call",
			Value: 0,
		}),
	}
}

func BackendFlags() []cli.Flag {
	return []cli.Flag{
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    FlagPort,
			Aliases: []string{"p"},
			EnvVars: []string{"NASDASH_BACKEND_PORT"},
			Value:   8000,
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    FlagShareRoot,
			Usage:   "directory exported by the NAS API",
			EnvVars: []string{"NASDASH_SHARE_ROOT"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  FlagSambaUnit,
			Usage: "systemd unit restarted by /api/restart-samba",
			Value: "smbd",
		}),
		altsrc.NewBoolFlag(&cli.BoolFlag{
			Name:  FlagSudo,
			Usage: "run systemctl through non-interactive sudo",
			Value: true,
		}),
		altsrc.NewBoolFlag(&cli.BoolFlag{
			Name:  FlagWebDAV,
			Usage: "also export the share over WebDAV at /webdav/",
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:  FlagSampleInterval,
			Usage: "how often diagnostics are sampled",
			Value: 2 * time.Second,
		}),
	}
}

// LoadFromFile returns a Before func that fills unset flags from the YAML
// file named by --config. flags must be the same values registered on the
// command.
func LoadFromFile(flags []cli.Flag) cli.BeforeFunc {
	return altsrc.InitInputSourceWithContext(flags, altsrc.NewYamlSourceFromFlagFunc(FlagConfig))
}

func LoadLogging(c *cli.Context) Logging {
	return Logging{
		Level:  c.String(FlagLogLevel),
		Pretty: c.Bool(FlagLogPretty),
	}
}

func LoadDashboard(c *cli.Context) (Dashboard, error) {
	cfg := Dashboard{
		Port:            c.Int(FlagPort),
		NASRoot:         c.String(FlagNASRoot),
		StatsInterval:   c.Duration(FlagStatsInterval),
		NotificationTTL: c.Duration(FlagNotificationTTL),
		RequestTimeout:  c.Duration(FlagRequestTimeout),
		RetryMax:        c.Int(FlagRetryMax),
	}
	if err := checkPort(cfg.Port); err != nil {
		return cfg, err
	}

	raw := c.String(FlagBackendURL)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return cfg, fmt.Errorf("%w: --%s %q must be an http(s) URL", ErrInvalid, FlagBackendURL, raw)
	}
	cfg.BackendURL = u

	for name, d := range map[string]time.Duration{
		FlagStatsInterval:   cfg.StatsInterval,
		FlagNotificationTTL: cfg.NotificationTTL,
		FlagRequestTimeout:  cfg.RequestTimeout,
	} {
		if d <= 0 {
			return cfg, fmt.Errorf("%w: --%s must be positive", ErrInvalid, name)
		}
	}
	if cfg.RetryMax < 0 {
		return cfg, fmt.Errorf("%w: --%s must not be negative", ErrInvalid, FlagRetryMax)
	}
	return cfg, nil
}

func LoadBackend(c *cli.Context) (Backend, error) {
	cfg := Backend{
		Port:           c.Int(FlagPort),
		ShareRoot:      c.String(FlagShareRoot),
		SambaUnit:      c.String(FlagSambaUnit),
		Sudo:           c.Bool(FlagSudo),
		WebDAV:         c.Bool(FlagWebDAV),
		SampleInterval: c.Duration(FlagSampleInterval),
	}
	if err := checkPort(cfg.Port); err != nil {
		return cfg, err
	}
	if cfg.ShareRoot == "" {
		return cfg, fmt.Errorf("%w: --%s is required", ErrInvalid, FlagShareRoot)
	}
	if cfg.SambaUnit == "" {
		return cfg, fmt.Errorf("%w: --%s must not be empty", ErrInvalid, FlagSambaUnit)
	}
	if cfg.SampleInterval <= 0 {
		return cfg, fmt.Errorf("%w: --%s must be positive", ErrInvalid, FlagSampleInterval)
	}
	return cfg, nil
}

func checkPort(p int) error {
	if p < 1 || p > 65535 {
		return fmt.Errorf("%w: --%s %d out of range", ErrInvalid, FlagPort, p)
	}
	return nil
}
