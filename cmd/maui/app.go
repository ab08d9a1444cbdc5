package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"mauicli/internal/config"
	"mauicli/internal/host"
	"mauicli/internal/logging"
	"mauicli/internal/manifest"
	"mauicli/internal/probe"
	"mauicli/internal/secrets"
)

const httpTimeout = 30 * time.Second

// fetcher retrieves remote JSON documents (manifest, NuGet feeds)
type fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type rootOptions struct {
	configPath string
	debug      bool
}

// app is the per-command environment built from flags and config
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	workDir    string
	httpClient *http.Client

	cfg     config.Config
	cfgPath string
	env     config.Env
	host    host.Info
	runner  probe.Runner
	fetcher fetcher
	logger  *logging.Logger
}

func newApp(d deps, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		stdout:     d.stdout,
		stderr:     d.stderr,
		workDir:    d.workDir,
		httpClient: d.httpClient,
		cfg:        cfg,
		cfgPath:    opts.configPath,
	}
	if a.cfgPath == "" {
		a.cfgPath = config.HomeConfigPath()
	}

	level, ok := logging.ParseLevel(cfg.Logging.Level)
	if !ok {
		level = logging.LevelWarn
	}
	if opts.debug {
		level = logging.LevelDebug
	}
	if cfg.Logging.File != "" {
		logger, err := logging.NewFileLogger(level, cfg.Logging.File)
		if err != nil {
			return nil, err
		}
		a.logger = logger
	} else {
		a.logger = logging.NewWriterLogger(level, d.stderr)
	}

	if d.env != nil {
		a.env = *d.env
	} else {
		env, err := config.LoadEnv(cfg.EnvFile)
		if err != nil {
			a.logger.Warn("config.env.failed", "Ignoring unreadable env file", map[string]interface{}{
				"path":  cfg.EnvFile,
				"error": err.Error(),
			})
		}
		a.env = env
	}

	if d.host != nil {
		a.host = *d.host
	} else {
		a.host = host.Detect()
	}

	a.runner = d.runner
	if a.runner == nil {
		a.runner = probe.NewExecRunner(cfg.ProbeTimeout(), a.logger)
	}
	a.fetcher = d.fetcher
	if a.fetcher == nil {
		a.fetcher = manifest.NewHTTPFetcher(httpTimeout)
	}

	a.logger.Debug("app.ready", "Configuration loaded", map[string]interface{}{
		"config":   a.cfgPath,
		"host":     a.host.Name,
		"rid":      a.host.RID(),
		"hives":    cfg.ResolvedHivesDir(),
		"cache":    cfg.ResolvedCacheDir(),
		"manifest": cfg.Manifest.URL,
	})
	return a, nil
}

func (a *app) close() {
	if err := a.logger.Close(); err != nil {
		fmt.Fprintf(a.stderr, "Warning: failed to close log file: %v\n", err)
	}
}

func (a *app) workingDir() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	return os.Getwd()
}

func (a *app) secretStore() (*secrets.Store, error) {
	return secrets.NewStore(secrets.DefaultConfig(), a.logger)
}
