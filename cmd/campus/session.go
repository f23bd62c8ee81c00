package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/elee1766/campusadmin/src/app"
	"github.com/elee1766/campusadmin/src/config"
	"github.com/spf13/afero"
)

// session holds what a command opened so main can release it.
type session struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	fs     afero.Fs
	getenv func(string) string

	cfg    *config.Config
	logger *slog.Logger
	app    *app.App
}

func (cli *CLI) out() io.Writer {
	if cli.state.stdout == nil {
		return os.Stdout
	}
	return cli.state.stdout
}

func (cli *CLI) errOut() io.Writer {
	if cli.state.stderr == nil {
		return os.Stderr
	}
	return cli.state.stderr
}

func (cli *CLI) in() io.Reader {
	if cli.state.stdin == nil {
		return os.Stdin
	}
	return cli.state.stdin
}

// loadConfig loads the configuration and applies the global flags over it.
func (cli *CLI) loadConfig() (*config.Config, error) {
	if cli.state.cfg != nil {
		return cli.state.cfg, nil
	}

	loader := config.NewLoader(cli.state.fs, config.GetConfigPaths())
	if cli.state.getenv != nil {
		loader.WithEnv(cli.state.getenv)
	}
	cfg, err := loader.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	overrideConfigFromCLI(cfg, cli)

	cli.state.cfg = cfg
	return cfg, nil
}

// overrideConfigFromCLI overrides configuration values with CLI flags
func overrideConfigFromCLI(cfg *config.Config, cli *CLI) {
	if cli.APIKey != "" {
		cfg.API.APIKey = cli.APIKey
	}
	if cli.DB != "" {
		cfg.Storage.DatabasePath = cli.DB
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if cli.MetricsFile != "" {
		cfg.Metrics.TextfilePath = cli.MetricsFile
	}
}

func (cli *CLI) log() (*slog.Logger, error) {
	if cli.state.logger != nil {
		return cli.state.logger, nil
	}
	cfg, err := cli.loadConfig()
	if err != nil {
		return nil, err
	}
	cli.state.logger = createCLILogger(cli.errOut(), cfg.LogLevel)
	return cli.state.logger, nil
}

// open returns the application, creating it on first use.
func (cli *CLI) open(ctx context.Context) (*app.App, error) {
	if cli.state.app != nil {
		return cli.state.app, nil
	}
	cfg, err := cli.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cli.log()
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	cli.state.app = a
	return a, nil
}

// close flushes metrics and releases the application.
func (cli *CLI) close() error {
	a := cli.state.app
	if a == nil {
		return nil
	}
	cli.state.app = nil

	var errs []error
	if err := a.FlushMetrics(); err != nil {
		errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
	}
	errs = append(errs, a.Close())
	return errors.Join(errs...)
}

// callTool runs one registered tool with args encoded as its JSON input and
// returns the decoded text of its result. Tool-reported failures become
// errors.
func callTool(ctx context.Context, a *app.App, name string, args any) (string, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s arguments: %w", name, err)
	}

	resp, err := a.Toolbox.ExecuteTool(ctx, &aisdk.ToolCall{
		Type:     "function",
		Function: aisdk.FunctionCall{Name: name, Arguments: raw},
	})
	if err != nil {
		return "", err
	}
	if resp.IsError {
		return "", errors.New(string(resp.Content))
	}

	var text string
	if err := json.Unmarshal(resp.Content, &text); err == nil {
		return text, nil
	}
	return strings.TrimSpace(string(resp.Content)), nil
}
