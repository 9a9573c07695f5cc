package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/toplist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client
	lookupEnv  func(string) (string, bool)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
	// LookupEnv reads environment overrides; defaults to [os.LookupEnv].
	LookupEnv func(string) (string, bool)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}

	return &Runner{
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		lookupEnv:  opts.LookupEnv,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){serveCommand, configCommand, dbCommand} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads path on top of the defaults and applies environment overrides.
// A missing file is not an error: the defaults plus environment are enough to run.
func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	config := shared.DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
		r.logger.Debug("config loaded", "path", path)
	} else {
		r.logger.Info("config file not found, using defaults", "path", path)
	}

	if err := config.ApplyEnv(r.lookupEnv); err != nil {
		return nil, err
	}

	return config, nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
