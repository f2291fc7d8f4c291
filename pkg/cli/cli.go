// Package cli provides the command-line interface for reportsections.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/reportsections/pkg/config"
	"github.com/devicelab-dev/reportsections/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

const configKey = "config"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to reportsections.yaml (default: ./reportsections.yaml if present)",
		EnvVars: []string{"REPORT_SECTIONS_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write logs to this file",
		EnvVars: []string{"REPORT_SECTIONS_LOG"},
	},
	&cli.StringFlag{
		Name:    "log-dir",
		Usage:   "Write reportsections.log into this directory",
		EnvVars: []string{"REPORT_SECTIONS_LOG_DIR"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging (logs to <home>/logs when no log file is given)",
		EnvVars: []string{"REPORT_SECTIONS_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "legacy",
		Usage: "Also resolve sections through <layer> elements and name attributes",
	},
}

// Commands lists every subcommand.
var Commands = []*cli.Command{
	renderCommand,
	showCommand,
	hideCommand,
	toggleCommand,
	statusCommand,
	replayCommand,
}

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "reportsections",
		Usage:   "Render build reports and show, hide or toggle their sections",
		Version: Version,
		Description: `reportsections renders build and test results as a single HTML page
with collapsible sections, and edits the initial visibility of sections in
existing reports.

Examples:
  reportsections render report.yaml -o report.html
  reportsections hide report.html compilePanel testsPanel
  reportsections toggle report.html errorsPanel
  reportsections status report.html
  reportsections replay report.html "toggleElement('errorsPanel')"`,
		Flags:    GlobalFlags,
		Commands: Commands,
		Before:   setup,
		After: func(c *cli.Context) error {
			logger.Close()
			return nil
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the workspace config and starts logging.
func setup(c *cli.Context) error {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if c.Bool("verbose") {
		cfg.Verbose = true
	}
	if c.Bool("legacy") {
		cfg.Legacy = true
	}
	if path := c.String("log-file"); path != "" {
		cfg.LogFile = path
	}
	if dir := c.String("log-dir"); dir != "" {
		cfg.LogDir = dir
		if !c.IsSet("log-file") {
			cfg.LogFile = ""
		}
	}
	if cfg.LogFile == "" {
		cfg.LogFile = cfg.ResolveLogFile()
		if cfg.LogFile != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
				return fmt.Errorf("create log dir: %w", err)
			}
		}
	}

	if cfg.LogFile != "" {
		if err := logger.Init(cfg.LogFile); err != nil {
			return err
		}
		logger.SetVerbose(cfg.Verbose)
		logger.Info("reportsections %s: %v", Version, c.Args().Slice())
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

// appConfig returns the config loaded by setup, or an empty one.
func appConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}
