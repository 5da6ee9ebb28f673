package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/config"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/inspect"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/logging"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/publish"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/report"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/segment"
	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `gdt-inspector - engineering drawing segmentation and GD&T inspection

Usage:
  gdt-inspector segment <drawing> [-out dir]
  gdt-inspector inspect <dir> -rules checklist.json [-name report]
  gdt-inspector run <drawing> -rules checklist.json [-out dir]
  gdt-inspector serve

Common options:
  -config file       YAML configuration (defaults are used for missing keys)
  -log-level level   debug, info, warn or error (default info)

Options:
  --version, -v    Print version information
  --help, -h       Print this help message

Environment variables:
  GDT_LOG_LEVEL    Log level when -log-level is not given
  GDT_PROJECT_ID   Google Cloud project for inspection
  GDT_REGION       Vertex AI region (default us-central1)
  GDT_MODEL        Vertex AI model (default gemini-2.5-flash)
  GDT_BUCKET       Cloud Storage bucket; run publishes its output there when set

serve speaks MCP over stdin/stdout; configure it in your MCP client.
`

// modelFactory opens the inspection model; replaced in tests.
var modelFactory = func(ctx context.Context, cfg config.Inspection) (inspect.Model, func() error, error) {
	if cfg.ProjectID == "" {
		return nil, nil, fmt.Errorf("%w: inspection.project_id is not set (GDT_PROJECT_ID)", config.ErrInvalid)
	}
	m, err := inspect.NewVertexModel(ctx, cfg.ProjectID, cfg.Region, cfg.Model)
	if err != nil {
		return nil, nil, err
	}
	return m, m.Close, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch args[0] {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "gdt-inspector %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "--help", "-h", "help":
		fmt.Fprint(stdout, usage)
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level")
	fs.StringVar(&opts.outDir, "out", "output", "output directory")
	fs.StringVar(&opts.rulesPath, "rules", "", "checklist JSON file")
	fs.StringVar(&opts.reportName, "name", "report", "report name without extension")

	positional, err := parseInterspersed(fs, args[1:])
	if err != nil {
		return 2
	}
	if len(positional) != cmd.args {
		fmt.Fprintf(stderr, "%s expects %d argument(s), got %d\n\n%s", args[0], cmd.args, len(positional), usage)
		return 2
	}
	opts.args = positional

	log := logging.New(opts.logLevel, stderr)
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		return 1
	}

	if err := cmd.run(ctx, cfg, log, opts, stdout); err != nil {
		log.WithError(err).Errorf("%s failed", args[0])
		return 1
	}
	return 0
}

type options struct {
	configPath string
	logLevel   string
	outDir     string
	rulesPath  string
	reportName string
	args       []string
}

type command struct {
	args int
	run  func(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts *options, stdout io.Writer) error
}

var commands = map[string]command{
	"segment": {args: 1, run: runSegment},
	"inspect": {args: 1, run: runInspect},
	"run":     {args: 1, run: runPipeline},
	"serve":   {args: 0, run: runServe},
}

// parseInterspersed accepts flags before and after positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func runSegment(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts *options, stdout io.Writer) error {
	res, err := segment.New(cfg, log).Segment(ctx, opts.args[0], opts.outDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, res.ManifestPath)
	return nil
}

func runInspect(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts *options, stdout io.Writer) error {
	out, err := inspectDir(ctx, cfg, log, opts.args[0], opts.rulesPath, opts.reportName)
	if err != nil {
		return err
	}
	return writeJSON(stdout, out)
}

// runPipeline mirrors the one-shot flow: segment, inspect, report and,
// when a bucket is configured, publish.
func runPipeline(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts *options, stdout io.Writer) error {
	source := opts.args[0]
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))

	if _, err := segment.New(cfg, log).Segment(ctx, source, opts.outDir); err != nil {
		return err
	}
	out, err := inspectDir(ctx, cfg, log, opts.outDir, opts.rulesPath, stem)
	if err != nil {
		return err
	}

	if cfg.Publish.Bucket != "" {
		if err := publishDir(ctx, cfg.Publish, log, opts.outDir, stem); err != nil {
			return err
		}
	}

	return writeJSON(stdout, map[string]string{
		"status":     "success",
		"excel_name": out.ExcelName,
		"excel_path": out.ExcelPath,
	})
}

func runServe(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts *options, stdout io.Writer) error {
	log.WithFields(logrus.Fields{"version": Version, "commit": GitCommit}).Debug("starting MCP server")
	srv := server.New(cfg, log, server.WithVersion(Version))
	defer srv.Close()
	return srv.Run(ctx)
}

func inspectDir(ctx context.Context, cfg *config.Config, log *logrus.Logger, dir, rulesPath, name string) (*report.Output, error) {
	if rulesPath == "" {
		return nil, errors.New("-rules is required")
	}
	rules, err := inspect.LoadChecklist(rulesPath)
	if err != nil {
		return nil, err
	}

	model, closeModel, err := modelFactory(ctx, cfg.Inspection)
	if err != nil {
		return nil, err
	}
	defer closeModel()

	verdicts, err := inspect.New(model, cfg.Inspection, log).Inspect(ctx, dir, rules)
	if err != nil {
		return nil, err
	}
	out, err := report.Write(dir, name, verdicts, rules)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"workbook":   out.ExcelPath,
		"compliance": out.Summary.CompliancePercent,
		"risk":       out.Summary.OverallRisk,
	}).Info("report written")
	return out, nil
}

func publishDir(ctx context.Context, cfg config.Publish, log *logrus.Logger, dir, stem string) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	defer client.Close()

	p := publish.New(publish.GCS(client, cfg.Bucket), path.Join(cfg.Prefix, stem), log)
	_, err = p.Publish(ctx, dir)
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
