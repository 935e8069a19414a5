package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"leadetl/internal/config"
	"leadetl/internal/pipeline"
	"leadetl/internal/storage"

	// register all backends with the storage factory; storage.kind picks one.
	_ "leadetl/internal/storage/all"
)

// options are the command-line flags.
type options struct {
	configPath     string
	validate       bool
	verbose        bool
	metricsBackend string
	pushGatewayURL string
	dogstatsdAddr  string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("leadetl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "pipeline config JSON path (defaults apply when empty)")
	fs.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&o.verbose, "v", false, "enable verbose logs")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides env METRICS_BACKEND)")
	fs.StringVar(&o.pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.StringVar(&o.dogstatsdAddr, "dogstatsd-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_ADDR)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

// errInvalidConfig is returned after validation issues were printed.
var errInvalidConfig = errors.New("invalid configuration")

// main loads the pipeline config, wires the warehouse, spelling, translation
// and metrics collaborators, and runs the job once.
func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fatalf("flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, os.Stdout, os.Stderr, os.LookupEnv); err != nil {
		if !errors.Is(err, errInvalidConfig) {
			log.Printf("%v", err)
		}
		stop()
		os.Exit(1)
	}
}

// run executes one job. It prints the outcome line on stdout; validation
// issues go to stderr.
func run(ctx context.Context, o options, stdout, stderr io.Writer, lookup config.LookupFunc) error {
	p, err := config.Load(o.configPath)
	if err != nil {
		fmt.Fprintln(stdout, failureLine)
		return err
	}
	config.ApplyEnv(&p, lookup)

	issues := append(config.ValidatePipeline(p), storageKindIssues(p.Storage.Kind)...)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid: %s", displayPath(o.configPath))
		if !o.validate {
			fmt.Fprintln(stdout, failureLine)
		}
		return errInvalidConfig
	}
	if o.validate {
		log.Printf("configuration is valid: %s", displayPath(o.configPath))
		return nil
	}

	flush := setupMetrics(o, p.Job, lookup)
	defer flush()

	deps, closeDeps, err := buildDeps(ctx, p, lookup)
	if err != nil {
		fmt.Fprintln(stdout, failureLine)
		return err
	}
	defer closeDeps()

	if o.verbose {
		log.Printf("pipeline: storage=%s translate=%s source=%s sink=%s",
			p.Storage.Kind, p.Translate.Kind, p.Source.Table, p.Sink.Table)
	}

	start := time.Now()
	res, err := runPipeline(ctx, pipeline.Config{
		Job:           p.Job,
		Source:        p.Source.Table,
		Sink:          p.Sink.Table,
		BatchSize:     p.Runtime.BatchSize,
		ProgressEvery: p.Runtime.ProgressEvery,
	}, deps)
	if err != nil {
		fmt.Fprintln(stdout, failureLine)
		return err
	}

	fmt.Fprintf(stdout, "Successfully loaded %d rows into %s.\n", res.Rows, res.Table)
	if o.verbose {
		log.Printf("completed run=%s in %s", res.RunID, time.Since(start).Truncate(time.Millisecond))
	}
	return nil
}

const failureLine = "Failed to load data."

// storageKindIssues reports a kind no linked backend registered.
func storageKindIssues(kind string) []config.Issue {
	if strings.TrimSpace(kind) == "" || storage.Supported(kind) {
		return nil
	}
	return []config.Issue{{
		Severity: config.SeverityError,
		Path:     "storage.kind",
		Message:  fmt.Sprintf("unknown storage kind %q; registered kinds: %s", kind, strings.Join(storage.ListKinds(), ", ")),
	}}
}

// runPipeline is a test seam.
var runPipeline = pipeline.Run

func displayPath(p string) string {
	if p == "" {
		return "(defaults)"
	}
	return p
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
