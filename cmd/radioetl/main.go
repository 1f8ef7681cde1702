package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"radioetl/internal/config"
	"radioetl/internal/loader"
	"radioetl/internal/metrics"
	"radioetl/internal/metrics/datadog"
	"radioetl/internal/metrics/prompush"
	"radioetl/internal/source"
	"radioetl/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we build in support for all of them.
	_ "radioetl/internal/storage/all"
)

// main loads the run config, optionally initializes a metrics backend, and
// executes the selected pipeline inside one transaction.
func main() {
	var (
		cfgPath           string
		modeFlg           string
		inputFlg          string
		storageFlg        string
		dsnFlg            string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "run config JSON path")
	flag.StringVar(&modeFlg, "mode", "", "override run mode (bulk or streaming)")
	flag.StringVar(&inputFlg, "input", "", "override input with a local file path")
	flag.StringVar(&storageFlg, "storage", "", "override storage kind (postgres, sqlite, mssql)")
	flag.StringVar(&dsnFlg, "dsn", "", "override storage DSN")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	c := config.Config{}
	if cfgPath != "" {
		f, err := os.Open(cfgPath)
		if err != nil {
			fatalf("open config: %v", err)
		}
		c, err = config.Load(f)
		_ = f.Close()
		if err != nil {
			fatalf("%v", err)
		}
	}

	// Flag overrides beat the config file.
	if modeFlg != "" {
		c.Mode = modeFlg
	}
	if inputFlg != "" {
		c.Source = source.Config{Kind: "file", Path: inputFlg}
	}
	if storageFlg != "" {
		c.Storage.Kind = storageFlg
	}
	if dsnFlg != "" {
		c.Storage.DSN = dsnFlg
	}

	issues := config.Validate(c)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasError(issues) {
		fatalf("configuration is invalid")
	}
	if validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	jobName := c.Job
	if jobName == "" {
		jobName = "radioetl"
	}

	// Decide metrics backend: flag → env → none.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%s url=%s job_name=%s", backendName, gwURL, jobName)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "datadog":
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: jobName,
			Tags:    datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")),
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%s job_name=%s", backendName, jobName)
			metrics.SetBackend(b)
			// Close stops the periodic flush loop and flushes one final time.
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()

	store, err := storage.New(ctx, c.Storage)
	if err != nil {
		fatalf("storage: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		fatalf("storage: %v", err)
	}

	in, err := source.Open(ctx, c.Source)
	if err != nil {
		fatalf("%v", err)
	}
	defer in.Close()

	p := &loader.Pipeline{Store: store}
	if *verbose {
		p.Logger = log.Default()
		log.Printf("run: mode=%s source=%s storage=%s", c.Mode, c.Source.Kind, c.Storage.Kind)
	}

	var sum loader.Summary
	switch c.Mode {
	case config.ModeBulk:
		sum, err = p.RunBulk(ctx, in)
	case config.ModeStreaming:
		sum, err = p.RunStream(ctx, in)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("done: mode=%s inserted=%d skipped=%d duration=%s",
		c.Mode, sum.Inserted, sum.Skipped, sum.Elapsed.Truncate(time.Millisecond))
	for reason, n := range sum.Reasons {
		log.Printf("skipped: reason=%s count=%d", reason, n)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
