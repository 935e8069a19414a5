package main

import (
	"context"
	"fmt"
	"log"

	"leadetl/internal/categorize"
	"leadetl/internal/config"
	"leadetl/internal/metrics"
	"leadetl/internal/metrics/datadog"
	"leadetl/internal/metrics/prompush"
	"leadetl/internal/normalize"
	"leadetl/internal/pipeline"
	"leadetl/internal/spell"
	"leadetl/internal/storage/snowflake"
	"leadetl/internal/translate"
)

// Test seams.
var (
	newVertex = func(ctx context.Context, cfg translate.Config) (translator, error) {
		return translate.NewVertex(ctx, cfg)
	}
	openerFor = pipeline.Opener
)

type translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
	Close() error
}

// buildDeps resolves warehouse credentials and builds the spelling,
// translation and categorization collaborators. Missing credentials fail
// here, before any network call. The returned func releases the translator.
func buildDeps(ctx context.Context, p config.Pipeline, lookup config.LookupFunc) (pipeline.Deps, func(), error) {
	nop := func() {}

	w, err := config.LoadWarehouse(p, lookup)
	if err != nil {
		return pipeline.Deps{}, nop, err
	}
	dsn, err := warehouseDSN(w)
	if err != nil {
		return pipeline.Deps{}, nop, err
	}

	dict := spell.Default()
	if p.Spell.Dictionary != "" {
		if dict, err = spell.Load(p.Spell.Dictionary); err != nil {
			return pipeline.Deps{}, nop, err
		}
	}
	log.Printf("spell: dictionary=%s words=%d", displayPath(p.Spell.Dictionary), dict.Len())

	rules, err := categorize.LoadRules(p.Categorize.Rules)
	if err != nil {
		return pipeline.Deps{}, nop, err
	}

	deps := pipeline.Deps{
		Open:  openerFor(w.Kind, dsn),
		Spell: normalize.SpellFunc(dict.Correction),
		Rules: rules,
	}

	switch p.Translate.Kind {
	case config.TranslateNone:
		deps.Translate = translate.Identity
		return deps, nop, nil
	case config.TranslateVertex:
		tcfg := translate.Config{
			ProjectID: p.Translate.Options.String("project_id", ""),
			Region:    p.Translate.Options.String("region", translate.DefaultRegion),
			Model:     p.Translate.Options.String("model", translate.DefaultModel),
		}
		tr, err := newVertex(ctx, tcfg)
		if err != nil {
			return pipeline.Deps{}, nop, err
		}
		log.Printf("translate: vertex project=%s region=%s model=%s", tcfg.ProjectID, tcfg.Region, tcfg.Model)
		deps.Translate = tr.Translate
		return deps, func() {
			if err := tr.Close(); err != nil {
				log.Printf("translate: close: %v", err)
			}
		}, nil
	}
	return pipeline.Deps{}, nop, fmt.Errorf("unsupported translate.kind=%s", p.Translate.Kind)
}

// warehouseDSN renders the driver DSN for w.
func warehouseDSN(w config.Warehouse) (string, error) {
	if w.Kind != config.DefaultStorageKind {
		return w.DSN, nil
	}
	return snowflake.DSN(snowflake.Credentials{
		User:      w.User,
		Password:  w.Password,
		Account:   w.Account,
		Warehouse: w.Warehouse,
		Database:  w.Database,
		Schema:    w.Schema,
		Role:      w.Role,
	})
}

// setupMetrics installs the metrics backend chosen by flag, then env. The
// returned func flushes it and must run before exit.
func setupMetrics(o options, job string, lookup config.LookupFunc) func() {
	name := pick(o.metricsBackend, lookup, "METRICS_BACKEND", "none")

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "pushgateway":
		url := pick(o.pushGatewayURL, lookup, "PUSHGATEWAY_URL", "http://localhost:9091")
		b, err = prompush.NewBackend(job, url)
		if err == nil {
			log.Printf("metrics: backend=%s url=%s job_name=%s", name, url, job)
		}
	case "datadog":
		addr := pick(o.dogstatsdAddr, lookup, "DD_DOGSTATSD_ADDR", "127.0.0.1:8125")
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       addr,
			GlobalTags: []string{"job:" + job},
		})
		if err == nil {
			log.Printf("metrics: backend=%s addr=%s", name, addr)
		}
	case "", "none":
		return func() {}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", name, err)
		return func() {}
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

// pick returns the flag value, else the env value, else def.
func pick(flagVal string, lookup config.LookupFunc, env, def string) string {
	if flagVal != "" {
		return flagVal
	}
	if v, ok := lookup(env); ok && v != "" {
		return v
	}
	return def
}
