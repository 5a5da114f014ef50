// Command harvest runs one full ingestion pass: it reads a newline-delimited
// file of source site URLs, extracts and indexes their articles, and writes
// per-day, per-source JSON files under the output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/presswire/newsdex/internal/config"
	"github.com/presswire/newsdex/internal/extractor"
	"github.com/presswire/newsdex/internal/ingest"
	"github.com/presswire/newsdex/internal/logger"
	"github.com/presswire/newsdex/internal/store"
	"github.com/presswire/newsdex/pkg/httpclient"
	"github.com/presswire/newsdex/pkg/publishers"
)

func main() {
	var (
		rootDir    = flag.String("root-dir", "", "output directory for per-day JSON files")
		sourceList = flag.String("source-list", "", "newline-delimited file of source site URLs")
		configPath = flag.String("config", "", "optional config file")
	)
	flag.Parse()

	if *rootDir == "" || *sourceList == "" {
		fmt.Fprintln(os.Stderr, "usage: harvest --root-dir DIR --source-list FILE [--config FILE]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl, *rootDir, *sourceList); err != nil {
		zl.ErrorObj("ingestion pass failed", "harvest_fatal", map[string]any{"error": err.Error()})
		zl.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, zl *logger.ZapLogger, rootDir, sourceList string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sources, err := ingest.ReadSourceList(sourceList)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("source list %s is empty", sourceList)
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	var pubs []publishers.Publisher
	if cfg.PublishersFile != "" {
		cfgs, err := publishers.LoadFile(cfg.PublishersFile)
		if err != nil {
			return err
		}
		if pubs, err = publishers.Build(ctx, cfgs, zl); err != nil {
			return err
		}
	}

	client := httpclient.NewRestyClient(cfg.FetchTimeout)
	extOpts := []extractor.Option{extractor.WithMaxBodyBytes(cfg.MaxBodyBytes)}
	if cfg.UserAgent != "" {
		extOpts = append(extOpts, extractor.WithUserAgent(cfg.UserAgent))
	}
	ext := extractor.NewHTML(client, zl, extOpts...)

	coord := ingest.New(ext, st, zl, ingest.Options{
		Workers:    cfg.Workers,
		Sink:       ingest.NewJSONSink(rootDir),
		Publishers: pubs,
	})

	coord.Run(ctx, sources)
	return ctx.Err()
}
