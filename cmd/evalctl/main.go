// SPDX-License-Identifier: Apache-2.0

// evalctl resolves, inspects, and serves the client-side configuration of
// the document-review platform.
//
// Usage:
//
//	evalctl [flags] <command> [args]
//
// Commands:
//
//	show            print the resolved configuration (default)
//	get <key>       print one option
//	set <key> <val> apply and persist one override
//	reset           restore defaults and re-detect the API base
//	export          print the versioned export envelope
//	import <file|-> replace the configuration from an export envelope
//	probe           check backend connectivity once
//	serve           serve the frontend and the configuration API
//	version         print build information
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"

	"github.com/projeval/evalctl/internal/config"
	"github.com/projeval/evalctl/internal/logger"
	"github.com/projeval/evalctl/internal/probe"
	"github.com/projeval/evalctl/internal/server"
	"github.com/projeval/evalctl/internal/store"
	"github.com/projeval/evalctl/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	var (
		dsn         string
		address     string
		staticDir   string
		pageURLRaw  string
		transient   bool
		toClipboard bool
	)

	flag.StringVar(&dsn, "d", "evalctl.db", "Settings store path (:memory: for none)")
	flag.StringVar(&address, "a", ":8100", "Listen address for serve")
	flag.StringVar(&staticDir, "s", "", "Static frontend directory for serve")
	flag.StringVar(&pageURLRaw, "u", "", "Page URL supplying query overrides and detection host")
	flag.BoolVar(&transient, "t", false, "Do not persist mutations")
	flag.BoolVar(&toClipboard, "clipboard", false, "Copy export output to the clipboard")
	flag.Parse()

	command := "show"
	args := flag.Args()
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	if command == "version" {
		printBuildInfo()
		return
	}

	log := logger.NewLogger("evalctl")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recordStore, err := openStore(ctx, dsn, log)
	if err != nil {
		log.Fatal().Err(err).Msg("opening settings store")
	}

	resolver := config.New(ctx, config.Options{
		Store:     recordStore,
		PageURL:   parsePageURL(pageURLRaw, log),
		Transient: transient,
		Logger:    log,
	})
	logger.SetDebug(resolver.Snapshot().DebugMode)
	prober := probe.New(resolver, log)

	if err := run(ctx, command, args, runtimeDeps{
		resolver:    resolver,
		prober:      prober,
		log:         log,
		dsn:         dsn,
		address:     address,
		staticDir:   staticDir,
		toClipboard: toClipboard,
	}); err != nil {
		log.Error().Err(err).Str("command", command).Msg("command failed")
		os.Exit(1)
	}
}

type runtimeDeps struct {
	resolver    *config.Resolver
	prober      *probe.Prober
	log         *logger.Logger
	dsn         string
	address     string
	staticDir   string
	toClipboard bool
}

func run(ctx context.Context, command string, args []string, deps runtimeDeps) error {
	switch command {
	case "show":
		return printJSON(deps.resolver.Snapshot())

	case "get":
		if len(args) != 1 {
			return fmt.Errorf("usage: evalctl get <key>")
		}
		value, ok := deps.resolver.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown option %q", args[0])
		}
		return printJSON(value)

	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: evalctl set <key> <value>")
		}
		deps.resolver.Set(ctx, args[0], args[1])
		value, _ := deps.resolver.Get(args[0])
		return printJSON(value)

	case "reset":
		deps.resolver.Reset(ctx)
		return printJSON(deps.resolver.Snapshot())

	case "export":
		out, err := deps.resolver.Export()
		if err != nil {
			return err
		}
		if deps.toClipboard {
			if err := clipboard.WriteAll(out); err != nil {
				deps.log.Warn().Err(err).Msg("copying export to clipboard")
			}
		}
		fmt.Println(out)
		return nil

	case "import":
		if len(args) != 1 {
			return fmt.Errorf("usage: evalctl import <file|->")
		}
		payload, err := readPayload(args[0])
		if err != nil {
			return err
		}
		if err := deps.resolver.Import(ctx, payload); err != nil {
			return err
		}
		return printJSON(deps.resolver.Snapshot())

	case "probe":
		result := deps.prober.Check(ctx)
		if err := printJSON(result); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("backend unreachable: %s", result.Message)
		}
		return nil

	case "serve":
		return serve(ctx, deps)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func serve(ctx context.Context, deps runtimeDeps) error {
	handler := server.NewHandler(deps.resolver, deps.prober, deps.staticDir, deps.log.GetChildLogger())
	srv := server.NewServer(deps.address, handler.Init(), deps.log)

	refresh := workers.NewRefreshWorker(deps.resolver, deps.prober, deps.log)
	workers.NewWorkers(refresh).Run()
	defer refresh.Stop()

	if deps.dsn != "" && deps.dsn != ":memory:" {
		watcher, err := config.NewStoreWatcher(deps.resolver, deps.log)
		if err != nil {
			deps.log.Warn().Err(err).Msg("store watcher unavailable")
		} else {
			defer watcher.Close()
			if err := watcher.Watch(ctx, deps.dsn); err != nil {
				deps.log.Warn().Err(err).Msg("watching settings store")
			}
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case <-ctx.Done():
		deps.log.Info().Msg("shutting down")
		srv.Shutdown(context.Background())
		return nil
	case err := <-errCh:
		return err
	}
}

func openStore(ctx context.Context, dsn string, log *logger.Logger) (config.RecordStore, error) {
	if dsn == "" || dsn == ":memory:" {
		return store.NewMemory(), nil
	}
	return store.NewSQLite(ctx, dsn, log)
}

func parsePageURL(raw string, log *logger.Logger) *url.URL {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		log.Warn().Err(err).Str("url", raw).Msg("ignoring malformed page URL")
		return nil
	}
	return u
}

func readPayload(source string) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", source, err)
	}
	return string(data), nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
