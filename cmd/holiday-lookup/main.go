package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/klabast/wb-services/holiday-lookup/internal/app"
	"github.com/klabast/wb-services/holiday-lookup/internal/commands"
)

func main() {
	// Check for subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "hash-password":
			commands.HashPassword(os.Args[2:])
			return
		case "serve":
			serve(os.Args[2:])
			return
		}
	}

	commands.Lookup(os.Args[1:])
}

func serve(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	envFile := fs.String("env", app.DefaultEnvFile, "Path to .env file")
	port := fs.Int("port", 0, "Port to listen on (default: $PORT or 8080)")
	_ = fs.Parse(args)

	cfg, err := app.LoadConfig(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	app.InitLogger(cfg.LogLevel)

	sources, err := app.LoadSources(cfg)
	if err != nil {
		app.Logger.Fatalf("Failed to load source configuration: %v", err)
	}

	app.Source = cfg.Source
	app.Datasets = app.NewStore(sources, cfg.WeekdayNames(), app.HTTPClient)
	if _, ok := app.Datasets.Source(cfg.Source); !ok {
		app.Logger.Fatalf("Default source %q is not configured", cfg.Source)
	}

	authFile := cfg.AuthFile
	if authFile == "" {
		if authFile, err = app.AuthFilePath(); err != nil {
			app.Logger.Fatalf("Failed to resolve auth file: %v", err)
		}
	}
	if err := app.LoadAuthCredentials(authFile); err != nil {
		app.Logger.Fatalf("Failed to load auth credentials: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Partial failures are logged by the store; only an empty store is fatal
	_ = app.Datasets.LoadAll(ctx)
	if app.Datasets.Loaded() == 0 {
		app.Logger.Fatal("Failed to load any holiday dataset")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.NewMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Infof("Starting %s on http://localhost:%d (default source: %s)", app.AppName, cfg.Port, cfg.Source)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		app.Logger.Fatal(err)
	}
}
