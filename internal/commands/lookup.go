package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/klabast/wb-services/holiday-lookup/internal/app"
	"github.com/klabast/wb-services/holiday-lookup/internal/holiday"
)

// Lookup handles the default command: resolve one date and print it
func Lookup(args []string) {
	fs := flag.NewFlagSet(app.AppName, flag.ExitOnError)
	envFile := fs.String("env", app.DefaultEnvFile, "Path to .env file")
	source := fs.String("source", "", "Dataset source (default: $HOLIDAY_SOURCE or legacy)")
	locale := fs.String("locale", "", "Weekday name locale: zh-TW or en (default: $HOLIDAY_LOCALE)")
	url := fs.String("url", "", "Override the download URL of the source")
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [YYYY-MM-DD]\n", app.AppName)
		fmt.Fprintf(os.Stderr, "       %s serve [OPTIONS]\n", app.AppName)
		fmt.Fprintf(os.Stderr, "       %s hash-password [OPTIONS]\n\n", app.AppName)
		fmt.Fprintf(os.Stderr, "Looks up whether a date (default: today) is a day off.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := app.LoadConfig(*envFile)
	if err != nil {
		fatalf("Error: %v\n", err)
	}
	if *source != "" {
		cfg.Source = *source
	}
	if *locale != "" {
		if _, ok := holiday.NamesForLocale(*locale); !ok {
			fatalf("Error: unsupported locale %q\n", *locale)
		}
		cfg.Locale = *locale
	}
	app.InitLogger(cfg.LogLevel)

	sources, err := app.LoadSources(cfg)
	if err != nil {
		fatalf("Error: %v\n", err)
	}
	if *url != "" {
		for i := range sources {
			if sources[i].Name == cfg.Source {
				sources[i].URL = *url
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := app.NewStore(sources, cfg.WeekdayNames(), app.HTTPClient)
	if err := RunLookup(ctx, store, cfg.Source, fs.Arg(0), time.Now(), app.NewPrinter(*noColor), *asJSON); err != nil {
		stop()
		fatalf("Error: %v\n", err)
	}
}

// RunLookup loads the source, resolves the date and prints the result.
// An invalid date fails before anything is downloaded.
func RunLookup(ctx context.Context, store *app.Store, source, dateArg string, now time.Time, p *app.Printer, asJSON bool) error {
	date, err := app.ParseTargetDate(dateArg, now)
	if err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", dateArg, err)
	}

	ds, err := store.Load(ctx, source)
	if err != nil {
		return err
	}

	src, _ := store.Source(source)
	names := store.Names()
	rec, found := holiday.Lookup(ds.Records, date, names)

	if asJSON {
		if !found {
			app.Logger.WithFields(logrus.Fields{
				"source": src.Name,
				"date":   holiday.FormatDate(date),
			}).Info("No entry found, defaulting to not a holiday")
		}
		return p.JSON(app.LookupResult{Source: src.Name, Found: found, Record: rec})
	}

	p.Timing(ds)
	if !found {
		p.NotFound(date)
	}
	p.Dump(rec)
	return nil
}
