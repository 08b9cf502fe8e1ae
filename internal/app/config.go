package app

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/klabast/wb-services/holiday-lookup/internal/holiday"
)

// Constants
const (
	AppName            = "holiday-lookup"
	DefaultPort        = 8080
	DefaultSource      = "legacy"
	DefaultLocale      = "zh-TW"
	DefaultEnvFile     = ".env"
	DefaultHTTPTimeout = 2 * time.Minute

	// Error messages
	ErrInvalidDateFormat    = "Invalid date format (expected YYYY-MM-DD)"
	ErrInvalidYear          = "Invalid year"
	ErrInvalidFormat        = "Invalid format"
	ErrUnknownSource        = "Unknown source"
	ErrSourceNotLoaded      = "Source not loaded"
	ErrInternalServer       = "Internal server error"
	ErrFailedToRefresh      = "Failed to refresh dataset"
	ErrFailedToGenerateJSON = "Failed to generate JSON"

	// ICS constants
	ICSProductID = "-//Taipei//Holiday Lookup//ZH"
	ICSTimezone  = "Asia/Taipei"
)

// Config is the runtime configuration assembled from the environment
type Config struct {
	Source      string
	SourcesFile string
	Locale      string
	OpenURL     string
	LogLevel    string
	AuthFile    string
	Port        int
}

// Global variables
var (
	Datasets   *Store
	Source     = DefaultSource
	HTTPClient = &http.Client{Timeout: DefaultHTTPTimeout}
)

// LoadConfig reads .env (if present) and the HOLIDAY_* environment variables
func LoadConfig(envFile string) (Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	// silent if missing
	_ = godotenv.Load(envFile)

	cfg := Config{
		Source:      getenv("HOLIDAY_SOURCE", DefaultSource),
		SourcesFile: os.Getenv("HOLIDAY_SOURCES_FILE"),
		Locale:      getenv("HOLIDAY_LOCALE", DefaultLocale),
		OpenURL:     os.Getenv("HOLIDAY_OPEN_URL"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		AuthFile:    os.Getenv("AUTH_FILE"),
		Port:        DefaultPort,
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return cfg, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Port = p
	}

	if _, ok := holiday.NamesForLocale(cfg.Locale); !ok {
		return cfg, fmt.Errorf("unsupported locale %q", cfg.Locale)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// WeekdayNames returns the weekday table for the configured locale
func (c Config) WeekdayNames() holiday.WeekdayNames {
	names, _ := holiday.NamesForLocale(c.Locale)
	return names
}

type sourcesFile struct {
	Sources []holiday.Source `yaml:"sources"`
}

// ParseSources decodes a YAML sources document
func ParseSources(data []byte) ([]holiday.Source, error) {
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	return f.Sources, nil
}

// LoadSources returns the built-in sources merged with the sources file.
// An entry in the file replaces the built-in source of the same name;
// unset fields keep the built-in values.
func LoadSources(cfg Config) ([]holiday.Source, error) {
	sources := holiday.BuiltinSources()
	for i := range sources {
		if sources[i].Name == "open" && cfg.OpenURL != "" {
			sources[i].URL = cfg.OpenURL
		}
	}

	if cfg.SourcesFile != "" {
		data, err := os.ReadFile(cfg.SourcesFile)
		if err != nil {
			return nil, fmt.Errorf("read sources file: %w", err)
		}
		extra, err := ParseSources(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.SourcesFile, err)
		}
		sources = mergeSources(sources, extra)
	}

	for _, src := range sources {
		if err := src.Validate(); err != nil {
			return nil, err
		}
	}
	return sources, nil
}

func mergeSources(base, extra []holiday.Source) []holiday.Source {
	for _, src := range extra {
		replaced := false
		for i := range base {
			if base[i].Name != src.Name {
				continue
			}
			base[i] = overlaySource(base[i], src)
			replaced = true
			break
		}
		if !replaced {
			if src.NullValues == nil {
				src.NullValues = holiday.DefaultNullValues
			}
			base = append(base, src)
		}
	}
	return base
}

func overlaySource(base, over holiday.Source) holiday.Source {
	if over.Title != "" {
		base.Title = over.Title
	}
	if over.URL != "" {
		base.URL = over.URL
	}
	if over.Encoding != "" {
		base.Encoding = over.Encoding
	}
	if over.DateShape != "" {
		base.DateShape = over.DateShape
	}
	if over.NullValues != nil {
		base.NullValues = over.NullValues
	}
	if len(over.Headers) > 0 {
		base.Headers = over.Headers
	}
	return base
}
