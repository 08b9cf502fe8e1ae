package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/klabast/wb-services/holiday-lookup/internal/holiday"
)

// Now is the clock used for default dates
var Now = time.Now

// NewMux registers the API routes
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/holiday", HandleHoliday)
	mux.HandleFunc("GET /api/sources", HandleSources)
	mux.HandleFunc("GET /api/download", HandleDownload)
	mux.HandleFunc("GET /api/subscribe/{source}", HandleSubscribe)
	mux.HandleFunc("/api/refresh", RequireAuth(HandleRefresh))
	return mux
}

// datasetFor writes an error response and returns false when the source is
// unknown or has not been loaded
func datasetFor(w http.ResponseWriter, name string) (*Dataset, bool) {
	if _, ok := Datasets.Source(name); !ok {
		http.Error(w, ErrUnknownSource, http.StatusNotFound)
		return nil, false
	}
	ds, ok := Datasets.Get(name)
	if !ok {
		http.Error(w, ErrSourceNotLoaded, http.StatusServiceUnavailable)
		return nil, false
	}
	return ds, true
}

// HandleHoliday resolves a single date
// Query params: date (YYYY-MM-DD, defaults to today), source
func HandleHoliday(w http.ResponseWriter, r *http.Request) {
	date, err := ParseTargetDate(r.URL.Query().Get("date"), Now())
	if err != nil {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}

	name := sourceParam(r)
	ds, ok := datasetFor(w, name)
	if !ok {
		return
	}

	rec, found := holiday.Lookup(ds.Records, date, Datasets.Names())
	if !found {
		Logger.WithFields(logrus.Fields{
			"source": name,
			"date":   holiday.FormatDate(date),
		}).Info("No entry found, defaulting to not a holiday")
	}

	writeJSON(w, LookupResult{Source: name, Found: found, Record: rec})
}

// HandleSources lists the configured sources and their load state
func HandleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, Datasets.List())
}

// HandleDownload exports one year of holidays
// Query params: source, year (defaults to current year), format (json|csv|ics)
func HandleDownload(w http.ResponseWriter, r *http.Request) {
	year := Now().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		var err error
		year, err = strconv.Atoi(yearStr)
		if err != nil {
			http.Error(w, ErrInvalidYear, http.StatusBadRequest)
			return
		}
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" && format != "ics" {
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
		return
	}

	ds, ok := datasetFor(w, sourceParam(r))
	if !ok {
		return
	}

	records := holiday.Holidays(ds.Records, year)
	switch format {
	case "csv":
		GenerateCSV(w, ds.Source, year, records)
	case "ics":
		GenerateICS(w, ds.Source, year, records)
	default:
		GenerateJSON(w, ds.Source, year, records)
	}
}

// HandleSubscribe serves the iCalendar subscription feed of a source
// URL: /api/subscribe/{source}
func HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	ds, ok := datasetFor(w, r.PathValue("source"))
	if !ok {
		return
	}

	var records []holiday.Record
	for _, year := range holiday.Years(ds.Records) {
		records = append(records, holiday.Holidays(ds.Records, year)...)
	}
	GenerateSubscriptionICS(w, ds.Source, records)
}

// HandleRefresh downloads a source again and swaps in the new dataset
// Query param: source
func HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	name := sourceParam(r)
	if _, ok := Datasets.Source(name); !ok {
		http.Error(w, ErrUnknownSource, http.StatusNotFound)
		return
	}

	ds, err := Datasets.Refresh(r.Context(), name)
	if err != nil {
		Logger.WithField("source", name).Errorf("Error refreshing dataset: %v", err)
		http.Error(w, ErrFailedToRefresh, http.StatusBadGateway)
		return
	}

	writeJSON(w, map[string]interface{}{
		"status":     "ok",
		"source":     name,
		"records":    len(ds.Records),
		"elapsed_ms": ds.Elapsed.Milliseconds(),
	})
}
