package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klabast/wb-services/holiday-lookup/internal/holiday"
)

// icsEscape escapes TEXT values per RFC 5545
func icsEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)
	return r.Replace(s)
}

// writeEvents writes one all-day VEVENT per holiday
func writeEvents(w io.Writer, src holiday.Source, records []holiday.Record) {
	stamp := time.Now().UTC().Format("20060102T150405Z")
	for _, rec := range records {
		day := rec.Date.Format(holiday.CompactLayout)

		// Generate UID - must be stable for proper calendar updates
		uid := fmt.Sprintf("%s-%s@%s", day, src.Name, AppName)

		// Event - all-day event
		fmt.Fprintln(w, "BEGIN:VEVENT")
		fmt.Fprintf(w, "UID:%s\n", uid)
		fmt.Fprintf(w, "DTSTAMP:%s\n", stamp)
		fmt.Fprintf(w, "DTSTART;VALUE=DATE:%s\n", day)
		fmt.Fprintf(w, "DTEND;VALUE=DATE:%s\n", rec.Date.AddDate(0, 0, 1).Format(holiday.CompactLayout))
		fmt.Fprintf(w, "SUMMARY:%s\n", icsEscape(rec.Name))
		if desc := strings.TrimSpace(rec.Category + " " + rec.Description); desc != "" {
			fmt.Fprintf(w, "DESCRIPTION:%s\n", icsEscape(desc))
		}
		fmt.Fprintln(w, "TRANSP:TRANSPARENT")
		fmt.Fprintln(w, "END:VEVENT")
	}
}

// GenerateICS generates an iCalendar download of one year's holidays
func GenerateICS(w http.ResponseWriter, src holiday.Source, year int, records []holiday.Record) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=holidays_%s_%d.ics", src.Name, year))

	// ICS header
	fmt.Fprintln(w, "BEGIN:VCALENDAR")
	fmt.Fprintln(w, "VERSION:2.0")
	fmt.Fprintf(w, "PRODID:%s\n", ICSProductID)
	fmt.Fprintf(w, "X-WR-CALNAME:%s %d\n", icsEscape(src.Title), year)
	fmt.Fprintf(w, "X-WR-TIMEZONE:%s\n", ICSTimezone)
	fmt.Fprintln(w, "CALSCALE:GREGORIAN")
	// Generate events
	writeEvents(w, src, records)
	fmt.Fprintln(w, "END:VCALENDAR")
}

// GenerateSubscriptionICS generates an iCalendar subscription feed with
// every holiday of the dataset. It is served inline and carries
// METHOD:PUBLISH with a refresh hint.
func GenerateSubscriptionICS(w http.ResponseWriter, src holiday.Source, records []holiday.Record) {
	// No Content-Disposition header - calendar apps need inline content for subscriptions
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")

	// ICS header for subscription
	fmt.Fprintln(w, "BEGIN:VCALENDAR")
	fmt.Fprintln(w, "VERSION:2.0")
	fmt.Fprintf(w, "PRODID:%s\n", ICSProductID)
	fmt.Fprintln(w, "METHOD:PUBLISH")
	fmt.Fprintf(w, "X-WR-CALNAME:%s\n", icsEscape(src.Title))
	fmt.Fprintf(w, "X-WR-TIMEZONE:%s\n", ICSTimezone)
	fmt.Fprintln(w, "CALSCALE:GREGORIAN")
	fmt.Fprintln(w, "X-PUBLISHED-TTL:P1D")
	// Generate events
	writeEvents(w, src, records)
	fmt.Fprintln(w, "END:VCALENDAR")
}

// GenerateCSV generates a UTF-8 CSV of one year's holidays
func GenerateCSV(w http.ResponseWriter, src holiday.Source, year int, records []holiday.Record) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=holidays_%s_%d.csv", src.Name, year))

	// CSV header
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"date", "name", "isHoliday", "holidayCategory", "description"})
	// CSV rows
	for _, rec := range records {
		flag := "否"
		if rec.IsHoliday {
			flag = holiday.AffirmativeToken
		}
		_ = cw.Write([]string{holiday.FormatDate(rec.Date), rec.Name, flag, rec.Category, rec.Description})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		Logger.Errorf("Error writing CSV export: %v", err)
	}
}

// GenerateJSON generates a JSON document of one year's holidays
func GenerateJSON(w http.ResponseWriter, src holiday.Source, year int, records []holiday.Record) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=holidays_%s_%d.json", src.Name, year))

	if records == nil {
		records = []holiday.Record{}
	}
	data := map[string]interface{}{
		"source":   src.Name,
		"year":     year,
		"holidays": records,
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		Logger.Errorf("Error encoding JSON export: %v", err)
		http.Error(w, ErrFailedToGenerateJSON, http.StatusInternalServerError)
	}
}
