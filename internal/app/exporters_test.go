package app

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klabast/wb-services/holiday-lookup/internal/holiday"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixtureRecords() []holiday.Record {
	return []holiday.Record{
		{Date: day(2024, 2, 28), Name: "和平紀念日", IsHoliday: true, Category: "放假之紀念日及節日"},
		{Date: day(2024, 9, 3), Name: "軍人節", IsHoliday: false, Category: "紀念日及節日"},
		{Date: day(2024, 10, 10), Name: "國慶日", IsHoliday: true, Category: "放假之紀念日及節日", Description: "全國放假, 升旗典禮"},
		{Date: day(2024, 10, 12), Name: "星期六", IsHoliday: true, Category: "星期六、星期日"},
		{Date: day(2025, 1, 1), Name: "開國紀念日", IsHoliday: true, Category: "放假之紀念日及節日"},
	}
}

func TestGenerateICS(t *testing.T) {
	records := holiday.Holidays(fixtureRecords(), 2024)
	w := httptest.NewRecorder()

	GenerateICS(w, holiday.Legacy(), 2024, records)

	resp := w.Result()
	body := w.Body.String()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/calendar") {
		t.Errorf("Expected Content-Type text/calendar, got %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "holidays_legacy_2024.ics") {
		t.Errorf("Unexpected Content-Disposition: %s", cd)
	}

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ICSProductID,
		"X-WR-TIMEZONE:Asia/Taipei",
		"BEGIN:VEVENT",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(body, field) {
			t.Errorf("ICS output missing required field: %s", field)
		}
	}

	// all-day events
	if !strings.Contains(body, "DTSTART;VALUE=DATE:20241010") {
		t.Error("Event should be all-day (DTSTART;VALUE=DATE)")
	}
	if !strings.Contains(body, "DTEND;VALUE=DATE:20241011") {
		t.Error("All-day event should end on next day")
	}
	if !strings.Contains(body, "UID:20241010-legacy@holiday-lookup") {
		t.Error("Missing stable UID")
	}
	if !strings.Contains(body, `DESCRIPTION:放假之紀念日及節日 全國放假\, 升旗典禮`) {
		t.Error("Description should be escaped")
	}

	if n := strings.Count(body, "BEGIN:VEVENT"); n != 3 {
		t.Errorf("Expected 3 events, got %d", n)
	}
	if strings.Contains(body, "軍人節") {
		t.Error("Armed Forces Day is not a day off and should not be exported")
	}
}

func TestGenerateSubscriptionICS(t *testing.T) {
	w := httptest.NewRecorder()
	GenerateSubscriptionICS(w, holiday.Legacy(), holiday.Holidays(fixtureRecords(), 2025))

	resp := w.Result()
	body := w.Body.String()

	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		t.Errorf("Subscription should not have Content-Disposition header, got: %s", cd)
	}
	for _, field := range []string{"METHOD:PUBLISH", "X-PUBLISHED-TTL:P1D", "SUMMARY:開國紀念日"} {
		if !strings.Contains(body, field) {
			t.Errorf("ICS subscription output missing %s", field)
		}
	}
	if strings.Contains(body, "BEGIN:VALARM") {
		t.Error("Subscription should not contain alarms")
	}
}

func TestGenerateCSV(t *testing.T) {
	w := httptest.NewRecorder()
	GenerateCSV(w, holiday.Legacy(), 2024, holiday.Holidays(fixtureRecords(), 2024))

	resp := w.Result()
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Errorf("Expected Content-Type text/csv, got %s", ct)
	}

	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("Export is not valid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected header and 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "date,name,isHoliday,holidayCategory,description" {
		t.Errorf("Unexpected header: %v", rows[0])
	}
	if rows[2][0] != "2024-10-10" || rows[2][2] != "是" || rows[2][4] != "全國放假, 升旗典禮" {
		t.Errorf("Unexpected row: %v", rows[2])
	}

	// the export reads back through the loader
	src := holiday.Legacy()
	src.Encoding = "utf-8"
	var buf strings.Builder
	_ = csv.NewWriter(&buf).WriteAll(rows)
	records, err := holiday.Load(strings.NewReader(buf.String()), src, holiday.ZhTW)
	if err != nil {
		t.Fatalf("Load() of export failed: %v", err)
	}
	if len(records) != 3 || records[1].Name != "國慶日" {
		t.Errorf("Unexpected records from export: %+v", records)
	}
}

func TestGenerateJSON(t *testing.T) {
	w := httptest.NewRecorder()
	GenerateJSON(w, holiday.Legacy(), 2026, nil)

	resp := w.Result()
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}

	var got struct {
		Source   string            `json:"source"`
		Year     int               `json:"year"`
		Holidays []json.RawMessage `json:"holidays"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if got.Source != "legacy" || got.Year != 2026 {
		t.Errorf("Unexpected export header: %+v", got)
	}
	if got.Holidays == nil {
		t.Error("Empty export should carry an empty holidays array")
	}
}
