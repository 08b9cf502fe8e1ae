package holiday

import (
	"sort"
	"time"
)

// Lookup returns the first record for date. When there is none it returns a
// synthesized ordinary day named after the weekday, and false.
func Lookup(records []Record, date time.Time, names WeekdayNames) (Record, bool) {
	for _, rec := range records {
		if SameDate(rec.Date, date) {
			return rec, true
		}
	}

	return Record{
		Date: Day(date),
		Name: names.Of(date),
	}, false
}

// Holidays returns the days off of one year, sorted by date
func Holidays(records []Record, year int) []Record {
	var out []Record
	for _, rec := range records {
		if rec.IsHoliday && rec.Date.Year() == year {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Years lists the distinct years present in records, ascending
func Years(records []Record) []int {
	seen := make(map[int]bool)
	var years []int
	for _, rec := range records {
		if rec.Date.IsZero() {
			continue
		}
		y := rec.Date.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}
