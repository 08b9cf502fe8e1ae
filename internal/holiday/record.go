// Package holiday parses the published office calendar datasets and looks up
// whether a date is a day off.
package holiday

import (
	"encoding/json"
	"time"
)

// Tokens used by the published datasets
const (
	AffirmativeToken    = "是"
	WeekendToken        = "星期六、星期日"
	ArmedForcesDayToken = "軍人節"
)

// Record is a single normalized row of a holiday dataset
type Record struct {
	Date        time.Time
	Name        string
	IsHoliday   bool
	Category    string
	Description string
}

// MarshalJSON renders the date without a time component
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date        string `json:"date"`
		Name        string `json:"name"`
		IsHoliday   bool   `json:"is_holiday"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}{
		Date:        FormatDate(r.Date),
		Name:        r.Name,
		IsHoliday:   r.IsHoliday,
		Category:    r.Category,
		Description: r.Description,
	})
}

// WeekdayNames holds one label per day of the week, indexed by time.Weekday
type WeekdayNames [7]string

// Built-in weekday tables
var (
	ZhTW = WeekdayNames{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

	English = WeekdayNames{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
)

// Of returns the label for the weekday of t
func (n WeekdayNames) Of(t time.Time) string {
	return n[t.Weekday()]
}

// NamesForLocale returns the weekday table for a locale tag such as "zh-TW" or "en"
func NamesForLocale(locale string) (WeekdayNames, bool) {
	switch locale {
	case "", "zh-TW", "zh_TW", "zh-Hant", "zh":
		return ZhTW, true
	case "en", "en-US", "en_US", "en-GB":
		return English, true
	}
	return WeekdayNames{}, false
}
