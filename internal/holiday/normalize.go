package holiday

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is returned when a header row lacks the date column
var ErrMissingColumn = errors.New("dataset header has no date column")

// RawRow holds the string values of one row after header binding
type RawRow struct {
	Date        string
	Name        string
	IsHoliday   string
	Category    string
	Description string
}

type setter func(*RawRow, string)

// fieldSetters is the static field binding table
var fieldSetters = map[Field]setter{
	FieldDate:        func(r *RawRow, v string) { r.Date = v },
	FieldName:        func(r *RawRow, v string) { r.Name = v },
	FieldIsHoliday:   func(r *RawRow, v string) { r.IsHoliday = v },
	FieldCategory:    func(r *RawRow, v string) { r.Category = v },
	FieldDescription: func(r *RawRow, v string) { r.Description = v },
}

// Binding maps column positions to field setters
type Binding struct {
	setters []setter
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// BindHeader matches a header row against the source's header names.
// Matching is case-insensitive; unknown columns are ignored.
func BindHeader(header []string, src Source) (Binding, error) {
	byName := make(map[string]Field)
	for field, names := range src.Headers {
		for _, name := range names {
			byName[normalizeHeader(name)] = field
		}
	}

	b := Binding{setters: make([]setter, len(header))}
	hasDate := false
	for i, h := range header {
		field, ok := byName[normalizeHeader(h)]
		if !ok {
			continue
		}
		b.setters[i] = fieldSetters[field]
		if field == FieldDate {
			hasDate = true
		}
	}

	if !hasDate {
		return Binding{}, fmt.Errorf("%w (source %s, header %q)", ErrMissingColumn, src.Name, header)
	}
	return b, nil
}

// Row applies the binding to one CSV record
func (b Binding) Row(record []string) RawRow {
	var row RawRow
	for i, value := range record {
		if i < len(b.setters) && b.setters[i] != nil {
			b.setters[i](&row, value)
		}
	}
	return row
}

// Normalize converts a raw row into a Record and applies the name and
// holiday overrides.
func Normalize(raw RawRow, src Source, names WeekdayNames) Record {
	rec := Record{
		Date:        ParseDate(raw.Date, src.DateShape, src.NullValues),
		Name:        raw.Name,
		IsHoliday:   ParseFlag(raw.IsHoliday, src.NullValues),
		Category:    raw.Category,
		Description: raw.Description,
	}

	if rec.Name == "" {
		rec.Name = rec.Category
	}

	if rec.Name == WeekendToken {
		rec.Name = names.Of(rec.Date)
	}

	// Armed Forces Day is a day off for the military only
	if rec.Name == ArmedForcesDayToken {
		rec.IsHoliday = false
	}

	return rec
}
