package holiday

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// DateShape selects how a source writes its dates
type DateShape string

const (
	DateISO     DateShape = "iso"
	DateCompact DateShape = "compact"
)

// Field is a logical dataset column
type Field string

const (
	FieldDate        Field = "date"
	FieldName        Field = "name"
	FieldIsHoliday   Field = "isholiday"
	FieldCategory    Field = "category"
	FieldDescription Field = "description"
)

// LegacyURL is the Taipei City Government office calendar export
const LegacyURL = "https://data.taipei/api/frontstage/tpeod/dataset/resource.download?rid=29d9771d-c0ee-40d4-8dfb-3866b0b7adaa"

// DefaultNullValues are the raw strings treated as missing values
var DefaultNullValues = []string{"NULL"}

var (
	ErrUnknownEncoding = errors.New("unknown character encoding")
	ErrInvalidSource   = errors.New("invalid source")
)

// Source describes one dataset variant: where it lives, how it is encoded,
// how dates are written and which header names map to which field.
type Source struct {
	Name       string             `yaml:"name" json:"name"`
	Title      string             `yaml:"title" json:"title"`
	URL        string             `yaml:"url" json:"url,omitempty"`
	Encoding   string             `yaml:"encoding" json:"encoding"`
	DateShape  DateShape          `yaml:"date_shape" json:"date_shape"`
	NullValues []string           `yaml:"null_values" json:"-"`
	Headers    map[Field][]string `yaml:"headers" json:"-"`
}

// Legacy returns the BIG5 export with ISO dates and English headers
func Legacy() Source {
	return Source{
		Name:       "legacy",
		Title:      "臺北市政府行政機關辦公日曆表",
		URL:        LegacyURL,
		Encoding:   "big5",
		DateShape:  DateISO,
		NullValues: DefaultNullValues,
		Headers: map[Field][]string{
			FieldDate:        {"date"},
			FieldName:        {"name"},
			FieldIsHoliday:   {"isholiday"},
			FieldCategory:    {"holidaycategory"},
			FieldDescription: {"description"},
		},
	}
}

// Open returns the UTF-8 export with compact dates and Chinese headers.
// It has no built-in URL; one must be configured.
func Open() Source {
	return Source{
		Name:       "open",
		Title:      "政府行政機關辦公日曆表",
		Encoding:   "utf-8",
		DateShape:  DateCompact,
		NullValues: DefaultNullValues,
		Headers: map[Field][]string{
			FieldDate:        {"西元日期", "日期", "date"},
			FieldName:        {"假日名稱", "name"},
			FieldIsHoliday:   {"是否放假", "是否為假日", "isholiday"},
			FieldCategory:    {"假日種類", "holidaycategory"},
			FieldDescription: {"備註", "description"},
		},
	}
}

// BuiltinSources returns fresh copies of the built-in sources
func BuiltinSources() []Source {
	return []Source{Legacy(), Open()}
}

// Validate checks that the source can be used to decode a dataset
func (s Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidSource)
	}
	switch s.DateShape {
	case DateISO, DateCompact:
	default:
		return fmt.Errorf("%w: %s: unknown date shape %q", ErrInvalidSource, s.Name, s.DateShape)
	}
	if _, err := htmlindex.Get(s.Encoding); err != nil {
		return fmt.Errorf("%w: %s: %w %q", ErrInvalidSource, s.Name, ErrUnknownEncoding, s.Encoding)
	}
	if len(s.Headers[FieldDate]) == 0 {
		return fmt.Errorf("%w: %s: no header names for %s", ErrInvalidSource, s.Name, FieldDate)
	}
	return nil
}
