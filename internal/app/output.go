package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/klabast/wb-services/holiday-lookup/internal/holiday"
)

// LookupResult is a resolved record together with how it was obtained
type LookupResult struct {
	Source string         `json:"source"`
	Found  bool           `json:"found"`
	Record holiday.Record `json:"record"`
}

// Printer writes lookup results for humans
type Printer struct {
	Out   io.Writer
	Color bool
}

// NewPrinter writes to stdout and colors only when stdout is a terminal
func NewPrinter(noColor bool) *Printer {
	return &Printer{
		Out:   os.Stdout,
		Color: !noColor && term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (p *Printer) paint(attr color.Attribute, s string) string {
	if !p.Color {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}

// Timing writes the fetch diagnostic line
func (p *Printer) Timing(ds *Dataset) {
	fmt.Fprintf(p.Out, "Fetched %s (%s, %d records) in %dms\n",
		ds.Source.Title, ds.Source.Name, len(ds.Records), ds.Elapsed.Milliseconds())
}

// NotFound writes the notice for a date without an explicit entry
func (p *Printer) NotFound(date time.Time) {
	fmt.Fprintln(p.Out, p.paint(color.FgYellow,
		fmt.Sprintf("No entry for %s, defaulting to not a holiday", holiday.FormatDate(date))))
}

// Dump writes every field of rec, one per line
func (p *Printer) Dump(rec holiday.Record) {
	isHoliday := p.paint(color.FgRed, "false")
	if rec.IsHoliday {
		isHoliday = p.paint(color.FgGreen, "true")
	}

	fmt.Fprintf(p.Out, "%-12s %s\n", "Date", holiday.FormatDate(rec.Date))
	fmt.Fprintf(p.Out, "%-12s %s\n", "Name", p.paint(color.Bold, rec.Name))
	fmt.Fprintf(p.Out, "%-12s %s\n", "IsHoliday", isHoliday)
	fmt.Fprintf(p.Out, "%-12s %s\n", "Category", rec.Category)
	fmt.Fprintf(p.Out, "%-12s %s\n", "Description", rec.Description)
}

// JSON writes res as a single indented JSON document
func (p *Printer) JSON(res LookupResult) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}
