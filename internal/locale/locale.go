// Package locale formats numbers for display using CLDR grouping rules.
package locale

import (
	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Default is the locale used when none is configured.
const Default = "pt-BR"

// Formatter renders numbers for one locale. It is safe for concurrent use.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Formatter for a BCP 47 tag such as "pt-BR" or "en-US".
func New(tag string) (*Formatter, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return nil, eris.Wrapf(err, "locale: parse tag %q", tag)
	}
	return &Formatter{tag: t, printer: message.NewPrinter(t)}, nil
}

// MustNew is New for compile-time constant tags.
func MustNew(tag string) *Formatter {
	f, err := New(tag)
	if err != nil {
		panic(err)
	}
	return f
}

// Tag returns the formatter's language tag.
func (f *Formatter) Tag() string {
	return f.tag.String()
}

// Int formats n with thousands grouping (12345 -> "12.345" in pt-BR).
func (f *Formatter) Int(n int) string {
	return f.printer.Sprint(number.Decimal(n))
}

// Amount formats v with at least two and at most three fraction digits.
func (f *Formatter) Amount(v float64) string {
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(3),
	))
}

// Currency formats v as a Brazilian real amount ("R$ 1.234,50").
func (f *Formatter) Currency(v float64) string {
	return "R$ " + f.Amount(v)
}
