package service

import (
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders report values for a locale.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

func NewFormatter(tag language.Tag, currencySymbol string) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag), symbol: currencySymbol}
}

// Percent renders 75.5 as "75.5%" with one decimal place.
func (f *Formatter) Percent(d decimal.Decimal) string {
	return f.printer.Sprintf("%v%%", number.Decimal(d.InexactFloat64(), number.Scale(1)))
}

// Currency renders an amount with the currency symbol, grouping and two decimals.
func (f *Formatter) Currency(d decimal.Decimal) string {
	return f.printer.Sprintf("%s %v", f.symbol, number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

func (f *Formatter) Count(n int) string {
	return strconv.Itoa(n)
}
