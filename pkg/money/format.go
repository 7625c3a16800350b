package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var displayLocale = language.MustParse("es-AR")

const currencyPrefix = "$ "

// Format renders a priced value in Argentine pesos, e.g. "$ 15.000". It
// returns false for OnRequest so callers can show "Consultar" instead.
func Format(p Price) (string, bool) {
	amount, ok := p.Amount()
	if !ok {
		return "", false
	}
	printer := message.NewPrinter(displayLocale)
	f := amount.Round(2).InexactFloat64()
	return currencyPrefix + printer.Sprint(number.Decimal(f, number.MinFractionDigits(0), number.MaxFractionDigits(2))), true
}

// FormatValue is Format over the loose inputs accepted by FromValue.
func FormatValue(v any) (string, bool) {
	return Format(FromValue(v))
}

// FormatOr renders p or returns fallback when on request.
func FormatOr(p Price, fallback string) string {
	if s, ok := Format(p); ok {
		return s
	}
	return fallback
}
