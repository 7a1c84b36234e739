package operation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Currency is a lower-case currency code.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
	CurrencyBTC Currency = "btc"
	CurrencyUAH Currency = "uah"
)

// LocalCurrency is what the "грн" shorthand resolves to.
const LocalCurrency = CurrencyUAH

var knownCurrencies = map[Currency]struct{}{
	CurrencyUSD: {},
	CurrencyEUR: {},
	CurrencyBTC: {},
	CurrencyUAH: {},
}

// Code returns the upper-case code for display.
func (c Currency) Code() string {
	return strings.ToUpper(string(c))
}

// ParseCurrency normalizes a 3-letter token and resolves it against the known set.
func ParseCurrency(token string) (Currency, error) {
	normalized := normalizeCurrencyToken(token)
	if normalized == "грн" {
		return LocalCurrency, nil
	}
	c := Currency(normalized)
	if _, ok := knownCurrencies[c]; !ok {
		return "", ErrUnknownCurrency
	}
	return c, nil
}

func normalizeCurrencyToken(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	token = strings.ReplaceAll(token, ".", "")
	// Strip combining marks: "Éur" -> "eur".
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, token)
	if err != nil {
		return token
	}
	return out
}
