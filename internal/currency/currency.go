// Package currency содержит конвертацию сумм между поддерживаемыми валютами по фиксированным курсам.
package currency

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Code обозначает код валюты из закрытого набора поддерживаемых валют.
type Code string

const (
	NGN Code = "NGN"
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
)

// Base задаёт базовую валюту, относительно которой заданы все курсы.
const Base = NGN

// ErrUnsupportedCurrency возвращается для кода валюты вне поддерживаемого набора.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

const scale = 2

// rates хранит количество единиц валюты за 1 NGN.
var rates = map[Code]decimal.Decimal{
	NGN: decimal.NewFromInt(1),
	USD: decimal.RequireFromString("0.0007"),
	EUR: decimal.RequireFromString("0.00065"),
	GBP: decimal.RequireFromString("0.00056"),
}

var symbols = map[Code]string{
	NGN: "₦",
	USD: "$",
	EUR: "€",
	GBP: "£",
}

var printer = message.NewPrinter(language.English)

// ParseCode разбирает строковый код валюты без учёта регистра.
func ParseCode(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, s)
	}
	return c, nil
}

// Valid сообщает, входит ли код в поддерживаемый набор.
func (c Code) Valid() bool {
	_, ok := rates[c]
	return ok
}

// Symbol возвращает символ валюты.
func (c Code) Symbol() string {
	return symbols[c]
}

func (c Code) String() string {
	return string(c)
}

func rateOf(c Code) (decimal.Decimal, error) {
	r, ok := rates[c]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, string(c))
	}
	return r, nil
}

// ConvertFromNGN переводит сумму в NGN в целевую валюту с округлением до копеек.
func ConvertFromNGN(amount decimal.Decimal, to Code) (decimal.Decimal, error) {
	rate, err := rateOf(to)
	if err != nil {
		return decimal.Zero, err
	}
	if to == NGN {
		return amount, nil
	}
	return amount.Mul(rate).Round(scale), nil
}

// ConvertToNGN переводит сумму из исходной валюты в NGN с округлением до копеек.
func ConvertToNGN(amount decimal.Decimal, from Code) (decimal.Decimal, error) {
	rate, err := rateOf(from)
	if err != nil {
		return decimal.Zero, err
	}
	if from == NGN {
		return amount, nil
	}
	return amount.Div(rate).Round(scale), nil
}

// Convert переводит сумму между двумя валютами через NGN.
// Округление выполняется на каждом шаге, поэтому результат может отличаться
// от точного пересчёта по кросс-курсу.
func Convert(amount decimal.Decimal, from, to Code) (decimal.Decimal, error) {
	if _, err := rateOf(from); err != nil {
		return decimal.Zero, err
	}
	if _, err := rateOf(to); err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return amount, nil
	}

	inBase, err := ConvertToNGN(amount, from)
	if err != nil {
		return decimal.Zero, err
	}
	return ConvertFromNGN(inBase, to)
}

// Format форматирует сумму с символом валюты, разделителями разрядов и двумя знаками после запятой.
func Format(amount decimal.Decimal, c Code) (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, string(c))
	}

	rounded := amount.Round(scale)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	whole, frac, _ := strings.Cut(rounded.StringFixed(scale), ".")
	return sign + c.Symbol() + groupThousands(whole) + "." + frac, nil
}

// groupThousands расставляет разделители разрядов в записи целого неотрицательного числа.
func groupThousands(whole string) string {
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		return printer.Sprintf("%v", number.Decimal(n))
	}

	// Число не помещается в int64.
	var b strings.Builder
	head := len(whole) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(whole[:head])
	for i := head; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	return b.String()
}

// ExchangeRates возвращает копию таблицы курсов.
func ExchangeRates() map[Code]decimal.Decimal {
	out := make(map[Code]decimal.Decimal, len(rates))
	for c, r := range rates {
		out[c] = r
	}
	return out
}

// Codes возвращает поддерживаемые коды валют в фиксированном порядке.
func Codes() []Code {
	return []Code{NGN, USD, EUR, GBP}
}
