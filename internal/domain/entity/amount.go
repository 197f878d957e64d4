package entity

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// NanoDecimals is the number of fractional digits of one MAS.
const NanoDecimals = 9

// AmountForm tells how a balance string was encoded by the node.
type AmountForm int

const (
	// IntegerForm is a count of nano-units, e.g. "1500000000".
	IntegerForm AmountForm = iota + 1
	// DecimalForm is a whole-unit decimal, e.g. "2.75".
	DecimalForm
)

func (f AmountForm) String() string {
	switch f {
	case IntegerForm:
		return "integer"
	case DecimalForm:
		return "decimal"
	}
	return fmt.Sprintf("AmountForm(%d)", int(f))
}

var (
	integerAmount = regexp.MustCompile(`^[0-9]+$`)
	decimalAmount = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)
)

// BalanceAmount is a balance string tagged with the form it was sent in.
type BalanceAmount struct {
	Form AmountForm
	Text string
}

// ParseBalanceAmount classifies s. Signs, exponents and anything else that
// is not a plain integer or decimal are rejected.
func ParseBalanceAmount(s string) (BalanceAmount, error) {
	text := strings.TrimSpace(s)
	switch {
	case integerAmount.MatchString(text):
		return BalanceAmount{Form: IntegerForm, Text: text}, nil
	case decimalAmount.MatchString(text):
		return BalanceAmount{Form: DecimalForm, Text: text}, nil
	}
	return BalanceAmount{}, fmt.Errorf("unrecognised balance encoding %q", s)
}

// Nano converts the amount to nano-units without any floating point step.
func (a BalanceAmount) Nano() (*big.Int, error) {
	switch a.Form {
	case IntegerForm:
		n, ok := new(big.Int).SetString(a.Text, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer balance %q", a.Text)
		}
		return n, nil
	case DecimalForm:
		d, err := decimal.NewFromString(a.Text)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal balance %q: %w", a.Text, err)
		}
		shifted := d.Shift(NanoDecimals)
		if !shifted.IsInteger() {
			return nil, fmt.Errorf("balance %q has more than %d fractional digits", a.Text, NanoDecimals)
		}
		return shifted.BigInt(), nil
	}
	return nil, fmt.Errorf("unknown balance form %v", a.Form)
}
