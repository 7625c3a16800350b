// Package money models catalog prices. A part either has a price or is sold
// "a consultar" (on request); the zero value of Price is OnRequest.
package money

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is either Priced(amount) with amount > 0, or OnRequest.
type Price struct {
	amount decimal.Decimal
	priced bool
}

// OnRequest is the price of a part whose price must be asked for.
var OnRequest = Price{}

// Priced returns a priced value. Non-positive amounts collapse to OnRequest.
func Priced(amount decimal.Decimal) Price {
	if !amount.IsPositive() {
		return OnRequest
	}
	return Price{amount: amount, priced: true}
}

// FromInt is shorthand for Priced(decimal.NewFromInt(v)).
func FromInt(v int64) Price {
	return Priced(decimal.NewFromInt(v))
}

// Parse reads a textual amount. Blank, zero ("0", "0.00") and unparsable
// input all yield OnRequest.
func Parse(raw string) Price {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return OnRequest
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return OnRequest
	}
	return Priced(d)
}

// FromValue converts the loosely typed inputs that show up at API edges.
func FromValue(v any) Price {
	switch t := v.(type) {
	case nil:
		return OnRequest
	case Price:
		return t
	case *Price:
		if t == nil {
			return OnRequest
		}
		return *t
	case decimal.Decimal:
		return Priced(t)
	case *decimal.Decimal:
		if t == nil {
			return OnRequest
		}
		return Priced(*t)
	case decimal.NullDecimal:
		if !t.Valid {
			return OnRequest
		}
		return Priced(t.Decimal)
	case int:
		return FromInt(int64(t))
	case int32:
		return FromInt(int64(t))
	case int64:
		return FromInt(t)
	case float32:
		return Priced(decimal.NewFromFloat32(t))
	case float64:
		return Priced(decimal.NewFromFloat(t))
	case json.Number:
		return Parse(t.String())
	case string:
		return Parse(t)
	case *string:
		if t == nil {
			return OnRequest
		}
		return Parse(*t)
	default:
		return Parse(fmt.Sprint(t))
	}
}

// IsOnRequest reports whether no price is set.
func (p Price) IsOnRequest() bool {
	return !p.priced
}

// Amount returns the amount and true for priced values.
func (p Price) Amount() (decimal.Decimal, bool) {
	return p.amount, p.priced
}

// Decimal returns the amount, or zero when on request.
func (p Price) Decimal() decimal.Decimal {
	if !p.priced {
		return decimal.Zero
	}
	return p.amount
}

// Equal compares two prices by kind and amount.
func (p Price) Equal(other Price) bool {
	if p.priced != other.priced {
		return false
	}
	return !p.priced || p.amount.Equal(other.amount)
}

func (p Price) String() string {
	if !p.priced {
		return "on_request"
	}
	return p.amount.String()
}

// MarshalJSON writes a bare number, or null when on request.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.priced {
		return []byte("null"), nil
	}
	return []byte(p.amount.String()), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = OnRequest
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		*p = Parse(s)
		return nil
	}
	*p = Parse(string(data))
	return nil
}

// HasValidPrice reports whether v represents a positive price.
func HasValidPrice(v any) bool {
	return !FromValue(v).IsOnRequest()
}

// ClampQuantity floors q at zero.
func ClampQuantity(q int) int {
	if q < 0 {
		return 0
	}
	return q
}

// LineTotal returns price times quantity. On-request lines contribute zero.
func LineTotal(p Price, quantity int) decimal.Decimal {
	return p.Decimal().Mul(decimal.NewFromInt(int64(ClampQuantity(quantity))))
}
