package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
)

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func invalidQuery(key, problem string) error {
	return pkgerrors.Validation("invalid query parameter", pkgerrors.FieldErrors{key: problem})
}

// ParseQueryInt returns def when key is absent and rejects values outside
// [min, max].
func ParseQueryInt(r *http.Request, key string, def, min, max int) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidQuery(key, "must be numeric")
	}
	if n < min || n > max {
		return 0, invalidQuery(key, "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
	}
	return n, nil
}

// The Optional* parsers return nil when the parameter is absent so callers
// can tell "not filtered" from a zero value.

func OptionalBool(r *http.Request, key string) (*bool, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalidQuery(key, "must be true or false")
	}
	return &b, nil
}

func OptionalInt64(r *http.Request, key string) (*int64, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, invalidQuery(key, "must be numeric")
	}
	return &n, nil
}

func OptionalAmount(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsNegative() {
		return nil, invalidQuery(key, "must be a non-negative amount")
	}
	return &amount, nil
}
