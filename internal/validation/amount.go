package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// amountMissing mirrors the falsy check clients rely on: absent, null,
// empty string, false and numeric zero all count as missing.
func amountMissing(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	default:
		return false
	}
}

// ParseAmount converts a decoded JSON amount (number or numeric string) to
// float64. Non-numeric and non-finite values fail.
func ParseAmount(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
