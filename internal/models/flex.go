package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// The BaseLinker API is loose about scalar encodings: ids, quantities,
// prices and timestamps arrive as strings in some responses and as numbers
// in others. The helpers below accept every encoding seen in the wild and
// fall back to a caller-supplied default instead of failing the record.

var jsonNull = []byte("null")

func isEmpty(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, jsonNull)
}

// flexString decodes a JSON string or number into a string.
func flexString(raw json.RawMessage) string {
	if isEmpty(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// flexInt decodes a JSON number or numeric string into an int.
func flexInt(raw json.RawMessage, def int) int {
	if isEmpty(raw) {
		return def
	}
	var i int
	if err := json.Unmarshal(raw, &i); err == nil {
		return i
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return def
}

// flexDecimal decodes a JSON number or numeric string into a decimal,
// returning zero when the value is absent or malformed.
func flexDecimal(raw json.RawMessage) decimal.Decimal {
	if isEmpty(raw) {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err == nil {
		return d
	}
	return decimal.Zero
}

// flexUnix decodes a unix timestamp encoded as a number or string.
func flexUnix(raw json.RawMessage, def time.Time) time.Time {
	if isEmpty(raw) {
		return def
	}
	var i int64
	if err := json.Unmarshal(raw, &i); err == nil && i > 0 {
		return time.Unix(i, 0)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil && f > 0 {
		return time.Unix(int64(f), 0)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			return time.Unix(int64(v), 0)
		}
	}
	return def
}
