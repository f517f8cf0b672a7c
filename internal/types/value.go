package types

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a typed wire or leaf value. The set of implementations is closed.
type Value interface {
	fmt.Stringer
	isValue()
}

type (
	StringValue  string
	IntValue     int64
	UintValue    uint64
	BoolValue    bool
	FloatValue   float64
	JSONValue    []byte
	DecimalValue struct {
		Digits    int64
		Precision uint32
	}
)

func (StringValue) isValue()  {}
func (IntValue) isValue()     {}
func (UintValue) isValue()    {}
func (BoolValue) isValue()    {}
func (FloatValue) isValue()   {}
func (JSONValue) isValue()    {}
func (DecimalValue) isValue() {}

func (v StringValue) String() string { return string(v) }
func (v IntValue) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v UintValue) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (v BoolValue) String() string   { return strconv.FormatBool(bool(v)) }
func (v FloatValue) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v JSONValue) String() string   { return string(v) }

func (v DecimalValue) String() string {
	if v.Precision == 0 {
		return strconv.FormatInt(v.Digits, 10)
	}
	negative := v.Digits < 0
	digits := strconv.FormatUint(absInt64(v.Digits), 10)
	precision := int(v.Precision)
	if len(digits) <= precision {
		digits = strings.Repeat("0", precision-len(digits)+1) + digits
	}
	cut := len(digits) - precision
	out := digits[:cut] + "." + digits[cut:]
	if negative {
		return "-" + out
	}
	return out
}

func absInt64(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

// ParseDecimal parses a decimal literal. When fractionDigits is positive the
// result is scaled to exactly that precision.
func ParseDecimal(raw string, fractionDigits int) (DecimalValue, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return DecimalValue{}, fmt.Errorf("empty decimal value")
	}
	sign := ""
	switch text[0] {
	case '-':
		sign = "-"
		text = text[1:]
	case '+':
		text = text[1:]
	}
	whole, frac, _ := strings.Cut(text, ".")
	if (whole == "" && frac == "") || !isDigits(whole) || !isDigits(frac) {
		return DecimalValue{}, fmt.Errorf("invalid decimal value %q", raw)
	}
	precision := len(frac)
	if fractionDigits > 0 {
		if precision > fractionDigits {
			return DecimalValue{}, fmt.Errorf("decimal value %q exceeds %d fraction digits", raw, fractionDigits)
		}
		frac += strings.Repeat("0", fractionDigits-precision)
		precision = fractionDigits
	}
	if whole == "" {
		whole = "0"
	}
	digits, err := strconv.ParseInt(sign+whole+frac, 10, 64)
	if err != nil {
		return DecimalValue{}, fmt.Errorf("invalid decimal value %q: %w", raw, err)
	}
	return DecimalValue{Digits: digits, Precision: uint32(precision)}, nil
}

func isDigits(text string) bool {
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Float returns the decimal as a float64.
func (v DecimalValue) Float() float64 {
	return float64(v.Digits) / math.Pow10(int(v.Precision))
}

// ValuesEqual compares two values by kind and content.
func ValuesEqual(a Value, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case JSONValue:
		bv, ok := b.(JSONValue)
		return ok && bytes.Equal(av, bv)
	default:
		return a == b
	}
}
