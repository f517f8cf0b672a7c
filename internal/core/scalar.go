package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gnmi-yang-bridge/internal/types"
)

// parseScalar converts the textual form of a value (a path predicate or a
// JSON string) to the leaf's declared type.
func parseScalar(scalar types.ScalarType, raw string) (types.Value, error) {
	switch scalar.Kind {
	case types.ScalarInt:
		parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, bitSize(scalar))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", raw, err)
		}
		return types.IntValue(parsed), nil
	case types.ScalarUint:
		parsed, err := strconv.ParseUint(strings.TrimSpace(raw), 10, bitSize(scalar))
		if err != nil {
			return nil, fmt.Errorf("invalid unsigned integer %q: %w", raw, err)
		}
		return types.UintValue(parsed), nil
	case types.ScalarBool:
		parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil || (raw != "true" && raw != "false") {
			return nil, fmt.Errorf("invalid boolean %q", raw)
		}
		return types.BoolValue(parsed), nil
	case types.ScalarDecimal:
		return types.ParseDecimal(raw, scalar.FractionDigits)
	case types.ScalarEmpty:
		if raw != "" && raw != "true" {
			return nil, fmt.Errorf("invalid empty value %q", raw)
		}
		return types.BoolValue(true), nil
	case types.ScalarEnum:
		if len(scalar.Enum) > 0 && !containsString(scalar.Enum, raw) {
			return nil, fmt.Errorf("invalid enumeration value %q", raw)
		}
		return types.StringValue(raw), nil
	case types.ScalarUnion:
		for _, member := range scalar.Members {
			if value, err := parseScalar(member, raw); err == nil {
				return value, nil
			}
		}
		return nil, fmt.Errorf("value %q matches no union member", raw)
	default:
		return types.StringValue(raw), nil
	}
}

// coerceScalar adapts a wire value to the leaf's declared type. Numeric
// kinds convert between each other when the value fits.
func coerceScalar(scalar types.ScalarType, value types.Value) (types.Value, error) {
	switch v := value.(type) {
	case types.StringValue:
		return parseScalar(scalar, string(v))
	case types.IntValue:
		switch scalar.Kind {
		case types.ScalarInt:
			return parseScalar(scalar, v.String())
		case types.ScalarUint:
			if v < 0 {
				return nil, fmt.Errorf("negative value %d for unsigned leaf", int64(v))
			}
			return parseScalar(scalar, v.String())
		case types.ScalarDecimal:
			return types.ParseDecimal(v.String(), scalar.FractionDigits)
		}
	case types.UintValue:
		switch scalar.Kind {
		case types.ScalarInt, types.ScalarUint:
			return parseScalar(scalar, v.String())
		case types.ScalarDecimal:
			return types.ParseDecimal(v.String(), scalar.FractionDigits)
		}
	case types.BoolValue:
		if scalar.Kind == types.ScalarBool || (scalar.Kind == types.ScalarEmpty && bool(v)) {
			return v, nil
		}
	case types.FloatValue:
		if scalar.Kind == types.ScalarDecimal {
			return types.ParseDecimal(strconv.FormatFloat(float64(v), 'f', -1, 64), scalar.FractionDigits)
		}
		if (scalar.Kind == types.ScalarInt || scalar.Kind == types.ScalarUint) && float64(v) == math.Trunc(float64(v)) {
			return parseScalar(scalar, strconv.FormatFloat(float64(v), 'f', 0, 64))
		}
	case types.DecimalValue:
		if scalar.Kind == types.ScalarDecimal {
			return types.ParseDecimal(v.String(), scalar.FractionDigits)
		}
	case types.JSONValue:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("json value where a scalar is required")
	default:
		return nil, unsupportedValueKind(value)
	}
	if scalar.Kind == types.ScalarUnion {
		for _, member := range scalar.Members {
			if out, err := coerceScalar(member, value); err == nil {
				return out, nil
			}
		}
	}
	if scalar.Kind == types.ScalarString || scalar.Kind == types.ScalarEnum || scalar.Kind == types.ScalarIdentityRef {
		return parseScalar(scalar, value.String())
	}
	return nil, fmt.Errorf("value %s does not fit the leaf type", value)
}

func unsupportedValueKind(value types.Value) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unsupported value kind %T", value))
}

func bitSize(scalar types.ScalarType) int {
	if scalar.Bits <= 0 {
		return 64
	}
	return scalar.Bits
}

func containsString(values []string, value string) bool {
	for _, existing := range values {
		if existing == value {
			return true
		}
	}
	return false
}
