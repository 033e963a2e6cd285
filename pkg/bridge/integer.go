package bridge

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// Host-side integer conversions. Each one range-checks the native value
// against the internal width and fails with ValueOutOfRangeError; nothing is
// masked on the host.

// ToByte converts a native integer to System.Byte.
func ToByte(native any) (uint8, error) {
	n, err := checked(core.TypeByte, native, 0, math.MaxUint8)
	return uint8(n), err
}

// ToSByte converts a native integer to System.SByte.
func ToSByte(native any) (int8, error) {
	n, err := checked(core.TypeSByte, native, math.MinInt8, math.MaxInt8)
	return int8(n), err
}

// ToShort converts a native integer to System.Short.
func ToShort(native any) (int16, error) {
	n, err := checked(core.TypeShort, native, math.MinInt16, math.MaxInt16)
	return int16(n), err
}

// ToUShort converts a native integer to System.UShort.
func ToUShort(native any) (uint16, error) {
	n, err := checked(core.TypeUShort, native, 0, math.MaxUint16)
	return uint16(n), err
}

// ToInteger converts a native integer to System.Integer.
func ToInteger(native any) (int32, error) {
	n, err := checked(core.TypeInteger, native, math.MinInt32, math.MaxInt32)
	return int32(n), err
}

// ToUInteger converts a native integer to System.UInteger.
func ToUInteger(native any) (uint32, error) {
	n, err := checked(core.TypeUInteger, native, 0, math.MaxUint32)
	return uint32(n), err
}

// ToLong converts a native integer to System.Long.
func ToLong(native any) (int64, error) {
	return checked(core.TypeLong, native, math.MinInt64, math.MaxInt64)
}

// ToULong converts a native integer or exact numeric to System.ULong.
// Unsigned 64-bit values arrive as decimal text since no dialect has a
// native unsigned 64-bit type.
func ToULong(native any) (uint64, error) {
	n, err := asBigInt(core.TypeULong, native)
	if err != nil {
		return 0, err
	}
	if n.Sign() < 0 || !n.IsUint64() {
		return 0, &core.ValueOutOfRangeError{Type: core.TypeULong, Value: native, Limit: "0..18446744073709551615"}
	}
	return n.Uint64(), nil
}

// AsInt64 reads any native integer representation as int64.
func AsInt64(native any) (int64, error) {
	return checked(core.TypeLong, native, math.MinInt64, math.MaxInt64)
}

func checked(t core.ScalarType, native any, lo, hi int64) (int64, error) {
	n, err := asBigInt(t, native)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || n.Int64() < lo || n.Int64() > hi {
		return 0, &core.ValueOutOfRangeError{Type: t, Value: native, Limit: fmt.Sprintf("%d..%d", lo, hi)}
	}
	return n.Int64(), nil
}

// asBigInt accepts the integer shapes database drivers return, including
// exact numerics with no fractional part.
func asBigInt(t core.ScalarType, native any) (*big.Int, error) {
	switch v := native.(type) {
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return big.NewInt(int64(v)), nil
	case uint16:
		return big.NewInt(int64(v)), nil
	case uint32:
		return big.NewInt(int64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case bool:
		if v {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case []byte:
		return parseBigInt(t, string(v))
	case string:
		return parseBigInt(t, v)
	case *apd.Decimal:
		return decimalToBigInt(t, v)
	default:
		return nil, fmt.Errorf("cannot convert %T to %s", native, t)
	}
}

func parseBigInt(t core.ScalarType, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if n, ok := new(big.Int).SetString(s, 10); ok {
		return n, nil
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %q as %s: %w", s, t, err)
	}
	return decimalToBigInt(t, d)
}

func decimalToBigInt(t core.ScalarType, d *apd.Decimal) (*big.Int, error) {
	var integ, frac apd.Decimal
	d.Modf(&integ, &frac)
	if !frac.IsZero() {
		return nil, &core.ValueOutOfRangeError{Type: t, Value: d.String(), Limit: "integral"}
	}
	n, ok := new(big.Int).SetString(integ.Text('f'), 10)
	if !ok {
		return nil, fmt.Errorf("cannot convert %s to %s", d, t)
	}
	return n, nil
}

// IntegerLiteral renders any internal integer width in decimal.
func IntegerLiteral(value any, _ core.MetaData) (string, error) {
	switch v := value.(type) {
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", fmt.Errorf("cannot render %T as integer literal", value)
	}
}

// integerWriter returns a FromScalar that widens any integer width to
// int64 after range-checking it against the internal type.
func integerWriter(t core.ScalarType, lo, hi int64) func(any) (any, error) {
	return func(value any) (any, error) {
		return checked(t, value, lo, hi)
	}
}

// IntegerMapping maps an internal integer width of at most 63 bits onto
// a native signed integer domain.
func IntegerMapping(t core.ScalarType, domain string) Mapping {
	var read func(any) (any, error)
	var lo, hi int64
	switch t {
	case core.TypeByte:
		read, lo, hi = adapt(ToByte), 0, math.MaxUint8
	case core.TypeSByte:
		read, lo, hi = adapt(ToSByte), math.MinInt8, math.MaxInt8
	case core.TypeShort:
		read, lo, hi = adapt(ToShort), math.MinInt16, math.MaxInt16
	case core.TypeUShort:
		read, lo, hi = adapt(ToUShort), 0, math.MaxUint16
	case core.TypeInteger:
		read, lo, hi = adapt(ToInteger), math.MinInt32, math.MaxInt32
	case core.TypeUInteger:
		read, lo, hi = adapt(ToUInteger), 0, math.MaxUint32
	default:
		read, lo, hi = adapt(ToLong), math.MinInt64, math.MaxInt64
	}
	return Mapping{
		Type:       t,
		Domain:     func(core.MetaData) string { return domain },
		Literal:    IntegerLiteral,
		ToScalar:   read,
		FromScalar: integerWriter(t, lo, hi),
		Class:      func(core.MetaData) SQLType { return SQLType{Class: ClassInteger} },
	}
}

// ULongMapping maps System.ULong onto an exact numeric domain wide enough to
// hold 2^64-1. Written values are decimal text.
func ULongMapping(domain string) Mapping {
	return Mapping{
		Type:     core.TypeULong,
		Domain:   func(core.MetaData) string { return domain },
		Literal:  IntegerLiteral,
		ToScalar: adapt(ToULong),
		FromScalar: func(value any) (any, error) {
			n, err := ToULong(value)
			if err != nil {
				return nil, err
			}
			return strconv.FormatUint(n, 10), nil
		},
		Class: func(core.MetaData) SQLType { return SQLType{Class: ClassDecimal, Precision: 20} },
	}
}

func adapt[T any](fn func(any) (T, error)) func(any) (any, error) {
	return func(native any) (any, error) {
		v, err := fn(native)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
