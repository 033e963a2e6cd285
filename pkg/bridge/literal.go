package bridge

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// QuoteString renders s as a single-quoted literal with embedded quotes doubled.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteNString renders s as a national (N-prefixed) string literal.
func QuoteNString(s string) string {
	return "N" + QuoteString(s)
}

// BooleanMapping maps System.Boolean onto domain with the given literal texts.
func BooleanMapping(domain, trueText, falseText string) Mapping {
	return Mapping{
		Type:   core.TypeBoolean,
		Domain: func(core.MetaData) string { return domain },
		Literal: func(value any, _ core.MetaData) (string, error) {
			b, ok := value.(bool)
			if !ok {
				return "", fmt.Errorf("cannot render %T as %s", value, core.TypeBoolean)
			}
			if b {
				return trueText, nil
			}
			return falseText, nil
		},
		ToScalar: func(native any) (any, error) {
			if b, ok := native.(bool); ok {
				return b, nil
			}
			n, err := checked(core.TypeBoolean, native, 0, 1)
			if err != nil {
				return nil, err
			}
			return n == 1, nil
		},
		FromScalar: func(value any) (any, error) {
			b, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("cannot convert %T to %s", value, core.TypeBoolean)
			}
			return b, nil
		},
		Class: func(core.MetaData) SQLType { return SQLType{Class: ClassBoolean} },
	}
}

// StringMapping maps System.String onto a length-parameterized character
// domain such as "nvarchar(%d)". The length comes from Storage.Length.
func StringMapping(domainFormat string, defaultLength int, quote func(string) string) Mapping {
	return Mapping{
		Type: core.TypeString,
		Domain: func(md core.MetaData) string {
			return fmt.Sprintf(domainFormat, md.Int(core.TagStorageLength, defaultLength))
		},
		Literal: func(value any, _ core.MetaData) (string, error) {
			s, err := asString(value)
			if err != nil {
				return "", err
			}
			return quote(s), nil
		},
		ToScalar: func(native any) (any, error) {
			return asString(native)
		},
		FromScalar: func(value any) (any, error) {
			return asString(value)
		},
		Class: func(md core.MetaData) SQLType {
			return SQLType{Class: ClassString, Length: md.Int(core.TagStorageLength, defaultLength)}
		},
	}
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("cannot convert %T to %s", v, core.TypeString)
	}
}

// DecimalMapping maps System.Decimal onto a precision/scale domain such as
// "decimal(%d,%d)". Values that do not fit the declared precision and scale
// are out of range.
func DecimalMapping(domainFormat string, defaultPrecision, defaultScale int) Mapping {
	dims := func(md core.MetaData) (int, int) {
		return md.Int(core.TagStoragePrecision, defaultPrecision), md.Int(core.TagStorageScale, defaultScale)
	}
	write := func(value any, md core.MetaData) (*apd.Decimal, error) {
		d, err := AsDecimal(core.TypeDecimal, value)
		if err != nil {
			return nil, err
		}
		p, s := dims(md)
		return d, checkDigits(core.TypeDecimal, d, p, s)
	}
	return Mapping{
		Type: core.TypeDecimal,
		Domain: func(md core.MetaData) string {
			p, s := dims(md)
			return fmt.Sprintf(domainFormat, p, s)
		},
		Literal: func(value any, md core.MetaData) (string, error) {
			d, err := write(value, md)
			if err != nil {
				return "", err
			}
			return d.Text('f'), nil
		},
		ToScalar: func(native any) (any, error) {
			return AsDecimal(core.TypeDecimal, native)
		},
		FromScalar: func(value any) (any, error) {
			d, err := AsDecimal(core.TypeDecimal, value)
			if err != nil {
				return nil, err
			}
			return d.Text('f'), nil
		},
		Class: func(md core.MetaData) SQLType {
			p, s := dims(md)
			return SQLType{Class: ClassDecimal, Precision: p, Scale: s}
		},
	}
}

var (
	moneyMin = apd.New(-9223372036854775808, -4)
	moneyMax = apd.New(9223372036854775807, -4)
)

// MoneyMapping maps System.Money onto a four-decimal money domain. Values
// with more than four decimals or outside the 64-bit money range are out of
// range rather than rounded.
func MoneyMapping(domain string) Mapping {
	write := func(value any) (*apd.Decimal, error) {
		d, err := AsDecimal(core.TypeMoney, value)
		if err != nil {
			return nil, err
		}
		if d.Cmp(moneyMin) < 0 || d.Cmp(moneyMax) > 0 {
			return nil, &core.ValueOutOfRangeError{Type: core.TypeMoney, Value: d.String(), Limit: moneyMin.String() + ".." + moneyMax.String()}
		}
		var reduced apd.Decimal
		reduced.Reduce(d)
		if reduced.Exponent < -4 {
			return nil, &core.ValueOutOfRangeError{Type: core.TypeMoney, Value: d.String(), Limit: "scale 4"}
		}
		return d, nil
	}
	return Mapping{
		Type:   core.TypeMoney,
		Domain: func(core.MetaData) string { return domain },
		Literal: func(value any, _ core.MetaData) (string, error) {
			d, err := write(value)
			if err != nil {
				return "", err
			}
			return d.Text('f'), nil
		},
		ToScalar: func(native any) (any, error) {
			return AsDecimal(core.TypeMoney, native)
		},
		FromScalar: func(value any) (any, error) {
			d, err := write(value)
			if err != nil {
				return nil, err
			}
			return d.Text('f'), nil
		},
		Class: func(core.MetaData) SQLType { return SQLType{Class: ClassMoney, Precision: 19, Scale: 4} },
	}
}

// AsDecimal reads the exact numeric shapes drivers and the engine use.
// Money columns may carry a currency symbol and group separators.
func AsDecimal(t core.ScalarType, v any) (*apd.Decimal, error) {
	switch d := v.(type) {
	case *apd.Decimal:
		return d, nil
	case apd.Decimal:
		return &d, nil
	case int64:
		return apd.New(d, 0), nil
	case float64:
		out, err := new(apd.Decimal).SetFloat64(d)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %v to %s: %w", d, t, err)
		}
		return out, nil
	case []byte:
		return parseDecimal(t, string(d))
	case string:
		return parseDecimal(t, d)
	default:
		return nil, fmt.Errorf("cannot convert %T to %s", v, t)
	}
}

func parseDecimal(t core.ScalarType, s string) (*apd.Decimal, error) {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %q as %s: %w", s, t, err)
	}
	return d, nil
}

// checkDigits fails when d needs more than scale fractional digits or more
// than precision-scale integral digits.
func checkDigits(t core.ScalarType, d *apd.Decimal, precision, scale int) error {
	var reduced apd.Decimal
	reduced.Reduce(d)
	fraction := 0
	if reduced.Exponent < 0 {
		fraction = int(-reduced.Exponent)
	}
	integral := int(reduced.NumDigits()) + int(reduced.Exponent)
	if reduced.IsZero() || integral < 0 {
		integral = 0
	}
	if fraction > scale || integral > precision-scale {
		return &core.ValueOutOfRangeError{
			Type:  t,
			Value: d.String(),
			Limit: "decimal(" + strconv.Itoa(precision) + "," + strconv.Itoa(scale) + ")",
		}
	}
	return nil
}

// guidSwap is the byte order of a SQL Server uniqueidentifier on the wire:
// the first three groups are little-endian.
var guidSwap = [16]int{3, 2, 1, 0, 5, 4, 7, 6, 8, 9, 10, 11, 12, 13, 14, 15}

// SwapGuidBytes converts between RFC 4122 and mixed-endian byte order.
// The permutation is its own inverse.
func SwapGuidBytes(b [16]byte) [16]byte {
	var out [16]byte
	for i, j := range guidSwap {
		out[i] = b[j]
	}
	return out
}

// GuidMapping maps System.Guid. When mixedEndian is set, 16-byte native
// values are in SQL Server wire order.
func GuidMapping(domain string, mixedEndian bool, quote func(string) string) Mapping {
	return Mapping{
		Type:   core.TypeGuid,
		Domain: func(core.MetaData) string { return domain },
		Literal: func(value any, _ core.MetaData) (string, error) {
			g, err := asGuid(value, false)
			if err != nil {
				return "", err
			}
			return quote(g.String()), nil
		},
		ToScalar: func(native any) (any, error) {
			return asGuid(native, mixedEndian)
		},
		FromScalar: func(value any) (any, error) {
			g, err := asGuid(value, false)
			if err != nil {
				return nil, err
			}
			return g.String(), nil
		},
		Class: func(core.MetaData) SQLType { return SQLType{Class: ClassGuid} },
	}
}

func asGuid(v any, mixedEndian bool) (uuid.UUID, error) {
	switch g := v.(type) {
	case uuid.UUID:
		return g, nil
	case [16]byte:
		if mixedEndian {
			return uuid.UUID(SwapGuidBytes(g)), nil
		}
		return uuid.UUID(g), nil
	case []byte:
		if len(g) == 16 {
			return asGuid([16]byte(g), mixedEndian)
		}
		return uuid.ParseBytes(g)
	case string:
		return uuid.Parse(g)
	default:
		return uuid.Nil, fmt.Errorf("cannot convert %T to %s", v, core.TypeGuid)
	}
}

// BinaryMapping maps System.Binary onto a streamed native domain. format
// renders the raw bytes as a dialect literal.
func BinaryMapping(domain string, format func([]byte) string) Mapping {
	return Mapping{
		Type:   core.TypeBinary,
		Domain: func(core.MetaData) string { return domain },
		Literal: func(value any, _ core.MetaData) (string, error) {
			b, ok := value.([]byte)
			if !ok {
				return "", fmt.Errorf("cannot render %T as %s", value, core.TypeBinary)
			}
			return format(b), nil
		},
		ToScalar: func(native any) (any, error) {
			b, ok := native.([]byte)
			if !ok {
				return nil, fmt.Errorf("cannot convert %T to %s", native, core.TypeBinary)
			}
			return append([]byte(nil), b...), nil
		},
		FromScalar: func(value any) (any, error) {
			b, ok := value.([]byte)
			if !ok {
				return nil, fmt.Errorf("cannot convert %T to %s", value, core.TypeBinary)
			}
			return b, nil
		},
		Class: func(core.MetaData) SQLType { return SQLType{Class: ClassBinary, Deferred: true} },
	}
}

// HexLiteral renders bytes as a 0x-prefixed hex literal.
func HexLiteral(b []byte) string {
	if len(b) == 0 {
		return "0x"
	}
	return "0x" + strings.ToUpper(hex.EncodeToString(b))
}

// ByteaLiteral renders bytes as a Postgres bytea hex-format literal.
func ByteaLiteral(b []byte) string {
	return `'\x` + hex.EncodeToString(b) + `'::bytea`
}
