package core

// ScalarType identifies an internal scalar type of the engine.
type ScalarType string

// Internal scalar types known to devices.
//
// Go representations: Boolean bool, Byte uint8, SByte int8, Short int16,
// UShort uint16, Integer int32, UInteger uint32, Long int64, ULong uint64,
// Decimal and Money *apd.Decimal, String string, Date and DateTime time.Time,
// Time and TimeSpan time.Duration, Guid uuid.UUID, Binary []byte.
// A nil value is null for every type.
const (
	TypeBoolean  ScalarType = "System.Boolean"
	TypeByte     ScalarType = "System.Byte"
	TypeSByte    ScalarType = "System.SByte"
	TypeShort    ScalarType = "System.Short"
	TypeUShort   ScalarType = "System.UShort"
	TypeInteger  ScalarType = "System.Integer"
	TypeUInteger ScalarType = "System.UInteger"
	TypeLong     ScalarType = "System.Long"
	TypeULong    ScalarType = "System.ULong"
	TypeDecimal  ScalarType = "System.Decimal"
	TypeMoney    ScalarType = "System.Money"
	TypeString   ScalarType = "System.String"
	TypeDate     ScalarType = "System.Date"
	TypeTime     ScalarType = "System.Time"
	TypeDateTime ScalarType = "System.DateTime"
	TypeTimeSpan ScalarType = "System.TimeSpan"
	TypeGuid     ScalarType = "System.Guid"
	TypeBinary   ScalarType = "System.Binary"
)

// String returns the qualified type name.
func (t ScalarType) String() string { return string(t) }

// AllScalarTypes returns every internal scalar type in declaration order.
func AllScalarTypes() []ScalarType {
	return []ScalarType{
		TypeBoolean, TypeByte, TypeSByte, TypeShort, TypeUShort,
		TypeInteger, TypeUInteger, TypeLong, TypeULong,
		TypeDecimal, TypeMoney, TypeString,
		TypeDate, TypeTime, TypeDateTime, TypeTimeSpan,
		TypeGuid, TypeBinary,
	}
}
