package bridge

import (
	"errors"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostConversions_RangeChecked(t *testing.T) {
	tests := []struct {
		name    string
		convert func(any) (any, error)
		native  any
		want    any
		wantErr bool
	}{
		{name: "byte max", convert: adapt(ToByte), native: int64(255), want: uint8(255)},
		{name: "byte overflow", convert: adapt(ToByte), native: int64(256), wantErr: true},
		{name: "byte negative", convert: adapt(ToByte), native: int64(-1), wantErr: true},
		{name: "sbyte min", convert: adapt(ToSByte), native: int64(-128), want: int8(-128)},
		{name: "sbyte is not masked", convert: adapt(ToSByte), native: int64(200), wantErr: true},
		{name: "ushort max", convert: adapt(ToUShort), native: int64(65535), want: uint16(65535)},
		{name: "ushort overflow", convert: adapt(ToUShort), native: int64(65536), wantErr: true},
		{name: "short from int32", convert: adapt(ToShort), native: int32(-32768), want: int16(-32768)},
		{name: "uinteger max", convert: adapt(ToUInteger), native: int64(4294967295), want: uint32(4294967295)},
		{name: "uinteger negative", convert: adapt(ToUInteger), native: int64(-1), wantErr: true},
		{name: "integer from text", convert: adapt(ToInteger), native: []byte("42"), want: int32(42)},
		{name: "long from decimal text", convert: adapt(ToLong), native: "12.000", want: int64(12)},
		{name: "long from fraction", convert: adapt(ToLong), native: "12.5", wantErr: true},
		{name: "ulong max", convert: adapt(ToULong), native: []byte("18446744073709551615"), want: uint64(18446744073709551615)},
		{name: "ulong overflow", convert: adapt(ToULong), native: "18446744073709551616", wantErr: true},
		{name: "ulong negative", convert: adapt(ToULong), native: int64(-1), wantErr: true},
		{name: "ulong from apd", convert: adapt(ToULong), native: apd.New(7, 0), want: uint64(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.convert(tt.native)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, core.ErrValueOutOfRange), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHostConversions_UnknownShape(t *testing.T) {
	_, err := ToInteger(3.5)
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrValueOutOfRange))
}

func TestIntegerMapping_WritesWidened(t *testing.T) {
	m := IntegerMapping(core.TypeUShort, "int")

	v, err := m.FromScalar(uint16(65535))
	require.NoError(t, err)
	assert.Equal(t, int64(65535), v)

	lit, err := m.Literal(uint16(65535), core.MetaData{})
	require.NoError(t, err)
	assert.Equal(t, "65535", lit)

	got, err := m.ToScalar(int64(65535))
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), got)
}

func TestULongMapping(t *testing.T) {
	m := ULongMapping("decimal(20,0)")

	v, err := m.FromScalar(uint64(18446744073709551615))
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", v)

	got, err := m.ToScalar(v)
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), got)
}
