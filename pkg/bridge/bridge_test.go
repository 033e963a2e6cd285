package bridge

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *Builder {
	return NewBuilder().
		Map(IntegerMapping(core.TypeInteger, "int")).
		Map(StringMapping("nvarchar(%d)", 200, QuoteNString)).
		ImportAs(core.TypeInteger, "int").
		ImportAs(core.TypeString, "nvarchar", "varchar").
		Exclude("xml", "sql_variant")
}

func TestBuild_Frozen(t *testing.T) {
	b := testBuilder()
	r := b.Build()

	b.Map(BooleanMapping("bit", "1", "0")).ImportAs(core.TypeBoolean, "bit").Exclude("int")

	_, err := r.Lookup(core.TypeBoolean)
	require.Error(t, err)
	assert.True(t, r.ShouldIncludeColumn("int"))
	_, _, err = r.FindScalarType("bit", 0, core.MetaData{})
	assert.Error(t, err)

	assert.Equal(t, []core.ScalarType{core.TypeInteger, core.TypeString}, r.Types())
}

func TestRegistry_NullPreserving(t *testing.T) {
	r := testBuilder().Build()

	lit, err := r.ToLiteral(core.TypeInteger, nil, core.MetaData{})
	require.NoError(t, err)
	assert.Equal(t, "null", lit)

	v, err := r.ToScalar(core.TypeString, nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = r.FromScalar(core.TypeString, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRegistry_UnsupportedDomain(t *testing.T) {
	r := testBuilder().Build()

	_, err := r.ToLiteral(core.TypeGuid, "x", core.MetaData{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnsupportedDomain))

	var domainErr *core.UnsupportedDomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "System.Guid", domainErr.Domain)
}

func TestRegistry_NativeDomainName(t *testing.T) {
	r := testBuilder().Build()

	name, err := r.NativeDomainName(core.TypeString, core.MetaData{})
	require.NoError(t, err)
	assert.Equal(t, "nvarchar(200)", name)

	md := core.NewMetaData(core.Tag{Name: core.TagStorageLength, Value: "50"})
	name, err = r.NativeDomainName(core.TypeString, md)
	require.NoError(t, err)
	assert.Equal(t, "nvarchar(50)", name)

	st, err := r.SQLType(core.TypeString, md)
	require.NoError(t, err)
	assert.Equal(t, SQLType{Class: ClassString, Length: 50}, st)
}

func TestRegistry_ImportPolicy(t *testing.T) {
	r := testBuilder().Build()

	tests := []struct {
		name    string
		native  string
		include bool
	}{
		{name: "mapped", native: "int", include: true},
		{name: "mapped mixed case", native: "NVarChar", include: true},
		{name: "excluded", native: "xml", include: false},
		{name: "excluded padded", native: " sql_variant ", include: false},
		{name: "unknown passes policy", native: "geometry2", include: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.include, r.ShouldIncludeColumn(tt.native))
		})
	}
}

func TestRegistry_FindScalarType(t *testing.T) {
	r := testBuilder().Build()

	st, md, err := r.FindScalarType("varchar", 40, core.MetaData{})
	require.NoError(t, err)
	assert.Equal(t, core.TypeString, st)
	assert.Equal(t, 40, md.Int(core.TagStorageLength, 0))

	_, _, err = r.FindScalarType("hierarchyid", 0, core.MetaData{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnsupportedImportType))
	assert.False(t, errors.Is(err, core.ErrUnsupportedDomain))

	_, _, err = r.ResolveDomain("hierarchyid", 0, core.MetaData{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnsupportedDomain))
}
