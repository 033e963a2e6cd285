package bridge

import (
	"errors"
	"testing"
	"time"

	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sqlServerRange = TemporalRange{
	Min:         time.Date(1753, 1, 1, 0, 0, 0, 0, time.UTC),
	Granularity: time.Second,
	TimeBase:    time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
}

func TestTemporalRange_SentinelRoundTrip(t *testing.T) {
	native, err := sqlServerRange.ToNative(core.TypeDateTime, Sentinel)
	require.NoError(t, err)
	assert.Equal(t, sqlServerRange.Min, native)

	assert.Equal(t, Sentinel, sqlServerRange.FromNative(native))
}

func TestTemporalRange_BelowMinimum(t *testing.T) {
	tests := []time.Time{
		time.Date(1752, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(1, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(1000, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, v := range tests {
		t.Run(v.Format(time.DateTime), func(t *testing.T) {
			_, err := sqlServerRange.ToNative(core.TypeDateTime, v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrValueOutOfRange))
		})
	}
}

func TestTemporalRange_FloorsOnEveryRead(t *testing.T) {
	native := time.Date(2024, 2, 29, 13, 45, 10, 997_000_000, time.UTC)

	first := sqlServerRange.FromNative(native)
	second := sqlServerRange.FromNative(native)

	want := time.Date(2024, 2, 29, 13, 45, 10, 0, time.UTC)
	assert.Equal(t, want, first)
	assert.Equal(t, first, second)
}

func TestTemporalRange_SubSecondAboveMinimumReadsAsSentinel(t *testing.T) {
	native := sqlServerRange.Min.Add(3 * time.Millisecond)
	assert.Equal(t, Sentinel, sqlServerRange.FromNative(native))
}

func TestTemporalRange_DropsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	v := time.Date(2020, 1, 1, 10, 0, 0, 0, loc)

	native, err := sqlServerRange.ToNative(core.TypeDateTime, v)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC), native)
}

func TestTemporalRange_NoRemap(t *testing.T) {
	pg := TemporalRange{Granularity: time.Microsecond}

	native, err := pg.ToNative(core.TypeDate, Sentinel)
	require.NoError(t, err)
	assert.Equal(t, Sentinel, native)
	assert.Equal(t, Sentinel, pg.FromNative(native))
}

func TestTimeOfDay(t *testing.T) {
	d := 13*time.Hour + 5*time.Minute + 7*time.Second + 400*time.Millisecond

	native, err := sqlServerRange.TimeOfDayToNative(d)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1900, 1, 1, 13, 5, 7, 0, time.UTC), native)
	assert.Equal(t, d.Truncate(time.Second), sqlServerRange.TimeOfDayFromNative(native))

	_, err = sqlServerRange.TimeOfDayToNative(24 * time.Hour)
	assert.True(t, errors.Is(err, core.ErrValueOutOfRange))
	_, err = sqlServerRange.TimeOfDayToNative(-time.Second)
	assert.True(t, errors.Is(err, core.ErrValueOutOfRange))
}

func TestTicks(t *testing.T) {
	d := 36*time.Hour + 250*time.Nanosecond
	ticks := DurationToTicks(d)
	assert.Equal(t, int64(36*60*60)*TicksPerSecond+2, ticks)

	back, err := TicksToDuration(ticks)
	require.NoError(t, err)
	assert.Equal(t, 36*time.Hour+200*time.Nanosecond, back)

	_, err = TicksToDuration(int64(1) << 62)
	assert.True(t, errors.Is(err, core.ErrValueOutOfRange))
}

func TestDateTimeMapping(t *testing.T) {
	m := DateTimeMapping(core.TypeDateTime, "datetime", sqlServerRange, QuoteString)
	v := time.Date(2024, 7, 4, 8, 30, 15, 0, time.UTC)

	lit, err := m.Literal(v, core.MetaData{})
	require.NoError(t, err)
	assert.Equal(t, "'2024-07-04T08:30:15'", lit)

	lit, err = m.Literal(Sentinel, core.MetaData{})
	require.NoError(t, err)
	assert.Equal(t, "'1753-01-01T00:00:00'", lit)

	got, err := m.ToScalar("2024-07-04 08:30:15.123")
	require.NoError(t, err)
	assert.Equal(t, v, got)

	date := DateTimeMapping(core.TypeDate, "datetime", sqlServerRange, QuoteString)
	got, err = date.ToScalar(v)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC), got)

	lit, err = date.Literal(v, core.MetaData{})
	require.NoError(t, err)
	assert.Equal(t, "'2024-07-04'", lit)

	compact := sqlServerRange
	compact.DateLayout = "20060102"
	lit, err = DateTimeMapping(core.TypeDate, "datetime", compact, QuoteString).Literal(v, core.MetaData{})
	require.NoError(t, err)
	assert.Equal(t, "'20240704'", lit)
}
