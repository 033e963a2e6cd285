package bridge

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// Sentinel is the engine's zero date, 0001-01-01.
var Sentinel = time.Time{}

// TicksPerSecond is the number of 100ns ticks in a second.
const TicksPerSecond = int64(time.Second / 100)

// TemporalRange holds every sentinel and truncation rule of one dialect's
// date/time domain. All date/time mappings convert through it.
type TemporalRange struct {
	// Min is the lowest representable native value. The zero value means the
	// dialect can represent the sentinel itself and no remapping happens.
	Min time.Time
	// Granularity is the read precision. Reads floor to it on every call.
	Granularity time.Duration
	// TimeBase is the date a time-of-day value is stored on.
	TimeBase time.Time
	// DateLayout formats date-only literals. Empty means yyyy-mm-dd.
	DateLayout string
}

func (r TemporalRange) dateLayout() string {
	if r.DateLayout == "" {
		return time.DateOnly
	}
	return r.DateLayout
}

// remaps reports whether the sentinel is stored as Min.
func (r TemporalRange) remaps() bool {
	return !r.Min.IsZero()
}

// ToNative converts an internal date/time for writing. The sentinel becomes
// the dialect minimum; anything else below the minimum is out of range.
func (r TemporalRange) ToNative(t core.ScalarType, v time.Time) (time.Time, error) {
	v = r.floor(wall(v))
	if !r.remaps() {
		return v, nil
	}
	if v.Equal(Sentinel) {
		return r.Min, nil
	}
	if v.Before(r.Min) {
		return time.Time{}, &core.ValueOutOfRangeError{
			Type:  t,
			Value: v.Format(time.DateTime),
			Limit: "minimum " + r.Min.Format(time.DateOnly),
		}
	}
	return v, nil
}

// FromNative converts a native date/time read from the driver. The value is
// floored to the granularity first, so a native value within one granule of
// the minimum still reads as the sentinel.
func (r TemporalRange) FromNative(v time.Time) time.Time {
	v = r.floor(wall(v))
	if r.remaps() && v.Equal(r.Min) {
		return Sentinel
	}
	return v
}

// TimeOfDayToNative stores a time of day on the dialect's base date.
func (r TemporalRange) TimeOfDayToNative(d time.Duration) (time.Time, error) {
	if d < 0 || d >= 24*time.Hour {
		return time.Time{}, &core.ValueOutOfRangeError{Type: core.TypeTime, Value: d.String(), Limit: "00:00:00..23:59:59"}
	}
	return r.TimeBase.Add(r.floorDuration(d)), nil
}

// TimeOfDayFromNative extracts the time of day from a native date/time.
func (r TemporalRange) TimeOfDayFromNative(v time.Time) time.Duration {
	v = wall(v)
	midnight := time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
	return r.floorDuration(v.Sub(midnight))
}

func (r TemporalRange) floor(v time.Time) time.Time {
	if r.Granularity <= 0 {
		return v
	}
	return v.Truncate(r.Granularity)
}

func (r TemporalRange) floorDuration(d time.Duration) time.Duration {
	if r.Granularity <= 0 {
		return d
	}
	return d.Truncate(r.Granularity)
}

// wall drops the location, keeping the wall clock reading. Native date/time
// domains carry no zone.
func wall(v time.Time) time.Time {
	return time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.UTC)
}

// DurationToTicks converts a TimeSpan to 100ns ticks.
func DurationToTicks(d time.Duration) int64 {
	return int64(d / 100)
}

// TicksToDuration converts 100ns ticks to a TimeSpan. Tick counts whose
// nanosecond value overflows time.Duration are out of range.
func TicksToDuration(ticks int64) (time.Duration, error) {
	const limit = int64(1<<63-1) / 100
	if ticks > limit || ticks < -limit {
		return 0, &core.ValueOutOfRangeError{Type: core.TypeTimeSpan, Value: ticks, Limit: fmt.Sprintf("|ticks| <= %d", limit)}
	}
	return time.Duration(ticks * 100), nil
}

// asTime reads the shapes drivers return for date/time columns.
func asTime(t core.ScalarType, native any) (time.Time, error) {
	switch v := native.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseTime(t, v)
	case []byte:
		return parseTime(t, string(v))
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to %s", native, t)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
	"20060102",
	"15:04:05.999999999",
}

func parseTime(t core.ScalarType, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as %s", s, t)
}

// asDuration reads a time of day or TimeSpan value supplied by the engine.
func asDuration(t core.ScalarType, value any) (time.Duration, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case int64:
		return time.Duration(v), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to %s", value, t)
	}
}

// DateTimeMapping maps System.Date or System.DateTime onto a native
// date/time domain through r. Date values are floored to midnight.
func DateTimeMapping(t core.ScalarType, domain string, r TemporalRange, quote func(string) string) Mapping {
	dateOnly := t == core.TypeDate
	normalize := func(v time.Time) time.Time {
		if dateOnly {
			return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		}
		return v
	}
	write := func(value any) (time.Time, error) {
		v, ok := value.(time.Time)
		if !ok {
			return time.Time{}, fmt.Errorf("cannot convert %T to %s", value, t)
		}
		return r.ToNative(t, normalize(wall(v)))
	}
	return Mapping{
		Type:   t,
		Domain: func(core.MetaData) string { return domain },
		Literal: func(value any, _ core.MetaData) (string, error) {
			v, err := write(value)
			if err != nil {
				return "", err
			}
			if dateOnly {
				return quote(v.Format(r.dateLayout())), nil
			}
			return quote(formatDateTime(v)), nil
		},
		ToScalar: func(native any) (any, error) {
			v, err := asTime(t, native)
			if err != nil {
				return nil, err
			}
			return normalize(r.FromNative(v)), nil
		},
		FromScalar: func(value any) (any, error) {
			return write(value)
		},
		Class: func(core.MetaData) SQLType { return SQLType{Class: ClassDateTime} },
	}
}

// TimeOfDayMapping maps System.Time. When the dialect stores times of day on
// a base date, r.TimeBase is that date and the native value is a datetime.
func TimeOfDayMapping(domain string, r TemporalRange, quote func(string) string) Mapping {
	write := func(value any) (time.Time, error) {
		d, err := asDuration(core.TypeTime, value)
		if err != nil {
			return time.Time{}, err
		}
		return r.TimeOfDayToNative(d)
	}
	withDate := !r.TimeBase.IsZero()
	return Mapping{
		Type:   core.TypeTime,
		Domain: func(core.MetaData) string { return domain },
		Literal: func(value any, _ core.MetaData) (string, error) {
			v, err := write(value)
			if err != nil {
				return "", err
			}
			if withDate {
				return quote(formatDateTime(v)), nil
			}
			return quote(v.Format("15:04:05.999999")), nil
		},
		ToScalar: func(native any) (any, error) {
			v, err := asTime(core.TypeTime, native)
			if err != nil {
				return nil, err
			}
			return r.TimeOfDayFromNative(v), nil
		},
		FromScalar: func(value any) (any, error) {
			v, err := write(value)
			if err != nil {
				return nil, err
			}
			if withDate {
				return v, nil
			}
			return v.Format("15:04:05.999999"), nil
		},
		Class: func(core.MetaData) SQLType { return SQLType{Class: ClassTime} },
	}
}

// TimeSpanMapping maps System.TimeSpan onto a 64-bit integer tick count.
func TimeSpanMapping(domain string) Mapping {
	return Mapping{
		Type:   core.TypeTimeSpan,
		Domain: func(core.MetaData) string { return domain },
		Literal: func(value any, md core.MetaData) (string, error) {
			d, err := asDuration(core.TypeTimeSpan, value)
			if err != nil {
				return "", err
			}
			return IntegerLiteral(DurationToTicks(d), md)
		},
		ToScalar: func(native any) (any, error) {
			ticks, err := AsInt64(native)
			if err != nil {
				return nil, err
			}
			return TicksToDuration(ticks)
		},
		FromScalar: func(value any) (any, error) {
			d, err := asDuration(core.TypeTimeSpan, value)
			if err != nil {
				return nil, err
			}
			return DurationToTicks(d), nil
		},
		Class: func(core.MetaData) SQLType { return SQLType{Class: ClassInteger} },
	}
}

func formatDateTime(v time.Time) string {
	return v.Format("2006-01-02T15:04:05.999999")
}
