package translate

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/sqldevice/pkg/bridge"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/sqlast"
)

// Date/time parts are read and written entirely in dialect arithmetic; no
// value leaves the backend. Every write form reads the current part from
// the source expression and adds the difference back to that same source,
// so the source is translated twice.

// TimeSpanPart is a component of a tick count.
type TimeSpanPart struct {
	Name   string
	Weight int64 // ticks per unit
	Outer  int64 // ticks per unit of the enclosing part, 0 for the largest part
}

// TimeSpanParts are the components of System.TimeSpan.
var TimeSpanParts = []TimeSpanPart{
	{Name: "Millisecond", Weight: bridge.TicksPerSecond / 1000, Outer: bridge.TicksPerSecond},
	{Name: "Second", Weight: bridge.TicksPerSecond, Outer: 60 * bridge.TicksPerSecond},
	{Name: "Minute", Weight: 60 * bridge.TicksPerSecond, Outer: 3600 * bridge.TicksPerSecond},
	{Name: "Hour", Weight: 3600 * bridge.TicksPerSecond, Outer: 86400 * bridge.TicksPerSecond},
	{Name: "Day", Weight: 86400 * bridge.TicksPerSecond},
}

func ticks(v int64) sqlast.Expr {
	return sqlast.Lit(strconv.FormatInt(v, 10))
}

// readTicks is (x / w) % (outer / w).
func readTicks(x sqlast.Expr, p TimeSpanPart) sqlast.Expr {
	q := sqlast.Binary(x, sqlast.OpDiv, ticks(p.Weight))
	if p.Outer == 0 {
		return q
	}
	return sqlast.Binary(q, sqlast.OpMod, ticks(p.Outer/p.Weight))
}

// ReadTimeSpanPart translates the read of p from a tick count.
func ReadTimeSpanPart(p TimeSpanPart) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 1); err != nil {
			return nil, err
		}
		x, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		return readTicks(x, p), nil
	}
}

// WriteTimeSpanPart translates x + ((desired - read(x)) * w).
func WriteTimeSpanPart(p TimeSpanPart) Translation {
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 2); err != nil {
			return nil, err
		}
		x, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		desired, err := Expr(child, node.Child(1))
		if err != nil {
			return nil, err
		}
		current, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		delta := sqlast.Binary(desired, sqlast.OpMinus, readTicks(current, p))
		return sqlast.Binary(x, sqlast.OpPlus, sqlast.Binary(delta, sqlast.OpMul, ticks(p.Weight))), nil
	}
}

// Calendar supplies a dialect's part-read and part-add primitives.
type Calendar struct {
	// Read returns the integer value of part in x.
	Read func(part string, x sqlast.Expr) sqlast.Expr
	// Add returns x with delta units of part added.
	Add func(part string, delta, x sqlast.Expr) sqlast.Expr
	// Parts maps part names (Year, Month, ...) to the dialect's part keyword.
	Parts map[string]string
	// AsDate, when set, wraps the result of the Date write forms for
	// dialects whose date arithmetic widens a date to a timestamp.
	AsDate func(x sqlast.Expr) sqlast.Expr
}

// ReadPart translates the read of a calendar part.
func (c Calendar) ReadPart(part string) Translation {
	keyword := c.keyword(part)
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 1); err != nil {
			return nil, err
		}
		x, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		return c.Read(keyword, x), nil
	}
}

// WritePart translates add(part, desired - read(part, x), x).
func (c Calendar) WritePart(part string) Translation {
	return c.writePart(part, nil)
}

// WriteDatePart is WritePart for Date operands; the result passes through
// AsDate when the calendar sets it.
func (c Calendar) WriteDatePart(part string) Translation {
	return c.writePart(part, c.AsDate)
}

func (c Calendar) writePart(part string, wrap func(sqlast.Expr) sqlast.Expr) Translation {
	keyword := c.keyword(part)
	return func(node *core.PlanNode, child ChildFunc) (sqlast.Node, error) {
		if err := arity(node, 2); err != nil {
			return nil, err
		}
		desired, err := Expr(child, node.Child(1))
		if err != nil {
			return nil, err
		}
		current, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		x, err := Expr(child, node.Child(0))
		if err != nil {
			return nil, err
		}
		delta := sqlast.Binary(desired, sqlast.OpMinus, c.Read(keyword, current))
		out := c.Add(keyword, delta, x)
		if wrap != nil {
			out = wrap(out)
		}
		return out, nil
	}
}

func (c Calendar) keyword(part string) string {
	keyword, ok := c.Parts[part]
	if !ok {
		panic(fmt.Sprintf("translate: calendar has no part %q", part))
	}
	return keyword
}

// Date/time part sets per internal type.
var (
	DateParts     = []string{"Year", "Month", "Day"}
	TimeParts     = []string{"Hour", "Minute", "Second", "Millisecond"}
	DateTimeParts = []string{"Year", "Month", "Day", "Hour", "Minute", "Second", "Millisecond"}
)

// DatePartTranslations returns Read<Part>/Write<Part> translations for the
// TimeSpan tick parts and the calendar parts of Date, Time and DateTime.
func DatePartTranslations(c Calendar) map[string]Translation {
	out := make(map[string]Translation)
	for _, p := range TimeSpanParts {
		out["TimeSpan.Read"+p.Name] = ReadTimeSpanPart(p)
		out["TimeSpan.Write"+p.Name] = WriteTimeSpanPart(p)
	}
	for prefix, parts := range map[string][]string{"Date": DateParts, "Time": TimeParts, "DateTime": DateTimeParts} {
		for _, part := range parts {
			out[prefix+".Read"+part] = c.ReadPart(part)
			if prefix == "Date" {
				out[prefix+".Write"+part] = c.WriteDatePart(part)
			} else {
				out[prefix+".Write"+part] = c.WritePart(part)
			}
		}
	}
	return out
}
