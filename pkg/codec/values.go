package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	errNotNumber   = errors.New("not a number")
	errNotIntegral = errors.New("not an integer")
	errNegative    = errors.New("negative integers are not supported")
	errNotDate     = errors.New("not a valid date")
)

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// allows reports whether v is a member of the field's possible values
func (f *Field) allows(v any) bool {
	if f.PossibleValues == nil {
		return true
	}
	for _, p := range f.PossibleValues {
		if sameValue(p, v) {
			return true
		}
	}
	return false
}

// sameValue compares numbers by value, so a possible value decoded from a
// spec file as float64 matches an int in the record.
func sameValue(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if ba, ok := a.([]byte); ok {
		a = string(ba)
	}
	if bb, ok := b.([]byte); ok {
		b = string(bb)
	}
	return reflect.DeepEqual(a, b)
}

// cloneValue copies the mutable containers a spec value may hold. Byte
// slices become strings.
func cloneValue(v any) any {
	switch x := v.(type) {
	case []byte:
		if x == nil {
			return v
		}
		return string(x)
	case []any:
		if x == nil {
			return v
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		if x == nil {
			return v
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	}
	return v
}

func cloneValues(vs []any) []any {
	if vs == nil {
		return nil
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = cloneValue(v)
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return fmt.Sprint(v)
}

// asciiOnly replaces every rune outside 0x00-0x7F with '*'
func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0x7F {
			return '*'
		}
		return r
	}, s)
}

// integerText renders an unsigned decimal for integral numeric input
func integerText(v any) (string, error) {
	switch n := v.(type) {
	case int:
		return signedText(int64(n))
	case int8:
		return signedText(int64(n))
	case int16:
		return signedText(int64(n))
	case int32:
		return signedText(int64(n))
	case int64:
		return signedText(n)
	case uint:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint64:
		return strconv.FormatUint(n, 10), nil
	case float32:
		return floatText(float64(n))
	case float64:
		return floatText(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return signedText(i)
		}
		f, err := n.Float64()
		if err != nil {
			return "", errNotNumber
		}
		return floatText(f)
	}
	return "", errNotNumber
}

func signedText(n int64) (string, error) {
	if n < 0 {
		return "", errNegative
	}
	return strconv.FormatInt(n, 10), nil
}

func floatText(f float64) (string, error) {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return "", errNotIntegral
	case f != math.Trunc(f):
		return "", errNotIntegral
	case f < 0:
		return "", errNegative
	case f == 0:
		return "0", nil
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// truthy follows the usual dynamic-language notion: false, zero, NaN and
// the empty string are false, everything else is true.
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b != ""
	case json.Number:
		f, err := b.Float64()
		return err != nil || f != 0
	}
	if f, ok := toFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// maxEpochMillis bounds numeric timestamps to ±100,000,000 days
const maxEpochMillis = 8.64e15

var dateInputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toTime coerces a value into a timestamp. Numbers are milliseconds since
// the Unix epoch; strings must be RFC 3339 or an ISO 8601 date, and are read
// as UTC when they carry no zone.
func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		return *t, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateInputLayouts {
			if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, errNotDate
	}

	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.Abs(f) > maxEpochMillis {
		return time.Time{}, errNotDate
	}
	return time.UnixMilli(int64(f)), nil
}
