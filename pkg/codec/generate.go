package codec

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateTimeLayout = "200601021504"
	dateLayout     = "20060102"
)

// Generate serializes data into a record of exactly TotalLength bytes.
//
// Fields are processed in spec order and the first failing field aborts the
// call; no partial buffer is returned. Keys in data that no field names are
// ignored.
func (l *Layout) Generate(data Record) ([]byte, error) {
	buf := make([]byte, l.totalLength)
	l.text.fill(buf[:l.length])

	for i := range l.fields {
		f := &l.fields[i]

		value, err := f.resolve(data)
		if err != nil {
			return nil, err
		}

		encoded, err := l.encodeValue(f, value)
		if err != nil {
			return nil, err
		}
		if encoded == nil {
			continue
		}

		copy(buf[f.StartIndex:f.EndIndex], encoded)
	}

	copy(buf[l.length:], l.endingBytes)

	return buf, nil
}

// resolve picks the raw value for a field: the fixed value, else the
// caller's value when the key is present, else the default.
func (f *Field) resolve(data Record) (any, error) {
	value := f.DefaultValue
	if v, ok := data[f.Key]; ok {
		value = v
	}
	if !isNil(f.FixedValue) {
		value = f.FixedValue
	}

	if isNil(value) {
		if f.Required {
			return nil, fieldError(PhaseGenerate, KindRequiredField, f, nil, "field is required, but cannot be resolved")
		}
		return nil, nil
	}

	if !f.allows(value) {
		return nil, fieldError(PhaseGenerate, KindInvalidValue, f, value, fmt.Sprintf("value %q is not possible", stringify(value)))
	}

	return value, nil
}

// encodeValue returns the encoded bytes for a field, or nil when nothing is
// to be written.
func (l *Layout) encodeValue(f *Field, value any) ([]byte, error) {
	if value == nil {
		if f.Type != TypeInteger {
			return nil, nil
		}
		value = 0
	}

	switch f.Type {
	case TypeString:
		s := stringify(value)
		if !l.supportsUnicode {
			s = asciiOnly(s)
		}
		encoded := l.text.encode(s)
		if len(encoded) > f.Length {
			return nil, tooLong(f, value, len(encoded))
		}
		return encoded, nil

	case TypeInteger:
		digits, err := integerText(value)
		if err != nil {
			return nil, &Error{Phase: PhaseGenerate, Kind: KindNotInteger, Field: f.Key, Value: value, Detail: err.Error()}
		}
		width := f.Length / l.text.unit
		if len(digits) > width {
			return nil, tooLong(f, value, len(digits)*l.text.unit)
		}
		return l.text.encode(strings.Repeat("0", width-len(digits)) + digits), nil

	case TypeBoolean:
		if truthy(value) {
			return l.text.encode(f.TrueValue), nil
		}
		return l.text.encode(f.FalseValue), nil

	case TypeDateTime:
		return l.encodeTime(f, value, dateTimeLayout)

	case TypeDate:
		return l.encodeTime(f, value, dateLayout)
	}

	return nil, specError("unrecognized type %q on field %s", f.Type, f.Key)
}

func (l *Layout) encodeTime(f *Field, value any, layout string) ([]byte, error) {
	t, err := toTime(value)
	if err != nil {
		return nil, &Error{Phase: PhaseGenerate, Kind: KindInvalidDate, Field: f.Key, Value: value, Detail: err.Error()}
	}
	encoded := l.text.encode(formatTime(t, layout))
	if len(encoded) > f.Length {
		return nil, tooLong(f, value, len(encoded))
	}
	return encoded, nil
}

// formatTime renders t in UTC. Years outside 0-9999 keep all their digits,
// which the caller's width check then rejects.
func formatTime(t time.Time, layout string) string {
	t = t.UTC()
	if y := t.Year(); y < 0 || y > 9999 {
		return fmt.Sprintf("%d%s", y, t.Format(layout[4:]))
	}
	return t.Format(layout)
}

func tooLong(f *Field, value any, size int) *Error {
	return fieldError(PhaseGenerate, KindTooLong, f, value,
		fmt.Sprintf("value is %d bytes but the field holds %d", size, f.Length))
}
