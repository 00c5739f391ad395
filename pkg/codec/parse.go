package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	digitsPattern   = regexp.MustCompile(`^[0-9]+$`)
	dateTimePattern = regexp.MustCompile(`^[0-9]{12}$`)
	datePattern     = regexp.MustCompile(`^[0-9]{8}$`)
)

// Parse decodes one record. The input must be exactly Length bytes, or
// TotalLength bytes ending in the record ending.
//
// Integer fields yield int64, boolean fields bool, date and datetime fields
// time.Time in UTC, and string fields their trimmed text. Blank optional
// fields yield nil.
func (l *Layout) Parse(data []byte) (Record, error) {
	if len(l.endingBytes) > 0 && len(data) == l.totalLength {
		if end := l.text.decode(data[l.length:]); end != l.ending {
			return nil, &Error{
				Phase:  PhaseParse,
				Kind:   KindInvalidRecordEnding,
				Value:  end,
				Detail: fmt.Sprintf("invalid record - unexpected record ending %q", end),
			}
		}
		data = data[:l.length]
	}

	if len(data) != l.length {
		return nil, &Error{
			Phase:  PhaseParse,
			Kind:   KindInvalidLength,
			Value:  len(data),
			Detail: fmt.Sprintf("invalid record - unexpected length %d, want %d or %d", len(data), l.length, l.totalLength),
		}
	}

	out := make(Record, len(l.fields))

	for i := range l.fields {
		f := &l.fields[i]

		text := strings.TrimSpace(l.text.decode(data[f.StartIndex:f.EndIndex]))

		value, err := decodeValue(f, text)
		if err != nil {
			return nil, err
		}

		if s, ok := value.(string); ok && s == "" && !f.Required {
			value = nil
		}

		out[f.Key] = value
	}

	return out, nil
}

// ParseString parses a record held in a string
func (l *Layout) ParseString(record string) (Record, error) {
	return l.Parse([]byte(record))
}

func decodeValue(f *Field, text string) (any, error) {
	switch f.Type {
	case TypeString:
		return text, nil

	case TypeInteger:
		if text == "" {
			return nil, nil
		}
		if !digitsPattern.MatchString(text) {
			return nil, fieldError(PhaseParse, KindNotInteger, f, text, fmt.Sprintf("value %q is not an integer", text))
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &Error{Phase: PhaseParse, Kind: KindNotInteger, Field: f.Key, Value: text, Detail: "integer out of range", Cause: err}
		}
		return n, nil

	case TypeBoolean:
		switch {
		case text == f.TrueValue:
			return true, nil
		case text == f.FalseValue:
			return false, nil
		case text == "" && !f.Required:
			return nil, nil
		}
		return nil, fieldError(PhaseParse, KindNotBoolean, f, text, fmt.Sprintf("value %q is not a boolean", text))

	case TypeDateTime:
		return decodeTime(f, text, dateTimePattern, dateTimeLayout)

	case TypeDate:
		return decodeTime(f, text, datePattern, dateLayout)
	}

	return nil, specError("unrecognized type %q on field %s", f.Type, f.Key)
}

// decodeTime parses fixed-width digit groups as UTC. The Unix epoch itself is
// rejected along with malformed and out-of-range values.
func decodeTime(f *Field, text string, pattern *regexp.Regexp, layout string) (any, error) {
	if text == "" {
		return nil, nil
	}

	invalid := func(cause error) error {
		return &Error{
			Phase:  PhaseParse,
			Kind:   KindInvalidDate,
			Field:  f.Key,
			Value:  text,
			Detail: fmt.Sprintf("value %q is not a valid %s", text, f.Type),
			Cause:  cause,
		}
	}

	if !pattern.MatchString(text) {
		return nil, invalid(nil)
	}
	t, err := time.ParseInLocation(layout, text, time.UTC)
	if err != nil {
		return nil, invalid(err)
	}
	if t.Unix() == 0 {
		return nil, invalid(nil)
	}
	return t, nil
}
