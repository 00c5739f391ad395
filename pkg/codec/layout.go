package codec

// Field is a compiled field: the FieldSpec with defaults resolved and its
// byte range computed.
type Field struct {
	Key            string
	Type           FieldType
	StartIndex     int // 0-based, inclusive
	EndIndex       int // exclusive
	Length         int
	Required       bool
	FixedValue     any
	DefaultValue   any
	PossibleValues []any
	TrueValue      string
	FalseValue     string
}

// Layout is a compiled spec. It is immutable and safe for concurrent use;
// Generate and Parse allocate all of their working state per call.
type Layout struct {
	fields          []Field
	index           map[string]int
	length          int
	totalLength     int
	ending          string
	endingBytes     []byte
	text            *textCodec
	supportsUnicode bool
	zeroIndexed     bool
}

// Length is the record length in bytes, excluding the record ending
func (l *Layout) Length() int { return l.length }

// TotalLength is Length plus the encoded size of the record ending. Every
// generated record has exactly this size.
func (l *Layout) TotalLength() int { return l.totalLength }

// RecordEnding returns the terminator text, "" when disabled
func (l *Layout) RecordEnding() string { return l.ending }

// Encoding returns the normalized encoding name
func (l *Layout) Encoding() string { return l.text.name }

// SupportsUnicode reports whether non-ASCII string content is kept on generate
func (l *Layout) SupportsUnicode() bool { return l.supportsUnicode }

// ZeroIndexed reports whether starting positions were read as 0-based
func (l *Layout) ZeroIndexed() bool { return l.zeroIndexed }

// Fields returns a copy of the compiled fields in spec order
func (l *Layout) Fields() []Field {
	out := make([]Field, len(l.fields))
	for i := range l.fields {
		out[i] = l.fields[i].copy()
	}
	return out
}

// Field looks up a compiled field by key. With duplicate keys the first
// field wins.
func (l *Layout) Field(key string) (Field, bool) {
	i, ok := l.index[key]
	if !ok {
		return Field{}, false
	}
	return l.fields[i].copy(), true
}

// copy detaches a field from the layout so callers cannot reach its values
func (f *Field) copy() Field {
	c := *f
	c.FixedValue = cloneValue(f.FixedValue)
	c.DefaultValue = cloneValue(f.DefaultValue)
	c.PossibleValues = cloneValues(f.PossibleValues)
	return c
}

// RecordCodec generates and parses records of one layout
type RecordCodec struct {
	*Layout
}

// NewRecordCodec compiles spec and returns a codec for it
func NewRecordCodec(spec Spec) (*RecordCodec, error) {
	l, err := Compile(spec)
	if err != nil {
		return nil, err
	}
	return &RecordCodec{Layout: l}, nil
}
