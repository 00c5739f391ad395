package codec

const (
	defaultRecordEnding = "\r\n"
	defaultTrueValue    = "1"
	defaultFalseValue   = "0"
)

// Compile normalizes spec into an executable Layout. The spec is copied
// first; nothing in the caller's value is modified or retained.
func Compile(spec Spec) (*Layout, error) {
	spec = spec.clone()

	// encoding

	text, ok := lookupEncoding(spec.Encoding)
	if !ok {
		return nil, specError("unknown encoding %q", spec.Encoding)
	}

	supportsUnicode := !text.ascii
	if spec.SupportsUnicode != nil {
		supportsUnicode = *spec.SupportsUnicode
	}

	// format

	ending := defaultRecordEnding
	if spec.RecordEnding != nil {
		ending = string(*spec.RecordEnding)
	}

	// field defaults

	trueValue := defaultTrueValue
	if spec.DefaultTrueValue != nil {
		trueValue = *spec.DefaultTrueValue
	}
	falseValue := defaultFalseValue
	if spec.DefaultFalseValue != nil {
		falseValue = *spec.DefaultFalseValue
	}

	// fields

	l := &Layout{
		fields:          make([]Field, 0, len(spec.Fields)),
		index:           make(map[string]int, len(spec.Fields)),
		ending:          ending,
		text:            text,
		supportsUnicode: supportsUnicode,
		zeroIndexed:     spec.ZeroIndexedStartingPosition,
	}

	requiredLength := 0
	for i, fs := range spec.Fields {
		f, err := compileField(i, fs, spec.ZeroIndexedStartingPosition, trueValue, falseValue)
		if err != nil {
			return nil, err
		}
		if f.EndIndex > requiredLength {
			requiredLength = f.EndIndex
		}
		if _, dup := l.index[f.Key]; !dup {
			l.index[f.Key] = len(l.fields)
		}
		l.fields = append(l.fields, f)
	}

	// record length

	l.length = requiredLength
	if spec.Length != nil {
		if *spec.Length < requiredLength {
			return nil, specError("spec length is %d but %d is needed", *spec.Length, requiredLength)
		}
		l.length = *spec.Length
	}

	if ending != "" {
		l.endingBytes = text.encode(ending)
	}
	l.totalLength = l.length + len(l.endingBytes)

	return l, nil
}

func compileField(i int, fs FieldSpec, zeroIndexed bool, trueValue, falseValue string) (Field, error) {
	if fs.Key == "" {
		return Field{}, specError("field %d has no key", i+1)
	}
	if !fs.Type.Valid() {
		return Field{}, specError("unrecognized type %q on field %s", fs.Type, fs.Key)
	}
	if fs.Length <= 0 {
		return Field{}, specError("field %s has invalid length %d", fs.Key, fs.Length)
	}

	start := fs.StartingPosition
	if !zeroIndexed {
		start--
	}
	if start < 0 {
		return Field{}, specError("field %s starts before the record (startingPosition %d)", fs.Key, fs.StartingPosition)
	}

	f := Field{
		Key:            fs.Key,
		Type:           fs.Type,
		StartIndex:     start,
		EndIndex:       start + fs.Length,
		Length:         fs.Length,
		Required:       fs.Required,
		FixedValue:     cloneValue(fs.FixedValue),
		DefaultValue:   cloneValue(fs.DefaultValue),
		PossibleValues: cloneValues(fs.PossibleValues),
		TrueValue:      trueValue,
		FalseValue:     falseValue,
	}
	if fs.TrueValue != nil {
		f.TrueValue = *fs.TrueValue
	}
	if fs.FalseValue != nil {
		f.FalseValue = *fs.FalseValue
	}

	return f, nil
}
