// Package codec provides fixed-width record generation and parsing.
//
// A declarative Spec describes where each field lives in a record, how wide
// it is and how its value is represented. The spec is compiled once into a
// Layout, which then drives both directions: Generate turns a Record into a
// fixed-length byte buffer and Parse turns such a buffer back into a Record.
//
// # Record Format
//
// A record is Length bytes of field data followed by an optional record
// ending (CRLF unless the spec says otherwise):
//
//	[field][field][ ... ][blank fill][record ending]
//
// Each field occupies the byte range [StartIndex, StartIndex+Length). Bytes
// not covered by a written value hold the encoding's space character.
//
// Field types:
//   - string: the text as is, not padded; trimmed on parse
//   - integer: unsigned decimal, left-padded with '0'; negative numbers are
//     not supported in either direction
//   - boolean: the field's TrueValue or FalseValue ("1"/"0" by default)
//   - datetime: YYYYMMDDHHmm in UTC
//   - date: YYYYMMDD in UTC
//
// # Usage
//
//	layout, err := codec.Compile(codec.Spec{
//	    RecordEnding: codec.Ending("\n"),
//	    Fields: []codec.FieldSpec{
//	        {Key: "id", Type: codec.TypeInteger, StartingPosition: 1, Length: 4, Required: true},
//	        {Key: "active", Type: codec.TypeBoolean, StartingPosition: 5, Length: 1},
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//
//	buf, err := layout.Generate(codec.Record{"id": 7, "active": true}) // "00071\n"
//	if err != nil {
//	    return err
//	}
//
//	record, err := layout.Parse(buf) // {"id": int64(7), "active": true}
//
// Specs can also be read from YAML or JSON documents with LoadSpec, using
// the same camelCase keys as the Spec struct tags.
//
// # Error Handling
//
// Every failure is an *Error carrying a Phase, a Kind and the offending
// field. Use errors.Is with the sentinel values (ErrTooLong,
// ErrRequiredField, ...) to branch on the kind. The first failing field
// aborts the call; nothing partial is returned.
//
// # Thread Safety
//
// A Layout is immutable once compiled and safe for concurrent use. Generate
// and Parse keep all working state local to the call.
package codec
