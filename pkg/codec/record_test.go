package codec

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleSpec() Spec {
	return Spec{
		RecordEnding: Ending("\n"),
		Fields: []FieldSpec{
			{Key: "id", Type: TypeInteger, StartingPosition: 1, Length: 4, Required: true},
			{Key: "active", Type: TypeBoolean, StartingPosition: 5, Length: 1},
		},
	}
}

func customerSpec() Spec {
	return Spec{
		Fields: []FieldSpec{
			{Key: "name", Type: TypeString, StartingPosition: 1, Length: 10, Required: true},
			{Key: "amount", Type: TypeInteger, StartingPosition: 11, Length: 6},
			{Key: "member", Type: TypeBoolean, StartingPosition: 17, Length: 1, TrueValue: Ptr("Y"), FalseValue: Ptr("N")},
			{Key: "created", Type: TypeDateTime, StartingPosition: 18, Length: 12},
			{Key: "born", Type: TypeDate, StartingPosition: 30, Length: 8},
			{Key: "code", Type: TypeString, StartingPosition: 38, Length: 3, PossibleValues: Values{"AAA", "BBB"}},
		},
	}
}

func mustCompile(t testing.TB, spec Spec) *Layout {
	t.Helper()
	l, err := Compile(spec)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return l
}

func TestRecordCodec_GenerateParseRoundTrip(t *testing.T) {
	codec, err := NewRecordCodec(customerSpec())
	if err != nil {
		t.Fatalf("NewRecordCodec failed: %v", err)
	}

	created := time.Date(2023, 6, 1, 14, 30, 0, 0, time.UTC)
	born := time.Date(1990, 12, 24, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		record Record
		want   Record
	}{
		{
			name:   "all fields",
			record: Record{"name": "Ada", "amount": 1234, "member": false, "created": created, "born": born, "code": "BBB"},
			want:   Record{"name": "Ada", "amount": int64(1234), "member": false, "created": created, "born": born, "code": "BBB"},
		},
		{
			name:   "only required field",
			record: Record{"name": "Grace"},
			want:   Record{"name": "Grace", "amount": int64(0), "member": nil, "created": nil, "born": nil, "code": nil},
		},
		{
			name:   "surrounding whitespace is trimmed",
			record: Record{"name": "  Linus ", "member": true},
			want:   Record{"name": "Linus", "amount": int64(0), "member": true, "created": nil, "born": nil, "code": nil},
		},
		{
			name:   "full width values",
			record: Record{"name": "ABCDEFGHIJ", "amount": 999999, "code": "AAA"},
			want:   Record{"name": "ABCDEFGHIJ", "amount": int64(999999), "member": nil, "created": nil, "born": nil, "code": "AAA"},
		},
		{
			name:   "unicode data",
			record: Record{"name": "Zoë 🎯"},
			want:   Record{"name": "Zoë 🎯", "amount": int64(0), "member": nil, "created": nil, "born": nil, "code": nil},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := codec.Generate(tc.record)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			if len(encoded) != codec.TotalLength() {
				t.Fatalf("record size mismatch: got %d, want %d", len(encoded), codec.TotalLength())
			}

			decoded, err := codec.Parse(encoded)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			if len(decoded) != len(tc.want) {
				t.Fatalf("field count mismatch: got %d, want %d", len(decoded), len(tc.want))
			}

			for key, want := range tc.want {
				got, ok := decoded[key]
				if !ok {
					t.Errorf("field %s missing from parsed record", key)
					continue
				}
				if wt, ok := want.(time.Time); ok {
					gt, ok := got.(time.Time)
					if !ok || !gt.Equal(wt) {
						t.Errorf("field %s mismatch: got %v, want %v", key, got, want)
					}
					continue
				}
				if got != want {
					t.Errorf("field %s mismatch: got %#v, want %#v", key, got, want)
				}
			}
		})
	}
}

func TestRecordCodec_ExampleScenario(t *testing.T) {
	layout := mustCompile(t, exampleSpec())

	t.Run("generate pads the integer and appends the ending", func(t *testing.T) {
		encoded, err := layout.Generate(Record{"id": 7, "active": true})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if !bytes.Equal(encoded, []byte("00071\n")) {
			t.Errorf("got %q, want %q", encoded, "00071\n")
		}
	})

	t.Run("parse reverses generate", func(t *testing.T) {
		record, err := layout.Parse([]byte("00071\n"))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if record["id"] != int64(7) {
			t.Errorf("id mismatch: got %#v", record["id"])
		}
		if record["active"] != true {
			t.Errorf("active mismatch: got %#v", record["active"])
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		_, err := layout.Generate(Record{"active": true})
		if !errors.Is(err, ErrRequiredField) {
			t.Fatalf("expected required field error, got %v", err)
		}
		var cerr *Error
		if !errors.As(err, &cerr) || cerr.Field != "id" {
			t.Errorf("expected error on field id, got %v", err)
		}
	})

	t.Run("date field", func(t *testing.T) {
		l := mustCompile(t, Spec{
			RecordEnding: NoEnding(),
			Fields:       []FieldSpec{{Key: "d", Type: TypeDate, StartingPosition: 1, Length: 8}},
		})

		encoded, err := l.Generate(Record{"d": time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if string(encoded) != "20230115" {
			t.Errorf("got %q, want %q", encoded, "20230115")
		}

		record, err := l.ParseString("20230115")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		want := time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)
		if got, ok := record["d"].(time.Time); !ok || !got.Equal(want) || got.Location() != time.UTC {
			t.Errorf("got %#v, want %v", record["d"], want)
		}
	})
}

func TestRecordCodec_RecordEnding(t *testing.T) {
	layout := mustCompile(t, exampleSpec())

	t.Run("corrupted ending fails", func(t *testing.T) {
		encoded, err := layout.Generate(Record{"id": 12, "active": false})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		encoded[len(encoded)-1] ^= 0xFF

		if _, err := layout.Parse(encoded); !errors.Is(err, ErrInvalidRecordEnding) {
			t.Errorf("expected invalid record ending error, got %v", err)
		}
	})

	t.Run("record without ending parses", func(t *testing.T) {
		record, err := layout.Parse([]byte("00120"))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if record["id"] != int64(12) || record["active"] != false {
			t.Errorf("unexpected record: %v", record)
		}
	})
}

func TestRecordCodec_MalformedData(t *testing.T) {
	layout := mustCompile(t, exampleSpec())

	testCases := []struct {
		name string
		data []byte
	}{
		{
			name: "empty data",
			data: []byte{},
		},
		{
			name: "too short",
			data: []byte("007"),
		},
		{
			name: "too long",
			data: []byte("000712\n"),
		},
		{
			name: "ending only",
			data: []byte("\n"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := layout.Parse(tc.data)
			if !errors.Is(err, ErrInvalidLength) {
				t.Errorf("expected invalid length error for %q, got %v", tc.data, err)
			}
		})
	}
}

func TestRecordCodec_FixedOutputSize(t *testing.T) {
	layout := mustCompile(t, customerSpec())

	records := []Record{
		{"name": "A"},
		{"name": "ABCDEFGHIJ", "amount": 1, "member": true, "code": "AAA"},
		{"name": "Ω", "created": time.Now(), "born": "2001-02-03"},
	}

	for _, r := range records {
		encoded, err := layout.Generate(r)
		if err != nil {
			t.Fatalf("Generate(%v) failed: %v", r, err)
		}
		if len(encoded) != layout.TotalLength() {
			t.Errorf("Generate(%v) returned %d bytes, want %d", r, len(encoded), layout.TotalLength())
		}
		if !bytes.HasSuffix(encoded, []byte("\r\n")) {
			t.Errorf("Generate(%v) = %q, missing CRLF", r, encoded)
		}
	}
}

func TestRecordCodec_ConcurrentUse(t *testing.T) {
	layout := mustCompile(t, customerSpec())

	const workers = 8
	const iterations = 200

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				name := fmt.Sprintf("w%d-%d", w, i)
				encoded, err := layout.Generate(Record{"name": name, "amount": i, "member": i%2 == 0, "code": "BBB"})
				if err != nil {
					errs <- err
					return
				}
				record, err := layout.Parse(encoded)
				if err != nil {
					errs <- err
					return
				}
				if record["name"] != name || record["amount"] != int64(i) {
					errs <- fmt.Errorf("worker %d iteration %d: got %v", w, i, record)
					return
				}
				_ = layout.Fields()
			}
		}(w)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 42, layout.TotalLength())
}
