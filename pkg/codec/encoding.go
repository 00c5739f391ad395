package codec

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used when a spec names none
const DefaultEncoding = "utf8"

// textCodec converts field text to and from record bytes
type textCodec struct {
	name  string
	enc   encoding.Encoding // nil for UTF-8, which needs no transcoding
	ascii bool
	space []byte // encoded " ", the blank fill pattern
	unit  int    // bytes per ASCII character
}

func lookupEncoding(name string) (*textCodec, bool) {
	c := &textCodec{name: strings.ToLower(strings.TrimSpace(name))}

	switch c.name {
	case "", "utf8", "utf-8":
		c.name = DefaultEncoding
	case "ascii", "us-ascii":
		c.name = "ascii"
		c.enc = charmap.ISO8859_1
		c.ascii = true
	case "latin1", "binary", "iso-8859-1":
		c.enc = charmap.ISO8859_1
	case "ucs2", "ucs-2", "utf16le", "utf-16le":
		c.enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf16", "utf-16", "utf16be", "utf-16be":
		c.enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	default:
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil || enc == nil {
			return nil, false
		}
		if enc != unicode.UTF8 {
			c.enc = enc
		}
	}

	c.space = c.encode(" ")
	c.unit = len(c.space)
	if c.unit == 0 {
		return nil, false
	}
	// Every character must encode to the same width on its own and in a
	// run; encoders that add a byte order mark per call fail this.
	if len(c.encode("  ")) != 2*c.unit || len(c.encode("0")) != c.unit {
		return nil, false
	}
	return c, true
}

// encode never fails: runes the code page cannot represent become its
// substitute byte.
func (c *textCodec) encode(s string) []byte {
	if c.enc == nil {
		return []byte(s)
	}
	out, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

func (c *textCodec) decode(b []byte) string {
	if c.enc == nil {
		return string(b)
	}
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// fill blanks buf with the encoded space character
func (c *textCodec) fill(buf []byte) {
	if len(c.space) == 1 {
		for i := range buf {
			buf[i] = c.space[0]
		}
		return
	}
	for i := 0; i < len(buf); i += copy(buf[i:], c.space) {
	}
}
