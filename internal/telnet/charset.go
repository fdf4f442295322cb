package telnet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Decoder turns raw server bytes into text. It never fails: bytes that do
// not decode become U+FFFD.
type Decoder struct {
	charset string
	dec     *encoding.Decoder
	// held keeps an incomplete UTF-8 sequence until the next chunk.
	held []byte
}

// NewDecoder returns a decoder for one of ascii, utf-8, latin1 or cp1252.
func NewDecoder(charset string) (*Decoder, error) {
	d := &Decoder{charset: normalizeCharset(charset)}
	switch d.charset {
	case "ascii":
	case "utf-8":
		d.dec = unicode.UTF8.NewDecoder()
	case "latin1":
		d.dec = charmap.ISO8859_1.NewDecoder()
	case "cp1252":
		d.dec = charmap.Windows1252.NewDecoder()
	default:
		return nil, fmt.Errorf("unknown charset %q", charset)
	}
	return d, nil
}

func normalizeCharset(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ascii", "us-ascii":
		return "ascii"
	case "utf-8", "utf8":
		return "utf-8"
	case "latin1", "latin-1", "iso-8859-1":
		return "latin1"
	case "cp1252", "windows-1252":
		return "cp1252"
	default:
		return s
	}
}

// Charset returns the normalized charset name.
func (d *Decoder) Charset() string {
	return d.charset
}

// Decode converts one chunk.
func (d *Decoder) Decode(b []byte) string {
	switch d.charset {
	case "ascii":
		return decodeASCII(b)
	case "utf-8":
		if len(d.held) > 0 {
			b = append(d.held, b...)
			d.held = nil
		}
		b, d.held = splitIncomplete(b)
	}
	out, err := d.dec.Bytes(b)
	if err != nil {
		// The x/text decoders used here substitute rather than fail.
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}

// Flush returns whatever incomplete sequence is still held, replaced by
// U+FFFD.
func (d *Decoder) Flush() string {
	if len(d.held) == 0 {
		return ""
	}
	d.held = nil
	return string(utf8.RuneError)
}

func decodeASCII(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c < utf8.RuneSelf {
			sb.WriteByte(c)
		} else {
			sb.WriteRune(utf8.RuneError)
		}
	}
	return sb.String()
}

// splitIncomplete separates a trailing, not yet complete UTF-8 sequence.
func splitIncomplete(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax+1; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if !utf8.FullRune(b[i:]) {
			held := make([]byte, len(b)-i)
			copy(held, b[i:])
			return b[:i], held
		}
		break
	}
	return b, nil
}
