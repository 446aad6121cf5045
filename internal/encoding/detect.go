// Package encoding normalizes uploaded text files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset labels reported by Detect.
const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO88599    = "ISO-8859-9"
)

const sniffLen = 4096

var boms = []struct {
	prefix  []byte
	charset string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

var decoders = map[string]encoding.Encoding{
	UTF16LE:     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	UTF16BE:     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	Windows1252: charmap.Windows1252,
	ISO88599:    charmap.ISO8859_9,
}

// Decode returns a reader yielding the content of r as UTF-8, along with the
// charset it was decoded from. A byte order mark wins; otherwise valid UTF-8
// passes through, chardet is consulted, and Windows-1252 is the fallback.
func Decode(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(buf, bom.prefix) {
			continue
		}

		if bom.charset == UTF8 {
			_, _ = br.Discard(len(bom.prefix))
			return br, UTF8, nil
		}

		return transform.NewReader(br, decoders[bom.charset].NewDecoder()), bom.charset, nil
	}

	if utf8.Valid(buf) {
		return br, UTF8, nil
	}

	charset := guess(buf)
	if charset == UTF8 {
		return br, UTF8, nil
	}

	return transform.NewReader(br, decoders[charset].NewDecoder()), charset, nil
}

// NewUTF8Reader is Decode without the charset label.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	rd, _, err := Decode(r)
	return rd, err
}

func guess(buf []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err != nil {
		return Windows1252
	}

	switch result.Charset {
	case "UTF-8":
		return UTF8
	case "ISO-8859-9":
		return ISO88599
	default:
		return Windows1252
	}
}
