// Package transcode detects the character encoding of text files and
// rewrites them as UTF-8.
package transcode

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	utf8Name = "UTF-8"
	utf16LE  = "UTF-16LE"
	utf16BE  = "UTF-16BE"
)

// BOM is the UTF-8 byte-order mark written at the start of every converted file.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrUnsupportedCharset is returned when a detected or requested charset
// has no decoder.
var ErrUnsupportedCharset = errors.New("unsupported charset")

// Detection is the outcome of charset detection on a byte slice.
type Detection struct {
	Charset    string
	Confidence int
	Language   string
}

// chardet reports a few names that the WHATWG table spells differently.
var charsetAliases = map[string]string{
	"GB-18030": "gb18030",
}

// Detect guesses the charset of raw. Empty input and valid UTF-8 without
// NUL bytes are reported as UTF-8 without running the detector. UTF-16
// without a byte-order mark is recognized from where its NUL bytes fall.
func Detect(raw []byte) (Detection, error) {
	if len(raw) == 0 || (bytes.IndexByte(raw, 0) < 0 && utf8.Valid(raw)) {
		return Detection{Charset: utf8Name, Confidence: 100}, nil
	}

	if name, ok := detectUTF16(raw); ok {
		return Detection{Charset: name, Confidence: 90}, nil
	}

	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil {
		return Detection{}, fmt.Errorf("failed to detect charset: %w", err)
	}

	return Detection{
		Charset:    result.Charset,
		Confidence: result.Confidence,
		Language:   result.Language,
	}, nil
}

// detectUTF16 counts NUL bytes at even and odd offsets. Text that is mostly
// ASCII has a zero high byte in at least half of its code units: at odd
// offsets for little endian, even offsets for big endian.
func detectUTF16(raw []byte) (string, bool) {
	var even, odd int
	for i, b := range raw {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			even++
		} else {
			odd++
		}
	}

	units := len(raw) / 2
	switch {
	case units == 0:
		return "", false
	case odd*2 >= units && even*10 <= odd:
		return utf16LE, true
	case even*2 >= units && odd*10 <= even:
		return utf16BE, true
	}
	return "", false
}

func lookup(name string) (encoding.Encoding, error) {
	if strings.EqualFold(name, utf8Name) || strings.EqualFold(name, "utf8") {
		return unicode.UTF8, nil
	}

	if alias, ok := charsetAliases[name]; ok {
		name = alias
	}

	enc, _ := charset.Lookup(name)
	if enc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCharset, name)
	}
	if enc == encoding.Nop {
		return unicode.UTF8, nil
	}
	return enc, nil
}

// Decode converts raw from the named charset to UTF-8. Bytes that cannot be
// decoded become U+FFFD. A leading UTF-8 or UTF-16 byte-order mark takes
// precedence over name and is dropped from the output.
func Decode(raw []byte, name string) ([]byte, error) {
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}

	decoder := unicode.BOMOverride(enc.NewDecoder())
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return out, nil
}

// ConvertFile rewrites the file at path as UTF-8 with a byte-order mark.
// The file is overwritten in place; a failed write leaves it partially written.
func ConvertFile(path string) (Detection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Detection{}, fmt.Errorf("failed to stat file: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Detection{}, fmt.Errorf("failed to read file: %w", err)
	}

	detected, err := Detect(raw)
	if err != nil {
		return Detection{}, err
	}

	text, err := Decode(raw, detected.Charset)
	if err != nil {
		return detected, err
	}

	var buf bytes.Buffer
	buf.Grow(len(BOM) + len(text))
	buf.Write(BOM)
	buf.Write(text)

	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return detected, fmt.Errorf("failed to write file: %w", err)
	}

	return detected, nil
}
