package reader

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const maxLine = 1 << 20

// lineScanner yields tab separated rows from an export. NUL bytes are
// dropped, invalid UTF-8 is replaced, a UTF-16 BOM switches decoding, and
// \n, \r\n and bare \r all end a line.
type lineScanner struct {
	sc   *bufio.Scanner
	line int
}

func newLineScanner(r io.Reader) *lineScanner {
	clean := transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == 0 })),
	))
	sc := bufio.NewScanner(clean)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	sc.Split(scanLines)
	return &lineScanner{sc: sc}
}

// next returns the next row split on tabs. An empty line yields an empty row.
func (l *lineScanner) next() ([]string, bool) {
	if !l.sc.Scan() {
		return nil, false
	}
	l.line++
	text := l.sc.Text()
	if text == "" {
		return []string{}, true
	}
	return strings.Split(text, "\t"), true
}

func (l *lineScanner) err() error { return l.sc.Err() }

// scanLines is bufio.ScanLines with bare carriage returns treated as line
// ends too.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// need one more byte to tell \r from \r\n
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
