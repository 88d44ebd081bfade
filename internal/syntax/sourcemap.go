package syntax

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// segment is one source map mapping. Columns count UTF-16 code units and
// every field is 0-based.
type segment struct {
	genCol  int
	srcLine int
	srcCol  int
}

// sourceMap maps lowered positions back to the text they were lowered from.
type sourceMap struct {
	lines [][]segment // by generated line, sorted by generated column
}

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// parseSourceMap decodes the "mappings" field of a version 3 source map.
func parseSourceMap(data []byte) (*sourceMap, error) {
	var raw struct {
		Version  int    `json:"version"`
		Mappings string `json:"mappings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding source map: %w", err)
	}
	if raw.Version != 3 {
		return nil, fmt.Errorf("unsupported source map version %d", raw.Version)
	}

	m := &sourceMap{}
	var srcLine, srcCol int
	for _, group := range strings.Split(raw.Mappings, ";") {
		var (
			genCol int
			segs   []segment
		)
		for _, field := range strings.Split(group, ",") {
			if field == "" {
				continue
			}
			values, err := decodeVLQ(field)
			if err != nil {
				return nil, err
			}
			genCol += values[0]
			if len(values) < 4 {
				// generated text with no original
				continue
			}
			srcLine += values[2]
			srcCol += values[3]
			segs = append(segs, segment{genCol: genCol, srcLine: srcLine, srcCol: srcCol})
		}
		sort.SliceStable(segs, func(i, j int) bool { return segs[i].genCol < segs[j].genCol })
		m.lines = append(m.lines, segs)
	}
	return m, nil
}

// decodeVLQ decodes one comma-separated source map field.
func decodeVLQ(field string) ([]int, error) {
	var (
		values []int
		value  int
		shift  uint
	)
	for i := 0; i < len(field); i++ {
		digit := strings.IndexByte(base64Digits, field[i])
		if digit < 0 {
			return nil, fmt.Errorf("invalid source map character %q", field[i])
		}
		value |= (digit & 0x1f) << shift
		if digit&0x20 != 0 {
			shift += 5
			continue
		}
		if value&1 != 0 {
			values = append(values, -(value >> 1))
		} else {
			values = append(values, value>>1)
		}
		value, shift = 0, 0
	}
	if shift != 0 || len(values) == 0 {
		return nil, fmt.Errorf("truncated source map field %q", field)
	}
	return values, nil
}

// lookup returns the original line and UTF-16 column of an exact mapping at
// the generated line and UTF-16 column.
func (m *sourceMap) lookup(line, col int) (int, int, bool) {
	if line < 0 || line >= len(m.lines) {
		return 0, 0, false
	}
	segs := m.lines[line]
	i := sort.Search(len(segs), func(i int) bool { return segs[i].genCol >= col })
	if i == len(segs) || segs[i].genCol != col {
		return 0, 0, false
	}
	return segs[i].srcLine, segs[i].srcCol, true
}

// lineIndex gives byte offsets of line starts in a text.
type lineIndex struct {
	text   []byte
	starts []int
}

func newLineIndex(text []byte) *lineIndex {
	starts := []int{0}
	for i, c := range text {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{text: text, starts: starts}
}

// line returns the text of the 0-based line without its terminator.
func (x *lineIndex) line(n int) ([]byte, bool) {
	if n < 0 || n >= len(x.starts) {
		return nil, false
	}
	end := len(x.text)
	if n+1 < len(x.starts) {
		end = x.starts[n+1] - 1
	}
	return bytes.TrimSuffix(x.text[x.starts[n]:end], []byte("\r")), true
}

// utf16Col converts a 0-based byte column of a line to UTF-16 code units.
func utf16Col(line []byte, byteCol int) int {
	if byteCol > len(line) {
		byteCol = len(line)
	}
	units := 0
	for _, r := range string(line[:byteCol]) {
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
	}
	return units
}

// byteCol converts a UTF-16 column of a line to a 0-based byte column.
func byteCol(line []byte, units int) int {
	col := 0
	for units > 0 && col < len(line) {
		r, size := utf8.DecodeRune(line[col:])
		if r >= 0x10000 {
			units -= 2
		} else {
			units--
		}
		col += size
	}
	return col
}
